package model

import "time"

// ステータス変更の記録対象。
type OrderEventField string

const (
	OrderEventDelivery OrderEventField = "delivery_status"
	OrderEventPayment  OrderEventField = "payment_status"
)

// OrderEvent はステータス変更の履歴。
// 「誰が」「どの注文の」「どの軸を」「どこからどこへ」変えたかを残す。
type OrderEvent struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64           `gorm:"not null;index" json:"order_id"`
	ActorUserID int64           `gorm:"not null;index" json:"actor_user_id"`
	Field       OrderEventField `gorm:"type:varchar(30);not null" json:"field"`
	FromStatus  string          `gorm:"type:varchar(20);not null" json:"from_status"`
	ToStatus    string          `gorm:"type:varchar(20);not null" json:"to_status"`
	CreatedAt   time.Time       `gorm:"not null;index" json:"created_at"`
}
