package model

import "time"

// 配送ステータス。pending → processing → shipped → delivered → completed の順で進む。
// cancelled は終端以外のどこからでも入れる逃げ道。
type DeliveryStatus string

const (
	DeliveryStatusPending    DeliveryStatus = "pending"
	DeliveryStatusProcessing DeliveryStatus = "processing"
	DeliveryStatusShipped    DeliveryStatus = "shipped"
	DeliveryStatusDelivered  DeliveryStatus = "delivered"
	DeliveryStatusCompleted  DeliveryStatus = "completed"
	DeliveryStatusCancelled  DeliveryStatus = "cancelled"
)

// 支払いステータス。配送とは独立の軸（cashはdeliveredでもunpaidがありうる）。
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusFailed PaymentStatus = "failed"
)

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

// deliveryStatusOrder はタイムライン表示用の順序。cancelledは含まない。
var deliveryStatusOrder = []DeliveryStatus{
	DeliveryStatusPending,
	DeliveryStatusProcessing,
	DeliveryStatusShipped,
	DeliveryStatusDelivered,
	DeliveryStatusCompleted,
}

// Rank はタイムライン上の位置（pending=0 … completed=4）。
// cancelled と未知の値は -1。
func (s DeliveryStatus) Rank() int {
	for i, st := range deliveryStatusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Reached は「このステージまで到達したか」。completed なら5段階すべてtrue。
func (s DeliveryStatus) Reached(stage DeliveryStatus) bool {
	cur := s.Rank()
	st := stage.Rank()
	if cur < 0 || st < 0 {
		return false
	}
	return st <= cur
}

func (s DeliveryStatus) IsTerminal() bool {
	return s == DeliveryStatusCompleted || s == DeliveryStatusCancelled
}

// CanTransition は配送ステータスの遷移可否。
// 前進は1段ずつ、cancelled へは終端以外から常に可。
func (s DeliveryStatus) CanTransition(to DeliveryStatus) bool {
	if to == DeliveryStatusCancelled {
		return !s.IsTerminal()
	}
	cur := s.Rank()
	next := to.Rank()
	if cur < 0 || next < 0 {
		return false
	}
	return next == cur+1
}

func (s DeliveryStatus) Valid() bool {
	return s.Rank() >= 0 || s == DeliveryStatusCancelled
}

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodCard
}

type Order struct {
	ID             int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber    string         `gorm:"type:varchar(32);not null;uniqueIndex" json:"order_number"`
	CustomerID     int64          `gorm:"not null;index" json:"customer_id"`
	DriverID       *int64         `gorm:"index" json:"driver_id"`
	DeliveryStatus DeliveryStatus `gorm:"type:varchar(20);not null;index" json:"delivery_status"`
	PaymentStatus  PaymentStatus  `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	PaymentMethod  PaymentMethod  `gorm:"type:varchar(10);not null" json:"payment_method"`

	// 合計はサーバー側で商品マスタから再計算する（クライアントの金額は参考値）
	Total int64 `gorm:"not null" json:"total"`

	Email   string `gorm:"type:varchar(255);not null" json:"email"`
	Phone   string `gorm:"type:varchar(30);not null" json:"phone"`
	Address string `gorm:"type:varchar(255);not null" json:"address"`

	DestinationLatitude  float64 `gorm:"not null" json:"destination_latitude"`
	DestinationLongitude float64 `gorm:"not null" json:"destination_longitude"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated"`
}
