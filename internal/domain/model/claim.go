package model

import "time"

type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusRejected ClaimStatus = "rejected"
)

// クレームの発生元。selfはドライバー自身の申請、systemはバックエンドの自動割当。
type ClaimSource string

const (
	ClaimSourceSelf   ClaimSource = "self"
	ClaimSourceSystem ClaimSource = "system"
)

// Claim は「この注文を自分が運ぶ」というドライバーの申請。
// 1注文につき approved は最大1件。解決後は不変。
type Claim struct {
	ID           int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      int64       `gorm:"not null;index" json:"order_id"`
	DriverID     int64       `gorm:"not null;index" json:"driver_id"`
	Status       ClaimStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Source       ClaimSource `gorm:"type:varchar(10);not null" json:"source"`
	RejectReason string      `gorm:"type:varchar(100)" json:"reject_reason,omitempty"`
	CreatedAt    time.Time   `gorm:"not null;autoCreateTime" json:"created"`
}
