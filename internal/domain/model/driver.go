package model

import "time"

// ドライバーの稼働状態。
// busy はクレーム承認/配達完了イベントが動かす。手動トグルは offline⇔available のみ。
type DriverStatus string

const (
	DriverStatusOffline   DriverStatus = "offline"
	DriverStatusAvailable DriverStatus = "available"
	DriverStatusBusy      DriverStatus = "busy"
)

func (s DriverStatus) Valid() bool {
	switch s {
	case DriverStatusOffline, DriverStatusAvailable, DriverStatusBusy:
		return true
	}
	return false
}

type Driver struct {
	ID        int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64        `gorm:"not null;uniqueIndex" json:"user_id"`
	Status    DriverStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
	CreatedAt time.Time    `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
