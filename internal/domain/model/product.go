package model

import (
	"time"

	"gorm.io/gorm"
)

// 商品（生鮮食品）。価格はセント単位のint64。
type Product struct {
	ID           int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	Description  string         `gorm:"type:text" json:"description"`
	Price        int64          `gorm:"not null" json:"price"`
	Unit         string         `gorm:"type:varchar(20)" json:"unit"`
	CategoryName string         `gorm:"type:varchar(100);index" json:"category_name"`
	ImageName    string         `gorm:"type:varchar(255)" json:"image_name"`
	Stock        int64          `gorm:"not null" json:"stock"`
	IsActive     bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt    time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
