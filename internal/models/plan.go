package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubscriptionPlan is a membership tier offered to members. Features is a
// JSON array of display strings.
type SubscriptionPlan struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Tier      string         `gorm:"uniqueIndex;size:32;not null" json:"tier"`
	Name      string         `gorm:"size:64;not null" json:"name"`
	Price     float64        `gorm:"not null" json:"price"`
	Features  datatypes.JSON `gorm:"type:json" json:"features"`
	IsActive  bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}
