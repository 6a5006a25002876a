package models

import (
	"time"

	"gorm.io/gorm"
)

// BillingRecord is a display-only charge on a member's account. DojoLibre
// does not move money; records are created by admins or an external biller.
type BillingRecord struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	PlanID      *uint          `gorm:"index" json:"plan_id,omitempty"`
	AmountCents int64          `gorm:"not null" json:"amount_cents"`
	Currency    string         `gorm:"size:3;not null;default:'CAD'" json:"currency"`
	Description string         `gorm:"size:255" json:"description"`
	Status      string         `gorm:"size:20;not null;default:'PENDING';index" json:"status"` // PENDING | PAID | FAILED
	PeriodStart time.Time      `json:"period_start"`
	PeriodEnd   time.Time      `json:"period_end"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User User              `gorm:"foreignKey:UserID" json:"-"`
	Plan *SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

func (BillingRecord) TableName() string {
	return "billing_records"
}
