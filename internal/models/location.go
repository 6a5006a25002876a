package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Location is a physical gym/dojo in the network. Amenities and the weekly
// hours schedule are JSON columns; hours ranges are not validated for
// overlap.
type Location struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Address     string         `gorm:"size:512;not null" json:"address"`
	Latitude    float64        `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude   float64        `gorm:"type:decimal(11,8);not null" json:"longitude"`
	Capacity    int            `gorm:"not null" json:"capacity"` // always > 0
	Amenities   datatypes.JSON `gorm:"type:json" json:"amenities"`
	Hours       datatypes.JSON `gorm:"type:json" json:"hours"`
	ImageURL    string         `gorm:"size:512" json:"image_url"`
	PartnerID   uint           `gorm:"not null;index" json:"partner_id"`
	CreatedByID uint           `gorm:"not null;index" json:"created_by_id"`
	CreatorRole string         `gorm:"size:20;not null;index" json:"creator_role"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Partner User `gorm:"foreignKey:PartnerID" json:"-"`
}

func (Location) TableName() string {
	return "locations"
}

// HoursRange is one open/close window applying to a set of weekdays
// (0=Sunday..6=Saturday). Stored inside Location.Hours.
type HoursRange struct {
	Open  string `json:"open"`  // "06:00"
	Close string `json:"close"` // "22:00"
	Days  []int  `json:"days"`
}
