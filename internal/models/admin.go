package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminInvite grants an elevated role on registration. Tokens are single
// use and expire.
type AdminInvite struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"size:255;not null;index" json:"email"`
	Role      string         `gorm:"size:20;not null" json:"role"`
	Token     string         `gorm:"uniqueIndex;size:64;not null" json:"token"`
	InvitedBy uint           `gorm:"not null" json:"invited_by"`
	ExpiresAt time.Time      `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time     `json:"used_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AdminInvite) TableName() string {
	return "admin_invites"
}

// ChangelogEntry records an admin-visible mutation of a location, plan or
// user. Changes holds the changed fields as JSON.
type ChangelogEntry struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	Action     string         `gorm:"size:20;not null;index" json:"action"`      // create | update | delete
	EntityType string         `gorm:"size:20;not null;index" json:"entity_type"` // location | plan | user
	EntityID   uint           `gorm:"not null;index" json:"entity_id"`
	Changes    datatypes.JSON `gorm:"type:json" json:"changes"`
	CreatedAt  time.Time      `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (ChangelogEntry) TableName() string {
	return "changelog_entries"
}
