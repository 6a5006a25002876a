package models

import (
	"time"

	"dojolibre/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Name            string     `gorm:"size:120;not null" json:"name"`
	Email           string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash    string     `gorm:"size:255" json:"-"`
	Role            string     `gorm:"size:20;not null;index" json:"role"` // MEMBER | PARTNER | ADMIN | SUPER_ADMIN
	GoogleID        *string    `gorm:"uniqueIndex;size:255" json:"-"`      // nil for email signups (avoids duplicate '' on unique index)
	AvatarURL       string     `gorm:"size:512" json:"avatar_url"`
	Bio             string     `gorm:"type:text" json:"bio"`
	IsActive        bool       `gorm:"default:true;index" json:"is_active"`
	MemberSince     time.Time  `json:"member_since"`
	SubscriptionTier *string   `gorm:"size:32" json:"subscription_tier,omitempty"` // members only
	FCMToken        string     `gorm:"size:512" json:"-"`

	// Partner business details; empty for non-partner roles.
	BusinessName    string `gorm:"size:255" json:"business_name,omitempty"`
	BusinessAddress string `gorm:"size:512" json:"business_address,omitempty"`
	BusinessPhone   string `gorm:"size:32" json:"business_phone,omitempty"`
	PartnerVerified bool   `gorm:"default:false" json:"partner_verified"`

	// Privacy settings for the public profile.
	ShowConnections bool `gorm:"default:true" json:"show_connections"`
	ShowBio         bool `gorm:"default:true" json:"show_bio"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) IsMember() bool  { return u.Role == domain.RoleMember }
func (u *User) IsPartner() bool { return u.Role == domain.RolePartner }
func (u *User) IsAdmin() bool   { return domain.IsAdmin(u.Role) }
