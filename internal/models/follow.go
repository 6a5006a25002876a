package models

import (
	"time"

	"gorm.io/gorm"
)

type Follow struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	FollowerID uint           `gorm:"not null;index:idx_follow_pair,unique" json:"follower_id"`
	FolloweeID uint           `gorm:"not null;index:idx_follow_pair,unique" json:"followee_id"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Follower User `gorm:"foreignKey:FollowerID" json:"-"`
	Followee User `gorm:"foreignKey:FolloweeID" json:"-"`
}

func (Follow) TableName() string {
	return "follows"
}

type Block struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	BlockerID uint           `gorm:"not null;index:idx_block_pair,unique" json:"blocker_id"`
	BlockedID uint           `gorm:"not null;index:idx_block_pair,unique" json:"blocked_id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Blocker User `gorm:"foreignKey:BlockerID" json:"-"`
	Blocked User `gorm:"foreignKey:BlockedID" json:"-"`
}

func (Block) TableName() string {
	return "blocks"
}
