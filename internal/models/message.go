package models

import (
	"time"

	"gorm.io/gorm"
)

// Message is a direct message between two users. Conversations are
// pair-scoped; ConversationKey is the sorted "low-high" user ID pair so a
// single indexed column serves both directions.
type Message struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	ConversationKey string         `gorm:"size:64;not null;index" json:"-"`
	SenderID        uint           `gorm:"not null;index" json:"sender_id"`
	ReceiverID      uint           `gorm:"not null;index" json:"receiver_id"`
	Body            string         `gorm:"type:text;not null" json:"body"`
	ReadAt          *time.Time     `json:"read_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Sender   User `gorm:"foreignKey:SenderID" json:"-"`
	Receiver User `gorm:"foreignKey:ReceiverID" json:"-"`
}

func (Message) TableName() string {
	return "messages"
}
