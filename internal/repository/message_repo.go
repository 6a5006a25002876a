package repository

import (
	"fmt"
	"time"

	"dojolibre/internal/models"

	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// ConversationKey builds the pair key used to index both directions of a
// conversation.
func ConversationKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d-%d", a, b)
}

func (r *MessageRepository) Create(m *models.Message) error {
	m.ConversationKey = ConversationKey(m.SenderID, m.ReceiverID)
	return r.db.Create(m).Error
}

// Conversation returns messages between the two users, oldest first.
func (r *MessageRepository) Conversation(a, b uint, limit, offset int) ([]models.Message, error) {
	var list []models.Message
	err := r.db.Where("conversation_key = ?", ConversationKey(a, b)).
		Order("created_at ASC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// MarkRead marks a message read; only the receiver may do so.
func (r *MessageRepository) MarkRead(id, receiverID uint) error {
	now := time.Now()
	return r.db.Model(&models.Message{}).
		Where("id = ? AND receiver_id = ?", id, receiverID).
		Update("read_at", now).Error
}

func (r *MessageRepository) UnreadCount(receiverID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Message{}).
		Where("receiver_id = ? AND read_at IS NULL", receiverID).
		Count(&n).Error
	return n, err
}
