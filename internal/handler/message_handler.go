package handler

import (
	"errors"
	"net/http"

	"dojolibre/internal/middleware"
	"dojolibre/internal/models"
	"dojolibre/internal/repository"
	"dojolibre/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MessageHandler struct {
	repo       *repository.MessageRepository
	followRepo *repository.FollowRepository
	userRepo   *repository.UserRepository
	notifier   *service.NotificationService
	pusher     service.EventPusher
}

func NewMessageHandler(repo *repository.MessageRepository, followRepo *repository.FollowRepository, userRepo *repository.UserRepository, notifier *service.NotificationService, pusher service.EventPusher) *MessageHandler {
	return &MessageHandler{repo: repo, followRepo: followRepo, userRepo: userRepo, notifier: notifier, pusher: pusher}
}

type SendMessageRequest struct {
	ReceiverID uint   `json:"receiver_id" binding:"required"`
	Body       string `json:"body" binding:"required,max=4000"`
}

// Send delivers a direct message. Blocked pairs cannot message in either
// direction.
func (h *MessageHandler) Send(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	senderID := middleware.GetUserID(c)
	if req.ReceiverID == senderID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot message yourself"})
		return
	}
	receiver, err := h.userRepo.GetByID(req.ReceiverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "recipient not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load recipient"})
		return
	}
	blocked, err := h.followRepo.IsBlocked(senderID, receiver.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check block state"})
		return
	}
	if blocked {
		c.JSON(http.StatusForbidden, gin.H{"error": "messaging is not available with this user"})
		return
	}
	msg := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiver.ID,
		Body:       req.Body,
	}
	if err := h.repo.Create(msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}
	if h.pusher != nil {
		h.pusher.PushToUser(receiver.ID, gin.H{"type": "message", "message": msg})
	}
	if h.notifier != nil {
		sender, err := h.userRepo.GetByID(senderID)
		name := "Someone"
		if err == nil {
			name = sender.Name
		}
		_ = h.notifier.NotifyNewMessage(receiver.ID, name, msg.ID, senderID)
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// Conversation returns the two-way message history with another user,
// oldest first.
func (h *MessageHandler) Conversation(c *gin.Context) {
	otherID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	limit, offset := pagination(c)
	list, err := h.repo.Conversation(middleware.GetUserID(c), otherID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return
	}
	if list == nil {
		list = []models.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": list})
}

// MarkRead marks one message read; only its receiver may do so.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}
	if err := h.repo.MarkRead(id, middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *MessageHandler) UnreadCount(c *gin.Context) {
	n, err := h.repo.UnreadCount(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count unread"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": n})
}
