package service

import (
	"context"
	"encoding/json"

	"dojolibre/internal/domain"
	"dojolibre/internal/models"
	"dojolibre/internal/repository"
)

// EventPusher fans a payload out to a user's live WebSocket connections.
type EventPusher interface {
	PushToUser(userID uint, payload interface{})
}

type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	pusher   EventPusher
	fcm      *FCMService
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, pusher EventPusher, fcm *FCMService) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, pusher: pusher, fcm: fcm}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body, link string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	n := &models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Link:   link,
		Data:   dataJSON,
	}
	if err := s.repo.Create(n); err != nil {
		return err
	}
	if s.pusher != nil {
		s.pusher.PushToUser(userID, map[string]interface{}{"type": "notification", "notification": n})
	}
	s.sendPush(userID, notifType, title, body, data)
	return nil
}

func (s *NotificationService) sendPush(userID uint, notifType, title, body string, data map[string]interface{}) {
	if s.fcm == nil || s.userRepo == nil {
		return
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil || u == nil || u.FCMToken == "" {
		return
	}
	_ = s.fcm.SendToUser(context.Background(), u.FCMToken, notifType, title, body, data)
}

func (s *NotificationService) NotifyCheckIn(userID uint, locationName string, locationID uint) error {
	return s.Notify(userID, domain.NotificationCheckIn, "Check-in Confirmed",
		"Successfully checked in at "+locationName, "/locations",
		map[string]interface{}{"location_id": locationID})
}

func (s *NotificationService) NotifyNewMessage(receiverID uint, senderName string, messageID, senderID uint) error {
	return s.Notify(receiverID, domain.NotificationMessage, "New Message",
		senderName+" sent you a message", "/messages",
		map[string]interface{}{"sender_id": senderID, "message_id": messageID})
}

func (s *NotificationService) NotifyNewFollower(followeeID uint, followerName string, followerID uint) error {
	return s.Notify(followeeID, domain.NotificationFollow, "New Follower",
		followerName+" started following you", "/profile",
		map[string]interface{}{"sender_id": followerID})
}

func (s *NotificationService) NotifyBilling(userID uint, description string, billingID uint) error {
	return s.Notify(userID, domain.NotificationBilling, "Billing Update",
		description, "/billing",
		map[string]interface{}{"billing_id": billingID})
}
