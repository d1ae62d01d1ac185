package service

import (
	"context"
	"encoding/json"

	"zoodate/internal/domain"
	"zoodate/internal/models"
	"zoodate/internal/repository"
)

// NotificationService persists notification rows and mirrors them as FCM
// pushes when the recipient has a registered token.
type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	fcm      *FCMService
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, fcm *FCMService) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, fcm: fcm}
}

func (s *NotificationService) Notify(ctx context.Context, userID uint, notifType, title, body string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	err := s.repo.Create(ctx, &models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	})
	if err != nil {
		return err
	}
	s.sendPush(ctx, userID, title, body, data)
	return nil
}

func (s *NotificationService) sendPush(ctx context.Context, userID uint, title, body string, data map[string]interface{}) {
	if s.fcm == nil || s.userRepo == nil {
		return
	}
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || u == nil || u.FCMToken == "" {
		return
	}
	payload := make(map[string]string, len(data))
	for k, v := range data {
		if str, ok := v.(string); ok {
			payload[k] = str
		} else {
			b, _ := json.Marshal(v)
			payload[k] = string(b)
		}
	}
	_ = s.fcm.Send(ctx, u.FCMToken, title, body, payload)
}

// NotifyNewMatch tells the owner of a matched pet a conversation opened.
func (s *NotificationService) NotifyNewMatch(ctx context.Context, userID, matchID uint, otherPetName string) error {
	return s.Notify(ctx, userID, domain.NotificationNewMatch, "It's a match!",
		"You matched with "+otherPetName+". Say hi!",
		map[string]interface{}{"match_id": matchID})
}

// NotifyNewMessage tells the recipient's owner a chat message arrived while
// they were away from the conversation.
func (s *NotificationService) NotifyNewMessage(ctx context.Context, userID, matchID uint, senderName, preview string) error {
	return s.Notify(ctx, userID, domain.NotificationNewMessage, senderName,
		preview,
		map[string]interface{}{"match_id": matchID})
}
