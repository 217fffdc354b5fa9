package service

import (
	"context"
	"fmt"
	"log"

	"automarket/internal/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMService sends push notifications via Firebase Cloud Messaging.
type FCMService struct {
	client *messaging.Client
}

// NewFCMService creates an FCM service. Returns nil if Firebase is not configured.
func NewFCMService(serviceAccountPath string) *FCMService {
	if serviceAccountPath == "" {
		return nil
	}
	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		log.Printf("[FCM] Failed to init Firebase app: %v", err)
		return nil
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		log.Printf("[FCM] Failed to get Messaging client: %v", err)
		return nil
	}
	return &FCMService{client: client}
}

// Send sends a push notification to the given FCM token.
func (s *FCMService) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if s == nil || token == "" {
		return nil
	}
	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:  data,
		Token: token,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
	if _, err := s.client.Send(ctx, msg); err != nil {
		log.Printf("[FCM] Send error: %v", err)
		return err
	}
	return nil
}

// Push implements Pusher. Users without a registered device token are skipped.
func (s *FCMService) Push(ctx context.Context, u *models.User, n *models.Notification) {
	if s == nil || u == nil || u.FCMToken == "" {
		return
	}
	// FCM data values must be strings.
	data := map[string]string{
		"category":        n.Category,
		"link":            n.Link,
		"notification_id": fmt.Sprintf("%d", n.ID),
	}
	_ = s.Send(ctx, u.FCMToken, n.Title, n.Body, data)
}
