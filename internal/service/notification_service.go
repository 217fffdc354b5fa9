package service

import (
	"context"
	"log"
	"time"

	"automarket/internal/domain"
	"automarket/internal/models"
	"automarket/internal/repository"
	"automarket/internal/ws"
)

// Pusher delivers an already persisted notification to a live channel.
// Delivery is best-effort and never reports failure to the caller.
type Pusher interface {
	Push(ctx context.Context, u *models.User, n *models.Notification)
}

// HubPusher forwards notifications to the user's open websocket sessions.
type HubPusher struct {
	Hub *ws.Hub
}

func (p HubPusher) Push(_ context.Context, u *models.User, n *models.Notification) {
	if p.Hub == nil {
		return
	}
	p.Hub.SendToUser(u.ID, map[string]interface{}{
		"type":         "notification",
		"notification": n,
	})
}

type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	pushers  []Pusher
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, pushers ...Pusher) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, pushers: pushers}
}

// Notify persists one unread notification per active recipient in a single
// batch, then pushes each one. Inactive recipients are skipped silently.
func (s *NotificationService) Notify(recipients []models.User, category, title, body, link string) error {
	now := time.Now()
	list := make([]models.Notification, 0, len(recipients))
	targets := make([]*models.User, 0, len(recipients))
	for i := range recipients {
		u := &recipients[i]
		if u.ID == 0 || !u.IsActive {
			continue
		}
		list = append(list, models.Notification{
			UserID:    u.ID,
			Category:  category,
			Title:     title,
			Body:      body,
			Link:      link,
			CreatedAt: now,
		})
		targets = append(targets, u)
	}
	if len(list) == 0 {
		return nil
	}
	if err := s.repo.CreateBatch(list); err != nil {
		return persistErr("notify", err)
	}
	ctx := context.Background()
	for i := range list {
		for _, p := range s.pushers {
			p.Push(ctx, targets[i], &list[i])
		}
	}
	return nil
}

// NotifyStaff notifies every active staff account.
func (s *NotificationService) NotifyStaff(category, title, body string) error {
	staff, err := s.StaffUsers()
	if err != nil {
		return err
	}
	return s.Notify(staff, category, title, body, domain.DashboardLink)
}

// StaffUsers returns the active staff accounts.
func (s *NotificationService) StaffUsers() ([]models.User, error) {
	list, err := s.userRepo.ListActiveStaff()
	if err != nil {
		return nil, persistErr("list staff", err)
	}
	return list, nil
}

// ActiveUsersExcept returns every active account except excludeID.
func (s *NotificationService) ActiveUsersExcept(excludeID uint) ([]models.User, error) {
	list, err := s.userRepo.ListActiveExcept(excludeID)
	if err != nil {
		return nil, persistErr("list users", err)
	}
	return list, nil
}

// Inbox returns the latest notifications as they were, then marks all of them read.
func (s *NotificationService) Inbox(userID uint) ([]models.Notification, error) {
	list, err := s.repo.ListByUserID(userID, domain.InboxLimit, 0)
	if err != nil {
		return nil, persistErr("list notifications", err)
	}
	if err := s.MarkAllRead(userID); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *NotificationService) Latest(userID uint, limit int) ([]models.Notification, error) {
	list, err := s.repo.ListByUserID(userID, limit, 0)
	if err != nil {
		return nil, persistErr("list notifications", err)
	}
	return list, nil
}

// MarkAllRead is idempotent: rows already read are not touched again.
func (s *NotificationService) MarkAllRead(userID uint) error {
	n, err := s.repo.MarkAllRead(userID)
	if err != nil {
		return persistErr("mark all read", err)
	}
	if n > 0 {
		log.Printf("[notify] user %d marked %d notifications read", userID, n)
	}
	return nil
}

func (s *NotificationService) MarkRead(id, userID uint) error {
	if err := s.repo.MarkRead(id, userID); err != nil {
		return persistErr("mark read", err)
	}
	return nil
}

func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	n, err := s.repo.CountUnread(userID)
	if err != nil {
		return 0, persistErr("count unread", err)
	}
	return n, nil
}
