package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"automarket/internal/domain"
	"automarket/internal/models"
	"automarket/internal/repository"

	"gorm.io/gorm"
)

const (
	TabReceived = "received"
	TabSent     = "sent"
)

type MessageService struct {
	repo     *repository.MessageRepository
	listings *repository.ListingRepository
	notifier *NotificationService
}

func NewMessageService(repo *repository.MessageRepository, listings *repository.ListingRepository, notifier *NotificationService) *MessageService {
	return &MessageService{repo: repo, listings: listings, notifier: notifier}
}

// ContactSeller sends body to the seller of a listing and notifies them.
func (s *MessageService) ContactSeller(listingID, senderID uint, body string) (*models.Message, error) {
	l, err := s.listings.GetByID(listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, persistErr("load listing", err)
	}
	if l.SellerID == senderID {
		return nil, ErrSelfMessage
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	lid := l.ID
	m := &models.Message{
		SenderID:    senderID,
		RecipientID: l.SellerID,
		ListingID:   &lid,
		Subject:     fmt.Sprintf("Annonce #%d — %s", l.ID, l.CarModel.FullName()),
		Body:        body,
	}
	if err := s.repo.Create(m); err != nil {
		return nil, persistErr("create message", err)
	}
	if err := s.notifier.Notify([]models.User{l.Seller}, domain.NotifMessage,
		"Nouveau message",
		fmt.Sprintf("Message reçu pour l'annonce #%d.", l.ID),
		l.URL()); err != nil {
		log.Printf("[message] notify seller failed: %v", err)
	}
	return m, nil
}

// Mailbox lists one tab. Opening the received tab marks those messages read;
// the returned rows still carry their previous read state.
func (s *MessageService) Mailbox(userID uint, tab string) ([]models.Message, error) {
	if tab == TabSent {
		list, err := s.repo.ListSent(userID)
		if err != nil {
			return nil, persistErr("list sent", err)
		}
		return list, nil
	}
	list, err := s.repo.ListReceived(userID)
	if err != nil {
		return nil, persistErr("list received", err)
	}
	if err := s.repo.MarkReceivedRead(userID); err != nil {
		return nil, persistErr("mark messages read", err)
	}
	return list, nil
}
