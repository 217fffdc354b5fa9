package repository

import (
	"automarket/internal/models"

	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(m *models.Message) error {
	return r.db.Omit("Sender", "Recipient").Create(m).Error
}

func (r *MessageRepository) ListReceived(userID uint) ([]models.Message, error) {
	var list []models.Message
	err := r.db.Where("recipient_id = ?", userID).Preload("Sender").Order("created_at DESC, id DESC").Find(&list).Error
	return list, err
}

func (r *MessageRepository) ListSent(userID uint) ([]models.Message, error) {
	var list []models.Message
	err := r.db.Where("sender_id = ?", userID).Preload("Recipient").Order("created_at DESC, id DESC").Find(&list).Error
	return list, err
}

func (r *MessageRepository) MarkReceivedRead(userID uint) error {
	return r.db.Model(&models.Message{}).Where("recipient_id = ? AND is_read = ?", userID, false).Update("is_read", true).Error
}
