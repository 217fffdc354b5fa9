package repository

import (
	"time"

	"automarket/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateBatch inserts all rows in a single statement. An empty slice is a no-op.
func (r *NotificationRepository) CreateBatch(list []models.Notification) error {
	if len(list) == 0 {
		return nil
	}
	return r.db.Omit(clause.Associations).Create(&list).Error
}

func (r *NotificationRepository) ListByUserID(userID uint, limit, offset int) ([]models.Notification, error) {
	var list []models.Notification
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *NotificationRepository) MarkRead(id, userID uint) error {
	return r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND is_read = ?", id, userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()}).Error
}

// MarkAllRead flips every unread row of the user; rows already read are untouched.
func (r *NotificationRepository) MarkAllRead(userID uint) (int64, error) {
	res := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})
	return res.RowsAffected, res.Error
}

func (r *NotificationRepository) CountUnread(userID uint) (int64, error) {
	var c int64
	err := r.db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&c).Error
	return c, err
}
