package repository

import (
	"errors"

	"automarket/internal/models"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Upsert stores the user's review of a listing. Resubmitting replaces rating
// and comment and sends the review back to moderation.
func (r *ReviewRepository) Upsert(listingID, userID uint, rating int, comment string) (*models.Review, bool, error) {
	var rv models.Review
	created := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("listing_id = ? AND user_id = ?", listingID, userID).First(&rv).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rv = models.Review{ListingID: listingID, UserID: userID, Rating: rating, Comment: comment}
			created = true
			return tx.Omit("User").Create(&rv).Error
		}
		if err != nil {
			return err
		}
		rv.Rating = rating
		rv.Comment = comment
		rv.Approved = false
		return tx.Model(&rv).Select("rating", "comment", "approved").Updates(&rv).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &rv, created, nil
}

func (r *ReviewRepository) GetByID(id uint) (*models.Review, error) {
	var rv models.Review
	err := r.db.First(&rv, id).Error
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepository) ListApprovedByListing(listingID uint) ([]models.Review, error) {
	var list []models.Review
	err := r.db.Where("listing_id = ? AND approved = ?", listingID, true).Preload("User").
		Order("created_at DESC, id DESC").Find(&list).Error
	return list, err
}

func (r *ReviewRepository) ListPending(limit int) ([]models.Review, error) {
	var list []models.Review
	err := r.db.Where("approved = ?", false).Preload("User").
		Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *ReviewRepository) SetApproved(id uint, approved bool) error {
	res := r.db.Model(&models.Review{}).Where("id = ?", id).Update("approved", approved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// MySQL reports 0 for rows that already had the value.
		var c int64
		if err := r.db.Model(&models.Review{}).Where("id = ?", id).Count(&c).Error; err != nil {
			return err
		}
		if c == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}
