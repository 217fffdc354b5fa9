package repository

import (
	"errors"

	"automarket/internal/models"

	"gorm.io/gorm"
)

type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Toggle adds the favorite when absent and removes it when present.
// It reports whether the listing is a favorite afterwards.
func (r *FavoriteRepository) Toggle(userID, listingID uint) (bool, error) {
	var added bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var f models.Favorite
		err := tx.Where("user_id = ? AND listing_id = ?", userID, listingID).First(&f).Error
		if err == nil {
			added = false
			return tx.Delete(&f).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		added = true
		return tx.Omit("User", "Listing").Create(&models.Favorite{UserID: userID, ListingID: listingID}).Error
	})
	return added, err
}

func (r *FavoriteRepository) IsFavorite(userID, listingID uint) (bool, error) {
	var c int64
	err := r.db.Model(&models.Favorite{}).Where("user_id = ? AND listing_id = ?", userID, listingID).Count(&c).Error
	return c > 0, err
}

func (r *FavoriteRepository) ListByUserID(userID uint) ([]models.Favorite, error) {
	var list []models.Favorite
	err := r.db.Where("user_id = ?", userID).Preload("Listing.CarModel.Brand").
		Order("created_at DESC, id DESC").Find(&list).Error
	return list, err
}
