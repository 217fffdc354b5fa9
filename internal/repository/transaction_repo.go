package repository

import (
	"automarket/internal/domain"
	"automarket/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) GetByID(id uint) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.Preload("Listing.CarModel.Brand").Preload("Buyer").Preload("Seller").First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Reserve flips the listing to reserved only if it is still unsold and
// unreserved, then records a pending transaction at the listing's current
// price. Both writes commit together; concurrent callers cannot both win.
func (r *TransactionRepository) Reserve(listingID, buyerID uint) (*models.Transaction, error) {
	var created *models.Transaction
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Listing{}).
			Where("id = ? AND sold = ? AND reserved = ?", listingID, false, false).
			Update("reserved", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var cur models.Listing
			if err := tx.Select("id", "sold", "reserved").First(&cur, listingID).Error; err != nil {
				return err
			}
			if cur.Sold {
				return ErrListingSold
			}
			return ErrListingReserved
		}
		var l models.Listing
		if err := tx.Select("id", "seller_id", "price").First(&l, listingID).Error; err != nil {
			return err
		}
		t := &models.Transaction{
			ListingID:  l.ID,
			BuyerID:    buyerID,
			SellerID:   l.SellerID,
			FinalPrice: l.Price,
			Status:     domain.TxStatusPending,
		}
		if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Confirm moves a pending transaction owned by sellerID to confirmed and marks
// its listing sold with the reservation cleared, in one database transaction.
func (r *TransactionRepository) Confirm(id, sellerID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND seller_id = ? AND status = ?", id, sellerID, domain.TxStatusPending).
			Update("status", domain.TxStatusConfirmed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTransactionNotPending
		}
		var t models.Transaction
		if err := tx.Select("id", "listing_id").First(&t, id).Error; err != nil {
			return err
		}
		return tx.Model(&models.Listing{}).Unscoped().
			Where("id = ?", t.ListingID).
			Updates(map[string]interface{}{"sold": true, "reserved": false}).Error
	})
}

func (r *TransactionRepository) ListByBuyer(buyerID uint) ([]models.Transaction, error) {
	var list []models.Transaction
	err := r.db.Where("buyer_id = ?", buyerID).
		Preload("Listing.CarModel.Brand").Preload("Seller").
		Order("created_at DESC, id DESC").Find(&list).Error
	return list, err
}

func (r *TransactionRepository) ListBySeller(sellerID uint) ([]models.Transaction, error) {
	var list []models.Transaction
	err := r.db.Where("seller_id = ?", sellerID).
		Preload("Listing.CarModel.Brand").Preload("Buyer").
		Order("created_at DESC, id DESC").Find(&list).Error
	return list, err
}
