package repository

import (
	"strings"

	"automarket/internal/domain"
	"automarket/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListingFilter drives the public search. Zero values disable a filter.
type ListingFilter struct {
	Query    string
	BrandID  uint
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
	YearMin  int
	YearMax  int
	Status   string // reserved | available
	Sort     string
	Page     int
	PageSize int
}

type ListingPage struct {
	Listings     []models.Listing `json:"listings"`
	Total        int64            `json:"total"`
	Page         int              `json:"page"`
	PageSize     int              `json:"page_size"`
	AveragePrice decimal.Decimal  `json:"average_price"`
}

// SellerStats backs the "my listings" summary.
type SellerStats struct {
	OnSale         int64 `json:"on_sale"`
	Sold           int64 `json:"sold"`
	TotalFavorites int64 `json:"total_favorites"`
}

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(l *models.Listing) error {
	return r.db.Omit(clause.Associations).Create(l).Error
}

func (r *ListingRepository) GetByID(id uint) (*models.Listing, error) {
	var l models.Listing
	err := r.db.Preload("CarModel.Brand").Preload("Seller").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		First(&l, id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateFields applies a partial update; only the given columns change.
func (r *ListingRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	return r.db.Model(&models.Listing{}).Where("id = ?", id).Updates(fields).Error
}

func (r *ListingRepository) Delete(id uint) error {
	return r.db.Delete(&models.Listing{}, id).Error
}

// IncrementViews bumps the counter in place without touching updated_at.
func (r *ListingRepository) IncrementViews(id uint) error {
	return r.db.Model(&models.Listing{}).Where("id = ?", id).UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

func (r *ListingRepository) AddImage(img *models.ListingImage) error {
	return r.db.Create(img).Error
}

func (r *ListingRepository) filtered(f ListingFilter) *gorm.DB {
	q := r.db.Model(&models.Listing{}).
		Joins("JOIN car_models ON car_models.id = listings.car_model_id").
		Joins("JOIN brands ON brands.id = car_models.brand_id").
		Where("listings.sold = ?", false)
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(car_models.name) LIKE ? OR LOWER(brands.name) LIKE ? OR LOWER(listings.description) LIKE ?)", like, like, like)
	}
	if f.BrandID != 0 {
		q = q.Where("car_models.brand_id = ?", f.BrandID)
	}
	if f.PriceMin != nil {
		q = q.Where("listings.price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		q = q.Where("listings.price <= ?", *f.PriceMax)
	}
	if f.YearMin != 0 {
		q = q.Where("listings.year >= ?", f.YearMin)
	}
	if f.YearMax != 0 {
		q = q.Where("listings.year <= ?", f.YearMax)
	}
	switch f.Status {
	case domain.ListingStatusReserved:
		q = q.Where("listings.reserved = ?", true)
	case domain.ListingStatusAvailable:
		q = q.Where("listings.reserved = ?", false)
	}
	return q
}

func sortOrder(sort string) string {
	switch sort {
	case domain.SortPriceAsc:
		return "listings.price ASC, listings.id ASC"
	case domain.SortPriceDesc:
		return "listings.price DESC, listings.id DESC"
	case domain.SortYearDesc:
		return "listings.year DESC, listings.id DESC"
	case domain.SortKmAsc:
		return "listings.mileage ASC, listings.id ASC"
	default:
		return "listings.created_at DESC, listings.id DESC"
	}
}

// Search returns one page of unsold listings plus the total and average price of the whole filtered set.
func (r *ListingRepository) Search(f ListingFilter) (*ListingPage, error) {
	if f.PageSize <= 0 {
		f.PageSize = domain.ListingPageSize
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	page := &ListingPage{Page: f.Page, PageSize: f.PageSize, Listings: []models.Listing{}}
	if err := r.filtered(f).Count(&page.Total).Error; err != nil {
		return nil, err
	}
	var agg struct{ Avg decimal.Decimal }
	if err := r.filtered(f).Select("COALESCE(AVG(listings.price), 0) AS avg").Scan(&agg).Error; err != nil {
		return nil, err
	}
	page.AveragePrice = agg.Avg.Round(2)
	err := r.filtered(f).Select("listings.*").
		Preload("CarModel.Brand").Preload("Seller").
		Order(sortOrder(f.Sort)).
		Limit(f.PageSize).Offset((f.Page - 1) * f.PageSize).
		Find(&page.Listings).Error
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Similar returns unsold listings of the same brand, excluding the listing itself.
func (r *ListingRepository) Similar(l *models.Listing, limit int) ([]models.Listing, error) {
	var list []models.Listing
	err := r.db.Model(&models.Listing{}).Select("listings.*").
		Joins("JOIN car_models ON car_models.id = listings.car_model_id").
		Where("car_models.brand_id = ? AND listings.sold = ? AND listings.id <> ?", l.CarModel.BrandID, false, l.ID).
		Preload("CarModel.Brand").
		Order("listings.created_at DESC, listings.id DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *ListingRepository) Recent(limit int) ([]models.Listing, error) {
	var list []models.Listing
	err := r.db.Where("sold = ?", false).Preload("CarModel.Brand").
		Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *ListingRepository) Cheapest(limit int) ([]models.Listing, error) {
	var list []models.Listing
	err := r.db.Where("sold = ?", false).Preload("CarModel.Brand").
		Order("price ASC, id ASC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *ListingRepository) CountAvailable() (int64, error) {
	var c int64
	err := r.db.Model(&models.Listing{}).Where("sold = ?", false).Count(&c).Error
	return c, err
}

func (r *ListingRepository) ListBySeller(sellerID uint) ([]models.Listing, error) {
	var list []models.Listing
	err := r.db.Where("seller_id = ?", sellerID).Preload("CarModel.Brand").
		Order("created_at DESC, id DESC").Find(&list).Error
	return list, err
}

func (r *ListingRepository) SellerStats(sellerID uint) (*SellerStats, error) {
	var s SellerStats
	if err := r.db.Model(&models.Listing{}).Where("seller_id = ? AND sold = ?", sellerID, false).Count(&s.OnSale).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Listing{}).Where("seller_id = ? AND sold = ?", sellerID, true).Count(&s.Sold).Error; err != nil {
		return nil, err
	}
	err := r.db.Model(&models.Favorite{}).
		Joins("JOIN listings ON listings.id = favorites.listing_id AND listings.deleted_at IS NULL").
		Where("listings.seller_id = ?", sellerID).Count(&s.TotalFavorites).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
