package repository

import (
	"automarket/internal/models"

	"gorm.io/gorm"
)

// BrandStat is a brand with the number of live listings across its models.
type BrandStat struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Country      string `json:"country"`
	LogoURL      string `json:"logo_url"`
	ListingCount int64  `json:"listing_count"`
}

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) CreateBrand(b *models.Brand) error {
	return r.db.Create(b).Error
}

func (r *CatalogRepository) GetBrand(id uint) (*models.Brand, error) {
	var b models.Brand
	err := r.db.First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *CatalogRepository) UpdateBrandLogo(id uint, url string) error {
	return r.db.Model(&models.Brand{}).Where("id = ?", id).Update("logo_url", url).Error
}

func (r *CatalogRepository) brandStats() *gorm.DB {
	return r.db.Table("brands").
		Select("brands.id, brands.name, brands.country, brands.logo_url, COUNT(listings.id) AS listing_count").
		Joins("LEFT JOIN car_models ON car_models.brand_id = brands.id").
		Joins("LEFT JOIN listings ON listings.car_model_id = car_models.id AND listings.deleted_at IS NULL").
		Group("brands.id, brands.name, brands.country, brands.logo_url")
}

// ListBrands returns all brands ordered by name with their listing counts.
func (r *CatalogRepository) ListBrands() ([]BrandStat, error) {
	var list []BrandStat
	err := r.brandStats().Order("brands.name ASC").Scan(&list).Error
	return list, err
}

// PopularBrands returns the brands with the most listings.
func (r *CatalogRepository) PopularBrands(limit int) ([]BrandStat, error) {
	var list []BrandStat
	err := r.brandStats().Order("listing_count DESC, brands.name ASC").Limit(limit).Scan(&list).Error
	return list, err
}

func (r *CatalogRepository) ListModelsByBrand(brandID uint) ([]models.CarModel, error) {
	var list []models.CarModel
	err := r.db.Where("brand_id = ?", brandID).Order("name ASC").Find(&list).Error
	return list, err
}

func (r *CatalogRepository) CreateModel(m *models.CarModel) error {
	return r.db.Omit("Brand").Create(m).Error
}

// GetOrCreateModel finds the brand's model by exact name, creating it from defaults when absent.
func (r *CatalogRepository) GetOrCreateModel(brandID uint, name string, defaults models.CarModel) (*models.CarModel, error) {
	var m models.CarModel
	defaults.BrandID = brandID
	defaults.Name = name
	err := r.db.Omit("Brand").Where(models.CarModel{BrandID: brandID, Name: name}).Attrs(defaults).FirstOrCreate(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}
