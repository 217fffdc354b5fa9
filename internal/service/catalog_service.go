package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"automarket/internal/models"
	"automarket/internal/repository"
	"automarket/pkg/cloudinary"

	"gorm.io/gorm"
)

var ErrDuplicate = errors.New("already exists")

type CatalogService struct {
	repo     *repository.CatalogRepository
	uploader ImageUploader
	folder   string
}

func NewCatalogService(repo *repository.CatalogRepository, uploader ImageUploader, folder string) *CatalogService {
	return &CatalogService{repo: repo, uploader: uploader, folder: folder}
}

func (s *CatalogService) Brands() ([]repository.BrandStat, error) {
	list, err := s.repo.ListBrands()
	if err != nil {
		return nil, persistErr("list brands", err)
	}
	return list, nil
}

func (s *CatalogService) Models(brandID uint) ([]models.CarModel, error) {
	if _, err := s.brand(brandID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListModelsByBrand(brandID)
	if err != nil {
		return nil, persistErr("list models", err)
	}
	return list, nil
}

func (s *CatalogService) brand(id uint) (*models.Brand, error) {
	b, err := s.repo.GetBrand(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, persistErr("load brand", err)
	}
	return b, nil
}

func (s *CatalogService) CreateBrand(b *models.Brand) error {
	b.Name = strings.TrimSpace(b.Name)
	if err := s.repo.CreateBrand(b); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return ErrDuplicate
		}
		return persistErr("create brand", err)
	}
	return nil
}

func (s *CatalogService) CreateModel(brandID uint, m *models.CarModel) error {
	if _, err := s.brand(brandID); err != nil {
		return err
	}
	m.BrandID = brandID
	m.Name = strings.TrimSpace(m.Name)
	if err := s.repo.CreateModel(m); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return ErrDuplicate
		}
		return persistErr("create model", err)
	}
	return nil
}

// UploadLogo stores a brand logo and records its URL.
func (s *CatalogService) UploadLogo(ctx context.Context, brandID uint, file io.Reader) (*models.Brand, error) {
	b, err := s.brand(brandID)
	if err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, errors.New("image storage not configured")
	}
	url, _, err := s.uploader.UploadImage(ctx, file, fmt.Sprintf("%s/brands", s.folder), cloudinary.NewPublicID("logo"))
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBrandLogo(b.ID, url); err != nil {
		return nil, persistErr("update logo", err)
	}
	b.LogoURL = url
	return b, nil
}

// isUniqueViolation covers drivers that do not translate errors into gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate entry")
}
