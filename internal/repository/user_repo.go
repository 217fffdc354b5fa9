package repository

import (
	"automarket/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	err := r.db.First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var u models.User
	err := r.db.Where("username = ?", username).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByGoogleID(googleID string) (*models.User, error) {
	var u models.User
	err := r.db.Where("google_id = ?", googleID).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Update(u *models.User) error {
	return r.db.Save(u).Error
}

func (r *UserRepository) SetFCMToken(userID uint, token string) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).Update("fcm_token", token).Error
}

// ListActiveStaff returns every active staff account (recipients of operational notifications).
func (r *UserRepository) ListActiveStaff() ([]models.User, error) {
	var list []models.User
	err := r.db.Where("is_staff = ? AND is_active = ?", true, true).Find(&list).Error
	return list, err
}

// ListActiveExcept returns every active account other than excludeID.
func (r *UserRepository) ListActiveExcept(excludeID uint) ([]models.User, error) {
	var list []models.User
	err := r.db.Where("is_active = ? AND id <> ?", true, excludeID).Find(&list).Error
	return list, err
}
