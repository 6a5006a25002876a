package repository

import (
	"dojolibre/internal/models"

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

// List returns a page of users with optional role filter, newest first.
func (r *UserRepository) List(role string, limit, offset int) ([]models.User, error) {
	var list []models.User
	q := r.db.Order("created_at DESC").Limit(limit).Offset(offset)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *UserRepository) Count(role string) (int64, error) {
	var n int64
	q := r.db.Model(&models.User{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	err := q.Count(&n).Error
	return n, err
}
