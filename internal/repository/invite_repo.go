package repository

import (
	"errors"
	"time"

	"dojolibre/internal/models"

	"gorm.io/gorm"
)

type InviteRepository struct {
	db *gorm.DB
}

func NewInviteRepository(db *gorm.DB) *InviteRepository {
	return &InviteRepository{db: db}
}

func (r *InviteRepository) Create(inv *models.AdminInvite) error {
	return r.db.Create(inv).Error
}

func (r *InviteRepository) GetByToken(token string) (*models.AdminInvite, error) {
	var inv models.AdminInvite
	err := r.db.Where("token = ?", token).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InviteRepository) List(limit, offset int) ([]models.AdminInvite, error) {
	var list []models.AdminInvite
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *InviteRepository) MarkUsed(id uint) error {
	now := time.Now()
	return r.db.Model(&models.AdminInvite{}).Where("id = ?", id).Update("used_at", now).Error
}

func (r *InviteRepository) Revoke(id uint) error {
	return r.db.Delete(&models.AdminInvite{}, id).Error
}
