package repository

import (
	"dojolibre/internal/models"

	"gorm.io/gorm"
)

type BillingRepository struct {
	db *gorm.DB
}

func NewBillingRepository(db *gorm.DB) *BillingRepository {
	return &BillingRepository{db: db}
}

func (r *BillingRepository) Create(b *models.BillingRecord) error {
	return r.db.Create(b).Error
}

func (r *BillingRepository) ListByUserID(userID uint, limit, offset int) ([]models.BillingRecord, error) {
	var list []models.BillingRecord
	err := r.db.Preload("Plan").Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *BillingRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.BillingRecord{}).Where("id = ?", id).Update("status", status).Error
}

// TotalPaidCents totals paid billing across the given users. Display-only
// figure for the partner dashboard.
func (r *BillingRepository) TotalPaidCents(userIDs []uint) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	var total int64
	err := r.db.Model(&models.BillingRecord{}).
		Where("user_id IN ? AND status = ?", userIDs, "PAID").
		Select("COALESCE(SUM(amount_cents), 0)").Scan(&total).Error
	return total, err
}
