package repository

import (
	"dojolibre/internal/models"

	"gorm.io/gorm"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) Create(p *models.SubscriptionPlan) error {
	return r.db.Create(p).Error
}

func (r *PlanRepository) GetByID(id uint) (*models.SubscriptionPlan, error) {
	var p models.SubscriptionPlan
	err := r.db.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlanRepository) GetByTier(tier string) (*models.SubscriptionPlan, error) {
	var p models.SubscriptionPlan
	err := r.db.Where("tier = ?", tier).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all plans; activeOnly narrows to plans currently offered.
func (r *PlanRepository) List(activeOnly bool) ([]models.SubscriptionPlan, error) {
	var list []models.SubscriptionPlan
	q := r.db.Order("price ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *PlanRepository) Update(p *models.SubscriptionPlan) error {
	return r.db.Save(p).Error
}

func (r *PlanRepository) Delete(id uint) error {
	return r.db.Delete(&models.SubscriptionPlan{}, id).Error
}
