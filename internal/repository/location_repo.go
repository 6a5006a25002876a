package repository

import (
	"time"

	"dojolibre/internal/models"

	"gorm.io/gorm"
)

// LocationFilters narrows List the way the admin and partner screens do.
type LocationFilters struct {
	PartnerID   uint
	CreatedByID uint
	CreatorRole string
}

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) Create(loc *models.Location) error {
	return r.db.Create(loc).Error
}

func (r *LocationRepository) GetByID(id uint) (*models.Location, error) {
	var loc models.Location
	err := r.db.First(&loc, id).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *LocationRepository) List(f LocationFilters) ([]models.Location, error) {
	var list []models.Location
	q := r.db.Order("name ASC")
	if f.PartnerID != 0 {
		q = q.Where("partner_id = ?", f.PartnerID)
	}
	if f.CreatedByID != 0 {
		q = q.Where("created_by_id = ?", f.CreatedByID)
	}
	if f.CreatorRole != "" {
		q = q.Where("creator_role = ?", f.CreatorRole)
	}
	err := q.Find(&list).Error
	return list, err
}

// UpdateFields applies a partial merge and bumps updated_at even when gorm
// would consider the map a no-op.
func (r *LocationRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	return r.db.Model(&models.Location{}).Where("id = ?", id).Updates(fields).Error
}

// Delete soft-deletes the location. Attendance history referencing it is
// retained (orphan-and-ignore).
func (r *LocationRepository) Delete(id uint) error {
	return r.db.Delete(&models.Location{}, id).Error
}
