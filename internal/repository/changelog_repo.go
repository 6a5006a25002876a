package repository

import (
	"time"

	"dojolibre/internal/models"

	"gorm.io/gorm"
)

// ChangelogFilters narrows the admin changelog listing.
type ChangelogFilters struct {
	EntityType string
	UserID     uint
	Start      *time.Time
	End        *time.Time
}

type ChangelogRepository struct {
	db *gorm.DB
}

func NewChangelogRepository(db *gorm.DB) *ChangelogRepository {
	return &ChangelogRepository{db: db}
}

func (r *ChangelogRepository) Create(e *models.ChangelogEntry) error {
	return r.db.Create(e).Error
}

func (r *ChangelogRepository) List(f ChangelogFilters, limit, offset int) ([]models.ChangelogEntry, error) {
	var list []models.ChangelogEntry
	q := r.db.Order("created_at DESC").Limit(limit).Offset(offset)
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Start != nil {
		q = q.Where("created_at >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("created_at <= ?", *f.End)
	}
	err := q.Find(&list).Error
	return list, err
}
