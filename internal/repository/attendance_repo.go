package repository

import (
	"errors"
	"time"

	"dojolibre/internal/models"

	"gorm.io/gorm"
)

// AttendanceRepository owns the append-only visit ledger. Records are
// created open, closed exactly once and never deleted.
type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// WithTx returns a copy bound to the given transaction.
func (r *AttendanceRepository) WithTx(tx *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: tx}
}

func (r *AttendanceRepository) Create(rec *models.AttendanceRecord) error {
	return r.db.Create(rec).Error
}

// GetOpenByUser returns the user's single open record anywhere, or nil.
func (r *AttendanceRepository) GetOpenByUser(userID uint) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := r.db.Where("user_id = ? AND check_out_time IS NULL", userID).
		Order("check_in_time DESC").First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetOpenByUserAtLocation returns the user's open record at the location, or nil.
func (r *AttendanceRepository) GetOpenByUserAtLocation(userID, locationID uint) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := r.db.Where("user_id = ? AND location_id = ? AND check_out_time IS NULL", userID, locationID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Close sets the check-out time and duration on an open record.
func (r *AttendanceRepository) Close(rec *models.AttendanceRecord, checkOut time.Time, durationMin int) error {
	return r.db.Model(rec).Updates(map[string]interface{}{
		"check_out_time": checkOut,
		"duration":       durationMin,
	}).Error
}

// CurrentAttendees lists user IDs with an open record at the location,
// ordered by check-in time for stable display.
func (r *AttendanceRepository) CurrentAttendees(locationID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.AttendanceRecord{}).
		Where("location_id = ? AND check_out_time IS NULL", locationID).
		Order("check_in_time ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *AttendanceRepository) CountOpenAtLocation(locationID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.AttendanceRecord{}).
		Where("location_id = ? AND check_out_time IS NULL", locationID).
		Count(&n).Error
	return n, err
}

// HistoryByLocation returns the full visit history for a location,
// oldest first.
func (r *AttendanceRepository) HistoryByLocation(locationID uint) ([]models.AttendanceRecord, error) {
	var list []models.AttendanceRecord
	err := r.db.Where("location_id = ?", locationID).
		Order("check_in_time ASC").Find(&list).Error
	return list, err
}

// HistoryByUser returns the user's visit history across all locations,
// oldest first.
func (r *AttendanceRepository) HistoryByUser(userID uint) ([]models.AttendanceRecord, error) {
	var list []models.AttendanceRecord
	err := r.db.Where("user_id = ?", userID).
		Order("check_in_time ASC").Find(&list).Error
	return list, err
}
