package models

import (
	"time"
)

// AttendanceRecord is one visit. Created open on check-in, closed exactly
// once on check-out, never deleted: the per-location history is append-only.
// A user is "currently present" at a location iff they have a record there
// with no check-out time.
type AttendanceRecord struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index:idx_attendance_user_open" json:"user_id"`
	LocationID   uint       `gorm:"not null;index" json:"location_id"`
	CheckInTime  time.Time  `gorm:"not null;index" json:"check_in_time"`
	CheckOutTime *time.Time `gorm:"index:idx_attendance_user_open" json:"check_out_time,omitempty"`
	Duration     *int       `json:"duration,omitempty"` // whole minutes, set on check-out

	User     User     `gorm:"foreignKey:UserID" json:"-"`
	Location Location `gorm:"foreignKey:LocationID" json:"-"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// Open reports whether the visit has not been checked out yet.
func (r *AttendanceRecord) Open() bool {
	return r.CheckOutTime == nil
}
