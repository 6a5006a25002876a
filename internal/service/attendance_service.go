package service

import (
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"dojolibre/internal/domain"
	"dojolibre/internal/models"
	"dojolibre/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrNotMember        = errors.New("only members can check in or out")
	ErrNotCheckedIn     = errors.New("no open visit at this location")
	ErrLocationNotFound = errors.New("location not found")
)

// OccupancyBroadcaster pushes live attendee counts to connected clients.
type OccupancyBroadcaster interface {
	BroadcastOccupancy(locationID uint, current int, capacity int)
}

// userStripes bounds the number of per-user mutexes; contention across
// stripes is acceptable, correctness only needs same-user serialization.
const userStripes = 64

// AttendanceService is the visit ledger. It owns every attendance record
// and maintains the invariant that a user holds an open record at no more
// than one location; checking in elsewhere forces a check-out first.
type AttendanceService struct {
	db        *gorm.DB
	repo      *repository.AttendanceRepository
	locRepo   *repository.LocationRepository
	notifier  *NotificationService
	occupancy OccupancyBroadcaster

	locks [userStripes]sync.Mutex
	now   func() time.Time
}

func NewAttendanceService(db *gorm.DB, repo *repository.AttendanceRepository, locRepo *repository.LocationRepository, notifier *NotificationService, occupancy OccupancyBroadcaster) *AttendanceService {
	return &AttendanceService{
		db:        db,
		repo:      repo,
		locRepo:   locRepo,
		notifier:  notifier,
		occupancy: occupancy,
		now:       time.Now,
	}
}

func (s *AttendanceService) lockUser(userID uint) *sync.Mutex {
	return &s.locks[userID%userStripes]
}

// CheckIn opens a visit for the user at the location. Non-member roles are
// rejected without touching the ledger. If the user is already checked in
// elsewhere the previous visit is closed first; checking in again at the
// same location returns the existing open record.
func (s *AttendanceService) CheckIn(userID, locationID uint, role string) (*models.AttendanceRecord, error) {
	if !domain.CanAttend(role) {
		return nil, ErrNotMember
	}
	loc, err := s.locRepo.GetByID(locationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}

	mu := s.lockUser(userID)
	mu.Lock()
	defer mu.Unlock()

	var rec *models.AttendanceRecord
	var closedLocationID uint
	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		open, err := repo.GetOpenByUser(userID)
		if err != nil {
			return err
		}
		if open != nil && open.LocationID == locationID {
			rec = open // double check-in at the same location is a no-op
			return nil
		}
		now := s.now()
		if open != nil {
			// forced transfer: close the previous location first
			if err := repo.Close(open, now, durationMinutes(open.CheckInTime, now)); err != nil {
				return err
			}
			closedLocationID = open.LocationID
		}
		rec = &models.AttendanceRecord{
			UserID:      userID,
			LocationID:  locationID,
			CheckInTime: now,
		}
		return repo.Create(rec)
	})
	if err != nil {
		return nil, err
	}

	if closedLocationID != 0 {
		s.broadcastOccupancy(closedLocationID)
	}
	s.broadcastOccupancy(locationID)
	if s.notifier != nil {
		if err := s.notifier.NotifyCheckIn(userID, loc.Name, loc.ID); err != nil {
			log.Printf("[attendance] check-in notification: %v", err)
		}
	}
	return rec, nil
}

// CheckOut closes the user's open visit at the location, recording the
// check-out time and the visit duration in whole minutes. Non-members are
// rejected; a missing open visit leaves the ledger unchanged.
func (s *AttendanceService) CheckOut(userID, locationID uint, role string) (*models.AttendanceRecord, error) {
	if !domain.CanAttend(role) {
		return nil, ErrNotMember
	}

	mu := s.lockUser(userID)
	mu.Lock()
	defer mu.Unlock()

	var rec *models.AttendanceRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		open, err := repo.GetOpenByUserAtLocation(userID, locationID)
		if err != nil {
			return err
		}
		if open == nil {
			return ErrNotCheckedIn
		}
		now := s.now()
		if err := repo.Close(open, now, durationMinutes(open.CheckInTime, now)); err != nil {
			return err
		}
		rec = open
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastOccupancy(locationID)
	return rec, nil
}

// IsCheckedIn returns the single location the user currently has an open
// visit at, or 0 when the user is not checked in anywhere.
func (s *AttendanceService) IsCheckedIn(userID uint) (uint, error) {
	open, err := s.repo.GetOpenByUser(userID)
	if err != nil {
		return 0, err
	}
	if open == nil {
		return 0, nil
	}
	return open.LocationID, nil
}

// CurrentAttendees lists members currently present at the location in
// check-in order.
func (s *AttendanceService) CurrentAttendees(locationID uint) ([]uint, error) {
	return s.repo.CurrentAttendees(locationID)
}

func (s *AttendanceService) broadcastOccupancy(locationID uint) {
	if s.occupancy == nil {
		return
	}
	n, err := s.repo.CountOpenAtLocation(locationID)
	if err != nil {
		log.Printf("[attendance] occupancy count for location %d: %v", locationID, err)
		return
	}
	capacity := 0
	if loc, err := s.locRepo.GetByID(locationID); err == nil {
		capacity = loc.Capacity
	}
	s.occupancy.BroadcastOccupancy(locationID, int(n), capacity)
}

// durationMinutes is the visit length in whole minutes, rounded.
func durationMinutes(in, out time.Time) int {
	return int(math.Round(out.Sub(in).Minutes()))
}
