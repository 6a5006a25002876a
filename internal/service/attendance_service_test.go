package service

import (
	"testing"
	"time"

	"dojolibre/internal/domain"
	"dojolibre/internal/models"
	"dojolibre/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Location{},
		&models.AttendanceRecord{},
		&models.Notification{},
		&models.SubscriptionPlan{},
		&models.BillingRecord{},
		&models.AdminInvite{},
	))
	return db
}

func newAttendanceFixture(t *testing.T) (*AttendanceService, *repository.AttendanceRepository, *gorm.DB) {
	db := newTestDB(t)
	repo := repository.NewAttendanceRepository(db)
	locRepo := repository.NewLocationRepository(db)
	svc := NewAttendanceService(db, repo, locRepo, nil, nil)
	return svc, repo, db
}

func seedLocation(t *testing.T, db *gorm.DB, name string, capacity int) *models.Location {
	t.Helper()
	loc := &models.Location{
		Name:        name,
		Address:     "123 Main St",
		Latitude:    43.65,
		Longitude:   -79.38,
		Capacity:    capacity,
		PartnerID:   1,
		CreatedByID: 1,
		CreatorRole: domain.RolePartner,
	}
	require.NoError(t, db.Create(loc).Error)
	return loc
}

func TestCheckInCreatesOpenRecord(t *testing.T) {
	svc, repo, db := newAttendanceFixture(t)
	loc := seedLocation(t, db, "Downtown Dojo", 30)

	rec, err := svc.CheckIn(7, loc.ID, domain.RoleMember)
	require.NoError(t, err)
	assert.True(t, rec.Open())
	assert.Equal(t, uint(7), rec.UserID)
	assert.Equal(t, loc.ID, rec.LocationID)

	open, err := repo.GetOpenByUser(7)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, rec.ID, open.ID)
}

func TestCheckInRejectsNonMembers(t *testing.T) {
	svc, repo, db := newAttendanceFixture(t)
	loc := seedLocation(t, db, "Downtown Dojo", 30)

	for _, role := range []string{domain.RolePartner, domain.RoleAdmin, domain.RoleSuperAdmin} {
		_, err := svc.CheckIn(7, loc.ID, role)
		assert.ErrorIs(t, err, ErrNotMember, "role %s", role)
		_, err = svc.CheckOut(7, loc.ID, role)
		assert.ErrorIs(t, err, ErrNotMember, "role %s", role)
	}
	// rejected calls must not touch the ledger
	open, err := repo.GetOpenByUser(7)
	require.NoError(t, err)
	assert.Nil(t, open)
}

func TestCheckInUnknownLocation(t *testing.T) {
	svc, _, _ := newAttendanceFixture(t)
	_, err := svc.CheckIn(7, 999, domain.RoleMember)
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestDoubleCheckInSameLocationIsIdempotent(t *testing.T) {
	svc, repo, db := newAttendanceFixture(t)
	loc := seedLocation(t, db, "Downtown Dojo", 30)

	first, err := svc.CheckIn(7, loc.ID, domain.RoleMember)
	require.NoError(t, err)
	second, err := svc.CheckIn(7, loc.ID, domain.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	history, err := repo.HistoryByUser(7)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCheckInElsewhereTransfersVisit(t *testing.T) {
	svc, repo, db := newAttendanceFixture(t)
	locA := seedLocation(t, db, "Dojo A", 30)
	locB := seedLocation(t, db, "Dojo B", 30)

	start := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }
	first, err := svc.CheckIn(7, locA.ID, domain.RoleMember)
	require.NoError(t, err)

	svc.now = func() time.Time { return start.Add(45 * time.Minute) }
	second, err := svc.CheckIn(7, locB.ID, domain.RoleMember)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	// the previous visit is closed with its duration recorded
	var prev models.AttendanceRecord
	require.NoError(t, db.First(&prev, first.ID).Error)
	require.NotNil(t, prev.CheckOutTime)
	require.NotNil(t, prev.Duration)
	assert.Equal(t, 45, *prev.Duration)

	// exactly one open record remains, at the new location
	open, err := repo.GetOpenByUser(7)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, locB.ID, open.LocationID)
}

func TestCheckOutRoundsDurationToWholeMinutes(t *testing.T) {
	svc, _, db := newAttendanceFixture(t)
	loc := seedLocation(t, db, "Downtown Dojo", 30)

	start := time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }
	_, err := svc.CheckIn(7, loc.ID, domain.RoleMember)
	require.NoError(t, err)

	// 90m30s rounds to 91
	svc.now = func() time.Time { return start.Add(90*time.Minute + 30*time.Second) }
	rec, err := svc.CheckOut(7, loc.ID, domain.RoleMember)
	require.NoError(t, err)
	require.NotNil(t, rec.Duration)
	assert.Equal(t, 91, *rec.Duration)
}

func TestCheckOutWithoutOpenVisit(t *testing.T) {
	svc, repo, db := newAttendanceFixture(t)
	locA := seedLocation(t, db, "Dojo A", 30)
	locB := seedLocation(t, db, "Dojo B", 30)

	_, err := svc.CheckOut(7, locA.ID, domain.RoleMember)
	assert.ErrorIs(t, err, ErrNotCheckedIn)

	// checked in at A, checking out at B is also a conflict
	_, err = svc.CheckIn(7, locA.ID, domain.RoleMember)
	require.NoError(t, err)
	_, err = svc.CheckOut(7, locB.ID, domain.RoleMember)
	assert.ErrorIs(t, err, ErrNotCheckedIn)

	open, err := repo.GetOpenByUser(7)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, locA.ID, open.LocationID)
}

func TestIsCheckedIn(t *testing.T) {
	svc, _, db := newAttendanceFixture(t)
	loc := seedLocation(t, db, "Downtown Dojo", 30)

	locationID, err := svc.IsCheckedIn(7)
	require.NoError(t, err)
	assert.Zero(t, locationID)

	_, err = svc.CheckIn(7, loc.ID, domain.RoleMember)
	require.NoError(t, err)
	locationID, err = svc.IsCheckedIn(7)
	require.NoError(t, err)
	assert.Equal(t, loc.ID, locationID)

	_, err = svc.CheckOut(7, loc.ID, domain.RoleMember)
	require.NoError(t, err)
	locationID, err = svc.IsCheckedIn(7)
	require.NoError(t, err)
	assert.Zero(t, locationID)
}

func TestCurrentAttendeesInCheckInOrder(t *testing.T) {
	svc, _, db := newAttendanceFixture(t)
	loc := seedLocation(t, db, "Downtown Dojo", 30)

	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	for i, userID := range []uint{3, 1, 2} {
		tick := base.Add(time.Duration(i) * time.Minute)
		svc.now = func() time.Time { return tick }
		_, err := svc.CheckIn(userID, loc.ID, domain.RoleMember)
		require.NoError(t, err)
	}
	ids, err := svc.CurrentAttendees(loc.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 1, 2}, ids)

	svc.now = func() time.Time { return base.Add(time.Hour) }
	_, err = svc.CheckOut(1, loc.ID, domain.RoleMember)
	require.NoError(t, err)
	ids, err = svc.CurrentAttendees(loc.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 2}, ids)
}

type recordingBroadcaster struct {
	frames []uint
}

func (r *recordingBroadcaster) BroadcastOccupancy(locationID uint, current, capacity int) {
	r.frames = append(r.frames, locationID)
}

func TestTransferBroadcastsBothLocations(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAttendanceRepository(db)
	locRepo := repository.NewLocationRepository(db)
	bc := &recordingBroadcaster{}
	svc := NewAttendanceService(db, repo, locRepo, nil, bc)

	locA := seedLocation(t, db, "Dojo A", 30)
	locB := seedLocation(t, db, "Dojo B", 30)

	_, err := svc.CheckIn(7, locA.ID, domain.RoleMember)
	require.NoError(t, err)
	bc.frames = nil

	_, err = svc.CheckIn(7, locB.ID, domain.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, []uint{locA.ID, locB.ID}, bc.frames)
}
