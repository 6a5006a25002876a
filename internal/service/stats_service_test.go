package service

import (
	"testing"
	"time"

	"dojolibre/internal/domain"
	"dojolibre/internal/models"
	"dojolibre/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visitAt(userID, locationID uint, in time.Time, durationMin int) models.AttendanceRecord {
	rec := models.AttendanceRecord{
		UserID:      userID,
		LocationID:  locationID,
		CheckInTime: in,
	}
	if durationMin >= 0 {
		out := in.Add(time.Duration(durationMin) * time.Minute)
		d := durationMin
		rec.CheckOutTime = &out
		rec.Duration = &d
	}
	return rec
}

func TestProjectStatsAverageOverCompletedOnly(t *testing.T) {
	base := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	history := []models.AttendanceRecord{
		visitAt(1, 1, base, 60),
		visitAt(1, 1, base.AddDate(0, 0, 1), 30),
		visitAt(1, 1, base.AddDate(0, 0, 2), -1), // still open
	}
	stats := projectStats(history)
	assert.Equal(t, 3, stats.TotalVisits)
	assert.InDelta(t, 45.0, stats.AverageDuration, 0.001)
}

func TestProjectStatsNoCompletedVisits(t *testing.T) {
	base := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	history := []models.AttendanceRecord{
		visitAt(1, 1, base, -1),
		visitAt(2, 1, base.Add(time.Hour), -1),
	}
	stats := projectStats(history)
	assert.Equal(t, 2, stats.TotalVisits)
	assert.Zero(t, stats.AverageDuration)
}

func TestProjectStatsEmptyHistory(t *testing.T) {
	stats := projectStats(nil)
	assert.Zero(t, stats.TotalVisits)
	assert.Zero(t, stats.AverageDuration)
	assert.Len(t, stats.PeakHours, 5)
	assert.Len(t, stats.PopularDays, 7)
}

func TestPeakHoursTopFiveDescending(t *testing.T) {
	var history []models.AttendanceRecord
	// 18:00 x3, 6:00 x2, 12:00 x1
	for i, hour := range []int{18, 18, 18, 6, 6, 12} {
		in := time.Date(2026, 8, 24, hour, 0, 0, 0, time.UTC).AddDate(0, 0, i%2)
		history = append(history, visitAt(1, 1, in, 60))
	}
	hours := peakHours(history)
	require.Len(t, hours, 5)
	assert.Equal(t, HourCount{Hour: 18, Count: 3}, hours[0])
	assert.Equal(t, HourCount{Hour: 6, Count: 2}, hours[1])
	assert.Equal(t, HourCount{Hour: 12, Count: 1}, hours[2])
	// remaining buckets are zero-count placeholders
	assert.Zero(t, hours[3].Count)
	assert.Zero(t, hours[4].Count)
	for i := 0; i < len(hours)-1; i++ {
		assert.GreaterOrEqual(t, hours[i].Count, hours[i+1].Count)
	}
}

func TestPopularDaysAllSevenDescending(t *testing.T) {
	// 2026-08-24 is a Monday
	monday := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	history := []models.AttendanceRecord{
		visitAt(1, 1, monday, 60),
		visitAt(1, 1, monday.AddDate(0, 0, 7), 60),
		visitAt(1, 1, monday.AddDate(0, 0, 2), 60), // Wednesday
	}
	days := popularDays(history)
	require.Len(t, days, 7)
	assert.Equal(t, DayCount{Day: 1, Count: 2}, days[0])
	assert.Equal(t, DayCount{Day: 3, Count: 1}, days[1])
	for i := 0; i < len(days)-1; i++ {
		assert.GreaterOrEqual(t, days[i].Count, days[i+1].Count)
	}
}

func TestStreakConsecutiveDays(t *testing.T) {
	now := time.Date(2026, 8, 28, 20, 0, 0, 0, time.UTC)
	history := []models.AttendanceRecord{
		visitAt(1, 1, now.AddDate(0, 0, -2), 60),
		visitAt(1, 1, now.AddDate(0, 0, -1), 60),
		visitAt(1, 1, now.Add(-2*time.Hour), 60),
		// two visits on the same day count once
		visitAt(1, 1, now.Add(-4*time.Hour), 30),
	}
	assert.Equal(t, 3, streak(history, now))
}

func TestStreakZeroWhenLatestVisitIsStale(t *testing.T) {
	now := time.Date(2026, 8, 28, 20, 0, 0, 0, time.UTC)
	history := []models.AttendanceRecord{
		visitAt(1, 1, now.AddDate(0, 0, -4), 60),
		visitAt(1, 1, now.AddDate(0, 0, -3), 60),
	}
	assert.Zero(t, streak(history, now))
	assert.Zero(t, streak(nil, now))
}

func TestStreakCountsFromYesterday(t *testing.T) {
	now := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)
	history := []models.AttendanceRecord{
		visitAt(1, 1, now.AddDate(0, 0, -2), 60),
		visitAt(1, 1, now.AddDate(0, 0, -1), 60),
	}
	assert.Equal(t, 2, streak(history, now))
}

func TestStreakBreaksOnGap(t *testing.T) {
	now := time.Date(2026, 8, 28, 20, 0, 0, 0, time.UTC)
	history := []models.AttendanceRecord{
		visitAt(1, 1, now.AddDate(0, 0, -5), 60),
		visitAt(1, 1, now.AddDate(0, 0, -4), 60),
		// gap on -3 and -2
		visitAt(1, 1, now.AddDate(0, 0, -1), 60),
		visitAt(1, 1, now, 60),
	}
	assert.Equal(t, 2, streak(history, now))
}

func TestOccupancyUnclamped(t *testing.T) {
	o := NewOccupancy(33, 30)
	assert.InDelta(t, 110.0, o.Percent, 0.001)
	assert.True(t, o.AtCapacity)

	o = NewOccupancy(30, 30)
	assert.InDelta(t, 100.0, o.Percent, 0.001)
	assert.True(t, o.AtCapacity)

	o = NewOccupancy(15, 30)
	assert.InDelta(t, 50.0, o.Percent, 0.001)
	assert.False(t, o.AtCapacity)

	o = NewOccupancy(5, 0)
	assert.Zero(t, o.Percent)
	assert.False(t, o.AtCapacity)
}

func TestUserStatsIncludesStreak(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAttendanceRepository(db)
	billingRepo := repository.NewBillingRepository(db)
	svc := NewStatsService(repo, billingRepo)

	now := time.Date(2026, 8, 28, 19, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	for _, rec := range []models.AttendanceRecord{
		visitAt(7, 1, now.AddDate(0, 0, -1), 40),
		visitAt(7, 2, now.Add(-time.Hour), 20),
		visitAt(9, 1, now.Add(-time.Hour), 50), // someone else
	} {
		r := rec
		require.NoError(t, db.Create(&r).Error)
	}

	stats, err := svc.UserStats(7)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalVisits)
	assert.InDelta(t, 30.0, stats.AverageDuration, 0.001)
	assert.Equal(t, 2, stats.CurrentStreak)
}

func TestLocationRevenueVisibleToOwnerAndAdmins(t *testing.T) {
	loc := &models.Location{PartnerID: 5, CreatedByID: 6}
	loc.ID = 1

	assert.True(t, CanViewRevenue(loc, 5, domain.RolePartner))
	assert.True(t, CanViewRevenue(loc, 6, domain.RolePartner))
	assert.True(t, CanViewRevenue(loc, 99, domain.RoleAdmin))
	assert.True(t, CanViewRevenue(loc, 99, domain.RoleSuperAdmin))
	assert.False(t, CanViewRevenue(loc, 99, domain.RolePartner))
	assert.False(t, CanViewRevenue(loc, 99, domain.RoleMember))
}

func TestLocationRevenueCentsSumsPaidByDistinctVisitors(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAttendanceRepository(db)
	billingRepo := repository.NewBillingRepository(db)
	svc := NewStatsService(repo, billingRepo)

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	for _, rec := range []models.AttendanceRecord{
		visitAt(1, 1, now, 60),
		visitAt(1, 1, now.AddDate(0, 0, -1), 60), // repeat visitor counts once
		visitAt(2, 1, now, 30),
		visitAt(3, 2, now, 30), // other location
	} {
		r := rec
		require.NoError(t, db.Create(&r).Error)
	}
	for _, b := range []models.BillingRecord{
		{UserID: 1, AmountCents: 2999, Status: domain.BillingPaid},
		{UserID: 2, AmountCents: 4999, Status: domain.BillingPaid},
		{UserID: 2, AmountCents: 4999, Status: domain.BillingPending}, // unpaid excluded
		{UserID: 3, AmountCents: 7999, Status: domain.BillingPaid},    // not a visitor of loc 1
	} {
		rec := b
		require.NoError(t, db.Create(&rec).Error)
	}

	cents, err := svc.LocationRevenueCents(1)
	require.NoError(t, err)
	assert.Equal(t, int64(7998), cents)
}
