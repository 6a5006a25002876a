package service

import (
	"sort"
	"time"

	"dojolibre/internal/domain"
	"dojolibre/internal/models"
	"dojolibre/internal/repository"
)

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type DayCount struct {
	Day   int `json:"day"` // 0=Sunday..6=Saturday
	Count int `json:"count"`
}

// AttendanceStats is derived from the visit history on every read; nothing
// here is stored.
type AttendanceStats struct {
	TotalVisits     int         `json:"total_visits"`
	AverageDuration float64     `json:"average_duration"` // minutes, completed visits only
	PeakHours       []HourCount `json:"peak_hours"`
	PopularDays     []DayCount  `json:"popular_days"`
	CurrentStreak   int         `json:"current_streak"` // user stats only
}

// Occupancy is the live capacity view of a location. Percent is not
// clamped: an over-capacity location reports more than 100.
type Occupancy struct {
	Current    int     `json:"current"`
	Capacity   int     `json:"capacity"`
	Percent    float64 `json:"percent"`
	AtCapacity bool    `json:"at_capacity"`
}

// StatsService projects attendance history into display statistics.
type StatsService struct {
	repo        *repository.AttendanceRepository
	billingRepo *repository.BillingRepository
	now         func() time.Time
}

func NewStatsService(repo *repository.AttendanceRepository, billingRepo *repository.BillingRepository) *StatsService {
	return &StatsService{repo: repo, billingRepo: billingRepo, now: time.Now}
}

// LocationStats aggregates every visit ever recorded at the location.
// Streak is not applicable to locations and is always 0.
func (s *StatsService) LocationStats(locationID uint) (*AttendanceStats, error) {
	history, err := s.repo.HistoryByLocation(locationID)
	if err != nil {
		return nil, err
	}
	stats := projectStats(history)
	return &stats, nil
}

// UserStats aggregates the user's visits across all locations and adds the
// consecutive-day check-in streak.
func (s *StatsService) UserStats(userID uint) (*AttendanceStats, error) {
	history, err := s.repo.HistoryByUser(userID)
	if err != nil {
		return nil, err
	}
	stats := projectStats(history)
	stats.CurrentStreak = streak(history, s.now())
	return &stats, nil
}

// LocationOccupancy computes the live occupancy view for a location.
func (s *StatsService) LocationOccupancy(loc *models.Location) (*Occupancy, error) {
	n, err := s.repo.CountOpenAtLocation(loc.ID)
	if err != nil {
		return nil, err
	}
	return NewOccupancy(int(n), loc.Capacity), nil
}

// NewOccupancy derives the capacity view from a raw attendee count.
func NewOccupancy(current, capacity int) *Occupancy {
	o := &Occupancy{Current: current, Capacity: capacity}
	if capacity > 0 {
		o.Percent = float64(current) / float64(capacity) * 100
	}
	o.AtCapacity = o.Percent >= 100
	return o
}

// LocationRevenueCents totals paid billing across the location's distinct
// visitors. Only surfaced to the owning partner and admins.
func (s *StatsService) LocationRevenueCents(locationID uint) (int64, error) {
	history, err := s.repo.HistoryByLocation(locationID)
	if err != nil {
		return 0, err
	}
	seen := make(map[uint]struct{})
	var userIDs []uint
	for _, rec := range history {
		if _, ok := seen[rec.UserID]; ok {
			continue
		}
		seen[rec.UserID] = struct{}{}
		userIDs = append(userIDs, rec.UserID)
	}
	return s.billingRepo.TotalPaidCents(userIDs)
}

// CanViewRevenue mirrors the original dashboard rule: revenue is owner- and
// admin-only.
func CanViewRevenue(loc *models.Location, userID uint, role string) bool {
	return loc.CreatedByID == userID || loc.PartnerID == userID || domain.IsAdmin(role)
}

func projectStats(history []models.AttendanceRecord) AttendanceStats {
	stats := AttendanceStats{
		TotalVisits: len(history),
		PeakHours:   peakHours(history),
		PopularDays: popularDays(history),
	}
	var completed, totalMinutes int
	for _, rec := range history {
		if rec.CheckOutTime != nil && rec.Duration != nil {
			completed++
			totalMinutes += *rec.Duration
		}
	}
	// average over completed visits only; 0 (not NaN) when none completed
	if completed > 0 {
		stats.AverageDuration = float64(totalMinutes) / float64(completed)
	}
	return stats
}

// peakHours buckets check-ins by hour of day and returns the top 5 by
// count, descending. Open and completed visits count alike.
func peakHours(history []models.AttendanceRecord) []HourCount {
	var counts [24]int
	for _, rec := range history {
		counts[rec.CheckInTime.Hour()]++
	}
	out := make([]HourCount, 24)
	for h, n := range counts {
		out[h] = HourCount{Hour: h, Count: n}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out[:5]
}

// popularDays buckets check-ins by weekday; all 7 entries are returned,
// sorted by descending count.
func popularDays(history []models.AttendanceRecord) []DayCount {
	var counts [7]int
	for _, rec := range history {
		counts[int(rec.CheckInTime.Weekday())]++
	}
	out := make([]DayCount, 7)
	for d, n := range counts {
		out[d] = DayCount{Day: d, Count: n}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// streak counts consecutive calendar days with at least one check-in,
// walking backward through distinct visit dates. The streak is 0 unless the
// most recent visit was today or yesterday.
func streak(history []models.AttendanceRecord, now time.Time) int {
	if len(history) == 0 {
		return 0
	}
	seen := make(map[string]time.Time)
	for _, rec := range history {
		day := dayOf(rec.CheckInTime)
		seen[day.Format("2006-01-02")] = day
	}
	days := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	today := dayOf(now)
	yesterday := today.AddDate(0, 0, -1)
	if !days[0].Equal(today) && !days[0].Equal(yesterday) {
		return 0
	}
	count := 1
	for i := 0; i < len(days)-1; i++ {
		if !days[i+1].Equal(days[i].AddDate(0, 0, -1)) {
			break
		}
		count++
	}
	return count
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
