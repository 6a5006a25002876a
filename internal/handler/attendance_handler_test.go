package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dojolibre/internal/domain"
	"dojolibre/internal/models"
	"dojolibre/internal/repository"
	"dojolibre/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAuth injects an authenticated identity without real JWT parsing.
func stubAuth(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

func newAttendanceRouter(t *testing.T) (*gin.Engine, *gorm.DB, func(userID uint, role string) *gin.Engine) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Location{}, &models.AttendanceRecord{}))

	attendanceRepo := repository.NewAttendanceRepository(db)
	locRepo := repository.NewLocationRepository(db)
	userRepo := repository.NewUserRepository(db)
	billingRepo := repository.NewBillingRepository(db)
	svc := service.NewAttendanceService(db, attendanceRepo, locRepo, nil, nil)
	stats := service.NewStatsService(attendanceRepo, billingRepo)
	h := NewAttendanceHandler(svc, stats, attendanceRepo, userRepo)

	build := func(userID uint, role string) *gin.Engine {
		r := gin.New()
		r.Use(stubAuth(userID, role))
		r.POST("/locations/:id/check-in", h.CheckIn)
		r.POST("/locations/:id/check-out", h.CheckOut)
		r.GET("/locations/:id/attendees", h.CurrentAttendees)
		r.GET("/me/attendance/status", h.Status)
		return r
	}
	return build(1, domain.RoleMember), db, build
}

func seedTestLocation(t *testing.T, db *gorm.DB) *models.Location {
	t.Helper()
	loc := &models.Location{
		Name: "Test Dojo", Address: "1 Mat Way", Capacity: 25,
		PartnerID: 1, CreatedByID: 1, CreatorRole: domain.RolePartner,
	}
	require.NoError(t, db.Create(loc).Error)
	return loc
}

func TestCheckInEndpoint(t *testing.T) {
	r, db, _ := newAttendanceRouter(t)
	loc := seedTestLocation(t, db)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/locations/1/check-in", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Record models.AttendanceRecord `json:"record"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, loc.ID, body.Record.LocationID)
	assert.Nil(t, body.Record.CheckOutTime)
}

func TestCheckInEndpointRejectsPartner(t *testing.T) {
	_, db, build := newAttendanceRouter(t)
	seedTestLocation(t, db)

	r := build(2, domain.RolePartner)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/locations/1/check-in", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCheckInEndpointUnknownLocation(t *testing.T) {
	r, _, _ := newAttendanceRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/locations/42/check-in", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckOutEndpointWithoutVisitConflicts(t *testing.T) {
	r, db, _ := newAttendanceRouter(t)
	seedTestLocation(t, db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/locations/1/check-out", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAttendanceStatusEndpoint(t *testing.T) {
	r, db, _ := newAttendanceRouter(t)
	seedTestLocation(t, db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me/attendance/status", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		CheckedIn  bool `json:"checked_in"`
		LocationID uint `json:"location_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.False(t, status.CheckedIn)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/locations/1/check-in", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me/attendance/status", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.CheckedIn)
	assert.Equal(t, uint(1), status.LocationID)
}

func TestAttendeesEndpointListsMembers(t *testing.T) {
	r, db, build := newAttendanceRouter(t)
	seedTestLocation(t, db)
	require.NoError(t, db.Create(&models.User{Name: "Kenji", Email: "k@example.com", Role: domain.RoleMember, IsActive: true}).Error)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/locations/1/check-in", nil))
	require.Equal(t, http.StatusOK, w.Code)

	viewer := build(5, domain.RolePartner)
	w = httptest.NewRecorder()
	viewer.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/locations/1/attendees", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Count     int `json:"count"`
		Attendees []struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
		} `json:"attendees"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "Kenji", body.Attendees[0].Name)
}
