package handler

import (
	"net/http"

	"dojolibre/internal/middleware"
	"dojolibre/internal/models"
	"dojolibre/internal/repository"
	"dojolibre/internal/service"

	"github.com/gin-gonic/gin"
)

type AttendanceHandler struct {
	svc      *service.AttendanceService
	stats    *service.StatsService
	repo     *repository.AttendanceRepository
	userRepo *repository.UserRepository
}

func NewAttendanceHandler(svc *service.AttendanceService, stats *service.StatsService, repo *repository.AttendanceRepository, userRepo *repository.UserRepository) *AttendanceHandler {
	return &AttendanceHandler{svc: svc, stats: stats, repo: repo, userRepo: userRepo}
}

func attendanceError(c *gin.Context, err error) {
	switch err {
	case service.ErrNotMember:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case service.ErrNotCheckedIn:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case service.ErrLocationNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "attendance operation failed"})
	}
}

// CheckIn opens a visit at the location. Checking in while checked in
// elsewhere transfers the visit; at the same location it is a no-op.
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	locationID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location id"})
		return
	}
	rec, err := h.svc.CheckIn(middleware.GetUserID(c), locationID, middleware.GetRole(c))
	if err != nil {
		attendanceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": rec})
}

func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	locationID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location id"})
		return
	}
	rec, err := h.svc.CheckOut(middleware.GetUserID(c), locationID, middleware.GetRole(c))
	if err != nil {
		attendanceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": rec})
}

// CurrentAttendees lists the members present at a location right now, in
// check-in order.
func (h *AttendanceHandler) CurrentAttendees(c *gin.Context) {
	locationID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location id"})
		return
	}
	ids, err := h.svc.CurrentAttendees(locationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list attendees"})
		return
	}
	attendees := make([]gin.H, 0, len(ids))
	for _, id := range ids {
		u, err := h.userRepo.GetByID(id)
		if err != nil {
			continue
		}
		attendees = append(attendees, gin.H{
			"id":         u.ID,
			"name":       u.Name,
			"avatar_url": u.AvatarURL,
		})
	}
	c.JSON(http.StatusOK, gin.H{"attendees": attendees, "count": len(attendees)})
}

// Status reports where (if anywhere) the caller is currently checked in.
func (h *AttendanceHandler) Status(c *gin.Context) {
	locationID, err := h.svc.IsCheckedIn(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read status"})
		return
	}
	resp := gin.H{"checked_in": locationID != 0}
	if locationID != 0 {
		resp["location_id"] = locationID
	}
	c.JSON(http.StatusOK, resp)
}

// MyHistory returns the caller's full visit history, oldest first.
func (h *AttendanceHandler) MyHistory(c *gin.Context) {
	history, err := h.repo.HistoryByUser(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	if history == nil {
		history = []models.AttendanceRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// MyStats projects the caller's visit history into display statistics,
// including the consecutive-day streak.
func (h *AttendanceHandler) MyStats(c *gin.Context) {
	stats, err := h.stats.UserStats(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// UserStats is the admin view of any member's visit statistics.
func (h *AttendanceHandler) UserStats(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if _, err := h.userRepo.GetByID(userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	stats, err := h.stats.UserStats(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
