package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"dojolibre/internal/domain"
	"dojolibre/internal/middleware"
	"dojolibre/internal/models"
	"dojolibre/internal/repository"
	"dojolibre/internal/service"
	"dojolibre/pkg/geo"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LocationHandler struct {
	repo      *repository.LocationRepository
	stats     *service.StatsService
	changelog *repository.ChangelogRepository
}

func NewLocationHandler(repo *repository.LocationRepository, stats *service.StatsService, changelog *repository.ChangelogRepository) *LocationHandler {
	return &LocationHandler{repo: repo, stats: stats, changelog: changelog}
}

type CreateLocationRequest struct {
	Name      string              `json:"name" binding:"required,min=2,max=255"`
	Address   string              `json:"address" binding:"required"`
	Latitude  float64             `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude float64             `json:"longitude" binding:"required,gte=-180,lte=180"`
	Capacity  int                 `json:"capacity" binding:"required,gt=0"`
	Amenities []string            `json:"amenities"`
	Hours     []models.HoursRange `json:"hours"`
	ImageURL  string              `json:"image_url"`
	PartnerID uint                `json:"partner_id"` // admins may assign another partner
}

func validateAmenities(amenities []string) (string, bool) {
	for _, a := range amenities {
		if !domain.ValidAmenity(a) {
			return a, false
		}
	}
	return "", true
}

// locationView embeds the live occupancy alongside the directory entry.
func (h *LocationHandler) locationView(loc *models.Location) gin.H {
	view := gin.H{"location": loc}
	if occ, err := h.stats.LocationOccupancy(loc); err == nil {
		view["occupancy"] = occ
	}
	return view
}

// List returns the directory, each entry with its live occupancy. Partners
// can scope to their own locations with mine=true.
func (h *LocationHandler) List(c *gin.Context) {
	filters := repository.LocationFilters{}
	if c.Query("mine") == "true" {
		filters.PartnerID = middleware.GetUserID(c)
	}
	if role := c.Query("creator_role"); role != "" {
		filters.CreatorRole = role
	}
	locations, err := h.repo.List(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list locations"})
		return
	}
	out := make([]gin.H, 0, len(locations))
	for i := range locations {
		out = append(out, h.locationView(&locations[i]))
	}
	c.JSON(http.StatusOK, gin.H{"locations": out})
}

func (h *LocationHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location id"})
		return
	}
	loc, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "location not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load location"})
		return
	}
	c.JSON(http.StatusOK, h.locationView(loc))
}

func (h *LocationHandler) Create(c *gin.Context) {
	var req CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if bad, ok := validateAmenities(req.Amenities); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown amenity: " + bad})
		return
	}
	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)

	partnerID := userID
	if req.PartnerID != 0 && domain.IsAdmin(role) {
		partnerID = req.PartnerID
	}
	amenities, _ := json.Marshal(req.Amenities)
	hours, _ := json.Marshal(req.Hours)
	loc := &models.Location{
		Name:        req.Name,
		Address:     req.Address,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Capacity:    req.Capacity,
		Amenities:   datatypes.JSON(amenities),
		Hours:       datatypes.JSON(hours),
		ImageURL:    req.ImageURL,
		PartnerID:   partnerID,
		CreatedByID: userID,
		CreatorRole: role,
	}
	if err := h.repo.Create(loc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create location"})
		return
	}
	h.logChange(userID, domain.ActionCreate, loc.ID, map[string]interface{}{"name": loc.Name})
	c.JSON(http.StatusCreated, gin.H{"location": loc})
}

type UpdateLocationRequest struct {
	Name      *string              `json:"name"`
	Address   *string              `json:"address"`
	Latitude  *float64             `json:"latitude"`
	Longitude *float64             `json:"longitude"`
	Capacity  *int                 `json:"capacity"`
	Amenities *[]string            `json:"amenities"`
	Hours     *[]models.HoursRange `json:"hours"`
	ImageURL  *string              `json:"image_url"`
}

// Update applies a partial merge; omitted fields keep their values. Only
// the owning partner or an admin may edit.
func (h *LocationHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location id"})
		return
	}
	loc, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "location not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load location"})
		return
	}
	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)
	if !h.canManage(loc, userID, role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your location"})
		return
	}
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.Latitude != nil {
		fields["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		fields["longitude"] = *req.Longitude
	}
	if req.Capacity != nil {
		if *req.Capacity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "capacity must be positive"})
			return
		}
		fields["capacity"] = *req.Capacity
	}
	if req.Amenities != nil {
		if bad, ok := validateAmenities(*req.Amenities); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown amenity: " + bad})
			return
		}
		b, _ := json.Marshal(*req.Amenities)
		fields["amenities"] = datatypes.JSON(b)
	}
	if req.Hours != nil {
		b, _ := json.Marshal(*req.Hours)
		fields["hours"] = datatypes.JSON(b)
	}
	if req.ImageURL != nil {
		fields["image_url"] = *req.ImageURL
	}
	if err := h.repo.UpdateFields(id, fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update location"})
		return
	}
	h.logChange(userID, domain.ActionUpdate, id, fields)
	loc, err = h.repo.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reload location"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"location": loc})
}

// Delete removes a location from the directory. Attendance history
// referencing it is kept.
func (h *LocationHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location id"})
		return
	}
	loc, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "location not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load location"})
		return
	}
	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)
	if !h.canManage(loc, userID, role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your location"})
		return
	}
	if err := h.repo.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete location"})
		return
	}
	h.logChange(userID, domain.ActionDelete, id, map[string]interface{}{"name": loc.Name})
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Nearby returns locations within radius_km of a point, nearest first.
func (h *LocationHandler) Nearby(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required"})
		return
	}
	radiusKm, err := strconv.ParseFloat(c.DefaultQuery("radius_km", "10"), 64)
	if err != nil || radiusKm <= 0 {
		radiusKm = 10
	}
	locations, err := h.repo.List(repository.LocationFilters{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list locations"})
		return
	}
	type nearbyEntry struct {
		Location   *models.Location `json:"location"`
		DistanceKm float64          `json:"distance_km"`
	}
	var out []nearbyEntry
	for i := range locations {
		d := geo.HaversineKm(lat, lng, locations[i].Latitude, locations[i].Longitude)
		if d <= radiusKm {
			out = append(out, nearbyEntry{Location: &locations[i], DistanceKm: d})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	if out == nil {
		out = []nearbyEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"locations": out})
}

// Stats returns the location's derived attendance statistics. Revenue is
// included only for the owning partner and admins.
func (h *LocationHandler) Stats(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location id"})
		return
	}
	loc, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "location not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load location"})
		return
	}
	stats, err := h.stats.LocationStats(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}
	resp := gin.H{"stats": stats}
	if occ, err := h.stats.LocationOccupancy(loc); err == nil {
		resp["occupancy"] = occ
	}
	if service.CanViewRevenue(loc, middleware.GetUserID(c), middleware.GetRole(c)) {
		if cents, err := h.stats.LocationRevenueCents(id); err == nil {
			resp["revenue_cents"] = cents
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LocationHandler) canManage(loc *models.Location, userID uint, role string) bool {
	return loc.PartnerID == userID || loc.CreatedByID == userID || domain.IsAdmin(role)
}

func (h *LocationHandler) logChange(userID uint, action string, entityID uint, changes map[string]interface{}) {
	b, _ := json.Marshal(changes)
	_ = h.changelog.Create(&models.ChangelogEntry{
		UserID:     userID,
		Action:     action,
		EntityType: domain.EntityLocation,
		EntityID:   entityID,
		Changes:    datatypes.JSON(b),
	})
}
