package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"dojolibre/internal/domain"
	"dojolibre/internal/middleware"
	"dojolibre/internal/models"
	"dojolibre/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PlanHandler struct {
	repo      *repository.PlanRepository
	changelog *repository.ChangelogRepository
}

func NewPlanHandler(repo *repository.PlanRepository, changelog *repository.ChangelogRepository) *PlanHandler {
	return &PlanHandler{repo: repo, changelog: changelog}
}

// List returns active plans. Admins may pass all=true to include retired ones.
func (h *PlanHandler) List(c *gin.Context) {
	activeOnly := true
	if c.Query("all") == "true" && domain.IsAdmin(middleware.GetRole(c)) {
		activeOnly = false
	}
	plans, err := h.repo.List(activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list plans"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

type PlanRequest struct {
	Tier     string   `json:"tier" binding:"required,oneof=basic pro premium"`
	Name     string   `json:"name" binding:"required,min=2,max=64"`
	Price    float64  `json:"price" binding:"gte=0"`
	Features []string `json:"features"`
	IsActive *bool    `json:"is_active"`
}

func (h *PlanHandler) Create(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if existing, err := h.repo.GetByTier(req.Tier); err == nil && existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "plan tier already exists"})
		return
	}
	features, _ := json.Marshal(req.Features)
	p := &models.SubscriptionPlan{
		Tier:     req.Tier,
		Name:     req.Name,
		Price:    req.Price,
		Features: datatypes.JSON(features),
		IsActive: true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := h.repo.Create(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create plan"})
		return
	}
	h.logChange(middleware.GetUserID(c), domain.ActionCreate, p.ID, gin.H{"tier": p.Tier, "price": p.Price})
	c.JSON(http.StatusCreated, gin.H{"plan": p})
}

func (h *PlanHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
		return
	}
	p, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load plan"})
		return
	}
	var req struct {
		Name     *string   `json:"name"`
		Price    *float64  `json:"price"`
		Features *[]string `json:"features"`
		IsActive *bool     `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	changes := gin.H{}
	if req.Name != nil {
		p.Name = *req.Name
		changes["name"] = *req.Name
	}
	if req.Price != nil {
		if *req.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price cannot be negative"})
			return
		}
		p.Price = *req.Price
		changes["price"] = *req.Price
	}
	if req.Features != nil {
		b, _ := json.Marshal(*req.Features)
		p.Features = datatypes.JSON(b)
		changes["features"] = *req.Features
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
		changes["is_active"] = *req.IsActive
	}
	if err := h.repo.Update(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update plan"})
		return
	}
	h.logChange(middleware.GetUserID(c), domain.ActionUpdate, p.ID, changes)
	c.JSON(http.StatusOK, gin.H{"plan": p})
}

func (h *PlanHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
		return
	}
	if err := h.repo.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete plan"})
		return
	}
	h.logChange(middleware.GetUserID(c), domain.ActionDelete, id, nil)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *PlanHandler) logChange(userID uint, action string, entityID uint, changes gin.H) {
	b, _ := json.Marshal(changes)
	_ = h.changelog.Create(&models.ChangelogEntry{
		UserID:     userID,
		Action:     action,
		EntityType: domain.EntityPlan,
		EntityID:   entityID,
		Changes:    datatypes.JSON(b),
	})
}
