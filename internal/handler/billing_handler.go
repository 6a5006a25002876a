package handler

import (
	"net/http"
	"time"

	"dojolibre/internal/domain"
	"dojolibre/internal/middleware"
	"dojolibre/internal/models"
	"dojolibre/internal/repository"
	"dojolibre/internal/service"

	"github.com/gin-gonic/gin"
)

// BillingHandler exposes the display-only billing ledger. No money moves
// through this service; records are created by admins or an external biller.
type BillingHandler struct {
	repo     *repository.BillingRepository
	notifier *service.NotificationService
}

func NewBillingHandler(repo *repository.BillingRepository, notifier *service.NotificationService) *BillingHandler {
	return &BillingHandler{repo: repo, notifier: notifier}
}

// ListMine returns the caller's billing history, newest first.
func (h *BillingHandler) ListMine(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.repo.ListByUserID(middleware.GetUserID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list billing"})
		return
	}
	if list == nil {
		list = []models.BillingRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"billing": list})
}

type CreateBillingRequest struct {
	UserID      uint      `json:"user_id" binding:"required"`
	PlanID      *uint     `json:"plan_id"`
	AmountCents int64     `json:"amount_cents" binding:"required,gt=0"`
	Currency    string    `json:"currency" binding:"omitempty,len=3"`
	Description string    `json:"description" binding:"required,max=255"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

// Create records a charge against a member's account (admin only).
func (h *BillingHandler) Create(c *gin.Context) {
	var req CreateBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b := &models.BillingRecord{
		UserID:      req.UserID,
		PlanID:      req.PlanID,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Description: req.Description,
		Status:      domain.BillingPending,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
	}
	if b.Currency == "" {
		b.Currency = "CAD"
	}
	if err := h.repo.Create(b); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create billing record"})
		return
	}
	if h.notifier != nil {
		_ = h.notifier.NotifyBilling(b.UserID, b.Description, b.ID)
	}
	c.JSON(http.StatusCreated, gin.H{"billing": b})
}

// UpdateStatus transitions a record between PENDING, PAID and FAILED.
func (h *BillingHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid billing id"})
		return
	}
	var req struct {
		Status string `json:"status" binding:"required,oneof=PENDING PAID FAILED"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.repo.UpdateStatus(id, req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
