package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dojolibre/config"
	"dojolibre/internal/domain"
	"dojolibre/internal/middleware"
	"dojolibre/internal/models"
	"dojolibre/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AdminHandler is the admin surface: user management, role invites and the
// changelog.
type AdminHandler struct {
	cfg        *config.Config
	userRepo   *repository.UserRepository
	inviteRepo *repository.InviteRepository
	changelog  *repository.ChangelogRepository
}

func NewAdminHandler(cfg *config.Config, userRepo *repository.UserRepository, inviteRepo *repository.InviteRepository, changelog *repository.ChangelogRepository) *AdminHandler {
	return &AdminHandler{cfg: cfg, userRepo: userRepo, inviteRepo: inviteRepo, changelog: changelog}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, offset := pagination(c)
	role := c.Query("role")
	users, err := h.userRepo.List(role, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	total, _ := h.userRepo.Count(role)
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}

type AdminUpdateUserRequest struct {
	Role             *string `json:"role" binding:"omitempty,oneof=MEMBER PARTNER ADMIN SUPER_ADMIN"`
	IsActive         *bool   `json:"is_active"`
	SubscriptionTier *string `json:"subscription_tier" binding:"omitempty,oneof=basic pro premium"`
	PartnerVerified  *bool   `json:"partner_verified"`
}

// UpdateUser changes role, active flag, tier or partner verification.
// Granting ADMIN or SUPER_ADMIN requires the SUPER_ADMIN role.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	u, err := h.userRepo.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	var req AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actorRole := middleware.GetRole(c)
	changes := map[string]interface{}{}
	if req.Role != nil && *req.Role != u.Role {
		if domain.IsAdmin(*req.Role) && actorRole != domain.RoleSuperAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "only super admins can grant admin roles"})
			return
		}
		changes["role"] = map[string]string{"from": u.Role, "to": *req.Role}
		u.Role = *req.Role
	}
	if req.IsActive != nil && *req.IsActive != u.IsActive {
		changes["is_active"] = *req.IsActive
		u.IsActive = *req.IsActive
	}
	if req.SubscriptionTier != nil {
		tier := *req.SubscriptionTier
		u.SubscriptionTier = &tier
		changes["subscription_tier"] = tier
	}
	if req.PartnerVerified != nil && *req.PartnerVerified != u.PartnerVerified {
		changes["partner_verified"] = *req.PartnerVerified
		u.PartnerVerified = *req.PartnerVerified
	}
	if len(changes) == 0 {
		c.JSON(http.StatusOK, gin.H{"user": u})
		return
	}
	if err := h.userRepo.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}
	h.logChange(middleware.GetUserID(c), domain.ActionUpdate, u.ID, changes)
	c.JSON(http.StatusOK, gin.H{"user": u})
}

type CreateInviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=PARTNER ADMIN SUPER_ADMIN"`
}

// CreateInvite issues a single-use, expiring invite token granting a role
// on registration. ADMIN/SUPER_ADMIN invites are super-admin only.
func (h *AdminHandler) CreateInvite(c *gin.Context) {
	var req CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if domain.IsAdmin(req.Role) && middleware.GetRole(c) != domain.RoleSuperAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "only super admins can invite admins"})
		return
	}
	inv := &models.AdminInvite{
		Email:     strings.ToLower(req.Email),
		Role:      req.Role,
		Token:     strings.ReplaceAll(uuid.New().String(), "-", ""),
		InvitedBy: middleware.GetUserID(c),
		ExpiresAt: time.Now().Add(h.cfg.Invite.Expiry),
	}
	if err := h.inviteRepo.Create(inv); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create invite"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invite": inv})
}

func (h *AdminHandler) ListInvites(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.inviteRepo.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list invites"})
		return
	}
	if list == nil {
		list = []models.AdminInvite{}
	}
	c.JSON(http.StatusOK, gin.H{"invites": list})
}

func (h *AdminHandler) RevokeInvite(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invite id"})
		return
	}
	if err := h.inviteRepo.Revoke(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke invite"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "revoked"})
}

// Changelog lists admin-visible mutations with optional entity_type,
// user_id, start and end filters.
func (h *AdminHandler) Changelog(c *gin.Context) {
	limit, offset := pagination(c)
	filters := repository.ChangelogFilters{
		EntityType: c.Query("entity_type"),
	}
	if v := c.Query("user_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			filters.UserID = uint(id)
		}
	}
	if v := c.Query("start"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filters.Start = &t
		}
	}
	if v := c.Query("end"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filters.End = &t
		}
	}
	list, err := h.changelog.List(filters, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list changelog"})
		return
	}
	if list == nil {
		list = []models.ChangelogEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": list})
}

func (h *AdminHandler) logChange(userID uint, action string, entityID uint, changes map[string]interface{}) {
	b, _ := json.Marshal(changes)
	_ = h.changelog.Create(&models.ChangelogEntry{
		UserID:     userID,
		Action:     action,
		EntityType: domain.EntityUser,
		EntityID:   entityID,
		Changes:    datatypes.JSON(b),
	})
}
