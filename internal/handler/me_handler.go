package handler

import (
	"errors"
	"net/http"

	"dojolibre/internal/middleware"
	"dojolibre/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MeHandler struct {
	userRepo   *repository.UserRepository
	followRepo *repository.FollowRepository
	planRepo   *repository.PlanRepository
}

func NewMeHandler(userRepo *repository.UserRepository, followRepo *repository.FollowRepository, planRepo *repository.PlanRepository) *MeHandler {
	return &MeHandler{userRepo: userRepo, followRepo: followRepo, planRepo: planRepo}
}

// Get returns the caller's own profile with their plan resolved.
func (h *MeHandler) Get(c *gin.Context) {
	u, err := h.userRepo.GetByID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	resp := gin.H{"user": u}
	if u.SubscriptionTier != nil {
		if plan, err := h.planRepo.GetByTier(*u.SubscriptionTier); err == nil {
			resp["plan"] = plan
		}
	}
	c.JSON(http.StatusOK, resp)
}

type UpdateMeRequest struct {
	Name            *string `json:"name"`
	Bio             *string `json:"bio"`
	AvatarURL       *string `json:"avatar_url"`
	ShowConnections *bool   `json:"show_connections"`
	ShowBio         *bool   `json:"show_bio"`

	// Partner business details, ignored for other roles.
	BusinessName    *string `json:"business_name"`
	BusinessAddress *string `json:"business_address"`
	BusinessPhone   *string `json:"business_phone"`
}

func (h *MeHandler) Update(c *gin.Context) {
	u, err := h.userRepo.GetByID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name != nil && *req.Name != "" {
		u.Name = *req.Name
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		u.AvatarURL = *req.AvatarURL
	}
	if req.ShowConnections != nil {
		u.ShowConnections = *req.ShowConnections
	}
	if req.ShowBio != nil {
		u.ShowBio = *req.ShowBio
	}
	if u.IsPartner() {
		if req.BusinessName != nil {
			u.BusinessName = *req.BusinessName
		}
		if req.BusinessAddress != nil {
			u.BusinessAddress = *req.BusinessAddress
		}
		if req.BusinessPhone != nil {
			u.BusinessPhone = *req.BusinessPhone
		}
	}
	if err := h.userRepo.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// RegisterFCMToken stores the device push token for the caller.
func (h *MeHandler) RegisterFCMToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}
	u, err := h.userRepo.GetByID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	u.FCMToken = req.Token
	if err := h.userRepo.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// PublicProfile returns another user's profile honoring their privacy
// settings: bio and connection lists can be hidden.
func (h *MeHandler) PublicProfile(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	u, err := h.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	profile := gin.H{
		"id":           u.ID,
		"name":         u.Name,
		"role":         u.Role,
		"avatar_url":   u.AvatarURL,
		"member_since": u.MemberSince,
	}
	if u.ShowBio {
		profile["bio"] = u.Bio
	}
	if u.IsPartner() {
		profile["business_name"] = u.BusinessName
		profile["partner_verified"] = u.PartnerVerified
	}
	if u.ShowConnections {
		if followers, err := h.followRepo.FollowerIDs(u.ID); err == nil {
			profile["follower_count"] = len(followers)
		}
		if following, err := h.followRepo.FollowingIDs(u.ID); err == nil {
			profile["following_count"] = len(following)
		}
	}
	c.JSON(http.StatusOK, gin.H{"user": profile})
}
