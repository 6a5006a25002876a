package handler

import (
	"net/http"

	"dojolibre/internal/middleware"
	"dojolibre/internal/repository"
	"dojolibre/internal/service"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct {
	repo     *repository.FollowRepository
	userRepo *repository.UserRepository
	notifier *service.NotificationService
}

func NewFollowHandler(repo *repository.FollowRepository, userRepo *repository.UserRepository, notifier *service.NotificationService) *FollowHandler {
	return &FollowHandler{repo: repo, userRepo: userRepo, notifier: notifier}
}

// Follow creates a follow edge; refollowing is a no-op. Blocked pairs
// cannot follow.
func (h *FollowHandler) Follow(c *gin.Context) {
	followeeID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	followerID := middleware.GetUserID(c)
	if followeeID == followerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot follow yourself"})
		return
	}
	if _, err := h.userRepo.GetByID(followeeID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	blocked, err := h.repo.IsBlocked(followerID, followeeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check block state"})
		return
	}
	if blocked {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot follow this user"})
		return
	}
	if err := h.repo.Follow(followerID, followeeID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to follow"})
		return
	}
	if h.notifier != nil {
		follower, err := h.userRepo.GetByID(followerID)
		name := "Someone"
		if err == nil {
			name = follower.Name
		}
		_ = h.notifier.NotifyNewFollower(followeeID, name, followerID)
	}
	c.JSON(http.StatusOK, gin.H{"status": "following"})
}

func (h *FollowHandler) Unfollow(c *gin.Context) {
	followeeID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if err := h.repo.Unfollow(middleware.GetUserID(c), followeeID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unfollow"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *FollowHandler) Followers(c *gin.Context) {
	ids, err := h.repo.FollowerIDs(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list followers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"followers": h.summaries(ids)})
}

func (h *FollowHandler) Following(c *gin.Context) {
	ids, err := h.repo.FollowingIDs(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list following"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": h.summaries(ids)})
}

// Block severs follow edges in both directions and prevents future
// messaging and follows between the pair.
func (h *FollowHandler) Block(c *gin.Context) {
	blockedID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	blockerID := middleware.GetUserID(c)
	if blockedID == blockerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot block yourself"})
		return
	}
	if err := h.repo.Block(blockerID, blockedID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to block"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "blocked"})
}

func (h *FollowHandler) Unblock(c *gin.Context) {
	blockedID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if err := h.repo.Unblock(middleware.GetUserID(c), blockedID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unblock"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *FollowHandler) summaries(ids []uint) []gin.H {
	out := make([]gin.H, 0, len(ids))
	for _, id := range ids {
		u, err := h.userRepo.GetByID(id)
		if err != nil {
			continue
		}
		out = append(out, gin.H{"id": u.ID, "name": u.Name, "avatar_url": u.AvatarURL})
	}
	return out
}
