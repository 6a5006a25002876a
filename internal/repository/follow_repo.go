package repository

import (
	"errors"

	"dojolibre/internal/models"

	"gorm.io/gorm"
)

type FollowRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

func (r *FollowRepository) Follow(followerID, followeeID uint) error {
	existing, err := r.get(followerID, followeeID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil // already following
	}
	return r.db.Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error
}

func (r *FollowRepository) Unfollow(followerID, followeeID uint) error {
	return r.db.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{}).Error
}

func (r *FollowRepository) get(followerID, followeeID uint) (*models.Follow, error) {
	var f models.Follow
	err := r.db.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FollowRepository) FollowerIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Follow{}).Where("followee_id = ?", userID).Pluck("follower_id", &ids).Error
	return ids, err
}

func (r *FollowRepository) FollowingIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Pluck("followee_id", &ids).Error
	return ids, err
}

func (r *FollowRepository) Block(blockerID, blockedID uint) error {
	var b models.Block
	err := r.db.Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).First(&b).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	// blocking also severs any follow edges between the pair
	_ = r.Unfollow(blockerID, blockedID)
	_ = r.Unfollow(blockedID, blockerID)
	return r.db.Create(&models.Block{BlockerID: blockerID, BlockedID: blockedID}).Error
}

func (r *FollowRepository) Unblock(blockerID, blockedID uint) error {
	return r.db.Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{}).Error
}

func (r *FollowRepository) IsBlocked(a, b uint) (bool, error) {
	var n int64
	err := r.db.Model(&models.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&n).Error
	return n > 0, err
}
