package service

import (
	"errors"
	"log"
	"strings"
	"time"

	"dojolibre/config"
	"dojolibre/internal/auth"
	"dojolibre/internal/domain"
	"dojolibre/internal/models"
	"dojolibre/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists     = errors.New("email already registered")
	ErrInvalidCreds    = errors.New("invalid email or password")
	ErrAccountInactive = errors.New("account is deactivated")
	ErrInvalidInvite   = errors.New("invite is invalid, used or expired")
)

type AuthService struct {
	cfg        *config.Config
	userRepo   *repository.UserRepository
	inviteRepo *repository.InviteRepository
}

func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository, inviteRepo *repository.InviteRepository) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo, inviteRepo: inviteRepo}
}

// Register creates an account. Self-service signups are MEMBER or PARTNER;
// elevated roles require a valid invite token matching the email.
func (s *AuthService) Register(name, email, password, role, inviteToken string) (*models.User, string, string, error) {
	if role != domain.RoleMember && role != domain.RolePartner {
		role = domain.RoleMember
	}
	var inv *models.AdminInvite
	if inviteToken != "" {
		var err error
		inv, err = s.redeemableInvite(inviteToken, email)
		if err != nil {
			return nil, "", "", err
		}
		role = inv.Role
	}
	_, err := s.userRepo.GetByEmail(email)
	if err == nil {
		return nil, "", "", ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	u := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		MemberSince:  time.Now(),
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, "", "", err
	}
	// consume the invite only once the registration it authorized succeeded
	if inv != nil {
		if err := s.inviteRepo.MarkUsed(inv.ID); err != nil {
			log.Printf("[auth] mark invite %d used: %v", inv.ID, err)
		}
	}
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return u, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return u, access, "", err
	}
	return u, access, refresh, nil
}

func (s *AuthService) redeemableInvite(token, email string) (*models.AdminInvite, error) {
	inv, err := s.inviteRepo.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if inv == nil || inv.UsedAt != nil || time.Now().After(inv.ExpiresAt) {
		return nil, ErrInvalidInvite
	}
	if !strings.EqualFold(inv.Email, email) {
		return nil, ErrInvalidInvite
	}
	return inv, nil
}

func (s *AuthService) Login(email, password string) (*models.User, string, string, error) {
	u, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	if !u.IsActive {
		return nil, "", "", ErrAccountInactive
	}
	access, _ := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	return u, access, refresh, nil
}

// LoginWithGoogle creates or finds a user by Google ID and returns user +
// tokens + isNew flag. New Google signups default to MEMBER.
func (s *AuthService) LoginWithGoogle(googleID, email, name, avatarURL string) (*models.User, string, string, bool, error) {
	u, err := s.userRepo.GetByGoogleID(googleID)
	if err == nil {
		if !u.IsActive {
			return nil, "", "", false, ErrAccountInactive
		}
		access, _ := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
		refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
		return u, access, refresh, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", false, err
	}
	existing, _ := s.userRepo.GetByEmail(email)
	if existing != nil {
		// Link Google to the existing account
		gid := googleID
		existing.GoogleID = &gid
		if avatarURL != "" {
			existing.AvatarURL = avatarURL
		}
		if err := s.userRepo.Update(existing); err != nil {
			return nil, "", "", false, err
		}
		access, _ := auth.GenerateAccessToken(&s.cfg.JWT, existing.ID, existing.Email, existing.Role)
		refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, existing.ID)
		return existing, access, refresh, false, nil
	}
	gid := googleID
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	u = &models.User{
		Name:        name,
		Email:       email,
		GoogleID:    &gid,
		Role:        domain.RoleMember,
		AvatarURL:   avatarURL,
		IsActive:    true,
		MemberSince: time.Now(),
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, "", "", false, err
	}
	access, _ := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	return u, access, refresh, true, nil
}

// ChangePassword updates the user's password. Requires current password verification.
func (s *AuthService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	u, err := s.userRepo.GetByID(userID)
	if err != nil || u == nil {
		return ErrInvalidCreds
	}
	if u.PasswordHash == "" {
		return errors.New("account uses Google sign-in; set a password first")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCreds
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return s.userRepo.Update(u)
}

func (s *AuthService) RefreshToken(refreshToken string) (access, refresh string, err error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return "", "", err
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", "", err
	}
	if !u.IsActive {
		return "", "", ErrAccountInactive
	}
	access, _ = auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	refresh, _ = auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	return access, refresh, nil
}
