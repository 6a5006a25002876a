package service

import (
	"testing"
	"time"

	"dojolibre/config"
	"dojolibre/internal/auth"
	"dojolibre/internal/domain"
	"dojolibre/internal/models"
	"dojolibre/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			AccessSecret:  "test-access",
			RefreshSecret: "test-refresh",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "dojolibre-test",
		},
		Invite: config.InviteConfig{Expiry: 7 * 24 * time.Hour},
	}
}

func newAuthFixture(t *testing.T) (*AuthService, *repository.UserRepository, *repository.InviteRepository, *gorm.DB) {
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	return NewAuthService(testConfig(), userRepo, inviteRepo), userRepo, inviteRepo, db
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	u, access, refresh, err := svc.Register("Kenji", "kenji@example.com", "s3cret-pass", domain.RoleMember, "")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, u.Role)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash, "password must be hashed")

	claims, err := auth.ParseAccessToken(&testConfig().JWT, access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, domain.RoleMember, claims.Role)

	logged, _, _, err := svc.Login("kenji@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)

	_, _, _, err = svc.Login("kenji@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCreds)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	_, _, _, err := svc.Register("Kenji", "kenji@example.com", "s3cret-pass", domain.RoleMember, "")
	require.NoError(t, err)
	_, _, _, err = svc.Register("Other", "kenji@example.com", "another-pass", domain.RoleMember, "")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterClampsSelfServiceRoles(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	// elevated roles cannot be self-assigned without an invite
	u, _, _, err := svc.Register("Sly", "sly@example.com", "s3cret-pass", domain.RoleSuperAdmin, "")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, u.Role)

	p, _, _, err := svc.Register("Pat", "pat@example.com", "s3cret-pass", domain.RolePartner, "")
	require.NoError(t, err)
	assert.Equal(t, domain.RolePartner, p.Role)
}

func TestRegisterWithInviteGrantsRole(t *testing.T) {
	svc, _, inviteRepo, _ := newAuthFixture(t)
	inv := &models.AdminInvite{
		Email:     "new-admin@example.com",
		Role:      domain.RoleAdmin,
		Token:     "tok-valid",
		InvitedBy: 1,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, inviteRepo.Create(inv))

	u, _, _, err := svc.Register("Ana", "new-admin@example.com", "s3cret-pass", "", "tok-valid")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)

	// invite is single use
	used, err := inviteRepo.GetByToken("tok-valid")
	require.NoError(t, err)
	require.NotNil(t, used)
	assert.NotNil(t, used.UsedAt)
	_, _, _, err = svc.Register("Imp", "new-admin2@example.com", "s3cret-pass", "", "tok-valid")
	assert.ErrorIs(t, err, ErrInvalidInvite)
}

func TestFailedRegistrationDoesNotConsumeInvite(t *testing.T) {
	svc, _, inviteRepo, _ := newAuthFixture(t)
	_, _, _, err := svc.Register("Pat", "pat@example.com", "s3cret-pass", domain.RoleMember, "")
	require.NoError(t, err)

	require.NoError(t, inviteRepo.Create(&models.AdminInvite{
		Email:     "pat@example.com",
		Role:      domain.RoleAdmin,
		Token:     "tok-collide",
		InvitedBy: 1,
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	// the registration fails after invite validation; the invite must
	// remain redeemable
	_, _, _, err = svc.Register("Pat Again", "pat@example.com", "s3cret-pass", "", "tok-collide")
	require.ErrorIs(t, err, ErrEmailExists)

	inv, err := inviteRepo.GetByToken("tok-collide")
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Nil(t, inv.UsedAt)
}

func TestRegisterWithInviteRejectsMismatchedEmail(t *testing.T) {
	svc, _, inviteRepo, _ := newAuthFixture(t)
	require.NoError(t, inviteRepo.Create(&models.AdminInvite{
		Email:     "invited@example.com",
		Role:      domain.RoleAdmin,
		Token:     "tok-mismatch",
		InvitedBy: 1,
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	_, _, _, err := svc.Register("Imp", "someone-else@example.com", "s3cret-pass", "", "tok-mismatch")
	assert.ErrorIs(t, err, ErrInvalidInvite)
}

func TestRegisterWithExpiredInvite(t *testing.T) {
	svc, _, inviteRepo, _ := newAuthFixture(t)
	require.NoError(t, inviteRepo.Create(&models.AdminInvite{
		Email:     "late@example.com",
		Role:      domain.RolePartner,
		Token:     "tok-expired",
		InvitedBy: 1,
		ExpiresAt: time.Now().Add(-time.Hour),
	}))
	_, _, _, err := svc.Register("Late", "late@example.com", "s3cret-pass", "", "tok-expired")
	assert.ErrorIs(t, err, ErrInvalidInvite)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, userRepo, _, _ := newAuthFixture(t)
	u, _, _, err := svc.Register("Kenji", "kenji@example.com", "s3cret-pass", domain.RoleMember, "")
	require.NoError(t, err)
	u.IsActive = false
	require.NoError(t, userRepo.Update(u))

	_, _, _, err = svc.Login("kenji@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestLoginWithGoogleLinksExistingAccount(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	existing, _, _, err := svc.Register("Kenji", "kenji@example.com", "s3cret-pass", domain.RoleMember, "")
	require.NoError(t, err)

	u, access, _, isNew, err := svc.LoginWithGoogle("g-123", "kenji@example.com", "Kenji G", "https://img.example/k.png")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, existing.ID, u.ID)
	require.NotNil(t, u.GoogleID)
	assert.Equal(t, "g-123", *u.GoogleID)
	assert.NotEmpty(t, access)

	// subsequent sign-ins resolve by Google ID
	again, _, _, isNew, err := svc.LoginWithGoogle("g-123", "kenji@example.com", "", "")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, existing.ID, again.ID)
}

func TestLoginWithGoogleCreatesMember(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	u, _, _, isNew, err := svc.LoginWithGoogle("g-456", "fresh@example.com", "Fresh", "")
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, domain.RoleMember, u.Role)
}

func TestChangePassword(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	u, _, _, err := svc.Register("Kenji", "kenji@example.com", "s3cret-pass", domain.RoleMember, "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(u.ID, "wrong", "new-password1"), ErrInvalidCreds)
	require.NoError(t, svc.ChangePassword(u.ID, "s3cret-pass", "new-password1"))

	_, _, _, err = svc.Login("kenji@example.com", "new-password1")
	require.NoError(t, err)
}

func TestRefreshToken(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	_, _, refresh, err := svc.Register("Kenji", "kenji@example.com", "s3cret-pass", domain.RoleMember, "")
	require.NoError(t, err)

	access, newRefresh, err := svc.RefreshToken(refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, newRefresh)

	_, _, err = svc.RefreshToken("garbage")
	assert.Error(t, err)
	// an access token is not a refresh token
	_, _, err = svc.RefreshToken(access)
	assert.Error(t, err)
}
