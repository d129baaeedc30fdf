package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/auth"
	"github.com/procurement/backend/internal/infrastructure/config"
	"github.com/procurement/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAuthService(users *testutil.MockUserRepository, blacklist auth.TokenBlacklist) (*AuthService, *auth.JWTService) {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "procurement-test",
		MaxRefreshCount:        5,
	})
	return NewAuthService(users, jwtService, blacklist, zap.NewNop()), jwtService
}

func newTestUser(t *testing.T, role identity.Role) *identity.User {
	t.Helper()
	user, err := identity.NewUser("Lê Văn Hùng", "hung@congty.vn", "matkhau123", role)
	require.NoError(t, err)
	return user
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("token carries user id and role", func(t *testing.T) {
		users := new(testutil.MockUserRepository)
		user := newTestUser(t, identity.RolePurchasingManager)
		users.On("FindByEmail", mock.Anything, "hung@congty.vn").Return(user, nil)
		svc, jwtService := newTestAuthService(users, nil)

		res, err := svc.Login(ctx, LoginInput{Email: "  Hung@CongTy.vn ", Password: "matkhau123"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", res.TokenType)
		assert.Equal(t, user.ID, res.User.ID)
		assert.Equal(t, identity.RolePurchasingManager, res.User.Role)

		claims, err := jwtService.ValidateAccessToken(res.AccessToken)
		require.NoError(t, err)
		actor, err := claims.Actor()
		require.NoError(t, err)
		assert.Equal(t, user.Actor(), actor)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(testutil.MockUserRepository)
		users.On("FindByEmail", mock.Anything, "hung@congty.vn").Return(newTestUser(t, identity.RoleDirector), nil)
		svc, _ := newTestAuthService(users, nil)

		_, err := svc.Login(ctx, LoginInput{Email: "hung@congty.vn", Password: "saimatkhau"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email looks like a wrong password", func(t *testing.T) {
		users := new(testutil.MockUserRepository)
		users.On("FindByEmail", mock.Anything, "ghost@congty.vn").Return(nil, shared.NewNotFoundError("User", "ghost@congty.vn"))
		svc, _ := newTestAuthService(users, nil)

		_, err := svc.Login(ctx, LoginInput{Email: "ghost@congty.vn", Password: "matkhau123"})
		assert.True(t, shared.HasCode(err, shared.CodeUnauthorized))
	})

	t.Run("deactivated account", func(t *testing.T) {
		users := new(testutil.MockUserRepository)
		user := newTestUser(t, identity.RoleSiteSupervisor)
		user.Deactivate()
		users.On("FindByEmail", mock.Anything, "hung@congty.vn").Return(user, nil)
		svc, _ := newTestAuthService(users, nil)

		_, err := svc.Login(ctx, LoginInput{Email: "hung@congty.vn", Password: "matkhau123"})
		assert.True(t, shared.HasCode(err, "ACCOUNT_DEACTIVATED"))
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()
	users := new(testutil.MockUserRepository)
	user := newTestUser(t, identity.RoleChiefAccountant)
	users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
	users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	svc, _ := newTestAuthService(users, nil)

	login, err := svc.Login(ctx, LoginInput{Email: user.Email, Password: "matkhau123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	user.Deactivate()
	_, err = svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: refreshed.RefreshToken})
	assert.True(t, shared.HasCode(err, "ACCOUNT_DEACTIVATED"))

	_, err = svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: "garbage"})
	assert.True(t, shared.HasCode(err, "TOKEN_INVALID"))
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	blacklist := auth.NewInMemoryTokenBlacklist()
	svc, _ := newTestAuthService(new(testutil.MockUserRepository), blacklist)

	require.NoError(t, svc.Logout(ctx, LogoutInput{UserID: uuid.New(), TokenJTI: "jti-1", TokenTTL: time.Minute}))

	revoked, err := blacklist.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuthService_EnsureBootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	input := BootstrapAdminInput{Name: "Quản trị", Email: "admin@congty.vn", Password: "admin12345"}

	t.Run("creates the first admin", func(t *testing.T) {
		users := new(testutil.MockUserRepository)
		users.On("FindFirstByRole", mock.Anything, identity.RoleAdmin).Return(nil, shared.NewNotFoundError("User", identity.RoleAdmin))
		users.On("Save", mock.Anything, mock.MatchedBy(func(u *identity.User) bool {
			return u.Role == identity.RoleAdmin && u.Email == "admin@congty.vn" && u.VerifyPassword("admin12345")
		})).Return(nil)
		svc, _ := newTestAuthService(users, nil)

		created, err := svc.EnsureBootstrapAdmin(ctx, input)
		require.NoError(t, err)
		assert.True(t, created)
		users.AssertExpectations(t)
	})

	t.Run("existing admin is left alone", func(t *testing.T) {
		users := new(testutil.MockUserRepository)
		users.On("FindFirstByRole", mock.Anything, identity.RoleAdmin).Return(newTestUser(t, identity.RoleAdmin), nil)
		svc, _ := newTestAuthService(users, nil)

		created, err := svc.EnsureBootstrapAdmin(ctx, input)
		require.NoError(t, err)
		assert.False(t, created)
		users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
