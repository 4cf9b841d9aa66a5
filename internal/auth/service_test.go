// AngelaMos | 2026
// service_test.go

package auth_test

import (
	"context"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/riff/internal/auth"
	"github.com/carterperez-dev/riff/internal/config"
	"github.com/carterperez-dev/riff/internal/core"
	"github.com/carterperez-dev/riff/internal/core/coretest"
	"github.com/carterperez-dev/riff/internal/middleware"
	"github.com/carterperez-dev/riff/internal/user"
)

type memoryBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (b *memoryBlacklist) Revoke(_ context.Context, jti string, exp time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[jti] = exp
	return nil
}

func (b *memoryBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.revoked[jti]
	return ok, nil
}

type fixture struct {
	db        *core.Database
	service   *auth.Service
	jwt       *auth.JWTManager
	blacklist *memoryBlacklist
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	jwtManager, err := auth.NewJWTManager(config.JWTConfig{
		PrivateKeyPath:      filepath.Join(dir, "keys", "private.pem"),
		PublicKeyPath:       filepath.Join(dir, "keys", "public.pem"),
		GenerateMissingKeys: true,
		AccessTokenExpire:   15 * time.Minute,
		RefreshTokenExpire:  24 * time.Hour,
		Issuer:              "riff",
		Audience:            "riff-api",
	})
	require.NoError(t, err)

	db := coretest.NewDatabase(t)
	users := user.NewService(user.NewRepository(db.DB))
	blacklist := &memoryBlacklist{revoked: map[string]time.Time{}}

	return &fixture{
		db: db,
		service: auth.NewService(
			auth.NewRepository(db.DB),
			jwtManager,
			users,
			blacklist,
		),
		jwt:       jwtManager,
		blacklist: blacklist,
	}
}

func (f *fixture) register(t *testing.T, email, username string) *auth.UserResponse {
	t.Helper()

	u, err := f.service.Register(context.Background(), auth.RegisterRequest{
		Email:    email,
		Password: "correct-horse",
		Name:     "Test " + username,
		Username: username,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) login(t *testing.T, email string) *auth.AuthResponse {
	t.Helper()

	resp, err := f.service.Login(context.Background(), auth.LoginRequest{
		Email:    email,
		Password: "correct-horse",
	}, "test-agent", "127.0.0.1")
	require.NoError(t, err)
	return resp
}

func requireStatus(t *testing.T, err error, status int, message string) {
	t.Helper()

	appErr, ok := core.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.StatusCode)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.register(t, "Alice@Example.com", "alice")
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "alice", u.Username)
	assert.NotEmpty(t, u.ID)

	_, err := f.service.Register(ctx, auth.RegisterRequest{
		Email:    "alice@example.com",
		Password: "another-pass",
		Name:     "Other",
		Username: "alice2",
	})
	requireStatus(t, err, http.StatusBadRequest, "Email already registered")

	_, err = f.service.Register(ctx, auth.RegisterRequest{
		Email:    "other@example.com",
		Password: "another-pass",
		Name:     "Other",
		Username: "alice",
	})
	requireStatus(t, err, http.StatusBadRequest, "Username already taken")
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "bob@example.com", "bob")

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.service.Login(ctx, auth.LoginRequest{
			Email:    "bob@example.com",
			Password: "wrong-password",
		}, "", "")
		requireStatus(t, err, http.StatusUnauthorized, "invalid email or password")
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.service.Login(ctx, auth.LoginRequest{
			Email:    "nobody@example.com",
			Password: "correct-horse",
		}, "", "")
		requireStatus(t, err, http.StatusUnauthorized, "invalid email or password")
	})

	t.Run("success", func(t *testing.T) {
		resp := f.login(t, "BOB@example.com")
		assert.Equal(t, "bob", resp.User.Username)
		assert.Equal(t, "Bearer", resp.Tokens.TokenType)
		assert.Equal(t, 900, resp.Tokens.ExpiresIn)

		claims, err := f.service.VerifyAccessToken(ctx, resp.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, claims.UserID)
		assert.Equal(t, "bob", claims.Username)
		assert.NotEmpty(t, claims.TokenID)
	})
}

func TestRefreshRotationAndReuse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "carol@example.com", "carol")
	first := f.login(t, "carol@example.com")

	second, err := f.service.Refresh(ctx, first.Tokens.RefreshToken, "", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.Tokens.RefreshToken, second.Tokens.RefreshToken)

	_, err = f.service.Refresh(ctx, first.Tokens.RefreshToken, "", "")
	requireStatus(t, err, http.StatusUnauthorized, "Unauthorized")

	_, err = f.service.Refresh(ctx, second.Tokens.RefreshToken, "", "")
	requireStatus(t, err, http.StatusUnauthorized, "Unauthorized")

	_, err = f.service.Refresh(ctx, "not-a-token", "", "")
	requireStatus(t, err, http.StatusUnauthorized, "Unauthorized")
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "dan@example.com", "dan")
	f.register(t, "erin@example.com", "erin")

	dan := f.login(t, "dan@example.com")
	erin := f.login(t, "erin@example.com")

	danClaims, err := f.service.VerifyAccessToken(ctx, dan.Tokens.AccessToken)
	require.NoError(t, err)

	err = f.service.Logout(ctx, danClaims, erin.Tokens.RefreshToken)
	requireStatus(t, err, http.StatusForbidden, "")

	require.NoError(t, f.service.Logout(ctx, danClaims, dan.Tokens.RefreshToken))

	_, err = f.service.Refresh(ctx, dan.Tokens.RefreshToken, "", "")
	requireStatus(t, err, http.StatusUnauthorized, "")

	_, err = f.service.VerifyAccessToken(ctx, dan.Tokens.AccessToken)
	require.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestLogoutAllInvalidatesEverySession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "fay@example.com", "fay")

	phone := f.login(t, "fay@example.com")
	laptop := f.login(t, "fay@example.com")

	claims, err := f.service.VerifyAccessToken(ctx, phone.Tokens.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.service.LogoutAll(ctx, claims))

	_, err = f.service.VerifyAccessToken(ctx, laptop.Tokens.AccessToken)
	require.ErrorIs(t, err, core.ErrTokenRevoked)

	_, err = f.service.Refresh(ctx, laptop.Tokens.RefreshToken, "", "")
	requireStatus(t, err, http.StatusUnauthorized, "")

	fresh := f.login(t, "fay@example.com")
	_, err = f.service.VerifyAccessToken(ctx, fresh.Tokens.AccessToken)
	require.NoError(t, err)
}

func TestVerifyAccessTokenRejectsGarbage(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.VerifyAccessToken(context.Background(), "not.a.jwt")
	require.ErrorIs(t, err, core.ErrTokenInvalid)
}

var _ middleware.TokenVerifier = (*auth.Service)(nil)
