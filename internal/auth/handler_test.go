package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wimotos/wimotos/internal/auth"
	"github.com/wimotos/wimotos/internal/shared"
	"github.com/wimotos/wimotos/internal/users"
)

type stubRepo struct {
	user *users.User
}

func (s *stubRepo) List(ctx context.Context) ([]users.User, error) { return nil, nil }

func (s *stubRepo) Get(ctx context.Context, id int64) (*users.User, error) {
	return nil, shared.ErrNotFound
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) Create(ctx context.Context, user users.User) (int64, error) { return 0, nil }

func newLoginRouter(t *testing.T, repo users.Repository) (chi.Router, *shared.TokenManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tokens := shared.NewTokenManager(client, "test_token", time.Hour)
	handler := auth.NewHandler(nil, auth.NewService(repo, tokens))
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r, tokens
}

func staffUser(t *testing.T, password string) *users.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &users.User{
		ID:           1,
		Name:         "Ana",
		Email:        "ana@test.local",
		PasswordHash: string(hash),
		Role:         users.RoleStaff,
	}
}

func TestLoginSuccess(t *testing.T) {
	router, tokens := newLoginRouter(t, &stubRepo{user: staffUser(t, "correctpass")})

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ana@test.local","password":"correctpass"}`))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)

	var body auth.TokenResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Equal(t, "bearer", body.TokenType)
	require.NotEmpty(t, body.AccessToken)

	identity, err := tokens.Lookup(context.Background(), body.AccessToken)
	require.NoError(t, err)
	require.Equal(t, int64(1), identity.UserID)
	require.Equal(t, "STAFF", identity.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	router, _ := newLoginRouter(t, &stubRepo{user: staffUser(t, "correctpass")})

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ana@test.local","password":"wrong"}`))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginUnknownUser(t *testing.T) {
	router, _ := newLoginRouter(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"nobody@test.local","password":"whatever"}`))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginEmailIsNormalized(t *testing.T) {
	router, _ := newLoginRouter(t, &stubRepo{user: staffUser(t, "correctpass")})

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ANA@test.local","password":"correctpass"}`))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
}

func TestLoginValidation(t *testing.T) {
	router, _ := newLoginRouter(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"not-an-email"}`))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnprocessableEntity, res.Code)
}
