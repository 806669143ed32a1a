package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/markbates/goth/gothic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailsage/internal/config"
	"mailsage/internal/handler"
	"mailsage/internal/model"
	"mailsage/internal/service"
)

type stubAuthService struct {
	getUser func(ctx context.Context, userID string) (*model.User, error)
}

func (s *stubAuthService) GetOrCreateUser(ctx context.Context, googleID, email, name, accessToken, refreshToken string, tokenExpiry time.Time) (*model.User, error) {
	return nil, errors.New("not used")
}

func (s *stubAuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.getUser(ctx, userID)
}

func (s *stubAuthService) Logout(ctx context.Context, userID string) {}

func serve(t *testing.T, auth service.AuthService, withCookie bool) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	cfg := &config.Config{SessionSecret: "middleware-secret", BaseURL: "http://localhost"}
	authHandler := handler.NewAuthHandler(auth, cfg, e.Logger)

	e.GET("/private", func(c echo.Context) error {
		user, ok := handler.CurrentUser(c)
		require.True(t, ok)
		return c.String(http.StatusOK, user.ID)
	}, AuthMiddleware(authHandler))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if withCookie {
		saved := httptest.NewRecorder()
		sess, err := gothic.Store.Get(req, "gothic_session")
		require.NoError(t, err)
		sess.Values["user_id"] = "u1"
		require.NoError(t, sess.Save(req, saved))
		for _, cookie := range saved.Result().Cookies() {
			req.AddCookie(cookie)
		}
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func code(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["code"]
}

func TestAuthMiddlewareResolvesUser(t *testing.T) {
	auth := &stubAuthService{getUser: func(ctx context.Context, userID string) (*model.User, error) {
		return &model.User{ID: userID}, nil
	}}

	rec := serve(t, auth, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestAuthMiddlewareWithoutSession(t *testing.T) {
	auth := &stubAuthService{getUser: func(ctx context.Context, userID string) (*model.User, error) {
		t.Fatal("no lookup without a session")
		return nil, nil
	}}

	rec := serve(t, auth, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authentication_failed", code(t, rec))
}

func TestAuthMiddlewareUnknownUser(t *testing.T) {
	auth := &stubAuthService{getUser: func(ctx context.Context, userID string) (*model.User, error) {
		return nil, service.ErrAuthentication
	}}

	rec := serve(t, auth, true)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authentication_failed", code(t, rec))
}

func TestAuthMiddlewareStorageFailure(t *testing.T) {
	auth := &stubAuthService{getUser: func(ctx context.Context, userID string) (*model.User, error) {
		return nil, errors.New("failed to load user: connection refused")
	}}

	rec := serve(t, auth, true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", code(t, rec))
}
