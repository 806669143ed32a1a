package handler

import (
	"errors"
	"fmt"
	"net/http"

	"mailsage/internal/config"
	"mailsage/internal/model"
	"mailsage/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
)

var errNoSession = errors.New("user not authenticated")

type AuthHandler struct {
	authService service.AuthService
	config      *config.Config
	logger      echo.Logger
}

func NewAuthHandler(authService service.AuthService, config *config.Config, logger echo.Logger) *AuthHandler {
	gothic.Store = NewSessionStore([]byte(config.SessionSecret), config.IsProduction())

	provider := google.New(
		config.GoogleClientID,
		config.GoogleClientSecret,
		config.BaseURL+"/auth/google/callback",
		"https://www.googleapis.com/auth/gmail.readonly",
		"https://www.googleapis.com/auth/gmail.modify",
		"https://www.googleapis.com/auth/userinfo.email",
		"https://www.googleapis.com/auth/userinfo.profile",
	)
	// offline access yields a refresh token for background refreshes
	provider.SetAccessType("offline")
	goth.UseProviders(provider)

	return &AuthHandler{
		authService: authService,
		config:      config,
		logger:      logger,
	}
}

// withProvider sets the provider query parameter so gothic can find it.
func withProvider(c echo.Context) *http.Request {
	req := c.Request()
	q := req.URL.Query()
	q.Set("provider", "google")
	req.URL.RawQuery = q.Encode()
	return req
}

// BeginAuthHandler initiates the OAuth flow
func (h *AuthHandler) BeginAuthHandler(c echo.Context) error {
	if c.Param("provider") != "google" {
		return badRequest(c, "Invalid provider")
	}
	gothic.BeginAuthHandler(c.Response(), withProvider(c))
	return nil
}

// CallbackHandler handles the OAuth callback
func (h *AuthHandler) CallbackHandler(c echo.Context) error {
	req := withProvider(c)

	googleUser, err := gothic.CompleteUserAuth(c.Response(), req)
	if err != nil {
		h.logger.Error("Failed to complete user auth:", err)
		return unauthorized(c)
	}

	user, err := h.authService.GetOrCreateUser(
		req.Context(),
		googleUser.Provider+"_"+googleUser.UserID,
		googleUser.Email,
		googleUser.Name,
		googleUser.AccessToken,
		googleUser.RefreshToken,
		googleUser.ExpiresAt,
	)
	if err != nil {
		h.logger.Error("Failed to get or create user:", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to process user", codeInternal)
	}

	session, _ := gothic.Store.Get(req, sessionName)
	session.Values[sessionUserID] = user.ID
	if err := session.Save(req, c.Response()); err != nil {
		h.logger.Error("Failed to save session:", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to save session", codeInternal)
	}

	return c.Redirect(http.StatusTemporaryRedirect, "/")
}

// LogoutHandler logs out the user
func (h *AuthHandler) LogoutHandler(c echo.Context) error {
	req := withProvider(c)
	if session, err := gothic.Store.Get(req, sessionName); err == nil {
		if userID, ok := session.Values[sessionUserID].(string); ok {
			h.authService.Logout(req.Context(), userID)
		}
		delete(session.Values, sessionUserID)
		session.Options.MaxAge = -1
		_ = session.Save(req, c.Response())
	}
	_ = gothic.Logout(c.Response(), req)
	return c.Redirect(http.StatusTemporaryRedirect, "/")
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	return c.JSON(http.StatusOK, user)
}

// GetCurrentUser resolves the user from the session cookie.
func (h *AuthHandler) GetCurrentUser(c echo.Context) (*model.User, error) {
	session, err := gothic.Store.Get(c.Request(), sessionName)
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable session: %v", errNoSession, err)
	}

	userID, ok := session.Values[sessionUserID].(string)
	if !ok || userID == "" {
		return nil, errNoSession
	}

	user, err := h.authService.GetUser(c.Request().Context(), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// IsAuthError reports whether err from GetCurrentUser means the request
// carries no usable session, as opposed to a failure loading the user.
func IsAuthError(err error) bool {
	return errors.Is(err, errNoSession) || errors.Is(err, service.ErrAuthentication)
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(UserContextKey).(*model.User)
	return user, ok && user != nil
}
