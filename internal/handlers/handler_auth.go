package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/SscSPs/wallet_game_backend/internal/apperrors"
	portssvc "github.com/SscSPs/wallet_game_backend/internal/core/ports/services"
	"github.com/SscSPs/wallet_game_backend/internal/dto"
	"github.com/SscSPs/wallet_game_backend/internal/middleware"
	"github.com/SscSPs/wallet_game_backend/internal/platform/config"
	"github.com/SscSPs/wallet_game_backend/internal/utils"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// refreshCookie describes how the refresh token cookie is written.
type refreshCookie struct {
	name     string
	secure   bool
	sameSite http.SameSite
	maxAge   int
}

// AuthHandler handles authentication related requests.
type AuthHandler struct {
	authService portssvc.AuthSvcFacade
	cookie      refreshCookie
	tracker     *utils.PosthogClientWrapper
}

// NewAuthHandler creates a new AuthHandler. tracker may be nil.
func NewAuthHandler(as portssvc.AuthSvcFacade, cfg *config.Config, tracker *utils.PosthogClientWrapper) *AuthHandler {
	return &AuthHandler{
		authService: as,
		cookie: refreshCookie{
			name:     cfg.RefreshTokenCookieName,
			secure:   cfg.CookieSecure,
			sameSite: cfg.CookieSameSite,
			maxAge:   int(cfg.RefreshTokenExpiryDuration.Seconds()),
		},
		tracker: tracker,
	}
}

// registerAuthRoutes sets up the routes for authentication.
// loginLimiter throttles the credential endpoints per client IP when non-nil.
func registerAuthRoutes(r *gin.Engine, h *AuthHandler, tokens middleware.AccessTokenParser, loginLimiter *limiter.Limiter) {
	throttle := func(c *gin.Context) { c.Next() }
	if loginLimiter != nil {
		throttle = middleware.RateLimit(loginLimiter)
	}

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", throttle, h.Login)
		auth.POST("/google-login", throttle, h.GoogleLogin)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", middleware.AuthMiddleware(tokens), getMe)
	}
}

// Register godoc
// @Summary Register new user
// @Description Creates a new user account with an email and password.
// @Tags auth
// @Accept json
// @Produce json
// @Param register body dto.RegisterRequest true "User Registration Info"
// @Success 201 {object} dto.RegisterResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 500 {object} apperrors.AppError
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ToValidationErrorResponse(err))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var fieldErr *apperrors.FieldError
		if errors.As(err, &fieldErr) {
			c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(fieldErr.Field, fieldErr.Message))
			return
		}
		h.fail(c, http.StatusInternalServerError, "Error registering user", err)
		return
	}

	h.tracker.Enqueue(strconv.FormatInt(user.UserID, 10), "user_registered", map[string]any{"method": "password"})
	c.JSON(http.StatusCreated, dto.ToRegisterResponse(user))
}

// Login godoc
// @Summary User login
// @Description Authenticates a user, returns an access token and sets the refresh token cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apperrors.AppError
// @Failure 429 {object} apperrors.AppError
// @Failure 500 {object} apperrors.AppError
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			h.fail(c, http.StatusUnauthorized, "Invalid credentials", nil)
			return
		}
		h.fail(c, http.StatusInternalServerError, "Login failed", err)
		return
	}

	h.setRefreshCookie(c, session.RefreshToken.Value)
	h.tracker.Enqueue(strconv.FormatInt(session.User.UserID, 10), "user_logged_in", map[string]any{"method": "password"})
	c.JSON(http.StatusOK, dto.ToLoginResponse(session))
}

// GoogleLogin godoc
// @Summary Federated login
// @Description Verifies an identity provider ID token, creates the user on first sign-in and starts a session.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.GoogleLoginRequest true "ID token"
// @Success 200 {object} dto.AccessTokenResponse
// @Failure 401 {object} apperrors.AppError
// @Failure 429 {object} apperrors.AppError
// @Failure 500 {object} apperrors.AppError
// @Router /auth/google-login [post]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req dto.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusUnauthorized, "Invalid identity token", nil)
		return
	}

	session, err := h.authService.GoogleLogin(c.Request.Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidFederatedToken) {
			h.fail(c, http.StatusUnauthorized, "Invalid identity token", err)
			return
		}
		h.fail(c, http.StatusInternalServerError, "Federated login failed", err)
		return
	}

	h.setRefreshCookie(c, session.RefreshToken.Value)
	h.tracker.Enqueue(strconv.FormatInt(session.User.UserID, 10), "user_logged_in", map[string]any{"method": "federated"})
	c.JSON(http.StatusOK, dto.AccessTokenResponse{AccessToken: session.AccessToken.Value})
}

// Refresh godoc
// @Summary Refresh access token
// @Description Issues a new access token for the session identified by the refresh token cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.AccessTokenResponse
// @Failure 403 {object} apperrors.AppError
// @Failure 500 {object} apperrors.AppError
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := h.authService.Refresh(c.Request.Context(), h.readRefreshCookie(c))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAccessDenied):
			h.fail(c, http.StatusForbidden, "Access Denied", nil)
		case errors.Is(err, apperrors.ErrInvalidRefreshToken):
			h.fail(c, http.StatusForbidden, "Invalid Refresh Token", nil)
		default:
			h.fail(c, http.StatusInternalServerError, "Error refreshing token", err)
		}
		return
	}
	c.JSON(http.StatusOK, dto.AccessTokenResponse{AccessToken: token.Value})
}

// Logout godoc
// @Summary Logout
// @Description Ends the session identified by the refresh token cookie and clears the cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} apperrors.AppError
// @Failure 500 {object} apperrors.AppError
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.authService.Logout(c.Request.Context(), h.readRefreshCookie(c))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNoTokenProvided):
			h.fail(c, http.StatusBadRequest, "No refresh token provided", nil)
		case errors.Is(err, apperrors.ErrInvalidRefreshToken):
			h.fail(c, http.StatusBadRequest, "Invalid refresh token", nil)
		default:
			h.fail(c, http.StatusInternalServerError, "Logout failed", err)
		}
		return
	}

	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) readRefreshCookie(c *gin.Context) string {
	value, err := c.Cookie(h.cookie.name)
	if err != nil {
		return ""
	}
	return value
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string) {
	c.SetSameSite(h.cookie.sameSite)
	c.SetCookie(h.cookie.name, value, h.cookie.maxAge, "/", "", h.cookie.secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(h.cookie.sameSite)
	c.SetCookie(h.cookie.name, "", -1, "/", "", h.cookie.secure, true)
}

// fail writes an AppError body. Upstream failures are also reported to Sentry.
func (h *AuthHandler) fail(c *gin.Context, code int, message string, err error) {
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		if code >= http.StatusInternalServerError {
			logger.Error(message, slog.String("error", err.Error()))
		} else {
			logger.Warn(message, slog.String("error", err.Error()))
		}
		if errors.Is(err, apperrors.ErrUpstream) {
			if hub := sentrygin.GetHubFromContext(c); hub != nil {
				hub.CaptureException(err)
			}
		}
	}
	appErr := apperrors.NewAppError(code, message, err)
	c.JSON(appErr.Code, appErr)
}
