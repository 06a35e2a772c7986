package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/wallet_game_backend/internal/adapters/identity"
	"github.com/SscSPs/wallet_game_backend/internal/apperrors"
	"github.com/SscSPs/wallet_game_backend/internal/core/domain"
	portssvc "github.com/SscSPs/wallet_game_backend/internal/core/ports/services"
	"github.com/SscSPs/wallet_game_backend/internal/core/services"
	"github.com/SscSPs/wallet_game_backend/internal/dto"
	"github.com/SscSPs/wallet_game_backend/internal/handlers"
	"github.com/SscSPs/wallet_game_backend/internal/platform/config"
	"github.com/SscSPs/wallet_game_backend/internal/repositories/database/sqlite"
	"github.com/SscSPs/wallet_game_backend/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock AuthService ---
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockAuthService) GoogleLogin(ctx context.Context, idToken string) (*domain.Session, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*domain.IssuedToken, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IssuedToken), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.AuthSvcFacade = (*MockAuthService)(nil)

func handlerTestConfig() *config.Config {
	return &config.Config{
		IsProduction:               true,
		AccessTokenSecret:          "handler-access-secret",
		AccessTokenExpiryDuration:  15 * time.Minute,
		RefreshTokenSecret:         "handler-refresh-secret",
		RefreshTokenExpiryDuration: 7 * 24 * time.Hour,
		RefreshTokenCookieName:     "refreshToken",
		CookieSecure:               true,
		CookieSameSite:             http.SameSiteNoneMode,
		JWTIssuer:                  "wallet-test",
		PasswordMinLength:          6,
		BcryptCost:                 bcrypt.MinCost,
	}
}

func jsonBody(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// --- Test Suite ---
type AuthHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockService *MockAuthService
	cfg         *config.Config
}

func TestAuthHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func (suite *AuthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.cfg = handlerTestConfig()
	suite.mockService = new(MockAuthService)
	suite.router = gin.New()
	container := &portssvc.ServiceContainer{
		Auth:  suite.mockService,
		Token: services.NewTokenService(suite.cfg),
	}
	handlers.RegisterRoutes(suite.router, suite.cfg, container, nil, nil)
}

func (suite *AuthHandlerTestSuite) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AuthHandlerTestSuite) post(path string, body any, cookie string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(http.MethodPost, path, jsonBody(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(http.MethodPost, path, nil)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: cookie})
	}
	return suite.do(req)
}

func (suite *AuthHandlerTestSuite) session() *domain.Session {
	return &domain.Session{
		AccessToken:  domain.IssuedToken{Value: "access-1", ExpiresAt: time.Now().Add(time.Minute)},
		RefreshToken: domain.IssuedToken{Value: "refresh-1", ExpiresAt: time.Now().Add(time.Hour)},
		User:         &domain.User{UserID: 7, Email: "a@x.com"},
	}
}

func (suite *AuthHandlerTestSuite) TestHealth() {
	w := suite.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func (suite *AuthHandlerTestSuite) TestRegister() {
	suite.Run("created", func() {
		suite.mockService.On("Register", mock.Anything, "a@x.com", "secret1").Return(&domain.User{UserID: 1, Email: "a@x.com"}, nil).Once()
		w := suite.post("/auth/register", dto.RegisterRequest{Email: "a@x.com", Password: "secret1"}, "")
		suite.Equal(http.StatusCreated, w.Code)
		suite.JSONEq(`{"message":"User registered","user":{"id":1,"email":"a@x.com"}}`, w.Body.String())
	})

	suite.Run("binding errors are reported per field", func() {
		w := suite.post("/auth/register", dto.RegisterRequest{Email: "nope", Password: "123"}, "")
		suite.Equal(http.StatusBadRequest, w.Code)
		var resp dto.ValidationErrorResponse
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		suite.ElementsMatch([]dto.FieldError{
			{Field: "email", Message: "Invalid email format"},
		}, resp.Errors)
		suite.mockService.AssertNotCalled(suite.T(), "Register", mock.Anything, mock.Anything, mock.Anything)
	})

	suite.Run("service validation error", func() {
		suite.mockService.On("Register", mock.Anything, "b@x.com", "secret1").
			Return(nil, apperrors.NewFieldError("password", "Password must be at least 8 characters")).Once()
		w := suite.post("/auth/register", dto.RegisterRequest{Email: "b@x.com", Password: "secret1"}, "")
		suite.Equal(http.StatusBadRequest, w.Code)
		suite.JSONEq(`{"errors":[{"field":"password","message":"Password must be at least 8 characters"}]}`, w.Body.String())
	})

	suite.Run("duplicate email", func() {
		suite.mockService.On("Register", mock.Anything, "dup@x.com", "secret1").Return(nil, apperrors.ErrDuplicate).Once()
		w := suite.post("/auth/register", dto.RegisterRequest{Email: "dup@x.com", Password: "secret1"}, "")
		suite.Equal(http.StatusInternalServerError, w.Code)
	})
}

func (suite *AuthHandlerTestSuite) TestLogin() {
	suite.Run("success sets cookie", func() {
		suite.mockService.On("Login", mock.Anything, "a@x.com", "secret1").Return(suite.session(), nil).Once()
		w := suite.post("/auth/login", dto.LoginRequest{Email: "a@x.com", Password: "secret1"}, "")
		suite.Require().Equal(http.StatusOK, w.Code)
		suite.JSONEq(`{"accessToken":"access-1","userId":7,"email":"a@x.com","displayName":"a@x.com"}`, w.Body.String())

		cookie := findCookie(w, "refreshToken")
		suite.Require().NotNil(cookie)
		suite.Equal("refresh-1", cookie.Value)
		suite.True(cookie.HttpOnly)
		suite.True(cookie.Secure)
		suite.Equal(http.SameSiteNoneMode, cookie.SameSite)
		suite.Equal("/", cookie.Path)
		suite.Equal(int((7 * 24 * time.Hour).Seconds()), cookie.MaxAge)
	})

	suite.Run("invalid credentials", func() {
		suite.mockService.On("Login", mock.Anything, "a@x.com", "wrong").Return(nil, apperrors.ErrInvalidCredentials).Once()
		w := suite.post("/auth/login", dto.LoginRequest{Email: "a@x.com", Password: "wrong"}, "")
		suite.Equal(http.StatusUnauthorized, w.Code)
		suite.JSONEq(`{"error":"Invalid credentials"}`, w.Body.String())
		suite.Nil(findCookie(w, "refreshToken"))
	})

	suite.Run("store failure", func() {
		upstream := fmt.Errorf("%w: %w", apperrors.ErrUpstream, errors.New("connection refused"))
		suite.mockService.On("Login", mock.Anything, "down@x.com", "secret1").Return(nil, upstream).Once()
		w := suite.post("/auth/login", dto.LoginRequest{Email: "down@x.com", Password: "secret1"}, "")
		suite.Equal(http.StatusInternalServerError, w.Code)
		suite.Contains(w.Body.String(), "connection refused")
	})
}

func (suite *AuthHandlerTestSuite) TestGoogleLogin() {
	suite.Run("success", func() {
		suite.mockService.On("GoogleLogin", mock.Anything, "id-token").Return(suite.session(), nil).Once()
		w := suite.post("/auth/google-login", dto.GoogleLoginRequest{IDToken: "id-token"}, "")
		suite.Equal(http.StatusOK, w.Code)
		suite.JSONEq(`{"accessToken":"access-1"}`, w.Body.String())
		suite.NotNil(findCookie(w, "refreshToken"))
	})

	suite.Run("rejected token", func() {
		suite.mockService.On("GoogleLogin", mock.Anything, "bad").Return(nil, apperrors.ErrInvalidFederatedToken).Once()
		w := suite.post("/auth/google-login", dto.GoogleLoginRequest{IDToken: "bad"}, "")
		suite.Equal(http.StatusUnauthorized, w.Code)
	})

	suite.Run("missing token", func() {
		w := suite.post("/auth/google-login", map[string]string{}, "")
		suite.Equal(http.StatusUnauthorized, w.Code)
	})
}

func (suite *AuthHandlerTestSuite) TestRefresh() {
	suite.mockService.On("Refresh", mock.Anything, "").Return(nil, apperrors.ErrAccessDenied).Once()
	w := suite.post("/auth/refresh", nil, "")
	suite.Equal(http.StatusForbidden, w.Code)
	suite.JSONEq(`{"error":"Access Denied"}`, w.Body.String())

	suite.mockService.On("Refresh", mock.Anything, "stale").Return(nil, apperrors.ErrInvalidRefreshToken).Once()
	w = suite.post("/auth/refresh", nil, "stale")
	suite.Equal(http.StatusForbidden, w.Code)

	suite.mockService.On("Refresh", mock.Anything, "live").Return(&domain.IssuedToken{Value: "access-2"}, nil).Once()
	w = suite.post("/auth/refresh", nil, "live")
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"accessToken":"access-2"}`, w.Body.String())
}

func (suite *AuthHandlerTestSuite) TestLogout() {
	suite.mockService.On("Logout", mock.Anything, "").Return(apperrors.ErrNoTokenProvided).Once()
	w := suite.post("/auth/logout", nil, "")
	suite.Equal(http.StatusBadRequest, w.Code)

	suite.mockService.On("Logout", mock.Anything, "stale").Return(apperrors.ErrInvalidRefreshToken).Once()
	w = suite.post("/auth/logout", nil, "stale")
	suite.Equal(http.StatusBadRequest, w.Code)

	suite.mockService.On("Logout", mock.Anything, "live").Return(nil).Once()
	w = suite.post("/auth/logout", nil, "live")
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"message":"Logged out successfully"}`, w.Body.String())
	cookie := findCookie(w, "refreshToken")
	suite.Require().NotNil(cookie)
	suite.Empty(cookie.Value)
	suite.Less(cookie.MaxAge, 0)
}

// newSQLiteRouter serves the real services over a fresh in-memory SQLite store.
func newSQLiteRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db, err := database.NewSQLiteDB(ctx, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.CreateSchema(ctx, db))

	container := services.NewServiceContainer(cfg, sqlite.NewRepositoryProvider(db), identity.DisabledOracle{})
	r := gin.New()
	handlers.RegisterRoutes(r, cfg, container, nil, nil)
	return r
}

func TestRegisterPasswordRules(t *testing.T) {
	cfg := handlerTestConfig()
	cfg.PasswordMinLength = 4
	r := newSQLiteRouter(t, cfg)

	register := func(email, password string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/register", jsonBody(dto.RegisterRequest{Email: email, Password: password}))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := register("short@x.com", "abcde")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = register("tiny@x.com", "abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"errors":[{"field":"password","message":"Password must be at least 4 characters"}]}`, w.Body.String())

	w = register("long@x.com", strings.Repeat("p", 73))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"errors":[{"field":"password","message":"Password must be at most 72 bytes"}]}`, w.Body.String())
}

// TestAuthEndToEnd drives the HTTP surface over a real SQLite store.
func TestAuthEndToEnd(t *testing.T) {
	r := newSQLiteRouter(t, handlerTestConfig())

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}
	postJSON := func(path string, body any) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, jsonBody(body))
		req.Header.Set("Content-Type", "application/json")
		return serve(req)
	}
	withCookie := func(method, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		return serve(req)
	}
	me := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return serve(req)
	}

	w := postJSON("/auth/register", dto.RegisterRequest{Email: "a@x.com", Password: "secret1"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON("/auth/login", dto.LoginRequest{Email: "a@x.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	var login dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.AccessToken)
	refreshCookie := findCookie(w, "refreshToken")
	require.NotNil(t, refreshCookie)

	w = me(login.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"email":"a@x.com"}`, login.UserID), w.Body.String())

	last := login.AccessToken[len(login.AccessToken)-1]
	alphabet := "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	tampered := login.AccessToken[:len(login.AccessToken)-1] + string(alphabet[(strings.IndexByte(alphabet, last)+16)%64])
	assert.Equal(t, http.StatusForbidden, me(tampered).Code)

	w = withCookie(http.MethodPost, "/auth/refresh", refreshCookie)
	assert.Equal(t, http.StatusOK, w.Code)

	w = withCookie(http.MethodPost, "/auth/logout", refreshCookie)
	assert.Equal(t, http.StatusOK, w.Code)

	w = withCookie(http.MethodPost, "/auth/refresh", refreshCookie)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
