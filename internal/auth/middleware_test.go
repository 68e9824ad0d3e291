package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "powereye/internal/errors"
	"powereye/internal/logging"
	"powereye/internal/model"
)

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenStore) Enabled() bool {
	return m.Called().Bool(0)
}

type protectedServer struct {
	e      *echo.Echo
	called int
}

func newProtectedServer(authn *Authenticator, mws ...echo.MiddlewareFunc) *protectedServer {
	s := &protectedServer{e: echo.New()}
	s.e.HTTPErrorHandler = apperrors.HTTPErrorHandler(logging.Discard())

	chain := append([]echo.MiddlewareFunc{authn.Middleware()}, mws...)
	s.e.GET("/protected", func(c echo.Context) error {
		s.called++
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return c.NoContent(http.StatusTeapot)
		}
		return c.JSON(http.StatusOK, claims)
	}, chain...)
	return s
}

func (s *protectedServer) do(t *testing.T, header string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestMiddleware_Outcomes(t *testing.T) {
	jwtService := NewJWTService("test-secret", 0)
	valid, _, err := jwtService.GenerateToken(testUser)
	require.NoError(t, err)

	expired, _, err := jwtService.WithClock(fixedClock(time.Now().Add(-48 * time.Hour))).GenerateToken(testUser)
	require.NoError(t, err)

	foreign, _, err := NewJWTService("other-secret", 0).GenerateToken(testUser)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"no header", "", http.StatusUnauthorized, MsgNoToken},
		{"scheme only", "Bearer", http.StatusUnauthorized, MsgNoToken},
		{"empty token", "Bearer    ", http.StatusUnauthorized, MsgNoToken},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, MsgNoToken},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized, MsgInvalidToken},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, MsgInvalidToken},
		{"foreign signature", "Bearer " + foreign, http.StatusUnauthorized, MsgInvalidToken},
		{"tampered token", "Bearer " + valid + "x", http.StatusUnauthorized, MsgInvalidToken},
		{"valid token", "Bearer " + valid, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newProtectedServer(NewAuthenticator(jwtService, nil))
			status, body := srv.do(t, tt.header)

			assert.Equal(t, tt.status, status)
			if tt.message != "" {
				assert.Equal(t, tt.message, body["error"])
				assert.Zero(t, srv.called, "handler must not run")
				return
			}
			assert.Equal(t, 1, srv.called)
			assert.EqualValues(t, testUser.ID, body["id"])
			assert.Equal(t, testUser.Email, body["email"])
			assert.Equal(t, testUser.Role, body["role"])
		})
	}
}

func TestMiddleware_RevokedToken(t *testing.T) {
	jwtService := NewJWTService("test-secret", 0)
	token, claims, err := jwtService.GenerateToken(testUser)
	require.NoError(t, err)

	store := new(MockTokenStore)
	store.On("Enabled").Return(true)
	store.On("IsTokenRevoked", mock.Anything, claims.ID).Return(true, nil)

	srv := newProtectedServer(NewAuthenticator(jwtService, store))
	status, body := srv.do(t, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, MsgInvalidToken, body["error"])
	assert.Zero(t, srv.called)
	store.AssertExpectations(t)
}

func TestMiddleware_DenylistErrorFailsOpen(t *testing.T) {
	jwtService := NewJWTService("test-secret", 0)
	token, claims, err := jwtService.GenerateToken(testUser)
	require.NoError(t, err)

	store := new(MockTokenStore)
	store.On("Enabled").Return(true)
	store.On("IsTokenRevoked", mock.Anything, claims.ID).Return(false, assert.AnError)

	srv := newProtectedServer(NewAuthenticator(jwtService, store))
	status, _ := srv.do(t, "Bearer "+token)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, srv.called)
}

func TestRequireRole(t *testing.T) {
	jwtService := NewJWTService("test-secret", 0)
	operatorToken, _, err := jwtService.GenerateToken(testUser)
	require.NoError(t, err)
	adminToken, _, err := jwtService.GenerateToken(&model.User{ID: 1, Email: "admin@x.com", Role: model.RoleAdmin})
	require.NoError(t, err)

	srv := newProtectedServer(NewAuthenticator(jwtService, nil), RequireRole(model.RoleAdmin))

	status, body := srv.do(t, "Bearer "+operatorToken)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, MsgAccessDenied, body["error"])
	assert.Zero(t, srv.called)

	status, _ = srv.do(t, "Bearer "+adminToken)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, srv.called)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"BEARER abc", "abc", true},
		{"Bearer  abc ", "abc", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Token abc", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		token, ok := BearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}
