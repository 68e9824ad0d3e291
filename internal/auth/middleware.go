package auth

import (
	"fmt"
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "powereye/internal/errors"
)

// ClaimsContextKey is the echo context key holding the verified *Claims.
const ClaimsContextKey = "claims"

// Messages returned to clients on authentication failure.
const (
	MsgNoToken      = "No token provided"
	MsgInvalidToken = "Invalid or expired token"
	MsgAccessDenied = "Access denied"
)

const bearerPrefix = "Bearer "

// Authenticator verifies bearer tokens on incoming requests.
type Authenticator struct {
	jwtService *JWTService
	tokenStore TokenStoreInterface
}

// NewAuthenticator creates an authenticator. tokenStore may be nil, in which
// case verification depends only on the header and the signing secret.
func NewAuthenticator(jwtService *JWTService, tokenStore TokenStoreInterface) *Authenticator {
	return &Authenticator{jwtService: jwtService, tokenStore: tokenStore}
}

// Middleware rejects requests without a valid bearer token and stores the
// claims under ClaimsContextKey for downstream handlers.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:     ClaimsContextKey,
		TokenLookup:    "header:" + echo.HeaderAuthorization + ":" + bearerPrefix,
		ParseTokenFunc: a.parseToken,
		ErrorHandler:   a.handleError,
	})
}

func (a *Authenticator) parseToken(c echo.Context, token string) (interface{}, error) {
	claims, err := a.jwtService.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	if a.tokenStore != nil && a.tokenStore.Enabled() {
		revoked, err := a.tokenStore.IsTokenRevoked(c.Request().Context(), claims.ID)
		if err == nil && revoked {
			return nil, fmt.Errorf("%w: revoked", ErrTokenInvalid)
		}
	}

	return claims, nil
}

// handleError tells a missing or malformed header apart from a token that
// failed verification.
func (a *Authenticator) handleError(c echo.Context, err error) error {
	if _, ok := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization)); !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
			Error: MsgNoToken,
			Code:  "TOKEN_MISSING",
		}).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
		Error: MsgInvalidToken,
		Code:  "TOKEN_INVALID",
	}).SetInternal(err)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// ClaimsFromContext returns the claims stored by Middleware.
func ClaimsFromContext(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(ClaimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

// RequireRole allows the request through only when the verified role is one
// of roles. It must run after Middleware.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: MsgNoToken,
					Code:  "TOKEN_MISSING",
				})
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorResponse{
				Error: MsgAccessDenied,
				Code:  "FORBIDDEN",
			})
		}
	}
}
