package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
)

// AuthMiddleware resolves the caller's stable user ID from a Firebase ID
// token before any chat operation runs. Verification is delegated entirely
// to the Admin SDK.
type AuthMiddleware struct {
	authClient *auth.Client
}

func NewAuthMiddleware(authClient *auth.Client) *AuthMiddleware {
	return &AuthMiddleware{
		authClient: authClient,
	}
}

// Authenticate guards HTTP routes: a verified bearer token puts the user ID
// into the request context as "uid", anything else is a 401.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authorization must be a Bearer token")
		}

		token, err := m.authClient.VerifyIDToken(c.Request().Context(), parts[1])
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Token is invalid or has expired")
		}

		c.Set("uid", token.UID)

		return next(c)
	}
}

// GetUIDFromToken verifies a raw ID token outside the HTTP middleware chain.
// The WebSocket handler uses it for query-param tokens, where browsers
// cannot send an Authorization header.
func (m *AuthMiddleware) GetUIDFromToken(ctx context.Context, token string) (string, error) {
	firebaseToken, err := m.authClient.VerifyIDToken(ctx, token)
	if err != nil {
		return "", err
	}

	return firebaseToken.UID, nil
}
