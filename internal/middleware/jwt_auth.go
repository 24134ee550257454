package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/foodgram/backend/internal/logging"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// ContextUserIDKey holds the authenticated user's ID in the echo context.
const ContextUserIDKey = "userID"

// UserProvisioner creates the local row for a user a token describes.
type UserProvisioner interface {
	EnsureUser(ctx context.Context, user *models.User) error
}

// JWTAuthMiddleware verifies a bearer token when one is present and stores
// its user ID in the context. Requests without an Authorization
// header pass through as anonymous; handlers decide whether that is allowed.
func JWTAuthMiddleware(secret string, users UserProvisioner) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}

			// Expecting "Bearer <token>"
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			claims, err := ParseToken(parts[1], secret)
			if err != nil {
				if errors.Is(err, jwt.ErrSignatureInvalid) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token signature")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			if claims.UserID == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token does not identify a user")
			}

			ctx := c.Request().Context()
			if users != nil {
				if err := users.EnsureUser(ctx, claims.ToUser()); err != nil {
					logging.Ctx(ctx).Warn().Err(err).
						Uint("user_id", claims.UserID).
						Str("username", claims.Username).
						Str("email", claims.Email).
						Msg("cannot provision user from token")
					return err
				}
			}

			l := logging.Ctx(ctx).With().Uint("user_id", claims.UserID).Logger()
			c.SetRequest(c.Request().WithContext(logging.WithContext(ctx, l)))
			c.Set(ContextUserIDKey, claims.UserID)

			return next(c)
		}
	}
}

// ParseToken verifies an HMAC-signed token and returns its claims.
func ParseToken(tokenString, secret string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// SignToken issues a token for claims. Used by tests and local tooling.
func SignToken(claims *models.JwtCustomClaims, secret string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// RequireAuth rejects anonymous requests.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id, _ := c.Get(ContextUserIDKey).(uint); id == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication credentials were not provided.")
			}
			return next(c)
		}
	}
}
