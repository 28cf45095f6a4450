package middleware

import (
	"context"
	"net/http"
	"strings"

	"mentorship-service/internal/model"
	"mentorship-service/pkg/jwtutil"
	"mentorship-service/pkg/logger"
	"mentorship-service/pkg/tokenstore"
	"mentorship-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	TokenHeader = "x-auth-token"

	userIDKey   = "user_id"
	userRoleKey = "user_role"
	claimsKey   = "claims"
)

// UserChecker reports whether a token's user still exists
type UserChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// AuthMiddleware validates the token from x-auth-token or an Authorization Bearer header
// and rejects tokens whose user has been deleted
func AuthMiddleware(jwt *jwtutil.JWTUtil, revoked tokenstore.Store, users UserChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)
			ctx := c.Request().Context()

			// Extract token from x-auth-token or Authorization header
			tokenString := extractToken(c.Request())
			if tokenString == "" {
				log.Warn("Missing auth token")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no token, authorization denied"})
			}

			// Validate signature and expiry
			claims, err := jwt.ValidateToken(tokenString)
			if err != nil {
				log.Warn("Invalid JWT token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token is not valid"})
			}

			// Check if the token was revoked by logout
			if claims.ID != "" {
				isRevoked, err := revoked.IsRevoked(ctx, claims.ID)
				if err != nil {
					log.Error("Failed to check token revocation", zap.Error(err))
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
				}
				if isRevoked {
					prometheus.RecordAuthError("revoked_token")
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token is not valid"})
				}
			}

			// Check the user was not deleted after the token was issued
			exists, err := users.Exists(ctx, claims.UserID)
			if err != nil {
				log.Error("Failed to look up token user", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
			}
			if !exists {
				log.Warn("Token user no longer exists", zap.Uint("user_id", claims.UserID))
				prometheus.RecordAuthError("unknown_user")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token is not valid"})
			}

			// Add user to the context
			c.Set(userIDKey, claims.UserID)
			c.Set(userRoleKey, model.Role(claims.Role))
			c.Set(claimsKey, claims)

			return next(c)
		}
	}
}

func extractToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(TokenHeader)); token != "" {
		return token
	}
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// UserFromContext returns the authenticated user id and role set by AuthMiddleware
func UserFromContext(c echo.Context) (uint, model.Role, bool) {
	id, ok := c.Get(userIDKey).(uint)
	if !ok || id == 0 {
		return 0, "", false
	}
	role, _ := c.Get(userRoleKey).(model.Role)
	return id, role, true
}

// ClaimsFromContext returns the validated token claims
func ClaimsFromContext(c echo.Context) (*jwtutil.UserClaims, bool) {
	claims, ok := c.Get(claimsKey).(*jwtutil.UserClaims)
	return claims, ok
}

// RequireRole rejects users whose role is not in roles
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Get role from context (set by AuthMiddleware)
			_, role, ok := UserFromContext(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no token, authorization denied"})
			}
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}
			logger.FromContext(c).Warn("Role not permitted", zap.String("role", string(role)))
			prometheus.RecordAuthError("forbidden_role")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
		}
	}
}
