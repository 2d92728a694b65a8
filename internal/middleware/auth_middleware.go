package middleware

import (
	stdErrors "errors"
	"net/http"
	"strings"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/internal/errors"
	"github.com/cwd-comments/cwd-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

// Context keys for the authenticated operator
const (
	AdminNameKey = "admin_name"
	AdminRoleKey = "admin_role"
)

type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
	}
}

// Authenticate requires a valid admin JWT.
// The token comes from "Authorization: Bearer <token>" or, for websocket
// upgrades that cannot set headers, the "token" query parameter.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		var token string
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				log.Warn("Invalid authorization header format", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid authorization header format")
				c.Abort()
				return
			}
			token = strings.TrimSpace(parts[1])
		} else {
			token = c.Query("token")
			if token == "" {
				log.Warn("Missing authorization header", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.Unauthorized(c, "Authorization header is required")
				c.Abort()
				return
			}
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			if stdErrors.Is(err, util.ErrExpiredToken) {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Token has expired")
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid token")
			}
			c.Abort()
			return
		}

		if claims.Role != model.AdminRole {
			log.Warn("Token without admin role", map[string]interface{}{
				"path": c.Request.URL.Path,
				"role": claims.Role,
			})
			errors.Forbidden(c, errors.AuthzAdminOnly, "Admin access required")
			c.Abort()
			return
		}

		c.Set(AdminNameKey, claims.Name)
		c.Set(AdminRoleKey, claims.Role)

		log.Debug("Admin authenticated", map[string]interface{}{
			"name": claims.Name,
		})
		c.Next()
	}
}

// GetAdminName extracts the operator name from context
func GetAdminName(c *gin.Context) (string, bool) {
	name, exists := c.Get(AdminNameKey)
	if !exists {
		return "", false
	}
	s, ok := name.(string)
	return s, ok
}
