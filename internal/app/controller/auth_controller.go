package controller

import (
	"errors"
	"net/http"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/internal/app/service"
	apperrors "github.com/cwd-comments/cwd-backend/internal/errors"
	"github.com/cwd-comments/cwd-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

// Login handles operator login
// POST /admin/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req model.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "name and password are required")
		return
	}

	resp, err := ctrl.authService.Login(req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			log.Warn("Login failed: invalid credentials", map[string]interface{}{
				"name": req.Name,
				"ip":   c.ClientIP(),
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid name or password")
		case errors.Is(err, service.ErrAdminNotConfigured):
			log.Warn("Login attempted without admin password configured", nil)
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid name or password")
		default:
			log.Error("Login failed", err)
			apperrors.InternalError(c, "")
		}
		return
	}

	log.Info("Admin logged in", map[string]interface{}{
		"name": req.Name,
	})
	c.JSON(http.StatusOK, resp)
}
