package service

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/cwd-comments/cwd-backend/config"
	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/pkg/logger"
	"github.com/cwd-comments/cwd-backend/pkg/util"
)

var (
	ErrInvalidCredentials = errors.New("invalid name or password")
	ErrAdminNotConfigured = errors.New("admin password is not configured")
)

type AuthService interface {
	Login(name, password string) (*model.AdminLoginResponse, error)
	ValidateToken(token string) (*util.Claims, error)
}

type authService struct {
	admin        config.AdminConfig
	jwtSecret    string
	accessExpiry time.Duration
}

func NewAuthService(admin config.AdminConfig, jwtSecret string, accessExpiry time.Duration) AuthService {
	return &authService{
		admin:        admin,
		jwtSecret:    jwtSecret,
		accessExpiry: accessExpiry,
	}
}

// Login 설정된 운영자 계정으로 로그인 후 access token 발급
func (s *authService) Login(name, password string) (*model.AdminLoginResponse, error) {
	logger.Info("Admin login attempt", map[string]interface{}{
		"name": name,
	})

	if s.admin.Password == "" {
		logger.Warn("Admin login rejected: password not configured", nil)
		return nil, ErrAdminNotConfigured
	}

	nameOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(name)), []byte(s.admin.Name)) == 1
	if !nameOK || !util.CheckSecret(s.admin.Password, password) {
		logger.Warn("Admin login failed: invalid credentials", map[string]interface{}{
			"name": name,
		})
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := util.GenerateAccessToken(s.admin.Name, model.AdminRole, s.jwtSecret, s.accessExpiry)
	if err != nil {
		logger.Error("Failed to generate admin token", err, map[string]interface{}{
			"name": name,
		})
		return nil, err
	}

	logger.Info("Admin logged in", map[string]interface{}{
		"name": s.admin.Name,
	})
	return &model.AdminLoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.UnixMilli(),
	}, nil
}

func (s *authService) ValidateToken(token string) (*util.Claims, error) {
	return util.ValidateToken(token, s.jwtSecret)
}
