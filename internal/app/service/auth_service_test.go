package service

import (
	"testing"
	"time"

	"github.com/cwd-comments/cwd-backend/config"
	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Login(t *testing.T) {
	hashed, err := util.HashPassword("hashed-secret")
	require.NoError(t, err)

	tests := []struct {
		name     string
		admin    config.AdminConfig
		user     string
		password string
		wantErr  error
	}{
		{
			name:     "Plain password",
			admin:    config.AdminConfig{Name: "admin", Password: "secret"},
			user:     "admin",
			password: "secret",
		},
		{
			name:     "Bcrypt password",
			admin:    config.AdminConfig{Name: "admin", Password: hashed},
			user:     "admin",
			password: "hashed-secret",
		},
		{
			name:     "Wrong password",
			admin:    config.AdminConfig{Name: "admin", Password: "secret"},
			user:     "admin",
			password: "nope",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "Wrong name",
			admin:    config.AdminConfig{Name: "admin", Password: "secret"},
			user:     "root",
			password: "secret",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "Password not configured",
			admin:    config.AdminConfig{Name: "admin"},
			user:     "admin",
			password: "",
			wantErr:  ErrAdminNotConfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(tt.admin, "test-jwt-secret", 15*time.Minute)

			resp, err := svc.Login(tt.user, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, resp.Token)
			assert.Greater(t, resp.ExpiresAt, time.Now().UnixMilli())

			claims, err := svc.ValidateToken(resp.Token)
			require.NoError(t, err)
			assert.Equal(t, "admin", claims.Name)
			assert.Equal(t, model.AdminRole, claims.Role)
		})
	}
}

func TestAuthService_ValidateTokenWrongSecret(t *testing.T) {
	svc := NewAuthService(config.AdminConfig{Name: "admin", Password: "secret"}, "secret-a", time.Minute)
	other := NewAuthService(config.AdminConfig{Name: "admin", Password: "secret"}, "secret-b", time.Minute)

	resp, err := svc.Login("admin", "secret")
	require.NoError(t, err)

	_, err = other.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, util.ErrInvalidToken)
}
