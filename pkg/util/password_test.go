package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("admin-key-123")
	require.NoError(t, err)

	assert.NotEqual(t, "admin-key-123", hash)
	assert.True(t, IsBcryptHash(hash))
	assert.True(t, VerifyPassword(hash, "admin-key-123"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("invalid-hash", "admin-key-123"))
}

func TestCheckSecret(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	tests := []struct {
		name       string
		configured string
		candidate  string
		want       bool
	}{
		{"plain match", "s3cret", "s3cret", true},
		{"plain mismatch", "s3cret", "nope", false},
		{"hash match", hash, "s3cret", true},
		{"hash mismatch", hash, "nope", false},
		{"empty configured", "", "s3cret", false},
		{"empty candidate", "s3cret", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckSecret(tt.configured, tt.candidate))
		})
	}
}
