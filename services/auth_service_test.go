package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name     string
		hash     string
		password string
		wantErr  error
	}{
		{"correct password", string(hash), "s3cret", nil},
		{"wrong password", string(hash), "guess", ErrAuthInvalidCredentials},
		{"empty password", string(hash), "", ErrValidationFailed},
		{"login disabled", "", "s3cret", ErrAuthInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(tt.hash, discardLogger)
			id, err := svc.Login(context.Background(), LoginInput{Password: tt.password})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, id)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, RoleAdmin, id.Role)
		})
	}
}
