package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emirk/academia/internal/app/models"
	"github.com/emirk/academia/internal/app/store"
	"github.com/emirk/academia/internal/pkg/apperrors"
)

func TestLogin(t *testing.T) {
	dataStore := store.New()
	alice, err := dataStore.CreateUser("alice", "pw123", models.RoleStudent)
	require.NoError(t, err)
	inactive, err := dataStore.CreateUser("gone", "pw", models.RoleFaculty)
	require.NoError(t, err)
	require.NoError(t, dataStore.SetUserActive(inactive.ID, false))

	svc := NewAuthService(dataStore)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "ok", username: "alice", password: "pw123"},
		{name: "wrong password", username: "alice", password: "pw124", wantErr: apperrors.ErrInvalidCredentials},
		{name: "unknown user", username: "mallory", password: "pw123", wantErr: apperrors.ErrInvalidCredentials},
		{name: "empty username", username: "", password: "pw123", wantErr: apperrors.ErrInvalidCredentials},
		{name: "empty password", username: "alice", password: "", wantErr: apperrors.ErrInvalidCredentials},
		{name: "inactive account", username: "gone", password: "pw", wantErr: apperrors.ErrAccountInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := svc.Login(tt.username, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, alice.ID, identity.UserID)
			assert.Equal(t, models.RoleStudent, identity.Role)
		})
	}
}

// TestLoginRepeatedFailures checks failed attempts stay independent: a later
// correct login is not affected by earlier bad ones.
func TestLoginRepeatedFailures(t *testing.T) {
	dataStore := store.New()
	_, err := dataStore.CreateUser("bob", "right", models.RoleStudent)
	require.NoError(t, err)

	svc := NewAuthService(dataStore)
	for i := 0; i < 10; i++ {
		_, err := svc.Login("bob", "wrong")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	}

	_, err = svc.Login("bob", "right")
	assert.NoError(t, err)
}
