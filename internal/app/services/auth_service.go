package services

import (
	"strings"

	"github.com/emirk/academia/internal/app/models"
	"github.com/emirk/academia/internal/app/store"
	"github.com/emirk/academia/internal/pkg/apperrors"
)

// Identity is a role-tagged identity bound to a connection after login
type Identity struct {
	UserID   int64
	Username string
	Role     models.RoleType
}

// AuthService validates credentials against the shared data store
type AuthService struct {
	store *store.Store
}

// NewAuthService creates a new auth service instance
func NewAuthService(dataStore *store.Store) *AuthService {
	return &AuthService{store: dataStore}
}

// Login checks a username/password pair and returns the account identity.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
// Each attempt is stateless; there is no lockout.
func (s *AuthService) Login(username, password string) (Identity, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return Identity{}, apperrors.ErrInvalidCredentials
	}

	user, err := s.store.FindUserByUsername(username)
	if err != nil {
		return Identity{}, apperrors.ErrInvalidCredentials
	}
	if user.Password != password {
		return Identity{}, apperrors.ErrInvalidCredentials
	}
	if !user.Active {
		return Identity{}, apperrors.ErrAccountInactive
	}

	return Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}
