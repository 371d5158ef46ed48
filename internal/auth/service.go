// Package auth provides the authenticated-identity layer: credential checks,
// Redis backed sessions, and bearer tokens for API clients.
package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/vagaflow/vagaflow/internal/shared"
	"github.com/vagaflow/vagaflow/internal/users"
)

// Service wraps authentication business rules.
type Service struct {
	users users.Repository
}

// NewService constructs a new Service.
func NewService(userRepo users.Repository) *Service {
	return &Service{users: userRepo}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Resolve loads the identity for a user id, rejecting inactive accounts.
func (s *Service) Resolve(ctx context.Context, userID int64) (shared.Identity, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return shared.Identity{}, err
	}
	if !user.IsActive {
		return shared.Identity{}, shared.ErrNotFound
	}
	return shared.Identity{UserID: user.ID, GlobalRole: user.GlobalRole}, nil
}
