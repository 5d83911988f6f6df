// Package auth exchanges credentials for opaque bearer tokens.
package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/wimotos/wimotos/internal/shared"
	"github.com/wimotos/wimotos/internal/users"
)

// Service wraps authentication business rules.
type Service struct {
	repo   users.Repository
	tokens *shared.TokenManager
}

// NewService constructs a Service.
func NewService(repo users.Repository, tokens *shared.TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Login validates the credentials and mints a bearer token. Every failure
// surfaces as ErrInvalidCredentials so the response never leaks whether the
// account exists.
func (s *Service) Login(ctx context.Context, email, password string) (string, *users.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, shared.ErrInvalidCredentials
	}

	token, err := s.tokens.Mint(ctx, shared.Identity{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
