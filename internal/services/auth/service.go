// Package auth implements registration, login, and bearer-token
// resolution. Password hashing sits behind the PasswordHasher
// interface; everything else in the system only ever sees a user id.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/averline/taskwire/internal/models"
	"github.com/averline/taskwire/internal/store"
)

// Service defines authentication operations.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	// ResolveToken maps a bearer token to the authenticated user id.
	ResolveToken(token string) (string, error)
}

// RegisterRequest encapsulates the data needed to create an account.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// PasswordHasher abstracts password hashing so the service never
// handles hash formats directly.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type service struct {
	store  store.EntityStore
	hasher PasswordHasher
	tokens *TokenIssuer
}

// NewService creates an auth service.
func NewService(st store.EntityStore, hasher PasswordHasher, tokens *TokenIssuer) Service {
	return &service{store: st, hasher: hasher, tokens: tokens}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*models.User, string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" {
		return nil, "", ErrEmptyName
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return nil, "", ErrInvalidEmail
	}
	if len(req.Password) < 6 {
		return nil, "", ErrPasswordTooShort
	}

	if _, err := s.store.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	u := &models.User{
		ID:           store.NewID(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return u, token, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return u, token, nil
}

func (s *service) ResolveToken(token string) (string, error) {
	return s.tokens.Verify(token)
}
