package auth

import (
	"errors"
	"fmt"

	"github.com/averline/taskwire/internal/models"
)

var (
	ErrEmptyName        = fmt.Errorf("%w: name is required", models.ErrValidation)
	ErrInvalidEmail     = fmt.Errorf("%w: a valid email is required", models.ErrValidation)
	ErrPasswordTooShort = fmt.Errorf("%w: password must be at least 6 characters", models.ErrValidation)
	ErrEmailTaken       = fmt.Errorf("%w: email is already registered", models.ErrValidation)

	// ErrInvalidCredentials covers both unknown email and wrong
	// password so login failures do not reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken covers malformed, expired, and forged tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)
