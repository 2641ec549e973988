package project

import (
	"fmt"

	"github.com/averline/taskwire/internal/models"
)

// Validation errors, all matched by errors.Is(err, models.ErrValidation).
var (
	ErrEmptyName   = fmt.Errorf("%w: project name is required", models.ErrValidation)
	ErrNameTooLong = fmt.Errorf("%w: project name cannot exceed %d characters", models.ErrValidation, MaxNameLength)
)
