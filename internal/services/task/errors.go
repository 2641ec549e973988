package task

import (
	"fmt"

	"github.com/averline/taskwire/internal/models"
)

// Validation errors, all matched by errors.Is(err, models.ErrValidation).
var (
	ErrEmptyTitle      = fmt.Errorf("%w: task title is required", models.ErrValidation)
	ErrTitleTooLong    = fmt.Errorf("%w: task title cannot exceed %d characters", models.ErrValidation, MaxTitleLength)
	ErrMissingProject  = fmt.Errorf("%w: project is required", models.ErrValidation)
	ErrInvalidStatus   = fmt.Errorf("%w: invalid status", models.ErrValidation)
	ErrInvalidPriority = fmt.Errorf("%w: invalid priority", models.ErrValidation)
)
