package comment

import (
	"fmt"

	"github.com/averline/taskwire/internal/models"
)

// Validation errors, all matched by errors.Is(err, models.ErrValidation).
var (
	ErrEmptyContent   = fmt.Errorf("%w: comment content is required", models.ErrValidation)
	ErrContentTooLong = fmt.Errorf("%w: comment cannot exceed %d characters", models.ErrValidation, models.MaxCommentLength)
)
