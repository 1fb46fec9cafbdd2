package insight

import (
	"errors"
	"fmt"
)

// Sentinel errors for insight operations.
var (
	ErrEmptyPlace     = errors.New("insight: place is required")
	ErrInvalidInsight = errors.New("insight: invalid model output")
)

// ValidationError reports model output that could not be turned into an
// Insight. It matches ErrInvalidInsight with errors.Is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("insight: invalid model output: %s", e.Reason)
}

// Is reports whether target is ErrInvalidInsight.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInsight
}

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
