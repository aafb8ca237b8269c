package journal

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation reports malformed caller input. The operation made no
	// change.
	ErrValidation = errors.New("journal: invalid input")

	// ErrNoSelection reports an operation that needs a selected album when
	// none is selected.
	ErrNoSelection = errors.New("journal: no album selected")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
