package seed

import (
	"errors"
	"fmt"
)

// Provider refused the supplied credentials
var ErrCredentialsRejected = errors.New("credentials rejected by timing provider")

// Session seed could not be resolved
type ResolutionError struct {
	SessionID string
	Err       error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve seed for session %q: %v", e.SessionID, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }
