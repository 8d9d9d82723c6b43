package cleanup

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCleanupFailed matches every *CleanupError.
var ErrCleanupFailed = errors.New("cleanup failed")

// CleanupError reports where a deletion stopped. Batches listed in Committed
// stay applied.
type CleanupError struct {
	UserID    string
	Phase     string
	Committed []string
	Err       error
}

func (e *CleanupError) Error() string {
	committed := "none"
	if len(e.Committed) > 0 {
		committed = strings.Join(e.Committed, ",")
	}
	return fmt.Sprintf("cleanup of user %s failed in %s (committed: %s): %v", e.UserID, e.Phase, committed, e.Err)
}

func (e *CleanupError) Unwrap() error { return e.Err }

func (e *CleanupError) Is(target error) bool { return target == ErrCleanupFailed }
