package provisioning

import (
	"errors"
	"fmt"
	"time"
)

// ApplyError reports a resource apply that exhausted its retry budget.
type ApplyError struct {
	AttemptsMade int
	Err          error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply failed after %d attempts: %v", e.AttemptsMade, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }

// TimeoutError reports a readiness predicate that never became true within
// its budget.
type TimeoutError struct {
	Check   string
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %v waiting for %s", e.Elapsed.Round(time.Millisecond), e.Check)
}

// CancellationError reports cooperative cancellation observed during a wait
// or retry. It terminates the run regardless of stage fatality.
type CancellationError struct {
	Cause error
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("cancelled: %v", e.Cause)
}

func (e *CancellationError) Unwrap() error { return e.Cause }

// IsCancellation reports whether err carries a CancellationError.
func IsCancellation(err error) bool {
	var ce *CancellationError
	return errors.As(err, &ce)
}
