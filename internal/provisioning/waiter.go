package provisioning

import (
	"context"
	"time"

	"github.com/llamastack/llsctl/internal/cluster"
)

// Waiter polls a readiness predicate until it holds or a deadline elapses.
//
// Polling with a fixed interval and hard deadline is chosen over event
// subscription because not every target environment exposes a reliable
// change-notification surface during bring-up.
type Waiter struct {
	Store    cluster.Store
	Observer Observer
}

// WaitUntil evaluates check every pollInterval until it reports ready, the
// cumulative elapsed time reaches timeout, or ctx is cancelled. Predicate
// evaluation errors are logged and treated as not-ready so the loop can
// continue toward its deadline.
func (w *Waiter) WaitUntil(ctx context.Context, check ReadinessCheck, timeout, pollInterval time.Duration) error {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}

	w.Observer.Event(Event{
		Type:    EventReadinessWaiting,
		Message: "waiting for " + check.Name,
		Fields: map[string]string{
			"timeout": timeout.String(),
			"poll":    pollInterval.String(),
		},
	})

	start := time.Now()
	for {
		ok, err := check.Probe(ctx, w.Store)
		if err != nil {
			w.Observer.Event(Event{
				Type:    EventReadinessProbeError,
				Message: check.Name + ": " + err.Error(),
			})
		} else if ok {
			return nil
		}

		if time.Since(start) >= timeout {
			return &TimeoutError{Check: check.Name, Elapsed: time.Since(start)}
		}

		select {
		case <-ctx.Done():
			return &CancellationError{Cause: ctx.Err()}
		case <-time.After(pollInterval):
		}
	}
}
