package provisioning

import (
	"context"
	"strconv"
	"time"

	"github.com/llamastack/llsctl/internal/cluster"
)

// Applier submits declarative resource documents to the cluster state store,
// retrying transient failures with a fixed delay between attempts. The delay
// is deliberately not exponential: admission webhooks flap on a roughly
// constant cadence during bring-up, and a fixed short delay recovers faster
// than a growing backoff.
type Applier struct {
	Store    cluster.Store
	Observer Observer
}

// Apply submits doc, making up to retries attempts with delay between them.
// It returns the number of attempts made. Callers must not assume completion
// implies readiness; waiting is a separate concern.
func (a *Applier) Apply(ctx context.Context, doc *cluster.ResourceDocument, retries int, delay time.Duration) (int, error) {
	return a.Do(ctx, doc.Identity.String(), func(ctx context.Context) error {
		return a.Store.Apply(ctx, doc)
	}, retries, delay)
}

// Do runs an arbitrary apply-step operation under the same fixed-delay retry
// policy used for document applies. Cancellation is checked at every retry
// boundary; an operation that has started is allowed to complete.
func (a *Applier) Do(ctx context.Context, name string, op func(ctx context.Context) error, retries int, delay time.Duration) (int, error) {
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, &CancellationError{Cause: err}
		}

		a.Observer.Event(Event{
			Type:     EventResourceApplying,
			Resource: name,
			Message:  "applying",
			Fields:   map[string]string{"attempt": strconv.Itoa(attempt)},
		})

		err := op(ctx)
		if err == nil {
			a.Observer.Event(Event{Type: EventResourceApplied, Resource: name, Message: "applied"})
			return attempt, nil
		}
		lastErr = err

		a.Observer.Event(Event{
			Type:     EventResourceRetry,
			Resource: name,
			Message:  err.Error(),
			Fields:   map[string]string{"attempt": strconv.Itoa(attempt)},
		})

		// The delay is honored after every failed attempt, including the
		// last, keeping the retry cadence fixed.
		select {
		case <-ctx.Done():
			return attempt, &CancellationError{Cause: ctx.Err()}
		case <-time.After(delay):
		}
	}

	return retries, &ApplyError{AttemptsMade: retries, Err: lastErr}
}
