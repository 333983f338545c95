package provisioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/llamastack/llsctl/internal/cluster"
)

// StageRunner drives a single stage through its state machine:
//
//	Pending -> Applying -> (Waiting | Succeeded) -> Succeeded | Failed | TimedOut
type StageRunner struct {
	Store    cluster.Store
	Observer Observer
}

// Run executes the stage and returns its terminal result. Errors are captured
// into the StageResult, never returned; the Orchestrator decides what a
// failure means based on stage fatality.
func (r *StageRunner) Run(ctx context.Context, stage Stage) StageResult {
	start := time.Now()
	res := StageResult{Stage: stage.Name, Outcome: OutcomeSucceeded, Fatal: stage.Fatal}

	skip := false
	if stage.SkipApplyIf != nil {
		ok, err := stage.SkipApplyIf.Probe(ctx, r.Store)
		if err == nil && ok {
			r.Observer.Event(Event{
				Type:    EventResourceExists,
				Stage:   stage.Name,
				Message: stage.SkipApplyIf.Name + "; skipping apply",
			})
			skip = true
		}
	}

	if !skip {
		attempts, err := r.apply(ctx, stage)
		res.Attempts = attempts
		if err != nil {
			res.Outcome = OutcomeFailed
			res.Err = err
			res.Elapsed = time.Since(start)
			return res
		}
	}

	if stage.Readiness != nil {
		waiter := &Waiter{Store: r.Store, Observer: r.Observer.WithFields(map[string]string{"stage": stage.Name})}
		if err := waiter.WaitUntil(ctx, *stage.Readiness, stage.ReadinessTimeout, stage.ReadinessPollInterval); err != nil {
			var te *TimeoutError
			if errors.As(err, &te) {
				res.Outcome = OutcomeTimedOut
			} else {
				res.Outcome = OutcomeFailed
			}
			res.Err = err
		}
	}

	res.Elapsed = time.Since(start)
	return res
}

// apply performs the stage's apply step under the fixed-delay retry policy.
func (r *StageRunner) apply(ctx context.Context, stage Stage) (int, error) {
	applier := &Applier{Store: r.Store, Observer: r.Observer.WithFields(map[string]string{"stage": stage.Name})}

	switch {
	case stage.Action != nil:
		return applier.Do(ctx, stage.Name, stage.Action, stage.MaxApplyRetries, stage.ApplyRetryDelay)

	case len(stage.Delete) > 0:
		return applier.Do(ctx, stage.Name, func(ctx context.Context) error {
			return r.deleteAll(ctx, stage)
		}, stage.MaxApplyRetries, stage.ApplyRetryDelay)

	default:
		doc := stage.Document
		if doc == nil && stage.Build != nil {
			built, err := stage.Build()
			if err != nil {
				return 0, fmt.Errorf("failed to build document for stage %s: %w", stage.Name, err)
			}
			doc = built
		}
		if doc == nil {
			return 0, fmt.Errorf("stage %s has nothing to apply", stage.Name)
		}
		return applier.Apply(ctx, doc, stage.MaxApplyRetries, stage.ApplyRetryDelay)
	}
}

// deleteAll removes the stage's identities with not-found tolerance. The
// deletions run concurrently only when the stage permits it (independent
// namespaces); everything else stays sequential.
func (r *StageRunner) deleteAll(ctx context.Context, stage Stage) error {
	observer := r.Observer.WithFields(map[string]string{"stage": stage.Name})

	deleteOne := func(ctx context.Context, id cluster.Identity) error {
		if err := r.Store.Delete(ctx, id, true); err != nil {
			return err
		}
		observer.Event(Event{Type: EventResourceDeleted, Resource: id.String(), Message: "deleted"})
		return nil
	}

	if stage.Concurrent {
		g, gctx := errgroup.WithContext(ctx)
		for _, id := range stage.Delete {
			g.Go(func() error { return deleteOne(gctx, id) })
		}
		return g.Wait()
	}

	for _, id := range stage.Delete {
		if err := deleteOne(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
