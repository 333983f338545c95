package provisioning

import (
	"context"
	"time"

	"github.com/llamastack/llsctl/internal/cluster"
)

// Orchestrator owns the ordered stage sequence for a lifecycle operation and
// drives it to completion or first fatal failure.
type Orchestrator struct {
	observer Observer
	runner   *StageRunner
}

// NewOrchestrator creates an orchestrator over the given cluster store.
func NewOrchestrator(store cluster.Store, observer Observer) *Orchestrator {
	return &Orchestrator{
		observer: observer,
		runner:   &StageRunner{Store: store, Observer: observer},
	}
}

// RunLifecycle executes the stages in order and returns the accumulated
// report regardless of overall success. Execution is strictly sequential: a
// stage begins only after the previous one reached a terminal state. The run
// halts at the first fatal Failed or TimedOut stage, or at any cancellation,
// and records all remaining stages as Skipped.
func (o *Orchestrator) RunLifecycle(ctx context.Context, operation Operation, stages []Stage) *RunReport {
	start := time.Now()
	report := &RunReport{Operation: operation}

	o.observer.Printf("Starting %s with %d stages...", operation, len(stages))

	halted := false
	for i, stage := range stages {
		if halted {
			res := StageResult{Stage: stage.Name, Outcome: OutcomeSkipped, Fatal: stage.Fatal}
			report.Append(res)
			LogStageResult(o.observer, res)
			recordStage(operation, res)
			continue
		}

		o.observer.Printf("[%s (%d/%d)] starting", stage.Name, i+1, len(stages))
		LogStageStart(o.observer, stage.Name)

		res := o.runner.Run(ctx, stage)
		report.Append(res)
		LogStageResult(o.observer, res)
		recordStage(operation, res)

		if IsCancellation(res.Err) {
			report.MarkCancelled()
			halted = true
			continue
		}
		if (res.Outcome == OutcomeFailed || res.Outcome == OutcomeTimedOut) && stage.Fatal {
			halted = true
		}
	}

	recordRun(operation, report.Succeeded())
	o.observer.Printf("%s finished in %v (succeeded=%t)",
		operation, time.Since(start).Round(time.Millisecond), report.Succeeded())

	return report
}
