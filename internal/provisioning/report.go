package provisioning

import (
	"fmt"
	"strings"
	"time"
)

// RunReport is the ordered, authoritative outcome of one lifecycle run. It is
// produced incrementally and never persisted; the cluster itself is the
// source of truth for idempotent re-runs.
type RunReport struct {
	Operation Operation
	Results   []StageResult

	cancelled bool
}

// Append records a stage result.
func (r *RunReport) Append(res StageResult) {
	r.Results = append(r.Results, res)
}

// MarkCancelled records that the run was terminated by cooperative
// cancellation.
func (r *RunReport) MarkCancelled() {
	r.cancelled = true
}

// Cancelled reports whether the run was terminated by cancellation.
func (r *RunReport) Cancelled() bool {
	return r.cancelled
}

// Succeeded reports the overall lifecycle outcome: true only when no stage
// was skipped and every failure or timeout occurred in a non-fatal stage.
func (r *RunReport) Succeeded() bool {
	if r.cancelled {
		return false
	}
	for _, res := range r.Results {
		switch res.Outcome {
		case OutcomeSucceeded:
		case OutcomeSkipped:
			return false
		default:
			if res.Fatal {
				return false
			}
		}
	}
	return true
}

// FirstFailure returns the first stage result that halted the run, or nil.
func (r *RunReport) FirstFailure() *StageResult {
	for i := range r.Results {
		res := &r.Results[i]
		if res.Outcome == OutcomeFailed || res.Outcome == OutcomeTimedOut {
			if res.Fatal || IsCancellation(res.Err) {
				return res
			}
		}
	}
	return nil
}

// Summary renders a human-readable table of stage outcomes so an operator can
// resume or diagnose from the point of failure.
func (r *RunReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s report:\n", r.Operation)
	for _, res := range r.Results {
		line := fmt.Sprintf("  %-28s %-10s attempts=%d elapsed=%v",
			res.Stage, res.Outcome, res.Attempts, res.Elapsed.Round(time.Millisecond))
		if res.Err != nil {
			line += " error=" + res.Err.Error()
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
