package provisioning

import (
	"context"
	"time"

	"github.com/llamastack/llsctl/internal/cluster"
)

// Operation names a lifecycle operation driven by the Orchestrator.
type Operation string

const (
	// OperationProvision deploys the platform components.
	OperationProvision Operation = "provision"
	// OperationUnprovision removes everything provision can create.
	OperationUnprovision Operation = "unprovision"
	// OperationSetup installs the operator and catalog source.
	OperationSetup Operation = "setup"
	// OperationCleanup removes the operator and catalog source.
	OperationCleanup Operation = "cleanup"
)

// Outcome is the terminal state of a stage.
type Outcome string

const (
	OutcomeSucceeded Outcome = "Succeeded"
	OutcomeFailed    Outcome = "Failed"
	OutcomeTimedOut  Outcome = "TimedOut"
	OutcomeSkipped   Outcome = "Skipped"
)

// DocumentBuilder defers resource document construction to stage run time.
type DocumentBuilder func() (*cluster.ResourceDocument, error)

// Stage is one unit of apply plus optional readiness wait in the pipeline.
//
// Exactly one of Document, Build, Action, or Delete describes the apply step.
// Action covers work that is not a plain document apply (helm release
// installation, the realm configurator callable); Delete lists identities to
// remove with not-found tolerance.
type Stage struct {
	Name string

	Document *cluster.ResourceDocument
	Build    DocumentBuilder
	Action   func(ctx context.Context) error
	Delete   []cluster.Identity

	// Concurrent permits parallel deletion of the identities in Delete.
	// Only independent namespace deletions may set this.
	Concurrent bool

	// SkipApplyIf makes the apply conditional: when the predicate observes
	// true the apply is skipped, but any readiness wait still runs.
	SkipApplyIf *ReadinessCheck

	Readiness *ReadinessCheck

	MaxApplyRetries       int
	ApplyRetryDelay       time.Duration
	ReadinessTimeout      time.Duration
	ReadinessPollInterval time.Duration

	// Fatal stages halt the remainder of the pipeline on failure or timeout.
	Fatal bool

	// Creates lists the resource identities this stage can create, keyed
	// identically for teardown planning.
	Creates []cluster.Identity
}

// StageResult records the terminal state of one stage for the RunReport.
type StageResult struct {
	Stage    string
	Outcome  Outcome
	Attempts int
	Elapsed  time.Duration
	Fatal    bool
	Err      error
}
