// Package provisioning implements the declarative multi-stage pipeline that
// drives platform lifecycle operations.
//
// # Core Types
//
// Stage is one unit of apply plus optional readiness wait. The Orchestrator
// runs an ordered stage sequence to completion or first fatal failure and
// returns a RunReport. ResourceApplier retries transient apply failures with
// a fixed delay; ReadinessWaiter polls a predicate under a hard deadline.
// Both honor cooperative cancellation at every retry boundary and poll tick.
//
// Stage ordering is strict and linear: stage N+1 never begins before stage N
// reaches a terminal state. The only permitted parallelism is the concurrent
// deletion of independent namespaces during teardown.
package provisioning
