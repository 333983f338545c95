// Package cluster provides access to the cluster state store used by the
// provisioning pipeline.
//
// The store exposes three operations: create-or-update apply of an opaque
// resource document, lookup by identity, and not-found-tolerant delete.
// Two implementations exist: a dynamic client-go backed store for real
// clusters and an in-memory fake for tests.
package cluster
