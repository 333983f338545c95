// Package main is the entry point for the llsctl CLI.
//
// llsctl provisions a LlamaStack AI-platform deployment onto a
// Kubernetes/OpenShift cluster: operator installation, multi-stage component
// provisioning with readiness tracking, and symmetric teardown.
//
// Commands: init, setup, provision, unprovision, cleanup, version.
//
// For detailed usage information, run:
//
//	llsctl --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/llamastack/llsctl/cmd/llsctl/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	// Interrupt cancels the pipeline cooperatively: in-flight applies
	// complete, waiting and backoff are interrupted.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
