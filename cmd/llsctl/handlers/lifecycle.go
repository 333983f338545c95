// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/llamastack/llsctl/internal/cluster"
	"github.com/llamastack/llsctl/internal/config"
	"github.com/llamastack/llsctl/internal/helm"
	"github.com/llamastack/llsctl/internal/keycloak"
	"github.com/llamastack/llsctl/internal/provisioning"
	"github.com/llamastack/llsctl/internal/stages"
)

// ErrRunFailed signals that the lifecycle run finished with at least one
// fatal stage failure; the CLI maps it to a non-zero exit code.
var ErrRunFailed = errors.New("one or more stages failed")

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfig loads the configuration snapshot.
	loadConfig = config.Load

	// loadTimeouts loads the timing configuration from the environment.
	loadTimeouts = config.LoadTimeouts

	// readFile reads the kubeconfig bytes.
	readFile = os.ReadFile

	// newStore creates the cluster state store.
	newStore = func(kubeconfig []byte) (cluster.Store, error) {
		return cluster.NewClientFromBytes(kubeconfig)
	}

	// newHelm creates the chart installer.
	newHelm = func(kubeconfig []byte) stages.HelmInstaller {
		return helm.NewClient(kubeconfig)
	}

	// newRealm creates the identity-provider configurator.
	newRealm = func(snap *config.Snapshot) stages.RealmEnsurer {
		return &keycloak.Configurator{
			AdminUser:     snap.AdminUser,
			AdminPassword: snap.AdminPassword,
			ClientSecret:  snap.KeycloakClientSecret,
		}
	}

	// newObserver creates the pipeline observer.
	newObserver = func() provisioning.Observer {
		return provisioning.NewConsoleObserver()
	}
)

// runLifecycle loads the snapshot, assembles the stage list for the
// operation, and drives the orchestrator. Stage failures surface through
// the report, not as orchestrator errors; only assembly and configuration
// problems abort before any cluster mutation.
func runLifecycle(ctx context.Context, configPath string, op provisioning.Operation, overlay string) error {
	snap, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if overlay != "" {
		snap.Overlay = overlay
	}

	switch op {
	case provisioning.OperationProvision:
		if err := snap.ValidateForProvision(); err != nil {
			return err
		}
	case provisioning.OperationSetup:
		if err := snap.ValidateForSetup(); err != nil {
			return err
		}
	default:
		// Teardown operations run even against a snapshot that would no
		// longer validate, so a broken configuration can still be cleaned up.
	}

	kubeconfig, err := readKubeconfig(snap)
	if err != nil {
		return err
	}
	store, err := newStore(kubeconfig)
	if err != nil {
		return err
	}

	assembler := &stages.Assembler{
		Snapshot: snap,
		Timeouts: loadTimeouts(),
		Store:    store,
		Helm:     newHelm(kubeconfig),
		Realm:    newRealm(snap),
	}

	stageList, err := assembler.BuildStages(op)
	if err != nil {
		return err
	}

	observer := newObserver()
	report := provisioning.NewOrchestrator(store, observer).RunLifecycle(ctx, op, stageList)
	observer.Printf("%s", report.Summary())

	if !report.Succeeded() {
		if failure := report.FirstFailure(); failure != nil {
			return fmt.Errorf("%s: stage %s: %w", op, failure.Stage, ErrRunFailed)
		}
		return fmt.Errorf("%s: %w", op, ErrRunFailed)
	}
	return nil
}

// readKubeconfig resolves cluster credentials: the snapshot's explicit path,
// then the standard KUBECONFIG variable, then the conventional location.
func readKubeconfig(snap *config.Snapshot) ([]byte, error) {
	path := snap.KubeconfigPath
	if path == "" {
		path = os.Getenv("KUBECONFIG")
	}
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate kubeconfig: %w", err)
		}
		path = filepath.Join(home, ".kube", "config")
	}

	data, err := readFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read kubeconfig %s: %w", path, err)
	}
	return data, nil
}
