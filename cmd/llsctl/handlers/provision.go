package handlers

import (
	"context"

	"github.com/llamastack/llsctl/internal/provisioning"
)

// Provision deploys the platform components: namespace, inference secret,
// access policy, vector database, distribution, route, and the optional
// identity-provider overlay.
func Provision(ctx context.Context, configPath, overlay string) error {
	return runLifecycle(ctx, configPath, provisioning.OperationProvision, overlay)
}

// Unprovision removes everything provision can create, in reverse creation
// order, tolerating resources that are already gone.
func Unprovision(ctx context.Context, configPath string) error {
	return runLifecycle(ctx, configPath, provisioning.OperationUnprovision, "")
}

// Setup installs the operator and, when a catalog image is configured, the
// catalog source.
func Setup(ctx context.Context, configPath string) error {
	return runLifecycle(ctx, configPath, provisioning.OperationSetup, "")
}

// Cleanup removes the operator subscription, operator group, and catalog
// source.
func Cleanup(ctx context.Context, configPath string) error {
	return runLifecycle(ctx, configPath, provisioning.OperationCleanup, "")
}
