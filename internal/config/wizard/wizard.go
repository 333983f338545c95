// Package wizard implements the interactive configuration flow behind
// `llsctl init`. The answers are written to a snapshot file that later
// runs load without prompting.
package wizard

import (
	"context"
	"fmt"

	"github.com/llamastack/llsctl/internal/config"
)

// Result holds all the answers from the interactive wizard.
type Result struct {
	// Platform placement
	Namespace  string
	BaseDomain string

	// Model endpoints
	VLLMURL        string
	VLLMToken      string
	EmbeddingURL   string
	EmbeddingToken string

	// Overlay selection
	Overlay string

	// Identity-provider admin credentials (reference-auth only)
	AdminUser            string
	AdminPassword        string
	KeycloakClientSecret string
}

// Run runs the interactive configuration wizard.
// The context is used for cancellation support (e.g., Ctrl+C).
func Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	if err := runPlacementGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("placement: %w", err)
	}

	if err := runEndpointsGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("model endpoints: %w", err)
	}

	if err := runOverlayGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("overlay: %w", err)
	}

	// Admin credentials are only needed when the identity-provider
	// overlay was selected.
	if result.Overlay == config.OverlayReferenceAuth {
		if err := runAdminGroup(ctx, result); err != nil {
			return nil, fmt.Errorf("admin credentials: %w", err)
		}
	}

	return result, nil
}

// Snapshot converts the wizard answers into a configuration snapshot.
func (r *Result) Snapshot() *config.Snapshot {
	return &config.Snapshot{
		Namespace:            r.Namespace,
		BaseDomain:           r.BaseDomain,
		Overlay:              r.Overlay,
		VLLMURL:              r.VLLMURL,
		VLLMToken:            r.VLLMToken,
		EmbeddingURL:         r.EmbeddingURL,
		EmbeddingToken:       r.EmbeddingToken,
		AdminUser:            r.AdminUser,
		AdminPassword:        r.AdminPassword,
		KeycloakClientSecret: r.KeycloakClientSecret,
	}
}
