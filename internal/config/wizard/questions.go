package wizard

import (
	"context"
	"net/url"
	"regexp"

	"github.com/charmbracelet/huh"

	"github.com/llamastack/llsctl/internal/config"
)

// namespaceRegex validates namespace format: 1-63 lowercase alphanumeric with hyphens.
var namespaceRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)

// runPlacementGroup prompts for namespace and ingress domain.
func runPlacementGroup(ctx context.Context, result *Result) error {
	result.Namespace = config.DefaultNamespace

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Namespace").
				Description("Namespace the platform components deploy into").
				Placeholder(config.DefaultNamespace).
				Value(&result.Namespace).
				Validate(validateNamespace),
			huh.NewInput().
				Title("Base Domain (Optional)").
				Description("Cluster application ingress domain, e.g. apps.example.com. Leave empty to let the cluster assign route hosts.").
				Placeholder("apps.example.com").
				Value(&result.BaseDomain),
		).Title("Placement"),
	).RunWithContext(ctx)
}

// runEndpointsGroup prompts for inference and embedding endpoints.
func runEndpointsGroup(ctx context.Context, result *Result) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("vLLM Inference URL").
				Description("OpenAI-compatible endpoint serving the chat model").
				Placeholder("https://vllm.example.com/v1").
				Value(&result.VLLMURL).
				Validate(validateURL),
			huh.NewInput().
				Title("vLLM API Token").
				Value(&result.VLLMToken).
				Validate(validateRequired),
			huh.NewInput().
				Title("Embedding Model URL").
				Placeholder("https://embed.example.com/v1").
				Value(&result.EmbeddingURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Embedding API Token").
				Value(&result.EmbeddingToken).
				Validate(validateRequired),
		).Title("Model Endpoints"),
	).RunWithContext(ctx)
}

// runOverlayGroup prompts for the pipeline variant.
func runOverlayGroup(ctx context.Context, result *Result) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Deployment Variant").
				Description("Optional feature set layered on the base deployment").
				Options(
					huh.NewOption("Base - no authentication layer", ""),
					huh.NewOption("Reference Auth - Keycloak identity provider", config.OverlayReferenceAuth),
				).
				Value(&result.Overlay),
		).Title("Overlay"),
	).RunWithContext(ctx)
}

// runAdminGroup prompts for identity-provider admin credentials.
func runAdminGroup(ctx context.Context, result *Result) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Admin Username").
				Value(&result.AdminUser).
				Validate(validateRequired),
			huh.NewInput().
				Title("Admin Password").
				EchoMode(huh.EchoModePassword).
				Value(&result.AdminPassword).
				Validate(validateRequired),
			huh.NewInput().
				Title("OAuth Client Secret").
				EchoMode(huh.EchoModePassword).
				Value(&result.KeycloakClientSecret).
				Validate(validateRequired),
		).Title("Identity Provider"),
	).RunWithContext(ctx)
}

// validateNamespace validates the namespace format.
func validateNamespace(s string) error {
	if s == "" {
		return errNamespaceRequired
	}
	if !namespaceRegex.MatchString(s) {
		return errNamespaceInvalid
	}
	return nil
}

// validateURL validates that the input is an absolute http(s) URL.
func validateURL(s string) error {
	if s == "" {
		return errURLRequired
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errURLInvalid
	}
	return nil
}

// validateRequired rejects empty input.
func validateRequired(s string) error {
	if s == "" {
		return errValueRequired
	}
	return nil
}
