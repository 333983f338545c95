package config

import "fmt"

// ValidationError reports a configuration key that fails validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Message)
}

// ValidateOverlay checks that the overlay, when set, names a known variant.
func (s *Snapshot) ValidateOverlay() error {
	switch s.Overlay {
	case "", OverlayReferenceAuth:
		return nil
	default:
		return &ValidationError{Field: "overlay", Message: fmt.Sprintf("unknown overlay %q", s.Overlay)}
	}
}

// ValidateForProvision checks everything the provision operation needs.
// Teardown operations deliberately skip these requirements so a broken
// configuration can still be cleaned up.
func (s *Snapshot) ValidateForProvision() error {
	if err := s.ValidateOverlay(); err != nil {
		return err
	}
	if s.Namespace == "" {
		return &ValidationError{Field: "namespace", Message: "is required"}
	}
	if s.VLLMURL == "" {
		return &ValidationError{Field: "vllmUrl", Message: "is required"}
	}
	if s.VLLMToken == "" {
		return &ValidationError{Field: "vllmToken", Message: "is required"}
	}
	if s.EmbeddingURL == "" {
		return &ValidationError{Field: "embeddingUrl", Message: "is required"}
	}
	if s.EmbeddingToken == "" {
		return &ValidationError{Field: "embeddingToken", Message: "is required"}
	}

	if s.Overlay == OverlayReferenceAuth {
		if s.AdminUser == "" {
			return &ValidationError{Field: "adminUser", Message: "is required by the reference-auth overlay"}
		}
		if s.AdminPassword == "" {
			return &ValidationError{Field: "adminPassword", Message: "is required by the reference-auth overlay"}
		}
		if s.KeycloakClientSecret == "" {
			return &ValidationError{Field: "keycloakClientSecret", Message: "is required by the reference-auth overlay"}
		}
	}

	return nil
}

// ValidateForSetup checks the keys the operator setup operation needs.
func (s *Snapshot) ValidateForSetup() error {
	if s.Namespace == "" {
		return &ValidationError{Field: "namespace", Message: "is required"}
	}
	return nil
}
