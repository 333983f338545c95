// Package config resolves the immutable configuration snapshot for one
// lifecycle run. The snapshot is built exactly once at startup from a YAML
// file plus environment overrides; no component reads ambient process state
// after construction.
package config

// OverlayReferenceAuth enables the Keycloak identity-provider stage set.
const OverlayReferenceAuth = "reference-auth"

// DefaultNamespace is the namespace the platform deploys into when the
// configuration does not name one.
const DefaultNamespace = "redhat-ods-applications"

// Snapshot is the immutable configuration for one lifecycle run.
type Snapshot struct {
	// Namespace the platform components deploy into.
	Namespace string `mapstructure:"namespace" yaml:"namespace"`

	// BaseDomain is the cluster's application ingress domain, used to
	// derive route hosts (e.g. apps.example.com).
	BaseDomain string `mapstructure:"baseDomain" yaml:"baseDomain"`

	// Overlay selects a named pipeline variant; empty means none.
	Overlay string `mapstructure:"overlay" yaml:"overlay"`

	// KubeconfigPath locates cluster credentials; empty falls back to the
	// conventional location resolved by client-go.
	KubeconfigPath string `mapstructure:"kubeconfig" yaml:"kubeconfig"`

	// Image overrides. Empty values mean "use the defaults shipped with
	// the operator"; presence gates the corresponding pipeline stages.
	CatalogImage         string            `mapstructure:"catalogImage" yaml:"catalogImage"`
	OperatorImage        string            `mapstructure:"operatorImage" yaml:"operatorImage"`
	LlamaStackImage      string            `mapstructure:"llamaStackImage" yaml:"llamaStackImage"`
	CustomImageOverrides map[string]string `mapstructure:"customImageOverrides" yaml:"customImageOverrides,omitempty"`

	// Inference and embedding endpoints consumed by the distribution.
	VLLMURL        string `mapstructure:"vllmUrl" yaml:"vllmUrl"`
	VLLMToken      string `mapstructure:"vllmToken" yaml:"vllmToken"`
	EmbeddingURL   string `mapstructure:"embeddingUrl" yaml:"embeddingUrl"`
	EmbeddingToken string `mapstructure:"embeddingToken" yaml:"embeddingToken"`

	// Identity-provider admin credentials, required by the reference-auth
	// overlay.
	AdminUser            string `mapstructure:"adminUser" yaml:"adminUser"`
	AdminPassword        string `mapstructure:"adminPassword" yaml:"adminPassword"`
	KeycloakClientSecret string `mapstructure:"keycloakClientSecret" yaml:"keycloakClientSecret"`
}

// AuthNamespace is the namespace the identity-provider overlay deploys into.
// It is separate from the platform namespace so the two can be torn down
// independently.
func (s *Snapshot) AuthNamespace() string {
	return s.Namespace + "-auth"
}

// HasImageOverrides reports whether any custom image override is set.
func (s *Snapshot) HasImageOverrides() bool {
	return len(s.CustomImageOverrides) > 0
}
