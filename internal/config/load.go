package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the conventional snapshot location.
const DefaultConfigFile = ".llsctl.yaml"

// FindConfigFile returns the explicit path when given, otherwise the
// conventional location under the user's home directory.
func FindConfigFile(path string) string {
	if path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfigFile
	}
	return filepath.Join(home, DefaultConfigFile)
}

// Load reads the snapshot from a YAML file and applies environment
// overrides. A missing file is not an error: every key can be supplied
// through the environment.
func Load(path string) (*Snapshot, error) {
	snap := &Snapshot{}

	data, err := os.ReadFile(FindConfigFile(path)) // #nosec G304
	if err == nil {
		var raw map[string]interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
		}
		if err := mapstructure.Decode(raw, snap); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	} else if !os.IsNotExist(err) || path != "" {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnvOverrides(snap)

	if snap.Namespace == "" {
		snap.Namespace = DefaultNamespace
	}

	return snap, nil
}

// applyEnvOverrides layers LLSCTL_* environment variables over file values.
// This is the single place ambient process state is consulted.
func applyEnvOverrides(snap *Snapshot) {
	overrides := map[string]*string{
		"LLSCTL_NAMESPACE":              &snap.Namespace,
		"LLSCTL_BASE_DOMAIN":            &snap.BaseDomain,
		"LLSCTL_OVERLAY":                &snap.Overlay,
		"LLSCTL_KUBECONFIG":             &snap.KubeconfigPath,
		"LLSCTL_CATALOG_IMAGE":          &snap.CatalogImage,
		"LLSCTL_OPERATOR_IMAGE":         &snap.OperatorImage,
		"LLSCTL_LLAMA_STACK_IMAGE":      &snap.LlamaStackImage,
		"LLSCTL_VLLM_URL":               &snap.VLLMURL,
		"LLSCTL_VLLM_TOKEN":             &snap.VLLMToken,
		"LLSCTL_EMBEDDING_URL":          &snap.EmbeddingURL,
		"LLSCTL_EMBEDDING_TOKEN":        &snap.EmbeddingToken,
		"LLSCTL_ADMIN_USER":             &snap.AdminUser,
		"LLSCTL_ADMIN_PASSWORD":         &snap.AdminPassword,
		"LLSCTL_KEYCLOAK_CLIENT_SECRET": &snap.KeycloakClientSecret,
	}

	for envVar, target := range overrides {
		if val := os.Getenv(envVar); val != "" {
			*target = val
		}
	}
}
