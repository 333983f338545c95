package stages

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/llamastack/llsctl/internal/cluster"
	"github.com/llamastack/llsctl/internal/config"
)

// InferenceSecretName holds the model endpoint credentials consumed by the
// distribution through secretKeyRef env entries.
const InferenceSecretName = "llama-stack-inference"

// KeycloakAdminSecretName holds the identity-provider bootstrap credentials.
const KeycloakAdminSecretName = "keycloak-admin"

func secretDocument(namespace, name string, data map[string]interface{}) *cluster.ResourceDocument {
	return cluster.NewDocument(&unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "v1",
		"kind":       "Secret",
		"metadata": map[string]interface{}{
			"name":      name,
			"namespace": namespace,
			"labels": map[string]interface{}{
				"app.kubernetes.io/managed-by": "llsctl",
			},
		},
		"type":       string(corev1.SecretTypeOpaque),
		"stringData": data,
	}})
}

// buildInferenceSecret carries the vLLM and embedding endpoint credentials.
// Credentials stay out of the embedded templates so they never land in a
// rendered manifest by accident.
func buildInferenceSecret(snap *config.Snapshot) *cluster.ResourceDocument {
	return secretDocument(snap.Namespace, InferenceSecretName, map[string]interface{}{
		"vllmUrl":        snap.VLLMURL,
		"vllmToken":      snap.VLLMToken,
		"embeddingUrl":   snap.EmbeddingURL,
		"embeddingToken": snap.EmbeddingToken,
	})
}

// buildKeycloakAdminSecret carries the bootstrap admin credentials for the
// identity-provider deployment.
func buildKeycloakAdminSecret(snap *config.Snapshot) *cluster.ResourceDocument {
	return secretDocument(snap.AuthNamespace(), KeycloakAdminSecretName, map[string]interface{}{
		"username": snap.AdminUser,
		"password": snap.AdminPassword,
	})
}
