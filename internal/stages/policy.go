package stages

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/llamastack/llsctl/internal/cluster"
)

// PolicyConfigMapName is the ConfigMap holding the serialized access policy.
const PolicyConfigMapName = "llama-stack-auth-policy"

// PolicyRule grants actions on a resource pattern to a set of roles.
// An empty role list applies the rule to every principal.
type PolicyRule struct {
	Resource string   `json:"resource"`
	Actions  []string `json:"actions"`
	Roles    []string `json:"roles,omitempty"`
}

// Policy is the typed form of the access policy document. It is serialized
// exactly once, at assembly time; the cluster only ever sees the rendered
// YAML.
type Policy struct {
	DefaultAction string       `json:"defaultAction"`
	Rules         []PolicyRule `json:"rules"`
}

// BasePolicy is the policy applied when no identity provider is deployed:
// every principal may read and query, nobody may mutate stored documents.
func BasePolicy() Policy {
	return Policy{
		DefaultAction: "deny",
		Rules: []PolicyRule{
			{Resource: "models/*", Actions: []string{"read"}},
			{Resource: "vector_dbs/*", Actions: []string{"read", "query"}},
			{Resource: "tool_groups/*", Actions: []string{"read", "invoke"}},
		},
	}
}

// AuthPolicy extends the base policy with role-scoped rules once the
// identity provider is in place.
func AuthPolicy() Policy {
	p := BasePolicy()
	p.Rules = append(p.Rules,
		PolicyRule{Resource: "vector_dbs/*", Actions: []string{"insert", "delete"}, Roles: []string{"admin"}},
		PolicyRule{Resource: "models/*", Actions: []string{"register", "unregister"}, Roles: []string{"admin"}},
	)
	return p
}

// buildPolicyDocument serializes the policy and wraps it in the ConfigMap
// the distribution mounts.
func buildPolicyDocument(namespace string, policy Policy) (*cluster.ResourceDocument, error) {
	rendered, err := sigsyaml.Marshal(policy)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize policy: %w", err)
	}

	obj := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "v1",
		"kind":       "ConfigMap",
		"metadata": map[string]interface{}{
			"name":      PolicyConfigMapName,
			"namespace": namespace,
			"labels": map[string]interface{}{
				"app.kubernetes.io/managed-by": "llsctl",
			},
		},
		"data": map[string]interface{}{
			"policy.yaml": string(rendered),
		},
	}}

	return cluster.NewDocument(obj), nil
}
