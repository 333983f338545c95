package cluster

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Identity uniquely names a cluster resource for idempotent applies and
// teardown lookup. Namespace is empty for cluster-scoped resources.
type Identity struct {
	Kind      string
	Namespace string
	Name      string
}

func (id Identity) String() string {
	if id.Namespace == "" {
		return fmt.Sprintf("%s/%s", id.Kind, id.Name)
	}
	return fmt.Sprintf("%s/%s/%s", id.Kind, id.Namespace, id.Name)
}

// ResourceDocument is an opaque serialized resource definition plus the
// identity it creates. It is immutable once constructed for an apply attempt.
type ResourceDocument struct {
	Identity Identity
	Object   *unstructured.Unstructured
}

// Store is the cluster state store consumed by the provisioning pipeline.
// Applies are create-or-update; applying an unchanged resource is a no-op
// success. Deletes with ignoreNotFound treat an absent resource as success.
type Store interface {
	Apply(ctx context.Context, doc *ResourceDocument) error
	Get(ctx context.Context, id Identity) (*unstructured.Unstructured, error)
	Delete(ctx context.Context, id Identity, ignoreNotFound bool) error
}
