package provisioning

import (
	"context"
	"fmt"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/llamastack/llsctl/internal/cluster"
)

// ReadinessCheck is a named, side-effect-free predicate over observed cluster
// state, re-evaluated on every poll tick. A predicate that cannot observe
// state (resource not found) reports not-ready rather than erroring so the
// loop can continue toward its deadline.
type ReadinessCheck struct {
	Name  string
	Probe func(ctx context.Context, store cluster.Store) (bool, error)
}

// And combines checks into a compound predicate that is ready only when every
// component check is ready.
func And(checks ...ReadinessCheck) ReadinessCheck {
	names := make([]string, 0, len(checks))
	for _, c := range checks {
		names = append(names, c.Name)
	}
	return ReadinessCheck{
		Name: strings.Join(names, " and "),
		Probe: func(ctx context.Context, store cluster.Store) (bool, error) {
			for _, c := range checks {
				ok, err := c.Probe(ctx, store)
				if err != nil || !ok {
					return false, err
				}
			}
			return true, nil
		},
	}
}

// ResourceExists is ready once the identity is observable in the store.
func ResourceExists(id cluster.Identity) ReadinessCheck {
	return ReadinessCheck{
		Name: fmt.Sprintf("%s exists", id),
		Probe: func(ctx context.Context, store cluster.Store) (bool, error) {
			_, err := store.Get(ctx, id)
			if err != nil {
				if apierrors.IsNotFound(err) {
					return false, nil
				}
				return false, err
			}
			return true, nil
		},
	}
}

// DeploymentReady is ready once the deployment reports at least one ready
// replica.
func DeploymentReady(namespace, name string) ReadinessCheck {
	id := cluster.Identity{Kind: "Deployment", Namespace: namespace, Name: name}
	return ReadinessCheck{
		Name: fmt.Sprintf("deployment %s/%s ready", namespace, name),
		Probe: func(ctx context.Context, store cluster.Store) (bool, error) {
			obj, err := store.Get(ctx, id)
			if err != nil {
				if apierrors.IsNotFound(err) {
					return false, nil
				}
				return false, err
			}
			ready, found, err := unstructured.NestedInt64(obj.Object, "status", "readyReplicas")
			if err != nil || !found {
				return false, err
			}
			return ready >= 1, nil
		},
	}
}

// RouteAdmitted is ready once the route has been admitted by a router and
// carries an assigned host.
func RouteAdmitted(namespace, name string) ReadinessCheck {
	id := cluster.Identity{Kind: "Route", Namespace: namespace, Name: name}
	return ReadinessCheck{
		Name: fmt.Sprintf("route %s/%s admitted", namespace, name),
		Probe: func(ctx context.Context, store cluster.Store) (bool, error) {
			obj, err := store.Get(ctx, id)
			if err != nil {
				if apierrors.IsNotFound(err) {
					return false, nil
				}
				return false, err
			}
			ingresses, found, err := unstructured.NestedSlice(obj.Object, "status", "ingress")
			if err != nil || !found {
				return false, err
			}
			for _, ing := range ingresses {
				m, ok := ing.(map[string]any)
				if !ok {
					continue
				}
				if host, _ := m["host"].(string); host != "" {
					return true, nil
				}
			}
			return false, nil
		},
	}
}
