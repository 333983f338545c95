package cluster

import (
	"context"
	"fmt"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/tools/clientcmd"
)

// Client implements Store against a real cluster using the dynamic client.
type Client struct {
	dynamic dynamic.Interface
}

// NewClient creates a cluster store from a kubeconfig file.
func NewClient(kubeconfigPath string) (*Client, error) {
	cfg, err := clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to build kubeconfig: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	return &Client{dynamic: dynamicClient}, nil
}

// NewClientFromBytes creates a cluster store from kubeconfig bytes.
func NewClientFromBytes(kubeconfig []byte) (*Client, error) {
	cfg, err := clientcmd.RESTConfigFromKubeConfig(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build kubeconfig from bytes: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	return &Client{dynamic: dynamicClient}, nil
}

// Apply submits a resource document with create-or-update semantics.
func (c *Client) Apply(ctx context.Context, doc *ResourceDocument) error {
	obj := doc.Object.DeepCopy()
	ri := c.resourceInterface(doc.Identity)

	_, err := ri.Create(ctx, obj, metav1.CreateOptions{})
	if err == nil {
		return nil
	}
	if !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create %s: %w", doc.Identity, err)
	}

	// Resource exists: carry over the live resourceVersion and update.
	current, err := ri.Get(ctx, doc.Identity.Name, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to read existing %s: %w", doc.Identity, err)
	}
	obj.SetResourceVersion(current.GetResourceVersion())

	if _, err := ri.Update(ctx, obj, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update %s: %w", doc.Identity, err)
	}
	return nil
}

// Get reads a resource by identity. Not-found is reported via the standard
// apierrors.IsNotFound classification.
func (c *Client) Get(ctx context.Context, id Identity) (*unstructured.Unstructured, error) {
	return c.resourceInterface(id).Get(ctx, id.Name, metav1.GetOptions{})
}

// Delete removes a resource by identity. With ignoreNotFound, deleting an
// absent resource is success.
func (c *Client) Delete(ctx context.Context, id Identity, ignoreNotFound bool) error {
	err := c.resourceInterface(id).Delete(ctx, id.Name, metav1.DeleteOptions{})
	if err != nil {
		if ignoreNotFound && apierrors.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete %s: %w", id, err)
	}
	return nil
}

func (c *Client) resourceInterface(id Identity) dynamic.ResourceInterface {
	gvr := gvrForKind(id.Kind)
	if id.Namespace != "" {
		return c.dynamic.Resource(gvr).Namespace(id.Namespace)
	}
	return c.dynamic.Resource(gvr)
}

// kindTable maps the resource kinds this tool manages to their API groups.
// Kinds not listed fall back to the lowercase-plural core/v1 convention.
var kindTable = map[string]schema.GroupVersionResource{
	"Namespace":              {Version: "v1", Resource: "namespaces"},
	"Secret":                 {Version: "v1", Resource: "secrets"},
	"ConfigMap":              {Version: "v1", Resource: "configmaps"},
	"Service":                {Version: "v1", Resource: "services"},
	"ServiceAccount":         {Version: "v1", Resource: "serviceaccounts"},
	"Deployment":             {Group: "apps", Version: "v1", Resource: "deployments"},
	"StatefulSet":            {Group: "apps", Version: "v1", Resource: "statefulsets"},
	"Route":                  {Group: "route.openshift.io", Version: "v1", Resource: "routes"},
	"CatalogSource":          {Group: "operators.coreos.com", Version: "v1alpha1", Resource: "catalogsources"},
	"Subscription":           {Group: "operators.coreos.com", Version: "v1alpha1", Resource: "subscriptions"},
	"ClusterServiceVersion":  {Group: "operators.coreos.com", Version: "v1alpha1", Resource: "clusterserviceversions"},
	"OperatorGroup":          {Group: "operators.coreos.com", Version: "v1", Resource: "operatorgroups"},
	"LlamaStackDistribution": {Group: "llamastack.io", Version: "v1alpha1", Resource: "llamastackdistributions"},
}

func gvrForKind(kind string) schema.GroupVersionResource {
	if gvr, ok := kindTable[kind]; ok {
		return gvr
	}
	return schema.GroupVersionResource{Version: "v1", Resource: strings.ToLower(kind) + "s"}
}
