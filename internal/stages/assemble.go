package stages

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/llamastack/llsctl/internal/cluster"
	"github.com/llamastack/llsctl/internal/config"
	"github.com/llamastack/llsctl/internal/helm"
	"github.com/llamastack/llsctl/internal/provisioning"
)

// Well-known names on the cluster. The operator installs through OLM into
// the shared operator namespaces.
const (
	CatalogNamespace  = "openshift-marketplace"
	OperatorNamespace = "openshift-operators"

	CatalogSourceName      = "llama-stack-catalog"
	OperatorGroupName      = "llama-stack-og"
	SubscriptionName       = "llama-stack-operator"
	OperatorDeploymentName = "llama-stack-k8s-operator-controller-manager"

	DistributionName = "llamastack"
	RouteName        = "llamastack"

	MilvusReleaseName    = "milvus"
	MilvusRepoURL        = "https://zilliztech.github.io/milvus-helm/"
	MilvusChartVersion   = "4.2.21"
	MilvusDeploymentName = "milvus-standalone"
)

// HelmInstaller is the chart lifecycle surface the vector-database stages
// need.
type HelmInstaller interface {
	InstallOrUpgrade(rel helm.Release) error
	Uninstall(namespace, name string) error
}

// RealmEnsurer configures the identity provider once it is reachable.
type RealmEnsurer interface {
	EnsureRealm(ctx context.Context, baseURL string) error
}

// Assembler turns a configuration snapshot into the ordered stage list for
// a lifecycle operation. Assembly is deterministic: the same snapshot always
// yields the same stages with the same rendered documents.
type Assembler struct {
	Snapshot *config.Snapshot
	Timeouts *config.Timeouts
	Store    cluster.Store
	Helm     HelmInstaller
	Realm    RealmEnsurer
}

// BuildStages assembles the stage list for the operation. Manifest templates
// are rendered eagerly so a malformed snapshot fails here, before the
// orchestrator starts mutating the cluster.
func (a *Assembler) BuildStages(op provisioning.Operation) ([]provisioning.Stage, error) {
	switch op {
	case provisioning.OperationSetup:
		return a.buildSetup()
	case provisioning.OperationProvision:
		return a.buildProvision()
	case provisioning.OperationUnprovision:
		return a.buildUnprovision(), nil
	case provisioning.OperationCleanup:
		return a.buildCleanup(), nil
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
}

// stage applies the snapshot-wide retry and timing defaults. Callers adjust
// individual fields afterwards where a stage deviates.
func (a *Assembler) stage(name string) provisioning.Stage {
	return provisioning.Stage{
		Name:                  name,
		MaxApplyRetries:       a.Timeouts.RetryAttempts,
		ApplyRetryDelay:       a.Timeouts.RetryDelay,
		ReadinessTimeout:      a.Timeouts.Ready,
		ReadinessPollInterval: a.Timeouts.PollInterval,
		Fatal:                 true,
	}
}

func (a *Assembler) documentStage(name, manifest string, data any) (provisioning.Stage, error) {
	doc, err := renderDocument(manifest, data)
	if err != nil {
		return provisioning.Stage{}, err
	}
	s := a.stage(name)
	s.Document = doc
	s.Creates = []cluster.Identity{doc.Identity}
	return s, nil
}

func (a *Assembler) buildSetup() ([]provisioning.Stage, error) {
	snap := a.Snapshot
	var out []provisioning.Stage

	// A custom catalog source is only installed when an image was
	// configured; otherwise the subscription points at the community
	// catalog already present on the cluster.
	catalogSource := "community-operators"
	if snap.CatalogImage != "" {
		catalogSource = CatalogSourceName
		s, err := a.documentStage("catalog-source", "catalog-source", map[string]string{
			"CatalogImage": snap.CatalogImage,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	og, err := a.documentStage("operator-group", "operator-group", struct{}{})
	if err != nil {
		return nil, err
	}
	out = append(out, og)

	sub, err := a.documentStage("operator-subscription", "subscription", map[string]string{
		"CatalogSource": catalogSource,
		"OperatorImage": snap.OperatorImage,
	})
	if err != nil {
		return nil, err
	}
	// Re-running setup against a cluster that already has the controller
	// must not churn the subscription, but still verifies the controller
	// is healthy.
	skipIf := provisioning.ResourceExists(cluster.Identity{
		Kind: "Deployment", Namespace: OperatorNamespace, Name: OperatorDeploymentName,
	})
	ready := provisioning.DeploymentReady(OperatorNamespace, OperatorDeploymentName)
	sub.SkipApplyIf = &skipIf
	sub.Readiness = &ready
	sub.ReadinessTimeout = a.Timeouts.OperatorReady
	out = append(out, sub)

	return out, nil
}

func (a *Assembler) buildProvision() ([]provisioning.Stage, error) {
	snap := a.Snapshot
	ns := snap.Namespace
	var out []provisioning.Stage

	nsStage, err := a.documentStage("namespace", "namespace", map[string]string{"Name": ns})
	if err != nil {
		return nil, err
	}
	out = append(out, nsStage)

	secret := a.stage("inference-secret")
	secret.Document = buildInferenceSecret(snap)
	secret.Creates = []cluster.Identity{secret.Document.Identity}
	out = append(out, secret)

	policyDoc, err := buildPolicyDocument(ns, BasePolicy())
	if err != nil {
		return nil, err
	}
	policy := a.stage("auth-policy")
	policy.Document = policyDoc
	policy.Creates = []cluster.Identity{policyDoc.Identity}
	out = append(out, policy)

	milvus := a.stage("vector-database")
	rel := a.milvusRelease()
	milvus.Action = func(context.Context) error { return a.Helm.InstallOrUpgrade(rel) }
	milvusReady := provisioning.DeploymentReady(ns, MilvusDeploymentName)
	milvus.Readiness = &milvusReady
	out = append(out, milvus)

	dist, err := a.documentStage("distribution", "distribution", a.distributionData())
	if err != nil {
		return nil, err
	}
	distReady := provisioning.DeploymentReady(ns, DistributionName)
	dist.Readiness = &distReady
	out = append(out, dist)

	route, err := a.documentStage("route", "route", map[string]string{
		"Namespace": ns,
		"Host":      a.routeHost(RouteName, ns),
	})
	if err != nil {
		return nil, err
	}
	routeReady := provisioning.RouteAdmitted(ns, RouteName)
	route.Readiness = &routeReady
	out = append(out, route)

	if snap.Overlay == config.OverlayReferenceAuth {
		overlay, err := a.buildIdentityOverlay()
		if err != nil {
			return nil, err
		}
		out = append(out, overlay...)
	}

	return out, nil
}

// buildIdentityOverlay assembles the reference-auth stage set: a Keycloak
// deployment in its own namespace, the role-aware policy revision, and the
// realm configurator callable.
func (a *Assembler) buildIdentityOverlay() ([]provisioning.Stage, error) {
	snap := a.Snapshot
	authNS := snap.AuthNamespace()
	var out []provisioning.Stage

	nsStage, err := a.documentStage("auth-namespace", "namespace", map[string]string{"Name": authNS})
	if err != nil {
		return nil, err
	}
	out = append(out, nsStage)

	admin := a.stage("keycloak-admin-secret")
	admin.Document = buildKeycloakAdminSecret(snap)
	admin.Creates = []cluster.Identity{admin.Document.Identity}
	out = append(out, admin)

	svc, err := a.documentStage("keycloak-service", "keycloak-service", map[string]string{"AuthNamespace": authNS})
	if err != nil {
		return nil, err
	}
	out = append(out, svc)

	dep, err := a.documentStage("keycloak", "keycloak-deployment", map[string]string{"AuthNamespace": authNS})
	if err != nil {
		return nil, err
	}
	depReady := provisioning.DeploymentReady(authNS, "keycloak")
	dep.Readiness = &depReady
	out = append(out, dep)

	route, err := a.documentStage("keycloak-route", "keycloak-route", map[string]string{
		"AuthNamespace": authNS,
		"Host":          a.routeHost("keycloak", authNS),
	})
	if err != nil {
		return nil, err
	}
	routeReady := provisioning.RouteAdmitted(authNS, "keycloak")
	route.Readiness = &routeReady
	out = append(out, route)

	policyDoc, err := buildPolicyDocument(snap.Namespace, AuthPolicy())
	if err != nil {
		return nil, err
	}
	policy := a.stage("auth-policy-injection")
	policy.Document = policyDoc
	policy.Creates = []cluster.Identity{policyDoc.Identity}
	out = append(out, policy)

	// Realm configuration talks to Keycloak over its route, not to the
	// cluster API. A failure here leaves a usable deployment behind, so the
	// stage is non-fatal and never retried.
	realm := a.stage("realm-config")
	realm.Action = func(ctx context.Context) error {
		baseURL, err := a.keycloakBaseURL(ctx)
		if err != nil {
			return err
		}
		return a.Realm.EnsureRealm(ctx, baseURL)
	}
	realm.MaxApplyRetries = 1
	realm.Fatal = false
	out = append(out, realm)

	return out, nil
}

func (a *Assembler) buildUnprovision() []provisioning.Stage {
	snap := a.Snapshot
	ns := snap.Namespace
	authNS := snap.AuthNamespace()

	// Teardown is unconditional: identities from every provision branch are
	// deleted regardless of the current snapshot flags, with not-found
	// tolerance making re-runs and partial states safe.
	overlay := a.stage("delete-identity-provider")
	overlay.Delete = []cluster.Identity{
		{Kind: "Route", Namespace: authNS, Name: "keycloak"},
		{Kind: "Deployment", Namespace: authNS, Name: "keycloak"},
		{Kind: "Service", Namespace: authNS, Name: "keycloak"},
		{Kind: "Secret", Namespace: authNS, Name: KeycloakAdminSecretName},
	}

	route := a.stage("delete-route")
	route.Delete = []cluster.Identity{{Kind: "Route", Namespace: ns, Name: RouteName}}

	dist := a.stage("delete-distribution")
	dist.Delete = []cluster.Identity{{Kind: "LlamaStackDistribution", Namespace: ns, Name: DistributionName}}

	milvus := a.stage("vector-database-uninstall")
	milvus.Action = func(context.Context) error { return a.Helm.Uninstall(ns, MilvusReleaseName) }

	policy := a.stage("delete-auth-policy")
	policy.Delete = []cluster.Identity{{Kind: "ConfigMap", Namespace: ns, Name: PolicyConfigMapName}}

	secret := a.stage("delete-inference-secret")
	secret.Delete = []cluster.Identity{{Kind: "Secret", Namespace: ns, Name: InferenceSecretName}}

	// The two namespaces are independent; deleting them concurrently is the
	// only parallelism in the pipeline.
	namespaces := a.stage("delete-namespaces")
	namespaces.Delete = []cluster.Identity{
		{Kind: "Namespace", Name: ns},
		{Kind: "Namespace", Name: authNS},
	}
	namespaces.Concurrent = true
	namespaces.ReadinessTimeout = a.Timeouts.Delete

	return []provisioning.Stage{overlay, route, dist, milvus, policy, secret, namespaces}
}

func (a *Assembler) buildCleanup() []provisioning.Stage {
	sub := a.stage("delete-operator-subscription")
	sub.Delete = []cluster.Identity{{Kind: "Subscription", Namespace: OperatorNamespace, Name: SubscriptionName}}

	og := a.stage("delete-operator-group")
	og.Delete = []cluster.Identity{{Kind: "OperatorGroup", Namespace: OperatorNamespace, Name: OperatorGroupName}}

	catalog := a.stage("delete-catalog-source")
	catalog.Delete = []cluster.Identity{{Kind: "CatalogSource", Namespace: CatalogNamespace, Name: CatalogSourceName}}

	return []provisioning.Stage{sub, og, catalog}
}

func (a *Assembler) milvusRelease() helm.Release {
	return helm.Release{
		Namespace:   a.Snapshot.Namespace,
		Name:        MilvusReleaseName,
		RepoURL:     MilvusRepoURL,
		Chart:       "milvus",
		Version:     MilvusChartVersion,
		WaitTimeout: a.Timeouts.Ready,
		Values: map[string]interface{}{
			"cluster": map[string]interface{}{"enabled": false},
			"etcd":    map[string]interface{}{"replicaCount": 1},
			"minio":   map[string]interface{}{"mode": "standalone"},
			"pulsar":  map[string]interface{}{"enabled": false},
		},
	}
}

// imageOverride is one templated env entry derived from the snapshot's
// custom image overrides.
type imageOverride struct {
	Name  string
	Value string
}

type distributionData struct {
	Namespace       string
	LlamaStackImage string
	ImageOverrides  []imageOverride
}

func (a *Assembler) distributionData() distributionData {
	snap := a.Snapshot

	keys := make([]string, 0, len(snap.CustomImageOverrides))
	for k := range snap.CustomImageOverrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	overrides := make([]imageOverride, 0, len(keys))
	for _, k := range keys {
		envName := "IMAGE_OVERRIDE_" + strings.ToUpper(strings.ReplaceAll(k, "-", "_"))
		overrides = append(overrides, imageOverride{Name: envName, Value: snap.CustomImageOverrides[k]})
	}

	return distributionData{
		Namespace:       snap.Namespace,
		LlamaStackImage: snap.LlamaStackImage,
		ImageOverrides:  overrides,
	}
}

// routeHost derives a stable route host from the base domain, or leaves the
// host empty so the cluster assigns one.
func (a *Assembler) routeHost(name, namespace string) string {
	if a.Snapshot.BaseDomain == "" {
		return ""
	}
	return fmt.Sprintf("%s-%s.%s", name, namespace, a.Snapshot.BaseDomain)
}

// keycloakBaseURL resolves the external URL of the identity provider, either
// from the configured base domain or from the admitted route's assigned host.
func (a *Assembler) keycloakBaseURL(ctx context.Context) (string, error) {
	if host := a.routeHost("keycloak", a.Snapshot.AuthNamespace()); host != "" {
		return "https://" + host, nil
	}

	obj, err := a.Store.Get(ctx, cluster.Identity{
		Kind: "Route", Namespace: a.Snapshot.AuthNamespace(), Name: "keycloak",
	})
	if err != nil {
		return "", fmt.Errorf("failed to resolve identity-provider route: %w", err)
	}
	host, found := nestedRouteHost(obj.Object)
	if !found {
		return "", fmt.Errorf("identity-provider route has no assigned host")
	}
	return "https://" + host, nil
}

func nestedRouteHost(obj map[string]interface{}) (string, bool) {
	status, ok := obj["status"].(map[string]interface{})
	if !ok {
		return "", false
	}
	ingresses, ok := status["ingress"].([]interface{})
	if !ok {
		return "", false
	}
	for _, ing := range ingresses {
		m, ok := ing.(map[string]interface{})
		if !ok {
			continue
		}
		if host, _ := m["host"].(string); host != "" {
			return host, true
		}
	}
	return "", false
}
