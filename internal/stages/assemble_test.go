package stages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/llamastack/llsctl/internal/cluster"
	"github.com/llamastack/llsctl/internal/config"
	"github.com/llamastack/llsctl/internal/helm"
	"github.com/llamastack/llsctl/internal/provisioning"
)

type fakeHelm struct {
	installs   []helm.Release
	uninstalls []string
}

func (f *fakeHelm) InstallOrUpgrade(rel helm.Release) error {
	f.installs = append(f.installs, rel)
	return nil
}

func (f *fakeHelm) Uninstall(_, name string) error {
	f.uninstalls = append(f.uninstalls, name)
	return nil
}

type fakeRealm struct {
	urls []string
}

func (f *fakeRealm) EnsureRealm(_ context.Context, baseURL string) error {
	f.urls = append(f.urls, baseURL)
	return nil
}

func baseSnapshot() *config.Snapshot {
	return &config.Snapshot{
		Namespace:      "demo",
		BaseDomain:     "apps.example.com",
		VLLMURL:        "https://vllm.example.com/v1",
		VLLMToken:      "vllm-token",
		EmbeddingURL:   "https://embed.example.com/v1",
		EmbeddingToken: "embed-token",
	}
}

func newAssembler(snap *config.Snapshot, store cluster.Store) (*Assembler, *fakeHelm, *fakeRealm) {
	h := &fakeHelm{}
	r := &fakeRealm{}
	if store == nil {
		store = cluster.NewFake()
	}
	return &Assembler{
		Snapshot: snap,
		Timeouts: config.TestTimeouts(),
		Store:    store,
		Helm:     h,
		Realm:    r,
	}, h, r
}

func stageNames(stages []provisioning.Stage) []string {
	names := make([]string, 0, len(stages))
	for _, s := range stages {
		names = append(names, s.Name)
	}
	return names
}

func TestAssemblyIsDeterministic(t *testing.T) {
	t.Parallel()

	snap := baseSnapshot()
	snap.Overlay = config.OverlayReferenceAuth
	snap.AdminUser = "admin"
	snap.AdminPassword = "hunter2"
	snap.CatalogImage = "quay.io/demo/catalog:dev"
	snap.CustomImageOverrides = map[string]string{
		"llama-stack": "quay.io/demo/llama-stack:dev",
		"agent":       "quay.io/demo/agent:dev",
	}

	for _, op := range []provisioning.Operation{
		provisioning.OperationSetup,
		provisioning.OperationProvision,
		provisioning.OperationUnprovision,
		provisioning.OperationCleanup,
	} {
		a1, _, _ := newAssembler(snap, nil)
		a2, _, _ := newAssembler(snap, nil)

		first, err := a1.BuildStages(op)
		require.NoError(t, err)
		second, err := a2.BuildStages(op)
		require.NoError(t, err)

		require.Equal(t, stageNames(first), stageNames(second), "operation %s", op)
		for i := range first {
			if first[i].Document == nil {
				continue
			}
			b1, err := sigsyaml.Marshal(first[i].Document.Object.Object)
			require.NoError(t, err)
			b2, err := sigsyaml.Marshal(second[i].Document.Object.Object)
			require.NoError(t, err)
			assert.Equal(t, b1, b2, "stage %s of %s", first[i].Name, op)
		}
	}
}

func TestProvisionBaseStages(t *testing.T) {
	t.Parallel()

	a, _, _ := newAssembler(baseSnapshot(), nil)
	stages, err := a.BuildStages(provisioning.OperationProvision)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"namespace", "inference-secret", "auth-policy",
		"vector-database", "distribution", "route",
	}, stageNames(stages))

	// Without the overlay, exactly three stages wait on readiness.
	waits := 0
	for _, s := range stages {
		if s.Readiness != nil {
			waits++
		}
		assert.True(t, s.Fatal, "stage %s", s.Name)
	}
	assert.Equal(t, 3, waits)
}

func TestProvisionOverlayStages(t *testing.T) {
	t.Parallel()

	snap := baseSnapshot()
	snap.Overlay = config.OverlayReferenceAuth
	snap.AdminUser = "admin"
	snap.AdminPassword = "hunter2"

	a, _, _ := newAssembler(snap, nil)
	stages, err := a.BuildStages(provisioning.OperationProvision)
	require.NoError(t, err)

	names := stageNames(stages)
	assert.Contains(t, names, "auth-namespace")
	assert.Contains(t, names, "keycloak")
	assert.Contains(t, names, "auth-policy-injection")

	last := stages[len(stages)-1]
	assert.Equal(t, "realm-config", last.Name)
	assert.False(t, last.Fatal)
	assert.Equal(t, 1, last.MaxApplyRetries)

	// Overlay resources live in the dedicated auth namespace.
	for _, s := range stages {
		if s.Name == "keycloak" {
			assert.Equal(t, "demo-auth", s.Document.Identity.Namespace)
		}
	}
}

func TestSetupCatalogPresenceGating(t *testing.T) {
	t.Parallel()

	// Without a catalog image the subscription points at the community
	// catalog and no catalog source is installed.
	a, _, _ := newAssembler(baseSnapshot(), nil)
	stages, err := a.BuildStages(provisioning.OperationSetup)
	require.NoError(t, err)
	assert.Equal(t, []string{"operator-group", "operator-subscription"}, stageNames(stages))

	sub := stages[1]
	source, _, err := unstructured.NestedString(sub.Document.Object.Object, "spec", "source")
	require.NoError(t, err)
	assert.Equal(t, "community-operators", source)
	require.NotNil(t, sub.SkipApplyIf)
	require.NotNil(t, sub.Readiness)

	// With a catalog image the catalog source leads and the subscription
	// points at it.
	snap := baseSnapshot()
	snap.CatalogImage = "quay.io/demo/catalog:dev"
	a2, _, _ := newAssembler(snap, nil)
	stages, err = a2.BuildStages(provisioning.OperationSetup)
	require.NoError(t, err)
	assert.Equal(t, []string{"catalog-source", "operator-group", "operator-subscription"}, stageNames(stages))

	source, _, err = unstructured.NestedString(stages[2].Document.Object.Object, "spec", "source")
	require.NoError(t, err)
	assert.Equal(t, CatalogSourceName, source)
}

func TestDistributionImageOverrides(t *testing.T) {
	t.Parallel()

	snap := baseSnapshot()
	snap.LlamaStackImage = "quay.io/demo/llama-stack:dev"
	snap.CustomImageOverrides = map[string]string{"safety-model": "quay.io/demo/safety:dev"}

	a, _, _ := newAssembler(snap, nil)
	stages, err := a.BuildStages(provisioning.OperationProvision)
	require.NoError(t, err)

	var dist *provisioning.Stage
	for i := range stages {
		if stages[i].Name == "distribution" {
			dist = &stages[i]
		}
	}
	require.NotNil(t, dist)

	image, _, err := unstructured.NestedString(dist.Document.Object.Object, "spec", "server", "containerSpec", "image")
	require.NoError(t, err)
	assert.Equal(t, "quay.io/demo/llama-stack:dev", image)

	rendered, err := sigsyaml.Marshal(dist.Document.Object.Object)
	require.NoError(t, err)
	assert.Contains(t, string(rendered), "IMAGE_OVERRIDE_SAFETY_MODEL")
}

func TestUnprovisionOrderAndConcurrency(t *testing.T) {
	t.Parallel()

	a, _, _ := newAssembler(baseSnapshot(), nil)
	stages, err := a.BuildStages(provisioning.OperationUnprovision)
	require.NoError(t, err)

	names := stageNames(stages)
	assert.Equal(t, []string{
		"delete-identity-provider", "delete-route", "delete-distribution",
		"vector-database-uninstall", "delete-auth-policy",
		"delete-inference-secret", "delete-namespaces",
	}, names)

	last := stages[len(stages)-1]
	assert.True(t, last.Concurrent)
	assert.Equal(t, []cluster.Identity{
		{Kind: "Namespace", Name: "demo"},
		{Kind: "Namespace", Name: "demo-auth"},
	}, last.Delete)

	for _, s := range stages[:len(stages)-1] {
		assert.False(t, s.Concurrent, "stage %s", s.Name)
	}
}

func TestTeardownCoversEveryCreatableIdentity(t *testing.T) {
	t.Parallel()

	snapshots := []*config.Snapshot{
		baseSnapshot(),
		func() *config.Snapshot {
			s := baseSnapshot()
			s.Overlay = config.OverlayReferenceAuth
			s.AdminUser = "admin"
			s.AdminPassword = "hunter2"
			s.CatalogImage = "quay.io/demo/catalog:dev"
			s.LlamaStackImage = "quay.io/demo/llama-stack:dev"
			return s
		}(),
	}

	for _, snap := range snapshots {
		a, _, _ := newAssembler(snap, nil)

		deleted := map[cluster.Identity]bool{}
		for _, op := range []provisioning.Operation{provisioning.OperationUnprovision, provisioning.OperationCleanup} {
			stages, err := a.BuildStages(op)
			require.NoError(t, err)
			for _, id := range DeletedIdentities(stages) {
				deleted[id] = true
			}
		}

		// Every identity any branch can create has a matching deletion.
		for _, id := range EverCreated(snap) {
			assert.True(t, deleted[id], "no teardown for %s", id)
		}

		// And the stages actually assembled only create known identities.
		for _, op := range []provisioning.Operation{provisioning.OperationSetup, provisioning.OperationProvision} {
			stages, err := a.BuildStages(op)
			require.NoError(t, err)
			for _, id := range CreatedIdentities(stages) {
				assert.True(t, deleted[id], "created identity %s has no teardown", id)
			}
		}
	}
}

func TestKeycloakBaseURLFromBaseDomain(t *testing.T) {
	t.Parallel()

	snap := baseSnapshot()
	a, _, _ := newAssembler(snap, nil)

	url, err := a.keycloakBaseURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://keycloak-demo-auth.apps.example.com", url)
}

func TestKeycloakBaseURLFromRouteStatus(t *testing.T) {
	t.Parallel()

	snap := baseSnapshot()
	snap.BaseDomain = ""

	store := cluster.NewFake()
	store.Put(&unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "route.openshift.io/v1",
		"kind":       "Route",
		"metadata":   map[string]interface{}{"name": "keycloak", "namespace": "demo-auth"},
		"status": map[string]interface{}{
			"ingress": []interface{}{
				map[string]interface{}{"host": "keycloak-demo-auth.apps.cluster.local"},
			},
		},
	}})

	a, _, _ := newAssembler(snap, store)
	url, err := a.keycloakBaseURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://keycloak-demo-auth.apps.cluster.local", url)

	// No route at all: the realm configurator cannot run.
	a2, _, _ := newAssembler(snap, cluster.NewFake())
	_, err = a2.keycloakBaseURL(context.Background())
	assert.Error(t, err)
}

func TestVectorDatabaseStageDrivesHelm(t *testing.T) {
	t.Parallel()

	a, h, _ := newAssembler(baseSnapshot(), nil)
	stages, err := a.BuildStages(provisioning.OperationProvision)
	require.NoError(t, err)

	for _, s := range stages {
		if s.Name == "vector-database" {
			require.NotNil(t, s.Action)
			require.NoError(t, s.Action(context.Background()))
		}
	}

	require.Len(t, h.installs, 1)
	assert.Equal(t, MilvusReleaseName, h.installs[0].Name)
	assert.Equal(t, "demo", h.installs[0].Namespace)

	down, err := a.BuildStages(provisioning.OperationUnprovision)
	require.NoError(t, err)
	for _, s := range down {
		if s.Name == "vector-database-uninstall" {
			require.NoError(t, s.Action(context.Background()))
		}
	}
	assert.Equal(t, []string{MilvusReleaseName}, h.uninstalls)
}
