package integration

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/llamastack/llsctl/internal/cluster"
	"github.com/llamastack/llsctl/internal/config"
	"github.com/llamastack/llsctl/internal/helm"
	"github.com/llamastack/llsctl/internal/provisioning"
	"github.com/llamastack/llsctl/internal/stages"
)

type recordingHelm struct {
	store      *cluster.Fake
	installs   []helm.Release
	uninstalls []string
}

func (h *recordingHelm) InstallOrUpgrade(rel helm.Release) error {
	h.installs = append(h.installs, rel)
	h.store.Put(readyDeployment(rel.Namespace, stages.MilvusDeploymentName))
	return nil
}

func (h *recordingHelm) Uninstall(_, name string) error {
	h.uninstalls = append(h.uninstalls, name)
	return nil
}

type recordingRealm struct {
	urls []string
	err  error
}

func (r *recordingRealm) EnsureRealm(_ context.Context, baseURL string) error {
	r.urls = append(r.urls, baseURL)
	return r.err
}

func readyDeployment(namespace, name string) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "apps/v1",
		"kind":       "Deployment",
		"metadata":   map[string]interface{}{"name": name, "namespace": namespace},
		"status":     map[string]interface{}{"readyReplicas": int64(1)},
	}}
}

// converge mimics cluster controllers reacting to applied resources.
func converge(f *cluster.Fake, doc *cluster.ResourceDocument) {
	switch doc.Identity.Kind {
	case "Deployment":
		obj := doc.Object.DeepCopy()
		obj.Object["status"] = map[string]interface{}{"readyReplicas": int64(1)}
		f.PutLocked(obj)
	case "Route":
		obj := doc.Object.DeepCopy()
		obj.Object["status"] = map[string]interface{}{
			"ingress": []interface{}{
				map[string]interface{}{"host": doc.Identity.Name + ".apps.cluster.local"},
			},
		}
		f.PutLocked(obj)
	case "LlamaStackDistribution":
		f.PutLocked(readyDeployment(doc.Identity.Namespace, doc.Identity.Name))
	case "Subscription":
		// OLM installs the controller once the subscription lands.
		f.PutLocked(readyDeployment(stages.OperatorNamespace, stages.OperatorDeploymentName))
	}
}

var _ = Describe("Lifecycle", func() {
	var (
		store *cluster.Fake
		h     *recordingHelm
		realm *recordingRealm
		snap  *config.Snapshot
		asm   *stages.Assembler
		orch  *provisioning.Orchestrator
	)

	run := func(op provisioning.Operation) *provisioning.RunReport {
		stageList, err := asm.BuildStages(op)
		Expect(err).NotTo(HaveOccurred())
		return orch.RunLifecycle(context.Background(), op, stageList)
	}

	BeforeEach(func() {
		store = cluster.NewFake()
		store.AfterApply = converge
		h = &recordingHelm{store: store}
		realm = &recordingRealm{}
		snap = &config.Snapshot{
			Namespace:      "demo",
			BaseDomain:     "apps.example.com",
			VLLMURL:        "https://vllm.example.com/v1",
			VLLMToken:      "vllm-token",
			EmbeddingURL:   "https://embed.example.com/v1",
			EmbeddingToken: "embed-token",
		}
		asm = &stages.Assembler{
			Snapshot: snap,
			Timeouts: config.TestTimeouts(),
			Store:    store,
			Helm:     h,
			Realm:    realm,
		}
		orch = provisioning.NewOrchestrator(store, provisioning.NewConsoleObserver())
	})

	Describe("setup", func() {
		It("installs the operator and waits for the controller", func() {
			report := run(provisioning.OperationSetup)

			Expect(report.Succeeded()).To(BeTrue())
			Expect(store.Exists(cluster.Identity{
				Kind: "Deployment", Namespace: stages.OperatorNamespace, Name: stages.OperatorDeploymentName,
			})).To(BeTrue())
		})

		It("is idempotent when the controller already runs", func() {
			store.Put(readyDeployment(stages.OperatorNamespace, stages.OperatorDeploymentName))

			report := run(provisioning.OperationSetup)

			Expect(report.Succeeded()).To(BeTrue())
			for _, id := range store.Applies {
				Expect(id.Kind).NotTo(Equal("Subscription"))
			}
		})
	})

	Describe("provision without overlay", func() {
		It("deploys the base platform and never touches the identity provider", func() {
			report := run(provisioning.OperationProvision)

			Expect(report.Succeeded()).To(BeTrue())
			Expect(h.installs).To(HaveLen(1))
			Expect(realm.urls).To(BeEmpty())

			for _, id := range []cluster.Identity{
				{Kind: "Namespace", Name: "demo"},
				{Kind: "Secret", Namespace: "demo", Name: stages.InferenceSecretName},
				{Kind: "ConfigMap", Namespace: "demo", Name: stages.PolicyConfigMapName},
				{Kind: "LlamaStackDistribution", Namespace: "demo", Name: stages.DistributionName},
				{Kind: "Route", Namespace: "demo", Name: stages.RouteName},
			} {
				Expect(store.Exists(id)).To(BeTrue(), "missing %s", id)
			}
			Expect(store.Exists(cluster.Identity{Kind: "Namespace", Name: "demo-auth"})).To(BeFalse())
		})

		It("reapplies without churning unchanged resources", func() {
			Expect(run(provisioning.OperationProvision).Succeeded()).To(BeTrue())

			policyID := cluster.Identity{Kind: "ConfigMap", Namespace: "demo", Name: stages.PolicyConfigMapName}
			rev := store.Revision(policyID)

			Expect(run(provisioning.OperationProvision).Succeeded()).To(BeTrue())
			Expect(store.Revision(policyID)).To(Equal(rev))
		})
	})

	Describe("provision with the reference-auth overlay", func() {
		BeforeEach(func() {
			snap.Overlay = config.OverlayReferenceAuth
			snap.AdminUser = "admin"
			snap.AdminPassword = "hunter2"
			snap.KeycloakClientSecret = "s3cret"
		})

		It("deploys keycloak and configures the realm once", func() {
			report := run(provisioning.OperationProvision)

			Expect(report.Succeeded()).To(BeTrue())
			Expect(store.Exists(cluster.Identity{Kind: "Deployment", Namespace: "demo-auth", Name: "keycloak"})).To(BeTrue())
			Expect(realm.urls).To(Equal([]string{"https://keycloak-demo-auth.apps.example.com"}))
		})

		It("treats realm configuration failure as non-fatal", func() {
			realm.err = errors.New("keycloak unreachable")

			report := run(provisioning.OperationProvision)

			Expect(report.Succeeded()).To(BeTrue())
			Expect(report.FirstFailure()).To(BeNil())

			var realmResult *provisioning.StageResult
			for i := range report.Results {
				if report.Results[i].Stage == "realm-config" {
					realmResult = &report.Results[i]
				}
			}
			Expect(realmResult).NotTo(BeNil())
			Expect(realmResult.Outcome).To(Equal(provisioning.OutcomeFailed))
		})
	})

	Describe("unprovision", func() {
		It("removes everything provision created, namespaces last", func() {
			Expect(run(provisioning.OperationProvision).Succeeded()).To(BeTrue())

			report := run(provisioning.OperationUnprovision)

			Expect(report.Succeeded()).To(BeTrue())
			Expect(h.uninstalls).To(Equal([]string{stages.MilvusReleaseName}))
			Expect(store.Exists(cluster.Identity{Kind: "Namespace", Name: "demo"})).To(BeFalse())
			Expect(store.Exists(cluster.Identity{Kind: "Namespace", Name: "demo-auth"})).To(BeFalse())

			last := store.Deletes[len(store.Deletes)-1]
			secondLast := store.Deletes[len(store.Deletes)-2]
			Expect([]string{last.Kind, secondLast.Kind}).To(Equal([]string{"Namespace", "Namespace"}))
		})

		It("succeeds against an empty cluster", func() {
			report := run(provisioning.OperationUnprovision)
			Expect(report.Succeeded()).To(BeTrue())
		})
	})

	Describe("failure handling", func() {
		It("halts at the first fatal failure and skips the remainder", func() {
			store.ApplyErr = func(doc *cluster.ResourceDocument) error {
				if doc.Identity.Kind == "ConfigMap" {
					return errors.New("admission denied")
				}
				return nil
			}

			report := run(provisioning.OperationProvision)

			Expect(report.Succeeded()).To(BeFalse())
			Expect(h.installs).To(BeEmpty())

			failure := report.FirstFailure()
			Expect(failure).NotTo(BeNil())
			Expect(failure.Stage).To(Equal("auth-policy"))

			skipped := 0
			for _, res := range report.Results {
				if res.Outcome == provisioning.OutcomeSkipped {
					skipped++
				}
			}
			Expect(skipped).To(Equal(3)) // vector-database, distribution, route
		})
	})

	Describe("cleanup", func() {
		It("removes the operator resources", func() {
			Expect(run(provisioning.OperationSetup).Succeeded()).To(BeTrue())

			report := run(provisioning.OperationCleanup)

			Expect(report.Succeeded()).To(BeTrue())
			Expect(store.Deletes).To(HaveLen(3))
		})
	})
})
