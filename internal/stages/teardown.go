package stages

import (
	"github.com/llamastack/llsctl/internal/cluster"
	"github.com/llamastack/llsctl/internal/config"
	"github.com/llamastack/llsctl/internal/provisioning"
)

// EverCreated returns every resource identity any provision or setup branch
// can create for the snapshot's namespaces, regardless of which branches the
// snapshot currently enables. Teardown planning is checked against this set:
// an identity provision can create must always have a deletion.
func EverCreated(snap *config.Snapshot) []cluster.Identity {
	ns := snap.Namespace
	authNS := snap.AuthNamespace()

	return []cluster.Identity{
		// setup
		{Kind: "CatalogSource", Namespace: CatalogNamespace, Name: CatalogSourceName},
		{Kind: "OperatorGroup", Namespace: OperatorNamespace, Name: OperatorGroupName},
		{Kind: "Subscription", Namespace: OperatorNamespace, Name: SubscriptionName},
		// provision, base
		{Kind: "Namespace", Name: ns},
		{Kind: "Secret", Namespace: ns, Name: InferenceSecretName},
		{Kind: "ConfigMap", Namespace: ns, Name: PolicyConfigMapName},
		{Kind: "LlamaStackDistribution", Namespace: ns, Name: DistributionName},
		{Kind: "Route", Namespace: ns, Name: RouteName},
		// provision, reference-auth overlay
		{Kind: "Namespace", Name: authNS},
		{Kind: "Secret", Namespace: authNS, Name: KeycloakAdminSecretName},
		{Kind: "Service", Namespace: authNS, Name: "keycloak"},
		{Kind: "Deployment", Namespace: authNS, Name: "keycloak"},
		{Kind: "Route", Namespace: authNS, Name: "keycloak"},
	}
}

// DeletedIdentities collects every identity the stage list removes.
func DeletedIdentities(stages []provisioning.Stage) []cluster.Identity {
	var out []cluster.Identity
	for _, s := range stages {
		out = append(out, s.Delete...)
	}
	return out
}

// CreatedIdentities collects every identity the stage list can apply.
func CreatedIdentities(stages []provisioning.Stage) []cluster.Identity {
	var out []cluster.Identity
	for _, s := range stages {
		out = append(out, s.Creates...)
	}
	return out
}
