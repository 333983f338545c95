package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentsFromYAML(t *testing.T) {
	t.Parallel()

	manifest := []byte(`apiVersion: v1
kind: Namespace
metadata:
  name: demo
---
apiVersion: apps/v1
kind: Deployment
metadata:
  name: keycloak
  namespace: demo
spec:
  replicas: 1
`)

	docs, err := DocumentsFromYAML(manifest)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, Identity{Kind: "Namespace", Name: "demo"}, docs[0].Identity)
	assert.Equal(t, Identity{Kind: "Deployment", Namespace: "demo", Name: "keycloak"}, docs[1].Identity)
}

func TestDocumentsFromYAMLSkipsEmptyDocuments(t *testing.T) {
	t.Parallel()

	manifest := []byte(`---
# comment only
---
apiVersion: v1
kind: ConfigMap
metadata:
  name: policy
  namespace: demo
`)

	docs, err := DocumentsFromYAML(manifest)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "ConfigMap", docs[0].Identity.Kind)
}

func TestDocumentsFromYAMLRejectsAnonymousDocuments(t *testing.T) {
	t.Parallel()

	_, err := DocumentsFromYAML([]byte("apiVersion: v1\nkind: ConfigMap\n"))
	require.Error(t, err)
}

func TestDocumentFromYAMLRequiresSingleDocument(t *testing.T) {
	t.Parallel()

	manifest := []byte(`apiVersion: v1
kind: Namespace
metadata:
  name: one
---
apiVersion: v1
kind: Namespace
metadata:
  name: two
`)

	_, err := DocumentFromYAML(manifest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one document")
}

func TestIdentityString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Namespace/demo", Identity{Kind: "Namespace", Name: "demo"}.String())
	assert.Equal(t, "Secret/demo/creds", Identity{Kind: "Secret", Namespace: "demo", Name: "creds"}.String())
}
