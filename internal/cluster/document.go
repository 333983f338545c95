package cluster

import (
	"fmt"
	"io"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/yaml"
)

// NewDocument wraps an unstructured object into a ResourceDocument,
// deriving its identity from the object metadata.
func NewDocument(obj *unstructured.Unstructured) *ResourceDocument {
	return &ResourceDocument{
		Identity: Identity{
			Kind:      obj.GetKind(),
			Namespace: obj.GetNamespace(),
			Name:      obj.GetName(),
		},
		Object: obj,
	}
}

// DocumentsFromYAML parses a (possibly multi-document) YAML manifest into
// resource documents. Empty documents are skipped.
func DocumentsFromYAML(manifest []byte) ([]*ResourceDocument, error) {
	decoder := yaml.NewYAMLOrJSONDecoder(strings.NewReader(string(manifest)), 4096)

	var docs []*ResourceDocument
	for {
		var obj unstructured.Unstructured
		err := decoder.Decode(&obj)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode manifest: %w", err)
		}
		if len(obj.Object) == 0 {
			continue
		}
		if obj.GetKind() == "" || obj.GetName() == "" {
			return nil, fmt.Errorf("manifest document missing kind or name")
		}
		docs = append(docs, NewDocument(obj.DeepCopy()))
	}

	return docs, nil
}

// DocumentFromYAML parses a manifest expected to contain exactly one document.
func DocumentFromYAML(manifest []byte) (*ResourceDocument, error) {
	docs, err := DocumentsFromYAML(manifest)
	if err != nil {
		return nil, err
	}
	if len(docs) != 1 {
		return nil, fmt.Errorf("expected exactly one document, got %d", len(docs))
	}
	return docs[0], nil
}
