// Package stages assembles the ordered stage lists for every lifecycle
// operation from a configuration snapshot. Manifests are embedded at build
// time and processed as Go templates before being parsed into resource
// documents.
package stages

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/llamastack/llsctl/internal/cluster"
)

//go:embed manifests/*.yaml
var manifestsFS embed.FS

// renderDocument reads a manifest template from the embedded filesystem,
// executes it with the provided data, and parses the result into a single
// resource document.
func renderDocument(name string, data any) (*cluster.ResourceDocument, error) {
	content, err := manifestsFS.ReadFile("manifests/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", name, err)
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute manifest template %s: %w", name, err)
	}

	doc, err := cluster.DocumentFromYAML(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", name, err)
	}
	return doc, nil
}

// documentBuilder adapts renderDocument into a stage build function.
func documentBuilder(name string, data any) func() (*cluster.ResourceDocument, error) {
	return func() (*cluster.ResourceDocument, error) {
		return renderDocument(name, data)
	}
}
