// Package template turns a construct tree into the deployment template
// handed to the external provisioning engine.
package template

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/rshade/stackscale/internal/construct"
)

// Template is the synthesized deployment document: resources keyed by
// logical id.
type Template struct {
	Description string              `json:"Description,omitempty" yaml:"Description,omitempty"`
	Resources   map[string]Resource `json:"Resources" yaml:"Resources"`
}

// Resource is one emitted resource declaration.
type Resource struct {
	Type       string         `json:"Type" yaml:"Type"`
	Properties map[string]any `json:"Properties,omitempty" yaml:"Properties,omitempty"`
}

// Synthesize walks the tree and collects every attached resource under its
// logical id. Duplicate logical ids mean the tree was built incorrectly and
// fail the synthesis.
func Synthesize(tree *construct.Tree) (*Template, error) {
	tpl := &Template{Resources: map[string]Resource{}}
	var err error
	tree.Walk(func(n construct.Node) {
		if err != nil {
			return
		}
		res, ok := tree.Resource(n)
		if !ok {
			return
		}
		id := tree.LogicalID(n)
		if _, exists := tpl.Resources[id]; exists {
			err = fmt.Errorf("duplicate logical id %q at %q", id, tree.Path(n))
			return
		}
		tpl.Resources[id] = Resource{Type: res.Type, Properties: res.Properties}
	})
	if err != nil {
		return nil, err
	}
	return tpl, nil
}

// Ref returns a template reference to the resource attached at a node.
func Ref(tree *construct.Tree, n construct.Node) map[string]any {
	return map[string]any{"Ref": tree.LogicalID(n)}
}

// JSON renders the template as indented JSON.
func (t *Template) JSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// YAML renders the template as YAML.
func (t *Template) YAML() ([]byte, error) {
	return yaml.Marshal(t)
}
