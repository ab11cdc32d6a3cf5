package template

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/rshade/stackscale/internal/construct"
)

func sampleTree(t *testing.T) (*construct.Tree, construct.Node) {
	t.Helper()
	tree := construct.NewTree()
	group, err := tree.Child(construct.Root, "Workers")
	if err != nil {
		t.Fatalf("Child() unexpected error: %v", err)
	}
	if err := tree.Attach(group, construct.Resource{
		Type:       "AWS::AutoScaling::AutoScalingGroup",
		Properties: map[string]any{"MinSize": 1, "MaxSize": 10},
	}); err != nil {
		t.Fatalf("Attach() unexpected error: %v", err)
	}
	return tree, group
}

func TestSynthesize(t *testing.T) {
	tree, group := sampleTree(t)
	scope, _ := tree.Child(group, "Scaling")
	if err := tree.Attach(scope, construct.Resource{Type: "AWS::AutoScaling::ScalingPolicy"}); err != nil {
		t.Fatalf("Attach() unexpected error: %v", err)
	}

	tpl, err := Synthesize(tree)
	if err != nil {
		t.Fatalf("Synthesize() unexpected error: %v", err)
	}
	if len(tpl.Resources) != 2 {
		t.Fatalf("Synthesize() produced %d resources, want 2", len(tpl.Resources))
	}

	id := tree.LogicalID(group)
	res, ok := tpl.Resources[id]
	if !ok {
		t.Fatalf("template missing resource %q", id)
	}
	if res.Type != "AWS::AutoScaling::AutoScalingGroup" {
		t.Errorf("resource type = %q", res.Type)
	}
}

func TestRef(t *testing.T) {
	tree, group := sampleTree(t)
	ref := Ref(tree, group)
	if ref["Ref"] != tree.LogicalID(group) {
		t.Errorf("Ref() = %v, want logical id %q", ref, tree.LogicalID(group))
	}
}

func TestTemplateJSON(t *testing.T) {
	tree, group := sampleTree(t)
	tpl, err := Synthesize(tree)
	if err != nil {
		t.Fatalf("Synthesize() unexpected error: %v", err)
	}
	tpl.Description = "demo"

	out, err := tpl.JSON()
	if err != nil {
		t.Fatalf("JSON() unexpected error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("JSON() output is not valid JSON: %v", err)
	}
	if decoded["Description"] != "demo" {
		t.Errorf("Description = %v, want demo", decoded["Description"])
	}
	resources, ok := decoded["Resources"].(map[string]any)
	if !ok {
		t.Fatalf("Resources missing from output: %s", out)
	}
	if _, ok := resources[tree.LogicalID(group)]; !ok {
		t.Errorf("Resources missing %q", tree.LogicalID(group))
	}
}

func TestTemplateYAML(t *testing.T) {
	tree, group := sampleTree(t)
	tpl, err := Synthesize(tree)
	if err != nil {
		t.Fatalf("Synthesize() unexpected error: %v", err)
	}

	out, err := tpl.YAML()
	if err != nil {
		t.Fatalf("YAML() unexpected error: %v", err)
	}
	var decoded map[string]any
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("YAML() output is not valid YAML: %v", err)
	}
	if !strings.Contains(string(out), tree.LogicalID(group)) {
		t.Errorf("YAML output missing logical id %q:\n%s", tree.LogicalID(group), out)
	}
}
