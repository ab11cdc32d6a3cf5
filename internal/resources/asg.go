// Package resources provides the thin resource constructs that attach
// template declarations to the construct tree: auto scaling groups, queues
// and REST APIs.
package resources

import (
	"fmt"

	"github.com/rshade/stackscale/internal/construct"
	"github.com/rshade/stackscale/internal/metrics"
	"github.com/rshade/stackscale/internal/scaling"
)

// AutoScalingGroupProps configures a group of scalable instances.
type AutoScalingGroupProps struct {
	// MinCapacity and MaxCapacity are hard guardrails the scaling engine
	// never crosses.
	MinCapacity int
	MaxCapacity int

	// DesiredCapacity is the initial size. Defaults to MinCapacity.
	DesiredCapacity int

	// CooldownSec is the default cooldown for scaling activities.
	CooldownSec int
}

// Validate checks the capacity guardrails.
func (p AutoScalingGroupProps) Validate() error {
	if p.MinCapacity < 0 {
		return fmt.Errorf("minCapacity must be non-negative")
	}
	if p.MaxCapacity < p.MinCapacity {
		return fmt.Errorf("maxCapacity must be greater than or equal to minCapacity")
	}
	if p.DesiredCapacity != 0 && (p.DesiredCapacity < p.MinCapacity || p.DesiredCapacity > p.MaxCapacity) {
		return fmt.Errorf("desiredCapacity %d outside [%d, %d]", p.DesiredCapacity, p.MinCapacity, p.MaxCapacity)
	}
	if p.CooldownSec < 0 {
		return fmt.Errorf("cooldown must be non-negative")
	}
	return nil
}

// AutoScalingGroup is a pool of instances that step scaling policies can
// target.
type AutoScalingGroup struct {
	tree  *construct.Tree
	node  construct.Node
	props AutoScalingGroupProps
}

// NewAutoScalingGroup validates the guardrails and attaches the group
// resource under parent.
func NewAutoScalingGroup(tree *construct.Tree, parent construct.Node, id string, props AutoScalingGroupProps) (*AutoScalingGroup, error) {
	if err := props.Validate(); err != nil {
		return nil, fmt.Errorf("auto scaling group %q: %w", id, err)
	}
	desired := props.DesiredCapacity
	if desired == 0 {
		desired = props.MinCapacity
	}

	node, err := tree.Child(parent, id)
	if err != nil {
		return nil, err
	}
	resourceProps := map[string]any{
		"MinSize":         props.MinCapacity,
		"MaxSize":         props.MaxCapacity,
		"DesiredCapacity": desired,
	}
	if props.CooldownSec > 0 {
		resourceProps["Cooldown"] = props.CooldownSec
	}
	if err := tree.Attach(node, construct.Resource{
		Type:       "AWS::AutoScaling::AutoScalingGroup",
		Properties: resourceProps,
	}); err != nil {
		return nil, err
	}
	return &AutoScalingGroup{tree: tree, node: node, props: props}, nil
}

// ScaleOnMetricOptions tunes a step scaling policy created on a group.
type ScaleOnMetricOptions struct {
	AdjustmentType         scaling.AdjustmentType
	CooldownSec            int
	WarmupSec              int
	MinAdjustmentMagnitude int
}

// ScaleOnMetric attaches a step scaling policy to the group: the intervals
// are normalized, alarms derived, and the policy and alarm resources are
// emitted as children of the group's scope.
func (g *AutoScalingGroup) ScaleOnMetric(id string, metric metrics.Metric, intervals []scaling.ScalingInterval, opts ScaleOnMetricOptions) (*scaling.StepScalingPolicy, error) {
	cooldown := opts.CooldownSec
	if cooldown == 0 {
		cooldown = g.props.CooldownSec
	}
	return scaling.NewStepScalingPolicy(g.tree, g.node, id, scaling.StepScalingPolicyProps{
		Metric:                 metric,
		Intervals:              intervals,
		AdjustmentType:         opts.AdjustmentType,
		Target:                 g.node,
		CooldownSec:            cooldown,
		WarmupSec:              opts.WarmupSec,
		MinAdjustmentMagnitude: opts.MinAdjustmentMagnitude,
	})
}

// Node returns the group's handle in the construct tree.
func (g *AutoScalingGroup) Node() construct.Node {
	return g.node
}
