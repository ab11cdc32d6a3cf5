package scaling

import (
	"fmt"
	"sort"

	"github.com/rshade/stackscale/internal/construct"
	"github.com/rshade/stackscale/internal/metrics"
	"github.com/rshade/stackscale/internal/template"
)

// AdjustmentType says how a step adjustment changes capacity.
type AdjustmentType string

const (
	// ChangeInCapacity adds the adjustment to the current capacity.
	ChangeInCapacity AdjustmentType = "ChangeInCapacity"
	// PercentChangeInCapacity adjusts by a percentage of current capacity.
	PercentChangeInCapacity AdjustmentType = "PercentChangeInCapacity"
	// ExactCapacity sets capacity to the adjustment value.
	ExactCapacity AdjustmentType = "ExactCapacity"
)

// ComparisonOperator is the alarm's comparison against its threshold.
type ComparisonOperator string

const (
	LessThanOrEqualToThreshold    ComparisonOperator = "LessThanOrEqualToThreshold"
	GreaterThanOrEqualToThreshold ComparisonOperator = "GreaterThanOrEqualToThreshold"
)

// Alarms watch the source metric at a fixed 1-minute granularity, as the
// scaling engine recommends, regardless of the metric's configured period.
const alarmPeriodSec = 60

// AlarmDescriptor is one direction's alarm configuration together with the
// step table its scaling action executes.
type AlarmDescriptor struct {
	Threshold          float64
	ComparisonOperator ComparisonOperator
	EvaluationPeriods  int
	Metric             metrics.Metric
	Steps              []StepAdjustment
}

// StepScalingPolicyProps configures a step scaling policy.
type StepScalingPolicyProps struct {
	// Metric is the source metric the alarms watch.
	Metric metrics.Metric

	// Intervals map metric ranges to capacity changes. At least two are
	// required and together they must tile the metric range.
	Intervals []ScalingInterval

	// AdjustmentType defaults to ChangeInCapacity.
	AdjustmentType AdjustmentType

	// Target is the scalable resource the policy acts on.
	Target construct.Node

	// CooldownSec and WarmupSec pass through to the emitted policy.
	CooldownSec int
	WarmupSec   int

	// MinAdjustmentMagnitude is only valid with PercentChangeInCapacity.
	MinAdjustmentMagnitude int
}

// StepScalingPolicy derives up to two alarms from a set of scaling
// intervals and attaches the corresponding policy and alarm resources to
// the construct tree.
type StepScalingPolicy struct {
	node        construct.Node
	Aggregation metrics.AggregationType

	// LowerAlarm fires when the metric drops to or below its threshold,
	// UpperAlarm when it rises to or above. Either may be nil when the
	// outermost interval in that direction has no capacity change.
	LowerAlarm *AlarmDescriptor
	UpperAlarm *AlarmDescriptor
}

// NewStepScalingPolicy validates the props, normalizes the intervals,
// derives the alarm thresholds and step tables, and emits the scaling
// policy and alarm resources as children of a new scope under parent.
// Every validation failure is raised here, synchronously; nothing is
// deferred to synthesis or evaluation time.
func NewStepScalingPolicy(tree *construct.Tree, parent construct.Node, id string, props StepScalingPolicyProps) (*StepScalingPolicy, error) {
	if props.AdjustmentType == "" {
		props.AdjustmentType = ChangeInCapacity
	}
	if err := validateProps(props); err != nil {
		return nil, fmt.Errorf("step scaling policy %q: %w", id, err)
	}

	aggregation, err := metrics.AggregationTypeFor(props.Metric.Statistic)
	if err != nil {
		return nil, fmt.Errorf("step scaling policy %q: %w", id, err)
	}

	absolute := props.AdjustmentType == ExactCapacity
	intervals, err := Normalize(props.Intervals, absolute)
	if err != nil {
		return nil, fmt.Errorf("step scaling policy %q: %w", id, err)
	}

	thresholds, err := DeriveThresholds(intervals)
	if err != nil {
		return nil, fmt.Errorf("step scaling policy %q: %w", id, err)
	}

	scope, err := tree.Child(parent, id)
	if err != nil {
		return nil, err
	}
	policy := &StepScalingPolicy{node: scope, Aggregation: aggregation}
	alarmMetric := props.Metric.WithPeriod(alarmPeriodSec)

	if thresholds.HasLowerAlarm {
		steps, err := LowerStepTable(intervals, thresholds.LowerAlarmIndex)
		if err != nil {
			return nil, fmt.Errorf("step scaling policy %q: %w", id, err)
		}
		threshold, _ := LowerThreshold(intervals, thresholds.LowerAlarmIndex)
		policy.LowerAlarm = &AlarmDescriptor{
			Threshold:          threshold,
			ComparisonOperator: LessThanOrEqualToThreshold,
			EvaluationPeriods:  1,
			Metric:             alarmMetric,
			Steps:              steps,
		}
		if err := policy.emit(tree, "Lower", props, policy.LowerAlarm, aggregation); err != nil {
			return nil, err
		}
	}

	if thresholds.HasUpperAlarm {
		steps, err := UpperStepTable(intervals, thresholds.UpperAlarmIndex)
		if err != nil {
			return nil, fmt.Errorf("step scaling policy %q: %w", id, err)
		}
		threshold, _ := UpperThreshold(intervals, thresholds.UpperAlarmIndex)
		policy.UpperAlarm = &AlarmDescriptor{
			Threshold:          threshold,
			ComparisonOperator: GreaterThanOrEqualToThreshold,
			EvaluationPeriods:  1,
			Metric:             alarmMetric,
			Steps:              steps,
		}
		if err := policy.emit(tree, "Upper", props, policy.UpperAlarm, aggregation); err != nil {
			return nil, err
		}
	}

	return policy, nil
}

func validateProps(props StepScalingPolicyProps) error {
	switch props.AdjustmentType {
	case ChangeInCapacity, PercentChangeInCapacity, ExactCapacity:
	default:
		return fmt.Errorf("unknown adjustment type %q", props.AdjustmentType)
	}
	if props.MinAdjustmentMagnitude != 0 && props.AdjustmentType != PercentChangeInCapacity {
		return fmt.Errorf("minAdjustmentMagnitude requires PercentChangeInCapacity")
	}
	if props.MinAdjustmentMagnitude < 0 {
		return fmt.Errorf("minAdjustmentMagnitude must be non-negative")
	}
	if props.CooldownSec < 0 {
		return fmt.Errorf("cooldown must be non-negative")
	}
	if props.WarmupSec < 0 {
		return fmt.Errorf("warmup must be non-negative")
	}
	if err := props.Metric.Validate(); err != nil {
		return err
	}
	return nil
}

// emit attaches one direction's scaling policy and alarm resources.
func (p *StepScalingPolicy) emit(tree *construct.Tree, direction string, props StepScalingPolicyProps, alarm *AlarmDescriptor, aggregation metrics.AggregationType) error {
	policyNode, err := tree.Child(p.node, direction+"Policy")
	if err != nil {
		return err
	}

	adjustments := make([]map[string]any, 0, len(alarm.Steps))
	for _, s := range alarm.Steps {
		row := map[string]any{"ScalingAdjustment": s.Adjustment}
		if v, ok := s.LowerBound.Value(); ok {
			row["MetricIntervalLowerBound"] = v
		}
		if v, ok := s.UpperBound.Value(); ok {
			row["MetricIntervalUpperBound"] = v
		}
		adjustments = append(adjustments, row)
	}

	policyProps := map[string]any{
		"PolicyType":            "StepScaling",
		"AdjustmentType":        string(props.AdjustmentType),
		"MetricAggregationType": string(aggregation),
		"AutoScalingGroupName":  template.Ref(tree, props.Target),
		"StepAdjustments":       adjustments,
	}
	if props.CooldownSec > 0 {
		policyProps["Cooldown"] = props.CooldownSec
	}
	if props.WarmupSec > 0 {
		policyProps["EstimatedInstanceWarmup"] = props.WarmupSec
	}
	if props.MinAdjustmentMagnitude > 0 {
		policyProps["MinAdjustmentMagnitude"] = props.MinAdjustmentMagnitude
	}
	if err := tree.Attach(policyNode, construct.Resource{
		Type:       "AWS::AutoScaling::ScalingPolicy",
		Properties: policyProps,
	}); err != nil {
		return err
	}

	alarmNode, err := tree.Child(p.node, direction+"Alarm")
	if err != nil {
		return err
	}
	alarmProps := map[string]any{
		"Namespace":          alarm.Metric.Namespace,
		"MetricName":         alarm.Metric.MetricName,
		"Statistic":          string(alarm.Metric.Statistic),
		"Period":             alarm.Metric.PeriodSec,
		"EvaluationPeriods":  alarm.EvaluationPeriods,
		"Threshold":          alarm.Threshold,
		"ComparisonOperator": string(alarm.ComparisonOperator),
		"AlarmActions":       []any{template.Ref(tree, policyNode)},
	}
	if len(alarm.Metric.Dimensions) > 0 {
		alarmProps["Dimensions"] = dimensionList(alarm.Metric.Dimensions)
	}
	return tree.Attach(alarmNode, construct.Resource{
		Type:       "AWS::CloudWatch::Alarm",
		Properties: alarmProps,
	})
}

func dimensionList(dims map[string]string) []map[string]any {
	names := make([]string, 0, len(dims))
	for name := range dims {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]map[string]any, 0, len(names))
	for _, name := range names {
		out = append(out, map[string]any{"Name": name, "Value": dims[name]})
	}
	return out
}

// Node returns the policy's scope in the construct tree.
func (p *StepScalingPolicy) Node() construct.Node {
	return p.node
}
