// Package manifest loads a declarative stack description from a YAML or
// JSON file and builds the corresponding construct tree.
package manifest

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/rshade/stackscale/internal/construct"
	"github.com/rshade/stackscale/internal/metrics"
	"github.com/rshade/stackscale/internal/resources"
	"github.com/rshade/stackscale/internal/scaling"
)

// Manifest is the root of a stack description file.
type Manifest struct {
	Name   string               `mapstructure:"name"`
	Groups map[string]GroupSpec `mapstructure:"groups"`
	Queues map[string]QueueSpec `mapstructure:"queues"`
	APIs   map[string]APISpec   `mapstructure:"apis"`
}

// GroupSpec describes one auto scaling group and its scaling rules.
type GroupSpec struct {
	Min      int        `mapstructure:"min"`
	Max      int        `mapstructure:"max"`
	Desired  int        `mapstructure:"desired"`
	Cooldown int        `mapstructure:"cooldown"`
	Scaling  []RuleSpec `mapstructure:"scaling"`
}

// RuleSpec describes one step scaling rule on a group.
type RuleSpec struct {
	Name           string         `mapstructure:"name"`
	Metric         MetricSpec     `mapstructure:"metric"`
	AdjustmentType string         `mapstructure:"adjustmentType"`
	Cooldown       int            `mapstructure:"cooldown"`
	Warmup         int            `mapstructure:"warmup"`
	MinMagnitude   int            `mapstructure:"minAdjustmentMagnitude"`
	Intervals      []IntervalSpec `mapstructure:"intervals"`
}

// MetricSpec names the source metric for a scaling rule.
type MetricSpec struct {
	Namespace  string            `mapstructure:"namespace"`
	Name       string            `mapstructure:"name"`
	Statistic  string            `mapstructure:"statistic"`
	Period     int               `mapstructure:"period"`
	Dimensions map[string]string `mapstructure:"dimensions"`
}

// IntervalSpec is one scaling interval. Absent lower/upper bounds mean the
// interval extends to infinity on that side.
type IntervalSpec struct {
	Lower  *float64 `mapstructure:"lower"`
	Upper  *float64 `mapstructure:"upper"`
	Change float64  `mapstructure:"change"`
}

// QueueSpec describes one message queue.
type QueueSpec struct {
	VisibilityTimeout int `mapstructure:"visibilityTimeout"`
	Retention         int `mapstructure:"retention"`
}

// APISpec describes one REST API.
type APISpec struct {
	Stage       string `mapstructure:"stage"`
	Description string `mapstructure:"description"`
}

// Load reads and parses a manifest file. The format is inferred from the
// file extension (yaml or json).
func Load(path string) (*Manifest, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := v.Unmarshal(&m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("manifest is missing a stack name")
	}
	return &m, nil
}

// Build constructs every resource the manifest names under the tree root.
// The first invalid entry aborts the build.
func (m *Manifest) Build(tree *construct.Tree) error {
	for name, spec := range m.Groups {
		group, err := resources.NewAutoScalingGroup(tree, construct.Root, name, resources.AutoScalingGroupProps{
			MinCapacity:     spec.Min,
			MaxCapacity:     spec.Max,
			DesiredCapacity: spec.Desired,
			CooldownSec:     spec.Cooldown,
		})
		if err != nil {
			return err
		}
		for _, rule := range spec.Scaling {
			if rule.Name == "" {
				return fmt.Errorf("group %q: scaling rule is missing a name", name)
			}
			intervals := make([]scaling.ScalingInterval, 0, len(rule.Intervals))
			for _, iv := range rule.Intervals {
				intervals = append(intervals, scaling.ScalingInterval{
					Lower:  bound(iv.Lower),
					Upper:  bound(iv.Upper),
					Change: iv.Change,
				})
			}
			metric := metrics.Metric{
				Namespace:  rule.Metric.Namespace,
				MetricName: rule.Metric.Name,
				Statistic:  metrics.Statistic(rule.Metric.Statistic),
				PeriodSec:  rule.Metric.Period,
				Dimensions: rule.Metric.Dimensions,
			}
			_, err := group.ScaleOnMetric(rule.Name, metric, intervals, resources.ScaleOnMetricOptions{
				AdjustmentType:         scaling.AdjustmentType(rule.AdjustmentType),
				CooldownSec:            rule.Cooldown,
				WarmupSec:              rule.Warmup,
				MinAdjustmentMagnitude: rule.MinMagnitude,
			})
			if err != nil {
				return fmt.Errorf("group %q: %w", name, err)
			}
		}
	}

	for name, spec := range m.Queues {
		_, err := resources.NewQueue(tree, construct.Root, name, resources.QueueProps{
			VisibilityTimeoutSec: spec.VisibilityTimeout,
			RetentionSec:         spec.Retention,
		})
		if err != nil {
			return err
		}
	}

	for name, spec := range m.APIs {
		_, err := resources.NewRestApi(tree, construct.Root, name, resources.RestApiProps{
			StageName:   spec.Stage,
			Description: spec.Description,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func bound(v *float64) scaling.Bound {
	if v == nil {
		return scaling.Unbounded()
	}
	return scaling.BoundedAt(*v)
}
