// Package metrics describes the source metrics that scaling alarms watch.
package metrics

import (
	"errors"
	"fmt"
)

// Statistic is the aggregation applied to a metric's datapoints.
type Statistic string

const (
	StatisticAverage Statistic = "Average"
	StatisticMinimum Statistic = "Minimum"
	StatisticMaximum Statistic = "Maximum"
)

// AggregationType tags a step scaling policy with how its alarm aggregates
// the metric. Only the three statistics below have an aggregation type; any
// other statistic is rejected when the policy is built.
type AggregationType string

const (
	AggregationAverage AggregationType = "Average"
	AggregationMinimum AggregationType = "Minimum"
	AggregationMaximum AggregationType = "Maximum"
)

// ErrUnsupportedStatistic means the metric's statistic cannot drive a step
// scaling alarm.
var ErrUnsupportedStatistic = errors.New("statistic must be Average, Minimum or Maximum")

// AggregationTypeFor maps a statistic to the policy aggregation type.
func AggregationTypeFor(s Statistic) (AggregationType, error) {
	switch s {
	case StatisticAverage:
		return AggregationAverage, nil
	case StatisticMinimum:
		return AggregationMinimum, nil
	case StatisticMaximum:
		return AggregationMaximum, nil
	default:
		return "", fmt.Errorf("%w (got %q)", ErrUnsupportedStatistic, s)
	}
}

// Metric identifies a source metric and how it is sampled.
type Metric struct {
	Namespace  string
	MetricName string
	Statistic  Statistic
	PeriodSec  int
	Dimensions map[string]string
}

// Validate checks that the metric is complete enough to back an alarm.
func (m Metric) Validate() error {
	if m.Namespace == "" {
		return fmt.Errorf("metric namespace is required")
	}
	if m.MetricName == "" {
		return fmt.Errorf("metric name is required")
	}
	if _, err := AggregationTypeFor(m.Statistic); err != nil {
		return err
	}
	if m.PeriodSec < 0 {
		return fmt.Errorf("metric period must be non-negative")
	}
	return nil
}

// WithPeriod returns a copy of the metric sampled at the given period.
// Alarms force a 60 second period on their source metric regardless of what
// the metric was configured with.
func (m Metric) WithPeriod(seconds int) Metric {
	m.PeriodSec = seconds
	return m
}
