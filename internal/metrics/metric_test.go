package metrics

import (
	"errors"
	"testing"
)

func TestAggregationTypeFor(t *testing.T) {
	tests := []struct {
		name      string
		statistic Statistic
		want      AggregationType
		wantErr   bool
	}{
		{name: "average", statistic: StatisticAverage, want: AggregationAverage},
		{name: "minimum", statistic: StatisticMinimum, want: AggregationMinimum},
		{name: "maximum", statistic: StatisticMaximum, want: AggregationMaximum},
		{name: "percentile", statistic: "p99", wantErr: true},
		{name: "sum", statistic: "Sum", wantErr: true},
		{name: "empty", statistic: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AggregationTypeFor(tt.statistic)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedStatistic) {
					t.Fatalf("AggregationTypeFor() error = %v, want ErrUnsupportedStatistic", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("AggregationTypeFor() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("AggregationTypeFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMetricValidate(t *testing.T) {
	valid := Metric{
		Namespace:  "AWS/EC2",
		MetricName: "CPUUtilization",
		Statistic:  StatisticAverage,
		PeriodSec:  300,
	}

	tests := []struct {
		name    string
		mutate  func(m Metric) Metric
		wantErr bool
	}{
		{name: "valid", mutate: func(m Metric) Metric { return m }},
		{name: "missing namespace", mutate: func(m Metric) Metric { m.Namespace = ""; return m }, wantErr: true},
		{name: "missing name", mutate: func(m Metric) Metric { m.MetricName = ""; return m }, wantErr: true},
		{name: "bad statistic", mutate: func(m Metric) Metric { m.Statistic = "p50"; return m }, wantErr: true},
		{name: "negative period", mutate: func(m Metric) Metric { m.PeriodSec = -60; return m }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.mutate(valid).Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMetricWithPeriod(t *testing.T) {
	m := Metric{Namespace: "AWS/SQS", MetricName: "Depth", Statistic: StatisticMaximum, PeriodSec: 300}
	forced := m.WithPeriod(60)
	if forced.PeriodSec != 60 {
		t.Errorf("WithPeriod() period = %d, want 60", forced.PeriodSec)
	}
	if m.PeriodSec != 300 {
		t.Errorf("WithPeriod() mutated the receiver: period = %d, want 300", m.PeriodSec)
	}
}
