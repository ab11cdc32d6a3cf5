package scaling

import (
	"errors"
	"testing"
)

func normalized(t *testing.T, steps []ScalingInterval) []NormalizedInterval {
	t.Helper()
	intervals, err := Normalize(steps, false)
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	return intervals
}

func TestFindNeutralZone(t *testing.T) {
	tests := []struct {
		name      string
		steps     []ScalingInterval
		wantStart int
		wantEnd   int
		wantOK    bool
	}{
		{
			name: "neutral in the middle",
			steps: []ScalingInterval{
				{Upper: BoundedAt(10), Change: -1},
				{Lower: BoundedAt(10), Upper: BoundedAt(50), Change: 0},
				{Lower: BoundedAt(50), Change: 1},
			},
			wantStart: 1, wantEnd: 1, wantOK: true,
		},
		{
			name: "neutral at the lower edge",
			steps: []ScalingInterval{
				{Upper: BoundedAt(50), Change: 0},
				{Lower: BoundedAt(50), Change: 1},
			},
			wantStart: 0, wantEnd: 0, wantOK: true,
		},
		{
			name: "consecutive neutral intervals form one zone",
			steps: []ScalingInterval{
				{Upper: BoundedAt(10), Change: -1},
				{Lower: BoundedAt(10), Upper: BoundedAt(30), Change: 0},
				{Lower: BoundedAt(30), Upper: BoundedAt(50), Change: 0},
				{Lower: BoundedAt(50), Change: 1},
			},
			wantStart: 1, wantEnd: 2, wantOK: true,
		},
		{
			name: "no neutral interval",
			steps: []ScalingInterval{
				{Upper: BoundedAt(10), Change: -1},
				{Lower: BoundedAt(10), Change: 1},
			},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := FindNeutralZone(normalized(t, tt.steps))
			if ok != tt.wantOK {
				t.Fatalf("FindNeutralZone() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("FindNeutralZone() = [%d, %d], want [%d, %d]", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestDeriveThresholds(t *testing.T) {
	t.Run("alarms on both sides of neutral", func(t *testing.T) {
		intervals := normalized(t, []ScalingInterval{
			{Upper: BoundedAt(10), Change: -1},
			{Lower: BoundedAt(10), Upper: BoundedAt(50), Change: 0},
			{Lower: BoundedAt(50), Change: 1},
		})
		got, err := DeriveThresholds(intervals)
		if err != nil {
			t.Fatalf("DeriveThresholds() unexpected error: %v", err)
		}
		if !got.HasLowerAlarm || got.LowerAlarmIndex != 0 {
			t.Errorf("lower alarm = (%d, %v), want (0, true)", got.LowerAlarmIndex, got.HasLowerAlarm)
		}
		if !got.HasUpperAlarm || got.UpperAlarmIndex != 2 {
			t.Errorf("upper alarm = (%d, %v), want (2, true)", got.UpperAlarmIndex, got.HasUpperAlarm)
		}
	})

	t.Run("neutral at the outer edge yields one alarm", func(t *testing.T) {
		intervals := normalized(t, []ScalingInterval{
			{Upper: BoundedAt(50), Change: 0},
			{Lower: BoundedAt(50), Change: 1},
		})
		got, err := DeriveThresholds(intervals)
		if err != nil {
			t.Fatalf("DeriveThresholds() unexpected error: %v", err)
		}
		if got.HasLowerAlarm {
			t.Error("no lower alarm expected when the outermost interval has change 0")
		}
		if !got.HasUpperAlarm || got.UpperAlarmIndex != 1 {
			t.Errorf("upper alarm = (%d, %v), want (1, true)", got.UpperAlarmIndex, got.HasUpperAlarm)
		}
	})

	t.Run("two intervals without neutral split at their boundary", func(t *testing.T) {
		intervals := normalized(t, []ScalingInterval{
			{Upper: BoundedAt(30), Change: -1},
			{Lower: BoundedAt(30), Change: 1},
		})
		got, err := DeriveThresholds(intervals)
		if err != nil {
			t.Fatalf("DeriveThresholds() unexpected error: %v", err)
		}
		if !got.HasLowerAlarm || got.LowerAlarmIndex != 0 {
			t.Errorf("lower alarm = (%d, %v), want (0, true)", got.LowerAlarmIndex, got.HasLowerAlarm)
		}
		if !got.HasUpperAlarm || got.UpperAlarmIndex != 1 {
			t.Errorf("upper alarm = (%d, %v), want (1, true)", got.UpperAlarmIndex, got.HasUpperAlarm)
		}
	})

	t.Run("more than two intervals without neutral is rejected", func(t *testing.T) {
		intervals := normalized(t, []ScalingInterval{
			{Upper: BoundedAt(10), Change: -2},
			{Lower: BoundedAt(10), Upper: BoundedAt(50), Change: -1},
			{Lower: BoundedAt(50), Change: 1},
		})
		_, err := DeriveThresholds(intervals)
		if !errors.Is(err, ErrNoNeutralZone) {
			t.Fatalf("DeriveThresholds() error = %v, want %v", err, ErrNoNeutralZone)
		}
	})
}

func TestStepTables(t *testing.T) {
	intervals := normalized(t, []ScalingInterval{
		{Upper: BoundedAt(10), Change: -1},
		{Lower: BoundedAt(10), Upper: BoundedAt(50), Change: 0},
		{Lower: BoundedAt(50), Change: 1},
	})

	t.Run("lower table renormalized against threshold 10", func(t *testing.T) {
		threshold, err := LowerThreshold(intervals, 0)
		if err != nil {
			t.Fatalf("LowerThreshold() unexpected error: %v", err)
		}
		if threshold != 10 {
			t.Errorf("LowerThreshold() = %g, want 10", threshold)
		}

		steps, err := LowerStepTable(intervals, 0)
		if err != nil {
			t.Fatalf("LowerStepTable() unexpected error: %v", err)
		}
		if len(steps) != 1 {
			t.Fatalf("LowerStepTable() returned %d steps, want 1", len(steps))
		}
		if steps[0].Adjustment != -1 {
			t.Errorf("adjustment = %g, want -1", steps[0].Adjustment)
		}
		if steps[0].LowerBound.Bounded() {
			t.Error("outermost lower bound must be open")
		}
		if v := mustValue(t, steps[0].UpperBound); v != 0 {
			t.Errorf("upper bound = %g, want 0", v)
		}
	})

	t.Run("upper table renormalized against threshold 50", func(t *testing.T) {
		threshold, err := UpperThreshold(intervals, 2)
		if err != nil {
			t.Fatalf("UpperThreshold() unexpected error: %v", err)
		}
		if threshold != 50 {
			t.Errorf("UpperThreshold() = %g, want 50", threshold)
		}

		steps, err := UpperStepTable(intervals, 2)
		if err != nil {
			t.Fatalf("UpperStepTable() unexpected error: %v", err)
		}
		if len(steps) != 1 {
			t.Fatalf("UpperStepTable() returned %d steps, want 1", len(steps))
		}
		if steps[0].Adjustment != 1 {
			t.Errorf("adjustment = %g, want 1", steps[0].Adjustment)
		}
		if v := mustValue(t, steps[0].LowerBound); v != 0 {
			t.Errorf("lower bound = %g, want 0", v)
		}
		if steps[0].UpperBound.Bounded() {
			t.Error("outermost upper bound must be open")
		}
	})
}

func TestStepTablesMultipleSteps(t *testing.T) {
	intervals := normalized(t, []ScalingInterval{
		{Upper: BoundedAt(10), Change: -3},
		{Lower: BoundedAt(10), Upper: BoundedAt(30), Change: -1},
		{Lower: BoundedAt(30), Upper: BoundedAt(70), Change: 0},
		{Lower: BoundedAt(70), Upper: BoundedAt(90), Change: 1},
		{Lower: BoundedAt(90), Change: 3},
	})

	lower, err := LowerStepTable(intervals, 1)
	if err != nil {
		t.Fatalf("LowerStepTable() unexpected error: %v", err)
	}
	if len(lower) != 2 {
		t.Fatalf("LowerStepTable() returned %d steps, want 2", len(lower))
	}
	// Threshold 30: [-inf, -20) and [-20, 0).
	if lower[0].LowerBound.Bounded() {
		t.Error("outermost lower bound must be open")
	}
	if v := mustValue(t, lower[0].UpperBound); v != -20 {
		t.Errorf("step 0 upper bound = %g, want -20", v)
	}
	if v := mustValue(t, lower[1].LowerBound); v != -20 {
		t.Errorf("step 1 lower bound = %g, want -20", v)
	}
	if v := mustValue(t, lower[1].UpperBound); v != 0 {
		t.Errorf("step 1 upper bound = %g, want 0", v)
	}

	upper, err := UpperStepTable(intervals, 3)
	if err != nil {
		t.Fatalf("UpperStepTable() unexpected error: %v", err)
	}
	if len(upper) != 2 {
		t.Fatalf("UpperStepTable() returned %d steps, want 2", len(upper))
	}
	// Threshold 70: [0, 20) and [20, +inf).
	if v := mustValue(t, upper[0].LowerBound); v != 0 {
		t.Errorf("step 0 lower bound = %g, want 0", v)
	}
	if v := mustValue(t, upper[0].UpperBound); v != 20 {
		t.Errorf("step 0 upper bound = %g, want 20", v)
	}
	if v := mustValue(t, upper[1].LowerBound); v != 20 {
		t.Errorf("step 1 lower bound = %g, want 20", v)
	}
	if upper[1].UpperBound.Bounded() {
		t.Error("outermost upper bound must be open")
	}
}
