package scaling

import "fmt"

// StepAdjustment is one row of an alarm's step table. Bounds are expressed
// relative to the alarm's own threshold, so the interval touching the
// threshold spans up to (lower direction) or from (upper direction) zero.
// The outermost row in each direction has an open outward bound.
type StepAdjustment struct {
	Adjustment float64
	LowerBound Bound
	UpperBound Bound
}

// LowerThreshold returns the metric value at which the lower alarm fires:
// the upper bound of the interval the alarm is anchored to.
func LowerThreshold(intervals []NormalizedInterval, index int) (float64, error) {
	v, ok := intervals[index].Upper.Value()
	if !ok {
		return 0, fmt.Errorf("interval %d has no upper bound to anchor a lower alarm", index)
	}
	return v, nil
}

// UpperThreshold returns the metric value at which the upper alarm fires:
// the lower bound of the interval the alarm is anchored to.
func UpperThreshold(intervals []NormalizedInterval, index int) (float64, error) {
	v, ok := intervals[index].Lower.Value()
	if !ok {
		return 0, fmt.Errorf("interval %d has no lower bound to anchor an upper alarm", index)
	}
	return v, nil
}

// LowerStepTable builds the step adjustments for the lower alarm, covering
// the intervals from the outermost (index 0) up to and including the
// threshold interval. The outermost row's lower bound is forced open: it
// extends to negative infinity regardless of its normalized value.
func LowerStepTable(intervals []NormalizedInterval, thresholdIndex int) ([]StepAdjustment, error) {
	threshold, err := LowerThreshold(intervals, thresholdIndex)
	if err != nil {
		return nil, err
	}

	steps := make([]StepAdjustment, 0, thresholdIndex+1)
	for i := 0; i <= thresholdIndex; i++ {
		step := StepAdjustment{
			Adjustment: intervals[i].Change,
			LowerBound: shift(intervals[i].Lower, threshold),
			UpperBound: shift(intervals[i].Upper, threshold),
		}
		if i == 0 {
			step.LowerBound = Unbounded()
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// UpperStepTable builds the step adjustments for the upper alarm, covering
// the intervals from the threshold interval through the outermost (last
// index). The outermost row's upper bound is forced open.
func UpperStepTable(intervals []NormalizedInterval, thresholdIndex int) ([]StepAdjustment, error) {
	threshold, err := UpperThreshold(intervals, thresholdIndex)
	if err != nil {
		return nil, err
	}

	steps := make([]StepAdjustment, 0, len(intervals)-thresholdIndex)
	for i := thresholdIndex; i < len(intervals); i++ {
		step := StepAdjustment{
			Adjustment: intervals[i].Change,
			LowerBound: shift(intervals[i].Lower, threshold),
			UpperBound: shift(intervals[i].Upper, threshold),
		}
		if i == len(intervals)-1 {
			step.UpperBound = Unbounded()
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func shift(b Bound, threshold float64) Bound {
	v, ok := b.Value()
	if !ok {
		return Unbounded()
	}
	return BoundedAt(v - threshold)
}
