package scaling

import "fmt"

// AlarmThresholds identifies which normalized intervals anchor the two
// scaling alarms. An absent side means the metric never needs to scale in
// that direction.
type AlarmThresholds struct {
	LowerAlarmIndex int
	HasLowerAlarm   bool
	UpperAlarmIndex int
	HasUpperAlarm   bool
}

// FindNeutralZone returns the index range [start, end] of the consecutive
// run of zero-change intervals containing the first such interval. The
// second return is false when no interval has a zero change.
func FindNeutralZone(intervals []NormalizedInterval) (start, end int, ok bool) {
	for i, iv := range intervals {
		if iv.Change != 0 {
			continue
		}
		end = i
		for end+1 < len(intervals) && intervals[end+1].Change == 0 {
			end++
		}
		return i, end, true
	}
	return 0, 0, false
}

// DeriveThresholds decides which interval carries the lower alarm and which
// the upper, relative to the neutral zone. When no interval has a zero
// change, a two-interval set splits at its shared boundary; anything larger
// is ambiguous and rejected.
func DeriveThresholds(intervals []NormalizedInterval) (AlarmThresholds, error) {
	start, end, ok := FindNeutralZone(intervals)
	if !ok {
		if len(intervals) == 2 {
			return AlarmThresholds{
				LowerAlarmIndex: 0, HasLowerAlarm: true,
				UpperAlarmIndex: 1, HasUpperAlarm: true,
			}, nil
		}
		return AlarmThresholds{}, fmt.Errorf("%w (%d intervals)", ErrNoNeutralZone, len(intervals))
	}

	var result AlarmThresholds
	if start > 0 && intervals[start-1].Change != 0 {
		result.LowerAlarmIndex = start - 1
		result.HasLowerAlarm = true
	}
	if end < len(intervals)-1 && intervals[end+1].Change != 0 {
		result.UpperAlarmIndex = end + 1
		result.HasUpperAlarm = true
	}
	return result, nil
}
