// Package scaling converts user-supplied scaling intervals into the pair of
// alarm thresholds and step-adjustment tables consumed by a CloudWatch-style
// alarm engine. The package is pure computation: it validates and
// canonicalizes intervals, locates the neutral zone, and derives one alarm
// per scaling direction.
package scaling

import (
	"fmt"
	"math"
	"sort"
)

// Bound is one edge of a scaling interval: either a concrete metric value or
// open (extending to infinity). The zero value is an open bound.
type Bound struct {
	value   float64
	bounded bool
}

// BoundedAt returns a bound fixed at the given metric value.
func BoundedAt(v float64) Bound {
	return Bound{value: v, bounded: true}
}

// Unbounded returns an open bound.
func Unbounded() Bound {
	return Bound{}
}

// Value returns the boundary value and whether the bound is closed.
func (b Bound) Value() (float64, bool) {
	return b.value, b.bounded
}

// Bounded reports whether the bound is a concrete value.
func (b Bound) Bounded() bool {
	return b.bounded
}

func (b Bound) String() string {
	if !b.bounded {
		return "open"
	}
	return fmt.Sprintf("%g", b.value)
}

// ScalingInterval maps a range of metric values to a capacity change. Bounds
// are half-open [lower, upper): a metric value equal to a shared boundary
// belongs to the interval above it.
type ScalingInterval struct {
	// Lower and Upper delimit the interval. At most one interval in a set
	// may leave Lower open and at most one may leave Upper open.
	Lower Bound
	Upper Bound

	// Change is the capacity adjustment for this interval: a delta for
	// ChangeInCapacity, a percentage for PercentChangeInCapacity, or an
	// absolute target for ExactCapacity. Zero marks the neutral zone.
	Change float64
}

// NormalizedInterval is a scaling interval after sorting and boundary fill.
// Every bound is concrete except the lower bound of the first interval and
// the upper bound of the last, which stay open.
type NormalizedInterval struct {
	Lower  Bound
	Upper  Bound
	Change float64
}

// Normalize validates and canonicalizes a set of scaling intervals into a
// sorted, contiguous sequence covering the full metric range. The absolute
// flag records ExactCapacity semantics; it does not transform the numeric
// data, downstream consumers interpret Change accordingly. Normalizing an
// already-normalized sequence returns the same sequence.
func Normalize(steps []ScalingInterval, absolute bool) ([]NormalizedInterval, error) {
	if len(steps) < 2 {
		return nil, fmt.Errorf("%w (got %d)", ErrInsufficientIntervals, len(steps))
	}

	openLower, openUpper := 0, 0
	for _, s := range steps {
		if !s.Lower.Bounded() {
			openLower++
		}
		if !s.Upper.Bounded() {
			openUpper++
		}
	}
	if openLower > 1 || openUpper > 1 {
		return nil, fmt.Errorf("%w (%d open lower, %d open upper)", ErrAmbiguousOpenBoundary, openLower, openUpper)
	}

	intervals := make([]NormalizedInterval, len(steps))
	for i, s := range steps {
		intervals[i] = NormalizedInterval{Lower: s.Lower, Upper: s.Upper, Change: s.Change}
	}

	// An open lower bound reads as negative infinity, so that interval
	// sorts to the front.
	sort.SliceStable(intervals, func(i, j int) bool {
		return sortKey(intervals[i]) < sortKey(intervals[j])
	})

	// Fill each missing bound from its neighbor. A bound still open after
	// this pass, other than at the two extremes, is a gap.
	for i := range intervals {
		if !intervals[i].Lower.Bounded() && i > 0 {
			if v, ok := intervals[i-1].Upper.Value(); ok {
				intervals[i].Lower = BoundedAt(v)
			}
		}
		if !intervals[i].Upper.Bounded() && i < len(intervals)-1 {
			if v, ok := intervals[i+1].Lower.Value(); ok {
				intervals[i].Upper = BoundedAt(v)
			}
		}
	}

	if err := validateContiguous(intervals); err != nil {
		return nil, err
	}
	return intervals, nil
}

func sortKey(iv NormalizedInterval) float64 {
	if v, ok := iv.Lower.Value(); ok {
		return v
	}
	return math.Inf(-1)
}

func validateContiguous(intervals []NormalizedInterval) error {
	for i, iv := range intervals {
		lo, hasLo := iv.Lower.Value()
		hi, hasHi := iv.Upper.Value()
		if hasLo && hasHi && hi < lo {
			return fmt.Errorf("%w: interval %d has upper %g below lower %g", ErrGapOrOverlap, i, hi, lo)
		}
		if i == len(intervals)-1 {
			continue
		}
		next, hasNext := intervals[i+1].Lower.Value()
		if !hasHi || !hasNext || hi != next {
			return fmt.Errorf("%w: interval %d ends at %s but interval %d starts at %s",
				ErrGapOrOverlap, i, iv.Upper, i+1, intervals[i+1].Lower)
		}
	}
	return nil
}
