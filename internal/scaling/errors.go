package scaling

import "errors"

// Configuration errors raised while building a step scaling policy. All of
// them surface at construction time; callers fix the input and rebuild.
var (
	// ErrInsufficientIntervals means fewer than two scaling intervals were
	// supplied. A single interval cannot describe a scaling decision.
	ErrInsufficientIntervals = errors.New("at least 2 scaling intervals are required")

	// ErrAmbiguousOpenBoundary means more than one interval left its lower
	// bound open, or more than one left its upper bound open.
	ErrAmbiguousOpenBoundary = errors.New("only one interval may have an open lower bound and one an open upper bound")

	// ErrGapOrOverlap means the intervals do not tile the number line:
	// after sorting and boundary fill, an interval's upper bound did not
	// meet the next interval's lower bound exactly.
	ErrGapOrOverlap = errors.New("scaling intervals must be contiguous without gaps or overlaps")

	// ErrNoNeutralZone means no interval has a zero change and the set is
	// too large to infer a split point between scale-down and scale-up.
	ErrNoNeutralZone = errors.New("cannot determine neutral zone: no interval has change 0")
)
