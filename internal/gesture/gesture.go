package gesture

import "math"

// DefaultThreshold is the minimum drag distance, in pixels, that counts
// as a swipe.
const DefaultThreshold = 50.0

// Direction is the navigation a drag resolves to.
type Direction int

const (
	None Direction = iota
	Next
	Prev
)

func (d Direction) String() string {
	switch d {
	case Next:
		return "next"
	case Prev:
		return "prev"
	default:
		return "none"
	}
}

// Point is a pointer position in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Options tunes swipe resolution.
type Options struct {
	Threshold float64
	// Vertical enables paging on vertical-dominant drags (up is Next).
	Vertical bool
}

// Resolve maps a drag from start to end to a navigation. Dragging left
// (content moves toward the next slide) is Next, dragging right is Prev.
// Drags at or under the threshold resolve to None.
func Resolve(start, end Point, opts Options) Direction {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	dx := end.X - start.X
	dy := end.Y - start.Y

	if math.Abs(dy) > math.Abs(dx) {
		if !opts.Vertical || math.Abs(dy) <= threshold {
			return None
		}
		if dy < 0 {
			return Next
		}
		return Prev
	}

	if math.Abs(dx) <= threshold {
		return None
	}
	if dx < 0 {
		return Next
	}
	return Prev
}

// Tracker follows one touch sequence and resolves it on release.
type Tracker struct {
	opts    Options
	start   Point
	last    Point
	touched bool
}

// NewTracker returns a tracker using opts.
func NewTracker(opts Options) *Tracker {
	return &Tracker{opts: opts}
}

// Start begins a sequence at p, discarding any unfinished one.
func (t *Tracker) Start(p Point) {
	t.start, t.last, t.touched = p, p, true
}

// Move records an intermediate position.
func (t *Tracker) Move(p Point) {
	if t.touched {
		t.last = p
	}
}

// End finishes the sequence and returns its resolution. End without a
// matching Start resolves to None.
func (t *Tracker) End(p Point) Direction {
	if !t.touched {
		return None
	}
	t.touched = false
	t.last = p
	return Resolve(t.start, p, t.opts)
}

// Cancel drops the current sequence, e.g. on touchcancel.
func (t *Tracker) Cancel() {
	t.touched = false
}
