package scene

// Tracker accumulates the span of rows touched since the last flush.
//
// The empty region is stored inverted (y1 = height, y2 = 0) so any Mark
// starts a fresh union.
type Tracker struct {
	height int
	y1, y2 int
}

// NewTracker returns an empty tracker for a screen of the given height.
func NewTracker(height int) *Tracker {
	t := &Tracker{height: height}
	t.clear()
	return t
}

func (t *Tracker) clear() {
	t.y1 = t.height
	t.y2 = 0
}

// Mark widens the region to cover rows [y1, y2). Empty spans are ignored.
func (t *Tracker) Mark(y1, y2 int) {
	if y2 <= y1 {
		return
	}
	if y1 < t.y1 {
		t.y1 = y1
	}
	if y2 > t.y2 {
		t.y2 = y2
	}
}

// MarkAll marks the whole screen.
func (t *Tracker) MarkAll() { t.Mark(0, t.height) }

// Peek returns the clamped region without consuming it.
func (t *Tracker) Peek() (y1, y2 int) {
	y1, y2 = t.y1, t.y2
	if y1 < 0 {
		y1 = 0
	}
	if y2 > t.height {
		y2 = t.height
	}
	if y2 <= y1 {
		return 0, 0
	}
	return y1, y2
}

// Take returns the region clamped to [0, height) and resets the tracker.
// An empty region is returned as (0, 0).
func (t *Tracker) Take() (y1, y2 int) {
	y1, y2 = t.Peek()
	t.clear()
	return y1, y2
}

// Empty reports whether a Take would return an empty region.
func (t *Tracker) Empty() bool {
	y1, y2 := t.Peek()
	return y2 <= y1
}
