//go:build !tinygo

package hal

import "time"

const hostTick = time.Millisecond

// hostTime turns wall-clock time into the millisecond tick stream. Ticks are
// published when a runner calls step, so a paused runner pauses time.
type hostTime struct {
	ch  chan uint64
	seq uint64
	now func() time.Time

	last time.Time
	acc  time.Duration
}

func newHostTime() *hostTime {
	return &hostTime{ch: make(chan uint64, 1024), now: time.Now}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

// step publishes one tick per whole millisecond since the previous call. The
// first call has nothing to measure against and publishes n ticks.
func (t *hostTime) step(n uint64) {
	now := t.now()
	if t.last.IsZero() {
		t.last = now
		t.publish(n)
		return
	}
	t.acc += now.Sub(t.last)
	t.last = now

	ticks := uint64(t.acc / hostTick)
	t.acc %= hostTick
	t.publish(ticks)
}

func (t *hostTime) publish(n uint64) {
	for i := uint64(0); i < n; i++ {
		t.seq++
		select {
		case t.ch <- t.seq:
		default:
		}
	}
}
