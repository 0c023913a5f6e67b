package feedback

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// AckDuration is how long a success acknowledgment stays up.
const AckDuration = 3 * time.Second

// Flash is a flag that clears itself a fixed time after being raised.
// Raising it again restarts the countdown.
type Flash struct {
	clock clock.Clock
	ttl   time.Duration

	mu       sync.Mutex
	active   bool
	timer    *clock.Timer
	gen      uint64
	onChange func(bool)
}

func NewFlash(clk clock.Clock, ttl time.Duration) *Flash {
	return &Flash{clock: clk, ttl: ttl}
}

// OnChange sets the listener. It runs under the flash lock.
func (f *Flash) OnChange(fn func(bool)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChange = fn
}

func (f *Flash) Raise() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopLocked()
	gen := f.gen
	f.timer = f.clock.AfterFunc(f.ttl, func() { f.clear(gen) })
	if !f.active {
		f.active = true
		f.emitLocked()
	}
}

func (f *Flash) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *Flash) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopLocked()
	f.active = false
	f.onChange = nil
}

func (f *Flash) clear(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.gen || !f.active {
		return
	}
	f.active = false
	f.timer = nil
	f.emitLocked()
}

func (f *Flash) stopLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.gen++
}

func (f *Flash) emitLocked() {
	if f.onChange != nil {
		f.onChange(f.active)
	}
}
