package exercise

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	ShortMeditation = 10 * time.Minute
	LongMeditation  = 20 * time.Minute
)

var ErrUnsupportedDuration = errors.New("meditation length must be 10 or 20 minutes")

type MeditationState struct {
	Duration  int     `json:"duration"`  // seconds
	Remaining int     `json:"remaining"` // seconds
	Running   bool    `json:"running"`
	Completed bool    `json:"completed"`
	Display   string  `json:"display"`
	Progress  float64 `json:"progress"`
}

// Meditation counts down one second at a time. Reaching zero stops the
// countdown, puts the remaining time back to the full duration and marks
// the session completed. Nothing is persisted.
type Meditation struct {
	clock clock.Clock

	mu        sync.Mutex
	duration  time.Duration
	remaining time.Duration
	running   bool
	completed bool
	timer     *clock.Timer
	gen       uint64
	listeners []func(MeditationState)
}

func NewMeditation(clk clock.Clock) *Meditation {
	return &Meditation{clock: clk, duration: ShortMeditation, remaining: ShortMeditation}
}

// OnChange registers fn. Like Sequencer listeners, fn runs under the lock.
func (m *Meditation) OnChange(fn func(MeditationState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Meditation) State() MeditationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

// Select changes the length. A running countdown is stopped.
func (m *Meditation) Select(d time.Duration) error {
	if d != ShortMeditation && d != LongMeditation {
		return fmt.Errorf("%w: got %s", ErrUnsupportedDuration, d)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancelLocked()
	m.running = false
	m.completed = false
	m.duration = d
	m.remaining = d
	m.emitLocked()
	return nil
}

func (m *Meditation) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}
	m.running = true
	m.completed = false
	m.scheduleLocked()
	m.emitLocked()
}

// Stop abandons the countdown and resets the remaining time.
func (m *Meditation) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancelLocked()
	m.running = false
	m.completed = false
	m.remaining = m.duration
	m.emitLocked()
}

func (m *Meditation) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancelLocked()
	m.running = false
	m.listeners = nil
}

func (m *Meditation) tick(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running || gen != m.gen {
		return
	}

	m.remaining -= time.Second
	if m.remaining <= 0 {
		m.running = false
		m.completed = true
		m.remaining = m.duration
		m.timer = nil
	} else {
		m.scheduleLocked()
	}
	m.emitLocked()
}

func (m *Meditation) scheduleLocked() {
	gen := m.gen
	m.timer = m.clock.AfterFunc(time.Second, func() { m.tick(gen) })
}

func (m *Meditation) cancelLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.gen++
}

func (m *Meditation) stateLocked() MeditationState {
	total := int(m.duration / time.Second)
	left := int(m.remaining / time.Second)
	st := MeditationState{
		Duration:  total,
		Remaining: left,
		Running:   m.running,
		Completed: m.completed,
		Display:   FormatClock(left),
	}
	if total > 0 {
		st.Progress = float64(total-left) / float64(total) * 100
	}
	return st
}

func (m *Meditation) emitLocked() {
	st := m.stateLocked()
	for _, fn := range m.listeners {
		fn(st)
	}
}

// FormatClock renders seconds as M:SS.
func FormatClock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
