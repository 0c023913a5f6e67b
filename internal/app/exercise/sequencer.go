package exercise

import (
	"sync"

	"github.com/benbjohnson/clock"
)

// SequencerState is a snapshot of a breathing sequencer. Index is -1 and
// Label is IdleLabel while stopped.
type SequencerState struct {
	Pattern string `json:"pattern"`
	Running bool   `json:"running"`
	Index   int    `json:"index"`
	Label   string `json:"label"`
	Seconds int    `json:"seconds"`
}

// Sequencer walks a Pattern phase by phase, wrapping around, until stopped.
// Listeners run under the sequencer lock and must not call back into it.
type Sequencer struct {
	clock   clock.Clock
	pattern Pattern

	mu        sync.Mutex
	running   bool
	index     int
	timer     *clock.Timer
	gen       uint64
	listeners []func(SequencerState)
}

func NewSequencer(clk clock.Clock, pattern Pattern) *Sequencer {
	return &Sequencer{clock: clk, pattern: pattern, index: -1}
}

func (s *Sequencer) OnChange(fn func(SequencerState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Sequencer) State() SequencerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Start shows the first phase right away. Starting a running sequencer
// restarts it from the first phase.
func (s *Sequencer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.running = true
	s.index = 0
	s.scheduleLocked()
	s.emitLocked()
}

func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.running = false
	s.index = -1
	s.emitLocked()
}

// Close stops the sequencer without notifying anyone.
func (s *Sequencer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.running = false
	s.index = -1
	s.listeners = nil
}

func (s *Sequencer) advance(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || gen != s.gen {
		return
	}
	s.index = (s.index + 1) % len(s.pattern.Phases)
	s.scheduleLocked()
	s.emitLocked()
}

func (s *Sequencer) scheduleLocked() {
	gen := s.gen
	d := s.pattern.Phases[s.index].Duration()
	s.timer = s.clock.AfterFunc(d, func() { s.advance(gen) })
}

// cancelLocked stops the pending advance and invalidates any callback
// that already fired but has not taken the lock yet.
func (s *Sequencer) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

func (s *Sequencer) stateLocked() SequencerState {
	st := SequencerState{Pattern: s.pattern.Key, Running: s.running, Index: s.index, Label: IdleLabel}
	if s.running && s.index >= 0 {
		p := s.pattern.Phases[s.index]
		st.Label = p.Name
		st.Seconds = p.Seconds
	}
	return st
}

func (s *Sequencer) emitLocked() {
	st := s.stateLocked()
	for _, fn := range s.listeners {
		fn(st)
	}
}
