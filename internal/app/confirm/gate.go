package confirm

import (
	"context"
	"errors"
	"sync"
)

var ErrNotArmed = errors.New("nothing to confirm")

// Gate guards a destructive action behind an explicit confirmation.
type Gate[T any] struct {
	mu       sync.Mutex
	armed    bool
	target   T
	action   func(context.Context, T) error
	gen      uint64
	onChange func(target T, armed bool)
}

func NewGate[T any]() *Gate[T] {
	return &Gate[T]{}
}

// OnChange sets the listener called whenever the armed target changes.
func (g *Gate[T]) OnChange(fn func(target T, armed bool)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onChange = fn
}

// Arm binds target and action. Arming again replaces both.
func (g *Gate[T]) Arm(target T, action func(context.Context, T) error) {
	g.mu.Lock()
	g.armed = true
	g.target = target
	g.action = action
	g.gen++
	fn := g.onChange
	g.mu.Unlock()

	if fn != nil {
		fn(target, true)
	}
}

func (g *Gate[T]) Armed() (T, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.target, g.armed
}

// Confirm runs the action bound at arm time and then disarms, whatever the
// action returned. A target armed while the action was running stays armed.
func (g *Gate[T]) Confirm(ctx context.Context) error {
	g.mu.Lock()
	if !g.armed {
		g.mu.Unlock()
		return ErrNotArmed
	}
	target, action, gen := g.target, g.action, g.gen
	g.mu.Unlock()

	err := action(ctx, target)
	g.disarm(gen)
	return err
}

func (g *Gate[T]) Cancel() {
	g.mu.Lock()
	gen := g.gen
	g.mu.Unlock()
	g.disarm(gen)
}

func (g *Gate[T]) disarm(gen uint64) {
	g.mu.Lock()
	if !g.armed || gen != g.gen {
		g.mu.Unlock()
		return
	}
	target := g.target
	var zero T
	g.armed = false
	g.target = zero
	g.action = nil
	fn := g.onChange
	g.mu.Unlock()

	if fn != nil {
		fn(target, false)
	}
}
