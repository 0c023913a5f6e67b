package identity

import (
	"context"
	"sync"

	"github.com/PabloGalante/mind-connect/internal/domain"
	"github.com/PabloGalante/mind-connect/internal/observability"
)

// Gate tracks whether one client is authenticated. Listeners run after every
// change, outside the lock, with the new session (nil when signed out).
type Gate struct {
	dir *Directory

	mu        sync.Mutex
	current   *domain.AuthSession
	listeners []func(*domain.AuthSession)
}

func NewGate(dir *Directory) *Gate {
	return &Gate{dir: dir}
}

func (g *Gate) OnChange(fn func(*domain.AuthSession)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

// Current returns the signed-in session, or nil.
func (g *Gate) Current() *domain.AuthSession {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

func (g *Gate) SignIn(ctx context.Context, email, password string) error {
	session, err := g.dir.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	g.set(session)
	return nil
}

// SignUp creates the account and signs in with it.
func (g *Gate) SignUp(ctx context.Context, in SignUpInput) error {
	if _, err := g.dir.SignUp(ctx, in); err != nil {
		return err
	}
	return g.SignIn(ctx, in.Email, in.Password)
}

// Resume restores a session from a previously issued token.
func (g *Gate) Resume(ctx context.Context, token string) error {
	session, err := g.dir.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	g.set(session)
	return nil
}

func (g *Gate) SignOut() {
	g.set(nil)
}

func (g *Gate) set(session *domain.AuthSession) {
	g.mu.Lock()
	if g.current == nil && session == nil {
		g.mu.Unlock()
		return
	}
	g.current = session
	listeners := append([]func(*domain.AuthSession){}, g.listeners...)
	g.mu.Unlock()

	if session != nil {
		observability.Logger().Infow("client authenticated", "user_id", session.UserID)
	}
	for _, fn := range listeners {
		fn(session)
	}
}
