package navigation

import (
	"errors"
	"fmt"
	"sync"
)

type Screen string

const (
	Login        Screen = "login"
	SignUp       Screen = "signup"
	Home         Screen = "home"
	BreatheEase  Screen = "breathe-ease"
	MoodCheck    Screen = "mood-check"
	HeartJournal Screen = "heart-journal"
	Chatbot      Screen = "chatbot"
	Profile      Screen = "profile"
	Crisis       Screen = "crisis"
)

var ErrUnknownScreen = errors.New("unknown screen")

// ErrNotAllowed is returned when a screen is not reachable in the current
// authentication state.
var ErrNotAllowed = errors.New("screen not available")

var publicScreens = map[Screen]bool{Login: true, SignUp: true}

var appScreens = map[Screen]bool{
	Home: true, BreatheEase: true, MoodCheck: true, HeartJournal: true,
	Chatbot: true, Profile: true, Crisis: true,
}

func Parse(s string) (Screen, error) {
	screen := Screen(s)
	if !publicScreens[screen] && !appScreens[screen] {
		return "", fmt.Errorf("%w: %q", ErrUnknownScreen, s)
	}
	return screen, nil
}

// Router holds the screen one client is on.
type Router struct {
	mu            sync.Mutex
	current       Screen
	authenticated bool
	listeners     []func(Screen)
}

func NewRouter() *Router {
	return &Router{current: Login}
}

func (r *Router) OnChange(fn func(Screen)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

func (r *Router) Current() Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Router) Navigate(to Screen) error {
	r.mu.Lock()
	if !publicScreens[to] && !appScreens[to] {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownScreen, to)
	}
	if r.authenticated != appScreens[to] {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotAllowed, to)
	}
	r.mu.Unlock()

	r.move(to)
	return nil
}

// SetAuthenticated applies an identity change: signing in lands on Home,
// signing out lands on Login unless the client is on SignUp.
func (r *Router) SetAuthenticated(authenticated bool) {
	r.mu.Lock()
	if r.authenticated == authenticated {
		r.mu.Unlock()
		return
	}
	r.authenticated = authenticated
	current := r.current
	r.mu.Unlock()

	switch {
	case authenticated:
		r.move(Home)
	case current != SignUp:
		r.move(Login)
	}
}

func (r *Router) move(to Screen) {
	r.mu.Lock()
	if r.current == to {
		r.mu.Unlock()
		return
	}
	r.current = to
	listeners := append([]func(Screen){}, r.listeners...)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(to)
	}
}
