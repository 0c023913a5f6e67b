package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/PabloGalante/mind-connect/internal/app/confirm"
	"github.com/PabloGalante/mind-connect/internal/domain"
	"github.com/PabloGalante/mind-connect/internal/observability"
)

// View is everything a chat screen renders.
type View struct {
	ActiveSessionID domain.SessionID  `json:"active_session_id,omitempty"`
	Sessions        []*domain.Session `json:"sessions"`
	Messages        []*domain.Message `json:"messages"`
	Input           string            `json:"input"`
	Pending         bool              `json:"pending"`
	CanSend         bool              `json:"can_send"`
	DeleteTarget    domain.SessionID  `json:"delete_target,omitempty"`
}

// Manager is the chat state machine of one signed-in client. With no active
// session it shows the greeting; with one it shows that session's stored
// messages. Sessions and messages come from store subscriptions.
type Manager struct {
	svc     *Service
	userID  domain.UserID
	deletes *confirm.Gate[domain.SessionID]

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	active domain.SessionID
	// listed is set once the active session has shown up in a sessions
	// snapshot; only then does its absence mean it was deleted.
	listed      bool
	sessions    []*domain.Session
	messages    []*domain.Message
	input       string
	pending     bool
	watchCancel context.CancelFunc
	listeners   []func(View)

	emitMu sync.Mutex
}

// NewManager subscribes to the user's sessions. Subscriptions end when ctx
// is done or Close is called.
func NewManager(ctx context.Context, svc *Service, userID domain.UserID) (*Manager, error) {
	ctx, cancel := context.WithCancel(ctx)
	m := &Manager{
		svc:     svc,
		userID:  userID,
		deletes: confirm.NewGate[domain.SessionID](),
		ctx:     ctx,
		cancel:  cancel,
	}
	m.deletes.OnChange(func(domain.SessionID, bool) { m.emit() })

	sessions, err := svc.WatchSessions(ctx, userID)
	if err != nil {
		cancel()
		return nil, err
	}
	go func() {
		for snap := range sessions {
			m.mu.Lock()
			m.sessions = snap
			if m.active != "" {
				switch {
				case containsSession(snap, m.active):
					m.listed = true
				case m.listed:
					m.leaveLocked()
				}
			}
			m.mu.Unlock()
			m.emit()
		}
	}()
	return m, nil
}

func (m *Manager) OnChange(fn func(View)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) View() View {
	m.mu.Lock()
	v := View{
		ActiveSessionID: m.active,
		Sessions:        m.sessions,
		Input:           m.input,
		Pending:         m.pending,
		CanSend:         !m.pending && m.userID != "" && strings.TrimSpace(m.input) != "",
	}
	if m.active == "" {
		v.Messages = []*domain.Message{GreetingMessage()}
	} else {
		v.Messages = m.messages
	}
	m.mu.Unlock()

	if target, armed := m.deletes.Armed(); armed {
		v.DeleteTarget = target
	}
	return v
}

func (m *Manager) SetInput(text string) {
	m.mu.Lock()
	m.input = text
	m.mu.Unlock()
	m.emit()
}

// NewChat goes back to the greeting and clears the input.
func (m *Manager) NewChat() {
	m.mu.Lock()
	m.leaveLocked()
	m.input = ""
	m.mu.Unlock()
	m.emit()
}

// Open makes id the active session. An id the user has no session under
// returns domain.ErrNotFound and leaves the state as it was.
func (m *Manager) Open(ctx context.Context, id domain.SessionID) error {
	if m.userID == "" {
		return domain.ErrUnauthenticated
	}
	if _, err := m.svc.sessionStore.GetSession(ctx, m.userID, id); err != nil {
		return err
	}

	m.mu.Lock()
	m.activateLocked(id)
	m.mu.Unlock()
	m.emit()
	return nil
}

// Send runs one chat turn and blocks until the reply is stored. Blank text,
// a turn already in flight and a missing user are rejected without side
// effects. Once accepted, the turn completes even if the manager is closed.
func (m *Manager) Send(ctx context.Context, text string) error {
	m.mu.Lock()
	switch {
	case m.userID == "":
		m.mu.Unlock()
		return domain.ErrUnauthenticated
	case strings.TrimSpace(text) == "":
		m.mu.Unlock()
		return domain.ErrEmptyMessage
	case m.pending:
		m.mu.Unlock()
		return domain.ErrRequestPending
	}
	m.pending = true
	m.input = ""
	sessionID := m.active
	m.mu.Unlock()
	m.emit()

	defer func() {
		m.mu.Lock()
		m.pending = false
		m.mu.Unlock()
		m.emit()
	}()

	ctx = context.WithoutCancel(ctx)
	log := observability.LoggerFromContext(ctx).With("user_id", m.userID)

	if sessionID == "" {
		session, err := m.svc.StartSession(ctx, StartSessionInput{UserID: m.userID, FirstMessage: text})
		if err != nil {
			return err
		}
		sessionID = session.ID

		m.mu.Lock()
		m.activateLocked(sessionID)
		m.mu.Unlock()
	}

	userMsg, err := m.svc.AppendUserMessage(ctx, m.userID, sessionID, text)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			m.mu.Lock()
			if m.active == sessionID {
				m.leaveLocked()
			}
			m.mu.Unlock()
		}
		return err
	}

	if _, err := m.svc.GenerateReply(ctx, m.userID, userMsg); err != nil {
		log.Errorw("chat turn incomplete", "session_id", sessionID, "error", err)
		return err
	}
	return nil
}

// RequestDelete asks for confirmation before deleting id.
func (m *Manager) RequestDelete(id domain.SessionID) {
	m.deletes.Arm(id, m.deleteSession)
}

// ConfirmDelete deletes the session awaiting confirmation. The prompt
// closes whether or not the deletion worked.
func (m *Manager) ConfirmDelete(ctx context.Context) error {
	return m.deletes.Confirm(ctx)
}

func (m *Manager) CancelDelete() {
	m.deletes.Cancel()
}

func (m *Manager) deleteSession(ctx context.Context, id domain.SessionID) error {
	if err := m.svc.DeleteSession(ctx, m.userID, id); err != nil {
		return err
	}

	m.mu.Lock()
	if m.active == id {
		m.leaveLocked()
	}
	m.mu.Unlock()
	m.emit()
	return nil
}

// Close ends every subscription. A turn in flight still stores its reply.
func (m *Manager) Close() {
	m.cancel()
	m.deletes.Cancel()
	m.mu.Lock()
	m.leaveLocked()
	m.listeners = nil
	m.mu.Unlock()
}

func (m *Manager) activateLocked(id domain.SessionID) {
	if m.active == id && m.watchCancel != nil {
		return
	}
	m.leaveLocked()
	m.active = id
	m.listed = containsSession(m.sessions, id)

	ctx, cancel := context.WithCancel(m.ctx)
	m.watchCancel = cancel

	updates, err := m.svc.WatchMessages(ctx, m.userID, id)
	if err != nil {
		observability.Logger().Errorw("failed to watch messages", "session_id", id, "error", err)
		return
	}
	go func() {
		for snap := range updates {
			m.mu.Lock()
			if m.active != id || ctx.Err() != nil {
				m.mu.Unlock()
				return
			}
			m.messages = snap
			m.mu.Unlock()
			m.emit()
		}
	}()
}

func (m *Manager) leaveLocked() {
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.active = ""
	m.listed = false
	m.messages = nil
}

func containsSession(sessions []*domain.Session, id domain.SessionID) bool {
	for _, s := range sessions {
		if s.ID == id {
			return true
		}
	}
	return false
}

// emit delivers views one at a time so listeners never see an older view
// after a newer one.
func (m *Manager) emit() {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	v := m.View()
	m.mu.Lock()
	listeners := append([]func(View){}, m.listeners...)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(v)
	}
}
