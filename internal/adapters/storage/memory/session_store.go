package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/mind-connect/internal/domain"
)

type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*domain.Session
	order    []domain.SessionID
	feed     *ChangeFeed
	now      func() time.Time
}

func NewSessionStore(feed *ChangeFeed) *SessionStore {
	return &SessionStore{
		sessions: make(map[domain.SessionID]*domain.Session),
		feed:     feed,
		now:      time.Now,
	}
}

func (s *SessionStore) CreateSession(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	if session.ID == "" {
		session.ID = domain.SessionID(uuid.NewString())
	}
	if _, exists := s.sessions[session.ID]; exists {
		s.mu.Unlock()
		return errors.New("session already exists")
	}
	session.CreatedAt = s.now()
	stored := *session
	s.sessions[session.ID] = &stored
	s.order = append(s.order, session.ID)
	s.mu.Unlock()

	s.feed.notify(topic("users", string(session.UserID), "chats"))
	return nil
}

func (s *SessionStore) GetSession(_ context.Context, userID domain.UserID, id domain.SessionID) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok || sess.UserID != userID {
		return nil, domain.ErrNotFound
	}
	c := *sess
	return &c, nil
}

func (s *SessionStore) ListSessionsByUser(_ context.Context, userID domain.UserID) ([]*domain.Session, error) {
	return s.snapshot(userID), nil
}

func (s *SessionStore) WatchSessions(ctx context.Context, userID domain.UserID) (<-chan []*domain.Session, error) {
	return watch(ctx, s.feed, topic("users", string(userID), "chats"), func() []*domain.Session {
		return s.snapshot(userID)
	})
}

func (s *SessionStore) DeleteSession(_ context.Context, userID domain.UserID, id domain.SessionID) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok || sess.UserID != userID {
		s.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(s.sessions, id)
	for i, sid := range s.order {
		if sid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.feed.notify(topic("users", string(userID), "chats"))
	return nil
}

// snapshot lists a user's sessions, newest first.
func (s *SessionStore) snapshot(userID domain.UserID) []*domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Session
	for i := len(s.order) - 1; i >= 0; i-- {
		sess := s.sessions[s.order[i]]
		if sess.UserID == userID {
			c := *sess
			result = append(result, &c)
		}
	}
	return result
}
