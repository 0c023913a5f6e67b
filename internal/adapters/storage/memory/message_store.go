package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/mind-connect/internal/domain"
)

type messageKey struct {
	userID    domain.UserID
	sessionID domain.SessionID
}

type MessageStore struct {
	mu       sync.RWMutex
	messages map[messageKey][]*domain.Message
	feed     *ChangeFeed
	now      func() time.Time
}

func NewMessageStore(feed *ChangeFeed) *MessageStore {
	return &MessageStore{
		messages: make(map[messageKey][]*domain.Message),
		feed:     feed,
		now:      time.Now,
	}
}

func (s *MessageStore) AppendMessage(_ context.Context, userID domain.UserID, msg *domain.Message) error {
	s.mu.Lock()
	if msg.ID == "" {
		msg.ID = domain.MessageID(uuid.NewString())
	}
	msg.CreatedAt = s.now()
	stored := *msg
	key := messageKey{userID, msg.SessionID}
	s.messages[key] = append(s.messages[key], &stored)
	s.mu.Unlock()

	s.feed.notify(messagesTopic(userID, msg.SessionID))
	return nil
}

func (s *MessageStore) GetMessagesBySession(_ context.Context, userID domain.UserID, sessionID domain.SessionID) ([]*domain.Message, error) {
	return s.snapshot(userID, sessionID), nil
}

func (s *MessageStore) WatchMessages(ctx context.Context, userID domain.UserID, sessionID domain.SessionID) (<-chan []*domain.Message, error) {
	return watch(ctx, s.feed, messagesTopic(userID, sessionID), func() []*domain.Message {
		return s.snapshot(userID, sessionID)
	})
}

func (s *MessageStore) DeleteMessagesBySession(_ context.Context, userID domain.UserID, sessionID domain.SessionID) error {
	s.mu.Lock()
	delete(s.messages, messageKey{userID, sessionID})
	s.mu.Unlock()

	s.feed.notify(messagesTopic(userID, sessionID))
	return nil
}

func (s *MessageStore) snapshot(userID domain.UserID, sessionID domain.SessionID) []*domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[messageKey{userID, sessionID}]
	out := make([]*domain.Message, 0, len(msgs))
	for _, m := range msgs {
		c := *m
		out = append(out, &c)
	}
	return out
}

func messagesTopic(userID domain.UserID, sessionID domain.SessionID) string {
	return topic("users", string(userID), "chats", string(sessionID), "messages")
}
