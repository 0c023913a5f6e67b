package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/mind-connect/internal/domain"
)

// MoodLogStore is an in-memory domain.MoodLogStore. Logs are kept in
// insertion order per user and returned newest first.
type MoodLogStore struct {
	mu     sync.RWMutex
	byUser map[domain.UserID][]*domain.MoodLog
	feed   *ChangeFeed
	now    func() time.Time
}

func NewMoodLogStore(feed *ChangeFeed) *MoodLogStore {
	return &MoodLogStore{
		byUser: make(map[domain.UserID][]*domain.MoodLog),
		feed:   feed,
		now:    time.Now,
	}
}

func (s *MoodLogStore) AppendMoodLog(_ context.Context, log *domain.MoodLog) error {
	s.mu.Lock()
	if log.ID == "" {
		log.ID = domain.MoodLogID(uuid.NewString())
	}
	log.CreatedAt = s.now()
	stored := *log
	s.byUser[log.UserID] = append(s.byUser[log.UserID], &stored)
	s.mu.Unlock()

	s.feed.notify(topic("users", string(log.UserID), "mood_logs"))
	return nil
}

func (s *MoodLogStore) ListMoodLogs(_ context.Context, userID domain.UserID) ([]*domain.MoodLog, error) {
	return s.snapshot(userID), nil
}

func (s *MoodLogStore) WatchMoodLogs(ctx context.Context, userID domain.UserID) (<-chan []*domain.MoodLog, error) {
	return watch(ctx, s.feed, topic("users", string(userID), "mood_logs"), func() []*domain.MoodLog {
		return s.snapshot(userID)
	})
}

func (s *MoodLogStore) snapshot(userID domain.UserID) []*domain.MoodLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logs := s.byUser[userID]
	out := make([]*domain.MoodLog, 0, len(logs))
	for i := len(logs) - 1; i >= 0; i-- {
		l := *logs[i]
		out = append(out, &l)
	}
	return out
}
