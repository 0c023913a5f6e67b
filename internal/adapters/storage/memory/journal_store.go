package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/mind-connect/internal/domain"
)

// JournalStore is a simple in-memory implementation of domain.JournalStore.
// It is NOT persistent and is only suitable for development / local mode.
type JournalStore struct {
	mu      sync.RWMutex
	entries map[domain.JournalEntryID]*domain.JournalEntry
	byUser  map[domain.UserID][]domain.JournalEntryID
	feed    *ChangeFeed
	now     func() time.Time
}

// NewJournalStore creates a new in-memory JournalStore.
func NewJournalStore(feed *ChangeFeed) *JournalStore {
	return &JournalStore{
		entries: make(map[domain.JournalEntryID]*domain.JournalEntry),
		byUser:  make(map[domain.UserID][]domain.JournalEntryID),
		feed:    feed,
		now:     time.Now,
	}
}

// AppendJournalEntry saves a new journal entry and stamps its creation time.
func (s *JournalStore) AppendJournalEntry(_ context.Context, entry *domain.JournalEntry) error {
	s.mu.Lock()
	if entry.ID == "" {
		entry.ID = domain.JournalEntryID(uuid.NewString())
	}
	entry.CreatedAt = s.now()
	stored := *entry
	s.entries[entry.ID] = &stored
	s.byUser[entry.UserID] = append(s.byUser[entry.UserID], entry.ID)
	s.mu.Unlock()

	s.feed.notify(topic("users", string(entry.UserID), "journal_entries"))
	return nil
}

// ListJournalEntries returns every entry of a user, newest first.
func (s *JournalStore) ListJournalEntries(_ context.Context, userID domain.UserID) ([]*domain.JournalEntry, error) {
	return s.snapshot(userID), nil
}

func (s *JournalStore) WatchJournalEntries(ctx context.Context, userID domain.UserID) (<-chan []*domain.JournalEntry, error) {
	return watch(ctx, s.feed, topic("users", string(userID), "journal_entries"), func() []*domain.JournalEntry {
		return s.snapshot(userID)
	})
}

func (s *JournalStore) snapshot(userID domain.UserID) []*domain.JournalEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUser[userID]
	out := make([]*domain.JournalEntry, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		if e, ok := s.entries[ids[i]]; ok {
			c := *e
			out = append(out, &c)
		}
	}
	return out
}
