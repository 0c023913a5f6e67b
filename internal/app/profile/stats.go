package profile

import (
	"context"

	"github.com/PabloGalante/mind-connect/internal/domain"
)

type Stats struct {
	MoodsChecked    int `json:"moods_checked"`
	JournalsWritten int `json:"journals_written"`
}

// Service counts what a user has recorded.
type Service struct {
	moods   domain.MoodLogStore
	journal domain.JournalStore
}

func NewService(moods domain.MoodLogStore, journal domain.JournalStore) *Service {
	return &Service{moods: moods, journal: journal}
}

func (s *Service) Stats(ctx context.Context, userID domain.UserID) (Stats, error) {
	if userID == "" {
		return Stats{}, domain.ErrUnauthenticated
	}

	logs, err := s.moods.ListMoodLogs(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	entries, err := s.journal.ListJournalEntries(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	return Stats{MoodsChecked: len(logs), JournalsWritten: len(entries)}, nil
}

// Watch emits fresh counts whenever either collection changes. The first
// value arrives once both collections have reported.
func (s *Service) Watch(ctx context.Context, userID domain.UserID) (<-chan Stats, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	ctx, cancel := context.WithCancel(ctx)
	moods, err := s.moods.WatchMoodLogs(ctx, userID)
	if err != nil {
		cancel()
		return nil, err
	}
	entries, err := s.journal.WatchJournalEntries(ctx, userID)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan Stats, 1)
	go func() {
		defer close(out)
		defer cancel()

		var st Stats
		var haveMoods, haveEntries bool
		for moods != nil || entries != nil {
			select {
			case logs, ok := <-moods:
				if !ok {
					moods = nil
					continue
				}
				st.MoodsChecked, haveMoods = len(logs), true
			case list, ok := <-entries:
				if !ok {
					entries = nil
					continue
				}
				st.JournalsWritten, haveEntries = len(list), true
			case <-ctx.Done():
				return
			}
			if !haveMoods || !haveEntries {
				continue
			}
			select {
			case out <- st:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
