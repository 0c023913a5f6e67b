package mood

import (
	"context"
	"fmt"
	"time"

	"github.com/PabloGalante/mind-connect/internal/app/calendar"
	"github.com/PabloGalante/mind-connect/internal/domain"
	"github.com/PabloGalante/mind-connect/internal/observability"
)

// Service holds the logic of writing and reading mood logs
type Service struct {
	store domain.MoodLogStore
}

func NewService(store domain.MoodLogStore) *Service {
	return &Service{store: store}
}

// SubmitMoodLog labels value and stores a new immutable log.
func (s *Service) SubmitMoodLog(
	ctx context.Context,
	userID domain.UserID,
	value int,
	answers map[string]string,
) (*domain.MoodLog, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if !domain.ValidMoodValue(value) {
		return nil, fmt.Errorf("%w: got %d", domain.ErrMoodOutOfRange, value)
	}

	log := observability.LoggerFromContext(ctx).With("user_id", userID)

	stored := make(map[string]string, len(answers))
	for q, a := range answers {
		stored[q] = a
	}

	entry := &domain.MoodLog{
		UserID:  userID,
		Label:   domain.LabelFor(value),
		Value:   value,
		Answers: stored,
	}
	if err := s.store.AppendMoodLog(ctx, entry); err != nil {
		log.Errorw("failed to save mood log", "error", err)
		return nil, err
	}

	log.Infow("mood log saved", "mood_log_id", entry.ID, "mood", entry.Label)
	return entry, nil
}

func (s *Service) List(ctx context.Context, userID domain.UserID) ([]*domain.MoodLog, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.store.ListMoodLogs(ctx, userID)
}

// Watch streams the user's logs, newest first, until ctx is done.
func (s *Service) Watch(ctx context.Context, userID domain.UserID) (<-chan []*domain.MoodLog, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.store.WatchMoodLogs(ctx, userID)
}

// Month lays out the month containing anchor with the user's logs.
func (s *Service) Month(
	ctx context.Context,
	userID domain.UserID,
	anchor time.Time,
	loc *time.Location,
) (calendar.Month[*domain.MoodLog], error) {
	logs, err := s.List(ctx, userID)
	if err != nil {
		return calendar.Month[*domain.MoodLog]{}, err
	}
	return calendar.Build(anchor, loc, logs, CreatedAt), nil
}

func CreatedAt(l *domain.MoodLog) time.Time {
	return l.CreatedAt
}
