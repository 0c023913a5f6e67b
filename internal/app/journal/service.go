package journal

import (
	"context"
	"strings"
	"time"

	"github.com/PabloGalante/mind-connect/internal/app/calendar"
	"github.com/PabloGalante/mind-connect/internal/domain"
	"github.com/PabloGalante/mind-connect/internal/observability"
)

const (
	writingPromptRequest = "Give me a single, thoughtful journal prompt for self-reflection. Make it concise and open-ended."

	// PromptFallback replaces the editor content when no prompt could be fetched.
	PromptFallback = "I couldn't get a prompt right now. Feel free to write about anything on your mind."
)

// Service holds the logic of writing and reading journal entries
type Service struct {
	store domain.JournalStore
	llm   domain.LLMClient
}

// NewService creates a journal service from a JournalStore and the LLM used
// for writing prompts.
func NewService(store domain.JournalStore, llm domain.LLMClient) *Service {
	return &Service{
		store: store,
		llm:   llm,
	}
}

// SubmitEntry stores text as a new entry. Blank text is rejected.
func (s *Service) SubmitEntry(ctx context.Context, userID domain.UserID, text string) (*domain.JournalEntry, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyJournalEntry
	}

	log := observability.LoggerFromContext(ctx).With("user_id", userID)

	entry := &domain.JournalEntry{
		UserID: userID,
		Text:   text,
	}
	if err := s.store.AppendJournalEntry(ctx, entry); err != nil {
		log.Errorw("failed to save journal entry", "error", err)
		return nil, err
	}

	log.Infow("journal entry saved", "journal_entry_id", entry.ID)
	return entry, nil
}

// GetUserJournal returns every entry of a user, newest first.
func (s *Service) GetUserJournal(ctx context.Context, userID domain.UserID) ([]*domain.JournalEntry, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.store.ListJournalEntries(ctx, userID)
}

func (s *Service) Watch(ctx context.Context, userID domain.UserID) (<-chan []*domain.JournalEntry, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.store.WatchJournalEntries(ctx, userID)
}

func (s *Service) Month(
	ctx context.Context,
	userID domain.UserID,
	anchor time.Time,
	loc *time.Location,
) (calendar.Month[*domain.JournalEntry], error) {
	entries, err := s.GetUserJournal(ctx, userID)
	if err != nil {
		return calendar.Month[*domain.JournalEntry]{}, err
	}
	return calendar.Build(anchor, loc, entries, CreatedAt), nil
}

func CreatedAt(e *domain.JournalEntry) time.Time {
	return e.CreatedAt
}

// WritingPrompt asks the model for a self-reflection prompt, ready to be put
// in the editor: quotes removed, followed by a blank line. Any failure
// yields PromptFallback.
func (s *Service) WritingPrompt(ctx context.Context, userID domain.UserID) string {
	log := observability.LoggerFromContext(ctx).With("user_id", userID)

	text, err := s.llm.GenerateReply(ctx, writingPromptRequest, domain.ConversationContext{
		UserID:  userID,
		Purpose: domain.PurposeWritingPrompt,
	})
	if err != nil {
		log.Errorw("writing prompt request failed", "error", err)
		return PromptFallback
	}

	text = strings.TrimSpace(strings.ReplaceAll(text, `"`, ""))
	if text == "" {
		log.Warnw("writing prompt came back empty")
		return PromptFallback
	}
	return text + "\n\n"
}
