package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/mind-connect/internal/adapters/storage/memory"
	"github.com/PabloGalante/mind-connect/internal/domain"
)

func TestSessionStoreListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	feed := memory.NewChangeFeed()
	defer feed.Close()
	store := memory.NewSessionStore(feed)

	first := &domain.Session{UserID: "u1", Title: "first"}
	second := &domain.Session{UserID: "u1", Title: "second"}
	other := &domain.Session{UserID: "u2", Title: "not mine"}
	require.NoError(t, store.CreateSession(ctx, first))
	require.NoError(t, store.CreateSession(ctx, second))
	require.NoError(t, store.CreateSession(ctx, other))
	assert.NotEmpty(t, first.ID)

	list, err := store.ListSessionsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Title)
	assert.Equal(t, "first", list[1].Title)

	_, err = store.GetSession(ctx, "u2", first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.DeleteSession(ctx, "u1", first.ID))
	assert.ErrorIs(t, store.DeleteSession(ctx, "u1", first.ID), domain.ErrNotFound)
}

func TestMessageStoreWatchDeliversFreshSnapshots(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := memory.NewChangeFeed()
	defer feed.Close()
	store := memory.NewMessageStore(feed)

	updates, err := store.WatchMessages(ctx, "u1", "s1")
	require.NoError(t, err)

	initial := <-updates
	assert.Empty(t, initial)

	require.NoError(t, store.AppendMessage(ctx, "u1", &domain.Message{SessionID: "s1", Author: domain.RoleUser, Text: "hi"}))
	require.NoError(t, store.AppendMessage(ctx, "u1", &domain.Message{SessionID: "s1", Author: domain.RoleAssistant, Text: "hello"}))

	require.Eventually(t, func() bool {
		select {
		case snap := <-updates:
			return len(snap) == 2 && snap[0].Text == "hi" && snap[1].Text == "hello"
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, store.DeleteMessagesBySession(ctx, "u1", "s1"))
	msgs, err := store.GetMessagesBySession(ctx, "u1", "s1")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestWatchClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	feed := memory.NewChangeFeed()
	defer feed.Close()
	store := memory.NewMoodLogStore(feed)

	updates, err := store.WatchMoodLogs(ctx, "u1")
	require.NoError(t, err)
	<-updates
	cancel()

	require.Eventually(t, func() bool {
		_, ok := <-updates
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestJournalAndMoodStoresNewestFirst(t *testing.T) {
	ctx := context.Background()
	feed := memory.NewChangeFeed()
	defer feed.Close()

	journal := memory.NewJournalStore(feed)
	require.NoError(t, journal.AppendJournalEntry(ctx, &domain.JournalEntry{UserID: "u1", Text: "one"}))
	require.NoError(t, journal.AppendJournalEntry(ctx, &domain.JournalEntry{UserID: "u1", Text: "two"}))
	entries, err := journal.ListJournalEntries(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "two", entries[0].Text)

	moods := memory.NewMoodLogStore(feed)
	log := &domain.MoodLog{UserID: "u1", Label: domain.MoodGood, Value: 70}
	require.NoError(t, moods.AppendMoodLog(ctx, log))
	assert.NotEmpty(t, log.ID)
	assert.False(t, log.CreatedAt.IsZero())
}

func TestCredentialStoreRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCredentialStore()

	require.NoError(t, store.CreateCredential(ctx, &domain.Credential{UserID: "u1", Email: "Ana@Example.com"}))
	err := store.CreateCredential(ctx, &domain.Credential{UserID: "u2", Email: "ana@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailInUse)

	cred, err := store.GetCredentialByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("u1"), cred.UserID)

	profiles := memory.NewProfileStore()
	_, err = profiles.GetProfile(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
