package conversation_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/mind-connect/internal/adapters/storage/memory"
	"github.com/PabloGalante/mind-connect/internal/app/conversation"
	"github.com/PabloGalante/mind-connect/internal/domain"
)

type recordingLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	block   chan struct{}
	prompts []string
	ctxs    []domain.ConversationContext
}

func (r *recordingLLM) GenerateReply(_ context.Context, prompt string, convCtx domain.ConversationContext) (string, error) {
	r.mu.Lock()
	r.prompts = append(r.prompts, prompt)
	r.ctxs = append(r.ctxs, convCtx)
	block := r.block
	r.mu.Unlock()

	if block != nil {
		<-block
	}
	return r.reply, r.err
}

func (r *recordingLLM) calls() []domain.ConversationContext {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ConversationContext{}, r.ctxs...)
}

// flakyMessages fails batch deletes on demand.
type flakyMessages struct {
	*memory.MessageStore
	failDelete bool
}

func (f *flakyMessages) DeleteMessagesBySession(ctx context.Context, userID domain.UserID, sessionID domain.SessionID) error {
	if f.failDelete {
		return errors.New("batch commit failed")
	}
	return f.MessageStore.DeleteMessagesBySession(ctx, userID, sessionID)
}

type fixture struct {
	svc      *conversation.Service
	llm      *recordingLLM
	sessions *memory.SessionStore
	messages *flakyMessages
}

func newFixture(t *testing.T) *fixture {
	feed := memory.NewChangeFeed()
	t.Cleanup(func() { _ = feed.Close() })

	f := &fixture{
		llm:      &recordingLLM{reply: "I'm here for you."},
		sessions: memory.NewSessionStore(feed),
		messages: &flakyMessages{MessageStore: memory.NewMessageStore(feed)},
	}
	f.svc = conversation.NewService(f.llm, f.sessions, f.messages)
	return f
}

func (f *fixture) manager(t *testing.T, userID domain.UserID) *conversation.Manager {
	m, err := conversation.NewManager(context.Background(), f.svc, userID)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

const wait = time.Second

func TestManagerStartsWithGreeting(t *testing.T) {
	f := newFixture(t)
	m := f.manager(t, "u1")

	v := m.View()
	assert.Empty(t, v.ActiveSessionID)
	require.Len(t, v.Messages, 1)
	assert.Equal(t, conversation.Greeting, v.Messages[0].Text)
	assert.False(t, v.CanSend)

	m.SetInput("hi")
	assert.True(t, m.View().CanSend)
}

func TestSendFromNoActiveSessionCreatesOneSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.manager(t, "u1")

	require.NoError(t, m.Send(ctx, "I can't sleep before exams"))

	sessions, err := f.sessions.ListSessionsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "I can't sleep before exams", sessions[0].Title)

	msgs, err := f.messages.GetMessagesBySession(ctx, "u1", sessions[0].ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleUser, msgs[0].Author)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Author)
	assert.Equal(t, "I'm here for you.", msgs[1].Text)

	require.Eventually(t, func() bool {
		v := m.View()
		return v.ActiveSessionID == sessions[0].ID && len(v.Messages) == 2 && len(v.Sessions) == 1
	}, wait, time.Millisecond)
	assert.False(t, m.View().Pending)

	calls := f.llm.calls()
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].History, "the first turn has no prior history")
	assert.Equal(t, domain.PurposeCompanion, calls[0].Purpose)
}

func TestSecondSendAppendsWithHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.manager(t, "u1")

	require.NoError(t, m.Send(ctx, "first"))
	require.NoError(t, m.Send(ctx, "second"))

	sessions, _ := f.sessions.ListSessionsByUser(ctx, "u1")
	require.Len(t, sessions, 1)

	msgs, _ := f.messages.GetMessagesBySession(ctx, "u1", sessions[0].ID)
	require.Len(t, msgs, 4)

	calls := f.llm.calls()
	require.Len(t, calls, 2)
	history := calls[1].History
	require.Len(t, history, 2)
	assert.Equal(t, "first", history[0].Text)
	assert.Equal(t, domain.RoleUser, history[0].Author)
	assert.Equal(t, domain.RoleAssistant, history[1].Author)
	for _, h := range history {
		assert.NotEqual(t, conversation.GreetingID, h.ID)
	}
}

func TestLongFirstMessageTitle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.manager(t, "u1")

	text := strings.Repeat("x", 50)
	require.NoError(t, m.Send(ctx, text))

	sessions, _ := f.sessions.ListSessionsByUser(ctx, "u1")
	require.Len(t, sessions, 1)
	assert.Equal(t, strings.Repeat("x", 35)+"…", sessions[0].Title)
}

func TestFailedModelCallStoresOneFallback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.llm.err = errors.New("503 from upstream")
	m := f.manager(t, "u1")

	require.NoError(t, m.Send(ctx, "hello?"))
	assert.False(t, m.View().Pending)

	sessions, _ := f.sessions.ListSessionsByUser(ctx, "u1")
	msgs, _ := f.messages.GetMessagesBySession(ctx, "u1", sessions[0].ID)
	require.Len(t, msgs, 2)
	assert.Equal(t, conversation.FallbackReply, msgs[1].Text)
}

func TestSendRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	anon := f.manager(t, "")
	assert.ErrorIs(t, anon.Send(ctx, "hi"), domain.ErrUnauthenticated)

	m := f.manager(t, "u1")
	assert.ErrorIs(t, m.Send(ctx, "   "), domain.ErrEmptyMessage)

	f.llm.block = make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- m.Send(ctx, "first") }()

	require.Eventually(t, func() bool { return len(f.llm.calls()) == 1 }, wait, time.Millisecond)
	assert.True(t, m.View().Pending)
	assert.ErrorIs(t, m.Send(ctx, "second"), domain.ErrRequestPending)

	close(f.llm.block)
	require.NoError(t, <-done)
	assert.False(t, m.View().Pending)

	sessions, _ := f.sessions.ListSessionsByUser(ctx, "u1")
	require.Len(t, sessions, 1)
	msgs, _ := f.messages.GetMessagesBySession(ctx, "u1", sessions[0].ID)
	assert.Len(t, msgs, 2)
}

func TestReplyIsStoredAfterClose(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.llm.block = make(chan struct{})

	m, err := conversation.NewManager(ctx, f.svc, "u1")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- m.Send(ctx, "are you there") }()
	require.Eventually(t, func() bool { return len(f.llm.calls()) == 1 }, wait, time.Millisecond)

	m.Close()
	close(f.llm.block)
	require.NoError(t, <-done)

	sessions, _ := f.sessions.ListSessionsByUser(ctx, "u1")
	msgs, _ := f.messages.GetMessagesBySession(ctx, "u1", sessions[0].ID)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Author)
}

func TestDeleteActiveSessionRevertsToGreeting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.manager(t, "u1")

	require.NoError(t, m.Send(ctx, "something heavy"))
	id := m.View().ActiveSessionID
	require.NotEmpty(t, id)

	m.RequestDelete(id)
	assert.Equal(t, id, m.View().DeleteTarget)

	require.NoError(t, m.ConfirmDelete(ctx))

	v := m.View()
	assert.Empty(t, v.ActiveSessionID)
	assert.Empty(t, v.DeleteTarget)
	require.Len(t, v.Messages, 1)
	assert.Equal(t, conversation.Greeting, v.Messages[0].Text)

	msgs, _ := f.messages.GetMessagesBySession(ctx, "u1", id)
	assert.Empty(t, msgs)
	_, err := f.sessions.GetSession(ctx, "u1", id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteKeepsSessionWhenMessageCleanupFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.manager(t, "u1")

	require.NoError(t, m.Send(ctx, "keep me"))
	id := m.View().ActiveSessionID

	f.messages.failDelete = true
	m.RequestDelete(id)
	assert.Error(t, m.ConfirmDelete(ctx))

	v := m.View()
	assert.Empty(t, v.DeleteTarget, "prompt closes regardless")
	assert.Equal(t, id, v.ActiveSessionID)

	_, err := f.sessions.GetSession(ctx, "u1", id)
	assert.NoError(t, err)
	msgs, _ := f.messages.GetMessagesBySession(ctx, "u1", id)
	assert.Len(t, msgs, 2)
}

func TestCancelDeleteHasNoEffect(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.manager(t, "u1")

	require.NoError(t, m.Send(ctx, "stay"))
	id := m.View().ActiveSessionID

	m.RequestDelete(id)
	m.CancelDelete()
	assert.Empty(t, m.View().DeleteTarget)

	_, err := f.sessions.GetSession(ctx, "u1", id)
	assert.NoError(t, err)
}

func TestNewChatAndOpen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.manager(t, "u1")

	require.NoError(t, m.Send(ctx, "first thread"))
	first := m.View().ActiveSessionID

	m.SetInput("draft")
	m.NewChat()
	v := m.View()
	assert.Empty(t, v.ActiveSessionID)
	assert.Empty(t, v.Input)

	require.NoError(t, m.Send(ctx, "second thread"))
	second := m.View().ActiveSessionID
	assert.NotEqual(t, first, second)

	require.NoError(t, m.Open(ctx, first))
	require.Eventually(t, func() bool {
		v := m.View()
		return v.ActiveSessionID == first && len(v.Messages) == 2 && v.Messages[0].Text == "first thread"
	}, wait, time.Millisecond)

	require.Eventually(t, func() bool {
		v := m.View()
		return len(v.Sessions) == 2 && v.Sessions[0].ID == second
	}, wait, time.Millisecond)
}

func TestOpenUnknownSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.manager(t, "u1")

	require.ErrorIs(t, m.Open(ctx, "no-such-session"), domain.ErrNotFound)
	v := m.View()
	assert.Empty(t, v.ActiveSessionID)
	require.Len(t, v.Messages, 1)
	assert.Equal(t, conversation.GreetingID, v.Messages[0].ID)

	// Another user's session is just as unknown.
	other := f.manager(t, "u2")
	require.NoError(t, other.Send(ctx, "mine"))
	foreign := other.View().ActiveSessionID
	require.ErrorIs(t, m.Open(ctx, foreign), domain.ErrNotFound)

	m.SetInput("hello")
	require.NoError(t, m.Send(ctx, "hello"))
	sessions, err := f.sessions.ListSessionsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.NotEqual(t, foreign, sessions[0].ID)
}

func TestActiveSessionDeletedElsewhere(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.manager(t, "u1")

	require.NoError(t, m.Send(ctx, "first thread"))
	id := m.View().ActiveSessionID
	require.Eventually(t, func() bool { return len(m.View().Sessions) == 1 }, wait, time.Millisecond)

	// Another client removes the open session.
	require.NoError(t, f.svc.DeleteSession(ctx, "u1", id))

	require.Eventually(t, func() bool {
		v := m.View()
		return v.ActiveSessionID == "" && len(v.Sessions) == 0 &&
			len(v.Messages) == 1 && v.Messages[0].ID == conversation.GreetingID
	}, wait, time.Millisecond)

	require.NoError(t, m.Send(ctx, "starting over"))
	sessions, err := f.sessions.ListSessionsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.NotEqual(t, id, sessions[0].ID)

	orphans, err := f.messages.GetMessagesBySession(ctx, "u1", id)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestAppendToMissingSessionStoresNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.AppendUserMessage(ctx, "u1", "gone", "hello?")
	require.ErrorIs(t, err, domain.ErrNotFound)

	msgs, err := f.messages.GetMessagesBySession(ctx, "u1", "gone")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestServiceSendMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	out, err := f.svc.SendMessage(ctx, conversation.SendMessageInput{UserID: "u1", Text: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Session.ID)
	assert.Equal(t, "I'm here for you.", out.AgentMessage.Text)

	again, err := f.svc.SendMessage(ctx, conversation.SendMessageInput{UserID: "u1", SessionID: out.Session.ID, Text: "again"})
	require.NoError(t, err)
	assert.Equal(t, out.Session.ID, again.Session.ID)

	_, err = f.svc.SendMessage(ctx, conversation.SendMessageInput{UserID: "u1", SessionID: "missing", Text: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.SendMessage(ctx, conversation.SendMessageInput{UserID: "u1", Text: ""})
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)

	session, msgs, err := f.svc.GetSessionTimeline(ctx, "u1", out.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", session.Title)
	assert.Len(t, msgs, 4)

	require.NoError(t, f.svc.DeleteSession(ctx, "u1", out.Session.ID))
	_, _, err = f.svc.GetSessionTimeline(ctx, "u1", out.Session.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
