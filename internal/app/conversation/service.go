package conversation

import (
	"context"
	"errors"
	"strings"

	"github.com/PabloGalante/mind-connect/internal/domain"
	"github.com/PabloGalante/mind-connect/internal/observability"
)

const (
	// Greeting is shown, never stored, while no session is open.
	Greeting = "Hello! I'm Echo. Think of me as a friendly ear, here to listen without judgment. What's on your mind today?"

	// FallbackReply is stored as the assistant turn when the model call fails.
	FallbackReply = "I'm having a little trouble connecting right now. Please try again."

	GreetingID domain.MessageID = "initial"
)

// GreetingMessage is the synthetic opening message.
func GreetingMessage() *domain.Message {
	return &domain.Message{ID: GreetingID, Author: domain.RoleAssistant, Text: Greeting}
}

type Service struct {
	llm          domain.LLMClient
	sessionStore domain.SessionStore
	messageStore domain.MessageStore
}

func NewService(
	llm domain.LLMClient,
	sessionStore domain.SessionStore,
	messageStore domain.MessageStore,
) *Service {
	return &Service{
		llm:          llm,
		sessionStore: sessionStore,
		messageStore: messageStore,
	}
}

type StartSessionInput struct {
	UserID       domain.UserID
	FirstMessage string
}

// StartSession creates a session titled after its first message.
func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*domain.Session, error) {
	log := observability.LoggerFromContext(ctx).With("user_id", in.UserID)

	session := &domain.Session{
		UserID: in.UserID,
		Title:  domain.DeriveTitle(in.FirstMessage),
	}
	if err := s.sessionStore.CreateSession(ctx, session); err != nil {
		log.Errorw("failed to create session", "error", err)
		return nil, err
	}

	log.Infow("session started", "session_id", session.ID)
	return session, nil
}

// AppendUserMessage stores a user turn and returns once the store has
// acknowledged it. A session that no longer exists yields domain.ErrNotFound
// and nothing is stored.
func (s *Service) AppendUserMessage(
	ctx context.Context,
	userID domain.UserID,
	sessionID domain.SessionID,
	text string,
) (*domain.Message, error) {
	if _, err := s.sessionStore.GetSession(ctx, userID, sessionID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			observability.LoggerFromContext(ctx).Errorw("failed to get session",
				"user_id", userID, "session_id", sessionID, "error", err)
		}
		return nil, err
	}

	msg := &domain.Message{
		SessionID: sessionID,
		Author:    domain.RoleUser,
		Text:      text,
	}
	if err := s.messageStore.AppendMessage(ctx, userID, msg); err != nil {
		observability.LoggerFromContext(ctx).Errorw("failed to append user message",
			"user_id", userID, "session_id", sessionID, "error", err)
		return nil, err
	}
	return msg, nil
}

// GenerateReply asks the model to answer userMsg and stores the answer, or
// FallbackReply when the call fails. The history sent is every stored turn
// of the session before userMsg. The reply is written even if ctx is
// cancelled meanwhile.
func (s *Service) GenerateReply(
	ctx context.Context,
	userID domain.UserID,
	userMsg *domain.Message,
) (*domain.Message, error) {
	log := observability.LoggerFromContext(ctx).With(
		"user_id", userID,
		"session_id", userMsg.SessionID,
	)

	replyText := FallbackReply

	history, err := s.history(ctx, userID, userMsg)
	if err != nil {
		log.Errorw("failed to load history", "error", err)
	} else {
		text, err := s.llm.GenerateReply(ctx, userMsg.Text, domain.ConversationContext{
			SessionID: userMsg.SessionID,
			UserID:    userID,
			Purpose:   domain.PurposeCompanion,
			History:   history,
		})
		switch {
		case err != nil:
			log.Errorw("llm call failed", "error", err)
		case strings.TrimSpace(text) == "":
			log.Warnw("llm returned empty text")
		default:
			replyText = text
		}
	}

	reply := &domain.Message{
		SessionID: userMsg.SessionID,
		Author:    domain.RoleAssistant,
		Text:      replyText,
	}
	if err := s.messageStore.AppendMessage(context.WithoutCancel(ctx), userID, reply); err != nil {
		log.Errorw("failed to append assistant message", "error", err)
		return nil, err
	}
	return reply, nil
}

func (s *Service) history(ctx context.Context, userID domain.UserID, userMsg *domain.Message) ([]*domain.Message, error) {
	msgs, err := s.messageStore.GetMessagesBySession(ctx, userID, userMsg.SessionID)
	if err != nil {
		return nil, err
	}

	history := make([]*domain.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.ID == userMsg.ID || m.ID == GreetingID {
			continue
		}
		history = append(history, m)
	}
	return history, nil
}

type SendMessageInput struct {
	UserID    domain.UserID
	SessionID domain.SessionID // empty starts a new session
	Text      string
}

type SendMessageOutput struct {
	Session      *domain.Session
	UserMessage  *domain.Message
	AgentMessage *domain.Message
}

// SendMessage runs a whole chat turn in one call: resolve or create the
// session, store the user turn, then store the reply.
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	if in.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, domain.ErrEmptyMessage
	}

	var (
		session *domain.Session
		err     error
	)
	if in.SessionID == "" {
		session, err = s.StartSession(ctx, StartSessionInput{UserID: in.UserID, FirstMessage: in.Text})
	} else {
		session, err = s.sessionStore.GetSession(ctx, in.UserID, in.SessionID)
	}
	if err != nil {
		return nil, err
	}

	userMsg, err := s.AppendUserMessage(ctx, in.UserID, session.ID, in.Text)
	if err != nil {
		return nil, err
	}

	agentMsg, err := s.GenerateReply(ctx, in.UserID, userMsg)
	if err != nil {
		return nil, err
	}

	return &SendMessageOutput{
		Session:      session,
		UserMessage:  userMsg,
		AgentMessage: agentMsg,
	}, nil
}

func (s *Service) ListSessions(ctx context.Context, userID domain.UserID) ([]*domain.Session, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.sessionStore.ListSessionsByUser(ctx, userID)
}

func (s *Service) GetSessionTimeline(
	ctx context.Context,
	userID domain.UserID,
	sessionID domain.SessionID,
) (*domain.Session, []*domain.Message, error) {
	log := observability.LoggerFromContext(ctx).With("session_id", sessionID)

	session, err := s.sessionStore.GetSession(ctx, userID, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Errorw("failed to get session", "error", err)
		}
		return nil, nil, err
	}

	msgs, err := s.messageStore.GetMessagesBySession(ctx, userID, sessionID)
	if err != nil {
		log.Errorw("failed to get messages", "error", err)
		return nil, nil, err
	}

	log.Infow("fetched session timeline", "message_count", len(msgs))
	return session, msgs, nil
}

// DeleteSession removes every message of the session and then the session
// itself. If the messages cannot be removed the session is kept.
func (s *Service) DeleteSession(ctx context.Context, userID domain.UserID, sessionID domain.SessionID) error {
	log := observability.LoggerFromContext(ctx).With("user_id", userID, "session_id", sessionID)

	if err := s.messageStore.DeleteMessagesBySession(ctx, userID, sessionID); err != nil {
		log.Errorw("failed to delete session messages", "error", err)
		return err
	}
	if err := s.sessionStore.DeleteSession(ctx, userID, sessionID); err != nil {
		log.Errorw("failed to delete session", "error", err)
		return err
	}

	log.Infow("session deleted")
	return nil
}

func (s *Service) WatchSessions(ctx context.Context, userID domain.UserID) (<-chan []*domain.Session, error) {
	return s.sessionStore.WatchSessions(ctx, userID)
}

func (s *Service) WatchMessages(ctx context.Context, userID domain.UserID, sessionID domain.SessionID) (<-chan []*domain.Message, error) {
	return s.messageStore.WatchMessages(ctx, userID, sessionID)
}
