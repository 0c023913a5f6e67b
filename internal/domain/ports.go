package domain

import "context"

// LLMClient defines how the core application interacts with an LLM service.
type LLMClient interface {
	GenerateReply(ctx context.Context, prompt string, convCtx ConversationContext) (string, error)
}

// ConversationContext gives the LLM minimal context about the call.
type ConversationContext struct {
	SessionID SessionID
	UserID    UserID
	Purpose   Purpose
	History   []*Message // prior turns, oldest first
}

// AuthProvider creates accounts and issues/validates session tokens.
type AuthProvider interface {
	SignUp(ctx context.Context, email, password string) (UserID, error)
	SignIn(ctx context.Context, email, password string) (*AuthSession, error)
	Verify(ctx context.Context, token string) (*AuthSession, error)
	// DeleteAccount removes the account registered under email, freeing
	// the address for a new sign-up.
	DeleteAccount(ctx context.Context, email string) error
}

// CredentialStore persists login credentials for the local auth provider.
type CredentialStore interface {
	CreateCredential(ctx context.Context, cred *Credential) error
	GetCredentialByEmail(ctx context.Context, email string) (*Credential, error)
	DeleteCredential(ctx context.Context, email string) error
}

// ProfileStore persists user profiles.
type ProfileStore interface {
	SaveProfile(ctx context.Context, profile *UserProfile) error
	GetProfile(ctx context.Context, id UserID) (*UserProfile, error)
}

// MoodLogStore persists mood logs. Lists and snapshots are newest first.
type MoodLogStore interface {
	AppendMoodLog(ctx context.Context, log *MoodLog) error
	ListMoodLogs(ctx context.Context, userID UserID) ([]*MoodLog, error)
	WatchMoodLogs(ctx context.Context, userID UserID) (<-chan []*MoodLog, error)
}

// JournalStore persists journal entries. Lists and snapshots are newest first.
type JournalStore interface {
	AppendJournalEntry(ctx context.Context, entry *JournalEntry) error
	ListJournalEntries(ctx context.Context, userID UserID) ([]*JournalEntry, error)
	WatchJournalEntries(ctx context.Context, userID UserID) (<-chan []*JournalEntry, error)
}

// SessionStore defines session's persistence. Lists are newest first.
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, userID UserID, id SessionID) (*Session, error)
	ListSessionsByUser(ctx context.Context, userID UserID) ([]*Session, error)
	WatchSessions(ctx context.Context, userID UserID) (<-chan []*Session, error)
	DeleteSession(ctx context.Context, userID UserID, id SessionID) error
}

// MessageStore defines message's persistence. Lists are oldest first.
// DeleteMessagesBySession removes every message of a session in one batch:
// either all of them are gone or none are.
type MessageStore interface {
	AppendMessage(ctx context.Context, userID UserID, msg *Message) error
	GetMessagesBySession(ctx context.Context, userID UserID, sessionID SessionID) ([]*Message, error)
	WatchMessages(ctx context.Context, userID UserID, sessionID SessionID) (<-chan []*Message, error)
	DeleteMessagesBySession(ctx context.Context, userID UserID, sessionID SessionID) error
}
