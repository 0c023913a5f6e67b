package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/mind-connect/internal/domain"
	"github.com/PabloGalante/mind-connect/internal/observability"
)

// Store implements every persistence port on top of Firestore. All data
// lives under artifacts/{appID}.
type Store struct {
	client *firestore.Client
	appID  string
}

// NewStore creates a Firestore store.
// Uses the project passed (MINDCONNECT_GCP_PROJECT).
func NewStore(ctx context.Context, projectID, appID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}
	if appID == "" {
		return nil, fmt.Errorf("appID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client, appID: appID}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) root() *firestore.DocumentRef {
	return s.client.Collection("artifacts").Doc(s.appID)
}

func (s *Store) userDoc(userID domain.UserID) *firestore.DocumentRef {
	return s.root().Collection("users").Doc(string(userID))
}

func (s *Store) credentialDoc(email string) *firestore.DocumentRef {
	return s.root().Collection("credentials").Doc(strings.ToLower(email))
}

func (s *Store) moodLogsCol(userID domain.UserID) *firestore.CollectionRef {
	return s.userDoc(userID).Collection("mood_logs")
}

func (s *Store) journalCol(userID domain.UserID) *firestore.CollectionRef {
	return s.userDoc(userID).Collection("journal_entries")
}

func (s *Store) sessionsCol(userID domain.UserID) *firestore.CollectionRef {
	return s.userDoc(userID).Collection("chats")
}

func (s *Store) sessionDoc(userID domain.UserID, id domain.SessionID) *firestore.DocumentRef {
	return s.sessionsCol(userID).Doc(string(id))
}

func (s *Store) messagesCol(userID domain.UserID, sessionID domain.SessionID) *firestore.CollectionRef {
	return s.sessionDoc(userID, sessionID).Collection("messages")
}

// readAll drains a document iterator, decoding every document with decode.
func readAll[D any, T any](it *firestore.DocumentIterator, decode func(id string, doc D) T) ([]T, error) {
	defer it.Stop()

	var out []T
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		var doc D
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", snap.Ref.Path, err)
		}
		out = append(out, decode(snap.Ref.ID, doc))
	}
}

// watchQuery streams a decoded snapshot of q every time its result set
// changes. The channel closes when ctx is done or the listener fails.
func watchQuery[D any, T any](ctx context.Context, q firestore.Query, decode func(id string, doc D) T) (<-chan []T, error) {
	it := q.Snapshots(ctx)
	out := make(chan []T, 1)

	go func() {
		defer close(out)
		defer it.Stop()

		log := observability.LoggerFromContext(ctx)
		for {
			qs, err := it.Next()
			if err != nil {
				if ctx.Err() == nil && status.Code(err) != codes.Canceled {
					log.Errorw("firestore snapshot listener stopped", "error", err)
				}
				return
			}

			items, err := readAll(qs.Documents, decode)
			if err != nil {
				log.Errorw("firestore snapshot decode failed", "error", err)
				continue
			}

			select {
			case out <- items:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type profileDoc struct {
	Name      string    `firestore:"name"`
	Age       int       `firestore:"age"`
	Email     string    `firestore:"email"`
	CreatedAt time.Time `firestore:"created_at,serverTimestamp"`
}

type credentialDoc struct {
	UserID       string    `firestore:"user_id"`
	Email        string    `firestore:"email"`
	PasswordHash []byte    `firestore:"password_hash"`
	CreatedAt    time.Time `firestore:"created_at,serverTimestamp"`
}

type moodLogDoc struct {
	Mood      string            `firestore:"mood"`
	MoodValue int               `firestore:"moodValue"`
	Answers   map[string]string `firestore:"answers"`
	CreatedAt time.Time         `firestore:"timestamp,serverTimestamp"`
}

type journalDoc struct {
	Text      string    `firestore:"text"`
	CreatedAt time.Time `firestore:"timestamp,serverTimestamp"`
}

type sessionDoc struct {
	Title     string    `firestore:"title"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp"`
}

// Assistant turns are stored with sender "ai".
const senderAI = "ai"

func senderFor(r domain.Role) string {
	if r == domain.RoleAssistant {
		return senderAI
	}
	return string(r)
}

func roleFor(sender string) domain.Role {
	if sender == senderAI {
		return domain.RoleAssistant
	}
	return domain.Role(sender)
}

type messageDoc struct {
	Sender    string    `firestore:"sender"`
	Text      string    `firestore:"text"`
	CreatedAt time.Time `firestore:"timestamp,serverTimestamp"`
}

// ─────────────────────────────────────────
// ProfileStore / CredentialStore implementation
// ─────────────────────────────────────────

func (s *Store) SaveProfile(ctx context.Context, profile *domain.UserProfile) error {
	doc := profileDoc{
		Name:      profile.DisplayName,
		Age:       profile.Age,
		Email:     profile.Email,
		CreatedAt: profile.CreatedAt,
	}

	wr, err := s.userDoc(profile.ID).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore SaveProfile: %w", err)
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = wr.UpdateTime
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, id domain.UserID) (*domain.UserProfile, error) {
	snap, err := s.userDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore GetProfile: %w", err)
	}

	var doc profileDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetProfile decode: %w", err)
	}

	return &domain.UserProfile{
		ID:          id,
		Email:       doc.Email,
		DisplayName: doc.Name,
		Age:         doc.Age,
		CreatedAt:   doc.CreatedAt,
	}, nil
}

func (s *Store) CreateCredential(ctx context.Context, cred *domain.Credential) error {
	doc := credentialDoc{
		UserID:       string(cred.UserID),
		Email:        strings.ToLower(cred.Email),
		PasswordHash: cred.PasswordHash,
	}

	wr, err := s.credentialDoc(cred.Email).Create(ctx, doc)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return domain.ErrEmailInUse
		}
		return fmt.Errorf("firestore CreateCredential: %w", err)
	}
	cred.CreatedAt = wr.UpdateTime
	return nil
}

func (s *Store) GetCredentialByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	snap, err := s.credentialDoc(email).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore GetCredentialByEmail: %w", err)
	}

	var doc credentialDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetCredentialByEmail decode: %w", err)
	}

	return &domain.Credential{
		UserID:       domain.UserID(doc.UserID),
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
	}, nil
}

func (s *Store) DeleteCredential(ctx context.Context, email string) error {
	if _, err := s.credentialDoc(email).Delete(ctx); err != nil {
		return fmt.Errorf("firestore DeleteCredential: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────
// MoodLogStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMoodLog(ctx context.Context, log *domain.MoodLog) error {
	doc := moodLogDoc{
		Mood:      string(log.Label),
		MoodValue: log.Value,
		Answers:   log.Answers,
	}

	ref, wr, err := s.moodLogsCol(log.UserID).Add(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore AppendMoodLog: %w", err)
	}
	log.ID = domain.MoodLogID(ref.ID)
	log.CreatedAt = wr.UpdateTime
	return nil
}

func (s *Store) ListMoodLogs(ctx context.Context, userID domain.UserID) ([]*domain.MoodLog, error) {
	q := s.moodLogsCol(userID).OrderBy("timestamp", firestore.Desc)
	out, err := readAll(q.Documents(ctx), moodLogDecoder(userID))
	if err != nil {
		return nil, fmt.Errorf("firestore ListMoodLogs: %w", err)
	}
	return out, nil
}

func (s *Store) WatchMoodLogs(ctx context.Context, userID domain.UserID) (<-chan []*domain.MoodLog, error) {
	q := s.moodLogsCol(userID).OrderBy("timestamp", firestore.Desc)
	return watchQuery(ctx, q, moodLogDecoder(userID))
}

func moodLogDecoder(userID domain.UserID) func(string, moodLogDoc) *domain.MoodLog {
	return func(id string, doc moodLogDoc) *domain.MoodLog {
		return &domain.MoodLog{
			ID:        domain.MoodLogID(id),
			UserID:    userID,
			Label:     domain.MoodLabel(doc.Mood),
			Value:     doc.MoodValue,
			Answers:   doc.Answers,
			CreatedAt: doc.CreatedAt,
		}
	}
}

// ─────────────────────────────────────────
// JournalStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendJournalEntry(ctx context.Context, entry *domain.JournalEntry) error {
	ref, wr, err := s.journalCol(entry.UserID).Add(ctx, journalDoc{Text: entry.Text})
	if err != nil {
		return fmt.Errorf("firestore AppendJournalEntry: %w", err)
	}
	entry.ID = domain.JournalEntryID(ref.ID)
	entry.CreatedAt = wr.UpdateTime
	return nil
}

func (s *Store) ListJournalEntries(ctx context.Context, userID domain.UserID) ([]*domain.JournalEntry, error) {
	q := s.journalCol(userID).OrderBy("timestamp", firestore.Desc)
	out, err := readAll(q.Documents(ctx), journalDecoder(userID))
	if err != nil {
		return nil, fmt.Errorf("firestore ListJournalEntries: %w", err)
	}
	return out, nil
}

func (s *Store) WatchJournalEntries(ctx context.Context, userID domain.UserID) (<-chan []*domain.JournalEntry, error) {
	q := s.journalCol(userID).OrderBy("timestamp", firestore.Desc)
	return watchQuery(ctx, q, journalDecoder(userID))
}

func journalDecoder(userID domain.UserID) func(string, journalDoc) *domain.JournalEntry {
	return func(id string, doc journalDoc) *domain.JournalEntry {
		return &domain.JournalEntry{
			ID:        domain.JournalEntryID(id),
			UserID:    userID,
			Text:      doc.Text,
			CreatedAt: doc.CreatedAt,
		}
	}
}

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	doc := sessionDoc{Title: session.Title}

	if session.ID != "" {
		wr, err := s.sessionDoc(session.UserID, session.ID).Create(ctx, doc)
		if err != nil {
			return fmt.Errorf("firestore CreateSession: %w", err)
		}
		session.CreatedAt = wr.UpdateTime
		return nil
	}

	ref, wr, err := s.sessionsCol(session.UserID).Add(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore CreateSession: %w", err)
	}
	session.ID = domain.SessionID(ref.ID)
	session.CreatedAt = wr.UpdateTime
	return nil
}

func (s *Store) GetSession(ctx context.Context, userID domain.UserID, id domain.SessionID) (*domain.Session, error) {
	snap, err := s.sessionDoc(userID, id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore GetSession: %w", err)
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetSession decode: %w", err)
	}
	return sessionDecoder(userID)(snap.Ref.ID, doc), nil
}

func (s *Store) ListSessionsByUser(ctx context.Context, userID domain.UserID) ([]*domain.Session, error) {
	q := s.sessionsCol(userID).OrderBy("createdAt", firestore.Desc)
	out, err := readAll(q.Documents(ctx), sessionDecoder(userID))
	if err != nil {
		return nil, fmt.Errorf("firestore ListSessionsByUser: %w", err)
	}
	return out, nil
}

func (s *Store) WatchSessions(ctx context.Context, userID domain.UserID) (<-chan []*domain.Session, error) {
	q := s.sessionsCol(userID).OrderBy("createdAt", firestore.Desc)
	return watchQuery(ctx, q, sessionDecoder(userID))
}

func (s *Store) DeleteSession(ctx context.Context, userID domain.UserID, id domain.SessionID) error {
	ref := s.sessionDoc(userID, id)
	if _, err := ref.Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ErrNotFound
		}
		return fmt.Errorf("firestore DeleteSession: %w", err)
	}
	return nil
}

func sessionDecoder(userID domain.UserID) func(string, sessionDoc) *domain.Session {
	return func(id string, doc sessionDoc) *domain.Session {
		return &domain.Session{
			ID:        domain.SessionID(id),
			UserID:    userID,
			Title:     doc.Title,
			CreatedAt: doc.CreatedAt,
		}
	}
}

// ─────────────────────────────────────────
// MessageStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMessage(ctx context.Context, userID domain.UserID, msg *domain.Message) error {
	doc := messageDoc{
		Sender: senderFor(msg.Author),
		Text:   msg.Text,
	}

	ref, wr, err := s.messagesCol(userID, msg.SessionID).Add(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore AppendMessage: %w", err)
	}
	msg.ID = domain.MessageID(ref.ID)
	msg.CreatedAt = wr.UpdateTime
	return nil
}

func (s *Store) GetMessagesBySession(ctx context.Context, userID domain.UserID, sessionID domain.SessionID) ([]*domain.Message, error) {
	q := s.messagesCol(userID, sessionID).OrderBy("timestamp", firestore.Asc)
	out, err := readAll(q.Documents(ctx), messageDecoder(sessionID))
	if err != nil {
		return nil, fmt.Errorf("firestore GetMessagesBySession: %w", err)
	}
	return out, nil
}

func (s *Store) WatchMessages(ctx context.Context, userID domain.UserID, sessionID domain.SessionID) (<-chan []*domain.Message, error) {
	q := s.messagesCol(userID, sessionID).OrderBy("timestamp", firestore.Asc)
	return watchQuery(ctx, q, messageDecoder(sessionID))
}

// DeleteMessagesBySession removes every message of the session inside one
// transaction. A transaction is capped at 500 writes.
func (s *Store) DeleteMessagesBySession(ctx context.Context, userID domain.UserID, sessionID domain.SessionID) error {
	col := s.messagesCol(userID, sessionID)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snaps, err := tx.Documents(col).GetAll()
		if err != nil {
			return err
		}
		for _, snap := range snaps {
			if err := tx.Delete(snap.Ref); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("firestore DeleteMessagesBySession: %w", err)
	}
	return nil
}

func messageDecoder(sessionID domain.SessionID) func(string, messageDoc) *domain.Message {
	return func(id string, doc messageDoc) *domain.Message {
		return &domain.Message{
			ID:        domain.MessageID(id),
			SessionID: sessionID,
			Author:    roleFor(doc.Sender),
			Text:      doc.Text,
			CreatedAt: doc.CreatedAt,
		}
	}
}
