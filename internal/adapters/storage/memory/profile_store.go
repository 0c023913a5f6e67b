package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PabloGalante/mind-connect/internal/domain"
)

// ProfileStore keeps user profiles in memory.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[domain.UserID]domain.UserProfile
	now      func() time.Time
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[domain.UserID]domain.UserProfile),
		now:      time.Now,
	}
}

func (s *ProfileStore) SaveProfile(_ context.Context, profile *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = s.now()
	}
	s.profiles[profile.ID] = *profile
	return nil
}

func (s *ProfileStore) GetProfile(_ context.Context, id domain.UserID) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// CredentialStore keeps login credentials keyed by lower-cased email.
type CredentialStore struct {
	mu    sync.RWMutex
	creds map[string]domain.Credential
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{creds: make(map[string]domain.Credential)}
}

func (s *CredentialStore) CreateCredential(_ context.Context, cred *domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(cred.Email)
	if _, exists := s.creds[key]; exists {
		return domain.ErrEmailInUse
	}
	s.creds[key] = *cred
	return nil
}

func (s *CredentialStore) GetCredentialByEmail(_ context.Context, email string) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.creds[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s *CredentialStore) DeleteCredential(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.creds, strings.ToLower(email))
	return nil
}
