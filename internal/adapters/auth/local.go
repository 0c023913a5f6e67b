package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/PabloGalante/mind-connect/internal/domain"
)

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// LocalProvider keeps bcrypt credentials in a CredentialStore and issues
// HS256 tokens.
type LocalProvider struct {
	creds  domain.CredentialStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewLocalProvider(creds domain.CredentialStore, secret string, ttl time.Duration) *LocalProvider {
	return &LocalProvider{
		creds:  creds,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (domain.UserID, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	cred := &domain.Credential{
		UserID:       domain.UserID(uuid.NewString()),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
	}
	if err := p.creds.CreateCredential(ctx, cred); err != nil {
		return "", err
	}
	return cred.UserID, nil
}

func (p *LocalProvider) DeleteAccount(ctx context.Context, email string) error {
	return p.creds.DeleteCredential(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	cred, err := p.creds.GetCredentialByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := p.now()
	expires := now.Add(p.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: cred.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(cred.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})

	signed, err := token.SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: signing token: %w", err)
	}

	return &domain.AuthSession{
		UserID:    cred.UserID,
		Email:     cred.Email,
		Token:     signed,
		ExpiresAt: expires,
	}, nil
}

func (p *LocalProvider) Verify(_ context.Context, token string) (*domain.AuthSession, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(p.now))
	if err != nil || !parsed.Valid || c.Subject == "" {
		return nil, domain.ErrInvalidToken
	}

	session := &domain.AuthSession{
		UserID: domain.UserID(c.Subject),
		Email:  c.Email,
		Token:  token,
	}
	if c.ExpiresAt != nil {
		session.ExpiresAt = c.ExpiresAt.Time
	}
	return session, nil
}
