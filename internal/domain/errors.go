package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("no authenticated user")
	ErrInvalidInput    = errors.New("invalid input")

	ErrEmptyMessage   = errors.New("message text is empty")
	ErrRequestPending = errors.New("a reply is still pending")

	ErrMoodOutOfRange    = errors.New("mood value must be between 0 and 100")
	ErrEmptyJournalEntry = errors.New("journal entry is empty")

	// Auth provider errors carry the provider prefix; callers strip it
	// before showing the message to a user.
	ErrEmailInUse         = errors.New("auth: email already in use")
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrInvalidToken       = errors.New("auth: invalid or expired token")
)
