package domain

// JournalEntry is an immutable free-text reflection.
type JournalEntry struct {
	ID        JournalEntryID `json:"id"`
	UserID    UserID         `json:"user_id"`
	Text      string         `json:"text"`
	CreatedAt Timestamp      `json:"created_at"`
}
