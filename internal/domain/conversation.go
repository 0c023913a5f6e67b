package domain

import "unicode/utf8"

// TitleMaxRunes is how much of the first message a session title keeps.
const TitleMaxRunes = 35

// Message represents a message in a session timeline (user or assistant)
type Message struct {
	ID        MessageID `json:"id"`
	SessionID SessionID `json:"session_id"`
	Author    Role      `json:"author"`
	Text      string    `json:"text"`
	CreatedAt Timestamp `json:"created_at"`
}

// Session is a titled conversation thread owned by one user.
type Session struct {
	ID        SessionID `json:"id"`
	UserID    UserID    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt Timestamp `json:"created_at"`
}

// DeriveTitle builds a session title from the first message of the thread.
func DeriveTitle(firstMessage string) string {
	if utf8.RuneCountInString(firstMessage) <= TitleMaxRunes {
		return firstMessage
	}
	runes := []rune(firstMessage)
	return string(runes[:TitleMaxRunes]) + "…"
}
