package domain

import "time"

type UserID string
type SessionID string
type MessageID string
type MoodLogID string
type JournalEntryID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Purpose tells the LLM adapter which instruction set a call belongs to.
type Purpose string

const (
	PurposeCompanion     Purpose = "companion"      // Echo chat turn
	PurposeWritingPrompt Purpose = "writing_prompt" // journal self-reflection prompt
)

type Timestamp = time.Time
