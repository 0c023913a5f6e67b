package domain

// UserProfile is written once at sign-up and read at every session start.
type UserProfile struct {
	ID          UserID    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"name"`
	Age         int       `json:"age"`
	CreatedAt   Timestamp `json:"created_at"`
}

// Credential is what the local auth provider keeps per account.
type Credential struct {
	UserID       UserID
	Email        string
	PasswordHash []byte
	CreatedAt    Timestamp
}

// AuthSession is the result of a successful sign-in or token check.
type AuthSession struct {
	UserID    UserID
	Email     string
	Token     string
	ExpiresAt Timestamp
}
