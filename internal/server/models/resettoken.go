package models

import "time"

// ResetToken is a one-time password reset code.
type ResetToken struct {
	Token     string
	UserID    string
	Expires   time.Time
	CreatedAt time.Time
}
