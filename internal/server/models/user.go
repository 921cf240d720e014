// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account. Salt and Verifier are empty for accounts created
// through GitHub sign-in; GitHubID is zero for password accounts.
type User struct {
	ID            string
	Email         string
	DisplayName   string
	PhotoKey      string
	EmailVerified bool
	Salt          []byte
	Verifier      []byte
	GitHubID      int64
	CreatedAt     time.Time
	LastSignInAt  time.Time
}

// HasPassword reports whether the account can sign in with a password.
func (u *User) HasPassword() bool {
	return len(u.Salt) > 0 && len(u.Verifier) > 0
}
