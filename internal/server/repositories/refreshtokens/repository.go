// Package refreshtokens stores the refresh tokens issued at sign-in.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/journal/internal/server/models"
)

// Repository issues, looks up and revokes refresh tokens. Tokens are passed
// in the clear; implementations store a hash.
type Repository interface {
	Create(ctx context.Context, userID, token string, expires time.Time) error

	// Find returns common.ErrorNotFound for unknown tokens.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete returns common.ErrorNotFound when the token is already gone, so
	// only one caller can consume it.
	Delete(ctx context.Context, token string) error

	DeleteByUser(ctx context.Context, userID string) error

	// DeleteExpired prunes userID's tokens that expired before now.
	DeleteExpired(ctx context.Context, userID string, now time.Time) (int64, error)
}
