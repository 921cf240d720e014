// Package resettokens stores one-time password reset codes.
package resettokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/journal/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID, token string, expires time.Time) error

	// Consume deletes the token and returns what it pointed to, so a code can
	// be redeemed at most once. Unknown tokens yield common.ErrorNotFound.
	Consume(ctx context.Context, token string) (*models.ResetToken, error)

	// DeleteExpired removes tokens that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
