// Package users declares the server-side repository contract for accounts.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/journal/internal/server/models"
)

type Repository interface {
	// Create inserts the account and fills in its ID and CreatedAt.
	// A duplicate email or GitHub id yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByGitHubID(ctx context.Context, githubID int64) (*models.User, error)
	TouchLastSignIn(ctx context.Context, id string, at time.Time) error
	UpdateProfile(ctx context.Context, id, displayName, photoKey string) error
	UpdateCredentials(ctx context.Context, id string, salt, verifier []byte) error
	LinkGitHub(ctx context.Context, id string, githubID int64) error
	Delete(ctx context.Context, id string) error
}
