// Package posts declares the document store for journal posts.
package posts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/journal/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, post *models.Post) error
	Get(ctx context.Context, id string) (*models.Post, error)

	// Update changes the mutable fields only; the author is never rewritten.
	Update(ctx context.Context, id string, patch models.PostPatch, at time.Time) (*models.Post, error)

	SetImage(ctx context.Context, id, key string, at time.Time) error
	Delete(ctx context.Context, id string) error

	// List returns every post, newest first.
	List(ctx context.Context) ([]*models.Post, error)

	// ListByAuthor returns the author's posts in storage order.
	ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error)
}
