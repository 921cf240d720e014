// Package metadata is the client's small key/value store in the local
// SQLite database. It holds the session mirror and the refresh token.
package metadata

import "context"

type Repository interface {
	// Get returns ok=false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Delete removes the given keys; absent keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}
