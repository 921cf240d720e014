// Package services contains the server-side business logic: accounts and
// sessions (UserService) and journal posts with their images (PostService).
// Handlers in internal/server/grpc translate wire messages and call into it.
package services

import (
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/dmitrijs2005/journal/internal/common"
	"github.com/dmitrijs2005/journal/internal/logging"
)

// Observer receives counts of side effects that never fail a request.
// *metrics.Metrics implements it.
type Observer interface {
	BlobCleanupFailed(kind string)
	ReviewRequested()
}

type nopObserver struct{}

func (nopObserver) BlobCleanupFailed(string) {}
func (nopObserver) ReviewRequested()         {}

const (
	cleanupPostImage    = "post_image"
	cleanupProfilePhoto = "profile_photo"
)

// base carries what every service needs besides its repositories.
type base struct {
	log      logging.Logger
	observer Observer
	now      func() time.Time
}

func newBase(module string, opts []Option) base {
	b := base{log: logging.Nop{}, observer: nopObserver{}, now: time.Now}
	for _, o := range opts {
		o(&b)
	}
	b.log = b.log.With("module", module)
	return b
}

type Option func(*base)

func WithLogger(l logging.Logger) Option {
	return func(b *base) { b.log = l }
}

func WithObserver(o Observer) Option {
	return func(b *base) { b.observer = o }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

// validateImage accepts image/* uploads of at most common.MaxImageSize bytes.
func validateImage(contentType string, size int64) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return common.WithReason(fmt.Errorf("content type %q: %w", contentType, common.ErrorValidation), common.ReasonInvalidContentType)
	}
	if size <= 0 {
		return fmt.Errorf("empty image: %w", common.ErrorValidation)
	}
	if size > common.MaxImageSize {
		return common.WithReason(fmt.Errorf("image of %d bytes: %w", size, common.ErrorValidation), common.ReasonImageTooLarge)
	}
	return nil
}
