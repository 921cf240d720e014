// Package services holds the client's use cases. Every check that can be
// made locally (signed in, author match, field and image validation) runs
// before the first remote call.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/dmitrijs2005/journal/internal/client/session"
	"github.com/dmitrijs2005/journal/internal/common"
	"github.com/dmitrijs2005/journal/internal/filex"
)

var (
	// ErrBusy is returned while an earlier submission of the same view is
	// still running.
	ErrBusy = errors.New("operation already in progress")
	// ErrNotSignedIn is returned by operations that need a session.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrImageNotSaved wraps upload failures that happen after the owning
	// record was already saved.
	ErrImageNotSaved = errors.New("saved without image")
)

// Sessions is the read path to the reconciled session.
type Sessions interface {
	Current(ctx context.Context) (session.Session, bool)
}

// Uploader PUTs bytes to a presigned URL.
type Uploader interface {
	Put(ctx context.Context, url string, contentType string, data []byte) error
}

// inFlight lets one submission run at a time.
type inFlight struct {
	busy atomic.Bool
}

func (f *inFlight) begin() (func(), error) {
	if !f.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	return func() { f.busy.Store(false) }, nil
}

func current(ctx context.Context, s Sessions) (session.Session, error) {
	sess, ok := s.Current(ctx)
	if !ok {
		return session.Session{}, ErrNotSignedIn
	}
	return sess, nil
}

// validateImage applies the upload limits locally.
func validateImage(img *filex.Image) error {
	if !strings.HasPrefix(img.ContentType, "image/") {
		return common.WithReason(fmt.Errorf("%w: %s is not an image", common.ErrorValidation, img.Name), common.ReasonInvalidContentType)
	}
	if img.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", common.ErrorValidation, img.Name)
	}
	if img.Size() > common.MaxImageSize {
		return common.WithReason(fmt.Errorf("%w: %s is %d bytes", common.ErrorValidation, img.Name, img.Size()), common.ReasonImageTooLarge)
	}
	return nil
}
