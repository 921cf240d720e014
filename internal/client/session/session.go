// Package session reconciles the signed-in identity reported by the backend
// with the copy mirrored in the local database.
//
// The backend is the authority. The mirror is a cache with a fixed
// validity window: it lets the CLI show who is signed in before the backend
// has answered, and it is discarded once it is older than TTL or once the
// backend reports that nobody is signed in. Every read goes through
// Reconciler.Current, which re-evaluates expiry.
package session

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/journal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/journal/internal/logging"
)

const (
	// KeyData holds the JSON encoded Session.
	KeyData = "journal_auth_data"
	// KeyTimestamp holds the write time of KeyData in unix milliseconds.
	KeyTimestamp = "journal_auth_timestamp"

	// TTL is how long a mirrored session stays valid.
	TTL = 24 * time.Hour
)

// Identity is the backend's view of the signed-in account.
type Identity struct {
	UserID        string
	DisplayName   string
	PhotoURL      string
	Email         string
	EmailVerified bool
	CreatedAt     time.Time
	LastSignInAt  time.Time
}

// Session is the public part of an Identity plus its expiry.
type Session struct {
	UserID      string    `json:"uid"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoURL"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"-"`
}

// Reconciler keeps the local session mirror in step with the identity the
// backend reports, and decides where each route may go.
type Reconciler struct {
	mu      sync.Mutex
	store   metadata.Repository
	log     logging.Logger
	now     func() time.Time
	current *Session
	// spoken is set once the backend has reported an identity or its absence.
	spoken bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(r *Reconciler) { r.log = l.With("module", "session") }
}

// WithClock replaces time.Now, mainly for TTL tests.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// NewReconciler returns a Reconciler with no session until Start runs.
func NewReconciler(store metadata.Repository, opts ...Option) *Reconciler {
	r := &Reconciler{store: store, log: logging.Nop{}, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Start adopts the mirrored session if it is younger than TTL and discards
// it otherwise. If the backend already reported "no identity", the mirror is
// discarded unread.
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.spoken {
		if r.current == nil {
			r.clear(ctx)
		}
		return
	}

	s, ok := r.load(ctx)
	if !ok {
		r.clear(ctx)
		r.current = nil
		return
	}
	r.current = s
}

// OnAuthStateChanged receives the backend's notifications: sign in, token
// refresh and session restore carry an identity; sign out carries nil.
func (r *Reconciler) OnAuthStateChanged(ctx context.Context, id *Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.spoken = true

	if id == nil {
		r.clear(ctx)
		r.current = nil
		return
	}

	now := r.now()
	s := &Session{
		UserID:      id.UserID,
		DisplayName: id.DisplayName,
		PhotoURL:    id.PhotoURL,
		Email:       id.Email,
		ExpiresAt:   now.Add(TTL),
	}
	r.persist(ctx, s, now)
	r.current = s
}

// Current returns the session in effect, or ok=false when nobody is signed
// in. An expired session is discarded on the way.
func (r *Reconciler) Current(ctx context.Context) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return Session{}, false
	}
	if !r.now().Before(r.current.ExpiresAt) {
		r.log.Info(ctx, "session expired", "uid", r.current.UserID)
		r.clear(ctx)
		r.current = nil
		return Session{}, false
	}
	return *r.current, true
}

// Logout tears the session down locally.
func (r *Reconciler) Logout(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clear(ctx)
	r.current = nil
}

func (r *Reconciler) load(ctx context.Context) (*Session, bool) {
	data, ok, err := r.store.Get(ctx, KeyData)
	if err != nil {
		r.log.Warn(ctx, "reading session mirror", "err", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	raw, ok, err := r.store.Get(ctx, KeyTimestamp)
	if err != nil {
		r.log.Warn(ctx, "reading session timestamp", "err", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		r.log.Warn(ctx, "malformed session timestamp", "value", raw)
		return nil, false
	}
	stored := time.UnixMilli(ms)
	if r.now().Sub(stored) >= TTL {
		r.log.Info(ctx, "session mirror is stale", "stored_at", stored)
		return nil, false
	}

	var s Session
	if err := json.Unmarshal([]byte(data), &s); err != nil || s.UserID == "" {
		r.log.Warn(ctx, "malformed session mirror", "err", err)
		return nil, false
	}
	s.ExpiresAt = stored.Add(TTL)
	return &s, true
}

func (r *Reconciler) persist(ctx context.Context, s *Session, at time.Time) {
	data, err := json.Marshal(s)
	if err != nil {
		r.log.Warn(ctx, "encoding session", "err", err)
		return
	}
	if err := r.store.Set(ctx, KeyData, string(data)); err != nil {
		r.log.Warn(ctx, "writing session mirror", "err", err)
		return
	}
	if err := r.store.Set(ctx, KeyTimestamp, strconv.FormatInt(at.UnixMilli(), 10)); err != nil {
		r.log.Warn(ctx, "writing session timestamp", "err", err)
	}
}

func (r *Reconciler) clear(ctx context.Context) {
	if err := r.store.Delete(ctx, KeyData, KeyTimestamp); err != nil {
		r.log.Warn(ctx, "clearing session mirror", "err", err)
	}
}
