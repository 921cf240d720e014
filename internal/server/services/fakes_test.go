package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/journal/internal/common"
	"github.com/dmitrijs2005/journal/internal/dbx"
	"github.com/dmitrijs2005/journal/internal/server/auth"
	"github.com/dmitrijs2005/journal/internal/server/config"
	"github.com/dmitrijs2005/journal/internal/server/events"
	"github.com/dmitrijs2005/journal/internal/server/models"
	"github.com/dmitrijs2005/journal/internal/server/repositories/posts"
	"github.com/dmitrijs2005/journal/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/journal/internal/server/repositories/resettokens"
	"github.com/dmitrijs2005/journal/internal/server/repositories/users"
	"github.com/google/uuid"
)

var errBoom = errors.New("boom")

// store is an in-memory backend shared by all fake repositories. The tx
// argument of the repository factories is ignored.
type store struct {
	mu       sync.Mutex
	users    map[string]*models.User
	posts    map[string]*models.Post
	order    []string
	refresh  map[string]*models.RefreshToken
	resets   map[string]*models.ResetToken
	failNext map[string]error
	// afterFind runs under the lock once a refresh token has been read.
	afterFind func(token string)
}

func newStore() *store {
	return &store{
		users:    map[string]*models.User{},
		posts:    map[string]*models.Post{},
		refresh:  map[string]*models.RefreshToken{},
		resets:   map[string]*models.ResetToken{},
		failNext: map[string]error{},
	}
}

// fail makes the next call of op return err.
func (s *store) fail(op string, err error) { s.failNext[op] = err }

func (s *store) check(op string) error {
	if err, ok := s.failNext[op]; ok {
		delete(s.failNext, op)
		return err
	}
	return nil
}

func (s *store) RunMigrations(context.Context, *sql.DB) error { return nil }
func (s *store) Users(dbx.DBTX) users.Repository              { return fakeUsers{s} }
func (s *store) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return fakeRefresh{s}
}
func (s *store) ResetTokens(dbx.DBTX) resettokens.Repository { return fakeResets{s} }
func (s *store) Posts(dbx.DBTX) posts.Repository             { return fakePosts{s} }

type fakeUsers struct{ s *store }

func (f fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.check("users.Create"); err != nil {
		return nil, err
	}
	for _, other := range f.s.users {
		if other.Email == u.Email || (u.GitHubID != 0 && other.GitHubID == u.GitHubID) {
			return nil, common.ErrorAlreadyExists
		}
	}
	c := *u
	c.ID = uuid.NewString()
	c.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.s.users[c.ID] = &c
	out := c
	return &out, nil
}

func (f fakeUsers) find(match func(*models.User) bool) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if err := f.s.check("users.GetByID"); err != nil {
		return nil, err
	}
	return f.find(func(u *models.User) bool { return u.ID == id })
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if err := f.s.check("users.GetByEmail"); err != nil {
		return nil, err
	}
	return f.find(func(u *models.User) bool { return u.Email == email })
}

func (f fakeUsers) GetByGitHubID(_ context.Context, id int64) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.GitHubID == id })
}

func (f fakeUsers) update(id string, fn func(*models.User)) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(u)
	return nil
}

func (f fakeUsers) TouchLastSignIn(_ context.Context, id string, at time.Time) error {
	return f.update(id, func(u *models.User) { u.LastSignInAt = at })
}

func (f fakeUsers) UpdateProfile(_ context.Context, id, displayName, photoKey string) error {
	return f.update(id, func(u *models.User) { u.DisplayName, u.PhotoKey = displayName, photoKey })
}

func (f fakeUsers) UpdateCredentials(_ context.Context, id string, salt, verifier []byte) error {
	return f.update(id, func(u *models.User) { u.Salt, u.Verifier = salt, verifier })
}

func (f fakeUsers) LinkGitHub(_ context.Context, id string, githubID int64) error {
	return f.update(id, func(u *models.User) { u.GitHubID, u.EmailVerified = githubID, true })
}

// Delete cascades to posts and tokens like the foreign keys do.
func (f fakeUsers) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.s.users, id)
	for pid, p := range f.s.posts {
		if p.AuthorID == id {
			delete(f.s.posts, pid)
		}
	}
	for tok, rt := range f.s.refresh {
		if rt.UserID == id {
			delete(f.s.refresh, tok)
		}
	}
	return nil
}

type fakeRefresh struct{ s *store }

func (f fakeRefresh) Create(_ context.Context, userID, token string, expires time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.check("refresh.Create"); err != nil {
		return err
	}
	f.s.refresh[token] = &models.RefreshToken{UserID: userID, TokenHash: token, ExpiresAt: expires}
	return nil
}

func (f fakeRefresh) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	rt, ok := f.s.refresh[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *rt
	if f.s.afterFind != nil {
		f.s.afterFind(token)
	}
	return &c, nil
}

func (f fakeRefresh) Delete(_ context.Context, token string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.check("refresh.Delete"); err != nil {
		return err
	}
	if _, ok := f.s.refresh[token]; !ok {
		return common.ErrorNotFound
	}
	delete(f.s.refresh, token)
	return nil
}

func (f fakeRefresh) DeleteByUser(_ context.Context, userID string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for tok, rt := range f.s.refresh {
		if rt.UserID == userID {
			delete(f.s.refresh, tok)
		}
	}
	return nil
}

func (f fakeRefresh) DeleteExpired(_ context.Context, userID string, now time.Time) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for tok, rt := range f.s.refresh {
		if rt.UserID == userID && rt.Expired(now) {
			delete(f.s.refresh, tok)
			n++
		}
	}
	return n, nil
}

type fakeResets struct{ s *store }

func (f fakeResets) Create(_ context.Context, userID, token string, expires time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.resets[token] = &models.ResetToken{Token: token, UserID: userID, Expires: expires}
	return nil
}

func (f fakeResets) Consume(_ context.Context, token string) (*models.ResetToken, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	rt, ok := f.s.resets[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.s.resets, token)
	return rt, nil
}

func (f fakeResets) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for tok, rt := range f.s.resets {
		if rt.Expires.Before(now) {
			delete(f.s.resets, tok)
			n++
		}
	}
	return n, nil
}

type fakePosts struct{ s *store }

func (f fakePosts) Create(_ context.Context, p *models.Post) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.check("posts.Create"); err != nil {
		return err
	}
	c := *p
	f.s.posts[p.ID] = &c
	f.s.order = append(f.s.order, p.ID)
	return nil
}

func (f fakePosts) Get(_ context.Context, id string) (*models.Post, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.check("posts.Get"); err != nil {
		return nil, err
	}
	p, ok := f.s.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *p
	return &c, nil
}

func (f fakePosts) Update(_ context.Context, id string, patch models.PostPatch, at time.Time) (*models.Post, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	p.Title, p.Content, p.AIReview, p.UpdatedAt = patch.Title, patch.Content, patch.AIReview, at
	c := *p
	return &c, nil
}

func (f fakePosts) SetImage(_ context.Context, id, key string, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.posts[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.ImageKey, p.UpdatedAt = key, at
	return nil
}

func (f fakePosts) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.posts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.s.posts, id)
	return nil
}

func (f fakePosts) List(_ context.Context) ([]*models.Post, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]*models.Post, 0, len(f.s.posts))
	for _, p := range f.s.posts {
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f fakePosts) ListByAuthor(_ context.Context, authorID string) ([]*models.Post, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.check("posts.ListByAuthor"); err != nil {
		return nil, err
	}
	var out []*models.Post
	for _, id := range f.s.order {
		if p, ok := f.s.posts[id]; ok && p.AuthorID == authorID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

// fakeBlobs records deletions and can be told to fail them.
type fakeBlobs struct {
	mu         sync.Mutex
	deleted    []string
	deleteErr  error
	presignErr error
}

func (b *fakeBlobs) PresignPut(_ context.Context, key, contentType string, size int64) (string, error) {
	if b.presignErr != nil {
		return "", b.presignErr
	}
	return fmt.Sprintf("https://blobs.test/%s?put&size=%d", key, size), nil
}

func (b *fakeBlobs) PresignGet(_ context.Context, key string) (string, error) {
	if b.presignErr != nil {
		return "", b.presignErr
	}
	return "https://blobs.test/" + key, nil
}

func (b *fakeBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, key)
	return b.deleteErr
}

type fakePublisher struct {
	err  error
	sent []events.ReviewRequest
}

func (p *fakePublisher) PublishReview(_ context.Context, r events.ReviewRequest) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, r)
	return nil
}

func (p *fakePublisher) Close() {}

type countingObserver struct {
	cleanupFailed map[string]int
	reviews       int
}

func (o *countingObserver) BlobCleanupFailed(kind string) {
	if o.cleanupFailed == nil {
		o.cleanupFailed = map[string]int{}
	}
	o.cleanupFailed[kind]++
}

func (o *countingObserver) ReviewRequested() { o.reviews++ }

type fakeMailer struct {
	to, subject, body string
	err               error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	return m.err
}

type fakeDeviceFlow struct {
	id          *auth.GitHubIdentity
	completeErr error
}

func (f *fakeDeviceFlow) Start(context.Context) (*auth.DeviceCode, error) {
	return &auth.DeviceCode{DeviceCode: "dev", UserCode: "ABCD-1234", VerificationURI: "https://github.test/device"}, nil
}

func (f *fakeDeviceFlow) Complete(context.Context, string) (*auth.GitHubIdentity, error) {
	return f.id, f.completeErr
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  time.Minute,
		RefreshTokenValidityDuration: time.Hour,
		ResetTokenValidityDuration:   time.Hour,
	}
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}
