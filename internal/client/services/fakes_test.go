package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/journal/internal/api"
	"github.com/dmitrijs2005/journal/internal/client/session"
)

// fakeClient records every remote call so tests can assert that local
// checks ran first.
type fakeClient struct {
	mu    sync.Mutex
	calls []string

	err        error
	uploadErr  error
	attachErr  error
	posts      []*api.Post
	byAuthor   []*api.Post
	me         *api.User
	gitHubCode *api.StartGitHubLoginResponse
	deadline   time.Time
	block      chan struct{}

	gotPassword []byte
	gotName     string
	gotPhotoKey string
}

func (f *fakeClient) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeClient) Register(_ context.Context, _, name string, password []byte) error {
	f.record("Register")
	f.gotName, f.gotPassword = name, password
	return f.err
}

func (f *fakeClient) Login(_ context.Context, _ string, password []byte) error {
	f.record("Login")
	f.gotPassword = password
	return f.err
}

func (f *fakeClient) Logout(context.Context) error {
	f.record("Logout")
	return f.err
}

func (f *fakeClient) Restore(context.Context) error {
	f.record("Restore")
	return f.err
}

func (f *fakeClient) RequestPasswordReset(context.Context, string) error {
	f.record("RequestPasswordReset")
	return f.err
}

func (f *fakeClient) ResetPassword(context.Context, string, []byte) error {
	f.record("ResetPassword")
	return f.err
}

func (f *fakeClient) StartGitHubLogin(context.Context) (*api.StartGitHubLoginResponse, error) {
	f.record("StartGitHubLogin")
	return f.gitHubCode, f.err
}

func (f *fakeClient) CompleteGitHubLogin(ctx context.Context, _ string) error {
	f.record("CompleteGitHubLogin")
	f.deadline, _ = ctx.Deadline()
	return f.err
}

func (f *fakeClient) CreatePost(_ context.Context, title, content string, aiReview bool) (*api.Post, error) {
	f.record("CreatePost")
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	p := &api.Post{ID: "p1", Title: title, Content: content, AIReview: aiReview, AuthorID: "u1", CreatedAt: time.Now()}
	f.posts = append(f.posts, p)
	return p, nil
}

func (f *fakeClient) GetPost(_ context.Context, id string) (*api.Post, error) {
	f.record("GetPost")
	for _, p := range f.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, f.err
}

func (f *fakeClient) UpdatePost(_ context.Context, id, title, content string, aiReview bool) (*api.Post, error) {
	f.record("UpdatePost")
	if f.err != nil {
		return nil, f.err
	}
	return &api.Post{ID: id, Title: title, Content: content, AIReview: aiReview, AuthorID: "u1"}, nil
}

func (f *fakeClient) DeletePost(context.Context, string) error {
	f.record("DeletePost")
	return f.err
}

func (f *fakeClient) ListPosts(context.Context) ([]*api.Post, error) {
	f.record("ListPosts")
	return f.posts, f.err
}

func (f *fakeClient) RequestPostImageUpload(_ context.Context, postID, _ string, _ int64) (*api.UploadTicket, error) {
	f.record("RequestPostImageUpload")
	return &api.UploadTicket{Key: "posts/u1-Alice/" + postID, URL: "https://blobs.test/put"}, nil
}

func (f *fakeClient) AttachPostImage(_ context.Context, postID, key string) (*api.Post, error) {
	f.record("AttachPostImage")
	if f.attachErr != nil {
		return nil, f.attachErr
	}
	return &api.Post{ID: postID, AuthorID: "u1", ImageURL: "https://blobs.test/" + key}, nil
}

func (f *fakeClient) GetMe(context.Context) (*api.User, error) {
	f.record("GetMe")
	return f.me, f.err
}

func (f *fakeClient) ListPostsByAuthor(context.Context, string) ([]*api.Post, error) {
	f.record("ListPostsByAuthor")
	return f.byAuthor, f.err
}

func (f *fakeClient) UpdateProfile(_ context.Context, displayName, photoKey string) (*api.User, error) {
	f.record("UpdateProfile")
	f.gotName, f.gotPhotoKey = displayName, photoKey
	if f.err != nil {
		return nil, f.err
	}
	return &api.User{ID: "u1", DisplayName: displayName}, nil
}

func (f *fakeClient) RequestProfilePhotoUpload(_ context.Context, fileName, _ string, _ int64) (*api.UploadTicket, error) {
	f.record("RequestProfilePhotoUpload")
	return &api.UploadTicket{Key: "profile-photos/u1/" + fileName, URL: "https://blobs.test/put"}, f.err
}

func (f *fakeClient) DeleteAccount(context.Context) error {
	f.record("DeleteAccount")
	return f.err
}

type fakeUploader struct {
	err  error
	puts []string
}

func (u *fakeUploader) Put(_ context.Context, url, contentType string, _ []byte) error {
	u.puts = append(u.puts, url+" "+contentType)
	return u.err
}

type fakeSessions struct {
	sess      *session.Session
	started   bool
	loggedOut bool
}

func signedIn(uid, name string) *fakeSessions {
	return &fakeSessions{sess: &session.Session{UserID: uid, DisplayName: name}}
}

func (f *fakeSessions) Current(context.Context) (session.Session, bool) {
	if f.sess == nil {
		return session.Session{}, false
	}
	return *f.sess, true
}

func (f *fakeSessions) Start(context.Context) { f.started = true }

func (f *fakeSessions) Logout(context.Context) {
	f.loggedOut = true
	f.sess = nil
}
