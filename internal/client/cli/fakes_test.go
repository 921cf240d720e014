package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/journal/internal/api"
	"github.com/dmitrijs2005/journal/internal/client/services"
	"github.com/dmitrijs2005/journal/internal/client/session"
	"github.com/dmitrijs2005/journal/internal/filex"
	"github.com/dmitrijs2005/journal/internal/logging"
)

type memStore struct {
	mu sync.Mutex
	m  map[string]string
}

func (s *memStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = map[string]string{}
	}
	s.m[key] = value
	return nil
}

func (s *memStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.m, k)
	}
	return nil
}

// fakeAuth signs people in by notifying the reconciler, the way the gRPC
// client does.
type fakeAuth struct {
	r     *session.Reconciler
	calls []string
	err   error

	email    string
	password string
	code     string
}

func (f *fakeAuth) Start(ctx context.Context) { f.calls = append(f.calls, "Start") }

func (f *fakeAuth) SignUp(ctx context.Context, email, name string, password, confirm []byte) error {
	f.calls = append(f.calls, "SignUp")
	if f.err != nil {
		return f.err
	}
	f.email, f.password = email, string(password)
	f.r.OnAuthStateChanged(ctx, &session.Identity{UserID: "u1", DisplayName: name, Email: email})
	return nil
}

func (f *fakeAuth) Login(ctx context.Context, email string, password []byte) error {
	f.calls = append(f.calls, "Login")
	if f.err != nil {
		return f.err
	}
	f.email, f.password = email, string(password)
	f.r.OnAuthStateChanged(ctx, &session.Identity{UserID: "u1", DisplayName: "Alice", Email: email})
	return nil
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "Logout")
	f.r.Logout(ctx)
	return f.err
}

func (f *fakeAuth) RequestPasswordReset(ctx context.Context, email string) error {
	f.calls = append(f.calls, "RequestPasswordReset")
	f.email = email
	return f.err
}

func (f *fakeAuth) ResetPassword(ctx context.Context, token string, password, confirm []byte) error {
	f.calls = append(f.calls, "ResetPassword")
	f.code, f.password = token, string(password)
	return f.err
}

func (f *fakeAuth) GitHubLogin(ctx context.Context, prompt func(userCode, uri string)) error {
	f.calls = append(f.calls, "GitHubLogin")
	prompt("ABCD-1234", "https://github.com/login/device")
	if f.err != nil {
		return f.err
	}
	f.r.OnAuthStateChanged(ctx, &session.Identity{UserID: "u1", DisplayName: "Alice"})
	return nil
}

type fakePosts struct {
	posts   []*api.Post
	calls   []string
	err     error
	created services.PostInput
	updated services.PostInput
}

func (f *fakePosts) find(id string) (*api.Post, error) {
	for _, p := range f.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, f.err
}

func (f *fakePosts) Create(_ context.Context, in services.PostInput) (*api.Post, error) {
	f.calls = append(f.calls, "Create")
	if f.err != nil {
		return nil, f.err
	}
	f.created = in
	return &api.Post{ID: "new", Title: in.Title, Content: in.Content, AIReview: in.AIReview, AuthorID: "u1", AuthorName: "Alice"}, nil
}

func (f *fakePosts) Get(_ context.Context, id string) (*api.Post, error) {
	f.calls = append(f.calls, "Get")
	return f.find(id)
}

func (f *fakePosts) Load(_ context.Context, id string) (*api.Post, error) {
	f.calls = append(f.calls, "Load")
	return f.find(id)
}

func (f *fakePosts) Update(_ context.Context, p *api.Post, in services.PostInput) (*api.Post, error) {
	f.calls = append(f.calls, "Update")
	if f.err != nil {
		return nil, f.err
	}
	f.updated = in
	out := *p
	out.Title, out.Content, out.AIReview = in.Title, in.Content, in.AIReview
	return &out, nil
}

func (f *fakePosts) Delete(_ context.Context, p *api.Post) error {
	f.calls = append(f.calls, "Delete")
	return f.err
}

func (f *fakePosts) List(context.Context) ([]*api.Post, error) {
	f.calls = append(f.calls, "List")
	return f.posts, f.err
}

type fakeProfiles struct {
	profile *services.Profile
	calls   []string
	err     error
	name    string
}

func (f *fakeProfiles) Get(_ context.Context, uid string) (*services.Profile, error) {
	f.calls = append(f.calls, "Get:"+uid)
	return f.profile, f.err
}

func (f *fakeProfiles) Rename(_ context.Context, name string) (*api.User, error) {
	f.calls = append(f.calls, "Rename")
	f.name = name
	return &api.User{DisplayName: name}, f.err
}

func (f *fakeProfiles) ChangePhoto(_ context.Context, img *filex.Image) (*api.User, error) {
	f.calls = append(f.calls, "ChangePhoto")
	return &api.User{PhotoURL: "https://blob/photo"}, f.err
}

func (f *fakeProfiles) DeleteAccount(context.Context) error {
	f.calls = append(f.calls, "DeleteAccount")
	return f.err
}

type harness struct {
	app      *App
	out      *bytes.Buffer
	auth     *fakeAuth
	posts    *fakePosts
	profiles *fakeProfiles
	sessions *session.Reconciler
}

// newHarness builds an App over fakes whose prompts read input. Passwords
// are read as plain lines.
func newHarness(t *testing.T, input string) *harness {
	t.Helper()

	orig := isTerminal
	isTerminal = func() bool { return false }
	t.Cleanup(func() { isTerminal = orig })

	r := session.NewReconciler(&memStore{})
	h := &harness{
		out:      &bytes.Buffer{},
		auth:     &fakeAuth{r: r},
		posts:    &fakePosts{},
		profiles: &fakeProfiles{},
		sessions: r,
	}
	h.app = newApp(bufio.NewReader(strings.NewReader(input)), h.out, logging.Nop{})
	h.app.auth = h.auth
	h.app.posts = h.posts
	h.app.profiles = h.profiles
	h.app.sessions = r
	return h
}

func (h *harness) signIn(uid, name string) {
	h.sessions.OnAuthStateChanged(context.Background(), &session.Identity{UserID: uid, DisplayName: name, Email: uid + "@example.com"})
}

func (h *harness) run(args ...string) error {
	return h.app.execute(context.Background(), args)
}
