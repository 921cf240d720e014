package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/journal/internal/api"
	"github.com/dmitrijs2005/journal/internal/client/client"
	"github.com/dmitrijs2005/journal/internal/client/config"
	"github.com/dmitrijs2005/journal/internal/client/services"
	"github.com/dmitrijs2005/journal/internal/client/session"
	"github.com/dmitrijs2005/journal/internal/filex"
	"github.com/dmitrijs2005/journal/internal/logging"
	"github.com/dmitrijs2005/journal/internal/netx"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// statusInterval is how often the connectivity watcher pings the backend.
const statusInterval = 30 * time.Second

type authAPI interface {
	Start(ctx context.Context)
	SignUp(ctx context.Context, email, displayName string, password, confirm []byte) error
	Login(ctx context.Context, email string, password []byte) error
	Logout(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token string, password, confirm []byte) error
	GitHubLogin(ctx context.Context, prompt func(userCode, verificationURI string)) error
}

type postAPI interface {
	Create(ctx context.Context, in services.PostInput) (*api.Post, error)
	Get(ctx context.Context, id string) (*api.Post, error)
	Load(ctx context.Context, id string) (*api.Post, error)
	Update(ctx context.Context, p *api.Post, in services.PostInput) (*api.Post, error)
	Delete(ctx context.Context, p *api.Post) error
	List(ctx context.Context) ([]*api.Post, error)
}

type profileAPI interface {
	Get(ctx context.Context, uid string) (*services.Profile, error)
	Rename(ctx context.Context, displayName string) (*api.User, error)
	ChangePhoto(ctx context.Context, img *filex.Image) (*api.User, error)
	DeleteAccount(ctx context.Context) error
}

// sessionView answers who is signed in and where a route should lead.
type sessionView interface {
	Current(ctx context.Context) (session.Session, bool)
	Redirect(ctx context.Context, route string) (string, bool)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// App is the interactive journal client.
type App struct {
	auth     authAPI
	posts    postAPI
	profiles profileAPI
	sessions sessionView
	ping     pinger

	reader *bufio.Reader
	out    io.Writer
	log    logging.Logger

	// listed is the last list shown, so "view #2" can refer to it.
	listed []*api.Post
	mode   atomic.Value

	closers []func() error
}

// NewApp opens the local database, connects to the backend and wires the
// services the commands use.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, c.LogFormat, c.LogLevel)

	repos, err := client.OpenDataDir(ctx, c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	reconciler := session.NewReconciler(repos.Metadata, session.WithLogger(logger))

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, repos.Metadata,
		client.WithListener(reconciler),
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(logger),
	)
	if err != nil {
		repos.DB.Close()
		return nil, err
	}

	uploader := netx.NewUploader(nil)

	a := newApp(bufio.NewReader(os.Stdin), os.Stdout, logger)
	a.auth = services.NewAuthService(apiClient, reconciler, logger)
	a.posts = services.NewPostService(apiClient, reconciler, uploader, logger)
	a.profiles = services.NewProfileService(apiClient, reconciler, uploader, logger)
	a.sessions = reconciler
	a.ping = apiClient
	a.closers = []func() error{apiClient.Close, repos.DB.Close}
	return a, nil
}

func newApp(r *bufio.Reader, w io.Writer, l logging.Logger) *App {
	a := &App{reader: r, out: w, log: l}
	a.mode.Store(ModeOnline)
	return a
}

// Run restores the session, then serves the REPL until the user exits or
// ctx is canceled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.auth.Start(ctx)
	go a.StartOnlineStatusWatcher(ctx, statusInterval)

	fmt.Fprintln(a.out, "Welcome to Journal. Type \"help\" for the list of commands.")
	runREPL(ctx, a, a.status, a.reader, a.out)
}

// Close releases the connection and the database.
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn(context.Background(), "close failed", "err", err)
		}
	}
}

func (a *App) Mode() Mode {
	return a.mode.Load().(Mode)
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	if a.mode.Swap(mode) != mode {
		a.log.Info(ctx, "connectivity changed", "mode", mode)
	}
}

// StartOnlineStatusWatcher pings the backend every interval and flips the
// mode shown in the prompt.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.ping.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ctx, ModeOffline)
			} else {
				a.setMode(ctx, ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

// status is the prompt suffix: who is signed in and whether the backend
// answered the last ping.
func (a *App) status(ctx context.Context) string {
	s := "guest"
	if sess, ok := a.sessions.Current(ctx); ok {
		s = sess.DisplayName
		if s == "" {
			s = sess.Email
		}
	}
	if a.Mode() == ModeOffline {
		s += ", offline"
	}
	return s
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) text(prompt string) (string, error) {
	return GetSimpleText(a.reader, prompt, a.out)
}

// password hides typing on a terminal and falls back to a plain line when
// stdin is piped.
func (a *App) password(prompt string) ([]byte, error) {
	if isTerminal() {
		return GetPassword(prompt, a.out)
	}
	s, err := a.text(prompt)
	return []byte(s), err
}

func (a *App) confirm(prompt string) (bool, error) {
	return Confirm(a.reader, prompt, a.out)
}
