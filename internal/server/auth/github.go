package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/journal/internal/common"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubAPI = "https://api.github.com"

// DeviceCode is what the user needs to authorize a device sign-in.
type DeviceCode struct {
	DeviceCode      string
	UserCode        string
	VerificationURI string
	ExpiresAt       time.Time
	Interval        int64
}

// GitHubIdentity is the GitHub account behind a completed device sign-in.
type GitHubIdentity struct {
	ID            int64
	Login         string
	Name          string
	Email         string
	EmailVerified bool
}

// DisplayName prefers the profile name and falls back to the login.
func (g *GitHubIdentity) DisplayName() string {
	if g.Name != "" {
		return g.Name
	}
	return g.Login
}

// DeviceFlow is the provider sign-in used by the users service.
type DeviceFlow interface {
	Start(ctx context.Context) (*DeviceCode, error)
	Complete(ctx context.Context, deviceCode string) (*GitHubIdentity, error)
}

// GitHub runs the OAuth device flow against GitHub. Pending device codes
// are kept in memory until they are redeemed or expire.
type GitHub struct {
	conf    *oauth2.Config
	apiBase string
	now     func() time.Time

	mu      sync.Mutex
	pending map[string]*oauth2.DeviceAuthResponse
}

type GitHubOption func(*GitHub)

// WithEndpoints points the flow at other OAuth and API hosts.
func WithEndpoints(endpoint oauth2.Endpoint, apiBase string) GitHubOption {
	return func(g *GitHub) {
		g.conf.Endpoint = endpoint
		g.apiBase = strings.TrimRight(apiBase, "/")
	}
}

func NewGitHub(clientID, clientSecret string, opts ...GitHubOption) *GitHub {
	g := &GitHub{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		apiBase: githubAPI,
		now:     time.Now,
		pending: make(map[string]*oauth2.DeviceAuthResponse),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *GitHub) Start(ctx context.Context) (*DeviceCode, error) {
	resp, err := g.conf.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("github device auth: %w", err)
	}

	g.mu.Lock()
	g.prune()
	g.pending[resp.DeviceCode] = resp
	g.mu.Unlock()

	return &DeviceCode{
		DeviceCode:      resp.DeviceCode,
		UserCode:        resp.UserCode,
		VerificationURI: resp.VerificationURI,
		ExpiresAt:       resp.Expiry,
		Interval:        resp.Interval,
	}, nil
}

// Complete waits for the user to authorize deviceCode and returns the
// GitHub account. It blocks until GitHub answers, the code expires or ctx
// is done.
func (g *GitHub) Complete(ctx context.Context, deviceCode string) (*GitHubIdentity, error) {
	g.mu.Lock()
	resp, ok := g.pending[deviceCode]
	g.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown device code: %w", common.ErrorNotFound)
	}

	tok, err := g.conf.DeviceAccessToken(ctx, resp)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.ErrorCode == "access_denied" {
			g.forget(deviceCode)
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("github token: %w", err)
	}
	g.forget(deviceCode)

	client := g.conf.Client(ctx, tok)

	var user struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := g.getJSON(ctx, client, "/user", &user); err != nil {
		return nil, err
	}

	id := &GitHubIdentity{ID: user.ID, Login: user.Login, Name: user.Name, Email: user.Email}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := g.getJSON(ctx, client, "/user/emails", &emails); err == nil {
		for _, e := range emails {
			if e.Primary {
				id.Email = e.Email
				id.EmailVerified = e.Verified
				break
			}
		}
	}

	if id.Email == "" {
		id.Email = fmt.Sprintf("%d+%s@users.noreply.github.com", user.ID, user.Login)
	}

	return id, nil
}

func (g *GitHub) getJSON(ctx context.Context, client *http.Client, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("github %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("github %s: %s; body: %s", path, resp.Status, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("github %s: decode: %w", path, err)
	}
	return nil
}

func (g *GitHub) forget(deviceCode string) {
	g.mu.Lock()
	delete(g.pending, deviceCode)
	g.mu.Unlock()
}

// prune drops expired device codes. Callers hold g.mu.
func (g *GitHub) prune() {
	now := g.now()
	for k, v := range g.pending {
		if !v.Expiry.IsZero() && now.After(v.Expiry) {
			delete(g.pending, k)
		}
	}
}
