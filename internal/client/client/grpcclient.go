package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/journal/internal/api"
	"github.com/dmitrijs2005/journal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/journal/internal/client/session"
	"github.com/dmitrijs2005/journal/internal/common"
	"github.com/dmitrijs2005/journal/internal/cryptox"
	"github.com/dmitrijs2005/journal/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	grpcmd "google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// KeyRefreshToken is the metadata key holding the refresh token between runs.
const KeyRefreshToken = "journal_refresh_token"

// AuthStateListener is notified whenever the signed-in identity changes:
// on sign in, sign out, token refresh and session restore.
type AuthStateListener interface {
	OnAuthStateChanged(ctx context.Context, id *session.Identity)
}

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	dialOpts    []grpc.DialOption
	conn        *grpc.ClientConn
	client      *api.JournalServiceClient
	store       metadata.Repository
	listener    AuthStateListener
	log         logging.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

type Option func(*GRPCClient)

func WithLogger(l logging.Logger) Option {
	return func(c *GRPCClient) { c.log = l.With("module", "client") }
}

func WithListener(l AuthStateListener) Option {
	return func(c *GRPCClient) { c.listener = l }
}

// WithTimeout bounds calls whose context carries no deadline of its own.
// Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *GRPCClient) { c.timeout = d }
}

// WithDialOptions adds options to the connection, e.g. a custom dialer.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *GRPCClient) { c.dialOpts = append(c.dialOpts, opts...) }
}

func NewGRPCClient(endpointURL string, store metadata.Repository, opts ...Option) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, store: store, log: logging.Nop{}}
	for _, o := range opts {
		o(c)
	}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *GRPCClient) InitGRPCClient() error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(c.timeoutInterceptor, c.accessTokenInterceptor),
	}, c.dialOpts...)

	conn, err := grpc.NewClient(c.endpointURL, opts...)
	if err != nil {
		return err
	}
	c.conn = conn
	c.client = api.NewJournalServiceClient(conn)
	return nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := grpcmd.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = grpcmd.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return grpcmd.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) timeoutInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if _, has := ctx.Deadline(); !has && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// accessTokenInterceptor attaches the access token to private calls. When
// the server reports it expired, the tokens are rotated once and the call
// is repeated.
func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if _, public := api.PublicMethods[method]; public {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	access, refresh := c.tokens()
	if access == "" {
		if refresh == "" {
			return status.Error(codes.Unauthenticated, ErrNotSignedIn.Error())
		}
		if err := c.refresh(ctx, refresh); err != nil {
			return err
		}
		access, _ = c.tokens()
		return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	}

	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if status.Code(err) != codes.Unauthenticated || api.Reason(err) != common.ReasonTokenExpired {
		return err
	}
	if refresh == "" {
		return err
	}

	c.log.Debug(ctx, "access token expired, refreshing", "method", method)
	if rerr := c.refresh(ctx, refresh); rerr != nil {
		return rerr
	}

	access, _ = c.tokens()
	return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
}

func (c *GRPCClient) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// refresh rotates the token pair. A rejected refresh token signs the user
// out.
func (c *GRPCClient) refresh(ctx context.Context, refreshToken string) error {
	resp, err := c.client.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		if status.Code(err) == codes.Unauthenticated {
			c.signedOut(ctx)
		}
		return err
	}
	c.signedIn(ctx, resp)
	return nil
}

func (c *GRPCClient) signedIn(ctx context.Context, resp *api.AuthResponse) {
	c.mu.Lock()
	c.accessToken = resp.AccessToken
	c.refreshToken = resp.RefreshToken
	c.mu.Unlock()

	if err := c.store.Set(ctx, KeyRefreshToken, resp.RefreshToken); err != nil {
		c.log.Warn(ctx, "saving refresh token", "err", err)
	}
	c.notify(ctx, IdentityOf(resp.User))
}

func (c *GRPCClient) signedOut(ctx context.Context) {
	c.mu.Lock()
	c.accessToken = ""
	c.refreshToken = ""
	c.mu.Unlock()

	if err := c.store.Delete(ctx, KeyRefreshToken); err != nil {
		c.log.Warn(ctx, "removing refresh token", "err", err)
	}
	c.notify(ctx, nil)
}

func (c *GRPCClient) notify(ctx context.Context, id *session.Identity) {
	if c.listener != nil {
		c.listener.OnAuthStateChanged(ctx, id)
	}
}

// IdentityOf converts the wire user. A nil user is no identity.
func IdentityOf(u *api.User) *session.Identity {
	if u == nil {
		return nil
	}
	return &session.Identity{
		UserID:        u.ID,
		DisplayName:   u.DisplayName,
		PhotoURL:      u.PhotoURL,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		LastSignInAt:  u.LastSignInAt,
	}
}

// Restore signs back in with the refresh token saved by a previous run and
// always reports the outcome to the listener. It returns ErrNotSignedIn when
// there is nothing to restore or the server rejects the saved token.
func (c *GRPCClient) Restore(ctx context.Context) error {
	token, ok, err := c.store.Get(ctx, KeyRefreshToken)
	if err != nil {
		c.log.Warn(ctx, "reading refresh token", "err", err)
	}
	if err != nil || !ok || token == "" {
		c.notify(ctx, nil)
		return ErrNotSignedIn
	}

	if err := c.refresh(ctx, token); err != nil {
		if status.Code(err) == codes.Unauthenticated {
			return ErrNotSignedIn
		}
		// Keep the token so the next private call can retry the refresh.
		c.mu.Lock()
		c.refreshToken = token
		c.mu.Unlock()
		return mapError(err)
	}
	return nil
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	resp, err := c.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

// Register creates an account. The password never leaves the process: only
// a random salt and the verifier derived from it are sent.
func (c *GRPCClient) Register(ctx context.Context, email, displayName string, password []byte) error {
	salt, verifier := cryptox.NewCredentials(password)
	_, err := c.client.Register(ctx, &api.RegisterRequest{
		Email:       email,
		DisplayName: displayName,
		Salt:        salt,
		Verifier:    verifier,
	})
	return mapError(err)
}

func (c *GRPCClient) Login(ctx context.Context, email string, password []byte) error {
	salt, err := c.client.GetSalt(ctx, &api.GetSaltRequest{Email: email})
	if err != nil {
		return mapError(err)
	}

	resp, err := c.client.Login(ctx, &api.LoginRequest{
		Email:    email,
		Verifier: cryptox.VerifierFor(password, salt.Salt),
	})
	if err != nil {
		return mapError(err)
	}

	c.signedIn(ctx, resp)
	return nil
}

// Logout revokes the refresh token on the server and forgets the tokens
// locally. A failed revocation is logged and does not keep the user in.
func (c *GRPCClient) Logout(ctx context.Context) error {
	_, refresh := c.tokens()
	if refresh != "" {
		if _, err := c.client.Logout(ctx, &api.LogoutRequest{RefreshToken: refresh}); err != nil {
			c.log.Warn(ctx, "revoking refresh token", "err", err)
		}
	}
	c.signedOut(ctx)
	return nil
}

func (c *GRPCClient) RequestPasswordReset(ctx context.Context, email string) error {
	_, err := c.client.RequestPasswordReset(ctx, &api.RequestPasswordResetRequest{Email: email})
	return mapError(err)
}

func (c *GRPCClient) ResetPassword(ctx context.Context, token string, password []byte) error {
	salt, verifier := cryptox.NewCredentials(password)
	_, err := c.client.ResetPassword(ctx, &api.ResetPasswordRequest{
		Token:    strings.TrimSpace(token),
		Salt:     salt,
		Verifier: verifier,
	})
	return mapError(err)
}

func (c *GRPCClient) StartGitHubLogin(ctx context.Context) (*api.StartGitHubLoginResponse, error) {
	resp, err := c.client.StartGitHubLogin(ctx, &api.StartGitHubLoginRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

// CompleteGitHubLogin blocks until the user authorizes the device code on
// GitHub. Give ctx a deadline matching the code's expiry.
func (c *GRPCClient) CompleteGitHubLogin(ctx context.Context, deviceCode string) error {
	resp, err := c.client.CompleteGitHubLogin(ctx, &api.CompleteGitHubLoginRequest{DeviceCode: deviceCode})
	if err != nil {
		return mapError(err)
	}
	c.signedIn(ctx, resp)
	return nil
}

// GetMe reloads the signed-in account from the server.
func (c *GRPCClient) GetMe(ctx context.Context) (*api.User, error) {
	resp, err := c.client.GetMe(ctx, &api.GetMeRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.User, nil
}

// UpdateProfile changes the display name and optionally the photo, then
// republishes the identity so the session shows the new values.
func (c *GRPCClient) UpdateProfile(ctx context.Context, displayName, photoKey string) (*api.User, error) {
	resp, err := c.client.UpdateProfile(ctx, &api.UpdateProfileRequest{DisplayName: displayName, PhotoKey: photoKey})
	if err != nil {
		return nil, mapError(err)
	}
	c.notify(ctx, IdentityOf(resp.User))
	return resp.User, nil
}

func (c *GRPCClient) RequestProfilePhotoUpload(ctx context.Context, fileName, contentType string, size int64) (*api.UploadTicket, error) {
	resp, err := c.client.RequestProfilePhotoUpload(ctx, &api.RequestProfilePhotoUploadRequest{
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

// DeleteAccount removes the account and signs out.
func (c *GRPCClient) DeleteAccount(ctx context.Context) error {
	if _, err := c.client.DeleteAccount(ctx, &api.DeleteAccountRequest{}); err != nil {
		return mapError(err)
	}
	c.signedOut(ctx)
	return nil
}

func (c *GRPCClient) CreatePost(ctx context.Context, title, content string, aiReview bool) (*api.Post, error) {
	resp, err := c.client.CreatePost(ctx, &api.CreatePostRequest{Title: title, Content: content, AIReview: aiReview})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Post, nil
}

func (c *GRPCClient) GetPost(ctx context.Context, id string) (*api.Post, error) {
	resp, err := c.client.GetPost(ctx, &api.GetPostRequest{ID: id})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Post, nil
}

func (c *GRPCClient) UpdatePost(ctx context.Context, id, title, content string, aiReview bool) (*api.Post, error) {
	resp, err := c.client.UpdatePost(ctx, &api.UpdatePostRequest{ID: id, Title: title, Content: content, AIReview: aiReview})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Post, nil
}

func (c *GRPCClient) DeletePost(ctx context.Context, id string) error {
	_, err := c.client.DeletePost(ctx, &api.DeletePostRequest{ID: id})
	return mapError(err)
}

func (c *GRPCClient) ListPosts(ctx context.Context) ([]*api.Post, error) {
	resp, err := c.client.ListPosts(ctx, &api.ListPostsRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Posts, nil
}

func (c *GRPCClient) ListPostsByAuthor(ctx context.Context, authorID string) ([]*api.Post, error) {
	resp, err := c.client.ListPostsByAuthor(ctx, &api.ListPostsByAuthorRequest{AuthorID: authorID})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Posts, nil
}

func (c *GRPCClient) RequestPostImageUpload(ctx context.Context, postID, contentType string, size int64) (*api.UploadTicket, error) {
	resp, err := c.client.RequestPostImageUpload(ctx, &api.RequestPostImageUploadRequest{
		PostID:      postID,
		ContentType: contentType,
		Size:        size,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

func (c *GRPCClient) AttachPostImage(ctx context.Context, postID, key string) (*api.Post, error) {
	resp, err := c.client.AttachPostImage(ctx, &api.AttachPostImageRequest{PostID: postID, Key: key})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Post, nil
}
