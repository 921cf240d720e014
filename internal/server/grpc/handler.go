package grpc

import (
	"context"

	"github.com/dmitrijs2005/journal/internal/api"
	"github.com/dmitrijs2005/journal/internal/server/auth"
	"github.com/dmitrijs2005/journal/internal/server/models"
	"github.com/dmitrijs2005/journal/internal/server/services"
)

// Users is the account service as seen by the handlers.
type Users interface {
	Register(ctx context.Context, email, displayName string, salt, verifier []byte) (*models.User, error)
	GetSalt(ctx context.Context, email string) ([]byte, error)
	Login(ctx context.Context, email string, verifierCandidate []byte) (*services.Session, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.Session, error)
	Logout(ctx context.Context, refreshToken string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token string, salt, verifier []byte) error
	StartGitHubLogin(ctx context.Context) (*auth.DeviceCode, error)
	CompleteGitHubLogin(ctx context.Context, deviceCode string) (*services.Session, error)
	GetMe(ctx context.Context, userID string) (*models.User, error)
	PhotoURL(ctx context.Context, user *models.User) string
	RequestProfilePhotoUpload(ctx context.Context, userID, fileName, contentType string, size int64) (string, string, error)
	UpdateProfile(ctx context.Context, userID, displayName, photoKey string) (*models.User, error)
	DeleteAccount(ctx context.Context, userID string) error
}

// Posts is the post service as seen by the handlers.
type Posts interface {
	Create(ctx context.Context, userID, title, content string, aiReview bool) (*models.Post, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	Update(ctx context.Context, userID, id, title, content string, aiReview bool) (*models.Post, error)
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error)
	RequestImageUpload(ctx context.Context, userID, postID, contentType string, size int64) (string, string, error)
	AttachImage(ctx context.Context, userID, postID, key string) (*models.Post, error)
	ImageURL(ctx context.Context, post *models.Post) string
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {
	s.logger.Info(ctx, "Registration request")

	u, err := s.users.Register(ctx, req.Email, req.DisplayName, req.Salt, req.Verifier)
	if err != nil {
		return nil, err
	}
	return &api.RegisterResponse{UserID: u.ID}, nil
}

func (s *GRPCServer) GetSalt(ctx context.Context, req *api.GetSaltRequest) (*api.GetSaltResponse, error) {
	salt, err := s.users.GetSalt(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	return &api.GetSaltResponse{Salt: salt}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.AuthResponse, error) {
	sess, err := s.users.Login(ctx, req.Email, req.Verifier)
	if err != nil {
		return nil, err
	}
	return s.authResponse(ctx, sess), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.AuthResponse, error) {
	sess, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}
	return s.authResponse(ctx, sess), nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *api.LogoutRequest) (*api.LogoutResponse, error) {
	if err := s.users.Logout(ctx, req.RefreshToken); err != nil {
		return nil, err
	}
	return &api.LogoutResponse{}, nil
}

func (s *GRPCServer) RequestPasswordReset(ctx context.Context, req *api.RequestPasswordResetRequest) (*api.RequestPasswordResetResponse, error) {
	if err := s.users.RequestPasswordReset(ctx, req.Email); err != nil {
		return nil, err
	}
	return &api.RequestPasswordResetResponse{}, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *api.ResetPasswordRequest) (*api.ResetPasswordResponse, error) {
	if err := s.users.ResetPassword(ctx, req.Token, req.Salt, req.Verifier); err != nil {
		return nil, err
	}
	return &api.ResetPasswordResponse{}, nil
}

func (s *GRPCServer) StartGitHubLogin(ctx context.Context, req *api.StartGitHubLoginRequest) (*api.StartGitHubLoginResponse, error) {
	code, err := s.users.StartGitHubLogin(ctx)
	if err != nil {
		return nil, err
	}
	return &api.StartGitHubLoginResponse{
		DeviceCode:      code.DeviceCode,
		UserCode:        code.UserCode,
		VerificationURI: code.VerificationURI,
		ExpiresAt:       code.ExpiresAt,
		Interval:        code.Interval,
	}, nil
}

func (s *GRPCServer) CompleteGitHubLogin(ctx context.Context, req *api.CompleteGitHubLoginRequest) (*api.AuthResponse, error) {
	sess, err := s.users.CompleteGitHubLogin(ctx, req.DeviceCode)
	if err != nil {
		return nil, err
	}
	return s.authResponse(ctx, sess), nil
}

func (s *GRPCServer) GetMe(ctx context.Context, req *api.GetMeRequest) (*api.UserResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetMe(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &api.UserResponse{User: s.toUser(ctx, u)}, nil
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *api.UpdateProfileRequest) (*api.UserResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.users.UpdateProfile(ctx, userID, req.DisplayName, req.PhotoKey)
	if err != nil {
		return nil, err
	}
	return &api.UserResponse{User: s.toUser(ctx, u)}, nil
}

func (s *GRPCServer) RequestProfilePhotoUpload(ctx context.Context, req *api.RequestProfilePhotoUploadRequest) (*api.UploadTicket, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	key, url, err := s.users.RequestProfilePhotoUpload(ctx, userID, req.FileName, req.ContentType, req.Size)
	if err != nil {
		return nil, err
	}
	return &api.UploadTicket{Key: key, URL: url}, nil
}

func (s *GRPCServer) DeleteAccount(ctx context.Context, req *api.DeleteAccountRequest) (*api.DeleteAccountResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.users.DeleteAccount(ctx, userID); err != nil {
		return nil, err
	}
	return &api.DeleteAccountResponse{}, nil
}

func (s *GRPCServer) CreatePost(ctx context.Context, req *api.CreatePostRequest) (*api.PostResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.posts.Create(ctx, userID, req.Title, req.Content, req.AIReview)
	if err != nil {
		return nil, err
	}
	return &api.PostResponse{Post: s.toPost(ctx, p)}, nil
}

func (s *GRPCServer) GetPost(ctx context.Context, req *api.GetPostRequest) (*api.PostResponse, error) {
	p, err := s.posts.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &api.PostResponse{Post: s.toPost(ctx, p)}, nil
}

func (s *GRPCServer) UpdatePost(ctx context.Context, req *api.UpdatePostRequest) (*api.PostResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.posts.Update(ctx, userID, req.ID, req.Title, req.Content, req.AIReview)
	if err != nil {
		return nil, err
	}
	return &api.PostResponse{Post: s.toPost(ctx, p)}, nil
}

func (s *GRPCServer) DeletePost(ctx context.Context, req *api.DeletePostRequest) (*api.DeletePostResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.posts.Delete(ctx, userID, req.ID); err != nil {
		return nil, err
	}
	return &api.DeletePostResponse{}, nil
}

func (s *GRPCServer) ListPosts(ctx context.Context, req *api.ListPostsRequest) (*api.ListPostsResponse, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}
	return &api.ListPostsResponse{Posts: s.toPosts(ctx, posts)}, nil
}

func (s *GRPCServer) ListPostsByAuthor(ctx context.Context, req *api.ListPostsByAuthorRequest) (*api.ListPostsResponse, error) {
	posts, err := s.posts.ListByAuthor(ctx, req.AuthorID)
	if err != nil {
		return nil, err
	}
	return &api.ListPostsResponse{Posts: s.toPosts(ctx, posts)}, nil
}

func (s *GRPCServer) RequestPostImageUpload(ctx context.Context, req *api.RequestPostImageUploadRequest) (*api.UploadTicket, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	key, url, err := s.posts.RequestImageUpload(ctx, userID, req.PostID, req.ContentType, req.Size)
	if err != nil {
		return nil, err
	}
	return &api.UploadTicket{Key: key, URL: url}, nil
}

func (s *GRPCServer) AttachPostImage(ctx context.Context, req *api.AttachPostImageRequest) (*api.PostResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.posts.AttachImage(ctx, userID, req.PostID, req.Key)
	if err != nil {
		return nil, err
	}
	return &api.PostResponse{Post: s.toPost(ctx, p)}, nil
}

func (s *GRPCServer) authResponse(ctx context.Context, sess *services.Session) *api.AuthResponse {
	return &api.AuthResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		User:         s.toUser(ctx, sess.User),
	}
}

// toUser is the owner's view of an account.
func (s *GRPCServer) toUser(ctx context.Context, u *models.User) *api.User {
	return &api.User{
		ID:            u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		PhotoURL:      s.users.PhotoURL(ctx, u),
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		LastSignInAt:  u.LastSignInAt,
	}
}

func (s *GRPCServer) toPost(ctx context.Context, p *models.Post) *api.Post {
	return &api.Post{
		ID:         p.ID,
		Title:      p.Title,
		Content:    p.Content,
		AuthorID:   p.AuthorID,
		AuthorName: p.AuthorName,
		AIReview:   p.AIReview,
		ImageURL:   s.posts.ImageURL(ctx, p),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func (s *GRPCServer) toPosts(ctx context.Context, posts []*models.Post) []*api.Post {
	out := make([]*api.Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, s.toPost(ctx, p))
	}
	return out
}
