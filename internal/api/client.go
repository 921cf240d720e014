package api

import (
	"context"

	"google.golang.org/grpc"
)

// JournalServiceClient is the client stub for JournalService. Every call is
// sent with the JSON content-subtype.
type JournalServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewJournalServiceClient(cc grpc.ClientConnInterface) *JournalServiceClient {
	return &JournalServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *JournalServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *JournalServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *JournalServiceClient) GetSalt(ctx context.Context, in *GetSaltRequest, opts ...grpc.CallOption) (*GetSaltResponse, error) {
	return invoke[GetSaltResponse](ctx, c.cc, MethodGetSalt, in, opts)
}

func (c *JournalServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *JournalServiceClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *JournalServiceClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	return invoke[LogoutResponse](ctx, c.cc, MethodLogout, in, opts)
}

func (c *JournalServiceClient) RequestPasswordReset(ctx context.Context, in *RequestPasswordResetRequest, opts ...grpc.CallOption) (*RequestPasswordResetResponse, error) {
	return invoke[RequestPasswordResetResponse](ctx, c.cc, MethodRequestPasswordReset, in, opts)
}

func (c *JournalServiceClient) ResetPassword(ctx context.Context, in *ResetPasswordRequest, opts ...grpc.CallOption) (*ResetPasswordResponse, error) {
	return invoke[ResetPasswordResponse](ctx, c.cc, MethodResetPassword, in, opts)
}

func (c *JournalServiceClient) StartGitHubLogin(ctx context.Context, in *StartGitHubLoginRequest, opts ...grpc.CallOption) (*StartGitHubLoginResponse, error) {
	return invoke[StartGitHubLoginResponse](ctx, c.cc, MethodStartGitHubLogin, in, opts)
}

func (c *JournalServiceClient) CompleteGitHubLogin(ctx context.Context, in *CompleteGitHubLoginRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodCompleteGitHubLogin, in, opts)
}

func (c *JournalServiceClient) GetMe(ctx context.Context, in *GetMeRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, MethodGetMe, in, opts)
}

func (c *JournalServiceClient) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, MethodUpdateProfile, in, opts)
}

func (c *JournalServiceClient) RequestProfilePhotoUpload(ctx context.Context, in *RequestProfilePhotoUploadRequest, opts ...grpc.CallOption) (*UploadTicket, error) {
	return invoke[UploadTicket](ctx, c.cc, MethodRequestProfilePhotoUpload, in, opts)
}

func (c *JournalServiceClient) DeleteAccount(ctx context.Context, in *DeleteAccountRequest, opts ...grpc.CallOption) (*DeleteAccountResponse, error) {
	return invoke[DeleteAccountResponse](ctx, c.cc, MethodDeleteAccount, in, opts)
}

func (c *JournalServiceClient) CreatePost(ctx context.Context, in *CreatePostRequest, opts ...grpc.CallOption) (*PostResponse, error) {
	return invoke[PostResponse](ctx, c.cc, MethodCreatePost, in, opts)
}

func (c *JournalServiceClient) GetPost(ctx context.Context, in *GetPostRequest, opts ...grpc.CallOption) (*PostResponse, error) {
	return invoke[PostResponse](ctx, c.cc, MethodGetPost, in, opts)
}

func (c *JournalServiceClient) UpdatePost(ctx context.Context, in *UpdatePostRequest, opts ...grpc.CallOption) (*PostResponse, error) {
	return invoke[PostResponse](ctx, c.cc, MethodUpdatePost, in, opts)
}

func (c *JournalServiceClient) DeletePost(ctx context.Context, in *DeletePostRequest, opts ...grpc.CallOption) (*DeletePostResponse, error) {
	return invoke[DeletePostResponse](ctx, c.cc, MethodDeletePost, in, opts)
}

func (c *JournalServiceClient) ListPosts(ctx context.Context, in *ListPostsRequest, opts ...grpc.CallOption) (*ListPostsResponse, error) {
	return invoke[ListPostsResponse](ctx, c.cc, MethodListPosts, in, opts)
}

func (c *JournalServiceClient) ListPostsByAuthor(ctx context.Context, in *ListPostsByAuthorRequest, opts ...grpc.CallOption) (*ListPostsResponse, error) {
	return invoke[ListPostsResponse](ctx, c.cc, MethodListPostsByAuthor, in, opts)
}

func (c *JournalServiceClient) RequestPostImageUpload(ctx context.Context, in *RequestPostImageUploadRequest, opts ...grpc.CallOption) (*UploadTicket, error) {
	return invoke[UploadTicket](ctx, c.cc, MethodRequestPostImageUpload, in, opts)
}

func (c *JournalServiceClient) AttachPostImage(ctx context.Context, in *AttachPostImageRequest, opts ...grpc.CallOption) (*PostResponse, error) {
	return invoke[PostResponse](ctx, c.cc, MethodAttachPostImage, in, opts)
}
