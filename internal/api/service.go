package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "journal.JournalService"

const (
	MethodPing                      = "Ping"
	MethodRegister                  = "Register"
	MethodGetSalt                   = "GetSalt"
	MethodLogin                     = "Login"
	MethodRefreshToken              = "RefreshToken"
	MethodLogout                    = "Logout"
	MethodRequestPasswordReset      = "RequestPasswordReset"
	MethodResetPassword             = "ResetPassword"
	MethodStartGitHubLogin          = "StartGitHubLogin"
	MethodCompleteGitHubLogin       = "CompleteGitHubLogin"
	MethodGetMe                     = "GetMe"
	MethodUpdateProfile             = "UpdateProfile"
	MethodRequestProfilePhotoUpload = "RequestProfilePhotoUpload"
	MethodDeleteAccount             = "DeleteAccount"
	MethodCreatePost                = "CreatePost"
	MethodGetPost                   = "GetPost"
	MethodUpdatePost                = "UpdatePost"
	MethodDeletePost                = "DeletePost"
	MethodListPosts                 = "ListPosts"
	MethodListPostsByAuthor         = "ListPostsByAuthor"
	MethodRequestPostImageUpload    = "RequestPostImageUpload"
	MethodAttachPostImage           = "AttachPostImage"
)

// FullMethod returns the gRPC path of a method, e.g. /journal.JournalService/Ping.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// PublicMethods can be called without an access token.
var PublicMethods = map[string]struct{}{
	FullMethod(MethodPing):                 {},
	FullMethod(MethodRegister):             {},
	FullMethod(MethodGetSalt):              {},
	FullMethod(MethodLogin):                {},
	FullMethod(MethodRefreshToken):         {},
	FullMethod(MethodLogout):               {},
	FullMethod(MethodRequestPasswordReset): {},
	FullMethod(MethodResetPassword):        {},
	FullMethod(MethodStartGitHubLogin):     {},
	FullMethod(MethodCompleteGitHubLogin):  {},
}

type JournalServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error)
	Login(context.Context, *LoginRequest) (*AuthResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*AuthResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	RequestPasswordReset(context.Context, *RequestPasswordResetRequest) (*RequestPasswordResetResponse, error)
	ResetPassword(context.Context, *ResetPasswordRequest) (*ResetPasswordResponse, error)
	StartGitHubLogin(context.Context, *StartGitHubLoginRequest) (*StartGitHubLoginResponse, error)
	CompleteGitHubLogin(context.Context, *CompleteGitHubLoginRequest) (*AuthResponse, error)
	GetMe(context.Context, *GetMeRequest) (*UserResponse, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*UserResponse, error)
	RequestProfilePhotoUpload(context.Context, *RequestProfilePhotoUploadRequest) (*UploadTicket, error)
	DeleteAccount(context.Context, *DeleteAccountRequest) (*DeleteAccountResponse, error)
	CreatePost(context.Context, *CreatePostRequest) (*PostResponse, error)
	GetPost(context.Context, *GetPostRequest) (*PostResponse, error)
	UpdatePost(context.Context, *UpdatePostRequest) (*PostResponse, error)
	DeletePost(context.Context, *DeletePostRequest) (*DeletePostResponse, error)
	ListPosts(context.Context, *ListPostsRequest) (*ListPostsResponse, error)
	ListPostsByAuthor(context.Context, *ListPostsByAuthorRequest) (*ListPostsResponse, error)
	RequestPostImageUpload(context.Context, *RequestPostImageUploadRequest) (*UploadTicket, error)
	AttachPostImage(context.Context, *AttachPostImageRequest) (*PostResponse, error)
}

// ServiceDesc describes JournalService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*JournalServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, JournalServiceServer.Ping),
		unary(MethodRegister, JournalServiceServer.Register),
		unary(MethodGetSalt, JournalServiceServer.GetSalt),
		unary(MethodLogin, JournalServiceServer.Login),
		unary(MethodRefreshToken, JournalServiceServer.RefreshToken),
		unary(MethodLogout, JournalServiceServer.Logout),
		unary(MethodRequestPasswordReset, JournalServiceServer.RequestPasswordReset),
		unary(MethodResetPassword, JournalServiceServer.ResetPassword),
		unary(MethodStartGitHubLogin, JournalServiceServer.StartGitHubLogin),
		unary(MethodCompleteGitHubLogin, JournalServiceServer.CompleteGitHubLogin),
		unary(MethodGetMe, JournalServiceServer.GetMe),
		unary(MethodUpdateProfile, JournalServiceServer.UpdateProfile),
		unary(MethodRequestProfilePhotoUpload, JournalServiceServer.RequestProfilePhotoUpload),
		unary(MethodDeleteAccount, JournalServiceServer.DeleteAccount),
		unary(MethodCreatePost, JournalServiceServer.CreatePost),
		unary(MethodGetPost, JournalServiceServer.GetPost),
		unary(MethodUpdatePost, JournalServiceServer.UpdatePost),
		unary(MethodDeletePost, JournalServiceServer.DeletePost),
		unary(MethodListPosts, JournalServiceServer.ListPosts),
		unary(MethodListPostsByAuthor, JournalServiceServer.ListPostsByAuthor),
		unary(MethodRequestPostImageUpload, JournalServiceServer.RequestPostImageUpload),
		unary(MethodAttachPostImage, JournalServiceServer.AttachPostImage),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "internal/api/service.go",
}

func RegisterJournalServiceServer(s grpc.ServiceRegistrar, srv JournalServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req, Resp any](method string, call func(JournalServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(JournalServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(method),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(JournalServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// UnimplementedJournalServiceServer answers every method with
// codes.Unimplemented. Embed it to stay forward compatible.
type UnimplementedJournalServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedJournalServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, unimplemented(MethodPing)
}
func (UnimplementedJournalServiceServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, unimplemented(MethodRegister)
}
func (UnimplementedJournalServiceServer) GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error) {
	return nil, unimplemented(MethodGetSalt)
}
func (UnimplementedJournalServiceServer) Login(context.Context, *LoginRequest) (*AuthResponse, error) {
	return nil, unimplemented(MethodLogin)
}
func (UnimplementedJournalServiceServer) RefreshToken(context.Context, *RefreshTokenRequest) (*AuthResponse, error) {
	return nil, unimplemented(MethodRefreshToken)
}
func (UnimplementedJournalServiceServer) Logout(context.Context, *LogoutRequest) (*LogoutResponse, error) {
	return nil, unimplemented(MethodLogout)
}
func (UnimplementedJournalServiceServer) RequestPasswordReset(context.Context, *RequestPasswordResetRequest) (*RequestPasswordResetResponse, error) {
	return nil, unimplemented(MethodRequestPasswordReset)
}
func (UnimplementedJournalServiceServer) ResetPassword(context.Context, *ResetPasswordRequest) (*ResetPasswordResponse, error) {
	return nil, unimplemented(MethodResetPassword)
}
func (UnimplementedJournalServiceServer) StartGitHubLogin(context.Context, *StartGitHubLoginRequest) (*StartGitHubLoginResponse, error) {
	return nil, unimplemented(MethodStartGitHubLogin)
}
func (UnimplementedJournalServiceServer) CompleteGitHubLogin(context.Context, *CompleteGitHubLoginRequest) (*AuthResponse, error) {
	return nil, unimplemented(MethodCompleteGitHubLogin)
}
func (UnimplementedJournalServiceServer) GetMe(context.Context, *GetMeRequest) (*UserResponse, error) {
	return nil, unimplemented(MethodGetMe)
}
func (UnimplementedJournalServiceServer) UpdateProfile(context.Context, *UpdateProfileRequest) (*UserResponse, error) {
	return nil, unimplemented(MethodUpdateProfile)
}
func (UnimplementedJournalServiceServer) RequestProfilePhotoUpload(context.Context, *RequestProfilePhotoUploadRequest) (*UploadTicket, error) {
	return nil, unimplemented(MethodRequestProfilePhotoUpload)
}
func (UnimplementedJournalServiceServer) DeleteAccount(context.Context, *DeleteAccountRequest) (*DeleteAccountResponse, error) {
	return nil, unimplemented(MethodDeleteAccount)
}
func (UnimplementedJournalServiceServer) CreatePost(context.Context, *CreatePostRequest) (*PostResponse, error) {
	return nil, unimplemented(MethodCreatePost)
}
func (UnimplementedJournalServiceServer) GetPost(context.Context, *GetPostRequest) (*PostResponse, error) {
	return nil, unimplemented(MethodGetPost)
}
func (UnimplementedJournalServiceServer) UpdatePost(context.Context, *UpdatePostRequest) (*PostResponse, error) {
	return nil, unimplemented(MethodUpdatePost)
}
func (UnimplementedJournalServiceServer) DeletePost(context.Context, *DeletePostRequest) (*DeletePostResponse, error) {
	return nil, unimplemented(MethodDeletePost)
}
func (UnimplementedJournalServiceServer) ListPosts(context.Context, *ListPostsRequest) (*ListPostsResponse, error) {
	return nil, unimplemented(MethodListPosts)
}
func (UnimplementedJournalServiceServer) ListPostsByAuthor(context.Context, *ListPostsByAuthorRequest) (*ListPostsResponse, error) {
	return nil, unimplemented(MethodListPostsByAuthor)
}
func (UnimplementedJournalServiceServer) RequestPostImageUpload(context.Context, *RequestPostImageUploadRequest) (*UploadTicket, error) {
	return nil, unimplemented(MethodRequestPostImageUpload)
}
func (UnimplementedJournalServiceServer) AttachPostImage(context.Context, *AttachPostImageRequest) (*PostResponse, error) {
	return nil, unimplemented(MethodAttachPostImage)
}
