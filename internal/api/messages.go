package api

import "time"

// User is the public view of an account. Email and verification status are
// only filled in for the owner of the account.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email,omitempty"`
	DisplayName   string    `json:"display_name"`
	PhotoURL      string    `json:"photo_url,omitempty"`
	EmailVerified bool      `json:"email_verified,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	LastSignInAt  time.Time `json:"last_sign_in_at"`
}

// Post is a journal entry. ImageURL is a time-limited download link and is
// empty when the post has no image.
type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	AIReview   bool      `json:"ai_review"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Salt        []byte `json:"salt"`
	Verifier    []byte `json:"verifier"`
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
}

type GetSaltRequest struct {
	Email string `json:"email"`
}

type GetSaltResponse struct {
	Salt []byte `json:"salt"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Verifier []byte `json:"verifier"`
}

// AuthResponse is returned by every call that signs a user in.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutResponse struct{}

type RequestPasswordResetRequest struct {
	Email string `json:"email"`
}

type RequestPasswordResetResponse struct{}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Salt     []byte `json:"salt"`
	Verifier []byte `json:"verifier"`
}

type ResetPasswordResponse struct{}

type StartGitHubLoginRequest struct{}

type StartGitHubLoginResponse struct {
	DeviceCode      string    `json:"device_code"`
	UserCode        string    `json:"user_code"`
	VerificationURI string    `json:"verification_uri"`
	ExpiresAt       time.Time `json:"expires_at"`
	Interval        int64     `json:"interval"`
}

type CompleteGitHubLoginRequest struct {
	DeviceCode string `json:"device_code"`
}

type GetMeRequest struct{}

type UserResponse struct {
	User *User `json:"user"`
}

// UpdateProfileRequest changes the caller's display name and, when PhotoKey
// is set, the profile photo previously uploaded under that key.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name"`
	PhotoKey    string `json:"photo_key,omitempty"`
}

type RequestProfilePhotoUploadRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// UploadTicket is a presigned PUT for a single object.
type UploadTicket struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type DeleteAccountRequest struct{}

type DeleteAccountResponse struct{}

type CreatePostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	AIReview bool   `json:"ai_review"`
}

type GetPostRequest struct {
	ID string `json:"id"`
}

type UpdatePostRequest struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	AIReview bool   `json:"ai_review"`
}

type PostResponse struct {
	Post *Post `json:"post"`
}

type DeletePostRequest struct {
	ID string `json:"id"`
}

type DeletePostResponse struct{}

type ListPostsRequest struct{}

type ListPostsByAuthorRequest struct {
	AuthorID string `json:"author_id"`
}

type ListPostsResponse struct {
	Posts []*Post `json:"posts"`
}

type RequestPostImageUploadRequest struct {
	PostID      string `json:"post_id"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type AttachPostImageRequest struct {
	PostID string `json:"post_id"`
	Key    string `json:"key"`
}
