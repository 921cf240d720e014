package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/journal/internal/api"
	"github.com/dmitrijs2005/journal/internal/common"
	"github.com/dmitrijs2005/journal/internal/filex"
	"github.com/dmitrijs2005/journal/internal/logging"
)

// UnknownAuthorName is shown for accounts that have not posted yet.
const UnknownAuthorName = "User"

// ProfileClient is the part of the backend client used by the profile views.
type ProfileClient interface {
	GetMe(ctx context.Context) (*api.User, error)
	ListPostsByAuthor(ctx context.Context, authorID string) ([]*api.Post, error)
	UpdateProfile(ctx context.Context, displayName, photoKey string) (*api.User, error)
	RequestProfilePhotoUpload(ctx context.Context, fileName, contentType string, size int64) (*api.UploadTicket, error)
	DeleteAccount(ctx context.Context) error
}

// Profile is what a profile page shows. For other people's profiles only
// UserID, DisplayName and Posts are filled in.
type Profile struct {
	UserID        string
	DisplayName   string
	PhotoURL      string
	Email         string
	EmailVerified bool
	CreatedAt     time.Time
	LastSignInAt  time.Time
	Self          bool
	Posts         []*api.Post
}

// ProfileService loads profiles and applies profile settings.
type ProfileService struct {
	client   ProfileClient
	sessions Sessions
	uploader Uploader
	log      logging.Logger
	inFlight
}

// NewProfileService wires a ProfileService.
func NewProfileService(client ProfileClient, sessions Sessions, uploader Uploader, l logging.Logger) *ProfileService {
	return &ProfileService{client: client, sessions: sessions, uploader: uploader, log: l.With("module", "profiles")}
}

// Get shows the profile of uid, or of the signed-in user when uid is empty
// or their own id.
func (s *ProfileService) Get(ctx context.Context, uid string) (*Profile, error) {
	sess, err := current(ctx, s.sessions)
	if err != nil {
		return nil, err
	}
	if uid == "" || uid == sess.UserID {
		return s.self(ctx)
	}
	return s.other(ctx, uid)
}

func (s *ProfileService) self(ctx context.Context) (*Profile, error) {
	u, err := s.client.GetMe(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.postsBy(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		UserID:        u.ID,
		DisplayName:   u.DisplayName,
		PhotoURL:      u.PhotoURL,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		LastSignInAt:  u.LastSignInAt,
		Self:          true,
		Posts:         posts,
	}, nil
}

// other builds the public view. There is no user directory, so the name
// comes from the newest post's author snapshot.
func (s *ProfileService) other(ctx context.Context, uid string) (*Profile, error) {
	posts, err := s.postsBy(ctx, uid)
	if err != nil {
		return nil, err
	}
	name := UnknownAuthorName
	if len(posts) > 0 && posts[0].AuthorName != "" {
		name = posts[0].AuthorName
	}
	return &Profile{UserID: uid, DisplayName: name, Posts: posts}, nil
}

// postsBy lists the author's posts newest first. The server returns them
// unordered.
func (s *ProfileService) postsBy(ctx context.Context, uid string) ([]*api.Post, error) {
	posts, err := s.client.ListPostsByAuthor(ctx, uid)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

// Rename changes the signed-in user's display name.
func (s *ProfileService) Rename(ctx context.Context, displayName string) (*api.User, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	if _, err := current(ctx, s.sessions); err != nil {
		return nil, err
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, common.WithReason(fmt.Errorf("%w: display name is required", common.ErrorValidation), common.ReasonProfileInvalidArgument)
	}
	return s.client.UpdateProfile(ctx, displayName, "")
}

// ChangePhoto uploads img and makes it the profile photo. The server drops
// the previous photo.
func (s *ProfileService) ChangePhoto(ctx context.Context, img *filex.Image) (*api.User, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	sess, err := current(ctx, s.sessions)
	if err != nil {
		return nil, err
	}
	if err := validateImage(img); err != nil {
		return nil, err
	}

	ticket, err := s.client.RequestProfilePhotoUpload(ctx, img.Name, img.ContentType, img.Size())
	if err != nil {
		return nil, err
	}
	if err := s.uploader.Put(ctx, ticket.URL, img.ContentType, img.Data); err != nil {
		return nil, fmt.Errorf("photo upload: %w", err)
	}
	return s.client.UpdateProfile(ctx, sess.DisplayName, ticket.Key)
}

// DeleteAccount removes the account with its posts and images.
func (s *ProfileService) DeleteAccount(ctx context.Context) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	if _, err := current(ctx, s.sessions); err != nil {
		return err
	}
	return s.client.DeleteAccount(ctx)
}
