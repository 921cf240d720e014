package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/journal/internal/api"
	"github.com/dmitrijs2005/journal/internal/common"
	"github.com/dmitrijs2005/journal/internal/filex"
	"github.com/dmitrijs2005/journal/internal/logging"
)

// ExcerptLength is how many characters of a body the post list shows.
const ExcerptLength = 150

// PostClient is the part of the backend client used by the post views.
type PostClient interface {
	CreatePost(ctx context.Context, title, content string, aiReview bool) (*api.Post, error)
	GetPost(ctx context.Context, id string) (*api.Post, error)
	UpdatePost(ctx context.Context, id, title, content string, aiReview bool) (*api.Post, error)
	DeletePost(ctx context.Context, id string) error
	ListPosts(ctx context.Context) ([]*api.Post, error)
	RequestPostImageUpload(ctx context.Context, postID, contentType string, size int64) (*api.UploadTicket, error)
	AttachPostImage(ctx context.Context, postID, key string) (*api.Post, error)
}

// PostInput is what the new-post and edit-post forms submit. Image is
// optional; on edit it replaces the current image.
type PostInput struct {
	Title    string
	Content  string
	AIReview bool
	Image    *filex.Image
}

// PostService runs the post screens against the backend. It allows one
// operation at a time.
type PostService struct {
	client   PostClient
	sessions Sessions
	uploader Uploader
	log      logging.Logger
	inFlight
}

// NewPostService wires a PostService.
func NewPostService(client PostClient, sessions Sessions, uploader Uploader, l logging.Logger) *PostService {
	return &PostService{client: client, sessions: sessions, uploader: uploader, log: l.With("module", "posts")}
}

// Create saves a new post and then, if one was given, its image. The two
// steps are not atomic: when the upload fails the post stays and the error
// wraps ErrImageNotSaved.
func (s *PostService) Create(ctx context.Context, in PostInput) (*api.Post, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	if _, err := current(ctx, s.sessions); err != nil {
		return nil, err
	}
	title, content, err := in.validate()
	if err != nil {
		return nil, err
	}

	p, err := s.client.CreatePost(ctx, title, content, in.AIReview)
	if err != nil {
		return nil, err
	}
	if in.Image == nil {
		return p, nil
	}
	return s.attach(ctx, p, in.Image)
}

// Get fetches any post for reading.
func (s *PostService) Get(ctx context.Context, id string) (*api.Post, error) {
	if _, err := current(ctx, s.sessions); err != nil {
		return nil, err
	}
	return s.client.GetPost(ctx, id)
}

// Load fetches a post for editing. Only its author may edit it.
func (s *PostService) Load(ctx context.Context, id string) (*api.Post, error) {
	sess, err := current(ctx, s.sessions)
	if err != nil {
		return nil, err
	}
	p, err := s.client.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authored(sess.UserID, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update submits the edit form for p, as previously loaded. The author
// check runs against p before anything is sent.
func (s *PostService) Update(ctx context.Context, p *api.Post, in PostInput) (*api.Post, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	sess, err := current(ctx, s.sessions)
	if err != nil {
		return nil, err
	}
	if err := authored(sess.UserID, p); err != nil {
		return nil, err
	}
	title, content, err := in.validate()
	if err != nil {
		return nil, err
	}

	updated, err := s.client.UpdatePost(ctx, p.ID, title, content, in.AIReview)
	if err != nil {
		return nil, err
	}
	if in.Image == nil {
		return updated, nil
	}
	return s.attach(ctx, updated, in.Image)
}

// Delete removes p. The server deletes the record first and the image
// afterwards, so a failed image cleanup never resurrects the post.
func (s *PostService) Delete(ctx context.Context, p *api.Post) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	sess, err := current(ctx, s.sessions)
	if err != nil {
		return err
	}
	if err := authored(sess.UserID, p); err != nil {
		return err
	}
	return s.client.DeletePost(ctx, p.ID)
}

// List returns every post, newest first.
func (s *PostService) List(ctx context.Context) ([]*api.Post, error) {
	if _, err := current(ctx, s.sessions); err != nil {
		return nil, err
	}
	return s.client.ListPosts(ctx)
}

func (s *PostService) attach(ctx context.Context, p *api.Post, img *filex.Image) (*api.Post, error) {
	ticket, err := s.client.RequestPostImageUpload(ctx, p.ID, img.ContentType, img.Size())
	if err != nil {
		return p, fmt.Errorf("%w: %w", ErrImageNotSaved, err)
	}
	if err := s.uploader.Put(ctx, ticket.URL, img.ContentType, img.Data); err != nil {
		s.log.Warn(ctx, "image upload failed", "post", p.ID, "err", err)
		return p, fmt.Errorf("%w: %w", ErrImageNotSaved, err)
	}
	withImage, err := s.client.AttachPostImage(ctx, p.ID, ticket.Key)
	if err != nil {
		return p, fmt.Errorf("%w: %w", ErrImageNotSaved, err)
	}
	return withImage, nil
}

func (in PostInput) validate() (title, content string, err error) {
	title = strings.TrimSpace(in.Title)
	content = strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return "", "", common.WithReason(fmt.Errorf("%w: title and content are required", common.ErrorValidation), common.ReasonPostInvalidArgument)
	}
	if in.Image != nil {
		if err := validateImage(in.Image); err != nil {
			return "", "", err
		}
	}
	return title, content, nil
}

func authored(userID string, p *api.Post) error {
	if p == nil || p.AuthorID != userID {
		return common.WithReason(fmt.Errorf("%w: only the author can change this post", common.ErrorForbidden), common.ReasonPostPermissionDenied)
	}
	return nil
}

// Excerpt shortens a post body for list views: bodies longer than
// ExcerptLength characters are cut there and marked with "...".
func Excerpt(body string) string {
	r := []rune(body)
	if len(r) <= ExcerptLength {
		return body
	}
	return string(r[:ExcerptLength]) + "..."
}
