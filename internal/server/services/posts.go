package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/journal/internal/common"
	"github.com/dmitrijs2005/journal/internal/server/blob"
	"github.com/dmitrijs2005/journal/internal/server/events"
	"github.com/dmitrijs2005/journal/internal/server/models"
	"github.com/dmitrijs2005/journal/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// PostService stores journal posts and their images. Only the author may
// change or delete a post.
type PostService struct {
	base
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blob.Store
	reviews     events.Publisher
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager, blobs blob.Store, reviews events.Publisher, opts ...Option) *PostService {
	return &PostService{
		base:        newBase("posts", opts),
		db:          db,
		repomanager: m,
		blobs:       blobs,
		reviews:     reviews,
	}
}

// Create stores a new post by userID. The author name is copied from the
// user's display name and never changes afterwards.
func (s *PostService) Create(ctx context.Context, userID, title, content string, aiReview bool) (*models.Post, error) {
	patch, err := newPatch(title, content, aiReview)
	if err != nil {
		return nil, err
	}

	author, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading author: %w", err)
	}

	now := s.now()
	post := &models.Post{
		ID:         uuid.NewString(),
		Title:      patch.Title,
		Content:    patch.Content,
		AuthorID:   author.ID,
		AuthorName: author.DisplayName,
		AIReview:   patch.AIReview,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repomanager.Posts(s.db).Create(ctx, post); err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}
	s.log.Info(ctx, "post created", "post_id", post.ID, "user_id", userID)

	if post.AIReview {
		s.requestReview(ctx, post)
	}
	return post, nil
}

// Get returns a single post.
func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	// Post ids are UUIDs; anything else cannot name a stored post.
	if uuid.Validate(id) != nil {
		return nil, common.WithReason(fmt.Errorf("post %q: %w", id, common.ErrorNotFound), common.ReasonPostNotFound)
	}
	post, err := s.repomanager.Posts(s.db).Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.WithReason(fmt.Errorf("post %s: %w", id, err), common.ReasonPostNotFound)
		}
		return nil, fmt.Errorf("error loading post: %w", err)
	}
	return post, nil
}

// Update replaces the title, content and review flag of userID's post.
func (s *PostService) Update(ctx context.Context, userID, id, title, content string, aiReview bool) (*models.Post, error) {
	patch, err := newPatch(title, content, aiReview)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}

	post, err := s.repomanager.Posts(s.db).Update(ctx, id, patch, s.now())
	if err != nil {
		return nil, fmt.Errorf("error updating post: %w", err)
	}

	if post.AIReview {
		s.requestReview(ctx, post)
	}
	return post, nil
}

// Delete removes userID's post, then its image best-effort. A failed image
// deletion does not bring the post back.
func (s *PostService) Delete(ctx context.Context, userID, id string) error {
	post, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repomanager.Posts(s.db).Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting post: %w", err)
	}
	s.log.Info(ctx, "post deleted", "post_id", id, "user_id", userID)

	if post.HasImage() {
		s.deleteImage(ctx, post.ImageKey)
	}
	return nil
}

// List returns every post, newest first.
func (s *PostService) List(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.repomanager.Posts(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, nil
}

// ListByAuthor returns authorID's posts in storage order.
func (s *PostService) ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	if authorID == "" {
		return nil, common.WithReason(fmt.Errorf("author id: %w", common.ErrorValidation), common.ReasonPostInvalidArgument)
	}
	if uuid.Validate(authorID) != nil {
		return []*models.Post{}, nil
	}
	posts, err := s.repomanager.Posts(s.db).ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, nil
}

// RequestImageUpload returns the key and a presigned PUT for the image of
// userID's post. The image is linked to the post by AttachImage.
func (s *PostService) RequestImageUpload(ctx context.Context, userID, postID, contentType string, size int64) (key, url string, err error) {
	if err := validateImage(contentType, size); err != nil {
		return "", "", err
	}
	post, err := s.owned(ctx, userID, postID)
	if err != nil {
		return "", "", err
	}

	key = blob.PostImageKey(post)
	url, err = s.blobs.PresignPut(ctx, key, contentType, size)
	if err != nil {
		return "", "", fmt.Errorf("error presigning upload: %w", err)
	}
	return key, url, nil
}

// AttachImage links an uploaded image to userID's post. A previous image
// stored under another key is deleted best-effort first.
func (s *PostService) AttachImage(ctx context.Context, userID, postID, key string) (*models.Post, error) {
	post, err := s.owned(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if key != blob.PostImageKey(post) {
		return nil, common.WithReason(fmt.Errorf("image key %q: %w", key, common.ErrorValidation), common.ReasonInvalidObjectKey)
	}

	if post.HasImage() && post.ImageKey != key {
		s.deleteImage(ctx, post.ImageKey)
	}

	now := s.now()
	if err := s.repomanager.Posts(s.db).SetImage(ctx, postID, key, now); err != nil {
		return nil, fmt.Errorf("error attaching image: %w", err)
	}
	post.ImageKey = key
	post.UpdatedAt = now
	return post, nil
}

// ImageURL returns a download link for the post image, or "" when there is
// none or it cannot be signed.
func (s *PostService) ImageURL(ctx context.Context, post *models.Post) string {
	if !post.HasImage() {
		return ""
	}
	url, err := s.blobs.PresignGet(ctx, post.ImageKey)
	if err != nil {
		s.log.Warn(ctx, "presigning post image", "post_id", post.ID, "err", err)
		return ""
	}
	return url
}

// owned loads a post and checks that userID wrote it.
func (s *PostService) owned(ctx context.Context, userID, id string) (*models.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, common.WithReason(fmt.Errorf("post %s: %w", id, common.ErrorForbidden), common.ReasonPostPermissionDenied)
	}
	return post, nil
}

func (s *PostService) deleteImage(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.log.Warn(ctx, "blob cleanup failed", "key", key, "kind", cleanupPostImage, "err", err)
		s.observer.BlobCleanupFailed(cleanupPostImage)
	}
}

func (s *PostService) requestReview(ctx context.Context, post *models.Post) {
	err := s.reviews.PublishReview(ctx, events.ReviewRequest{
		PostID:      post.ID,
		AuthorID:    post.AuthorID,
		Title:       post.Title,
		Content:     post.Content,
		RequestedAt: s.now(),
	})
	if err != nil {
		s.log.Warn(ctx, "publishing review request", "post_id", post.ID, "err", err)
		return
	}
	s.observer.ReviewRequested()
}

func newPatch(title, content string, aiReview bool) (models.PostPatch, error) {
	p := models.PostPatch{
		Title:    strings.TrimSpace(title),
		Content:  strings.TrimSpace(content),
		AIReview: aiReview,
	}
	if p.Title == "" || p.Content == "" {
		return p, common.WithReason(fmt.Errorf("title and content are required: %w", common.ErrorValidation), common.ReasonPostInvalidArgument)
	}
	return p, nil
}
