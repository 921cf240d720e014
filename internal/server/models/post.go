package models

import "time"

// Post is a journal entry. AuthorID and AuthorName are fixed at creation.
// ImageKey is the object-storage key of the attached image, empty if none.
type Post struct {
	ID         string
	Title      string
	Content    string
	AuthorID   string
	AuthorName string
	AIReview   bool
	ImageKey   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (p *Post) HasImage() bool {
	return p.ImageKey != ""
}

// PostPatch holds the mutable fields of a post.
type PostPatch struct {
	Title    string
	Content  string
	AIReview bool
}
