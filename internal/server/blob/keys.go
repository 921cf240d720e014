package blob

import (
	"fmt"
	"path"
	"strings"

	"github.com/dmitrijs2005/journal/internal/server/models"
)

const (
	postsPrefix         = "posts/"
	profilePhotosPrefix = "profile-photos/"
)

// anonymousAuthor stands in for an empty author name in object keys.
const anonymousAuthor = "user"

// PostImageKey is the object key of a post image, derived from the post
// alone: posts/{authorID}-{authorName}/{postID}.
func PostImageKey(p *models.Post) string {
	name := p.AuthorName
	if name == "" {
		name = anonymousAuthor
	}
	return fmt.Sprintf("%s%s-%s/%s", postsPrefix, p.AuthorID, clean(name), p.ID)
}

// ProfilePhotoKey is profile-photos/{userID}/{filename}. Only the base name
// of filename is kept.
func ProfilePhotoKey(userID, filename string) string {
	return fmt.Sprintf("%s%s/%s", profilePhotosPrefix, userID, clean(path.Base(filename)))
}

// IsProfilePhotoKey reports whether key lives under userID's photo folder.
func IsProfilePhotoKey(userID, key string) bool {
	prefix := profilePhotosPrefix + userID + "/"
	return strings.HasPrefix(key, prefix) && len(key) > len(prefix) && !strings.Contains(key[len(prefix):], "/")
}

func clean(s string) string {
	return strings.ReplaceAll(s, "/", "_")
}
