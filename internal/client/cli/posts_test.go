package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/journal/internal/api"
	"github.com/dmitrijs2005/journal/internal/common"
	"github.com/dmitrijs2005/journal/internal/filex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePosts() []*api.Post {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return []*api.Post{
		{ID: "p2", Title: "Second", Content: strings.Repeat("x", 151), AuthorID: "u1", AuthorName: "Alice", AIReview: true, CreatedAt: created},
		{ID: "p1", Title: "First", Content: "short\nbody", AuthorID: "u2", CreatedAt: created.Add(-time.Hour)},
	}
}

func TestHome_ListsWithExcerpts(t *testing.T) {
	h := newHarness(t, "")
	h.signIn("u1", "Alice")
	h.posts.posts = samplePosts()

	require.NoError(t, h.run("l"))

	out := h.out.String()
	assert.Contains(t, out, "#1 Second")
	assert.Contains(t, out, "by Alice on")
	assert.Contains(t, out, "[AI review]")
	assert.Contains(t, out, strings.Repeat("x", 150)+"...")
	assert.NotContains(t, out, strings.Repeat("x", 151))
	assert.Contains(t, out, "#2 First")
	assert.Contains(t, out, "by User on")
	assert.Contains(t, out, "short body")
	assert.Len(t, h.app.listed, 2)
}

func TestView_ByListNumberAndID(t *testing.T) {
	h := newHarness(t, "")
	h.signIn("u1", "Alice")
	h.posts.posts = samplePosts()

	require.NoError(t, h.run("home"))
	require.NoError(t, h.run("view", "#2"))
	assert.Contains(t, h.out.String(), "short\nbody")

	require.NoError(t, h.run("view", "p2"))
	assert.Equal(t, []string{"List", "Get", "Get"}, h.posts.calls)

	err := h.run("view", "#9")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestResolve(t *testing.T) {
	h := newHarness(t, "")
	h.app.listed = samplePosts()

	tests := []struct {
		arg     string
		want    string
		wantErr bool
	}{
		{"#1", "p2", false},
		{"2", "p1", false},
		{"17", "17", false},
		{"0", "0", false},
		{"-1", "-1", false},
		{"#0", "", true},
		{"#3", "", true},
		{"abc-def", "abc-def", false},
	}
	for _, tt := range tests {
		got, err := h.app.resolve(tt.arg)
		if tt.wantErr {
			assert.Error(t, err, tt.arg)
			continue
		}
		require.NoError(t, err, tt.arg)
		assert.Equal(t, tt.want, got, tt.arg)
	}
}

func TestNewPost_Interactive(t *testing.T) {
	h := newHarness(t, "  My day \nline one\nline two\n\n\ny\n")
	h.signIn("u1", "Alice")

	require.NoError(t, h.run("new-post"))

	assert.Equal(t, "My day", h.posts.created.Title)
	assert.Equal(t, "line one\nline two", h.posts.created.Content)
	assert.Nil(t, h.posts.created.Image)
	assert.True(t, h.posts.created.AIReview)
	assert.Contains(t, h.out.String(), "Post published.")
}

func TestNewPost_ImageTooLargeRejectedBeforeSubmit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	data := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, common.MaxImageSize)...)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	h := newHarness(t, "")
	h.signIn("u1", "Alice")

	err := h.run("new-post", "--title", "T", "--content", "B", "--image", path)
	assert.ErrorIs(t, err, filex.ErrTooLarge)
	assert.Empty(t, h.posts.calls)
	assert.Equal(t, "Image must be 1MB or smaller.", friendly(err))
}

func TestNewPost_WithImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nrest"), 0o600))

	h := newHarness(t, "T\nB\n\n"+path+"\n\n")
	h.signIn("u1", "Alice")

	require.NoError(t, h.run("new-post"))
	require.NotNil(t, h.posts.created.Image)
	assert.Equal(t, "image/png", h.posts.created.Image.ContentType)
	assert.False(t, h.posts.created.AIReview)
}

func TestEditPost_EmptyAnswersKeepValues(t *testing.T) {
	h := newHarness(t, "\n\n\n\n")
	h.signIn("u1", "Alice")
	h.posts.posts = samplePosts()

	require.NoError(t, h.run("edit-post", "p2"))

	assert.Equal(t, []string{"Load", "Update"}, h.posts.calls)
	assert.Equal(t, "Second", h.posts.updated.Title)
	assert.Equal(t, strings.Repeat("x", 151), h.posts.updated.Content)
	assert.True(t, h.posts.updated.AIReview)
	assert.Contains(t, h.out.String(), "Post updated.")
}

func TestEditPost_NonAuthorStopsAtLoad(t *testing.T) {
	h := newHarness(t, "")
	h.signIn("u1", "Alice")
	h.posts.err = common.WithReason(common.ErrorForbidden, common.ReasonPostPermissionDenied)

	err := h.run("edit-post", "p1")
	assert.ErrorIs(t, err, common.ErrorForbidden)
	assert.Equal(t, []string{"Load"}, h.posts.calls)
	assert.Equal(t, "You can only change your own posts.", friendly(err))
}

func TestDeletePost(t *testing.T) {
	h := newHarness(t, "n\ny\n")
	h.signIn("u1", "Alice")
	h.posts.posts = samplePosts()
	require.NoError(t, h.run("home"))

	require.NoError(t, h.run("delete-post", "#1"))
	assert.NotContains(t, h.posts.calls, "Delete")
	assert.Len(t, h.app.listed, 2)

	require.NoError(t, h.run("delete-post", "#1"))
	assert.Contains(t, h.posts.calls, "Delete")
	require.Len(t, h.app.listed, 1)
	assert.Equal(t, "p1", h.app.listed[0].ID)
}

func TestDeletePost_FailureKeepsList(t *testing.T) {
	h := newHarness(t, "")
	h.signIn("u1", "Alice")
	h.posts.posts = samplePosts()
	require.NoError(t, h.run("home"))

	h.posts.posts[0].AuthorID = "u1"
	del := &failingDelete{fakePosts: h.posts}
	h.app.posts = del

	err := h.run("delete-post", "p2", "--yes")
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.Len(t, h.app.listed, 2)
}

type failingDelete struct {
	*fakePosts
}

func (f *failingDelete) Delete(_ context.Context, p *api.Post) error {
	return common.ErrorInternal
}
