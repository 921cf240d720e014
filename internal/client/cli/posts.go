package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/journal/internal/api"
	"github.com/dmitrijs2005/journal/internal/client/services"
	"github.com/dmitrijs2005/journal/internal/client/session"
	"github.com/dmitrijs2005/journal/internal/common"
	"github.com/dmitrijs2005/journal/internal/filex"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02 15:04"

func (a *App) homeCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "home",
		Aliases:     []string{"list", "l"},
		Short:       "List all posts, newest first",
		Args:        cobra.NoArgs,
		Annotations: routed(session.RouteHome),
		RunE: run(func(ctx context.Context, _ []string) error {
			posts, err := a.posts.List(ctx)
			if err != nil {
				return err
			}
			a.printList(posts)
			return nil
		}),
	}
}

func (a *App) viewCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "view <id|#n>",
		Short:       "Show a post in full",
		Args:        cobra.ExactArgs(1),
		Annotations: routed(session.RouteHome),
		RunE: run(func(ctx context.Context, args []string) error {
			id, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			p, err := a.posts.Get(ctx, id)
			if err != nil {
				return err
			}
			a.printPost(p)
			return nil
		}),
	}
}

func (a *App) newPostCmd() *cobra.Command {
	var f postFlags
	cmd := &cobra.Command{
		Use:         "new-post",
		Short:       "Write a new post",
		Args:        cobra.NoArgs,
		Annotations: routed(session.RouteNewPost),
	}
	f.register(cmd)
	cmd.RunE = run(func(ctx context.Context, _ []string) error {
		in, err := a.postForm(cmd, &f, nil)
		if err != nil {
			return err
		}
		p, err := a.posts.Create(ctx, in)
		if p != nil {
			a.println("Post published.")
			a.printPost(p)
		}
		return err
	})
	return cmd
}

func (a *App) editPostCmd() *cobra.Command {
	var f postFlags
	cmd := &cobra.Command{
		Use:         "edit-post <id|#n>",
		Short:       "Edit one of your posts; empty answers keep the current value",
		Args:        cobra.ExactArgs(1),
		Annotations: routed(session.RouteEditPost),
	}
	f.register(cmd)
	cmd.RunE = run(func(ctx context.Context, args []string) error {
		id, err := a.resolve(args[0])
		if err != nil {
			return err
		}
		p, err := a.posts.Load(ctx, id)
		if err != nil {
			return err
		}
		in, err := a.postForm(cmd, &f, p)
		if err != nil {
			return err
		}
		updated, err := a.posts.Update(ctx, p, in)
		if updated != nil {
			a.println("Post updated.")
			a.printPost(updated)
		}
		return err
	})
	return cmd
}

func (a *App) deletePostCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:         "delete-post <id|#n>",
		Short:       "Delete one of your posts",
		Args:        cobra.ExactArgs(1),
		Annotations: routed(session.RouteEditPost),
		RunE: run(func(ctx context.Context, args []string) error {
			id, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			p, err := a.posts.Load(ctx, id)
			if err != nil {
				return err
			}
			if !yes {
				ok, err := a.confirm(fmt.Sprintf("Delete %q? This cannot be undone.", p.Title))
				if err != nil || !ok {
					return err
				}
			}
			if err := a.posts.Delete(ctx, p); err != nil {
				return err
			}
			a.forget(p.ID)
			a.println("Post deleted.")
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// postFlags lets a post form be filled from the command line; whatever is
// missing is asked for.
type postFlags struct {
	title    string
	content  string
	image    string
	aiReview bool
}

func (f *postFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "post title")
	cmd.Flags().StringVar(&f.content, "content", "", "post body")
	cmd.Flags().StringVar(&f.image, "image", "", "path to an image of at most 1MB")
	cmd.Flags().BoolVar(&f.aiReview, "ai-review", false, "ask for an AI review of the post")
}

// postForm collects a post. With cur set it is an edit form: empty answers
// keep the current values and no image keeps the current image.
func (a *App) postForm(cmd *cobra.Command, f *postFlags, cur *api.Post) (services.PostInput, error) {
	var in services.PostInput
	var err error
	// --title switches the form to the command line; only the body is
	// still asked for when missing.
	interactive := !cmd.Flags().Changed("title")

	in.Title = f.title
	if in.Title == "" {
		prompt := "Title"
		if cur != nil {
			prompt = fmt.Sprintf("Title [%s]", cur.Title)
		}
		if in.Title, err = a.text(prompt); err != nil {
			return in, err
		}
	}

	in.Content = f.content
	if in.Content == "" {
		prompt := "Content"
		if cur != nil {
			prompt = "Content (leave empty to keep the current text)"
		}
		if in.Content, err = GetMultiline(a.reader, prompt, a.out); err != nil {
			return in, err
		}
	}

	path := f.image
	if path == "" && interactive {
		prompt := "Image file (optional, press Enter to skip)"
		if cur != nil && cur.ImageURL != "" {
			prompt = "Replace image with file (press Enter to keep it)"
		}
		if path, err = a.text(prompt); err != nil {
			return in, err
		}
	}
	if path != "" {
		img, err := filex.ReadImage(path, common.MaxImageSize)
		if err != nil {
			return in, err
		}
		in.Image = img
	}

	in.AIReview = f.aiReview
	if !cmd.Flags().Changed("ai-review") {
		in.AIReview = cur != nil && cur.AIReview
		if interactive {
			if in.AIReview, err = ConfirmDefault(a.reader, "Request an AI review?", a.out, in.AIReview); err != nil {
				return in, err
			}
		}
	}

	if cur != nil {
		if strings.TrimSpace(in.Title) == "" {
			in.Title = cur.Title
		}
		if strings.TrimSpace(in.Content) == "" {
			in.Content = cur.Content
		}
	}
	return in, nil
}

// resolve turns "#n", or a bare number that fits the list, into the id of
// the n-th post of the last list shown. Anything else is taken as an id.
func (a *App) resolve(arg string) (string, error) {
	ref := strings.TrimPrefix(arg, "#")
	n, err := strconv.Atoi(ref)
	if err != nil || (ref == arg && (n < 1 || n > len(a.listed))) {
		return arg, nil
	}
	if n < 1 || n > len(a.listed) {
		return "", fmt.Errorf("%w: there is no post #%d in the last list", common.ErrorValidation, n)
	}
	return a.listed[n-1].ID, nil
}

// forget drops a deleted post from the last list.
func (a *App) forget(id string) {
	kept := make([]*api.Post, 0, len(a.listed))
	for _, p := range a.listed {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	a.listed = kept
}

func (a *App) printList(posts []*api.Post) {
	a.listed = posts
	if len(posts) == 0 {
		a.println("No posts yet.")
		return
	}
	for i, p := range posts {
		a.printf("#%d %s\n", i+1, p.Title)
		a.printf("   by %s on %s%s\n", author(p), stamp(p.CreatedAt), badges(p))
		a.printf("   %s\n\n", oneLine(services.Excerpt(p.Content)))
	}
}

func (a *App) printPost(p *api.Post) {
	a.printf("\n%s\n", p.Title)
	a.printf("by %s on %s%s\n", author(p), stamp(p.CreatedAt), badges(p))
	if p.UpdatedAt.After(p.CreatedAt) {
		a.printf("edited %s\n", stamp(p.UpdatedAt))
	}
	if p.ImageURL != "" {
		a.printf("image: %s\n", p.ImageURL)
	}
	a.printf("id: %s\n\n%s\n\n", p.ID, p.Content)
}

func author(p *api.Post) string {
	if p.AuthorName == "" {
		return services.UnknownAuthorName
	}
	return p.AuthorName
}

func badges(p *api.Post) string {
	var b []string
	if p.AIReview {
		b = append(b, "AI review")
	}
	if p.ImageURL != "" {
		b = append(b, "image")
	}
	if len(b) == 0 {
		return ""
	}
	return " [" + strings.Join(b, ", ") + "]"
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "unknown date"
	}
	return t.Local().Format(dateLayout)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
