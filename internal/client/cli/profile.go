package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/journal/internal/client/services"
	"github.com/dmitrijs2005/journal/internal/client/session"
	"github.com/dmitrijs2005/journal/internal/common"
	"github.com/dmitrijs2005/journal/internal/filex"
	"github.com/spf13/cobra"
)

// deleteWord must be typed to confirm account deletion.
const deleteWord = "DELETE"

func (a *App) profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "profile [user-id]",
		Short:       "Show your profile, or someone else's",
		Args:        cobra.MaximumNArgs(1),
		Annotations: routed(session.RouteProfile),
		RunE: run(func(ctx context.Context, args []string) error {
			uid := ""
			if len(args) == 1 {
				uid = args[0]
			}
			p, err := a.profiles.Get(ctx, uid)
			if err != nil {
				return err
			}
			a.printProfile(p)
			return nil
		}),
	}
}

func (a *App) profileSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "profile-settings",
		Short:       "Change your name or photo, or delete your account",
		Args:        cobra.NoArgs,
		Annotations: routed(session.RouteProfileSettings),
		RunE: run(func(ctx context.Context, _ []string) error {
			p, err := a.profiles.Get(ctx, "")
			if err != nil {
				return err
			}
			a.printf("Display name: %s\n", p.DisplayName)
			a.printf("Photo: %s\n", orNone(p.PhotoURL))
			a.printf("Email: %s\n\n", p.Email)
			a.println("Use \"profile-settings name\", \"profile-settings photo <file>\" or \"profile-settings delete\".")
			return nil
		}),
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "name [new name]",
			Short: "Change your display name",
			RunE: run(func(ctx context.Context, args []string) error {
				name := strings.Join(args, " ")
				if name == "" {
					var err error
					if name, err = a.text("New display name"); err != nil {
						return err
					}
				}
				u, err := a.profiles.Rename(ctx, name)
				if err != nil {
					return err
				}
				a.printf("Display name changed to %s.\n", u.DisplayName)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "photo <file>",
			Short: "Upload a new profile photo of at most 1MB",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, args []string) error {
				img, err := filex.ReadImage(args[0], common.MaxImageSize)
				if err != nil {
					return err
				}
				u, err := a.profiles.ChangePhoto(ctx, img)
				if err != nil {
					return err
				}
				a.printf("Profile photo updated: %s\n", u.PhotoURL)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "delete",
			Short: "Delete your account and all your posts",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, _ []string) error {
				ok, err := a.confirm("Delete your account and all your posts? This cannot be undone.")
				if err != nil || !ok {
					return err
				}
				word, err := a.text("Type " + deleteWord + " to confirm")
				if err != nil {
					return err
				}
				if word != deleteWord {
					a.println("Account not deleted.")
					return nil
				}
				if err := a.profiles.DeleteAccount(ctx); err != nil {
					return err
				}
				a.listed = nil
				a.println("Your account has been deleted.")
				return nil
			}),
		},
	)
	return cmd
}

func (a *App) printProfile(p *services.Profile) {
	a.printf("\n%s\n", p.DisplayName)
	if p.PhotoURL != "" {
		a.printf("photo: %s\n", p.PhotoURL)
	}
	if p.Self {
		verified := "not verified"
		if p.EmailVerified {
			verified = "verified"
		}
		a.printf("email: %s (%s)\n", p.Email, verified)
		a.printf("member since %s, last sign-in %s\n", stamp(p.CreatedAt), stamp(p.LastSignInAt))
	}
	a.printf("id: %s\n\n", p.UserID)
	a.printList(p.Posts)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
