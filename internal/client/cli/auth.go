package cli

import (
	"context"

	"github.com/dmitrijs2005/journal/internal/client/session"
	"github.com/dmitrijs2005/journal/internal/common"
	"github.com/spf13/cobra"
)

func (a *App) loginCmd() *cobra.Command {
	var github bool
	var email string
	cmd := &cobra.Command{
		Use:         "login",
		Short:       "Log in with email and password, or with GitHub",
		Args:        cobra.NoArgs,
		Annotations: routed(session.RouteLogin),
		RunE: run(func(ctx context.Context, _ []string) error {
			if github {
				err := a.auth.GitHubLogin(ctx, func(userCode, uri string) {
					a.printf("Open %s and enter the code %s\nWaiting for GitHub...\n", uri, userCode)
				})
				if err != nil {
					return err
				}
				return a.welcome(ctx)
			}

			var err error
			if email == "" {
				if email, err = a.text("Email"); err != nil {
					return err
				}
			}
			password, err := a.password("Password")
			if err != nil {
				return err
			}
			defer common.Wipe(password)

			if err := a.auth.Login(ctx, email, password); err != nil {
				return err
			}
			return a.welcome(ctx)
		}),
	}
	cmd.Flags().BoolVar(&github, "github", false, "log in with a GitHub account")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func (a *App) signupCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "signup",
		Short:       "Create an account",
		Args:        cobra.NoArgs,
		Annotations: routed(session.RouteSignup),
		RunE: run(func(ctx context.Context, _ []string) error {
			email, err := a.text("Email")
			if err != nil {
				return err
			}
			name, err := a.text("Display name")
			if err != nil {
				return err
			}
			password, err := a.password("Password")
			if err != nil {
				return err
			}
			defer common.Wipe(password)
			confirm, err := a.password("Confirm password")
			if err != nil {
				return err
			}
			defer common.Wipe(confirm)

			if err := a.auth.SignUp(ctx, email, name, password, confirm); err != nil {
				return err
			}
			return a.welcome(ctx)
		}),
	}
}

func (a *App) resetPasswordCmd() *cobra.Command {
	var code string
	cmd := &cobra.Command{
		Use:         "reset-password",
		Short:       "Get a reset code by email and choose a new password",
		Args:        cobra.NoArgs,
		Annotations: routed(session.RouteResetPassword),
		RunE: run(func(ctx context.Context, _ []string) error {
			if code == "" {
				email, err := a.text("Email")
				if err != nil {
					return err
				}
				if err := a.auth.RequestPasswordReset(ctx, email); err != nil {
					return err
				}
				a.println("Check your inbox for a password reset code.")

				if code, err = a.text("Reset code (press Enter to finish later)"); err != nil || code == "" {
					return err
				}
			}

			password, err := a.password("New password")
			if err != nil {
				return err
			}
			defer common.Wipe(password)
			confirm, err := a.password("Confirm new password")
			if err != nil {
				return err
			}
			defer common.Wipe(confirm)

			if err := a.auth.ResetPassword(ctx, code, password, confirm); err != nil {
				return err
			}
			a.println("Password changed. You can now log in.")
			return nil
		}),
	}
	cmd.Flags().StringVar(&code, "code", "", "reset code from the email")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, _ []string) error {
			// The local session is gone even when the server was not told.
			if err := a.auth.Logout(ctx); err != nil {
				a.log.Warn(ctx, "logout not confirmed by server", "err", err)
			}
			a.listed = nil
			a.println("Logged out.")
			return nil
		}),
	}
}

// welcome greets the user and lands them on the home route.
func (a *App) welcome(ctx context.Context) error {
	if sess, ok := a.sessions.Current(ctx); ok {
		a.printf("Welcome, %s!\n", sess.DisplayName)
	}
	return a.execute(ctx, []string{"home"})
}
