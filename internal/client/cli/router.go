package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/journal/internal/client/session"
	"github.com/spf13/cobra"
)

// routeAnnotation marks the route a command renders.
const routeAnnotation = "route"

// routeCommands maps a redirect target to the line that renders it.
var routeCommands = map[string][]string{
	session.RouteHome:  {"home"},
	session.RouteLogin: {"login"},
}

// redirectError stops a command whose route the session does not allow.
type redirectError struct {
	target string
}

func (e *redirectError) Error() string { return "redirect to " + e.target }

// commandError wraps failures of the command itself, as opposed to cobra
// complaining about the command line.
type commandError struct {
	err error
}

func (e *commandError) Error() string { return e.err.Error() }
func (e *commandError) Unwrap() error { return e.err }

// usageError is a malformed command line. Its text is shown as is.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() + ". Type \"help\" for usage." }

// run adapts a command body so its errors are told apart from usage errors.
func run(fn func(ctx context.Context, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd.Context(), args); err != nil {
			return &commandError{err: err}
		}
		return nil
	}
}

// routeOf finds the route of cmd or its nearest parent that has one.
func routeOf(cmd *cobra.Command) (string, bool) {
	for c := cmd; c != nil; c = c.Parent() {
		if r, ok := c.Annotations[routeAnnotation]; ok {
			return r, true
		}
	}
	return "", false
}

func routed(route string) map[string]string {
	return map[string]string{routeAnnotation: route}
}

// newRootCmd builds a fresh command tree for one input line, so flag values
// never leak from one line to the next.
func (a *App) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "journal",
		Short:         "A small journal with an optional AI review of each post",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			route, ok := routeOf(cmd)
			if !ok {
				return nil
			}
			if target, redirect := a.sessions.Redirect(cmd.Context(), route); redirect {
				return &redirectError{target: target}
			}
			return nil
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(a.out)
	root.SetErr(a.out)

	root.AddCommand(
		a.homeCmd(),
		a.viewCmd(),
		a.loginCmd(),
		a.signupCmd(),
		a.resetPasswordCmd(),
		a.logoutCmd(),
		a.newPostCmd(),
		a.editPostCmd(),
		a.deletePostCmd(),
		a.profileCmd(),
		a.profileSettingsCmd(),
	)
	return root
}

// execute runs one input line. A redirect runs the target route's command
// instead; redirects are followed once.
func (a *App) execute(ctx context.Context, args []string) error {
	err := a.executeOnce(ctx, args)

	var rerr *redirectError
	if errors.As(err, &rerr) {
		line, ok := routeCommands[rerr.target]
		if !ok {
			return fmt.Errorf("no command renders %s", rerr.target)
		}
		a.log.Debug(ctx, "redirect", "from", args[0], "to", rerr.target)
		if rerr.target == session.RouteLogin {
			a.println("Please log in to continue.")
		}
		err = a.executeOnce(ctx, line)
		if errors.As(err, &rerr) {
			return fmt.Errorf("redirect loop at %s", rerr.target)
		}
	}
	return err
}

func (a *App) executeOnce(ctx context.Context, args []string) error {
	root := a.newRootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var cerr *commandError
	var rerr *redirectError
	switch {
	case errors.As(err, &cerr):
		return cerr.err
	case errors.As(err, &rerr):
		return rerr
	}
	return &usageError{err: err}
}
