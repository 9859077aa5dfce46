package guard

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/folioadmin/folioadmin/internal/session"
)

// ErrBlocked is wrapped by every error a command guard returns.
var ErrBlocked = errors.New("blocked by session guard")

// Command adapts g to a cobra PreRunE hook. A blocking decision fails the
// command with hint; a passthrough redirect prints hint as a notice and lets
// the command run.
func Command(g Guard, sessions session.Reader, hint string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		d := g.Decide(sessions.State())
		if !d.Render {
			return fmt.Errorf("%s: %w", hint, ErrBlocked)
		}
		if d.Redirect != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Note: %s\n", hint)
		}
		return nil
	}
}
