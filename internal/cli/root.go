package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/folioadmin/folioadmin/internal/cli/commands"
	"github.com/folioadmin/folioadmin/internal/content"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the command tree around app.
func NewRootCmd(app *commands.App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "folioadmin",
		Short: "folioadmin - Manage portfolio site content",
		Long: `folioadmin manages the content of a portfolio site: blogs, projects,
skills, experience, footer content and newsletter subscribers.

Use the resource commands for scripting, or 'folioadmin dash' for the web
dashboard. Both share the session created by 'folioadmin login'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return app.Setup(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().BoolVar(&app.Ephemeral, "ephemeral", false, "Keep the session in memory only")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "folioadmin version %s\n", app.Version)
		},
	})

	rootCmd.AddCommand(commands.NewLoginCmd(app))
	rootCmd.AddCommand(commands.NewLogoutCmd(app))
	rootCmd.AddCommand(commands.NewStatusCmd(app))
	rootCmd.AddCommand(commands.NewDashCmd(app))

	for _, r := range content.All() {
		rootCmd.AddCommand(commands.NewResourceCmd(app, r))
	}

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	if err := NewRootCmd(commands.NewApp(version)).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
