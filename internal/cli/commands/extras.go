package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/folioadmin/folioadmin/internal/content"
)

// addSkillCmds adds the single-skill commands to the skill group.
func addSkillCmds(app *App, group *cobra.Command) {
	var addFile string
	add := &cobra.Command{
		Use:     "add <category-id>",
		Short:   "Add skills to a category from a YAML list",
		Args:    cobra.ExactArgs(1),
		PreRunE: requireLogin(app),
		RunE: func(cmd *cobra.Command, args []string) error {
			var skills []content.Skill
			if err := readPayload(addFile, cmd.InOrStdin(), &skills); err != nil {
				return err
			}
			res := app.Content.AddSkills(cmd.Context(), args[0], skills...)
			if !res.Success {
				return fmt.Errorf("failed to add skills: %w", res.Err())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %d skill(s) to %s\n", len(skills), args[0])
			return nil
		},
	}
	add.Flags().StringVarP(&addFile, "file", "f", "", "YAML list of skills (- for stdin)")

	var name, icon, level string
	edit := &cobra.Command{
		Use:     "update-skill <skill-id>",
		Short:   "Update a single skill; only the flags given are changed",
		Args:    cobra.ExactArgs(1),
		PreRunE: requireLogin(app),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch content.SkillPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("icon") {
				patch.Icon = &icon
			}
			if cmd.Flags().Changed("level") {
				patch.Level = &level
			}

			res := app.Content.UpdateSkill(cmd.Context(), args[0], patch)
			if !res.Success {
				return fmt.Errorf("failed to update skill %s: %w", args[0], res.Err())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated skill %s\n", args[0])
			return nil
		},
	}
	edit.Flags().StringVar(&name, "name", "", "Skill name")
	edit.Flags().StringVar(&icon, "icon", "", "Icon name or URL")
	edit.Flags().StringVar(&level, "level", "", "Beginner, Intermediate, Advanced or Expert")

	var yes bool
	remove := &cobra.Command{
		Use:     "delete-skill <skill-id>",
		Short:   "Delete a single skill",
		Args:    cobra.ExactArgs(1),
		PreRunE: requireLogin(app),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := app.Confirm(fmt.Sprintf("Delete skill %s", args[0]))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}
			res := app.Content.DeleteSkill(cmd.Context(), args[0])
			if !res.Success {
				return fmt.Errorf("failed to delete skill %s: %w", args[0], res.Err())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted skill %s\n", args[0])
			return nil
		},
	}
	remove.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	group.AddCommand(add, edit, remove)
}

// addSubscriberCmds adds the newsletter command to the subscriber group.
func addSubscriberCmds(app *App, group *cobra.Command) {
	var n content.Newsletter
	var contentFile string

	send := &cobra.Command{
		Use:     "send",
		Short:   "Send a newsletter to subscribers",
		Args:    cobra.NoArgs,
		PreRunE: requireLogin(app),
		RunE: func(cmd *cobra.Command, args []string) error {
			if contentFile != "" {
				data, err := os.ReadFile(contentFile)
				if err != nil {
					return fmt.Errorf("failed to read content: %w", err)
				}
				n.Content = string(data)
			}

			res := app.Content.SendNewsletter(cmd.Context(), n)
			if !res.Success {
				return fmt.Errorf("failed to send newsletter: %w", res.Err())
			}
			msg := res.Message
			if msg == "" {
				msg = "Newsletter sent"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", msg)
			return nil
		},
	}

	send.Flags().StringVar(&n.Subject, "subject", "", "Newsletter subject")
	send.Flags().StringVar(&n.Content, "content", "", "Newsletter body")
	send.Flags().StringVar(&contentFile, "content-file", "", "Read the body from a file")
	send.Flags().StringSliceVar(&n.Recipients, "to", nil, "Recipient email (repeatable)")
	send.Flags().BoolVar(&n.SendToAll, "all", false, "Send to every subscriber")

	group.AddCommand(send)
}
