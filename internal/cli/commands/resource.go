package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/folioadmin/folioadmin/internal/content"
)

// NewResourceCmd creates the command group managing one content resource.
func NewResourceCmd(app *App, r content.Resource) *cobra.Command {
	cmd := &cobra.Command{
		Use:   r.Name,
		Short: fmt.Sprintf("Manage %s", strings.ToLower(r.Title)),
	}

	cmd.AddCommand(newListCmd(app, r))
	if r.Name == content.Subscribers.Name {
		addSubscriberCmds(app, cmd)
	}
	if r.ReadOnly {
		return cmd
	}
	if r.Name == content.SkillSets.Name {
		addSkillCmds(app, cmd)
	}

	cmd.AddCommand(newGetCmd(app, r))
	cmd.AddCommand(newCreateCmd(app, r))
	cmd.AddCommand(newUpdateCmd(app, r))
	cmd.AddCommand(newDeleteCmd(app, r))
	return cmd
}

func newListCmd(app *App, r content.Resource) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   fmt.Sprintf("List %s", strings.ToLower(r.Title)),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, app, r)
		},
	}
	if r.Protected {
		cmd.PreRunE = requireLogin(app)
	}
	return cmd
}

func runList(cmd *cobra.Command, app *App, r content.Resource) error {
	listing := app.Content.List(cmd.Context(), r)
	if !listing.Success {
		return fmt.Errorf("failed to list %s: %w", strings.ToLower(r.Title), listing.Err())
	}

	out := cmd.OutOrStdout()
	if len(listing.Items) == 0 {
		fmt.Fprintf(out, "No %s found.\n", strings.ToLower(r.Title))
		if !r.ReadOnly {
			fmt.Fprintf(out, "\nCreate one with: folioadmin %s create -f payload.yaml\n", r.Name)
		}
		return nil
	}

	writeTable(out, r, listing.Items)
	return nil
}

func writeTable(out io.Writer, r content.Resource, items []content.Item) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	header := append([]string{"ID", "NAME"}, upper(r.Columns)...)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	rule := make([]string, len(header))
	for i, h := range header {
		rule[i] = strings.Repeat("─", len(h))
	}
	fmt.Fprintln(w, strings.Join(rule, "\t"))

	for _, item := range items {
		cells := []string{item.ID(), item.Label()}
		for _, col := range r.Columns {
			cells = append(cells, item.String(col))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}

	w.Flush()
}

func upper(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = strings.ToUpper(c)
	}
	return out
}

func newGetCmd(app *App, r content.Resource) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: fmt.Sprintf("Show one %s record", r.Name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, res := app.Content.Get(cmd.Context(), r, args[0])
			if !res.Success {
				return res.Err()
			}
			return printItem(cmd.OutOrStdout(), item)
		},
	}
}

func newCreateCmd(app *App, r content.Resource) *cobra.Command {
	var file, thumbnail string

	cmd := &cobra.Command{
		Use:     "create",
		Short:   fmt.Sprintf("Create a %s record from a YAML or JSON file", r.Name),
		Args:    cobra.NoArgs,
		PreRunE: requireLogin(app),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := createPayload(r)
			if err := readPayload(file, cmd.InOrStdin(), payload); err != nil {
				return err
			}
			if err := attachThumbnail(payload, thumbnail); err != nil {
				return err
			}

			res := app.Content.Create(cmd.Context(), r, payload)
			if !res.Success {
				return fmt.Errorf("failed to create %s: %w", r.Name, res.Err())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s\n", r.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Payload file (YAML or JSON, - for stdin)")
	if r.Multipart {
		cmd.Flags().StringVar(&thumbnail, "thumbnail", "", "Thumbnail image to upload")
	}
	return cmd
}

func newUpdateCmd(app *App, r content.Resource) *cobra.Command {
	var file, thumbnail string

	cmd := &cobra.Command{
		Use:     "update <id>",
		Short:   fmt.Sprintf("Update a %s record from a YAML or JSON file", r.Name),
		Args:    cobra.ExactArgs(1),
		PreRunE: requireLogin(app),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := updatePayload(r)
			if err := readPayload(file, cmd.InOrStdin(), payload); err != nil {
				return err
			}
			if err := attachThumbnail(payload, thumbnail); err != nil {
				return err
			}

			res := app.Content.Update(cmd.Context(), r, args[0], payload)
			if !res.Success {
				return fmt.Errorf("failed to update %s %s: %w", r.Name, args[0], res.Err())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated %s %s\n", r.Name, args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Payload file (YAML or JSON, - for stdin)")
	if r.Multipart {
		cmd.Flags().StringVar(&thumbnail, "thumbnail", "", "Thumbnail image to upload")
	}
	return cmd
}

func newDeleteCmd(app *App, r content.Resource) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   fmt.Sprintf("Delete a %s record", r.Name),
		Args:    cobra.ExactArgs(1),
		PreRunE: requireLogin(app),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, app, r, args[0], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func runDelete(cmd *cobra.Command, app *App, r content.Resource, id string, yes bool) error {
	if !yes {
		ok, err := app.Confirm(fmt.Sprintf("Delete %s %s", r.Name, id))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	res := app.Content.Delete(cmd.Context(), r, id)
	if !res.Success {
		return fmt.Errorf("failed to delete %s %s: %w", r.Name, id, res.Err())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s %s\n", r.Name, id)
	return nil
}
