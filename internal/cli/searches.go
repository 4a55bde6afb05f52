package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"scout-cli/internal/format"
	"scout-cli/internal/query"
)

func newSearchesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "searches",
		Short: "Save and reuse list filters",
	}
	cmd.AddCommand(newSearchesSaveCmd(app))
	cmd.AddCommand(newSearchesListCmd(app))
	cmd.AddCommand(newSearchesRunCmd(app))
	cmd.AddCommand(newSearchesDeleteCmd(app))
	return cmd
}

func newSearchesSaveCmd(app *App) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save the given filters under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := app.runtime()
			if err != nil {
				return err
			}
			defer cleanup()
			if rt.store == nil {
				return fmt.Errorf("local store unavailable")
			}

			d := rt.defaults()
			q := query.Decode(flags.values(), d)
			// Page is positional, not part of what the search means.
			q.Page = 1
			encoded := query.Encode(q, d).Encode()

			if err := rt.store.SaveSearch(cmd.Context(), args[0], encoded); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %q\n", args[0])
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newSearchesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := app.runtime()
			if err != nil {
				return err
			}
			defer cleanup()
			if rt.store == nil {
				return fmt.Errorf("local store unavailable")
			}

			searches, err := rt.store.SavedSearches(cmd.Context())
			if err != nil {
				return err
			}
			if app.Format == "json" {
				return format.WriteJSON(cmd.OutOrStdout(), searches, app.Pretty)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tQUERY\tSAVED")
			for _, s := range searches {
				q := s.Query
				if q == "" {
					q = "(all)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, q, format.RelativeTime(s.CreatedAt))
			}
			return tw.Flush()
		},
	}
}

func newSearchesRunCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run <name>",
		Short: "List connections using a saved search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := app.runtime()
			if err != nil {
				return err
			}
			defer cleanup()
			if rt.store == nil {
				return fmt.Errorf("local store unavailable")
			}

			searches, err := rt.store.SavedSearches(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range searches {
				if s.Name != args[0] {
					continue
				}
				d := rt.defaults()
				q := query.Decode(parseValues(s.Query), d)
				page, err := rt.client.ListConnections(cmd.Context(), q)
				if err != nil {
					return err
				}
				return format.Write(cmd.OutOrStdout(), page.Items, app.Format, app.Pretty)
			}
			return fmt.Errorf("no saved search named %q", args[0])
		},
	}
}

func newSearchesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := app.runtime()
			if err != nil {
				return err
			}
			defer cleanup()
			if rt.store == nil {
				return fmt.Errorf("local store unavailable")
			}
			if err := rt.store.DeleteSearch(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %q\n", args[0])
			return nil
		},
	}
}
