// Package cli wires the scout commands: the interactive TUI by default, plus
// scriptable subcommands over the same controller the TUI renders from.
package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"scout-cli/internal/tui"
)

type App struct {
	CfgFile string
	Format  string
	Pretty  bool
	Debug   bool

	// Link seeds filters, search, sort, page and selection from a copied
	// portal URL (or just its query string).
	Link string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "scout",
		Short:        "Recruiter portal connections, in the terminal",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Interactive TUI
  scout

  # Resume exactly where a browser tab left off
  scout --link "https://portal.example.com/connections?status=pending&page=2"

  # Scriptable commands
  scout connections list --status pending
  scout connections accept conn-123
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.CfgFile, "config", envOr("SCOUT_CONFIG", ""), "Config file (default: user config dir)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("SCOUT_FORMAT", "table"), "Output format (table|json)")
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Debug logging to the log file")
	cmd.PersistentFlags().StringVar(&app.Link, "link", "", "Portal URL or query string to start from")

	cmd.AddCommand(newConnectionsCmd(app))
	cmd.AddCommand(newSearchesCmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	rt, cleanup, err := app.runtime()
	if err != nil {
		return err
	}
	defer cleanup()

	deps, err := rt.listDeps(cmd.Context(), app.Link)
	if err != nil {
		return err
	}
	return tui.Run(deps)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
