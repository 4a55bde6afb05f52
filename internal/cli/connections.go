package cli

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"scout-cli/internal/actions"
	"scout-cli/internal/format"
	"scout-cli/internal/query"
	"scout-cli/internal/selection"
)

type listFlags struct {
	status string
	search string
	sortBy string
	order  string
	page   int
	limit  int
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.status, "status", "", "Filter by status (pending|active|declined|terminated)")
	cmd.Flags().StringVar(&f.search, "search", "", "Search term")
	cmd.Flags().StringVar(&f.sortBy, "sort", "", "Sort column")
	cmd.Flags().StringVar(&f.order, "order", "", "Sort order (asc|desc)")
	cmd.Flags().IntVar(&f.page, "page", 0, "Page number")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Page size")
}

// values renders the flags as URL params so the same defensive decoding the
// TUI uses applies to CLI input too.
func (f *listFlags) values() url.Values {
	vals := url.Values{}
	set := func(k, v string) {
		if v != "" {
			vals.Set(k, v)
		}
	}
	set(query.ParamStatus, f.status)
	set(query.ParamSearch, f.search)
	set(query.ParamSortBy, f.sortBy)
	set(query.ParamSortOrder, f.order)
	if f.page > 0 {
		vals.Set(query.ParamPage, strconv.Itoa(f.page))
	}
	if f.limit > 0 {
		vals.Set(query.ParamLimit, strconv.Itoa(f.limit))
	}
	return vals
}

func newConnectionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "connections",
		Aliases: []string{"conn"},
		Short:   "List and act on portal connections",
	}
	cmd.AddCommand(newConnectionsListCmd(app))
	cmd.AddCommand(newConnectionsShowCmd(app))
	cmd.AddCommand(newConnectionsActCmd(app, "accept", "Accept a pending connection"))
	cmd.AddCommand(newConnectionsActCmd(app, "decline", "Decline a pending connection"))
	cmd.AddCommand(newConnectionsActCmd(app, "terminate", "End an active connection"))
	cmd.AddCommand(newConnectionsLinkCmd(app))
	return cmd
}

func newConnectionsListCmd(app *App) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := app.runtime()
			if err != nil {
				return err
			}
			defer cleanup()

			d := rt.defaults()
			q := query.Decode(flags.values(), d)
			page, err := rt.client.ListConnections(cmd.Context(), q)
			if err != nil {
				return err
			}
			if err := format.Write(cmd.OutOrStdout(), page.Items, app.Format, app.Pretty); err != nil {
				return err
			}
			if app.Format == "table" {
				fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d · %d total\n",
					q.Page, max(1, page.Pagination.TotalPages), page.Pagination.Total)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newConnectionsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := app.runtime()
			if err != nil {
				return err
			}
			defer cleanup()

			conn, err := rt.client.GetConnection(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return format.WriteJSON(cmd.OutOrStdout(), conn, app.Pretty)
		},
	}
}

// cliNotifier turns toolbar toasts into command output and a final error.
type cliNotifier struct {
	out  *cobra.Command
	fail error
}

func (n *cliNotifier) Success(msg string) {
	fmt.Fprintln(n.out.OutOrStdout(), msg)
}

func (n *cliNotifier) Error(msg string) {
	n.fail = fmt.Errorf("%s", msg)
}

// stdinConfirmer asks on the terminal before destructive actions.
type stdinConfirmer struct{ yes bool }

func (c stdinConfirmer) Confirm(prompt string) bool {
	if c.yes {
		return true
	}
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func newConnectionsActCmd(app *App, verb, short string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   verb + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := app.runtime()
			if err != nil {
				return err
			}
			defer cleanup()

			if rt.tokens.Token() == "" {
				return fmt.Errorf("not logged in (token file %s is missing or empty)", rt.cfg.TokenFile)
			}

			notify := &cliNotifier{out: cmd}
			tb := actions.New(rt.client,
				actions.WithNotifier(notify),
				actions.WithConfirmer(stdinConfirmer{yes: yes}),
				actions.WithLogger(rt.log),
			)

			var ran bool
			switch verb {
			case "accept":
				ran = tb.Accept(cmd.Context(), args[0])
			case "decline":
				ran = tb.Decline(cmd.Context(), args[0])
			case "terminate":
				ran = tb.Terminate(cmd.Context(), args[0])
			}
			if notify.fail != nil {
				return notify.fail
			}
			if !ran {
				fmt.Fprintln(cmd.OutOrStdout(), "aborted")
			}
			return nil
		},
	}
	if verb == "decline" {
		cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	}
	return cmd
}

func newConnectionsLinkCmd(app *App) *cobra.Command {
	var flags listFlags
	var selected string
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Print a shareable portal URL for a filtered view",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := app.runtime()
			if err != nil {
				return err
			}
			defer cleanup()

			d := rt.defaults()
			q := query.Decode(flags.values(), d)
			vals := query.Encode(q, d)
			if selected != "" {
				vals.Set(selection.DefaultParam, selected)
			}

			link := rt.portalBase() + "/connections"
			if enc := vals.Encode(); enc != "" {
				link += "?" + enc
			}
			fmt.Fprintln(cmd.OutOrStdout(), link)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&selected, "select", "", "Connection id to open in the detail panel")
	return cmd
}
