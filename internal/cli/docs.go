package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scout-cli/internal/docs"
)

func newDocsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "docs [topic]",
		Short: "Built-in help topics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, t := range docs.List() {
					fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", t.Name, t.Title)
				}
				return nil
			}
			body, ok := docs.Get(args[0])
			if !ok {
				names := make([]string, 0)
				for _, t := range docs.List() {
					names = append(names, t.Name)
				}
				return fmt.Errorf("unknown topic %q (have: %s)", args[0], strings.Join(names, ", "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(body, "\n"))
			return nil
		},
	}
}
