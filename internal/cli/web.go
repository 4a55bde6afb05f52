package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"scout-cli/internal/web"
)

func newWebCmd(app *App) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve a read-only web view of the connections list",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := app.runtime()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := web.NewServer(web.ServerConfig{Addr: addr, Defaults: rt.defaults()}, rt.client, rt.log)
			return srv.Serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8787", "Listen address")
	return cmd
}
