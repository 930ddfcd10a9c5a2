package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"staffgrid/internal/config"
	"staffgrid/internal/server"
)

func newServeCmd(app *App) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plan over HTTP and websocket for shared editing",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dataDir(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg, err := config.Load(dir)
			if err != nil {
				return writeErr(cmd, err)
			}
			if listen == "" {
				listen = cfg.ListenAddr
			}

			srv, err := server.NewServer(server.Config{
				Addr:        listen,
				Dir:         dir,
				WeekHorizon: cfg.WeekHorizon,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer srv.Stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "staffgrid serving %s on http://%s\n", dir, srv.Addr())
			return http.ListenAndServe(srv.Addr(), srv.Handler())
		},
	}

	cmd.Flags().StringVar(&listen, "listen", envOr("STAFFGRID_LISTEN", ""), "Listen address (default from config)")
	return cmd
}
