package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Paranoid-AF/codelet"
	"github.com/Paranoid-AF/codelet/serve"
)

func newServeCommand() *cobra.Command {
	var (
		socketPath  string
		metricsAddr string
		noWatch     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the completion daemon on a Unix socket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if socketPath == "" {
				socketPath = codelet.SocketPath()
			}
			slog.Info("starting", "socket", socketPath, "version", Version)

			srv, err := serve.NewServer(socketPath)
			if err != nil {
				return fmt.Errorf("start server: %w", err)
			}
			defer srv.Close()

			if !noWatch {
				if err := srv.WatchConfig(); err != nil {
					slog.Warn("config watcher disabled", "dir", codelet.ConfigDir(), "error", err)
				}
			}

			if metricsAddr != "" {
				m, err := serve.ListenMetrics(metricsAddr)
				if err != nil {
					return fmt.Errorf("listen metrics: %w", err)
				}
				defer m.Close()
			}

			// Handle graceful shutdown
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				slog.Info("shutting down")
				srv.Close()
			}()

			slog.Info("ready")
			return srv.Serve()
		},
	}

	cmd.Flags().StringVar(&socketPath, "socket", "", "socket path (default $CODELET_SOCKET, $XDG_RUNTIME_DIR/codelet.sock or /tmp/codelet-<uid>.sock)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload when config.json or prompt.md change")
	return cmd
}
