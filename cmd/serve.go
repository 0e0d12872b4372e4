package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rybkr/orepack/internal/server"
)

var (
	addr         string
	maxWorkers   int
	serveTimeout time.Duration
)

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the solver over HTTP and websocket",
		Long: `Serve the solver over HTTP.

Endpoints:
  GET  /api/ping
  GET  /api/presets, /api/presets/{name}
  GET  /api/generate?width=W&height=H
  POST /api/solve?workers=N&timeout=D&moves=ore|scan   (grid text as body)
  GET  /ws/solve   (send {"type":"solve","payload":{"grid":"..."}})`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	def := server.DefaultConfig()
	serveCmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "Listen address")
	serveCmd.Flags().IntVar(&maxWorkers, "max-workers", def.MaxWorkers, "Upper bound on workers per request")
	serveCmd.Flags().DurationVar(&serveTimeout, "solve-timeout", def.SolveTimeout, "Default and maximum search time per request")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	config := server.DefaultConfig()
	config.MaxWorkers = maxWorkers
	config.SolveTimeout = serveTimeout

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(config, logger).Run(ctx, addr)
}
