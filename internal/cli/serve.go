package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/crimson-sun/taxon/internal/server"
)

func serveCmd(a *app) *cobra.Command {
	var (
		host string
		port int
	)

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web form and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("host") {
				a.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			eng, set, err := a.loadEngine()
			if err != nil {
				return err
			}
			defer set.Close()

			if a.cfg.Log.Level == "debug" {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}
			h, err := server.NewHandler(eng, server.HandlerConfig{
				UploadDir:   a.cfg.Server.UploadDir,
				ResultDir:   a.cfg.Server.ResultDir,
				MaxUploadMB: a.cfg.Server.MaxUploadMB,
				Workers:     a.cfg.Batch.Workers,
				Logger:      a.logger,
			})
			if err != nil {
				return err
			}
			srv := server.New(a.cfg.Server, h, a.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errc := srv.Start(ctx)
			select {
			case err := <-errc:
				if err != nil {
					return err
				}
			case <-ctx.Done():
				a.logger.Info("received shutdown signal")
			}
			return srv.Shutdown(context.Background())
		},
	}

	c.Flags().StringVar(&host, "host", "", "listen host (default $HOST or 0.0.0.0)")
	c.Flags().IntVarP(&port, "port", "p", 0, "listen port (default $PORT or 5000)")
	return c
}
