package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpapi "github.com/maintlog/backend/internal/http"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web front-end",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, asst, err := setup()
		if err != nil {
			return err
		}
		if servePort != "" {
			cfg.Port = servePort
		}

		router := httpapi.Router(cfg, asst, logger)

		srv := &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: router,
		}

		go func() {
			logger.Info().Str("port", cfg.Port).Msg("server started")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatal().Err(err).Msg("server error")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
		logger.Info().Msg("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (overrides PORT)")
}
