package cmd

import (
	"context"
	"net"
	"net/http"

	"github.com/chapel-lang/github-commit-emailer/internal/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func cmdService() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "service",
		Aliases: []string{"s", "serve", "standalone", "server"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger = logger.With("mode", config.ModeService)
			logger.Info("spawning...")

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			rtm, cleanup, err := setup(ctx)
			if err != nil {
				return errors.Wrap(err, "failed to setup service")
			}
			defer cleanup()

			logger.Debug("creating HTTP server...")
			s := &http.Server{
				Handler:           rtm.Routes(),
				Addr:              net.JoinHostPort(config.Service.Addr, config.Service.Port),
				ReadHeaderTimeout: config.Service.Timeout,
				WriteTimeout:      config.Service.Timeout + config.SMTP.Timeout,
				ReadTimeout:       config.Service.Timeout,
				IdleTimeout:       config.Service.Timeout,
			}

			go func() {
				<-ctx.Done()
				logger.Info("shutting down...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Service.Timeout)
				defer cancel()
				_ = s.Shutdown(shutdownCtx)
			}()

			logger.Info("serving...", "address", s.Addr, "path", config.Service.Path, "timeout", config.Service.Timeout.String())
			if err = s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	bindEnvMap(cmd, svcEnvMapString)
	bindEnvMap(cmd, svcEnvMapDuration)

	return cmd
}
