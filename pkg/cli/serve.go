package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/cli/config"
	httpctrl "github.com/secmon-lab/formflow/pkg/controller/http"
	"github.com/secmon-lab/formflow/pkg/service/worker"
	"github.com/secmon-lab/formflow/pkg/usecase"
	"github.com/secmon-lab/formflow/pkg/utils/async"
	"github.com/secmon-lab/formflow/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var authCfg config.Auth
	var geminiCfg config.Gemini
	var storageCfg config.Storage
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("FORMFLOW_ADDR"),
			Destination: &addr,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if err := appCfg.Load(); err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return err
			}
			defer flush()

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			authUC, err := authCfg.Configure(repo)
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}
			if authCfg.IsNoAuthMode() {
				logger.Warn("Running in no-auth mode (development only)")
			}

			store, closeStore, err := storageCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			generator, err := geminiCfg.Configure(ctx, appCfg.GeminiParams())
			if err != nil {
				return goerr.Wrap(err, "failed to configure form generation")
			}

			group := &async.Group{}
			ucOpts := []usecase.Option{
				usecase.WithAuth(authUC),
				usecase.WithAssetStore(store),
				usecase.WithGenerator(generator),
				usecase.WithAsyncGroup(group),
			}
			ucOpts = append(ucOpts, appCfg.UseCaseOptions()...)

			uc, err := usecase.New(repo, ucOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize use cases")
			}

			sweeper := worker.NewSessionSweeper(uc, worker.DefaultSweepInterval)
			if err := sweeper.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start session sweeper")
			}
			defer sweeper.Stop()

			httpHandler, err := httpctrl.New(uc)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server",
					"addr", addr,
					"config", appCfg,
					"auth", authCfg,
					"storage", storageCfg,
					"sentry", sentryCfg)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				// pending builder changes are written after the last request finished
				if err := uc.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to save pending changes")
				}

				logger.Info("Server shutdown completed")
				return nil
			}
		},
	}
}
