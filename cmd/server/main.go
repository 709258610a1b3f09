package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Skufu/MedValidator/internal/api"
	"github.com/Skufu/MedValidator/internal/config"
	"github.com/Skufu/MedValidator/internal/db"
	"github.com/Skufu/MedValidator/internal/logging"
	"github.com/Skufu/MedValidator/internal/ocr"
	"github.com/Skufu/MedValidator/internal/triage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "medvalidator",
		Short:        "Prescription validation and symptom triage service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(rulesCmd())
	return rootCmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
	cmd.Flags().String("port", "", "port to listen on (overrides PORT)")
	cmd.Flags().String("log-level", "", "log level (overrides LOG_LEVEL)")
	return cmd
}

func runServer(cfg *config.Config) error {
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	opts := api.Options{
		Logger: logger,
		Chat: triage.NewStore(
			triage.NewAssistant(triage.RandomPicker{}),
			triage.WithMaxSessions(cfg.ChatMaxSessions),
			triage.WithSessionTTL(cfg.ChatSessionTTL),
		),
		CORSOrigins:  cfg.CORSOrigins,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}

	if cfg.EnableDB {
		pool, err := db.Connect(ctx, db.PoolOptions{
			URL:      cfg.DatabaseURL,
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			logger.Error().Err(err).Msg("database connection failed")
			return err
		}
		defer pool.Close()
		opts.DB = pool
		logger.Info().Msg("connected to database")
	}

	if cfg.OCREnabled {
		opts.OCR = ocr.NewTesseract(cfg.TesseractPath, cfg.OCRTimeout)
		logger.Info().Str("binary", cfg.TesseractPath).Msg("ocr enabled")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(opts),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15*time.Second + cfg.OCRTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info().Str("port", cfg.Port).Msg("server listening")
	return waitForShutdown(server, errCh, logger)
}

func waitForShutdown(server *http.Server, errCh <-chan error, logger zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("server error")
		}
		return err
	case <-stop:
	}

	logger.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}
