package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"diagnosis-app-server/internal/config"
	"diagnosis-app-server/internal/handlers"
	"diagnosis-app-server/internal/logger"
	"diagnosis-app-server/internal/models"
	"diagnosis-app-server/internal/repositories"
	"diagnosis-app-server/internal/routes"
	"diagnosis-app-server/internal/seed"
	"diagnosis-app-server/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:           "diagnosis-server",
		Short:         "Diagnosis records API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the diagnoses table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}

			db, err := models.OpenDB(cfg.Database, logger.Gorm(log))
			if err != nil {
				return err
			}
			defer closeDB(db, log)

			if err := models.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			log.Info().Str("driver", cfg.Database.Driver).Msg("schema is up to date")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Upsert the development fixture diagnoses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}

			db, err := models.InitDB(cfg.Database, logger.Gorm(log))
			if err != nil {
				return err
			}
			defer closeDB(db, log)

			if _, err := seed.Run(cmd.Context(), repositories.NewDiagnosisRepository(db), log); err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			return nil
		},
	}
}

func bootstrap() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	return cfg, logger.New(cfg), nil
}

func closeDB(db *gorm.DB, log zerolog.Logger) {
	if err := models.CloseDB(db); err != nil {
		log.Warn().Err(err).Msg("closing database")
	}
}

func runServer() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	db, err := models.InitDB(cfg.Database, logger.Gorm(log))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer closeDB(db, log)
	log.Info().Str("driver", cfg.Database.Driver).Msg("database connected")

	repo := repositories.NewDiagnosisRepository(db)
	diagnosisService := services.NewDiagnosisService(repo, log)
	diagnosisHandler := handlers.NewDiagnosisHandler(diagnosisService, log)
	router := routes.NewRouter(cfg, log, diagnosisHandler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("origin", cfg.Origin).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
