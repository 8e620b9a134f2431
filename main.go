package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/finanzas/backend/internal/config"
	v1 "github.com/finanzas/backend/internal/controllers/v1"
	"github.com/finanzas/backend/internal/migration"
	"github.com/finanzas/backend/internal/models"
	"github.com/finanzas/backend/internal/router"
	"github.com/finanzas/backend/internal/syncer"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	cfg := config.Load()

	// Create the data directory for the local database
	err := os.MkdirAll(filepath.Dir(cfg.DBFile), os.ModePerm)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// Connect to the local database
	err = models.Connect(cfg.DBFile)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// Install the default categories and accounts on a fresh database
	err = models.Seed(models.DB)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// Resolve name based category references written by old clients
	resolved, err := migration.ResolveCategoryNames(models.DB)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	if resolved > 0 {
		log.Info().Int("records", resolved).Msg("resolved legacy category references")
	}

	// Sync is only active when a remote store is configured
	var reconciler *syncer.Reconciler
	var worker *syncer.Worker
	if cfg.RemoteDSN != "" {
		gateway, err := syncer.NewPostgresGateway(cfg.RemoteDSN)
		if err != nil {
			log.Fatal().Msg(err.Error())
		}

		reconciler = syncer.NewReconciler(models.DB, gateway)
		worker = syncer.NewWorker(reconciler, cfg.SyncInterval)
	} else {
		log.Info().Msg("REMOTE_DB_DSN is not set, sync is disabled")
	}

	apiURL, err := url.Parse(getAPIURL(cfg))
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	r, err := router.Config(apiURL, cfg)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	co := v1.NewController(models.DB, reconciler, worker)
	router.AttachRoutes(cfg, co, r.Group("/"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	if worker != nil {
		if err := worker.Start(ctx); err != nil {
			log.Fatal().Msg(err.Error())
		}
	}

	group.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if worker != nil {
			if err := worker.Stop(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("sync worker shutdown")
			}
		}

		return server.Shutdown(shutdownCtx)
	})

	log.Info().Str("port", cfg.Port).Msg("backend startup complete")

	if err := group.Wait(); err != nil {
		log.Fatal().Msg(err.Error())
	}
}

// getAPIURL returns the base URL clients reach the API under. It is
// used to construct absolute links in responses.
func getAPIURL(cfg config.Config) string {
	if apiURL, ok := os.LookupEnv("API_URL"); ok {
		return apiURL
	}

	return fmt.Sprintf("http://localhost:%s", cfg.Port)
}
