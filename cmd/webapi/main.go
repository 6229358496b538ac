/*
Webapi is the executable for the wallpaper catalog web server.
It serves the JSON API under `/api`, static assets under `/static` and the HTML shells of the site's pages.

Usage:

	webapi [flags]

Flags and configurations are handled automatically by the code in `load-configuration.go`.

Return values (exit codes):

	0
		The program ended successfully (no errors, stopped by signal)

	> 0
		The program ended due to an error

Note that an empty store is populated with the embedded default catalog, unless seeding is disabled.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardanlabs/conf"
	"github.com/silktrader/wallpapers/pkg/catalog"
	"github.com/silktrader/wallpapers/pkg/rest"
	"github.com/silktrader/wallpapers/pkg/seed"
	"github.com/silktrader/wallpapers/pkg/storage"
	"github.com/silktrader/wallpapers/pkg/storage/assets"
	"github.com/silktrader/wallpapers/pkg/subscriptions"
	"github.com/sirupsen/logrus"
)

// main is the program entry point. The only purpose of this function is to call run() and set the exit code if there is
// any error
func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error: ", err)
		os.Exit(1)
	}
}

// run executes the program. The body of this function performs the following steps:
// * reads the configuration
// * creates and configures the logger
// * connects to the database, seeding it when empty
// * builds the handler: API routes, static files, page shells, CORS and panic recovery
// * starts the web server
// * waits for any termination event: SIGTERM signal (UNIX), non-recoverable server error, etc.
// * closes the web server
func run() error {
	// Load Configuration and defaults
	cfg, err := loadConfiguration(os.Args[1:])
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			return nil
		}
		return err
	}

	// Init logging
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	logger.Infof("application initializing")

	// initialise database before registering handlers for an immediate exit in case of issues
	db, err := storage.New(logger, cfg.DB.URL)
	if err != nil {
		logger.WithError(err).Error("error initialising storage")
		return fmt.Errorf("error while initialising storage: %w", err)
	}
	defer db.Close()

	if cfg.DB.Seed {
		if err = seedIfEmpty(logger, db); err != nil {
			logger.WithError(err).Error("error seeding storage")
			return fmt.Errorf("seeding storage: %w", err)
		}
	}

	// Start (main) API server
	logger.Info("initializing API server")

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	handler, err := buildHandler(cfg, logger, db)
	if err != nil {
		logger.WithError(err).Error("error creating the API server instance")
		return fmt.Errorf("creating the API server instance: %w", err)
	}

	// create the API server
	server := http.Server{
		Addr:              cfg.Web.APIHost,
		Handler:           handler,
		ReadTimeout:       cfg.Web.ReadTimeout,
		ReadHeaderTimeout: cfg.Web.ReadTimeout,
		WriteTimeout:      cfg.Web.WriteTimeout,
	}

	// Start the service listening for requests in a separate goroutine
	go func() {
		logger.Infof("API listening on %s", server.Addr)
		serverErrors <- server.ListenAndServe()
		logger.Infof("stopping API server")
	}()

	// Waiting for shutdown signal or POSIX signals
	select {
	case err := <-serverErrors:
		// Non-recoverable server error
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("signal %v received, start shutdown", sig)

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and load shed.
		err = server.Shutdown(ctx)
		if err != nil {
			logger.WithError(err).Warning("error during graceful shutdown of HTTP server")
			err = server.Close()
		}

		if err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

// seedIfEmpty populates a store lacking categories with the embedded default catalog.
func seedIfEmpty(logger logrus.FieldLogger, db *storage.Storage) error {
	defaults, err := seed.Load("")
	if err != nil {
		return err
	}
	_, err = seed.New(logger, db).IfEmpty(context.Background(), defaults)
	return err
}

// buildHandler registers every route on a new engine and wraps it with the CORS policy and panic recovery.
func buildHandler(cfg webAPIConfiguration, logger *logrus.Logger, db *storage.Storage) (http.Handler, error) {
	e, err := rest.New(rest.Config{
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	catalog.RegisterHandlers(e, catalog.NewStore(db.Connection))
	subscriptions.RegisterHandlers(e, subscriptions.NewStore(db.Connection))

	static, err := assets.New(logger, cfg.Web.StaticDir)
	if err != nil {
		return nil, fmt.Errorf("initialising static assets: %w", err)
	}
	e.ServeFiles("/static/*filepath", static.FileSystem())

	if err = registerWebUI(e, cfg.AnalyticsKey); err != nil {
		return nil, fmt.Errorf("registering web UI handler: %w", err)
	}

	// Apply CORS policy, then recover from panics anywhere down the chain
	var handler = applyCORSHandler(e.Handler())
	return applyRecoveryHandler(handler, logger), nil
}
