/*
Seed rebuilds the wallpaper catalog store from scratch.

It drops every table, recreates the schema, loads a catalog of categories, tags and wallpapers, recomputes category
counts and creates an admin user.

Usage:

	seed [flags]

	WALLPAPERS_ADMIN_PASSWORD=secret seed --catalog=catalog.yaml

The embedded default catalog is used when no catalog file is given. Without an admin password the admin user is
skipped, with a warning.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf"
	"github.com/joho/godotenv"
	"github.com/silktrader/wallpapers/pkg/seed"
	"github.com/silktrader/wallpapers/pkg/storage"
	"github.com/sirupsen/logrus"
)

const namespace = "WALLPAPERS"

type seedConfiguration struct {
	DB struct {
		URL string `conf:"default:wallpapers.db"`
	}
	Catalog       string `conf:"help:YAML catalog path; the embedded catalog when empty"`
	AdminPassword string `conf:"noprint"`
	Debug         bool
}

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error: ", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env file: %w", err)
	}

	var cfg seedConfiguration
	if err := conf.Parse(os.Args[1:], namespace, &cfg); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			usage, err := conf.Usage(namespace, &cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	// parse the catalog before touching the store, so that a broken file leaves it intact
	catalog, err := seed.Load(cfg.Catalog)
	if err != nil {
		return err
	}

	db, err := storage.New(logger, cfg.DB.URL)
	if err != nil {
		return fmt.Errorf("error while initialising storage: %w", err)
	}
	defer db.Close()

	err = seed.New(logger, db).Reseed(context.Background(), catalog, cfg.AdminPassword)
	if errors.Is(err, seed.ErrNoAdminPassword) {
		logger.Warn("no admin password set through WALLPAPERS_ADMIN_PASSWORD or --admin-password, admin user skipped")
		err = nil
	}
	if err != nil {
		return err
	}

	logger.Info("database seeded successfully")
	return nil
}
