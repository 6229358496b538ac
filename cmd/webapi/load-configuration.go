package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// namespace prefixes every environment variable, as in `WALLPAPERS_DB_URL`
const namespace = "WALLPAPERS"

// webAPIConfiguration describes the web API configuration. This structure is automatically parsed by
// loadConfiguration and values from flags, environment variables or the YAML configuration file will be loaded.
type webAPIConfiguration struct {
	Config struct {
		Path string `conf:"default:config.yml"`
	}
	Web struct {
		APIHost         string        `conf:"default:0.0.0.0:3000"`
		ReadTimeout     time.Duration `conf:"default:5s"`
		WriteTimeout    time.Duration `conf:"default:5s"`
		ShutdownTimeout time.Duration `conf:"default:5s"`
		StaticDir       string        `conf:"default:static"`
	}
	DB struct {
		// either a SQLite file path or a `postgres://` URL
		URL  string `conf:"default:wallpapers.db"`
		Seed bool   `conf:"default:true"`
	}
	AnalyticsKey string
	Debug        bool
}

// loadConfiguration creates a webAPIConfiguration starting from flags, environment variables and a `.env` file.
// If a YAML configuration file exists at the configured path, its values take precedence.
func loadConfiguration(args []string) (webAPIConfiguration, error) {
	var cfg webAPIConfiguration

	// variables already present in the environment aren't overwritten
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("loading .env file: %w", err)
	}

	// try to load configuration from environment variables and command line switches
	if err := conf.Parse(args, namespace, &cfg); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			usage, err := conf.Usage(namespace, &cfg)
			if err != nil {
				return cfg, fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return cfg, conf.ErrHelpWanted
		}
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	// override values from YAML if specified and if it exists (useful in k8s/compose)
	fp, err := os.Open(cfg.Config.Path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("can't read the config file, while it exists: %w", err)
	} else if err == nil {
		yamlFile, err := io.ReadAll(fp)
		_ = fp.Close()
		if err != nil {
			return cfg, fmt.Errorf("can't read config file: %w", err)
		}
		if err = yaml.Unmarshal(yamlFile, &cfg); err != nil {
			return cfg, fmt.Errorf("can't unmarshal config file: %w", err)
		}
	}

	return cfg, nil
}
