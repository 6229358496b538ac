/*
Package seed fills a store with a catalog of categories, tags and wallpapers.

The default catalog is embedded in the executable; other catalogs can be loaded from YAML files of the same shape.
*/
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/silktrader/wallpapers/pkg/catalog"
	"github.com/silktrader/wallpapers/pkg/storage"
	"github.com/silktrader/wallpapers/pkg/users"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

//go:embed catalog.yaml
var defaultCatalog []byte

const (
	adminUsername = "admin"
	adminEmail    = "admin@example.com"
)

var ErrNoAdminPassword = errors.New("no admin password provided")

type Catalog struct {
	Categories []catalog.AddCategoryData  `yaml:"categories"`
	Tags       []string                   `yaml:"tags"`
	Wallpapers []catalog.AddWallpaperData `yaml:"wallpapers"`
}

func (c Catalog) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Categories, validation.Required),
		validation.Field(&c.Tags, validation.Each(validation.Required)),
		validation.Field(&c.Wallpapers),
	)
}

// Load reads the catalog at path, or the embedded default catalog when path is empty.
func Load(path string) (Catalog, error) {
	if path == "" {
		return Parse(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog, rejecting unknown keys and invalid entries.
func Parse(data []byte) (c Catalog, err error) {
	if err = yaml.UnmarshalStrict(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("decoding catalog: %w", err)
	}
	if err = c.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("invalid catalog: %w", err)
	}
	return c, nil
}

type Seeder struct {
	logger  logrus.FieldLogger
	storage *storage.Storage
	catalog *catalog.Store
	users   *users.Store
}

func New(logger logrus.FieldLogger, db *storage.Storage) *Seeder {
	return &Seeder{
		logger:  logger,
		storage: db,
		catalog: catalog.NewStore(db.Connection),
		users:   users.NewStore(db.Connection),
	}
}

// IfEmpty populates the store only when it holds no categories, reporting whether it did.
func (s *Seeder) IfEmpty(ctx context.Context, c Catalog) (bool, error) {
	count, err := s.catalog.CountCategories(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		s.logger.WithField("categories", count).Debug("store already populated, skipping seed")
		return false, nil
	}
	return true, s.Populate(ctx, c)
}

// Populate inserts the catalog's categories, tags and wallpapers, then recomputes category counts.
func (s *Seeder) Populate(ctx context.Context, c Catalog) error {
	for _, category := range c.Categories {
		if _, err := s.catalog.AddCategory(ctx, category); err != nil {
			return err
		}
	}

	for _, name := range c.Tags {
		if _, err := s.catalog.AddTag(ctx, name); err != nil {
			return err
		}
	}

	for _, wallpaper := range c.Wallpapers {
		if _, err := s.catalog.AddWallpaper(ctx, wallpaper); err != nil {
			return err
		}
	}

	if err := s.catalog.RecountCategories(ctx); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"categories": len(c.Categories),
		"tags":       len(c.Tags),
		"wallpapers": len(c.Wallpapers),
	}).Info("catalog seeded")
	return nil
}

/*
Reseed drops every table, rebuilds the schema and populates it with the catalog.

An admin user is created when adminPassword isn't empty; otherwise it's skipped, and ErrNoAdminPassword is returned
alongside a populated store.
*/
func (s *Seeder) Reseed(ctx context.Context, c Catalog, adminPassword string) error {
	if err := s.storage.Reset(); err != nil {
		return fmt.Errorf("resetting storage: %w", err)
	}

	if err := s.Populate(ctx, c); err != nil {
		return err
	}

	if adminPassword == "" {
		return ErrNoAdminPassword
	}

	admin, err := s.users.Register(ctx, users.AddUserData{
		Username: adminUsername,
		Email:    adminEmail,
		Password: adminPassword,
	})
	if err != nil {
		return err
	}
	s.logger.WithField("username", admin.Username).Info("created admin user")
	return nil
}
