package seed

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/silktrader/wallpapers/pkg/catalog"
	"github.com/silktrader/wallpapers/pkg/storage"
	"github.com/silktrader/wallpapers/pkg/users"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestStorage(t *testing.T) *storage.Storage {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := storage.New(logger, filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestSeeder(t *testing.T) (*Seeder, *storage.Storage) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db := newTestStorage(t)
	return New(logger, db), db
}

func TestLoadDefaultCatalog(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Len(t, c.Categories, 6)
	assert.Len(t, c.Tags, 18)
	require.Len(t, c.Wallpapers, 10)

	first := c.Wallpapers[0]
	assert.Equal(t, "neon-city-lights", first.Slug)
	assert.Equal(t, "futuristic", first.CategorySlug)
	assert.Equal(t, "2.3 MB", *first.FileSize)
	assert.Equal(t, []string{"4K", "Futuristic", "Neon", "Cyberpunk", "AI-Generated"}, first.Tags)
	assert.True(t, c.Wallpapers[9].IsPremium)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories:
  - name: Space
    slug: space
tags: [Dark]
wallpapers:
  - title: Void
    slug: void
    image_url: /static/images/wallpapers/void.jpg
    width: 640
    height: 480
    category: space
    tags: [Dark]
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Nil(t, c.Categories[0].ImageURL)
	assert.Nil(t, c.Wallpapers[0].Description)
	assert.Equal(t, []string{"Dark"}, c.Wallpapers[0].Tags)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no categories", `tags: [Dark]`},
		{"unknown key", "categories:\n  - name: Space\n    slug: space\n    colour: black\n"},
		{"malformed slug", "categories:\n  - name: Space\n    slug: Deep Space\n"},
		{"blank tag", "categories:\n  - name: Space\n    slug: space\ntags: ['']\n"},
		{"wallpaper without size", "categories:\n  - name: Space\n    slug: space\nwallpapers:\n  - title: Void\n    slug: void\n    image_url: /void.jpg\n    category: space\n"},
		{"not yaml", "categories: [: oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestIfEmpty(t *testing.T) {
	seeder, db := newTestSeeder(t)
	ctx := context.Background()

	c, err := Load("")
	require.NoError(t, err)

	seeded, err := seeder.IfEmpty(ctx, c)
	require.NoError(t, err)
	assert.True(t, seeded)

	// populated stores are left alone
	seeded, err = seeder.IfEmpty(ctx, c)
	require.NoError(t, err)
	assert.False(t, seeded)

	store := catalog.NewStore(db.Connection)
	categories, err := store.GetCategories(ctx)
	require.NoError(t, err)
	var counts = make(map[string]int)
	for _, category := range categories {
		counts[category.Slug] = category.Count
	}
	assert.Equal(t, map[string]int{
		"abstract": 2, "nature": 2, "space": 2, "futuristic": 2, "sci-fi": 1, "minimalist": 1,
	}, counts)

	featured, err := store.GetFeatured(ctx, 4)
	require.NoError(t, err)
	var slugs []string
	for _, wallpaper := range featured {
		slugs = append(slugs, wallpaper.Slug)
	}
	assert.Equal(t, []string{"minimalist-shapes", "futuristic-code", "cosmic-galaxy", "abstract-fluid"}, slugs)

	trending, err := store.GetTrending(ctx, 6)
	require.NoError(t, err)
	slugs = nil
	for _, wallpaper := range trending {
		slugs = append(slugs, wallpaper.Slug)
	}
	assert.Equal(t, []string{
		"neon-city-lights", "futuristic-code", "neon-geometry", "abstract-fluid", "deep-space-nebula", "sci-fi-portal",
	}, slugs)

	wallpaper, err := store.GetWallpaper(ctx, "cosmic-galaxy")
	require.NoError(t, err)
	assert.Equal(t, []string{"4K", "Space", "Galaxy", "Dark", "AI-Generated"}, wallpaper.Tags)
}

func TestReseed(t *testing.T) {
	seeder, db := newTestSeeder(t)
	ctx := context.Background()

	c, err := Load("")
	require.NoError(t, err)
	require.NoError(t, seeder.Populate(ctx, c))

	store := catalog.NewStore(db.Connection)
	_, err = store.ViewWallpaper(ctx, "serene-forest")
	require.NoError(t, err)

	require.NoError(t, seeder.Reseed(ctx, c, "password123"))

	// the store starts over, so views are back to the catalog's figures
	wallpaper, err := store.GetWallpaper(ctx, "serene-forest")
	require.NoError(t, err)
	assert.Equal(t, 1876, wallpaper.Views)

	count, err := store.CountCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	var admin users.User
	require.NoError(t, db.Connection.Get(&admin,
		`SELECT id, username, email, password, created_at FROM users WHERE username = ?`, "admin"))
	assert.Equal(t, "admin@example.com", admin.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("password123")))
}

func TestReseedWithoutAdminPassword(t *testing.T) {
	seeder, db := newTestSeeder(t)
	ctx := context.Background()

	c, err := Load("")
	require.NoError(t, err)

	assert.ErrorIs(t, seeder.Reseed(ctx, c, ""), ErrNoAdminPassword)

	count, err := catalog.NewStore(db.Connection).CountCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, count)
	var admins int
	require.NoError(t, db.Connection.Get(&admins, `SELECT count(*) FROM users`))
	assert.Zero(t, admins)
}
