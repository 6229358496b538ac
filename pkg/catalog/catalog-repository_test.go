package catalog

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/silktrader/wallpapers/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string) *string {
	return &s
}

// newTestStore returns a store over a fresh SQLite file, populated with a small catalog.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := storage.New(logger, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var store = NewStore(db.Connection)
	var ctx = context.Background()

	for _, category := range []AddCategoryData{
		{Name: "Space", Slug: "space", ImageURL: text("/static/images/categories/space.jpg")},
		{Name: "Nature", Slug: "nature"},
		{Name: "Cyberpunk", Slug: "cyberpunk"},
	} {
		_, err = store.AddCategory(ctx, category)
		require.NoError(t, err)
	}

	for _, name := range []string{"Space", "Dark", "Neon", "Nature", "AI Generated"} {
		_, err = store.AddTag(ctx, name)
		require.NoError(t, err)
	}

	// insertion order determines the newest first ordering
	for _, wallpaper := range []AddWallpaperData{
		{
			Title: "Cosmic Nebula", Slug: "cosmic-nebula", Description: text("A stunning cosmic nebula with stars."),
			ImageURL: "/static/images/wallpapers/cosmic-nebula.jpg", Width: 3840, Height: 2160,
			FileSize: text("3.2 MB"), Format: text("JPG"), CategorySlug: "space",
			IsPremium: true, IsFeatured: true, IsNew: true, Downloads: 320, Views: 890,
			Tags: []string{"Space", "Dark", "AI Generated"},
		},
		{
			Title: "Serene Forest", Slug: "serene-forest", Description: text("A peaceful forest scene."),
			ImageURL: "/static/images/wallpapers/serene-forest.jpg", Width: 3840, Height: 2160,
			CategorySlug: "nature", IsFeatured: true, Views: 780,
			Tags: []string{"Nature"},
		},
		{
			Title: "Neon City Lights", Slug: "neon-city-lights", Description: text("A futuristic cityscape with dark alleys."),
			ImageURL: "/static/images/wallpapers/neon-city-lights.jpg", Width: 3840, Height: 2160,
			CategorySlug: "cyberpunk", IsPopular: true, Views: 1520,
			Tags: []string{"Neon", "AI Generated"},
		},
		{
			Title: "Midnight Grove", Slug: "midnight-grove",
			ImageURL: "/static/images/wallpapers/midnight-grove.jpg", Width: 1920, Height: 1080,
			CategorySlug: "nature", IsPopular: true, Views: 300,
			Tags: []string{"Dark", "Nature"},
		},
	} {
		_, err = store.AddWallpaper(ctx, wallpaper)
		require.NoError(t, err)
	}

	return store
}

func slugs(wallpapers []Wallpaper) []string {
	var result = make([]string, 0, len(wallpapers))
	for _, wallpaper := range wallpapers {
		result = append(result, wallpaper.Slug)
	}
	return result
}

func TestGetWallpapersNewestFirst(t *testing.T) {
	store := newTestStore(t)

	wallpapers, err := store.GetWallpapers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"midnight-grove", "neon-city-lights", "serene-forest", "cosmic-nebula"}, slugs(wallpapers))

	// repeated queries yield the same order
	again, err := store.GetWallpapers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, slugs(wallpapers), slugs(again))
}

func TestTagsFollowJoinOrder(t *testing.T) {
	store := newTestStore(t)

	wallpaper, err := store.GetWallpaper(context.Background(), "cosmic-nebula")
	require.NoError(t, err)
	assert.Equal(t, []string{"Space", "Dark", "AI Generated"}, wallpaper.Tags)
	assert.Equal(t, "3.2 MB", *wallpaper.FileSize)
	assert.True(t, wallpaper.IsPremium)
	assert.True(t, wallpaper.CreatedAt.IsValid())

	wallpaper, err = store.GetWallpaper(context.Background(), "midnight-grove")
	require.NoError(t, err)
	assert.Nil(t, wallpaper.Description)
	assert.Nil(t, wallpaper.Format)
	assert.Equal(t, []string{"Dark", "Nature"}, wallpaper.Tags)
}

func TestGetFeatured(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	wallpapers, err := store.GetFeatured(ctx, defaultFeaturedLimit)
	require.NoError(t, err)
	assert.Equal(t, []string{"serene-forest", "cosmic-nebula"}, slugs(wallpapers))

	wallpapers, err = store.GetFeatured(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"serene-forest"}, slugs(wallpapers))

	wallpapers, err = store.GetFeatured(ctx, 0)
	require.NoError(t, err)
	assert.NotNil(t, wallpapers)
	assert.Empty(t, wallpapers)
}

func TestGetTrendingByViews(t *testing.T) {
	store := newTestStore(t)

	wallpapers, err := store.GetTrending(context.Background(), defaultTrendingLimit)
	require.NoError(t, err)
	assert.Equal(t, []string{"neon-city-lights", "midnight-grove"}, slugs(wallpapers))
}

func TestGetCategoryWallpapers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	wallpapers, err := store.GetCategoryWallpapers(ctx, "nature")
	require.NoError(t, err)
	assert.Equal(t, []string{"midnight-grove", "serene-forest"}, slugs(wallpapers))

	all, err := store.GetCategoryWallpapers(ctx, AllCategories)
	require.NoError(t, err)
	everything, err := store.GetWallpapers(ctx)
	require.NoError(t, err)
	assert.Equal(t, everything, all)

	_, err = store.GetCategoryWallpapers(ctx, "anime")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategories(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	categories, err := store.GetCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3)

	var counts = make(map[string]int)
	for _, category := range categories {
		counts[category.Slug] = category.Count
	}
	assert.Equal(t, map[string]int{"space": 1, "nature": 2, "cyberpunk": 1}, counts)

	category, err := store.GetCategory(ctx, "space")
	require.NoError(t, err)
	assert.Equal(t, "Space", category.Name)
	assert.Equal(t, "/static/images/categories/space.jpg", *category.ImageURL)

	_, err = store.GetCategory(ctx, "anime")
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := store.CountCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestGetTags(t *testing.T) {
	store := newTestStore(t)

	tags, err := store.GetTags(context.Background())
	require.NoError(t, err)
	var names []string
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	assert.ElementsMatch(t, []string{"Space", "Dark", "Neon", "Nature", "AI Generated"}, names)
}

func TestViewWallpaper(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.ViewWallpaper(ctx, "serene-forest")
	require.NoError(t, err)
	assert.Equal(t, 781, first.Views)

	second, err := store.ViewWallpaper(ctx, "serene-forest")
	require.NoError(t, err)
	assert.Equal(t, 782, second.Views)
	assert.Equal(t, []string{"Nature"}, second.Tags)

	_, err = store.ViewWallpaper(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentViewsAreNotLost(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const viewers = 20
	var wg sync.WaitGroup
	var errs = make(chan error, viewers)
	for i := 0; i < viewers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.ViewWallpaper(ctx, "cosmic-nebula")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	wallpaper, err := store.GetWallpaper(ctx, "cosmic-nebula")
	require.NoError(t, err)
	assert.Equal(t, 890+viewers, wallpaper.Views)
}

func TestAddWallpaperFailures(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var data = AddWallpaperData{
		Title: "Cosmic Nebula II", Slug: "cosmic-nebula", ImageURL: "/x.jpg", Width: 1, Height: 1, CategorySlug: "space",
	}
	_, err := store.AddWallpaper(ctx, data)
	assert.ErrorIs(t, err, ErrDuplicate)

	data.Slug = "cosmic-nebula-ii"
	data.CategorySlug = "anime"
	_, err = store.AddWallpaper(ctx, data)
	assert.ErrorIs(t, err, ErrNotFound)

	data.CategorySlug = "space"
	data.Tags = []string{"Space", "Unknown"}
	_, err = store.AddWallpaper(ctx, data)
	assert.ErrorIs(t, err, ErrNotFound)

	// failed insertions are rolled back along with the count
	_, err = store.GetWallpaper(ctx, "cosmic-nebula-ii")
	assert.ErrorIs(t, err, ErrNotFound)
	category, err := store.GetCategory(ctx, "space")
	require.NoError(t, err)
	assert.Equal(t, 1, category.Count)
}

func TestAddWallpaperAttachesRepeatedTagOnce(t *testing.T) {
	store := newTestStore(t)

	wallpaper, err := store.AddWallpaper(context.Background(), AddWallpaperData{
		Title: "Dark Matter", Slug: "dark-matter", ImageURL: "/dark.jpg", Width: 10, Height: 10,
		CategorySlug: "space", Tags: []string{"Dark", "Space", "Dark"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dark", "Space"}, wallpaper.Tags)
}

func TestAddDuplicates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddCategory(ctx, AddCategoryData{Name: "Space again", Slug: "space"})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = store.AddTag(ctx, "Neon")
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestRecountCategories(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Connection.Exec(`UPDATE categories SET count = 42`)
	require.NoError(t, err)
	require.NoError(t, store.RecountCategories(ctx))

	category, err := store.GetCategory(ctx, "nature")
	require.NoError(t, err)
	assert.Equal(t, 2, category.Count)
}
