package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/silktrader/wallpapers/pkg/ntime"
	"github.com/silktrader/wallpapers/pkg/storage"
)

// Storer lists the catalog operations served over HTTP.
type Storer interface {
	GetCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, slug string) (Category, error)
	GetTags(ctx context.Context) ([]Tag, error)

	GetWallpapers(ctx context.Context) ([]Wallpaper, error)
	GetFeatured(ctx context.Context, limit int) ([]Wallpaper, error)
	GetTrending(ctx context.Context, limit int) ([]Wallpaper, error)
	GetCategoryWallpapers(ctx context.Context, categorySlug string) ([]Wallpaper, error)
	ViewWallpaper(ctx context.Context, slug string) (Wallpaper, error)
	Search(ctx context.Context, query string) ([]Wallpaper, error)
}

type Store struct {
	Connection *sqlx.DB
}

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

const wallpaperColumns = `
	w.id, w.title, w.slug, w.description, w.image_url, w.width, w.height, w.file_size, w.format,
	w.category_id, w.is_premium, w.is_featured, w.is_popular, w.is_new, w.downloads, w.views, w.created_at`

// newestFirst orders wallpapers by creation time, breaking ties with the most recent ids
const newestFirst = `ORDER BY w.created_at DESC, w.id DESC`

// NewStore returns a catalog repository, or store, wrapping the shared connection.
func NewStore(connection *sqlx.DB) *Store {
	return &Store{connection}
}

func (s *Store) GetCategories(ctx context.Context) ([]Category, error) {
	var categories = make([]Category, 0)
	err := s.Connection.SelectContext(ctx, &categories, `SELECT id, name, slug, image_url, count FROM categories ORDER BY id`)
	return categories, err
}

func (s *Store) GetCategory(ctx context.Context, slug string) (category Category, err error) {
	if err = s.Connection.GetContext(ctx, &category, s.Connection.Rebind(`
		SELECT id, name, slug, image_url, count FROM categories WHERE slug = ?`), slug,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return category, ErrNotFound
		}
		return category, err
	}
	return category, nil
}

func (s *Store) GetTags(ctx context.Context) ([]Tag, error) {
	var tags = make([]Tag, 0)
	err := s.Connection.SelectContext(ctx, &tags, `SELECT id, name FROM tags ORDER BY id`)
	return tags, err
}

// GetWallpapers returns every wallpaper, most recent first.
func (s *Store) GetWallpapers(ctx context.Context) ([]Wallpaper, error) {
	return s.selectWallpapers(ctx, `SELECT `+wallpaperColumns+` FROM wallpapers w `+newestFirst)
}

// GetFeatured returns up to limit featured wallpapers, most recent first.
func (s *Store) GetFeatured(ctx context.Context, limit int) ([]Wallpaper, error) {
	return s.selectWallpapers(ctx, `
		SELECT `+wallpaperColumns+` FROM wallpapers w
		WHERE w.is_featured `+newestFirst+` LIMIT ?`, limit)
}

// GetTrending returns up to limit popular wallpapers, most viewed first.
func (s *Store) GetTrending(ctx context.Context, limit int) ([]Wallpaper, error) {
	return s.selectWallpapers(ctx, `
		SELECT `+wallpaperColumns+` FROM wallpapers w
		WHERE w.is_popular ORDER BY w.views DESC, w.id ASC LIMIT ?`, limit)
}

// GetCategoryWallpapers returns the wallpapers of a category, most recent first. The AllCategories alias skips the
// category lookup and returns every wallpaper.
func (s *Store) GetCategoryWallpapers(ctx context.Context, categorySlug string) ([]Wallpaper, error) {
	if categorySlug == AllCategories {
		return s.GetWallpapers(ctx)
	}

	category, err := s.GetCategory(ctx, categorySlug)
	if err != nil {
		return nil, err
	}

	return s.selectWallpapers(ctx, `
		SELECT `+wallpaperColumns+` FROM wallpapers w
		WHERE w.category_id = ? `+newestFirst, category.Id)
}

// GetWallpaper fetches a wallpaper and its tags, leaving views untouched.
func (s *Store) GetWallpaper(ctx context.Context, slug string) (Wallpaper, error) {
	wallpapers, err := s.selectWallpapers(ctx, `
		SELECT `+wallpaperColumns+` FROM wallpapers w WHERE w.slug = ?`, slug)
	if err != nil {
		return Wallpaper{}, err
	}
	if len(wallpapers) == 0 {
		return Wallpaper{}, ErrNotFound
	}
	return wallpapers[0], nil
}

// ViewWallpaper increments a wallpaper's views and returns its updated state.
// The increment happens within a single statement, so concurrent views are never lost.
func (s *Store) ViewWallpaper(ctx context.Context, slug string) (Wallpaper, error) {
	result, err := s.Connection.ExecContext(ctx, s.Connection.Rebind(`
		UPDATE wallpapers SET views = views + 1 WHERE slug = ?`), slug)
	if err != nil {
		return Wallpaper{}, err
	}
	if affected, e := result.RowsAffected(); e != nil {
		return Wallpaper{}, e
	} else if affected == 0 {
		return Wallpaper{}, ErrNotFound
	}
	return s.GetWallpaper(ctx, slug)
}

// selectWallpapers runs a wallpapers query, written with `?` placeholders, and attaches tags to the results.
func (s *Store) selectWallpapers(ctx context.Context, query string, args ...interface{}) ([]Wallpaper, error) {
	wallpapers, err := s.selectRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return wallpapers, s.loadTags(ctx, wallpapers)
}

func (s *Store) selectRows(ctx context.Context, query string, args ...interface{}) ([]Wallpaper, error) {
	var wallpapers = make([]Wallpaper, 0)
	if err := s.Connection.SelectContext(ctx, &wallpapers, s.Connection.Rebind(query), args...); err != nil {
		return nil, err
	}
	return wallpapers, nil
}

type wallpaperTagName struct {
	WallpaperId int64  `db:"wallpaper_id"`
	Name        string `db:"name"`
}

// loadTags fills in the tag names of all wallpapers with a single query, following join rows' insertion order.
func (s *Store) loadTags(ctx context.Context, wallpapers []Wallpaper) error {
	if len(wallpapers) == 0 {
		return nil
	}

	var ids = make([]int64, len(wallpapers))
	var positions = make(map[int64]int, len(wallpapers))
	for i := range wallpapers {
		ids[i] = wallpapers[i].Id
		positions[wallpapers[i].Id] = i
		wallpapers[i].Tags = make([]string, 0)
	}

	query, args, err := sqlx.In(`
		SELECT wt.wallpaper_id, t.name FROM wallpaper_tags wt
		JOIN tags t ON t.id = wt.tag_id
		WHERE wt.wallpaper_id IN (?)
		ORDER BY wt.id`, ids)
	if err != nil {
		return err
	}

	var names []wallpaperTagName
	if err = s.Connection.SelectContext(ctx, &names, s.Connection.Rebind(query), args...); err != nil {
		return err
	}

	for _, name := range names {
		var i = positions[name.WallpaperId]
		wallpapers[i].Tags = append(wallpapers[i].Tags, name.Name)
	}
	return nil
}

// Catalog population

func (s *Store) CountCategories(ctx context.Context) (count int, err error) {
	return count, s.Connection.GetContext(ctx, &count, `SELECT count(*) FROM categories`)
}

func (s *Store) AddCategory(ctx context.Context, data AddCategoryData) (Category, error) {
	var category = Category{Name: data.Name, Slug: data.Slug, ImageURL: data.ImageURL}
	err := s.Connection.QueryRowxContext(ctx, s.Connection.Rebind(`
		INSERT INTO categories (name, slug, image_url, count) VALUES (?, ?, ?, 0) RETURNING id`),
		data.Name, data.Slug, data.ImageURL,
	).Scan(&category.Id)
	if storage.IsUniqueViolation(err) {
		return category, fmt.Errorf("category %q: %w", data.Slug, ErrDuplicate)
	}
	return category, err
}

func (s *Store) AddTag(ctx context.Context, name string) (Tag, error) {
	var tag = Tag{Name: name}
	err := s.Connection.QueryRowxContext(ctx, s.Connection.Rebind(`
		INSERT INTO tags (name) VALUES (?) RETURNING id`), name,
	).Scan(&tag.Id)
	if storage.IsUniqueViolation(err) {
		return tag, fmt.Errorf("tag %q: %w", name, ErrDuplicate)
	}
	return tag, err
}

/*
AddWallpaper inserts a wallpaper, attaches its tags by name and bumps the category count, all within a transaction.

It fails with:
  - ErrNotFound, when the category slug or any tag name doesn't resolve
  - ErrDuplicate, when the wallpaper slug is taken

Repeated tag names are attached once.
*/
func (s *Store) AddWallpaper(ctx context.Context, data AddWallpaperData) (Wallpaper, error) {
	tx, err := s.Connection.BeginTxx(ctx, nil)
	if err != nil {
		return Wallpaper{}, err
	}

	// rolling back after a transaction commit will result in a safe NOP
	defer func() { _ = tx.Rollback() }()

	var categoryId int64
	if err = tx.GetContext(ctx, &categoryId, tx.Rebind(`SELECT id FROM categories WHERE slug = ?`), data.CategorySlug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Wallpaper{}, fmt.Errorf("category %q: %w", data.CategorySlug, ErrNotFound)
		}
		return Wallpaper{}, err
	}

	var wallpaperId int64
	err = tx.QueryRowxContext(ctx, tx.Rebind(`
		INSERT INTO wallpapers (title, slug, description, image_url, width, height, file_size, format, category_id,
		                        is_premium, is_featured, is_popular, is_new, downloads, views, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		data.Title, data.Slug, data.Description, data.ImageURL, data.Width, data.Height, data.FileSize, data.Format,
		categoryId, data.IsPremium, data.IsFeatured, data.IsPopular, data.IsNew, data.Downloads, data.Views,
		ntime.Now(),
	).Scan(&wallpaperId)
	if storage.IsUniqueViolation(err) {
		return Wallpaper{}, fmt.Errorf("wallpaper %q: %w", data.Slug, ErrDuplicate)
	}
	if err != nil {
		return Wallpaper{}, err
	}

	for _, name := range data.Tags {
		var tagId int64
		if err = tx.GetContext(ctx, &tagId, tx.Rebind(`SELECT id FROM tags WHERE name = ?`), name); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return Wallpaper{}, fmt.Errorf("tag %q: %w", name, ErrNotFound)
			}
			return Wallpaper{}, err
		}
		if _, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO wallpaper_tags (wallpaper_id, tag_id) VALUES (?, ?)
			ON CONFLICT (wallpaper_id, tag_id) DO NOTHING`), wallpaperId, tagId); err != nil {
			return Wallpaper{}, err
		}
	}

	if _, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE categories SET count = count + 1 WHERE id = ?`), categoryId); err != nil {
		return Wallpaper{}, err
	}

	if err = tx.Commit(); err != nil {
		return Wallpaper{}, err
	}

	return s.GetWallpaper(ctx, data.Slug)
}

// RecountCategories recomputes every category's count from the stored wallpapers.
func (s *Store) RecountCategories(ctx context.Context) error {
	_, err := s.Connection.ExecContext(ctx, `
		UPDATE categories SET count = (SELECT count(*) FROM wallpapers WHERE wallpapers.category_id = categories.id)`)
	return err
}
