package catalog

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/silktrader/wallpapers/pkg/ntime"
)

// AllCategories is the category slug alias that lists every wallpaper, regardless of category.
const AllCategories = "all"

var slugRule = validation.Match(regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)).Error("must be a lowercase, dash separated slug")

// Stored entities

type Category struct {
	Id       int64   `db:"id"`
	Name     string  `db:"name"`
	Slug     string  `db:"slug"`
	ImageURL *string `db:"image_url"`
	Count    int     `db:"count"`
}

type Tag struct {
	Id   int64  `db:"id"`
	Name string `db:"name"`
}

type Wallpaper struct {
	Id          int64       `db:"id"`
	Title       string      `db:"title"`
	Slug        string      `db:"slug"`
	Description *string     `db:"description"`
	ImageURL    string      `db:"image_url"`
	Width       int         `db:"width"`
	Height      int         `db:"height"`
	FileSize    *string     `db:"file_size"`
	Format      *string     `db:"format"`
	CategoryId  int64       `db:"category_id"`
	IsPremium   bool        `db:"is_premium"`
	IsFeatured  bool        `db:"is_featured"`
	IsPopular   bool        `db:"is_popular"`
	IsNew       bool        `db:"is_new"`
	Downloads   int         `db:"downloads"`
	Views       int         `db:"views"`
	CreatedAt   ntime.NTime `db:"created_at"`

	// Tags lists tag names in the order their join rows were created
	Tags []string `db:"-"`
}

// Response records

type CategoryRecord struct {
	Id       int64   `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ImageURL *string `json:"imageUrl"`
	Count    int     `json:"count"`
}

type TagRecord struct {
	Id   int64  `json:"id"`
	Name string `json:"name"`
}

type WallpaperRecord struct {
	Id          int64       `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Description *string     `json:"description"`
	ImageURL    string      `json:"imageUrl"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	FileSize    *string     `json:"fileSize"`
	Format      *string     `json:"format"`
	CategoryId  int64       `json:"categoryId"`
	IsPremium   bool        `json:"isPremium"`
	IsFeatured  bool        `json:"isFeatured"`
	IsPopular   bool        `json:"isPopular"`
	IsNew       bool        `json:"isNew"`
	Downloads   int         `json:"downloads"`
	Views       int         `json:"views"`
	CreatedAt   ntime.NTime `json:"createdAt"`
	Tags        []string    `json:"tags"`
}

func (c Category) Record() CategoryRecord {
	return CategoryRecord{
		Id:       c.Id,
		Name:     c.Name,
		Slug:     c.Slug,
		ImageURL: c.ImageURL,
		Count:    c.Count,
	}
}

func (t Tag) Record() TagRecord {
	return TagRecord{Id: t.Id, Name: t.Name}
}

func (w Wallpaper) Record() WallpaperRecord {
	// tags are never serialised as null
	var tags = make([]string, len(w.Tags))
	copy(tags, w.Tags)

	return WallpaperRecord{
		Id:          w.Id,
		Title:       w.Title,
		Slug:        w.Slug,
		Description: w.Description,
		ImageURL:    w.ImageURL,
		Width:       w.Width,
		Height:      w.Height,
		FileSize:    w.FileSize,
		Format:      w.Format,
		CategoryId:  w.CategoryId,
		IsPremium:   w.IsPremium,
		IsFeatured:  w.IsFeatured,
		IsPopular:   w.IsPopular,
		IsNew:       w.IsNew,
		Downloads:   w.Downloads,
		Views:       w.Views,
		CreatedAt:   w.CreatedAt,
		Tags:        tags,
	}
}

func categoryRecords(categories []Category) []CategoryRecord {
	var records = make([]CategoryRecord, 0, len(categories))
	for _, category := range categories {
		records = append(records, category.Record())
	}
	return records
}

func tagRecords(tags []Tag) []TagRecord {
	var records = make([]TagRecord, 0, len(tags))
	for _, tag := range tags {
		records = append(records, tag.Record())
	}
	return records
}

func wallpaperRecords(wallpapers []Wallpaper) []WallpaperRecord {
	var records = make([]WallpaperRecord, 0, len(wallpapers))
	for _, wallpaper := range wallpapers {
		records = append(records, wallpaper.Record())
	}
	return records
}

// Insertion data, also the shape of seed catalog entries

type AddCategoryData struct {
	Name     string  `yaml:"name"`
	Slug     string  `yaml:"slug"`
	ImageURL *string `yaml:"image_url"`
}

func (data AddCategoryData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Name, validation.Required, validation.Length(1, 50)),
		validation.Field(&data.Slug, validation.Required, validation.Length(1, 50), slugRule),
	)
}

type AddWallpaperData struct {
	Title        string   `yaml:"title"`
	Slug         string   `yaml:"slug"`
	Description  *string  `yaml:"description"`
	ImageURL     string   `yaml:"image_url"`
	Width        int      `yaml:"width"`
	Height       int      `yaml:"height"`
	FileSize     *string  `yaml:"file_size"`
	Format       *string  `yaml:"format"`
	CategorySlug string   `yaml:"category"`
	IsPremium    bool     `yaml:"is_premium"`
	IsFeatured   bool     `yaml:"is_featured"`
	IsPopular    bool     `yaml:"is_popular"`
	IsNew        bool     `yaml:"is_new"`
	Downloads    int      `yaml:"downloads"`
	Views        int      `yaml:"views"`
	Tags         []string `yaml:"tags"`
}

func (data AddWallpaperData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Title, validation.Required, validation.Length(1, 100)),
		validation.Field(&data.Slug, validation.Required, validation.Length(1, 120), slugRule),
		validation.Field(&data.ImageURL, validation.Required),
		validation.Field(&data.Width, validation.Required, validation.Min(1)),
		validation.Field(&data.Height, validation.Required, validation.Min(1)),
		validation.Field(&data.CategorySlug, validation.Required),
		validation.Field(&data.Downloads, validation.Min(0)),
		validation.Field(&data.Views, validation.Min(0)),
		validation.Field(&data.Tags, validation.Each(validation.Required)),
	)
}
