package catalog

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	JSON "github.com/silktrader/wallpapers/pkg/json-utilities"
	"github.com/silktrader/wallpapers/pkg/rest"
)

const (
	defaultFeaturedLimit = 4
	defaultTrendingLimit = 6
)

func RegisterHandlers(engine *rest.Engine, store Storer) {
	engine.Get("/api/categories", getCategories(store))
	engine.Get("/api/categories/:slug", getCategory(store))
	engine.Get("/api/categories/:slug/wallpapers", getCategoryWallpapers(store))

	engine.Get("/api/wallpapers", getWallpapers(store))
	// featured and trending share the :slug route
	engine.Get("/api/wallpapers/:slug", getWallpaperRoute(store))

	engine.Get("/api/search", searchWallpapers(store))
	engine.Get("/api/tags", getTags(store))
}

func getCategories(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		categories, err := store.GetCategories(request.Context())
		if err != nil {
			JSON.InternalServerError(writer, request, err)
			return
		}
		JSON.Ok(writer, categoryRecords(categories))
	}
}

func getCategory(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		category, err := store.GetCategory(request.Context(), rest.GetParam(request, "slug"))
		if errors.Is(err, ErrNotFound) {
			JSON.NotFound(writer, "Category not found")
		} else if err != nil {
			JSON.InternalServerError(writer, request, err)
		} else {
			JSON.Ok(writer, category.Record())
		}
	}
}

// getCategoryWallpapers handles "/api/categories/:slug/wallpapers", where the slug can be the `all` alias
func getCategoryWallpapers(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		wallpapers, err := store.GetCategoryWallpapers(request.Context(), rest.GetParam(request, "slug"))
		if errors.Is(err, ErrNotFound) {
			JSON.NotFound(writer, "Category not found")
		} else if err != nil {
			JSON.InternalServerError(writer, request, err)
		} else {
			JSON.Ok(writer, wallpaperRecords(wallpapers))
		}
	}
}

func getWallpapers(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		wallpapers, err := store.GetWallpapers(request.Context())
		if err != nil {
			JSON.InternalServerError(writer, request, err)
			return
		}
		JSON.Ok(writer, wallpaperRecords(wallpapers))
	}
}

func getWallpaperRoute(store Storer) http.HandlerFunc {
	var featured, trending, single = getFeatured(store), getTrending(store), getWallpaper(store)
	return func(writer http.ResponseWriter, request *http.Request) {
		switch rest.GetParam(request, "slug") {
		case "featured":
			featured(writer, request)
		case "trending":
			trending(writer, request)
		default:
			single(writer, request)
		}
	}
}

func getFeatured(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var limit = getLimit(request.URL.Query(), defaultFeaturedLimit)
		wallpapers, err := store.GetFeatured(request.Context(), limit)
		if err != nil {
			JSON.InternalServerError(writer, request, err)
			return
		}
		JSON.Ok(writer, wallpaperRecords(wallpapers))
	}
}

func getTrending(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var limit = getLimit(request.URL.Query(), defaultTrendingLimit)
		wallpapers, err := store.GetTrending(request.Context(), limit)
		if err != nil {
			JSON.InternalServerError(writer, request, err)
			return
		}
		JSON.Ok(writer, wallpaperRecords(wallpapers))
	}
}

// getWallpaper returns a single wallpaper, counting the request as a view
func getWallpaper(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		wallpaper, err := store.ViewWallpaper(request.Context(), rest.GetParam(request, "slug"))
		if errors.Is(err, ErrNotFound) {
			JSON.NotFound(writer, "Wallpaper not found")
		} else if err != nil {
			JSON.InternalServerError(writer, request, err)
		} else {
			JSON.Ok(writer, wallpaper.Record())
		}
	}
}

func searchWallpapers(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		wallpapers, err := store.Search(request.Context(), request.URL.Query().Get("q"))
		if err != nil {
			JSON.InternalServerError(writer, request, err)
			return
		}
		JSON.Ok(writer, wallpaperRecords(wallpapers))
	}
}

func getTags(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		tags, err := store.GetTags(request.Context())
		if err != nil {
			JSON.InternalServerError(writer, request, err)
			return
		}
		JSON.Ok(writer, tagRecords(tags))
	}
}

// getLimit parses the "limit" query parameter, falling back to the default when it's missing, malformed or negative.
func getLimit(query url.Values, fallback int) int {
	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil || validation.Validate(limit, validation.Min(0)) != nil {
		return fallback
	}
	return limit
}
