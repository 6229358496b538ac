package main

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/silktrader/wallpapers/pkg/rest"
)

//go:embed webui/page.html
var webUI embed.FS

// page describes a shell whose content is fetched client side, from the JSON API.
type page struct {
	Title        string
	Page         string
	Slug         string
	AnalyticsKey string
}

// registerWebUI serves the HTML shells of the site's pages.
func registerWebUI(engine *rest.Engine, analyticsKey string) error {
	shell, err := template.ParseFS(webUI, "webui/page.html")
	if err != nil {
		return err
	}

	var render = func(title string, name string) http.HandlerFunc {
		return func(writer http.ResponseWriter, request *http.Request) {
			var buffer bytes.Buffer
			err := shell.Execute(&buffer, page{
				Title:        title,
				Page:         name,
				Slug:         rest.GetParam(request, "slug"),
				AnalyticsKey: analyticsKey,
			})
			if err != nil {
				rest.Logger(request).WithError(err).Error("error rendering page")
				http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			writer.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = buffer.WriteTo(writer)
		}
	}

	engine.Get("/", render("", "home"))
	engine.Get("/wallpaper/:slug", render("Wallpaper", "wallpaper"))
	engine.Get("/category/:slug", render("Category", "category"))
	engine.Get("/search", render("Search", "search"))
	return nil
}
