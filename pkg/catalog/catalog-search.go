package catalog

import (
	"context"
	"strings"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern matches the query as a literal substring; case folding is left to the store's lower(), applied to both
// the pattern and the columns.
func likePattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}

/*
Search returns the wallpapers whose title, description or tag names contain the query, ignoring case.

Each wallpaper appears once. Title and description matches come first, then wallpapers matched only through their
tags; both groups are ordered most recent first. An empty query matches nothing.
*/
func (s *Store) Search(ctx context.Context, query string) ([]Wallpaper, error) {
	if query == "" {
		return make([]Wallpaper, 0), nil
	}

	var pattern = likePattern(query)

	textMatches, err := s.selectRows(ctx, `
		SELECT `+wallpaperColumns+` FROM wallpapers w
		WHERE lower(w.title) LIKE lower(?) ESCAPE '\'
		OR lower(coalesce(w.description, '')) LIKE lower(?) ESCAPE '\'
		`+newestFirst, pattern, pattern)
	if err != nil {
		return nil, err
	}

	// a wallpaper with several matching tags is joined once per tag
	tagMatches, err := s.selectRows(ctx, `
		SELECT DISTINCT `+wallpaperColumns+` FROM wallpapers w
		JOIN wallpaper_tags wt ON wt.wallpaper_id = w.id
		JOIN tags t ON t.id = wt.tag_id
		WHERE lower(t.name) LIKE lower(?) ESCAPE '\'
		`+newestFirst, pattern)
	if err != nil {
		return nil, err
	}

	var results = mergeDistinct(textMatches, tagMatches)
	return results, s.loadTags(ctx, results)
}

// mergeDistinct concatenates the groups, keeping only the first occurrence of each wallpaper id.
func mergeDistinct(groups ...[]Wallpaper) []Wallpaper {
	var merged = make([]Wallpaper, 0)
	var seen = make(map[int64]bool)
	for _, group := range groups {
		for _, wallpaper := range group {
			if seen[wallpaper.Id] {
				continue
			}
			seen[wallpaper.Id] = true
			merged = append(merged, wallpaper)
		}
	}
	return merged
}
