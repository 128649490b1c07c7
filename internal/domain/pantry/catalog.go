package pantry

import (
	"net/url"
	"strings"
)

const catalogImageBase = "https://www.themealdb.com/images/ingredients/"

// CatalogEntry is a predefined ingredient offered while typing a name.
type CatalogEntry struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

var catalogNames = []string{
	"Chicken Breast",
	"Salmon",
	"Tomato",
	"Lettuce",
	"Cheddar Cheese",
}

// Catalog returns the predefined ingredients whose name starts with prefix,
// case-insensitively. An empty prefix returns all of them.
func Catalog(prefix string) []CatalogEntry {
	p := strings.ToLower(strings.TrimSpace(prefix))
	out := make([]CatalogEntry, 0, len(catalogNames))
	for _, name := range catalogNames {
		if p == "" || strings.HasPrefix(strings.ToLower(name), p) {
			out = append(out, catalogEntry(name))
		}
	}
	return out
}

// LookupCatalog finds the catalog entry with exactly this name, ignoring case.
func LookupCatalog(name string) (CatalogEntry, bool) {
	n := strings.TrimSpace(name)
	for _, candidate := range catalogNames {
		if strings.EqualFold(candidate, n) {
			return catalogEntry(candidate), true
		}
	}
	return CatalogEntry{}, false
}

func catalogEntry(name string) CatalogEntry {
	return CatalogEntry{
		Name:  name,
		Image: catalogImageBase + url.PathEscape(name) + ".png",
	}
}
