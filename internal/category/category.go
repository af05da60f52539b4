package category

import (
	"strings"

	"github.com/gosimple/slug"
)

// mapping is the fixed store vocabulary. Order matters: the first entry whose
// keywords match the normalized source text wins, so more specific categories
// (flight-sim, monitor-stands) sit above the generic ones.
var mapping = []struct {
	Slug     string
	Keywords []string
}{
	{"flight-sim", []string{"flight sim", "flight-sim", "flightsim", "flight"}},
	{"monitor-stands", []string{"monitor stand", "monitor-stand", "monitor mount"}},
	{"conversion-kits", []string{"conversion kit", "conversion-kit", "upgrade kit"}},
	{"racing-flight-seats", []string{"racing seat", "flight seat", "seats"}},
	{"individual-parts", []string{"individual part", "spare part", "parts"}},
	{"cockpits", []string{"cockpit", "rig", "chassis"}},
	{"sim-racing", []string{"sim racing", "sim-racing", "simracing", "racing"}},
	{"accessories", []string{"accessor", "add-on", "addon"}},
	{"refurbished", []string{"refurbished", "open box", "b-stock"}},
	{"services", []string{"service", "assembly", "installation"}},
}

// Map resolves a raw WooCommerce category string to a store category slug.
// Unmapped categories fall through to a slugified form of the original text;
// the second return reports whether the category was in the known vocabulary.
func Map(raw string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return "", false
	}
	for _, m := range mapping {
		for _, kw := range m.Keywords {
			if strings.Contains(normalized, kw) {
				return m.Slug, true
			}
		}
	}
	return slug.Make(raw), false
}

// MapAll resolves a WooCommerce "Categories" cell (comma-separated, possibly
// with "Parent > Child" paths) to a deduplicated slug list, preserving order.
// The unknown return lists source categories that missed the vocabulary.
func MapAll(raw string) (slugs []string, unknown []string) {
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		// For hierarchical paths the leaf is the meaningful category.
		if idx := strings.LastIndex(part, ">"); idx != -1 {
			part = part[idx+1:]
		}
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		mapped, known := Map(part)
		if mapped == "" || seen[mapped] {
			continue
		}
		seen[mapped] = true
		slugs = append(slugs, mapped)
		if !known {
			unknown = append(unknown, part)
		}
	}
	return slugs, unknown
}
