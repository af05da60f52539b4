package wpimport

import (
	"strings"

	"github.com/gosimple/slug"
	"golang.org/x/net/html"

	"github.com/apexsim/apexsim-golang/internal/config"
)

// slugAliases maps legacy permalinks that survived a store rename to current
// SKUs. Slugs that resolve nowhere else get one last chance here.
var slugAliases = map[string]string{
	"gt-shifter-plate":   "SHIFT-PLATE-01",
	"pedal-baseplate":    "PED-BASE-01",
	"keyboard-tray-pro":  "KB-TRAY-PRO",
	"buttkicker-adapter": "BK-ADPT-01",
}

// ResolveBundleItems computes the optional add-on list for one product from
// three independent sources unioned by SKU: the product's own cross-sell
// field, a reverse scan of the whole catalog for products cross-selling this
// one, and product links embedded in the HTML description. Candidates then
// pass the add-on filter; survivors become optional BundleItems in discovery
// order.
func ResolveBundleItems(row SourceRow, cat *Catalog, cfg config.BundleConfig) []BundleItem {
	ownSKU := row.Get("SKU")

	var candidates []string
	seen := map[string]bool{strings.ToLower(ownSKU): true}
	add := func(sku string) {
		sku = strings.TrimSpace(sku)
		if sku == "" || seen[strings.ToLower(sku)] {
			return
		}
		seen[strings.ToLower(sku)] = true
		candidates = append(candidates, sku)
	}

	// Source (a): the product's own explicit cross-sell field.
	for _, sku := range strings.Split(row.Get("Cross-sells"), ",") {
		add(parentRef(sku))
	}

	// Source (b): any other product whose cross-sell field lists this one.
	for _, other := range cat.Rows {
		if strings.EqualFold(other.Get("SKU"), ownSKU) {
			continue
		}
		for _, ref := range strings.Split(other.Get("Cross-sells"), ",") {
			if strings.EqualFold(parentRef(ref), ownSKU) {
				add(other.Get("SKU"))
				break
			}
		}
	}

	// Source (c): product links embedded in the HTML description.
	for _, s := range extractProductSlugs(row.Get("Description")) {
		if sku := resolveSlug(s, cat); sku != "" {
			add(sku)
		}
	}

	items := make([]BundleItem, 0, len(candidates))
	for _, sku := range candidates {
		candidate, ok := cat.RowBySKU(sku)
		if !ok || !isAddon(candidate, cfg) {
			continue
		}
		items = append(items, BundleItem{
			SKU:       candidate.Get("SKU"),
			Quantity:  1,
			ItemType:  "optional",
			SortOrder: len(items),
		})
	}
	return items
}

// isAddon applies the add-on filter: variable products, expensive or
// zero-priced candidates, configuration products, and main products or
// bracket/mount hardware above the price cutoff are never offered as add-ons.
// "Plate" products are the exception for the configuration and bracket rules:
// mounting plates are exactly the kind of add-on the list exists for.
func isAddon(row SourceRow, cfg config.BundleConfig) bool {
	if row.Type() == "variable" {
		return false
	}
	price := row.Price()
	if price > cfg.MaxPrice || price == 0 {
		return false
	}

	name := strings.ToLower(row.Get("Name"))
	sku := strings.ToLower(row.Get("SKU"))

	for _, kw := range cfg.ConfigKeywords {
		if (strings.Contains(name, kw) || strings.Contains(sku, kw)) && !strings.Contains(sku, "plate") {
			return false
		}
	}
	for _, kw := range cfg.MainProductKeywords {
		if strings.Contains(name, kw) && price > cfg.MainProductMaxPrice {
			return false
		}
	}
	for _, kw := range cfg.BracketMountKeywords {
		if strings.Contains(name, kw) && price > cfg.MainProductMaxPrice && !strings.Contains(name, "plate") {
			return false
		}
	}
	return true
}

// extractProductSlugs walks the description HTML and collects the slug of
// every product/<slug> link. Malformed HTML is not an error: the tokenizer
// recovers whatever anchors it can.
func extractProductSlugs(description string) []string {
	if !strings.Contains(description, "product/") {
		return nil
	}
	doc, err := html.Parse(strings.NewReader(description))
	if err != nil {
		return nil
	}

	var slugs []string
	seen := make(map[string]bool)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if s := productSlugFromURL(attr.Val); s != "" && !seen[s] {
					seen[s] = true
					slugs = append(slugs, s)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return slugs
}

// productSlugFromURL pulls the slug out of a /product/<slug>/ style path.
func productSlugFromURL(href string) string {
	idx := strings.Index(href, "product/")
	if idx == -1 {
		return ""
	}
	rest := href[idx+len("product/"):]
	if end := strings.IndexAny(rest, "/?#"); end != -1 {
		rest = rest[:end]
	}
	return strings.ToLower(strings.TrimSpace(rest))
}

// resolveSlug maps a permalink slug onto a catalog SKU: exact SKU match,
// then substring match, then the legacy alias table, then a fuzzy match
// against product names requiring at least two shared significant words.
func resolveSlug(s string, cat *Catalog) string {
	if s == "" {
		return ""
	}

	// Exact: some stores use the SKU as the permalink.
	for _, row := range cat.Rows {
		if strings.EqualFold(row.Get("SKU"), s) {
			return row.Get("SKU")
		}
	}

	// Substring in either direction.
	for _, row := range cat.Rows {
		sku := strings.ToLower(row.Get("SKU"))
		if sku == "" {
			continue
		}
		if strings.Contains(s, sku) || strings.Contains(sku, s) {
			return row.Get("SKU")
		}
	}

	if sku, ok := slugAliases[s]; ok {
		return sku
	}

	// Fuzzy: slugify each product name and require >= 2 shared significant
	// words with the link slug.
	slugWords := significantWords(s)
	if len(slugWords) < 2 {
		return ""
	}
	for _, row := range cat.Rows {
		name := row.Get("Name")
		if name == "" || row.Get("SKU") == "" {
			continue
		}
		shared := 0
		nameWords := significantWords(slug.Make(name))
		for w := range slugWords {
			if nameWords[w] {
				shared++
			}
		}
		if shared >= 2 {
			return row.Get("SKU")
		}
	}
	return ""
}

// significantWords splits a slug into its words of three or more characters.
func significantWords(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Split(s, "-") {
		if len(w) >= 3 {
			out[w] = true
		}
	}
	return out
}
