package wpimport

import (
	"fmt"
	"strconv"
	"strings"
)

// SourceRow is one parsed CSV row: a mapping from source column name to the
// raw string value. Rows are never mutated after ingestion; every later stage
// derives its state by lookup.
type SourceRow map[string]string

// Get returns the trimmed value of a column, or "" when the column is absent.
func (r SourceRow) Get(col string) string {
	return strings.TrimSpace(r[col])
}

// Type returns the lowercased product type declared by the row.
func (r SourceRow) Type() string {
	return strings.ToLower(r.Get("Type"))
}

// Price returns the row's effective numeric price: the regular price when
// present, otherwise the sale price. Unparseable prices read as 0.
func (r SourceRow) Price() float64 {
	if p := parsePrice(r.Get("Regular price")); p != 0 {
		return p
	}
	return parsePrice(r.Get("Sale price"))
}

// InStock reports the "In stock?" flag ("1", "yes", "true" are all seen in
// real exports).
func (r SourceRow) InStock() bool {
	switch strings.ToLower(r.Get("In stock?")) {
	case "1", "yes", "true", "instock":
		return true
	}
	return false
}

// AttributeSpec is one named axis of variation on a parent product.
type AttributeSpec struct {
	Name    string
	Values  []string // deduplicated, order preserved
	Index   int      // 1-based source column index (1–3)
	Default string
	Visible bool
}

// Key returns the output attribute key ("attribute1" … "attribute3").
func (a AttributeSpec) Key() string {
	return fmt.Sprintf("attribute%d", a.Index)
}

// VariationProduct is a single purchasable SKU under a variable parent.
type VariationProduct struct {
	SKU       string
	ParentSKU string
	Name      string
	Stock     string
	InStock   bool
	Images    string // comma-joined URLs, as exported

	// Row retains the original source row so the attribute resolver can
	// re-inspect per-attribute columns.
	Row SourceRow

	// Attrs maps attribute keys ("attribute1"…) to the resolved option
	// value; ResolvedBy records which cascade method produced each entry.
	// Both are populated at most once, by ResolveVariationAttributes.
	Attrs      map[string]string
	ResolvedBy map[string]string
}

// Price returns the variation's effective price.
func (v *VariationProduct) Price() float64 {
	if v.Row != nil {
		return v.Row.Price()
	}
	return 0
}

// ParentProduct is a variable product: sold only through its variations.
type ParentProduct struct {
	SKU        string
	Name       string
	Attributes []AttributeSpec
	Variations []*VariationProduct
	Row        SourceRow
}

// BundleItem is one optional add-on in the emitted product_bundle_items JSON.
type BundleItem struct {
	SKU             string  `json:"sku"`
	Quantity        int     `json:"quantity"`
	ItemType        string  `json:"item_type"` // "required" or "optional"
	Configurable    bool    `json:"configurable"`
	PriceAdjustment float64 `json:"price_adjustment"`
	SortOrder       int     `json:"sort_order"`
}

// OutputRow is one emitted record. Keys missing from a row default to the
// empty string at emission time, not before.
type OutputRow map[string]string

func parsePrice(s string) float64 {
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimLeft(s, "$€£ ")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
