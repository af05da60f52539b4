package wpimport

import (
	"strings"

	"go.uber.org/zap"
)

// CatalogEntry is one product in discovery order: exactly one of Simple or
// Parent is set.
type CatalogEntry struct {
	Simple SourceRow
	Parent *ParentProduct
}

// Catalog is the read-only in-memory view of the full export, built once
// during classification. The only later writes are the append-only
// Variations lists (finished before transformation starts) and each
// variation's lazily resolved attribute map.
type Catalog struct {
	Rows    []SourceRow              // every source row, for reverse scans
	Entries []CatalogEntry           // products in discovery order
	Parents map[string]*ParentProduct // variable products keyed by SKU
}

// RowBySKU finds the source row carrying the given SKU (case-insensitive),
// whatever its type. Used by the bundle resolver.
func (c *Catalog) RowBySKU(sku string) (SourceRow, bool) {
	if sku == "" {
		return nil, false
	}
	for _, row := range c.Rows {
		if strings.EqualFold(row.Get("SKU"), sku) {
			return row, true
		}
	}
	return nil, false
}

// Classify partitions the export rows into simple products, variable parents
// and their variations. Variations referencing a parent that appears later in
// the file are queued and retried in a second pass; variations whose parent
// is still missing after the retry are dropped and counted, never fatal.
// Grouped rows are rejected with a diagnostic; unknown types are ignored.
func Classify(rows []SourceRow, stats *Stats, log *zap.Logger) *Catalog {
	cat := &Catalog{
		Rows:    rows,
		Parents: make(map[string]*ParentProduct),
	}
	stats.RowsRead = len(rows)

	var orphans []*VariationProduct

	for _, row := range rows {
		switch row.Type() {
		case "simple":
			cat.Entries = append(cat.Entries, CatalogEntry{Simple: row})
			stats.SimpleProducts++

		case "variable":
			parent := &ParentProduct{
				SKU:        row.Get("SKU"),
				Name:       row.Get("Name"),
				Attributes: parseAttributes(row),
				Row:        row,
			}
			cat.Parents[parent.SKU] = parent
			cat.Entries = append(cat.Entries, CatalogEntry{Parent: parent})
			stats.VariableProducts++

		case "variation":
			v := newVariation(row)
			if parent, ok := cat.Parents[v.ParentSKU]; ok {
				parent.Variations = append(parent.Variations, v)
				stats.Variations++
			} else {
				orphans = append(orphans, v)
			}

		case "grouped":
			stats.GroupedSkipped++
			log.Warn("skipping grouped product (unsupported type)",
				zap.String("sku", row.Get("SKU")),
				zap.String("name", row.Get("Name")))

		default:
			stats.IgnoredRows++
		}
	}

	// Second pass: parents can appear after their variations in the file.
	for _, v := range orphans {
		if parent, ok := cat.Parents[v.ParentSKU]; ok {
			parent.Variations = append(parent.Variations, v)
			stats.Variations++
			stats.OrphansResolved++
		} else {
			stats.OrphansDropped++
			log.Warn("dropping variation with unresolvable parent",
				zap.String("sku", v.SKU),
				zap.String("parent", v.ParentSKU))
		}
	}

	return cat
}

func newVariation(row SourceRow) *VariationProduct {
	return &VariationProduct{
		SKU:       row.Get("SKU"),
		ParentSKU: parentRef(row.Get("Parent")),
		Name:      row.Get("Name"),
		Stock:     row.Get("Stock"),
		InStock:   row.InStock(),
		Images:    row.Get("Images"),
		Row:       row,
	}
}

// parentRef normalizes the Parent cell: exports reference the parent either
// by plain SKU or as "id:123"-style refs followed by the SKU.
func parentRef(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), "id:") {
		return strings.TrimSpace(s[3:])
	}
	return s
}
