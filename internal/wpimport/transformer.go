package wpimport

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/apexsim/apexsim-golang/internal/category"
	"github.com/apexsim/apexsim-golang/internal/config"
)

// DefaultConcurrency bounds how many variable products are transformed at
// once; it exists to cap in-flight AI inference calls, not for CPU.
const DefaultConcurrency = 20

// Transformer converts a WooCommerce product export into the store's native
// import schema.
type Transformer struct {
	Inferrer    Inferrer // nil disables AI-assisted attribute inference
	Bundle      config.BundleConfig
	Concurrency int
	Log         *zap.Logger
}

// New builds a Transformer with the given bundle filter config. Pass a nil
// inferrer to run on heuristics only.
func New(inf Inferrer, bundle config.BundleConfig, log *zap.Logger) *Transformer {
	return &Transformer{
		Inferrer:    inf,
		Bundle:      bundle,
		Concurrency: DefaultConcurrency,
		Log:         log,
	}
}

// Run reads the export at inputPath, transforms it and writes the native
// catalog CSV to outputPath. The returned Stats enumerate every dropped or
// degraded record.
func (t *Transformer) Run(ctx context.Context, inputPath, outputPath string) (*Stats, error) {
	rows, err := ReadSourceCSV(inputPath)
	if err != nil {
		return nil, err
	}
	out, stats, err := t.Transform(ctx, rows)
	if err != nil {
		return stats, err
	}
	if err := WriteOutputCSV(outputPath, out); err != nil {
		return stats, err
	}
	return stats, nil
}

// Transform runs the full pipeline over parsed rows. Output order matches the
// order products were discovered during classification; variable products are
// transformed in bounded concurrency windows while simple products (which do
// no network-bound work) run sequentially.
func (t *Transformer) Transform(ctx context.Context, rows []SourceRow) ([]OutputRow, *Stats, error) {
	stats := &Stats{}
	cat := Classify(rows, stats, t.Log)

	results := make([]OutputRow, len(cat.Entries))

	concurrency := t.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, entry := range cat.Entries {
		if entry.Simple != nil {
			results[i] = t.buildSimpleRow(entry.Simple, cat, stats)
			continue
		}
		i, parent := i, entry.Parent
		g.Go(func() error {
			results[i] = t.transformParent(gctx, parent, cat, stats)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	stats.RowsEmitted = len(results)
	return results, stats, nil
}

// transformParent resolves all variation attributes (concurrently: the AI
// call is the only i/o-bound step), aggregates prices, stock and images, and
// assembles the output row.
func (t *Transformer) transformParent(ctx context.Context, p *ParentProduct, cat *Catalog, stats *Stats) OutputRow {
	var wg sync.WaitGroup
	for _, v := range p.Variations {
		wg.Add(1)
		go func(v *VariationProduct) {
			defer wg.Done()
			ResolveVariationAttributes(ctx, v, p, t.Inferrer, stats)
		}(v)
	}
	wg.Wait()

	out := OutputRow{
		"sku":           p.SKU,
		"name":          p.Name,
		"regular_price": formatPrice(basePrice(p)),
		"product_type":  "variable",
		"stock":         strconv.Itoa(totalStock(p)),
	}
	applyPassthrough(out, p.Row)
	t.applyCategories(out, p.Row, stats)
	out["product_images"] = imagesJSON(p.Row.Get("Images"))

	blocks := buildVariationBlocks(p)
	if data, err := json.Marshal(blocks); err == nil {
		out["product_variations"] = string(data)
	}
	out["product_bundle_items"] = t.bundleJSON(p.Row, cat)
	return out
}

// buildSimpleRow emits a simple product: passthrough fields plus the computed
// bundle list; no variation blocks.
func (t *Transformer) buildSimpleRow(row SourceRow, cat *Catalog, stats *Stats) OutputRow {
	out := OutputRow{
		"sku":           row.Get("SKU"),
		"name":          row.Get("Name"),
		"regular_price": formatPrice(row.Price()),
		"product_type":  "simple",
		"stock":         simpleStock(row),
	}
	applyPassthrough(out, row)
	t.applyCategories(out, row, stats)
	out["product_images"] = imagesJSON(row.Get("Images"))
	out["product_bundle_items"] = t.bundleJSON(row, cat)
	return out
}

func (t *Transformer) bundleJSON(row SourceRow, cat *Catalog) string {
	items := ResolveBundleItems(row, cat, t.Bundle)
	if len(items) == 0 {
		return "[]"
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func (t *Transformer) applyCategories(out OutputRow, row SourceRow, stats *Stats) {
	slugs, unknown := category.MapAll(row.Get("Categories"))
	if len(unknown) > 0 {
		stats.IncUnknownCategories(len(unknown))
		for _, u := range unknown {
			t.Log.Warn("unknown category, falling back to slug",
				zap.String("category", u),
				zap.String("sku", row.Get("SKU")))
		}
	}
	if len(slugs) > 0 {
		out["categories"] = strings.Join(slugs, ",")
	}
}

func simpleStock(row SourceRow) string {
	v := &VariationProduct{
		Stock:   row.Get("Stock"),
		InStock: row.InStock(),
	}
	s := variationStock(v)
	if s == nil {
		return strconv.Itoa(ampleStockSentinel)
	}
	return strconv.Itoa(*s)
}
