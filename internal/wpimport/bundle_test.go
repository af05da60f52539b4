package wpimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexsim/apexsim-golang/internal/config"
)

func bundleCatalog() *Catalog {
	return &Catalog{Rows: []SourceRow{
		{"Type": "simple", "SKU": "MAIN-1", "Name": "Racing Cockpit Pro", "Regular price": "899",
			"Cross-sells": "ADDON-1, EXPENSIVE-1, FREE-1"},
		{"Type": "simple", "SKU": "ADDON-1", "Name": "Cup Holder", "Regular price": "25"},
		{"Type": "simple", "SKU": "EXPENSIVE-1", "Name": "Premium Wheel", "Regular price": "200"},
		{"Type": "simple", "SKU": "FREE-1", "Name": "Sticker Pack", "Regular price": "0"},
		{"Type": "simple", "SKU": "REV-1", "Name": "Side Tray", "Regular price": "40",
			"Cross-sells": "MAIN-1"},
		{"Type": "variable", "SKU": "VAR-1", "Name": "Adjustable Mount", "Regular price": "60"},
	}}
}

func TestResolveBundleItemsOwnCrossSells(t *testing.T) {
	cat := bundleCatalog()
	row, _ := cat.RowBySKU("MAIN-1")

	items := ResolveBundleItems(row, cat, config.DefaultBundleConfig())

	skus := make([]string, len(items))
	for i, it := range items {
		skus[i] = it.SKU
	}
	assert.Contains(t, skus, "ADDON-1")
	assert.NotContains(t, skus, "EXPENSIVE-1", "above the price ceiling")
	assert.NotContains(t, skus, "FREE-1", "zero-priced candidates are excluded")
}

func TestResolveBundleItemsReverseScan(t *testing.T) {
	cat := bundleCatalog()
	row, _ := cat.RowBySKU("MAIN-1")

	items := ResolveBundleItems(row, cat, config.DefaultBundleConfig())

	found := false
	for _, it := range items {
		if it.SKU == "REV-1" {
			found = true
		}
	}
	assert.True(t, found, "products cross-selling this one become its add-ons")
}

func TestResolveBundleItemsShape(t *testing.T) {
	cat := bundleCatalog()
	row, _ := cat.RowBySKU("MAIN-1")

	items := ResolveBundleItems(row, cat, config.DefaultBundleConfig())
	require.NotEmpty(t, items)

	for i, it := range items {
		assert.Equal(t, 1, it.Quantity)
		assert.Equal(t, "optional", it.ItemType)
		assert.False(t, it.Configurable)
		assert.Equal(t, 0.0, it.PriceAdjustment)
		assert.Equal(t, i, it.SortOrder)
	}
}

func TestResolveBundleItemsNeverIncludesSelf(t *testing.T) {
	cat := &Catalog{Rows: []SourceRow{
		{"Type": "simple", "SKU": "SELF-1", "Name": "Loop", "Regular price": "20",
			"Cross-sells": "SELF-1"},
	}}
	row, _ := cat.RowBySKU("SELF-1")

	items := ResolveBundleItems(row, cat, config.DefaultBundleConfig())
	assert.Empty(t, items)
}

func TestResolveBundleItemsDescriptionLinks(t *testing.T) {
	cat := &Catalog{Rows: []SourceRow{
		{"Type": "simple", "SKU": "MAIN-1", "Name": "Racing Cockpit", "Regular price": "899",
			"Description": `Pairs well with the <a href="https://shop.example.com/product/ped-base-01/">pedal baseplate</a>.`},
		{"Type": "simple", "SKU": "PED-BASE-01", "Name": "Pedal Baseplate", "Regular price": "80"},
	}}
	row, _ := cat.RowBySKU("MAIN-1")

	items := ResolveBundleItems(row, cat, config.DefaultBundleConfig())
	require.Len(t, items, 1)
	assert.Equal(t, "PED-BASE-01", items[0].SKU)
}

func TestIsAddonFilter(t *testing.T) {
	cfg := config.DefaultBundleConfig()

	tests := []struct {
		name string
		row  SourceRow
		want bool
	}{
		{"variable excluded",
			SourceRow{"Type": "variable", "Name": "Mount", "Regular price": "30"}, false},
		{"cheap simple included",
			SourceRow{"Type": "simple", "Name": "Cup Holder", "Regular price": "25"}, true},
		{"over ceiling excluded",
			SourceRow{"Type": "simple", "Name": "Wheel", "Regular price": "151"}, false},
		{"zero price excluded",
			SourceRow{"Type": "simple", "Name": "Sticker", "Regular price": "0"}, false},
		{"config product excluded",
			SourceRow{"Type": "simple", "Name": "Seat Configuration", "Regular price": "10"}, false},
		{"config sku with plate included",
			SourceRow{"Type": "simple", "SKU": "CFG-PLATE-1", "Name": "Config Plate", "Regular price": "10"}, true},
		{"cheap main-product keyword included",
			SourceRow{"Type": "simple", "Name": "Seat Cushion", "Regular price": "30"}, true},
		{"expensive main-product keyword excluded",
			SourceRow{"Type": "simple", "Name": "Racing Seat", "Regular price": "120"}, false},
		{"expensive mount excluded",
			SourceRow{"Type": "simple", "Name": "Heavy Mount", "Regular price": "120"}, false},
		{"expensive mount plate included",
			SourceRow{"Type": "simple", "Name": "Mount Plate", "Regular price": "120"}, true},
		{"cheap mount included",
			SourceRow{"Type": "simple", "Name": "Mount Plate A", "Regular price": "30"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isAddon(tt.row, cfg))
		})
	}
}

func TestExtractProductSlugs(t *testing.T) {
	desc := `<p>See the <a href="/product/gt-shifter-plate/">shifter plate</a>,
		the <a href="https://shop.example.com/product/keyboard-tray-pro?ref=x">tray</a>
		and <a href="/about-us">our story</a>.
		<a href="/product/gt-shifter-plate/">again</a></p>`

	slugs := extractProductSlugs(desc)
	assert.Equal(t, []string{"gt-shifter-plate", "keyboard-tray-pro"}, slugs)
}

func TestExtractProductSlugsNoLinks(t *testing.T) {
	assert.Nil(t, extractProductSlugs("plain text description"))
	assert.Nil(t, extractProductSlugs(""))
}

func TestProductSlugFromURL(t *testing.T) {
	assert.Equal(t, "my-slug", productSlugFromURL("https://x.com/product/my-slug/"))
	assert.Equal(t, "my-slug", productSlugFromURL("/product/my-slug?utm=1"))
	assert.Equal(t, "my-slug", productSlugFromURL("/product/My-Slug#reviews"))
	assert.Empty(t, productSlugFromURL("/category/my-slug"))
}

func TestResolveSlugCascade(t *testing.T) {
	cat := &Catalog{Rows: []SourceRow{
		{"SKU": "EXACT-1", "Name": "Exact Product"},
		{"SKU": "TRAY", "Name": "Tray"},
		{"SKU": "WB-01", "Name": "Wheel Base Mount"},
	}}

	assert.Equal(t, "EXACT-1", resolveSlug("exact-1", cat), "exact SKU match")
	assert.Equal(t, "TRAY", resolveSlug("deluxe-tray-v2", cat), "substring match")
	assert.Equal(t, "SHIFT-PLATE-01", resolveSlug("gt-shifter-plate", &Catalog{}), "legacy alias")
	assert.Equal(t, "WB-01", resolveSlug("wheel-base-pro", cat), "fuzzy name match needs two shared words")
	assert.Empty(t, resolveSlug("wheel-only", cat), "one shared word is not enough")
	assert.Empty(t, resolveSlug("", cat))
}
