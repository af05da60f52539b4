package wpimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func widgetParent() *ParentProduct {
	p := &ParentProduct{
		SKU:  "P1",
		Name: "Widget",
		Attributes: []AttributeSpec{
			{Name: "Color", Values: []string{"Red", "Blue"}, Index: 1},
		},
	}
	p.Variations = []*VariationProduct{
		{
			SKU: "P1-RED", ParentSKU: "P1", Stock: "5",
			Row:        SourceRow{"Regular price": "10"},
			Attrs:      map[string]string{"attribute1": "Red"},
			ResolvedBy: map[string]string{"attribute1": methodSKU},
		},
		{
			SKU: "P1-BLUE", ParentSKU: "P1", Stock: "", InStock: true,
			Row:        SourceRow{"Regular price": "12"},
			Attrs:      map[string]string{"attribute1": "Blue"},
			ResolvedBy: map[string]string{"attribute1": methodSKU},
		},
	}
	return p
}

func TestBasePriceIsMinimumPositive(t *testing.T) {
	p := widgetParent()
	assert.Equal(t, 10.0, basePrice(p))

	p.Variations = append(p.Variations, &VariationProduct{Row: SourceRow{"Regular price": "0"}})
	assert.Equal(t, 10.0, basePrice(p), "zero prices never pull the base down")
}

func TestVariationStock(t *testing.T) {
	// Empty stock with the in-stock flag means unmanaged.
	assert.Nil(t, variationStock(&VariationProduct{Stock: "", InStock: true}))

	// Empty stock without the flag means sold out.
	s := variationStock(&VariationProduct{Stock: "", InStock: false})
	require.NotNil(t, s)
	assert.Equal(t, 0, *s)

	s = variationStock(&VariationProduct{Stock: "7"})
	require.NotNil(t, s)
	assert.Equal(t, 7, *s)

	// Garbage and negatives read as 0.
	assert.Equal(t, 0, *variationStock(&VariationProduct{Stock: "lots"}))
	assert.Equal(t, 0, *variationStock(&VariationProduct{Stock: "-3"}))
}

func TestTotalStockUnmanagedDominates(t *testing.T) {
	p := widgetParent()
	assert.Equal(t, ampleStockSentinel, totalStock(p), "one unmanaged variation makes the total ample")

	p.Variations[1].InStock = false
	assert.Equal(t, 5, totalStock(p))
}

func TestAggregateStock(t *testing.T) {
	zero := aggregateStock(nil)
	require.NotNil(t, zero)
	assert.Equal(t, 0, *zero, "an option nobody sells reads as 0")

	assert.Nil(t, aggregateStock([]*int{intPtr(5), nil}), "unmanaged dominates")

	min := aggregateStock([]*int{intPtr(5), intPtr(2), intPtr(9)})
	require.NotNil(t, min)
	assert.Equal(t, 2, *min)
}

func TestBuildVariationBlocks(t *testing.T) {
	p := widgetParent()

	blocks := buildVariationBlocks(p)
	require.Len(t, blocks, 1)
	assert.Equal(t, "Color", blocks[0].Name)
	assert.Equal(t, "attribute1", blocks[0].Key)
	require.Len(t, blocks[0].Options, 2)

	red := blocks[0].Options[0]
	assert.Equal(t, "Red", red.Value)
	assert.Equal(t, 0.0, red.PriceAdjustment, "cheapest option has zero adjustment")
	require.NotNil(t, red.Stock)
	assert.Equal(t, 5, *red.Stock)

	blue := blocks[0].Options[1]
	assert.Equal(t, "Blue", blue.Value)
	assert.Equal(t, 2.0, blue.PriceAdjustment)
	assert.Nil(t, blue.Stock, "unmanaged option serializes as null")
}

func TestBuildVariationBlocksEmitsEveryDeclaredValue(t *testing.T) {
	p := widgetParent()
	p.Attributes[0].Values = append(p.Attributes[0].Values, "Green")

	blocks := buildVariationBlocks(p)
	require.Len(t, blocks[0].Options, 3)

	green := blocks[0].Options[2]
	assert.Equal(t, "Green", green.Value)
	assert.Equal(t, 0.0, green.PriceAdjustment)
	require.NotNil(t, green.Stock)
	assert.Equal(t, 0, *green.Stock, "declared but unsold options read as out of stock")
}

func TestBuildVariationBlocksDefaultFlag(t *testing.T) {
	p := widgetParent()
	p.Attributes[0].Default = "blue"

	blocks := buildVariationBlocks(p)
	assert.False(t, blocks[0].Options[0].IsDefault)
	assert.True(t, blocks[0].Options[1].IsDefault, "default matching is case-insensitive")
}

func TestMatchImagesRequiresPositiveScore(t *testing.T) {
	p := widgetParent()
	p.Variations[0].Images = "https://cdn.example.com/widget-red.jpg"
	p.Variations[1].Images = "https://cdn.example.com/img_0042.jpg" // no overlap with "Blue"

	blocks := buildVariationBlocks(p)
	assert.Equal(t, "https://cdn.example.com/widget-red.jpg", blocks[0].Options[0].Image)
	assert.Empty(t, blocks[0].Options[1].Image, "a zero score never claims an image")
}

func TestMatchImagesFirstClaimWins(t *testing.T) {
	p := widgetParent()
	p.Variations[0].Images = "https://cdn.example.com/red-front.jpg"
	extra := &VariationProduct{
		SKU: "P1-RED-2", Stock: "1",
		Images:     "https://cdn.example.com/red-back.jpg",
		Row:        SourceRow{"Regular price": "10"},
		Attrs:      map[string]string{"attribute1": "Red"},
		ResolvedBy: map[string]string{"attribute1": methodSKU},
	}
	p.Variations = append(p.Variations, extra)

	blocks := buildVariationBlocks(p)
	assert.Equal(t, "https://cdn.example.com/red-front.jpg", blocks[0].Options[0].Image)
}

func TestScoreImageOwnerColorBonus(t *testing.T) {
	plain := scoreImageOwner("Size", "Large", "https://cdn.example.com/large.jpg", false)
	color := scoreImageOwner("Color", "Red", "https://cdn.example.com/red.jpg", false)
	assert.Greater(t, color, plain, "color-family attributes get the keyword bonus")

	assert.Equal(t, 0, scoreImageOwner("Color", "Red", "https://cdn.example.com/x.jpg", true),
		"the direct-method bonus never applies to a zero base score")
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.67, round2(5.0/3.0))
	assert.Equal(t, 0.0, round2(0))
	assert.Equal(t, -2.5, round2(-2.499999999))
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, mean(nil))
	assert.Equal(t, 2.0, mean([]float64{1, 2, 3}))
}
