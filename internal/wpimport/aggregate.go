package wpimport

import (
	"math"
	"strconv"
	"strings"
)

// ampleStockSentinel is reported as a variable product's total stock when any
// variation is unmanaged: summing an unlimited quantity is meaningless, so
// the storefront just sees "ample".
const ampleStockSentinel = 9999

// OptionAggregate is one selectable value of an attribute in the emitted
// product_variations JSON.
type OptionAggregate struct {
	Value           string  `json:"value"`
	PriceAdjustment float64 `json:"price_adjustment"`
	Stock           *int    `json:"stock"` // nil = unmanaged/unlimited
	Image           string  `json:"image,omitempty"`
	IsDefault       bool    `json:"is_default,omitempty"`
}

// VariationBlock is one attribute with its aggregated options.
type VariationBlock struct {
	Name    string            `json:"name"`
	Key     string            `json:"key"`
	Options []OptionAggregate `json:"options"`
}

// basePrice returns the minimum positive price across the parent's
// variations; 0 when no variation has a positive price.
func basePrice(p *ParentProduct) float64 {
	base := 0.0
	for _, v := range p.Variations {
		price := v.Price()
		if price <= 0 {
			continue
		}
		if base == 0 || price < base {
			base = price
		}
	}
	return base
}

// variationStock resolves one variation's stock to a count or nil
// (unmanaged/unlimited): empty stock with the in-stock flag set means the
// merchant does not track quantity; empty without the flag means sold out;
// anything else parses as an integer, with garbage reading as 0.
func variationStock(v *VariationProduct) *int {
	if v.Stock == "" {
		if v.InStock {
			return nil
		}
		zero := 0
		return &zero
	}
	n, err := strconv.Atoi(strings.TrimSpace(v.Stock))
	if err != nil || n < 0 {
		n = 0
	}
	return &n
}

// totalStock sums all variation stocks for the product; a single unmanaged
// variation forces the ample-stock sentinel instead of an unbounded sum.
func totalStock(p *ParentProduct) int {
	total := 0
	for _, v := range p.Variations {
		s := variationStock(v)
		if s == nil {
			return ampleStockSentinel
		}
		total += *s
	}
	return total
}

// buildVariationBlocks aggregates the parent's variations into one block per
// attribute: per-option price adjustment (mean delta against the cheapest
// sibling, 2dp), per-option stock under the unlimited-dominates rule, and a
// best-effort matched image.
func buildVariationBlocks(p *ParentProduct) []VariationBlock {
	base := basePrice(p)
	blocks := make([]VariationBlock, 0, len(p.Attributes))

	for _, spec := range p.Attributes {
		block := VariationBlock{Name: spec.Name, Key: spec.Key()}
		for _, value := range spec.Values {
			opt := OptionAggregate{
				Value:     value,
				IsDefault: spec.Default != "" && strings.EqualFold(spec.Default, value),
			}

			var deltas []float64
			var stocks []*int
			for _, v := range p.Variations {
				if !strings.EqualFold(v.Attrs[spec.Key()], value) {
					continue
				}
				if price := v.Price(); price > 0 && base > 0 {
					deltas = append(deltas, price-base)
				}
				stocks = append(stocks, variationStock(v))
			}

			opt.PriceAdjustment = round2(mean(deltas))
			opt.Stock = aggregateStock(stocks)
			block.Options = append(block.Options, opt)
		}
		blocks = append(blocks, block)
	}

	matchImages(p, blocks)
	return blocks
}

// aggregateStock folds sibling stocks for one option: any unmanaged sibling
// makes the option unmanaged, otherwise the minimum count wins. An option no
// variation carries reads as 0 (nothing to sell yet).
func aggregateStock(stocks []*int) *int {
	if len(stocks) == 0 {
		zero := 0
		return &zero
	}
	var minStock *int
	for _, s := range stocks {
		if s == nil {
			return nil
		}
		if minStock == nil || *s < *minStock {
			minStock = s
		}
	}
	out := *minStock
	return &out
}

// --- Image matching ---

var colorKeywords = []string{
	"black", "white", "red", "blue", "green", "yellow", "silver", "grey",
	"gray", "orange", "purple", "pink", "brown", "gold", "carbon",
}

// matchImages assigns each variation's image to the attribute option most
// likely to own it. Every attribute the variation resolved is scored as a
// candidate owner; only a strictly positive top score claims the image, and
// the first variation to claim an (attribute, option) pair wins.
func matchImages(p *ParentProduct, blocks []VariationBlock) {
	for _, v := range p.Variations {
		img := firstImage(v.Images)
		if img == "" || len(v.Attrs) == 0 {
			continue
		}

		bestScore := 0
		bestBlock := -1
		bestValue := ""
		for bi := range blocks {
			value, ok := v.Attrs[blocks[bi].Key]
			if !ok {
				continue
			}
			direct := v.ResolvedBy[blocks[bi].Key] == methodDirect
			score := scoreImageOwner(blocks[bi].Name, value, img, direct)
			if score > bestScore {
				bestScore = score
				bestBlock = bi
				bestValue = value
			}
		}
		if bestBlock < 0 {
			continue // zero score is no match, never a default assignment
		}

		opts := blocks[bestBlock].Options
		for oi := range opts {
			if strings.EqualFold(opts[oi].Value, bestValue) {
				if opts[oi].Image == "" {
					opts[oi].Image = img
				}
				break
			}
		}
	}
}

// scoreImageOwner scores one attribute as the candidate owner of an image:
// word overlap between the option value and the URL, a bonus when a
// color-family attribute's keyword also appears in the URL, a bonus for
// attribute-name-word overlap with the URL, and a bonus for direct field
// resolution.
func scoreImageOwner(attrName, value, imageURL string, direct bool) int {
	url := normalizeText(strings.ReplaceAll(strings.ReplaceAll(imageURL, "/", " "), ".", " "))

	score := 0
	for _, w := range strings.Fields(normalizeText(value)) {
		if len(w) >= 2 && strings.Contains(url, w) {
			score += 2
		}
	}

	if isColorAttribute(attrName) {
		for _, c := range colorKeywords {
			if strings.Contains(url, c) {
				score += 2
				break
			}
		}
	}

	for _, w := range strings.Fields(normalizeText(attrName)) {
		if len(w) >= 3 && strings.Contains(url, w) {
			score++
		}
	}

	if direct && score > 0 {
		score++
	}
	return score
}

func isColorAttribute(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "color") || strings.Contains(n, "colour") || strings.Contains(n, "finish")
}

func firstImage(images string) string {
	for _, img := range strings.Split(images, ",") {
		if img = strings.TrimSpace(img); img != "" {
			return img
		}
	}
	return ""
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
