package wpimport

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Resolution method tags, recorded per attribute so the image matcher can
// favour direct field matches.
const (
	methodDirect = "direct"
	methodSKU    = "sku"
	methodName   = "name"
	methodAI     = "ai"
)

// InferenceAttribute describes one parent attribute for the AI collaborator.
type InferenceAttribute struct {
	Key    string
	Name   string
	Values []string
}

// InferenceRequest is the context sent to the AI collaborator for one
// variation whose attributes the text heuristics could not fully resolve.
type InferenceRequest struct {
	ParentName    string
	Attributes    []InferenceAttribute
	VariationSKU  string
	VariationName string
	Price         string
	Stock         string
}

// Inferrer is the AI-assisted fallback. Implementations return a mapping from
// attribute key to a declared value (already validated), or nil when
// inference produced nothing usable; they never return partial garbage.
type Inferrer interface {
	InferVariationAttributes(ctx context.Context, req InferenceRequest) (map[string]string, error)
}

// attempt is one cascade step: given the variation and parent it returns a
// partial mapping for attributes it could determine, tagged with its method.
type attempt struct {
	method string
	run    func(v *VariationProduct, p *ParentProduct) map[string]string
}

// ResolveVariationAttributes assigns one value per parent attribute to the
// variation, using a strict priority cascade: direct field match, SKU text
// match, name text match, then AI inference. Partial results from earlier
// methods are retained; later methods only fill gaps and never overwrite.
// The cascade short-circuits once every declared attribute has a value.
func ResolveVariationAttributes(ctx context.Context, v *VariationProduct, p *ParentProduct, inf Inferrer, stats *Stats) {
	if v.Attrs != nil {
		return // resolved at most once
	}
	v.Attrs = make(map[string]string, len(p.Attributes))
	v.ResolvedBy = make(map[string]string, len(p.Attributes))

	attempts := []attempt{
		{methodDirect, directFieldMatch},
		{methodSKU, skuTextMatch},
		{methodName, nameTextMatch},
	}

	for _, a := range attempts {
		merge(v, a.run(v, p), a.method)
		if complete(v, p) {
			return
		}
	}

	if inf == nil {
		return
	}
	stats.IncAICalls()
	result, err := inf.InferVariationAttributes(ctx, buildInferenceRequest(v, p))
	if err != nil || result == nil {
		if err != nil {
			stats.IncAIFailures()
		}
		return
	}
	merge(v, result, methodAI)
}

// merge fills still-unresolved attributes from a partial mapping. An earlier
// method's value is never overwritten.
func merge(v *VariationProduct, partial map[string]string, method string) {
	for key, value := range partial {
		if value == "" {
			continue
		}
		if _, done := v.Attrs[key]; done {
			continue
		}
		v.Attrs[key] = value
		v.ResolvedBy[key] = method
	}
}

func complete(v *VariationProduct, p *ParentProduct) bool {
	for _, spec := range p.Attributes {
		if _, ok := v.Attrs[spec.Key()]; !ok {
			return false
		}
	}
	return true
}

// --- Method 1: direct field match ---

// directFieldMatch reads the per-index attribute value column straight off
// the variation's own source row. Escaped commas are unescaped and, when the
// cell holds a comma-separated list, only the first entry is considered.
func directFieldMatch(v *VariationProduct, p *ParentProduct) map[string]string {
	if v.Row == nil {
		return nil
	}
	out := make(map[string]string)
	for _, spec := range p.Attributes {
		raw := v.Row.Get(fmt.Sprintf("Attribute %d value(s)", spec.Index))
		if raw == "" {
			continue
		}
		raw = strings.ReplaceAll(raw, `\,`, "\x00")
		if idx := strings.Index(raw, ","); idx != -1 {
			raw = raw[:idx]
		}
		raw = strings.TrimSpace(strings.ReplaceAll(raw, "\x00", ","))
		if raw == "" {
			continue
		}
		if match := matchDeclaredValue(raw, spec.Values); match != "" {
			out[spec.Key()] = match
		}
	}
	return out
}

// matchDeclaredValue maps a raw cell value onto the parent's declared value
// list: case-insensitive equality first, then containment in either
// direction.
func matchDeclaredValue(raw string, values []string) string {
	for _, val := range values {
		if strings.EqualFold(raw, val) {
			return val
		}
	}
	lowered := strings.ToLower(raw)
	for _, val := range values {
		lv := strings.ToLower(val)
		if strings.Contains(lowered, lv) || strings.Contains(lv, lowered) {
			return val
		}
	}
	return ""
}

// --- Method 2: SKU text match ---

// skuTextMatch looks for declared values inside the normalized variation SKU.
// Values are tried longest-first so "Dark Blue" wins over "Blue".
func skuTextMatch(v *VariationProduct, p *ParentProduct) map[string]string {
	normalized := normalizeText(v.SKU)
	if normalized == "" {
		return nil
	}
	out := make(map[string]string)
	for _, spec := range p.Attributes {
		for _, val := range longestFirst(spec.Values) {
			if textMatches(normalized, val) {
				out[spec.Key()] = val
				break
			}
		}
	}
	return out
}

// --- Method 3: name text match ---

// nameTextMatch strips the parent's display name out of the variation name to
// isolate the distinguishing suffix, then matches declared values against it.
func nameTextMatch(v *VariationProduct, p *ParentProduct) map[string]string {
	suffix := variationSuffix(v.Name, p.Name)
	if suffix == "" {
		return nil
	}
	out := make(map[string]string)
	for _, spec := range p.Attributes {
		for _, val := range longestFirst(spec.Values) {
			if strings.Contains(suffix, strings.ToLower(val)) || wholeWordMatch(suffix, val) {
				out[spec.Key()] = val
				break
			}
		}
	}
	return out
}

// variationSuffix removes the parent name (case-insensitive, first
// occurrence) from the variation name and trims leftover separators.
func variationSuffix(variationName, parentName string) string {
	name := strings.ToLower(variationName)
	parent := strings.ToLower(parentName)
	if parent != "" {
		if idx := strings.Index(name, parent); idx != -1 {
			name = name[:idx] + name[idx+len(parent):]
		}
	}
	return strings.Trim(name, " -–—,|:")
}

// --- Shared text helpers ---

// normalizeText lowercases and turns hyphens/underscores into spaces, the
// separators SKUs are built from.
func normalizeText(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return strings.TrimSpace(s)
}

// textMatches reports whether the declared value appears in the normalized
// text, either as a substring or with every word of a multi-word value
// appearing independently.
func textMatches(normalized, value string) bool {
	nv := normalizeText(value)
	if nv == "" {
		return false
	}
	if strings.Contains(normalized, nv) {
		return true
	}
	words := strings.Fields(nv)
	if len(words) < 2 {
		return false
	}
	for _, w := range words {
		if !strings.Contains(normalized, w) {
			return false
		}
	}
	return true
}

// wholeWordMatch reports whether value appears in text on word boundaries.
func wholeWordMatch(text, value string) bool {
	nv := strings.ToLower(strings.TrimSpace(value))
	if nv == "" {
		return false
	}
	for _, word := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == ',' || r == '/' || r == '(' || r == ')'
	}) {
		if word == nv {
			return true
		}
	}
	return false
}

// longestFirst returns a copy of values ordered by descending length, so
// specific multi-word values are matched before their substrings.
func longestFirst(values []string) []string {
	ordered := make([]string, len(values))
	copy(ordered, values)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i]) > len(ordered[j])
	})
	return ordered
}

func buildInferenceRequest(v *VariationProduct, p *ParentProduct) InferenceRequest {
	req := InferenceRequest{
		ParentName:    p.Name,
		VariationSKU:  v.SKU,
		VariationName: v.Name,
		Stock:         v.Stock,
	}
	if v.Row != nil {
		req.Price = v.Row.Get("Regular price")
	}
	for _, spec := range p.Attributes {
		// Only ask about attributes the heuristics left unresolved.
		if _, done := v.Attrs[spec.Key()]; done {
			continue
		}
		req.Attributes = append(req.Attributes, InferenceAttribute{
			Key:    spec.Key(),
			Name:   spec.Name,
			Values: spec.Values,
		})
	}
	return req
}
