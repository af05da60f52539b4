package wpimport

import (
	"fmt"
	"strings"
)

const maxAttributes = 3

// parseAttributes reads the flattened per-index attribute columns of a parent
// row into AttributeSpecs. Indexes with no name or no values are skipped.
// If any attribute is marked visible, the invisible ones are hidden: the shop
// only surfaces axes the merchant chose to show.
func parseAttributes(row SourceRow) []AttributeSpec {
	var specs []AttributeSpec
	for i := 1; i <= maxAttributes; i++ {
		name := row.Get(fmt.Sprintf("Attribute %d name", i))
		if name == "" {
			continue
		}
		values := splitAttributeValues(row.Get(fmt.Sprintf("Attribute %d value(s)", i)))
		if len(values) == 0 {
			continue
		}
		specs = append(specs, AttributeSpec{
			Name:    name,
			Values:  values,
			Index:   i,
			Default: row.Get(fmt.Sprintf("Attribute %d default", i)),
			Visible: parseFlag(row.Get(fmt.Sprintf("Attribute %d visible", i))),
		})
	}

	anyVisible := false
	for _, s := range specs {
		if s.Visible {
			anyVisible = true
			break
		}
	}
	if !anyVisible {
		return specs
	}
	visible := specs[:0]
	for _, s := range specs {
		if s.Visible {
			visible = append(visible, s)
		}
	}
	return visible
}

// splitAttributeValues splits a value-list cell. Exports use either
// pipe-delimited lists ("Red | Blue") or comma-delimited lists where a
// literal comma inside a value is backslash-escaped ("1\,5m, 2m").
// Duplicates are removed, order preserved.
func splitAttributeValues(cell string) []string {
	if cell == "" {
		return nil
	}

	var parts []string
	if strings.Contains(cell, "|") {
		parts = strings.Split(cell, "|")
	} else {
		const escapedComma = "\x00"
		masked := strings.ReplaceAll(cell, `\,`, escapedComma)
		for _, p := range strings.Split(masked, ",") {
			parts = append(parts, strings.ReplaceAll(p, escapedComma, ","))
		}
	}

	seen := make(map[string]bool, len(parts))
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[strings.ToLower(p)] {
			continue
		}
		seen[strings.ToLower(p)] = true
		values = append(values, p)
	}
	return values
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "yes", "true", "visible":
		return true
	}
	return false
}
