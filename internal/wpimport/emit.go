package wpimport

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// forcedColumns lead the output header; every other emitted key follows
// alphabetically.
var forcedColumns = []string{"sku", "name", "regular_price"}

// passthroughFields is the explicit allow-list of source columns copied into
// the output as-is. Everything else either feeds a computed field or stays
// behind; source-only columns never leak into the import schema.
var passthroughFields = map[string]string{
	"Sale price":  "sale_price",
	"Description": "description",
	"Tags":        "tags",
	"Weight (kg)": "weight",
}

// OutputHeader computes the emitted header: the union of every key present in
// any row, with sku, name and regular_price forced first and the remainder
// alphabetical.
func OutputHeader(rows []OutputRow) []string {
	forced := make(map[string]bool, len(forcedColumns))
	for _, c := range forcedColumns {
		forced[c] = true
	}

	union := make(map[string]bool)
	for _, row := range rows {
		for k := range row {
			if !forced[k] {
				union[k] = true
			}
		}
	}

	rest := make([]string, 0, len(union))
	for k := range union {
		rest = append(rest, k)
	}
	sort.Strings(rest)

	return append(append([]string{}, forcedColumns...), rest...)
}

// WriteOutputCSV serializes the transformed rows. An empty row set is fatal:
// by this stage every malformed record should already have been dropped and
// counted, so nothing to write means the whole run produced nothing.
func WriteOutputCSV(path string, rows []OutputRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("no rows to write: transformation produced an empty catalog")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	header := OutputHeader(rows)
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := make([]string, len(header))
		for i, col := range header {
			record[i] = row[col] // missing keys default to ""
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// formatPrice renders a price without trailing zeros ("10", "12.5").
func formatPrice(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// imagesJSON turns the comma-joined Images cell into a JSON array string.
func imagesJSON(images string) string {
	var urls []string
	for _, img := range strings.Split(images, ",") {
		if img = strings.TrimSpace(img); img != "" {
			urls = append(urls, img)
		}
	}
	if len(urls) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(urls)
	return string(data)
}

// applyPassthrough copies the allow-listed source fields onto the output row,
// skipping empties so the header union stays honest.
func applyPassthrough(out OutputRow, src SourceRow) {
	for srcCol, dstCol := range passthroughFields {
		if v := src.Get(srcCol); v != "" {
			out[dstCol] = v
		}
	}
}
