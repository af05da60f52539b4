package wpimport

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// requiredColumns is the WooCommerce export base schema. A header missing any
// of these is a structural error: the file is not a full product export, and
// proceeding would silently degrade whole pipeline stages (a missing Parent
// column, for instance, turns every variation into a dropped orphan).
var requiredColumns = exportBaseSchema()

func exportBaseSchema() []string {
	cols := []string{
		"Type", "SKU", "Name", "Parent",
		"Regular price", "Sale price", "Stock", "In stock?",
		"Images", "Cross-sells", "Description", "Categories", "Tags",
	}
	for i := 1; i <= maxAttributes; i++ {
		cols = append(cols,
			fmt.Sprintf("Attribute %d name", i),
			fmt.Sprintf("Attribute %d value(s)", i),
			fmt.Sprintf("Attribute %d default", i),
			fmt.Sprintf("Attribute %d visible", i))
	}
	return cols
}

// ReadSourceCSV parses a WooCommerce product export into SourceRows.
// Header validation failures and unreadable files are fatal to the run.
func ReadSourceCSV(path string) ([]SourceRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // exports frequently have ragged rows

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("input file %s is empty", path)
	}

	header := records[0]
	// Strip the UTF-8 BOM WooCommerce prepends to exports.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	headerSet := make(map[string]bool, len(header))
	for _, col := range header {
		headerSet[col] = true
	}
	for _, col := range requiredColumns {
		if !headerSet[col] {
			return nil, fmt.Errorf("input file %s is missing required column %q", path, col)
		}
	}

	rows := make([]SourceRow, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(SourceRow, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
