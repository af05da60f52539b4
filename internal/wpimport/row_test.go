package wpimport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exportHeader is a complete WooCommerce export header line.
const exportHeader = "Type,SKU,Name,Parent,Regular price,Sale price,Stock,In stock?," +
	"Images,Cross-sells,Description,Categories,Tags," +
	"Attribute 1 name,Attribute 1 value(s),Attribute 1 default,Attribute 1 visible," +
	"Attribute 2 name,Attribute 2 value(s),Attribute 2 default,Attribute 2 visible," +
	"Attribute 3 name,Attribute 3 value(s),Attribute 3 default,Attribute 3 visible"

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// writeExportCSV writes a full-schema export with the given data lines. Data
// rows may be ragged; trailing columns default to empty.
func writeExportCSV(t *testing.T, dataLines ...string) string {
	t.Helper()
	return writeCSV(t, exportHeader+"\n"+strings.Join(dataLines, "\n")+"\n")
}

func TestReadSourceCSV(t *testing.T) {
	path := writeExportCSV(t,
		"simple,S1,Widget,,10",
		"simple,S2,Gadget,,20")

	rows, err := ReadSourceCSV(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "S1", rows[0].Get("SKU"))
	assert.Equal(t, 10.0, rows[0].Price())
}

func TestReadSourceCSVStripsBOM(t *testing.T) {
	path := writeCSV(t, "\ufeff"+exportHeader+"\nsimple,S1,Widget\n")

	rows, err := ReadSourceCSV(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "simple", rows[0].Type())
}

func TestReadSourceCSVMissingRequiredColumn(t *testing.T) {
	path := writeCSV(t, "Type,Name\nsimple,Widget\n")

	_, err := ReadSourceCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SKU")
}

func TestReadSourceCSVMissingParentColumnIsFatal(t *testing.T) {
	// Without the Parent column every variation would be dropped as an
	// orphan; the header check has to catch this before classification.
	header := strings.Replace(exportHeader, ",Parent", "", 1)
	path := writeCSV(t, header+"\nvariation,P1-RED,Widget Red\n")

	_, err := ReadSourceCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Parent")
}

func TestReadSourceCSVMissingAttributeColumnIsFatal(t *testing.T) {
	header := strings.Replace(exportHeader, ",Attribute 2 value(s)", "", 1)
	path := writeCSV(t, header+"\nsimple,S1,Widget\n")

	_, err := ReadSourceCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Attribute 2 value(s)")
}

func TestReadSourceCSVRaggedRows(t *testing.T) {
	// Real exports sometimes truncate trailing empty cells.
	path := writeExportCSV(t, "simple,S1,Widget")

	rows, err := ReadSourceCSV(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Get("Tags"))
}

func TestReadSourceCSVMissingFile(t *testing.T) {
	_, err := ReadSourceCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestSourceRowHelpers(t *testing.T) {
	row := SourceRow{
		"Regular price": "",
		"Sale price":    "$1,299.50",
		"In stock?":     "1",
	}
	assert.Equal(t, 1299.5, row.Price(), "sale price backfills a missing regular price")
	assert.True(t, row.InStock())

	assert.False(t, SourceRow{"In stock?": "0"}.InStock())
	assert.Equal(t, 0.0, SourceRow{"Regular price": "n/a"}.Price())
}
