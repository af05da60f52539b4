package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/apexsim/apexsim-golang/internal/wpimport"
)

// ImportProducts accepts an uploaded WooCommerce product export, runs the
// transformer in-process and upserts the resulting rows into the catalog.
// The response carries the run statistics so the admin UI can surface
// dropped/degraded records.
func (h *Handlers) ImportProducts(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'file' upload"})
		return
	}

	tmpPath := filepath.Join(os.TempDir(), "wpimport-"+strconv.FormatInt(int64(os.Getpid()), 10)+"-"+file.Filename)
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store upload"})
		return
	}
	defer os.Remove(tmpPath)

	rows, err := wpimport.ReadSourceCSV(tmpPath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, stats, err := h.Transformer.Transform(c.Request.Context(), rows)
	if err != nil {
		h.Log.Error("import transform failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	imported, failed := h.upsertProducts(out)

	c.JSON(http.StatusOK, gin.H{
		"imported": imported,
		"failed":   failed,
		"stats": gin.H{
			"rowsRead":          stats.RowsRead,
			"simpleProducts":    stats.SimpleProducts,
			"variableProducts":  stats.VariableProducts,
			"variations":        stats.Variations,
			"orphansResolved":   stats.OrphansResolved,
			"orphansDropped":    stats.OrphansDropped,
			"groupedSkipped":    stats.GroupedSkipped,
			"unknownCategories": stats.UnknownCategories,
		},
	})
}

// upsertProducts writes transformed rows into the products table keyed by
// SKU. Individual row failures are logged and counted, never fatal to the
// import.
func (h *Handlers) upsertProducts(rows []wpimport.OutputRow) (imported, failed int) {
	const query = `
		INSERT INTO products
			(sku, name, description, product_type, regular_price, sale_price,
			stock, categories, images, variations, bundle_items, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE
			name = VALUES(name), description = VALUES(description),
			product_type = VALUES(product_type), regular_price = VALUES(regular_price),
			sale_price = VALUES(sale_price), stock = VALUES(stock),
			categories = VALUES(categories), images = VALUES(images),
			variations = VALUES(variations), bundle_items = VALUES(bundle_items),
			updated_at = NOW()`

	for _, row := range rows {
		stock, _ := strconv.Atoi(row["stock"])
		price, _ := strconv.ParseFloat(row["regular_price"], 64)
		_, err := h.DB.Exec(query,
			row["sku"], row["name"], row["description"], row["product_type"],
			price, row["sale_price"], stock, row["categories"],
			row["product_images"], row["product_variations"], row["product_bundle_items"],
		)
		if err != nil {
			failed++
			h.Log.Warn("failed to upsert product", zap.String("sku", row["sku"]), zap.Error(err))
			continue
		}
		imported++
	}
	return imported, failed
}
