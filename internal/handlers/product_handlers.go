package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/apexsim/apexsim-golang/internal/models"
)

const productColumns = `id, sku, name, description, product_type, regular_price,
	sale_price, stock, categories, images, variations, bundle_items,
	created_at, updated_at`

// ListProducts returns a page of the catalog, optionally filtered by
// category slug.
func (h *Handlers) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "24"))
	if perPage < 1 || perPage > 100 {
		perPage = 24
	}

	query := `SELECT ` + productColumns + ` FROM products`
	args := []any{}
	if cat := strings.TrimSpace(c.Query("category")); cat != "" {
		query += ` WHERE FIND_IN_SET(?, categories)`
		args = append(args, cat)
	}
	query += ` ORDER BY name ASC LIMIT ? OFFSET ?`
	args = append(args, perPage, (page-1)*perPage)

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		h.Log.Error("list products query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			h.Log.Warn("skipping unscannable product row", zap.Error(err))
			continue
		}
		products = append(products, p)
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "page": page, "perPage": perPage})
}

// GetProductBySKU returns a single product with its full variation and
// bundle JSON.
func (h *Handlers) GetProductBySKU(c *gin.Context) {
	sku := c.Param("sku")

	row := h.DB.QueryRow(`SELECT `+productColumns+` FROM products WHERE sku = ?`, sku)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		h.Log.Error("get product query failed", zap.String("sku", sku), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": p})
}

// GetCategories returns the distinct category slugs present in the catalog.
func (h *Handlers) GetCategories(c *gin.Context) {
	rows, err := h.DB.Query(`SELECT categories FROM products WHERE categories <> ''`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	seen := map[string]bool{}
	categories := []string{}
	for rows.Next() {
		var cell string
		if err := rows.Scan(&cell); err != nil {
			continue
		}
		for _, s := range strings.Split(cell, ",") {
			if s = strings.TrimSpace(s); s != "" && !seen[s] {
				seen[s] = true
				categories = append(categories, s)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(r rowScanner) (models.Product, error) {
	var p models.Product
	var salePrice sql.NullFloat64
	var images, variations, bundleItems sql.NullString

	err := r.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.ProductType,
		&p.RegularPrice, &salePrice, &p.Stock, &p.Categories,
		&images, &variations, &bundleItems, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}

	if salePrice.Valid {
		p.SalePrice = &salePrice.Float64
	}
	p.Images = rawJSON(images)
	p.Variations = rawJSON(variations)
	p.BundleItems = rawJSON(bundleItems)
	return p, nil
}

func rawJSON(s sql.NullString) json.RawMessage {
	if !s.Valid || s.String == "" {
		return nil
	}
	return json.RawMessage(s.String)
}
