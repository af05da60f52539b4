package models

import (
	"encoding/json"
	"time"
)

// Product is the model for the 'products' table: one row per imported
// catalog product. Variations, images and bundle items are stored as the
// JSON blobs the transformer emitted.
type Product struct {
	ID           int64   `json:"id" db:"id"`
	SKU          string  `json:"sku" db:"sku"`
	Name         string  `json:"name" db:"name"`
	Description  string  `json:"description" db:"description"`
	ProductType  string  `json:"productType" db:"product_type"` // "simple" or "variable"
	RegularPrice float64 `json:"regularPrice" db:"regular_price"`
	SalePrice    *float64 `json:"salePrice,omitempty" db:"sale_price"`
	Stock        int     `json:"stock" db:"stock"`
	Categories   string  `json:"categories" db:"categories"` // comma-joined slugs

	Images      json.RawMessage `json:"images" db:"images"`
	Variations  json.RawMessage `json:"variations,omitempty" db:"variations"`
	BundleItems json.RawMessage `json:"bundleItems,omitempty" db:"bundle_items"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
