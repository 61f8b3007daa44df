// Package syncer pushes matched inventory rows to Shopify in paced
// batches, honoring a per-run field selection policy.
package syncer

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SyncFieldPolicy selects which Shopify fields a run writes. The zero
// value selects nothing and Execute rejects it.
type SyncFieldPolicy struct {
	InventoryQuantity  bool `json:"inventory_quantity"`
	ProductTitle       bool `json:"product_title"`
	ProductDescription bool `json:"product_description"`
	ProductVendor      bool `json:"product_vendor"`
	ProductType        bool `json:"product_type"`
	ProductStatus      bool `json:"product_status"`
	VariantPrice       bool `json:"variant_price"`
	CompareAtPrice     bool `json:"compare_at_price"`
	VariantWeight      bool `json:"variant_weight"`
	VariantSKU         bool `json:"variant_sku"`
	TrackInventory     bool `json:"track_inventory"`
}

// InventoryOnly is the default policy for scheduled jobs: quantity
// updates and nothing else.
func InventoryOnly() SyncFieldPolicy {
	return SyncFieldPolicy{InventoryQuantity: true}
}

// ParsePolicy decodes a policy stored as JSON. Blank input means the job
// was saved without one and falls back to inventory-only.
func ParsePolicy(raw string) (SyncFieldPolicy, error) {
	if strings.TrimSpace(raw) == "" {
		return InventoryOnly(), nil
	}
	var p SyncFieldPolicy
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return SyncFieldPolicy{}, fmt.Errorf("invalid field policy: %w", err)
	}
	return p, nil
}

// Enabled reports whether any field is selected.
func (p SyncFieldPolicy) Enabled() bool {
	return p.InventoryQuantity ||
		p.ProductTitle ||
		p.ProductDescription ||
		p.ProductVendor ||
		p.ProductType ||
		p.ProductStatus ||
		p.VariantPrice ||
		p.CompareAtPrice ||
		p.VariantWeight ||
		p.VariantSKU ||
		p.TrackInventory
}
