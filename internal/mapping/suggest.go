package mapping

import (
	"github.com/computerwizzy/shopify-inventory-sync/internal/utils"
)

// fieldVariations lists the column names commonly seen in supplier feeds
// for each canonical field. Comparison is against normalized headers, so
// "Product SKU", "product-sku" and "PRODUCT_SKU" all hit "product_sku".
var fieldVariations = map[string][]string{
	FieldSKU:            {"sku", "product_sku", "item_sku", "variant_sku", "code", "item_code", "product_code"},
	FieldQuantity:       {"quantity", "qty", "stock", "inventory", "available", "on_hand", "in_stock"},
	FieldPrice:          {"price", "unit_price", "selling_price", "retail_price"},
	FieldCompareAtPrice: {"compare_at_price", "msrp", "list_price", "original_price"},
	FieldTitle:          {"title", "name", "product_name", "product_title", "item_name"},
	FieldDescription:    {"description", "body", "body_html", "product_description", "details"},
	FieldVendor:         {"vendor", "brand", "manufacturer", "supplier"},
	FieldProductType:    {"product_type", "type", "category", "product_category"},
	FieldWeight:         {"weight", "product_weight", "item_weight", "shipping_weight"},
	FieldStatus:         {"status", "product_status", "published"},
	FieldBarcode:        {"barcode", "upc", "ean", "gtin", "isbn"},
}

// Suggest proposes a mapping from canonical fields to feed columns by
// comparing normalized header names against known variations. For each
// field the first header matching any variation wins; unmatched fields
// are left out.
func Suggest(headers []string) map[string]string {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = utils.NormalizeHeader(h)
	}

	suggestions := make(map[string]string)
	for _, field := range KnownFields {
		for _, variation := range fieldVariations[field] {
			want := utils.NormalizeHeader(variation)
			for i, have := range normalized {
				if have == want {
					suggestions[field] = headers[i]
					break
				}
			}
			if _, done := suggestions[field]; done {
				break
			}
		}
	}
	return suggestions
}
