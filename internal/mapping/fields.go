// Package mapping renames supplier feed columns to the canonical field
// names the matcher and sync engine work with, and suggests mappings from
// the column names suppliers commonly use.
package mapping

// Canonical field names produced by Apply and consumed by the matcher and
// the sync engine. Feed columns are renamed to these keys.
const (
	FieldSKU            = "sku"
	FieldQuantity       = "quantity"
	FieldPrice          = "price"
	FieldCompareAtPrice = "compare_at_price"
	FieldTitle          = "title"
	FieldDescription    = "description"
	FieldVendor         = "vendor"
	FieldProductType    = "product_type"
	FieldWeight         = "weight"
	FieldStatus         = "status"
	FieldBarcode        = "barcode"
)

// RequiredFields must be present in every usable mapping.
var RequiredFields = []string{FieldSKU, FieldQuantity}

// KnownFields lists every canonical field in suggestion order.
var KnownFields = []string{
	FieldSKU,
	FieldQuantity,
	FieldPrice,
	FieldCompareAtPrice,
	FieldTitle,
	FieldDescription,
	FieldVendor,
	FieldProductType,
	FieldWeight,
	FieldStatus,
	FieldBarcode,
}
