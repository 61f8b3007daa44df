package shopify

// Product mirrors the fields of the Admin REST product resource this service
// reads and writes.
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	BodyHTML    string    `json:"body_html,omitempty"`
	Vendor      string    `json:"vendor,omitempty"`
	ProductType string    `json:"product_type,omitempty"`
	Status      string    `json:"status,omitempty"`
	Variants    []Variant `json:"variants,omitempty"`
}

// Variant mirrors the Admin REST variant resource.
type Variant struct {
	ID                  int64   `json:"id"`
	ProductID           int64   `json:"product_id,omitempty"`
	SKU                 string  `json:"sku"`
	Price               string  `json:"price,omitempty"`
	CompareAtPrice      string  `json:"compare_at_price,omitempty"`
	Barcode             string  `json:"barcode,omitempty"`
	Weight              float64 `json:"weight,omitempty"`
	InventoryItemID     int64   `json:"inventory_item_id,omitempty"`
	InventoryQuantity   int     `json:"inventory_quantity"`
	InventoryManagement string  `json:"inventory_management,omitempty"`
}

// Location is a stock location; inventory writes go to the primary one.
type Location struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// CatalogVariant is one entry of the SKU index built from the paginated
// product list. It flattens the product/variant pair down to what matching
// and syncing need.
type CatalogVariant struct {
	SKU               string `json:"sku"`
	VariantID         int64  `json:"variant_id"`
	ProductID         int64  `json:"product_id"`
	InventoryItemID   int64  `json:"inventory_item_id"`
	ProductTitle      string `json:"product_title"`
	InventoryQuantity int    `json:"inventory_quantity"`
	Price             string `json:"price,omitempty"`
}
