package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/computerwizzy/shopify-inventory-sync/internal/mapping"
	"github.com/computerwizzy/shopify-inventory-sync/internal/matching"
	"github.com/computerwizzy/shopify-inventory-sync/internal/resilience"
	"github.com/computerwizzy/shopify-inventory-sync/internal/shopify"
)

const (
	DefaultBatchSize  = 5
	DefaultBatchPause = time.Second
)

// ErrNoFieldsEnabled is returned when a run is started with a policy that
// selects nothing.
var ErrNoFieldsEnabled = errors.New("no sync fields enabled")

// Gateway is the slice of the Shopify client the engine needs.
type Gateway interface {
	SetInventoryLevel(ctx context.Context, inventoryItemID int64, quantity int) error
	UpdateProduct(ctx context.Context, productID int64, fields map[string]any) error
	UpdateVariant(ctx context.Context, variantID int64, fields map[string]any) error
}

// Options tune one Execute run. Zero values fall back to the defaults.
type Options struct {
	BatchSize         int           `json:"batch_size"`
	BatchPause        time.Duration `json:"batch_pause"`
	SkipZeroInventory bool          `json:"skip_zero_inventory"`
}

// ItemOutcome records one attempted variant update. UpdatedFields holds
// the wire names actually written, including partial writes before a
// failure.
type ItemOutcome struct {
	VariantID     int64    `json:"variant_id"`
	SKU           string   `json:"sku"`
	Success       bool     `json:"success"`
	Error         string   `json:"error,omitempty"`
	UpdatedFields []string `json:"updated_fields,omitempty"`
}

// Result aggregates one run. Skipped items never appear in Outcomes.
type Result struct {
	Outcomes []ItemOutcome `json:"outcomes"`
	Synced   int           `json:"synced"`
	Failed   int           `json:"failed"`
	Skipped  int           `json:"skipped"`
	Aborted  bool          `json:"aborted,omitempty"`
}

// Engine executes batch syncs against the gateway.
type Engine struct {
	gateway Gateway
}

func NewEngine(gateway Gateway) *Engine {
	return &Engine{gateway: gateway}
}

// Execute pushes matches to Shopify in batches, pausing between batches.
// An overloaded API aborts the remainder of the run immediately: items not
// yet attempted get no outcome, earlier outcomes are kept and the run
// error reports everything that failed.
func (e *Engine) Execute(ctx context.Context, matches []matching.MatchResult, policy SyncFieldPolicy, opts Options) (*Result, error) {
	if !policy.Enabled() {
		return nil, ErrNoFieldsEnabled
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	pause := opts.BatchPause
	if pause <= 0 {
		pause = DefaultBatchPause
	}

	result := &Result{}
	var errs *multierror.Error

	for start := 0; start < len(matches); start += batchSize {
		if start > 0 {
			if err := resilience.Sleep(ctx, pause); err != nil {
				result.Aborted = true
				errs = multierror.Append(errs, err)
				return result, errs.ErrorOrNil()
			}
		}

		end := min(start+batchSize, len(matches))
		for _, m := range matches[start:end] {
			if opts.SkipZeroInventory && m.NewQuantity == 0 {
				result.Skipped++
				continue
			}

			outcome, err := e.syncItem(ctx, m, policy)
			result.Outcomes = append(result.Outcomes, outcome)
			if err == nil {
				result.Synced++
				continue
			}

			result.Failed++
			errs = multierror.Append(errs, fmt.Errorf("sku %s: %w", outcome.SKU, err))

			if shopify.IsOverloaded(err) {
				log.Printf("[SYNC] API overload detected, aborting run after %d outcomes", len(result.Outcomes))
				result.Aborted = true
				return result, errs.ErrorOrNil()
			}
			if ctx.Err() != nil {
				result.Aborted = true
				return result, errs.ErrorOrNil()
			}
		}
	}

	return result, errs.ErrorOrNil()
}

// syncItem writes one matched row: product-level patch, then
// variant-level patch, then the inventory level.
func (e *Engine) syncItem(ctx context.Context, m matching.MatchResult, policy SyncFieldPolicy) (ItemOutcome, error) {
	outcome := ItemOutcome{VariantID: m.VariantID, SKU: m.MatchedSKU}

	if fields := productPatch(m, policy); len(fields) > 0 {
		if err := e.gateway.UpdateProduct(ctx, m.ProductID, fields); err != nil {
			outcome.Error = err.Error()
			return outcome, err
		}
		outcome.UpdatedFields = append(outcome.UpdatedFields, fieldNames(fields)...)
	}

	if fields := variantPatch(m, policy); len(fields) > 0 {
		if err := e.gateway.UpdateVariant(ctx, m.VariantID, fields); err != nil {
			outcome.Error = err.Error()
			return outcome, err
		}
		outcome.UpdatedFields = append(outcome.UpdatedFields, fieldNames(fields)...)
	}

	if policy.InventoryQuantity {
		if err := e.gateway.SetInventoryLevel(ctx, m.InventoryItemID, m.NewQuantity); err != nil {
			outcome.Error = err.Error()
			return outcome, err
		}
		outcome.UpdatedFields = append(outcome.UpdatedFields, "inventory_quantity")
	}

	outcome.Success = true
	return outcome, nil
}

func productPatch(m matching.MatchResult, policy SyncFieldPolicy) map[string]any {
	fields := make(map[string]any)
	if policy.ProductTitle {
		if v := m.Fields[mapping.FieldTitle]; v != "" {
			fields["title"] = v
		}
	}
	if policy.ProductDescription {
		if v := m.Fields[mapping.FieldDescription]; v != "" {
			fields["body_html"] = v
		}
	}
	if policy.ProductVendor {
		if v := m.Fields[mapping.FieldVendor]; v != "" {
			fields["vendor"] = v
		}
	}
	if policy.ProductType {
		if v := m.Fields[mapping.FieldProductType]; v != "" {
			fields["product_type"] = v
		}
	}
	if policy.ProductStatus {
		if v := normalizeStatus(m.Fields[mapping.FieldStatus]); v != "" {
			fields["status"] = v
		} else if m.Fields[mapping.FieldStatus] != "" {
			log.Printf("[SYNC] Ignoring unknown product status %q for SKU %s", m.Fields[mapping.FieldStatus], m.FileSKU)
		}
	}
	return fields
}

func variantPatch(m matching.MatchResult, policy SyncFieldPolicy) map[string]any {
	fields := make(map[string]any)
	if policy.VariantPrice {
		if v := cleanPrice(m.Fields[mapping.FieldPrice]); v != "" {
			fields["price"] = v
		}
	}
	if policy.CompareAtPrice {
		if v := cleanPrice(m.Fields[mapping.FieldCompareAtPrice]); v != "" {
			fields["compare_at_price"] = v
		}
	}
	if policy.VariantWeight {
		if raw := m.Fields[mapping.FieldWeight]; raw != "" {
			if w, err := strconv.ParseFloat(raw, 64); err == nil {
				fields["weight"] = w
			} else {
				log.Printf("[SYNC] Ignoring unparseable weight %q for SKU %s", raw, m.FileSKU)
			}
		}
	}
	if policy.VariantSKU && m.FileSKU != "" {
		fields["sku"] = m.FileSKU
	}
	if policy.TrackInventory {
		// Turn Shopify inventory tracking on so quantity writes take effect.
		fields["inventory_management"] = "shopify"
	}
	return fields
}

// normalizeStatus lowercases a feed status and keeps it only when it is
// one of the three values Shopify accepts.
func normalizeStatus(raw string) string {
	switch s := strings.ToLower(strings.TrimSpace(raw)); s {
	case "active", "draft", "archived":
		return s
	default:
		return ""
	}
}

// cleanPrice strips currency symbols and thousands separators so feed
// prices survive Shopify's strict decimal validation. Unparseable values
// come back empty.
func cleanPrice(raw string) string {
	if raw == "" {
		return ""
	}
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', ',', ' ':
			return -1
		}
		return r
	}, raw)
	if _, err := strconv.ParseFloat(cleaned, 64); err != nil {
		return ""
	}
	return cleaned
}

func fieldNames(fields map[string]any) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
