// Package shopify is the gateway to the Shopify Admin REST API. Every call
// runs through the shared rate limiter, circuit breaker and retry policy, so
// callers never talk to the API directly and never see a raw status code.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/computerwizzy/shopify-inventory-sync/internal/resilience"
)

const (
	defaultAPIVersion = "2024-01"
	defaultTimeout    = 30 * time.Second

	// statusOverloaded is the non-standard code Shopify emits when the
	// platform itself is saturated.
	statusOverloaded = 529

	// pageSize is the maximum page size the products endpoint allows.
	pageSize = 250
)

// Config carries the store coordinates for the gateway.
type Config struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
	Timeout     time.Duration
}

// Client is the resilient API gateway. Safe for concurrent use; all state
// lives in the shared breaker/limiter and a cached location id.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string

	breaker *resilience.CircuitBreaker
	limiter *resilience.AdaptiveRateLimiter
	retry   resilience.RetryPolicy

	mu         sync.Mutex
	locationID int64
}

// NewClient creates a gateway for one store. The breaker and limiter are
// shared process-wide so every caller sees the same view of API health.
func NewClient(cfg Config, breaker *resilience.CircuitBreaker, limiter *resilience.AdaptiveRateLimiter, retry resilience.RetryPolicy) *Client {
	domain := cfg.ShopDomain
	if domain != "" && !strings.Contains(domain, ".") {
		domain += ".myshopify.com"
	}
	version := cfg.APIVersion
	if version == "" {
		version = defaultAPIVersion
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if retry.Retryable == nil {
		retry.Retryable = IsRetryable
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    fmt.Sprintf("https://%s/admin/api/%s", domain, version),
		token:      cfg.AccessToken,
		breaker:    breaker,
		limiter:    limiter,
		retry:      retry,
	}
}

// Stats returns a snapshot of the breaker and limiter.
func (c *Client) Stats() resilience.Stats {
	return resilience.Snapshot(c.breaker, c.limiter)
}

// ListProducts fetches the whole catalog with since_id pagination. A page
// shorter than the page size terminates the walk.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var all []Product
	sinceID := int64(0)
	for {
		var page struct {
			Products []Product `json:"products"`
		}
		query := url.Values{}
		query.Set("limit", strconv.Itoa(pageSize))
		query.Set("since_id", strconv.FormatInt(sinceID, 10))
		if err := c.do(ctx, http.MethodGet, "/products.json", query, nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Products...)
		if len(page.Products) < pageSize {
			return all, nil
		}
		sinceID = page.Products[len(page.Products)-1].ID
	}
}

// CountProducts returns the store's product count.
func (c *Client) CountProducts(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	err := c.do(ctx, http.MethodGet, "/products/count.json", nil, nil, &out)
	return out.Count, err
}

// BuildSKUIndex lists every product and flattens variants into a SKU-keyed
// index. Variants without a SKU are skipped; duplicate SKUs within one
// snapshot resolve last-write-wins.
func (c *Client) BuildSKUIndex(ctx context.Context) (map[string]CatalogVariant, error) {
	products, err := c.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[string]CatalogVariant)
	for _, product := range products {
		for _, variant := range product.Variants {
			sku := strings.TrimSpace(variant.SKU)
			if sku == "" {
				continue
			}
			index[sku] = CatalogVariant{
				SKU:               sku,
				VariantID:         variant.ID,
				ProductID:         product.ID,
				InventoryItemID:   variant.InventoryItemID,
				ProductTitle:      product.Title,
				InventoryQuantity: variant.InventoryQuantity,
				Price:             variant.Price,
			}
		}
	}
	log.Printf("[SHOPIFY] Built SKU index: %d products, %d SKUs", len(products), len(index))
	return index, nil
}

// SetInventoryLevel sets the available quantity for an inventory item at the
// store's primary location.
func (c *Client) SetInventoryLevel(ctx context.Context, inventoryItemID int64, quantity int) error {
	locationID, err := c.primaryLocationID(ctx)
	if err != nil {
		return err
	}
	payload := map[string]any{
		"location_id":       locationID,
		"inventory_item_id": inventoryItemID,
		"available":         quantity,
	}
	return c.do(ctx, http.MethodPost, "/inventory_levels/set.json", nil, payload, nil)
}

// UpdateProduct patches product-level fields (title, body_html, vendor,
// product_type, status). A nil or empty field set is a no-op.
func (c *Client) UpdateProduct(ctx context.Context, productID int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	product := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		product[k] = v
	}
	product["id"] = productID

	path := fmt.Sprintf("/products/%d.json", productID)
	return c.do(ctx, http.MethodPut, path, nil, map[string]any{"product": product}, nil)
}

// UpdateVariant patches variant-level fields (price, compare_at_price,
// weight, sku, inventory_management). A nil or empty field set is a no-op.
func (c *Client) UpdateVariant(ctx context.Context, variantID int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	variant := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		variant[k] = v
	}
	variant["id"] = variantID

	path := fmt.Sprintf("/variants/%d.json", variantID)
	return c.do(ctx, http.MethodPut, path, nil, map[string]any{"variant": variant}, nil)
}

// primaryLocationID resolves the first active location and caches it for the
// life of the process; inventory writes all target that location.
func (c *Client) primaryLocationID(ctx context.Context) (int64, error) {
	c.mu.Lock()
	if c.locationID != 0 {
		id := c.locationID
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	var out struct {
		Locations []Location `json:"locations"`
	}
	if err := c.do(ctx, http.MethodGet, "/locations.json", nil, nil, &out); err != nil {
		return 0, err
	}
	for _, location := range out.Locations {
		if location.Active {
			c.mu.Lock()
			c.locationID = location.ID
			c.mu.Unlock()
			return location.ID, nil
		}
	}
	return 0, &APIError{StatusCode: http.StatusNotFound, Message: "no active location"}
}

// do runs one API call under the retry policy.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.retry.Do(ctx, func(ctx context.Context) error {
		return c.doOnce(ctx, method, path, query, body, out)
	})
}

// doOnce is a single guarded attempt: limiter, breaker gate, request,
// outcome recording.
func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := c.breaker.Allow(); err != nil {
		return err
	}

	err := c.roundTrip(ctx, method, path, query, body, out)
	c.record(err)
	return err
}

// record feeds one outcome into the breaker and limiter.
func (c *Client) record(err error) {
	switch {
	case err == nil:
		c.breaker.RecordSuccess()
		c.limiter.OnSuccess()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Shutdown noise says nothing about API health.
	case IsRateLimited(err):
		c.breaker.RecordFailure()
		var rateErr *RateLimitError
		retryAfter := time.Duration(0)
		if errors.As(err, &rateErr) {
			retryAfter = rateErr.RetryAfter
		}
		c.limiter.OnRateLimited(retryAfter)
	case IsOverloaded(err):
		c.breaker.RecordFailure()
		c.limiter.OnOverloaded()
	default:
		c.breaker.RecordFailure()
		c.limiter.OnFailure()
	}
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// classifyStatus maps a response to the gateway's error taxonomy.
func classifyStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode == statusOverloaded:
		return ErrOverloaded
	case resp.StatusCode >= 500:
		return &ServerError{StatusCode: resp.StatusCode}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
}

// parseRetryAfter reads a Retry-After header given in seconds. Absent or
// unparseable headers yield zero, which callers treat as no hint.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(header, 64)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
