package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/computerwizzy/shopify-inventory-sync/internal/resilience"
)

func newTestClient(serverURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    serverURL,
		token:      "test-token",
		breaker:    resilience.NewCircuitBreaker(5, time.Minute),
		limiter:    resilience.NewAdaptiveRateLimiter(time.Millisecond, 50*time.Millisecond),
		retry: resilience.RetryPolicy{
			MaxAttempts: 3,
			BaseDelay:   time.Millisecond,
			MaxDelay:    2 * time.Millisecond,
			Retryable:   IsRetryable,
		},
	}
}

func genProducts(startID, count int) []Product {
	products := make([]Product, count)
	for i := 0; i < count; i++ {
		id := int64(startID + i)
		products[i] = Product{
			ID:    id,
			Title: fmt.Sprintf("Product %d", id),
			Variants: []Variant{
				{ID: id * 10, SKU: fmt.Sprintf("SKU-%d", id), InventoryItemID: id * 100, InventoryQuantity: 5},
			},
		}
	}
	return products
}

func TestClient_ListProducts_Pagination(t *testing.T) {
	var sinceIDs []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Shopify-Access-Token") != "test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		sinceID := r.URL.Query().Get("since_id")
		sinceIDs = append(sinceIDs, sinceID)

		var products []Product
		if sinceID == "0" {
			products = genProducts(1, pageSize)
		} else {
			products = genProducts(pageSize+1, 3)
		}
		json.NewEncoder(w).Encode(map[string][]Product{"products": products})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	products, err := client.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}

	if len(products) != pageSize+3 {
		t.Errorf("expected %d products, got %d", pageSize+3, len(products))
	}
	if len(sinceIDs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(sinceIDs))
	}
	if sinceIDs[0] != "0" {
		t.Errorf("first request since_id = %s, want 0", sinceIDs[0])
	}
	if sinceIDs[1] != "250" {
		t.Errorf("second request since_id = %s, want 250 (last id of first page)", sinceIDs[1])
	}
}

func TestClient_ListProducts_ShortFirstPage(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		json.NewEncoder(w).Encode(map[string][]Product{"products": genProducts(1, 2)})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	products, err := client.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}

	if len(products) != 2 {
		t.Errorf("expected 2 products, got %d", len(products))
	}
	if requestCount != 1 {
		t.Errorf("short page should terminate pagination, got %d requests", requestCount)
	}
}

func TestClient_CountProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/count.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]int{"count": 1234})
	}))
	defer server.Close()

	count, err := newTestClient(server.URL).CountProducts(context.Background())
	if err != nil {
		t.Fatalf("CountProducts failed: %v", err)
	}
	if count != 1234 {
		t.Errorf("expected 1234, got %d", count)
	}
}

func TestClient_BuildSKUIndex(t *testing.T) {
	products := []Product{
		{
			ID: 1, Title: "Widget",
			Variants: []Variant{
				{ID: 11, SKU: "ABC-123", InventoryItemID: 101, InventoryQuantity: 4, Price: "19.99"},
				{ID: 12, SKU: "  ", InventoryItemID: 102},
				{ID: 13, SKU: "DEF-456", InventoryItemID: 103, InventoryQuantity: 9},
			},
		},
		{
			ID: 2, Title: "Widget Reissue",
			Variants: []Variant{
				// Duplicate SKU: later entry wins within one snapshot
				{ID: 21, SKU: "ABC-123", InventoryItemID: 201, InventoryQuantity: 7, Price: "21.99"},
			},
		},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string][]Product{"products": products})
	}))
	defer server.Close()

	index, err := newTestClient(server.URL).BuildSKUIndex(context.Background())
	if err != nil {
		t.Fatalf("BuildSKUIndex failed: %v", err)
	}

	if len(index) != 2 {
		t.Fatalf("expected 2 index entries, got %d", len(index))
	}
	winner := index["ABC-123"]
	if winner.VariantID != 21 || winner.ProductTitle != "Widget Reissue" {
		t.Errorf("duplicate SKU should resolve last-write-wins, got variant %d (%s)", winner.VariantID, winner.ProductTitle)
	}
	if winner.InventoryItemID != 201 || winner.InventoryQuantity != 7 {
		t.Errorf("index entry carries wrong inventory fields: %+v", winner)
	}
	if _, ok := index["DEF-456"]; !ok {
		t.Error("second SKU missing from index")
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		headers    map[string]string
		check      func(t *testing.T, err error)
	}{
		{
			name:       "429 rate limited with hint",
			statusCode: http.StatusTooManyRequests,
			headers:    map[string]string{"Retry-After": "2"},
			check: func(t *testing.T, err error) {
				if !IsRateLimited(err) {
					t.Fatalf("expected rate limit error, got %v", err)
				}
				var rateErr *RateLimitError
				if !errors.As(err, &rateErr) {
					t.Fatalf("expected *RateLimitError, got %T", err)
				}
				if rateErr.RetryAfter != 2*time.Second {
					t.Errorf("RetryAfter = %v, want 2s", rateErr.RetryAfter)
				}
			},
		},
		{
			name:       "529 overloaded",
			statusCode: statusOverloaded,
			check: func(t *testing.T, err error) {
				if !IsOverloaded(err) {
					t.Fatalf("expected overload error, got %v", err)
				}
				if !IsRetryable(err) {
					t.Error("overload should be retryable")
				}
			},
		},
		{
			name:       "500 server error",
			statusCode: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				var serverErr *ServerError
				if !errors.As(err, &serverErr) {
					t.Fatalf("expected *ServerError, got %T: %v", err, err)
				}
				if serverErr.StatusCode != 500 {
					t.Errorf("StatusCode = %d, want 500", serverErr.StatusCode)
				}
			},
		},
		{
			name:       "404 api error",
			statusCode: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected *APIError, got %T: %v", err, err)
				}
				if IsRetryable(err) {
					t.Error("client errors must not be retryable")
				}
			},
		},
		{
			name:       "422 api error",
			statusCode: http.StatusUnprocessableEntity,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected *APIError, got %T: %v", err, err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			client.retry.MaxAttempts = 1

			_, err := client.CountProducts(context.Background())
			if err == nil {
				t.Fatal("expected an error")
			}
			tt.check(t, err)
		})
	}
}

func TestClient_RateLimitWidensDelay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.retry.MaxAttempts = 1
	client.limiter = resilience.NewAdaptiveRateLimiter(time.Millisecond, 10*time.Second)

	_, err := client.CountProducts(context.Background())
	if !IsRateLimited(err) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if got := client.limiter.CurrentDelay(); got != 3*time.Second {
		t.Errorf("limiter delay = %v, want 3s (hint + 1s)", got)
	}
}

func TestClient_RetriesThenSucceeds(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		if requestCount < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]int{"count": 5})
	}))
	defer server.Close()

	count, err := newTestClient(server.URL).CountProducts(context.Background())
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if count != 5 {
		t.Errorf("count = %d, want 5", count)
	}
	if requestCount != 3 {
		t.Errorf("expected 3 requests, got %d", requestCount)
	}
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CountProducts(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if requestCount != 1 {
		t.Errorf("client errors must not retry, got %d requests", requestCount)
	}
}

func TestClient_BreakerFailsFast(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.breaker = resilience.NewCircuitBreaker(1, time.Minute)
	client.breaker.RecordFailure()

	_, err := client.CountProducts(context.Background())
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}
	if requestCount != 0 {
		t.Errorf("open breaker must not let requests through, got %d", requestCount)
	}
}

func TestClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.breaker = resilience.NewCircuitBreaker(2, time.Minute)
	client.retry.MaxAttempts = 1

	ctx := context.Background()
	_, _ = client.CountProducts(ctx)
	_, _ = client.CountProducts(ctx)

	if got := client.breaker.State(); got != resilience.StateOpen {
		t.Fatalf("breaker state = %s, want open", got)
	}

	_, err := client.CountProducts(ctx)
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}
	if requestCount != 2 {
		t.Errorf("expected 2 requests before the breaker opened, got %d", requestCount)
	}
}

func TestClient_SetInventoryLevel(t *testing.T) {
	locationCalls := 0
	var lastPayload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/locations.json":
			locationCalls++
			json.NewEncoder(w).Encode(map[string][]Location{"locations": {
				{ID: 42, Name: "Closed Warehouse", Active: false},
				{ID: 77, Name: "Main Warehouse", Active: true},
			}})
		case "/inventory_levels/set.json":
			if r.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", r.Method)
			}
			json.NewDecoder(r.Body).Decode(&lastPayload)
			w.Write([]byte("{}"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ctx := context.Background()

	if err := client.SetInventoryLevel(ctx, 555, 12); err != nil {
		t.Fatalf("SetInventoryLevel failed: %v", err)
	}
	if err := client.SetInventoryLevel(ctx, 556, 0); err != nil {
		t.Fatalf("second SetInventoryLevel failed: %v", err)
	}

	if locationCalls != 1 {
		t.Errorf("primary location should be cached, got %d lookups", locationCalls)
	}
	if lastPayload["location_id"].(float64) != 77 {
		t.Errorf("payload location_id = %v, want 77 (first active location)", lastPayload["location_id"])
	}
	if lastPayload["inventory_item_id"].(float64) != 556 {
		t.Errorf("payload inventory_item_id = %v, want 556", lastPayload["inventory_item_id"])
	}
	if lastPayload["available"].(float64) != 0 {
		t.Errorf("payload available = %v, want 0", lastPayload["available"])
	}
}

func TestClient_UpdateProduct(t *testing.T) {
	var payload map[string]map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if r.URL.Path != "/products/9.json" {
			t.Errorf("path = %s, want /products/9.json", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&payload)
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	err := newTestClient(server.URL).UpdateProduct(context.Background(), 9, map[string]any{"title": "New Title"})
	if err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}

	product := payload["product"]
	if product["id"].(float64) != 9 {
		t.Errorf("body product.id = %v, want 9", product["id"])
	}
	if product["title"] != "New Title" {
		t.Errorf("body product.title = %v, want New Title", product["title"])
	}
}

func TestClient_UpdateVariant(t *testing.T) {
	var payload map[string]map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/variants/33.json" {
			t.Errorf("path = %s, want /variants/33.json", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&payload)
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	err := newTestClient(server.URL).UpdateVariant(context.Background(), 33, map[string]any{"price": "10.99"})
	if err != nil {
		t.Fatalf("UpdateVariant failed: %v", err)
	}
	if payload["variant"]["price"] != "10.99" {
		t.Errorf("body variant.price = %v, want 10.99", payload["variant"]["price"])
	}
}

func TestClient_UpdateWithNoFieldsIsNoOp(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.UpdateProduct(context.Background(), 1, nil); err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}
	if err := client.UpdateVariant(context.Background(), 1, map[string]any{}); err != nil {
		t.Fatalf("UpdateVariant failed: %v", err)
	}
	if requestCount != 0 {
		t.Errorf("empty field sets must not hit the API, got %d requests", requestCount)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"2", 2 * time.Second},
		{"0.5", 500 * time.Millisecond},
		{"garbage", 0},
		{"-3", 0},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.header); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &RateLimitError{}, true},
		{"overloaded", ErrOverloaded, true},
		{"server error", &ServerError{StatusCode: 503}, true},
		{"transport", &TransportError{Err: errors.New("connection reset")}, true},
		{"api error", &APIError{StatusCode: 404}, false},
		{"circuit open", resilience.ErrCircuitOpen, false},
		{"context canceled", context.Canceled, false},
		{"wrapped rate limit", fmt.Errorf("call failed: %w", ErrRateLimited), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
