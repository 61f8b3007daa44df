package feeds

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
)

// HTTPSource downloads a feed file from a URL, optionally with extra
// request headers and basic auth.
type HTTPSource struct {
	client   *http.Client
	url      string
	headers  map[string]string
	username string
	password string
}

// NewHTTPSource creates a URL feed source. Headers are sent on every
// request; username/password enable basic auth when set.
func NewHTTPSource(rawURL string, headers map[string]string, username, password string) *HTTPSource {
	return &HTTPSource{
		client:   &http.Client{Timeout: defaultFetchTimeout},
		url:      rawURL,
		headers:  headers,
		username: username,
		password: password,
	}
}

func (s *HTTPSource) Headers(ctx context.Context) ([]string, error) {
	return tableHeaders(ctx, s)
}

func (s *HTTPSource) Rows(ctx context.Context) (*Table, error) {
	resp, err := s.get(ctx)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}
	return Parse(s.filename(resp), bytes.NewReader(data))
}

// TestConnection issues a GET and discards the body. HEAD is avoided
// because several supplier systems reject it.
func (s *HTTPSource) TestConnection(ctx context.Context) error {
	resp, err := s.get(ctx)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (s *HTTPSource) get(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
	if s.username != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status fetching feed: %d", resp.StatusCode)
	}
	return resp, nil
}

// filename picks the name used for parser dispatch: the URL path when it
// carries a supported extension, otherwise a name derived from the
// response content type.
func (s *HTTPSource) filename(resp *http.Response) string {
	if name := path.Base(resp.Request.URL.Path); IsSupported(name) {
		return name
	}
	ct := resp.Header.Get("Content-Type")
	if strings.Contains(ct, "spreadsheet") || strings.Contains(ct, "ms-excel") {
		return "feed.xlsx"
	}
	return "feed.csv"
}
