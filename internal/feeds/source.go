package feeds

import (
	"context"
	"fmt"
	"time"

	"github.com/computerwizzy/shopify-inventory-sync/internal/crypto"
	"github.com/computerwizzy/shopify-inventory-sync/internal/entities"
)

const (
	defaultFetchTimeout = 60 * time.Second
	defaultDialTimeout  = 30 * time.Second
)

// Source reads tabular inventory data from one configured feed location.
type Source interface {
	// Headers fetches the feed and returns its cleaned column headers.
	Headers(ctx context.Context) ([]string, error)
	// Rows fetches and parses the full feed table.
	Rows(ctx context.Context) (*Table, error)
	// TestConnection verifies the feed is reachable without parsing it.
	TestConnection(ctx context.Context) error
}

// Open builds the Source for a stored feed definition, decrypting its
// credentials with enc.
func Open(src *entities.FeedSource, enc *crypto.Encryptor) (Source, error) {
	password, err := enc.Decrypt(src.EncryptedPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials for feed %q: %w", src.Name, err)
	}

	switch src.Type {
	case entities.FeedTypeHTTP:
		headers := map[string]string{}
		if err := enc.DecryptJSON(src.EncryptedHeaders, &headers); err != nil {
			return nil, fmt.Errorf("failed to decrypt headers for feed %q: %w", src.Name, err)
		}
		return NewHTTPSource(src.URL, headers, src.Username, password), nil
	case entities.FeedTypeGoogleSheet:
		return NewGoogleSheetSource(src.URL), nil
	case entities.FeedTypeFTP:
		return NewFTPSource(src.Host, src.Port, src.Path, src.Username, password), nil
	case entities.FeedTypeSFTP:
		return NewSFTPSource(src.Host, src.Port, src.Path, src.Username, password), nil
	case entities.FeedTypeLocalFile:
		return NewLocalSource(src.URL), nil
	default:
		return nil, fmt.Errorf("unknown feed type %q", src.Type)
	}
}

// tableHeaders implements Headers for sources whose only way to learn the
// header row is a full fetch.
func tableHeaders(ctx context.Context, s Source) ([]string, error) {
	table, err := s.Rows(ctx)
	if err != nil {
		return nil, err
	}
	return table.Headers, nil
}
