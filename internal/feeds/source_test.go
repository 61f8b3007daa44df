package feeds

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/computerwizzy/shopify-inventory-sync/internal/crypto"
	"github.com/computerwizzy/shopify-inventory-sync/internal/entities"
)

func testEncryptor(t *testing.T) *crypto.Encryptor {
	t.Helper()
	enc, err := crypto.NewEncryptor(bytes.Repeat([]byte{0x42}, crypto.KeySize))
	require.NoError(t, err)
	return enc
}

func TestLocalSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stock.csv")
	require.NoError(t, os.WriteFile(path, []byte("SKU,Qty\nAB-100,12\n"), 0o644))

	src := NewLocalSource(path)
	ctx := context.Background()

	require.NoError(t, src.TestConnection(ctx))

	headers, err := src.Headers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"SKU", "Qty"}, headers)

	table, err := src.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "AB-100", table.Rows[0]["SKU"])

	t.Run("Missing", func(t *testing.T) {
		missing := NewLocalSource(filepath.Join(dir, "nope.csv"))
		assert.Error(t, missing.TestConnection(ctx))
		_, err := missing.Rows(ctx)
		assert.Error(t, err)
	})

	t.Run("Directory", func(t *testing.T) {
		assert.Error(t, NewLocalSource(dir).TestConnection(ctx))
	})
}

func TestHTTPSource(t *testing.T) {
	var gotAPIKey, gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("X-Api-Key")
		gotUser, gotPass, _ = r.BasicAuth()
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, "SKU,Qty\nAB-100,12\nAB-200,5\n")
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL+"/exports/stock.csv", map[string]string{"X-Api-Key": "k-123"}, "feeduser", "secret")
	ctx := context.Background()

	table, err := src.Rows(ctx)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
	assert.Equal(t, "k-123", gotAPIKey)
	assert.Equal(t, "feeduser", gotUser)
	assert.Equal(t, "secret", gotPass)

	require.NoError(t, src.TestConnection(ctx))

	headers, err := src.Headers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"SKU", "Qty"}, headers)

	t.Run("ServerError", func(t *testing.T) {
		failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer failing.Close()

		src := NewHTTPSource(failing.URL, nil, "", "")
		_, err := src.Rows(context.Background())
		assert.Error(t, err)
		assert.Error(t, src.TestConnection(context.Background()))
	})

	t.Run("ContentTypeDispatch", func(t *testing.T) {
		// No extension in the path, content type says CSV.
		csvServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			fmt.Fprint(w, "SKU,Qty\nAB-100,1\n")
		}))
		defer csvServer.Close()

		src := NewHTTPSource(csvServer.URL+"/export", nil, "", "")
		table, err := src.Rows(context.Background())
		require.NoError(t, err)
		assert.Len(t, table.Rows, 1)
	})
}

func TestSheetExportURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "edit link with gid fragment",
			in:   "https://docs.google.com/spreadsheets/d/ABC123/edit#gid=42",
			want: "https://docs.google.com/spreadsheets/d/ABC123/export?format=csv&gid=42",
		},
		{
			name: "bare document link",
			in:   "https://docs.google.com/spreadsheets/d/ABC123",
			want: "https://docs.google.com/spreadsheets/d/ABC123/export?format=csv",
		},
		{
			name: "already an export link",
			in:   "https://docs.google.com/spreadsheets/d/ABC123/export?format=csv&gid=7",
			want: "https://docs.google.com/spreadsheets/d/ABC123/export?format=csv&gid=7",
		},
		{
			name: "not a google sheet",
			in:   "https://example.com/stock.csv",
			want: "https://example.com/stock.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sheetExportURL(tt.in))
		})
	}
}

func TestOpen(t *testing.T) {
	enc := testEncryptor(t)

	encrypt := func(s string) string {
		out, err := enc.Encrypt(s)
		require.NoError(t, err)
		return out
	}

	t.Run("HTTP", func(t *testing.T) {
		headers, err := enc.EncryptJSON(map[string]string{"X-Api-Key": "k-123"})
		require.NoError(t, err)

		src, err := Open(&entities.FeedSource{
			Name:              "supplier",
			Type:              entities.FeedTypeHTTP,
			URL:               "https://example.com/stock.csv",
			Username:          "feeduser",
			EncryptedPassword: encrypt("secret"),
			EncryptedHeaders:  headers,
		}, enc)
		require.NoError(t, err)

		httpSrc, ok := src.(*HTTPSource)
		require.True(t, ok)
		assert.Equal(t, "secret", httpSrc.password)
		assert.Equal(t, "k-123", httpSrc.headers["X-Api-Key"])
	})

	t.Run("FTPDefaultPort", func(t *testing.T) {
		src, err := Open(&entities.FeedSource{
			Name:              "warehouse",
			Type:              entities.FeedTypeFTP,
			Host:              "ftp.example.com",
			Path:              "/outgoing/stock.csv",
			Username:          "u",
			EncryptedPassword: encrypt("p"),
		}, enc)
		require.NoError(t, err)

		ftpSrc, ok := src.(*FTPSource)
		require.True(t, ok)
		assert.Equal(t, 21, ftpSrc.port)
		assert.Equal(t, "p", ftpSrc.password)
	})

	t.Run("SFTPDefaultPort", func(t *testing.T) {
		src, err := Open(&entities.FeedSource{
			Name:              "warehouse",
			Type:              entities.FeedTypeSFTP,
			Host:              "sftp.example.com",
			Path:              "/stock.xlsx",
			Username:          "u",
			EncryptedPassword: encrypt("p"),
		}, enc)
		require.NoError(t, err)

		sftpSrc, ok := src.(*SFTPSource)
		require.True(t, ok)
		assert.Equal(t, 22, sftpSrc.port)
	})

	t.Run("Local", func(t *testing.T) {
		src, err := Open(&entities.FeedSource{
			Name: "drop",
			Type: entities.FeedTypeLocalFile,
			URL:  "/var/feeds/stock.csv",
		}, enc)
		require.NoError(t, err)
		assert.IsType(t, &LocalSource{}, src)
	})

	t.Run("GoogleSheet", func(t *testing.T) {
		src, err := Open(&entities.FeedSource{
			Name: "sheet",
			Type: entities.FeedTypeGoogleSheet,
			URL:  "https://docs.google.com/spreadsheets/d/ABC123/edit#gid=0",
		}, enc)
		require.NoError(t, err)

		httpSrc, ok := src.(*HTTPSource)
		require.True(t, ok)
		assert.Contains(t, httpSrc.url, "/export?format=csv")
	})

	t.Run("UnknownType", func(t *testing.T) {
		_, err := Open(&entities.FeedSource{Name: "x", Type: "carrier-pigeon"}, enc)
		assert.Error(t, err)
	})

	t.Run("BadCiphertext", func(t *testing.T) {
		_, err := Open(&entities.FeedSource{
			Name:              "broken",
			Type:              entities.FeedTypeHTTP,
			EncryptedPassword: "not-base64!!!",
		}, enc)
		assert.Error(t, err)
	})
}
