package feeds

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/computerwizzy/shopify-inventory-sync/internal/utils"
)

// ErrUnsupportedFormat is returned when a feed file has an extension no
// parser handles.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// SupportedExtensions lists the feed file extensions Parse accepts.
var SupportedExtensions = []string{".csv", ".xlsx", ".xls"}

// Parse reads a feed file into a Table, choosing the parser from the
// file's extension.
func Parse(filename string, r io.Reader) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return ParseCSV(r)
	case ".xlsx", ".xls":
		return ParseExcel(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsSupported reports whether a parser exists for the file's extension.
func IsSupported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// cleanHeaders sanitizes raw header cells, names blank columns and
// disambiguates duplicates the way spreadsheet tools do ("Qty", "Qty.1").
func cleanHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		header := utils.CleanHeader(h)
		if header == "" {
			header = fmt.Sprintf("Column %d", i+1)
		}
		if n := seen[header]; n > 0 {
			seen[header] = n + 1
			header = fmt.Sprintf("%s.%d", header, n)
		} else {
			seen[header] = 1
		}
		headers[i] = header
	}
	return headers
}

// buildRows keys each record by header, padding or truncating records whose
// field count drifts from the header row. Rows blank in every column are
// dropped.
func buildRows(headers []string, records [][]string) []Row {
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		row := make(Row, len(headers))
		blank := true
		for i, header := range headers {
			value := ""
			if i < len(record) {
				value = utils.CleanCell(record[i])
			}
			if value != "" {
				blank = false
			}
			row[header] = value
		}
		if blank {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}
