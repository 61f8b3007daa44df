package feeds

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads comma-separated feed data into a Table. Data that is not
// valid UTF-8 is retried as latin-1 and then cp1252, which covers the
// exports most supplier systems produce.
func ParseCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed data: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	decoders := []func([]byte) ([]byte, error){decodeUTF8, decodeLatin1, decodeCP1252}

	var lastErr error
	for _, decode := range decoders {
		text, err := decode(data)
		if err != nil {
			lastErr = err
			continue
		}
		table, err := parseCSVText(text)
		if err != nil {
			lastErr = err
			continue
		}
		return table, nil
	}
	return nil, fmt.Errorf("could not decode CSV data with any supported encoding: %w", lastErr)
}

func decodeUTF8(data []byte) ([]byte, error) {
	if !utf8.Valid(data) {
		return nil, errors.New("data is not valid utf-8")
	}
	return data, nil
}

func decodeLatin1(data []byte) ([]byte, error) {
	return charmap.ISO8859_1.NewDecoder().Bytes(data)
}

func decodeCP1252(data []byte) ([]byte, error) {
	return charmap.Windows1252.NewDecoder().Bytes(data)
}

func parseCSVText(data []byte) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV data: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("CSV data has no header row")
	}

	headers := cleanHeaders(records[0])
	return &Table{Headers: headers, Rows: buildRows(headers, records[1:])}, nil
}
