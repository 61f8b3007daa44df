package mapping

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/computerwizzy/shopify-inventory-sync/internal/feeds"
)

// Apply projects a parsed feed table onto canonical fields. Only mapped
// columns survive; output rows are keyed by canonical field name. Columns
// the mapping names but the table lacks come through empty.
func Apply(table *feeds.Table, mapping map[string]string) *feeds.Table {
	headers := make([]string, 0, len(mapping))
	for _, field := range KnownFields {
		if strings.TrimSpace(mapping[field]) != "" {
			headers = append(headers, field)
		}
	}

	rows := make([]feeds.Row, 0, len(table.Rows))
	for _, row := range table.Rows {
		out := make(feeds.Row, len(headers))
		for _, field := range headers {
			out[field] = row.Get(mapping[field])
		}
		rows = append(rows, out)
	}
	return &feeds.Table{Headers: headers, Rows: rows}
}

// Merge overlays job-level mapping overrides on a feed's stored mapping.
// Overrides win field by field; an override set to the empty string
// removes the field entirely.
func Merge(feedMapping, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(feedMapping)+len(overrides))
	for field, column := range feedMapping {
		merged[field] = column
	}
	for field, column := range overrides {
		if strings.TrimSpace(column) == "" {
			delete(merged, field)
			continue
		}
		merged[field] = column
	}
	return merged
}

// ValidateRequired checks that the fields a sync cannot run without are
// mapped.
func ValidateRequired(mapping map[string]string) error {
	var missing []string
	for _, field := range RequiredFields {
		if strings.TrimSpace(mapping[field]) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required field mappings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// MissingColumns returns the mapped feed columns absent from the parsed
// table, for data-quality warnings.
func MissingColumns(table *feeds.Table, mapping map[string]string) []string {
	present := make(map[string]struct{}, len(table.Headers))
	for _, h := range table.Headers {
		present[h] = struct{}{}
	}

	var missing []string
	for _, field := range KnownFields {
		column := strings.TrimSpace(mapping[field])
		if column == "" {
			continue
		}
		if _, ok := present[column]; !ok {
			missing = append(missing, column)
		}
	}
	return missing
}

// ParseJSON decodes a stored column-mapping JSON object. Empty input
// yields an empty mapping.
func ParseJSON(raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]string{}, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("invalid column mapping: %w", err)
	}
	return m, nil
}

// ToJSON serializes a column mapping for storage.
func ToJSON(mapping map[string]string) (string, error) {
	data, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("failed to serialize column mapping: %w", err)
	}
	return string(data), nil
}
