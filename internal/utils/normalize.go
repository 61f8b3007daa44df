package utils

import (
	"regexp"
	"strings"
)

var (
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
	// Characters stripped from header names before comparison
	headerPunctuation = regexp.MustCompile(`[_\-./#()]`)
)

// CleanHeader sanitizes a raw column header read from a feed file:
// BOM and control characters removed, inner whitespace collapsed, outer
// whitespace trimmed.
func CleanHeader(header string) string {
	header = strings.TrimPrefix(header, "\uFEFF")
	header = whitespaceChars.ReplaceAllString(header, " ")
	header = multipleSpaces.ReplaceAllString(header, " ")
	return strings.TrimSpace(header)
}

// NormalizeHeader reduces a header to a comparison key: lowercased with
// whitespace and punctuation removed, so "Item SKU", "item_sku" and
// "Item-SKU" all normalize identically.
func NormalizeHeader(header string) string {
	header = strings.ToLower(CleanHeader(header))
	header = headerPunctuation.ReplaceAllString(header, "")
	return strings.ReplaceAll(header, " ", "")
}

// CleanCell trims a raw cell value and maps the placeholder strings that
// spreadsheet exports produce for empty cells to the empty string.
func CleanCell(value string) string {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "nan", "none", "null", "n/a", "#n/a":
		return ""
	}
	return value
}

// IsBlank reports whether a cell is empty after cleaning.
func IsBlank(value string) bool {
	return CleanCell(value) == ""
}
