package matching

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/computerwizzy/shopify-inventory-sync/internal/feeds"
	"github.com/computerwizzy/shopify-inventory-sync/internal/mapping"
	"github.com/computerwizzy/shopify-inventory-sync/internal/utils"
)

// maxListedDuplicates caps how many duplicated SKU values one warning
// spells out.
const maxListedDuplicates = 5

// QualityWarnings inspects a parsed feed against its column mapping and
// reports data problems: blank or duplicated SKUs, quantities that do not
// parse, negative quantities, feed columns no field uses. Warnings never
// block a run; callers log or display them.
func QualityWarnings(table *feeds.Table, colMapping map[string]string) []string {
	if table == nil || len(table.Rows) == 0 {
		return nil
	}

	skuColumn := strings.TrimSpace(colMapping[mapping.FieldSKU])
	qtyColumn := strings.TrimSpace(colMapping[mapping.FieldQuantity])

	var (
		blankSKUs  int
		nonNumeric int
		negative   int
		counts     = make(map[string]int)
		display    = make(map[string]string)
		duplicated []string
	)
	for _, row := range table.Rows {
		if skuColumn != "" {
			sku := utils.CleanCell(row[skuColumn])
			if sku == "" {
				blankSKUs++
			} else {
				// Folded the way the matcher folds, so "abc-1" and
				// "ABC-1" count as the same SKU. The first casing
				// seen is the one reported.
				key := strings.ToLower(sku)
				if counts[key] == 0 {
					display[key] = sku
				}
				counts[key]++
				if counts[key] == 2 {
					duplicated = append(duplicated, key)
				}
			}
		}
		if qtyColumn != "" {
			raw := utils.CleanCell(row[qtyColumn])
			if raw == "" {
				continue
			}
			value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
			switch {
			case err != nil || math.IsNaN(value) || math.IsInf(value, 0):
				nonNumeric++
			case value < 0:
				negative++
			}
		}
	}

	var warnings []string
	if blankSKUs > 0 {
		warnings = append(warnings, fmt.Sprintf("%d row(s) have a blank SKU and are skipped", blankSKUs))
	}
	if len(duplicated) > 0 {
		listed := make([]string, 0, len(duplicated)+1)
		for i, key := range duplicated {
			if i == maxListedDuplicates {
				listed = append(listed, fmt.Sprintf("and %d more", len(duplicated)-maxListedDuplicates))
				break
			}
			listed = append(listed, fmt.Sprintf("%s (x%d)", display[key], counts[key]))
		}
		warnings = append(warnings, fmt.Sprintf("duplicate SKU value(s), the last row wins: %s", strings.Join(listed, ", ")))
	}
	if nonNumeric > 0 {
		warnings = append(warnings, fmt.Sprintf("%d quantity value(s) are not numeric and default to 0", nonNumeric))
	}
	if negative > 0 {
		warnings = append(warnings, fmt.Sprintf("%d negative quantity value(s) clamp to 0", negative))
	}
	if unmapped := unmappedColumns(table.Headers, colMapping); len(unmapped) > 0 {
		warnings = append(warnings, fmt.Sprintf("feed column(s) not mapped to any field: %s", strings.Join(unmapped, ", ")))
	}
	return warnings
}

// unmappedColumns returns the table headers no mapping entry points at, in
// header order.
func unmappedColumns(headers []string, colMapping map[string]string) []string {
	mapped := make(map[string]struct{}, len(colMapping))
	for _, column := range colMapping {
		if column = strings.TrimSpace(column); column != "" {
			mapped[column] = struct{}{}
		}
	}
	var unmapped []string
	for _, header := range headers {
		if _, ok := mapped[header]; !ok {
			unmapped = append(unmapped, header)
		}
	}
	return unmapped
}
