// Package feeds reads supplier inventory data. A feed source describes
// where the file lives (HTTP, FTP, SFTP, Google Sheets or local disk) and
// how to authenticate; the parsers turn CSV and Excel payloads into the
// Table the mapping and matching pipeline works with.
package feeds

// Row is one record keyed by column name. Before mapping the keys are the
// cleaned feed headers; after mapping they are canonical field names.
type Row map[string]string

// Table is a parsed feed: ordered headers plus rows keyed by those headers.
type Table struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// Get returns the value for a column, empty when absent.
func (r Row) Get(column string) string {
	return r[column]
}

// Clone copies a row so mapping can rewrite keys without touching the input.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Project returns a copy narrowed to the selected columns, in the order they
// were selected. Columns the table does not have are dropped from the
// selection; an empty selection, or one matching nothing, returns the table
// unchanged.
func (t *Table) Project(columns []string) *Table {
	if len(columns) == 0 {
		return t
	}

	have := make(map[string]bool, len(t.Headers))
	for _, h := range t.Headers {
		have[h] = true
	}
	var kept []string
	for _, c := range columns {
		if have[c] {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return t
	}

	out := &Table{Headers: kept, Rows: make([]Row, 0, len(t.Rows))}
	for _, row := range t.Rows {
		projected := make(Row, len(kept))
		for _, c := range kept {
			if v, ok := row[c]; ok {
				projected[c] = v
			}
		}
		out.Rows = append(out.Rows, projected)
	}
	return out
}
