// Package tabular reads city source files (CSV, XLSX) into ordered rows.
package tabular

import "strings"

// Row is one tabular record: column names in declaration order plus a
// case-insensitive value lookup. Declaration order is what keeps the
// normalizer's embedding text stable across runs.
type Row struct {
	columns []string
	values  map[string]string
	lower   map[string]string
}

// NewRow pairs column names with cell values. Extra cells are dropped,
// missing cells read as empty.
func NewRow(columns, cells []string) Row {
	values := make(map[string]string, len(columns))
	lower := make(map[string]string, len(columns))
	for i, col := range columns {
		var v string
		if i < len(cells) {
			v = cells[i]
		}
		values[col] = v
		// first declaration wins for duplicate lowercased names
		lk := strings.ToLower(col)
		if _, ok := lower[lk]; !ok {
			lower[lk] = v
		}
	}
	return Row{columns: columns, values: values, lower: lower}
}

// Columns returns the column names in declaration order.
func (r Row) Columns() []string { return r.columns }

// Get returns the value for an exact column name.
func (r Row) Get(column string) string { return r.values[column] }

// Lookup returns the first non-empty value among naming variants,
// matched case-insensitively (e.g. "city" / "City").
func (r Row) Lookup(names ...string) string {
	for _, n := range names {
		if v := r.lower[strings.ToLower(n)]; strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Len returns the number of columns.
func (r Row) Len() int { return len(r.columns) }
