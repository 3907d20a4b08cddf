package tabular

import "strings"

// Row maps column names to cell values for one record. Absent and empty
// cells are simply not present in the map, so a lookup miss means "no value".
type Row map[string]string

// RecordSet is the uniform tabular representation every loader produces:
// an ordered list of column names plus the rows read from the source.
// Column names keep their original casing; matching against mapping rules
// goes through the normalized form.
type RecordSet struct {
	// Columns in source order, original spelling preserved.
	Columns []string

	// Rows in source order.
	Rows []Row

	normalized []string
}

// NewRecordSet builds a RecordSet from a header and rows.
func NewRecordSet(columns []string, rows []Row) *RecordSet {
	rs := &RecordSet{
		Columns:    columns,
		Rows:       rows,
		normalized: make([]string, len(columns)),
	}
	for i, c := range columns {
		rs.normalized[i] = NormalizeColumn(c)
	}
	return rs
}

// NormalizeColumn lowers and trims a column name for matching purposes.
func NormalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Resolve returns the original column name matching the given name under
// column normalization, or false if no column matches.
func (rs *RecordSet) Resolve(name string) (string, bool) {
	want := NormalizeColumn(name)
	for i, n := range rs.normalized {
		if n == want {
			return rs.Columns[i], true
		}
	}
	return "", false
}

// HasColumn reports whether a column exists under normalized comparison.
func (rs *RecordSet) HasColumn(name string) bool {
	_, ok := rs.Resolve(name)
	return ok
}

// NormalizedColumns returns the matching form of every column, in order.
func (rs *RecordSet) NormalizedColumns() []string {
	out := make([]string, len(rs.normalized))
	copy(out, rs.normalized)
	return out
}
