// =============================================================================
// flat2tab - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - fixedwidth (produces records)
//   - lookup     (enriches records)
//   - exporter   (consumes rows)
//   - converter  (glues them together)
//
// =============================================================================

package types

// =============================================================================
// RECORD
// =============================================================================

// Record is an ordered mapping of field name to extracted value.
//
// Field order is insertion order, which for decoded records is layout order.
// Values are kept exactly as extracted; trimming happens at export time.
type Record struct {
	names  []string
	values []string
	index  map[string]int
}

// NewRecord creates an empty record with room for n fields.
func NewRecord(n int) *Record {
	return &Record{
		names:  make([]string, 0, n),
		values: make([]string, 0, n),
		index:  make(map[string]int, n),
	}
}

// Set appends the field if it is new, or overwrites its value in place.
func (r *Record) Set(name, value string) {
	if i, ok := r.index[name]; ok {
		r.values[i] = value
		return
	}
	r.index[name] = len(r.names)
	r.names = append(r.names, name)
	r.values = append(r.values, value)
}

// Get returns the value of a field and whether it exists.
func (r *Record) Get(name string) (string, bool) {
	i, ok := r.index[name]
	if !ok {
		return "", false
	}
	return r.values[i], true
}

// Names returns the field names in order.
func (r *Record) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Values returns the field values in order.
func (r *Record) Values() []string {
	out := make([]string, len(r.values))
	copy(out, r.values)
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.names)
}

// =============================================================================
// EXPORT ROW
// =============================================================================

// ExportRow is one output row aligned to the export header.
//
// Textual values are strings. Anything else (ints, floats) is written as-is
// by the exporter and never trimmed.
type ExportRow []any

// Row builds an ExportRow from a record, in the order given by header.
// Fields missing from the record become empty strings.
func (r *Record) Row(header []string) ExportRow {
	row := make(ExportRow, len(header))
	for i, name := range header {
		v, _ := r.Get(name)
		row[i] = v
	}
	return row
}
