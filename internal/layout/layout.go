// =============================================================================
// flat2tab - Layout
// =============================================================================
//
// A Layout is the ordered list of (field name, end offset) pairs that defines
// how a fixed-width line is sliced. Each entry's start offset is implicit: it
// is the previous entry's end offset, or 0 for the first entry.
//
//   | Field   | End |  -> slice
//   |---------|-----|-----------
//   | acct    | 10  |  [0:10)
//   | name    | 40  |  [10:40)
//   | amt     | 50  |  [40:50)
//
// A Layout is built once per run and treated as read-only afterwards.
//
// =============================================================================

package layout

import (
	"fmt"
)

// Entry is one field of a layout.
type Entry struct {
	// Name is the field label. It becomes the column header on export.
	Name string

	// End is the cumulative character offset where the field ends (exclusive).
	End int
}

// Layout is an ordered sequence of entries.
type Layout []Entry

// Names returns the field names in layout order.
func (l Layout) Names() []string {
	names := make([]string, len(l))
	for i, e := range l {
		names[i] = e.Name
	}
	return names
}

// Width returns the end offset of the last entry, i.e. the record length the
// layout expects. An empty layout has width 0.
func (l Layout) Width() int {
	if len(l) == 0 {
		return 0
	}
	return l[len(l)-1].End
}

// Start returns the implicit start offset of entry i.
func (l Layout) Start(i int) int {
	if i <= 0 {
		return 0
	}
	return l[i-1].End
}

// Validate checks the layout invariants:
//   - offsets are non-negative
//   - offsets never decrease
//   - field names are unique
//
// An empty layout is valid.
func (l Layout) Validate() error {
	seen := make(map[string]int, len(l))
	prev := 0
	for i, e := range l {
		if e.End < 0 {
			return fmt.Errorf("field %q has negative end offset %d", e.Name, e.End)
		}
		if e.End < prev {
			return fmt.Errorf("field %q end offset %d is before previous end offset %d", e.Name, e.End, prev)
		}
		if j, dup := seen[e.Name]; dup {
			return fmt.Errorf("field %q is defined twice (entries %d and %d)", e.Name, j+1, i+1)
		}
		seen[e.Name] = i
		prev = e.End
	}
	return nil
}
