package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_SetKeepsInsertionOrder(t *testing.T) {
	r := NewRecord(3)
	r.Set("acct", "1")
	r.Set("name", "x")
	r.Set("acct", "2")

	require.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"acct", "name"}, r.Names())
	assert.Equal(t, []string{"2", "x"}, r.Values())

	v, ok := r.Get("acct")
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRecord_RowAlignsToHeader(t *testing.T) {
	r := NewRecord(2)
	r.Set("b", "B")
	r.Set("a", "A")

	row := r.Row([]string{"a", "b", "c"})
	assert.Equal(t, ExportRow{"A", "B", ""}, row)
}

func TestError_IsMatchesKind(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("run: %w", EAt(ErrExport, "exporter.Write", 7, cause))

	assert.True(t, errors.Is(err, ErrExport))
	assert.False(t, errors.Is(err, ErrConfig))
	assert.True(t, errors.Is(err, cause))

	var te *Error
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "exporter.Write", te.Op)
	assert.Equal(t, 7, te.Line)
	assert.Equal(t, "exporter.Write: export error (line 7): disk full", te.Error())
}
