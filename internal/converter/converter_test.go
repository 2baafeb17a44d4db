package converter

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/flat2tab/internal/config"
	"github.com/ginjaninja78/flat2tab/internal/layout"
	"github.com/ginjaninja78/flat2tab/internal/lookup"
	"github.com/ginjaninja78/flat2tab/internal/testutil"
	"github.com/ginjaninja78/flat2tab/internal/types"
	"github.com/ginjaninja78/flat2tab/pkg/utils"
)

// billRows describes rec [0,1), acct [1,11), name [11,41), amt [41,51).
func billRows() [][]any {
	return [][]any{
		{"Field", "Type", "Length", nil},
		{"rec", "A", 1, 1},
		{"acct", "N", 10, 11},
		{"name", "A", 30, 41},
		{"amt", "N", 10, 51},
	}
}

func billLine(acct, name, amt string) string {
	return "D" + acct + name + strings.Repeat(" ", 30-len(name)) + amt
}

func billInput() string {
	return strings.Join([]string{
		"H20240101 BILL PRINT",
		billLine("0000000001", "Header Record", "0000000.00"),
		billLine("0000000012", "John Doe", "0000123.45"),
		"T000002",
	}, "\n") + "\n"
}

type fixture struct {
	dir      string
	template string
	input    string
}

func newFixture(t *testing.T, input string) fixture {
	t.Helper()
	dir := t.TempDir()
	return fixture{
		dir:      dir,
		template: testutil.WriteTemplate(t, dir, layout.DefaultSheet, billRows()),
		input:    testutil.WriteFile(t, dir, "bill.txt", input),
	}
}

func (f fixture) config(t *testing.T, output string, extra map[string]any) *config.ExportConfig {
	t.Helper()

	doc := map[string]any{
		"files": map[string]any{
			"input":    f.input,
			"output":   filepath.Join(f.dir, output),
			"template": f.template,
		},
	}
	for k, v := range extra {
		doc[k] = v
	}

	data, err := json.Marshal(map[string]any{"bill": doc})
	require.NoError(t, err)
	file, err := config.Parse(data)
	require.NoError(t, err)
	ec, err := file.Export("bill")
	require.NoError(t, err)
	return ec
}

type fakeSource struct {
	owners []lookup.Owner
	err    error
}

func (s fakeSource) Owners(context.Context) ([]lookup.Owner, error) {
	return s.owners, s.err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRun_CSV(t *testing.T) {
	f := newFixture(t, billInput())
	cfg := f.config(t, "out.csv", nil)

	res := New(cfg).Run(context.Background())

	require.NoError(t, res.Error)
	assert.True(t, res.Success)
	assert.Equal(t, "bill", res.Type)
	assert.Equal(t, filepath.Join(f.dir, "out.csv"), res.OutputFile)
	assert.Equal(t, "rec,acct,name,amt\nD,0000000012,John Doe,0000123.45\n", readFile(t, res.OutputFile))

	assert.Equal(t, 4, res.Stats.Lines)
	assert.Equal(t, 2, res.Stats.DataLines)
	assert.Equal(t, 1, res.Stats.Skipped)
	assert.Equal(t, 1, res.Stats.Records)
	assert.Zero(t, res.Stats.LookupHits)
}

func TestRun_XLSX(t *testing.T) {
	f := newFixture(t, billInput())
	cfg := f.config(t, "{type}.xlsx", map[string]any{
		"records": map[string]any{"start_record": 0},
		"output":  map[string]any{"sheet": "Bills"},
	})

	res := New(cfg).Run(context.Background())

	require.NoError(t, res.Error)
	assert.Equal(t, filepath.Join(f.dir, "bill.xlsx"), res.OutputFile)

	got := testutil.ReadSheet(t, res.OutputFile, "Bills")
	want := [][]string{
		{"rec", "acct", "name", "amt"},
		{"D", "0000000001", "Header Record", "0000000.00"},
		{"D", "0000000012", "John Doe", "0000123.45"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sheet mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Lookup(t *testing.T) {
	f := newFixture(t, billInput())
	cfg := f.config(t, "out.csv", map[string]any{
		"files": map[string]any{
			"input":    f.input,
			"output":   filepath.Join(f.dir, "out.csv"),
			"template": f.template,
			"sql":      filepath.Join(f.dir, "unused.sql"),
		},
		"records":  map[string]any{"start_record": 0},
		"lookup":   map[string]any{"enabled": true, "join_field": "acct"},
		"database": map[string]any{"dsn": "unused"},
	})
	owner := lookup.Owner{Account: "0000000012", Name: "JOHN DOE", Address1: "1 MAIN ST", Country: "US"}

	res := New(cfg, WithLookupSource(fakeSource{owners: []lookup.Owner{owner}})).Run(context.Background())

	require.NoError(t, res.Error)
	assert.Equal(t, 1, res.Stats.LookupHits)
	assert.Equal(t, 1, res.Stats.LookupMisses)

	lines := strings.Split(strings.TrimSuffix(readFile(t, res.OutputFile), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "rec,acct,name,amt,OwnerAddress", lines[0])
	assert.Equal(t, "D,0000000001,Header Record,0000000.00,", lines[1])
	assert.Equal(t, "D,0000000012,John Doe,0000123.45,"+strings.TrimSpace(lookup.Format(owner)), lines[2])
}

func TestRun_LookupSourceError(t *testing.T) {
	f := newFixture(t, billInput())
	cfg := f.config(t, "out.csv", map[string]any{
		"files": map[string]any{
			"input":    f.input,
			"output":   filepath.Join(f.dir, "out.csv"),
			"template": f.template,
			"sql":      "unused.sql",
		},
		"lookup":   map[string]any{"enabled": true, "join_field": "acct"},
		"database": map[string]any{"dsn": "unused"},
	})
	srcErr := types.E(types.ErrLookupSource, "lookup.SQLSource.Owners", errors.New("login failed"))

	res := New(cfg, WithLookupSource(fakeSource{err: srcErr})).Run(context.Background())

	assert.False(t, res.Success)
	assert.True(t, errors.Is(res.Error, types.ErrLookupSource))
	assert.False(t, utils.FileExists(filepath.Join(f.dir, "out.csv")))
}

func TestRun_LookupMissingQueryFile(t *testing.T) {
	f := newFixture(t, billInput())
	cfg := f.config(t, "out.csv", map[string]any{
		"files": map[string]any{
			"input":    f.input,
			"output":   filepath.Join(f.dir, "out.csv"),
			"template": f.template,
			"sql":      filepath.Join(f.dir, "missing.sql"),
		},
		"lookup":   map[string]any{"enabled": true, "join_field": "acct"},
		"database": map[string]any{"dsn": "unused"},
	})

	res := New(cfg).Run(context.Background())

	assert.False(t, res.Success)
	assert.True(t, errors.Is(res.Error, types.ErrConfig))
}

func TestRun_MissingTemplate(t *testing.T) {
	f := newFixture(t, billInput())
	cfg := f.config(t, "out.csv", nil)
	cfg.Files.Template = filepath.Join(f.dir, "nope.xlsx")

	res := New(cfg).Run(context.Background())

	assert.False(t, res.Success)
	assert.True(t, errors.Is(res.Error, types.ErrLayoutLoad))
	assert.Empty(t, res.OutputFile)
}

func TestRun_MissingInput(t *testing.T) {
	f := newFixture(t, billInput())
	cfg := f.config(t, "out.csv", nil)
	cfg.Files.Input = filepath.Join(f.dir, "nope.txt")

	res := New(cfg).Run(context.Background())

	assert.False(t, res.Success)
	assert.True(t, errors.Is(res.Error, types.ErrInputRead))
}

func TestRun_Cancelled(t *testing.T) {
	f := newFixture(t, billInput())
	cfg := f.config(t, "out.csv", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := New(cfg).Run(ctx)

	assert.False(t, res.Success)
	assert.True(t, errors.Is(res.Error, types.ErrInputRead))
	assert.True(t, errors.Is(res.Error, context.Canceled))
}

func TestRun_ExportFailureKeepsPreviousOutput(t *testing.T) {
	f := newFixture(t, billLine("0000000012", "Doe, John", "0000123.45")+"\n")
	cfg := f.config(t, "out.csv", map[string]any{
		"records": map[string]any{"start_record": 0},
		"output":  map[string]any{"quoting": "NONE"},
	})
	testutil.WriteFile(t, f.dir, "out.csv", "previous\n")

	res := New(cfg).Run(context.Background())

	assert.False(t, res.Success)
	assert.True(t, errors.Is(res.Error, types.ErrExport))
	assert.Equal(t, "previous\n", readFile(t, filepath.Join(f.dir, "out.csv")))
}

func TestRun_ArchivesInput(t *testing.T) {
	f := newFixture(t, billInput())
	archive := filepath.Join(f.dir, "archive")
	cfg := f.config(t, "out/bill.csv", map[string]any{
		"files": map[string]any{
			"input":    f.input,
			"output":   filepath.Join(f.dir, "out", "bill.csv"),
			"template": f.template,
			"archive":  archive,
		},
	})

	res := New(cfg).Run(context.Background())

	require.NoError(t, res.Error)
	assert.Equal(t, filepath.Join(archive, "bill.txt"), res.ArchivedTo)
	assert.False(t, utils.FileExists(f.input))
	assert.True(t, utils.FileExists(res.OutputFile))
}

func TestRun_Windows1252Input(t *testing.T) {
	// "Jos\xe9" is 4 bytes in windows-1252 and 4 characters once decoded.
	raw := billLine("0000000012", "Jos\xe9", "0000123.45") + "\n"
	f := newFixture(t, raw)
	cfg := f.config(t, "out.csv", map[string]any{
		"records": map[string]any{"start_record": 0},
		"input":   map[string]any{"encoding": "windows-1252"},
	})

	res := New(cfg).Run(context.Background())

	require.NoError(t, res.Error)
	assert.Equal(t, "rec,acct,name,amt\nD,0000000012,José,0000123.45\n", readFile(t, res.OutputFile))
}

func TestHeader(t *testing.T) {
	l := layout.Layout{{Name: "acct", End: 10}, {Name: "OwnerAddress", End: 20}}

	assert.Equal(t, []string{"acct", "OwnerAddress"}, Header(l, config.LookupConfig{}))
	assert.Equal(t, []string{"acct", "OwnerAddress"}, Header(l, config.LookupConfig{Enabled: true, OutputField: "OwnerAddress"}))
	assert.Equal(t, []string{"acct", "OwnerAddress", "owner"}, Header(l, config.LookupConfig{Enabled: true, OutputField: "owner"}))
}
