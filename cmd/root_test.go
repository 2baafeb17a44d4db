package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/flat2tab/internal/layout"
	"github.com/ginjaninja78/flat2tab/internal/testutil"
)

type cliFixture struct {
	dir     string
	config  string
	output  string
	logFile string
}

func newCLIFixture(t *testing.T) cliFixture {
	t.Helper()
	dir := t.TempDir()

	template := testutil.WriteTemplate(t, dir, layout.DefaultSheet, testutil.BillTemplateRows())
	input := testutil.WriteFile(t, dir, "bill.txt", strings.Join([]string{
		"H20240101",
		"D000000001" + strings.Repeat(" ", 40),
		"D000000012John Doe" + strings.Repeat(" ", 22) + "0000123.45",
		"T2",
	}, "\n")+"\n")
	output := filepath.Join(dir, "out", "bill.csv")

	doc, err := json.Marshal(map[string]any{
		"bill": map[string]any{
			"files": map[string]any{"input": input, "output": output, "template": template},
		},
	})
	require.NoError(t, err)

	return cliFixture{
		dir:     dir,
		config:  testutil.WriteFile(t, dir, "config.json", string(doc)),
		output:  output,
		logFile: filepath.Join(dir, "flat2tab.log"),
	}
}

func (f cliFixture) run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	args = append(args, "--log-file", f.logFile, "--env-file", filepath.Join(f.dir, "missing.env"))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func (f cliFixture) errorLog(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(f.logFile)
	require.NoError(t, err)
	return string(data)
}

func TestRun_Convert(t *testing.T) {
	f := newCLIFixture(t)

	code, stdout, stderr := f.run(t, "-t", "bill", "-c", f.config)

	require.Equal(t, 0, code, "stderr: %s", stderr)
	assert.Contains(t, stdout, "=== flat2tab: bill ===")
	assert.Contains(t, stdout, "Records:      1 (2 data lines, 1 skipped)")

	data, err := os.ReadFile(f.output)
	require.NoError(t, err)
	assert.Equal(t, "acct,name,amt\nD000000012,John Doe,0000123.45\n", string(data))
	assert.Empty(t, f.errorLog(t))
}

func TestRun_MissingType(t *testing.T) {
	f := newCLIFixture(t)

	code, _, stderr := f.run(t, "-c", f.config)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "details in "+f.logFile)
	assert.NotContains(t, stderr, "level=ERROR")
	assert.NotContains(t, stderr, "no export type given")

	line := strings.TrimSpace(f.errorLog(t))
	assert.Regexp(t, regexp.MustCompile(`^ERROR \d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2},\d{3} cmd\.loadExport - .*no export type given`), line)
}

func TestRun_UnknownType(t *testing.T) {
	f := newCLIFixture(t)

	code, _, _ := f.run(t, "-t", "refund", "-c", f.config)

	assert.Equal(t, 1, code)
	assert.Contains(t, f.errorLog(t), `unknown export type "refund" (known types: bill)`)
}

func TestRun_TypeFromEnvironment(t *testing.T) {
	f := newCLIFixture(t)
	t.Setenv("FLAT2TAB_TYPE", "bill")

	code, _, stderr := f.run(t, "-c", f.config)

	require.Equal(t, 0, code, "stderr: %s", stderr)
	assert.FileExists(t, f.output)
}

func TestRun_EnvFile(t *testing.T) {
	f := newCLIFixture(t)
	envFile := testutil.WriteFile(t, f.dir, "test.env", "FLAT2TAB_CONFIG="+f.config+"\n")
	t.Cleanup(func() { os.Unsetenv("FLAT2TAB_CONFIG") })

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-t", "bill", "--log-file", f.logFile, "--env-file", envFile}, &stdout, &stderr)

	require.Equal(t, 0, code, "stderr: %s", stderr.String())
	assert.FileExists(t, f.output)
}

func TestRun_ConversionFailureIsLogged(t *testing.T) {
	f := newCLIFixture(t)
	require.NoError(t, os.Remove(filepath.Join(f.dir, "bill.txt")))

	code, _, stderr := f.run(t, "-t", "bill", "-c", f.config)

	assert.Equal(t, 1, code)
	assert.NotContains(t, stderr, "input read error")
	log := f.errorLog(t)
	assert.Contains(t, log, "converter.readRecords")
	assert.Contains(t, log, "input read error")
}

func TestRun_BadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--no-such-flag"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "unknown flag")
}

func TestLayoutCommand(t *testing.T) {
	f := newCLIFixture(t)

	code, stdout, stderr := f.run(t, "layout", "-t", "bill", "-c", f.config)

	require.Equal(t, 0, code, "stderr: %s", stderr)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"NAME", "START", "END", "WIDTH"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"acct", "0", "10", "10"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"name", "10", "40", "30"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"amt", "40", "50", "10"}, strings.Fields(lines[3]))
	assert.Equal(t, "3 fields, record width 50", lines[4])
}

func TestVersionCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"version"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "Version:    dev")
}
