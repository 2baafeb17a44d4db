// =============================================================================
// flat2tab - Configuration Module
// =============================================================================
//
// This module loads the export-type configuration file. One file describes
// every export type the tool knows about; the CLI picks one with --type.
//
// CONFIGURATION FILE:
//   The file is JSON (YAML is accepted too). Each top-level key is an export
//   type name:
//
//   {
//     "bill": {
//       "files":    {"input": "...", "output": "...", "template": "...", "sql": "..."},
//       "layout":   {"sheet": "Bill Print Detail", "label_column": 1, "offset_column": 4},
//       "records":  {"marker": "D", "start_record": 1},
//       "output":   {"quoting": "MINIMAL", "delimiter": ","},
//       "lookup":   {"enabled": true, "join_field": "acct"},
//       "database": {"driver": "sqlserver", "dsn": "${FLAT2TAB_DSN}"}
//     }
//   }
//
// SECRETS:
//   database.dsn is expanded against the environment, so passwords stay out
//   of the file. The CLI also loads a .env file before reading the config.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/flat2tab/internal/exporter"
	"github.com/ginjaninja78/flat2tab/internal/layout"
	"github.com/ginjaninja78/flat2tab/internal/selector"
	"github.com/ginjaninja78/flat2tab/internal/types"
)

// Default values applied to unset options.
const (
	DefaultMarker      = selector.DefaultMarker
	DefaultStartRecord = 1
	DefaultQuoting     = "MINIMAL"
	DefaultDelimiter   = ","
	DefaultOutputSheet = "Sheet1"
	DefaultEncoding    = "utf-8"
	DefaultOutputField = "OwnerAddress"
	DefaultDriver      = "sqlserver"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// File is a parsed configuration file: export type name to its settings.
type File struct {
	// Path is where the file was loaded from. Used in error messages.
	Path string

	types map[string]*ExportConfig
}

// ExportConfig holds the settings for one export type.
type ExportConfig struct {
	// Name is the export type name (the top-level key).
	Name string `yaml:"-"`

	Files    FilesConfig    `yaml:"files"`
	Layout   LayoutConfig   `yaml:"layout"`
	Records  RecordsConfig  `yaml:"records"`
	Output   OutputConfig   `yaml:"output"`
	Input    InputConfig    `yaml:"input"`
	Lookup   LookupConfig   `yaml:"lookup"`
	Database DatabaseConfig `yaml:"database"`
}

// FilesConfig holds the file paths for one run.
type FilesConfig struct {
	// Input is the fixed-width flat file to convert. Required.
	Input string `yaml:"input"`

	// Output is the file to write. Supports {timestamp}, {date}, {time},
	// {uuid} and {type} placeholders. Required.
	Output string `yaml:"output"`

	// Template is the XLSX workbook holding the layout. Required.
	Template string `yaml:"template"`

	// SQL is the owner/address query file. Required when lookup is enabled.
	SQL string `yaml:"sql"`

	// Archive is an optional directory the input file is moved to after a
	// successful run.
	Archive string `yaml:"archive"`
}

// LayoutConfig locates the layout inside the template workbook.
type LayoutConfig struct {
	// Sheet is the worksheet name. Default: "Bill Print Detail".
	Sheet string `yaml:"sheet"`

	// LabelColumn is the 1-based column holding field names. Default: 1.
	LabelColumn int `yaml:"label_column"`

	// OffsetColumn is the 1-based column holding end offsets. Default: 4.
	OffsetColumn int `yaml:"offset_column"`
}

// RecordsConfig selects which input lines are data records.
type RecordsConfig struct {
	// Marker is the one-character prefix of data lines. Default: "D".
	Marker string `yaml:"marker"`

	// StartRecord is the number of leading data lines to skip. Zero keeps
	// every data line. Default: 1.
	StartRecord *int `yaml:"start_record"`
}

// OutputConfig controls the output file.
type OutputConfig struct {
	// Format is "csv" or "xlsx". Default: inferred from files.output.
	Format string `yaml:"format"`

	// Quoting is the CSV quoting policy: ALL, MINIMAL, NONNUMERIC or NONE.
	// Default: MINIMAL.
	Quoting string `yaml:"quoting"`

	// Delimiter is the one-character CSV separator. Default: ",".
	Delimiter string `yaml:"delimiter"`

	// TrimSpreadsheet trims text values in XLSX output. Default: true.
	TrimSpreadsheet *bool `yaml:"trim_spreadsheet"`

	// Sheet is the XLSX worksheet name. Default: "Sheet1".
	Sheet string `yaml:"sheet"`
}

// InputConfig describes the input file.
type InputConfig struct {
	// Encoding is an IANA charset name such as "windows-1252".
	// Default: "utf-8".
	Encoding string `yaml:"encoding"`
}

// LookupConfig controls the owner/address merge.
type LookupConfig struct {
	Enabled bool `yaml:"enabled"`

	// JoinField is the decoded field holding the account number.
	JoinField string `yaml:"join_field"`

	// OutputField is the field the formatted owner string is written to.
	// Default: "OwnerAddress".
	OutputField string `yaml:"output_field"`
}

// DatabaseConfig is the lookup database connection.
type DatabaseConfig struct {
	// Driver is "sqlserver" or "postgres". Default: "sqlserver".
	Driver string `yaml:"driver"`

	// DSN is the connection string. ${VAR} references are expanded.
	DSN string `yaml:"dsn"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load reads and parses a configuration file.
//
// PARAMETERS:
//   - path: The path to the JSON or YAML configuration file.
//
// RETURNS:
//   - The parsed file. Export types are not validated until Export is called.
//   - An ErrConfig error if the file cannot be read or parsed.
func Load(path string) (*File, error) {
	const op = "config.Load"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.E(types.ErrConfig, op, fmt.Errorf("failed to read config file: %w", err))
	}

	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	f.Path = path
	return f, nil
}

// Parse parses configuration data.
func Parse(data []byte) (*File, error) {
	var raw map[string]*ExportConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, types.E(types.ErrConfig, "config.Parse", fmt.Errorf("failed to parse config file: %w", err))
	}

	f := &File{types: make(map[string]*ExportConfig, len(raw))}
	for name, ec := range raw {
		if ec == nil {
			ec = &ExportConfig{}
		}
		ec.Name = name
		f.types[name] = ec
	}
	return f, nil
}

// Types returns the export type names in sorted order.
func (f *File) Types() []string {
	names := make([]string, 0, len(f.types))
	for name := range f.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Export returns the settings for one export type with defaults applied.
//
// RETURNS:
//   - A copy of the export type's settings. The caller may modify it.
//   - An ErrConfig error if the type does not exist or its settings are
//     incomplete or malformed.
func (f *File) Export(name string) (*ExportConfig, error) {
	const op = "config.Export"

	ec, ok := f.types[name]
	if !ok {
		known := "none"
		if names := f.Types(); len(names) > 0 {
			known = strings.Join(names, ", ")
		}
		return nil, types.E(types.ErrConfig, op, fmt.Errorf("unknown export type %q (known types: %s)", name, known))
	}

	out := *ec
	applyDefaults(&out)

	if err := out.Validate(); err != nil {
		return nil, types.E(types.ErrConfig, op, fmt.Errorf("export type %q: %w", name, err))
	}
	return &out, nil
}

// applyDefaults sets default values for any unset options.
func applyDefaults(ec *ExportConfig) {
	if ec.Layout.Sheet == "" {
		ec.Layout.Sheet = layout.DefaultSheet
	}
	if ec.Layout.LabelColumn == 0 {
		ec.Layout.LabelColumn = layout.DefaultLabelColumn
	}
	if ec.Layout.OffsetColumn == 0 {
		ec.Layout.OffsetColumn = layout.DefaultOffsetColumn
	}

	if ec.Records.Marker == "" {
		ec.Records.Marker = DefaultMarker
	}
	if ec.Records.StartRecord == nil {
		n := DefaultStartRecord
		ec.Records.StartRecord = &n
	}

	if ec.Output.Quoting == "" {
		ec.Output.Quoting = DefaultQuoting
	}
	if ec.Output.Delimiter == "" {
		ec.Output.Delimiter = DefaultDelimiter
	}
	if ec.Output.TrimSpreadsheet == nil {
		trim := true
		ec.Output.TrimSpreadsheet = &trim
	}
	if ec.Output.Sheet == "" {
		ec.Output.Sheet = DefaultOutputSheet
	}

	if ec.Input.Encoding == "" {
		ec.Input.Encoding = DefaultEncoding
	}

	if ec.Lookup.OutputField == "" {
		ec.Lookup.OutputField = DefaultOutputField
	}

	if ec.Database.Driver == "" {
		ec.Database.Driver = DefaultDriver
	}
	ec.Database.DSN = os.ExpandEnv(ec.Database.DSN)
}

// Validate checks that required settings are present and well formed.
// Call it after defaults have been applied.
func (ec *ExportConfig) Validate() error {
	var missing []string
	if ec.Files.Input == "" {
		missing = append(missing, "files.input")
	}
	if ec.Files.Output == "" {
		missing = append(missing, "files.output")
	}
	if ec.Files.Template == "" {
		missing = append(missing, "files.template")
	}
	if ec.Lookup.Enabled {
		if ec.Files.SQL == "" {
			missing = append(missing, "files.sql")
		}
		if ec.Lookup.JoinField == "" {
			missing = append(missing, "lookup.join_field")
		}
		if ec.Database.DSN == "" {
			missing = append(missing, "database.dsn")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	if ec.Layout.LabelColumn < 1 || ec.Layout.OffsetColumn < 1 {
		return fmt.Errorf("layout columns must be 1 or greater")
	}
	if utf8.RuneCountInString(ec.Records.Marker) != 1 {
		return fmt.Errorf("records.marker must be exactly one character, got %q", ec.Records.Marker)
	}
	if ec.Records.StartRecord != nil && *ec.Records.StartRecord < 0 {
		return fmt.Errorf("records.start_record must not be negative, got %d", *ec.Records.StartRecord)
	}
	if utf8.RuneCountInString(ec.Output.Delimiter) != 1 {
		return fmt.Errorf("output.delimiter must be exactly one character, got %q", ec.Output.Delimiter)
	}
	if _, err := exporter.ParseQuoting(ec.Output.Quoting); err != nil {
		return fmt.Errorf("output.quoting: %w", err)
	}
	if _, err := exporter.ParseFormat(ec.Output.Format, ec.Files.Output); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}

	return nil
}

// =============================================================================
// DERIVED OPTIONS
// =============================================================================

// LayoutOptions returns the template loader options.
func (ec *ExportConfig) LayoutOptions() layout.Options {
	return layout.Options{
		Sheet:        ec.Layout.Sheet,
		LabelColumn:  ec.Layout.LabelColumn,
		OffsetColumn: ec.Layout.OffsetColumn,
	}
}

// Skip returns the number of leading data lines to skip.
func (ec *ExportConfig) Skip() int {
	if ec.Records.StartRecord == nil {
		return DefaultStartRecord
	}
	return *ec.Records.StartRecord
}

// ExportOptions returns the exporter options for the given output path.
// The config must have passed Validate.
func (ec *ExportConfig) ExportOptions(outputPath string) exporter.Options {
	quoting, _ := exporter.ParseQuoting(ec.Output.Quoting)
	format, _ := exporter.ParseFormat(ec.Output.Format, outputPath)
	delim, _ := utf8.DecodeRuneInString(ec.Output.Delimiter)

	trim := true
	if ec.Output.TrimSpreadsheet != nil {
		trim = *ec.Output.TrimSpreadsheet
	}

	return exporter.Options{
		Format:          format,
		Quoting:         quoting,
		Delimiter:       delim,
		TrimSpreadsheet: trim,
		Sheet:           ec.Output.Sheet,
	}
}
