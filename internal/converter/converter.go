// =============================================================================
// flat2tab - Converter Module
// =============================================================================
//
// This module contains the conversion run for one export type. It wires the
// layout loader, record filter, decoder, owner lookup and exporter together.
//
// CONVERSION PIPELINE:
//   1. Load the field layout from the XLSX template
//   2. Load the owner lookup table (when enabled)
//   3. Open the flat file, decoding its character set
//   4. Select data lines and decode each into a record
//   5. Merge owner data into each record
//   6. Write the output file
//   7. Archive the input file (when configured)
//
// ERRORS:
//   Steps 1-6 stop the run on failure and return a *types.Error in
//   Result.Error. Nothing here logs errors; the caller does that once.
//   A lookup miss is not an error: the output column is left blank.
//
// =============================================================================

package converter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/flat2tab/internal/config"
	"github.com/ginjaninja78/flat2tab/internal/exporter"
	"github.com/ginjaninja78/flat2tab/internal/fixedwidth"
	"github.com/ginjaninja78/flat2tab/internal/layout"
	"github.com/ginjaninja78/flat2tab/internal/lookup"
	"github.com/ginjaninja78/flat2tab/internal/selector"
	"github.com/ginjaninja78/flat2tab/internal/textenc"
	"github.com/ginjaninja78/flat2tab/internal/types"
	"github.com/ginjaninja78/flat2tab/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one conversion run.
type Result struct {
	// Type is the export type that was run.
	Type string

	// InputFile is the flat file that was read.
	InputFile string

	// OutputFile is the file that was written. Empty if the run failed
	// before the output path was resolved.
	OutputFile string

	// ArchivedTo is where the input file was moved, if it was archived.
	ArchivedTo string

	// Success indicates whether the output was written.
	Success bool

	// Error contains the error if the run failed.
	Error error

	// Stats contains processing statistics.
	Stats Stats
}

// Stats contains statistics about the run.
type Stats struct {
	// Lines is the number of physical lines read from the input.
	Lines int

	// DataLines is the number of lines carrying the data marker.
	DataLines int

	// Skipped is the number of leading data lines excluded.
	Skipped int

	// Records is the number of rows written.
	Records int

	// LookupHits is the number of records matched in the owner table.
	LookupHits int

	// LookupMisses is the number of records with no owner match.
	LookupMisses int

	// ProcessingTime is the time taken by the run.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs one export type.
type Converter struct {
	cfg    *config.ExportConfig
	logger *slog.Logger

	// source overrides the SQL owner source built from cfg.
	source lookup.Source
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the progress logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLookupSource replaces the database owner source. Used when the owner
// rows come from somewhere other than files.sql and database.dsn.
func WithLookupSource(src lookup.Source) Option {
	return func(c *Converter) {
		c.source = src
	}
}

// New creates a Converter for a validated export config.
func New(cfg *config.ExportConfig, opts ...Option) *Converter {
	c := &Converter{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline.
//
// RETURNS:
//   - A Result describing the run. Result.Error is set when Success is false.
func (c *Converter) Run(ctx context.Context) Result {
	start := time.Now()
	result := Result{
		Type:      c.cfg.Name,
		InputFile: c.cfg.Files.Input,
	}

	logger := c.logger.With("type", c.cfg.Name, "run_id", uuid.NewString())
	logger.Info("starting conversion", "input", c.cfg.Files.Input)

	err := c.run(ctx, logger, &result)
	result.Stats.ProcessingTime = time.Since(start)
	if err != nil {
		result.Error = err
		return result
	}

	result.Success = true
	logger.Info("conversion complete",
		"output", result.OutputFile,
		"records", result.Stats.Records,
		"duration", result.Stats.ProcessingTime)
	return result
}

func (c *Converter) run(ctx context.Context, logger *slog.Logger, result *Result) error {
	// =========================================================================
	// STEP 1: LOAD LAYOUT
	// =========================================================================

	l, err := layout.Load(c.cfg.Files.Template, c.cfg.LayoutOptions())
	if err != nil {
		return err
	}
	logger.Debug("loaded layout", "template", c.cfg.Files.Template, "fields", len(l), "width", l.Width())

	header := Header(l, c.cfg.Lookup)

	// =========================================================================
	// STEP 2: LOAD LOOKUP TABLE
	// =========================================================================

	var table lookup.Table
	if c.cfg.Lookup.Enabled {
		table, err = c.loadLookup(ctx)
		if err != nil {
			return err
		}
		logger.Debug("loaded owner table", "accounts", len(table))
	}

	// =========================================================================
	// STEP 3-5: SELECT, DECODE, MERGE
	// =========================================================================

	rows, err := c.readRecords(ctx, l, header, table, &result.Stats)
	if err != nil {
		return err
	}
	if c.cfg.Lookup.Enabled && result.Stats.LookupMisses > 0 {
		logger.Warn("records without owner match",
			"misses", result.Stats.LookupMisses,
			"join_field", c.cfg.Lookup.JoinField)
	}

	// =========================================================================
	// STEP 6: WRITE OUTPUT
	// =========================================================================

	outputPath := utils.ExpandPath(c.cfg.Files.Output, map[string]string{"type": c.cfg.Name})
	result.OutputFile = outputPath

	if err := utils.EnsureDir(filepath.Dir(outputPath)); err != nil {
		return types.E(types.ErrExport, "converter.Run", err)
	}
	if err := exporter.New(outputPath, c.cfg.ExportOptions(outputPath)).Export(header, rows); err != nil {
		return err
	}
	result.Stats.Records = len(rows)
	logger.Info("wrote output", "output", outputPath, "records", len(rows))

	// =========================================================================
	// STEP 7: ARCHIVE INPUT
	// =========================================================================
	// The output already exists at this point, so a failed archive is only a
	// warning.

	if c.cfg.Files.Archive != "" {
		archived, err := utils.ArchiveFile(c.cfg.Files.Input, c.cfg.Files.Archive)
		if err != nil {
			logger.Warn("failed to archive input", "input", c.cfg.Files.Input, "error", err)
		} else {
			result.ArchivedTo = archived
			logger.Debug("archived input", "path", archived)
		}
	}

	return nil
}

// loadLookup builds the owner table from the configured source.
func (c *Converter) loadLookup(ctx context.Context) (lookup.Table, error) {
	if c.source != nil {
		return lookup.Load(ctx, c.source)
	}

	query, err := lookup.ReadQuery(c.cfg.Files.SQL)
	if err != nil {
		return nil, err
	}
	db, err := lookup.Open(ctx, c.cfg.Database.Driver, c.cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return lookup.Load(ctx, &lookup.SQLSource{DB: db, Query: query})
}

// readRecords reads the input file and returns one row per selected record.
func (c *Converter) readRecords(ctx context.Context, l layout.Layout, header []string, table lookup.Table, stats *Stats) ([]types.ExportRow, error) {
	const op = "converter.readRecords"

	f, err := os.Open(c.cfg.Files.Input)
	if err != nil {
		return nil, types.E(types.ErrInputRead, op, fmt.Errorf("failed to open input file: %w", err))
	}
	defer f.Close()

	r, err := textenc.Reader(f, c.cfg.Input.Encoding)
	if err != nil {
		return nil, err
	}

	dec := fixedwidth.New(l)
	sel := selector.New(c.cfg.Records.Marker, c.cfg.Skip())

	var rows []types.ExportRow
	scanStats, err := sel.Scan(r, func(line selector.Line) error {
		if err := ctx.Err(); err != nil {
			return types.EAt(types.ErrInputRead, op, line.Number, fmt.Errorf("conversion cancelled: %w", err))
		}

		rec := dec.Decode(line.Text)
		if table != nil {
			if _, ok := lookup.Merge(rec, table, c.cfg.Lookup.JoinField, c.cfg.Lookup.OutputField); ok {
				stats.LookupHits++
			} else {
				stats.LookupMisses++
			}
		}
		rows = append(rows, rec.Row(header))
		return nil
	})

	stats.Lines = scanStats.Lines
	stats.DataLines = scanStats.DataLines
	stats.Skipped = scanStats.Skipped
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Header returns the output column names: the layout field names followed by
// the lookup output field when lookup is enabled and the layout does not
// already define it.
func Header(l layout.Layout, lc config.LookupConfig) []string {
	header := l.Names()
	if lc.Enabled && lc.OutputField != "" && !slices.Contains(header, lc.OutputField) {
		header = append(header, lc.OutputField)
	}
	return header
}
