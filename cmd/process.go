// =============================================================================
// flat2tab - Conversion Command
// =============================================================================
//
// This file implements the root command's action: convert one export type.
//
// PROCESSING PIPELINE:
//   1. Load the configuration file and select the export type
//   2. Run the converter (layout, filter, decode, lookup, export, archive)
//   3. Print a summary
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	// Database drivers for the owner lookup.
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"

	"github.com/ginjaninja78/flat2tab/internal/config"
	"github.com/ginjaninja78/flat2tab/internal/converter"
	"github.com/ginjaninja78/flat2tab/internal/types"
)

// loadExport resolves --type and --config into a validated export config.
func loadExport(a *app) (*config.ExportConfig, error) {
	const op = "cmd.loadExport"

	typ := a.v.GetString(flagType)
	cfgPath := a.v.GetString(flagConfig)
	if typ == "" {
		return nil, types.E(types.ErrConfig, op, errors.New("no export type given (use --type or FLAT2TAB_TYPE)"))
	}
	if cfgPath == "" {
		return nil, types.E(types.ErrConfig, op, errors.New("no config file given (use --config or FLAT2TAB_CONFIG)"))
	}

	f, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return f.Export(typ)
}

// runProcess converts the selected export type.
func runProcess(cmd *cobra.Command, a *app) error {
	ec, err := loadExport(a)
	if err != nil {
		return err
	}

	res := converter.New(ec, converter.WithLogger(a.logger)).Run(cmd.Context())
	if !res.Success {
		return res.Error
	}

	printSummary(cmd.OutOrStdout(), ec, res)
	return nil
}

// printSummary writes the run summary.
func printSummary(w io.Writer, ec *config.ExportConfig, res converter.Result) {
	s := res.Stats

	fmt.Fprintf(w, "=== flat2tab: %s ===\n", res.Type)
	fmt.Fprintf(w, "Input:        %s\n", res.InputFile)
	fmt.Fprintf(w, "Output:       %s\n", res.OutputFile)
	fmt.Fprintf(w, "Records:      %d (%d data lines, %d skipped)\n", s.Records, s.DataLines, s.Skipped)
	if ec.Lookup.Enabled {
		fmt.Fprintf(w, "Owner lookup: %d matched, %d unmatched\n", s.LookupHits, s.LookupMisses)
	}
	if res.ArchivedTo != "" {
		fmt.Fprintf(w, "Archived to:  %s\n", res.ArchivedTo)
	}
	fmt.Fprintf(w, "Time elapsed: %s\n", s.ProcessingTime)
}
