// =============================================================================
// flat2tab - Main Entry Point
// =============================================================================
//
// flat2tab converts fixed-width flat files (billing print extracts) into CSV
// or XLSX using a field layout read from an XLSX template.
//
// USAGE:
//   flat2tab -t <type> -c <config>         - Convert one export type
//   flat2tab layout -t <type> -c <config>  - Print the resolved field layout
//   flat2tab version                       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Conversion pipeline (layout, selector, fixedwidth,
//                      lookup, exporter, converter) and its support packages
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/flat2tab/cmd"
)

func main() {
	cmd.Execute()
}
