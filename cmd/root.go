// =============================================================================
// flat2tab - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Running the root
// command converts one export type; subcommands inspect the setup.
//
// COBRA CLI STRUCTURE:
//   rootCmd (flat2tab -t <type> -c <config>)
//   ├── layoutCmd  (flat2tab layout -t <type> -c <config>)
//   └── versionCmd (flat2tab version)
//
// CONFIGURATION:
//   Every persistent flag can also come from the environment with the
//   FLAT2TAB_ prefix (FLAT2TAB_TYPE, FLAT2TAB_CONFIG, FLAT2TAB_LOG_FILE, ...).
//   A .env file in the working directory is loaded first, so the same
//   variables (and database credentials referenced from the config) can be
//   kept there.
//
// ERROR HANDLING:
//   Commands return errors; they are logged once, here, to the error log
//   file. Stderr only gets a one-line pointer to it. The process then exits
//   with status 1.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ginjaninja78/flat2tab/internal/logging"
)

// Flag names. Viper keys match these.
const (
	flagType     = "type"
	flagConfig   = "config"
	flagLogFile  = "log-file"
	flagLogLevel = "log-level"
	flagVerbose  = "verbose"
	flagEnvFile  = "env-file"
)

// =============================================================================
// APPLICATION STATE
// =============================================================================

// app holds what the commands share: settings and the loggers.
type app struct {
	v *viper.Viper

	// logger carries progress to the console and errors to both sinks.
	logger *slog.Logger
	// errLog writes to the error log file only.
	errLog  *slog.Logger
	logFile *os.File
}

func newApp() *app {
	v := viper.New()
	v.SetEnvPrefix("FLAT2TAB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return &app{v: v}
}

// setup loads the .env file and opens the loggers. It runs before every
// command.
func (a *app) setup(cmd *cobra.Command) error {
	if err := godotenv.Load(a.v.GetString(flagEnvFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	level := a.v.GetString(flagLogLevel)
	if a.v.GetBool(flagVerbose) {
		level = "debug"
	}

	f, err := logging.OpenErrorLog(a.v.GetString(flagLogFile))
	if err != nil {
		return err
	}
	a.logFile = f

	errHandler := logging.NewErrorLogHandler(f)
	a.errLog = slog.New(errHandler)
	a.logger = slog.New(slogmulti.Fanout(logging.NewConsoleHandler(level, cmd.ErrOrStderr()), errHandler))
	return nil
}

func (a *app) close() {
	if a.logFile != nil {
		a.logFile.Close()
	}
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// newRootCmd builds the command tree around a.
func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "flat2tab",
		Short: "flat2tab - Convert fixed-width billing extracts to CSV or XLSX",
		Long: `flat2tab converts fixed-width flat files into CSV or XLSX. The field
layout comes from an XLSX template; each export type in the config file names
its input, template and output.

Key Features:
  - Field layout read from an XLSX template sheet
  - Data records selected by a one-character marker
  - Optional owner name/address lookup from SQL Server or PostgreSQL
  - CSV quoting policies and XLSX output

Example Usage:
  flat2tab -t bill -c config.json          # Convert the "bill" export
  flat2tab layout -t bill -c config.json   # Show the resolved field layout
  FLAT2TAB_TYPE=bill flat2tab -c config.json`,

		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, a)
		},
	}

	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================

	pf := rootCmd.PersistentFlags()
	pf.StringP(flagType, "t", "", "Export type to run (a top-level key of the config file)")
	pf.StringP(flagConfig, "c", "", "Path to the JSON/YAML configuration file")
	pf.String(flagLogFile, "flat2tab.log", "Append errors to this file")
	pf.String(flagLogLevel, "info", "Console log level: debug, info, warn, error")
	pf.BoolP(flagVerbose, "v", false, "Enable verbose output for debugging")
	pf.String(flagEnvFile, ".env", "Load environment variables from this file if it exists")

	// Flags and FLAT2TAB_* variables resolve through viper.
	_ = a.v.BindPFlags(pf)

	rootCmd.AddCommand(newLayoutCmd(a), newVersionCmd())
	return rootCmd
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI and exits with its status. This is called by
// main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command tree and returns the exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp()
	defer a.close()

	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	if a.errLog == nil {
		// Failed before logging was set up (bad flag, unwritable log file).
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logging.LogError(a.errLog, err)
	fmt.Fprintf(stderr, "flat2tab: failed, details in %s\n", a.v.GetString(flagLogFile))
	return 1
}
