// =============================================================================
// Purchase Order Builder - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI.
//
// COBRA CLI STRUCTURE:
//   rootCmd (posplit)
//   ├── processCmd  (posplit process)
//   ├── serveCmd    (posplit serve)
//   ├── templateCmd (posplit template)
//   └── versionCmd  (posplit version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command
//   1. loads the configuration (config.yaml, --config, POSPLIT_* variables)
//   2. initializes the global logger
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/purchase-order-builder/internal/config"
	"github.com/ginjaninja78/purchase-order-builder/internal/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file. Empty searches for
// config.yaml in the current directory and ./etc.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// appConfig and log are set by initApp before a subcommand runs.
var (
	appConfig *config.Config
	log       *zap.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "posplit",
	Short: "Purchase Order Builder - expand bundled products into purchase-order lines",
	Long: `posplit turns a shopping-mall order export into a supplier purchase order.

Bundled products listed in the option separation table (옵션분리) are expanded
into their component parts, every line is joined with the master catalog
(마스터), and order quantities and totals are computed. The result is a CSV
file that opens directly in a spreadsheet application.

Example Usage:
  posplit process --order orders.xlsx --master master.xlsx
  posplit process --master master.xlsx          # every order file in input.dir
  posplit serve --addr :8080                    # upload form at http://localhost:8080/
  posplit template --dir ./templates            # blank input workbooks`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp()
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the configuration file (default: ./config.yaml or ./etc/config.yaml)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// initApp loads the configuration and sets up logging.
func initApp() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	appConfig = cfg
	log = logger.Init(cfg.Log.ToLoggerOptions())
	if cfg.ConfigFile != "" {
		log.Debug("using config file", zap.String("path", cfg.ConfigFile))
	}
	return nil
}
