// =============================================================================
// Purchase Order Builder - Process Command
// =============================================================================
//
// This file defines the 'process' command, which turns order exports into
// purchase-order CSV files.
//
// COMMAND USAGE:
//   posplit process --master master.xlsx [--order orders.xlsx ...] [flags]
//
// FLAGS:
//   --order   : Order file (.xlsx or .csv); repeatable. Without it every
//               order file in input.dir is processed.
//   --master  : Workbook with the 옵션분리 and 마스터 sheets (required)
//   --output  : Result path; only valid with a single order file
//   --report  : Write a YAML run report next to every result
//   --archive : Move processed order files to input.archive_dir
//
// PROCESSING PIPELINE:
//   1. Collect the order files
//   2. Process them concurrently against the same master workbook
//   3. Archive processed files (optional)
//   4. Print a summary and write an error log for failures
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/purchase-order-builder/internal/converter"
	"github.com/ginjaninja78/purchase-order-builder/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	orderFiles  []string
	masterFile  string
	outputFile  string
	writeReport bool
	archive     bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Expand order files into purchase-order CSV files",
	Long: `The process command reads one or more order exports, expands bundled products
using the option separation table of the master workbook, joins the master
catalog and writes one result CSV per order file.

Order files are processed concurrently. An error in one file does not stop
the others; failures are listed in an error log in the output directory and
the command exits with a non-zero status.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringSliceVar(&orderFiles, "order", nil, "Order file (.xlsx or .csv); repeatable")
	processCmd.Flags().StringVar(&masterFile, "master", "", "Master workbook with the 옵션분리 and 마스터 sheets")
	processCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Result CSV path (single order file only)")
	processCmd.Flags().BoolVar(&writeReport, "report", false, "Write a YAML run report next to every result")
	processCmd.Flags().BoolVar(&archive, "archive", false, "Move processed order files to input.archive_dir")
	_ = processCmd.MarkFlagRequired("master")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(out io.Writer) error {
	startTime := time.Now()
	cfg := appConfig
	if writeReport {
		cfg.Output.Report = true
	}

	fmt.Fprintln(out, "=== Purchase Order Builder ===")

	// =========================================================================
	// STEP 1: COLLECT ORDER FILES
	// =========================================================================

	fm := utils.NewFileManager(cfg.Input.Dir, cfg.Output.Dir, cfg.Input.ArchiveDir)

	files := orderFiles
	if len(files) == 0 {
		discovered, err := fm.DiscoverOrderFiles(masterFile)
		if err != nil {
			return fmt.Errorf("failed to discover order files: %w", err)
		}
		files = discovered
	}
	if len(files) == 0 {
		fmt.Fprintf(out, "No order files found in %s.\n", cfg.Input.Dir)
		return nil
	}
	if outputFile != "" && len(files) > 1 {
		return fmt.Errorf("--output can only be used with a single order file, got %d", len(files))
	}

	fmt.Fprintf(out, "Found %d order file(s)\n", len(files))

	// =========================================================================
	// STEP 2: PROCESS FILES CONCURRENTLY
	// =========================================================================

	conv, err := converter.New(cfg, log)
	if err != nil {
		return err
	}

	jobs := make([]converter.Job, len(files))
	for i, file := range files {
		jobs[i] = converter.Job{OrderPath: file, MasterPath: masterFile, OutputPath: outputFile}
	}

	fmt.Fprintln(out, "Processing files...")
	results := conv.RunBatch(jobs)

	// =========================================================================
	// STEP 3: ARCHIVE AND COLLECT RESULTS
	// =========================================================================

	var successCount int
	var errorEntries []utils.ErrorLogEntry

	for _, result := range results {
		name := filepath.Base(result.Job.OrderPath)
		if !result.Success {
			errorEntries = append(errorEntries, utils.NewErrorLogEntry(name, result.Error))
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
			continue
		}

		successCount++
		fmt.Fprintf(out, "  ✓ %s -> %s (%d lines, %d expanded, %d unmatched, %d warnings)\n",
			name, result.OutputFile,
			result.Stats.OutputLines, result.Stats.SynthesizedLines,
			result.Stats.UnmatchedLines, result.Stats.Warnings)
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "      ! row %d: %s\n", w.SourceRow, w.Error())
		}

		if archive {
			archived, err := fm.ArchiveInputFile(result.Job.OrderPath)
			if err != nil {
				log.Warn("failed to archive order file", zap.String("file", name), zap.Error(err))
			} else {
				log.Debug("archived order file", zap.String("file", archived))
			}
		}
	}

	// =========================================================================
	// STEP 4: PRINT SUMMARY
	// =========================================================================

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", len(results))
	fmt.Fprintf(out, "Successful:      %d\n", successCount)
	fmt.Fprintf(out, "Errors:          %d\n", len(errorEntries))
	fmt.Fprintf(out, "Time elapsed:    %s\n", time.Since(startTime).Round(time.Millisecond))

	if len(errorEntries) > 0 {
		if err := os.MkdirAll(cfg.Output.Dir, 0755); err == nil {
			if logPath, err := utils.WriteErrorLog(errorEntries, cfg.Output.Dir); err == nil {
				fmt.Fprintf(out, "\nErrors have been logged to %s\n", logPath)
			} else {
				log.Warn("failed to write error log", zap.Error(err))
			}
		}
		return fmt.Errorf("%d of %d order file(s) failed", len(errorEntries), len(results))
	}

	return nil
}
