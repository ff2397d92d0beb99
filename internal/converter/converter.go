// =============================================================================
// Purchase Order Builder - Converter Module
// =============================================================================
//
// This module orchestrates one run from input files to the result file. The
// CLI and the upload service both go through it.
//
// CONVERSION PIPELINE:
//   1. Open the master workbook and load the option separation table and the
//      master catalog
//   2. Load the order rows (workbook, or CSV export by file extension)
//   3. Run the processor
//   4. Write the result CSV
//   5. Write the YAML run report (optional)
//
// CONCURRENCY:
//   A Converter holds no run state. RunBatch processes several order files
//   against the same master workbook in parallel, one goroutine per file.
//
// =============================================================================

package converter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/purchase-order-builder/internal/config"
	"github.com/ginjaninja78/purchase-order-builder/internal/csvparser"
	"github.com/ginjaninja78/purchase-order-builder/internal/csvwriter"
	"github.com/ginjaninja78/purchase-order-builder/internal/diagnostic"
	"github.com/ginjaninja78/purchase-order-builder/internal/processor"
	"github.com/ginjaninja78/purchase-order-builder/internal/report"
	"github.com/ginjaninja78/purchase-order-builder/internal/types"
	"github.com/ginjaninja78/purchase-order-builder/internal/xlsxparser"
	"github.com/ginjaninja78/purchase-order-builder/pkg/utils"
)

// =============================================================================
// JOB / RESULT STRUCTURES
// =============================================================================

// Job names the files of one run.
type Job struct {
	// OrderPath is the order workbook (.xlsx) or CSV export (.csv).
	OrderPath string

	// MasterPath is the workbook holding 옵션분리 and 마스터.
	MasterPath string

	// OutputPath is the result file. Empty generates a name in the
	// configured output directory.
	OutputPath string

	// Order and Master, when set, are read instead of opening OrderPath and
	// MasterPath. The paths then only name the inputs in logs and errors.
	Order  io.Reader
	Master io.Reader
}

// Result represents the outcome of one job.
type Result struct {
	Job Job

	// ID identifies the run in logs and the report.
	ID string

	// OutputFile is the written result CSV, empty on failure.
	OutputFile string

	// ReportFile is the written run report, empty when disabled.
	ReportFile string

	Success bool

	// Error is the fatal error of a failed run.
	Error error

	Stats       processor.Stats
	Warnings    []types.ReferenceLookupWarning
	Diagnostics *diagnostic.Diagnostics
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs jobs with a fixed configuration.
type Converter struct {
	cfg  *config.Config
	proc *processor.Processor
	log  *zap.Logger

	orderSchema   xlsxparser.Schema
	mappingSchema xlsxparser.Schema
	catalogSchema xlsxparser.Schema
}

// New creates a Converter. A nil logger discards output.
func New(cfg *config.Config, log *zap.Logger) (*Converter, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}

	opts, err := cfg.Processing.Options(log)
	if err != nil {
		return nil, fmt.Errorf("invalid processing settings: %w", err)
	}

	c := &Converter{
		cfg:  cfg,
		proc: processor.New(opts),
		log:  log,
	}
	c.orderSchema, c.mappingSchema, c.catalogSchema = cfg.Input.Schemas()
	return c, nil
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes one job. Failures are reported in Result.Error.
func (c *Converter) Run(job Job) Result {
	startTime := time.Now()
	result := Result{Job: job, ID: uuid.New().String()}
	log := c.log.With(zap.String("run_id", result.ID))

	log.Info("processing order file",
		zap.String("order_file", job.OrderPath),
		zap.String("master_file", job.MasterPath),
	)

	diags := diagnostic.New()
	result.Diagnostics = diags

	// =========================================================================
	// STEP 1: LOAD REFERENCE TABLES
	// =========================================================================

	mapping, catalog, err := c.loadMaster(job.MasterPath, job.Master, diags)
	if err != nil {
		result.Error = err
		return result
	}
	log.Debug("loaded reference tables",
		zap.Int("option_rows", len(mapping)),
		zap.Int("catalog_rows", len(catalog)),
	)

	// =========================================================================
	// STEP 2: LOAD ORDER ROWS
	// =========================================================================

	orders, err := c.loadOrders(job.OrderPath, job.Order, diags)
	if err != nil {
		result.Error = err
		return result
	}
	log.Debug("loaded order rows", zap.Int("rows", len(orders)))

	// =========================================================================
	// STEP 3: RUN THE PIPELINE
	// =========================================================================

	processed, err := c.proc.RunWithDiagnostics(processor.Input{
		Orders:        orders,
		OptionMapping: mapping,
		Catalog:       catalog,
	}, diags)
	if err != nil {
		result.Error = err
		return result
	}
	result.Stats = processed.Stats
	result.Warnings = processed.Warnings

	// =========================================================================
	// STEP 4: WRITE RESULT
	// =========================================================================

	outputPath, err := c.outputPath(job)
	if err != nil {
		result.Error = err
		return result
	}
	if err := csvwriter.WriteFile(outputPath, processed.Lines, csvwriter.Options{BOM: c.cfg.Output.BOM}); err != nil {
		result.Error = err
		return result
	}
	result.OutputFile = outputPath
	log.Info("wrote result", zap.String("output_file", outputPath), zap.Int("lines", len(processed.Lines)))

	// =========================================================================
	// STEP 5: WRITE REPORT
	// =========================================================================

	if c.cfg.Output.Report {
		rep := report.New(report.RunInfo{
			ID:         result.ID,
			OrderFile:  job.OrderPath,
			MasterFile: job.MasterPath,
			OutputFile: outputPath,
			StartTime:  startTime,
			EndTime:    time.Now(),
		}, processed)

		reportPath := report.PathFor(outputPath)
		if err := rep.Write(reportPath); err != nil {
			// The result is already written; a missing report does not fail the run.
			log.Warn("failed to write run report", zap.Error(err))
		} else {
			result.ReportFile = reportPath
		}
	}

	result.Success = true
	return result
}

// RunBatch runs jobs concurrently and returns their results in job order.
func (c *Converter) RunBatch(jobs []Job) []Result {
	results := make([]Result, len(jobs))

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			results[i] = c.Run(job)
		}(i, job)
	}
	wg.Wait()

	return results
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func (c *Converter) loadMaster(path string, r io.Reader, diags *diagnostic.Diagnostics) ([]types.OptionMappingEntry, []types.MasterCatalogEntry, error) {
	wb, err := openWorkbook(path, r)
	if err != nil {
		return nil, nil, err
	}
	defer wb.Close()

	mapping, err := xlsxparser.LoadOptionMapping(wb, c.mappingSchema, diags)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load option separation table: %w", err)
	}

	catalog, err := xlsxparser.LoadMasterCatalog(wb, c.catalogSchema, diags)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load master catalog: %w", err)
	}

	return mapping, catalog, nil
}

func (c *Converter) loadOrders(path string, r io.Reader, diags *diagnostic.Diagnostics) ([]types.RawOrderRow, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		var rows []types.RawOrderRow
		var err error
		if r != nil {
			rows, err = csvparser.ParseOrdersFrom(r, filepath.Base(path), c.orderSchema, c.cfg.Input.CSV.Settings(), diags)
		} else {
			rows, err = csvparser.ParseOrders(path, c.orderSchema, c.cfg.Input.CSV.Settings(), diags)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load order rows: %w", err)
		}
		return rows, nil
	}

	wb, err := openWorkbook(path, r)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	rows, err := xlsxparser.LoadOrders(wb, c.orderSchema, diags)
	if err != nil {
		return nil, fmt.Errorf("failed to load order rows: %w", err)
	}
	return rows, nil
}

func openWorkbook(path string, r io.Reader) (*xlsxparser.Workbook, error) {
	if r != nil {
		return xlsxparser.OpenReader(r, path)
	}
	return xlsxparser.Open(path)
}

// outputPath returns job.OutputPath or a generated name in the output
// directory, creating the directory as needed.
func (c *Converter) outputPath(job Job) (string, error) {
	path := job.OutputPath
	if path == "" {
		original := strings.TrimSuffix(filepath.Base(job.OrderPath), filepath.Ext(job.OrderPath))
		name := utils.GenerateOutputFileName(c.cfg.Output.FileNameFormat, map[string]string{"original": original})
		path = filepath.Join(c.cfg.Output.Dir, name)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return path, nil
}
