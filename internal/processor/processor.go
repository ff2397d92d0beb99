// =============================================================================
// Purchase Order Builder - Processing Pipeline
// =============================================================================
//
// The processor turns loaded order rows and reference tables into the final
// purchase-order lines. It never touches the file system.
//
// PIPELINE:
//   1. Normalize order rows into OrderLines
//   2. Resolve separation tags against the option separation table
//   3. Expand OptionGroup<N> lines into their parts
//   4. Sort so that bundle headers and their parts stay adjacent
//   5. Left-join the master catalog
//   6. Compute order quantity and monetary totals
//
// CONCURRENCY:
//   A run is synchronous and works on its own copies of the inputs. A single
//   Processor may be shared between goroutines because it holds no run state.
//
// =============================================================================

package processor

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/purchase-order-builder/internal/diagnostic"
	"github.com/ginjaninja78/purchase-order-builder/internal/types"
)

// =============================================================================
// INPUT / RESULT
// =============================================================================

// Input is the data of one run, already loaded from the workbooks.
type Input struct {
	Orders        []types.RawOrderRow
	OptionMapping []types.OptionMappingEntry
	Catalog       []types.MasterCatalogEntry
}

// Stats contains statistics about one run.
type Stats struct {
	// InputRows is the number of order rows read.
	InputRows int `yaml:"input_rows" json:"input_rows"`

	// TaggedLines is the number of lines that received a separation tag.
	TaggedLines int `yaml:"tagged_lines" json:"tagged_lines"`

	// SynthesizedLines is the number of lines created by expansion.
	SynthesizedLines int `yaml:"synthesized_lines" json:"synthesized_lines"`

	// OutputLines is the number of lines in the final table.
	OutputLines int `yaml:"output_lines" json:"output_lines"`

	// UnmatchedLines is the number of lines without a catalog entry.
	UnmatchedLines int `yaml:"unmatched_lines" json:"unmatched_lines"`

	// Warnings is the number of reference lookup warnings.
	Warnings int `yaml:"warnings" json:"warnings"`

	ProcessingTime time.Duration `yaml:"processing_time" json:"processing_time"`
}

// Result is the outcome of one run.
type Result struct {
	Lines       []types.ExpandedOrderLine
	Warnings    []types.ReferenceLookupWarning
	Stats       Stats
	Diagnostics *diagnostic.Diagnostics
}

// =============================================================================
// PROCESSOR
// =============================================================================

// Processor runs the pipeline with a fixed set of options.
type Processor struct {
	opts Options
	log  *zap.Logger
}

// New creates a Processor. Zero-valued options fall back to DefaultOptions.
func New(opts Options) *Processor {
	opts = opts.withDefaults()
	return &Processor{opts: opts, log: opts.Logger}
}

// Options returns the effective options.
func (p *Processor) Options() Options {
	return p.opts
}

// Run executes the full pipeline. Fatal errors (*types.DataShapeError) abort
// the run; lookup problems are returned as warnings and diagnostics.
func (p *Processor) Run(in Input) (*Result, error) {
	return p.RunWithDiagnostics(in, diagnostic.New())
}

// RunWithDiagnostics is Run with a caller-provided collector, so loader
// diagnostics and pipeline diagnostics end up in one place.
func (p *Processor) RunWithDiagnostics(in Input, diags *diagnostic.Diagnostics) (*Result, error) {
	startTime := time.Now()
	if diags == nil {
		diags = diagnostic.New()
	}
	result := &Result{Diagnostics: diags}

	// =========================================================================
	// STEP 1: NORMALIZE
	// =========================================================================

	lines, err := Normalize(in.Orders, p.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize order rows: %w", err)
	}
	result.Stats.InputRows = len(lines)
	p.log.Debug("normalized order rows", zap.Int("rows", len(lines)))

	// =========================================================================
	// STEP 2: RESOLVE SEPARATION TAGS
	// =========================================================================

	optionIndex := BuildOptionIndex(in.OptionMapping, p.opts)
	lines, err = Resolve(lines, optionIndex, diags)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve option separation: %w", err)
	}
	for _, line := range lines {
		if line.SeparationTag != nil {
			result.Stats.TaggedLines++
		}
	}

	// =========================================================================
	// STEP 3: EXPAND COMPOSITE PRODUCTS
	// =========================================================================

	expanded, warnings := Expand(lines, optionIndex, p.opts.DefaultOption, diags)
	result.Warnings = warnings
	result.Stats.Warnings = len(warnings)
	for _, line := range expanded {
		if line.Synthesized {
			result.Stats.SynthesizedLines++
		}
	}
	for _, w := range warnings {
		p.log.Warn("reference lookup warning",
			zap.String("kind", string(w.Kind)),
			zap.String("composite_key", w.CompositeKey),
			zap.String("tag", w.Tag),
			zap.Int("row", w.SourceRow),
			zap.Int("wanted", w.Wanted),
			zap.Int("got", w.Got),
		)
	}
	p.log.Info("expanded option rows", zap.Int("added", result.Stats.SynthesizedLines))

	// =========================================================================
	// STEP 4: GROUP / SORT
	// =========================================================================

	sorted := SortLines(expanded)

	// =========================================================================
	// STEP 5: CATALOG ENRICHMENT
	// =========================================================================

	catalog := BuildCatalogIndex(in.Catalog, p.opts)
	enriched, err := Enrich(sorted, catalog, diags)
	if err != nil {
		return nil, fmt.Errorf("failed to merge master data: %w", err)
	}
	for _, line := range enriched {
		if line.Catalog == nil {
			result.Stats.UnmatchedLines++
		}
	}

	// =========================================================================
	// STEP 6: METRICS
	// =========================================================================

	ApplyMetrics(enriched)

	result.Lines = enriched
	result.Stats.OutputLines = len(enriched)
	result.Stats.ProcessingTime = time.Since(startTime)

	p.log.Info("order processing completed",
		zap.Int("input_rows", result.Stats.InputRows),
		zap.Int("output_lines", result.Stats.OutputLines),
		zap.Int("unmatched_lines", result.Stats.UnmatchedLines),
		zap.Int("warnings", result.Stats.Warnings),
	)

	return result, nil
}
