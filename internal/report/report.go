// =============================================================================
// Purchase Order Builder - Run Report
// =============================================================================
//
// A run report is a YAML document written next to the result CSV. It lets
// operators see why a line was left unexpanded or unmatched without digging
// through the log.
//
// CONTENTS:
//   - Run information (inputs, output, start and end time)
//   - Statistics (processor.Stats)
//   - Lines added by option separation, with the order row they came from
//   - Reference lookup warnings, one entry per degraded expansion
//   - Every diagnostic collected by the loaders and the pipeline
//
// =============================================================================

package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/purchase-order-builder/internal/diagnostic"
	"github.com/ginjaninja78/purchase-order-builder/internal/processor"
	"github.com/ginjaninja78/purchase-order-builder/internal/types"
)

// Report summarizes one processing run.
type Report struct {
	Run         RunInfo                 `yaml:"run"`
	Stats       processor.Stats         `yaml:"stats"`
	Expansions  []ExpansionEntry        `yaml:"expansions,omitempty"`
	Warnings    []WarningEntry          `yaml:"warnings,omitempty"`
	Diagnostics *diagnostic.Diagnostics `yaml:"diagnostics,omitempty"`
}

// RunInfo identifies the files of a run.
type RunInfo struct {
	ID         string    `yaml:"id,omitempty"`
	OrderFile  string    `yaml:"order_file"`
	MasterFile string    `yaml:"master_file"`
	OutputFile string    `yaml:"output_file"`
	StartTime  time.Time `yaml:"start_time"`
	EndTime    time.Time `yaml:"end_time"`
}

// ExpansionEntry is one line created by option separation.
type ExpansionEntry struct {
	CompositeKey string `yaml:"composite_key"`
	ProductCode  string `yaml:"product_code"`
	Quantity     int    `yaml:"quantity"`
	Row          int    `yaml:"row,omitempty"`
}

// WarningEntry is the serialized form of a types.ReferenceLookupWarning.
type WarningEntry struct {
	Kind         string `yaml:"kind"`
	CompositeKey string `yaml:"composite_key"`
	Tag          string `yaml:"tag"`
	Row          int    `yaml:"row,omitempty"`
	Wanted       int    `yaml:"wanted,omitempty"`
	Got          int    `yaml:"got"`
	Message      string `yaml:"message"`
}

// New builds a report from a finished run.
func New(info RunInfo, result *processor.Result) *Report {
	r := &Report{Run: info}
	if result == nil {
		return r
	}

	r.Stats = result.Stats
	r.Diagnostics = result.Diagnostics
	for _, line := range result.Lines {
		if !line.Synthesized {
			continue
		}
		r.Expansions = append(r.Expansions, ExpansionEntry{
			CompositeKey: line.CompositeKey,
			ProductCode:  line.ProductCode,
			Quantity:     line.Quantity,
			Row:          line.SourceRow,
		})
	}
	for _, w := range result.Warnings {
		r.Warnings = append(r.Warnings, newWarningEntry(w))
	}
	return r
}

func newWarningEntry(w types.ReferenceLookupWarning) WarningEntry {
	return WarningEntry{
		Kind:         string(w.Kind),
		CompositeKey: w.CompositeKey,
		Tag:          w.Tag,
		Row:          w.SourceRow,
		Wanted:       w.Wanted,
		Got:          w.Got,
		Message:      w.Error(),
	}
}

// Marshal renders the report as YAML.
func (r *Report) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return buf.Bytes(), nil
}

// Write stores the report at path.
func (r *Report) Write(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// PathFor returns the report path belonging to a result file:
// 결과물_x.csv -> 결과물_x.report.yaml.
func PathFor(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + ".report.yaml"
}

// Load reads a report written by Write.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return &r, nil
}
