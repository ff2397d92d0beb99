// =============================================================================
// Purchase Order Builder - Workbook Loader
// =============================================================================
//
// This module reads the two input workbooks into the record types the
// processor works on:
//   - the order workbook      -> []types.RawOrderRow       (통합주문리스트)
//   - the master workbook     -> []types.OptionMappingEntry (옵션분리)
//                             -> []types.MasterCatalogEntry (마스터)
//
// SHEET RESOLUTION:
//   Every table is looked up by name first. When the name is absent the
//   schema's fallback positions are tried in order and a SHEET_FALLBACK info
//   diagnostic is recorded. A workbook without any usable sheet fails with
//   *types.MissingTableError.
//
// COLUMN RESOLUTION:
//   Columns are resolved by header name against the schema. Headers are
//   compared with all whitespace removed. A column whose header is missing
//   falls back to its declared position (COLUMN_FALLBACK) if the sheet is wide
//   enough; otherwise the load fails with *types.DataShapeError.
//
// ROW ORDER:
//   Rows are returned in sheet order. The option separation table depends on
//   adjacency, so nothing here may reorder rows.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/purchase-order-builder/internal/diagnostic"
	"github.com/ginjaninja78/purchase-order-builder/internal/types"
	"github.com/ginjaninja78/purchase-order-builder/internal/validation"
)

// =============================================================================
// WORKBOOK
// =============================================================================

// Workbook is an open spreadsheet file.
type Workbook struct {
	// Path identifies the workbook in errors.
	Path string

	file *excelize.File
}

// Open opens the workbook at path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return &Workbook{Path: path, file: f}, nil
}

// OpenReader opens a workbook from r. name is only used in errors.
func OpenReader(r io.Reader, name string) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", name, err)
	}
	return &Workbook{Path: name, file: f}, nil
}

// Close releases the workbook.
func (wb *Workbook) Close() error {
	return wb.file.Close()
}

// SheetNames lists the sheets in workbook order.
func (wb *Workbook) SheetNames() []string {
	return wb.file.GetSheetList()
}

// resolveSheet picks the sheet described by schema.
func (wb *Workbook) resolveSheet(schema Schema, diags *diagnostic.Diagnostics) (string, error) {
	sheets := wb.SheetNames()
	for _, name := range sheets {
		if name == schema.Sheet {
			return name, nil
		}
	}

	for _, pos := range schema.Fallbacks {
		if pos < 0 || pos >= len(sheets) {
			continue
		}
		if diags != nil {
			diags.AddInfo(diagnostic.CodeSheetFallback,
				fmt.Sprintf("sheet %q not found in %s, using %q", schema.Sheet, wb.Path, sheets[pos]),
				sheets[pos], 0)
		}
		return sheets[pos], nil
	}

	return "", &types.MissingTableError{Workbook: wb.Path, Wanted: schema.Sheet, Available: sheets}
}

// =============================================================================
// SHEET READING
// =============================================================================

// table is a sheet with its columns resolved.
type table struct {
	sheet   string
	schema  Schema
	rows    [][]string
	columns map[string]int
}

func (wb *Workbook) readTable(schema Schema, diags *diagnostic.Diagnostics) (*table, error) {
	sheet, err := wb.resolveSheet(schema, diags)
	if err != nil {
		return nil, err
	}

	rows, err := wb.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheet, err)
	}
	return newTable(sheet, rows, schema, diags)
}

// newTable resolves the schema columns against rows.
func newTable(sheet string, rows [][]string, schema Schema, diags *diagnostic.Diagnostics) (*table, error) {
	t := &table{sheet: sheet, schema: schema, rows: rows}
	if err := t.resolveColumns(diags); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *table) resolveColumns(diags *diagnostic.Diagnostics) error {
	var header []string
	if t.schema.HeaderRow >= 1 && t.schema.HeaderRow <= len(t.rows) {
		header = t.rows[t.schema.HeaderRow-1]
	}

	byName := make(map[string]int, len(header))
	for i, cell := range header {
		key := types.StripSpaces(cell)
		if _, seen := byName[key]; key != "" && !seen {
			byName[key] = i
		}
	}

	width := 0
	for _, row := range t.rows {
		if len(row) > width {
			width = len(row)
		}
	}

	t.columns = make(map[string]int, len(t.schema.Columns))
	for _, col := range t.schema.Columns {
		if i, ok := byName[types.StripSpaces(col.Header)]; ok {
			t.columns[col.Field] = i
			continue
		}

		if col.Position > 0 && width >= col.Position {
			t.columns[col.Field] = col.Position - 1
			if diags != nil {
				diags.AddInfo(diagnostic.CodeColumnFallback,
					fmt.Sprintf("column %q not found in sheet %q, using column %d", col.Header, t.sheet, col.Position),
					col.Field, t.schema.HeaderRow)
			}
			continue
		}

		return &types.DataShapeError{
			Sheet:  t.sheet,
			Row:    t.schema.HeaderRow,
			Column: col.Header,
			Reason: "required column not found",
		}
	}
	return nil
}

// dataRows calls fn for every non-empty row after the header row with its
// 1-based row number.
func (t *table) dataRows(fn func(rowNum int, row []string) error) error {
	for i := t.schema.HeaderRow; i < len(t.rows); i++ {
		row := t.rows[i]
		if t.isBlank(row) {
			continue
		}
		if err := fn(i+1, row); err != nil {
			return err
		}
	}
	return nil
}

// cell returns the trimmed value of field in row, validated against the
// column's rule.
func (t *table) cell(row []string, rowNum int, field string) (string, error) {
	value := getCell(row, t.columns[field])
	for _, col := range t.schema.Columns {
		if col.Field != field {
			continue
		}
		if verr := validation.ValidateField(value, col.rule()); verr != nil {
			return "", &types.DataShapeError{
				Sheet:  t.sheet,
				Row:    rowNum,
				Column: col.Header,
				Value:  value,
				Reason: verr.Message,
				Err:    verr,
			}
		}
		break
	}
	return value, nil
}

// isBlank reports whether every schema column of row is empty.
func (t *table) isBlank(row []string) bool {
	for _, i := range t.columns {
		if getCell(row, i) != "" {
			return false
		}
	}
	return true
}

// getCell safely reads a cell; rows returned by excelize omit trailing blanks.
func getCell(row []string, index int) string {
	if index >= 0 && index < len(row) {
		return strings.TrimSpace(row[index])
	}
	return ""
}
