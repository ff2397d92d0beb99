package xlsxparser

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is the content of one sheet to write.
type Sheet struct {
	Name string
	Rows [][]interface{}
}

// WriteWorkbook writes sheets, in order, to a new workbook at path.
func WriteWorkbook(path string, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", sheet.Name, err)
		}

		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			values := row
			if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
				return fmt.Errorf("failed to write row %d of sheet %q: %w", r+1, sheet.Name, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// TemplateSheet returns an empty sheet carrying the headers of schema on its
// header row. Rows above the header hold the sheet name as a title.
func TemplateSheet(schema Schema) Sheet {
	if schema.HeaderRow < 1 {
		schema.HeaderRow = 1
	}
	rows := make([][]interface{}, schema.HeaderRow)
	for i := 0; i < schema.HeaderRow-1; i++ {
		rows[i] = []interface{}{schema.Sheet}
	}

	header := make([]interface{}, len(schema.Columns))
	for i, h := range schema.Headers() {
		header[i] = h
	}
	rows[schema.HeaderRow-1] = header
	return Sheet{Name: schema.Sheet, Rows: rows}
}

// WriteTemplate writes a blank input workbook with one sheet per schema.
func WriteTemplate(path string, schemas ...Schema) error {
	sheets := make([]Sheet, len(schemas))
	for i, s := range schemas {
		sheets[i] = TemplateSheet(s)
	}
	return WriteWorkbook(path, sheets...)
}
