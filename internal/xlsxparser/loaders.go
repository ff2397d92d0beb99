package xlsxparser

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/purchase-order-builder/internal/diagnostic"
	"github.com/ginjaninja78/purchase-order-builder/internal/types"
	"github.com/ginjaninja78/purchase-order-builder/internal/validation"
)

// LoadOrders reads the order sheet. Values are returned as cell text; the
// processor normalizes them.
func LoadOrders(wb *Workbook, schema Schema, diags *diagnostic.Diagnostics) ([]types.RawOrderRow, error) {
	t, err := wb.readTable(schema, diags)
	if err != nil {
		return nil, err
	}
	return t.orders()
}

// OrdersFromRows reads order rows from an already-split table, such as a
// CSV export. name labels the table in errors.
func OrdersFromRows(name string, rows [][]string, schema Schema, diags *diagnostic.Diagnostics) ([]types.RawOrderRow, error) {
	t, err := newTable(name, rows, schema, diags)
	if err != nil {
		return nil, err
	}
	return t.orders()
}

func (t *table) orders() ([]types.RawOrderRow, error) {
	var rows []types.RawOrderRow
	err := t.dataRows(func(rowNum int, row []string) error {
		out := types.RawOrderRow{SourceRow: rowNum}
		for _, f := range []struct {
			field string
			dst   *string
		}{
			{FieldCode, &out.ProductCode},
			{FieldName, &out.ProductName},
			{FieldOption, &out.OptionText},
			{FieldQuantity, &out.Quantity},
		} {
			v, err := t.cell(row, rowNum, f.field)
			if err != nil {
				return err
			}
			*f.dst = v
		}
		rows = append(rows, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// LoadOptionMapping reads the option separation table in sheet order. Rows
// without a group key are dropped before positions are assigned.
func LoadOptionMapping(wb *Workbook, schema Schema, diags *diagnostic.Diagnostics) ([]types.OptionMappingEntry, error) {
	t, err := wb.readTable(schema, diags)
	if err != nil {
		return nil, err
	}

	var entries []types.OptionMappingEntry
	err = t.dataRows(func(rowNum int, row []string) error {
		key := types.StripSpaces(getCell(row, t.columns[FieldGroupKey]))
		if key == "" {
			return nil
		}

		entry := types.OptionMappingEntry{
			Position:        len(entries),
			SourceRow:       rowNum,
			GroupKey:        key,
			SeparationTag:   getCell(row, t.columns[FieldSeparationTag]),
			PartProductCode: getCell(row, t.columns[FieldCode]),
			PartProductName: getCell(row, t.columns[FieldName]),
		}
		if opt := getCell(row, t.columns[FieldOption]); opt != "" {
			entry.PartOption = types.StringPtr(opt)
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// LoadMasterCatalog reads the master catalog. Rows without a group key can
// never match and are skipped. Price and quantity columns must be numeric
// or blank.
func LoadMasterCatalog(wb *Workbook, schema Schema, diags *diagnostic.Diagnostics) ([]types.MasterCatalogEntry, error) {
	t, err := wb.readTable(schema, diags)
	if err != nil {
		return nil, err
	}

	var entries []types.MasterCatalogEntry
	err = t.dataRows(func(rowNum int, row []string) error {
		key := types.StripSpaces(getCell(row, t.columns[FieldGroupKey]))
		if key == "" {
			return nil
		}

		entry := types.MasterCatalogEntry{
			SourceRow:      rowNum,
			GroupKey:       key,
			Supplier:       getCell(row, t.columns[FieldSupplier]),
			CatalogCode:    getCell(row, t.columns[FieldCatalogCode]),
			ERPProductName: getCell(row, t.columns[FieldERPName]),
			ERPOptionName:  getCell(row, t.columns[FieldERPOption]),
			POProductName:  getCell(row, t.columns[FieldPOName]),
			POOptionName:   getCell(row, t.columns[FieldPOOption]),
		}

		for _, f := range []struct {
			field string
			dst   *decimal.NullDecimal
		}{
			{FieldListPrice, &entry.ListPrice},
			{FieldUnitCost, &entry.UnitCost},
			{FieldPackMultiplier, &entry.PackMultiplier},
		} {
			v, err := t.cell(row, rowNum, f.field)
			if err != nil {
				return err
			}
			d, err := validation.ParseDecimal(v)
			if err != nil {
				return err
			}
			*f.dst = d
		}

		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
