package xlsxparser

import (
	"github.com/ginjaninja78/purchase-order-builder/internal/types"
	"github.com/ginjaninja78/purchase-order-builder/internal/validation"
)

// Logical field names used to look resolved columns up.
const (
	FieldCode           = "code"
	FieldName           = "name"
	FieldOption         = "option"
	FieldQuantity       = "quantity"
	FieldGroupKey       = "group_key"
	FieldSeparationTag  = "separation_tag"
	FieldSupplier       = "supplier"
	FieldCatalogCode    = "catalog_code"
	FieldERPName        = "erp_name"
	FieldERPOption      = "erp_option"
	FieldPOName         = "po_name"
	FieldPOOption       = "po_option"
	FieldListPrice      = "list_price"
	FieldUnitCost       = "unit_cost"
	FieldPackMultiplier = "pack_multiplier"
)

// =============================================================================
// SCHEMA STRUCTURE
// =============================================================================

// Schema is the expected layout of one sheet.
type Schema struct {
	// Sheet is the preferred sheet name.
	Sheet string

	// Fallbacks are 0-based sheet positions tried, in order, when Sheet is
	// not present in the workbook.
	Fallbacks []int

	// HeaderRow is the 1-based row holding the column headers. Data starts
	// on the next row.
	HeaderRow int

	Columns []Column
}

// Column declares one column the sheet must provide.
type Column struct {
	// Field is the logical name the loaders use.
	Field string

	// Header is the column header in the sheet.
	Header string

	// Position is the 1-based column used when Header is not found. Zero
	// disables the positional fallback.
	Position int

	DataType validation.DataType

	// Required rejects blank cells in data rows.
	Required bool
}

func (c Column) rule() validation.FieldRule {
	return validation.FieldRule{Field: c.Header, DataType: c.DataType, Required: c.Required}
}

// =============================================================================
// DEFAULT SCHEMAS
// =============================================================================

// OrderSchema is the layout of the 통합주문리스트 sheet. When the named
// headers are missing the historical positional layout (columns 6-9) is used.
func OrderSchema() Schema {
	return Schema{
		Sheet:     types.SheetOrders,
		Fallbacks: []int{0},
		HeaderRow: 1,
		Columns: []Column{
			{Field: FieldCode, Header: types.ColOrderCode, Position: 6},
			{Field: FieldName, Header: types.ColOrderName, Position: 7},
			{Field: FieldOption, Header: types.ColOrderOption, Position: 8},
			{Field: FieldQuantity, Header: types.ColOrderQuantity, Position: 9,
				DataType: validation.TypeInteger, Required: true},
		},
	}
}

// OptionMappingSchema is the layout of the 옵션분리 sheet.
func OptionMappingSchema() Schema {
	return Schema{
		Sheet:     types.SheetOptionMapping,
		Fallbacks: []int{0},
		HeaderRow: 2,
		Columns: []Column{
			{Field: FieldGroupKey, Header: types.ColGroupKey},
			{Field: FieldSeparationTag, Header: types.ColSeparationTag},
			{Field: FieldCode, Header: types.ColPartCode},
			{Field: FieldName, Header: types.ColPartName},
			{Field: FieldOption, Header: types.ColPartOption},
		},
	}
}

// CatalogSchema is the layout of the 마스터 sheet. The master workbook is
// tried by name, then its second sheet, then its first.
func CatalogSchema() Schema {
	return Schema{
		Sheet:     types.SheetCatalog,
		Fallbacks: []int{1, 0},
		HeaderRow: 2,
		Columns: []Column{
			{Field: FieldGroupKey, Header: types.ColGroupKey},
			{Field: FieldSupplier, Header: types.ColSupplier},
			{Field: FieldCatalogCode, Header: types.ColCatalogCode},
			{Field: FieldERPName, Header: types.ColERPName},
			{Field: FieldERPOption, Header: types.ColERPOption},
			{Field: FieldPOName, Header: types.ColPOName},
			{Field: FieldPOOption, Header: types.ColPOOption},
			{Field: FieldListPrice, Header: types.ColListPrice, DataType: validation.TypeDecimal},
			{Field: FieldUnitCost, Header: types.ColUnitCost, DataType: validation.TypeDecimal},
			{Field: FieldPackMultiplier, Header: types.ColPackMultiplier, DataType: validation.TypeDecimal},
		},
	}
}

// WithSheet returns a copy of s using another sheet name and header row.
// Empty or zero arguments keep the current values.
func (s Schema) WithSheet(name string, headerRow int) Schema {
	if name != "" {
		s.Sheet = name
	}
	if headerRow > 0 {
		s.HeaderRow = headerRow
	}
	return s
}

// WithHeaders returns a copy of s with column headers replaced by field name.
func (s Schema) WithHeaders(headers map[string]string) Schema {
	cols := make([]Column, len(s.Columns))
	copy(cols, s.Columns)
	for i := range cols {
		if h, ok := headers[cols[i].Field]; ok && h != "" {
			cols[i].Header = h
		}
	}
	s.Columns = cols
	return s
}

// Headers returns the column headers in declaration order.
func (s Schema) Headers() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Header
	}
	return out
}
