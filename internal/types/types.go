// =============================================================================
// Purchase Order Builder - Shared Types
// =============================================================================
//
// This package contains the record types that flow through the pipeline. They
// live here to avoid import cycles between:
//   - xlsxparser (produces raw rows and reference tables)
//   - processor  (normalizes, expands, enriches)
//   - csvwriter  (renders the final table)
//   - report     (summarizes a run)
//
// =============================================================================

package types

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// DefaultOptionText is used when an order row or a part row has no option.
const DefaultOptionText = "NO"

// =============================================================================
// RAW INPUT
// =============================================================================

// RawOrderRow is one data row of the order sheet, reduced to the four columns
// the pipeline reads. Values are the cell text as rendered by the workbook.
type RawOrderRow struct {
	// SourceRow is the 1-based row number in the order sheet.
	SourceRow int

	ProductCode string
	ProductName string
	OptionText  string
	Quantity    string
}

// =============================================================================
// ORDER LINES
// =============================================================================

// OrderLine represents one purchasable line item.
type OrderLine struct {
	// ProductCode is the store SKU or deal id. It may carry a "-" separated
	// sub-index, e.g. "2370135-1".
	ProductCode string

	ProductName string

	// OptionText defaults to DefaultOptionText when absent.
	OptionText string

	Quantity int

	// CompositeKey is derived from the three identity fields by Rekey.
	// It is the join and lookup key everywhere.
	CompositeKey string

	// SeparationTag is nil for standalone lines, otherwise the tag copied
	// from the option separation table (e.g. "OptionGroup3").
	SeparationTag *string

	// SourceRow is the order sheet row this line came from. Synthesized
	// lines carry the source row of the line that spawned them.
	SourceRow int

	// Synthesized is true for lines created by the expansion engine.
	Synthesized bool
}

// Rekey re-derives CompositeKey from the identity fields.
func (l *OrderLine) Rekey() {
	l.CompositeKey = DeriveKey(l.ProductCode, l.ProductName, l.OptionText)
}

// Tag returns the separation tag or "" when the line is standalone.
func (l OrderLine) Tag() string {
	if l.SeparationTag == nil {
		return ""
	}
	return *l.SeparationTag
}

// DeriveKey concatenates the identity fields and removes every whitespace
// rune, embedded ones included.
func DeriveKey(code, name, option string) string {
	return StripSpaces(code + name + option)
}

// StripSpaces removes all whitespace runes from s.
func StripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}

// =============================================================================
// REFERENCE TABLES
// =============================================================================

// OptionMappingEntry is one row of the option separation table. A row is
// either a header row (non-empty SeparationTag) or a part row of the header
// that precedes it. Adjacency in table order is the only link between them.
type OptionMappingEntry struct {
	// Position is the 0-based index in the loaded table, assigned after rows
	// without a group key have been dropped.
	Position int

	// SourceRow is the 1-based row number in the sheet.
	SourceRow int

	GroupKey      string
	SeparationTag string

	PartProductCode string
	PartProductName string

	// PartOption is nil when the cell is blank.
	PartOption *string
}

// IsHeader reports whether the entry describes a composite product.
func (e OptionMappingEntry) IsHeader() bool {
	return e.GroupKey != "" && e.SeparationTag != ""
}

// MasterCatalogEntry is one row of the master catalog.
type MasterCatalogEntry struct {
	SourceRow int

	GroupKey string

	// Supplier is the purchase channel (매입처).
	Supplier string

	// CatalogCode is the internal product code (상품코드).
	CatalogCode string

	ERPProductName string
	ERPOptionName  string
	POProductName  string
	POOptionName   string

	ListPrice decimal.NullDecimal
	UnitCost  decimal.NullDecimal

	// PackMultiplier is the number of units consumed per ordered line.
	PackMultiplier decimal.NullDecimal
}

// =============================================================================
// OUTPUT
// =============================================================================

// ExpandedOrderLine is the terminal representation of a line after
// enrichment and metric calculation.
type ExpandedOrderLine struct {
	OrderLine

	// Catalog is nil when no catalog entry matched the composite key.
	Catalog *MasterCatalogEntry

	OrderQuantity  decimal.NullDecimal
	ListValueTotal decimal.NullDecimal
	CostValueTotal decimal.NullDecimal
}
