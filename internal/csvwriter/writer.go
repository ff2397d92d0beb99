// =============================================================================
// Purchase Order Builder - Result Writer
// =============================================================================
//
// This module renders the final purchase-order table as CSV.
//
// OUTPUT STRUCTURE:
//   One record per ExpandedOrderLine, in pipeline order, under this header:
//
//   | order columns (4) | 상품명구분 | 옵션분리 | catalog columns (8) | 발주수량 | 기준판매가합계 | 매입가합계 |
//
//   The pack multiplier is only an input of 발주수량 and is not written.
//   Null values (no catalog match, blank catalog cells) are empty cells.
//
// ENCODING:
//   UTF-8, optionally prefixed with a byte order mark so spreadsheet
//   applications open Korean text correctly.
//
// =============================================================================

package csvwriter

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/purchase-order-builder/internal/types"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options contains options for CSV generation.
type Options struct {
	// BOM writes a UTF-8 byte order mark first.
	BOM bool
}

// DefaultOptions returns the options used for downloads.
func DefaultOptions() Options {
	return Options{BOM: true}
}

// Header returns the output columns in order.
func Header() []string {
	return []string{
		types.ColOrderCode,
		types.ColOrderName,
		types.ColOrderOption,
		types.ColOrderQuantity,
		types.ColKey,
		types.ColSeparation,
		types.ColSupplier,
		types.ColCatalogCode,
		types.ColERPName,
		types.ColERPOption,
		types.ColPOName,
		types.ColPOOption,
		types.ColListPrice,
		types.ColUnitCost,
		types.ColOrderQty,
		types.ColListValueTotal,
		types.ColCostValueTotal,
	}
}

// Record renders one line in Header order.
func Record(line types.ExpandedOrderLine) []string {
	record := []string{
		line.ProductCode,
		line.ProductName,
		line.OptionText,
		strconv.Itoa(line.Quantity),
		line.CompositeKey,
		line.Tag(),
	}

	var supplier, code, erpName, erpOption, poName, poOption string
	var listPrice, unitCost decimal.NullDecimal
	if c := line.Catalog; c != nil {
		supplier, code = c.Supplier, c.CatalogCode
		erpName, erpOption = c.ERPProductName, c.ERPOptionName
		poName, poOption = c.POProductName, c.POOptionName
		listPrice, unitCost = c.ListPrice, c.UnitCost
	}

	return append(record,
		supplier, code, erpName, erpOption, poName, poOption,
		formatDecimal(listPrice),
		formatDecimal(unitCost),
		formatDecimal(line.OrderQuantity),
		formatDecimal(line.ListValueTotal),
		formatDecimal(line.CostValueTotal),
	)
}

// Write renders lines to w.
func Write(w io.Writer, lines []types.ExpandedOrderLine, opts Options) error {
	if opts.BOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, line := range lines {
		if err := cw.Write(Record(line)); err != nil {
			return fmt.Errorf("failed to write line %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile renders lines into a new file at path.
func WriteFile(path string, lines []types.ExpandedOrderLine, opts Options) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	buf := bufio.NewWriter(file)
	if err := Write(buf, lines, opts); err != nil {
		file.Close()
		return err
	}
	if err := buf.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return file.Close()
}

func formatDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
