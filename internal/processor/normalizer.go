package processor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/purchase-order-builder/internal/types"
	"github.com/ginjaninja78/purchase-order-builder/internal/validation"
)

// quantityColumn labels the quantity column in DataShapeError values.
const quantityColumn = "quantity"

// Normalize cleans raw order rows into OrderLine records.
//
// CLEANING OPERATIONS:
//   - blank option text becomes the default option ("NO")
//   - every coupon marker is removed from the product name
//   - the composite key is derived with all whitespace removed
//
// A quantity that is not a non-negative integer fails the whole batch with a
// *types.DataShapeError.
func Normalize(rows []types.RawOrderRow, opts Options) ([]types.OrderLine, error) {
	opts = opts.withDefaults()
	lines := make([]types.OrderLine, 0, len(rows))

	for _, row := range rows {
		qty, err := parseQuantity(row.Quantity)
		if err != nil {
			return nil, &types.DataShapeError{
				Row:    row.SourceRow,
				Column: quantityColumn,
				Value:  row.Quantity,
				Reason: "quantity must be a non-negative integer",
				Err:    err,
			}
		}

		option := strings.TrimSpace(row.OptionText)
		if option == "" {
			option = opts.DefaultOption
		}

		name := row.ProductName
		if opts.CouponMarker != "" {
			name = strings.ReplaceAll(name, opts.CouponMarker, "")
		}

		line := types.OrderLine{
			ProductCode: strings.TrimSpace(row.ProductCode),
			ProductName: name,
			OptionText:  option,
			Quantity:    qty,
			SourceRow:   row.SourceRow,
		}
		line.Rekey()
		lines = append(lines, line)
	}

	return lines, nil
}

// parseQuantity accepts plain integers, thousands separators and integral
// decimals such as "2.0".
func parseQuantity(raw string) (int, error) {
	value := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if value == "" {
		return 0, fmt.Errorf("empty quantity")
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		d, decErr := decimal.NewFromString(value)
		if decErr != nil {
			return 0, err
		}
		if !d.IsInteger() {
			return 0, fmt.Errorf("fractional quantity %s", d.String())
		}
		if !validation.FitsInt(d) {
			return 0, fmt.Errorf("quantity %s out of range", d.String())
		}
		n = int(d.IntPart())
	}

	if n < 0 {
		return 0, fmt.Errorf("negative quantity %d", n)
	}
	return n, nil
}
