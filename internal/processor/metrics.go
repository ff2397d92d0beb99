package processor

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/purchase-order-builder/internal/types"
)

// ApplyMetrics fills the derived columns of every line in place:
//
//	orderQuantity  = packMultiplier * quantity
//	listValueTotal = orderQuantity * listPrice
//	costValueTotal = orderQuantity * unitCost
//
// A null operand makes the result null. No rounding is applied.
func ApplyMetrics(lines []types.ExpandedOrderLine) {
	for i := range lines {
		line := &lines[i]
		line.OrderQuantity = decimal.NullDecimal{}
		line.ListValueTotal = decimal.NullDecimal{}
		line.CostValueTotal = decimal.NullDecimal{}

		if line.Catalog == nil {
			continue
		}

		qty := decimal.NewNullDecimal(decimal.NewFromInt(int64(line.Quantity)))
		line.OrderQuantity = mulNull(line.Catalog.PackMultiplier, qty)
		line.ListValueTotal = mulNull(line.OrderQuantity, line.Catalog.ListPrice)
		line.CostValueTotal = mulNull(line.OrderQuantity, line.Catalog.UnitCost)
	}
}

func mulNull(a, b decimal.NullDecimal) decimal.NullDecimal {
	if !a.Valid || !b.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(a.Decimal.Mul(b.Decimal))
}
