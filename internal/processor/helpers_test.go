package processor

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/purchase-order-builder/internal/types"
)

func header(key, tag, code, name string) types.OptionMappingEntry {
	return types.OptionMappingEntry{
		GroupKey:        key,
		SeparationTag:   tag,
		PartProductCode: code,
		PartProductName: name,
	}
}

func part(key, code, name string, option *string) types.OptionMappingEntry {
	return types.OptionMappingEntry{
		GroupKey:        key,
		PartProductCode: code,
		PartProductName: name,
		PartOption:      option,
	}
}

func orderLine(code, name, option string, qty int, tag *string) types.OrderLine {
	line := types.OrderLine{
		ProductCode:   code,
		ProductName:   name,
		OptionText:    option,
		Quantity:      qty,
		SeparationTag: tag,
	}
	line.Rekey()
	return line
}

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func codes(lines []types.OrderLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.ProductCode
	}
	return out
}

// cutleryMapping is the option table used by the 샤르망커트러리 scenarios.
func cutleryMapping() []types.OptionMappingEntry {
	return []types.OptionMappingEntry{
		header("1111111기타상품NO", "OptionGroup2", "1111111", "기타상품"),
		part("1111111-1부품NO", "1111111-1", "부품", nil),
		header("2370135샤르망커트러리세트", "OptionGroup3", "2370135", "샤르망커트러리"),
		part("2370135-1포크NO", "2370135-1", "포크", nil),
		part("2370135-2나이프NO", "2370135-2", "나이프", nil),
	}
}
