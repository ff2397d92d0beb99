package processor

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ginjaninja78/purchase-order-builder/internal/types"
)

// SortLines returns a copy of lines ordered so that a composite product's
// header line and its parts sit next to each other:
//
//	primary   = product code before the first "-"
//	secondary = integer after the first "-" (0 when absent or not a number)
//
// The sort is stable.
func SortLines(lines []types.OrderLine) []types.OrderLine {
	out := make([]types.OrderLine, len(lines))
	copy(out, lines)

	sort.SliceStable(out, func(i, j int) bool {
		bi, si := SplitProductCode(out[i].ProductCode)
		bj, sj := SplitProductCode(out[j].ProductCode)
		if bi != bj {
			return bi < bj
		}
		return si < sj
	})
	return out
}

// SplitProductCode splits "2370135-2" into ("2370135", 2).
func SplitProductCode(code string) (string, int) {
	base, rest, found := strings.Cut(code, "-")
	if !found {
		return code, 0
	}

	sub, _, _ := strings.Cut(rest, "-")
	n, err := strconv.Atoi(strings.TrimSpace(sub))
	if err != nil {
		return base, 0
	}
	return base, n
}
