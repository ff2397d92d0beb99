package processor

import (
	"fmt"

	"github.com/ginjaninja78/purchase-order-builder/internal/diagnostic"
	"github.com/ginjaninja78/purchase-order-builder/internal/types"
)

// groupKeyColumn labels the option table key column in errors.
const groupKeyColumn = types.ColGroupKey

// Resolve assigns a separation tag to every line by looking its composite key
// up among the header rows of the option table. Lines without a match get a
// nil tag and stay standalone. The input slice is not modified.
//
// When several header rows share a key the index's duplicate policy picks
// one; the ambiguity is recorded once per key in diags. Under PolicyReject a
// duplicated key that is actually ordered fails the run.
func Resolve(lines []types.OrderLine, index *OptionIndex, diags *diagnostic.Diagnostics) ([]types.OrderLine, error) {
	out := make([]types.OrderLine, len(lines))
	copy(out, lines)

	reported := make(map[string]bool)
	for i := range out {
		out[i].SeparationTag = nil

		tag, candidates, ok := index.HeaderTag(out[i].CompositeKey)
		if !ok {
			continue
		}

		if candidates > 1 {
			if index.Policy() == PolicyReject {
				return nil, &types.DataShapeError{
					Row:    out[i].SourceRow,
					Column: groupKeyColumn,
					Value:  out[i].CompositeKey,
					Reason: fmt.Sprintf("%d header rows share this key", candidates),
				}
			}
			if diags != nil && !reported[out[i].CompositeKey] {
				reported[out[i].CompositeKey] = true
				diags.AddInfo(diagnostic.CodeDuplicateHeader,
					fmt.Sprintf("%d header rows share this key, kept the %s one", candidates, index.Policy()),
					out[i].CompositeKey, out[i].SourceRow)
			}
		}

		out[i].SeparationTag = types.StringPtr(tag)
	}

	return out, nil
}
