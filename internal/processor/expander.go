// =============================================================================
// Purchase Order Builder - Row Expansion Engine
// =============================================================================
//
// For every order line tagged "OptionGroup<N>" the engine synthesizes the N-1
// missing lines from the part rows that follow the line's anchor in the
// option separation table.
//
// EXPANSION RULES:
//   1. N <= 1, or a tag that does not parse, means nothing to expand.
//   2. No anchor for (composite key, tag): warning, nothing emitted.
//   3. Each part row becomes one line:
//        code / name   <- part row
//        option        <- part option, or the default option when blank
//        quantity      <- the ORIGINAL line's quantity
//        tag           <- copied from the original line
//        composite key <- re-derived from the new identity fields
//   4. Table ends before N-1 parts: warning, the available parts are emitted.
//   5. Synthesized lines are appended after all originals, once, at the end.
//      Originals are never removed or modified.
//
// =============================================================================

package processor

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/purchase-order-builder/internal/diagnostic"
	"github.com/ginjaninja78/purchase-order-builder/internal/types"
)

// Expand returns the original lines followed by every synthesized line,
// together with the lookup warnings raised along the way. Warnings are also
// recorded in diags when it is non-nil.
func Expand(lines []types.OrderLine, index *OptionIndex, defaultOption string, diags *diagnostic.Diagnostics) ([]types.OrderLine, []types.ReferenceLookupWarning) {
	if defaultOption == "" {
		defaultOption = types.DefaultOptionText
	}

	var synthesized []types.OrderLine
	var warnings []types.ReferenceLookupWarning
	reportedDuplicates := make(map[groupRef]bool)

	for _, line := range lines {
		tag := line.Tag()
		n, ok := index.GroupSize(tag)
		if !ok || n <= 1 {
			continue
		}

		group, found := index.Group(line.CompositeKey, tag)
		if !found {
			w := types.ReferenceLookupWarning{
				Kind:         types.AnchorNotFound,
				CompositeKey: line.CompositeKey,
				Tag:          tag,
				SourceRow:    line.SourceRow,
				Wanted:       n - 1,
			}
			warnings = append(warnings, w)
			if diags != nil {
				diags.AddWarning(diagnostic.CodeAnchorNotFound, w.Error(), line.CompositeKey, line.SourceRow)
			}
			continue
		}

		ref := groupRef{key: line.CompositeKey, tag: tag}
		if group.Candidates > 1 && diags != nil && !reportedDuplicates[ref] {
			reportedDuplicates[ref] = true
			diags.AddInfo(diagnostic.CodeDuplicateAnchor,
				fmt.Sprintf("%d anchor rows match, used table row %d", group.Candidates, group.Anchor.SourceRow),
				line.CompositeKey, line.SourceRow)
		}

		for _, part := range group.Parts {
			synthesized = append(synthesized, partLine(line, part, defaultOption))
		}

		if !group.Complete() {
			w := types.ReferenceLookupWarning{
				Kind:         types.InsufficientParts,
				CompositeKey: line.CompositeKey,
				Tag:          tag,
				SourceRow:    line.SourceRow,
				Wanted:       group.Wanted,
				Got:          len(group.Parts),
			}
			warnings = append(warnings, w)
			if diags != nil {
				diags.AddWarning(diagnostic.CodeInsufficientParts, w.Error(), line.CompositeKey, line.SourceRow)
			}
		}
	}

	out := make([]types.OrderLine, 0, len(lines)+len(synthesized))
	out = append(out, lines...)
	out = append(out, synthesized...)
	return out, warnings
}

// partLine builds the synthesized line for one part row.
func partLine(origin types.OrderLine, part types.OptionMappingEntry, defaultOption string) types.OrderLine {
	option := defaultOption
	if part.PartOption != nil && strings.TrimSpace(*part.PartOption) != "" {
		option = *part.PartOption
	}

	line := types.OrderLine{
		ProductCode: part.PartProductCode,
		ProductName: part.PartProductName,
		OptionText:  option,
		Quantity:    origin.Quantity,
		SourceRow:   origin.SourceRow,
		Synthesized: true,
	}
	if origin.SeparationTag != nil {
		line.SeparationTag = types.StringPtr(*origin.SeparationTag)
	}
	line.Rekey()
	return line
}
