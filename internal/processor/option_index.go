// =============================================================================
// Purchase Order Builder - Option Separation Index
// =============================================================================
//
// The option separation sheet has no explicit group id. A composite product is
// described by a header row carrying "OptionGroup<N>", and its remaining N-1
// parts are the N-1 rows that immediately follow that header in table order:
//
//   | 상품명구분1        | 옵션분리구분2  | 판매몰상품번호/딜번호 | 원상품명_쇼핑몰 |
//   |-------------------|--------------|--------------------|---------------|
//   | 2370135샤르망...세트 | OptionGroup3 | 2370135            | 샤르망커트러리   |  <- header / anchor
//   | 2370135-1포크NO     |              | 2370135-1          | 포크           |  <- part 1
//   | 2370135-2나이프NO   |              | 2370135-2          | 나이프          |  <- part 2
//
// BuildOptionIndex resolves that adjacency once, when the table is loaded,
// into an explicit map from (group key, tag) to the ordered parts. Lookups
// during expansion are then O(1) per order line.
//
// =============================================================================

package processor

import (
	"github.com/ginjaninja78/purchase-order-builder/internal/types"
)

// groupRef identifies an anchor row.
type groupRef struct {
	key string
	tag string
}

// OptionGroup is a header row together with the part rows that follow it.
type OptionGroup struct {
	// Anchor is the header row selected for this (key, tag) pair.
	Anchor types.OptionMappingEntry

	// Parts are the rows following the anchor, at most Wanted of them.
	Parts []types.OptionMappingEntry

	// Wanted is N-1 for a tag "OptionGroup<N>".
	Wanted int

	// Candidates is the number of header rows sharing the anchor's key and
	// tag. Values above one mean the selection relied on the policy.
	Candidates int
}

// Complete reports whether every wanted part was available.
func (g OptionGroup) Complete() bool {
	return len(g.Parts) >= g.Wanted
}

// OptionIndex is an immutable view of the option separation table.
type OptionIndex struct {
	entries  []types.OptionMappingEntry
	policy   DuplicatePolicy
	prefixes []string

	// headers maps a group key to the positions of its header rows.
	headers map[string][]int

	// anchors maps (key, tag) to the positions of matching header rows.
	anchors map[groupRef][]int

	// groups holds the resolved group for every expandable anchor.
	groups map[groupRef]OptionGroup
}

// BuildOptionIndex indexes the option separation table. Entries must be in
// table order; their positions are reassigned from that order so that
// adjacency is always measured on the slice that was passed in.
func BuildOptionIndex(entries []types.OptionMappingEntry, opts Options) *OptionIndex {
	opts = opts.withDefaults()

	idx := &OptionIndex{
		entries:  make([]types.OptionMappingEntry, len(entries)),
		policy:   opts.DuplicatePolicy,
		prefixes: opts.GroupTagPrefixes,
		headers:  make(map[string][]int),
		anchors:  make(map[groupRef][]int),
		groups:   make(map[groupRef]OptionGroup),
	}
	copy(idx.entries, entries)

	for pos := range idx.entries {
		idx.entries[pos].Position = pos
		entry := idx.entries[pos]
		if !entry.IsHeader() {
			continue
		}
		ref := groupRef{key: entry.GroupKey, tag: entry.SeparationTag}
		idx.headers[entry.GroupKey] = append(idx.headers[entry.GroupKey], pos)
		idx.anchors[ref] = append(idx.anchors[ref], pos)
	}

	for ref, candidates := range idx.anchors {
		n, ok := ParseGroupTag(ref.tag, idx.prefixes)
		if !ok || n <= 1 {
			continue
		}

		anchorPos := idx.policy.pick(candidates)
		start := anchorPos + 1
		end := start + n - 1
		if end > len(idx.entries) {
			end = len(idx.entries)
		}

		idx.groups[ref] = OptionGroup{
			Anchor:     idx.entries[anchorPos],
			Parts:      idx.entries[start:end],
			Wanted:     n - 1,
			Candidates: len(candidates),
		}
	}

	return idx
}

// Len returns the number of rows in the table.
func (x *OptionIndex) Len() int {
	return len(x.entries)
}

// Policy returns the duplicate policy the index was built with.
func (x *OptionIndex) Policy() DuplicatePolicy {
	return x.policy
}

// HeaderTag returns the separation tag of the header row selected for key,
// the number of header rows carrying that key, and whether any matched.
func (x *OptionIndex) HeaderTag(key string) (string, int, bool) {
	candidates, ok := x.headers[key]
	if !ok {
		return "", 0, false
	}
	return x.entries[x.policy.pick(candidates)].SeparationTag, len(candidates), true
}

// GroupSize parses N out of a separation tag.
func (x *OptionIndex) GroupSize(tag string) (int, bool) {
	return ParseGroupTag(tag, x.prefixes)
}

// Group returns the resolved group for an anchor (key, tag).
func (x *OptionIndex) Group(key, tag string) (OptionGroup, bool) {
	g, ok := x.groups[groupRef{key: key, tag: tag}]
	return g, ok
}
