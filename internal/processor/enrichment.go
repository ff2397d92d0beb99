package processor

import (
	"fmt"

	"github.com/ginjaninja78/purchase-order-builder/internal/diagnostic"
	"github.com/ginjaninja78/purchase-order-builder/internal/types"
)

// CatalogIndex is the master catalog keyed by group key.
type CatalogIndex struct {
	entries []types.MasterCatalogEntry
	byKey   map[string][]int
	policy  DuplicatePolicy
}

// BuildCatalogIndex indexes catalog entries in table order.
func BuildCatalogIndex(entries []types.MasterCatalogEntry, opts Options) *CatalogIndex {
	opts = opts.withDefaults()

	idx := &CatalogIndex{
		entries: make([]types.MasterCatalogEntry, len(entries)),
		byKey:   make(map[string][]int),
		policy:  opts.DuplicatePolicy,
	}
	copy(idx.entries, entries)

	for i, entry := range idx.entries {
		if entry.GroupKey == "" {
			continue
		}
		idx.byKey[entry.GroupKey] = append(idx.byKey[entry.GroupKey], i)
	}
	return idx
}

// Len returns the number of distinct keys.
func (c *CatalogIndex) Len() int {
	return len(c.byKey)
}

// Lookup returns the entry selected for key and the number of rows that
// carry the key.
func (c *CatalogIndex) Lookup(key string) (*types.MasterCatalogEntry, int, bool) {
	candidates, ok := c.byKey[key]
	if !ok {
		return nil, 0, false
	}
	entry := c.entries[c.policy.pick(candidates)]
	return &entry, len(candidates), true
}

// Enrich left-joins every line against the catalog. Unmatched lines keep a
// nil Catalog and are reported as CATALOG_MISS infos; they are never dropped.
func Enrich(lines []types.OrderLine, catalog *CatalogIndex, diags *diagnostic.Diagnostics) ([]types.ExpandedOrderLine, error) {
	out := make([]types.ExpandedOrderLine, len(lines))
	reported := make(map[string]bool)

	for i, line := range lines {
		out[i].OrderLine = line

		entry, candidates, ok := catalog.Lookup(line.CompositeKey)
		if !ok {
			if diags != nil {
				diags.AddInfo(diagnostic.CodeCatalogMiss, "no catalog entry for this key", line.CompositeKey, line.SourceRow)
			}
			continue
		}

		if candidates > 1 {
			if catalog.policy == PolicyReject {
				return nil, &types.DataShapeError{
					Row:    line.SourceRow,
					Column: groupKeyColumn,
					Value:  line.CompositeKey,
					Reason: fmt.Sprintf("%d catalog rows share this key", candidates),
				}
			}
			if diags != nil && !reported[line.CompositeKey] {
				reported[line.CompositeKey] = true
				diags.AddInfo(diagnostic.CodeDuplicateCatalog,
					fmt.Sprintf("%d catalog rows share this key, kept the %s one", candidates, catalog.policy),
					line.CompositeKey, line.SourceRow)
			}
		}

		out[i].Catalog = entry
	}

	return out, nil
}
