package pgslice

import (
	"sort"
)

// idColumn is the identifier column every dumped table is expected to carry.
const idColumn = "id"

// columnSet derives the ordered column list for the output from the first
// row's keys. The whitelist is applied first (with the id column implied),
// then the blacklist. The result always places id at position 0 when present;
// all other columns sort lexicographically. The updates formatter depends on
// this ordering.
func columnSet(row Row, opts *Options) []string {
	include := make(map[string]struct{}, len(opts.Columns)+1)
	for _, c := range opts.Columns {
		include[c] = struct{}{}
	}
	if len(include) > 0 {
		include[idColumn] = struct{}{}
	}

	exclude := make(map[string]struct{}, len(opts.OmitColumns)+1)
	for _, c := range opts.OmitColumns {
		exclude[c] = struct{}{}
	}
	if opts.OmitIDs {
		exclude[idColumn] = struct{}{}
	}

	cols := make([]string, 0, len(row))
	for c := range row {
		if len(include) > 0 {
			if _, ok := include[c]; !ok {
				continue
			}
		}
		if _, ok := exclude[c]; ok {
			continue
		}
		cols = append(cols, c)
	}

	sort.Slice(cols, func(i, j int) bool {
		switch {
		case cols[i] == idColumn:
			return true
		case cols[j] == idColumn:
			return false
		default:
			return cols[i] < cols[j]
		}
	})

	return cols
}
