package colors

import (
	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/pkg/colorutil"
)

// Group is one color cluster formed during grouping. The representative
// is the first color that founded the group; later members are compared
// against it, never against a running mean.
type Group struct {
	Representative Color // first-seen color, never updated
	Index          int   // position in the input sequence of the founding color
	Count          int   // members assigned to this group
}

// GroupColors partitions an ordered color sequence into groups by
// greedy first-match assignment: each color joins the first existing
// group (in creation order) whose representative is strictly closer
// than threshold in Euclidean distance, or founds a new group.
//
// The returned slice is the insertion-ordered association list the
// grouping is defined over — iteration order is part of the contract,
// it determines tie-breaking and the order of aggregated records.
// Counts across all groups always sum to len(seq).
func GroupColors(seq []Color, threshold float64) []Group {
	var groups []Group
	for i, c := range seq {
		matched := false
		for j := range groups {
			if colorutil.Distance(c.Vec(), groups[j].Representative.Vec()) < threshold {
				groups[j].Count++
				matched = true
				break
			}
		}
		if !matched {
			groups = append(groups, Group{Representative: c, Index: i, Count: 1})
		}
	}
	return groups
}
