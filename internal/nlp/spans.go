package nlp

import "sort"

// span is a located entity candidate; start/end are byte offsets.
type span struct {
	start, end int
	entity     Entity
}

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

// resolveSpans drops candidates overlapping an earlier-listed one, then
// returns the survivors in text order. Callers list candidates in
// priority order.
func resolveSpans(candidates []span) []Entity {
	var kept []span
	for _, c := range candidates {
		clash := false
		for _, k := range kept {
			if c.overlaps(k) {
				clash = true
				break
			}
		}
		if !clash {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].start < kept[j].start })

	out := make([]Entity, len(kept))
	for i, k := range kept {
		out[i] = k.entity
	}
	return out
}
