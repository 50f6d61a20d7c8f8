package platform

import "strings"

// LikeCandidate is one element matched by the like selector, reduced to the
// attributes the disambiguation heuristic needs.
type LikeCandidate struct {
	Label     string // accessible label or visible text
	IsCounter bool   // carries the platform's counter-marking attribute
	Pressed   bool   // already reports a pressed/liked state
}

// PickLikeControl chooses the actual like toggle among the selector matches.
//
// Reaction counters frequently match the same selector as the toggle. Two
// heuristics weed them out: the counter-marking attribute, and labels that
// read like a tally ("Like: 26 people"). Among the survivors the shortest
// label wins. Returns -1 when nothing qualifies.
func PickLikeControl(cands []LikeCandidate) int {
	best := -1
	for i, c := range cands {
		if c.IsCounter || strings.Contains(c.Label, ":") {
			continue
		}
		if best < 0 || len(c.Label) < len(cands[best].Label) {
			best = i
		}
	}
	return best
}
