package lineage

import "biomorph/internal/model"

// Find reconstructs the ancestor chain of an individual from retained
// history, ordered earliest reconstructible ancestor to the individual
// inclusive. A parent id missing from history ends the walk there: the
// current record becomes the root of the returned chain. That is the
// designed degradation after history truncation, not an error.
//
// Generation numbers are monotone along any parent chain, so a cycle cannot
// occur; the walk is still bounded by generation+1 steps as a guard against
// corrupted history.
func Find(individual model.Biomorph, history *History) []model.Biomorph {
	chain := []model.Biomorph{individual}
	if history == nil {
		return chain
	}

	current := individual
	maxSteps := individual.Generation + 1
	for steps := 0; steps < maxSteps; steps++ {
		if current.ParentID == "" {
			break
		}
		parent, ok := history.Get(current.ParentID)
		if !ok {
			break
		}
		chain = append(chain, parent)
		current = parent
	}

	// Reverse into root-first order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
