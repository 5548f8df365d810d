package planner

import (
	"slices"

	"lds-graphql-eval/internal/ir"
)

// PredicateContainer is a compiled condition together with the joins it
// requires. JoinPredicates link each entry of JoinNames to its parent row.
type PredicateContainer struct {
	Predicate      ir.Predicate
	JoinNames      []string
	JoinPredicates []ir.Predicate
}

// joinSet merges join requirements from several sources, keeping the first
// occurrence of each alias and predicate.
type joinSet struct {
	names      []string
	predicates []ir.Predicate
}

func (j *joinSet) add(names []string, predicates []ir.Predicate) {
	for _, name := range names {
		if !slices.Contains(j.names, name) {
			j.names = append(j.names, name)
		}
	}
	for _, p := range predicates {
		if !slices.ContainsFunc(j.predicates, func(q ir.Predicate) bool { return ir.PredicatesEqual(q, p) }) {
			j.predicates = append(j.predicates, p)
		}
	}
}

func (j *joinSet) addContainer(c *PredicateContainer) {
	if c == nil {
		return
	}
	j.add(c.JoinNames, c.JoinPredicates)
}

func (j *joinSet) empty() bool {
	return len(j.names) == 0 && len(j.predicates) == 0
}
