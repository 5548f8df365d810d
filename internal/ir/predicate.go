package ir

// Predicate is a boolean condition over expressions.
type Predicate interface {
	isPredicate()
}

// ComparisonOperator is a binary comparison between two expressions.
type ComparisonOperator string

const (
	OpEq   ComparisonOperator = "eq"
	OpNe   ComparisonOperator = "ne"
	OpLt   ComparisonOperator = "lt"
	OpLte  ComparisonOperator = "lte"
	OpGt   ComparisonOperator = "gt"
	OpGte  ComparisonOperator = "gte"
	OpLike ComparisonOperator = "like"
	OpIn   ComparisonOperator = "in"
	OpNin  ComparisonOperator = "nin"
)

// NullOperator tests an expression against NULL.
type NullOperator string

const (
	OpIs    NullOperator = "is"
	OpIsNot NullOperator = "isNot"
)

// CompoundOperator joins child predicates.
type CompoundOperator string

const (
	OpAnd CompoundOperator = "and"
	OpOr  CompoundOperator = "or"
)

// Comparison compares Left with Right. NoCase requests case-insensitive
// collation for text comparisons. EscapedLike marks a like pattern whose
// literal wildcards are escaped with a backslash.
type Comparison struct {
	Operator    ComparisonOperator
	Left        Expression
	Right       Expression
	NoCase      bool
	EscapedLike bool
}

type NullComparison struct {
	Operator NullOperator
	Left     Expression
}

// Between holds when CompareDate lies within [Start, End], bounds inclusive.
type Between struct {
	CompareDate Expression
	Start       Expression
	End         Expression
}

type Not struct {
	Child Predicate
}

type Compound struct {
	Operator CompoundOperator
	Children []Predicate
}

// Exists holds when at least one combination of the rows joined as Alias and
// JoinNames satisfies Predicate. Predicate may reference aliases of the
// enclosing connection.
type Exists struct {
	Alias     string
	JoinNames []string
	Predicate Predicate
}

func (Comparison) isPredicate()     {}
func (NullComparison) isPredicate() {}
func (Between) isPredicate()        {}
func (Not) isPredicate()            {}
func (Compound) isPredicate()       {}
func (Exists) isPredicate()         {}

// Combine joins predicates with op. Children that are themselves Compound
// predicates with the same operator are spliced in rather than nested. Nil
// entries are skipped; a single survivor is returned unwrapped and an empty
// input yields nil.
func Combine(op CompoundOperator, predicates ...Predicate) Predicate {
	children := make([]Predicate, 0, len(predicates))
	for _, p := range predicates {
		if p == nil {
			continue
		}
		if c, ok := p.(Compound); ok && c.Operator == op {
			children = append(children, c.Children...)
			continue
		}
		children = append(children, p)
	}
	switch len(children) {
	case 0:
		return nil
	case 1:
		return children[0]
	default:
		return Compound{Operator: op, Children: children}
	}
}
