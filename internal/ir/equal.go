package ir

// ExpressionsEqual reports whether a and b have the same variant and payload.
// Expressions of different variants are never equal.
func ExpressionsEqual(a, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Extract:
		y, ok := b.(Extract)
		return ok && x == y
	case StringLiteral:
		y, ok := b.(StringLiteral)
		return ok && x == y
	case DoubleLiteral:
		y, ok := b.(DoubleLiteral)
		return ok && x == y
	case IntLiteral:
		y, ok := b.(IntLiteral)
		return ok && x == y
	case BooleanLiteral:
		y, ok := b.(BooleanLiteral)
		return ok && x == y
	case NullLiteral:
		_, ok := b.(NullLiteral)
		return ok
	case StringArray:
		y, ok := b.(StringArray)
		return ok && expressionListsEqual(x.Values, y.Values)
	case NumberArray:
		y, ok := b.(NumberArray)
		return ok && expressionListsEqual(x.Values, y.Values)
	case DateValue:
		y, ok := b.(DateValue)
		return ok && x == y
	case DateEnum:
		y, ok := b.(DateEnum)
		return ok && x == y
	case DateTimeValue:
		y, ok := b.(DateTimeValue)
		return ok && x == y
	case DateTimeEnum:
		y, ok := b.(DateTimeEnum)
		return ok && x == y
	case DateArray:
		y, ok := b.(DateArray)
		return ok && expressionListsEqual(x.Values, y.Values)
	case DateTimeArray:
		y, ok := b.(DateTimeArray)
		return ok && expressionListsEqual(x.Values, y.Values)
	case RelativeDate:
		y, ok := b.(RelativeDate)
		return ok && x == y
	case DateFunctionCall:
		y, ok := b.(DateFunctionCall)
		return ok && x == y
	default:
		return false
	}
}

func expressionListsEqual(a, b []Expression) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ExpressionsEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// PredicatesEqual reports deep structural equality of two predicates.
func PredicatesEqual(a, b Predicate) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Comparison:
		y, ok := b.(Comparison)
		return ok && x.Operator == y.Operator && x.NoCase == y.NoCase && x.EscapedLike == y.EscapedLike &&
			ExpressionsEqual(x.Left, y.Left) && ExpressionsEqual(x.Right, y.Right)
	case NullComparison:
		y, ok := b.(NullComparison)
		return ok && x.Operator == y.Operator && ExpressionsEqual(x.Left, y.Left)
	case Between:
		y, ok := b.(Between)
		return ok && ExpressionsEqual(x.CompareDate, y.CompareDate) &&
			ExpressionsEqual(x.Start, y.Start) && ExpressionsEqual(x.End, y.End)
	case Not:
		y, ok := b.(Not)
		return ok && PredicatesEqual(x.Child, y.Child)
	case Compound:
		y, ok := b.(Compound)
		return ok && x.Operator == y.Operator && predicateListsEqual(x.Children, y.Children)
	case Exists:
		y, ok := b.(Exists)
		return ok && x.Alias == y.Alias && stringsEqual(x.JoinNames, y.JoinNames) &&
			PredicatesEqual(x.Predicate, y.Predicate)
	default:
		return false
	}
}

func predicateListsEqual(a, b []Predicate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !PredicatesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// FieldsEqual reports deep structural equality of two fields.
func FieldsEqual(a, b Field) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case ScalarField:
		y, ok := b.(ScalarField)
		return ok && x == y
	case ChildField:
		y, ok := b.(ChildField)
		return ok && x.Path == y.Path && ConnectionsEqual(x.Connection, y.Connection)
	default:
		return false
	}
}

// ConnectionsEqual reports deep structural equality of two connections.
func ConnectionsEqual(a, b Connection) bool {
	if a.APIName != b.APIName || a.Alias != b.Alias {
		return false
	}
	if (a.First == nil) != (b.First == nil) || (a.First != nil && *a.First != *b.First) {
		return false
	}
	if !stringsEqual(a.JoinNames, b.JoinNames) || !PredicatesEqual(a.Predicate, b.Predicate) {
		return false
	}
	if len(a.LeftJoins) != len(b.LeftJoins) {
		return false
	}
	for i := range a.LeftJoins {
		if a.LeftJoins[i].Alias != b.LeftJoins[i].Alias || !PredicatesEqual(a.LeftJoins[i].On, b.LeftJoins[i].On) {
			return false
		}
	}
	if len(a.OrderBy) != len(b.OrderBy) || len(a.Fields) != len(b.Fields) {
		return false
	}
	for i := range a.OrderBy {
		if a.OrderBy[i] != b.OrderBy[i] {
			return false
		}
	}
	for i := range a.Fields {
		if !FieldsEqual(a.Fields[i], b.Fields[i]) {
			return false
		}
	}
	return true
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
