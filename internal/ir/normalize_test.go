package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idField(alias string) ScalarField {
	return ScalarField{Path: "node.Id", Extract: Extract{JSONAlias: alias, Path: "data.id"}}
}

func apiNamePredicate(alias, apiName string) Comparison {
	return Comparison{
		Operator: OpEq,
		Left:     Extract{JSONAlias: alias, Path: "data.apiName"},
		Right:    StringLiteral{Value: apiName},
	}
}

func TestRemoveDuplicateFields_KeepsLastOccurrence(t *testing.T) {
	name := ScalarField{Path: "node.Name.value", Extract: Extract{JSONAlias: "Account", Path: "data.fields.Name.value"}}
	drafts := ScalarField{Path: "node._drafts", Extract: Extract{JSONAlias: "Account", Path: "data.drafts"}}

	got := RemoveDuplicateFields([]Field{idField("Account"), drafts, name, idField("Account")})

	require.Len(t, got, 3)
	assert.Equal(t, []Field{drafts, name, idField("Account")}, got)
}

func TestRemoveDuplicateFields_Idempotent(t *testing.T) {
	fields := []Field{
		idField("Account"),
		ScalarField{Path: "node.Name.value", Extract: Extract{JSONAlias: "Account", Path: "data.fields.Name.value"}},
		idField("Account"),
	}
	once := RemoveDuplicateFields(fields)
	twice := RemoveDuplicateFields(once)
	assert.Equal(t, once, twice)
}

func TestRemoveDuplicateFields_ChildConnectionsCompareDeeply(t *testing.T) {
	child := func() ChildField {
		return ChildField{
			Path: "node.Contacts.edges",
			Connection: Connection{
				APIName: "Contact",
				Alias:   "Account.Contacts",
				Fields:  []Field{idField("Account.Contacts")},
			},
		}
	}
	got := RemoveDuplicateFields([]Field{child(), child()})
	assert.Len(t, got, 1)

	different := child()
	different.Connection.Fields = append(different.Connection.Fields, idField("Other"))
	got = RemoveDuplicateFields([]Field{child(), different})
	assert.Len(t, got, 2)
}

func TestRemoveDuplicatePredicates(t *testing.T) {
	a := apiNamePredicate("Account", "Account")
	b := Comparison{
		Operator: OpIn,
		Left:     Extract{JSONAlias: "Account", Path: "data.fields.Name.value"},
		Right:    StringArray{Values: []Expression{StringLiteral{Value: "a"}, NullLiteral{}}},
	}
	c := Comparison{
		Operator: OpIn,
		Left:     Extract{JSONAlias: "Account", Path: "data.fields.Name.value"},
		Right:    StringArray{Values: []Expression{NullLiteral{}, StringLiteral{Value: "a"}}},
	}

	got := RemoveDuplicatePredicates([]Predicate{a, b, c, a, b})
	assert.Equal(t, []Predicate{c, a, b}, got)
}

func TestExpressionsEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Expression
		want bool
	}{
		{"same string", StringLiteral{Value: "x"}, StringLiteral{Value: "x"}, true},
		{"different string", StringLiteral{Value: "x"}, StringLiteral{Value: "y"}, false},
		{"null vs string", NullLiteral{}, StringLiteral{Value: ""}, false},
		{"null vs null", NullLiteral{}, NullLiteral{}, true},
		{"int vs double", IntLiteral{Value: 1}, DoubleLiteral{Value: 1}, false},
		{"date vs datetime", DateValue{Value: "2020-01-01"}, DateTimeValue{Value: "2020-01-01"}, false},
		{"date enum vs datetime enum", DateEnum{Value: DateToday}, DateTimeEnum{Value: DateToday}, false},
		{
			"relative date",
			RelativeDate{Unit: UnitMonth, Amount: -4, Offset: OffsetStart},
			RelativeDate{Unit: UnitMonth, Amount: -4, Offset: OffsetStart},
			true,
		},
		{
			"relative date has time",
			RelativeDate{Unit: UnitDay, Amount: -4},
			RelativeDate{Unit: UnitDay, Amount: -4, HasTime: true},
			false,
		},
		{
			"array order matters",
			NumberArray{Values: []Expression{IntLiteral{Value: 1}, IntLiteral{Value: 2}}},
			NumberArray{Values: []Expression{IntLiteral{Value: 2}, IntLiteral{Value: 1}}},
			false,
		},
		{
			"string array vs date array",
			StringArray{Values: []Expression{StringLiteral{Value: "2020-01-01"}}},
			DateArray{Values: []Expression{StringLiteral{Value: "2020-01-01"}}},
			false,
		},
		{"nil vs nil", nil, nil, true},
		{"nil vs null", nil, NullLiteral{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpressionsEqual(tt.a, tt.b))
		})
	}
}

func TestCombine_FlattensSameOperator(t *testing.T) {
	a := apiNamePredicate("A", "A")
	b := apiNamePredicate("B", "B")
	c := apiNamePredicate("C", "C")
	d := apiNamePredicate("D", "D")

	left := Compound{Operator: OpAnd, Children: []Predicate{a, b}}
	right := Compound{Operator: OpAnd, Children: []Predicate{c, d}}

	got := Combine(OpAnd, left, right)
	assert.Equal(t, Compound{Operator: OpAnd, Children: []Predicate{a, b, c, d}}, got)
}

func TestCombine_KeepsDifferentOperatorsNested(t *testing.T) {
	a := apiNamePredicate("A", "A")
	b := apiNamePredicate("B", "B")
	c := apiNamePredicate("C", "C")
	or := Compound{Operator: OpOr, Children: []Predicate{a, b}}

	got := Combine(OpAnd, or, c)
	assert.Equal(t, Compound{Operator: OpAnd, Children: []Predicate{or, c}}, got)
}

func TestCombine_CollapsesTrivialInputs(t *testing.T) {
	a := apiNamePredicate("A", "A")
	assert.Nil(t, Combine(OpAnd))
	assert.Nil(t, Combine(OpOr, nil, nil))
	assert.Equal(t, a, Combine(OpOr, nil, a))
}

func TestNormalize_DeduplicatesNestedConnections(t *testing.T) {
	self := apiNamePredicate("Account.Contacts", "Contact")
	root := RootQuery{Connections: []Connection{{
		APIName: "Account",
		Alias:   "Account",
		Fields: []Field{
			idField("Account"),
			ChildField{
				Path: "node.Contacts.edges",
				Connection: Connection{
					APIName:   "Contact",
					Alias:     "Account.Contacts",
					Fields:    []Field{idField("Account.Contacts"), idField("Account.Contacts")},
					Predicate: Compound{Operator: OpAnd, Children: []Predicate{self, self}},
				},
			},
			idField("Account"),
		},
	}}}

	got := Normalize(root)
	require.Len(t, got.Connections, 1)
	conn := got.Connections[0]
	require.Len(t, conn.Fields, 2)
	child, ok := conn.Fields[0].(ChildField)
	require.True(t, ok)
	assert.Len(t, child.Connection.Fields, 1)
	assert.Equal(t, self, child.Connection.Predicate)

	// The input tree is left untouched.
	assert.Len(t, root.Connections[0].Fields, 3)
}
