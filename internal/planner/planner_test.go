package planner

import (
	"testing"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/stretchr/testify/require"

	"lds-graphql-eval/internal/gqlrequest"
	"lds-graphql-eval/internal/ir"
)

func parseQuery(t *testing.T, query string) *ast.Document {
	t.Helper()

	doc, err := gqlrequest.Parse(query)
	require.NoError(t, err)
	return doc
}

// parseValue parses a GraphQL input value literal.
func parseValue(t *testing.T, literal string) ast.Value {
	t.Helper()

	doc := parseQuery(t, "{ f(v: "+literal+") }")
	op, ok := doc.Definitions[0].(*ast.OperationDefinition)
	require.True(t, ok)
	field, ok := op.SelectionSet.Selections[0].(*ast.Field)
	require.True(t, ok)
	require.Len(t, field.Arguments, 1)
	return field.Arguments[0].Value
}

func extract(alias, path string) ir.Extract {
	return ir.Extract{JSONAlias: alias, Path: path}
}

func stored(alias, field string) ir.Extract {
	return extract(alias, "data.fields."+field+".value")
}

func eq(left, right ir.Expression) ir.Comparison {
	return ir.Comparison{Operator: ir.OpEq, Left: left, Right: right}
}

func typeIs(alias, apiName string) ir.Comparison {
	return eq(extract(alias, "data.apiName"), ir.StringLiteral{Value: apiName})
}

func and(children ...ir.Predicate) ir.Compound {
	return ir.Compound{Operator: ir.OpAnd, Children: children}
}

func or(children ...ir.Predicate) ir.Compound {
	return ir.Compound{Operator: ir.OpOr, Children: children}
}
