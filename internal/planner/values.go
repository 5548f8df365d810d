package planner

import (
	"strconv"
	"strings"

	"github.com/graphql-go/graphql/language/ast"

	"lds-graphql-eval/internal/gqlrequest"
	"lds-graphql-eval/internal/ir"
	"lds-graphql-eval/internal/objectinfo"
)

// Record document paths.
const (
	pathID       = "data.id"
	pathAPIName  = "data.apiName"
	pathWeakEtag = "data.weakEtag"
	pathDrafts   = "data.drafts"
	pathMetadata = "metadata"
)

func isNull(v ast.Value) bool {
	if v == nil {
		return true
	}
	return v.GetKind() == gqlrequest.KindNullValue
}

func nameOf(n *ast.Name) string {
	if n == nil {
		return ""
	}
	return n.Value
}

// renderValue formats an input value the way it would be written in a query.
func renderValue(v ast.Value) string {
	if isNull(v) {
		return "null"
	}
	switch val := v.(type) {
	case *ast.StringValue:
		return strconv.Quote(val.Value)
	case *ast.IntValue:
		return val.Value
	case *ast.FloatValue:
		return val.Value
	case *ast.BooleanValue:
		return strconv.FormatBool(val.Value)
	case *ast.EnumValue:
		return val.Value
	case *ast.Variable:
		return "$" + nameOf(val.Name)
	case *ast.ListValue:
		parts := make([]string, len(val.Values))
		for i, item := range val.Values {
			parts[i] = renderValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *ast.ObjectValue:
		parts := make([]string, len(val.Fields))
		for i, f := range val.Fields {
			parts[i] = nameOf(f.Name) + ": " + renderValue(f.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return v.GetKind()
	}
}

func recordExtract(alias, path string) ir.Extract {
	return ir.Extract{JSONAlias: alias, Path: path}
}

// valueExtract references the stored value of field on the row joined as alias.
func valueExtract(alias string, field objectinfo.FieldInfo) ir.Extract {
	if field.APIName == "Id" {
		return recordExtract(alias, pathID)
	}
	return recordExtract(alias, "data.fields."+field.APIName+".value")
}

func apiNamePredicate(alias, apiName string) ir.Predicate {
	return ir.Comparison{
		Operator: ir.OpEq,
		Left:     recordExtract(alias, pathAPIName),
		Right:    ir.StringLiteral{Value: apiName},
	}
}

// referenceJoin links the row joined as childAlias to the parent row through
// the parent's reference field.
func referenceJoin(parentAlias, childAlias string, field objectinfo.FieldInfo) []ir.Predicate {
	return []ir.Predicate{
		ir.Comparison{
			Operator: ir.OpEq,
			Left:     valueExtract(parentAlias, field),
			Right:    recordExtract(childAlias, pathID),
		},
		apiNamePredicate(childAlias, field.ReferenceTo),
	}
}

func childAlias(parentAlias, name string) string {
	return parentAlias + "." + name
}
