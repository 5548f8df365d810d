package planner

import (
	"github.com/graphql-go/graphql/language/ast"

	"lds-graphql-eval/internal/ir"
	"lds-graphql-eval/internal/objectinfo"
)

// Supported scope values.
const (
	scopeMine         = "MINE"
	scopeAssignedToMe = "ASSIGNEDTOME"
)

const (
	serviceAppointment = "ServiceAppointment"
	assignedResource   = "AssignedResource"
	serviceResource    = "ServiceResource"
)

// ScopeFilter compiles a scope argument into a predicate on the rows of
// apiName joined as alias. MINE restricts to records owned by userID;
// ASSIGNEDTOME restricts service appointments to those assigned to a service
// resource backed by userID.
func ScopeFilter(scope ast.Value, alias, apiName string, infos objectinfo.Map, userID string) (*PredicateContainer, error) {
	if scope == nil {
		return nil, nil
	}

	var value string
	if enum, ok := scope.(*ast.EnumValue); ok {
		value = enum.Value
	}

	switch value {
	case scopeMine:
		owner, ok := infos.FieldInfo(apiName, "OwnerId")
		if !ok {
			return nil, compileErrorf("Scope MINE requires the entity type to have an OwnerId field.")
		}
		return &PredicateContainer{Predicate: ir.Comparison{
			Operator: ir.OpEq,
			Left:     valueExtract(alias, owner),
			Right:    ir.StringLiteral{Value: userID},
		}}, nil
	case scopeAssignedToMe:
		if apiName != serviceAppointment {
			return nil, compileErrorf("ASSIGNEDTOME can only be used with ServiceAppointment.")
		}
		return &PredicateContainer{Predicate: assignedToMe(alias, userID)}, nil
	default:
		return nil, compileErrorf("Scope '%s is not supported.", renderValue(scope))
	}
}

// assignedToMe holds when an AssignedResource links the appointment joined as
// alias to a ServiceResource whose related record is userID.
func assignedToMe(alias, userID string) ir.Predicate {
	ar := childAlias(alias, assignedResource)
	sr := childAlias(ar, serviceResource)
	stored := func(rowAlias, field string) ir.Extract {
		return recordExtract(rowAlias, "data.fields."+field+".value")
	}

	return ir.Exists{
		Alias:     ar,
		JoinNames: []string{sr},
		Predicate: ir.Combine(ir.OpAnd,
			ir.Comparison{Operator: ir.OpEq, Left: stored(ar, "ServiceAppointmentId"), Right: recordExtract(alias, pathID)},
			apiNamePredicate(ar, assignedResource),
			ir.Comparison{Operator: ir.OpEq, Left: stored(ar, "ServiceResourceId"), Right: recordExtract(sr, pathID)},
			apiNamePredicate(sr, serviceResource),
			ir.Comparison{Operator: ir.OpEq, Left: stored(sr, "RelatedRecordId"), Right: ir.StringLiteral{Value: userID}},
		),
	}
}
