package planner

import (
	"github.com/graphql-go/graphql/language/ast"

	"lds-graphql-eval/internal/ir"
	"lds-graphql-eval/internal/objectinfo"
)

// RecordFilter compiles a where argument for the rows of apiName joined as
// alias. Keys are ANDed in input order; and/or/not nest. A filter on a
// relationship name joins the referenced record as "<alias>.<name>" and
// filters it recursively. A nil where yields a nil container.
func RecordFilter(where ast.Value, alias, apiName string, infos objectinfo.Map) (*PredicateContainer, error) {
	if where == nil {
		return nil, nil
	}
	return filterObject(where, alias, apiName, infos)
}

func filterObject(node ast.Value, alias, apiName string, infos objectinfo.Map) (*PredicateContainer, error) {
	obj, ok := node.(*ast.ObjectValue)
	if !ok {
		return nil, compileErrorf("Parent filter node should be an object.")
	}

	var (
		errs       errorList
		joins      joinSet
		predicates []ir.Predicate
	)
	for _, f := range obj.Fields {
		var (
			container *PredicateContainer
			err       error
		)
		switch key := nameOf(f.Name); key {
		case "and":
			container, err = compoundFilter(ir.OpAnd, f.Value, alias, apiName, infos)
		case "or":
			container, err = compoundFilter(ir.OpOr, f.Value, alias, apiName, infos)
		case "not":
			container, err = notFilter(f.Value, alias, apiName, infos)
		default:
			container, err = fieldFilter(key, f.Value, alias, apiName, infos)
		}
		if err != nil {
			errs.add(err)
			continue
		}
		if container == nil {
			continue
		}
		predicates = append(predicates, container.Predicate)
		joins.addContainer(container)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	return newContainer(ir.Combine(ir.OpAnd, predicates...), joins), nil
}

func newContainer(predicate ir.Predicate, joins joinSet) *PredicateContainer {
	if predicate == nil && joins.empty() {
		return nil
	}
	return &PredicateContainer{
		Predicate:      predicate,
		JoinNames:      joins.names,
		JoinPredicates: joins.predicates,
	}
}

// compoundFilter compiles {and: [...]} or {or: [...]}. Elements that compile
// to nothing are dropped, and an empty list contributes no predicate.
func compoundFilter(op ir.CompoundOperator, value ast.Value, alias, apiName string, infos objectinfo.Map) (*PredicateContainer, error) {
	list, ok := value.(*ast.ListValue)
	if !ok {
		return nil, compileErrorf("Value of `%s` should be a list.", op)
	}

	var (
		errs     errorList
		joins    joinSet
		children []ir.Predicate
	)
	for _, item := range list.Values {
		container, err := filterObject(item, alias, apiName, infos)
		if err != nil {
			errs.add(err)
			continue
		}
		if container == nil {
			continue
		}
		children = append(children, container.Predicate)
		joins.addContainer(container)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	return newContainer(ir.Combine(op, children...), joins), nil
}

func notFilter(value ast.Value, alias, apiName string, infos objectinfo.Map) (*PredicateContainer, error) {
	container, err := filterObject(value, alias, apiName, infos)
	if err != nil || container == nil {
		return nil, err
	}
	if container.Predicate != nil {
		container.Predicate = ir.Not{Child: container.Predicate}
	}
	return container, nil
}

func fieldFilter(name string, value ast.Value, alias, apiName string, infos objectinfo.Map) (*PredicateContainer, error) {
	field, ok := infos.FieldInfo(apiName, name)
	if !ok {
		return nil, fieldNotFound(name, apiName)
	}

	if field.Kind == objectinfo.KindReference {
		joined := childAlias(alias, name)
		child, err := filterObject(value, joined, field.ReferenceTo, infos)
		if err != nil {
			return nil, err
		}
		var joins joinSet
		joins.add([]string{joined}, referenceJoin(alias, joined, field))
		var predicate ir.Predicate
		if child != nil {
			predicate = child.Predicate
			joins.addContainer(child)
		}
		return newContainer(predicate, joins), nil
	}

	predicate, err := fieldComparison(value, alias, field)
	if err != nil {
		return nil, err
	}
	return newContainer(predicate, joinSet{}), nil
}
