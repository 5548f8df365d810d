package planner

import (
	"github.com/graphql-go/graphql/language/ast"

	"lds-graphql-eval/internal/ir"
	"lds-graphql-eval/internal/objectinfo"
)

// OrderByContainer is one sort key together with the joins it requires.
type OrderByContainer struct {
	OrderBy        ir.OrderBy
	JoinNames      []string
	JoinPredicates []ir.Predicate
}

// ParseOrderBy compiles an orderBy argument such as
// {Name: {order: DESC, nulls: FIRST}, CreatedBy: {Email: {}}}. Keys sort in
// input order; when a key repeats, its last occurrence wins and takes that
// position. Direction defaults to ASC and nulls to LAST.
func ParseOrderBy(node ast.Value, alias, apiName string, infos objectinfo.Map) ([]OrderByContainer, error) {
	if node == nil {
		return nil, nil
	}
	obj, ok := node.(*ast.ObjectValue)
	if !ok {
		return nil, compileErrorf("Parent orderBy node should be an object.")
	}

	var (
		errs errorList
		out  []OrderByContainer
	)
	for _, f := range lastOccurrences(obj.Fields) {
		name := nameOf(f.Name)
		field, ok := infos.FieldInfo(apiName, name)
		if !ok {
			errs.add(fieldNotFound(name, apiName))
			continue
		}

		if field.Kind == objectinfo.KindReference {
			joined := childAlias(alias, name)
			nested, err := ParseOrderBy(f.Value, joined, field.ReferenceTo, infos)
			if err != nil {
				errs.add(err)
				continue
			}
			join := referenceJoin(alias, joined, field)
			for _, c := range nested {
				var joins joinSet
				joins.add([]string{joined}, join)
				joins.add(c.JoinNames, c.JoinPredicates)
				c.JoinNames = joins.names
				c.JoinPredicates = joins.predicates
				out = append(out, c)
			}
			continue
		}

		orderBy, err := orderByOptions(f.Value, name)
		if err != nil {
			errs.add(err)
			continue
		}
		orderBy.Extract = valueExtract(alias, field)
		out = append(out, OrderByContainer{OrderBy: orderBy})
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	return out, nil
}

func orderByOptions(value ast.Value, name string) (ir.OrderBy, error) {
	orderBy := ir.OrderBy{Asc: true}
	obj, ok := value.(*ast.ObjectValue)
	if !ok {
		return orderBy, compileErrorf("Order by value for field `%s` should be an object.", name)
	}

	var errs errorList
	for _, f := range obj.Fields {
		option := nameOf(f.Name)
		enum, _ := f.Value.(*ast.EnumValue)
		switch option {
		case "order":
			switch {
			case enum != nil && enum.Value == "ASC":
				orderBy.Asc = true
			case enum != nil && enum.Value == "DESC":
				orderBy.Asc = false
			default:
				errs.add(compileErrorf("Order by direction for field `%s` must be ASC or DESC.", name))
			}
		case "nulls":
			switch {
			case enum != nil && enum.Value == "FIRST":
				orderBy.NullsFirst = true
			case enum != nil && enum.Value == "LAST":
				orderBy.NullsFirst = false
			default:
				errs.add(compileErrorf("Order by nulls for field `%s` must be FIRST or LAST.", name))
			}
		default:
			errs.add(compileErrorf("Unknown order by option `%s` for field `%s`.", option, name))
		}
	}
	return orderBy, errs.err()
}

// lastOccurrences drops every object field whose name appears again later.
func lastOccurrences(fields []*ast.ObjectField) []*ast.ObjectField {
	return ir.RemoveDuplicates(fields, func(a, b *ast.ObjectField) bool {
		return nameOf(a.Name) == nameOf(b.Name)
	})
}
