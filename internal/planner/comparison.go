package planner

import (
	"slices"
	"strconv"

	"github.com/graphql-go/graphql/language/ast"

	"lds-graphql-eval/internal/ir"
	"lds-graphql-eval/internal/objectinfo"
	"lds-graphql-eval/internal/sqlutil"
)

// Filter operator names.
const (
	opEq       = "eq"
	opNe       = "ne"
	opLt       = "lt"
	opGt       = "gt"
	opLte      = "lte"
	opGte      = "gte"
	opLike     = "like"
	opIn       = "in"
	opNin      = "nin"
	opIncludes = "includes"
	opExcludes = "excludes"
)

type valueCategory int

const (
	categoryUnsupported valueCategory = iota
	categoryString
	categoryPicklist
	categoryMultiPicklist
	categoryInt
	categoryDouble
	categoryBoolean
	categoryDate
	categoryDateTime
)

func categoryOf(dataType string) valueCategory {
	switch dataType {
	case objectinfo.TypeString, objectinfo.TypeTextArea, objectinfo.TypePhone, objectinfo.TypeEmail,
		objectinfo.TypeURL, objectinfo.TypeEncryptedString, objectinfo.TypeID, objectinfo.TypeReference:
		return categoryString
	case objectinfo.TypePicklist:
		return categoryPicklist
	case objectinfo.TypeMultiPicklist:
		return categoryMultiPicklist
	case objectinfo.TypeInt:
		return categoryInt
	case objectinfo.TypeDouble, objectinfo.TypeCurrency, objectinfo.TypePercent:
		return categoryDouble
	case objectinfo.TypeBoolean:
		return categoryBoolean
	case objectinfo.TypeDate:
		return categoryDate
	case objectinfo.TypeDateTime:
		return categoryDateTime
	default:
		return categoryUnsupported
	}
}

var categoryOperators = map[valueCategory][]string{
	categoryString:        {opEq, opNe, opLt, opGt, opLte, opGte, opLike, opIn, opNin},
	categoryPicklist:      {opEq, opNe, opIn, opNin},
	categoryMultiPicklist: {opEq, opNe, opIncludes, opExcludes},
	categoryInt:           {opEq, opNe, opLt, opGt, opLte, opGte, opIn, opNin},
	categoryDouble:        {opEq, opNe, opLt, opGt, opLte, opGte, opIn, opNin},
	categoryBoolean:       {opEq, opNe},
	categoryDate:          {opEq, opNe, opLt, opGt, opLte, opGte, opIn, opNin},
	categoryDateTime:      {opEq, opNe, opLt, opGt, opLte, opGte, opIn, opNin},
}

func operatorSupported(category valueCategory, op string) bool {
	return slices.Contains(categoryOperators[category], op)
}

func unsupportedOperator(op string, field objectinfo.FieldInfo) error {
	return compileErrorf("Comparison operator %s is not supported for type %s.", op, field.DataType)
}

func isListOperator(op string) bool {
	switch op {
	case opIn, opNin, opIncludes, opExcludes:
		return true
	}
	return false
}

func isTextCategory(category valueCategory) bool {
	return category == categoryString || category == categoryPicklist || category == categoryMultiPicklist
}

// listElementKind names the input value kind accepted inside list operands.
func listElementKind(category valueCategory) string {
	switch category {
	case categoryInt:
		return "IntValue"
	case categoryDouble:
		return "FloatValue"
	case categoryBoolean:
		return "BooleanValue"
	case categoryDate, categoryDateTime:
		return "ObjectValue"
	default:
		return "StringValue"
	}
}

// fieldComparison compiles the operator object applied to one scalar field,
// e.g. {eq: "x", ne: "y"}. Operators are ANDed.
func fieldComparison(value ast.Value, alias string, field objectinfo.FieldInfo) (ir.Predicate, error) {
	obj, ok := value.(*ast.ObjectValue)
	if !ok {
		return nil, compileErrorf("Filter for field `%s` should be an object.", field.APIName)
	}

	extract := valueExtract(alias, field)
	var errs errorList
	predicates := make([]ir.Predicate, 0, len(obj.Fields))
	for _, opField := range obj.Fields {
		op := nameOf(opField.Name)
		var (
			pred ir.Predicate
			err  error
		)
		if fn, ok := dateFunctions[op]; ok {
			pred, err = dateFunctionComparison(fn, opField.Value, extract, field)
		} else {
			pred, err = operatorComparison(op, opField.Value, extract, field)
		}
		if err != nil {
			errs.add(err)
			continue
		}
		predicates = append(predicates, pred)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	return ir.Combine(ir.OpAnd, predicates...), nil
}

func operatorComparison(op string, value ast.Value, extract ir.Extract, field objectinfo.FieldInfo) (ir.Predicate, error) {
	category := categoryOf(field.DataType)
	switch category {
	case categoryUnsupported:
		return nil, unsupportedOperator(op, field)
	case categoryDate, categoryDateTime:
		return dateComparison(op, value, extract, field, category == categoryDateTime)
	}

	if isListOperator(op) {
		return listComparison(op, value, extract, field, category)
	}
	if isNull(value) {
		return nullComparison(op, extract, field, category)
	}

	right, err := scalarLiteral(value, field, category)
	if err != nil {
		return nil, err
	}
	if !operatorSupported(category, op) {
		return nil, unsupportedOperator(op, field)
	}
	return ir.Comparison{
		Operator: ir.ComparisonOperator(op),
		Left:     extract,
		Right:    right,
		NoCase:   isTextCategory(category),
	}, nil
}

func nullComparison(op string, extract ir.Extract, field objectinfo.FieldInfo, category valueCategory) (ir.Predicate, error) {
	switch op {
	case opEq, opNe:
		if !operatorSupported(category, op) {
			return nil, unsupportedOperator(op, field)
		}
		if op == opEq {
			return ir.NullComparison{Operator: ir.OpIs, Left: extract}, nil
		}
		return ir.NullComparison{Operator: ir.OpIsNot, Left: extract}, nil
	case opLt, opGt, opLte, opGte:
		return nil, compileErrorf("Null can not be compared with %s.", op)
	default:
		if !operatorSupported(category, op) {
			return nil, unsupportedOperator(op, field)
		}
		return nil, compileErrorf("Null can not be compared with %s.", op)
	}
}

// scalarLiteral converts a single comparison operand.
func scalarLiteral(value ast.Value, field objectinfo.FieldInfo, category valueCategory) (ir.Expression, error) {
	if lit, ok := literalFor(value, category); ok {
		return lit, nil
	}
	return nil, compileErrorf("Comparison value must be a %s.", field.DataType)
}

func literalFor(value ast.Value, category valueCategory) (ir.Expression, bool) {
	switch category {
	case categoryString, categoryPicklist, categoryMultiPicklist:
		if v, ok := value.(*ast.StringValue); ok {
			return ir.StringLiteral{Value: v.Value}, true
		}
	case categoryInt:
		if v, ok := value.(*ast.IntValue); ok {
			n, err := strconv.ParseInt(v.Value, 10, 64)
			if err == nil {
				return ir.IntLiteral{Value: n}, true
			}
		}
	case categoryDouble:
		var raw string
		switch v := value.(type) {
		case *ast.IntValue:
			raw = v.Value
		case *ast.FloatValue:
			raw = v.Value
		default:
			return nil, false
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err == nil {
			return ir.DoubleLiteral{Value: f}, true
		}
	case categoryBoolean:
		if v, ok := value.(*ast.BooleanValue); ok {
			return ir.BooleanLiteral{Value: v.Value}, true
		}
	}
	return nil, false
}

func listComparison(op string, value ast.Value, extract ir.Extract, field objectinfo.FieldInfo, category valueCategory) (ir.Predicate, error) {
	list, ok := value.(*ast.ListValue)
	if !ok {
		return nil, compileErrorf("Comparison value must be a %s array.", field.DataType)
	}

	allowNull := op == opIn || op == opNin
	var errs errorList
	values := make([]ir.Expression, 0, len(list.Values))
	for _, item := range list.Values {
		if allowNull && isNull(item) {
			values = append(values, ir.NullLiteral{})
			continue
		}
		lit, ok := literalFor(item, category)
		if !ok {
			errs.add(compileErrorf("%s is not a valid value in list of %s.", renderValue(item), listElementKind(category)))
			continue
		}
		values = append(values, lit)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	if !operatorSupported(category, op) {
		return nil, unsupportedOperator(op, field)
	}

	switch op {
	case opIncludes, opExcludes:
		return multiPicklistComparison(op, extract, values), nil
	}

	var right ir.Expression
	switch category {
	case categoryInt, categoryDouble:
		right = ir.NumberArray{Values: values}
	default:
		right = ir.StringArray{Values: values}
	}
	return ir.Comparison{Operator: ir.ComparisonOperator(op), Left: extract, Right: right}, nil
}

// multiPicklistComparison matches any of values inside the stored
// semicolon-separated selection.
func multiPicklistComparison(op string, extract ir.Extract, values []ir.Expression) ir.Predicate {
	likes := make([]ir.Predicate, 0, len(values))
	for _, v := range values {
		s, ok := v.(ir.StringLiteral)
		if !ok {
			continue
		}
		likes = append(likes, ir.Comparison{
			Operator:    ir.OpLike,
			Left:        extract,
			Right:       ir.StringLiteral{Value: "%" + sqlutil.EscapeLike(s.Value) + "%"},
			NoCase:      true,
			EscapedLike: true,
		})
	}
	matched := ir.Combine(ir.OpOr, likes...)
	if matched == nil || op == opIncludes {
		return matched
	}
	return ir.Not{Child: matched}
}
