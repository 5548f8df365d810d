package planner

import (
	"regexp"
	"strconv"

	"github.com/graphql-go/graphql/language/ast"

	"lds-graphql-eval/internal/ir"
	"lds-graphql-eval/internal/objectinfo"
)

var (
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`)
)

var dateFunctions = map[string]ir.DateFunction{
	string(ir.DayOfMonth):    ir.DayOfMonth,
	string(ir.DayOfYear):     ir.DayOfYear,
	string(ir.WeekInYear):    ir.WeekInYear,
	string(ir.CalendarMonth): ir.CalendarMonth,
	string(ir.CalendarYear):  ir.CalendarYear,
}

// Date input keys.
const (
	dateInputValue   = "value"
	dateInputLiteral = "literal"
	dateInputRange   = "range"
)

// Relative range keys.
const (
	rangeLastNDays   = "last_n_days"
	rangeNextNDays   = "next_n_days"
	rangeLastNMonths = "last_n_months"
	rangeNextNMonths = "next_n_months"
)

// dateComparison compiles one operator applied to a Date or DateTime field.
// The operand is {value: "..."}, {literal: TODAY} or {range: {...}}.
func dateComparison(op string, value ast.Value, extract ir.Extract, field objectinfo.FieldInfo, hasTime bool) (ir.Predicate, error) {
	category := categoryDate
	if hasTime {
		category = categoryDateTime
	}

	if isListOperator(op) {
		return dateListComparison(op, value, extract, field, category)
	}
	if isNull(value) {
		return nullComparison(op, extract, field, category)
	}

	input, ok := value.(*ast.ObjectValue)
	if !ok || len(input.Fields) != 1 {
		return nil, compileErrorf("Comparison value must be a %s.", field.DataType)
	}
	key := nameOf(input.Fields[0].Name)
	operand := input.Fields[0].Value

	switch key {
	case dateInputValue, dateInputLiteral:
		if key == dateInputValue && isNull(operand) {
			return nullComparison(op, extract, field, category)
		}
		right, err := dateOperand(key, operand, field, hasTime)
		if err != nil {
			return nil, err
		}
		if !operatorSupported(category, op) {
			return nil, unsupportedOperator(op, field)
		}
		return ir.Comparison{Operator: ir.ComparisonOperator(op), Left: extract, Right: right}, nil
	case dateInputRange:
		start, end, err := rangeBounds(operand, hasTime)
		if err != nil {
			return nil, err
		}
		return rangeComparison(op, extract, start, end, field)
	default:
		return nil, compileErrorf("Comparison value must be a %s.", field.DataType)
	}
}

// dateOperand converts a {value} or {literal} operand.
func dateOperand(key string, operand ast.Value, field objectinfo.FieldInfo, hasTime bool) (ir.Expression, error) {
	if key == dateInputLiteral {
		enum, ok := operand.(*ast.EnumValue)
		if !ok {
			return nil, compileErrorf("Unknown %s literal %s.", field.DataType, renderValue(operand))
		}
		var v ir.DateEnumValue
		switch enum.Value {
		case "TODAY":
			v = ir.DateToday
		case "TOMORROW":
			v = ir.DateTomorrow
		default:
			return nil, compileErrorf("Unknown %s literal %s.", field.DataType, enum.Value)
		}
		if hasTime {
			return ir.DateTimeEnum{Value: v}, nil
		}
		return ir.DateEnum{Value: v}, nil
	}

	s, ok := operand.(*ast.StringValue)
	if !ok {
		return nil, compileErrorf("Comparison value must be a %s.", field.DataType)
	}
	if hasTime {
		if !dateTimePattern.MatchString(s.Value) {
			return nil, compileErrorf("DateTime format must be YYYY-MM-DDTHH:MM:SS.SSSZ.")
		}
		return ir.DateTimeValue{Value: s.Value}, nil
	}
	if !datePattern.MatchString(s.Value) {
		return nil, compileErrorf("Date format must be YYYY-MM-DD.")
	}
	return ir.DateValue{Value: s.Value}, nil
}

func dateListComparison(op string, value ast.Value, extract ir.Extract, field objectinfo.FieldInfo, category valueCategory) (ir.Predicate, error) {
	list, ok := value.(*ast.ListValue)
	if !ok {
		return nil, compileErrorf("Comparison value must be a %s array.", field.DataType)
	}
	hasTime := category == categoryDateTime

	var errs errorList
	values := make([]ir.Expression, 0, len(list.Values))
	for _, item := range list.Values {
		if isNull(item) {
			values = append(values, ir.NullLiteral{})
			continue
		}
		input, ok := item.(*ast.ObjectValue)
		if !ok || len(input.Fields) != 1 {
			errs.add(compileErrorf("%s is not a valid value in list of %s.", renderValue(item), listElementKind(category)))
			continue
		}
		key := nameOf(input.Fields[0].Name)
		if key != dateInputValue && key != dateInputLiteral {
			errs.add(compileErrorf("%s is not a valid value in list of %s.", renderValue(item), listElementKind(category)))
			continue
		}
		operand := input.Fields[0].Value
		if key == dateInputValue && isNull(operand) {
			values = append(values, ir.NullLiteral{})
			continue
		}
		v, err := dateOperand(key, operand, field, hasTime)
		if err != nil {
			errs.add(err)
			continue
		}
		values = append(values, v)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	if !operatorSupported(category, op) {
		return nil, unsupportedOperator(op, field)
	}

	var right ir.Expression = ir.DateArray{Values: values}
	if hasTime {
		right = ir.DateTimeArray{Values: values}
	}
	return ir.Comparison{Operator: ir.ComparisonOperator(op), Left: extract, Right: right}, nil
}

// rangeBounds lowers a relative range to its inclusive start and end.
func rangeBounds(value ast.Value, hasTime bool) (ir.RelativeDate, ir.RelativeDate, error) {
	obj, ok := value.(*ast.ObjectValue)
	if !ok || len(obj.Fields) != 1 {
		return ir.RelativeDate{}, ir.RelativeDate{}, compileErrorf("Range value must be an object with exactly one range.")
	}
	key := nameOf(obj.Fields[0].Name)
	switch key {
	case rangeLastNDays, rangeNextNDays, rangeLastNMonths, rangeNextNMonths:
	default:
		return ir.RelativeDate{}, ir.RelativeDate{}, compileErrorf("Unknown range %s.", key)
	}

	n := 0
	if v, ok := obj.Fields[0].Value.(*ast.IntValue); ok {
		n, _ = strconv.Atoi(v.Value)
	}
	if n <= 0 {
		return ir.RelativeDate{}, ir.RelativeDate{}, compileErrorf("Range value for %s must be a positive integer.", key)
	}

	day := func(amount int) ir.RelativeDate {
		return ir.RelativeDate{Unit: ir.UnitDay, Amount: amount, HasTime: hasTime}
	}
	month := func(amount int, offset ir.RelativeOffset) ir.RelativeDate {
		return ir.RelativeDate{Unit: ir.UnitMonth, Amount: amount, Offset: offset, HasTime: hasTime}
	}

	switch key {
	case rangeLastNDays:
		return day(-n), day(0), nil
	case rangeNextNDays:
		return day(1), day(n), nil
	case rangeLastNMonths:
		return month(-n, ir.OffsetStart), month(-1, ir.OffsetEnd), nil
	default:
		return month(1, ir.OffsetStart), month(n, ir.OffsetEnd), nil
	}
}

func rangeComparison(op string, extract ir.Extract, start, end ir.RelativeDate, field objectinfo.FieldInfo) (ir.Predicate, error) {
	switch op {
	case opEq:
		return ir.Between{CompareDate: extract, Start: start, End: end}, nil
	case opNe:
		return ir.Not{Child: ir.Between{CompareDate: extract, Start: start, End: end}}, nil
	case opGte, opLt:
		return ir.Comparison{Operator: ir.ComparisonOperator(op), Left: extract, Right: start}, nil
	case opGt, opLte:
		return ir.Comparison{Operator: ir.ComparisonOperator(op), Left: extract, Right: end}, nil
	default:
		return nil, unsupportedOperator(op, field)
	}
}

// dateFunctionComparison compiles e.g. {CALENDAR_YEAR: {eq: 2024}}.
func dateFunctionComparison(fn ir.DateFunction, value ast.Value, extract ir.Extract, field objectinfo.FieldInfo) (ir.Predicate, error) {
	category := categoryOf(field.DataType)
	if category != categoryDate && category != categoryDateTime {
		return nil, compileErrorf("Date function %s is not supported for type %s.", fn, field.DataType)
	}
	obj, ok := value.(*ast.ObjectValue)
	if !ok {
		return nil, compileErrorf("Filter for date function %s should be an object.", fn)
	}

	var errs errorList
	predicates := make([]ir.Predicate, 0, len(obj.Fields))
	for _, opField := range obj.Fields {
		op := nameOf(opField.Name)
		if op != opEq {
			errs.add(compileErrorf("Comparison operator %s is not supported for date function %s.", op, fn))
			continue
		}
		v, ok := opField.Value.(*ast.IntValue)
		if !ok {
			errs.add(compileErrorf("Comparison value must be a %s.", objectinfo.TypeInt))
			continue
		}
		n, err := strconv.ParseInt(v.Value, 10, 64)
		if err != nil {
			errs.add(compileErrorf("Comparison value must be a %s.", objectinfo.TypeInt))
			continue
		}
		predicates = append(predicates, ir.Comparison{
			Operator: ir.OpEq,
			Left:     ir.DateFunctionCall{Function: fn, Extract: extract},
			Right:    ir.IntLiteral{Value: n},
		})
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	return ir.Combine(ir.OpAnd, predicates...), nil
}
