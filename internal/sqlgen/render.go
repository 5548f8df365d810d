package sqlgen

import (
	"fmt"
	"strconv"
	"strings"

	"lds-graphql-eval/internal/ir"
	"lds-graphql-eval/internal/sqlutil"
)

var comparisonOperators = map[ir.ComparisonOperator]string{
	ir.OpEq:   "=",
	ir.OpNe:   "!=",
	ir.OpLt:   "<",
	ir.OpLte:  "<=",
	ir.OpGt:   ">",
	ir.OpGte:  ">=",
	ir.OpLike: "LIKE",
	ir.OpIn:   "IN",
	ir.OpNin:  "NOT IN",
}

// isoDateTime formats SQLite times the way DateTime values are stored, so
// bounds compare correctly as text.
const isoDateTime = "'%Y-%m-%dT%H:%M:%fZ'"

var dateFunctionFormats = map[ir.DateFunction]string{
	ir.DayOfMonth:    "%d",
	ir.DayOfYear:     "%j",
	ir.WeekInYear:    "%W",
	ir.CalendarMonth: "%m",
	ir.CalendarYear:  "%Y",
}

// scope renders expressions for one row source. Aliases joined in the current
// FROM clause are read as table columns; any other alias is read through the
// "<alias>.<column>" column exposed by an enclosing select.
type scope struct {
	own map[string]bool
	col string
}

func newScope(aliases []string, column string) *scope {
	s := &scope{own: make(map[string]bool, len(aliases)), col: column}
	for _, alias := range aliases {
		s.own[alias] = true
	}
	return s
}

// with returns a copy of s that also owns aliases.
func (s *scope) with(aliases ...string) *scope {
	out := &scope{own: make(map[string]bool, len(s.own)+len(aliases)), col: s.col}
	for alias := range s.own {
		out.own[alias] = true
	}
	for _, alias := range aliases {
		out.own[alias] = true
	}
	return out
}

// column is the name under which alias's document is exposed to outer selects.
func (s *scope) column(alias string) string {
	return alias + "." + s.col
}

func (s *scope) extract(e ir.Extract) string {
	if s.own[e.JSONAlias] {
		return fmt.Sprintf("json_extract(%s.%s, %s)",
			sqlutil.QuoteIdentifier(e.JSONAlias), sqlutil.QuoteIdentifier(s.col), jsonPath(e.Path))
	}
	return fmt.Sprintf("json_extract(%s, %s)", sqlutil.QuoteIdentifier(s.column(e.JSONAlias)), jsonPath(e.Path))
}

func (s *scope) orderBy(o ir.OrderBy) string {
	x := s.extract(o.Extract)
	nulls := "ASC"
	if o.NullsFirst {
		nulls = "DESC"
	}
	dir := "ASC"
	if !o.Asc {
		dir = "DESC"
	}
	return fmt.Sprintf("CASE WHEN %s IS NULL THEN 1 ELSE 0 END %s, %s %s", x, nulls, x, dir)
}

func (s *scope) expression(e ir.Expression) (string, []interface{}, error) {
	switch v := e.(type) {
	case ir.Extract:
		return s.extract(v), nil, nil
	case ir.StringLiteral:
		return "?", []interface{}{sqlutil.QuoteString(v.Value)}, nil
	case ir.IntLiteral:
		return strconv.FormatInt(v.Value, 10), nil, nil
	case ir.DoubleLiteral:
		return strconv.FormatFloat(v.Value, 'f', -1, 64), nil, nil
	case ir.BooleanLiteral:
		return strconv.FormatBool(v.Value), nil, nil
	case ir.NullLiteral:
		return "null", nil, nil
	case ir.DateValue:
		return "?", []interface{}{sqlutil.QuoteString(v.Value)}, nil
	case ir.DateTimeValue:
		return "?", []interface{}{sqlutil.QuoteString(v.Value)}, nil
	case ir.DateEnum:
		return dateEnum("date", nil, v.Value)
	case ir.DateTimeEnum:
		return dateEnum("strftime", []string{"'start of day'"}, v.Value)
	case ir.RelativeDate:
		return relativeDate(v), []interface{}{sqlutil.QuoteString(relativeModifier(v))}, nil
	case ir.DateFunctionCall:
		format, ok := dateFunctionFormats[v.Function]
		if !ok {
			return "", nil, fmt.Errorf("unsupported date function %s", v.Function)
		}
		return fmt.Sprintf("CAST(strftime(%s, %s) AS INTEGER)", sqlutil.QuoteString(format), s.extract(v.Extract)), nil, nil
	case ir.StringArray:
		return s.list(v.Values)
	case ir.NumberArray:
		return s.list(v.Values)
	case ir.DateArray:
		return s.list(v.Values)
	case ir.DateTimeArray:
		return s.list(v.Values)
	default:
		return "", nil, fmt.Errorf("unsupported expression %T", e)
	}
}

func (s *scope) list(values []ir.Expression) (string, []interface{}, error) {
	parts := make([]string, 0, len(values))
	var args []interface{}
	for _, v := range values {
		part, partArgs, err := s.expression(v)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, part)
		args = append(args, partArgs...)
	}
	return "(" + strings.Join(parts, ", ") + ")", args, nil
}

func dateEnum(fn string, modifiers []string, v ir.DateEnumValue) (string, []interface{}, error) {
	days := 0
	switch v {
	case ir.DateToday:
	case ir.DateTomorrow:
		days = 1
	default:
		return "", nil, fmt.Errorf("unsupported date literal %s", v)
	}
	args := append(timeArgs(fn), modifiers...)
	args = append(args, "?")
	return fmt.Sprintf("%s(%s)", fn, strings.Join(args, ", ")), []interface{}{sqlutil.QuoteString(fmt.Sprintf("%+d days", days))}, nil
}

// timeArgs returns the leading arguments of a SQLite time function call.
func timeArgs(fn string) []string {
	if fn == "strftime" {
		return []string{isoDateTime, "'now'"}
	}
	return []string{"'now'"}
}

// relativeDate renders the date function for a relative bound. The amount is
// bound separately by relativeModifier.
func relativeDate(v ir.RelativeDate) string {
	fn := "date"
	if v.HasTime {
		fn = "strftime"
	}
	args := timeArgs(fn)
	if v.Offset != ir.OffsetNone {
		if v.Unit == ir.UnitMonth {
			args = append(args, "'start of month'")
		} else {
			args = append(args, "'start of day'")
		}
	}
	args = append(args, "?")
	if v.Offset == ir.OffsetEnd {
		if v.HasTime {
			args = append(args, "'-0.001 seconds'")
		} else {
			args = append(args, "'-1 day'")
		}
	}
	return fmt.Sprintf("%s(%s)", fn, strings.Join(args, ", "))
}

func relativeModifier(v ir.RelativeDate) string {
	amount := v.Amount
	unit := "days"
	if v.Unit == ir.UnitMonth {
		unit = "months"
	}
	if v.Offset == ir.OffsetEnd {
		// The end of a period is the start of the next one, less one step.
		amount++
	}
	return fmt.Sprintf("%+d %s", amount, unit)
}

func (s *scope) predicate(p ir.Predicate) (string, []interface{}, error) {
	switch v := p.(type) {
	case ir.Comparison:
		return s.comparison(v)
	case ir.NullComparison:
		left, args, err := s.expression(v.Left)
		if err != nil {
			return "", nil, err
		}
		if v.Operator == ir.OpIsNot {
			return left + " IS NOT NULL", args, nil
		}
		return left + " IS NULL", args, nil
	case ir.Between:
		parts, args, err := s.expressions(v.CompareDate, v.Start, v.End)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%s BETWEEN %s AND %s", parts[0], parts[1], parts[2]), args, nil
	case ir.Not:
		child, args, err := s.predicate(v.Child)
		if err != nil {
			return "", nil, err
		}
		return "NOT (" + child + ")", args, nil
	case ir.Compound:
		return s.compound(v)
	case ir.Exists:
		return s.exists(v)
	default:
		return "", nil, fmt.Errorf("unsupported predicate %T", p)
	}
}

func (s *scope) expressions(exprs ...ir.Expression) ([]string, []interface{}, error) {
	parts := make([]string, len(exprs))
	var args []interface{}
	for i, e := range exprs {
		part, partArgs, err := s.expression(e)
		if err != nil {
			return nil, nil, err
		}
		parts[i] = part
		args = append(args, partArgs...)
	}
	return parts, args, nil
}

func (s *scope) comparison(c ir.Comparison) (string, []interface{}, error) {
	op, ok := comparisonOperators[c.Operator]
	if !ok {
		return "", nil, fmt.Errorf("unsupported comparison operator %s", c.Operator)
	}
	parts, args, err := s.expressions(c.Left, c.Right)
	if err != nil {
		return "", nil, err
	}
	sql := parts[0] + " " + op + " " + parts[1]
	if c.EscapedLike {
		sql += " ESCAPE " + sqlutil.QuoteString(sqlutil.LikeEscape)
	}
	if c.NoCase {
		sql += " COLLATE NOCASE"
	}
	return sql, args, nil
}

func (s *scope) compound(c ir.Compound) (string, []interface{}, error) {
	sep := " AND "
	if c.Operator == ir.OpOr {
		sep = " OR "
	}
	parts := make([]string, 0, len(c.Children))
	var args []interface{}
	for _, child := range c.Children {
		part, partArgs, err := s.predicate(child)
		if err != nil {
			return "", nil, err
		}
		if nested, ok := child.(ir.Compound); ok && nested.Operator != c.Operator {
			part = "(" + part + ")"
		}
		parts = append(parts, part)
		args = append(args, partArgs...)
	}
	return strings.Join(parts, sep), args, nil
}

func (s *scope) exists(e ir.Exists) (string, []interface{}, error) {
	inner := s.with(append([]string{e.Alias}, e.JoinNames...)...)
	from := recordsCTE + " as " + sqlutil.QuoteString(e.Alias)
	for _, join := range e.JoinNames {
		from += " join " + recordsCTE + " as " + sqlutil.QuoteString(join)
	}
	if e.Predicate == nil {
		return "EXISTS (SELECT 1 FROM " + from + ")", nil, nil
	}
	where, args, err := inner.predicate(e.Predicate)
	if err != nil {
		return "", nil, err
	}
	return "EXISTS (SELECT 1 FROM " + from + " WHERE " + where + ")", args, nil
}
