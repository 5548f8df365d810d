// Package ir defines the intermediate representation produced by the planner
// and consumed by the SQL generator. Every node is a plain value; a tree is
// built once per compilation and never mutated afterwards.
package ir

// Expression is a value participating in a predicate: a literal, or a
// reference into one joined row's JSON document.
type Expression interface {
	isExpression()
}

// DateEnumValue names a date literal resolved relative to the current day.
type DateEnumValue string

const (
	DateToday    DateEnumValue = "today"
	DateTomorrow DateEnumValue = "tomorrow"
)

// RelativeUnit is the granularity of a relative date bound.
type RelativeUnit string

const (
	UnitDay   RelativeUnit = "day"
	UnitMonth RelativeUnit = "month"
)

// RelativeOffset anchors a month bound to the first or last day of the month.
type RelativeOffset string

const (
	OffsetNone  RelativeOffset = ""
	OffsetStart RelativeOffset = "start"
	OffsetEnd   RelativeOffset = "end"
)

// DateFunction extracts one calendar component from a date or datetime.
type DateFunction string

const (
	DayOfMonth    DateFunction = "DAY_OF_MONTH"
	DayOfYear     DateFunction = "DAY_OF_YEAR"
	WeekInYear    DateFunction = "WEEK_IN_YEAR"
	CalendarMonth DateFunction = "CALENDAR_MONTH"
	CalendarYear  DateFunction = "CALENDAR_YEAR"
)

// Extract references Path inside the JSON document of the row joined as JSONAlias.
// Path is dotted and has no leading "$.", e.g. "data.fields.Name.value".
type Extract struct {
	JSONAlias string
	Path      string
}

type StringLiteral struct {
	Value string
}

type DoubleLiteral struct {
	Value float64
}

type IntLiteral struct {
	Value int64
}

type BooleanLiteral struct {
	Value bool
}

// NullLiteral is the GraphQL null literal.
type NullLiteral struct{}

// StringArray holds StringLiteral or NullLiteral elements.
type StringArray struct {
	Values []Expression
}

// NumberArray holds IntLiteral, DoubleLiteral or NullLiteral elements.
type NumberArray struct {
	Values []Expression
}

// DateValue is a calendar date formatted YYYY-MM-DD.
type DateValue struct {
	Value string
}

type DateEnum struct {
	Value DateEnumValue
}

// DateTimeValue is a UTC timestamp formatted YYYY-MM-DDTHH:MM:SS.SSSZ.
type DateTimeValue struct {
	Value string
}

type DateTimeEnum struct {
	Value DateEnumValue
}

// DateArray holds DateValue, DateEnum or NullLiteral elements.
type DateArray struct {
	Values []Expression
}

// DateTimeArray holds DateTimeValue, DateTimeEnum or NullLiteral elements.
type DateTimeArray struct {
	Values []Expression
}

// RelativeDate is a bound Amount units away from now. Month bounds carry an
// Offset so they snap to the start or end of the month.
type RelativeDate struct {
	Unit    RelativeUnit
	Amount  int
	Offset  RelativeOffset
	HasTime bool
}

// DateFunctionCall applies Function to the value referenced by Extract.
type DateFunctionCall struct {
	Function DateFunction
	Extract  Extract
}

func (Extract) isExpression()          {}
func (StringLiteral) isExpression()    {}
func (DoubleLiteral) isExpression()    {}
func (IntLiteral) isExpression()       {}
func (BooleanLiteral) isExpression()   {}
func (NullLiteral) isExpression()      {}
func (StringArray) isExpression()      {}
func (NumberArray) isExpression()      {}
func (DateValue) isExpression()        {}
func (DateEnum) isExpression()         {}
func (DateTimeValue) isExpression()    {}
func (DateTimeEnum) isExpression()     {}
func (DateArray) isExpression()        {}
func (DateTimeArray) isExpression()    {}
func (RelativeDate) isExpression()     {}
func (DateFunctionCall) isExpression() {}
