package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lds-graphql-eval/internal/ir"
	"lds-graphql-eval/internal/testutil/fixtures"
)

func dateFilter(t *testing.T, where string) (ir.Predicate, error) {
	t.Helper()

	container, err := RecordFilter(parseValue(t, where), "TimeSheet", "TimeSheet", fixtures.ObjectInfos())
	if err != nil {
		return nil, err
	}
	require.NotNil(t, container)
	return container.Predicate, nil
}

func TestDateFilter_ValueRoundTrip(t *testing.T) {
	got, err := dateFilter(t, `{StartDate: {eq: {value: "2024-02-03"}}}`)
	require.NoError(t, err)
	assert.Equal(t, eq(stored("TimeSheet", "StartDate"), ir.DateValue{Value: "2024-02-03"}), got)

	got, err = dateFilter(t, `{CreatedDate: {gt: {value: "2024-02-03T10:11:12.000Z"}}}`)
	require.NoError(t, err)
	assert.Equal(t, ir.Comparison{
		Operator: ir.OpGt,
		Left:     stored("TimeSheet", "CreatedDate"),
		Right:    ir.DateTimeValue{Value: "2024-02-03T10:11:12.000Z"},
	}, got)
}

func TestDateFilter_Literals(t *testing.T) {
	got, err := dateFilter(t, `{StartDate: {lte: {literal: TODAY}}}`)
	require.NoError(t, err)
	assert.Equal(t, ir.Comparison{Operator: ir.OpLte, Left: stored("TimeSheet", "StartDate"), Right: ir.DateEnum{Value: ir.DateToday}}, got)

	got, err = dateFilter(t, `{CreatedDate: {eq: {literal: TOMORROW}}}`)
	require.NoError(t, err)
	assert.Equal(t, eq(stored("TimeSheet", "CreatedDate"), ir.DateTimeEnum{Value: ir.DateTomorrow}), got)
}

func TestDateFilter_RangeLowering(t *testing.T) {
	compareDate := stored("TimeSheet", "StartDate")
	day := func(n int) ir.RelativeDate { return ir.RelativeDate{Unit: ir.UnitDay, Amount: n} }
	month := func(n int, offset ir.RelativeOffset) ir.RelativeDate {
		return ir.RelativeDate{Unit: ir.UnitMonth, Amount: n, Offset: offset}
	}

	tests := []struct {
		name  string
		where string
		want  ir.Predicate
	}{
		{
			"last n days",
			`{StartDate: {eq: {range: {last_n_days: 4}}}}`,
			ir.Between{CompareDate: compareDate, Start: day(-4), End: day(0)},
		},
		{
			"next n days",
			`{StartDate: {eq: {range: {next_n_days: 3}}}}`,
			ir.Between{CompareDate: compareDate, Start: day(1), End: day(3)},
		},
		{
			"last n months",
			`{StartDate: {eq: {range: {last_n_months: 2}}}}`,
			ir.Between{CompareDate: compareDate, Start: month(-2, ir.OffsetStart), End: month(-1, ir.OffsetEnd)},
		},
		{
			"next n months",
			`{StartDate: {eq: {range: {next_n_months: 2}}}}`,
			ir.Between{CompareDate: compareDate, Start: month(1, ir.OffsetStart), End: month(2, ir.OffsetEnd)},
		},
		{
			"ne negates",
			`{StartDate: {ne: {range: {last_n_days: 4}}}}`,
			ir.Not{Child: ir.Between{CompareDate: compareDate, Start: day(-4), End: day(0)}},
		},
		{
			"gte uses start",
			`{StartDate: {gte: {range: {last_n_days: 4}}}}`,
			ir.Comparison{Operator: ir.OpGte, Left: compareDate, Right: day(-4)},
		},
		{
			"lt uses start",
			`{StartDate: {lt: {range: {next_n_days: 2}}}}`,
			ir.Comparison{Operator: ir.OpLt, Left: compareDate, Right: day(1)},
		},
		{
			"gt uses end",
			`{StartDate: {gt: {range: {next_n_months: 1}}}}`,
			ir.Comparison{Operator: ir.OpGt, Left: compareDate, Right: month(1, ir.OffsetEnd)},
		},
		{
			"lte uses end",
			`{StartDate: {lte: {range: {last_n_days: 7}}}}`,
			ir.Comparison{Operator: ir.OpLte, Left: compareDate, Right: day(0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dateFilter(t, tt.where)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateFilter_DateTimeRangeHasTime(t *testing.T) {
	got, err := dateFilter(t, `{CreatedDate: {eq: {range: {last_n_days: 1}}}}`)
	require.NoError(t, err)
	assert.Equal(t, ir.Between{
		CompareDate: stored("TimeSheet", "CreatedDate"),
		Start:       ir.RelativeDate{Unit: ir.UnitDay, Amount: -1, HasTime: true},
		End:         ir.RelativeDate{Unit: ir.UnitDay, Amount: 0, HasTime: true},
	}, got)
}

func TestDateFilter_InList(t *testing.T) {
	got, err := dateFilter(t, `{StartDate: {in: [{value: "2024-01-01"}, {literal: TODAY}]}}`)
	require.NoError(t, err)
	assert.Equal(t, ir.Comparison{
		Operator: ir.OpIn,
		Left:     stored("TimeSheet", "StartDate"),
		Right:    ir.DateArray{Values: []ir.Expression{ir.DateValue{Value: "2024-01-01"}, ir.DateEnum{Value: ir.DateToday}}},
	}, got)

	got, err = dateFilter(t, `{CreatedDate: {nin: [{value: "2024-01-01T00:00:00.000Z"}]}}`)
	require.NoError(t, err)
	assert.Equal(t, ir.Comparison{
		Operator: ir.OpNin,
		Left:     stored("TimeSheet", "CreatedDate"),
		Right:    ir.DateTimeArray{Values: []ir.Expression{ir.DateTimeValue{Value: "2024-01-01T00:00:00.000Z"}}},
	}, got)
}

func TestDateFilter_NullValue(t *testing.T) {
	where := parseValue(t, `{StartDate: {eq: {value: null}, ne: null}}`)

	container, err := RecordFilter(where, "TimeSheet", "TimeSheet", fixtures.ObjectInfos())
	require.NoError(t, err)
	assert.Equal(t, and(
		ir.NullComparison{Operator: ir.OpIs, Left: stored("TimeSheet", "StartDate")},
		ir.NullComparison{Operator: ir.OpIsNot, Left: stored("TimeSheet", "StartDate")},
	), container.Predicate)

	where = parseValue(t, `{StartDate: {lt: {value: null}}}`)
	_, err = RecordFilter(where, "TimeSheet", "TimeSheet", fixtures.ObjectInfos())
	assert.Equal(t, []string{"Null can not be compared with lt."}, Messages(err))
}

func TestDateFilter_InListNullElement(t *testing.T) {
	where := parseValue(t, `{StartDate: {in: [null]}}`)

	container, err := RecordFilter(where, "TimeSheet", "TimeSheet", fixtures.ObjectInfos())
	require.NoError(t, err)
	assert.Equal(t, ir.Comparison{
		Operator: ir.OpIn,
		Left:     stored("TimeSheet", "StartDate"),
		Right:    ir.DateArray{Values: []ir.Expression{ir.NullLiteral{}}},
	}, container.Predicate)
}

func TestDateFilter_DateFunctions(t *testing.T) {
	got, err := dateFilter(t, `{CreatedDate: {CALENDAR_YEAR: {eq: 2024}, DAY_OF_MONTH: {eq: 1}}}`)
	require.NoError(t, err)
	assert.Equal(t, and(
		eq(ir.DateFunctionCall{Function: ir.CalendarYear, Extract: stored("TimeSheet", "CreatedDate")}, ir.IntLiteral{Value: 2024}),
		eq(ir.DateFunctionCall{Function: ir.DayOfMonth, Extract: stored("TimeSheet", "CreatedDate")}, ir.IntLiteral{Value: 1}),
	), got)
}

func TestDateFilter_Errors(t *testing.T) {
	tests := []struct {
		name  string
		where string
		want  []string
	}{
		{"bad date format", `{StartDate: {eq: {value: "2024-2-3"}}}`, []string{"Date format must be YYYY-MM-DD."}},
		{"date given to datetime", `{CreatedDate: {eq: {value: "2024-02-03"}}}`, []string{"DateTime format must be YYYY-MM-DDTHH:MM:SS.SSSZ."}},
		{"unknown literal", `{StartDate: {eq: {literal: YESTERDAY}}}`, []string{"Unknown Date literal YESTERDAY."}},
		{"unknown datetime literal", `{CreatedDate: {eq: {literal: NOW}}}`, []string{"Unknown DateTime literal NOW."}},
		{"plain string", `{StartDate: {eq: "2024-02-03"}}`, []string{"Comparison value must be a Date."}},
		{"two inputs", `{StartDate: {eq: {value: "2024-02-03", literal: TODAY}}}`, []string{"Comparison value must be a Date."}},
		{"like", `{StartDate: {like: {value: "2024-02-03"}}}`, []string{"Comparison operator like is not supported for type Date."}},
		{"in requires list", `{StartDate: {in: {value: "2024-02-03"}}}`, []string{"Comparison value must be a Date array."}},
		{"bad list element", `{StartDate: {in: ["2024-02-03", {value: "x"}]}}`, []string{
			`"2024-02-03" is not a valid value in list of ObjectValue.`,
			"Date format must be YYYY-MM-DD.",
		}},
		{"unknown range", `{StartDate: {eq: {range: {last_n_years: 1}}}}`, []string{"Unknown range last_n_years."}},
		{"range must be positive", `{StartDate: {eq: {range: {last_n_days: 0}}}}`, []string{"Range value for last_n_days must be a positive integer."}},
		{"range operator", `{StartDate: {like: {range: {last_n_days: 2}}}}`, []string{"Comparison operator like is not supported for type Date."}},
		{"date function operator", `{StartDate: {DAY_OF_YEAR: {gt: 3}}}`, []string{"Comparison operator gt is not supported for date function DAY_OF_YEAR."}},
		{"date function value", `{StartDate: {WEEK_IN_YEAR: {eq: "3"}}}`, []string{"Comparison value must be a Int."}},
		{"date function on string", `{TimeSheetNumber: {CALENDAR_MONTH: {eq: 3}}}`, []string{"Date function CALENDAR_MONTH is not supported for type String."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dateFilter(t, tt.where)
			require.Error(t, err)
			assert.Equal(t, tt.want, Messages(err))
		})
	}
}
