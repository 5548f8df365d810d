// Package sqlgen renders a compiled RootQuery as a single SQLite statement
// over a JSON key/value table. The statement returns one row with one column,
// json, holding the assembled response document.
package sqlgen

import (
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"lds-graphql-eval/internal/ir"
	"lds-graphql-eval/internal/sqlutil"
)

// recordsCTE names the CTE holding every record document.
const recordsCTE = "recordsCTE"

// DefaultKeyPrefix selects record entries from the key/value table.
const DefaultKeyPrefix = "UiApi::RecordRepresentation:"

// Mapping names the physical key/value table.
type Mapping struct {
	JSONTable  string
	JSONColumn string
	KeyColumn  string
	// KeyPrefix selects record rows by key. Empty means DefaultKeyPrefix.
	KeyPrefix string
}

// DefaultMapping is the table layout used by the durable store.
func DefaultMapping() Mapping {
	return Mapping{
		JSONTable:  "lds_data",
		JSONColumn: "data",
		KeyColumn:  "key",
		KeyPrefix:  DefaultKeyPrefix,
	}
}

func (m Mapping) validate() error {
	if m.JSONTable == "" || m.JSONColumn == "" || m.KeyColumn == "" {
		return errors.New("mapping requires a JSON table, JSON column and key column")
	}
	return nil
}

// Result is a rendered statement. Bindings hold one SQL string literal per
// ? placeholder, in order, each already single-quoted.
type Result struct {
	SQL      string   `json:"sql"`
	Bindings []string `json:"bindings"`
}

// Generate renders root against mapping.
func Generate(root ir.RootQuery, mapping Mapping) (*Result, error) {
	if err := mapping.validate(); err != nil {
		return nil, err
	}
	if len(root.Connections) == 0 {
		return nil, errors.New("query has no connections to generate")
	}
	if mapping.KeyPrefix == "" {
		mapping.KeyPrefix = DefaultKeyPrefix
	}

	g := &generator{mapping: mapping}
	pairs := make([]string, 0, len(root.Connections))
	var args []interface{}
	for _, conn := range root.Connections {
		edges, edgeArgs, err := g.connection(conn)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, jsonPath("data.uiapi.query."+conn.APIName+".edges")+", json(("+edges+"))")
		args = append(args, edgeArgs...)
	}

	cte := fmt.Sprintf("WITH %s AS (SELECT %s FROM %s WHERE %s LIKE %s ESCAPE %s)",
		recordsCTE,
		sqlutil.QuoteIdentifier(mapping.JSONColumn),
		sqlutil.QuoteIdentifier(mapping.JSONTable),
		sqlutil.QuoteIdentifier(mapping.KeyColumn),
		sqlutil.QuoteString(sqlutil.EscapeLike(mapping.KeyPrefix)+"%"),
		sqlutil.QuoteString(sqlutil.LikeEscape),
	)
	query, queryArgs, err := sq.Select().
		Prefix(cte).
		Column(sq.Expr("json_set('{}', "+strings.Join(pairs, ", ")+") AS json", args...)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build statement: %w", err)
	}

	bindings := make([]string, len(queryArgs))
	for i, arg := range queryArgs {
		s, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected binding type %T", arg)
		}
		bindings[i] = s
	}
	return &Result{SQL: query, Bindings: bindings}, nil
}

type generator struct {
	mapping Mapping
}

// connection renders a scalar subquery producing the JSON array of edges of
// conn. Child connections are nested subqueries correlated through the
// columns of the enclosing row.
func (g *generator) connection(conn ir.Connection) (string, []interface{}, error) {
	own := append([]string{conn.Alias}, conn.JoinNames...)
	for _, join := range conn.LeftJoins {
		own = append(own, join.Alias)
	}
	scope := newScope(own, g.mapping.JSONColumn)

	columns := make([]string, 0, len(own))
	for _, alias := range own {
		columns = append(columns, fmt.Sprintf("%s.%s AS %s",
			sqlutil.QuoteIdentifier(alias),
			sqlutil.QuoteIdentifier(g.mapping.JSONColumn),
			sqlutil.QuoteIdentifier(scope.column(alias)),
		))
	}

	inner := sq.Select(columns...).From(recordsCTE + " as " + sqlutil.QuoteString(conn.Alias))
	for _, join := range conn.JoinNames {
		inner = inner.JoinClause("join " + recordsCTE + " as " + sqlutil.QuoteString(join))
	}
	for _, join := range conn.LeftJoins {
		on, onArgs, err := scope.predicate(join.On)
		if err != nil {
			return "", nil, err
		}
		inner = inner.JoinClause("left join "+recordsCTE+" as "+sqlutil.QuoteString(join.Alias)+" on "+on, onArgs...)
	}
	if conn.Predicate != nil {
		where, whereArgs, err := scope.predicate(conn.Predicate)
		if err != nil {
			return "", nil, err
		}
		inner = inner.Where(sq.Expr(where, whereArgs...))
	}
	if len(conn.OrderBy) > 0 {
		clauses := make([]string, 0, len(conn.OrderBy))
		for _, o := range conn.OrderBy {
			clauses = append(clauses, scope.orderBy(o))
		}
		inner = inner.OrderBy(clauses...)
	}
	if conn.First != nil {
		inner = inner.Suffix(fmt.Sprintf("LIMIT %d", *conn.First))
	}
	innerSQL, innerArgs, err := inner.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build %s subquery: %w", conn.Alias, err)
	}

	// Projections read the columns exposed by the inner select.
	projection := newScope(nil, g.mapping.JSONColumn)
	pairs := make([]string, 0, len(conn.Fields))
	var rowArgs []interface{}
	for _, f := range conn.Fields {
		switch field := f.(type) {
		case ir.ScalarField:
			pairs = append(pairs, jsonPath(field.Path)+", "+projection.extract(field.Extract))
		case ir.ChildField:
			child, childArgs, err := g.connection(field.Connection)
			if err != nil {
				return "", nil, err
			}
			pairs = append(pairs, jsonPath(field.Path)+", json(("+child+"))")
			rowArgs = append(rowArgs, childArgs...)
		default:
			return "", nil, fmt.Errorf("unsupported field %T", f)
		}
	}

	row := "json_set('{}'"
	if len(pairs) > 0 {
		row += ", " + strings.Join(pairs, ", ")
	}
	row += ")"

	edges := "SELECT json_group_array(" + row + ") FROM (" + innerSQL + ")"
	return edges, append(rowArgs, innerArgs...), nil
}

func jsonPath(path string) string {
	return sqlutil.QuoteString("$." + path)
}
