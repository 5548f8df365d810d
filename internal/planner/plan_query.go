package planner

import (
	"errors"
	"slices"
	"strconv"

	"github.com/graphql-go/graphql/language/ast"

	"lds-graphql-eval/internal/ir"
	"lds-graphql-eval/internal/objectinfo"
)

const connectionDirective = "connection"

type planOptions struct {
	userID string
	limits *PlanLimits
}

// PlanOption customizes compilation.
type PlanOption func(*planOptions)

// WithUserID sets the viewer id used by scope filters.
func WithUserID(userID string) PlanOption {
	return func(o *planOptions) {
		o.userID = userID
	}
}

// WithLimits rejects queries whose compiled shape exceeds limits.
func WithLimits(limits PlanLimits) PlanOption {
	return func(o *planOptions) {
		o.limits = &limits
	}
}

// Transform compiles every query operation in doc into a normalized RootQuery.
// Fields carrying the @connection directive start a record connection named
// after the field; plain fields above them (uiapi, query) are traversed.
// All validation failures are returned together as Errors.
func Transform(doc *ast.Document, infos objectinfo.Map, opts ...PlanOption) (*ir.RootQuery, error) {
	if doc == nil {
		return nil, errors.New("document is required")
	}
	options := &planOptions{}
	for _, opt := range opts {
		opt(options)
	}

	t := &transformer{
		infos:     infos,
		userID:    options.userID,
		fragments: collectFragments(doc),
	}

	var (
		errs        errorList
		connections []ir.Connection
	)
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operation := string(op.Operation); operation != "" && operation != "query" {
			errs.add(compileErrorf("Only query operations are supported, found %s.", operation))
			continue
		}
		if len(op.VariableDefinitions) > 0 {
			errs.add(compileErrorf("Variables are not supported."))
			continue
		}
		found, err := t.rootConnections(op.SelectionSet)
		if err != nil {
			errs.add(err)
			continue
		}
		connections = append(connections, found...)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	if len(connections) == 0 {
		return nil, compileErrorf("No @connection fields found in query.")
	}

	root := ir.Normalize(ir.RootQuery{Connections: connections})
	if options.limits != nil {
		if err := validateLimits(EstimateCost(root), *options.limits); err != nil {
			return nil, err
		}
	}
	return &root, nil
}

type transformer struct {
	infos     objectinfo.Map
	userID    string
	fragments map[string]*ast.FragmentDefinition
}

// parentLink correlates a child connection with the parent row.
type parentLink struct {
	alias string
	// field is the child's field holding the parent id.
	field string
}

func (t *transformer) rootConnections(set *ast.SelectionSet) ([]ir.Connection, error) {
	var (
		errs errorList
		out  []ir.Connection
	)
	for _, field := range t.fields(set) {
		if hasDirective(field.Directives, connectionDirective) {
			name := nameOf(field.Name)
			conn, err := t.connection(field, name, name, nil)
			if err != nil {
				errs.add(err)
				continue
			}
			out = append(out, conn)
			continue
		}
		nested, err := t.rootConnections(field.SelectionSet)
		if err != nil {
			errs.add(err)
			continue
		}
		out = append(out, nested...)
	}
	return out, errs.err()
}

func (t *transformer) connection(field *ast.Field, apiName, alias string, parent *parentLink) (ir.Connection, error) {
	if !t.infos.HasType(apiName) {
		return ir.Connection{}, typeNotFound(apiName)
	}

	args := make(map[string]ast.Value, len(field.Arguments))
	for _, arg := range field.Arguments {
		args[nameOf(arg.Name)] = arg.Value
	}

	var errs errorList
	where, err := RecordFilter(args["where"], alias, apiName, t.infos)
	errs.add(err)
	scope, err := ScopeFilter(args["scope"], alias, apiName, t.infos, t.userID)
	errs.add(err)
	orderBys, err := ParseOrderBy(args["orderBy"], alias, apiName, t.infos)
	errs.add(err)

	var first *int
	if value, ok := args["first"]; ok {
		n, err := firstArgument(value)
		errs.add(err)
		first = n
	}

	rec := &recordSelection{}
	t.edges(field.SelectionSet, alias, apiName, rec)
	errs.add(rec.errs.err())

	if err := errs.err(); err != nil {
		return ir.Connection{}, err
	}

	var joins joinSet
	joins.addContainer(where)
	joins.addContainer(scope)
	orderBy := make([]ir.OrderBy, 0, len(orderBys))
	for _, c := range orderBys {
		orderBy = append(orderBy, c.OrderBy)
		joins.add(c.JoinNames, c.JoinPredicates)
	}
	// Hops the filters already join stay inner joins.
	var leftJoins []ir.Join
	for _, j := range rec.left {
		if !slices.Contains(joins.names, j.Alias) {
			leftJoins = append(leftJoins, j)
		}
	}

	var predicates []ir.Predicate
	if parent != nil {
		predicates = append(predicates, ir.Comparison{
			Operator: ir.OpEq,
			Left:     recordExtract(alias, "data.fields."+parent.field+".value"),
			Right:    recordExtract(parent.alias, pathID),
		})
	}
	if where != nil {
		predicates = append(predicates, where.Predicate)
	}
	if scope != nil {
		predicates = append(predicates, scope.Predicate)
	}
	predicates = append(predicates, joins.predicates...)
	predicates = append(predicates, apiNamePredicate(alias, apiName))

	return ir.Connection{
		APIName:   apiName,
		Alias:     alias,
		Fields:    rec.fields,
		Predicate: ir.Combine(ir.OpAnd, predicates...),
		OrderBy:   orderBy,
		First:     first,
		JoinNames: joins.names,
		LeftJoins: leftJoins,
	}, nil
}

func firstArgument(value ast.Value) (*int, error) {
	v, ok := value.(*ast.IntValue)
	if !ok {
		return nil, compileErrorf("first type should be an IntValue.")
	}
	n, err := strconv.Atoi(v.Value)
	if err != nil || n < 0 {
		return nil, compileErrorf("first type should be an IntValue.")
	}
	return &n, nil
}

// recordSelection accumulates the projection of one connection, including
// fields read through spanning relationships.
type recordSelection struct {
	fields []ir.Field
	left   []ir.Join
	errs   errorList
}

func (t *transformer) edges(set *ast.SelectionSet, alias, apiName string, rec *recordSelection) {
	for _, edges := range t.fields(set) {
		if nameOf(edges.Name) != "edges" {
			continue
		}
		for _, node := range t.fields(edges.SelectionSet) {
			if nameOf(node.Name) == "node" {
				t.record(node.SelectionSet, alias, apiName, "node", rec)
			}
		}
	}
}

// record projects the selections of one record reached as alias. prefix is
// the output path of the record relative to its edge.
func (t *transformer) record(set *ast.SelectionSet, alias, apiName, prefix string, rec *recordSelection) {
	rec.fields = append(rec.fields,
		ir.ScalarField{Path: prefix + ".Id", Extract: recordExtract(alias, pathID)},
		ir.ScalarField{Path: prefix + "._drafts", Extract: recordExtract(alias, pathDrafts)},
		ir.ScalarField{Path: prefix + "._metadata", Extract: recordExtract(alias, pathMetadata)},
	)

	for _, f := range t.fields(set) {
		name := nameOf(f.Name)
		path := prefix + "." + name

		switch name {
		case "__typename":
			continue
		case "Id":
			rec.fields = append(rec.fields, ir.ScalarField{Path: path, Extract: recordExtract(alias, pathID)})
			continue
		case "ApiName":
			rec.fields = append(rec.fields, ir.ScalarField{Path: path, Extract: recordExtract(alias, pathAPIName)})
			continue
		case "WeakEtag":
			rec.fields = append(rec.fields, ir.ScalarField{Path: path, Extract: recordExtract(alias, pathWeakEtag)})
			continue
		}

		if hasDirective(f.Directives, connectionDirective) {
			rel, ok := t.infos.RelationshipInfo(apiName, name)
			if !ok {
				rec.errs.add(fieldNotFound(name, apiName))
				continue
			}
			child, err := t.connection(f, rel.ChildType, childAlias(alias, name), &parentLink{alias: alias, field: rel.FieldName})
			if err != nil {
				rec.errs.add(err)
				continue
			}
			rec.fields = append(rec.fields, ir.ChildField{Path: path + ".edges", Connection: child})
			continue
		}

		info, ok := t.infos.FieldInfo(apiName, name)
		if !ok {
			rec.errs.add(fieldNotFound(name, apiName))
			continue
		}

		if info.Kind == objectinfo.KindReference {
			if !t.infos.HasType(info.ReferenceTo) {
				rec.errs.add(typeNotFound(info.ReferenceTo))
				continue
			}
			joined := childAlias(alias, name)
			if !slices.ContainsFunc(rec.left, func(j ir.Join) bool { return j.Alias == joined }) {
				rec.left = append(rec.left, ir.Join{
					Alias: joined,
					On:    ir.Combine(ir.OpAnd, referenceJoin(alias, joined, info)...),
				})
			}
			t.record(f.SelectionSet, joined, info.ReferenceTo, path, rec)
			continue
		}

		t.scalar(f, alias, info, path, rec)
	}
}

// scalar projects the value and displayValue of a stored field.
func (t *transformer) scalar(f *ast.Field, alias string, info objectinfo.FieldInfo, path string, rec *recordSelection) {
	subfields := t.fields(f.SelectionSet)
	if len(subfields) == 0 {
		rec.errs.add(compileErrorf("Field `%s` must select value or displayValue.", info.APIName))
		return
	}
	for _, sub := range subfields {
		switch subName := nameOf(sub.Name); subName {
		case "value":
			rec.fields = append(rec.fields, ir.ScalarField{Path: path + ".value", Extract: valueExtract(alias, info)})
		case "displayValue":
			rec.fields = append(rec.fields, ir.ScalarField{
				Path:    path + ".displayValue",
				Extract: recordExtract(alias, "data.fields."+info.APIName+".displayValue"),
			})
		case "__typename":
		default:
			rec.errs.add(compileErrorf("Unknown field `%s` on field `%s`.", subName, info.APIName))
		}
	}
}

// fields flattens a selection set into its fields, expanding inline fragments
// and fragment spreads.
func (t *transformer) fields(set *ast.SelectionSet) []*ast.Field {
	var out []*ast.Field
	visited := make(map[string]bool)

	var visit func(set *ast.SelectionSet)
	visit = func(set *ast.SelectionSet) {
		if set == nil {
			return
		}
		for _, selection := range set.Selections {
			switch sel := selection.(type) {
			case *ast.Field:
				if sel.Name != nil {
					out = append(out, sel)
				}
			case *ast.InlineFragment:
				visit(sel.SelectionSet)
			case *ast.FragmentSpread:
				name := nameOf(sel.Name)
				fragment, ok := t.fragments[name]
				if !ok || visited[name] {
					continue
				}
				visited[name] = true
				visit(fragment.SelectionSet)
			}
		}
	}
	visit(set)
	return out
}

func collectFragments(doc *ast.Document) map[string]*ast.FragmentDefinition {
	fragments := make(map[string]*ast.FragmentDefinition)
	for _, def := range doc.Definitions {
		if fragment, ok := def.(*ast.FragmentDefinition); ok && fragment.Name != nil {
			fragments[fragment.Name.Value] = fragment
		}
	}
	return fragments
}

func hasDirective(directives []*ast.Directive, name string) bool {
	for _, d := range directives {
		if d != nil && nameOf(d.Name) == name {
			return true
		}
	}
	return false
}
