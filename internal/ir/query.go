package ir

// RootQuery is a compiled query: one Connection per top-level record selection.
type RootQuery struct {
	Connections []Connection
}

// Connection is one queried object type.
type Connection struct {
	// APIName is the object type being queried.
	APIName string
	// Alias is the dotted join path naming this connection's rows. Root
	// connections use the type name itself.
	Alias  string
	Fields []Field
	// Predicate is nil when the connection is unfiltered.
	Predicate Predicate
	OrderBy   []OrderBy
	// First limits the number of rows when non-nil.
	First *int
	// JoinNames lists the aliases joined alongside Alias, in join order.
	// Predicate links them to their parent rows.
	JoinNames []string
	// LeftJoins lists the aliases only the projection reads. They follow
	// JoinNames and leave their columns null when no record matches.
	LeftJoins []Join
}

// Join attaches the records matching On as Alias.
type Join struct {
	Alias string
	On    Predicate
}

// OrderBy is one sort key.
type OrderBy struct {
	Extract    Extract
	Asc        bool
	NullsFirst bool
}

// Field is a projected value in the result document.
type Field interface {
	isField()
}

// ScalarField copies the value referenced by Extract to Path in the result.
// Path is dotted and relative to one edge, e.g. "node.Name.value".
type ScalarField struct {
	Path    string
	Extract Extract
}

// ChildField nests a to-many connection at Path, e.g. "node.Contacts.edges".
type ChildField struct {
	Path       string
	Connection Connection
}

func (ScalarField) isField() {}
func (ChildField) isField()  {}
