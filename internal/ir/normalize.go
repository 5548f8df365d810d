package ir

// RemoveDuplicates returns a new slice in which every element that is equal to
// a later element has been dropped. Survivors keep their relative order, so
// each duplicate group is represented by its last occurrence.
func RemoveDuplicates[T any](items []T, equal func(a, b T) bool) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		duplicate := false
		for j := i + 1; j < len(items); j++ {
			if equal(items[i], items[j]) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			out = append(out, items[i])
		}
	}
	return out
}

// RemoveDuplicateFields de-duplicates structurally equal fields, keeping the last.
func RemoveDuplicateFields(fields []Field) []Field {
	return RemoveDuplicates(fields, FieldsEqual)
}

// RemoveDuplicatePredicates de-duplicates structurally equal predicates, keeping the last.
func RemoveDuplicatePredicates(predicates []Predicate) []Predicate {
	return RemoveDuplicates(predicates, PredicatesEqual)
}

// NormalizeConnection de-duplicates the connection's fields and the children
// of a top-level AND predicate, recursing into child connections.
func NormalizeConnection(conn Connection) Connection {
	fields := make([]Field, 0, len(conn.Fields))
	for _, f := range conn.Fields {
		if child, ok := f.(ChildField); ok {
			child.Connection = NormalizeConnection(child.Connection)
			fields = append(fields, child)
			continue
		}
		fields = append(fields, f)
	}
	conn.Fields = RemoveDuplicateFields(fields)

	if compound, ok := conn.Predicate.(Compound); ok && compound.Operator == OpAnd {
		conn.Predicate = Combine(OpAnd, RemoveDuplicatePredicates(compound.Children)...)
	}
	return conn
}

// Normalize returns a copy of root with every connection normalized.
func Normalize(root RootQuery) RootQuery {
	out := RootQuery{Connections: make([]Connection, len(root.Connections))}
	for i, conn := range root.Connections {
		out.Connections[i] = NormalizeConnection(conn)
	}
	return out
}
