package planner

import (
	"lds-graphql-eval/internal/ir"
)

// PlanLimits bounds the shape of a compiled query. Zero disables a limit.
type PlanLimits struct {
	// MaxDepth limits nesting of child connections; a root connection has depth 1.
	MaxDepth int
	// MaxConnections limits the total number of connections, nested ones included.
	MaxConnections int
	// MaxJoins limits the joined rows of any single connection.
	MaxJoins int
}

// PlanCost captures the measured shape of a compiled query.
type PlanCost struct {
	Depth       int
	Connections int
	Joins       int
}

// EstimateCost measures root. Joins is the largest join count of any connection.
func EstimateCost(root ir.RootQuery) PlanCost {
	var cost PlanCost
	for _, conn := range root.Connections {
		measureConnection(conn, 1, &cost)
	}
	return cost
}

func measureConnection(conn ir.Connection, depth int, cost *PlanCost) {
	cost.Connections++
	if depth > cost.Depth {
		cost.Depth = depth
	}
	if joins := len(conn.JoinNames) + len(conn.LeftJoins); joins > cost.Joins {
		cost.Joins = joins
	}
	for _, f := range conn.Fields {
		if child, ok := f.(ir.ChildField); ok {
			measureConnection(child.Connection, depth+1, cost)
		}
	}
}

func validateLimits(cost PlanCost, limits PlanLimits) error {
	var errs errorList
	if limits.MaxDepth > 0 && cost.Depth > limits.MaxDepth {
		errs.add(compileErrorf("Query exceeds maximum depth of %d (depth: %d).", limits.MaxDepth, cost.Depth))
	}
	if limits.MaxConnections > 0 && cost.Connections > limits.MaxConnections {
		errs.add(compileErrorf("Query exceeds maximum connection count of %d (connections: %d).", limits.MaxConnections, cost.Connections))
	}
	if limits.MaxJoins > 0 && cost.Joins > limits.MaxJoins {
		errs.add(compileErrorf("Query exceeds maximum joins per connection of %d (joins: %d).", limits.MaxJoins, cost.Joins))
	}
	return errs.err()
}
