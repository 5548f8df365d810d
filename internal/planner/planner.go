// Package planner compiles GraphQL record queries into the intermediate
// representation consumed by the SQL generator. It resolves field and
// relationship names against object metadata, lowers filters, ordering and
// scopes into predicates, and derives the joins each connection needs.
//
// Validation failures are collected rather than returned on first sight, so a
// single compilation reports every problem it can find.
package planner
