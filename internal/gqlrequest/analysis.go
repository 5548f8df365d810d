// Package gqlrequest decodes GraphQL requests read from files or stdin, parses
// them, selects the operation to compile and derives metadata used in logs and
// traces.
package gqlrequest

import (
	"fmt"
	"io"
	"strings"

	"github.com/graphql-go/graphql/language/ast"
)

// Analysis stores parsed and derived GraphQL request metadata.
type Analysis struct {
	Envelope               Envelope
	RequestedOperationName string

	Document  *ast.Document
	Fragments map[string]*ast.FragmentDefinition
	Operation *ast.OperationDefinition

	OperationName string
	OperationType string

	FieldCount     int
	SelectionDepth int
	VariableCount  int
	// ConnectionCount counts fields carrying the @connection directive.
	ConnectionCount int

	CanonicalOperation string
	OperationHash      string

	DecodeError     error
	ParseError      error
	SelectionError  error
	CanonicalizeErr error
}

// Analyze reads and analyzes a GraphQL request. A non-empty operationName
// overrides the one carried by a JSON envelope.
func Analyze(r io.Reader, operationName string) *Analysis {
	envelope, err := ReadEnvelope(r)
	if operationName != "" {
		envelope.OperationName = operationName
	}
	if err != nil {
		return &Analysis{
			Envelope:               envelope,
			RequestedOperationName: envelope.OperationName,
			Fragments:              map[string]*ast.FragmentDefinition{},
			DecodeError:            err,
		}
	}
	return AnalyzeEnvelope(envelope)
}

// Err returns the first decode, parse or operation selection failure.
// Canonicalization failures only affect the hash and are not reported.
func (a *Analysis) Err() error {
	switch {
	case a.DecodeError != nil:
		return fmt.Errorf("failed to decode request: %w", a.DecodeError)
	case a.ParseError != nil:
		return fmt.Errorf("failed to parse request: %w", a.ParseError)
	case a.SelectionError != nil:
		return a.SelectionError
	case a.Operation == nil:
		return fmt.Errorf("request does not include an operation")
	}
	return nil
}

// OperationDocument returns a document holding only the selected operation
// followed by every fragment definition, or nil when no operation was selected.
func (a *Analysis) OperationDocument() *ast.Document {
	if a.Operation == nil || a.Document == nil {
		return nil
	}
	definitions := []ast.Node{a.Operation}
	for _, def := range a.Document.Definitions {
		if fragment, ok := def.(*ast.FragmentDefinition); ok {
			definitions = append(definitions, fragment)
		}
	}
	return ast.NewDocument(&ast.Document{Loc: a.Document.Loc, Definitions: definitions})
}

// AnalyzeEnvelope parses and analyzes a normalized request envelope.
func AnalyzeEnvelope(env Envelope) *Analysis {
	analysis := &Analysis{
		Envelope:               env,
		RequestedOperationName: env.OperationName,
		Fragments:              map[string]*ast.FragmentDefinition{},
	}

	if strings.TrimSpace(env.Query) == "" {
		return analysis
	}

	doc, err := parsePlaceholders(env.Query)
	if err != nil {
		analysis.ParseError = err
		return analysis
	}
	// Nulls are restored once the operation has been printed for hashing,
	// since the printer only knows graphql-go's own value nodes.
	defer restoreNulls(doc)

	analysis.Document = doc
	analysis.Fragments = buildFragmentMap(doc)

	op, selectionErr := selectOperation(doc, env.OperationName)
	if selectionErr != nil {
		analysis.SelectionError = selectionErr
		return analysis
	}
	if op == nil {
		analysis.SelectionError = fmt.Errorf("no operation selected")
		return analysis
	}

	analysis.Operation = op
	analysis.OperationName = effectiveOperationName(op)
	analysis.OperationType = string(op.Operation)
	analysis.VariableCount = len(op.VariableDefinitions)

	shape := measureSelections(op.SelectionSet, analysis.Fragments)
	analysis.FieldCount = shape.fields
	analysis.SelectionDepth = shape.depth
	analysis.ConnectionCount = shape.connections

	canonical, hash, canonicalErr := canonicalOperationAndHash(op, analysis.Fragments)
	if canonicalErr != nil {
		analysis.CanonicalizeErr = canonicalErr
		return analysis
	}
	analysis.CanonicalOperation = swapValueNames(canonical, nullPlaceholder, "null")
	analysis.OperationHash = hash

	return analysis
}

func buildFragmentMap(doc *ast.Document) map[string]*ast.FragmentDefinition {
	fragments := map[string]*ast.FragmentDefinition{}
	if doc == nil {
		return fragments
	}
	for _, def := range doc.Definitions {
		if fragment, ok := def.(*ast.FragmentDefinition); ok && fragment.Name != nil && fragment.Name.Value != "" {
			fragments[fragment.Name.Value] = fragment
		}
	}
	return fragments
}

// selectOperation picks the operation named by operationName, or the only
// operation in doc when no name is given.
func selectOperation(doc *ast.Document, operationName string) (*ast.OperationDefinition, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	var only *ast.OperationDefinition
	count := 0
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok || op == nil {
			continue
		}
		if operationName != "" {
			if op.Name != nil && op.Name.Value == operationName {
				return op, nil
			}
			continue
		}
		only = op
		count++
	}

	switch {
	case operationName != "":
		return nil, fmt.Errorf("unknown operation named %q", operationName)
	case count == 0:
		return nil, fmt.Errorf("request does not include an operation")
	case count > 1:
		return nil, fmt.Errorf("operationName is required when request has multiple operations")
	}
	return only, nil
}

// queryShape summarizes the selections of an operation with fragments
// expanded. Each fragment is expanded at most once.
type queryShape struct {
	fields      int
	depth       int
	connections int
}

type shapeWalker struct {
	fragments map[string]*ast.FragmentDefinition
	expanded  map[string]bool
	shape     queryShape
}

func measureSelections(set *ast.SelectionSet, fragments map[string]*ast.FragmentDefinition) queryShape {
	w := &shapeWalker{fragments: fragments, expanded: map[string]bool{}}
	w.walk(set, 1)
	return w.shape
}

func (w *shapeWalker) walk(set *ast.SelectionSet, level int) {
	if set == nil {
		return
	}
	if level > w.shape.depth {
		w.shape.depth = level
	}
	for _, selection := range set.Selections {
		switch sel := selection.(type) {
		case *ast.Field:
			w.shape.fields++
			if hasConnectionDirective(sel) {
				w.shape.connections++
			}
			if sel.SelectionSet != nil {
				w.walk(sel.SelectionSet, level+1)
			}
		case *ast.InlineFragment:
			w.walk(sel.SelectionSet, level)
		case *ast.FragmentSpread:
			if sel.Name == nil || w.expanded[sel.Name.Value] {
				continue
			}
			w.expanded[sel.Name.Value] = true
			if fragment := w.fragments[sel.Name.Value]; fragment != nil {
				w.walk(fragment.SelectionSet, level)
			}
		}
	}
}

func hasConnectionDirective(field *ast.Field) bool {
	for _, d := range field.Directives {
		if d != nil && d.Name != nil && d.Name.Value == "connection" {
			return true
		}
	}
	return false
}
