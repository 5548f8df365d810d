package gqlrequest

import (
	"strings"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"
)

// KindNullValue is the kind reported by NullValue.
const KindNullValue = "NullValue"

// NullValue is the GraphQL null input literal. The graphql-go parser has no
// node for it, so parsed documents carry this one instead.
type NullValue struct {
	Loc *ast.Location
}

func (v *NullValue) GetKind() string {
	return KindNullValue
}

func (v *NullValue) GetLoc() *ast.Location {
	return v.Loc
}

func (v *NullValue) GetValue() interface{} {
	return nil
}

// nullPlaceholder stands in for null while the parser runs. It is as long as
// "null" so error locations do not move, and names starting with "__" are
// reserved, so no enum value can collide with it.
const nullPlaceholder = "__nl"

// Parse parses a GraphQL document, accepting null input values.
func Parse(query string) (*ast.Document, error) {
	doc, err := parsePlaceholders(query)
	if err != nil {
		return nil, err
	}
	restoreNulls(doc)
	return doc, nil
}

func parsePlaceholders(query string) (*ast.Document, error) {
	return parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{
			Body: []byte(swapValueNames(query, "null", nullPlaceholder)),
			Name: "graphql",
		}),
	})
}

type scanContext byte

const (
	ctxSelection scanContext = iota
	ctxArguments
	ctxObject
	ctxList
)

// swapValueNames replaces the bare name from with to wherever it appears as
// an input value. Field names, aliases, variables, strings and comments are
// copied unchanged.
func swapValueNames(body, from, to string) string {
	var out strings.Builder
	out.Grow(len(body))

	var stack []scanContext
	// prev is the last punctuator seen, or 0 after any other token.
	var prev byte
	inValue := func() bool {
		if len(stack) == 0 {
			return false
		}
		switch stack[len(stack)-1] {
		case ctxList:
			return prev != '$'
		case ctxArguments, ctxObject:
			return prev == ':' || prev == '='
		}
		return false
	}

	for i := 0; i < len(body); {
		c := body[i]
		switch {
		case c == '#':
			end := strings.IndexAny(body[i:], "\r\n")
			if end < 0 {
				end = len(body) - i
			}
			out.WriteString(body[i : i+end])
			i += end
		case strings.HasPrefix(body[i:], `"""`):
			end := blockStringEnd(body, i+3)
			out.WriteString(body[i:end])
			i, prev = end, 0
		case c == '"':
			end := stringEnd(body, i+1)
			out.WriteString(body[i:end])
			i, prev = end, 0
		case isNameStart(c):
			j := i + 1
			for j < len(body) && isNameContinue(body[j]) {
				j++
			}
			if body[i:j] == from && inValue() {
				out.WriteString(to)
			} else {
				out.WriteString(body[i:j])
			}
			i, prev = j, 0
		case c == '{' || c == '(' || c == '[':
			ctx := ctxArguments
			switch c {
			case '{':
				ctx = ctxSelection
				if inValue() {
					ctx = ctxObject
				}
			case '[':
				ctx = ctxList
			}
			stack = append(stack, ctx)
			out.WriteByte(c)
			i, prev = i+1, c
		case c == '}' || c == ')' || c == ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			out.WriteByte(c)
			i, prev = i+1, c
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ',':
			out.WriteByte(c)
			i++
		default:
			out.WriteByte(c)
			i, prev = i+1, c
		}
	}
	return out.String()
}

func isNameStart(c byte) bool {
	return c == '_' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z'
}

func isNameContinue(c byte) bool {
	return isNameStart(c) || c >= '0' && c <= '9'
}

// stringEnd returns the offset just past the string starting before i.
// Unterminated strings end at the line break so the parser reports them.
func stringEnd(body string, i int) int {
	for i < len(body) {
		switch body[i] {
		case '\\':
			i += 2
			continue
		case '"':
			return i + 1
		case '\n', '\r':
			return i
		}
		i++
	}
	return len(body)
}

func blockStringEnd(body string, i int) int {
	for i < len(body) {
		if body[i] == '\\' && strings.HasPrefix(body[i+1:], `"""`) {
			i += 4
			continue
		}
		if strings.HasPrefix(body[i:], `"""`) {
			return i + 3
		}
		i++
	}
	return len(body)
}

// restoreNulls replaces placeholder enum values with NullValue in place.
func restoreNulls(doc *ast.Document) {
	if doc == nil {
		return
	}
	for _, def := range doc.Definitions {
		switch d := def.(type) {
		case *ast.OperationDefinition:
			for _, v := range d.VariableDefinitions {
				if v != nil {
					v.DefaultValue = restoreValue(v.DefaultValue)
				}
			}
			restoreDirectives(d.Directives)
			restoreSelections(d.SelectionSet)
		case *ast.FragmentDefinition:
			restoreDirectives(d.Directives)
			restoreSelections(d.SelectionSet)
		}
	}
}

func restoreSelections(set *ast.SelectionSet) {
	if set == nil {
		return
	}
	for _, selection := range set.Selections {
		switch sel := selection.(type) {
		case *ast.Field:
			restoreArguments(sel.Arguments)
			restoreDirectives(sel.Directives)
			restoreSelections(sel.SelectionSet)
		case *ast.InlineFragment:
			restoreDirectives(sel.Directives)
			restoreSelections(sel.SelectionSet)
		case *ast.FragmentSpread:
			restoreDirectives(sel.Directives)
		}
	}
}

func restoreDirectives(directives []*ast.Directive) {
	for _, d := range directives {
		if d != nil {
			restoreArguments(d.Arguments)
		}
	}
}

func restoreArguments(args []*ast.Argument) {
	for _, arg := range args {
		if arg != nil {
			arg.Value = restoreValue(arg.Value)
		}
	}
}

func restoreValue(v ast.Value) ast.Value {
	switch val := v.(type) {
	case *ast.EnumValue:
		if val.Value == nullPlaceholder {
			return &NullValue{Loc: val.Loc}
		}
	case *ast.ListValue:
		for i, item := range val.Values {
			val.Values[i] = restoreValue(item)
		}
	case *ast.ObjectValue:
		for _, field := range val.Fields {
			if field != nil {
				field.Value = restoreValue(field.Value)
			}
		}
	}
	return v
}
