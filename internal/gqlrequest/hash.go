package gqlrequest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/printer"
)

const anonymousOperationName = "<anonymous>"

// canonicalOperationAndHash prints op followed by the fragments it reaches, in
// name order, and hashes the result together with the operation name. Two
// requests differing only in unrelated operations or fragments hash alike.
func canonicalOperationAndHash(op *ast.OperationDefinition, fragments map[string]*ast.FragmentDefinition) (string, string, error) {
	if op == nil {
		return "", "", fmt.Errorf("operation is nil")
	}

	definitions := []ast.Node{op}
	for _, name := range reachableFragments(op.SelectionSet, fragments) {
		fragment, ok := fragments[name]
		if !ok || fragment == nil {
			return "", "", fmt.Errorf("fragment %q not found", name)
		}
		definitions = append(definitions, fragment)
	}

	printed, ok := printer.Print(ast.NewDocument(&ast.Document{Definitions: definitions})).(string)
	if !ok {
		return "", "", fmt.Errorf("printer returned a non-string document")
	}
	return printed, framedSHA256(printed, effectiveOperationName(op)), nil
}

// reachableFragments returns the sorted names of fragments spread, directly or
// transitively, from root. Spreads of unknown fragments are included so the
// caller can report them.
func reachableFragments(root *ast.SelectionSet, fragments map[string]*ast.FragmentDefinition) []string {
	seen := map[string]bool{}
	pending := []*ast.SelectionSet{root}
	for len(pending) > 0 {
		set := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if set == nil {
			continue
		}
		for _, selection := range set.Selections {
			switch sel := selection.(type) {
			case *ast.Field:
				pending = append(pending, sel.SelectionSet)
			case *ast.InlineFragment:
				pending = append(pending, sel.SelectionSet)
			case *ast.FragmentSpread:
				if sel.Name == nil || sel.Name.Value == "" || seen[sel.Name.Value] {
					continue
				}
				seen[sel.Name.Value] = true
				if fragment := fragments[sel.Name.Value]; fragment != nil {
					pending = append(pending, fragment.SelectionSet)
				}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func effectiveOperationName(op *ast.OperationDefinition) string {
	if op == nil || op.Name == nil || op.Name.Value == "" {
		return anonymousOperationName
	}
	return op.Name.Value
}

// framedSHA256 length-prefixes each part so that part boundaries are unambiguous.
func framedSHA256(parts ...string) string {
	hash := sha256.New()
	for _, part := range parts {
		_, _ = fmt.Fprintf(hash, "%d:%s|", len(part), part)
	}
	return hex.EncodeToString(hash.Sum(nil))
}
