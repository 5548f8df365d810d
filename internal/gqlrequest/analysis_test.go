package gqlrequest

import (
	"strings"
	"testing"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const accountsQuery = `query Accounts {
	uiapi {
		query {
			Account(first: 5) @connection {
				edges {
					node {
						Id
						Name { value }
					}
				}
			}
		}
	}
}`

func TestAnalyzeEnvelope_Metadata(t *testing.T) {
	tests := []struct {
		name              string
		query             string
		operationName     string
		wantType          string
		wantFields        int
		wantDepth         int
		wantVars          int
		wantParseErr      bool
		wantSelectionErr  bool
		wantResolvedName  string
		wantOperationHash bool
	}{
		{
			name:              "record query",
			query:             accountsQuery,
			wantType:          "query",
			wantFields:        8,
			wantDepth:         7,
			wantResolvedName:  "Accounts",
			wantOperationHash: true,
		},
		{
			name:              "shorthand query is anonymous",
			query:             `{ uiapi { query { User @connection { edges { node { Id } } } } } }`,
			wantType:          "query",
			wantFields:        6,
			wantDepth:         6,
			wantResolvedName:  "<anonymous>",
			wantOperationHash: true,
		},
		{
			name:              "variables are counted",
			query:             `query Q($id: ID) { uiapi { query { User(where: {Id: {eq: $id}}) @connection { edges { node { Id } } } } } }`,
			wantType:          "query",
			wantFields:        6,
			wantDepth:         6,
			wantVars:          1,
			wantResolvedName:  "Q",
			wantOperationHash: true,
		},
		{
			name:              "mutation",
			query:             `mutation M { createAccount { Id } }`,
			operationName:     "M",
			wantType:          "mutation",
			wantFields:        2,
			wantDepth:         2,
			wantResolvedName:  "M",
			wantOperationHash: true,
		},
		{
			name: "multiple operations without name is unresolved",
			query: `
				query A { uiapi { query { User @connection { edges { node { Id } } } } } }
				query B { uiapi { query { Account @connection { edges { node { Id } } } } } }
			`,
			wantSelectionErr: true,
		},
		{
			name:             "unknown operation name",
			query:            accountsQuery,
			operationName:    "Contacts",
			wantSelectionErr: true,
		},
		{
			name:         "malformed query",
			query:        `query { uiapi { `,
			wantParseErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := AnalyzeEnvelope(Envelope{
				Query:         tt.query,
				OperationName: tt.operationName,
			})
			if (analysis.ParseError != nil) != tt.wantParseErr {
				t.Fatalf("ParseError presence = %v, want %v (err=%v)", analysis.ParseError != nil, tt.wantParseErr, analysis.ParseError)
			}
			if (analysis.SelectionError != nil) != tt.wantSelectionErr {
				t.Fatalf("SelectionError presence = %v, want %v (err=%v)", analysis.SelectionError != nil, tt.wantSelectionErr, analysis.SelectionError)
			}
			if tt.wantParseErr || tt.wantSelectionErr {
				assert.Error(t, analysis.Err())
				assert.Nil(t, analysis.OperationDocument())
				return
			}
			require.NoError(t, analysis.Err())
			assert.Equal(t, tt.wantType, analysis.OperationType)
			assert.Equal(t, tt.wantFields, analysis.FieldCount)
			assert.Equal(t, tt.wantDepth, analysis.SelectionDepth)
			assert.Equal(t, tt.wantVars, analysis.VariableCount)
			assert.Equal(t, tt.wantResolvedName, analysis.OperationName)
			assert.Equal(t, tt.wantOperationHash, analysis.OperationHash != "")
		})
	}
}

func TestAnalyzeEnvelope_EmptyQuery(t *testing.T) {
	analysis := AnalyzeEnvelope(Envelope{Query: "  "})
	assert.NoError(t, analysis.ParseError)
	assert.Nil(t, analysis.Operation)
	assert.EqualError(t, analysis.Err(), "request does not include an operation")
}

func TestAnalyzeEnvelope_FragmentCycleSafe(t *testing.T) {
	query := `
		fragment A on Account {
			Id
			...B
		}
		fragment B on Account {
			Name { value }
			...A
		}
		query {
			uiapi { query { Account @connection { edges { node { ...A } } } } }
		}
	`
	analysis := AnalyzeEnvelope(Envelope{Query: query})
	if analysis.ParseError != nil || analysis.SelectionError != nil {
		t.Fatalf("unexpected parse/selection errors: parse=%v selection=%v", analysis.ParseError, analysis.SelectionError)
	}
	// uiapi, query, Account, edges, node, Id, Name, value
	if analysis.FieldCount != 8 {
		t.Fatalf("FieldCount = %d, want %d", analysis.FieldCount, 8)
	}
	assert.Equal(t, 1, analysis.ConnectionCount)
	if analysis.OperationHash == "" {
		t.Fatal("expected operation hash for cyclic fragments")
	}
}

func TestAnalysis_OperationDocumentKeepsSelectedOperationAndFragments(t *testing.T) {
	query := `
		query A { uiapi { query { User @connection { edges { node { ...F } } } } } }
		query B { uiapi { query { Account @connection { edges { node { Id } } } } } }
		fragment F on User { Id }
	`
	analysis := AnalyzeEnvelope(Envelope{Query: query, OperationName: "B"})
	require.NoError(t, analysis.Err())

	doc := analysis.OperationDocument()
	require.NotNil(t, doc)
	require.Len(t, doc.Definitions, 2)

	op, ok := doc.Definitions[0].(*ast.OperationDefinition)
	require.True(t, ok)
	assert.Equal(t, "B", op.Name.Value)
	_, ok = doc.Definitions[1].(*ast.FragmentDefinition)
	assert.True(t, ok)
}

func TestAnalyze_OperationNameOverride(t *testing.T) {
	body := `{"query":"query A { a } query B { b }","operationName":"A"}`

	analysis := Analyze(strings.NewReader(body), "B")
	require.NoError(t, analysis.Err())
	assert.Equal(t, "B", analysis.OperationName)
	assert.Equal(t, "B", analysis.RequestedOperationName)
	assert.Equal(t, FormatJSON, analysis.Envelope.Format)

	analysis = Analyze(strings.NewReader(body), "")
	require.NoError(t, analysis.Err())
	assert.Equal(t, "A", analysis.OperationName)
}

func TestAnalyze_DecodeError(t *testing.T) {
	analysis := Analyze(failingReader{}, "")
	require.Error(t, analysis.DecodeError)
	assert.Contains(t, analysis.Err().Error(), "failed to decode request")
}

func TestOperationHash_WhitespaceAndCommentsInsensitive(t *testing.T) {
	query2 := "# comment\n" + strings.Join(strings.Fields(accountsQuery), " ")

	a := AnalyzeEnvelope(Envelope{Query: accountsQuery})
	b := AnalyzeEnvelope(Envelope{Query: query2})
	if a.OperationHash == "" || b.OperationHash == "" {
		t.Fatalf("expected non-empty operation hashes")
	}
	if a.OperationHash != b.OperationHash {
		t.Fatalf("hash mismatch for semantically equivalent queries: %q vs %q", a.OperationHash, b.OperationHash)
	}
}

func TestOperationHash_IgnoresUnreachableFragments(t *testing.T) {
	base := `query A { uiapi { query { User @connection { edges { node { ...F } } } } } }
		fragment F on User { Id }`
	withExtra := base + "\nfragment G on Account { Name { value } }"

	a := AnalyzeEnvelope(Envelope{Query: base})
	b := AnalyzeEnvelope(Envelope{Query: withExtra})
	require.NotEmpty(t, a.OperationHash)
	assert.Equal(t, a.OperationHash, b.OperationHash)
	assert.NotContains(t, b.CanonicalOperation, "fragment G")
}

func TestOperationHash_UnknownFragment(t *testing.T) {
	analysis := AnalyzeEnvelope(Envelope{Query: `query { uiapi { query { User @connection { edges { node { ...Missing } } } } } }`})
	assert.NoError(t, analysis.Err())
	assert.Error(t, analysis.CanonicalizeErr)
	assert.Empty(t, analysis.OperationHash)
}

func TestFramedHashDisambiguatesTuples(t *testing.T) {
	hashA := framedSHA256("ab", "c")
	hashB := framedSHA256("a", "bc")
	if hashA == hashB {
		t.Fatalf("expected framed hash to disambiguate tuple boundaries")
	}
}
