package gqlrequest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Request document formats.
const (
	FormatGraphQL = "graphql"
	FormatJSON    = "json"
)

// Envelope stores normalized request payload data used for GraphQL analysis.
type Envelope struct {
	// Format is FormatJSON for a {query, operationName, variables} object and
	// FormatGraphQL for a bare document.
	Format string

	Query         string
	OperationName string
	VariablesRaw  json.RawMessage

	DocumentSizeBytes int
}

// ReadEnvelope reads r fully and decodes it with DecodeEnvelope.
func ReadEnvelope(r io.Reader) (Envelope, error) {
	if r == nil {
		return Envelope{}, fmt.Errorf("request reader is nil")
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to read request: %w", err)
	}
	return DecodeEnvelope(body)
}

// DecodeEnvelope extracts GraphQL payload fields from body. A body that is a
// valid JSON object is read as a request envelope; anything else, including the
// query shorthand "{ ... }", is taken as a GraphQL document.
func DecodeEnvelope(body []byte) (Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		env := Envelope{Format: FormatGraphQL, Query: string(body)}
		env.DocumentSizeBytes = len(env.Query)
		return env, nil
	}

	env := Envelope{Format: FormatJSON}
	var payload struct {
		Query         string          `json:"query"`
		OperationName string          `json:"operationName"`
		Variables     json.RawMessage `json:"variables"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return env, fmt.Errorf("invalid request envelope: %w", err)
	}
	env.Query = payload.Query
	env.OperationName = payload.OperationName
	if len(payload.Variables) > 0 && !bytes.Equal(bytes.TrimSpace(payload.Variables), []byte("null")) {
		env.VariablesRaw = append(json.RawMessage(nil), payload.Variables...)
	}

	env.DocumentSizeBytes = len(env.Query)
	return env, nil
}
