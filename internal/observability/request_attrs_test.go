package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"lds-graphql-eval/internal/gqlrequest"
)

func TestRequestSpanAttributes(t *testing.T) {
	assert.Nil(t, RequestSpanAttributes(nil))

	analysis := gqlrequest.AnalyzeEnvelope(gqlrequest.Envelope{
		Format:            gqlrequest.FormatGraphQL,
		Query:             `query Users { uiapi { query { User @connection { edges { node { Id } } } } } }`,
		DocumentSizeBytes: 10,
	})
	attrs := RequestSpanAttributes(analysis)

	got := map[attribute.Key]attribute.Value{}
	for _, kv := range attrs {
		got[kv.Key] = kv.Value
	}
	assert.Equal(t, "graphql", got["graphql.request.format"].AsString())
	assert.Equal(t, "Users", got["graphql.operation.name"].AsString())
	assert.Equal(t, "query", got["graphql.operation.type"].AsString())
	assert.NotEmpty(t, got["graphql.operation.hash"].AsString())
	assert.Equal(t, int64(10), got["graphql.document.size_bytes"].AsInt64())
	assert.Equal(t, int64(6), got["graphql.query.field_count"].AsInt64())
	assert.Equal(t, int64(6), got["graphql.query.depth"].AsInt64())
	assert.Equal(t, int64(1), got["graphql.query.connection_count"].AsInt64())
	_, hasRequested := got["graphql.operation.requested_name"]
	assert.False(t, hasRequested)
}

func TestRequestLogFields(t *testing.T) {
	analysis := &gqlrequest.Analysis{
		RequestedOperationName: "Users",
		OperationName:          "Users",
		OperationType:          "query",
	}

	fields := RequestLogFields(context.Background(), analysis)
	assert.Equal(t, []any{
		slog.String("operation_requested_name", "Users"),
		slog.String("operation_name", "Users"),
		slog.String("operation_type", "query"),
	}, fields)

	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1},
		SpanID:  trace.SpanID{1},
	}))
	fields = RequestLogFields(ctx, nil)
	assert.Len(t, fields, 1)
	assert.Equal(t, slog.String("trace_id", trace.TraceID{1}.String()), fields[0])
}
