package store

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRecordsFile(t *testing.T) {
	entries, err := LoadRecordsFile("testdata/records.yaml")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a0Txx0000000001", entries[0].ID())

	fields, ok := entries[1].Data["fields"].(map[string]any)
	require.True(t, ok)
	status, ok := fields["Status"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Approved", status["value"])

	entries, err = LoadRecordsFile("testdata/records.json")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "User", entries[0].Data["apiName"])
}

func TestLoadRecordsFile_Missing(t *testing.T) {
	_, err := LoadRecordsFile("testdata/nope.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open records file")
}

func TestDecodeRecords_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		format  string
		wantErr string
	}{
		{name: "unknown format", input: `[]`, format: "toml", wantErr: "unsupported records format"},
		{name: "bad json", input: `{`, format: "json", wantErr: "invalid records JSON"},
		{name: "unknown key", input: `[{"data":{"id":"1"},"extra":1}]`, format: "json", wantErr: "invalid records JSON"},
		{name: "bad yaml", input: "- data: [", format: "yaml", wantErr: "invalid records YAML"},
		{name: "missing id", input: `[{"data":{"apiName":"User"}}]`, format: "json", wantErr: "record 0 has no data.id"},
		{name: "duplicate id", input: `[{"data":{"id":"1"}},{"data":{"id":"1"}}]`, format: "json", wantErr: "record 1 repeats id 1 of record 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecords(strings.NewReader(tt.input), tt.format)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEntry_KeyAndDocument(t *testing.T) {
	entry := Entry{Data: map[string]any{"id": "001", "apiName": "Account"}}

	key, err := entry.Key("UiApi::RecordRepresentation:")
	require.NoError(t, err)
	assert.Equal(t, "UiApi::RecordRepresentation:001", key)

	doc, err := entry.Document()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"data": {"id": "001", "apiName": "Account"},
		"metadata": {"namespace": "UiApi::", "representationName": "RecordRepresentation"}
	}`, string(doc))

	entry.Metadata = map[string]any{"ingestionTimestamp": json.Number("5")}
	doc, err = entry.Document()
	require.NoError(t, err)
	assert.JSONEq(t, `{"data": {"id": "001", "apiName": "Account"}, "metadata": {"ingestionTimestamp": 5}}`, string(doc))

	_, err = Entry{Data: map[string]any{}}.Key("p:")
	assert.EqualError(t, err, "record has no data.id")
}
