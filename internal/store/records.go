package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one record representation with its bookkeeping metadata, in the
// shape kept in the JSON column: {"data": {...}, "metadata": {...}}.
type Entry struct {
	Data     map[string]any `json:"data" yaml:"data"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ID returns data.id.
func (e Entry) ID() string {
	id, _ := e.Data["id"].(string)
	return id
}

// Key returns the durable key of the entry: prefix followed by its id.
func (e Entry) Key(prefix string) (string, error) {
	id := e.ID()
	if id == "" {
		return "", fmt.Errorf("record has no data.id")
	}
	return prefix + id, nil
}

// Document renders the entry as stored. A missing metadata object is stored
// as the record representation defaults.
func (e Entry) Document() (json.RawMessage, error) {
	doc := map[string]any{
		"data":     e.Data,
		"metadata": e.Metadata,
	}
	if e.Metadata == nil {
		doc["metadata"] = map[string]any{
			"namespace":          "UiApi::",
			"representationName": "RecordRepresentation",
		}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record %q: %w", e.ID(), err)
	}
	return raw, nil
}

// LoadRecordsFile reads entries from a JSON or YAML file, chosen by extension.
func LoadRecordsFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records file: %w", err)
	}
	defer f.Close()

	format := "json"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}
	entries, err := DecodeRecords(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load records file %q: %w", path, err)
	}
	return entries, nil
}

// DecodeRecords reads a list of entries. format is "json" or "yaml".
func DecodeRecords(r io.Reader, format string) ([]Entry, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		dec.UseNumber()
		if err := dec.Decode(&entries); err != nil {
			return nil, fmt.Errorf("invalid records JSON: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("invalid records YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported records format %q", format)
	}

	seen := make(map[string]int, len(entries))
	for i, entry := range entries {
		id := entry.ID()
		if id == "" {
			return nil, fmt.Errorf("record %d has no data.id", i)
		}
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("record %d repeats id %s of record %d", i, id, prev)
		}
		seen[id] = i
	}
	return entries, nil
}
