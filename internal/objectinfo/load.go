package objectinfo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a Map from a JSON or YAML file, chosen by extension.
func LoadFile(path string) (Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open object info file: %w", err)
	}
	defer f.Close()

	format := "json"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}
	m, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load object info file %q: %w", path, err)
	}
	return m, nil
}

// Decode reads a Map keyed by type name. format is "json" or "yaml".
// Missing apiName values are filled in from their map keys.
func Decode(r io.Reader, format string) (Map, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m := Map{}
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("invalid object info JSON: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("invalid object info YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported object info format %q", format)
	}

	for typeName, info := range m {
		if info.APIName == "" {
			info.APIName = typeName
		}
		if info.APIName != typeName {
			return nil, fmt.Errorf("object info key %q does not match apiName %q", typeName, info.APIName)
		}
		for fieldName, field := range info.Fields {
			if field.APIName == "" {
				field.APIName = fieldName
				info.Fields[fieldName] = field
			}
		}
		m[typeName] = info
	}
	return m, nil
}

// Validate returns a description of every reference or child relationship that
// points at a type missing from the map, and of every relationship name shared
// by several fields of one type, sorted for stable output.
func (m Map) Validate() []string {
	var problems []string
	for typeName, info := range m {
		relationships := map[string][]string{}
		for _, field := range info.Fields {
			if field.RelationshipName != "" {
				relationships[field.RelationshipName] = append(relationships[field.RelationshipName], field.APIName)
			}
			for _, ref := range field.ReferenceToInfos {
				if !m.HasType(ref.APIName) {
					problems = append(problems, fmt.Sprintf("%s.%s references unknown type %s", typeName, field.APIName, ref.APIName))
				}
			}
		}
		for _, rel := range info.ChildRelationships {
			if !m.HasType(rel.ChildObjectAPIName) {
				problems = append(problems, fmt.Sprintf("%s.%s references unknown child type %s", typeName, rel.RelationshipName, rel.ChildObjectAPIName))
			}
		}
		for name, fields := range relationships {
			if len(fields) > 1 {
				sort.Strings(fields)
				problems = append(problems, fmt.Sprintf("%s.%s is the relationship name of several fields: %s", typeName, name, strings.Join(fields, ", ")))
			}
		}
	}
	sort.Strings(problems)
	return problems
}
