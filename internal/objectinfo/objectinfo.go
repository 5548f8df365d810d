// Package objectinfo describes the business-object schema the compiler plans
// against: object types, their fields, and their relationships. The shape
// mirrors the UI API ObjectInfo payload so recorded metadata can be loaded as-is.
package objectinfo

import (
	"maps"
	"slices"
)

// Data types used by field metadata.
const (
	TypeString          = "String"
	TypeTextArea        = "TextArea"
	TypePhone           = "Phone"
	TypeEmail           = "Email"
	TypeURL             = "Url"
	TypeEncryptedString = "EncryptedString"
	TypeID              = "ID"
	TypeReference       = "Reference"
	TypePicklist        = "Picklist"
	TypeMultiPicklist   = "MultiPicklist"
	TypeInt             = "Int"
	TypeDouble          = "Double"
	TypeCurrency        = "Currency"
	TypePercent         = "Percent"
	TypeBoolean         = "Boolean"
	TypeDate            = "Date"
	TypeDateTime        = "DateTime"
	TypeTime            = "Time"
)

// ReferenceToInfo names one object type a reference field may point at.
type ReferenceToInfo struct {
	APIName string `json:"apiName" yaml:"apiName"`
}

// Field is one stored field of an object type.
type Field struct {
	APIName  string `json:"apiName" yaml:"apiName"`
	DataType string `json:"dataType" yaml:"dataType"`
	// RelationshipName is set on reference fields, e.g. "Owner" for OwnerId.
	RelationshipName string            `json:"relationshipName,omitempty" yaml:"relationshipName,omitempty"`
	ReferenceToInfos []ReferenceToInfo `json:"referenceToInfos,omitempty" yaml:"referenceToInfos,omitempty"`
}

// ChildRelationship is a to-many relationship from the parent type to ChildObjectAPIName,
// whose FieldName holds the parent's id.
type ChildRelationship struct {
	ChildObjectAPIName string `json:"childObjectApiName" yaml:"childObjectApiName"`
	FieldName          string `json:"fieldName" yaml:"fieldName"`
	RelationshipName   string `json:"relationshipName" yaml:"relationshipName"`
}

// ObjectInfo describes one object type.
type ObjectInfo struct {
	APIName            string              `json:"apiName" yaml:"apiName"`
	Fields             map[string]Field    `json:"fields" yaml:"fields"`
	ChildRelationships []ChildRelationship `json:"childRelationships,omitempty" yaml:"childRelationships,omitempty"`
}

// Map indexes object infos by type name. It is read-only once loaded and may be
// shared by concurrent compilations.
type Map map[string]ObjectInfo

// FieldKind distinguishes plain stored fields from relationship traversals.
type FieldKind int

const (
	// KindScalar is a stored field read directly from the record.
	KindScalar FieldKind = iota
	// KindReference is a to-one relationship reached through a stored id field.
	KindReference
)

// FieldInfo is the resolved metadata for a field or relationship name.
type FieldInfo struct {
	Kind FieldKind
	// APIName is the stored field name; for references it is the id field, e.g. OwnerId.
	APIName  string
	DataType string
	// RelationshipName and ReferenceTo are set for KindReference.
	RelationshipName string
	ReferenceTo      string
}

// RelationshipInfo is the resolved metadata for a to-many relationship.
type RelationshipInfo struct {
	RelationshipName string
	// FieldName is the child's field holding the parent id.
	FieldName string
	ChildType string
}

// HasType reports whether typeName is described by the map.
func (m Map) HasType(typeName string) bool {
	_, ok := m[typeName]
	return ok
}

// FieldInfo resolves name on typeName. A stored field matching name exactly
// wins; otherwise a reference field whose relationship name is name resolves
// to KindReference. When several reference fields share the relationship
// name, the one with the smallest field name is used. The boolean is false
// when the type or field is unknown.
func (m Map) FieldInfo(typeName, name string) (FieldInfo, bool) {
	info, ok := m[typeName]
	if !ok {
		return FieldInfo{}, false
	}
	if field, ok := info.Fields[name]; ok {
		return FieldInfo{
			Kind:     KindScalar,
			APIName:  field.APIName,
			DataType: field.DataType,
		}, true
	}
	for _, key := range slices.Sorted(maps.Keys(info.Fields)) {
		field := info.Fields[key]
		if field.RelationshipName != name || len(field.ReferenceToInfos) == 0 {
			continue
		}
		return FieldInfo{
			Kind:             KindReference,
			APIName:          field.APIName,
			DataType:         field.DataType,
			RelationshipName: field.RelationshipName,
			// Polymorphic references resolve to their first declared target.
			ReferenceTo: field.ReferenceToInfos[0].APIName,
		}, true
	}
	return FieldInfo{}, false
}

// RelationshipInfo resolves a to-many relationship of typeName.
func (m Map) RelationshipInfo(typeName, relationshipName string) (RelationshipInfo, bool) {
	info, ok := m[typeName]
	if !ok {
		return RelationshipInfo{}, false
	}
	for _, rel := range info.ChildRelationships {
		if rel.RelationshipName == relationshipName {
			return RelationshipInfo{
				RelationshipName: rel.RelationshipName,
				FieldName:        rel.FieldName,
				ChildType:        rel.ChildObjectAPIName,
			}, true
		}
	}
	return RelationshipInfo{}, false
}
