package objectinfo_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lds-graphql-eval/internal/objectinfo"
	"lds-graphql-eval/internal/testutil/fixtures"
)

func TestFieldInfo_ScalarField(t *testing.T) {
	infos := fixtures.ObjectInfos()

	info, ok := infos.FieldInfo("TimeSheet", "TimeSheetNumber")
	require.True(t, ok)
	assert.Equal(t, objectinfo.KindScalar, info.Kind)
	assert.Equal(t, "TimeSheetNumber", info.APIName)
	assert.Equal(t, objectinfo.TypeString, info.DataType)
}

func TestFieldInfo_ReferenceByRelationshipName(t *testing.T) {
	infos := fixtures.ObjectInfos()

	info, ok := infos.FieldInfo("TimeSheet", "CreatedBy")
	require.True(t, ok)
	assert.Equal(t, objectinfo.KindReference, info.Kind)
	assert.Equal(t, "CreatedById", info.APIName)
	assert.Equal(t, "CreatedBy", info.RelationshipName)
	assert.Equal(t, "User", info.ReferenceTo)
}

func TestFieldInfo_StoredIDFieldStaysScalar(t *testing.T) {
	infos := fixtures.ObjectInfos()

	info, ok := infos.FieldInfo("TimeSheet", "CreatedById")
	require.True(t, ok)
	assert.Equal(t, objectinfo.KindScalar, info.Kind)
	assert.Equal(t, objectinfo.TypeReference, info.DataType)
}

func TestFieldInfo_PolymorphicUsesFirstTarget(t *testing.T) {
	infos := objectinfo.Map{
		"Event": {
			APIName: "Event",
			Fields: map[string]objectinfo.Field{
				"WhatId": {
					APIName:          "WhatId",
					DataType:         objectinfo.TypeReference,
					RelationshipName: "What",
					ReferenceToInfos: []objectinfo.ReferenceToInfo{{APIName: "Account"}, {APIName: "Opportunity"}},
				},
			},
		},
	}

	info, ok := infos.FieldInfo("Event", "What")
	require.True(t, ok)
	assert.Equal(t, "Account", info.ReferenceTo)
}

func TestFieldInfo_SharedRelationshipName(t *testing.T) {
	reference := func(apiName, target string) objectinfo.Field {
		return objectinfo.Field{
			APIName:          apiName,
			DataType:         objectinfo.TypeReference,
			RelationshipName: "Owner",
			ReferenceToInfos: []objectinfo.ReferenceToInfo{{APIName: target}},
		}
	}
	infos := objectinfo.Map{
		"Case": {APIName: "Case", Fields: map[string]objectinfo.Field{
			"OwnerId":  reference("OwnerId", "User"),
			"Owner2Id": reference("Owner2Id", "Group"),
			"Owner3Id": reference("Owner3Id", "Queue"),
		}},
		"User":  {APIName: "User", Fields: map[string]objectinfo.Field{}},
		"Group": {APIName: "Group", Fields: map[string]objectinfo.Field{}},
		"Queue": {APIName: "Queue", Fields: map[string]objectinfo.Field{}},
	}

	for range 20 {
		info, ok := infos.FieldInfo("Case", "Owner")
		require.True(t, ok)
		assert.Equal(t, "Owner2Id", info.APIName)
		assert.Equal(t, "Group", info.ReferenceTo)
	}
	assert.Equal(t, []string{"Case.Owner is the relationship name of several fields: Owner2Id, Owner3Id, OwnerId"}, infos.Validate())
}

func TestFieldInfo_Unknown(t *testing.T) {
	infos := fixtures.ObjectInfos()

	_, ok := infos.FieldInfo("TimeSheet", "Nope")
	assert.False(t, ok)
	_, ok = infos.FieldInfo("Nope", "Id")
	assert.False(t, ok)
}

func TestRelationshipInfo(t *testing.T) {
	infos := fixtures.ObjectInfos()

	rel, ok := infos.RelationshipInfo("TimeSheet", "TimeSheetEntries")
	require.True(t, ok)
	assert.Equal(t, "TimeSheetEntry", rel.ChildType)
	assert.Equal(t, "TimeSheetId", rel.FieldName)

	_, ok = infos.RelationshipInfo("TimeSheet", "Contacts")
	assert.False(t, ok)
	_, ok = infos.RelationshipInfo("Nope", "Contacts")
	assert.False(t, ok)
}

func TestHasType(t *testing.T) {
	infos := fixtures.ObjectInfos()
	assert.True(t, infos.HasType("ServiceAppointment"))
	assert.False(t, infos.HasType("Opportunity"))
}

func TestDecode_JSONFillsAPINames(t *testing.T) {
	input := `{
		"Account": {
			"fields": {
				"Name": {"dataType": "String"},
				"OwnerId": {"dataType": "Reference", "relationshipName": "Owner", "referenceToInfos": [{"apiName": "User"}]}
			}
		}
	}`

	m, err := objectinfo.Decode(strings.NewReader(input), "json")
	require.NoError(t, err)
	require.Contains(t, m, "Account")
	assert.Equal(t, "Account", m["Account"].APIName)
	assert.Equal(t, "Name", m["Account"].Fields["Name"].APIName)

	info, ok := m.FieldInfo("Account", "Owner")
	require.True(t, ok)
	assert.Equal(t, "User", info.ReferenceTo)
}

func TestDecode_JSONRejectsUnknownFields(t *testing.T) {
	_, err := objectinfo.Decode(strings.NewReader(`{"Account": {"feilds": {}}}`), "json")
	assert.Error(t, err)
}

func TestDecode_RejectsMismatchedAPIName(t *testing.T) {
	_, err := objectinfo.Decode(strings.NewReader(`{"Account": {"apiName": "Contact"}}`), "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	_, err := objectinfo.Decode(strings.NewReader(`{}`), "toml")
	assert.Error(t, err)
}

func TestLoadFile_YAML(t *testing.T) {
	m, err := objectinfo.LoadFile(filepath.Join("testdata", "objectinfos.yaml"))
	require.NoError(t, err)
	assert.Len(t, m, 3)

	rel, ok := m.RelationshipInfo("Account", "Contacts")
	require.True(t, ok)
	assert.Equal(t, "Contact", rel.ChildType)
	assert.Empty(t, m.Validate())
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := objectinfo.LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestValidate_ReportsUnknownTypes(t *testing.T) {
	infos := fixtures.ObjectInfos()
	delete(infos, "User")

	problems := infos.Validate()
	require.NotEmpty(t, problems)
	assert.Contains(t, problems, "TimeSheet.OwnerId references unknown type User")
	assert.Contains(t, problems, "TimeSheet.CreatedById references unknown type User")
	assert.IsNonDecreasing(t, problems)
}
