// Package fixtures holds object metadata and records shared by tests.
package fixtures

import "lds-graphql-eval/internal/objectinfo"

// UserID is the viewer id used by scope tests.
const UserID = "005xx000001X8UzAAK"

func field(apiName, dataType string) objectinfo.Field {
	return objectinfo.Field{APIName: apiName, DataType: dataType}
}

func reference(apiName, relationshipName string, targets ...string) objectinfo.Field {
	f := objectinfo.Field{
		APIName:          apiName,
		DataType:         objectinfo.TypeReference,
		RelationshipName: relationshipName,
	}
	for _, target := range targets {
		f.ReferenceToInfos = append(f.ReferenceToInfos, objectinfo.ReferenceToInfo{APIName: target})
	}
	return f
}

func object(apiName string, children []objectinfo.ChildRelationship, fields ...objectinfo.Field) objectinfo.ObjectInfo {
	info := objectinfo.ObjectInfo{APIName: apiName, Fields: map[string]objectinfo.Field{}, ChildRelationships: children}
	for _, f := range fields {
		info.Fields[f.APIName] = f
	}
	return info
}

// ObjectInfos returns a fresh schema covering every supported data type.
func ObjectInfos() objectinfo.Map {
	return objectinfo.Map{
		"TimeSheet": object("TimeSheet",
			[]objectinfo.ChildRelationship{
				{ChildObjectAPIName: "TimeSheetEntry", FieldName: "TimeSheetId", RelationshipName: "TimeSheetEntries"},
			},
			field("Id", objectinfo.TypeID),
			field("TimeSheetNumber", objectinfo.TypeString),
			field("Status", objectinfo.TypePicklist),
			field("StartDate", objectinfo.TypeDate),
			field("EndDate", objectinfo.TypeDate),
			field("CreatedDate", objectinfo.TypeDateTime),
			field("TotalDurationInMinutes", objectinfo.TypeDouble),
			field("TimeSheetEntryCount", objectinfo.TypeInt),
			field("IsApproved", objectinfo.TypeBoolean),
			field("StartTime", objectinfo.TypeTime),
			reference("OwnerId", "Owner", "User"),
			reference("CreatedById", "CreatedBy", "User"),
		),
		"TimeSheetEntry": object("TimeSheetEntry", nil,
			field("Id", objectinfo.TypeID),
			field("Subject", objectinfo.TypeString),
			field("DurationInMinutes", objectinfo.TypeInt),
			reference("TimeSheetId", "TimeSheet", "TimeSheet"),
			reference("CreatedById", "CreatedBy", "User"),
		),
		"User": object("User", nil,
			field("Id", objectinfo.TypeID),
			field("Name", objectinfo.TypeString),
			field("Email", objectinfo.TypeEmail),
			field("IsActive", objectinfo.TypeBoolean),
			reference("CreatedById", "CreatedBy", "User"),
		),
		"Account": object("Account",
			[]objectinfo.ChildRelationship{
				{ChildObjectAPIName: "Contact", FieldName: "AccountId", RelationshipName: "Contacts"},
			},
			field("Id", objectinfo.TypeID),
			field("Name", objectinfo.TypeString),
			field("Phone", objectinfo.TypePhone),
			field("Website", objectinfo.TypeURL),
			field("Description", objectinfo.TypeTextArea),
			field("Industry", objectinfo.TypePicklist),
			field("Tags__c", objectinfo.TypeMultiPicklist),
			field("AnnualRevenue", objectinfo.TypeCurrency),
			field("Ownership__c", objectinfo.TypePercent),
			field("NumberOfEmployees", objectinfo.TypeInt),
			reference("OwnerId", "Owner", "User"),
			reference("ParentId", "Parent", "Account"),
		),
		"Contact": object("Contact", nil,
			field("Id", objectinfo.TypeID),
			field("Name", objectinfo.TypeString),
			field("Email", objectinfo.TypeEmail),
			field("Birthdate", objectinfo.TypeDate),
			reference("AccountId", "Account", "Account"),
			reference("OwnerId", "Owner", "User"),
		),
		"ServiceAppointment": object("ServiceAppointment", nil,
			field("Id", objectinfo.TypeID),
			field("AppointmentNumber", objectinfo.TypeString),
			field("SchedStartTime", objectinfo.TypeDateTime),
			reference("OwnerId", "Owner", "User"),
		),
		"AssignedResource": object("AssignedResource", nil,
			field("Id", objectinfo.TypeID),
			reference("ServiceAppointmentId", "ServiceAppointment", "ServiceAppointment"),
			reference("ServiceResourceId", "ServiceResource", "ServiceResource"),
		),
		"ServiceResource": object("ServiceResource", nil,
			field("Id", objectinfo.TypeID),
			field("Name", objectinfo.TypeString),
			reference("RelatedRecordId", "RelatedRecord", "User"),
		),
	}
}
