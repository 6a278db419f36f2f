package models

import (
	"reflect"
	"strings"
)

// TableSpec describes a generated backend table. Parent tables are written
// before child tables and purged after them.
type TableSpec struct {
	Name   string
	Key    string
	Parent bool
	row    interface{}
}

// Columns lists the JSON column names of the table's row type.
func (t TableSpec) Columns() []string {
	return ColumnsOf(t.row)
}

// GeneratedTables is in insertion order.
var GeneratedTables = []TableSpec{
	{Name: TableCases, Key: "id", Parent: true, row: CaseListing{}},
	{Name: TableLimitedAssistances, Key: "id", Parent: true, row: LimitedAssistance{}},
	{Name: TableTranslationRequests, Key: "id", Parent: true, row: TranslationRequest{}},
	{Name: TableProfiles, Key: "user_id", Parent: true, row: Profile{}},
	{Name: TableCaseLanguages, Key: "listing_id", row: CaseLanguage{}},
	{Name: TableCaseReliefs, Key: "listing_id", row: Relief{}},
	{Name: TableProfileLanguages, Key: "user_id", row: ProfileLanguage{}},
	{Name: TableProfileRoles, Key: "user_id", row: ProfileRole{}},
	{Name: TableInterests, Key: "id", row: Interest{}},
}

// TestUsersTable holds the users provisioned for seeding.
var TestUsersTable = TableSpec{Name: TableTestUsers, Key: "id", Parent: true, row: UserData{}}

// LookupTable finds a generated table by name.
func LookupTable(name string) (TableSpec, bool) {
	for _, t := range GeneratedTables {
		if t.Name == name {
			return t, true
		}
	}
	if name == TestUsersTable.Name {
		return TestUsersTable, true
	}
	return TableSpec{}, false
}

// ColumnsOf returns the json tag names of a struct's exported fields in
// declaration order.
func ColumnsOf(v interface{}) []string {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil
	}
	for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	cols := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		cols = append(cols, name)
	}
	return cols
}
