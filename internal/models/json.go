package models

import (
	"context"
	"database/sql/driver"
	"slices"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// TagIDs is the array-valued tag reference column of a link record.
// It wraps gorm.io/datatypes.JSONSlice to allow for custom data type mapping.
type TagIDs []string

// Value delegates to JSONSlice, writing an empty array for nil
func (t TagIDs) Value() (driver.Value, error) {
	return datatypes.NewJSONSlice(t.normalized()).Value()
}

// Scan delegates to JSONSlice, treating NULL as an empty array
func (t *TagIDs) Scan(value interface{}) error {
	if value == nil {
		*t = TagIDs{}
		return nil
	}
	var s datatypes.JSONSlice[string]
	if err := s.Scan(value); err != nil {
		return err
	}
	*t = TagIDs(s)
	return nil
}

// GormValue delegates to JSONSlice so MySQL receives a JSON cast
func (t TagIDs) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	return datatypes.NewJSONSlice(t.normalized()).GormValue(ctx, db)
}

// GormDataType gorm common data type
func (TagIDs) GormDataType() string {
	return "json"
}

// GormDBDataType ensures the correct data type is used for each database driver.
// This resolves the issue where MSSQL does not support the 'json' data type.
func (TagIDs) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}

// Contains reports whether id is in the list
func (t TagIDs) Contains(id string) bool {
	return slices.Contains(t, id)
}

// Without returns a copy of the list with every occurrence of id removed
func (t TagIDs) Without(id string) TagIDs {
	out := make(TagIDs, 0, len(t))
	for _, v := range t {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (t TagIDs) normalized() []string {
	if t == nil {
		return []string{}
	}
	return []string(t)
}

// TagIDsContain builds a where clause matching link records whose tags column holds id.
// MSSQL stores the array as text, so it falls back to a quoted substring match.
func TagIDsContain(db *gorm.DB, id string) clause.Expression {
	switch db.Dialector.Name() {
	case "sqlserver", "mssql":
		return clause.Like{Column: clause.Column{Name: "tags"}, Value: `%"` + id + `"%`}
	}
	return datatypes.JSONArrayQuery("tags").Contains(id)
}
