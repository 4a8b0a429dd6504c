package schema

import (
	"reflect"
	"time"
)

// Kind is the storage class of a column attribute, derived from the Go
// type of its field.
type Kind uint8

// Attribute kinds.
const (
	KindInvalid Kind = iota
	KindText         // string
	KindInt          // int, int8, int16, int32
	KindInt64        // int64
	KindBool         // bool
	KindFloat        // float32, float64
	KindTime         // time.Time
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindText:    "text",
	KindInt:     "int",
	KindInt64:   "int64",
	KindBool:    "bool",
	KindFloat:   "float",
	KindTime:    "time",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindInvalid]
}

// Numeric reports whether the kind holds a number.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindInt64 || k == KindFloat
}

// DefaultPolicy selects how a column's default value is produced.
type DefaultPolicy uint8

// Default value policies.
const (
	DefaultNone             DefaultPolicy = iota
	DefaultConstant                       // const:TEXT
	DefaultCurrentTimestamp               // current_timestamp
	DefaultUnixTimestamp                  // unix_timestamp
	DefaultInt                            // int:N
	DefaultBool                           // bool:B
	DefaultRandom                         // random, filled by the engine on insert
)

// Default is the default-value declaration of a column.
type Default struct {
	Policy DefaultPolicy
	Text   string
	Int    int64
	Bool   bool
}

// InDatabase reports whether the database itself produces the value when
// the column is omitted from an INSERT.
func (d Default) InDatabase() bool {
	return d.Policy != DefaultNone && d.Policy != DefaultRandom
}

// ReferenceOption is a foreign key update/delete action.
type ReferenceOption string

// Reference options.
const (
	NoAction   ReferenceOption = "NO ACTION"
	Restrict   ReferenceOption = "RESTRICT"
	Cascade    ReferenceOption = "CASCADE"
	SetNull    ReferenceOption = "SET NULL"
	SetDefault ReferenceOption = "SET DEFAULT"
)

// ForeignKey points a column at a column of another table.
type ForeignKey struct {
	Table    string
	Column   string
	OnUpdate ReferenceOption
	OnDelete ReferenceOption
}

// Column is one mapped field of an entity type.
type Column struct {
	// Name is the stored column name.
	Name string
	// Field is the Go field name.
	Field string
	// Index is the field index path for reflect.Value.FieldByIndex.
	Index []int
	// GoType is the declared field type, pointer included.
	GoType reflect.Type
	Kind   Kind
	// Nullable is set for pointer fields. A nil pointer is an unset value.
	Nullable bool

	// Type and Size override the dialect's default SQL type.
	Type string
	Size int

	PrimaryKey    bool
	AutoIncrement bool
	Default       Default
	ForeignKey    *ForeignKey
}

// Value returns the field of entity (a struct value) backing the column.
func (c *Column) Value(entity reflect.Value) reflect.Value {
	return entity.FieldByIndex(c.Index)
}

// IsNull reports whether the field value is a nil pointer.
func (c *Column) IsNull(fv reflect.Value) bool {
	return c.Nullable && fv.IsNil()
}

var timeType = reflect.TypeOf(time.Time{})

// kindOf maps a Go type onto an attribute kind. Pointers are unwrapped
// once and reported as nullable.
func kindOf(t reflect.Type) (Kind, bool) {
	nullable := false
	if t.Kind() == reflect.Pointer {
		nullable = true
		t = t.Elem()
	}
	if t == timeType {
		return KindTime, nullable
	}
	switch t.Kind() {
	case reflect.String:
		return KindText, nullable
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return KindInt, nullable
	case reflect.Int64:
		return KindInt64, nullable
	case reflect.Bool:
		return KindBool, nullable
	case reflect.Float32, reflect.Float64:
		return KindFloat, nullable
	default:
		return KindInvalid, nullable
	}
}
