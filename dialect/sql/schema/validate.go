package schema

import (
	"fmt"
	"strings"

	"github.com/syssam/entable/dialect"
	entschema "github.com/syssam/entable/schema"
)

// ValidationError is a problem found in a table definition.
type ValidationError struct {
	Table   string
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of a validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	write := func(title string, errs []*ValidationError) {
		if len(errs) == 0 {
			return
		}
		sb.WriteString(title)
		sb.WriteString(":\n")
		for _, e := range errs {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			sb.WriteString("\n")
		}
	}
	write("Errors", r.Errors)
	write("Warnings", r.Warnings)
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

func (r *ValidationResult) errorf(table, column, format string, args ...any) {
	r.Errors = append(r.Errors, &ValidationError{Table: table, Column: column, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warnf(table, column, format string, args ...any) {
	r.Warnings = append(r.Warnings, &ValidationError{Table: table, Column: column, Message: fmt.Sprintf(format, args...)})
}

// Validate checks that the table of d can be created by s. Errors describe
// definitions the database would reject; warnings describe definitions
// that are accepted but likely unintended.
func Validate(d *entschema.Descriptor, s Strategy) *ValidationResult {
	r := &ValidationResult{}
	pks := d.PrimaryKeys()
	if len(pks) == 0 {
		r.warnf(d.Table, "", "table has no primary key")
	}
	if len(pks) > 1 && s.Dialect() == dialect.SQLite {
		r.errorf(d.Table, "", "sqlite cannot declare an inline primary key on %d columns", len(pks))
	}
	autos := 0
	for _, c := range d.Columns {
		if c.AutoIncrement {
			autos++
			if c.Kind != entschema.KindInt && c.Kind != entschema.KindInt64 {
				r.errorf(d.Table, c.Name, "auto-increment column must be an integer, got %s", c.Kind)
			}
			if !c.PrimaryKey {
				r.errorf(d.Table, c.Name, "auto-increment column must be a primary key")
			}
		}
		switch c.Default.Policy {
		case entschema.DefaultBool:
			if c.Kind != entschema.KindBool {
				r.errorf(d.Table, c.Name, "boolean default on %s column", c.Kind)
			}
		case entschema.DefaultInt, entschema.DefaultUnixTimestamp:
			if !c.Kind.Numeric() {
				r.errorf(d.Table, c.Name, "numeric default on %s column", c.Kind)
			}
		case entschema.DefaultRandom:
			if c.Kind != entschema.KindText {
				r.errorf(d.Table, c.Name, "random default on %s column", c.Kind)
			}
		case entschema.DefaultCurrentTimestamp:
			if c.Kind != entschema.KindTime && c.Kind != entschema.KindText {
				r.warnf(d.Table, c.Name, "current timestamp default on %s column", c.Kind)
			}
		}
		if s.Dialect() == dialect.MySQL {
			validateMySQLType(r, d.Table, c)
		}
		if c.Size > 0 && c.Kind != entschema.KindText {
			r.warnf(d.Table, c.Name, "size is ignored by most databases for %s columns", c.Kind)
		}
	}
	if autos > 1 {
		r.warnf(d.Table, "", "%d auto-increment columns, only the first receives generated keys", autos)
	}
	return r
}

// validateMySQLType reports declared types MySQL rejects: character types
// without a length, and literal defaults on TEXT and BLOB types.
func validateMySQLType(r *ValidationResult, table string, c *entschema.Column) {
	if c.Type == "" {
		return
	}
	typ := strings.ToUpper(strings.TrimSpace(c.Type))
	sized := c.Size > 0 || strings.Contains(typ, "(")
	switch typ {
	case "VARCHAR", "NVARCHAR", "VARBINARY":
		// CHAR and BINARY default to a length of 1.
		if !sized {
			r.errorf(table, c.Name, "mysql requires a length for %s, set size", typ)
		}
	}
	if strings.HasSuffix(typ, "TEXT") || strings.HasSuffix(typ, "BLOB") {
		switch c.Default.Policy {
		case entschema.DefaultInt, entschema.DefaultBool, entschema.DefaultConstant:
			r.errorf(table, c.Name, "mysql does not accept a literal default on %s", typ)
		}
	}
}

// ValidateSchema validates the descriptors as one schema: each table on
// its own, plus unique table names and foreign keys that point at known
// tables and columns.
func ValidateSchema(s Strategy, ds ...*entschema.Descriptor) *ValidationResult {
	r := &ValidationResult{}
	tables := make(map[string]*entschema.Descriptor, len(ds))
	for _, d := range ds {
		if _, ok := tables[d.Table]; ok {
			r.errorf(d.Table, "", "duplicate table name")
		}
		tables[d.Table] = d
		tr := Validate(d, s)
		r.Errors = append(r.Errors, tr.Errors...)
		r.Warnings = append(r.Warnings, tr.Warnings...)
	}
	for _, d := range ds {
		for _, c := range d.ForeignKeys() {
			ref, ok := tables[c.ForeignKey.Table]
			if !ok {
				r.errorf(d.Table, c.Name, "foreign key references non-existent table %q", c.ForeignKey.Table)
				continue
			}
			if _, ok := ref.Column(c.ForeignKey.Column); !ok {
				r.errorf(d.Table, c.Name, "foreign key references non-existent column %s.%s", ref.Table, c.ForeignKey.Column)
			}
		}
	}
	return r
}
