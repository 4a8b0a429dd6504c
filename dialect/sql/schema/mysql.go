package schema

import (
	"github.com/syssam/entable/dialect"
	entschema "github.com/syssam/entable/schema"
)

// MySQL is the MySQL strategy. Primary keys are inline for a single key
// column and a trailing PRIMARY KEY clause for composite keys.
type MySQL struct{}

// Dialect implements the Strategy interface.
func (MySQL) Dialect() string { return dialect.MySQL }

// UpdateLimit implements the Strategy interface.
func (MySQL) UpdateLimit() bool { return true }

// ExistsQuery implements the Strategy interface.
func (MySQL) ExistsQuery(table string) (string, []any) {
	return "SELECT COUNT(*) FROM `information_schema`.`TABLES` WHERE `TABLE_SCHEMA` = (SELECT DATABASE()) AND `TABLE_NAME` = ?", []any{table}
}

// CreateStatement implements the Strategy interface.
func (m MySQL) CreateStatement(d *entschema.Descriptor) string {
	pks := d.PrimaryKeys()
	composite := len(pks) > 1
	return createTable(d, func(w columnWriter, c *entschema.Column) {
		w.sqlType(c, m.sqlType(c))
		switch {
		case c.Default.Policy == entschema.DefaultUnixTimestamp:
			w.b.WriteString(" DEFAULT (UNIX_TIMESTAMP())")
		default:
			w.literal(c.Default)
		}
		switch {
		case c.AutoIncrement:
			w.b.WriteString(" AUTO_INCREMENT")
		case c.PrimaryKey:
			w.b.WriteString(" NOT NULL")
		default:
			w.b.WriteString(" NULL")
		}
		if c.PrimaryKey && !composite {
			w.b.WriteString(" PRIMARY KEY")
		}
	}, func(w columnWriter) {
		if !composite {
			return
		}
		w.b.WriteString(", PRIMARY KEY (")
		for i, c := range pks {
			if i > 0 {
				w.b.WriteString(", ")
			}
			w.b.Ident(c.Name)
		}
		w.b.WriteByte(')')
	})
}

func (MySQL) sqlType(c *entschema.Column) string {
	if c.Type != "" {
		return c.Type
	}
	switch c.Kind {
	case entschema.KindText:
		// TEXT columns cannot be keys without a prefix length, nor carry
		// a literal default.
		if c.Size > 0 || c.PrimaryKey || c.ForeignKey != nil || c.Default.Policy == entschema.DefaultConstant {
			if c.Size == 0 {
				return "VARCHAR(255)"
			}
			return "VARCHAR"
		}
		return "TEXT"
	case entschema.KindInt:
		return "INT"
	case entschema.KindInt64:
		return "BIGINT"
	case entschema.KindBool:
		return "BOOLEAN"
	case entschema.KindFloat:
		return "DOUBLE"
	case entschema.KindTime:
		return "DATETIME"
	default:
		return "TEXT"
	}
}
