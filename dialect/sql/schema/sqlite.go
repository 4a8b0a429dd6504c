package schema

import (
	"github.com/syssam/entable/dialect"
	entschema "github.com/syssam/entable/schema"
)

// SQLite is the SQLite strategy. Key columns carry an inline named
// PRIMARY KEY constraint; there is never a trailing composite clause.
type SQLite struct{}

// Dialect implements the Strategy interface.
func (SQLite) Dialect() string { return dialect.SQLite }

// UpdateLimit implements the Strategy interface. Stock SQLite builds do
// not accept ORDER BY or LIMIT on UPDATE.
func (SQLite) UpdateLimit() bool { return false }

// ExistsQuery implements the Strategy interface.
func (SQLite) ExistsQuery(table string) (string, []any) {
	return "SELECT COUNT(*) FROM `sqlite_master` WHERE `type` = 'table' AND `name` = ?", []any{table}
}

// CreateStatement implements the Strategy interface.
func (s SQLite) CreateStatement(d *entschema.Descriptor) string {
	return createTable(d, func(w columnWriter, c *entschema.Column) {
		w.sqlType(c, s.sqlType(c))
		switch {
		case c.Default.Policy == entschema.DefaultUnixTimestamp:
			w.b.WriteString(" DEFAULT (strftime('%s','now'))")
		default:
			w.literal(c.Default)
		}
		if !c.PrimaryKey {
			return
		}
		if !c.AutoIncrement {
			w.b.WriteString(" NOT NULL")
		}
		w.b.WriteString(" CONSTRAINT ").WriteString(d.Table + "_" + c.Name + "_pk").WriteString(" PRIMARY KEY")
		if c.AutoIncrement {
			w.b.WriteString(" AUTOINCREMENT")
		}
	}, nil)
}

func (SQLite) sqlType(c *entschema.Column) string {
	if c.Type != "" {
		return c.Type
	}
	switch c.Kind {
	case entschema.KindInt, entschema.KindInt64:
		return "INTEGER"
	case entschema.KindBool:
		return "BOOLEAN"
	case entschema.KindFloat:
		return "REAL"
	case entschema.KindTime:
		return "DATETIME"
	default:
		return "TEXT"
	}
}
