// Package schema synthesizes CREATE TABLE statements from entity
// descriptors and creates tables through a dialect.Driver.
package schema

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/entable"
	"github.com/syssam/entable/dialect"
	"github.com/syssam/entable/dialect/sql"
	entschema "github.com/syssam/entable/schema"
)

// Strategy holds the dialect specific parts of statement generation.
// A Client selects one strategy at construction time.
type Strategy interface {
	// Dialect returns the dialect name.
	Dialect() string
	// CreateStatement returns the CREATE TABLE IF NOT EXISTS statement of d.
	CreateStatement(d *entschema.Descriptor) string
	// ExistsQuery returns a statement counting the tables named table.
	ExistsQuery(table string) (string, []any)
	// UpdateLimit reports whether UPDATE accepts ORDER BY and LIMIT.
	UpdateLimit() bool
}

// ForDialect returns the strategy of the named dialect.
func ForDialect(name string) (Strategy, error) {
	switch name {
	case dialect.MySQL:
		return MySQL{}, nil
	case dialect.SQLite:
		return SQLite{}, nil
	default:
		return nil, fmt.Errorf("%w: dialect %q", entable.ErrUnsupported, name)
	}
}

// TableExists reports whether table exists, using the explicit existence
// query of the strategy. The DDL execution result is never used as the
// creation signal.
func TableExists(ctx context.Context, drv dialect.ExecQuerier, s Strategy, table string) (bool, error) {
	query, args := s.ExistsQuery(table)
	rows := &sql.Rows{}
	if err := drv.Query(ctx, query, args, rows); err != nil {
		return false, entable.NewStatementError("exists", query, args, err)
	}
	defer rows.Close()
	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return false, entable.NewStatementError("exists", query, args, err)
		}
	}
	if err := rows.Err(); err != nil {
		return false, entable.NewStatementError("exists", query, args, err)
	}
	return n > 0, nil
}

// Create creates the table of d if it does not exist and reports whether
// this call created it. Running it against an existing table is a no-op.
func Create(ctx context.Context, drv dialect.ExecQuerier, s Strategy, d *entschema.Descriptor) (bool, error) {
	if r := Validate(d, s); r.HasErrors() {
		return false, fmt.Errorf("entable: invalid table %s:\n%s", d.Table, r)
	}
	exists, err := TableExists(ctx, drv, s, d.Table)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	query := s.CreateStatement(d)
	if err := drv.Exec(ctx, query, []any{}, nil); err != nil {
		return false, entable.NewStatementError("create", query, nil, err)
	}
	return true, nil
}

// columnWriter renders the parts shared by every dialect.
type columnWriter struct {
	b *sql.Builder
}

func (w columnWriter) sqlType(c *entschema.Column, typ string) {
	w.b.WriteString(typ)
	if c.Size > 0 && !strings.Contains(typ, "(") {
		w.b.WriteByte('(').WriteString(strconv.Itoa(c.Size)).WriteByte(')')
	}
}

// literal renders the defaults that are plain literals in both dialects.
func (w columnWriter) literal(d entschema.Default) bool {
	switch d.Policy {
	case entschema.DefaultInt:
		w.b.WriteString(" DEFAULT ").WriteString(strconv.FormatInt(d.Int, 10))
	case entschema.DefaultBool:
		if d.Bool {
			w.b.WriteString(" DEFAULT TRUE")
		} else {
			w.b.WriteString(" DEFAULT FALSE")
		}
	case entschema.DefaultConstant:
		w.b.WriteString(" DEFAULT '").WriteString(strings.ReplaceAll(d.Text, "'", "''")).WriteByte('\'')
	case entschema.DefaultCurrentTimestamp:
		w.b.WriteString(" DEFAULT CURRENT_TIMESTAMP")
	default:
		return false
	}
	return true
}

// foreignKeys appends one constraint clause per foreign-key column.
func (w columnWriter) foreignKeys(d *entschema.Descriptor) {
	for _, c := range d.ForeignKeys() {
		fk := c.ForeignKey
		w.b.WriteString(", CONSTRAINT ").
			WriteString(d.Table + "_" + fk.Table + "_" + c.Name + "_fk").
			WriteString(" FOREIGN KEY (").Ident(c.Name).
			WriteString(") REFERENCES ").WriteString(fk.Table).
			WriteString(" (").WriteString(fk.Column).WriteString(")").
			WriteString(" ON UPDATE ").WriteString(string(fk.OnUpdate)).
			WriteString(" ON DELETE ").WriteString(string(fk.OnDelete))
	}
}

func createTable(d *entschema.Descriptor, column func(w columnWriter, c *entschema.Column), trailer func(w columnWriter)) string {
	w := columnWriter{b: &sql.Builder{}}
	w.b.WriteString("CREATE TABLE IF NOT EXISTS ").Ident(d.Table).WriteString(" (")
	for i, c := range d.Columns {
		if i > 0 {
			w.b.WriteString(", ")
		}
		w.b.Ident(c.Name).WriteByte(' ')
		column(w, c)
	}
	if trailer != nil {
		trailer(w)
	}
	w.foreignKeys(d)
	w.b.WriteByte(')')
	return w.b.String()
}
