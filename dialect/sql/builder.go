package sql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/entable/dialect"
)

// Querier wraps the basic Query method implemented by all builders.
type Querier interface {
	// Query returns the statement text and its bound arguments.
	Query() (string, []any)
}

// Quote quotes an identifier with backticks, which both supported
// dialects accept.
func Quote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

// Builder is the base statement builder. Values are never written into
// the text: Arg emits a placeholder and records the value.
type Builder struct {
	sb   strings.Builder
	args []any
}

// WriteString appends s to the statement text.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// WriteByte appends c to the statement text.
func (b *Builder) WriteByte(c byte) *Builder {
	b.sb.WriteByte(c)
	return b
}

// Ident appends a quoted identifier.
func (b *Builder) Ident(s string) *Builder {
	b.sb.WriteString(Quote(s))
	return b
}

// IdentComma appends the quoted identifiers separated by commas.
func (b *Builder) IdentComma(idents ...string) *Builder {
	for i, s := range idents {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.Ident(s)
	}
	return b
}

// Arg appends a placeholder bound to v.
func (b *Builder) Arg(v any) *Builder {
	b.sb.WriteByte('?')
	b.args = append(b.args, v)
	return b
}

// Args appends comma-separated placeholders bound to vs.
func (b *Builder) Args(vs ...any) *Builder {
	for i, v := range vs {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.Arg(v)
	}
	return b
}

// Join appends the statement and arguments of q.
func (b *Builder) Join(q Querier) *Builder {
	query, args := q.Query()
	b.sb.WriteString(query)
	b.args = append(b.args, args...)
	return b
}

// Query implements the Querier interface.
func (b *Builder) Query() (string, []any) {
	return b.sb.String(), b.args
}

// String returns the statement text.
func (b *Builder) String() string {
	return b.sb.String()
}

// OrderDirection is the sort direction of an ORDER BY term.
type OrderDirection string

// Order directions.
const (
	OrderAsc  OrderDirection = "ASC"
	OrderDesc OrderDirection = "DESC"
)

// order is one ORDER BY term.
type order struct {
	column string
	dir    OrderDirection
}

func writeOrder(b *Builder, orders []order) {
	if len(orders) == 0 {
		return
	}
	b.WriteString(" ORDER BY ")
	for i, o := range orders {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(o.column)
		if o.dir != "" {
			b.WriteByte(' ').WriteString(string(o.dir))
		}
	}
}

func writeWhere(b *Builder, preds []*Predicate) {
	if len(preds) == 0 {
		return
	}
	b.WriteString(" WHERE ")
	for i, p := range preds {
		if i > 0 {
			b.WriteString(" AND ")
		}
		p.build(b, len(preds) > 1)
	}
}

// Selector is a builder for SELECT statements.
type Selector struct {
	table   string
	columns []string
	where   []*Predicate
	order   []order
	limit   *int
	offset  *int
}

// Select returns a Selector for the given columns; no columns selects *.
func Select(columns ...string) *Selector {
	return &Selector{columns: columns}
}

// From sets the table to select from.
func (s *Selector) From(table string) *Selector {
	s.table = table
	return s
}

// Table returns the table the selector reads from.
func (s *Selector) Table() string {
	return s.table
}

// Where appends predicates, AND-joined with the existing ones.
func (s *Selector) Where(ps ...*Predicate) *Selector {
	for _, p := range ps {
		if p != nil && !p.Empty() {
			s.where = append(s.where, p)
		}
	}
	return s
}

// HasWhere reports whether the selector has any predicate.
func (s *Selector) HasWhere() bool {
	return len(s.where) > 0
}

// OrderBy appends an ORDER BY term.
func (s *Selector) OrderBy(column string, dir OrderDirection) *Selector {
	s.order = append(s.order, order{column: column, dir: dir})
	return s
}

// Limit sets the LIMIT clause. Non-positive values clear it.
func (s *Selector) Limit(n int) *Selector {
	if n <= 0 {
		s.limit = nil
		return s
	}
	s.limit = &n
	return s
}

// Offset sets the OFFSET clause. It is only emitted together with a limit.
func (s *Selector) Offset(n int) *Selector {
	if n <= 0 {
		s.offset = nil
		return s
	}
	s.offset = &n
	return s
}

// GetLimit returns the limit, or 0 when unset.
func (s *Selector) GetLimit() int {
	if s.limit == nil {
		return 0
	}
	return *s.limit
}

// GetOffset returns the offset, or 0 when unset.
func (s *Selector) GetOffset() int {
	if s.offset == nil {
		return 0
	}
	return *s.offset
}

// Clone returns a deep copy of the selector. Predicates are immutable and
// shared.
func (s *Selector) Clone() *Selector {
	c := *s
	c.columns = append([]string(nil), s.columns...)
	c.where = append([]*Predicate(nil), s.where...)
	c.order = append([]order(nil), s.order...)
	if s.limit != nil {
		n := *s.limit
		c.limit = &n
	}
	if s.offset != nil {
		n := *s.offset
		c.offset = &n
	}
	return &c
}

// Query implements the Querier interface.
func (s *Selector) Query() (string, []any) {
	b := &Builder{}
	b.WriteString("SELECT ")
	if len(s.columns) == 0 {
		b.WriteByte('*')
	} else {
		b.IdentComma(s.columns...)
	}
	b.WriteString(" FROM ").Ident(s.table)
	writeWhere(b, s.where)
	writeOrder(b, s.order)
	if s.limit != nil {
		b.WriteString(" LIMIT ").WriteString(strconv.Itoa(*s.limit))
		if s.offset != nil {
			b.WriteString(" OFFSET ").WriteString(strconv.Itoa(*s.offset))
		}
	}
	return b.Query()
}

// CountQuery returns a COUNT(*) statement over the same predicates,
// ignoring ordering, limit and offset.
func (s *Selector) CountQuery() (string, []any) {
	b := &Builder{}
	b.WriteString("SELECT COUNT(*) FROM ").Ident(s.table)
	writeWhere(b, s.where)
	return b.Query()
}

// WhereString renders the predicates and their arguments, used to derive
// cache keys.
func (s *Selector) WhereString() string {
	b := &Builder{}
	writeWhere(b, s.where)
	query, args := b.Query()
	return fmt.Sprintf("%s%v", query, args)
}

// OrderString renders the ORDER BY clause.
func (s *Selector) OrderString() string {
	b := &Builder{}
	writeOrder(b, s.order)
	return b.String()
}

// InsertBuilder is a builder for INSERT statements.
type InsertBuilder struct {
	dialect string
	table   string
	columns []string
	values  []any
}

// Insert returns an InsertBuilder for the given table.
func Insert(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

// Dialect sets the dialect, used to render an INSERT without columns.
func (i *InsertBuilder) Dialect(name string) *InsertBuilder {
	i.dialect = name
	return i
}

// Set appends a column and its value.
func (i *InsertBuilder) Set(column string, v any) *InsertBuilder {
	i.columns = append(i.columns, column)
	i.values = append(i.values, v)
	return i
}

// Query implements the Querier interface.
func (i *InsertBuilder) Query() (string, []any) {
	b := &Builder{}
	b.WriteString("INSERT INTO ").Ident(i.table)
	switch {
	case len(i.columns) > 0:
		b.WriteString(" (").IdentComma(i.columns...).WriteString(") VALUES (").Args(i.values...).WriteByte(')')
	case i.dialect == dialect.MySQL:
		b.WriteString(" () VALUES ()")
	default:
		b.WriteString(" DEFAULT VALUES")
	}
	return b.Query()
}

// UpdateBuilder is a builder for UPDATE statements.
type UpdateBuilder struct {
	table   string
	columns []string
	values  []any
	where   []*Predicate
	order   []order
	limit   *int
}

// Update returns an UpdateBuilder for the given table.
func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

// Set appends a column assignment.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	u.columns = append(u.columns, column)
	u.values = append(u.values, v)
	return u
}

// Where appends predicates, AND-joined with the existing ones.
func (u *UpdateBuilder) Where(ps ...*Predicate) *UpdateBuilder {
	for _, p := range ps {
		if p != nil && !p.Empty() {
			u.where = append(u.where, p)
		}
	}
	return u
}

// OrderBy appends an ORDER BY term.
func (u *UpdateBuilder) OrderBy(column string, dir OrderDirection) *UpdateBuilder {
	u.order = append(u.order, order{column: column, dir: dir})
	return u
}

// Limit sets the LIMIT clause. Non-positive values clear it.
func (u *UpdateBuilder) Limit(n int) *UpdateBuilder {
	if n <= 0 {
		u.limit = nil
		return u
	}
	u.limit = &n
	return u
}

// Empty reports whether the update has no assignments.
func (u *UpdateBuilder) Empty() bool {
	return len(u.columns) == 0
}

// HasWhere reports whether the update has any predicate.
func (u *UpdateBuilder) HasWhere() bool {
	return len(u.where) > 0
}

// Bounded reports whether the update carries ORDER BY or LIMIT terms.
func (u *UpdateBuilder) Bounded() bool {
	return len(u.order) > 0 || u.limit != nil
}

// Query implements the Querier interface.
func (u *UpdateBuilder) Query() (string, []any) {
	b := &Builder{}
	b.WriteString("UPDATE ").Ident(u.table)
	if len(u.columns) > 0 {
		b.WriteString(" SET ")
		for i, c := range u.columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Ident(c).WriteString(" = ").Arg(u.values[i])
		}
	}
	writeWhere(b, u.where)
	writeOrder(b, u.order)
	if u.limit != nil {
		b.WriteString(" LIMIT ").WriteString(strconv.Itoa(*u.limit))
	}
	return b.Query()
}

// DeleteBuilder is a builder for DELETE statements.
type DeleteBuilder struct {
	table string
	where []*Predicate
}

// Delete returns a DeleteBuilder for the given table.
func Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

// Where appends predicates, AND-joined with the existing ones.
func (d *DeleteBuilder) Where(ps ...*Predicate) *DeleteBuilder {
	for _, p := range ps {
		if p != nil && !p.Empty() {
			d.where = append(d.where, p)
		}
	}
	return d
}

// HasWhere reports whether the delete has any predicate.
func (d *DeleteBuilder) HasWhere() bool {
	return len(d.where) > 0
}

// Query implements the Querier interface.
func (d *DeleteBuilder) Query() (string, []any) {
	b := &Builder{}
	b.WriteString("DELETE FROM ").Ident(d.table)
	writeWhere(b, d.where)
	return b.Query()
}
