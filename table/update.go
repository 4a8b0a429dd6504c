package table

import (
	"context"
	"fmt"

	"github.com/syssam/entable"
	"github.com/syssam/entable/dialect/sql"
	"github.com/syssam/entable/schema"
)

// UpdateSelector is the builder for updating rows of T with explicit
// assignments and predicates.
type UpdateSelector[T any] struct {
	client *Client
	desc   *schema.Descriptor
	upd    *sql.UpdateBuilder
	err    error
}

// Updater returns an UpdateSelector for the table.
func (t *Table[T]) Updater() *UpdateSelector[T] {
	return &UpdateSelector[T]{
		client: t.client,
		desc:   t.desc,
		upd:    sql.Update(t.desc.Table),
	}
}

// Set assigns v to column. Unknown columns fail Exec with
// entable.ErrMissingColumn.
func (u *UpdateSelector[T]) Set(column string, v any) *UpdateSelector[T] {
	if _, ok := u.desc.Column(column); !ok {
		if u.err == nil {
			u.err = fmt.Errorf("%w: %s.%s", entable.ErrMissingColumn, u.desc.Table, column)
		}
		return u
	}
	u.upd.Set(column, v)
	return u
}

// SetExample assigns every meaningfully set column of e except the
// auto-increment one.
func (u *UpdateSelector[T]) SetExample(e *T) *UpdateSelector[T] {
	ev := entityValue(e)
	if !ev.IsValid() {
		return u
	}
	for _, c := range u.desc.Columns {
		if c.AutoIncrement {
			continue
		}
		if fv := c.Value(ev); meaningful(c, fv) {
			u.upd.Set(c.Name, schema.Storable(c, fv))
		}
	}
	return u
}

// Where adds predicates, AND-joined with the existing ones.
func (u *UpdateSelector[T]) Where(ps ...*sql.Predicate) *UpdateSelector[T] {
	u.upd.Where(ps...)
	return u
}

// WhereExample adds one equality predicate per meaningfully set column of e.
func (u *UpdateSelector[T]) WhereExample(e *T) *UpdateSelector[T] {
	u.upd.Where(examplePredicates(u.desc, e, false, meaningful)...)
	return u
}

// OrderBy adds an ORDER BY term. Only MySQL accepts it.
func (u *UpdateSelector[T]) OrderBy(column string, dir sql.OrderDirection) *UpdateSelector[T] {
	u.upd.OrderBy(column, dir)
	return u
}

// Limit caps the number of updated rows. Only MySQL accepts it.
func (u *UpdateSelector[T]) Limit(n int) *UpdateSelector[T] {
	u.upd.Limit(n)
	return u
}

// Query returns the UPDATE statement and its arguments.
func (u *UpdateSelector[T]) Query() (string, []any) {
	return u.upd.Query()
}

// Exec runs the update and returns the number of affected rows. It refuses
// to run without assignments (entable.ErrEmptyUpdate) or without
// predicates (entable.ErrUnqualifiedUpdate).
func (u *UpdateSelector[T]) Exec(ctx context.Context) (int64, error) {
	switch {
	case u.err != nil:
		return 0, u.err
	case u.upd.Empty():
		return 0, fmt.Errorf("%w: %s", entable.ErrEmptyUpdate, u.desc.Table)
	case !u.upd.HasWhere():
		return 0, fmt.Errorf("%w: %s", entable.ErrUnqualifiedUpdate, u.desc.Table)
	case u.upd.Bounded() && !u.client.strategy.UpdateLimit():
		return 0, fmt.Errorf("%w: ORDER BY or LIMIT on UPDATE with %s", entable.ErrUnsupported, u.client.Dialect())
	}
	return u.client.affected(ctx, u.desc.Table, "update", u.upd)
}
