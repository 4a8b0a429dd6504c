package table

import (
	"context"
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/syssam/entable"
	"github.com/syssam/entable/dialect/sql"
	sqlschema "github.com/syssam/entable/dialect/sql/schema"
	"github.com/syssam/entable/schema"
)

// Table runs statements for entity type T through a Client.
type Table[T any] struct {
	client *Client
	desc   *schema.Descriptor
}

// New returns the Table of T. It panics with a *entable.MetadataError if
// T is not a valid entity type.
func New[T any](c *Client) *Table[T] {
	return &Table[T]{client: c, desc: schema.Of[T]()}
}

// Name returns the table name.
func (t *Table[T]) Name() string {
	return t.desc.Table
}

// Descriptor returns the metadata of T.
func (t *Table[T]) Descriptor() *schema.Descriptor {
	return t.desc
}

// CreateStatement returns the CREATE TABLE statement of T for the client
// dialect.
func (t *Table[T]) CreateStatement() string {
	return t.client.strategy.CreateStatement(t.desc)
}

// Create creates the table if it does not exist and reports whether it was
// created by this call. The onCreate hooks run in order only when the table
// was created, for example to seed it.
func (t *Table[T]) Create(ctx context.Context, onCreate ...func(context.Context) error) (bool, error) {
	created, err := sqlschema.Create(ctx, t.client.driver, t.client.strategy, t.desc)
	if err != nil || !created {
		return created, err
	}
	t.client.invalidate(ctx, t.desc.Table)
	for _, fn := range onCreate {
		if err := fn(ctx); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Predicate returns the filter-by-example WHERE expression of filter,
// without the WHERE keyword, and its arguments. Only meaningfully set
// columns take part; a nil or empty filter yields "".
func (t *Table[T]) Predicate(filter *T) (string, []any) {
	preds := examplePredicates(t.desc, filter, false, meaningful)
	if len(preds) == 0 {
		return "", nil
	}
	return sql.And(preds...).Query()
}

// SelectOption configures a Select call.
type SelectOption func(*sql.Selector)

// OrderBy sorts the selected rows by column.
func OrderBy(column string, dir sql.OrderDirection) SelectOption {
	return func(s *sql.Selector) {
		s.OrderBy(column, dir)
	}
}

// Limit caps the number of selected rows.
func Limit(n int) SelectOption {
	return func(s *sql.Selector) {
		s.Limit(n)
	}
}

// Select returns the rows matching filter by example.
func (t *Table[T]) Select(ctx context.Context, filter *T, opts ...SelectOption) ([]*T, error) {
	q := t.Query().WhereExample(filter)
	for _, opt := range opts {
		opt(q.sel)
	}
	return q.All(ctx)
}

// Get returns the row whose single primary key equals key.
func (t *Table[T]) Get(ctx context.Context, key any) (*T, error) {
	pks := t.desc.PrimaryKeys()
	if len(pks) != 1 {
		return nil, fmt.Errorf("%w: get on table %s with %d primary key columns", entable.ErrUnsupported, t.desc.Table, len(pks))
	}
	return t.Query().Where(sql.EQ(pks[0].Name, key)).First(ctx)
}

// Insert inserts e and returns the generated key, which is also stored
// into the auto-increment field of e. It returns 0 when T has no
// auto-increment column or the driver reports no key.
//
// Auto-increment columns and nil pointers are never sent. Zero values of
// columns with a database default are omitted so the database fills them;
// use a pointer field to store an explicit zero. Empty random-default text
// columns receive a generated UUID.
func (t *Table[T]) Insert(ctx context.Context, e *T) (int64, error) {
	if e == nil {
		return 0, fmt.Errorf("entable: insert into %s: nil entity", t.desc.Table)
	}
	ev := reflect.ValueOf(e).Elem()
	ins := sql.Insert(t.desc.Table).Dialect(t.client.Dialect())
	for _, c := range t.desc.Columns {
		if c.AutoIncrement {
			continue
		}
		fv := c.Value(ev)
		if c.Default.Policy == schema.DefaultRandom {
			fillRandom(c, fv)
		}
		switch {
		case c.IsNull(fv):
		case !c.Nullable && fv.IsZero() && (c.Default.InDatabase() || c.Kind == schema.KindTime):
		default:
			ins.Set(c.Name, schema.Storable(c, fv))
		}
	}
	res, err := t.client.exec(ctx, "insert", ins)
	if err != nil {
		return 0, err
	}
	t.client.invalidate(ctx, t.desc.Table)
	auto, ok := t.desc.AutoIncrement()
	if !ok {
		return 0, nil
	}
	id, err := res.LastInsertId()
	if err != nil || id == 0 {
		return 0, nil
	}
	if err := schema.Assign(auto, ev, id); err != nil {
		return 0, err
	}
	return id, nil
}

func fillRandom(c *schema.Column, fv reflect.Value) {
	if c.Kind != schema.KindText {
		return
	}
	switch {
	case c.Nullable && fv.IsNil():
		p := reflect.New(c.GoType.Elem())
		p.Elem().SetString(uuid.NewString())
		fv.Set(p)
	case !c.Nullable && fv.String() == "":
		fv.SetString(uuid.NewString())
	}
}

// Update sets the meaningfully set columns of values on the rows matching
// where by example, and returns the number of affected rows. Auto-increment
// columns are never assigned. An empty SET clause fails with
// entable.ErrEmptyUpdate and an empty WHERE clause with
// entable.ErrUnqualifiedUpdate.
func (t *Table[T]) Update(ctx context.Context, values, where *T) (int64, error) {
	return t.Updater().SetExample(values).WhereExample(where).Exec(ctx)
}

// Delete removes the rows equal to e on every non-null column except the
// auto-increment one, and returns the number of affected rows. With no such
// column it fails with entable.ErrUnqualifiedDelete.
func (t *Table[T]) Delete(ctx context.Context, e *T) (int64, error) {
	del := sql.Delete(t.desc.Table).Where(examplePredicates(t.desc, e, true, present)...)
	if !del.HasWhere() {
		return 0, fmt.Errorf("%w: %s", entable.ErrUnqualifiedDelete, t.desc.Table)
	}
	return t.client.affected(ctx, t.desc.Table, "delete", del)
}

// affected executes a write and returns the affected row count.
func (c *Client) affected(ctx context.Context, table, op string, q sql.Querier) (int64, error) {
	res, err := c.exec(ctx, op, q)
	if err != nil {
		return 0, err
	}
	c.invalidate(ctx, table)
	n, err := res.RowsAffected()
	if err != nil {
		query, args := q.Query()
		return 0, entable.NewStatementError(op, query, args, fmt.Errorf("rows affected: %w", err))
	}
	return n, nil
}
