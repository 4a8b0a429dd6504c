package table

import (
	"context"
	"fmt"
	"iter"

	"github.com/syssam/entable"
	"github.com/syssam/entable/dialect/sql"
	"github.com/syssam/entable/schema"
)

// QuerySelector is the builder for reading rows of T with explicit
// predicates, ordering, limit and offset.
type QuerySelector[T any] struct {
	client *Client
	desc   *schema.Descriptor
	sel    *sql.Selector
	policy RowPolicy
}

// Query returns a QuerySelector over all rows of the table.
func (t *Table[T]) Query() *QuerySelector[T] {
	return &QuerySelector[T]{
		client: t.client,
		desc:   t.desc,
		sel:    sql.Select().From(t.desc.Table),
		policy: t.client.policy,
	}
}

// Where adds predicates, AND-joined with the existing ones.
func (q *QuerySelector[T]) Where(ps ...*sql.Predicate) *QuerySelector[T] {
	q.sel.Where(ps...)
	return q
}

// WhereExample adds one equality predicate per meaningfully set column of e.
func (q *QuerySelector[T]) WhereExample(e *T) *QuerySelector[T] {
	q.sel.Where(examplePredicates(q.desc, e, false, meaningful)...)
	return q
}

// OrderBy adds an ORDER BY term.
func (q *QuerySelector[T]) OrderBy(column string, dir sql.OrderDirection) *QuerySelector[T] {
	q.sel.OrderBy(column, dir)
	return q
}

// Limit caps the number of rows returned.
func (q *QuerySelector[T]) Limit(n int) *QuerySelector[T] {
	q.sel.Limit(n)
	return q
}

// Offset skips the first n rows. It only applies together with Limit.
func (q *QuerySelector[T]) Offset(n int) *QuerySelector[T] {
	q.sel.Offset(n)
	return q
}

// RowPolicy overrides the client's row error policy for this selector.
func (q *QuerySelector[T]) RowPolicy(p RowPolicy) *QuerySelector[T] {
	q.policy = p
	return q
}

// Clone returns a copy of the selector that can be modified independently.
func (q *QuerySelector[T]) Clone() *QuerySelector[T] {
	c := *q
	c.sel = q.sel.Clone()
	return &c
}

// Query returns the SELECT statement and its arguments.
func (q *QuerySelector[T]) Query() (string, []any) {
	return q.sel.Query()
}

func (q *QuerySelector[T]) cacheKey(op string) entable.CacheKey {
	return entable.CacheKey{
		Table:      q.desc.Table,
		Entity:     q.desc.Type.String(),
		Operation:  op,
		Predicates: q.sel.WhereString(),
		OrderBy:    q.sel.OrderString(),
		Limit:      q.sel.GetLimit(),
		Offset:     q.sel.GetOffset(),
	}
}

// All returns every selected row.
func (q *QuerySelector[T]) All(ctx context.Context) ([]*T, error) {
	key := q.cacheKey("all/" + q.policy.String()).String()
	var out []*T
	if q.client.cacheGet(ctx, key, &out) {
		return out, nil
	}
	query, args := q.sel.Query()
	rows, err := q.client.query(ctx, "select", query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out, err = newMapper[T](q.client, q.policy).all(ctx, rows)
	if err != nil {
		return nil, q.mapErr(err, query, args)
	}
	q.client.cacheSet(ctx, key, out)
	return out, nil
}

// First returns the first selected row, or a *entable.NotFoundError.
func (q *QuerySelector[T]) First(ctx context.Context) (*T, error) {
	out, err := q.Clone().Limit(1).All(ctx)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, entable.NewNotFoundError(q.desc.Table)
	}
	return out[0], nil
}

// Count returns the number of rows matching the predicates, ignoring
// ordering, limit and offset.
func (q *QuerySelector[T]) Count(ctx context.Context) (int, error) {
	key := q.cacheKey("count")
	key.Limit, key.Offset, key.OrderBy = 0, 0, ""
	var n int
	if q.client.cacheGet(ctx, key.String(), &n) {
		return n, nil
	}
	query, args := q.sel.CountQuery()
	n, err := q.client.count(ctx, query, args)
	if err != nil {
		return 0, err
	}
	q.client.cacheSet(ctx, key.String(), n)
	return n, nil
}

// Exist reports whether any row matches the predicates.
func (q *QuerySelector[T]) Exist(ctx context.Context) (bool, error) {
	_, err := q.First(ctx)
	switch {
	case entable.IsNotFound(err):
		return false, nil
	case err != nil:
		return false, err
	default:
		return true, nil
	}
}

// Each returns a lazy single-pass sequence over the selected rows. The
// statement runs when iteration starts and the cursor is closed when it
// stops. Results are never cached.
func (q *QuerySelector[T]) Each(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		query, args := q.sel.Query()
		rows, err := q.client.query(ctx, "select", query, args)
		if err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()
		for e, err := range newMapper[T](q.client, q.policy).each(ctx, rows) {
			if err != nil {
				yield(nil, q.mapErr(err, query, args))
				return
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

// Paginate returns a Pagination over the selector.
func (q *QuerySelector[T]) Paginate(size int) *Pagination[T] {
	return NewPagination(q, size)
}

// mapErr attaches the statement to cursor failures. Mapping failures
// already name the table, row and column.
func (q *QuerySelector[T]) mapErr(err error, query string, args []any) error {
	if entable.IsMappingError(err) {
		return err
	}
	return entable.NewStatementError("select", query, args, fmt.Errorf("reading rows: %w", err))
}
