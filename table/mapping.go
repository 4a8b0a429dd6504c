package table

import (
	"context"
	"errors"
	"iter"
	"log/slog"

	"github.com/syssam/entable"
	"github.com/syssam/entable/dialect/sql"
	"github.com/syssam/entable/schema"
)

// mapper builds entities of T from cursor rows.
type mapper[T any] struct {
	desc   *schema.Descriptor
	policy RowPolicy
	logger *slog.Logger
}

func newMapper[T any](c *Client, policy RowPolicy) mapper[T] {
	return mapper[T]{desc: schema.Of[T](), policy: policy, logger: c.logger}
}

// row maps the current row. index is the zero-based row number used in
// diagnostics.
func (m mapper[T]) row(rs sql.ColumnScanner, columns []string, index int) (*T, error) {
	record, err := sql.ScanRecord(rs, columns)
	if err != nil {
		return nil, err
	}
	e := m.desc.New()
	ev := e.Elem()
	for _, c := range m.desc.Columns {
		raw, ok := record[c.Name]
		if !ok {
			return nil, entable.NewMappingError(m.desc.Table, index, c.Name, entable.ErrMissingColumn)
		}
		if err := schema.Assign(c, ev, raw); err != nil {
			return nil, entable.NewMappingError(m.desc.Table, index, c.Name, err)
		}
	}
	return e.Interface().(*T), nil
}

// each yields the remaining rows. Mapping failures follow the policy;
// cursor failures always end the sequence with an error.
func (m mapper[T]) each(ctx context.Context, rs sql.ColumnScanner) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		columns, err := rs.Columns()
		if err != nil {
			yield(nil, err)
			return
		}
		for index := 0; rs.Next(); index++ {
			e, err := m.row(rs, columns, index)
			if err != nil {
				var merr *entable.MappingError
				if m.policy == SkipOnRowError && errors.As(err, &merr) {
					m.logger.WarnContext(ctx, "skipping unmappable row",
						"table", merr.Table, "row", merr.Row, "column", merr.Column, "error", merr.Err)
					continue
				}
				yield(nil, err)
				return
			}
			if !yield(e, nil) {
				return
			}
		}
		if err := rs.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// all maps the remaining rows eagerly. Under the abort policy a failing
// row discards every row mapped so far.
func (m mapper[T]) all(ctx context.Context, rs sql.ColumnScanner) ([]*T, error) {
	var out []*T
	for e, err := range m.each(ctx, rs) {
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// FromRow maps the current row of rows, which must have been advanced
// with Next, into a new entity.
func FromRow[T any](rows sql.ColumnScanner) (*T, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	return mapper[T]{desc: schema.Of[T]()}.row(rows, columns, 0)
}

// FromRows maps every remaining row of rows using the client's row error
// policy. The caller closes rows.
func FromRows[T any](ctx context.Context, c *Client, rows sql.ColumnScanner) ([]*T, error) {
	return newMapper[T](c, c.policy).all(ctx, rows)
}

// EachRow returns a single-pass sequence over the remaining rows of rows
// using the client's row error policy. The caller closes rows.
func EachRow[T any](ctx context.Context, c *Client, rows sql.ColumnScanner) iter.Seq2[*T, error] {
	return newMapper[T](c, c.policy).each(ctx, rows)
}
