package sql

import (
	"fmt"
	"time"
)

// Predicate is an immutable boolean expression over columns. It renders
// into a Builder on demand, so one predicate may be shared by any number
// of selectors.
type Predicate struct {
	fn       func(*Builder)
	compound bool
}

// P returns a predicate rendered by fn.
func P(fn func(*Builder)) *Predicate {
	return &Predicate{fn: fn}
}

// Empty reports whether the predicate renders nothing.
func (p *Predicate) Empty() bool {
	return p == nil || p.fn == nil
}

// Query implements the Querier interface.
func (p *Predicate) Query() (string, []any) {
	b := &Builder{}
	p.build(b, false)
	return b.Query()
}

// String returns the predicate text followed by its arguments.
func (p *Predicate) String() string {
	query, args := p.Query()
	return fmt.Sprintf("%s%v", query, args)
}

// build renders p into b, wrapping compound expressions in parentheses
// when they appear next to other terms.
func (p *Predicate) build(b *Builder, nested bool) {
	if p.Empty() {
		return
	}
	if p.compound && nested {
		b.WriteByte('(')
		p.fn(b)
		b.WriteByte(')')
		return
	}
	p.fn(b)
}

func compare(column, op string, v any) *Predicate {
	return P(func(b *Builder) {
		b.Ident(column).WriteByte(' ').WriteString(op).WriteByte(' ').Arg(v)
	})
}

// EQ returns a "column = v" predicate.
func EQ(column string, v any) *Predicate { return compare(column, "=", v) }

// NEQ returns a "column <> v" predicate.
func NEQ(column string, v any) *Predicate { return compare(column, "<>", v) }

// GT returns a "column > v" predicate.
func GT(column string, v any) *Predicate { return compare(column, ">", v) }

// GTE returns a "column >= v" predicate.
func GTE(column string, v any) *Predicate { return compare(column, ">=", v) }

// LT returns a "column < v" predicate.
func LT(column string, v any) *Predicate { return compare(column, "<", v) }

// LTE returns a "column <= v" predicate.
func LTE(column string, v any) *Predicate { return compare(column, "<=", v) }

// Like returns a "column LIKE pattern" predicate.
func Like(column, pattern string) *Predicate { return compare(column, "LIKE", pattern) }

// HasPrefix matches values starting with prefix. Wildcards inside prefix
// keep their LIKE meaning; the escape character differs between dialects.
func HasPrefix(column, prefix string) *Predicate {
	return Like(column, prefix+"%")
}

// HasSuffix matches values ending with suffix.
func HasSuffix(column, suffix string) *Predicate {
	return Like(column, "%"+suffix)
}

// Contains matches values containing sub.
func Contains(column, sub string) *Predicate {
	return Like(column, "%"+sub+"%")
}

// In returns a "column IN (...)" predicate. An empty list matches nothing.
func In(column string, vs ...any) *Predicate {
	return P(func(b *Builder) {
		if len(vs) == 0 {
			b.WriteString("1 = 0")
			return
		}
		b.Ident(column).WriteString(" IN (").Args(vs...).WriteByte(')')
	})
}

// NotIn returns a "column NOT IN (...)" predicate. An empty list matches
// everything.
func NotIn(column string, vs ...any) *Predicate {
	return P(func(b *Builder) {
		if len(vs) == 0 {
			b.WriteString("1 = 1")
			return
		}
		b.Ident(column).WriteString(" NOT IN (").Args(vs...).WriteByte(')')
	})
}

// IsNull returns a "column IS NULL" predicate.
func IsNull(column string) *Predicate {
	return P(func(b *Builder) { b.Ident(column).WriteString(" IS NULL") })
}

// NotNull returns a "column IS NOT NULL" predicate.
func NotNull(column string) *Predicate {
	return P(func(b *Builder) { b.Ident(column).WriteString(" IS NOT NULL") })
}

// And joins the non-empty predicates with AND.
func And(preds ...*Predicate) *Predicate { return join(" AND ", preds) }

// Or joins the non-empty predicates with OR.
func Or(preds ...*Predicate) *Predicate { return join(" OR ", preds) }

func join(op string, preds []*Predicate) *Predicate {
	var terms []*Predicate
	for _, p := range preds {
		if !p.Empty() {
			terms = append(terms, p)
		}
	}
	switch len(terms) {
	case 0:
		return &Predicate{}
	case 1:
		return terms[0]
	}
	return &Predicate{
		compound: true,
		fn: func(b *Builder) {
			for i, p := range terms {
				if i > 0 {
					b.WriteString(op)
				}
				p.build(b, true)
			}
		},
	}
}

// Not negates p.
func Not(p *Predicate) *Predicate {
	if p.Empty() {
		return p
	}
	return P(func(b *Builder) {
		b.WriteString("NOT (")
		p.build(b, false)
		b.WriteByte(')')
	})
}

// StringField is a text column that provides typed predicate methods.
//
// Usage:
//
//	var Email = sql.StringField("email")
//	users.Query().Where(Email.HasPrefix("admin@"))
type StringField string

// Name returns the column name.
func (f StringField) Name() string { return string(f) }

// EQ returns a predicate that checks if the column equals v.
func (f StringField) EQ(v string) *Predicate { return EQ(string(f), v) }

// NEQ returns a predicate that checks if the column does not equal v.
func (f StringField) NEQ(v string) *Predicate { return NEQ(string(f), v) }

// In returns a predicate that checks if the column is one of vs.
func (f StringField) In(vs ...string) *Predicate { return In(string(f), anys(vs)...) }

// NotIn returns a predicate that checks if the column is none of vs.
func (f StringField) NotIn(vs ...string) *Predicate { return NotIn(string(f), anys(vs)...) }

// Contains returns a predicate that checks if the column contains v.
func (f StringField) Contains(v string) *Predicate { return Contains(string(f), v) }

// HasPrefix returns a predicate that checks if the column starts with v.
func (f StringField) HasPrefix(v string) *Predicate { return HasPrefix(string(f), v) }

// HasSuffix returns a predicate that checks if the column ends with v.
func (f StringField) HasSuffix(v string) *Predicate { return HasSuffix(string(f), v) }

// Like returns a predicate that matches the column against a LIKE pattern.
func (f StringField) Like(pattern string) *Predicate { return Like(string(f), pattern) }

// IsNull returns a predicate that checks if the column is NULL.
func (f StringField) IsNull() *Predicate { return IsNull(string(f)) }

// NotNull returns a predicate that checks if the column is not NULL.
func (f StringField) NotNull() *Predicate { return NotNull(string(f)) }

// IntField is an integer column that provides typed predicate methods.
type IntField string

// Name returns the column name.
func (f IntField) Name() string { return string(f) }

// EQ returns a predicate that checks if the column equals v.
func (f IntField) EQ(v int) *Predicate { return EQ(string(f), v) }

// NEQ returns a predicate that checks if the column does not equal v.
func (f IntField) NEQ(v int) *Predicate { return NEQ(string(f), v) }

// GT returns a predicate that checks if the column is greater than v.
func (f IntField) GT(v int) *Predicate { return GT(string(f), v) }

// GTE returns a predicate that checks if the column is at least v.
func (f IntField) GTE(v int) *Predicate { return GTE(string(f), v) }

// LT returns a predicate that checks if the column is less than v.
func (f IntField) LT(v int) *Predicate { return LT(string(f), v) }

// LTE returns a predicate that checks if the column is at most v.
func (f IntField) LTE(v int) *Predicate { return LTE(string(f), v) }

// In returns a predicate that checks if the column is one of vs.
func (f IntField) In(vs ...int) *Predicate { return In(string(f), anys(vs)...) }

// NotIn returns a predicate that checks if the column is none of vs.
func (f IntField) NotIn(vs ...int) *Predicate { return NotIn(string(f), anys(vs)...) }

// IsNull returns a predicate that checks if the column is NULL.
func (f IntField) IsNull() *Predicate { return IsNull(string(f)) }

// NotNull returns a predicate that checks if the column is not NULL.
func (f IntField) NotNull() *Predicate { return NotNull(string(f)) }

// Int64Field is a 64-bit integer column that provides typed predicate methods.
type Int64Field string

// Name returns the column name.
func (f Int64Field) Name() string { return string(f) }

// EQ returns a predicate that checks if the column equals v.
func (f Int64Field) EQ(v int64) *Predicate { return EQ(string(f), v) }

// NEQ returns a predicate that checks if the column does not equal v.
func (f Int64Field) NEQ(v int64) *Predicate { return NEQ(string(f), v) }

// GT returns a predicate that checks if the column is greater than v.
func (f Int64Field) GT(v int64) *Predicate { return GT(string(f), v) }

// GTE returns a predicate that checks if the column is at least v.
func (f Int64Field) GTE(v int64) *Predicate { return GTE(string(f), v) }

// LT returns a predicate that checks if the column is less than v.
func (f Int64Field) LT(v int64) *Predicate { return LT(string(f), v) }

// LTE returns a predicate that checks if the column is at most v.
func (f Int64Field) LTE(v int64) *Predicate { return LTE(string(f), v) }

// In returns a predicate that checks if the column is one of vs.
func (f Int64Field) In(vs ...int64) *Predicate { return In(string(f), anys(vs)...) }

// NotIn returns a predicate that checks if the column is none of vs.
func (f Int64Field) NotIn(vs ...int64) *Predicate { return NotIn(string(f), anys(vs)...) }

// IsNull returns a predicate that checks if the column is NULL.
func (f Int64Field) IsNull() *Predicate { return IsNull(string(f)) }

// NotNull returns a predicate that checks if the column is not NULL.
func (f Int64Field) NotNull() *Predicate { return NotNull(string(f)) }

// BoolField is a boolean column that provides typed predicate methods.
type BoolField string

// Name returns the column name.
func (f BoolField) Name() string { return string(f) }

// EQ returns a predicate that checks if the column equals v.
func (f BoolField) EQ(v bool) *Predicate { return EQ(string(f), v) }

// NEQ returns a predicate that checks if the column does not equal v.
func (f BoolField) NEQ(v bool) *Predicate { return NEQ(string(f), v) }

// IsNull returns a predicate that checks if the column is NULL.
func (f BoolField) IsNull() *Predicate { return IsNull(string(f)) }

// NotNull returns a predicate that checks if the column is not NULL.
func (f BoolField) NotNull() *Predicate { return NotNull(string(f)) }

// TimeField is a time column that provides typed predicate methods.
type TimeField string

// Name returns the column name.
func (f TimeField) Name() string { return string(f) }

// EQ returns a predicate that checks if the column equals v.
func (f TimeField) EQ(v time.Time) *Predicate { return EQ(string(f), v) }

// NEQ returns a predicate that checks if the column does not equal v.
func (f TimeField) NEQ(v time.Time) *Predicate { return NEQ(string(f), v) }

// GT returns a predicate that checks if the column is after v.
func (f TimeField) GT(v time.Time) *Predicate { return GT(string(f), v) }

// GTE returns a predicate that checks if the column is v or later.
func (f TimeField) GTE(v time.Time) *Predicate { return GTE(string(f), v) }

// LT returns a predicate that checks if the column is before v.
func (f TimeField) LT(v time.Time) *Predicate { return LT(string(f), v) }

// LTE returns a predicate that checks if the column is v or earlier.
func (f TimeField) LTE(v time.Time) *Predicate { return LTE(string(f), v) }

// IsNull returns a predicate that checks if the column is NULL.
func (f TimeField) IsNull() *Predicate { return IsNull(string(f)) }

// NotNull returns a predicate that checks if the column is not NULL.
func (f TimeField) NotNull() *Predicate { return NotNull(string(f)) }

func anys[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}
