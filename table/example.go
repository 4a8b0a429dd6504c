package table

import (
	"reflect"
	"time"

	"github.com/syssam/entable/dialect/sql"
	"github.com/syssam/entable/schema"
)

// meaningful reports whether the field value fv of c takes part in a
// filter-by-example predicate or an update SET clause:
//
//   - pointer fields: when non-nil
//   - text: when non-empty
//   - integers and floats: only when greater than zero, so zero and
//     negative values cannot be filtered on without a pointer field
//   - bool: unless the column declares a boolean default equal to the value
//   - time: when non-zero
func meaningful(c *schema.Column, fv reflect.Value) bool {
	if c.Nullable {
		return !fv.IsNil()
	}
	switch c.Kind {
	case schema.KindText:
		return fv.String() != ""
	case schema.KindInt, schema.KindInt64:
		return fv.Int() > 0
	case schema.KindFloat:
		return fv.Float() > 0
	case schema.KindBool:
		return c.Default.Policy != schema.DefaultBool || fv.Bool() != c.Default.Bool
	case schema.KindTime:
		return !fv.Interface().(time.Time).IsZero()
	default:
		return false
	}
}

// present reports whether the field value fv of c is non-null. Empty text
// and zero times stand for null; other plain values are always present.
func present(c *schema.Column, fv reflect.Value) bool {
	if c.Nullable {
		return !fv.IsNil()
	}
	switch c.Kind {
	case schema.KindText:
		return fv.String() != ""
	case schema.KindTime:
		return !fv.Interface().(time.Time).IsZero()
	default:
		return true
	}
}

// examplePredicates returns one equality predicate per column of e
// selected by keep. Auto-increment columns are skipped when skipAuto is set.
func examplePredicates(d *schema.Descriptor, e any, skipAuto bool, keep func(*schema.Column, reflect.Value) bool) []*sql.Predicate {
	ev := entityValue(e)
	if !ev.IsValid() {
		return nil
	}
	var preds []*sql.Predicate
	for _, c := range d.Columns {
		if skipAuto && c.AutoIncrement {
			continue
		}
		fv := c.Value(ev)
		if keep(c, fv) {
			preds = append(preds, sql.EQ(c.Name, schema.Storable(c, fv)))
		}
	}
	return preds
}

// entityValue returns the struct value behind a *T, or the zero Value for
// a nil pointer.
func entityValue(e any) reflect.Value {
	v := reflect.ValueOf(e)
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return reflect.Value{}
	}
	return reflect.Indirect(v)
}
