package schema

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/syssam/entable"
)

// timeLayouts are tried in order when a time attribute is read from text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	// time.Time.String output, as stored by drivers that format times
	// themselves. Zones without an abbreviation repeat the offset.
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999 -0700 -0700",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Coerce converts a raw driver value into a value assignable to the field
// backing c. A nil raw value yields the zero value (a nil pointer for
// nullable columns). Unconvertible values return a *entable.CoercionError.
func Coerce(c *Column, raw any) (reflect.Value, error) {
	if !c.Nullable {
		return coerce(c, c.GoType, raw)
	}
	if raw == nil {
		return reflect.Zero(c.GoType), nil
	}
	ev, err := coerce(c, c.GoType.Elem(), raw)
	if err != nil {
		return reflect.Value{}, err
	}
	p := reflect.New(c.GoType.Elem())
	p.Elem().Set(ev)
	return p, nil
}

// Assign coerces raw and stores it into the column's field of entity.
func Assign(c *Column, entity reflect.Value, raw any) error {
	v, err := Coerce(c, raw)
	if err != nil {
		return err
	}
	c.Value(entity).Set(v)
	return nil
}

func coerce(c *Column, t reflect.Type, raw any) (reflect.Value, error) {
	v := reflect.New(t).Elem()
	fail := func(err error) (reflect.Value, error) {
		return reflect.Value{}, entable.NewCoercionError(c.Field, c.Kind.String(), raw, err)
	}
	switch c.Kind {
	case KindText:
		v.SetString(toText(raw))
	case KindInt:
		n, ok := toInt(raw, true)
		if !ok {
			return fail(nil)
		}
		if v.OverflowInt(n) {
			return fail(strconv.ErrRange)
		}
		v.SetInt(n)
	case KindInt64:
		n, ok := toInt(raw, false)
		if !ok {
			return fail(nil)
		}
		v.SetInt(n)
	case KindBool:
		b, ok := toBool(raw)
		if !ok {
			return fail(nil)
		}
		v.SetBool(b)
	case KindFloat:
		f, ok := toFloat(raw)
		if !ok {
			return fail(nil)
		}
		v.SetFloat(f)
	case KindTime:
		tm, ok := toTime(raw)
		if !ok {
			return fail(nil)
		}
		v.Set(reflect.ValueOf(tm))
	default:
		return fail(nil)
	}
	return v, nil
}

func toText(raw any) string {
	switch x := raw.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(raw)
	}
}

// toInt converts raw into an integer. When legacyBool is set, text that is
// not a number but a boolean token ("true"/"false") maps to 1/0, and so do
// bool raws. Integer columns have historically been used as flags, and rows
// written that way must keep loading.
func toInt(raw any, legacyBool bool) (int64, bool) {
	switch x := raw.(type) {
	case nil:
		return 0, true
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int64(x), true
	case bool:
		if !legacyBool {
			return 0, false
		}
		return boolInt(x), true
	case []byte:
		return parseInt(string(x), legacyBool)
	case string:
		return parseInt(x, legacyBool)
	default:
		return 0, false
	}
}

func parseInt(s string, legacyBool bool) (int64, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if legacyBool {
		switch {
		case strings.EqualFold(s, "true"):
			return 1, true
		case strings.EqualFold(s, "false"):
			return 0, true
		}
	}
	return 0, false
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func toBool(raw any) (bool, bool) {
	switch x := raw.(type) {
	case nil:
		return false, true
	case bool:
		return x, true
	case int64:
		return x != 0, true
	case int:
		return x != 0, true
	case float64:
		return x != 0, true
	case []byte:
		return parseBool(string(x))
	case string:
		return parseBool(x)
	default:
		return false, false
	}
}

func parseBool(s string) (bool, bool) {
	switch s = strings.TrimSpace(s); {
	case strings.EqualFold(s, "true"), s == "1":
		return true, true
	case strings.EqualFold(s, "false"), s == "0":
		return false, true
	default:
		return false, false
	}
}

func toFloat(raw any) (float64, bool) {
	switch x := raw.(type) {
	case nil:
		return 0, true
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toTime(raw any) (time.Time, bool) {
	switch x := raw.(type) {
	case nil:
		return time.Time{}, true
	case time.Time:
		return x, true
	case int64:
		return time.Unix(x, 0).UTC(), true
	case []byte:
		return parseTime(string(x))
	case string:
		return parseTime(x)
	default:
		return time.Time{}, false
	}
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(n, 0).UTC(), true
	}
	return time.Time{}, false
}

// Storable converts the field value fv of column c into a value accepted by
// database/sql drivers. Nil pointers yield nil; named types are unwrapped
// to their builtin kind and times are normalized to UTC.
func Storable(c *Column, fv reflect.Value) any {
	if c.Nullable {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}
	switch c.Kind {
	case KindText:
		return fv.String()
	case KindInt, KindInt64:
		return fv.Int()
	case KindBool:
		return fv.Bool()
	case KindFloat:
		return fv.Float()
	case KindTime:
		return fv.Interface().(time.Time).UTC()
	default:
		return fv.Interface()
	}
}
