package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-openapi/inflect"
)

// TagName is the struct tag key holding column options.
const TagName = "db"

// parseColumn builds a Column from the db tag of a struct field.
func parseColumn(fieldName, tag string) (*Column, error) {
	name, rest, _ := strings.Cut(tag, ",")
	name = strings.TrimSpace(name)
	if name == "" {
		name = ColumnName(fieldName)
	}
	c := &Column{Name: name, Field: fieldName}
	if rest == "" {
		return c, nil
	}
	for _, opt := range splitOptions(rest) {
		key, value, hasValue := strings.Cut(strings.TrimSpace(opt), "=")
		switch strings.ToLower(key) {
		case "":
		case "pk", "primary_key":
			c.PrimaryKey = true
		case "autoincrement", "auto_increment":
			c.AutoIncrement = true
		case "type":
			if value == "" {
				return nil, fmt.Errorf("option %q requires a value", key)
			}
			c.Type = value
		case "size":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid size %q", value)
			}
			c.Size = n
		case "fk":
			table, column, ok := strings.Cut(value, ".")
			if !ok || table == "" || column == "" {
				return nil, fmt.Errorf("foreign key %q must be table.column", value)
			}
			if c.ForeignKey == nil {
				c.ForeignKey = &ForeignKey{OnUpdate: NoAction, OnDelete: NoAction}
			}
			c.ForeignKey.Table, c.ForeignKey.Column = table, column
		case "onupdate", "ondelete":
			action, err := parseReferenceOption(value)
			if err != nil {
				return nil, err
			}
			if c.ForeignKey == nil {
				c.ForeignKey = &ForeignKey{OnUpdate: NoAction, OnDelete: NoAction}
			}
			if strings.EqualFold(key, "onupdate") {
				c.ForeignKey.OnUpdate = action
			} else {
				c.ForeignKey.OnDelete = action
			}
		case "default":
			if !hasValue {
				return nil, fmt.Errorf("option %q requires a value", key)
			}
			d, err := parseDefault(value)
			if err != nil {
				return nil, err
			}
			c.Default = d
		default:
			return nil, fmt.Errorf("unknown option %q", key)
		}
	}
	if c.ForeignKey != nil && c.ForeignKey.Table == "" {
		return nil, fmt.Errorf("reference action without fk target")
	}
	return c, nil
}

// ColumnName returns the default stored name of a field: its snake_case form.
func ColumnName(fieldName string) string {
	return inflect.Underscore(fieldName)
}

func parseReferenceOption(s string) (ReferenceOption, error) {
	switch opt := ReferenceOption(strings.ToUpper(strings.TrimSpace(s))); opt {
	case NoAction, Restrict, Cascade, SetNull, SetDefault:
		return opt, nil
	default:
		return "", fmt.Errorf("unknown reference option %q", s)
	}
}

func parseDefault(s string) (Default, error) {
	kind, value, _ := strings.Cut(s, ":")
	switch strings.ToLower(kind) {
	case "current_timestamp":
		return Default{Policy: DefaultCurrentTimestamp}, nil
	case "unix_timestamp":
		return Default{Policy: DefaultUnixTimestamp}, nil
	case "random", "random_string":
		return Default{Policy: DefaultRandom}, nil
	case "int", "integer":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return Default{}, fmt.Errorf("invalid integer default %q", value)
		}
		return Default{Policy: DefaultInt, Int: n}, nil
	case "bool", "boolean":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return Default{}, fmt.Errorf("invalid boolean default %q", value)
		}
		return Default{Policy: DefaultBool, Bool: b}, nil
	case "const":
		if n := len(value); n >= 2 && value[0] == '\'' && value[n-1] == '\'' {
			value = strings.ReplaceAll(value[1:n-1], "''", "'")
		}
		return Default{Policy: DefaultConstant, Text: value}, nil
	default:
		return Default{}, fmt.Errorf("unknown default policy %q", s)
	}
}

// splitOptions splits tag options on commas. A value opened by a single
// quote right after '=' or ':' runs to the closing quote that ends the
// option, so `default=const:'a,b'` stays one option. Doubled quotes
// inside it are literal.
func splitOptions(s string) []string {
	var (
		opts   []string
		start  int
		quoted bool
	)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\'' && !quoted && i > 0 && (s[i-1] == '=' || s[i-1] == ':'):
			quoted = true
		case c == '\'' && quoted && (i+1 == len(s) || s[i+1] == ','):
			quoted = false
		case c == ',' && !quoted:
			opts = append(opts, s[start:i])
			start = i + 1
		}
	}
	return append(opts, s[start:])
}
