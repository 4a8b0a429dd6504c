package schema

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/syssam/entable"
)

// Descriptor is the resolved table metadata of an entity type.
type Descriptor struct {
	// Type is the entity struct type.
	Type reflect.Type
	// Table is the bound table name.
	Table string
	// Columns holds the column attributes in declaration order.
	Columns []*Column

	byName map[string]*Column
}

// Column returns the column with the given stored name.
func (d *Descriptor) Column(name string) (*Column, bool) {
	c, ok := d.byName[name]
	return c, ok
}

// PrimaryKeys returns the primary key columns in declaration order.
func (d *Descriptor) PrimaryKeys() []*Column {
	var pks []*Column
	for _, c := range d.Columns {
		if c.PrimaryKey {
			pks = append(pks, c)
		}
	}
	return pks
}

// AutoIncrement returns the first auto-increment column, if any.
// Declaring more than one is the caller's responsibility to avoid.
func (d *Descriptor) AutoIncrement() (*Column, bool) {
	for _, c := range d.Columns {
		if c.AutoIncrement {
			return c, true
		}
	}
	return nil, false
}

// ForeignKeys returns the columns declaring a foreign key.
func (d *Descriptor) ForeignKeys() []*Column {
	var fks []*Column
	for _, c := range d.Columns {
		if c.ForeignKey != nil {
			fks = append(fks, c)
		}
	}
	return fks
}

// New returns a pointer to a new zero entity.
func (d *Descriptor) New() reflect.Value {
	return reflect.New(d.Type)
}

var (
	descriptors sync.Map // reflect.Type => *Descriptor
	inflight    singleflight.Group

	entityType = reflect.TypeOf(entable.Entity{})
	tablerType = reflect.TypeOf((*entable.Tabler)(nil)).Elem()
)

// Of returns the Descriptor of entity type T.
func Of[T any]() *Descriptor {
	return Describe(reflect.TypeOf((*T)(nil)).Elem())
}

// Describe returns the Descriptor of an entity type, computing it on first
// use. Concurrent first calls for the same type share one computation.
// It panics with a *entable.MetadataError if t is not a valid entity.
func Describe(t reflect.Type) *Descriptor {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if d, ok := descriptors.Load(t); ok {
		return d.(*Descriptor)
	}
	v, err, _ := inflight.Do(fmt.Sprintf("%v@%p", t, t), func() (any, error) {
		if d, ok := descriptors.Load(t); ok {
			return d, nil
		}
		d, err := describe(t)
		if err != nil {
			return nil, err
		}
		descriptors.Store(t, d)
		return d, nil
	})
	if err != nil {
		panic(err)
	}
	return v.(*Descriptor)
}

func describe(t reflect.Type) (*Descriptor, error) {
	if t.Kind() != reflect.Struct {
		return nil, entable.NewMetadataError(t, "", "entity must be a struct")
	}
	table, ok := tableName(t)
	if !ok {
		return nil, entable.NewMetadataError(t, "", "missing table binding: embed entable.Entity or implement TableName")
	}
	d := &Descriptor{Type: t, Table: table, byName: make(map[string]*Column)}
	if err := d.walk(t, t, nil); err != nil {
		return nil, err
	}
	return d, nil
}

// walk appends the tagged fields of st, flattening untagged embedded structs.
func (d *Descriptor) walk(root, st reflect.Type, index []int) error {
	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		if sf.Type == entityType || !sf.IsExported() {
			continue
		}
		path := append(append([]int(nil), index...), i)
		tag, tagged := sf.Tag.Lookup(TagName)
		if !tagged {
			if sf.Anonymous && sf.Type.Kind() == reflect.Struct && sf.Type != timeType {
				if err := d.walk(root, sf.Type, path); err != nil {
					return err
				}
			}
			continue
		}
		if tag == "-" {
			continue
		}
		c, err := parseColumn(sf.Name, tag)
		if err != nil {
			return entable.NewMetadataError(root, sf.Name, err.Error())
		}
		c.Index, c.GoType = path, sf.Type
		c.Kind, c.Nullable = kindOf(sf.Type)
		if c.Kind == KindInvalid {
			return entable.NewMetadataError(root, sf.Name, fmt.Sprintf("unsupported Go type %v", sf.Type))
		}
		if _, dup := d.byName[c.Name]; dup {
			return entable.NewMetadataError(root, sf.Name, fmt.Sprintf("duplicate column %q", c.Name))
		}
		d.Columns = append(d.Columns, c)
		d.byName[c.Name] = c
	}
	return nil
}

// tableName resolves the table binding of t.
func tableName(t reflect.Type) (string, bool) {
	if reflect.PointerTo(t).Implements(tablerType) {
		if name := reflect.New(t).Interface().(entable.Tabler).TableName(); name != "" {
			return name, true
		}
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Type != entityType {
			continue
		}
		if name := sf.Tag.Get("table"); name != "" {
			return name, true
		}
		return strings.ToLower(t.Name()), true
	}
	return "", false
}
