// Package entable maps annotated Go structs onto SQL tables.
//
// An entity type embeds Entity and tags each mapped field with a db tag:
//
//	type User struct {
//	    entable.Entity `table:"users"`
//
//	    ID    int64  `db:"id,pk,autoincrement"`
//	    Name  string `db:"name,type=VARCHAR,size=64"`
//	    Admin bool   `db:"admin,default=bool:false"`
//	}
//
// The table package derives CREATE TABLE, SELECT, INSERT, UPDATE and DELETE
// statements from that metadata at runtime. This package holds the marker
// type, the error taxonomy shared by all subpackages and the result cache.
package entable

// Entity binds a struct to a table. The table name is read from the
// `table` tag of the embedded field, or derived by lowercasing the
// struct name when the tag is empty.
type Entity struct{}

// Tabler can be implemented by entity types that compute their table
// name instead of declaring it in a tag. It takes precedence over the
// embedded Entity tag.
type Tabler interface {
	TableName() string
}
