// Package dialect defines the connection contract used by entable.
//
// The engine never talks to database/sql directly: every generated statement
// is sent through a Driver, which owns pooling, transactions and statement
// serialization. Two dialects are supported:
//
//	dialect.MySQL  = "mysql"
//	dialect.SQLite = "sqlite"
//
// # Driver Interface
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Dialect() string
//	    Close() error
//	}
//
// # Usage
//
//	import (
//	    "github.com/syssam/entable/dialect"
//	    "github.com/syssam/entable/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.SQLite, "file:app.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
// # Sub-packages
//
//   - dialect/sql: database/sql driver, statement builders and predicates
//   - dialect/sql/schema: CREATE TABLE synthesis per dialect
package dialect
