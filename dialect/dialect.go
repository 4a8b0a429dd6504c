package dialect

import "context"

// Dialect names for external usage.
const (
	MySQL  = "mysql"
	SQLite = "sqlite"
)

// ExecQuerier wraps the two database operations.
type ExecQuerier interface {
	// Exec executes a statement that does not return rows. v is either
	// nil or a *sql.Result receiving the affected rows and generated key.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a statement that returns rows. v is a *sql.Rows
	// receiving the cursor.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all necessary operations for
// executing generated statements against one database.
type Driver interface {
	ExecQuerier
	// Dialect returns the dialect name of the driver.
	Dialect() string
	// Close closes the underlying connection.
	Close() error
}
