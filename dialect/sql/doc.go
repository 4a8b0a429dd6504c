// Package sql provides statement building primitives and the database/sql
// backed driver.
//
// # Builder Types
//
//   - Builder: low-level statement builder with identifier quoting and
//     placeholder arguments
//   - Selector: SELECT builder with predicates, ordering, limit and offset
//   - InsertBuilder: INSERT builder
//   - UpdateBuilder: UPDATE builder with SET, WHERE, ORDER BY and LIMIT
//   - DeleteBuilder: DELETE builder with WHERE predicates
//
// Every value is bound through a ? placeholder and every identifier is
// quoted with backticks, the form shared by MySQL and SQLite.
//
// # Predicates
//
//	sql.EQ("name", "john")         // `name` = ?
//	sql.GT("age", 18)              // `age` > ?
//	sql.In("status", "a", "b")     // `status` IN (?, ?)
//	sql.HasPrefix("email", "adm")  // `email` LIKE ?
//	sql.IsNull("deleted_at")       // `deleted_at` IS NULL
//
//	sql.Or(sql.EQ("a", 1), sql.And(sql.EQ("b", 2), sql.EQ("c", 3)))
//	// `a` = ? OR (`b` = ? AND `c` = ?)
//
// Typed fields produce the same predicates with checked argument types:
//
//	const Age = sql.IntField("age")
//	sel.Where(Age.GTE(18))
//
// # Drivers
//
// Driver adapts a *sql.DB to dialect.Driver. DebugDriver logs each
// statement and StatsDriver counts statements and reports slow ones.
// IsUniqueConstraintError and friends classify driver errors.
package sql
