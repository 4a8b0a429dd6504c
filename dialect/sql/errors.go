package sql

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry   = 1062
	mysqlForeignKeyParent = 1451 // cannot delete or update a parent row
	mysqlForeignKeyChild  = 1452 // cannot add or update a child row
	mysqlCheckViolation   = 3819
)

// sqlStateError is implemented by drivers exposing SQLSTATE codes.
type sqlStateError interface {
	SQLState() string
}

// SQLSTATE class 23 codes.
const (
	stateUnique     = "23505"
	stateForeignKey = "23503"
	stateCheck      = "23514"
)

// IsConstraintError reports whether err resulted from a database
// constraint violation.
func IsConstraintError(err error) bool {
	return IsUniqueConstraintError(err) ||
		IsForeignKeyConstraintError(err) ||
		IsCheckConstraintError(err)
}

// IsUniqueConstraintError reports whether err resulted from a uniqueness
// violation, such as a duplicate primary key.
func IsUniqueConstraintError(err error) bool {
	return classify(err, stateUnique, []uint16{mysqlDuplicateEntry},
		"Error 1062",
		"UNIQUE constraint failed",
		"PRIMARY KEY constraint failed",
	)
}

// IsForeignKeyConstraintError reports whether err resulted from a
// foreign-key violation.
func IsForeignKeyConstraintError(err error) bool {
	return classify(err, stateForeignKey, []uint16{mysqlForeignKeyParent, mysqlForeignKeyChild},
		"Error 1451",
		"Error 1452",
		"FOREIGN KEY constraint failed",
	)
}

// IsCheckConstraintError reports whether err resulted from a check
// constraint violation.
func IsCheckConstraintError(err error) bool {
	return classify(err, stateCheck, []uint16{mysqlCheckViolation},
		"Error 3819",
		"CHECK constraint failed",
	)
}

func classify(err error, state string, numbers []uint16, messages ...string) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		for _, n := range numbers {
			if me.Number == n {
				return true
			}
		}
		return false
	}
	var se sqlStateError
	if errors.As(err, &se) && se.SQLState() == state {
		return true
	}
	// modernc.org/sqlite only exposes result codes, the text is stable.
	msg := err.Error()
	for _, m := range messages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
