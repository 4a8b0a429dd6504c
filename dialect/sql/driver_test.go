package sql

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/entable/dialect"
)

func TestDriver_Dialect(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, dialect.MySQL, OpenDB(dialect.MySQL, db).Dialect())
	assert.Equal(t, dialect.SQLite, OpenDB("sqlite3", db).Dialect())
	assert.Equal(t, "other", OpenDB("other", db).Dialect())
	assert.Same(t, db, OpenDB(dialect.MySQL, db).DB())
}

func TestConn_Exec(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := OpenDB(dialect.MySQL, db)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO `users`").
		WithArgs("a8m").
		WillReturnResult(sqlmock.NewResult(7, 1))
	var res sql.Result
	require.NoError(t, drv.Exec(ctx, "INSERT INTO `users` (`name`) VALUES (?)", []any{"a8m"}, &res))
	id, err := res.LastInsertId()
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	mock.ExpectExec("DELETE FROM `users`").WillReturnResult(sqlmock.NewResult(0, 3))
	require.NoError(t, drv.Exec(ctx, "DELETE FROM `users`", []any{}, nil))

	mock.ExpectExec("DELETE FROM `users`").WillReturnError(errors.New("boom"))
	err = drv.Exec(ctx, "DELETE FROM `users`", []any{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dialect/sql: exec: boom")

	assert.Error(t, drv.Exec(ctx, "SELECT 1", "not-a-slice", nil))
	assert.Error(t, drv.Exec(ctx, "SELECT 1", []any{}, new(int)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConn_Query(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := OpenDB(dialect.SQLite, db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, []byte("a8m")).AddRow(2, nil))
	rows := &Rows{}
	require.NoError(t, drv.Query(ctx, "SELECT * FROM `users`", []any{}, rows))
	columns, err := rows.Columns()
	require.NoError(t, err)

	var records []map[string]any
	for rows.Next() {
		r, err := ScanRecord(rows, columns)
		require.NoError(t, err)
		records = append(records, r)
	}
	require.NoError(t, rows.Err())
	require.NoError(t, rows.Close())
	require.Len(t, records, 2)
	assert.EqualValues(t, 1, records[0]["id"])
	assert.Equal(t, []byte("a8m"), records[0]["name"])
	assert.Nil(t, records[1]["name"])

	assert.Error(t, drv.Query(ctx, "SELECT 1", []any{}, new(int)))
	assert.Error(t, drv.Query(ctx, "SELECT 1", nil, rows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	var slow []string
	drv := NewStatsDriver(OpenDB(dialect.SQLite, db),
		WithSlowThreshold(-1),
		WithSlowQueryHook(func(_ context.Context, query string, _ []any, _ time.Duration) {
			slow = append(slow, query)
		}),
	)
	ctx := context.Background()

	mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE").WillReturnError(errors.New("boom"))
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	require.NoError(t, drv.Exec(ctx, "DELETE FROM `t`", []any{}, nil))
	require.Error(t, drv.Exec(ctx, "DELETE FROM `t`", []any{}, nil))
	rows := &Rows{}
	require.NoError(t, drv.Query(ctx, "SELECT 1", []any{}, rows))
	require.NoError(t, rows.Close())

	s := drv.QueryStats().Snapshot()
	assert.Equal(t, int64(1), s.Queries)
	assert.Equal(t, int64(2), s.Execs)
	assert.Equal(t, int64(1), s.Errors)
	assert.Equal(t, int64(3), s.Slow)
	assert.Len(t, slow, 3)
	assert.Contains(t, s.String(), "queries=1 execs=2")
	assert.Equal(t, dialect.SQLite, drv.Dialect())

	drv.SetSlowThreshold(time.Hour)
	assert.Equal(t, time.Hour, drv.SlowThreshold())
	drv.QueryStats().Reset()
	assert.Zero(t, drv.QueryStats().Snapshot().Avg())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebugDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	var logged []any
	drv := NewDebugDriver(OpenDB(dialect.MySQL, db), DebugWithLog(func(_ context.Context, v ...any) {
		logged = append(logged, v...)
	}))
	mock.ExpectExec("UPDATE").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, drv.Exec(context.Background(), "UPDATE `t` SET `a` = ?", []any{1}, nil))
	require.Len(t, logged, 1)
	assert.Equal(t, "driver.Exec: query=UPDATE `t` SET `a` = ? args=[1]", logged[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConstraintErrors(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1' for key 'PRIMARY'"}
	fk := &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}
	wrapped := errors.Join(errors.New("dialect/sql: exec"), dup)

	assert.True(t, IsUniqueConstraintError(dup))
	assert.True(t, IsUniqueConstraintError(wrapped))
	assert.False(t, IsForeignKeyConstraintError(dup))
	assert.True(t, IsForeignKeyConstraintError(fk))
	assert.True(t, IsConstraintError(fk))
	assert.False(t, IsConstraintError(&mysql.MySQLError{Number: 1146}))

	assert.True(t, IsUniqueConstraintError(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)")))
	assert.True(t, IsForeignKeyConstraintError(errors.New("FOREIGN KEY constraint failed")))
	assert.True(t, IsCheckConstraintError(errors.New("CHECK constraint failed: age")))
	assert.False(t, IsConstraintError(nil))
	assert.False(t, IsConstraintError(errors.New("no such table: users")))
}
