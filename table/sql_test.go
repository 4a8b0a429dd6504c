package table_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/entable"
	"github.com/syssam/entable/dialect"
	"github.com/syssam/entable/dialect/sql"
	"github.com/syssam/entable/table"
)

var userColumns = []string{"id", "name", "age", "admin", "nick", "token"}

func mockMySQL(t *testing.T, opts ...table.Option) (*table.Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	c, err := table.NewClient(sql.OpenDB(dialect.MySQL, db), opts...)
	require.NoError(t, err)
	return c, mock
}

func TestMySQL_Select(t *testing.T) {
	ctx := context.Background()
	c, mock := mockMySQL(t)
	users := table.New[User](c)

	mock.ExpectQuery("SELECT * FROM `users` WHERE `name` = ? ORDER BY `id` DESC LIMIT 5").
		WithArgs("a8m").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(int64(2), "a8m", int64(31), int64(1), "nati", "t2").
			AddRow(int64(1), "a8m", int64(30), int64(0), nil, "t1"))

	all, err := users.Select(ctx, &User{Name: "a8m"}, table.OrderBy("id", sql.OrderDesc), table.Limit(5))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(2), all[0].ID)
	assert.True(t, all[0].Admin)
	require.NotNil(t, all[0].Nick)
	assert.Equal(t, "nati", *all[0].Nick)
	assert.Nil(t, all[1].Nick)
	assert.Equal(t, 30, all[1].Age)
}

func TestMySQL_Count(t *testing.T) {
	c, mock := mockMySQL(t)
	users := table.New[User](c)

	mock.ExpectQuery("SELECT COUNT(*) FROM `users` WHERE `age` > ?").
		WithArgs(int64(18)).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(int64(7)))

	n, err := users.Query().Where(sql.IntField("age").GT(18)).OrderBy("id", sql.OrderAsc).Limit(2).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestMySQL_Insert(t *testing.T) {
	ctx := context.Background()
	c, mock := mockMySQL(t)
	users := table.New[User](c)

	mock.ExpectExec("INSERT INTO `users` (`name`, `age`, `token`) VALUES (?, ?, ?)").
		WithArgs("a8m", int64(30), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))
	u := &User{Name: "a8m", Age: 30}
	id, err := users.Insert(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, int64(42), u.ID)

	mock.ExpectExec("INSERT INTO `users` (`name`, `age`, `admin`, `nick`, `token`) VALUES (?, ?, ?, ?, ?)").
		WithArgs("b", int64(0), true, "bee", "fixed").
		WillReturnResult(sqlmock.NewResult(0, 1))
	nick := "bee"
	id, err = users.Insert(ctx, &User{Name: "b", Admin: true, Nick: &nick, Token: "fixed"})
	require.NoError(t, err)
	assert.Zero(t, id, "a zero generated key is reported as 0")
}

func TestMySQL_InsertConstraint(t *testing.T) {
	c, mock := mockMySQL(t)
	users := table.New[User](c)

	mock.ExpectExec("INSERT INTO `users` (`name`, `age`, `token`) VALUES (?, ?, ?)").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a8m' for key 'name'"})
	_, err := users.Insert(context.Background(), &User{Name: "a8m", Age: 1, Token: "t"})
	require.Error(t, err)
	assert.True(t, entable.IsConstraintError(err))

	var serr *entable.StatementError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "insert", serr.Op)
	assert.Equal(t, []any{"a8m", int64(1), "t"}, serr.Args)
}

func TestMySQL_StatementError(t *testing.T) {
	c, mock := mockMySQL(t)
	users := table.New[User](c)

	mock.ExpectQuery("SELECT * FROM `users` WHERE `id` = ? LIMIT 1").
		WithArgs(int64(1)).
		WillReturnError(errors.New("connection reset"))
	_, err := users.Get(context.Background(), int64(1))
	require.Error(t, err)
	assert.False(t, entable.IsConstraintError(err))
	var serr *entable.StatementError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "select", serr.Op)
	assert.Equal(t, "SELECT * FROM `users` WHERE `id` = ? LIMIT 1", serr.Query)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestMySQL_Update(t *testing.T) {
	ctx := context.Background()
	c, mock := mockMySQL(t)
	users := table.New[User](c)

	mock.ExpectExec("UPDATE `users` SET `age` = ?, `admin` = ? WHERE `name` = ?").
		WithArgs(int64(31), true, "a8m").
		WillReturnResult(sqlmock.NewResult(0, 2))
	n, err := users.Update(ctx, &User{ID: 5, Age: 31, Admin: true}, &User{Name: "a8m"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	upd := users.Updater().
		Set("admin", false).
		Where(sql.StringField("name").In("a", "b")).
		OrderBy("id", sql.OrderAsc).
		Limit(1)
	query, args := upd.Query()
	assert.Equal(t, "UPDATE `users` SET `admin` = ? WHERE `name` IN (?, ?) ORDER BY `id` ASC LIMIT 1", query)
	assert.Equal(t, []any{false, "a", "b"}, args)
	mock.ExpectExec(query).WithArgs(false, "a", "b").WillReturnResult(sqlmock.NewResult(0, 1))
	n, err = upd.Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMySQL_Delete(t *testing.T) {
	c, mock := mockMySQL(t)
	users := table.New[User](c)

	mock.ExpectExec("DELETE FROM `users` WHERE `name` = ? AND `age` = ? AND `admin` = ? AND `token` = ?").
		WithArgs("a8m", int64(0), false, "t").
		WillReturnResult(sqlmock.NewResult(0, 1))
	n, err := users.Delete(context.Background(), &User{ID: 7, Name: "a8m", Token: "t"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMySQL_CreateStatement(t *testing.T) {
	c, _ := mockMySQL(t)
	users := table.New[User](c)
	assert.Equal(t,
		"CREATE TABLE IF NOT EXISTS `users` (`id` BIGINT AUTO_INCREMENT PRIMARY KEY, `name` VARCHAR(64) NULL, `age` INT NULL, "+
			"`admin` BOOLEAN DEFAULT FALSE NULL, `nick` TEXT NULL, `token` TEXT NULL)",
		users.CreateStatement(),
	)
}

func TestMapping(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingColumn", func(t *testing.T) {
		c, mock := mockMySQL(t)
		mock.ExpectQuery("SELECT * FROM `users`").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "a8m"))
		_, err := table.New[User](c).Query().All(ctx)
		require.Error(t, err)
		var merr *entable.MappingError
		require.True(t, errors.As(err, &merr))
		assert.Equal(t, "users", merr.Table)
		assert.Equal(t, 0, merr.Row)
		assert.Equal(t, "age", merr.Column)
		assert.True(t, errors.Is(err, entable.ErrMissingColumn))
	})

	t.Run("Coercion", func(t *testing.T) {
		c, mock := mockMySQL(t)
		mock.ExpectQuery("SELECT * FROM `users`").
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(int64(1), "a8m", int64(30), int64(0), nil, "t").
				AddRow(int64(2), "nati", "thirty", int64(0), nil, "t"))
		all, err := table.New[User](c).Query().All(ctx)
		assert.Nil(t, all, "a failing row discards the whole result")
		var merr *entable.MappingError
		require.True(t, errors.As(err, &merr))
		assert.Equal(t, 1, merr.Row)
		assert.Equal(t, "age", merr.Column)
		assert.True(t, entable.IsCoercionError(err))
	})

	t.Run("LegacyBool", func(t *testing.T) {
		c, mock := mockMySQL(t)
		mock.ExpectQuery("SELECT * FROM `users`").
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(int64(1), "a8m", "true", "false", nil, []byte("t")))
		all, err := table.New[User](c).Query().All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, 1, all[0].Age)
		assert.False(t, all[0].Admin)
		assert.Equal(t, "t", all[0].Token)
	})

	t.Run("SkipPolicy", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		c, mock := mockMySQL(t, table.WithRowPolicy(table.SkipOnRowError), table.WithLogger(logger))
		rows := func() *sqlmock.Rows {
			return sqlmock.NewRows(userColumns).
				AddRow(int64(1), "a", int64(1), int64(0), nil, "t").
				AddRow(int64(2), "b", "x", int64(0), nil, "t").
				AddRow(int64(3), "c", int64(3), int64(0), nil, "t")
		}
		mock.ExpectQuery("SELECT * FROM `users`").WillReturnRows(rows())
		all, err := table.New[User](c).Query().All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "c", all[1].Name)
		assert.Contains(t, buf.String(), "skipping unmappable row")
		assert.Contains(t, buf.String(), "row=1")
		assert.Contains(t, buf.String(), "column=age")

		mock.ExpectQuery("SELECT * FROM `users`").WillReturnRows(rows())
		_, err = table.New[User](c).Query().RowPolicy(table.AbortOnRowError).All(ctx)
		assert.True(t, entable.IsMappingError(err))
	})

	t.Run("CursorError", func(t *testing.T) {
		c, mock := mockMySQL(t, table.WithRowPolicy(table.SkipOnRowError))
		mock.ExpectQuery("SELECT * FROM `users`").
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(int64(1), "a", int64(1), int64(0), nil, "t").
				AddRow(int64(2), "b", int64(2), int64(0), nil, "t").
				RowError(1, errors.New("broken pipe")))
		_, err := table.New[User](c).Query().All(ctx)
		require.Error(t, err)
		assert.True(t, entable.IsStatementError(err))
		assert.Contains(t, err.Error(), "broken pipe")
	})

	t.Run("FromRows", func(t *testing.T) {
		c, mock := mockMySQL(t)
		mock.ExpectQuery("SELECT `id`, `name`, `age`, `admin`, `nick`, `token` FROM `users`").
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(int64(1), "a", int64(1), int64(1), "x", "t").
				AddRow(int64(2), "b", int64(2), int64(0), nil, "t"))
		db := c.Driver().(*sql.Driver).DB()
		rows, err := db.QueryContext(ctx, "SELECT `id`, `name`, `age`, `admin`, `nick`, `token` FROM `users`")
		require.NoError(t, err)
		defer rows.Close()

		require.True(t, rows.Next())
		first, err := table.FromRow[User](rows)
		require.NoError(t, err)
		assert.Equal(t, "a", first.Name)
		assert.True(t, first.Admin)

		rest, err := table.FromRows[User](ctx, c, rows)
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.Equal(t, int64(2), rest[0].ID)
	})
}
