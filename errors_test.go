package entable_test

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/entable"
)

func TestMetadataError(t *testing.T) {
	type User struct{}
	typ := reflect.TypeOf(User{})

	t.Run("Error", func(t *testing.T) {
		err := entable.NewMetadataError(typ, "", "missing table binding")
		assert.Equal(t, "entable: invalid metadata for entable_test.User: missing table binding", err.Error())

		err = entable.NewMetadataError(typ, "Age", `unknown option "pkey"`)
		assert.Equal(t, `entable: invalid metadata for entable_test.User.Age: unknown option "pkey"`, err.Error())
	})

	t.Run("IsMetadataError", func(t *testing.T) {
		err := entable.NewMetadataError(typ, "", "x")
		assert.True(t, entable.IsMetadataError(fmt.Errorf("wrapper: %w", err)))
		assert.False(t, entable.IsMetadataError(errors.New("other error")))
		assert.False(t, entable.IsMetadataError(nil))
	})
}

func TestCoercionError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := entable.NewCoercionError("Age", "int", "abc", nil)
		assert.Equal(t, `entable: cannot coerce string(abc) into int attribute "Age"`, err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		underlying := errors.New("invalid syntax")
		err := entable.NewCoercionError("Age", "int", "abc", underlying)
		assert.True(t, errors.Is(err, underlying))
		assert.Contains(t, err.Error(), "invalid syntax")
	})

	t.Run("IsCoercionError", func(t *testing.T) {
		err := entable.NewCoercionError("Admin", "bool", "maybe", nil)
		assert.True(t, entable.IsCoercionError(fmt.Errorf("wrapper: %w", err)))
		assert.False(t, entable.IsCoercionError(errors.New("other error")))
		assert.False(t, entable.IsCoercionError(nil))
	})
}

func TestMappingError(t *testing.T) {
	t.Run("MissingColumn", func(t *testing.T) {
		err := entable.NewMappingError("users", 2, "email", entable.ErrMissingColumn)
		assert.Equal(t, `entable: mapping users row 2 column "email": entable: column missing from result`, err.Error())
		assert.True(t, errors.Is(err, entable.ErrMissingColumn))
		assert.True(t, entable.IsMappingError(err))
	})

	t.Run("WrapsCoercion", func(t *testing.T) {
		cerr := entable.NewCoercionError("Age", "int", "abc", nil)
		err := entable.NewMappingError("users", 0, "age", cerr)
		assert.True(t, entable.IsCoercionError(err))
		assert.False(t, entable.IsMappingError(errors.New("other error")))
		assert.False(t, entable.IsMappingError(nil))
	})
}

func TestStatementError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := entable.NewStatementError("select", "SELECT * FROM `users`", nil, errors.New("no such table"))
		assert.Equal(t, "entable: select: no such table [query=\"SELECT * FROM `users`\"]", err.Error())

		err = entable.NewStatementError("delete", "DELETE FROM `users` WHERE `id` = ?", []any{1}, errors.New("locked"))
		assert.Contains(t, err.Error(), "args=[1]")
	})

	t.Run("Unwrap", func(t *testing.T) {
		underlying := errors.New("db error")
		err := entable.NewStatementError("insert", "INSERT", nil, underlying)
		assert.True(t, errors.Is(err, underlying))
		assert.True(t, entable.IsStatementError(fmt.Errorf("wrapper: %w", err)))
		assert.False(t, entable.IsStatementError(nil))
	})
}

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := entable.NewNotFoundError("users")
		assert.Equal(t, "entable: users not found", err.Error())
		assert.Equal(t, "users", err.Label())
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := entable.NewNotFoundError("posts")
		assert.True(t, errors.Is(err, entable.ErrNotFound))
		assert.True(t, entable.IsNotFound(fmt.Errorf("wrapper: %w", err)))
		assert.True(t, entable.IsNotFound(entable.ErrNotFound))
		assert.False(t, entable.IsNotFound(errors.New("other error")))
		assert.False(t, entable.IsNotFound(nil))
	})
}

func TestConstraintError(t *testing.T) {
	underlying := errors.New("UNIQUE constraint failed: users.email")
	err := entable.NewConstraintError(underlying.Error(), underlying)
	assert.Equal(t, "entable: constraint failed: UNIQUE constraint failed: users.email", err.Error())
	assert.True(t, errors.Is(err, underlying))
	assert.True(t, entable.IsConstraintError(fmt.Errorf("wrapper: %w", err)))
	assert.False(t, entable.IsConstraintError(errors.New("other error")))
	assert.False(t, entable.IsConstraintError(nil))
}

func TestSentinelErrors(t *testing.T) {
	for _, err := range []error{
		entable.ErrNotFound,
		entable.ErrMissingColumn,
		entable.ErrEmptyUpdate,
		entable.ErrUnqualifiedUpdate,
		entable.ErrUnqualifiedDelete,
		entable.ErrUnsupported,
	} {
		require.Error(t, err)
		assert.Contains(t, err.Error(), "entable: ")
	}
}

// BenchmarkErrors benchmarks error creation and checking.
func BenchmarkErrors(b *testing.B) {
	b.Run("NewStatementError", func(b *testing.B) {
		underlying := errors.New("db error")
		for i := 0; i < b.N; i++ {
			_ = entable.NewStatementError("select", "SELECT 1", nil, underlying)
		}
	})

	b.Run("IsNotFound", func(b *testing.B) {
		err := entable.NewNotFoundError("users")
		for i := 0; i < b.N; i++ {
			_ = entable.IsNotFound(err)
		}
	})
}
