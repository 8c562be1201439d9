package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testBase struct {
	ID      string `db:"id"`
	Version int    `db:"version"`
}

type testDoc struct {
	testBase

	Number  int64      `db:"number"`
	Comment string     `db:"comment"`
	Lines   []struct{} `db:"-"`
	hidden  string
}

func TestStructToMap(t *testing.T) {
	doc := testDoc{
		testBase: testBase{ID: "abc", Version: 3},
		Number:   42,
		Comment:  "hello",
	}

	m, err := StructToMap(doc)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"id":      "abc",
		"version": 3,
		"number":  int64(42),
		"comment": "hello",
	}, m)

	t.Run("pointer input works", func(t *testing.T) {
		m2, err := StructToMap(&doc)
		require.NoError(t, err)
		assert.Equal(t, m, m2)
	})

	t.Run("nil pointer is rejected", func(t *testing.T) {
		var p *testDoc
		_, err := StructToMap(p)
		assert.Error(t, err)
	})

	t.Run("non-struct is rejected", func(t *testing.T) {
		_, err := StructToMap(42)
		assert.Error(t, err)
	})
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns(testDoc{})
	// Embedded fields first, declaration order, skip db:"-" and unexported.
	assert.Equal(t, []string{"id", "version", "number", "comment"}, cols)
}

func TestColumnValues(t *testing.T) {
	doc := testDoc{
		testBase: testBase{ID: "abc", Version: 3},
		Number:   42,
	}

	values, err := ColumnValues(doc, []string{"number", "id"})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(42), "abc"}, values)

	_, err = ColumnValues(doc, []string{"missing"})
	assert.Error(t, err)
}
