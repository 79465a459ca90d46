package jsonl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
)

type row struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestRead_SkipsBlankLines(t *testing.T) {
	in := "{\"id\":\"A\",\"name\":\"Open\"}\n\n   \n{\"id\":\"C\",\"name\":\"Closed\"}"
	rows, err := Read[row](strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, row{ID: "A", Name: "Open"}, rows[0])
	assert.Equal(t, row{ID: "C", Name: "Closed"}, rows[1])
}

func TestRead_ReportsLineNumber(t *testing.T) {
	in := "{\"id\":\"A\"}\n{\"id\":\n"
	_, err := Read[row](strings.NewReader(in))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	assert.ErrorIs(t, err, errors.ErrInvalidData)
	assert.Contains(t, err.Error(), "line 2")
}

func TestRead_Empty(t *testing.T) {
	rows, err := Read[row](strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := Path(dir, "access-condition")
	assert.Equal(t, filepath.Join(dir, "access-condition.jsonl"), path)

	require.NoError(t, os.WriteFile(path, []byte("{\"id\":\"A\",\"name\":\"Open\"}\n"), 0o600))
	rows, err := ReadFile[row](path)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestReadFile_Missing(t *testing.T) {
	rows, err := ReadFile[row](filepath.Join(t.TempDir(), "absent.jsonl"))
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestReadFile_InvalidNamesFile(t *testing.T) {
	path := Path(t.TempDir(), "subset")
	require.NoError(t, os.WriteFile(path, []byte("not json\n"), 0o600))
	_, err := ReadFile[row](path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.True(t, errors.IsInvalid(err))
}
