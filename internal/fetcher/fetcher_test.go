package fetcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadXLSXSkipRowsAndSheetName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, WriteXLSXSheets(path, []string{"Notes", "Data"}, map[string][][]string{
		"Notes": {{"ignore me"}},
		"Data": {
			{"preamble"},
			{"CODE", "YEAR"},
			{"ALB", "2020"},
		},
	}))

	rows, err := ReadXLSX(path, XLSXOptions{SheetName: "Data", SkipRows: 1})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"CODE", "YEAR"}, rows[0])
	assert.Equal(t, []string{"ALB", "2020"}, rows[1])
}

func TestReadXLSXSheetByIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, WriteXLSX(path, "Sheet1", [][]string{{"a", "b"}}))

	rows, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"a", "b"}, rows[0])
}

func TestReadXLSXMissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, WriteXLSX(path, "Sheet1", [][]string{{"a"}}))

	_, err := ReadXLSX(path, XLSXOptions{SheetName: "Nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Nope"`)

	_, err = ReadXLSX(path, XLSXOptions{SheetIndex: 3})
	require.Error(t, err)
}

func TestWriteXLSXCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "book.xlsx")
	require.NoError(t, WriteXLSX(path, "Sheet1", [][]string{{"a"}}))

	rows, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestReadXLSXMissingFile(t *testing.T) {
	_, err := ReadXLSX(filepath.Join(t.TempDir(), "absent.xlsx"), XLSXOptions{})
	require.Error(t, err)
}

func TestReadTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.tsv")
	content := "code\trate\nALB\t10.4\nGHA\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := ReadTSV(path)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"code", "rate"}, records[0])
	assert.Equal(t, []string{"ALB", "10.4"}, records[1])
	// Short rows pass through unpadded.
	assert.Equal(t, []string{"GHA"}, records[2])
}
