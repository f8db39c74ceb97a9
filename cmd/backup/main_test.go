package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSelectSQLDropsColumns(t *testing.T) {
	q := selectSQL(table{name: "scorecard_documents", key: "id::text", drop: []string{"body"}})
	assert.Equal(t, "SELECT id::text AS k, (to_jsonb(t) - 'body')::text AS p FROM scorecard_documents AS t ORDER BY 1", q)
}

func TestInsertSQL(t *testing.T) {
	q := insertSQL(3)
	assert.Equal(t, 3, strings.Count(q, "(?, ?, ?, ?, ?)"))
	assert.True(t, strings.HasPrefix(q, "INSERT IGNORE INTO backup_rows"))
}

func TestColumnsUnion(t *testing.T) {
	cols, decoded, err := columns([]row{
		{Key: "1", Payload: `{"id":"1","name":"Open"}`},
		{Key: "2", Payload: `{"id":"2","date":"2025-06-14"}`},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "id", "name"}, cols)
	assert.Len(t, decoded, 2)

	_, _, err = columns([]row{{Key: "x", Payload: "not json"}})
	assert.Error(t, err)
}

func TestWriteWorkbook(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
	dump := map[string][]row{
		"tournaments": {{Key: "t1", Payload: `{"id":"t1","name":"Junior Open","meta":{"a":1}}`}},
	}

	path, err := writeWorkbook(dir, at, dump)
	require.NoError(t, err)
	assert.Contains(t, path, "juniortour_backup_2025-06-14_18-00-00.xlsx")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Len(t, f.GetSheetList(), len(coreTables))
	rows, err := f.GetRows("tournaments")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "meta", "name"}, rows[0])
	assert.Equal(t, []string{"t1", `{"a":1}`, "Junior Open"}, rows[1])

	empty, err := f.GetRows("hole_entries")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestWorkbookLeavesOutSignatureImages(t *testing.T) {
	dir := t.TempDir()
	img := "data:image/png;base64," + strings.Repeat("A", 40000)
	dump := map[string][]row{
		"scorecard_signatures": {{Key: "s1", Payload: `{"id":"s1","role":"player","signature_data_url":"` + img + `"}`}},
	}

	path, err := writeWorkbook(dir, time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC), dump)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("scorecard_signatures")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "role"}, rows[0])
}

func TestWriteSheetRejectsOversizedCell(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	long := strings.Repeat("x", excelize.TotalCellChars+1)
	err := writeSheet(f, table{name: "tournaments"}, []row{{Key: "t1", Payload: `{"id":"t1","location":"` + long + `"}`}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column location")

	v, err := cellValue(strings.Repeat("x", excelize.TotalCellChars))
	require.NoError(t, err)
	assert.Len(t, v, excelize.TotalCellChars)
}
