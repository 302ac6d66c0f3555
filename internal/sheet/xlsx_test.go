package sheet

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXLSXExtractor_Rows(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, "en.xlsx", []Row{
		{Text: "Title", Emphasized: true},
		{Text: "  Game X  "},
		{Text: "RTP", Emphasized: true},
		{Text: "96%"},
	})

	x := NewXLSXExtractor(1, 0, nil)
	rows, err := x.Rows(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []Row{
		{Text: "Title", Emphasized: true},
		{Text: "Game X"},
		{Text: "RTP", Emphasized: true},
		{Text: "96%"},
	}, rows)
	assert.True(t, HasEmphasis(rows))
}

func TestXLSXExtractor_BlankRowsKeptAsEmpty(t *testing.T) {
	dir := t.TempDir()

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "first"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "other column"))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", "third"))
	path := filepath.Join(dir, "fr.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := NewXLSXExtractor(1, 0, nil).Rows(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "first", rows[0].Text)
	assert.Equal(t, "", rows[1].Text)
	assert.Equal(t, "third", rows[2].Text)
	assert.False(t, HasEmphasis(rows))
}

func TestXLSXExtractor_Unreadable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "de.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0o644))

	_, err := NewXLSXExtractor(2, 0, nil).Rows(context.Background(), path)
	require.Error(t, err)

	var unreadable *UnreadableDocumentError
	require.True(t, errors.As(err, &unreadable))
	assert.Equal(t, path, unreadable.Path)
}

func TestXLSXExtractor_Missing(t *testing.T) {
	_, err := NewXLSXExtractor(1, 0, nil).Rows(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx"))

	var unreadable *UnreadableDocumentError
	assert.True(t, errors.As(err, &unreadable))
}
