package testutil

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/jackzampolin/langsheet/internal/sheet"
)

// WriteWorkbook writes rows into column A of the first sheet of a new
// workbook at dir/name and returns its path. Emphasized rows are bold.
func WriteWorkbook(t *testing.T, dir, name string, rows []sheet.Row) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheetName := f.GetSheetName(0)
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		t.Fatalf("failed to create bold style: %v", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("bad cell: %v", err)
		}
		if err := f.SetCellStr(sheetName, cell, r.Text); err != nil {
			t.Fatalf("failed to set %s: %v", cell, err)
		}
		if r.Emphasized {
			if err := f.SetCellStyle(sheetName, cell, cell, bold); err != nil {
				t.Fatalf("failed to style %s: %v", cell, err)
			}
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook: %v", err)
	}
	return path
}

// Header is an emphasized row.
func Header(text string) sheet.Row { return sheet.Row{Text: text, Emphasized: true} }

// Plain is a regular row.
func Plain(text string) sheet.Row { return sheet.Row{Text: text} }

// Rules is a small emphasis-driven rules sheet. The first header is the
// title, followed by a "Game Rules" and an "RTP" segment.
func Rules(title, rtp string) []sheet.Row {
	return []sheet.Row{
		Header(title),
		Header("Game Rules"),
		Plain("Match symbols to win."),
		Plain("Wilds substitute."),
		Header("RTP"),
		Plain(rtp),
	}
}
