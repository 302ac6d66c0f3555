// Package sheet reads localization spreadsheets into ordered rows.
//
// Only the first column of the first worksheet is read. Each row carries the
// cell text and whether the cell was styled bold, which marks it as a header.
package sheet

import (
	"context"
	"fmt"
)

// Row is a single first-column cell.
type Row struct {
	Text       string `json:"text"`
	Emphasized bool   `json:"emphasized"`
}

// Extractor yields the rows of one document.
type Extractor interface {
	Rows(ctx context.Context, path string) ([]Row, error)
}

// UnreadableDocumentError reports a file that could not be parsed as a spreadsheet.
type UnreadableDocumentError struct {
	Path string
	Err  error
}

func (e *UnreadableDocumentError) Error() string {
	return fmt.Sprintf("unreadable document %s: %v", e.Path, e.Err)
}

func (e *UnreadableDocumentError) Unwrap() error { return e.Err }

// HasEmphasis reports whether any row is emphasized.
func HasEmphasis(rows []Row) bool {
	for _, r := range rows {
		if r.Emphasized {
			return true
		}
	}
	return false
}
