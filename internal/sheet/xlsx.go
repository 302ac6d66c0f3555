package sheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/xuri/excelize/v2"
)

// XLSXExtractor reads .xlsx workbooks.
type XLSXExtractor struct {
	// OpenAttempts bounds retries when a file is still being written
	// (for example while an editor saves it). Values < 1 mean a single attempt.
	OpenAttempts uint
	// OpenDelay is the pause between attempts.
	OpenDelay time.Duration
	Logger    *slog.Logger
}

var _ Extractor = (*XLSXExtractor)(nil)

// NewXLSXExtractor creates an extractor with the given retry policy.
func NewXLSXExtractor(attempts uint, delay time.Duration, logger *slog.Logger) *XLSXExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXExtractor{OpenAttempts: attempts, OpenDelay: delay, Logger: logger}
}

// Rows returns the first column of the first sheet. Failures to open or parse
// the workbook are returned as *UnreadableDocumentError.
func (x *XLSXExtractor) Rows(ctx context.Context, path string) ([]Row, error) {
	f, err := x.open(ctx, path)
	if err != nil {
		return nil, &UnreadableDocumentError{Path: path, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &UnreadableDocumentError{Path: path, Err: errors.New("workbook has no sheets")}
	}
	name := sheets[0]

	raw, err := f.GetRows(name)
	if err != nil {
		return nil, &UnreadableDocumentError{Path: path, Err: fmt.Errorf("read rows: %w", err)}
	}

	rows := make([]Row, 0, len(raw))
	for i, cells := range raw {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := ""
		if len(cells) > 0 {
			text = cells[0]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, &UnreadableDocumentError{Path: path, Err: err}
		}
		bold, err := isBold(f, name, cell)
		if err != nil {
			return nil, &UnreadableDocumentError{Path: path, Err: fmt.Errorf("style of %s: %w", cell, err)}
		}
		rows = append(rows, Row{Text: strings.TrimSpace(text), Emphasized: bold})
	}

	x.Logger.Debug("extracted rows", "path", path, "sheet", name, "rows", len(rows))
	return rows, nil
}

func (x *XLSXExtractor) open(ctx context.Context, path string) (*excelize.File, error) {
	attempts := x.OpenAttempts
	if attempts < 1 {
		attempts = 1
	}

	var f *excelize.File
	err := retry.Do(
		func() error {
			var err error
			f, err = excelize.OpenFile(path)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(x.OpenDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			x.Logger.Debug("retrying open", "path", path, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// isBold checks the cell style font first, then rich text runs. A rich text
// cell counts as bold only when every non-blank run is bold.
func isBold(f *excelize.File, sheetName, cell string) (bool, error) {
	idx, err := f.GetCellStyle(sheetName, cell)
	if err != nil {
		return false, err
	}
	if idx != 0 {
		style, err := f.GetStyle(idx)
		if err != nil {
			return false, err
		}
		if style != nil && style.Font != nil && style.Font.Bold {
			return true, nil
		}
	}

	runs, err := f.GetCellRichText(sheetName, cell)
	if err != nil || len(runs) == 0 {
		return false, nil
	}
	sawText := false
	for _, run := range runs {
		if strings.TrimSpace(run.Text) == "" {
			continue
		}
		sawText = true
		if run.Font == nil || !run.Font.Bold {
			return false, nil
		}
	}
	return sawText, nil
}
