// Package ingest turns spreadsheet files into segmented language documents.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackzampolin/langsheet/internal/segment"
	"github.com/jackzampolin/langsheet/internal/sheet"
)

// Skipped records a file that could not be loaded.
type Skipped struct {
	Lang string `json:"lang"`
	Path string `json:"path"`
	Err  error  `json:"-"`
}

// Reason is the error text, for JSON consumers.
func (s Skipped) Reason() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Result holds the documents that loaded, in source order, and the files
// that were skipped.
type Result struct {
	Documents []*segment.Document
	Skipped   []Skipped
}

// Langs returns the loaded language ids in order.
func (r *Result) Langs() []string {
	out := make([]string, len(r.Documents))
	for i, d := range r.Documents {
		out[i] = d.Lang
	}
	return out
}

// Ingest extracts and segments each source in turn. A file that fails to
// read is skipped and the rest still load. Only cancellation aborts.
func Ingest(ctx context.Context, ex sheet.Extractor, sources []sheet.Source, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	res := &Result{}
	seen := make(map[string]bool, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if seen[src.Lang] {
			logger.Warn("duplicate language, skipping", "lang", src.Lang, "path", src.Path)
			res.Skipped = append(res.Skipped, Skipped{
				Lang: src.Lang,
				Path: src.Path,
				Err:  fmt.Errorf("language %q already loaded", src.Lang),
			})
			continue
		}

		rows, err := ex.Rows(ctx, src.Path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("skipping unreadable document", "lang", src.Lang, "path", src.Path, "error", err)
			res.Skipped = append(res.Skipped, Skipped{Lang: src.Lang, Path: src.Path, Err: err})
			continue
		}

		doc := segment.New(src.Lang, rows)
		seen[src.Lang] = true
		res.Documents = append(res.Documents, doc)
		logger.Debug("loaded document", "lang", src.Lang, "rows", len(rows), "mode", doc.Mode())
	}

	logger.Info("ingest complete", "loaded", len(res.Documents), "skipped", len(res.Skipped))
	return res, nil
}
