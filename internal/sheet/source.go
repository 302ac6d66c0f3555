package sheet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source is one language document on disk.
type Source struct {
	Lang string `json:"lang"`
	Path string `json:"path"`
}

// Filter selects spreadsheet files by extension and skips editor lock files.
type Filter struct {
	Extension  string // e.g. ".xlsx"
	TempPrefix string // e.g. "~$"
}

// DefaultFilter matches .xlsx files and skips Office lock files.
var DefaultFilter = Filter{Extension: ".xlsx", TempPrefix: "~$"}

// Accept reports whether the file name should be processed.
func (f Filter) Accept(name string) bool {
	base := filepath.Base(name)
	if f.TempPrefix != "" && strings.HasPrefix(base, f.TempPrefix) {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), f.Extension)
}

// LanguageOf derives the language identifier from a file name by stripping
// the directory and the extension.
func LanguageOf(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Select filters paths and pairs each accepted one with its language,
// preserving input order.
func (f Filter) Select(paths []string) []Source {
	out := make([]Source, 0, len(paths))
	for _, p := range paths {
		if !f.Accept(p) {
			continue
		}
		out = append(out, Source{Lang: LanguageOf(p), Path: p})
	}
	return out
}

// Discover expands directories (non-recursively, in name order) and filters
// the result. Plain file arguments are kept in the order given.
func (f Filter) Discover(args []string) ([]Source, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", arg, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			paths = append(paths, filepath.Join(arg, e.Name()))
		}
	}
	return f.Select(paths), nil
}
