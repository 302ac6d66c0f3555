// Package export serializes built documents and hands them to an archiver.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jackzampolin/langsheet/internal/output"
)

// DefaultFallbackName names the bundle when the game name is blank.
const DefaultFallbackName = "translations"

// ErrEmptyInput is returned when there are no languages to export. Nothing is archived.
var ErrEmptyInput = errors.New("no languages loaded")

// Payload is one file of the bundle.
type Payload struct {
	Filename string
	Content  []byte
}

// Archiver bundles payloads under a single name.
type Archiver interface {
	Archive(ctx context.Context, name string, files []Payload) error
}

// Language pairs a language id with its built document.
type Language struct {
	Lang     string
	Document *output.Document
}

// Options control serialization and naming.
type Options struct {
	Indent       int    // spaces per level; 0 means 2
	FallbackName string // bundle name for a blank game name
}

// Render serializes each document as "<lang>.json".
func Render(langs []Language, indent int) ([]Payload, error) {
	if indent <= 0 {
		indent = 2
	}
	pad := strings.Repeat(" ", indent)

	files := make([]Payload, 0, len(langs))
	for _, l := range langs {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", pad)
		if err := enc.Encode(l.Document); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", l.Lang, err)
		}
		files = append(files, Payload{Filename: l.Lang + ".json", Content: buf.Bytes()})
	}
	return files, nil
}

// Export renders every language and archives them in one bundle named after
// the game. It does not modify its inputs.
func Export(ctx context.Context, a Archiver, gameName string, langs []Language, opts Options) (string, error) {
	if len(langs) == 0 {
		return "", ErrEmptyInput
	}
	files, err := Render(langs, opts.Indent)
	if err != nil {
		return "", err
	}
	name := BundleName(gameName, opts.FallbackName)
	if err := a.Archive(ctx, name, files); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", name, err)
	}
	return name, nil
}

// BundleName derives a file-safe bundle name from the trimmed game name.
func BundleName(gameName, fallback string) string {
	if fallback == "" {
		fallback = DefaultFallbackName
	}
	name := sanitizeFilename(strings.TrimSpace(gameName))
	if name == "" {
		return fallback
	}
	return name
}

// maxNameBytes keeps bundle names within common filesystem limits.
const maxNameBytes = 100

func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	name = replacer.Replace(name)
	name = strings.Trim(name, " .")
	if len(name) > maxNameBytes {
		cut := maxNameBytes
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = strings.TrimRight(name[:cut], " .")
	}
	return name
}
