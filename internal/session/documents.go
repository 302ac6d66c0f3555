package session

import (
	"context"
	"errors"

	"github.com/jackzampolin/langsheet/internal/export"
	"github.com/jackzampolin/langsheet/internal/output"
	"github.com/jackzampolin/langsheet/internal/schema"
	"github.com/jackzampolin/langsheet/internal/segment"
)

// MappableSegment is a reference-language segment with its current mapping.
type MappableSegment struct {
	Index   int    `json:"index" yaml:"index"`
	Header  string `json:"header" yaml:"header"`
	Content string `json:"content" yaml:"content"`
	Key     string `json:"key,omitempty" yaml:"key,omitempty"`
}

// ReferenceLang returns the language mappings are edited against. When the
// configured language is not loaded, the first loaded language is used.
func (s *Session) ReferenceLang() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d := s.reference(); d != nil {
		return d.Lang
	}
	return ""
}

func (s *Session) reference() *segment.Document {
	if d := s.find(s.refLang); d != nil {
		return d
	}
	if len(s.docs) > 0 {
		return s.docs[0]
	}
	return nil
}

// MappableSegments returns the reference language's segments after the
// title segment.
func (s *Session) MappableSegments() []MappableSegment {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref := s.reference()
	if ref == nil {
		return nil
	}
	segs := ref.Segments(s.gameName)
	if len(segs) < 2 {
		return []MappableSegment{}
	}
	out := make([]MappableSegment, 0, len(segs)-1)
	for i, seg := range segs[1:] {
		key, _ := s.mapping.Get(schema.HeaderText(seg.Header))
		out = append(out, MappableSegment{Index: i + 1, Header: seg.Header, Content: seg.Content, Key: key})
	}
	return out
}

// Segments returns the full segment sequence of one language.
func (s *Session) Segments(lang string) ([]segment.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(lang)
	if err != nil {
		return nil, err
	}
	return d.Segments(s.gameName), nil
}

// Lines returns the flat lines of one language with their header flags.
func (s *Session) Lines(lang string) ([]segment.Line, segment.Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(lang)
	if err != nil {
		return nil, 0, err
	}
	return d.Lines(), d.Mode(), nil
}

// ToggleHeader flips the header flag of one line of a flat language.
func (s *Session) ToggleHeader(lang string, line int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(lang)
	if err != nil {
		return err
	}
	return d.ToggleHeader(line)
}

// DeleteLine removes the content line at (seg, line) from every loaded
// language that has it. It returns the number of languages changed, and
// segment.ErrOutOfRange when none had the line.
func (s *Session) DeleteLine(seg, line int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, d := range s.docs {
		err := d.DeleteLine(seg, line)
		if errors.Is(err, segment.ErrOutOfRange) {
			s.logger.Debug("line not present, skipping", "lang", d.Lang, "segment", seg, "line", line)
			continue
		}
		if err != nil {
			return changed, err
		}
		changed++
	}
	if changed == 0 {
		return 0, segment.ErrOutOfRange
	}
	return changed, nil
}

// Build produces the output document of one language.
func (s *Session) Build(lang string) (*output.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(lang)
	if err != nil {
		return nil, err
	}
	return output.Build(d, s.mapping, s.registry, s.gameName), nil
}

// BuildAll builds every loaded language in load order.
func (s *Session) BuildAll() []export.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildAll()
}

func (s *Session) buildAll() []export.Language {
	out := make([]export.Language, len(s.docs))
	for i, d := range s.docs {
		out[i] = export.Language{Lang: d.Lang, Document: output.Build(d, s.mapping, s.registry, s.gameName)}
	}
	return out
}

// Export builds every language and hands the bundle to a. The session is
// not modified. It returns the bundle name.
func (s *Session) Export(ctx context.Context, a export.Archiver) (string, error) {
	s.mu.Lock()
	langs := s.buildAll()
	game := s.gameName
	s.mu.Unlock()

	name, err := export.Export(ctx, a, game, langs, s.exportOp)
	if err != nil {
		return "", err
	}
	s.logger.Info("exported", "bundle", name, "languages", len(langs))
	return name, nil
}

// BundleName is the name Export would use.
func (s *Session) BundleName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return export.BundleName(s.gameName, s.exportOp.FallbackName)
}
