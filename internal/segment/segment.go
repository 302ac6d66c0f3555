// Package segment groups spreadsheet rows into (header, content) segments.
//
// A document is segmented once, when it is loaded. Documents with at least one
// bold row use the bold rows as boundaries. Documents without any bold row are
// kept as flat lines; the user promotes lines to headers afterwards and the
// segments are derived from those toggles.
package segment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackzampolin/langsheet/internal/sheet"
)

var (
	// ErrNotFlat is returned when a header toggle targets an emphasis-driven document.
	ErrNotFlat = errors.New("document is not in flat mode")
	// ErrOutOfRange is returned for segment or line indexes outside the document.
	ErrOutOfRange = errors.New("index out of range")
)

// Mode is the segmentation strategy chosen at load time.
type Mode int

const (
	EmphasisDriven Mode = iota
	Flat
)

func (m Mode) String() string {
	switch m {
	case EmphasisDriven:
		return "emphasis"
	case Flat:
		return "flat"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "emphasis":
		*m = EmphasisDriven
	case "flat":
		*m = Flat
	default:
		return fmt.Errorf("unknown segmentation mode %q", text)
	}
	return nil
}

// Segment is a header and the newline-joined lines that followed it.
type Segment struct {
	Header  string `json:"header"`
	Content string `json:"content"`
}

// Lines splits the content into its lines. Empty content has no lines.
func (s Segment) Lines() []string {
	if s.Content == "" {
		return nil
	}
	return strings.Split(s.Content, "\n")
}

// Line is one row of a flat document.
type Line struct {
	Text   string `json:"text"`
	Header bool   `json:"header"`
}

// Document is the segmented form of one language's spreadsheet.
type Document struct {
	Lang string

	mode     Mode
	segments []Segment // EmphasisDriven
	lines    []Line    // Flat
}

// New segments rows for the given language. Whitespace-only rows are dropped
// before the mode is chosen, so an emphasized blank cell does not count.
func New(lang string, rows []sheet.Row) *Document {
	kept := make([]sheet.Row, 0, len(rows))
	for _, r := range rows {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}
		kept = append(kept, sheet.Row{Text: text, Emphasized: r.Emphasized})
	}

	d := &Document{Lang: lang}
	if sheet.HasEmphasis(kept) {
		d.mode = EmphasisDriven
		d.segments = byEmphasis(kept)
		return d
	}
	d.mode = Flat
	for _, r := range kept {
		d.lines = append(d.lines, Line{Text: r.Text})
	}
	return d
}

func byEmphasis(rows []sheet.Row) []Segment {
	var out []Segment
	var cur *Segment
	for _, r := range rows {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}
		if r.Emphasized {
			if cur != nil {
				out = append(out, *cur)
			}
			cur = &Segment{Header: text}
			continue
		}
		if cur == nil {
			continue
		}
		if cur.Content != "" {
			cur.Content += "\n"
		}
		cur.Content += text
	}
	if cur != nil {
		out = append(out, *cur)
	}
	return out
}

// Mode returns the strategy chosen at load time.
func (d *Document) Mode() Mode { return d.mode }

// Title returns the game-name candidate: the first header of an
// emphasis-driven document, or "" for flat documents.
func (d *Document) Title() string {
	if d.mode == EmphasisDriven && len(d.segments) > 0 {
		return d.segments[0].Header
	}
	return ""
}

// Segments returns a fresh copy of the segment sequence. Segment 0 is the
// title segment. For flat documents it is a placeholder headed by title that
// holds the lines before the first toggled header.
func (d *Document) Segments(title string) []Segment {
	if d.mode == EmphasisDriven {
		out := make([]Segment, len(d.segments))
		copy(out, d.segments)
		return out
	}

	out := []Segment{{Header: title}}
	var buf []string
	flush := func() {
		out[len(out)-1].Content = strings.Join(buf, "\n")
		buf = buf[:0]
	}
	for _, l := range d.lines {
		if l.Header {
			flush()
			out = append(out, Segment{Header: l.Text})
			continue
		}
		buf = append(buf, l.Text)
	}
	flush()
	return out
}

// Lines returns a copy of the flat lines with their header flags.
// Emphasis-driven documents have none.
func (d *Document) Lines() []Line {
	if d.mode != Flat {
		return nil
	}
	out := make([]Line, len(d.lines))
	copy(out, d.lines)
	return out
}

// ToggleHeader flips the header flag of a flat line.
func (d *Document) ToggleHeader(line int) error {
	if d.mode != Flat {
		return ErrNotFlat
	}
	if line < 0 || line >= len(d.lines) {
		return fmt.Errorf("line %d: %w", line, ErrOutOfRange)
	}
	d.lines[line].Header = !d.lines[line].Header
	return nil
}

// DeleteLine removes one content line from the segment at index seg.
func (d *Document) DeleteLine(seg, line int) error {
	if d.mode == EmphasisDriven {
		if seg < 0 || seg >= len(d.segments) {
			return fmt.Errorf("segment %d: %w", seg, ErrOutOfRange)
		}
		lines := d.segments[seg].Lines()
		if line < 0 || line >= len(lines) {
			return fmt.Errorf("segment %d line %d: %w", seg, line, ErrOutOfRange)
		}
		lines = append(lines[:line], lines[line+1:]...)
		d.segments[seg].Content = strings.Join(lines, "\n")
		return nil
	}

	si, li := 0, 0
	for k, l := range d.lines {
		if l.Header {
			si++
			li = 0
			continue
		}
		if si == seg && li == line {
			d.lines = append(d.lines[:k], d.lines[k+1:]...)
			return nil
		}
		li++
	}
	return fmt.Errorf("segment %d line %d: %w", seg, line, ErrOutOfRange)
}
