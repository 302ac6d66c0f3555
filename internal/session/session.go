// Package session holds the working state of one conversion: the loaded
// languages, the key registry, the header mapping and the game name.
//
// Every exported method locks the session, so one session can be driven
// from concurrent HTTP requests. Independent sessions share nothing.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/langsheet/internal/export"
	"github.com/jackzampolin/langsheet/internal/ingest"
	"github.com/jackzampolin/langsheet/internal/schema"
	"github.com/jackzampolin/langsheet/internal/segment"
	"github.com/jackzampolin/langsheet/internal/sheet"
)

// DefaultReferenceLanguage is the language mappings are edited against.
const DefaultReferenceLanguage = "en"

var (
	// ErrUnknownLanguage is returned for a language that is not loaded.
	ErrUnknownLanguage = errors.New("language not loaded")
	// ErrUnknownKey is returned when mapping a header to a key that is not in the registry.
	ErrUnknownKey = errors.New("key not in registry")
	// ErrEmptyHeader is returned when mapping a blank header.
	ErrEmptyHeader = errors.New("header is required")
	// ErrNothingLoaded is returned when every source failed to load.
	ErrNothingLoaded = errors.New("no spreadsheet could be loaded")
)

// Options configures a new session.
type Options struct {
	Registry      schema.Options
	ReferenceLang string
	Export        export.Options
	Logger        *slog.Logger
}

// Session is the state of one working session.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	refLang  string
	exportOp export.Options
	logger   *slog.Logger

	docs     []*segment.Document
	gameName string
	registry *schema.Registry
	mapping  *schema.Mapping
}

// New creates an empty session with default keys and no mappings.
func New(opts Options) *Session {
	ref := opts.ReferenceLang
	if ref == "" {
		ref = DefaultReferenceLanguage
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New().String()
	return &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		refLang:   ref,
		exportOp:  opts.Export,
		logger:    logger.With("session", id),
		registry:  schema.NewRegistry(opts.Registry),
		mapping:   schema.NewMapping(),
	}
}

// Load replaces the loaded languages in one step. Header toggles from the
// previous load are discarded with their documents. The registry and mapping
// carry over. The game name is reseeded from the reference language title.
func (s *Session) Load(docs []*segment.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs = append([]*segment.Document(nil), docs...)
	s.gameName = ""
	if ref := s.find(s.refLang); ref != nil {
		s.gameName = ref.Title()
	}
	s.logger.Info("languages loaded", "count", len(s.docs), "game", s.gameName)
}

// LoadFiles ingests sources and commits the result with Load. Nothing is
// committed if ingest is canceled or if every source was skipped; the error
// then wraps ErrNothingLoaded and each skip reason.
func (s *Session) LoadFiles(ctx context.Context, ex sheet.Extractor, sources []sheet.Source) (*ingest.Result, error) {
	res, err := ingest.Ingest(ctx, ex, sources, s.logger)
	if err != nil {
		return nil, err
	}
	if len(res.Documents) == 0 && len(res.Skipped) > 0 {
		errs := []error{ErrNothingLoaded}
		for _, sk := range res.Skipped {
			errs = append(errs, fmt.Errorf("%s: %w", sk.Lang, sk.Err))
		}
		return res, errors.Join(errs...)
	}
	s.Load(res.Documents)
	return res, nil
}

func (s *Session) find(lang string) *segment.Document {
	for _, d := range s.docs {
		if d.Lang == lang {
			return d
		}
	}
	return nil
}

func (s *Session) lookup(lang string) (*segment.Document, error) {
	if d := s.find(lang); d != nil {
		return d, nil
	}
	return nil, fmt.Errorf("%q: %w", lang, ErrUnknownLanguage)
}

// Langs returns the loaded language ids in load order.
func (s *Session) Langs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.docs))
	for i, d := range s.docs {
		out[i] = d.Lang
	}
	return out
}

// GameName returns the current game name.
func (s *Session) GameName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameName
}

// SetGameName overrides the game name.
func (s *Session) SetGameName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameName = name
}
