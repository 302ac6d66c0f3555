package endpoints

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/langsheet/internal/api"
	"github.com/jackzampolin/langsheet/internal/segment"
	"github.com/jackzampolin/langsheet/internal/session"
)

// SegmentsResponse lists segments. Without a language it holds the
// mappable segments of the reference language.
type SegmentsResponse struct {
	Lang      string                    `json:"lang"`
	Mode      string                    `json:"mode,omitempty"`
	Mappable  []session.MappableSegment `json:"mappable,omitempty"`
	Segments  []segment.Segment         `json:"segments,omitempty"`
	FlatLines []segment.Line            `json:"lines,omitempty"`
}

// SegmentsEndpoint handles GET /api/sessions/{id}/segments.
type SegmentsEndpoint struct{}

func (e *SegmentsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/sessions/{id}/segments", e.handler
}

func (e *SegmentsEndpoint) Group() string { return "sessions" }

// handler godoc
//
//	@Summary		List segments
//	@Description	Without lang, returns the reference language's mappable segments with their keys. With lang, returns that language's full segments and, for flat documents, its lines.
//	@Tags			sessions
//	@Produce		json
//	@Param			id		path		string	true	"Session ID"
//	@Param			lang	query		string	false	"Language"
//	@Success		200		{object}	SegmentsResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/sessions/{id}/segments [get]
func (e *SegmentsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r)
	if !ok {
		return
	}

	lang := r.URL.Query().Get("lang")
	if lang == "" {
		writeJSON(w, http.StatusOK, SegmentsResponse{
			Lang:     s.ReferenceLang(),
			Mappable: s.MappableSegments(),
		})
		return
	}

	segs, err := s.Segments(lang)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	lines, mode, err := s.Lines(lang)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SegmentsResponse{Lang: lang, Mode: mode.String(), Segments: segs, FlatLines: lines})
}

func (e *SegmentsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "segments <id>",
		Short: "List mappable segments, or one language's segments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := sessionPath(args[0], "/segments")
			if lang != "" {
				path += "?lang=" + url.QueryEscape(lang)
			}
			client := api.NewClient(getServerURL())
			var resp SegmentsResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "language to show in full")
	return cmd
}

// GameRequest sets the game name.
type GameRequest struct {
	Name string `json:"name"`
}

// GameResponse reports the game name and the bundle name it yields.
type GameResponse struct {
	Name   string `json:"name"`
	Bundle string `json:"bundle"`
}

// SetGameEndpoint handles PUT /api/sessions/{id}/game.
type SetGameEndpoint struct{}

func (e *SetGameEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/sessions/{id}/game", e.handler
}

func (e *SetGameEndpoint) Group() string { return "sessions" }

// handler godoc
//
//	@Summary		Set game name
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Session ID"
//	@Param			request	body		GameRequest	true	"Game name"
//	@Success		200		{object}	GameResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/sessions/{id}/game [put]
func (e *SetGameEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r)
	if !ok {
		return
	}
	var req GameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.SetGameName(req.Name)
	writeJSON(w, http.StatusOK, GameResponse{Name: s.GameName(), Bundle: s.BundleName()})
}

func (e *SetGameEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "game <id> <name>",
		Short: "Set the game name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp GameResponse
			if err := client.Put(cmd.Context(), sessionPath(args[0], "/game"), GameRequest{Name: args[1]}, &resp); err != nil {
				return err
			}
			fmt.Printf("Game: %s (bundle %s.zip)\n", resp.Name, resp.Bundle)
			return nil
		},
	}
}
