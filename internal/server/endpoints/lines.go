package endpoints

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/langsheet/internal/api"
)

// ToggleLineRequest flips the header flag of one line of a flat language.
type ToggleLineRequest struct {
	Lang string `json:"lang"`
	Line int    `json:"line"`
}

// ToggleLineEndpoint handles POST /api/sessions/{id}/lines/toggle.
type ToggleLineEndpoint struct{}

func (e *ToggleLineEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/lines/toggle", e.handler
}

func (e *ToggleLineEndpoint) Group() string { return "lines" }

// handler godoc
//
//	@Summary		Toggle header line
//	@Description	Promote a line of a document without bold rows to a segment header, or demote it back
//	@Tags			lines
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Session ID"
//	@Param			request	body		ToggleLineRequest	true	"Line"
//	@Success		200		{object}	SegmentsResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/sessions/{id}/lines/toggle [post]
func (e *ToggleLineEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r)
	if !ok {
		return
	}
	var req ToggleLineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.ToggleHeader(req.Lang, req.Line); err != nil {
		writeDomainError(w, err)
		return
	}
	lines, mode, err := s.Lines(req.Lang)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SegmentsResponse{Lang: req.Lang, Mode: mode.String(), FlatLines: lines})
}

func (e *ToggleLineEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id> <lang> <line>",
		Short: "Toggle whether a line is a segment header",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("line must be a number: %w", err)
			}
			client := api.NewClient(getServerURL())
			var resp SegmentsResponse
			req := ToggleLineRequest{Lang: args[1], Line: line}
			if err := client.Post(cmd.Context(), sessionPath(args[0], "/lines/toggle"), req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// DeleteLineRequest addresses a content line by segment and line index.
type DeleteLineRequest struct {
	Segment int `json:"segment"`
	Line    int `json:"line"`
}

// DeleteLineResponse reports how many languages changed.
type DeleteLineResponse struct {
	Languages int `json:"languages"`
}

// DeleteLineEndpoint handles POST /api/sessions/{id}/lines/delete.
type DeleteLineEndpoint struct{}

func (e *DeleteLineEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/lines/delete", e.handler
}

func (e *DeleteLineEndpoint) Group() string { return "lines" }

// handler godoc
//
//	@Summary		Delete line
//	@Description	Remove a content line at the same position from every loaded language that has it
//	@Tags			lines
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Session ID"
//	@Param			request	body		DeleteLineRequest	true	"Position"
//	@Success		200		{object}	DeleteLineResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/sessions/{id}/lines/delete [post]
func (e *DeleteLineEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r)
	if !ok {
		return
	}
	var req DeleteLineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := s.DeleteLine(req.Segment, req.Line)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteLineResponse{Languages: n})
}

func (e *DeleteLineEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id> <segment> <line>",
		Short: "Delete a content line in every language",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			seg, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("segment must be a number: %w", err)
			}
			line, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("line must be a number: %w", err)
			}
			client := api.NewClient(getServerURL())
			var resp DeleteLineResponse
			req := DeleteLineRequest{Segment: seg, Line: line}
			if err := client.Post(cmd.Context(), sessionPath(args[0], "/lines/delete"), req, &resp); err != nil {
				return err
			}
			fmt.Printf("Deleted line from %d languages\n", resp.Languages)
			return nil
		},
	}
}
