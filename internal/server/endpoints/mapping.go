package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/langsheet/internal/api"
	"github.com/jackzampolin/langsheet/internal/schema"
)

// MappingResponse lists header-to-key entries sorted by header.
type MappingResponse struct {
	Entries []schema.Entry `json:"entries"`
}

// MappingRequest maps Header to Key. An empty key unmaps the header.
type MappingRequest struct {
	Header string `json:"header"`
	Key    string `json:"key,omitempty"`
}

func mappingPath(id string) string { return sessionPath(id, "/mapping") }

// GetMappingEndpoint handles GET /api/sessions/{id}/mapping.
type GetMappingEndpoint struct{}

func (e *GetMappingEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/sessions/{id}/mapping", e.handler
}

func (e *GetMappingEndpoint) Group() string { return "mapping" }

// handler godoc
//
//	@Summary		Get mapping
//	@Tags			mapping
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	MappingResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/sessions/{id}/mapping [get]
func (e *GetMappingEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, MappingResponse{Entries: s.Mapping()})
}

func (e *GetMappingEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show the header mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp MappingResponse
			if err := client.Get(cmd.Context(), mappingPath(args[0]), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// SetMappingEndpoint handles PUT /api/sessions/{id}/mapping.
type SetMappingEndpoint struct{}

func (e *SetMappingEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/sessions/{id}/mapping", e.handler
}

func (e *SetMappingEndpoint) Group() string { return "mapping" }

// handler godoc
//
//	@Summary		Map header
//	@Description	Map a segment header to a key in every language. The key must be in the registry.
//	@Tags			mapping
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Session ID"
//	@Param			request	body		MappingRequest	true	"Assignment"
//	@Success		200		{object}	MappingResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/sessions/{id}/mapping [put]
func (e *SetMappingEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r)
	if !ok {
		return
	}
	var req MappingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.Map(req.Header, req.Key); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MappingResponse{Entries: s.Mapping()})
}

func (e *SetMappingEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <header> <key>",
		Short: "Map a segment header to a key",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp MappingResponse
			if err := client.Put(cmd.Context(), mappingPath(args[0]), MappingRequest{Header: args[1], Key: args[2]}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// DeleteMappingEndpoint handles DELETE /api/sessions/{id}/mapping.
type DeleteMappingEndpoint struct{}

func (e *DeleteMappingEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/sessions/{id}/mapping", e.handler
}

func (e *DeleteMappingEndpoint) Group() string { return "mapping" }

// handler godoc
//
//	@Summary		Unmap header
//	@Tags			mapping
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Session ID"
//	@Param			request	body		MappingRequest	true	"Header"
//	@Success		200		{object}	MappingResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/sessions/{id}/mapping [delete]
func (e *DeleteMappingEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r)
	if !ok {
		return
	}
	var req MappingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Header == "" {
		writeError(w, http.StatusBadRequest, "header is required")
		return
	}
	s.Unmap(req.Header)
	writeJSON(w, http.StatusOK, MappingResponse{Entries: s.Mapping()})
}

func (e *DeleteMappingEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "unset <id> <header>",
		Short: "Unmap a segment header",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp MappingResponse
			if err := client.Delete(cmd.Context(), mappingPath(args[0]), MappingRequest{Header: args[1]}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
