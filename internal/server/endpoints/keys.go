package endpoints

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/langsheet/internal/api"
	"github.com/jackzampolin/langsheet/internal/session"
)

// KeysResponse lists the registry in order.
type KeysResponse struct {
	Keys  []session.KeyInfo `json:"keys"`
	Added *bool             `json:"added,omitempty"`
}

var (
	essentialMark    = color.New(color.FgYellow).SprintFunc()
	accumulationMark = color.New(color.FgCyan).SprintFunc()
)

// RenderText prints one key per line with its position and markers.
func (k KeysResponse) RenderText(w io.Writer) error {
	for i, key := range k.Keys {
		line := fmt.Sprintf("%2d  %s", i, key.Name)
		if key.Accumulation {
			line += " " + accumulationMark("[list]")
		}
		if key.Essential {
			line += " " + essentialMark("[core]")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func keysPath(id string) string { return sessionPath(id, "/keys") }

func outputKeys(cmd *cobra.Command, client *api.Client, id string) error {
	var resp KeysResponse
	if err := client.Get(cmd.Context(), keysPath(id), &resp); err != nil {
		return err
	}
	return api.Output(resp)
}

// ListKeysEndpoint handles GET /api/sessions/{id}/keys.
type ListKeysEndpoint struct{}

func (e *ListKeysEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/sessions/{id}/keys", e.handler
}

func (e *ListKeysEndpoint) Group() string { return "keys" }

// handler godoc
//
//	@Summary		List keys
//	@Tags			keys
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	KeysResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/sessions/{id}/keys [get]
func (e *ListKeysEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, KeysResponse{Keys: s.Keys()})
}

func (e *ListKeysEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list <id>",
		Short: "List output keys in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return outputKeys(cmd, api.NewClient(getServerURL()), args[0])
		},
	}
}

// AddKeyRequest names a key to append.
type AddKeyRequest struct {
	Name string `json:"name"`
}

// AddKeyEndpoint handles POST /api/sessions/{id}/keys.
type AddKeyEndpoint struct{}

func (e *AddKeyEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/keys", e.handler
}

func (e *AddKeyEndpoint) Group() string { return "keys" }

// handler godoc
//
//	@Summary		Add key
//	@Description	Append a key. Blank and duplicate names are ignored and reported with added=false.
//	@Tags			keys
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Session ID"
//	@Param			request	body		AddKeyRequest	true	"Key"
//	@Success		200		{object}	KeysResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/sessions/{id}/keys [post]
func (e *AddKeyEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r)
	if !ok {
		return
	}
	var req AddKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	added := s.AddKey(req.Name)
	writeJSON(w, http.StatusOK, KeysResponse{Keys: s.Keys(), Added: &added})
}

func (e *AddKeyEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <name>",
		Short: "Append an output key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp KeysResponse
			if err := client.Post(cmd.Context(), keysPath(args[0]), AddKeyRequest{Name: args[1]}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// RemoveKeyEndpoint handles DELETE /api/sessions/{id}/keys/{key}.
type RemoveKeyEndpoint struct{}

func (e *RemoveKeyEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/sessions/{id}/keys/{key}", e.handler
}

func (e *RemoveKeyEndpoint) Group() string { return "keys" }

// handler godoc
//
//	@Summary		Remove key
//	@Description	Remove a key and every mapping pointing at it. Core keys cannot be removed.
//	@Tags			keys
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Param			key	path		string	true	"Key"
//	@Success		200	{object}	KeysResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Router			/api/sessions/{id}/keys/{key} [delete]
func (e *RemoveKeyEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r)
	if !ok {
		return
	}
	if err := s.RemoveKey(r.PathValue("key")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, KeysResponse{Keys: s.Keys()})
}

func (e *RemoveKeyEndpoint) Command(getServerURL func() string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "remove <id> <name>",
		Short: "Remove an output key and its mappings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("removing %q also unmaps its headers; pass --yes to confirm", args[1])
			}
			client := api.NewClient(getServerURL())
			var resp KeysResponse
			if err := client.Delete(cmd.Context(), keysPath(args[0])+"/"+url.PathEscape(args[1]), nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm removal")
	return cmd
}

// ReorderKeysRequest moves the key at From to To.
type ReorderKeysRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// ReorderKeysEndpoint handles POST /api/sessions/{id}/keys/reorder.
type ReorderKeysEndpoint struct{}

func (e *ReorderKeysEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/keys/reorder", e.handler
}

func (e *ReorderKeysEndpoint) Group() string { return "keys" }

// handler godoc
//
//	@Summary		Reorder keys
//	@Description	Move a key to a new position. Equal or out-of-range positions change nothing.
//	@Tags			keys
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Session ID"
//	@Param			request	body		ReorderKeysRequest	true	"Positions"
//	@Success		200		{object}	KeysResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/sessions/{id}/keys/reorder [post]
func (e *ReorderKeysEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r)
	if !ok {
		return
	}
	var req ReorderKeysRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.ReorderKeys(req.From, req.To)
	writeJSON(w, http.StatusOK, KeysResponse{Keys: s.Keys()})
}

func (e *ReorderKeysEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <from> <to>",
		Short: "Move a key to a new position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("from must be a number: %w", err)
			}
			to, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("to must be a number: %w", err)
			}
			client := api.NewClient(getServerURL())
			var resp KeysResponse
			if err := client.Post(cmd.Context(), keysPath(args[0])+"/reorder", ReorderKeysRequest{From: from, To: to}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// RestoreKeysEndpoint handles POST /api/sessions/{id}/keys/restore.
type RestoreKeysEndpoint struct{}

func (e *RestoreKeysEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/keys/restore", e.handler
}

func (e *RestoreKeysEndpoint) Group() string { return "keys" }

// handler godoc
//
//	@Summary		Restore default keys
//	@Description	Reset the key list to the defaults. Mappings are kept.
//	@Tags			keys
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	KeysResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/sessions/{id}/keys/restore [post]
func (e *RestoreKeysEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r)
	if !ok {
		return
	}
	s.RestoreDefaults()
	writeJSON(w, http.StatusOK, KeysResponse{Keys: s.Keys()})
}

func (e *RestoreKeysEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore the default key list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Post(cmd.Context(), keysPath(args[0])+"/restore", nil, nil); err != nil {
				return err
			}
			return outputKeys(cmd, client, args[0])
		},
	}
}
