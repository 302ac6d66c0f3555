package endpoints

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/langsheet/internal/api"
	"github.com/jackzampolin/langsheet/internal/profile"
	"github.com/jackzampolin/langsheet/internal/session"
)

func profilePath(id string) string { return sessionPath(id, "/profile") }

// GetProfileEndpoint handles GET /api/sessions/{id}/profile.
type GetProfileEndpoint struct{}

func (e *GetProfileEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/sessions/{id}/profile", e.handler
}

func (e *GetProfileEndpoint) Group() string { return "profile" }

// handler godoc
//
//	@Summary		Get profile
//	@Description	Game name, key order and mapping of a session, reusable with convert --profile
//	@Tags			profile
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	profile.Profile
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/sessions/{id}/profile [get]
func (e *GetProfileEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Profile())
}

func (e *GetProfileEndpoint) Command(getServerURL func() string) *cobra.Command {
	var save string
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show or save the profile of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var p profile.Profile
			if err := client.Get(cmd.Context(), profilePath(args[0]), &p); err != nil {
				return err
			}
			if save == "" {
				return api.Output(p)
			}
			if err := profile.Save(save, &p); err != nil {
				return err
			}
			fmt.Printf("Saved profile to %s\n", save)
			return nil
		},
	}
	cmd.Flags().StringVar(&save, "save", "", "write the profile to this YAML file")
	return cmd
}

// PutProfileEndpoint handles PUT /api/sessions/{id}/profile.
type PutProfileEndpoint struct{}

func (e *PutProfileEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/sessions/{id}/profile", e.handler
}

func (e *PutProfileEndpoint) Group() string { return "profile" }

// handler godoc
//
//	@Summary		Apply profile
//	@Description	Replace key order and mapping from a JSON or YAML profile. Loaded languages are kept.
//	@Tags			profile
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Session ID"
//	@Param			request	body		profile.Profile	true	"Profile"
//	@Success		200		{object}	session.Summary
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/sessions/{id}/profile [put]
func (e *PutProfileEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read body: %v", err))
		return
	}
	p, err := profile.Parse(body)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.ApplyProfile(p)
	writeJSON(w, http.StatusOK, s.Summary())
}

func (e *PutProfileEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <id> <file>",
		Short: "Apply a saved profile to a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := profile.Load(args[1])
			if err != nil {
				return err
			}
			client := api.NewClient(getServerURL())
			var resp session.Summary
			if err := client.Put(cmd.Context(), profilePath(args[0]), p, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
