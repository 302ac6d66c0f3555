package endpoints

import (
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/langsheet/internal/api"
	"github.com/jackzampolin/langsheet/internal/output"
)

// LanguagePreview is the built document of one language.
type LanguagePreview struct {
	Lang     string           `json:"lang" yaml:"lang"`
	Document *output.Document `json:"document" yaml:"document"`
}

// PreviewResponse holds built documents in load order.
type PreviewResponse struct {
	Languages []LanguagePreview `json:"languages" yaml:"languages"`
}

// PreviewEndpoint handles GET /api/sessions/{id}/preview.
type PreviewEndpoint struct{}

func (e *PreviewEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/sessions/{id}/preview", e.handler
}

func (e *PreviewEndpoint) Group() string { return "sessions" }

// handler godoc
//
//	@Summary		Preview output
//	@Description	Build the output documents without exporting. With lang, only that language is built.
//	@Tags			sessions
//	@Produce		json
//	@Param			id		path		string	true	"Session ID"
//	@Param			lang	query		string	false	"Language"
//	@Success		200		{object}	PreviewResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/sessions/{id}/preview [get]
func (e *PreviewEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r)
	if !ok {
		return
	}

	if lang := r.URL.Query().Get("lang"); lang != "" {
		doc, err := s.Build(lang)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, PreviewResponse{Languages: []LanguagePreview{{Lang: lang, Document: doc}}})
		return
	}

	built := s.BuildAll()
	resp := PreviewResponse{Languages: make([]LanguagePreview, len(built))}
	for i, l := range built {
		resp.Languages[i] = LanguagePreview{Lang: l.Lang, Document: l.Document}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *PreviewEndpoint) Command(getServerURL func() string) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "preview <id>",
		Short: "Show the output documents without exporting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := sessionPath(args[0], "/preview")
			if lang != "" {
				path += "?lang=" + url.QueryEscape(lang)
			}
			client := api.NewClient(getServerURL())
			var resp PreviewResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "only this language")
	return cmd
}
