package endpoints

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/langsheet/internal/api"
	"github.com/jackzampolin/langsheet/internal/export"
)

// ExportEndpoint handles GET /api/sessions/{id}/export.
type ExportEndpoint struct{}

var _ api.Endpoint = (*ExportEndpoint)(nil)

func (e *ExportEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/sessions/{id}/export", e.handler
}

// handler godoc
//
//	@Summary		Export bundle
//	@Description	Download a zip holding <lang>.json for every loaded language, named after the game
//	@Tags			export
//	@Produce		application/zip
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{file}		file
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Router			/api/sessions/{id}/export [get]
func (e *ExportEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r)
	if !ok {
		return
	}

	// Build the whole archive first so failures still get a JSON error.
	var buf bytes.Buffer
	name, err := s.Export(r.Context(), export.NewZipArchiver(&buf))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name + ".zip"}))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (e *ExportEndpoint) Command(getServerURL func() string) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Download the zip bundle of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var buf bytes.Buffer
			name, err := client.Download(cmd.Context(), sessionPath(args[0], "/export"), &buf)
			if err != nil {
				return err
			}
			if name == "" {
				name = export.DefaultFallbackName + ".zip"
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			dest := filepath.Join(outDir, filepath.Base(name))
			if err := os.WriteFile(dest, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write bundle: %w", err)
			}
			fmt.Printf("Wrote %s (%d bytes)\n", dest, buf.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", ".", "directory to write the bundle to")
	return cmd
}
