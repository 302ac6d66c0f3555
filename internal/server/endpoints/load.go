package endpoints

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/langsheet/internal/api"
	"github.com/jackzampolin/langsheet/internal/ingest"
	"github.com/jackzampolin/langsheet/internal/session"
	"github.com/jackzampolin/langsheet/internal/sheet"
	"github.com/jackzampolin/langsheet/internal/svcctx"
)

// LoadRequest lists files or folders on the server's filesystem.
type LoadRequest struct {
	Paths []string `json:"paths"`
}

// SkippedFile is a file that could not be loaded.
type SkippedFile struct {
	Lang  string `json:"lang"`
	Path  string `json:"path"`
	Error string `json:"error"`
}

// LoadResponse reports the result of a load.
type LoadResponse struct {
	Languages []string      `json:"languages"`
	GameName  string        `json:"game_name"`
	Skipped   []SkippedFile `json:"skipped,omitempty"`
}

func loadResponse(res *ingest.Result, gameName string) LoadResponse {
	resp := LoadResponse{Languages: res.Langs(), GameName: gameName}
	for _, sk := range res.Skipped {
		resp.Skipped = append(resp.Skipped, SkippedFile{Lang: sk.Lang, Path: filepath.Base(sk.Path), Error: sk.Reason()})
	}
	return resp
}

func printLoad(resp LoadResponse) error {
	if api.GetOutputFormat() != api.OutputFormatText {
		return api.Output(resp)
	}
	fmt.Printf("Loaded %d languages: %v\n", len(resp.Languages), resp.Languages)
	fmt.Printf("Game:   %s\n", resp.GameName)
	for _, sk := range resp.Skipped {
		fmt.Printf("Skipped %s: %s\n", sk.Path, sk.Error)
	}
	return nil
}

// LoadEndpoint handles POST /api/sessions/{id}/load.
//
// The paths are opened with the server's own file permissions, so any
// client that can reach the server can read spreadsheets anywhere the
// server can. The server binds to 127.0.0.1 by default. Set
// server.allow_path_load to false when exposing it; clients then use the
// upload endpoint.
type LoadEndpoint struct{}

var _ api.Endpoint = (*LoadEndpoint)(nil)

func (e *LoadEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/load", e.handler
}

func (e *LoadEndpoint) Group() string { return "sessions" }

// handler godoc
//
//	@Summary		Load spreadsheets
//	@Description	Replace the session's languages with spreadsheets read from server paths. Folders are expanded one level. Paths are read with the server's permissions; intended for a server bound to localhost.
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Session ID"
//	@Param			request	body		LoadRequest	true	"Files or folders"
//	@Success		200		{object}	LoadResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/sessions/{id}/load [post]
func (e *LoadEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	cfg := svcctx.ConfigFrom(r.Context())
	if !cfg.Server.AllowPathLoad {
		writeError(w, http.StatusForbidden, "loading by server path is disabled; upload the files instead")
		return
	}
	s, ok := sessionFor(w, r)
	if !ok {
		return
	}
	var req LoadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Paths) == 0 {
		writeError(w, http.StatusBadRequest, "paths is required")
		return
	}

	sources, err := cfg.Filter().Discover(req.Paths)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	loadSources(w, r, s, sources)
}

func (e *LoadEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "load <id> <path>...",
		Short: "Load spreadsheets from paths on the server",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := make([]string, 0, len(args)-1)
			for _, p := range args[1:] {
				abs, err := filepath.Abs(p)
				if err != nil {
					return err
				}
				paths = append(paths, abs)
			}
			client := api.NewClient(getServerURL())
			var resp LoadResponse
			if err := client.Post(cmd.Context(), sessionPath(args[0], "/load"), LoadRequest{Paths: paths}, &resp); err != nil {
				return err
			}
			return printLoad(resp)
		},
	}
}

// UploadEndpoint handles POST /api/sessions/{id}/upload with multipart files.
type UploadEndpoint struct{}

func (e *UploadEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/upload", e.handler
}

func (e *UploadEndpoint) Group() string { return "sessions" }

// handler godoc
//
//	@Summary		Upload spreadsheets
//	@Description	Replace the session's languages with uploaded spreadsheets, one per language, named <lang>.xlsx
//	@Tags			sessions
//	@Accept			mpfd
//	@Produce		json
//	@Param			id		path		string	true	"Session ID"
//	@Param			files	formData	file	true	"Spreadsheets"
//	@Success		200		{object}	LoadResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/sessions/{id}/upload [post]
func (e *UploadEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(w, r)
	if !ok {
		return
	}

	const maxMemory = 64 << 20
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	dir, err := uploadDir(r, s.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filter := svcctx.ConfigFrom(r.Context()).Filter()
	var paths []string
	for _, fh := range files {
		name := filepath.Base(fh.Filename)
		if !filter.Accept(name) {
			continue
		}
		src, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read %s: %v", name, err))
			return
		}
		dest := filepath.Join(dir, name)
		err = saveUpload(src, dest)
		src.Close()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		paths = append(paths, dest)
	}
	if len(paths) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("no %s files uploaded", filter.Extension))
		return
	}

	loadSources(w, r, s, filter.Select(paths))
}

// uploadDir returns an emptied per-session upload directory.
func uploadDir(r *http.Request, id string) (string, error) {
	var dir string
	if h := svcctx.HomeFrom(r.Context()); h != nil {
		dir = h.SessionUploadsDir(id)
	} else {
		dir = filepath.Join(os.TempDir(), "langsheet-uploads", id)
	}
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("failed to clear upload directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	return dir, nil
}

func saveUpload(src io.Reader, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", filepath.Base(dest), err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("failed to save %s: %w", filepath.Base(dest), err)
	}
	return out.Close()
}

func (e *UploadEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <id> <file>...",
		Short: "Upload spreadsheets to a session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp LoadResponse
			if err := client.Upload(cmd.Context(), sessionPath(args[0], "/upload"), args[1:], &resp); err != nil {
				return err
			}
			return printLoad(resp)
		},
	}
}

func loadSources(w http.ResponseWriter, r *http.Request, s *session.Session, sources []sheet.Source) {
	if len(sources) == 0 {
		writeError(w, http.StatusBadRequest, "no spreadsheets found")
		return
	}
	ex := svcctx.ExtractorFrom(r.Context())
	if ex == nil {
		writeError(w, http.StatusServiceUnavailable, "spreadsheet reader not initialized")
		return
	}
	res, err := s.LoadFiles(r.Context(), ex, sources)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loadResponse(res, s.GameName()))
}
