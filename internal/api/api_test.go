package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEndpoint struct {
	method, path, group string
}

func (f fakeEndpoint) Route() (string, string, http.HandlerFunc) {
	return f.method, f.path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Path", f.path)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (f fakeEndpoint) Command(func() string) *cobra.Command {
	return &cobra.Command{Use: f.path}
}

func (f fakeEndpoint) Group() string { return f.group }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeEndpoint{method: "GET", path: "/health"})
	r.Register(fakeEndpoint{method: "POST", path: "/a", group: "keys"})
	r.Register(fakeEndpoint{method: "POST", path: "/b", group: "keys"})

	var order []string
	mw := func(name string) Middleware {
		return func(next http.HandlerFunc) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next(w, r)
			}
		}
	}
	mux := http.NewServeMux()
	r.RegisterRoutes(mux, mw("outer"), mw("inner"))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/a", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"outer", "inner"}, order)

	root := r.BuildCommands(func() string { return "" })
	names := []string{}
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"/health", "keys"}, names)
	keys, _, err := root.Find([]string{"keys"})
	require.NoError(t, err)
	assert.Len(t, keys.Commands(), 2)
}

type textThing struct{}

func (textThing) RenderText(w io.Writer) error {
	_, err := io.WriteString(w, "pretty\n")
	return err
}

func TestOutputTo(t *testing.T) {
	data := map[string]any{"lang": "en"}

	var buf bytes.Buffer
	require.NoError(t, OutputTo(&buf, OutputFormatJSON, data))
	assert.Equal(t, "{\n  \"lang\": \"en\"\n}\n", buf.String())

	buf.Reset()
	require.NoError(t, OutputTo(&buf, OutputFormatYAML, data))
	assert.Equal(t, "lang: en\n", buf.String())

	buf.Reset()
	require.NoError(t, OutputTo(&buf, OutputFormatText, textThing{}))
	assert.Equal(t, "pretty\n", buf.String())

	buf.Reset()
	require.NoError(t, OutputTo(&buf, OutputFormatText, data))
	assert.Equal(t, "lang: en\n", buf.String())

	assert.Error(t, OutputTo(&buf, "xml", data))
}

func TestClient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /echo", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(body)
	})
	mux.HandleFunc("GET /missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "session not found"})
	})
	mux.HandleFunc("POST /upload", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		names := []string{}
		for _, fh := range r.MultipartForm.File["files"] {
			names = append(names, fh.Filename)
		}
		_ = json.NewEncoder(w).Encode(names)
	})
	mux.HandleFunc("GET /download", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="Game X.zip"`)
		_, _ = w.Write([]byte("zipbytes"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	t.Run("post", func(t *testing.T) {
		var out map[string]string
		require.NoError(t, c.Post(ctx, "/echo", map[string]string{"key": "rtp"}, &out))
		assert.Equal(t, "rtp", out["key"])
	})

	t.Run("status error", func(t *testing.T) {
		err := c.Get(ctx, "/missing", nil)
		require.Error(t, err)
		assert.True(t, IsStatus(err, http.StatusNotFound))
		assert.Contains(t, err.Error(), "session not found")
	})

	t.Run("upload", func(t *testing.T) {
		dir := t.TempDir()
		en := filepath.Join(dir, "en.xlsx")
		require.NoError(t, os.WriteFile(en, []byte("x"), 0o644))
		var names []string
		require.NoError(t, c.Upload(ctx, "/upload", []string{en}, &names))
		assert.Equal(t, []string{"en.xlsx"}, names)
	})

	t.Run("download", func(t *testing.T) {
		var buf bytes.Buffer
		name, err := c.Download(ctx, "/download", &buf)
		require.NoError(t, err)
		assert.Equal(t, "Game X.zip", name)
		assert.Equal(t, "zipbytes", buf.String())
	})
}
