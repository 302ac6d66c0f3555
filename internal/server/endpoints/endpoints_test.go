package endpoints

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackzampolin/langsheet/internal/api"
	"github.com/jackzampolin/langsheet/internal/config"
	"github.com/jackzampolin/langsheet/internal/home"
	"github.com/jackzampolin/langsheet/internal/output"
	"github.com/jackzampolin/langsheet/internal/profile"
	"github.com/jackzampolin/langsheet/internal/session"
	"github.com/jackzampolin/langsheet/internal/sheet"
	"github.com/jackzampolin/langsheet/internal/svcctx"
	"github.com/jackzampolin/langsheet/internal/testutil"
)

type harness struct {
	t        *testing.T
	handler  http.Handler
	store    *session.Store
	home     *home.Dir
	services *svcctx.Services
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h, err := home.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, h.EnsureExists())

	opts := config.DefaultConfig().SessionOptions()
	opts.Logger = logger
	store := session.NewStore(time.Hour, opts)

	reg := api.NewRegistry()
	for _, ep := range All() {
		reg.Register(ep)
	}
	mux := http.NewServeMux()
	reg.RegisterRoutes(mux)

	services := &svcctx.Services{
		Sessions:  store,
		Extractor: sheet.NewXLSXExtractor(1, 0, logger),
		Logger:    logger,
		Home:      h,
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r.WithContext(svcctx.WithServices(r.Context(), services)))
	})
	return &harness{t: t, handler: handler, store: store, home: h, services: services}
}

func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		rd = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(h.t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// loaded creates a session holding en and de rules sheets.
func (h *harness) loaded() string {
	h.t.Helper()
	dir := h.t.TempDir()
	testutil.WriteWorkbook(h.t, dir, "en.xlsx", testutil.Rules("Lucky Fruits", "96.1%"))
	testutil.WriteWorkbook(h.t, dir, "de.xlsx", testutil.Rules("Glücksfrüchte", "96,1 %"))
	require.NoError(h.t, os.WriteFile(filepath.Join(dir, "~$en.xlsx"), []byte("lock"), 0o644))

	rec := h.do("POST", "/api/sessions", nil)
	require.Equal(h.t, http.StatusCreated, rec.Code)
	id := decode[session.Summary](h.t, rec).ID

	rec = h.do("POST", sessionPath(id, "/load"), LoadRequest{Paths: []string{dir}})
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	return id
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	h.store.Create()

	rec := h.do("GET", "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[HealthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Sessions)
}

func TestSessions(t *testing.T) {
	h := newHarness(t)

	rec := h.do("POST", "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[session.Summary](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Empty(t, created.Languages)
	assert.Len(t, created.Keys, 7)

	t.Run("get", func(t *testing.T) {
		rec := h.do("GET", sessionPath(created.ID, ""), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, created.ID, decode[session.Summary](t, rec).ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := h.do("GET", sessionPath("nope", ""), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := h.do("DELETE", sessionPath(created.ID, ""), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		rec = h.do("GET", sessionPath(created.ID, ""), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestLoad(t *testing.T) {
	h := newHarness(t)
	id := h.loaded()

	rec := h.do("GET", sessionPath(id, ""), nil)
	sum := decode[session.Summary](t, rec)
	require.Len(t, sum.Languages, 2)
	assert.Equal(t, "de", sum.Languages[0].Lang)
	assert.Equal(t, "en", sum.Languages[1].Lang)
	assert.Equal(t, "en", sum.ReferenceLang)
	assert.Equal(t, "Lucky Fruits", sum.GameName)

	t.Run("missing path", func(t *testing.T) {
		rec := h.do("POST", sessionPath(id, "/load"), LoadRequest{Paths: []string{filepath.Join(t.TempDir(), "none")}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty request", func(t *testing.T) {
		rec := h.do("POST", sessionPath(id, "/load"), LoadRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unreadable file is skipped", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteWorkbook(t, dir, "en.xlsx", testutil.Rules("Lucky Fruits", "96.1%"))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "fr.xlsx"), []byte("not a workbook"), 0o644))

		rec := h.do("POST", sessionPath(id, "/load"), LoadRequest{Paths: []string{dir}})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[LoadResponse](t, rec)
		assert.Equal(t, []string{"en"}, resp.Languages)
		require.Len(t, resp.Skipped, 1)
		assert.Equal(t, "fr", resp.Skipped[0].Lang)
	})

	t.Run("nothing readable keeps languages", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "it.xlsx"), []byte("not a workbook"), 0o644))

		rec := h.do("POST", sessionPath(id, "/load"), LoadRequest{Paths: []string{dir}})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		rec = h.do("GET", sessionPath(id, ""), nil)
		sum := decode[session.Summary](t, rec)
		require.Len(t, sum.Languages, 1)
		assert.Equal(t, "en", sum.Languages[0].Lang)
		assert.Equal(t, "Lucky Fruits", sum.GameName)
	})
}

func TestLoad_PathLoadDisabled(t *testing.T) {
	h := newHarness(t)
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("server:\n  allow_path_load: false\n"), 0o644))
	mgr, err := config.NewManager(cfgFile, "")
	require.NoError(t, err)
	h.services.Config = mgr

	rec := h.do("POST", "/api/sessions", nil)
	id := decode[session.Summary](t, rec).ID

	rec = h.do("POST", sessionPath(id, "/load"), LoadRequest{Paths: []string{t.TempDir()}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpload(t *testing.T) {
	h := newHarness(t)
	rec := h.do("POST", "/api/sessions", nil)
	id := decode[session.Summary](t, rec).ID

	src := t.TempDir()
	path := testutil.WriteWorkbook(t, src, "en.xlsx", testutil.Rules("Lucky Fruits", "96.1%"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("files", "en.xlsx")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	part, err = mw.CreateFormFile("files", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("ignored"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", sessionPath(id, "/upload"), &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	out := httptest.NewRecorder()
	h.handler.ServeHTTP(out, req)

	require.Equal(t, http.StatusOK, out.Code, out.Body.String())
	resp := decode[LoadResponse](t, out)
	assert.Equal(t, []string{"en"}, resp.Languages)
	assert.FileExists(t, filepath.Join(h.home.SessionUploadsDir(id), "en.xlsx"))
	assert.NoFileExists(t, filepath.Join(h.home.SessionUploadsDir(id), "notes.txt"))
}

func TestSegmentsAndMapping(t *testing.T) {
	h := newHarness(t)
	id := h.loaded()

	rec := h.do("GET", sessionPath(id, "/segments"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	segs := decode[SegmentsResponse](t, rec)
	assert.Equal(t, "en", segs.Lang)
	require.Len(t, segs.Mappable, 2)
	assert.Equal(t, "Game Rules", segs.Mappable[0].Header)
	assert.Equal(t, "RTP", segs.Mappable[1].Header)

	t.Run("one language", func(t *testing.T) {
		rec := h.do("GET", sessionPath(id, "/segments?lang=de"), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[SegmentsResponse](t, rec)
		assert.Equal(t, "emphasis", resp.Mode)
		require.Len(t, resp.Segments, 3)
		assert.Equal(t, "96,1 %", resp.Segments[2].Content)
	})

	t.Run("unknown language", func(t *testing.T) {
		rec := h.do("GET", sessionPath(id, "/segments?lang=xx"), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("set", func(t *testing.T) {
		rec := h.do("PUT", sessionPath(id, "/mapping"), MappingRequest{Header: "RTP", Key: "rtp"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		rec = h.do("PUT", sessionPath(id, "/mapping"), MappingRequest{Header: "Game Rules", Key: "description"})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = h.do("GET", sessionPath(id, "/mapping"), nil)
		resp := decode[MappingResponse](t, rec)
		assert.Len(t, resp.Entries, 2)
	})

	t.Run("unknown key", func(t *testing.T) {
		rec := h.do("PUT", sessionPath(id, "/mapping"), MappingRequest{Header: "RTP", Key: "bonus"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("preview uses mapping", func(t *testing.T) {
		rec := h.do("GET", sessionPath(id, "/preview?lang=de"), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[PreviewResponse](t, rec)
		require.Len(t, resp.Languages, 1)
		doc := resp.Languages[0].Document
		assert.Equal(t, "Lucky Fruits", doc.Header)
		rtp, ok := doc.Field("rtp")
		require.True(t, ok)
		assert.Equal(t, output.Pair{Header: "RTP", Content: "96,1 %"}, rtp.Single)
	})

	t.Run("unset", func(t *testing.T) {
		rec := h.do("DELETE", sessionPath(id, "/mapping"), MappingRequest{Header: "RTP"})
		require.Equal(t, http.StatusOK, rec.Code)
		rec = h.do("GET", sessionPath(id, "/mapping"), nil)
		assert.Len(t, decode[MappingResponse](t, rec).Entries, 1)
	})
}

func TestKeys(t *testing.T) {
	h := newHarness(t)
	rec := h.do("POST", "/api/sessions", nil)
	id := decode[session.Summary](t, rec).ID

	t.Run("add", func(t *testing.T) {
		rec := h.do("POST", sessionPath(id, "/keys"), AddKeyRequest{Name: "bonus"})
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[KeysResponse](t, rec)
		require.NotNil(t, resp.Added)
		assert.True(t, *resp.Added)
		assert.Equal(t, "bonus", resp.Keys[len(resp.Keys)-1].Name)

		rec = h.do("POST", sessionPath(id, "/keys"), AddKeyRequest{Name: "bonus"})
		resp = decode[KeysResponse](t, rec)
		assert.False(t, *resp.Added)
	})

	t.Run("move", func(t *testing.T) {
		rec := h.do("POST", sessionPath(id, "/keys/reorder"), ReorderKeysRequest{From: 7, To: 0})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "bonus", decode[KeysResponse](t, rec).Keys[0].Name)
	})

	t.Run("remove protected", func(t *testing.T) {
		rec := h.do("DELETE", sessionPath(id, "/keys/rtp"), nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("remove", func(t *testing.T) {
		rec := h.do("DELETE", sessionPath(id, "/keys/bonus"), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		keys := decode[KeysResponse](t, rec).Keys
		assert.Len(t, keys, 7)
		assert.Equal(t, "game", keys[0].Name)
	})

	t.Run("restore", func(t *testing.T) {
		h.do("POST", sessionPath(id, "/keys"), AddKeyRequest{Name: "extra"})
		rec := h.do("POST", sessionPath(id, "/keys/restore"), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[KeysResponse](t, rec).Keys, 7)
	})
}

func TestLines(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	testutil.WriteWorkbook(t, dir, "en.xlsx", []sheet.Row{
		testutil.Plain("Intro"),
		testutil.Plain("RTP"),
		testutil.Plain("96%"),
		testutil.Plain("97%"),
	})
	rec := h.do("POST", "/api/sessions", nil)
	id := decode[session.Summary](t, rec).ID
	rec = h.do("POST", sessionPath(id, "/load"), LoadRequest{Paths: []string{dir}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	t.Run("toggle", func(t *testing.T) {
		rec := h.do("POST", sessionPath(id, "/lines/toggle"), ToggleLineRequest{Lang: "en", Line: 1})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = h.do("GET", sessionPath(id, "/segments?lang=en"), nil)
		resp := decode[SegmentsResponse](t, rec)
		assert.Equal(t, "flat", resp.Mode)
		require.Len(t, resp.Segments, 2)
		assert.Equal(t, "RTP", resp.Segments[1].Header)
		assert.Equal(t, "96%\n97%", resp.Segments[1].Content)
	})

	t.Run("toggle out of range", func(t *testing.T) {
		rec := h.do("POST", sessionPath(id, "/lines/toggle"), ToggleLineRequest{Lang: "en", Line: 9})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := h.do("POST", sessionPath(id, "/lines/delete"), DeleteLineRequest{Segment: 1, Line: 1})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 1, decode[DeleteLineResponse](t, rec).Languages)

		rec = h.do("GET", sessionPath(id, "/segments?lang=en"), nil)
		resp := decode[SegmentsResponse](t, rec)
		assert.Equal(t, "96%", resp.Segments[1].Content)
	})

	t.Run("delete out of range", func(t *testing.T) {
		rec := h.do("POST", sessionPath(id, "/lines/delete"), DeleteLineRequest{Segment: 5, Line: 0})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGame(t *testing.T) {
	h := newHarness(t)
	id := h.loaded()

	rec := h.do("PUT", sessionPath(id, "/game"), GameRequest{Name: "Lucky: Fruits?"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[GameResponse](t, rec)
	assert.Equal(t, "Lucky: Fruits?", resp.Name)
	assert.Equal(t, "Lucky_ Fruits_", resp.Bundle)
}

func TestProfile(t *testing.T) {
	h := newHarness(t)
	id := h.loaded()
	h.do("PUT", sessionPath(id, "/mapping"), MappingRequest{Header: "RTP", Key: "rtp"})

	rec := h.do("GET", sessionPath(id, "/profile"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[profile.Profile](t, rec)
	assert.Equal(t, "Lucky Fruits", p.GameName)
	assert.Equal(t, map[string]string{"RTP": "rtp"}, p.Mapping)

	t.Run("apply yaml", func(t *testing.T) {
		body := []byte("game_name: Golden Reels\nkeys: [game, rtp, bonus]\nmapping:\n  Game Rules: bonus\n")
		rec := h.do("PUT", sessionPath(id, "/profile"), body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		sum := decode[session.Summary](t, rec)
		assert.Equal(t, "Golden Reels", sum.GameName)
		assert.Equal(t, 1, sum.Mappings)
		assert.Len(t, sum.Languages, 2)
	})

	t.Run("invalid", func(t *testing.T) {
		rec := h.do("PUT", sessionPath(id, "/profile"), []byte(`{"keys":["header"]}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestExport(t *testing.T) {
	h := newHarness(t)

	t.Run("empty session", func(t *testing.T) {
		rec := h.do("POST", "/api/sessions", nil)
		id := decode[session.Summary](t, rec).ID
		rec = h.do("GET", sessionPath(id, "/export"), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("bundle", func(t *testing.T) {
		id := h.loaded()
		h.do("PUT", sessionPath(id, "/mapping"), MappingRequest{Header: "RTP", Key: "rtp"})

		rec := h.do("GET", sessionPath(id, "/export"), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "Lucky Fruits.zip")

		zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
		require.NoError(t, err)
		names := make([]string, len(zr.File))
		for i, f := range zr.File {
			names[i] = f.Name
		}
		assert.ElementsMatch(t, []string{"de.json", "en.json"}, names)

		for _, f := range zr.File {
			if f.Name != "en.json" {
				continue
			}
			rc, err := f.Open()
			require.NoError(t, err)
			data, err := io.ReadAll(rc)
			rc.Close()
			require.NoError(t, err)

			var doc output.Document
			require.NoError(t, json.Unmarshal(data, &doc))
			assert.Equal(t, []string{"game", "rtp", "description", "wins", "wild", "scatter", "features"}, doc.Keys())
			rtp, _ := doc.Field("rtp")
			assert.Equal(t, "96.1%", rtp.Single.Content)
		}
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{session.ErrNotFound, http.StatusNotFound},
		{session.ErrUnknownLanguage, http.StatusNotFound},
		{session.ErrUnknownKey, http.StatusBadRequest},
		{&profile.ValidationError{Source: "x", Err: assert.AnError}, http.StatusBadRequest},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
