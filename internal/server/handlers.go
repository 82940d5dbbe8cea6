package server

import (
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/boardviz/pkg/board"
	apperr "github.com/matzehuels/boardviz/pkg/errors"
	"github.com/matzehuels/boardviz/pkg/pipeline"
	"github.com/matzehuels/boardviz/pkg/render"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (s *Server) handleScenes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, render.Scenes())
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	opts, err := s.sceneOptions(r, chi.URLParam(r, "format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := opts.Formats[0]
	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("ETag", strconv.Quote(result.SVGHash))
	w.Header().Set("X-Render-Id", result.ID)
	_, _ = w.Write(result.Artifacts[format])
}

// sceneOptions reads pipeline options from the URL. Query parameters:
// states, prefix, scale, nocache.
func (s *Server) sceneOptions(r *http.Request, format string) (pipeline.Options, error) {
	opts := pipeline.Options{
		Scene:     chi.URLParam(r, "scene"),
		Formats:   []string{format},
		KeyPrefix: s.opts.KeyPrefix,
		Scale:     s.opts.Scale,
	}
	q := r.URL.Query()
	if v := q.Get("states"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, apperr.New(apperr.ErrCodeInvalidInput, "states must be an integer")
		}
		opts.States = n
	}
	if v := q.Get("prefix"); v != "" {
		opts.KeyPrefix = v
	}
	if v := q.Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, apperr.New(apperr.ErrCodeInvalidInput, "scale must be a number")
		}
		opts.Scale = f
	}
	opts.NoCache = q.Has("nocache")
	return opts, opts.ValidateAndSetDefaults()
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := s.store.Keys(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, keys)
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := apperr.ValidateKey(key); err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, ok, err := s.store.Snapshot(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.writeError(w, r, apperr.New(apperr.ErrCodeNotFound, "no snapshot %q", key))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePutState(w http.ResponseWriter, r *http.Request) {
	if s.opts.ReadOnly {
		s.writeError(w, r, apperr.New(apperr.ErrCodeReadOnly, "server is read-only"))
		return
	}
	key := chi.URLParam(r, "key")
	if err := apperr.ValidateKey(key); err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "read body"))
		return
	}
	snap, err := decodeBody(r.Header.Get("Content-Type"), data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap.Key = key
	if err := s.store.Put(r.Context(), snap); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteState(w http.ResponseWriter, r *http.Request) {
	if s.opts.ReadOnly {
		s.writeError(w, r, apperr.New(apperr.ErrCodeReadOnly, "server is read-only"))
		return
	}
	key := chi.URLParam(r, "key")
	if err := s.store.Delete(r.Context(), key); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeBody picks the snapshot decoder from the content type. JSON is the
// default.
func decodeBody(contentType string, data []byte) (board.Snapshot, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if strings.HasSuffix(mediaType, "toml") {
		return board.DecodeTOML(data)
	}
	return board.DecodeJSON(data)
}
