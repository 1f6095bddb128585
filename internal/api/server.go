// Package api serves the generation pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz              liveness and build version
//	POST /v1/generate          generate a placement for a posted world
//	GET  /v1/spoiler/{seed}    spoiler log for the server's default world
//
// Every response carries an X-Request-ID header. Errors are JSON objects
// with a machine-readable code and a message.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/itemshuffle/pkg/buildinfo"
	"github.com/matzehuels/itemshuffle/pkg/config"
	"github.com/matzehuels/itemshuffle/pkg/errors"
	"github.com/matzehuels/itemshuffle/pkg/observability"
	"github.com/matzehuels/itemshuffle/pkg/pipeline"
	"github.com/matzehuels/itemshuffle/pkg/spoiler"
)

// MaxBodyBytes bounds the size of a posted world.
const MaxBodyBytes = 1 << 20

// HeaderRequestID carries the request id.
const HeaderRequestID = "X-Request-ID"

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	Runner *pipeline.Runner
	Logger *log.Logger

	// World is served by the spoiler route. It may be nil, in which case
	// that route responds 404.
	World []byte

	// Defaults are applied to every request before its own settings.
	Defaults config.Config
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID, s.logRequests)
	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/generate", s.generate)
		r.Get("/spoiler/{seed}", s.spoiler)
	})
	return r
}

type ctxKey struct{}

// RequestID returns the id assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		observability.HTTP().OnRequest(ctx, r.Method, r.URL.Path)
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		elapsed := time.Since(start)
		observability.HTTP().OnResponse(ctx, r.Method, r.URL.Path, sw.status, elapsed)
		s.Logger.Debug("request",
			"id", RequestID(ctx),
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", elapsed)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// generateRequest is the body of POST /v1/generate. The settings fields are
// promoted, so a body looks like {"world": "...", "seed": 7, "flags": {...}}.
type generateRequest struct {
	config.Config
	World   string `json:"world"`
	Refresh bool   `json:"refresh,omitempty"`
}

// generateResponse describes one generated placement.
type generateResponse struct {
	RunID       string          `json:"run_id"`
	World       string          `json:"world"`
	Seed        uint64          `json:"seed"`
	Attempt     int             `json:"attempt"`
	Cached      bool            `json:"cached"`
	Unreachable []string        `json:"unreachable,omitempty"`
	Placements  []spoiler.Entry `json:"placements"`
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	opts := pipeline.Options{Config: s.merge(req.Config), World: []byte(req.World), Refresh: req.Refresh}
	res, err := s.Runner.Generate(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := generateResponse{
		RunID:      res.RunID,
		World:      res.Name,
		Seed:       res.Seed,
		Attempt:    res.Attempt,
		Cached:     res.CacheHit,
		Placements: res.Spoiler().Entries,
	}
	for _, id := range res.Logic.Unreachable {
		resp.Unreachable = append(resp.Unreachable, res.Graph.Name(id))
	}
	writeJSON(w, http.StatusOK, resp)
}

// spoiler renders the log of the default world. Flags are passed as a
// comma-separated "flags" query parameter, the output format as "format".
func (s *Server) spoiler(w http.ResponseWriter, r *http.Request) {
	if s.World == nil {
		s.fail(w, r, errors.New(errors.ErrCodeNotFound, "server has no default world"))
		return
	}
	seed, err := errors.ParseSeed(chi.URLParam(r, "seed"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.fail(w, r, err)
		return
	}

	cfg := config.Config{Seed: seed}
	if flags := r.URL.Query().Get("flags"); flags != "" {
		for _, name := range strings.Split(flags, ",") {
			cfg.Set(strings.TrimSpace(name), true)
		}
	}
	res, err := s.Runner.Generate(r.Context(), pipeline.Options{Config: s.merge(cfg), World: s.World})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	data, err := s.Runner.Render(r.Context(), res, format)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Run-ID", res.RunID)
	_, _ = w.Write(data)
}

var contentTypes = map[string]string{
	pipeline.FormatText: "text/plain; charset=utf-8",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
}

// merge applies the server defaults under c.
func (s *Server) merge(c config.Config) config.Config {
	d := s.Defaults
	if c.Seed == 0 {
		c.Seed = d.Seed
	}
	if c.Attempts == 0 {
		c.Attempts = d.Attempts
	}
	if c.Workers == 0 {
		c.Workers = d.Workers
	}
	for name, on := range d.Flags {
		if _, set := c.Flags[name]; !set {
			c.Set(name, on)
		}
	}
	if c.Values == nil && d.Values != nil {
		c.Values = make(map[string]string, len(d.Values))
	}
	for name, v := range d.Values {
		if _, set := c.Values[name]; !set {
			c.Values[name] = v
		}
	}
	c.RetainDisabled = c.RetainDisabled || d.RetainDisabled
	return c
}

type errorResponse struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "id", RequestID(r.Context()), "error", err)
	}
	writeJSON(w, status, errorResponse{
		Code:      errors.GetCode(err),
		Message:   errors.UserMessage(err),
		RequestID: RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
