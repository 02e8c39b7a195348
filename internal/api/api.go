// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api serves the read side of the faculty directory over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/cmdshftateya/ent-research-radar/internal/store"
)

// Server wires the directory store to the HTTP routes.
type Server struct {
	Store   *store.Store
	Log     zerolog.Logger
	Offline bool

	srv *http.Server
}

// Router builds the chi router with CORS-for-all and request logging.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	}))
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/professors", s.handleListProfessors)
	r.Get("/professors/{id}", s.handleGetProfessor)
	r.Put("/professors/{id}/email", s.handleSetEmail)
	return r
}

// Run starts the server on addr and blocks until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.Log.Info().Str("addr", addr).Msg("api listening")
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.Log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "offline": s.Offline})
}

func (s *Server) handleListProfessors(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.Store.ListProfessors(r.Context())
	if err != nil {
		s.Log.Error().Err(err).Msg("listing professors")
		writeError(w, http.StatusInternalServerError, "listing professors failed")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetProfessor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid professor id")
		return
	}
	detail, ok, err := s.Store.GetProfessor(r.Context(), id)
	if err != nil {
		s.Log.Error().Err(err).Int64("id", id).Msg("reading professor")
		writeError(w, http.StatusInternalServerError, "reading professor failed")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "professor not found")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

type updateEmailRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleSetEmail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid professor id")
		return
	}

	var req updateEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	ok, err := s.Store.SetEmail(r.Context(), id, email)
	if err != nil {
		s.Log.Error().Err(err).Int64("id", id).Msg("updating email")
		writeError(w, http.StatusInternalServerError, "updating email failed")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "professor not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
