// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/mezuri/mezuri/internal/gitx"
)

type (
	// Server exposes the registry over HTTP. It is a thin request/response
	// layer: all consistency rules live in Service.
	Server struct {
		service *Service
		logger  *log.Logger
		router  chi.Router
	}

	registerOperatorRequest struct {
		Name         string `json:"name"`
		GitRemoteURL string `json:"gitRemoteUrl"`
	}

	registerVersionRequest struct {
		Version     string `json:"version"`
		VersionTag  string `json:"version_tag"`
		VersionHash string `json:"version_hash"`
	}

	// versionSummary is the list-item shape: everything but the spec blob.
	versionSummary struct {
		Version string         `json:"version"`
		Hash    gitx.GitCommit `json:"hash"`
	}

	errorBody struct {
		Error string `json:"error"`
	}
)

// NewServer builds the HTTP surface over the given service.
func NewServer(service *Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{service: service, logger: logger}

	r := chi.NewRouter()
	r.Use(s.logRequests)
	r.Route("/operators", func(r chi.Router) {
		r.Get("/", s.handleListOperators)
		r.Post("/", s.handleRegisterOperator)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleGetOperator)
			r.Get("/versions", s.handleListVersions)
			r.Post("/versions", s.handleRegisterVersion)
			r.Get("/versions/{version}", s.handleGetVersion)
		})
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleListOperators(w http.ResponseWriter, _ *http.Request) {
	ops, err := s.service.ListOperators()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"components": ops})
}

func (s *Server) handleRegisterOperator(w http.ResponseWriter, r *http.Request) {
	var req registerOperatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		s.writeStatus(w, http.StatusBadRequest, "operator name not provided")
		return
	}
	if req.GitRemoteURL == "" {
		s.writeStatus(w, http.StatusBadRequest, "operator git remote url not provided")
		return
	}

	op, err := s.service.RegisterOperator(req.Name, gitx.GitURL(req.GitRemoteURL))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"component": op})
}

func (s *Server) handleGetOperator(w http.ResponseWriter, r *http.Request) {
	op, err := s.service.GetOperator(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"component": op})
}

func (s *Server) handleRegisterVersion(w http.ResponseWriter, r *http.Request) {
	var req registerVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Version == "" {
		s.writeStatus(w, http.StatusBadRequest, "version to be published not provided")
		return
	}
	if req.VersionTag == "" {
		s.writeStatus(w, http.StatusBadRequest, "version tag not provided")
		return
	}
	if req.VersionHash == "" {
		s.writeStatus(w, http.StatusBadRequest, "version hash not provided")
		return
	}

	rec, err := s.service.RegisterVersion(r.Context(),
		chi.URLParam(r, "name"), req.Version, req.VersionTag, gitx.GitCommit(req.VersionHash))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"version": rec})
}

func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	recs, err := s.service.ListVersions(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	summaries := make([]versionSummary, 0, len(recs))
	for _, rec := range recs {
		summaries = append(summaries, versionSummary{Version: rec.Version, Hash: rec.Hash})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"versions": summaries})
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.GetVersion(chi.URLParam(r, "name"), chi.URLParam(r, "version"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"operator_version": rec})
}

// writeError maps the registry error taxonomy onto HTTP statuses:
// 404 unknown operator/version, 409 duplicate, 400 failed verification.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		s.writeStatus(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrConflict):
		s.writeStatus(w, http.StatusConflict, err.Error())
	case errors.Is(err, gitx.ErrRemoteUnreachable):
		s.writeStatus(w, http.StatusBadRequest, "remote repository is not readable")
	case errors.Is(err, ErrHashMismatch):
		s.writeStatus(w, http.StatusBadRequest, "remote repository version does not match")
	case errors.Is(err, ErrSpecNotFound):
		s.writeStatus(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, gitx.ErrInvalidGitURL):
		s.writeStatus(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", "err", err)
		s.writeStatus(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeStatus(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorBody{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encoding response", "err", err)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}
