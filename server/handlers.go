package server

import (
	"net/http"

	"github.com/teranos/folio/internal/version"
	"github.com/teranos/folio/logger"
)

// handlePage serves a hosted instance as a live page. The root serves the
// first hosted visualization.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	h, err := s.lookup(r.PathValue("name"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	page, err := h.page(r.Context(), viewportParam(r, "w", 0), viewportParam(r, "h", 0))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(page); err != nil {
		s.logger.Debugw("Page write failed", logger.FieldError, err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := version.Get()
	s.mu.RLock()
	clients := s.nconns
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"version":        info.Version,
		"commit":         info.CommitHash,
		"build_time":     info.BuildTime,
		"protocol":       info.Protocol,
		"clients":        clients,
		"visualizations": s.Names(),
	})
}

// handleLayout serves the settled graph snapshot of one instance.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	h, err := s.lookup(r.PathValue("name"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	data, err := h.layout(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
