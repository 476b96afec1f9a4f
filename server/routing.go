package server

import (
	"net/http"
	"strconv"

	"github.com/teranos/folio/errors"
)

func (s *Server) setupRoutes() {
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/{$}", s.corsMiddleware(s.handlePage))
	s.mux.HandleFunc("/v/{name}", s.corsMiddleware(s.handlePage))
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
	s.mux.HandleFunc("/health", s.corsMiddleware(s.handleHealth))
	s.mux.HandleFunc("/api/layout/{name}", s.corsMiddleware(s.handleLayout))
}

func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.checkOrigin(r) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
			return
		case http.MethodGet, http.MethodHead:
			next(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, errors.Newf("method %s not allowed", r.Method))
		}
	}
}

// viewportParam reads a positive pixel size from the query, or def.
func viewportParam(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
