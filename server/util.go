package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/teranos/folio/errors"
)

// checkOrigin allows requests without an Origin header and origins that
// start with one of server.allowed_origins, so any port matches.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if allowed != "" && strings.HasPrefix(origin, allowed) {
			return true
		}
	}
	return false
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return errors.Wrap(err, "failed to encode JSON")
	}
	return nil
}

// writeError writes a JSON error response, with the hint when err carries one
func writeError(w http.ResponseWriter, status int, err error) {
	body := map[string]string{"error": err.Error()}
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		body["hint"] = strings.Join(hints, "; ")
	}
	writeJSON(w, status, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case errors.IsAny(err, errors.ErrNotReady, errors.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.IsAny(err, errors.ErrInvalidRequest, errors.ErrUnknownAxis, errors.ErrUnknownCategory):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
