package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
)

type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeOK writes a success envelope; message is omitted when empty.
func writeOK(w http.ResponseWriter, status int, message string, payload envelope) {
	body := envelope{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func statusFor(kind common.Kind) int {
	switch kind {
	case common.KindInvalidInput, common.KindConflict:
		return http.StatusBadRequest
	case common.KindUnauthenticated:
		return http.StatusUnauthorized
	case common.KindNotFound:
		return http.StatusNotFound
	case common.KindEmpty:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as a failure envelope and logs its full cause.
// The cause chain is attached as "stack" outside production.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := common.KindOf(err)
	status := statusFor(kind)

	args := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"kind", kind.String(),
		"error", err.Error(),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", args...)
	} else {
		s.logger.Warn(r.Context(), "request failed", args...)
	}

	body := envelope{"success": false, "message": common.MessageOf(err)}
	if !s.config.IsProduction() {
		body["stack"] = err.Error()
	}
	writeJSON(w, status, body)
}

func writeRateLimit(w http.ResponseWriter, retry time.Duration) {
	w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
	writeJSON(w, http.StatusTooManyRequests, envelope{
		"success": false,
		"message": "Too many requests, please try again later",
	})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, common.NewError(common.KindNotFound, "Route not found"))
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, envelope{"success": false, "message": "Method not allowed"})
}

func (s *Server) hello(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, http.StatusOK, "Hello from the server!", nil)
}
