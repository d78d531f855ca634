package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"example.com/exercisetracker/internal/auth"
	"example.com/exercisetracker/internal/domain"
)

// HTTPError is an error that carries its own response status.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// ErrPageNotFound answers unmatched routes.
var ErrPageNotFound = &HTTPError{Status: http.StatusNotFound, Message: "Page Not Found"}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// handle funnels every handler error into writeError.
func (h *Handler) handle(fn handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			writeError(w, r, err)
		}
	})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	var verr *domain.ValidationError
	var herr *HTTPError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		message = verr.Error()
	case errors.As(err, &herr):
		if herr.Status != 0 {
			status = herr.Status
		}
		message = herr.Message
	}
	if message == "" {
		message = http.StatusText(status)
	}

	if status >= http.StatusInternalServerError {
		event := log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path)
		if claims, ok := auth.FromContext(r.Context()); ok {
			event = event.Str("subject", claims.Subject)
		}
		event.Msg("request failed")
	}
	writeText(w, status, message)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}
