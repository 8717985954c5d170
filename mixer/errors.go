package mixer

import (
	"io"
	"net/http"
)

// httpError is what a client gets to see when a request fails. Details stay
// in the log.
type httpError struct {
	status int
	text   string
}

var (
	errInvalidURL      = &httpError{http.StatusBadRequest, "invalid url"}
	errTooManyRequests = &httpError{http.StatusTooManyRequests, "too many requests"}
	errInternal        = &httpError{http.StatusInternalServerError, "internal server error"}
)

func writeError(w http.ResponseWriter, err *httpError) {
	writeText(w, err.status, err.text)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, text)
}
