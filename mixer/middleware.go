package mixer

import (
	"net/http"
	"time"

	"github.com/go-errors/errors"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

func recoverHandler(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Errorf("Recovered from panic: %v", errors.Wrap(err, 2).ErrorStack())
				writeError(w, errInternal)
			}
		}()

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}

func requestIDHandler(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}

// statusWriter remembers the status code written through it.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (l *statusWriter) WriteHeader(status int) {
	l.status = status
	l.ResponseWriter.WriteHeader(status)
}

func loggingHandler(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		lw := &statusWriter{w, http.StatusOK}
		start := time.Now()
		next.ServeHTTP(lw, r)
		log.Debugf("[%s] %v %q %v %v", w.Header().Get(requestIDHeader), r.Method, r.URL.Path, lw.status, time.Since(start))
	}

	return http.HandlerFunc(fn)
}
