// Package mixer serves a Washer over HTTP so that other washers can resolve
// redirects through it instead of revealing their own address.
package mixer

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/getlantern/golog"
	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/getlantern/urlwasher"
)

var (
	log = golog.LoggerFor("urlwasher-mixer")
)

// Options configures a Server.
type Options struct {
	// RateLimit enables per client rate limiting of /wash.
	RateLimit bool
	// RatePeriod is how long it takes a client to earn one more request.
	RatePeriod time.Duration
	// Burst is how many requests a client may make at once.
	Burst int
	// Timeout bounds the time spent washing a single URL.
	Timeout time.Duration
}

// DefaultOptions allows a burst of 10 requests per client, replenished at
// one request every 5 seconds, and gives up washing after 10 seconds.
func DefaultOptions() Options {
	return Options{
		RateLimit:  true,
		RatePeriod: 5 * time.Second,
		Burst:      10,
		Timeout:    10 * time.Second,
	}
}

// Server is the mixer HTTP handler. It answers GET /wash?url=<url> with the
// washed URL as text/plain and exposes Prometheus metrics on GET /metrics.
type Server struct {
	*httprouter.Router
	washer   *urlwasher.Washer
	opts     Options
	limiter  *clientLimiter
	metrics  *metrics
	registry *prometheus.Registry
}

// New creates a Server washing with w.
func New(w *urlwasher.Washer, opts Options) *Server {
	defaults := DefaultOptions()
	if opts.RatePeriod <= 0 {
		opts.RatePeriod = defaults.RatePeriod
	}
	if opts.Burst <= 0 {
		opts.Burst = defaults.Burst
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	registry := prometheus.NewRegistry()
	s := &Server{
		Router:   httprouter.New(),
		washer:   w,
		opts:     opts,
		metrics:  newMetrics(registry),
		registry: registry,
	}
	if opts.RateLimit {
		s.limiter = newClientLimiter(opts.RatePeriod, opts.Burst)
	}
	s.registerHandlers()
	return s
}

func (s *Server) registerHandlers() {
	common := alice.New(recoverHandler, requestIDHandler, loggingHandler)
	wash := common.Append(s.metrics.handler)
	if s.limiter != nil {
		wash = wash.Append(s.limiter.handler)
	}
	s.Handler(http.MethodGet, "/wash", wash.ThenFunc(s.wash))
	s.Handler(http.MethodGet, "/metrics", common.Then(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
}

func (s *Server) wash(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeError(w, errInvalidURL)
		return
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		writeError(w, errInvalidURL)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.Timeout)
	defer cancel()
	washed, ok, err := s.washer.Wash(ctx, u)
	if err != nil {
		log.Errorf("Could not wash %v: %v", raw, err)
		writeError(w, errInternal)
		return
	}
	if !ok {
		washed = u
	}
	writeText(w, http.StatusOK, washed.String())
}

// ListenAndServe serves s on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          log.AsStdLogger(),
	}
	log.Debugf("Mixer listening on %v", addr)
	return server.ListenAndServe()
}
