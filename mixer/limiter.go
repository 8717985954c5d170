package mixer

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clients not seen for this long are forgotten
const limiterIdleTimeout = 10 * time.Minute

// clientLimiter keeps a token bucket per client IP.
type clientLimiter struct {
	every rate.Limit
	burst int

	mx        sync.Mutex
	clients   map[string]*clientBucket
	lastSweep time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(period time.Duration, burst int) *clientLimiter {
	return &clientLimiter{
		every:     rate.Every(period),
		burst:     burst,
		clients:   make(map[string]*clientBucket),
		lastSweep: time.Now(),
	}
}

func (l *clientLimiter) allow(client string) bool {
	now := time.Now()
	l.mx.Lock()
	defer l.mx.Unlock()
	if now.Sub(l.lastSweep) > limiterIdleTimeout {
		for c, b := range l.clients {
			if now.Sub(b.lastSeen) > limiterIdleTimeout {
				delete(l.clients, c)
			}
		}
		l.lastSweep = now
	}
	b, ok := l.clients[client]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(l.every, l.burst)}
		l.clients[client] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

func (l *clientLimiter) handler(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r)) {
			writeError(w, errTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
