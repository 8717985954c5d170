// Package urlwasher removes tracking parameters from URLs and resolves the
// short links that hide where they point.
package urlwasher

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"

	"github.com/getlantern/golog"
	"github.com/getlantern/mtime"
)

var (
	log = golog.LoggerFor("urlwasher")
)

// Washer washes single URLs. It is safe for concurrent use and is meant to
// be long lived, since it caches what it washed.
type Washer struct {
	rules    *RuleTable
	resolver *resolver
	cache    *cache
	config   atomic.Value // *Config
	stats    *washStats
}

// Option customizes a Washer.
type Option func(*washerOptions)

type washerOptions struct {
	rules     *RuleTable
	client    Doer
	cacheSize int
}

// WithRules replaces the default rule table.
func WithRules(rules *RuleTable) Option {
	return func(o *washerOptions) {
		o.rules = rules
	}
}

// WithHTTPClient sets the client used to resolve redirects. It must not
// follow redirects itself, see NewHTTPClient.
func WithHTTPClient(client Doer) Option {
	return func(o *washerOptions) {
		o.client = client
	}
}

// WithCacheSize sets how many washed URLs are remembered.
func WithCacheSize(size int) Option {
	return func(o *washerOptions) {
		o.cacheSize = size
	}
}

// NewWasher creates a Washer. A nil cfg behaves like an empty Config, which
// leaves every redirect unresolved.
func NewWasher(cfg *Config, opts ...Option) *Washer {
	o := &washerOptions{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(o)
	}
	if o.rules == nil {
		o.rules = DefaultRules()
	}
	if o.client == nil {
		o.client = NewHTTPClient()
	}
	if cfg == nil {
		cfg = &Config{}
	}
	w := &Washer{
		rules:    o.rules,
		resolver: &resolver{client: o.client},
		cache:    newCache(o.cacheSize),
		stats:    &washStats{},
	}
	w.config.Store(cfg)
	return w
}

// SetConfig replaces the config used by subsequent washes. Cached results
// are kept.
func (w *Washer) SetConfig(cfg *Config) {
	if cfg == nil {
		cfg = &Config{}
	}
	w.config.Store(cfg)
}

// Config returns the current config snapshot.
func (w *Washer) Config() *Config {
	return w.config.Load().(*Config)
}

// Stats reports timings of washes that missed the cache.
func (w *Washer) Stats() Stats {
	return w.stats.snapshot()
}

// Wash returns the washed form of u. The bool is false when no rule applies
// to u, in which case the caller should keep using u. An error means a rule
// applied but one of its programs failed; nothing is cached then.
//
// Wash does not impose a timeout; cancel ctx to abandon pending requests.
func (w *Washer) Wash(ctx context.Context, u *url.URL) (*url.URL, bool, error) {
	if !isWashable(u) {
		return nil, false, nil
	}
	dirty := u.String()
	if cached, ok := w.cache.get(dirty); ok {
		log.Debugf("Serving washed url %v from cache", dirty)
		return cached, true, nil
	}
	domain := domainOf(u)
	if domain == "" {
		return nil, false, nil
	}
	rule, ok := w.rules.Match(domain, u.EscapedPath())
	if !ok {
		return nil, false, nil
	}

	start := mtime.Now()
	washed, err := w.apply(ctx, rule, copyURL(u))
	if err != nil {
		return nil, false, fmt.Errorf("wash %v with rule %q: %w", dirty, rule.Name, err)
	}
	w.stats.addTiming(dirty, mtime.Now().Sub(start))
	w.cache.put(dirty, washed)
	return washed, true, nil
}

func (w *Washer) apply(ctx context.Context, rule *Rule, laundry *url.URL) (*url.URL, error) {
	for _, program := range rule.Programs {
		switch program.kind {
		case removeParams:
			removeQueryParams(laundry, program.params)
		case removeAllParams:
			removeAllQueryParams(laundry)
		case resolveRedirection:
			cfg := w.Config()
			res, err := w.resolver.resolve(ctx, laundry, cfg.policyFor(rule.Name), cfg.MixerInstance)
			if err != nil {
				return nil, err
			}
			if res.Resolved {
				log.Debugf("Resolved %v to %v", laundry, res.URL)
			}
			laundry = res.URL
		}
	}
	return laundry, nil
}

// WashString parses raw and washes it, returning raw itself when no rule
// applies. It fails with ErrInvalidURL if raw does not parse.
func (w *Washer) WashString(ctx context.Context, raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	washed, ok, err := w.Wash(ctx, u)
	if err != nil {
		return "", err
	}
	if !ok {
		return raw, nil
	}
	return washed.String(), nil
}
