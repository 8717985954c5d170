package urlwasher

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

func isWashable(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}

// parseAbsolute parses raw and requires it to be an absolute http(s) URL.
func parseAbsolute(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if !isWashable(u) || u.Host == "" {
		return nil, fmt.Errorf("not an absolute http(s) url: %q", raw)
	}
	return u, nil
}

// domainOf returns the lower-cased ASCII form of the host without its port,
// which is what rule domains are written against.
func domainOf(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return host
}

// removeQueryParams drops every pair whose decoded key is in params. The
// remaining pairs keep their order and raw encoding. A query with nothing
// to remove is left byte for byte; otherwise empty pairs go too.
func removeQueryParams(u *url.URL, params map[string]bool) {
	u.ForceQuery = false
	pairs := strings.Split(u.RawQuery, "&")
	kept := make([]string, 0, len(pairs))
	removed := false
	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		key := pair
		if i := strings.IndexByte(pair, '='); i >= 0 {
			key = pair[:i]
		}
		if unescaped, err := url.QueryUnescape(key); err == nil {
			key = unescaped
		}
		if params[key] {
			removed = true
			continue
		}
		kept = append(kept, pair)
	}
	if removed {
		u.RawQuery = strings.Join(kept, "&")
	}
}

func removeAllQueryParams(u *url.URL) {
	u.RawQuery = ""
	u.ForceQuery = false
}

func copyURL(u *url.URL) *url.URL {
	c := *u
	return &c
}
