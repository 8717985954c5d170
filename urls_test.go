package urlwasher

import (
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRemoveQueryParams(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"https://a.com/x?si=1&t=65", "https://a.com/x?t=65"},
		{"https://a.com/x?t=1&si=2&t=2&v=3&si=4", "https://a.com/x?t=1&t=2&v=3"},
		{"https://a.com/x?si=1", "https://a.com/x"},
		{"https://a.com/x?", "https://a.com/x"},
		{"https://a.com/x?%73i=1&q=a%20b", "https://a.com/x?q=a%20b"},
		{"https://a.com/x?flag&si", "https://a.com/x?flag"},
		{"https://a.com/x?si=1#frag", "https://a.com/x#frag"},
		{"https://a.com/x?a=1&&b=2", "https://a.com/x?a=1&&b=2"},
		{"https://a.com/x?a=1&&si=2&b", "https://a.com/x?a=1&b"},
	}
	for _, c := range cases {
		u, err := url.Parse(c.in)
		require.NoError(t, err)
		removeQueryParams(u, map[string]bool{"si": true})
		assert.Equal(t, c.out, u.String(), c.in)
	}
}

func TestRemoveQueryParamsPreservesOthers(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		keys := rapid.SliceOf(rapid.SampledFrom([]string{"si", "t", "v", "list"})).Draw(t, "keys")
		pairs := make([]string, 0, len(keys))
		var kept []string
		for i, k := range keys {
			pair := fmt.Sprintf("%v=%d", k, i)
			pairs = append(pairs, pair)
			if k != "si" {
				kept = append(kept, pair)
			}
		}
		u, err := url.Parse("https://youtu.be/abc?" + strings.Join(pairs, "&"))
		if err != nil {
			t.Fatal(err)
		}
		removeQueryParams(u, map[string]bool{"si": true})
		if u.RawQuery != strings.Join(kept, "&") {
			t.Fatalf("got query %q, want %q", u.RawQuery, strings.Join(kept, "&"))
		}
		if len(kept) == 0 && strings.Contains(u.String(), "?") {
			t.Fatalf("empty query left in %v", u)
		}
	})
}

func TestDomainOf(t *testing.T) {
	for in, expected := range map[string]string{
		"https://YouTu.be/abc":                 "youtu.be",
		"https://x.com:443/status":             "x.com",
		"http://bücher.example/":               "xn--bcher-kva.example",
		"https://user@music.youtube.com/watch": "music.youtube.com",
		"mailto:someone@example.com":           "",
	} {
		u, err := url.Parse(in)
		require.NoError(t, err)
		assert.Equal(t, expected, domainOf(u), in)
	}
}

func TestParseAbsolute(t *testing.T) {
	_, err := parseAbsolute("https://example.com/x")
	assert.NoError(t, err)
	for _, bad := range []string{"/relative", "ftp://example.com/", "https://", " https://example.com", "https://example.com/\n", "%%"} {
		_, err := parseAbsolute(bad)
		assert.Error(t, err, bad)
	}
}
