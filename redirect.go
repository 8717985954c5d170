package urlwasher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// mixer responses are a single URL, redirect bodies are thrown away
const maxBodySize = 64 << 10

// Doer sends HTTP requests. A Doer used for resolving redirects must not
// follow them, nor reject a response because of its Location.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to a Doer.
type DoerFunc func(req *http.Request) (*http.Response, error)

// Do calls f(req).
func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// NewHTTPClient returns a Doer that sends each request as a single round
// trip. Redirect responses come back as they are, Location unparsed.
func NewHTTPClient() Doer {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return DoerFunc(transport.RoundTrip)
}

// resolution is the outcome of resolving a redirect. When Resolved is false
// URL is the input, left alone on purpose.
type resolution struct {
	URL      *url.URL
	Resolved bool
}

type resolver struct {
	client Doer
}

func (r *resolver) resolve(ctx context.Context, u *url.URL, policy RedirectPolicy, mixer *url.URL) (resolution, error) {
	switch policy {
	case Locally:
		target, err := r.resolveLocally(ctx, u)
		if err != nil {
			return resolution{}, err
		}
		return resolution{URL: target, Resolved: true}, nil
	case ViaMixer:
		target, err := r.resolveViaMixer(ctx, u, mixer)
		if err != nil {
			return resolution{}, err
		}
		return resolution{URL: target, Resolved: true}, nil
	default:
		return resolution{URL: u}, nil
	}
}

// resolveLocally reads the Location of the response to u. The server
// behind u gets to see our address.
func (r *resolver) resolveLocally(ctx context.Context, u *url.URL) (*url.URL, error) {
	resp, err := r.get(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))

	location := resp.Header.Get("Location")
	if location == "" {
		return nil, fmt.Errorf("%w: no Location in %v response from %v", ErrMissingRedirectTarget, resp.StatusCode, u)
	}
	ref, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRedirectTarget, err)
	}
	target, err := parseAbsolute(u.ResolveReference(ref).String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRedirectTarget, err)
	}
	return target, nil
}

// resolveViaMixer asks the mixer at base to wash u. Only the mixer operator
// sees u.
func (r *resolver) resolveViaMixer(ctx context.Context, u *url.URL, base *url.URL) (*url.URL, error) {
	if base == nil {
		return nil, ErrMixerNotConfigured
	}
	washURL := copyURL(base)
	washURL.Path = "/wash"
	washURL.RawPath = ""
	washURL.RawQuery = url.Values{"url": {u.String()}}.Encode()
	washURL.Fragment = ""

	resp, err := r.get(ctx, washURL.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMixerRequestFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %v", ErrMixerRequestFailed, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMixerRequestFailed, err)
	}
	target, err := parseAbsolute(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMixerResponse, err)
	}
	return target, nil
}

func (r *resolver) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	return r.client.Do(req)
}
