package urlwasher

import "errors"

// Errors returned by Washer.Wash, possibly wrapped. Use errors.Is to test for
// them.
var (
	ErrInvalidURL            = errors.New("invalid url")
	ErrMissingRedirectTarget = errors.New("missing redirect target")
	ErrInvalidRedirectTarget = errors.New("invalid redirect target")
	ErrMixerNotConfigured    = errors.New("mixer instance not configured")
	ErrMixerRequestFailed    = errors.New("mixer request failed")
	ErrInvalidMixerResponse  = errors.New("invalid mixer response")
	ErrNetwork               = errors.New("network error")
)
