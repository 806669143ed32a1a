package service

import "errors"

var (
	ErrAuthentication      = errors.New("not authenticated")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrMalformedResponse is shown to users as ErrUpstreamUnavailable.
	ErrMalformedResponse  = errors.New("malformed upstream response")
	ErrPartialFetch       = errors.New("message could not be loaded")
	ErrAlreadySummarizing = errors.New("summary already in progress")
	ErrNotFound           = errors.New("email not found")
	ErrEmptyMessage       = errors.New("message is empty")
)

// IsUpstream reports whether err came from the mail source or the oracle.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrMalformedResponse)
}
