package session

import "errors"

var (
	// ErrRedirectLimitExceeded is returned when a request is redirected more
	// times than the client's cap allows.
	ErrRedirectLimitExceeded = errors.New("redirect count exceeded")

	// ErrMalformedRedirect is returned for a redirect status without a Location header.
	ErrMalformedRedirect = errors.New("redirect with no location header")

	// ErrRequestTimeout is returned when a single hop exceeds its deadline.
	ErrRequestTimeout = errors.New("request timed out")
)

// IsRedirectError reports whether err came from a broken redirect chain.
func IsRedirectError(err error) bool {
	return errors.Is(err, ErrRedirectLimitExceeded) || errors.Is(err, ErrMalformedRedirect)
}
