package httpmiddleware

import "net/http"

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Transport returns a RoundTripper that forwards the request id stored in
// the outgoing request's context as the X-Request-ID header, so calls made
// while serving a request can be correlated with it upstream.
func Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		id := RequestIDFromContext(r.Context())
		if id == "" || r.Header.Get(requestIDHeader) != "" {
			return base.RoundTrip(r)
		}
		// RoundTrippers must not modify the caller's request.
		r = r.Clone(r.Context())
		r.Header.Set(requestIDHeader, id)
		return base.RoundTrip(r)
	})
}
