package querypolicy

import (
	"net/http"
	"net/url"

	"github.com/openai/openai-go/option"
)

// APIVersionKey is the query parameter name used by [NewAPIVersion].
const APIVersionKey = "api-version"

// Policy appends a fixed key=value pair to the query string of
// every request it sees. The zero value is not usable; use [New]
// or [NewAPIVersion].
//
// A Policy is immutable after construction, and safe for concurrent
// use by multiple in-flight requests.
type Policy struct {
	key   string
	value string

	// pair is the encoded "key=value" form, computed once.
	pair string
}

// New returns a Policy that appends key=value to every request.
//
// Both key and value are query-escaped when appended.
func New(key, value string) *Policy {
	return &Policy{
		key:   key,
		value: value,
		pair:  url.QueryEscape(key) + "=" + url.QueryEscape(value),
	}
}

// NewAPIVersion returns a Policy that appends api-version=version to every
// request.
func NewAPIVersion(version string) *Policy {
	return New(APIVersionKey, version)
}

// Key returns the query parameter name.
func (p *Policy) Key() string {
	return p.key
}

// Value returns the query parameter value.
func (p *Policy) Value() string {
	return p.value
}

// String returns the encoded key=value pair.
func (p *Policy) String() string {
	return p.pair
}

// Augment returns a copy of req whose query string has the policy's
// key=value pair appended after whatever was already present, joined
// with "&" if a query string exists. The method, headers and body are
// those of req; the body is shared, not copied.
//
// The given request is never modified. Augmenting the returned request
// again appends a second pair.
//
// If req has no absolute URL, a [*MalformedRequestError] is returned.
func (p *Policy) Augment(req *http.Request) (*http.Request, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	// Clone deep copies the URL and headers, which leaves the caller's
	// request untouched.
	out := req.Clone(req.Context())
	out.URL.RawQuery = p.appendTo(out.URL.RawQuery)

	return out, nil
}

func (p *Policy) appendTo(rawQuery string) string {
	// TODO: decide with the API owners whether a caller-supplied value for
	// the same key should replace the injected one instead of both being sent.
	if rawQuery == "" {
		return p.pair
	}
	return rawQuery + "&" + p.pair
}

// Transport returns an [net/http.RoundTripper] that augments each request
// before handing it to base. If base is nil, [net/http.DefaultTransport]
// is used.
//
// It should be the innermost wrapper around the real transport, so that
// every other wrapper sees the final URL.
func (p *Policy) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &transport{policy: p, base: base}
}

type transport struct {
	policy *Policy
	base   http.RoundTripper
}

// RoundTrip implements the [net/http.RoundTripper] interface.
func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out, err := t.policy.Augment(req)
	if err != nil {
		// The RoundTripper contract requires the body to be closed,
		// even on errors.
		if req != nil && req.Body != nil {
			req.Body.Close()
		}
		return nil, err
	}
	return t.base.RoundTrip(out)
}

// Middleware returns an openai-go middleware that augments each request and
// passes it to next exactly once.
//
// Install it after any other middleware so it runs last, immediately before
// the request is sent. The openai-go client runs middleware on every retry
// attempt with a fresh copy of the request, so each attempt carries exactly
// one injected pair.
func (p *Policy) Middleware() option.Middleware {
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		out, err := p.Augment(req)
		if err != nil {
			return nil, err
		}
		return next(out)
	}
}
