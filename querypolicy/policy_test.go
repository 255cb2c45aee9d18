package querypolicy_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/picatz/foundry/querypolicy"
	"github.com/shoenig/test/must"
)

const testVersion = "2025-11-15-preview"

func newRequest(t *testing.T, method, rawURL string, body string) *http.Request {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(t.Context(), method, rawURL, r)
	must.NoError(t, err)
	return req
}

func TestPolicy_Augment_scenarios(t *testing.T) {
	policy := querypolicy.NewAPIVersion(testVersion)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no query",
			in:   "https://host/openai/responses",
			want: "https://host/openai/responses?api-version=2025-11-15-preview",
		},
		{
			name: "existing query",
			in:   "https://host/openai/responses?foo=bar",
			want: "https://host/openai/responses?foo=bar&api-version=2025-11-15-preview",
		},
		{
			name: "existing multi-value query",
			in:   "https://host/openai/responses?a=1&b=2&a=3",
			want: "https://host/openai/responses?a=1&b=2&a=3&api-version=2025-11-15-preview",
		},
		{
			name: "trailing question mark",
			in:   "https://host/openai/responses?",
			want: "https://host/openai/responses?api-version=2025-11-15-preview",
		},
		{
			name: "port and fragment",
			in:   "http://localhost:8080/openai/responses/resp_123#frag",
			want: "http://localhost:8080/openai/responses/resp_123?api-version=2025-11-15-preview#frag",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := newRequest(t, http.MethodGet, test.in, "")

			out, err := policy.Augment(req)
			must.NoError(t, err)
			must.Eq(t, http.MethodGet, out.Method)
			must.Eq(t, test.want, out.URL.String())
		})
	}
}

func TestPolicy_Augment_leavesInputUntouched(t *testing.T) {
	policy := querypolicy.NewAPIVersion(testVersion)

	req := newRequest(t, http.MethodPost, "https://host/openai/responses?foo=bar", `{"model":"gpt-4.1-mini"}`)

	_, err := policy.Augment(req)
	must.NoError(t, err)
	must.Eq(t, "foo=bar", req.URL.RawQuery)
}

func TestPolicy_Augment_preservesMethodHeadersBody(t *testing.T) {
	policy := querypolicy.NewAPIVersion(testVersion)

	const body = `{"model":"gpt-4.1-mini","input":"hello"}`

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodPut} {
		t.Run(method, func(t *testing.T) {
			req := newRequest(t, method, "https://host/openai/responses", body)
			req.Header.Set("Authorization", "Bearer token")
			req.Header.Set("Content-Type", "application/json")
			req.Header.Add("X-Multi", "one")
			req.Header.Add("X-Multi", "two")

			wantHeader := req.Header.Clone()
			wantLength := req.ContentLength

			out, err := policy.Augment(req)
			must.NoError(t, err)

			must.Eq(t, method, out.Method)
			must.Eq(t, wantHeader, out.Header)
			must.Eq(t, wantLength, out.ContentLength)
			must.True(t, out.Body == req.Body)

			b, err := io.ReadAll(out.Body)
			must.NoError(t, err)
			must.Eq(t, body, string(b))
		})
	}
}

func TestPolicy_Augment_repeated(t *testing.T) {
	policy := querypolicy.NewAPIVersion(testVersion)

	req := newRequest(t, http.MethodGet, "https://host/openai/responses", "")

	once, err := policy.Augment(req)
	must.NoError(t, err)

	twice, err := policy.Augment(once)
	must.NoError(t, err)

	must.Eq(t, "api-version=2025-11-15-preview&api-version=2025-11-15-preview", twice.URL.RawQuery)
	must.Eq(t, []string{testVersion, testVersion}, twice.URL.Query()["api-version"])
}

func TestPolicy_Augment_existingKeyNotDeduplicated(t *testing.T) {
	policy := querypolicy.NewAPIVersion(testVersion)

	req := newRequest(t, http.MethodGet, "https://host/openai/responses?api-version=2024-10-21", "")

	out, err := policy.Augment(req)
	must.NoError(t, err)
	must.Eq(t, []string{"2024-10-21", testVersion}, out.URL.Query()["api-version"])
}

func TestPolicy_Augment_escapes(t *testing.T) {
	policy := querypolicy.New("tag name", "a&b=c")

	req := newRequest(t, http.MethodGet, "https://host/path", "")

	out, err := policy.Augment(req)
	must.NoError(t, err)
	must.Eq(t, "tag+name=a%26b%3Dc", out.URL.RawQuery)
	must.Eq(t, "a&b=c", out.URL.Query().Get("tag name"))
	must.Eq(t, "tag name", policy.Key())
	must.Eq(t, "a&b=c", policy.Value())
}

func TestPolicy_Augment_malformed(t *testing.T) {
	policy := querypolicy.NewAPIVersion(testVersion)

	relative := newRequest(t, http.MethodGet, "/openai/responses", "")

	noScheme := newRequest(t, http.MethodGet, "https://host/openai/responses", "")
	noScheme.URL.Scheme = ""

	noURL := newRequest(t, http.MethodGet, "https://host/openai/responses", "")
	noURL.URL = nil

	tests := []struct {
		name   string
		req    *http.Request
		reason string
	}{
		{name: "nil request", req: nil, reason: "nil request"},
		{name: "nil url", req: noURL, reason: "missing URL"},
		{name: "relative", req: relative, reason: "missing scheme"},
		{name: "no scheme", req: noScheme, reason: "missing scheme"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, err := policy.Augment(test.req)
			must.Nil(t, out)
			must.ErrorIs(t, err, querypolicy.ErrMalformedRequest)

			var malformed *querypolicy.MalformedRequestError
			must.True(t, errors.As(err, &malformed))
			must.Eq(t, test.reason, malformed.Reason)
		})
	}
}

func TestPolicy_Augment_concurrent(t *testing.T) {
	policy := querypolicy.NewAPIVersion(testVersion)

	const n = 256

	var (
		wg   sync.WaitGroup
		got  = make([]string, n)
		errs = make([]error, n)
	)

	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("https://host/openai/responses?n=%d", i), nil)
			if err != nil {
				errs[i] = err
				return
			}

			out, err := policy.Augment(req)
			if err != nil {
				errs[i] = err
				return
			}
			got[i] = out.URL.RawQuery
		}()
	}
	wg.Wait()

	for i := range n {
		must.NoError(t, errs[i])
		must.Eq(t, fmt.Sprintf("n=%d&api-version=%s", i, testVersion), got[i])
	}
}

func TestPolicy_Transport(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []string
		bodies  []string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)

		mu.Lock()
		queries = append(queries, r.URL.RawQuery)
		bodies = append(bodies, string(b))
		mu.Unlock()

		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	policy := querypolicy.NewAPIVersion(testVersion)

	client := &http.Client{Transport: policy.Transport(srv.Client().Transport)}

	req := newRequest(t, http.MethodPost, srv.URL+"/openai/responses?foo=bar", "payload")

	resp, err := client.Do(req)
	must.NoError(t, err)
	resp.Body.Close()

	must.Eq(t, http.StatusNoContent, resp.StatusCode)
	must.Eq(t, []string{"foo=bar&api-version=2025-11-15-preview"}, queries)
	must.Eq(t, []string{"payload"}, bodies)

	// The caller's request is not modified by the transport.
	must.Eq(t, "foo=bar", req.URL.RawQuery)
}

type recordingTransport struct {
	calls int
}

func (rt *recordingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	rt.calls++
	return nil, errors.New("unreachable")
}

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestPolicy_Transport_malformed(t *testing.T) {
	base := &recordingTransport{}

	rt := querypolicy.NewAPIVersion(testVersion).Transport(base)

	body := &closeTracker{Reader: bytes.NewReader([]byte("payload"))}

	req := newRequest(t, http.MethodPost, "https://host/openai/responses", "")
	req.URL.Host = ""
	req.Body = body

	resp, err := rt.RoundTrip(req)
	must.Nil(t, resp)
	must.ErrorIs(t, err, querypolicy.ErrMalformedRequest)
	must.Eq(t, 0, base.calls)
	must.True(t, body.closed)
}

func TestPolicy_Transport_httpClient(t *testing.T) {
	base := &recordingTransport{}

	client := &http.Client{
		Transport: querypolicy.NewAPIVersion(testVersion).Transport(base),
	}

	req := newRequest(t, http.MethodGet, "/openai/responses", "")

	resp, err := client.Do(req)
	must.Nil(t, resp)
	must.Error(t, err)
	must.Eq(t, 0, base.calls)

	var urlErr *url.Error
	must.True(t, errors.As(err, &urlErr))

	var malformed *querypolicy.MalformedRequestError
	must.True(t, errors.As(err, &malformed))
	must.Eq(t, "missing scheme", malformed.Reason)
	must.ErrorIs(t, err, querypolicy.ErrMalformedRequest)
}

func TestPolicy_Middleware(t *testing.T) {
	policy := querypolicy.NewAPIVersion(testVersion)

	var mw option.Middleware = policy.Middleware()

	req := newRequest(t, http.MethodPost, "https://host/openai/responses", "payload")

	var (
		calls int
		seen  *http.Request
	)

	resp, err := mw(req, func(r *http.Request) (*http.Response, error) {
		calls++
		seen = r
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})
	must.NoError(t, err)
	must.Eq(t, http.StatusOK, resp.StatusCode)

	must.Eq(t, 1, calls)
	must.Eq(t, "https://host/openai/responses?api-version=2025-11-15-preview", seen.URL.String())
	must.Eq(t, http.MethodPost, seen.Method)
}

func TestPolicy_Middleware_malformed(t *testing.T) {
	mw := querypolicy.NewAPIVersion(testVersion).Middleware()

	req := newRequest(t, http.MethodGet, "/relative", "")

	var calls int
	_, err := mw(req, func(r *http.Request) (*http.Response, error) {
		calls++
		return nil, nil
	})
	must.ErrorIs(t, err, querypolicy.ErrMalformedRequest)
	must.Eq(t, 0, calls)
}

func TestPolicy_String(t *testing.T) {
	must.Eq(t, "api-version=2025-11-15-preview", querypolicy.NewAPIVersion(testVersion).String())
}
