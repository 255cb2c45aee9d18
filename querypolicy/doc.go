// Package querypolicy appends a fixed query parameter to every outbound
// HTTP request made through a client, such as the api-version parameter
// required by the Microsoft Foundry OpenAI-compatible endpoints.
//
// A [Policy] is a single immutable key/value pair. The same pure operation,
// [Policy.Augment], backs both ways of installing it:
//
//   - [Policy.Transport] wraps an [net/http.RoundTripper], for callers that
//     own the [net/http.Client].
//   - [Policy.Middleware] returns an [option.Middleware] for the openai-go
//     client's request pipeline.
//
// # Example
//
//	policy := querypolicy.NewAPIVersion("2025-11-15-preview")
//
//	client := openai.NewClient(
//		option.WithBaseURL(baseURL),
//		option.WithAPIKey(token),
//		option.WithMiddleware(policy.Middleware()),
//	)
//
// The parameter is appended, never merged: a request that already carries
// the key will carry it twice.
//
// [option.Middleware]: https://pkg.go.dev/github.com/openai/openai-go/option#Middleware
package querypolicy
