package foundry

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/picatz/foundry/credential"
	"github.com/picatz/foundry/querypolicy"
	"go.uber.org/zap"
)

const (
	// DefaultAPIVersion is the api-version sent with Entra ID requests.
	DefaultAPIVersion = "2025-11-15-preview"

	// PathOpenAI is the versioned OpenAI-compatible path of a project
	// endpoint. Requests to it need an api-version query parameter.
	PathOpenAI = "/openai"

	// PathOpenAIV1 is the unversioned OpenAI-compatible v1 path.
	PathOpenAIV1 = "/openai/v1"

	// DefaultModel is the OpenAI model deployment used by the examples.
	DefaultModel = "gpt-4.1-mini"

	// DefaultReasoningModel is the non-OpenAI model deployment used by
	// the examples.
	DefaultReasoningModel = "DeepSeek-R1-0528"

	// DefaultMaxOutputTokens bounds every example response.
	DefaultMaxOutputTokens = 500
)

// Client is a Responses API client for a single Foundry endpoint.
type Client struct {
	// API is the underlying OpenAI client.
	API openai.Client

	// BaseURL is the resolved base URL, the endpoint plus base path.
	BaseURL string

	// APIVersion is the api-version appended to every request, or
	// empty if none is.
	APIVersion string

	// Mode is how the client authenticated.
	Mode credential.Mode
}

type clientConfig struct {
	apiVersion string
	basePath   string
	httpClient *http.Client
	maxRetries *int
	logger     *zap.SugaredLogger
	middleware []option.Middleware
}

// ClientOption is a function that configures a Client.
type ClientOption func(*clientConfig)

// WithAPIVersion sets the api-version appended to every request.
//
// An empty version disables the parameter entirely.
func WithAPIVersion(version string) ClientOption {
	return func(c *clientConfig) {
		c.apiVersion = version
	}
}

// WithBasePath sets the path appended to the endpoint, such as [PathOpenAI]
// or [PathOpenAIV1].
func WithBasePath(path string) ClientOption {
	return func(c *clientConfig) {
		c.basePath = path
	}
}

// WithHTTPClient sets the HTTP client used for requests.
//
// If the client is nil, then http.DefaultClient is used.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *clientConfig) {
		if hc == nil {
			hc = http.DefaultClient
		}
		c.httpClient = hc
	}
}

// WithMaxRetries sets how many times the OpenAI client retries a failed
// request.
func WithMaxRetries(n int) ClientOption {
	return func(c *clientConfig) {
		c.maxRetries = &n
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *zap.SugaredLogger) ClientOption {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithMiddleware adds OpenAI client middleware. It runs before the
// api-version is appended, so it sees the URL built by the SDK.
func WithMiddleware(mw ...option.Middleware) ClientOption {
	return func(c *clientConfig) {
		c.middleware = append(c.middleware, mw...)
	}
}

// BaseURL joins an endpoint and a base path, dropping trailing slashes
// from the endpoint.
//
// The endpoint must be an absolute URL.
func BaseURL(endpoint, path string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid endpoint %q: must be an absolute URL", endpoint)
	}
	return strings.TrimRight(endpoint, "/") + path, nil
}

// NewClient returns a Client for endpoint, authenticated with src.
//
// The token is resolved once, here. Entra ID clients default to [PathOpenAI]
// with [DefaultAPIVersion]; API key clients default to [PathOpenAIV1] with
// no api-version.
func NewClient(ctx context.Context, endpoint string, src credential.Source, opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{
		httpClient: http.DefaultClient,
		logger:     zap.NewNop().Sugar(),
	}

	switch src.Mode() {
	case credential.ModeEntraID:
		cfg.basePath = PathOpenAI
		cfg.apiVersion = DefaultAPIVersion
	default:
		cfg.basePath = PathOpenAIV1
	}

	for _, opt := range opts {
		opt(cfg)
	}

	baseURL, err := BaseURL(endpoint, cfg.basePath)
	if err != nil {
		return nil, err
	}

	token, err := src.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s credential: %w", src.Mode(), err)
	}

	reqOpts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(token),
		option.WithHTTPClient(cfg.httpClient),
	}

	if cfg.maxRetries != nil {
		reqOpts = append(reqOpts, option.WithMaxRetries(*cfg.maxRetries))
	}

	middleware := append([]option.Middleware{logMiddleware(cfg.logger)}, cfg.middleware...)

	// The policy goes last so that it runs immediately before the
	// request is sent, after every other step has seen the request.
	if cfg.apiVersion != "" {
		middleware = append(middleware, querypolicy.NewAPIVersion(cfg.apiVersion).Middleware())
	}

	reqOpts = append(reqOpts, option.WithMiddleware(middleware...))

	cfg.logger.Debugw("created client",
		"base_url", baseURL,
		"mode", src.Mode(),
		"api_version", cfg.apiVersion,
	)

	return &Client{
		API:        openai.NewClient(reqOpts...),
		BaseURL:    baseURL,
		APIVersion: cfg.apiVersion,
		Mode:       src.Mode(),
	}, nil
}

// logMiddleware logs each request at debug level. It runs before the
// api-version is appended, so it logs the URL of the request that was
// actually sent when the response carries one.
func logMiddleware(logger *zap.SugaredLogger) option.Middleware {
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		start := time.Now()

		resp, err := next(req)
		if err != nil {
			logger.Debugw("request failed",
				"method", req.Method,
				"url", sentURL(req, resp),
				"duration", time.Since(start),
				"error", err,
			)
			return resp, err
		}

		logger.Debugw("request",
			"method", req.Method,
			"url", sentURL(req, resp),
			"status", resp.StatusCode,
			"duration", time.Since(start),
		)
		return resp, nil
	}
}

// sentURL is the redacted URL that went over the wire: the response's
// request if there is one, otherwise req.
func sentURL(req *http.Request, resp *http.Response) string {
	if resp != nil && resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.Redacted()
	}
	return req.URL.Redacted()
}

// Prompt is a single text request to a model.
type Prompt struct {
	// Model is the deployment name.
	Model string

	// Input is the user text.
	Input string

	// Instructions is an optional system (or developer) message.
	Instructions string

	// MaxOutputTokens bounds the response, including reasoning tokens.
	// Zero means [DefaultMaxOutputTokens].
	MaxOutputTokens int64
}

// Result is the part of a response the examples print.
type Result struct {
	ID           string
	Model        string
	Text         string
	Status       string
	OutputTokens int64
}

// Ask sends p to the Responses API and waits for the complete response.
//
// https://platform.openai.com/docs/api-reference/responses/create
func (c *Client) Ask(ctx context.Context, p Prompt) (*Result, error) {
	if p.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	maxTokens := p.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxOutputTokens
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(p.Model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(p.Input),
		},
		MaxOutputTokens: openai.Int(maxTokens),
	}
	if p.Instructions != "" {
		params.Instructions = openai.String(p.Instructions)
	}

	resp, err := c.API.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create response with model %q: %w", p.Model, err)
	}

	return &Result{
		ID:           resp.ID,
		Model:        string(resp.Model),
		Text:         resp.OutputText(),
		Status:       string(resp.Status),
		OutputTokens: resp.Usage.OutputTokens,
	}, nil
}

// Examples returns the example prompts: one for an OpenAI model and one for
// a non-OpenAI reasoning model. Empty model names use the defaults.
func Examples(openaiModel, reasoningModel string) []Prompt {
	if openaiModel == "" {
		openaiModel = DefaultModel
	}
	if reasoningModel == "" {
		reasoningModel = DefaultReasoningModel
	}
	return []Prompt{
		{
			Model:           openaiModel,
			Input:           "Explain quantum computing in 3 sentences.",
			MaxOutputTokens: DefaultMaxOutputTokens,
		},
		{
			Model:           reasoningModel,
			Input:           "What are the top 3 benefits of cloud computing? Be concise.",
			MaxOutputTokens: DefaultMaxOutputTokens,
		},
	}
}
