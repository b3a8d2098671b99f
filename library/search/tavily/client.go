// Package tavily implements the search.Searcher interface on top of the
// Tavily REST API, covering search, extract, crawl and map endpoints.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	gutils "github.com/Laisky/go-utils/v6"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/tavily-mcp/library/log"
	"github.com/Laisky/tavily-mcp/library/search"
)

const (
	defaultBaseURL = "https://api.tavily.com"

	searchPath  = "/search"
	extractPath = "/extract"
	crawlPath   = "/crawl"
	mapPath     = "/map"

	// DefaultHTTPTimeout bounds a single HTTP exchange; per-call deadlines
	// are usually tighter and applied through the request context.
	DefaultHTTPTimeout = 190 * time.Second

	defaultRequestTimeoutSeconds = 60

	defaultQNAMaxResults     = 5
	defaultContextMaxResults = 5
	defaultContextTokens     = 4000
	approxCharsPerToken      = 4

	logBodyLimit = 4096
)

type ctxKey string

const keyAPIKeyOverride ctxKey = "tavily_api_key"

// ContextWithAPIKey returns a context carrying a per-request API key that
// overrides the client's configured key for calls made with that context.
// Blank keys are ignored.
func ContextWithAPIKey(ctx context.Context, apiKey string) context.Context {
	trimmed := strings.TrimSpace(apiKey)
	if trimmed == "" {
		return ctx
	}

	return context.WithValue(ctx, keyAPIKeyOverride, trimmed)
}

func apiKeyFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	key, _ := ctx.Value(keyAPIKeyOverride).(string)
	return key
}

// Option customizes the Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger logSDK.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBaseURL overrides the API base URL, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if strings.TrimSpace(baseURL) != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithUserAgent sets the User-Agent header on outgoing requests.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if strings.TrimSpace(userAgent) != "" {
			c.userAgent = userAgent
		}
	}
}

// Client calls the Tavily REST API. All methods are safe for concurrent use.
type Client struct {
	apiKey    string
	baseURL   string
	userAgent string
	client    *http.Client
	logger    logSDK.Logger
}

var _ search.Searcher = (*Client)(nil)

// New creates a Tavily API client. It accepts the account API key plus
// optional overrides and returns an error when the key is blank.
func New(apiKey string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(apiKey)
	if trimmed == "" {
		return nil, errors.New("tavily api key is required")
	}

	httpClient, err := gutils.NewHTTPClient(
		gutils.WithHTTPClientTimeout(DefaultHTTPTimeout),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create http client")
	}

	client := &Client{
		apiKey:  trimmed,
		baseURL: defaultBaseURL,
		client:  httpClient,
		logger:  log.Logger.Named("tavily"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Search executes one search request. The request should already be
// normalized; its Timeout field bounds the call in seconds.
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	if req == nil || strings.TrimSpace(req.Query) == "" {
		return nil, search.NewError(search.KindValidation, "search query cannot be empty")
	}

	callCtx, cancel := c.callDeadline(ctx, req.Timeout)
	defer cancel()

	var payload search.Response
	if err := c.postJSON(callCtx, searchPath, req, &payload); err != nil {
		return nil, err
	}

	if payload.Results == nil {
		payload.Results = []search.ResultItem{}
	}
	if payload.Images == nil {
		payload.Images = []search.Image{}
	}

	return &payload, nil
}

// Extract retrieves page content for every URL in the request. Per-URL
// failures are reported inside the response, not as an error.
func (c *Client) Extract(ctx context.Context, req *ExtractRequest) (*ExtractResponse, error) {
	if req == nil || len(req.URLs) == 0 {
		return nil, search.NewError(search.KindValidation, "extract requires at least one url")
	}

	callCtx, cancel := c.callDeadline(ctx, req.Timeout)
	defer cancel()

	var payload ExtractResponse
	if err := c.postJSON(callCtx, extractPath, req, &payload); err != nil {
		return nil, err
	}

	if payload.Results == nil {
		payload.Results = []ExtractResult{}
	}
	if payload.FailedResults == nil {
		payload.FailedResults = []FailedResult{}
	}

	return &payload, nil
}

// Crawl walks a site from the request's base URL and returns the pages found.
func (c *Client) Crawl(ctx context.Context, req *CrawlRequest) (*CrawlResponse, error) {
	if req == nil || strings.TrimSpace(req.URL) == "" {
		return nil, search.NewError(search.KindValidation, "crawl requires a base url")
	}

	callCtx, cancel := c.callDeadline(ctx, req.Timeout)
	defer cancel()

	var payload CrawlResponse
	if err := c.postJSON(callCtx, crawlPath, req, &payload); err != nil {
		return nil, err
	}

	if payload.Results == nil {
		payload.Results = []CrawlResult{}
	}

	return &payload, nil
}

// Map walks a site's link structure and returns the discovered URLs.
func (c *Client) Map(ctx context.Context, req *MapRequest) (*MapResponse, error) {
	if req == nil || strings.TrimSpace(req.URL) == "" {
		return nil, search.NewError(search.KindValidation, "map requires a base url")
	}

	callCtx, cancel := c.callDeadline(ctx, req.Timeout)
	defer cancel()

	var payload MapResponse
	if err := c.postJSON(callCtx, mapPath, req, &payload); err != nil {
		return nil, err
	}

	if payload.Results == nil {
		payload.Results = []string{}
	}

	return &payload, nil
}

// QNASearch runs an answer-focused search and returns only the answer text,
// which may be empty when the provider found no direct answer.
func (c *Client) QNASearch(ctx context.Context, query string) (string, error) {
	req := &search.Request{
		Query:         query,
		SearchDepth:   search.DepthAdvanced,
		MaxResults:    defaultQNAMaxResults,
		IncludeAnswer: search.FlagEnabled(true),
	}
	req.Normalize()

	resp, err := c.Search(ctx, req)
	if err != nil {
		return "", err
	}

	return resp.Answer, nil
}

// SearchContext runs a search and renders the results as a JSON string of
// url/content pairs, trimmed to an approximate token budget. It backs
// retrieval-augmented prompts where the caller wants raw grounding text.
func (c *Client) SearchContext(ctx context.Context, query string, opts *ContextOptions) (string, error) {
	options := ContextOptions{}
	if opts != nil {
		options = *opts
	}
	if options.SearchDepth == "" {
		options.SearchDepth = search.DepthBasic
	}
	if options.MaxResults <= 0 {
		options.MaxResults = defaultContextMaxResults
	}
	if options.MaxTokens <= 0 {
		options.MaxTokens = defaultContextTokens
	}

	req := &search.Request{
		Query:       query,
		SearchDepth: options.SearchDepth,
		MaxResults:  options.MaxResults,
		Timeout:     options.Timeout,
	}
	req.Normalize()

	resp, err := c.Search(ctx, req)
	if err != nil {
		return "", err
	}

	return renderContextSources(resp.Results, options.MaxTokens)
}

// renderContextSources emits the url/content pairs as JSON, dropping trailing
// sources once the budget is exceeded. Tokens are approximated at four
// characters each.
func renderContextSources(items []search.ResultItem, maxTokens int) (string, error) {
	type contextSource struct {
		URL     string `json:"url"`
		Content string `json:"content"`
	}

	sources := make([]contextSource, 0, len(items))
	usedTokens := 0
	for _, item := range items {
		cost := (len(item.URL) + len(item.Content)) / approxCharsPerToken
		if usedTokens+cost > maxTokens {
			break
		}

		sources = append(sources, contextSource{URL: item.URL, Content: item.Content})
		usedTokens += cost
	}

	rendered, err := json.Marshal(sources)
	if err != nil {
		return "", errors.Wrap(err, "marshal context sources")
	}

	return string(rendered), nil
}

// postJSON sends one JSON request to the API and decodes the response into
// out. Failures come back classified so callers can branch on error kind.
func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal tavily request")
	}

	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "create tavily request for %s", path)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.resolveAPIKey(ctx))
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	logger := c.requestLogger(ctx)
	requestBody, requestTruncated := truncateForLog(body, logBodyLimit)
	logger.Debug("outgoing http request",
		zap.String("method", req.Method),
		zap.String("url", endpoint),
		zap.String("body", requestBody),
		zap.Bool("body_truncated", requestTruncated),
	)

	startAt := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return search.Classify(errors.Wrapf(err, "send tavily request to %s", path), 0)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return search.Classify(errors.Wrap(err, "read tavily response"), resp.StatusCode)
	}

	responseBody, responseTruncated := truncateForLog(respBody, logBodyLimit)
	logger.Debug("incoming http response",
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.String("body", responseBody),
		zap.Bool("body_truncated", responseTruncated),
		zap.Duration("cost", time.Since(startAt)),
	)

	if resp.StatusCode != http.StatusOK {
		return search.Classify(
			errors.Errorf("tavily %s returned status %d: %s", path, resp.StatusCode, responseBody),
			resp.StatusCode,
		)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrapf(err, "unmarshal tavily %s response", path)
	}

	return nil
}

func (c *Client) resolveAPIKey(ctx context.Context) string {
	if key := apiKeyFromContext(ctx); key != "" {
		return key
	}

	return c.apiKey
}

// requestLogger prefers the request-scoped logger so API exchanges correlate
// with the MCP call that triggered them.
func (c *Client) requestLogger(ctx context.Context) logSDK.Logger {
	logger := c.logger
	if ctx != nil {
		if ctxLogger := gmw.GetLogger(ctx); ctxLogger != nil {
			logger = ctxLogger.Named("tavily")
		}
	}

	return logger
}

func (c *Client) callDeadline(ctx context.Context, seconds int) (context.Context, context.CancelFunc) {
	if seconds <= 0 {
		seconds = defaultRequestTimeoutSeconds
	}

	return context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
}

// truncateForLog caps payloads logged at debug level so oversized responses
// cannot flood the log stream.
func truncateForLog(data []byte, limit int) (string, bool) {
	if limit <= 0 || len(data) <= limit {
		return string(data), false
	}

	return string(data[:limit]), true
}
