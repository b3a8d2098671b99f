package tavily

// ExtractRequest asks the provider to retrieve page content for a set of URLs.
// Timeout is a client-side deadline in seconds and never reaches the wire.
type ExtractRequest struct {
	URLs           []string `json:"urls"`
	IncludeImages  bool     `json:"include_images"`
	ExtractDepth   string   `json:"extract_depth"`
	Format         string   `json:"format"`
	IncludeFavicon bool     `json:"include_favicon"`

	Timeout int `json:"-"`
}

// ExtractResult is one successfully extracted page.
type ExtractResult struct {
	URL        string   `json:"url"`
	RawContent string   `json:"raw_content"`
	Images     []string `json:"images,omitempty"`
	Favicon    string   `json:"favicon,omitempty"`
}

// FailedResult reports one URL the provider could not extract.
type FailedResult struct {
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

// ExtractResponse carries per-URL successes and failures. Partial failure is
// a normal outcome, not an error: callers inspect FailedResults.
type ExtractResponse struct {
	Results        []ExtractResult `json:"results"`
	FailedResults  []FailedResult  `json:"failed_results"`
	ResponseTime   float64         `json:"response_time"`
	ExtractionNote string          `json:"extraction_note,omitempty"`
}

// CrawlRequest walks a site from a base URL, extracting content along the way.
type CrawlRequest struct {
	URL            string   `json:"url"`
	MaxDepth       int      `json:"max_depth"`
	MaxBreadth     int      `json:"max_breadth"`
	Limit          int      `json:"limit"`
	Instructions   string   `json:"instructions,omitempty"`
	SelectPaths    []string `json:"select_paths,omitempty"`
	SelectDomains  []string `json:"select_domains,omitempty"`
	ExcludePaths   []string `json:"exclude_paths,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
	AllowExternal  bool     `json:"allow_external"`
	IncludeImages  bool     `json:"include_images"`
	Categories     []string `json:"categories,omitempty"`
	ExtractDepth   string   `json:"extract_depth"`

	Timeout int `json:"-"`
}

// CrawlResult is one crawled page.
type CrawlResult struct {
	URL        string   `json:"url"`
	RawContent string   `json:"raw_content"`
	Images     []string `json:"images,omitempty"`
	Favicon    string   `json:"favicon,omitempty"`
}

// CrawlResponse carries the crawled pages rooted at BaseURL.
type CrawlResponse struct {
	BaseURL      string        `json:"base_url"`
	Results      []CrawlResult `json:"results"`
	ResponseTime float64       `json:"response_time"`
}

// MapRequest walks a site's link structure without extracting page content.
type MapRequest struct {
	URL          string `json:"url"`
	MaxDepth     int    `json:"max_depth"`
	Limit        int    `json:"limit"`
	Instructions string `json:"instructions,omitempty"`

	Timeout int `json:"-"`
}

// MapResponse lists the discovered URLs rooted at BaseURL.
type MapResponse struct {
	BaseURL      string   `json:"base_url"`
	Results      []string `json:"results"`
	ResponseTime float64  `json:"response_time"`
}

// ContextOptions tunes SearchContext rendering.
type ContextOptions struct {
	SearchDepth string
	MaxResults  int
	MaxTokens   int
	Timeout     int
}
