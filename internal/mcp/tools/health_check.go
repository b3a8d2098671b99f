package tools

import (
	"context"
	"math"
	"strings"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/tavily-mcp/library/search"
)

// HealthCheckTool implements the tavily_health_check MCP tool. It issues a
// minimal probe search directly against the provider, bypassing the fallback
// ladder so the result reflects raw upstream health.
type HealthCheckTool struct {
	provider Provider
	clock    Clock
	logger   logSDK.Logger
}

// NewHealthCheckTool constructs a HealthCheckTool with the provided dependencies.
func NewHealthCheckTool(provider Provider, clock Clock, logger logSDK.Logger) (*HealthCheckTool, error) {
	if provider == nil {
		return nil, errors.New("provider is required")
	}
	if clock == nil {
		return nil, errors.New("clock is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &HealthCheckTool{provider: provider, clock: clock, logger: logger}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *HealthCheckTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"tavily_health_check",
		mcp.WithDescription("Check the health and status of the Tavily API connection: API key validity, network connectivity, service availability, and response time."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Handle executes tavily_health_check.
func (t *HealthCheckTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	probe := &search.Request{
		Query:       "test",
		SearchDepth: search.DepthBasic,
		MaxResults:  1,
		Timeout:     search.HealthCheckTimeoutSeconds,
	}
	probe.Normalize()

	start := t.clock()
	resp, err := t.provider.Search(ctx, probe)
	if err != nil {
		t.logger.Warn("health probe failed", zap.Error(err))
		return structuredResult(t.unhealthyPayload(err))
	}

	elapsed := t.clock().Sub(start).Seconds()
	return structuredResult(map[string]any{
		"status":                "healthy",
		"api_accessible":        true,
		"response_time_seconds": math.Round(elapsed*100) / 100,
		"test_query_successful": true,
		"results_count":         len(resp.Results),
		"timestamp":             t.clock().Format("2006-01-02"),
	})
}

// unhealthyPayload diagnoses the probe failure into an actionable report.
func (t *HealthCheckTool) unhealthyPayload(err error) map[string]any {
	message := messageOf(err)
	lowered := strings.ToLower(message)

	var diagnosis, fixSuggestion string
	switch {
	case strings.Contains(lowered, "api") &&
		(strings.Contains(lowered, "key") || strings.Contains(lowered, "auth")):
		diagnosis = "Invalid or missing API key"
		fixSuggestion = "Check TAVILY_API_KEY environment variable"
	case containsAnyKeyword(lowered, "network", "connection", "timeout"):
		diagnosis = "Network connectivity issue"
		fixSuggestion = "Check internet connection and firewall settings"
	case containsAnyKeyword(lowered, "quota", "limit", "billing"):
		diagnosis = "API quota or billing issue"
		fixSuggestion = "Check Tavily account usage and billing status"
	default:
		diagnosis = "Unknown API issue"
		fixSuggestion = "Check Tavily service status"
	}

	return map[string]any{
		"status":         "unhealthy",
		"api_accessible": false,
		"error":          message,
		"error_type":     errorTypeName(err),
		"diagnosis":      diagnosis,
		"fix_suggestion": fixSuggestion,
		"timestamp":      t.clock().Format("2006-01-02"),
	}
}

func containsAnyKeyword(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
