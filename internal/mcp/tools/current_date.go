package tools

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	mcp "github.com/mark3labs/mcp-go/mcp"
)

// CurrentDateTool implements the get_current_date MCP tool. It anchors
// relative vocabulary like "today" and "recent" for the calling agent before
// it builds date-filtered searches.
type CurrentDateTool struct {
	clock Clock
}

// NewCurrentDateTool constructs a CurrentDateTool around the given clock.
func NewCurrentDateTool(clock Clock) (*CurrentDateTool, error) {
	if clock == nil {
		return nil, errors.New("clock is required")
	}
	return &CurrentDateTool{clock: clock}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *CurrentDateTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"get_current_date",
		mcp.WithDescription("Get the current date and time information. Useful for understanding what 'today', 'recent', 'current' means in context."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

// Handle executes get_current_date.
func (t *CurrentDateTool) Handle(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := t.clock()

	return structuredResult(map[string]any{
		"current_date":     now.Format("2006-01-02"),
		"current_datetime": now.Format(time.RFC3339),
		"day_of_week":      now.Format("Monday"),
		"formatted_date":   now.Format("January 02, 2006"),
		"year":             now.Year(),
		"month":            int(now.Month()),
		"day":              now.Day(),
	})
}
