package tools

import (
	"encoding/json"
	"fmt"

	errors "github.com/Laisky/errors/v2"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/tavily-mcp/library/search"
)

// decodeArgs decodes tool arguments into a typed request struct.
func decodeArgs(req mcp.CallToolRequest, out any) error {
	args := req.Params.Arguments
	if args == nil {
		args = map[string]any{}
	}

	data, err := json.Marshal(args)
	if err != nil {
		return errors.Wrap(err, "marshal tool arguments")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "decode tool arguments")
	}
	return nil
}

// structuredResult renders a payload as the tool's JSON result. Failure
// payloads go through here too: the caller always receives parseable content
// rather than a protocol-level fault.
func structuredResult(payload any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return mcp.NewToolResultError("failed to encode tool result"), nil
	}
	return result, nil
}

// errorTypeName reports the taxonomy name for an arbitrary failure.
func errorTypeName(err error) string {
	return string(search.Classify(err, 0).Kind)
}

// messageOf prefers the typed message over the full wrapped error chain.
func messageOf(err error) string {
	if typed, ok := search.AsError(err); ok {
		return typed.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func validationFailure(err error) (*mcp.CallToolResult, error) {
	return structuredResult(map[string]any{
		"error":          fmt.Sprintf("Parameter validation error: %s", messageOf(err)),
		"error_type":     string(search.KindValidation),
		"fix_suggestion": search.ValidationHint,
	})
}

func quotaFailure(typed *search.Error) (*mcp.CallToolResult, error) {
	return structuredResult(map[string]any{
		"error":           typed.Message,
		"error_type":      string(search.KindQuota),
		"suggestion":      search.QuotaSuggestion,
		"fallback_action": search.QuotaFallbackAction,
	})
}

func exhaustedFailure(typed *search.Error) (*mcp.CallToolResult, error) {
	return structuredResult(map[string]any{
		"error":      typed.Message,
		"error_type": string(typed.Kind),
		"attempts":   typed.Attempts,
		"suggestion": search.ExhaustedSuggestion,
		"troubleshooting": map[string]string{
			"check_api_key":     "Verify TAVILY_API_KEY is valid",
			"check_network":     "Ensure internet connectivity to api.tavily.com",
			"reduce_complexity": "Try search_depth='basic' and fewer max_results",
		},
	})
}

// searchFailureResult maps a ladder failure onto its structured payload shape.
func searchFailureResult(err error) (*mcp.CallToolResult, error) {
	typed, ok := search.AsError(err)
	if !ok {
		return mcp.NewToolResultError(err.Error()), nil
	}

	switch typed.Kind {
	case search.KindValidation:
		return validationFailure(typed)
	case search.KindQuota:
		return quotaFailure(typed)
	default:
		return exhaustedFailure(typed)
	}
}
