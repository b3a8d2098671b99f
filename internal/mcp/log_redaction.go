package mcp

import (
	"encoding/json"
	"strings"
)

// credentialKeys lists JSON field names whose values never reach logs verbatim.
var credentialKeys = map[string]struct{}{
	"api_key":        {},
	"apikey":         {},
	"tavily_api_key": {},
	"authorization":  {},
	"token":          {},
}

// redactMCPBody masks credential fields in an MCP JSON payload before logging.
// Non-JSON input is returned unchanged.
func redactMCPBody(raw string) string {
	if raw == "" {
		return raw
	}
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return raw
	}
	redacted := redactMCPValue(payload)
	out, err := json.Marshal(redacted)
	if err != nil {
		return raw
	}
	return string(out)
}

// redactMCPValue recursively redacts nested payloads.
func redactMCPValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return redactMCPMap(v)
	case []any:
		result := make([]any, 0, len(v))
		for _, item := range v {
			result = append(result, redactMCPValue(item))
		}
		return result
	default:
		return value
	}
}

// redactMCPMap applies credential masking to a JSON object.
func redactMCPMap(input map[string]any) map[string]any {
	output := make(map[string]any, len(input))
	for key, value := range input {
		if _, sensitive := credentialKeys[strings.ToLower(key)]; sensitive {
			if text, ok := value.(string); ok {
				output[key] = maskCredential(text)
				continue
			}
		}
		output[key] = redactMCPValue(value)
	}
	return output
}

// redactCredentialArguments masks credential fields in tool arguments before
// they are attached to log entries.
func redactCredentialArguments(args map[string]any) map[string]any {
	if len(args) == 0 {
		return args
	}
	return redactMCPMap(args)
}

// maskCredential obscures a secret while keeping enough of it to correlate
// log entries: an auth scheme prefix survives, short secrets collapse to
// "***", longer ones keep their first four characters.
func maskCredential(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	scheme := ""
	if len(trimmed) >= 7 && strings.EqualFold(trimmed[:7], "bearer ") {
		scheme = trimmed[:7]
		trimmed = strings.TrimSpace(trimmed[7:])
	}

	if len(trimmed) <= 8 {
		return scheme + "***"
	}
	return scheme + trimmed[:4] + "***"
}

// redactHookPayload renders a redacted JSON string for hook logging, capped at
// httpLogBodyLimit so bulky search payloads do not flood the log stream.
func redactHookPayload(payload any) string {
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	redacted := redactMCPBody(string(data))
	if len(redacted) > httpLogBodyLimit {
		return redacted[:httpLogBodyLimit]
	}
	return redacted
}
