package cmd

import (
	"fmt"
	"math"
	"net"
	"net/url"
	"strconv"
	"strings"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
)

// configGetter retrieves raw configuration values by dotted key path.
type configGetter func(key string) any

// startupCheck validates one configured value and returns the problems found.
// Messages carry the full key path so operators can fix the file directly.
type startupCheck func(key string, value any) []string

type startupRule struct {
	key   string
	check startupCheck
}

// startupRules enumerates every config key the server consumes. Keys left
// unset pass; set keys must satisfy their check.
func startupRules() []startupRule {
	rules := []startupRule{
		{key: "listen", check: checkListenAddress},
		{key: "settings.tavily.base_url", check: checkAbsoluteURL},
		{key: "settings.tavily.proxy", check: checkAbsoluteURL},
		{key: "settings.tavily.user_agent", check: checkNonEmptyString},
		{key: "settings.web.allowed_origins", check: checkOriginList},
	}

	for _, tool := range []string{
		"get_current_date",
		"tavily_search",
		"tavily_health_check",
		"qna_search",
		"get_search_context",
		"detailed_news_search",
		"smart_search",
		"tavily_extract",
		"tavily_crawl",
		"tavily_map",
	} {
		rules = append(rules, startupRule{
			key:   "settings.mcp.tools." + tool + ".enabled",
			check: checkToolToggle,
		})
	}

	return rules
}

// validateStartupConfig checks the shared config source before the server
// starts, so a malformed file fails the process instead of a tool call.
func validateStartupConfig() error {
	return validateStartupConfigWithGetter(func(key string) any {
		return gconfig.S.Get(key)
	})
}

func validateStartupConfigWithGetter(get configGetter) error {
	if get == nil {
		return errors.New("config getter is nil")
	}

	var problems []string
	for _, rule := range startupRules() {
		raw := get(rule.key)
		if raw == nil {
			continue
		}
		problems = append(problems, rule.check(rule.key, raw)...)
	}

	if len(problems) == 0 {
		return nil
	}

	return errors.Errorf("invalid configuration:\n - %s", strings.Join(problems, "\n - "))
}

func checkListenAddress(key string, value any) []string {
	text, ok := asConfigString(value)
	if !ok {
		return []string{key + " must be a string host:port"}
	}

	_, port, err := net.SplitHostPort(strings.TrimSpace(text))
	if err != nil {
		return []string{fmt.Sprintf("%s must be host:port, got %q", key, text)}
	}
	if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
		return []string{fmt.Sprintf("%s port must be within 1-65535, got %q", key, port)}
	}

	return nil
}

func checkAbsoluteURL(key string, value any) []string {
	text, ok := asConfigString(value)
	if !ok {
		return []string{key + " must be a string URL"}
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []string{key + " must not be empty"}
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return []string{key + " must be a valid absolute URL"}
	}

	return nil
}

func checkNonEmptyString(key string, value any) []string {
	text, ok := asConfigString(value)
	if !ok {
		return []string{key + " must be a string"}
	}
	if strings.TrimSpace(text) == "" {
		return []string{key + " must not be empty"}
	}

	return nil
}

func checkToolToggle(key string, value any) []string {
	if _, ok := asConfigBool(value); !ok {
		return []string{key + " must be a boolean"}
	}

	return nil
}

func checkOriginList(key string, value any) []string {
	items, ok := asConfigList(value)
	if !ok {
		return []string{key + " must be a list of strings"}
	}

	var problems []string
	for i, item := range items {
		text, ok := asConfigString(item)
		if !ok || strings.TrimSpace(text) == "" {
			problems = append(problems, fmt.Sprintf("%s[%d] must be a non-empty string", key, i))
		}
	}

	return problems
}

// asConfigBool coerces the loose types a YAML config yields for booleans.
// Fractional floats and unrecognized strings are rejected rather than guessed.
func asConfigBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case int:
		return v != 0, true
	case int64:
		return v != 0, true
	case float64:
		if math.Trunc(v) != v {
			return false, false
		}
		return v != 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
		return false, false
	default:
		return false, false
	}
}

func asConfigString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

func asConfigList(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return items, true
	default:
		return nil, false
	}
}
