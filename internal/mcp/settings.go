// Package mcp provides the MCP server wiring and tool registry.
package mcp

import (
	gconfig "github.com/Laisky/go-config/v2"
)

// ToolsSettings captures runtime configuration for enabling or disabling individual MCP tools.
type ToolsSettings struct {
	CurrentDateEnabled   bool
	SearchEnabled        bool
	HealthCheckEnabled   bool
	QNAEnabled           bool
	SearchContextEnabled bool
	NewsSearchEnabled    bool
	SmartSearchEnabled   bool
	ExtractEnabled       bool
	CrawlEnabled         bool
	MapEnabled           bool
}

// AllToolsEnabled returns settings with every tool switched on. This is the
// default when no configuration overrides are present.
func AllToolsEnabled() ToolsSettings {
	return ToolsSettings{
		CurrentDateEnabled:   true,
		SearchEnabled:        true,
		HealthCheckEnabled:   true,
		QNAEnabled:           true,
		SearchContextEnabled: true,
		NewsSearchEnabled:    true,
		SmartSearchEnabled:   true,
		ExtractEnabled:       true,
		CrawlEnabled:         true,
		MapEnabled:           true,
	}
}

// LoadToolsSettingsFromConfig reads the MCP tools configuration and returns a ToolsSettings instance.
// By default, all tools are enabled unless explicitly disabled in the configuration.
func LoadToolsSettingsFromConfig() ToolsSettings {
	return ToolsSettings{
		CurrentDateEnabled:   boolFromConfig("settings.mcp.tools.get_current_date.enabled", true),
		SearchEnabled:        boolFromConfig("settings.mcp.tools.tavily_search.enabled", true),
		HealthCheckEnabled:   boolFromConfig("settings.mcp.tools.tavily_health_check.enabled", true),
		QNAEnabled:           boolFromConfig("settings.mcp.tools.qna_search.enabled", true),
		SearchContextEnabled: boolFromConfig("settings.mcp.tools.get_search_context.enabled", true),
		NewsSearchEnabled:    boolFromConfig("settings.mcp.tools.detailed_news_search.enabled", true),
		SmartSearchEnabled:   boolFromConfig("settings.mcp.tools.smart_search.enabled", true),
		ExtractEnabled:       boolFromConfig("settings.mcp.tools.tavily_extract.enabled", true),
		CrawlEnabled:         boolFromConfig("settings.mcp.tools.tavily_crawl.enabled", true),
		MapEnabled:           boolFromConfig("settings.mcp.tools.tavily_map.enabled", true),
	}
}

// boolFromConfig retrieves a boolean configuration value with a default fallback.
func boolFromConfig(key string, def bool) bool {
	value := gconfig.S.Get(key)
	switch v := value.(type) {
	case nil:
		return def
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		switch v {
		case "true", "True", "TRUE", "1", "yes", "Yes", "YES":
			return true
		case "false", "False", "FALSE", "0", "no", "No", "NO":
			return false
		default:
			return def
		}
	default:
		return def
	}
}
