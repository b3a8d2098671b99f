package search

const (
	baseTimeoutSeconds = 60
	maxTimeoutSeconds  = 180

	// MinimalTimeoutSeconds is the fixed deadline for the last-resort ladder rung.
	MinimalTimeoutSeconds = 30
	// HealthCheckTimeoutSeconds bounds the synthetic health probe.
	HealthCheckTimeoutSeconds = 10
	// PresetTimeoutSeconds is the extended deadline used by the news and smart presets.
	PresetTimeoutSeconds = 120
)

// EstimateTimeout derives a request deadline in seconds from the options that
// affect upstream cost. The result-count bonuses do not stack: requests above
// the higher threshold earn only the larger bonus. The estimate is capped at
// three minutes to keep worst-case latency bounded.
func EstimateTimeout(searchDepth string, rawContent bool, maxResults int, autoParameters bool) int {
	timeout := baseTimeoutSeconds

	if searchDepth == DepthAdvanced {
		timeout += 30
	}

	if autoParameters {
		timeout += 20
	}

	if rawContent {
		timeout += 20
	}

	switch {
	case maxResults > 15:
		timeout += 25
	case maxResults > 10:
		timeout += 15
	}

	if timeout > maxTimeoutSeconds {
		timeout = maxTimeoutSeconds
	}
	return timeout
}
