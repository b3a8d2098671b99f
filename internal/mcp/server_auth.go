package mcp

import (
	"net/http"
	"strings"

	logSDK "github.com/Laisky/go-utils/v6/log"

	"github.com/Laisky/tavily-mcp/library"
)

// queryKeyParams are the query parameter names accepted as a fallback auth
// channel for MCP clients that cannot set request headers.
var queryKeyParams = []string{"api_key", "apikey", "APIKEY"}

// withQueryAPIKeyPromotion promotes a Tavily API key passed via query
// parameter into the Authorization header, so downstream credential routing
// reads a single channel. An existing Authorization header always wins.
func withQueryAPIKeyPromotion(next http.Handler, logger logSDK.Logger) http.Handler {
	if next == nil {
		return nil
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(r.Header.Get("Authorization")) == "" {
			if key := queryAPIKey(r); key != "" {
				r.Header.Set("Authorization", "Bearer "+key)
				if logger != nil {
					logger.Debug("promoted query api key into authorization header")
				}
			}
		}

		next.ServeHTTP(w, r)
	})
}

// queryAPIKey returns the first non-empty API key found among the accepted
// query parameters, stripped of any Bearer prefix.
func queryAPIKey(r *http.Request) string {
	if r == nil || r.URL == nil {
		return ""
	}

	values := r.URL.Query()
	for _, name := range queryKeyParams {
		if key := library.StripBearerPrefix(values.Get(name)); key != "" {
			return key
		}
	}

	return ""
}
