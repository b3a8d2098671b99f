package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/google/uuid"
	mcp "github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"

	"github.com/Laisky/tavily-mcp/internal/mcp/tools"
	"github.com/Laisky/tavily-mcp/library"
)

// instrumentedHandler wraps a tool handler with per-invocation logging. Every
// call receives a fresh invocation id so concurrent calls interleaved in the
// logs can be told apart. Credential-bearing argument fields are masked before
// they reach the log sink.
func (s *Server) instrumentedHandler(name string, tool tools.Tool) srv.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger := s.logger.Named(name).With(zap.String("invocation_id", uuid.NewString()))

		logger.Debug("tool invocation started",
			zap.Any("arguments", redactCredentialArguments(argumentsMap(req.Params.Arguments))),
			zap.Bool("per_request_key", apiKeyFromContext(ctx) != ""),
		)

		start := time.Now()
		result, err := tool.Handle(ctx, req)
		cost := time.Since(start)

		switch {
		case err != nil:
			logger.Error("tool invocation failed", zap.Duration("cost", cost), zap.Error(err))
			return result, errors.WithStack(err)
		case result != nil && result.IsError:
			logger.Warn("tool invocation returned error result",
				zap.Duration("cost", cost),
				zap.String("reason", toolErrorMessage(result)),
			)
		default:
			logger.Info("tool invocation succeeded", zap.Duration("cost", cost))
		}

		return result, nil
	}
}

func extractAPIKey(authHeader string) string {
	return library.StripBearerPrefix(authHeader)
}

func apiKeyFromContext(ctx context.Context) string {
	authHeader, _ := ctx.Value(keyAuthorization).(string)
	return extractAPIKey(authHeader)
}

func argumentsMap(raw any) map[string]any {
	switch value := raw.(type) {
	case nil:
		return nil
	case map[string]any:
		return value
	case map[string]string:
		result := make(map[string]any, len(value))
		for key, item := range value {
			result[key] = item
		}
		return result
	default:
		return map[string]any{"value": value}
	}
}

func toolErrorMessage(result *mcp.CallToolResult) string {
	if result == nil || !result.IsError {
		return ""
	}
	for _, content := range result.Content {
		if textContent, ok := mcp.AsTextContent(content); ok {
			txt := strings.TrimSpace(textContent.Text)
			if txt != "" {
				return txt
			}
		}
	}
	if result.StructuredContent != nil {
		return fmt.Sprint(result.StructuredContent)
	}
	return ""
}
