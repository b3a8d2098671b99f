package mcp

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"
)

// newMCPHooks wires protocol-level logging for every MCP exchange. Tool call
// payloads pass through credential redaction before they reach the log stream.
func newMCPHooks(logger logSDK.Logger) *srv.Hooks {
	if logger == nil {
		return nil
	}

	hooks := &srv.Hooks{}

	hooks.AddBeforeAny(func(ctx context.Context, id any, method mcp.MCPMethod, message any) {
		fields := hookLogFields(ctx, id, method, message)
		if message != nil {
			fields = append(fields, zap.String("request", redactHookPayload(message)))
		}
		logger.Debug("mcp request received", fields...)
	})

	hooks.AddOnSuccess(func(ctx context.Context, id any, method mcp.MCPMethod, message any, result any) {
		fields := hookLogFields(ctx, id, method, message)
		if result != nil {
			fields = append(fields, zap.String("response", redactHookPayload(result)))
		}
		logger.Info("mcp request succeeded", fields...)
	})

	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		fields := hookLogFields(ctx, id, method, message)
		if message != nil {
			fields = append(fields, zap.String("request", redactHookPayload(message)))
		}
		fields = append(fields, zap.Error(err))
		if shouldDowngradeMCPErrorLog(method, err) {
			logger.Debug("mcp capability probe rejected", fields...)
			return
		}
		logger.Error("mcp request failed", fields...)
	})

	hooks.AddOnRegisterSession(func(ctx context.Context, session srv.ClientSession) {
		logger.Info("mcp session registered", zap.String("session_id", session.SessionID()))
	})

	hooks.AddOnUnregisterSession(func(ctx context.Context, session srv.ClientSession) {
		logger.Info("mcp session unregistered", zap.String("session_id", session.SessionID()))
	})

	return hooks
}

// shouldDowngradeMCPErrorLog reports whether a request failure is just a client
// probing a capability this tools-only server never advertises. Inspectors and
// IDE clients list resources and prompts unconditionally on connect.
func shouldDowngradeMCPErrorLog(method mcp.MCPMethod, err error) bool {
	if err == nil {
		return false
	}

	errText := strings.ToLower(err.Error())
	switch method {
	case mcp.MethodResourcesList, mcp.MethodResourcesTemplatesList:
		return strings.Contains(errText, "resources not supported")
	case mcp.MethodPromptsList:
		return strings.Contains(errText, "prompts not supported")
	default:
		return false
	}
}

func hookLogFields(ctx context.Context, id any, method mcp.MCPMethod, message any) []zap.Field {
	fields := []zap.Field{
		zap.Any("request_id", id),
		zap.String("method", string(method)),
	}

	if tool := toolNameOf(message); tool != "" {
		fields = append(fields, zap.String("tool", tool))
	}
	if session := srv.ClientSessionFromContext(ctx); session != nil {
		fields = append(fields, zap.String("session_id", session.SessionID()))
	}

	return fields
}

// toolNameOf extracts the target tool name when the message is a tool call,
// so log lines can be filtered per tool without parsing the payload.
func toolNameOf(message any) string {
	switch m := message.(type) {
	case *mcp.CallToolRequest:
		if m != nil {
			return m.Params.Name
		}
	case mcp.CallToolRequest:
		return m.Params.Name
	}

	return ""
}

// withHTTPLogging wraps the MCP HTTP handler with exchange logging. Bodies are
// redacted and capped before logging so pasted API keys and oversized search
// payloads never reach the log stream verbatim.
func withHTTPLogging(next http.Handler, logger logSDK.Logger) http.Handler {
	if next == nil {
		return nil
	}
	if logger == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startAt := time.Now()
		sessionID := strings.TrimSpace(r.Header.Get(srv.HeaderKeySessionID))

		reqBody, reqTruncated, err := captureRequestBody(r, httpLogBodyLimit)
		if err != nil {
			logger.Error("capture request body", zap.Error(err))
		}
		logger.Debug("incoming http request",
			zap.String("method", r.Method),
			zap.String("url", r.URL.String()),
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("mcp_session_id", sessionID),
			zap.String("body", redactMCPBody(reqBody)),
			zap.Bool("body_truncated", reqTruncated),
		)

		capture := newResponseCapture(w, httpLogBodyLimit)
		next.ServeHTTP(capture, r)

		respBody, respTruncated := capture.Body()
		logger.Debug("outgoing http response",
			zap.String("method", r.Method),
			zap.String("url", r.URL.String()),
			zap.Int("status", capture.Status()),
			zap.String("mcp_session_id", sessionID),
			zap.String("body", redactMCPBody(respBody)),
			zap.Bool("body_truncated", respTruncated),
			zap.Duration("cost", time.Since(startAt)),
		)
	})
}

// captureRequestBody reads the request body for logging and restores it for
// the downstream handler.
func captureRequestBody(r *http.Request, limit int) (string, bool, error) {
	if r.Body == nil {
		return "", false, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", false, errors.Wrap(err, "read request body")
	}
	if err := r.Body.Close(); err != nil {
		return "", false, errors.Wrap(err, "close request body")
	}
	r.Body = io.NopCloser(bytes.NewReader(data))

	logged, truncated := truncateForLog(data, limit)
	return logged, truncated, nil
}

// responseCapture tees the response for logging while preserving the streaming
// capabilities the MCP transport relies on (flush, hijack, push).
type responseCapture struct {
	http.ResponseWriter
	status    int
	buffer    bytes.Buffer
	truncated bool
	limit     int
}

func newResponseCapture(w http.ResponseWriter, limit int) *responseCapture {
	return &responseCapture{ResponseWriter: w, limit: limit}
}

func (c *responseCapture) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}

	c.record(b)
	return c.ResponseWriter.Write(b)
}

// record keeps at most limit bytes for the log line.
func (c *responseCapture) record(b []byte) {
	remaining := c.limit - c.buffer.Len()
	if remaining <= 0 {
		c.truncated = true
		return
	}

	if len(b) > remaining {
		c.buffer.Write(b[:remaining])
		c.truncated = true
		return
	}
	c.buffer.Write(b)
}

func (c *responseCapture) Status() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

func (c *responseCapture) Body() (string, bool) {
	return c.buffer.String(), c.truncated
}

func (c *responseCapture) Flush() {
	if flusher, ok := c.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (c *responseCapture) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := c.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, errors.New("hijacker not supported")
}

func (c *responseCapture) Push(target string, opts *http.PushOptions) error {
	if pusher, ok := c.ResponseWriter.(http.Pusher); ok {
		return pusher.Push(target, opts)
	}
	return http.ErrNotSupported
}

func truncateForLog(data []byte, limit int) (string, bool) {
	if len(data) <= limit {
		return string(data), false
	}
	return string(data[:limit]), true
}
