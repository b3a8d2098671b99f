package mcp

import (
	"bytes"
	"html/template"
	"net/http"

	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/tavily-mcp/library/log"
)

// inspectorPage is the server-rendered debug frontend. It shows which tools
// this deployment exposes and boots the hosted MCP Inspector against the
// local endpoint unless the `endpoint` query parameter overrides it.
var inspectorPage = template.Must(template.New("inspector").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1" />
<title>{{.ServerName}} debug</title>
<style>
  :root { color-scheme: dark; }
  html, body { margin: 0; height: 100%; font-family: system-ui, sans-serif; background: #101418; color: #e6edf3; }
  #app { height: 100%; }
  aside { position: fixed; top: 16px; left: 16px; z-index: 10; max-width: 340px; padding: 12px 16px; border-radius: 8px; background: rgba(16, 20, 24, 0.92); border: 1px solid #2d333b; font-size: 13px; line-height: 1.5; }
  aside h1 { margin: 0 0 4px; font-size: 15px; }
  aside .muted { color: #8b949e; }
  aside code { font-family: ui-monospace, Menlo, Consolas, monospace; color: #58a6ff; }
  aside ul { margin: 6px 0 0; padding-left: 18px; }
  aside li { margin: 2px 0; }
</style>
</head>
<body>
<aside>
  <h1>{{.ServerName}} <span class="muted">{{.ServerVersion}}</span></h1>
  <div>Endpoint <code id="endpoint">{{.EndpointPath}}</code></div>
  <div class="muted">Append ?endpoint=... to inspect another deployment.</div>
  <ul>
{{- range .Tools}}
    <li><code>{{.}}</code></li>
{{- end}}
  </ul>
</aside>
<div id="app"></div>
<script type="module">
const params = new URLSearchParams(window.location.search);
const endpointUrl = params.get("endpoint") || new URL({{.EndpointPath}}, window.location.origin).toString();
document.getElementById("endpoint").textContent = endpointUrl;
const token = params.get("token") || params.get("authorization") || "";
try {
  const mod = await import("https://unpkg.com/@modelcontextprotocol/inspector-web@latest/dist/index.js");
  const createInspector = mod.createInspector || mod.default;
  if (typeof createInspector !== "function") {
    throw new Error("createInspector export missing");
  }
  const inspector = await createInspector({ target: document.getElementById("app"), endpointUrl });
  if (token && typeof inspector?.setAuthorizationToken === "function") {
    inspector.setAuthorizationToken(token);
  }
} catch (err) {
  console.error("inspector bootstrap failed:", err);
  document.getElementById("app").innerHTML = '<main style="display:flex;height:100%;align-items:center;justify-content:center;"><div style="text-align:center;"><h2>Inspector failed to load</h2><p>Open <a style="color:#58a6ff" href="https://inspector.modelcontextprotocol.io">inspector.modelcontextprotocol.io</a> and point it at the endpoint above.</p></div></main>';
}
</script>
</body>
</html>`))

// inspectorView feeds inspectorPage.
type inspectorView struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
	Tools         []string
}

// NewInspectorHandler serves the debug page for this deployment. The page is
// rendered once at construction; per-request work is a single write.
func NewInspectorHandler(defaultEndpointPath string, toolNames []string, logger logSDK.Logger) http.Handler {
	if defaultEndpointPath == "" {
		defaultEndpointPath = "/mcp"
	}
	if logger == nil {
		logger = log.Logger
	}

	var rendered bytes.Buffer
	err := inspectorPage.Execute(&rendered, inspectorView{
		ServerName:    ServerName,
		ServerVersion: ServerVersion,
		EndpointPath:  defaultEndpointPath,
		Tools:         toolNames,
	})
	if err != nil {
		logger.Warn("render inspector page", zap.Error(err))
		rendered.Reset()
		rendered.WriteString("<!DOCTYPE html><html><body><p>debug page unavailable</p></body></html>")
	}
	page := rendered.Bytes()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if _, err := w.Write(page); err != nil {
			logger.Warn("write inspector page", zap.Error(err))
		}
	})
}
