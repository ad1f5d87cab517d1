package web

import (
	"html/template"
	"time"

	"github.com/iksnae/claude-log-viewer/internal"
)

// selectorData feeds the session selector page.
type selectorData struct {
	Sessions    []internal.Session
	Status      internal.JobState
	GeneratedAt time.Time
}

var selectorTemplate = template.Must(template.New("selector").Funcs(template.FuncMap{
	"fmtTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("2006-01-02 15:04:05")
	},
}).Parse(selectorHTML))

const selectorHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Claude Log Viewer</title>
  <style>
    * { box-sizing: border-box; margin: 0; padding: 0; }
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
      background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
      min-height: 100vh; padding: 20px; color: #1f2937;
    }
    .container { max-width: 960px; margin: 0 auto; }
    header { text-align: center; padding: 24px 0; color: white; }
    header h1 { font-size: 2.2em; margin-bottom: 8px; }
    .status-bar {
      background: rgba(255,255,255,0.2); border-radius: 8px; padding: 10px 20px;
      margin: 16px 0; display: flex; justify-content: space-between;
      align-items: center; color: white;
    }
    .status-bar button {
      background: white; color: #6366f1; border: none; padding: 8px 16px;
      border-radius: 6px; cursor: pointer; font-weight: 600;
    }
    .status-failed { color: #fecaca; font-weight: 600; }
    .session-item {
      background: rgba(255,255,255,0.95); border-radius: 12px; padding: 16px;
      margin-bottom: 12px; box-shadow: 0 2px 4px rgba(0,0,0,0.1);
    }
    .session-title { font-weight: 600; font-size: 1.05em; display: flex; justify-content: space-between; }
    .session-title .id { color: #6b7280; font-weight: normal; font-size: 0.85em; }
    .session-meta { font-size: 0.9em; color: #6b7280; margin: 6px 0; }
    .session-preview {
      font-size: 0.85em; color: #6b7280; background: #f9fafb; padding: 8px;
      border-radius: 6px; white-space: nowrap; overflow: hidden;
      text-overflow: ellipsis; font-family: monospace;
    }
    .session-actions { margin-top: 10px; }
    .session-actions a {
      background: #6366f1; color: white; padding: 6px 14px; border-radius: 6px;
      text-decoration: none; font-size: 0.9em;
    }
    .no-sessions { text-align: center; padding: 40px; color: white; }
  </style>
</head>
<body>
  <div class="container">
    <header>
      <h1>Claude Log Viewer</h1>
      <p>Select a session to view</p>
    </header>

    <div class="status-bar">
      <span id="status">
        Status: {{.Status.Status}}{{if .Status.Error}} — <span class="status-failed">{{.Status.Error}}</span>{{end}}
        · {{len .Sessions}} session(s) · updated {{fmtTime .GeneratedAt}}
      </span>
      <button onclick="refreshLogs()">Refresh Logs</button>
    </div>

    {{if not .Sessions}}
    <div class="no-sessions">
      <p>No sessions yet. If a regeneration is running, this page will refresh shortly.</p>
    </div>
    {{end}}

    {{range .Sessions}}
    <div class="session-item">
      <div class="session-title">
        <span>{{.DisplayName}}</span>
        <span class="id">{{.ID}}</span>
      </div>
      <div class="session-meta">
        {{if .Project}}{{.Project}} · {{end}}{{.MessageCount}} messages · {{fmtTime .LastModified}}
      </div>
      {{if .Preview}}<div class="session-preview">{{.Preview}}</div>{{end}}
      <div class="session-actions">
        <a href="/api/sessions/{{.ID}}" target="_blank">View Session</a>
      </div>
    </div>
    {{end}}
  </div>

  <script>
    function refreshLogs() {
      fetch('/api/refresh', { method: 'POST' })
        .then(() => pollUntilDone())
        .catch(err => alert('Refresh failed: ' + err));
    }

    function pollUntilDone() {
      const timer = setInterval(() => {
        fetch('/api/status')
          .then(r => r.json())
          .then(job => {
            if (job.status !== 'running') {
              clearInterval(timer);
              location.reload();
            }
          })
          .catch(() => clearInterval(timer));
      }, 2000);
    }

    // Reload automatically while the initial regeneration runs.
    fetch('/api/status')
      .then(r => r.json())
      .then(job => { if (job.status === 'running') pollUntilDone(); });
  </script>
</body>
</html>
`
