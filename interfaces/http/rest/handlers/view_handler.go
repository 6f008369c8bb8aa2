package handlers

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appembed "embedgraph-backend/application/embed"
	apperrors "embedgraph-backend/pkg/errors"
)

// ViewHandler serves the standalone embed viewer pages.
type ViewHandler struct {
	service *appembed.Service
	logger  *zap.Logger
}

// NewViewHandler creates a new view handler
func NewViewHandler(service *appembed.Service, logger *zap.Logger) *ViewHandler {
	return &ViewHandler{service: service, logger: logger}
}

// View handles GET /view/{token}. Unknown tokens get a 404 page and expired
// tokens a 410 page; only this HTML route distinguishes the two states.
func (h *ViewHandler) View(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	row, err := h.service.Lookup(r.Context(), token)
	if err != nil {
		if apperrors.IsNotFound(err) || apperrors.IsValidation(err) {
			h.renderPage(w, http.StatusNotFound, notFoundPage, nil)
			return
		}
		h.logger.Error("embed token lookup failed", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if row.IsExpired() {
		h.renderPage(w, http.StatusGone, expiredPage, nil)
		return
	}

	h.renderPage(w, http.StatusOK, viewerPage, map[string]string{"Token": row.Token})
}

func (h *ViewHandler) renderPage(w http.ResponseWriter, status int, page *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Execute(w, data); err != nil {
		h.logger.Error("viewer page render failed", zap.Error(err))
	}
}

var viewerPage = template.Must(template.New("viewer").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Graph Embed</title>
  <script src="https://unpkg.com/vis-network@9.1.9/standalone/umd/vis-network.min.js"></script>
  <style>
    html, body { margin: 0; height: 100%; background: #1a1a2e; }
    #graph { width: 100%; height: 100%; }
    #status { position: absolute; top: 12px; left: 12px; color: #9aa0b5;
      font: 13px/1.4 system-ui, sans-serif; }
  </style>
</head>
<body>
  <div id="status">Loading graph&hellip;</div>
  <div id="graph"></div>
  <script>
    (function () {
      var status = document.getElementById('status');
      fetch('/api/proxy/query', {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify({ token: {{.Token}} })
      })
        .then(function (res) { return res.json(); })
        .then(function (body) {
          if (!body.success) {
            status.textContent = body.error ? body.error.message : 'Failed to load graph';
            return;
          }
          var data = body.data;
          var nodes = data.nodes.map(function (n) {
            return { id: n.id, label: labelFor(n) };
          });
          var edges = data.relationships.map(function (r) {
            return { id: r.id, from: r.startNode, to: r.endNode, label: r.type, arrows: 'to' };
          });
          new vis.Network(document.getElementById('graph'),
            { nodes: new vis.DataSet(nodes), edges: new vis.DataSet(edges) },
            {
              nodes: { shape: 'dot', size: 14, color: '#4f8cc9',
                font: { color: '#e0e0e0' } },
              edges: { color: '#556', font: { color: '#9aa0b5', size: 10 } },
              physics: { stabilization: { iterations: 150 } }
            });
          status.textContent = '';
        })
        .catch(function () {
          status.textContent = 'Failed to load graph';
        });

      function labelFor(n) {
        if (n.properties && n.properties.name) return String(n.properties.name);
        if (n.properties && n.properties.title) return String(n.properties.title);
        return n.labels.length ? n.labels[0] : n.id;
      }
    })();
  </script>
</body>
</html>
`))

var notFoundPage = template.Must(template.New("notfound").Parse(messagePage(
	"Embed Not Found",
	"This embed link does not exist. It may have been revoked, or the URL may be incomplete.",
)))

var expiredPage = template.Must(template.New("expired").Parse(messagePage(
	"Embed Expired",
	"This embed link has expired. Ask the owner to issue a fresh one.",
)))

func messagePage(title, body string) string {
	return `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>` + title + `</title>
  <style>
    body { margin: 0; height: 100vh; display: flex; align-items: center;
      justify-content: center; background: #1a1a2e; color: #e0e0e0;
      font: 15px/1.6 system-ui, sans-serif; }
    main { max-width: 26rem; text-align: center; padding: 1rem; }
    h1 { font-size: 1.3rem; }
    p { color: #9aa0b5; }
  </style>
</head>
<body>
  <main>
    <h1>` + title + `</h1>
    <p>` + body + `</p>
  </main>
</body>
</html>
`
}
