package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/matsen/hairball/internal/layout"
	"github.com/matsen/hairball/internal/style"
)

// compiledViewerTemplate is parsed at init time to fail fast on template
// errors.
var compiledViewerTemplate *template.Template

func init() {
	compiledViewerTemplate = template.Must(template.New("viewer").Parse(viewerTemplate))
}

// HTMLOptions configures interactive HTML generation.
type HTMLOptions struct {
	Title string
	// Offline keeps the page fully self-contained; online pages load
	// d3 from a CDN and can re-run the physics in the browser.
	Offline bool
	// Sim seeds the in-browser simulation when the page is online.
	Sim *layout.SimulationConfig
}

// DefaultHTMLOptions returns the default HTML generation options.
func DefaultHTMLOptions() HTMLOptions {
	return HTMLOptions{Title: "hairball graph"}
}

type viewerNode struct {
	ID    string  `json:"id"`
	Label string  `json:"label,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	R     float64 `json:"r"`
	Color string  `json:"color"`
}

type viewerLink struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

type viewerPayload struct {
	Nodes []viewerNode `json:"nodes"`
	Links []viewerLink `json:"links"`
}

type viewerTemplateData struct {
	Title     string
	ScriptTag template.HTML
	GraphJSON template.JS
	SimJSON   template.JS
	Width     int
	Height    int
	BG        string
	EdgeColor string
	Text      string
	Accent    string
	Muted     string
}

// GenerateHTML renders a frame as a standalone interactive page with the
// same highlight semantics as the native backends: clicking a node
// emphasizes its neighborhood and dims the rest, clicking the background
// restores uniform styling.
func GenerateHTML(f *Frame, opts HTMLOptions) (string, error) {
	if f == nil {
		return "", fmt.Errorf("render: nil frame")
	}
	if len(f.Nodes) == 0 {
		return emptyHTML, nil
	}
	if opts.Title == "" {
		opts.Title = "hairball graph"
	}

	payload := viewerPayload{
		Nodes: make([]viewerNode, 0, len(f.Nodes)),
		Links: make([]viewerLink, 0, len(f.Links)),
	}
	for _, n := range f.Nodes {
		payload.Nodes = append(payload.Nodes, viewerNode{
			ID: n.ID, Label: n.Label, X: n.X, Y: n.Y, R: n.Radius, Color: n.Color,
		})
	}
	for _, l := range f.Links {
		payload.Links = append(payload.Links, viewerLink{
			Source: l.Key.A, Target: l.Key.B, Weight: l.Weight,
		})
	}
	graphJSON, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	simJSON := []byte("null")
	if opts.Sim != nil {
		if simJSON, err = json.Marshal(opts.Sim); err != nil {
			return "", err
		}
	}

	data := viewerTemplateData{
		Title:     opts.Title,
		ScriptTag: template.HTML(buildScriptTag(opts.Offline)),
		GraphJSON: template.JS(graphJSON),
		SimJSON:   template.JS(simJSON),
		Width:     f.Width,
		Height:    f.Height,
		BG:        style.Hex(f.Theme.Background),
		EdgeColor: style.Hex(f.Theme.Edge),
		Text:      style.Hex(f.Theme.Text),
		Accent:    style.Hex(f.Theme.Accent),
		Muted:     style.Hex(f.Theme.Muted),
	}
	var buf bytes.Buffer
	if err := compiledViewerTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ExportHTML writes the current scene as an interactive page.
func (e *Engine) ExportHTML(w io.Writer, opts HTMLOptions) error {
	e.mu.Lock()
	f := e.buildFrame()
	e.mu.Unlock()
	doc, err := GenerateHTML(f, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, doc)
	return err
}

// buildScriptTag returns a CDN reference for online pages and nothing
// for offline ones; the static viewer needs no external script.
func buildScriptTag(offline bool) string {
	if offline {
		return ""
	}
	return `<script src="https://cdn.jsdelivr.net/npm/d3@7/dist/d3.min.js"></script>`
}

const emptyHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Graph - Empty</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
      background: #1e1e2e;
      color: #a0a0b0;
    }
    .empty-state { text-align: center; }
    .empty-state h2 { margin-bottom: 0.5em; color: #f8f8f2; }
    .empty-state code {
      background: #2a2a3e;
      padding: 2px 6px;
      border-radius: 3px;
    }
  </style>
</head>
<body>
  <div class="empty-state">
    <h2>No graph data</h2>
    <p>This repository has no nodes yet.</p>
    <p>Import a graph with <code>hb import</code></p>
  </div>
</body>
</html>`

const viewerTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  {{.ScriptTag}}
  <style>
    body { margin: 0; background: {{.BG}}; overflow: hidden;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; }
    #graph { display: block; cursor: default; }
    #tooltip {
      position: absolute;
      display: none;
      background: {{.BG}};
      color: {{.Text}};
      border: 1px solid {{.Muted}};
      border-radius: 4px;
      padding: 6px 10px;
      font-size: 13px;
      pointer-events: none;
      z-index: 10;
    }
    #replay {
      position: absolute;
      top: 12px;
      right: 12px;
      display: none;
      background: {{.Accent}};
      color: {{.BG}};
      border: none;
      border-radius: 4px;
      padding: 6px 12px;
      font-size: 13px;
      cursor: pointer;
    }
  </style>
</head>
<body>
  <canvas id="graph" width="{{.Width}}" height="{{.Height}}"></canvas>
  <div id="tooltip"></div>
  <button id="replay">Re-run layout</button>
  <script>
    (function() {
      const graph = {{.GraphJSON}};
      const simCfg = {{.SimJSON}};
      const canvas = document.getElementById('graph');
      const tooltip = document.getElementById('tooltip');
      const ctx = canvas.getContext('2d');

      const byId = {};
      graph.nodes.forEach(n => { byId[n.id] = n; });

      // Neighborhoods for click highlighting.
      const neighbors = {};
      graph.nodes.forEach(n => { neighbors[n.id] = new Set([n.id]); });
      graph.links.forEach(l => {
        if (neighbors[l.source]) neighbors[l.source].add(l.target);
        if (neighbors[l.target]) neighbors[l.target].add(l.source);
      });

      let selected = null;
      let view = { x: 0, y: 0, k: 1 };

      function draw() {
        ctx.setTransform(1, 0, 0, 1, 0, 0);
        ctx.fillStyle = '{{.BG}}';
        ctx.fillRect(0, 0, canvas.width, canvas.height);
        ctx.setTransform(view.k, 0, 0, view.k, view.x, view.y);

        const focus = selected ? neighbors[selected] : null;
        graph.links.forEach(l => {
          const s = byId[l.source], t = byId[l.target];
          if (!s || !t) return;
          const lit = !focus || l.source === selected || l.target === selected;
          ctx.globalAlpha = lit ? 0.55 : 0.2;
          ctx.strokeStyle = '{{.EdgeColor}}';
          ctx.lineWidth = lit && focus ? 2 : 1;
          ctx.beginPath();
          ctx.moveTo(s.x, s.y);
          ctx.lineTo(t.x, t.y);
          ctx.stroke();
        });

        graph.nodes.forEach(n => {
          const lit = !focus || focus.has(n.id);
          ctx.globalAlpha = lit ? 1 : 0.25;
          if (n.id === selected) {
            ctx.fillStyle = '{{.Accent}}';
            ctx.beginPath();
            ctx.arc(n.x, n.y, n.r + 4, 0, 2 * Math.PI);
            ctx.globalAlpha = 0.3;
            ctx.fill();
            ctx.globalAlpha = 1;
          }
          ctx.fillStyle = n.color;
          ctx.beginPath();
          ctx.arc(n.x, n.y, n.r, 0, 2 * Math.PI);
          ctx.fill();
          if (lit && n.label && view.k > 0.6) {
            ctx.fillStyle = '{{.Text}}';
            ctx.font = '10px system-ui, sans-serif';
            ctx.textAlign = 'center';
            ctx.fillText(n.label, n.x, n.y + n.r + 12);
          }
        });
        ctx.globalAlpha = 1;
      }

      function toGraph(evt) {
        const rect = canvas.getBoundingClientRect();
        return {
          x: (evt.clientX - rect.left - view.x) / view.k,
          y: (evt.clientY - rect.top - view.y) / view.k
        };
      }

      function hit(p) {
        for (let i = graph.nodes.length - 1; i >= 0; i--) {
          const n = graph.nodes[i];
          const dx = p.x - n.x, dy = p.y - n.y;
          if (dx * dx + dy * dy <= (n.r + 2) * (n.r + 2)) return n;
        }
        return null;
      }

      canvas.addEventListener('click', evt => {
        const n = hit(toGraph(evt));
        selected = n ? n.id : null;
        draw();
      });

      canvas.addEventListener('mousemove', evt => {
        const n = hit(toGraph(evt));
        canvas.style.cursor = n ? 'pointer' : 'default';
        if (n) {
          tooltip.innerHTML = '<b>' + (n.label || n.id) + '</b>';
          tooltip.style.display = 'block';
          tooltip.style.left = (evt.clientX + 14) + 'px';
          tooltip.style.top = (evt.clientY + 14) + 'px';
        } else {
          tooltip.style.display = 'none';
        }
      });

      canvas.addEventListener('wheel', evt => {
        evt.preventDefault();
        const p = toGraph(evt);
        const k = Math.min(8, Math.max(0.2, view.k * (evt.deltaY < 0 ? 1.15 : 0.87)));
        view.x += p.x * (view.k - k);
        view.y += p.y * (view.k - k);
        view.k = k;
        draw();
      }, { passive: false });

      let dragging = null;
      canvas.addEventListener('mousedown', evt => {
        dragging = { x: evt.clientX, y: evt.clientY };
      });
      window.addEventListener('mousemove', evt => {
        if (!dragging) return;
        view.x += evt.clientX - dragging.x;
        view.y += evt.clientY - dragging.y;
        dragging = { x: evt.clientX, y: evt.clientY };
        draw();
      });
      window.addEventListener('mouseup', () => { dragging = null; });

      // With d3 on the page, the embedded positions seed a live
      // re-run of the force layout.
      if (window.d3 && simCfg) {
        const btn = document.getElementById('replay');
        btn.style.display = 'block';
        btn.addEventListener('click', () => {
          const links = graph.links.map(l => ({ source: l.source, target: l.target }));
          d3.forceSimulation(graph.nodes)
            .force('link', d3.forceLink(links).id(n => n.id).distance(simCfg.link_distance))
            .force('charge', d3.forceManyBody()
              .strength(simCfg.charge_strength)
              .distanceMin(simCfg.distance_min)
              .distanceMax(simCfg.distance_max))
            .force('center', d3.forceCenter(canvas.width / 2, canvas.height / 2))
            .force('collide', d3.forceCollide(simCfg.collide_radius))
            .alphaDecay(simCfg.alpha_decay)
            .velocityDecay(simCfg.velocity_decay)
            .on('tick', draw);
        });
      }

      draw();
    })();
  </script>
</body>
</html>`
