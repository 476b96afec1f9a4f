package render

import (
	"bytes"
	"html/template"
	"io"
	"strings"

	"github.com/teranos/folio/errors"
)

// PageOptions controls HTML emission.
type PageOptions struct {
	Title  string
	Width  int
	Height int
	// Socket, when set, embeds the live preview client connected to this URL path.
	Socket string
}

type pageNode struct {
	El       Element
	Class    string
	Style    template.CSS
	Children []pageNode
}

type pageData struct {
	Title  string
	Width  int
	Height int
	Socket string
	World  pageNode
	Edges  []pageNode
	Chrome []pageNode
}

// WriteHTML renders the document as a standalone page. Elements parented to the
// world go inside the camera-transformed container, edges into its SVG layer,
// and parentless elements (filter buttons, hints) into the page chrome.
func (d *Document) WriteHTML(w io.Writer, opts PageOptions) error {
	if opts.Width == 0 {
		opts.Width = 1280
	}
	if opts.Height == 0 {
		opts.Height = 800
	}
	data := pageData{Title: opts.Title, Width: opts.Width, Height: opts.Height, Socket: opts.Socket}

	children := make(map[string][]*Element)
	for _, id := range d.order {
		e := d.elements[id]
		children[e.Parent] = append(children[e.Parent], e)
	}
	var build func(e *Element, depth int) pageNode
	build = func(e *Element, depth int) pageNode {
		n := pageNode{
			El:    *e,
			Class: strings.TrimSpace(string(e.Kind) + " " + strings.Join(e.Classes, " ")),
			Style: template.CSS(e.StyleString()),
		}
		if depth < 4 {
			for _, c := range children[e.ID] {
				n.Children = append(n.Children, build(c, depth+1))
			}
		}
		return n
	}

	for _, e := range children[""] {
		switch e.Kind {
		case KindWorld:
			data.World = build(e, 0)
		default:
			data.Chrome = append(data.Chrome, build(e, 0))
		}
	}
	// edges live in the SVG layer; pull them out of the world's children
	var worldKids []pageNode
	for _, c := range data.World.Children {
		if c.El.ID == EdgesID {
			data.Edges = c.Children
			continue
		}
		worldKids = append(worldKids, c)
	}
	data.World.Children = worldKids

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return errors.Wrap(err, "failed to render page")
	}
	_, err := w.Write(buf.Bytes())
	return errors.Wrap(err, "failed to write page")
}

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { margin: 0; font-family: system-ui, sans-serif; background: #0e0f13; color: #e8e6e3; }
.viewport { position: relative; overflow: hidden; touch-action: none; }
.world { position: absolute; left: 0; top: 0; }
.edges { position: absolute; left: 0; top: 0; overflow: visible; pointer-events: none; }
.node, .hub { position: absolute; width: var(--size); height: var(--size); border-radius: 50%; display: flex; align-items: center; justify-content: center; text-align: center; }
.hub { background: #2b2f3a; }
.node { background: #1c1f27; border: 1px solid #3a3f4c; }
.container { position: absolute; border: 1px dashed #3a3f4c; border-radius: 8px; }
.label { position: absolute; white-space: nowrap; pointer-events: none; }
.button { display: inline-block; margin: 4px; padding: 4px 10px; border: 1px solid #3a3f4c; border-radius: 12px; cursor: pointer; }
.button.active { background: #3a3f4c; }
.hidden { opacity: 0 !important; pointer-events: none; }
</style>
</head>
<body>
{{define "el"}}<div id="{{.El.ID}}" class="{{.Class}}" style="{{.Style}}"{{range $k, $v := .El.Attrs}} {{$k}}="{{$v}}"{{end}}>{{.El.Content}}{{range .Children}}{{template "el" .}}{{end}}</div>{{end}}
<div class="chrome">{{range .Chrome}}{{template "el" .}}{{end}}</div>
<div class="viewport" id="viewport" style="width: {{.Width}}px; height: {{.Height}}px;">
<div id="{{.World.El.ID}}" class="{{.World.Class}}" style="{{.World.Style}}">
<svg id="edges" class="edges" width="1" height="1">{{range .Edges}}<path id="{{.El.ID}}" class="{{.Class}}" style="{{.Style}}" d="{{index .El.Attrs "d"}}" stroke="{{index .El.Attrs "stroke"}}" stroke-width="{{index .El.Attrs "stroke-width"}}" stroke-dasharray="{{index .El.Attrs "stroke-dasharray"}}" fill="none"></path>{{end}}</svg>
{{range .World.Children}}{{template "el" .}}{{end}}
</div>
</div>
{{if .Socket}}<script>
(function () {
  const proto = location.protocol === "https:" ? "wss:" : "ws:";
  const ws = new WebSocket(proto + "//" + location.host + {{.Socket}});
  const vp = document.getElementById("viewport");
  const send = (msg) => ws.readyState === 1 && ws.send(JSON.stringify(msg));
  const apply = (p) => {
    if (p.op === "clear") { document.querySelectorAll(".world > :not(svg), .edges > *, .chrome > *").forEach((n) => n.remove()); return; }
    if (p.op === "remove") { const n = document.getElementById(p.id); if (n) n.remove(); return; }
    const e = p.element;
    let n = document.getElementById(e.id);
    if (!n) {
      n = e.kind === "edge" ? document.createElementNS("http://www.w3.org/2000/svg", "path") : document.createElement("div");
      n.id = e.id;
      const parent = e.kind === "edge" ? document.getElementById("edges") : (e.parent ? document.getElementById(e.parent) : document.querySelector(".chrome"));
      (parent || document.body).appendChild(n);
      if (e.kind === "button") n.onclick = () => e.attrs["data-mode"] ? send({ type: "mode", mode: e.attrs["data-mode"] }) : send({ type: "filter", axis: e.attrs["data-axis"], category: e.attrs["data-category"] });
      if (e.kind === "node") n.onmouseenter = () => send({ type: "hover", id: e.id, on: true }), n.onmouseleave = () => send({ type: "hover", id: e.id, on: false });
    }
    n.setAttribute("class", [e.kind].concat(e.classes || []).join(" "));
    n.setAttribute("style", Object.entries(e.style || {}).map(([k, v]) => k + ": " + v + ";").join(" "));
    Object.entries(e.attrs || {}).forEach(([k, v]) => n.setAttribute(k, v));
    if (e.kind !== "edge" && e.kind !== "world" && e.kind !== "edges") n.textContent = e.content || "";
  };
  ws.onopen = () => send({ type: "hello", protocol: "1.0.0", width: vp.clientWidth, height: vp.clientHeight });
  ws.onmessage = (m) => { const msg = JSON.parse(m.data); (msg.patches || []).forEach(apply); };
  let drag = null;
  vp.onpointerdown = (e) => { drag = true; send({ type: "drag_start", x: e.offsetX, y: e.offsetY }); };
  vp.onpointermove = (e) => drag && send({ type: "drag", x: e.offsetX, y: e.offsetY });
  window.onpointerup = () => { if (drag) send({ type: "drag_end" }); drag = null; };
  vp.onwheel = (e) => { e.preventDefault(); send({ type: "wheel", dy: e.deltaY, x: e.offsetX, y: e.offsetY }); };
  const touches = (e) => Array.from(e.touches).map((t) => ({ x: t.clientX - vp.offsetLeft, y: t.clientY - vp.offsetTop }));
  vp.ontouchstart = (e) => send({ type: "touch_start", touches: touches(e) });
  vp.ontouchmove = (e) => { e.preventDefault(); send({ type: "touch_move", touches: touches(e) }); };
  vp.ontouchend = (e) => send({ type: "touch_end", touches: touches(e) });
})();
</script>{{end}}
</body>
</html>
`
