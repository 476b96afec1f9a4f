package render

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/teranos/folio/errors"
	"github.com/teranos/folio/geom"
	"github.com/teranos/folio/graph"
)

// SVGOptions controls static SVG export.
type SVGOptions struct {
	Padding    float64
	Background string
	Font       string
}

const defaultFont = "system-ui, sans-serif"

// WriteSVG renders the settled state of a graph as a standalone SVG whose
// viewBox frames everything visible.
func WriteSVG(w io.Writer, snap graph.Snapshot, opts SVGOptions) error {
	if opts.Font == "" {
		opts.Font = defaultFont
	}
	if opts.Padding == 0 {
		opts.Padding = 40
	}
	box := geom.Rect{X: -100, Y: -100, W: 200, H: 200}
	if snap.Bounds != nil && !snap.Bounds.Degenerate() {
		box = *snap.Bounds
	}
	box = box.Expand(opts.Padding)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.2f %.2f %.2f %.2f" width="%.0f" height="%.0f" font-family="%s">`+"\n",
		box.X, box.Y, box.W, box.H, box.W, box.H, html.EscapeString(opts.Font))
	if opts.Background != "" {
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
			box.X, box.Y, box.W, box.H, html.EscapeString(opts.Background))
	}

	for _, c := range snap.Containers {
		if c.Hidden || c.Rect.Degenerate() {
			continue
		}
		fmt.Fprintf(&b, `<g class="container" id="%s"><rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="8" fill="none" stroke="#888" stroke-dasharray="4 4"/>`,
			html.EscapeString(c.ID), c.Rect.X, c.Rect.Y, c.Rect.W, c.Rect.H)
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" font-size="12">%s</text></g>`+"\n",
			c.Rect.X+8, c.Rect.Y+16, html.EscapeString(c.Label))
	}

	for _, e := range snap.Edges {
		if e.Hidden || e.Path == nil {
			continue
		}
		color := e.Style.Color
		if color == "" {
			color = "#999"
		}
		dash := ""
		if e.Style.Dashed {
			dash = ` stroke-dasharray="6 4"`
		}
		fmt.Fprintf(&b, `<path class="edge %s" d="%s" fill="none" stroke="%s" stroke-width="%.2f"%s/>`+"\n",
			html.EscapeString(string(e.Kind)), PathData(*e.Path), html.EscapeString(color), e.Style.Width, dash)
	}

	circle := func(class, id, label string, c geom.Vec, r float64) {
		fmt.Fprintf(&b, `<g class="%s" id="%s"><circle cx="%.2f" cy="%.2f" r="%.2f" fill="#1c1f27" stroke="#3a3f4c"/>`,
			class, html.EscapeString(id), c.X, c.Y, r)
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle" font-size="%.1f" fill="#e8e6e3">%s</text></g>`+"\n",
			c.X, c.Y, labelSize(r), html.EscapeString(label))
	}
	if snap.Center != nil && !snap.Center.Hidden {
		circle("hub center", snap.Center.ID, snap.Center.Label, snap.Center.Pos, snap.Center.R)
	}
	for _, h := range snap.Hubs {
		if !h.Hidden {
			circle("hub", h.ID, h.Label, h.Pos, h.R)
		}
	}
	for _, n := range snap.Nodes {
		if !n.Hidden {
			circle("node sector-"+html.EscapeString(graph.NormalizeID(n.Sector)), n.ID, n.Label, n.Pos, n.R)
		}
	}
	b.WriteString("</svg>\n")

	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "failed to write svg")
}

func labelSize(r float64) float64 {
	return geom.Clamp(r/3.5, 9, 18)
}
