package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/folio/anim"
	"github.com/teranos/folio/camera"
	"github.com/teranos/folio/filter"
	"github.com/teranos/folio/geom"
	"github.com/teranos/folio/graph"
)

var (
	_ camera.Renderer = (*Document)(nil)
	_ anim.Sink       = (*Document)(nil)
)

func TestUpsertNeverDuplicates(t *testing.T) {
	d := NewDocument("kg")
	assert.Equal(t, 2, d.Len(), "world and edge layer")

	d.Upsert(Element{ID: "n1", Kind: KindNode, Parent: WorldID})
	d.Upsert(Element{ID: "n1", Kind: KindNode, Parent: WorldID, Content: "again"})
	assert.Equal(t, 3, d.Len())
	assert.Equal(t, 1, d.Count(KindNode))

	els := d.Elements()
	assert.Equal(t, "again", els[2].Content)

	d.Remove("n1")
	d.Remove("n1")
	assert.Equal(t, 2, d.Len())
}

func TestClearKeepsCamera(t *testing.T) {
	d := NewDocument("kg")
	d.ApplyTransform(camera.Transform{X: 5, Y: 6, Scale: 2}, 0)
	d.Upsert(Element{ID: "n1", Kind: KindNode, Parent: WorldID})
	d.Clear()

	assert.Equal(t, 2, d.Len())
	world, ok := d.Get(WorldID)
	require.True(t, ok)
	assert.Equal(t, "translate(5.00px, 6.00px) scale(2.0000)", world.Style["transform"])

	patches := d.Flush()
	require.NotEmpty(t, patches)
	assert.Equal(t, OpClear, patches[0].Op)
}

func TestApplyTransformTransition(t *testing.T) {
	d := NewDocument("kg")
	d.ApplyTransform(camera.Transform{X: 1, Y: 2, Scale: 1.5}, 300*time.Millisecond)
	world, _ := d.Get(WorldID)
	assert.Equal(t, "transform 300ms ease-out", world.Style["transition"])

	d.ApplyTransform(camera.Transform{X: 1, Y: 2, Scale: 1.5}, 0)
	_, has := world.Style["transition"]
	assert.False(t, has)
}

func TestNodeFrameAndEdges(t *testing.T) {
	d := NewDocument("kg")
	d.Upsert(Element{ID: "n1", Kind: KindNode, Parent: WorldID})
	d.Upsert(Element{ID: "e1", Kind: KindEdge, Parent: EdgesID})

	d.SetNodeFrame("n1", anim.NodeFrame{Pos: geom.V(10, -20.5), Scale: 0.3, Opacity: 0})
	n, _ := d.Get("n1")
	assert.Equal(t, "10.00px", n.Style["left"])
	assert.Equal(t, "-20.50px", n.Style["top"])
	assert.Equal(t, "translate(-50%, -50%) scale(0.3000)", n.Style["transform"])
	assert.Equal(t, "0.0000", n.Style["opacity"])

	d.SetEdgePath("e1", geom.Path{Start: geom.V(0, 0), Control: geom.V(5, 5), End: geom.V(10, 0)})
	e, _ := d.Get("e1")
	assert.Equal(t, "M 0.00 0.00 Q 5.00 5.00 10.00 0.00", e.Attrs["d"])

	d.SetNodeFrame("missing", anim.Settled(geom.V(1, 1)))
	assert.Equal(t, 4, d.Len(), "writes to unknown ids are dropped")
}

func TestFlushCoalesces(t *testing.T) {
	d := NewDocument("kg")
	d.Flush()

	d.Upsert(Element{ID: "a", Kind: KindNode, Parent: WorldID})
	for i := 0; i < 10; i++ {
		d.SetStyle("a", "left", px(float64(i)))
	}
	d.Upsert(Element{ID: "b", Kind: KindNode, Parent: WorldID})
	d.Remove("b")

	patches := d.Flush()
	require.Len(t, patches, 2)
	assert.Equal(t, Patch{Op: OpRemove, ID: "b"}, patches[0])
	assert.Equal(t, OpUpsert, patches[1].Op)
	assert.Equal(t, "9.00px", patches[1].Element.Style["left"])

	assert.Empty(t, d.Flush())
	assert.Len(t, d.Full(), 1+3)
}

func TestFaderAndButtons(t *testing.T) {
	d := NewDocument("kg")
	d.Upsert(Element{ID: "hint", Kind: KindHint})

	loop := anim.NewLoop()
	cf := anim.NewCrossfade(loop, d.Fader("hint"), 200*time.Millisecond, "12 of 12 visible")
	cf.Swap("4 of 12 visible")
	require.True(t, loop.Settle(time.Second))
	hint, _ := d.Get("hint")
	assert.Equal(t, "4 of 12 visible", hint.Content)
	assert.Equal(t, "1.0000", hint.Style["opacity"])

	axis, err := filter.NewAxis("theme", []string{"work", "study"})
	require.NoError(t, err)
	ctl, err := filter.NewController([]*filter.Axis{axis})
	require.NoError(t, err)
	work := d.Button("btn-work", "theme", "work", "Work")
	study := d.Button("btn-study", "theme", "study", "Study")
	all := d.Button("btn-all", "theme", "", "All")
	require.NoError(t, ctl.Bind("theme", []filter.Button{work, study}, all))

	btn, _ := d.Get("btn-all")
	assert.True(t, btn.HasClass("active"))
	require.NoError(t, ctl.Click("theme", "work"))
	btn, _ = d.Get("btn-work")
	assert.True(t, btn.HasClass("active"))
	btn, _ = d.Get("btn-all")
	assert.False(t, btn.HasClass("active"))
}

func TestWriteHTML(t *testing.T) {
	d := NewDocument("kg")
	d.Upsert(Element{ID: "n1", Kind: KindNode, Parent: WorldID, Content: "<b>Alice</b>", Style: map[string]string{"--size": "40.00px"}})
	d.Upsert(Element{ID: "e1", Kind: KindEdge, Parent: EdgesID, Attrs: map[string]string{"d": "M 0 0 Q 1 1 2 2"}})
	d.Upsert(Element{ID: "btn", Kind: KindButton, Content: "All"})

	var buf bytes.Buffer
	require.NoError(t, d.WriteHTML(&buf, PageOptions{Title: "Knowledge"}))
	out := buf.String()

	assert.Contains(t, out, `<title>Knowledge</title>`)
	assert.Contains(t, out, `id="n1"`)
	assert.Contains(t, out, `--size: 40.00px;`)
	assert.Contains(t, out, `&lt;b&gt;Alice&lt;/b&gt;`, "content is escaped")
	assert.Contains(t, out, `d="M 0 0 Q 1 1 2 2"`)
	assert.NotContains(t, out, "new WebSocket", "no live client without a socket")
	assert.Less(t, strings.Index(out, `id="btn"`), strings.Index(out, `id="viewport"`), "chrome precedes the viewport")

	buf.Reset()
	require.NoError(t, d.WriteHTML(&buf, PageOptions{Socket: "/ws/kg"}))
	assert.Contains(t, buf.String(), "new WebSocket")
}

func TestWriteSVG(t *testing.T) {
	g := graph.New()
	c, _ := graph.NewHub(graph.Hub{ID: "me", Label: "Me", R: 40})
	require.NoError(t, g.SetCenter(c))
	a, _ := graph.NewNode(graph.Node{ID: "a", Label: "A & B", Pos: geom.V(200, 0), R: 20, Sector: "Work Life"})
	b, _ := graph.NewNode(graph.Node{ID: "b", Pos: geom.V(-200, 0), R: 20, Hidden: true})
	require.NoError(t, g.AddNode(a))
	require.NoError(t, g.AddNode(b))
	_, err := g.Connect(graph.EdgeStructural, "me", "a", graph.Style{Dashed: true})
	require.NoError(t, err)
	_, err = g.Connect(graph.EdgeStructural, "me", "b", graph.Style{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, g.Snapshot(), SVGOptions{Background: "#000"}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<svg "))
	assert.Contains(t, out, "A &amp; B")
	assert.Contains(t, out, "sector-work_life")
	assert.Contains(t, out, `stroke-dasharray="6 4"`)
	assert.Equal(t, 1, strings.Count(out, "<path "), "edge to a hidden node is skipped")
	assert.NotContains(t, out, `id="b"`)
}
