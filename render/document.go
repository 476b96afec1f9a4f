// Package render is the rendering stage: an in-memory document of positioned
// elements that the camera, animator and filter controller write into, and
// the serializers that turn it into HTML, SVG or a patch stream.
//
// A Document belongs to one visualization instance and is only touched from
// that instance's loop.
package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teranos/folio/anim"
	"github.com/teranos/folio/camera"
	"github.com/teranos/folio/geom"
)

// Kind classifies an element.
type Kind string

const (
	KindWorld     Kind = "world"
	KindEdgeLayer Kind = "edges"
	KindNode      Kind = "node"
	KindHub       Kind = "hub"
	KindEdge      Kind = "edge"
	KindContainer Kind = "container"
	KindLabel     Kind = "label"
	KindButton    Kind = "button"
	KindHint      Kind = "hint"
)

// Fixed element ids.
const (
	WorldID = "world"
	EdgesID = "edges"
)

// Element is one positioned element with inline style.
type Element struct {
	ID      string            `json:"id"`
	Kind    Kind              `json:"kind"`
	Parent  string            `json:"parent,omitempty"`
	Classes []string          `json:"classes,omitempty"`
	Style   map[string]string `json:"style,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty"`
	Content string            `json:"content,omitempty"`
}

func (e *Element) clone() *Element {
	c := *e
	c.Classes = append([]string(nil), e.Classes...)
	c.Style = copyMap(e.Style)
	c.Attrs = copyMap(e.Attrs)
	return &c
}

// HasClass reports whether the element carries class.
func (e *Element) HasClass(class string) bool {
	for _, c := range e.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// StyleString renders the inline style with keys sorted.
func (e *Element) StyleString() string {
	keys := make([]string, 0, len(e.Style))
	for k := range e.Style {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s: %s;", k, e.Style[k])
	}
	return b.String()
}

// Document holds the elements of one visualization: the world container that
// the camera transforms, the SVG edge layer inside it, and everything the
// builders add.
type Document struct {
	id       string
	elements map[string]*Element
	order    []string
	dirty    map[string]bool
	removed  map[string]bool
	cleared  bool
}

// NewDocument creates a document holding only the world container and edge layer.
func NewDocument(id string) *Document {
	d := &Document{id: id}
	d.reset()
	return d
}

func (d *Document) reset() {
	d.elements = make(map[string]*Element)
	d.order = d.order[:0]
	d.dirty = make(map[string]bool)
	d.removed = make(map[string]bool)
	d.Upsert(Element{ID: WorldID, Kind: KindWorld, Style: map[string]string{
		"transform":        camera.Transform{Scale: 1}.CSS(),
		"transform-origin": "0 0",
	}})
	d.Upsert(Element{ID: EdgesID, Kind: KindEdgeLayer, Parent: WorldID})
}

// ID returns the document id.
func (d *Document) ID() string { return d.id }

// Upsert creates or replaces an element. Replacing keeps its position in the
// document order, so rebuilding never duplicates elements.
func (d *Document) Upsert(el Element) *Element {
	if el.Style == nil {
		el.Style = make(map[string]string)
	}
	if el.Attrs == nil {
		el.Attrs = make(map[string]string)
	}
	if _, ok := d.elements[el.ID]; !ok {
		d.order = append(d.order, el.ID)
	}
	e := &el
	d.elements[el.ID] = e
	delete(d.removed, el.ID)
	d.dirty[el.ID] = true
	return e
}

// Get returns the element with id.
func (d *Document) Get(id string) (*Element, bool) {
	e, ok := d.elements[id]
	return e, ok
}

// Remove deletes an element. Removing an unknown id is a no-op.
func (d *Document) Remove(id string) {
	if _, ok := d.elements[id]; !ok {
		return
	}
	delete(d.elements, id)
	for i, o := range d.order {
		if o == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	delete(d.dirty, id)
	d.removed[id] = true
}

// Clear drops every element except the world container and edge layer.
func (d *Document) Clear() {
	world := d.elements[WorldID].clone()
	d.reset()
	d.elements[WorldID] = world
	d.cleared = true
}

// Len returns the number of elements, including the world container and edge layer.
func (d *Document) Len() int { return len(d.elements) }

// Count returns the number of elements of kind.
func (d *Document) Count(kind Kind) int {
	n := 0
	for _, e := range d.elements {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Elements returns copies of every element in document order.
func (d *Document) Elements() []Element {
	out := make([]Element, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, *d.elements[id].clone())
	}
	return out
}

// SetStyle sets one inline style property. An empty value removes it.
func (d *Document) SetStyle(id, key, value string) {
	e, ok := d.elements[id]
	if !ok {
		return
	}
	if value == "" {
		delete(e.Style, key)
	} else {
		e.Style[key] = value
	}
	d.dirty[id] = true
}

// SetAttr sets one attribute. An empty value removes it.
func (d *Document) SetAttr(id, key, value string) {
	e, ok := d.elements[id]
	if !ok {
		return
	}
	if value == "" {
		delete(e.Attrs, key)
	} else {
		e.Attrs[key] = value
	}
	d.dirty[id] = true
}

// SetContent replaces the element's inner content.
func (d *Document) SetContent(id, content string) {
	e, ok := d.elements[id]
	if !ok {
		return
	}
	e.Content = content
	d.dirty[id] = true
}

// SetClass adds or removes a class.
func (d *Document) SetClass(id, class string, on bool) {
	e, ok := d.elements[id]
	if !ok || e.HasClass(class) == on {
		return
	}
	if on {
		e.Classes = append(e.Classes, class)
	} else {
		kept := e.Classes[:0]
		for _, c := range e.Classes {
			if c != class {
				kept = append(kept, c)
			}
		}
		e.Classes = kept
	}
	d.dirty[id] = true
}

// SetHidden toggles the "hidden" class.
func (d *Document) SetHidden(id string, hidden bool) { d.SetClass(id, "hidden", hidden) }

// ApplyTransform writes the camera transform onto the world container. A positive
// transition turns on an eased CSS transition for this update.
func (d *Document) ApplyTransform(t camera.Transform, transition time.Duration) {
	d.SetStyle(WorldID, "transform", t.CSS())
	if transition > 0 {
		d.SetStyle(WorldID, "transition", fmt.Sprintf("transform %dms ease-out", transition.Milliseconds()))
	} else {
		d.SetStyle(WorldID, "transition", "")
	}
}

// SetNodeFrame positions a node element.
func (d *Document) SetNodeFrame(id string, f anim.NodeFrame) {
	d.SetStyle(id, "left", px(f.Pos.X))
	d.SetStyle(id, "top", px(f.Pos.Y))
	d.SetStyle(id, "transform", fmt.Sprintf("translate(-50%%, -50%%) scale(%.4f)", f.Scale))
	d.SetStyle(id, "opacity", fmt.Sprintf("%.4f", f.Opacity))
}

// SetEdgePath writes SVG path data.
func (d *Document) SetEdgePath(id string, p geom.Path) { d.SetAttr(id, "d", PathData(p)) }

// SetEdgeOpacity fades an edge.
func (d *Document) SetEdgeOpacity(id string, o float64) {
	d.SetStyle(id, "opacity", fmt.Sprintf("%.4f", o))
}

// PathData renders a quadratic path as SVG path data.
func PathData(p geom.Path) string {
	return fmt.Sprintf("M %.2f %.2f Q %.2f %.2f %.2f %.2f",
		p.Start.X, p.Start.Y, p.Control.X, p.Control.Y, p.End.X, p.End.Y)
}

func px(v float64) string { return fmt.Sprintf("%.2fpx", v) }

// Size is the "--size" custom property value for a radius.
func Size(r float64) string { return px(2 * r) }

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
