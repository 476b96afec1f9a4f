package render

import (
	"fmt"
	"sort"

	"github.com/teranos/folio/anim"
	"github.com/teranos/folio/filter"
)

// Fader adapts one element to anim.Fader for crossfades.
func (d *Document) Fader(id string) anim.Fader { return &fader{doc: d, id: id} }

type fader struct {
	doc *Document
	id  string
}

func (f *fader) SetOpacity(o float64)      { f.doc.SetStyle(f.id, "opacity", fmt.Sprintf("%.4f", o)) }
func (f *fader) SetContent(content string) { f.doc.SetContent(f.id, content) }

// Button creates (or reuses) a filter button element and returns it as a
// filter.Button. category "" marks the axis' "all" button.
func (d *Document) Button(id, axis, category, label string) filter.Button {
	if _, ok := d.elements[id]; !ok {
		d.Upsert(Element{
			ID:      id,
			Kind:    KindButton,
			Attrs:   map[string]string{"data-axis": axis, "data-category": category},
			Content: label,
		})
	}
	return &button{doc: d, id: id, category: category}
}

type button struct {
	doc      *Document
	id       string
	category string
}

func (b *button) Category() string      { return b.category }
func (b *button) SetActive(active bool) { b.doc.SetClass(b.id, "active", active) }

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
