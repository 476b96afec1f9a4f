package render

// Op is a patch operation.
type Op string

const (
	OpClear  Op = "clear"
	OpUpsert Op = "upsert"
	OpRemove Op = "remove"
)

// Patch is one change to replay on a remote document.
type Patch struct {
	Op      Op       `json:"op"`
	ID      string   `json:"id,omitempty"`
	Element *Element `json:"element,omitempty"`
}

// Flush returns the changes since the previous Flush, coalesced per element:
// a clear first if one happened, then removals, then the full state of every
// touched element in document order.
func (d *Document) Flush() []Patch {
	var out []Patch
	if d.cleared {
		out = append(out, Patch{Op: OpClear})
		d.cleared = false
	}
	for _, id := range sortedKeys(d.removed) {
		out = append(out, Patch{Op: OpRemove, ID: id})
	}
	for _, id := range d.order {
		if d.dirty[id] {
			out = append(out, Patch{Op: OpUpsert, ID: id, Element: d.elements[id].clone()})
		}
	}
	d.dirty = make(map[string]bool)
	d.removed = make(map[string]bool)
	return out
}

// Full returns the patches that rebuild the whole document from scratch.
func (d *Document) Full() []Patch {
	out := []Patch{{Op: OpClear}}
	for _, id := range d.order {
		out = append(out, Patch{Op: OpUpsert, ID: id, Element: d.elements[id].clone()})
	}
	return out
}
