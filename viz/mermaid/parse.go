package mermaid

import (
	"regexp"
	"strings"

	"github.com/teranos/folio/errors"
)

// Shape is a node outline.
type Shape string

const (
	ShapeRect       Shape = "rect"
	ShapeRound      Shape = "round"
	ShapeStadium    Shape = "stadium"
	ShapeSubroutine Shape = "subroutine"
	ShapeCylinder   Shape = "cylinder"
	ShapeCircle     Shape = "circle"
	ShapeRhombus    Shape = "rhombus"
	ShapeHexagon    Shape = "hexagon"
	ShapeAsymmetric Shape = "asymmetric"
)

// LinkStyle is the stroke of a link.
type LinkStyle string

const (
	LinkSolid  LinkStyle = "solid"
	LinkDotted LinkStyle = "dotted"
	LinkThick  LinkStyle = "thick"
)

// Diagram is a parsed flowchart.
type Diagram struct {
	Direction string
	Nodes     []*Node
	Links     []Link
	Subgraphs []*Subgraph

	nodes     map[string]*Node
	subgraphs map[string]*Subgraph
}

// Node is a flowchart vertex.
type Node struct {
	ID       string
	Label    string
	Shape    Shape
	Classes  []string
	Subgraph string // innermost enclosing subgraph, "" at top level
}

// Link is a flowchart edge.
type Link struct {
	From  string
	To    string
	Label string
	Style LinkStyle
	Arrow bool
}

// Subgraph is a titled group of nodes and nested subgraphs.
type Subgraph struct {
	ID       string
	Title    string
	Parent   string
	Children []string
}

// Node looks up a node by id.
func (d *Diagram) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Subgraph looks up a subgraph by id.
func (d *Diagram) Subgraph(id string) (*Subgraph, bool) {
	s, ok := d.subgraphs[id]
	return s, ok
}

var (
	headerRe   = regexp.MustCompile(`^(?:graph|flowchart)(?:\s+(TD|TB|BT|LR|RL))?\s*$`)
	subgraphRe = regexp.MustCompile(`^subgraph\s+([A-Za-z0-9_]+)?\s*(?:\[\s*"?([^\]"]*)"?\s*\])?\s*(.*)$`)
	classRe    = regexp.MustCompile(`^class\s+([A-Za-z0-9_,\s]+?)\s+([A-Za-z0-9_-]+)\s*$`)
	idRe       = regexp.MustCompile(`^[A-Za-z0-9_]+`)
	classTagRe = regexp.MustCompile(`^:::([A-Za-z0-9_-]+)`)
	// "-- text -->", "-. text .->", "== text ==>", then the bare operators,
	// each optionally followed by a |label|
	linkRe = regexp.MustCompile(`^(?:(--|-\.|==)\s+([^|]+?)\s*(-{2,}>|-{3,}|\.-+>|\.-+|={2,}>|={3,})|(-{2,}>|-{3,}|-\.+->|-\.+-|={2,}>|={3,}))(?:\s*\|([^|]*)\|)?`)
)

// ignored statement keywords
var ignored = []string{"classDef", "style", "linkStyle", "click", "direction", "accTitle", "accDescr"}

// shape delimiters, longest opener first
var shapes = []struct {
	open, close string
	shape       Shape
}{
	{"((", "))", ShapeCircle},
	{"([", "])", ShapeStadium},
	{"[[", "]]", ShapeSubroutine},
	{"[(", ")]", ShapeCylinder},
	{"{{", "}}", ShapeHexagon},
	{"[", "]", ShapeRect},
	{"(", ")", ShapeRound},
	{"{", "}", ShapeRhombus},
	{">", "]", ShapeAsymmetric},
}

// Parse reads the flowchart subset: a graph/flowchart header, node shapes,
// solid, dotted and thick links with optional text, nested subgraphs, and
// class assignments through "class" statements or ":::". Comments, classDef
// and style statements are skipped.
func Parse(text string) (*Diagram, error) {
	d := &Diagram{
		Direction: "TD",
		nodes:     make(map[string]*Node),
		subgraphs: make(map[string]*Subgraph),
	}
	var stack []string
	header := false

	for lineNo, raw := range strings.Split(text, "\n") {
		if i := strings.Index(raw, "%%"); i >= 0 {
			raw = raw[:i]
		}
		for _, stmt := range strings.Split(raw, ";") {
			line := strings.TrimSpace(stmt)
			if line == "" {
				continue
			}
			if !header {
				m := headerRe.FindStringSubmatch(line)
				if m == nil {
					return nil, errors.WithHint(
						errors.Wrapf(errors.ErrInvalidRequest, "line %d: expected a graph header, got %q", lineNo+1, line),
						"start the diagram with 'graph TD' or 'flowchart LR'")
				}
				if m[1] != "" {
					d.Direction = m[1]
				}
				if d.Direction == "TB" {
					d.Direction = "TD"
				}
				header = true
				continue
			}
			if err := d.statement(line, &stack); err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo+1)
			}
		}
	}
	if !header {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "empty diagram")
	}
	if len(stack) > 0 {
		return nil, errors.Newf("subgraph %q is not closed", stack[len(stack)-1])
	}
	return d, nil
}

func (d *Diagram) statement(line string, stack *[]string) error {
	current := ""
	if len(*stack) > 0 {
		current = (*stack)[len(*stack)-1]
	}
	word := line
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		word = line[:i]
	}
	for _, kw := range ignored {
		if word == kw {
			return nil
		}
	}

	switch {
	case line == "end":
		if len(*stack) == 0 {
			return errors.New("'end' without subgraph")
		}
		*stack = (*stack)[:len(*stack)-1]
		return nil
	case word == "subgraph":
		m := subgraphRe.FindStringSubmatch(line)
		if m == nil {
			return errors.Newf("bad subgraph %q", line)
		}
		id, title := m[1], strings.TrimSpace(m[2])
		if rest := strings.TrimSpace(m[3]); rest != "" {
			// "subgraph Some title" names the group by its title
			if id != "" {
				rest = id + " " + rest
			}
			id, title = "", strings.Trim(rest, `"`)
		}
		if id == "" {
			id = strings.Map(func(r rune) rune {
				if r == ' ' {
					return '_'
				}
				return r
			}, title)
		}
		if title == "" {
			title = id
		}
		if _, dup := d.subgraphs[id]; dup {
			return errors.Newf("subgraph %q defined twice", id)
		}
		if _, clash := d.nodes[id]; clash {
			return errors.Newf("subgraph %q clashes with a node", id)
		}
		sg := &Subgraph{ID: id, Title: title, Parent: current}
		d.subgraphs[id] = sg
		d.Subgraphs = append(d.Subgraphs, sg)
		if current != "" {
			parent := d.subgraphs[current]
			parent.Children = append(parent.Children, id)
		}
		*stack = append(*stack, id)
		return nil
	case word == "class":
		m := classRe.FindStringSubmatch(line)
		if m == nil {
			return errors.Newf("bad class statement %q", line)
		}
		for _, id := range strings.Split(m[1], ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			d.ensure(id, current).addClass(m[2])
		}
		return nil
	}
	return d.chain(line, current)
}

// chain parses "A & B --> C -- text --> D".
func (d *Diagram) chain(line, current string) error {
	rest := line
	prev, rest, err := d.group(rest, current)
	if err != nil {
		return err
	}
	for {
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return nil
		}
		m := linkRe.FindStringSubmatch(rest)
		if m == nil {
			return errors.Newf("unexpected %q", rest)
		}
		op, label := m[4], m[5]
		if op == "" {
			op = m[1] + m[3]
			label = m[2]
		}
		rest = rest[len(m[0]):]
		var next []string
		next, rest, err = d.group(rest, current)
		if err != nil {
			return err
		}
		style := LinkSolid
		switch {
		case strings.Contains(op, "."):
			style = LinkDotted
		case strings.Contains(op, "="):
			style = LinkThick
		}
		for _, from := range prev {
			for _, to := range next {
				d.Links = append(d.Links, Link{
					From:  from,
					To:    to,
					Label: strings.TrimSpace(label),
					Style: style,
					Arrow: strings.HasSuffix(op, ">"),
				})
			}
		}
		prev = next
	}
}

// group parses "A[...] & B" and returns the ids and the unparsed rest.
func (d *Diagram) group(s, current string) ([]string, string, error) {
	var ids []string
	for {
		s = strings.TrimSpace(s)
		id, rest, err := d.vertex(s, current)
		if err != nil {
			return nil, "", err
		}
		ids = append(ids, id)
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, "&") {
			return ids, rest, nil
		}
		s = rest[1:]
	}
}

func (d *Diagram) vertex(s, current string) (string, string, error) {
	id := idRe.FindString(s)
	if id == "" {
		return "", "", errors.Newf("expected a node id at %q", s)
	}
	if id == "end" || id == "subgraph" {
		return "", "", errors.Newf("%q is a reserved word", id)
	}
	if _, clash := d.subgraphs[id]; clash {
		return "", "", errors.Newf("node %q clashes with a subgraph", id)
	}
	s = s[len(id):]
	n := d.ensure(id, current)

	for _, sh := range shapes {
		if !strings.HasPrefix(s, sh.open) {
			continue
		}
		body := s[len(sh.open):]
		end := strings.Index(body, sh.close)
		if end < 0 {
			return "", "", errors.Newf("node %q: missing %q", id, sh.close)
		}
		label := strings.TrimSpace(body[:end])
		label = strings.Trim(label, `"`)
		n.Label = label
		n.Shape = sh.shape
		s = body[end+len(sh.close):]
		break
	}
	if m := classTagRe.FindStringSubmatch(s); m != nil {
		n.addClass(m[1])
		s = s[len(m[0]):]
	}
	return id, s, nil
}

// ensure returns the node with id, creating it inside current on first use.
func (d *Diagram) ensure(id, current string) *Node {
	if n, ok := d.nodes[id]; ok {
		return n
	}
	n := &Node{ID: id, Label: id, Shape: ShapeRect, Subgraph: current}
	d.nodes[id] = n
	d.Nodes = append(d.Nodes, n)
	if current != "" {
		sg := d.subgraphs[current]
		sg.Children = append(sg.Children, id)
	}
	return n
}

func (n *Node) addClass(c string) {
	for _, have := range n.Classes {
		if have == c {
			return
		}
	}
	n.Classes = append(n.Classes, c)
}
