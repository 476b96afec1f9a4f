package viz

import (
	"time"

	"github.com/teranos/folio/camera"
	"github.com/teranos/folio/errors"
	"github.com/teranos/folio/filter"
	"github.com/teranos/folio/graph"
	"github.com/teranos/folio/logger"
)

func (i *Instance) ready() error {
	if !i.open {
		return errors.Wrapf(errors.ErrClosed, "instance %s", i.id)
	}
	if i.graph == nil {
		return errors.Wrapf(errors.ErrNotReady, "instance %s", i.id)
	}
	return nil
}

// Click forwards a filter button click. An empty category is the axis' "all" button.
func (i *Instance) Click(axis, category string) error {
	if err := i.ready(); err != nil {
		return err
	}
	if category == "" {
		return i.filters.ClickAll(axis)
	}
	return i.filters.Click(axis, category)
}

// SetMode switches between static and dynamic layout. Before the first build
// the mode is remembered and applied when the build lands.
func (i *Instance) SetMode(m filter.LayoutMode) error {
	if _, err := filter.ParseLayoutMode(string(m)); err != nil {
		return err
	}
	if i.filters == nil {
		i.mode = m
		return nil
	}
	return i.filters.SetMode(m)
}

// Hover marks a node as hovered, which shows its whisper regardless of zoom.
// id may be a graph id or a node element id.
func (i *Instance) Hover(id string, on bool) error {
	if err := i.ready(); err != nil {
		return err
	}
	if gid, ok := GraphID(id); ok {
		id = gid
	}
	n, ok := i.graph.Node(id)
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "node %q", id)
	}
	if on {
		i.hovered[id] = true
	} else {
		delete(i.hovered, id)
	}
	i.doc.SetClass(NodeElementID(id), "hover", on)
	i.updateLabel(n, i.zoomedIn())
	return nil
}

func (i *Instance) zoomedIn() bool { return i.transform.Scale >= i.cfg.Viz.WhisperScale }

func (i *Instance) updateWhispers() {
	if i.graph == nil {
		return
	}
	zoomed := i.zoomedIn()
	for _, n := range i.graph.Nodes {
		i.updateLabel(n, zoomed)
	}
}

func (i *Instance) updateLabel(n *graph.Node, zoomed bool) {
	cf := i.labels[n.ID]
	if cf == nil {
		return
	}
	text := n.Label
	if n.Whisper != "" && (zoomed || i.hovered[n.ID]) {
		text = n.Whisper
	}
	cf.Swap(text)
}

// LabelText returns the label a node is showing or fading toward.
func (i *Instance) LabelText(id string) (string, bool) {
	cf := i.labels[id]
	if cf == nil {
		return "", false
	}
	return cf.Pending(), true
}

// Focus fits the camera on a node and its neighbors.
func (i *Instance) Focus(id string) error {
	if err := i.ready(); err != nil {
		return err
	}
	ep, ok := i.graph.Endpoint(id)
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "node %q", id)
	}
	if !ep.Visible() {
		return errors.Wrapf(errors.ErrInvalidRequest, "node %q is filtered out", id)
	}
	b, ok := i.graph.BoundsOfIDs(append([]string{id}, i.graph.Neighbors(id)...))
	if !ok {
		return errors.Wrapf(errors.ErrInvalidRequest, "node %q has no extent", id)
	}
	i.tour.Cancel()
	i.cam.Fit(b, camera.FitOptions{})
	return nil
}

// Tour fits the camera on each visible node of ids in turn, holding each for
// dwell, then fits everything visible again. A newer tour, any user gesture
// or Close makes the remaining steps no-ops.
func (i *Instance) Tour(ids []string, dwell time.Duration) error {
	if err := i.ready(); err != nil {
		return err
	}
	var stops []string
	for _, id := range ids {
		if ep, ok := i.graph.Endpoint(id); ok && ep.Visible() {
			stops = append(stops, id)
		}
	}
	if len(stops) == 0 {
		return errors.Wrap(errors.ErrNotFound, "no visible tour stops")
	}

	task := i.tour.Start()
	hold := i.cfg.CameraOptions().FitDuration + dwell
	i.log.Debugw("Tour started", logger.FieldCount, len(stops), logger.FieldGeneration, task.Generation())

	var step func(k int)
	step = func(k int) {
		if k == len(stops) {
			task.Done()
			i.fitVisible()
			return
		}
		if b, ok := i.graph.BoundsOfIDs([]string{stops[k]}); ok {
			i.cam.Fit(b, camera.FitOptions{})
		}
		task.After(hold, func() { step(k + 1) })
	}
	step(0)
	return nil
}

// Touring reports whether a tour is in progress.
func (i *Instance) Touring() bool { return i.tour.Running() }

// TourGeneration is the tour slot's generation counter; it moves on every start or cancel.
func (i *Instance) TourGeneration() uint64 { return i.tour.Generation() }
