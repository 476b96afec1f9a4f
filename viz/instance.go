package viz

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teranos/folio/am"
	"github.com/teranos/folio/anim"
	"github.com/teranos/folio/camera"
	"github.com/teranos/folio/errors"
	"github.com/teranos/folio/filter"
	"github.com/teranos/folio/geom"
	"github.com/teranos/folio/graph"
	"github.com/teranos/folio/logger"
	"github.com/teranos/folio/render"
	"github.com/teranos/folio/source"
	"go.uber.org/zap"
)

// Instance is one open-able visualization. Every method must be called from
// the goroutine running its loop; the server posts onto the loop to get there.
type Instance struct {
	id      string
	builder Builder
	src     source.Source
	cfg     *am.Config
	loop    *anim.Loop
	doc     *render.Document
	log     *zap.SugaredLogger
	sink    sink

	transform *camera.Transform
	cam       *camera.Controller
	mode      filter.LayoutMode

	open     bool
	attempts int
	err      error
	build    *Build
	graph    *graph.Graph
	filters  *filter.Controller

	loading  *anim.Slot
	entrance *anim.Slot
	relayout *anim.Slot
	tour     *anim.Slot

	hint    *anim.Crossfade
	labels  map[string]*anim.Crossfade
	hovered map[string]bool

	// first-build placement, restored when switching to static mode
	initialPos   map[string]geom.Vec
	initialR     map[string]float64
	initialRects map[string]geom.Rect

	// last values written per element, the starting point of re-layout transitions
	frames map[string]anim.NodeFrame
	paths  map[string]geom.Path

	onBuilt []func(*Instance)
}

// Option configures an Instance.
type Option func(*Instance)

// WithLogger sets the instance logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(i *Instance) { i.log = l }
}

// WithTransform shares an existing camera transform.
func WithTransform(t *camera.Transform) Option {
	return func(i *Instance) { i.transform = t }
}

// New creates a closed instance. A nil cfg uses the defaults.
func New(b Builder, src source.Source, cfg *am.Config, loop *anim.Loop, opts ...Option) *Instance {
	if cfg == nil {
		cfg = am.Defaults()
	}
	id := uuid.NewString()
	i := &Instance{
		id:        id,
		builder:   b,
		src:       src,
		cfg:       cfg,
		loop:      loop,
		doc:       render.NewDocument(id),
		transform: camera.Identity(),
		mode:      cfg.LayoutMode(),
	}
	i.log = logger.ChildLogger(logger.ComponentLogger("viz"),
		logger.FieldInstanceID, id, logger.FieldViz, b.Name())
	for _, opt := range opts {
		opt(i)
	}
	i.sink = sink{i}
	alive := func() bool { return i.open }
	i.loading = loop.NewSlot(alive)
	i.entrance = loop.NewSlot(alive)
	i.relayout = loop.NewSlot(alive)
	i.tour = loop.NewSlot(alive)
	i.resetState()
	i.newCamera()
	return i
}

func (i *Instance) resetState() {
	i.labels = make(map[string]*anim.Crossfade)
	i.hovered = make(map[string]bool)
	i.frames = make(map[string]anim.NodeFrame)
	i.paths = make(map[string]geom.Path)
	i.initialPos = make(map[string]geom.Vec)
	i.initialR = make(map[string]float64)
	i.initialRects = make(map[string]geom.Rect)
}

func (i *Instance) newCamera() {
	var vw, vh float64
	if i.cam != nil {
		i.cam.Cancel()
		vw, vh = i.cam.Viewport()
	}
	i.cam = camera.New(i.transform, i.loop, i.doc,
		camera.WithOptions(i.cfg.CameraOptions()),
		camera.WithBounds(i.panBounds),
		camera.WithLogger(i.log.Named("camera")))
	i.cam.SetViewport(vw, vh)
	i.cam.OnUserInput(i.tour.Cancel)
	i.cam.OnChange(func(camera.Transform) { i.updateWhispers() })
}

func (i *Instance) panBounds() (camera.Bounds, bool) {
	if i.graph == nil {
		return camera.Bounds{}, false
	}
	world, ok := i.graph.VisibleBounds()
	if !ok {
		return camera.Bounds{}, false
	}
	vw, vh := i.cam.Viewport()
	if vw <= 0 || vh <= 0 {
		return camera.Bounds{}, false
	}
	return camera.ContentBounds(world, i.transform.Scale, vw, vh, i.cfg.Camera.FitPadding), true
}

// ID returns the instance id.
func (i *Instance) ID() string { return i.id }

// Name returns the builder name.
func (i *Instance) Name() string { return i.builder.Name() }

// Loop returns the loop the instance runs on.
func (i *Instance) Loop() *anim.Loop { return i.loop }

// Document returns the render document.
func (i *Instance) Document() *render.Document { return i.doc }

// Camera returns the camera controller.
func (i *Instance) Camera() *camera.Controller { return i.cam }

// Transform returns the shared camera transform.
func (i *Instance) Transform() *camera.Transform { return i.transform }

// Graph returns the built graph, or nil before the first build.
func (i *Instance) Graph() *graph.Graph { return i.graph }

// Filters returns the filter controller, or nil before the first build.
func (i *Instance) Filters() *filter.Controller { return i.filters }

// IsOpen reports whether the instance is open.
func (i *Instance) IsOpen() bool { return i.open }

// Built reports whether the open instance has a graph.
func (i *Instance) Built() bool { return i.graph != nil }

// Err returns the last build error.
func (i *Instance) Err() error { return i.err }

// Mode returns the layout mode.
func (i *Instance) Mode() filter.LayoutMode { return i.mode }

// Title returns the build title.
func (i *Instance) Title() string {
	if i.build == nil {
		return i.builder.Name()
	}
	return i.build.Title
}

// OnBuilt registers fn to run after every successful build.
func (i *Instance) OnBuilt(fn func(*Instance)) { i.onBuilt = append(i.onBuilt, fn) }

// Open starts the build. Opening an open instance does nothing. While the
// source is not ready the build retries every viz.poll_ms.
func (i *Instance) Open() {
	if i.open {
		return
	}
	i.open = true
	i.attempts = 0
	i.log.Infow("Opening visualization")
	i.tryBuild(i.loading.Start())
}

func (i *Instance) tryBuild(task *anim.Task) {
	if !task.Valid() {
		return
	}
	ds, ok := i.src.Snapshot()
	if !ok {
		i.attempts++
		if i.attempts == 1 {
			i.log.Debugw("Data not ready, polling", "interval", i.cfg.PollInterval())
		}
		task.After(i.cfg.PollInterval(), func() { i.tryBuild(task) })
		return
	}
	task.Done()

	start := time.Now()
	b, err := i.builder.Build(ds, i.cfg)
	if err == nil && b.Graph == nil {
		err = errors.AssertionFailedf("builder %s returned no graph", i.builder.Name())
	}
	if err != nil {
		i.err = err
		i.log.Warnw("Build failed", logger.FieldError, err)
		return
	}
	if err := i.install(b); err != nil {
		i.err = err
		i.log.Warnw("Build failed", logger.FieldError, err)
		return
	}
	i.err = nil
	i.log.Infow("Visualization built",
		logger.FieldCount, len(b.Graph.Nodes),
		"edges", len(b.Graph.Edges),
		"polls", i.attempts,
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	for _, fn := range i.onBuilt {
		fn(i)
	}
}

// Close tears the instance down. Pending timers, frames and crossfades become
// no-ops; the document keeps only its world container. Closing twice does nothing.
func (i *Instance) Close() {
	if !i.open {
		return
	}
	i.open = false
	i.loading.Cancel()
	i.entrance.Cancel()
	i.relayout.Cancel()
	i.tour.Cancel()
	i.cam.Cancel()
	if i.hint != nil {
		i.hint.Cancel()
	}
	for _, cf := range i.labels {
		cf.Cancel()
	}
	if i.filters != nil {
		i.filters.Unbind()
	}
	i.doc.Clear()
	i.graph = nil
	i.build = nil
	i.filters = nil
	i.hint = nil
	i.resetState()
	i.log.Infow("Closed visualization")
}

// Rebuild closes and reopens an open instance, picking up new data.
func (i *Instance) Rebuild() {
	if !i.open {
		return
	}
	i.Close()
	i.Open()
}

// Reconfigure swaps the configuration and rebuilds if open. The camera
// transform and the chosen layout mode survive.
func (i *Instance) Reconfigure(cfg *am.Config) {
	i.cfg = cfg
	i.newCamera()
	i.Rebuild()
}

// SetViewport records the viewport and refits the camera on what is visible.
func (i *Instance) SetViewport(w, h float64) {
	i.cam.SetViewport(w, h)
	if i.graph != nil {
		i.fitVisible()
	}
}

func (i *Instance) install(b *Build) error {
	filters, err := filter.NewController(b.Axes,
		filter.WithLayoutMode(i.mode),
		filter.WithControllerLogger(i.log.Named("filter")))
	if err != nil {
		return errors.Wrap(err, "invalid filter axes")
	}
	i.build = b
	i.graph = b.Graph
	i.filters = filters

	for _, n := range i.graph.Nodes {
		i.initialPos[n.ID] = n.Pos
		i.initialR[n.ID] = n.R
	}
	for _, c := range i.graph.Containers {
		i.initialRects[c.ID] = c.Rect
	}

	i.render()
	if err := i.bindFilters(); err != nil {
		return err
	}
	filters.OnChange(i.onFilterChange)
	visible := i.syncVisibility()
	i.syncModeButtons()

	text := i.hintText(visible)
	i.doc.Upsert(render.Element{ID: HintID, Kind: render.KindHint, Content: text})
	i.hint = anim.NewCrossfade(i.loop, i.doc.Fader(HintID), i.cfg.CrossfadeDuration(), text)

	i.playEntrance()
	i.fitVisible()
	i.updateWhispers()
	return nil
}

func (i *Instance) hintText(visible int) string {
	total := len(i.graph.Nodes)
	if i.build.Hint != nil {
		return i.build.Hint(visible, total)
	}
	return defaultHint(visible, total)
}

func (i *Instance) fitVisible() bool {
	b, ok := i.graph.VisibleBounds()
	if !ok {
		i.log.Debugw("Nothing visible, camera fit skipped")
		return false
	}
	return i.cam.Fit(b, camera.FitOptions{})
}

// render writes every element of the current graph. The document is cleared
// first, so re-rendering never duplicates elements.
func (i *Instance) render() {
	i.doc.Clear()
	g := i.graph
	if i.build.Title != "" {
		i.doc.Upsert(render.Element{ID: TitleID, Kind: render.KindLabel, Content: i.build.Title})
	}

	for _, c := range g.Containers {
		i.doc.Upsert(render.Element{
			ID:      ContainerElementID(c.ID),
			Kind:    render.KindContainer,
			Parent:  render.WorldID,
			Content: c.Label,
			Attrs:   map[string]string{"data-id": c.ID},
		})
		i.placeContainer(c)
	}

	for _, e := range g.Edges {
		attrs := map[string]string{
			"stroke":       e.Style.Color,
			"stroke-width": fmt.Sprintf("%.1f", e.Style.Width),
		}
		if attrs["stroke"] == "" {
			attrs["stroke"] = "#5b6070"
		}
		if e.Style.Dashed {
			attrs["stroke-dasharray"] = "6 4"
		}
		if e.Style.Label != "" {
			attrs["data-label"] = e.Style.Label
		}
		id := EdgeElementID(e.ID)
		i.doc.Upsert(render.Element{
			ID:      id,
			Kind:    render.KindEdge,
			Parent:  render.EdgesID,
			Classes: []string{string(e.Kind)},
			Attrs:   attrs,
		})
		if p, ok := e.Path(); ok {
			i.sink.SetEdgePath(id, p)
		}
	}

	hubs := g.Hubs
	if g.Center != nil {
		hubs = append([]*graph.Hub{g.Center}, hubs...)
	}
	for _, h := range hubs {
		classes := []string{"anchor"}
		if h.IsCenter {
			classes = append(classes, "center")
		}
		id := HubElementID(h.ID)
		i.doc.Upsert(render.Element{
			ID:      id,
			Kind:    render.KindHub,
			Parent:  render.WorldID,
			Classes: classes,
			Style:   map[string]string{"--size": render.Size(h.R)},
			Attrs:   map[string]string{"data-id": h.ID},
			Content: joinIcon(h.Icon, h.Label),
		})
		i.sink.SetNodeFrame(id, anim.Settled(h.Pos))
	}

	for _, n := range g.Nodes {
		id := NodeElementID(n.ID)
		classes := []string{}
		if n.Sector != "" {
			classes = append(classes, "sector-"+graph.NormalizeID(n.Sector))
		}
		i.doc.Upsert(render.Element{
			ID:      id,
			Kind:    render.KindNode,
			Parent:  render.WorldID,
			Classes: classes,
			Style:   map[string]string{"--size": render.Size(n.R)},
			Attrs:   map[string]string{"data-id": n.ID},
			Content: n.Icon,
		})
		label := LabelElementID(n.ID)
		i.doc.Upsert(render.Element{ID: label, Kind: render.KindLabel, Parent: id, Content: n.Label})
		i.labels[n.ID] = anim.NewCrossfade(i.loop, i.doc.Fader(label), i.cfg.CrossfadeDuration(), n.Label)
		i.sink.SetNodeFrame(id, anim.Settled(n.Pos))
	}
}

func joinIcon(icon, label string) string {
	if icon == "" {
		return label
	}
	return icon + " " + label
}

func (i *Instance) placeContainer(c *graph.Container) {
	id := ContainerElementID(c.ID)
	i.doc.SetStyle(id, "left", fmt.Sprintf("%.2fpx", c.Rect.X))
	i.doc.SetStyle(id, "top", fmt.Sprintf("%.2fpx", c.Rect.Y))
	i.doc.SetStyle(id, "width", fmt.Sprintf("%.2fpx", c.Rect.W))
	i.doc.SetStyle(id, "height", fmt.Sprintf("%.2fpx", c.Rect.H))
}

func (i *Instance) bindFilters() error {
	for _, axis := range i.filters.Axes() {
		key := axis.Key()
		all := i.doc.Button(ButtonElementID(key, ""), key, "", "All")
		buttons := make([]filter.Button, 0, len(axis.Allowed()))
		for _, cat := range axis.Allowed() {
			buttons = append(buttons, i.doc.Button(ButtonElementID(key, cat), key, cat, i.build.label(key, cat)))
		}
		if err := i.filters.Bind(key, buttons, all); err != nil {
			return err
		}
	}
	for _, m := range []filter.LayoutMode{filter.Static, filter.Dynamic} {
		i.doc.Upsert(render.Element{
			ID:      ModeElementID(m),
			Kind:    render.KindButton,
			Attrs:   map[string]string{"data-mode": string(m)},
			Content: string(m),
		})
	}
	return nil
}

func (i *Instance) syncModeButtons() {
	for _, m := range []filter.LayoutMode{filter.Static, filter.Dynamic} {
		i.doc.SetClass(ModeElementID(m), "active", m == i.mode)
	}
}

// syncVisibility applies the active filters to the graph and the document and
// returns the number of visible nodes.
func (i *Instance) syncVisibility() int {
	g := i.graph
	active := i.filters.Active()
	var visible int
	if i.build.EdgeDriven {
		visible = g.ApplyResolution(filter.Resolve(g.EdgeGraph(), active))
	} else {
		visible = g.ApplyVisibility(active)
	}
	if i.build.Refine != nil {
		i.build.Refine(g, active)
		g.RefreshStats()
		visible = g.Meta.Stats.VisibleNodes
	}
	for _, n := range g.Nodes {
		i.doc.SetHidden(NodeElementID(n.ID), n.Hidden)
	}
	for _, h := range g.Hubs {
		i.doc.SetHidden(HubElementID(h.ID), h.Hidden)
	}
	for _, e := range g.Edges {
		i.doc.SetHidden(EdgeElementID(e.ID), !e.Visible())
	}
	for _, c := range g.Containers {
		i.doc.SetHidden(ContainerElementID(c.ID), c.Hidden)
	}
	return visible
}

func (i *Instance) onFilterChange(ch filter.Change) {
	if i.graph == nil {
		return
	}
	i.mode = ch.Mode
	visible := i.syncVisibility()
	i.syncModeButtons()
	i.hint.Swap(i.hintText(visible))
	i.log.Debugw("Filter changed",
		logger.FieldAxis, ch.Axis,
		logger.FieldActive, ch.Active,
		logger.FieldMode, ch.Mode,
		logger.FieldVisible, visible)

	switch {
	case ch.Mode == filter.Dynamic:
		i.build.Layout(i.graph, true)
		i.animateToTargets()
		i.fitVisible()
	case ch.ModeChanged:
		i.restoreInitial()
		i.animateToTargets()
	}
}

// restoreInitial puts every node back on its first-build placement.
func (i *Instance) restoreInitial() {
	for _, n := range i.graph.Nodes {
		if p, ok := i.initialPos[n.ID]; ok {
			n.Pos = p
			n.R = i.initialR[n.ID]
		}
	}
	for _, c := range i.graph.Containers {
		if r, ok := i.initialRects[c.ID]; ok {
			c.Rect = r
		}
	}
}

// animateToTargets moves every visible element from where it was last drawn to
// its current graph position. Hidden elements jump.
func (i *Instance) animateToTargets() {
	i.entrance.Cancel()
	g := i.graph

	var moves []anim.Move
	move := func(id string, to geom.Vec, hidden bool) {
		from, ok := i.frames[id]
		if hidden || !ok {
			i.sink.SetNodeFrame(id, anim.Settled(to))
			return
		}
		moves = append(moves, anim.Move{ID: id, From: from.Pos, To: to})
	}
	for _, h := range g.Hubs {
		move(HubElementID(h.ID), h.Pos, h.Hidden)
	}
	for _, n := range g.Nodes {
		id := NodeElementID(n.ID)
		i.doc.SetStyle(id, "--size", render.Size(n.R))
		move(id, n.Pos, n.Hidden)
	}

	var edges []anim.EdgeMove
	for _, e := range g.Edges {
		id := EdgeElementID(e.ID)
		to, ok := e.Path()
		if !ok {
			continue
		}
		from, had := i.paths[id]
		if !e.Visible() || !had {
			i.sink.SetEdgePath(id, to)
			continue
		}
		i.sink.SetEdgeOpacity(id, 1)
		edges = append(edges, anim.EdgeMove{ID: id, From: from, To: to})
	}
	for _, c := range g.Containers {
		i.placeContainer(c)
	}

	anim.PlayTransition(i.relayout.Start(), i.sink, moves, edges, i.cfg.TransitionDuration(), func() {
		i.log.Debugw("Re-layout settled", logger.FieldCount, len(moves))
	})
}

func (i *Instance) playEntrance() {
	g := i.graph
	center := geom.Vec{}
	if g.Center != nil {
		center = g.Center.Pos
	}
	var items []anim.EntranceItem
	for _, h := range g.Hubs {
		if !h.Hidden {
			items = append(items, anim.EntranceItem{ID: HubElementID(h.ID), Target: h.Pos})
		}
	}
	for _, n := range g.Nodes {
		if !n.Hidden {
			items = append(items, anim.EntranceItem{ID: NodeElementID(n.ID), Target: n.Pos})
		}
	}
	var edges []string
	for _, e := range g.Edges {
		if e.Visible() {
			edges = append(edges, EdgeElementID(e.ID))
		}
	}
	cfg := i.cfg.Entrance()
	steps := anim.PlanEntrance(center, items, cfg)
	anim.PlayEntrance(i.entrance.Start(), i.sink, steps, edges, cfg, func() {
		i.log.Debugw("Entrance settled", logger.FieldCount, len(steps))
	})
}

// Animating reports whether an entrance, re-layout, tour or camera motion is in flight.
func (i *Instance) Animating() bool {
	return i.entrance.Running() || i.relayout.Running() || i.tour.Running() || i.cam.Animating()
}

// Frame returns the last frame written for a node or hub element id.
func (i *Instance) Frame(elementID string) (anim.NodeFrame, bool) {
	f, ok := i.frames[elementID]
	return f, ok
}

// sink records what the animator writes so transitions can start from the
// last drawn state, then forwards to the document.
type sink struct{ i *Instance }

func (s sink) SetNodeFrame(id string, f anim.NodeFrame) {
	s.i.frames[id] = f
	s.i.doc.SetNodeFrame(id, f)
}

func (s sink) SetEdgePath(id string, p geom.Path) {
	s.i.paths[id] = p
	s.i.doc.SetEdgePath(id, p)
}

func (s sink) SetEdgeOpacity(id string, o float64) { s.i.doc.SetEdgeOpacity(id, o) }
