package filter

import (
	"strings"

	"github.com/teranos/folio/errors"
	"go.uber.org/zap"
)

// Button is one toggle in a filter bar. Category is "" for an axis' "all" button.
type Button interface {
	Category() string
	SetActive(active bool)
}

// LayoutMode chooses what a filter change does to positions.
type LayoutMode string

const (
	// Static keeps first-build positions and only toggles visibility.
	Static LayoutMode = "static"
	// Dynamic re-runs placement over the visible nodes and animates to it.
	Dynamic LayoutMode = "dynamic"
)

// ParseLayoutMode accepts "static" or "dynamic", case-insensitively.
func ParseLayoutMode(s string) (LayoutMode, error) {
	switch LayoutMode(strings.ToLower(strings.TrimSpace(s))) {
	case Static:
		return Static, nil
	case Dynamic:
		return Dynamic, nil
	}
	return "", errors.Wrapf(errors.ErrInvalidRequest, "layout mode %q (want static or dynamic)", s)
}

// Change describes what a click or mode switch did.
type Change struct {
	Axis        string
	Active      []string
	Mode        LayoutMode
	ModeChanged bool
}

type binding struct {
	buttons []Button
	all     Button
}

// Controller owns the axes of one visualization and keeps its buttons in sync.
type Controller struct {
	axes     []*Axis
	byKey    map[string]*Axis
	bindings map[string]*binding
	mode     LayoutMode
	onChange []func(Change)
	logger   *zap.SugaredLogger
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLayoutMode sets the initial layout mode (default Dynamic).
func WithLayoutMode(m LayoutMode) ControllerOption {
	return func(c *Controller) { c.mode = m }
}

// WithControllerLogger sets the controller logger.
func WithControllerLogger(l *zap.SugaredLogger) ControllerOption {
	return func(c *Controller) { c.logger = l }
}

// NewController creates a controller over axes. Axis keys must be unique.
func NewController(axes []*Axis, opts ...ControllerOption) (*Controller, error) {
	c := &Controller{
		byKey:    make(map[string]*Axis, len(axes)),
		bindings: make(map[string]*binding),
		mode:     Dynamic,
		logger:   zap.NewNop().Sugar(),
	}
	for _, a := range axes {
		if a == nil {
			return nil, errors.Wrap(errors.ErrInvalidRequest, "nil axis")
		}
		if _, dup := c.byKey[a.key]; dup {
			return nil, errors.Wrapf(errors.ErrInvalidRequest, "duplicate axis %q", a.key)
		}
		c.byKey[a.key] = a
		c.axes = append(c.axes, a)
	}
	for _, o := range opts {
		o(c)
	}
	if c.mode != Static && c.mode != Dynamic {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "layout mode %q", c.mode)
	}
	return c, nil
}

// Axis returns the axis registered under key.
func (c *Controller) Axis(key string) (*Axis, bool) {
	a, ok := c.byKey[key]
	return a, ok
}

// Axes returns the axes in registration order.
func (c *Controller) Axes() []*Axis { return append([]*Axis(nil), c.axes...) }

// Mode returns the current layout mode.
func (c *Controller) Mode() LayoutMode { return c.mode }

// OnChange registers a listener for clicks and mode switches.
func (c *Controller) OnChange(fn func(Change)) { c.onChange = append(c.onChange, fn) }

// Bind attaches the buttons of an axis and syncs their state. all may be nil.
// Binding again replaces the previous buttons.
func (c *Controller) Bind(axisKey string, buttons []Button, all Button) error {
	a, ok := c.byKey[axisKey]
	if !ok {
		return errors.Wrapf(errors.ErrUnknownAxis, "%q", axisKey)
	}
	for _, b := range buttons {
		if _, known := a.index[b.Category()]; !known {
			return errors.Wrapf(errors.ErrUnknownCategory, "axis %q button %q", axisKey, b.Category())
		}
	}
	c.bindings[axisKey] = &binding{buttons: append([]Button(nil), buttons...), all: all}
	c.sync(a)
	return nil
}

// Unbind drops every button binding.
func (c *Controller) Unbind() { c.bindings = make(map[string]*binding) }

// Click applies a click on a category button.
func (c *Controller) Click(axisKey, category string) error {
	a, ok := c.byKey[axisKey]
	if !ok {
		return errors.Wrapf(errors.ErrUnknownAxis, "%q", axisKey)
	}
	if err := a.Toggle(category); err != nil {
		return err
	}
	c.changed(a)
	return nil
}

// ClickAll applies a click on an axis' "all" button.
func (c *Controller) ClickAll(axisKey string) error {
	a, ok := c.byKey[axisKey]
	if !ok {
		return errors.Wrapf(errors.ErrUnknownAxis, "%q", axisKey)
	}
	a.SelectAll()
	c.changed(a)
	return nil
}

// SetActive replaces an axis' active set (see Axis.Set).
func (c *Controller) SetActive(axisKey string, categories []string) error {
	a, ok := c.byKey[axisKey]
	if !ok {
		return errors.Wrapf(errors.ErrUnknownAxis, "%q", axisKey)
	}
	if err := a.Set(categories); err != nil {
		return err
	}
	c.changed(a)
	return nil
}

// Reset activates everything on every axis without notifying listeners.
func (c *Controller) Reset() {
	for _, a := range c.axes {
		a.SelectAll()
		c.sync(a)
	}
}

// SetMode switches the layout mode. Listeners fire only on an actual change.
func (c *Controller) SetMode(m LayoutMode) error {
	if m != Static && m != Dynamic {
		return errors.Wrapf(errors.ErrInvalidRequest, "layout mode %q", m)
	}
	if m == c.mode {
		return nil
	}
	c.mode = m
	c.logger.Debugw("Layout mode changed", "mode", string(m))
	c.notify(Change{Mode: m, ModeChanged: true})
	return nil
}

// Active snapshots the active sets of every axis.
func (c *Controller) Active() Active {
	out := make(Active, len(c.axes))
	for _, a := range c.axes {
		out[a.key] = a.activeSet()
	}
	return out
}

// Visible is IsNodeVisible against the current state.
func (c *Controller) Visible(cl Classification) bool { return IsNodeVisible(cl, c.Active()) }

func (c *Controller) changed(a *Axis) {
	c.sync(a)
	active := a.Active()
	c.logger.Debugw("Filter changed", "axis", a.key, "active", active)
	c.notify(Change{Axis: a.key, Active: active, Mode: c.mode})
}

func (c *Controller) sync(a *Axis) {
	b, ok := c.bindings[a.key]
	if !ok {
		return
	}
	all := a.AllActive()
	for _, btn := range b.buttons {
		on := a.active[btn.Category()]
		if all && b.all != nil {
			// with everything on, only the "all" button reads as pressed
			on = false
		}
		btn.SetActive(on)
	}
	if b.all != nil {
		b.all.SetActive(all)
	}
}

func (c *Controller) notify(ch Change) {
	for _, fn := range c.onChange {
		fn(ch)
	}
}
