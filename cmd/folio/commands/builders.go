package commands

import (
	"sort"
	"strings"
	"time"

	"github.com/teranos/folio/am"
	"github.com/teranos/folio/anim"
	"github.com/teranos/folio/errors"
	"github.com/teranos/folio/source"
	"github.com/teranos/folio/viz"
	"github.com/teranos/folio/viz/knowledge"
	"github.com/teranos/folio/viz/mermaid"
	"github.com/teranos/folio/viz/skilltree"
)

// settleLimit bounds how much virtual time a one-shot render may animate.
const settleLimit = time.Minute

var builders = map[string]func() viz.Builder{
	"knowledge": func() viz.Builder { return knowledge.Builder{} },
	"skilltree": func() viz.Builder { return skilltree.Builder{} },
	"mermaid":   func() viz.Builder { return mermaid.Builder{} },
}

func builderNames() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// pickBuilder resolves the builder for a data file. Diagram files always use
// mermaid; other files use name, defaulting to knowledge.
func pickBuilder(name, path string) (viz.Builder, error) {
	if name == "" {
		name = "knowledge"
		if f, err := source.FormatOf(path); err == nil && f == source.FormatDiagram {
			name = "mermaid"
		}
	}
	mk, ok := builders[strings.ToLower(name)]
	if !ok {
		return nil, errors.WithHintf(
			errors.Wrapf(errors.ErrInvalidRequest, "unknown visualization %q", name),
			"choose one of: %s", strings.Join(builderNames(), ", "))
	}
	return mk(), nil
}

// loadConfig reads the effective configuration.
func loadConfig() (*am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	return cfg, nil
}

type settleOptions struct {
	Viz     string
	Width   int
	Height  int
	// Filters are axis=category clicks applied after the build.
	Filters []string
}

// settled builds the file on a virtual clock and runs every animation to
// its end.
func settled(path string, opts settleOptions, cfg *am.Config) (*viz.Instance, error) {
	b, err := pickBuilder(opts.Viz, path)
	if err != nil {
		return nil, err
	}
	ds, err := source.ReadFile(path)
	if err != nil {
		return nil, err
	}
	loop := anim.NewLoop()
	inst := viz.New(b, source.Static(ds), cfg, loop)
	inst.SetViewport(float64(opts.Width), float64(opts.Height))
	inst.Open()
	for _, f := range opts.Filters {
		axis, category, ok := strings.Cut(f, "=")
		if !ok {
			return nil, errors.WithHint(
				errors.Wrapf(errors.ErrInvalidRequest, "filter %q", f),
				"use axis=category, or axis= for the all button")
		}
		if err := inst.Click(axis, category); err != nil {
			return nil, errors.Wrapf(err, "filter %q", f)
		}
	}
	if !loop.Settle(settleLimit) {
		return nil, errors.Newf("%s did not settle within %s", path, settleLimit)
	}
	if err := inst.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to build %s", path)
	}
	if !inst.Built() {
		return nil, errors.AssertionFailedf("%s: no graph after settling", path)
	}
	return inst, nil
}
