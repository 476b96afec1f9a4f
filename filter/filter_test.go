package filter

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/folio/errors"
)

func mustAxis(t *testing.T, key string, cats []string, opts ...AxisOption) *Axis {
	t.Helper()
	a, err := NewAxis(key, cats, opts...)
	require.NoError(t, err)
	return a
}

func TestNewAxisValidation(t *testing.T) {
	_, err := NewAxis("", []string{"a"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = NewAxis("k", nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = NewAxis("k", []string{"a", "a"})
	assert.Error(t, err)

	_, err = NewAxis("k", []string{"a"}, WithGroups(map[string][]string{"g": {"zzz"}}))
	assert.True(t, errors.Is(err, errors.ErrUnknownCategory))
}

// Solo then restore on {A,B,C}.
func TestScenarioSoloThenRestore(t *testing.T) {
	a := mustAxis(t, "theme", []string{"A", "B", "C"})

	require.NoError(t, a.Toggle("A"))
	assert.Equal(t, []string{"A"}, a.Active())

	require.NoError(t, a.Toggle("A"))
	assert.Equal(t, []string{"A", "B", "C"}, a.Active())
}

func TestMultiToggle(t *testing.T) {
	a := mustAxis(t, "theme", []string{"A", "B", "C"})

	steps := []struct {
		click string
		want  []string
	}{
		{"B", []string{"B"}},
		{"C", []string{"B", "C"}},
		{"A", []string{"A", "B", "C"}},
		{"C", []string{"C"}},
		{"A", []string{"A", "C"}},
		{"A", []string{"C"}},
		{"C", []string{"A", "B", "C"}},
	}
	for i, s := range steps {
		require.NoError(t, a.Toggle(s.click))
		assert.Equal(t, s.want, a.Active(), "step %d click %s", i, s.click)
	}

	err := a.Toggle("nope")
	assert.True(t, errors.Is(err, errors.ErrUnknownCategory))
}

func TestGroupedSolo(t *testing.T) {
	a := mustAxis(t, "kg", []string{"work", "study", "life", "music", "code"},
		WithGroups(map[string][]string{
			"quadrant": {"work", "study", "life"},
			"overlay":  {"music", "code"},
		}))
	assert.Equal(t, GroupedSolo, a.Mode())

	require.NoError(t, a.Toggle("study"))
	assert.Equal(t, []string{"study", "music", "code"}, a.Active(), "overlay group untouched")

	require.NoError(t, a.Toggle("code"))
	assert.Equal(t, []string{"study", "code"}, a.Active())

	require.NoError(t, a.Toggle("code"))
	assert.Equal(t, []string{"study", "music", "code"}, a.Active(), "last overlay restores overlay only")

	require.NoError(t, a.Toggle("study"))
	assert.True(t, a.AllActive())
}

func TestSetRestoresEmptyGroups(t *testing.T) {
	a := mustAxis(t, "kg", []string{"a", "b", "x", "y"},
		WithGroups(map[string][]string{"g1": {"a", "b"}, "g2": {"x", "y"}}))

	require.NoError(t, a.Set([]string{"a"}))
	assert.Equal(t, []string{"a", "x", "y"}, a.Active())

	require.NoError(t, a.Set(nil))
	assert.True(t, a.AllActive())

	assert.Error(t, a.Set([]string{"q"}))
	assert.True(t, a.AllActive(), "failed Set leaves state alone")
}

func TestToggleSequencesKeepInvariant(t *testing.T) {
	cats := []string{"a", "b", "c", "d", "e"}
	axes := []*Axis{
		mustAxis(t, "multi", cats),
		mustAxis(t, "grouped", cats, WithGroups(map[string][]string{"g": {"a", "b"}, "h": {"c", "d"}})),
	}
	rng := rand.New(rand.NewSource(7))
	for _, a := range axes {
		t.Run(a.Key(), func(t *testing.T) {
			for i := 0; i < 500; i++ {
				require.NoError(t, a.Toggle(cats[rng.Intn(len(cats))]))
				active := a.Active()
				require.NotEmpty(t, active)
				for _, c := range active {
					require.Contains(t, cats, c)
				}
				if a.Mode() == GroupedSolo {
					for _, g := range a.groups() {
						n := 0
						for _, c := range a.members(g) {
							if a.IsActive(c) {
								n++
							}
						}
						require.Positive(t, n, "group %q empty", g)
					}
				}
			}
		})
	}
}

func TestIsNodeVisible(t *testing.T) {
	active := NewActive(map[string][]string{
		"type":  {"creature", "instant"},
		"color": {"red"},
	})
	tests := []struct {
		name string
		c    Classification
		want bool
	}{
		{"all axes match", Classification{"type": {"creature"}, "color": {"red"}}, true},
		{"or within axis", Classification{"type": {"land", "instant"}}, true},
		{"and across axes", Classification{"type": {"creature"}, "color": {"blue"}}, false},
		{"multi color one active", Classification{"color": {"blue", "red"}}, true},
		{"unclassified", Classification{}, true},
		{"unknown axis ignored", Classification{"rarity": {"rare"}}, true},
		{"empty category list ignored", Classification{"color": {}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNodeVisible(tt.c, active))
		})
	}
}

func TestResolveEdgeDriven(t *testing.T) {
	g := EdgeGraph{
		Nodes: map[string]Classification{
			"api":   {"cls": {"service"}},
			"db":    {"cls": {"store"}},
			"cache": {"cls": {"store"}},
			"cdn":   {"cls": {"edge"}},
			"queue": {"cls": {"infra"}},
		},
		Edges: []EdgeRef{
			{ID: "e1", From: "api", To: "db"},
			{ID: "e2", From: "cache", To: "db"},
			{ID: "e3", From: "cdn", To: "queue"},
			{ID: "e4", From: "api", To: "ghost"},
		},
		Containers: []Container{
			{ID: "backend", Children: []string{"db", "cache"}},
			{ID: "outer", Children: []string{"backend", "queue"}},
			{ID: "edge", Children: []string{"cdn"}},
			{ID: "empty"},
		},
	}
	v := Resolve(g, NewActive(map[string][]string{"cls": {"service"}}))

	assert.True(t, v.Edges["e1"], "api is active")
	assert.False(t, v.Edges["e2"], "neither endpoint active")
	assert.False(t, v.Edges["e3"])
	assert.False(t, v.Edges["e4"], "dangling edge")

	assert.True(t, v.Nodes["api"])
	assert.True(t, v.Nodes["db"], "pulled in by a surviving edge")
	assert.False(t, v.Nodes["cache"])
	assert.False(t, v.Nodes["cdn"])
	assert.Equal(t, 2, v.VisibleNodes())

	assert.True(t, v.Containers["backend"])
	assert.True(t, v.Containers["outer"], "nested container survives")
	assert.False(t, v.Containers["edge"])
	assert.False(t, v.Containers["empty"])
}

func TestResolveContainerCycle(t *testing.T) {
	g := EdgeGraph{
		Nodes:      map[string]Classification{"n": {}},
		Containers: []Container{{ID: "a", Children: []string{"b"}}, {ID: "b", Children: []string{"a", "n"}}},
	}
	v := Resolve(g, Active{})
	assert.True(t, v.Containers["a"])
	assert.True(t, v.Containers["b"])
}

type fakeButton struct {
	cat    string
	active bool
	sets   int
}

func (b *fakeButton) Category() string { return b.cat }

func (b *fakeButton) SetActive(active bool) {
	b.active = active
	b.sets++
}

func TestControllerSyncsButtons(t *testing.T) {
	axis := mustAxis(t, "theme", []string{"A", "B", "C"})
	c, err := NewController([]*Axis{axis})
	require.NoError(t, err)

	btns := []*fakeButton{{cat: "A"}, {cat: "B"}, {cat: "C"}}
	all := &fakeButton{}
	require.NoError(t, c.Bind("theme", []Button{btns[0], btns[1], btns[2]}, all))
	assert.True(t, all.active)
	assert.False(t, btns[0].active)

	var changes []Change
	c.OnChange(func(ch Change) { changes = append(changes, ch) })

	require.NoError(t, c.Click("theme", "B"))
	assert.False(t, all.active)
	assert.False(t, btns[0].active)
	assert.True(t, btns[1].active)
	require.Len(t, changes, 1)
	assert.Equal(t, []string{"B"}, changes[0].Active)
	assert.Equal(t, Dynamic, changes[0].Mode)

	require.NoError(t, c.ClickAll("theme"))
	assert.True(t, all.active)
	assert.Len(t, changes, 2)

	assert.True(t, errors.Is(c.Click("nope", "A"), errors.ErrUnknownAxis))
	assert.True(t, errors.Is(c.Bind("theme", []Button{&fakeButton{cat: "Z"}}, nil), errors.ErrUnknownCategory))
}

func TestControllerWithoutAllButton(t *testing.T) {
	axis := mustAxis(t, "theme", []string{"A", "B"})
	c, err := NewController([]*Axis{axis})
	require.NoError(t, err)
	a, b := &fakeButton{cat: "A"}, &fakeButton{cat: "B"}
	require.NoError(t, c.Bind("theme", []Button{a, b}, nil))
	assert.True(t, a.active)
	assert.True(t, b.active)
}

func TestControllerLayoutMode(t *testing.T) {
	c, err := NewController([]*Axis{mustAxis(t, "k", []string{"x"})}, WithLayoutMode(Static))
	require.NoError(t, err)
	assert.Equal(t, Static, c.Mode())

	var got []Change
	c.OnChange(func(ch Change) { got = append(got, ch) })
	require.NoError(t, c.SetMode(Static))
	assert.Empty(t, got)
	require.NoError(t, c.SetMode(Dynamic))
	require.Len(t, got, 1)
	assert.True(t, got[0].ModeChanged)
	assert.Error(t, c.SetMode("wobbly"))

	m, err := ParseLayoutMode(" Dynamic ")
	require.NoError(t, err)
	assert.Equal(t, Dynamic, m)
	_, err = ParseLayoutMode("other")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestControllerDuplicateAxis(t *testing.T) {
	_, err := NewController([]*Axis{mustAxis(t, "k", []string{"x"}), mustAxis(t, "k", []string{"y"})})
	assert.Error(t, err)
}

func TestControllerActiveSnapshot(t *testing.T) {
	color := mustAxis(t, "color", []string{"red", "blue"})
	kind := mustAxis(t, "type", []string{"land", "spell"})
	c, err := NewController([]*Axis{color, kind})
	require.NoError(t, err)
	require.NoError(t, c.Click("color", "red"))

	assert.True(t, c.Visible(Classification{"color": {"red"}, "type": {"land"}}))
	assert.False(t, c.Visible(Classification{"color": {"blue"}}))

	snap := c.Active()
	require.NoError(t, c.Click("color", "red"))
	_, blue := snap["color"]["blue"]
	assert.False(t, blue, "snapshot is not live")

	c.Reset()
	assert.True(t, color.AllActive())
}
