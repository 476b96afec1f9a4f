package server

import (
	"github.com/teranos/folio/geom"
	"github.com/teranos/folio/internal/version"
	"github.com/teranos/folio/render"
)

// Client to server message types.
const (
	msgHello      = "hello"
	msgDragStart  = "drag_start"
	msgDrag       = "drag"
	msgDragEnd    = "drag_end"
	msgWheel      = "wheel"
	msgTouchStart = "touch_start"
	msgTouchMove  = "touch_move"
	msgTouchEnd   = "touch_end"
	msgFilter     = "filter"
	msgMode       = "mode"
	msgHover      = "hover"
	msgFocus      = "focus"
	msgTour       = "tour"
	msgResize     = "resize"
)

// Server to client message types.
const (
	msgWelcome = "welcome"
	msgPatches = "patches"
)

// Event is one message from the browser. Only the fields its Type uses are set.
type Event struct {
	Type     string     `json:"type"`
	Protocol string     `json:"protocol,omitempty"`
	Width    float64    `json:"width,omitempty"`
	Height   float64    `json:"height,omitempty"`
	X        float64    `json:"x,omitempty"`
	Y        float64    `json:"y,omitempty"`
	DY       float64    `json:"dy,omitempty"`
	Touches  []geom.Vec `json:"touches,omitempty"`
	Axis     string     `json:"axis,omitempty"`
	Category string     `json:"category,omitempty"`
	Mode     string     `json:"mode,omitempty"`
	ID       string     `json:"id,omitempty"`
	On       bool       `json:"on,omitempty"`
	IDs      []string   `json:"ids,omitempty"`
	DwellMS  int        `json:"dwell_ms,omitempty"`
}

func (e *Event) point() geom.Vec { return geom.Vec{X: e.X, Y: e.Y} }

// motion events arrive in bursts; over the rate limit they are dropped
// without telling the client.
func (e *Event) motion() bool {
	switch e.Type {
	case msgDrag, msgWheel, msgTouchMove, msgHover:
		return true
	}
	return false
}

type welcomeMessage struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id"`
	Instance string `json:"instance"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	Protocol string `json:"protocol"`
}

type patchesMessage struct {
	Type    string         `json:"type"`
	Patches []render.Patch `json:"patches"`
}

func protocolVersion() string { return version.Protocol }
