package server

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/teranos/folio/anim"
	"github.com/teranos/folio/errors"
	"github.com/teranos/folio/logger"
	"github.com/teranos/folio/render"
	"github.com/teranos/folio/viz"
	"go.uber.org/zap"
)

// hosted is one instance and the clients watching it. After Host returns,
// everything except loop and the immutable fields is owned by the loop.
type hosted struct {
	server *Server
	inst   *viz.Instance
	loop   *anim.Loop
	logger *zap.SugaredLogger

	clients map[*Client]bool
}

func newHosted(s *Server, inst *viz.Instance) *hosted {
	return &hosted{
		server:  s,
		inst:    inst,
		loop:    inst.Loop(),
		logger:  logger.ChildLogger(s.logger, logger.FieldViz, inst.Name(), logger.FieldInstanceID, inst.ID()),
		clients: make(map[*Client]bool),
	}
}

// do runs fn on the loop and waits for it. It fails if ctx ends or the
// server shuts down first.
func (h *hosted) do(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	h.loop.Post(func() { done <- fn() })
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for visualization loop")
	case <-h.server.ctx.Done():
		return errors.Wrap(errors.ErrClosed, "server is shutting down")
	}
}

// flushEvery posts a document flush once per interval.
func (h *hosted) flushEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.loop.Post(h.flush)
		}
	}
}

// flush sends pending document changes to every client. Loop only.
func (h *hosted) flush() {
	patches := h.inst.Document().Flush()
	if len(patches) == 0 {
		return
	}
	h.broadcast(patchesMessage{Type: msgPatches, Patches: patches})
}

func (h *hosted) broadcast(msg interface{}) {
	for c := range h.clients {
		c.queue(msg)
	}
}

// register adds c and sends it the whole document. The pending Flush is
// drained first so c never sees a patch twice. Loop only.
func (h *hosted) register(c *Client) {
	h.flush()
	c.queue(welcomeMessage{
		Type:     msgWelcome,
		ClientID: c.id,
		Instance: h.inst.ID(),
		Name:     h.inst.Name(),
		Title:    h.inst.Title(),
		Protocol: protocolVersion(),
	})
	c.queue(patchesMessage{Type: msgPatches, Patches: h.inst.Document().Full()})
	h.clients[c] = true
	h.logger.Debugw("Client registered", logger.FieldClientID, c.id, logger.FieldCount, len(h.clients))
}

// unregister removes c. Loop only.
func (h *hosted) unregister(c *Client) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	h.logger.Debugw("Client unregistered", logger.FieldClientID, c.id, logger.FieldCount, len(h.clients))
}

// page renders the instance as a live page.
func (h *hosted) page(ctx context.Context, width, height int) ([]byte, error) {
	var out []byte
	err := h.do(ctx, func() error {
		var buf bytes.Buffer
		if err := h.inst.Document().WriteHTML(&buf, render.PageOptions{
			Title:  h.inst.Title(),
			Width:  width,
			Height: height,
			Socket: "/ws?viz=" + h.inst.Name(),
		}); err != nil {
			return err
		}
		out = buf.Bytes()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// layout encodes the settled graph snapshot.
func (h *hosted) layout(ctx context.Context) ([]byte, error) {
	var out []byte
	err := h.do(ctx, func() error {
		g := h.inst.Graph()
		if g == nil {
			if err := h.inst.Err(); err != nil {
				return errors.Wrap(err, "visualization failed to build")
			}
			return errors.Wrapf(errors.ErrNotReady, "visualization %q is still loading", h.inst.Name())
		}
		data, err := json.Marshal(g.Snapshot())
		if err != nil {
			return errors.Wrap(err, "failed to encode layout")
		}
		out = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
