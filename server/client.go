package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/teranos/folio/errors"
	"github.com/teranos/folio/filter"
	grapherr "github.com/teranos/folio/graph/error"
	"github.com/teranos/folio/internal/version"
	"github.com/teranos/folio/logger"
	"github.com/teranos/folio/viz"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Browser events are small
	maxMessageSize = 64 * 1024

	sendBuffer   = 256
	defaultDwell = 1500 * time.Millisecond
)

// Client is one browser connection watching a hosted instance.
type Client struct {
	hosted  *hosted
	conn    *websocket.Conn
	send    chan interface{}
	id      string
	limiter *rate.Limiter
	logger  *zap.SugaredLogger

	mu     sync.Mutex
	closed bool

	// readPump only
	greeted bool
}

func newClient(h *hosted, conn *websocket.Conn, eventsPerSecond float64) *Client {
	id := uuid.NewString()
	burst := int(eventsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		hosted:  h,
		conn:    conn,
		send:    make(chan interface{}, sendBuffer),
		id:      id,
		limiter: rate.NewLimiter(rate.Limit(eventsPerSecond), burst),
		logger:  logger.ChildLogger(h.logger, logger.FieldClientID, id),
	}
}

// handleWebSocket upgrades a preview connection for the visualization named
// by the viz query parameter.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	h, err := s.lookup(r.URL.Query().Get("viz"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if !s.acquireConn() {
		writeError(w, http.StatusServiceUnavailable, errors.Newf("too many preview connections (max %d)", MaxClients))
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.releaseConn()
		ge := grapherr.New(grapherr.CategoryWebSocket, err, "").WithSubcategory(grapherr.SubcategoryWSUpgrade)
		s.logger.Warnw("WebSocket upgrade failed", ge.ToLogFields()...)
		return
	}

	c := newClient(h, conn, s.cfg.Server.EventsPerSecond)
	c.logger.Debugw("Client connected", "remote", r.RemoteAddr)
	go c.writePump()
	go c.readPump()
}

// queue hands msg to the write pump. A client whose buffer is full is
// disconnected.
func (c *Client) queue(msg interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		c.logger.Warnw("Send buffer full, dropping client")
		c.closed = true
		close(c.send)
	}
}

// close stops the write pump once queued messages are written.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) readPump() {
	s := c.hosted.server
	defer func() {
		c.hosted.loop.Post(func() { c.hosted.unregister(c) })
		c.close()
		c.conn.Close()
		s.releaseConn()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			c.sendError(grapherr.New(grapherr.CategoryProtocol, errors.Wrap(err, "invalid event JSON"), "").
				WithSubcategory(grapherr.SubcategoryProtocolDecode))
			continue
		}
		c.route(&ev)
	}
}

func (c *Client) handleReadError(err error) {
	if websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseNoStatusReceived,
	) {
		ge := grapherr.New(grapherr.CategoryWebSocket, err, "WebSocket connection closed unexpectedly").
			WithSubcategory(grapherr.SubcategoryWSRead)
		c.logger.Warnw("WebSocket read error", ge.ToLogFields()...)
	}
}

// route runs on the read pump. The handshake is checked here; everything
// else is posted to the instance loop.
func (c *Client) route(ev *Event) {
	if !c.greeted {
		c.hello(ev)
		return
	}
	if ev.Type == msgHello {
		c.sendError(grapherr.Newf(grapherr.CategoryProtocol, "", "duplicate hello").
			WithSubcategory(grapherr.SubcategoryProtocolHello))
		return
	}
	if !c.limiter.Allow() {
		if !ev.motion() {
			c.sendError(grapherr.Newf(grapherr.CategoryEvent, "", "event %q over the rate limit", ev.Type).
				WithSubcategory(grapherr.SubcategoryEventRateLimited))
		}
		return
	}
	c.hosted.loop.Post(func() {
		if c.isClosed() {
			return
		}
		if err := c.dispatch(ev); err != nil {
			c.sendError(grapherr.Classify(err))
		}
	})
}

func (c *Client) hello(ev *Event) {
	if ev.Type != msgHello {
		c.sendError(grapherr.Newf(grapherr.CategoryProtocol, "", "expected hello, got %q", ev.Type).
			WithSubcategory(grapherr.SubcategoryProtocolHello))
		return
	}
	if err := version.CheckProtocol(ev.Protocol); err != nil {
		c.sendError(grapherr.New(grapherr.CategoryProtocol, err, "").
			WithSubcategory(grapherr.SubcategoryProtocolVersion))
		c.close()
		return
	}
	c.greeted = true
	h := c.hosted
	h.loop.Post(func() {
		if c.isClosed() {
			return
		}
		if ev.Width > 0 && ev.Height > 0 {
			h.inst.SetViewport(ev.Width, ev.Height)
		}
		h.register(c)
	})
}

// dispatch applies one event. Loop only.
func (c *Client) dispatch(ev *Event) error {
	inst := c.hosted.inst
	cam := inst.Camera()
	switch ev.Type {
	case msgDragStart:
		cam.BeginDrag(ev.point())
	case msgDrag:
		cam.DragTo(ev.point())
	case msgDragEnd:
		cam.EndDrag()
	case msgWheel:
		cam.Wheel(ev.DY, ev.X, ev.Y)
	case msgTouchStart:
		cam.TouchStart(ev.Touches)
	case msgTouchMove:
		cam.TouchMove(ev.Touches)
	case msgTouchEnd:
		cam.TouchEnd(ev.Touches)
	case msgFilter:
		return inst.Click(ev.Axis, ev.Category)
	case msgMode:
		return inst.SetMode(filter.LayoutMode(ev.Mode))
	case msgHover:
		return inst.Hover(ev.ID, ev.On)
	case msgFocus:
		return inst.Focus(graphID(ev.ID))
	case msgTour:
		ids := make([]string, len(ev.IDs))
		for i, id := range ev.IDs {
			ids[i] = graphID(id)
		}
		dwell := defaultDwell
		if ev.DwellMS > 0 {
			dwell = time.Duration(ev.DwellMS) * time.Millisecond
		}
		return inst.Tour(ids, dwell)
	case msgResize:
		if ev.Width <= 0 || ev.Height <= 0 {
			return errors.Wrapf(errors.ErrInvalidRequest, "viewport %gx%g", ev.Width, ev.Height)
		}
		inst.SetViewport(ev.Width, ev.Height)
	default:
		return grapherr.Newf(grapherr.CategoryEvent, "", "unknown event type %q", ev.Type).
			WithSubcategory(grapherr.SubcategoryEventUnknown)
	}
	return nil
}

func graphID(id string) string {
	if gid, ok := viz.GraphID(id); ok {
		return gid
	}
	return id
}

func (c *Client) sendError(ge *grapherr.GraphError) {
	ge = ge.WithContext("instance", c.hosted.inst.ID())
	c.logger.Debugw("Event rejected", ge.ToLogFields()...)
	c.queue(ge.ToMessage())
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	done := c.hosted.server.ctx.Done()
	for {
		select {
		case <-done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				ge := grapherr.New(grapherr.CategoryWebSocket, err, "Failed to send to client").
					WithSubcategory(grapherr.SubcategoryWSWrite)
				c.logger.Warnw("WebSocket write error", ge.ToLogFields()...)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
