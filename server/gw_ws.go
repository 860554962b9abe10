package server

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"onenight/game"
)

// eventHub fans one room's engine events out to its listeners. publish
// is called with the engine lock held, so it must never block: slow
// listeners lose events instead.
type eventHub struct {
	mu     sync.Mutex
	subs   map[chan game.Event]struct{}
	closed bool
}

func newEventHub() *eventHub {
	return &eventHub{subs: map[chan game.Event]struct{}{}}
}

func (h *eventHub) publish(ev game.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *eventHub) subscribe() chan game.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan game.Event, 32)
	if h.closed {
		close(ch)
		return ch
	}
	h.subs[ch] = struct{}{}
	return ch
}

func (h *eventHub) unsubscribe(ch chan game.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

func (h *eventHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}

type eventsHandler struct {
	server *Server
	log    zerolog.Logger
}

// serveWS streams a room's narrator events until the client goes away.
func (eh *eventsHandler) serveWS(c *gin.Context) {
	code := c.Query("room")
	if code == "" {
		c.String(400, "missing room")
		return
	}

	r, err := eh.server.getRoom(c.Request.Context(), code)
	if err != nil {
		c.String(404, "no such room")
		return
	}

	log := eh.log.With().Str("room", code).Str("client", c.Request.RemoteAddr).Logger()

	socket, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Info().Err(err).Msg("websocket accept error")
		return
	}
	defer socket.Close(websocket.StatusInternalError, "going away")

	log.Info().Msg("event listener connected")

	ch := r.events.subscribe()
	defer r.events.unsubscribe(ch)

	ctx := c.Request.Context()
	go func() {
		// the only reads we expect are close frames
		for {
			if _, _, err := socket.Read(ctx); err != nil {
				r.events.unsubscribe(ch)
				return
			}
		}
	}()

	for ev := range ch {
		if err := wsjson.Write(ctx, socket, ev); err != nil {
			log.Info().Err(err).Msg("event send error")
			return
		}
	}
	socket.Close(websocket.StatusNormalClosure, "room closed")
}
