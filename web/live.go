package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"nomadguide/live"
	"nomadguide/logging"
)

const (
	liveWriteTimeout = 10 * time.Second
	livePingInterval = 30 * time.Second
)

type liveHandler struct {
	recomputer *live.Recomputer
	upgrader   websocket.Upgrader
}

func newLiveHandler(r *live.Recomputer, isDev bool) *liveHandler {
	h := &liveHandler{
		recomputer: r,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if isDev {
		// allow all origins, dev only
		h.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}
	return h
}

// stream pushes the trip summary to the client after every change until
// either side goes away or the trip is deleted.
func (h *liveHandler) stream(c *gin.Context) {
	tripID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	updates, err := h.recomputer.Watch(ctx, tripID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already replied
		return
	}
	defer conn.Close()

	log := logging.FromContext(ctx).With("trip_id", tripID)
	log.Debug("live stream opened")

	// Client messages are ignored; reading is how a close is noticed.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(livePingInterval)
	defer ticker.Stop()
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return
			}
			if !writeUpdate(conn, u, log) {
				return
			}
			if u.Deleted {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "trip deleted"),
					time.Now().Add(liveWriteTimeout))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteTimeout)); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func writeUpdate(conn *websocket.Conn, u live.Update, log *slog.Logger) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	if err := conn.WriteJSON(u); err != nil {
		log.Debug("live stream write failed", "error", err)
		return false
	}
	return true
}
