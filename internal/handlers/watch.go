package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checking is handled by middleware
		return true
	},
}

const (
	// How often the store is polled for a fresh results view
	watchInterval = 2 * time.Second
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
)

// WatchResults streams the disclosure-filtered results view over a
// WebSocket, pushing a new frame whenever the view changes. The filter is
// the same one GET results applies, evaluated per poll, so a watcher never
// sees more than a poller would.
func (h *Handler) WatchResults(c *gin.Context) {
	code := c.Param("code")
	token := c.Query("token")

	// Validate room and credential before upgrading
	first, err := h.rooms.Results(c.Request.Context(), code, token)
	if err != nil {
		writeError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("failed to upgrade connection")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	go h.readPump(conn, cancel)
	go h.writePump(ctx, conn, code, token, first)
}

// readPump discards client frames and tears the watch down when the client
// goes away.
func (h *Handler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) writePump(ctx context.Context, conn *websocket.Conn, code, token string, first interface{}) {
	ticker := time.NewTicker(watchInterval)
	pinger := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		pinger.Stop()
		conn.Close()
	}()

	last, err := json.Marshal(first)
	if err != nil {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, last); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-pinger.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ticker.C:
			res, err := h.rooms.Results(ctx, code, token)
			if err != nil {
				// Room expired or was deleted; tell the client and stop
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "room gone"))
				return
			}

			next, err := json.Marshal(res)
			if err != nil {
				return
			}
			if bytes.Equal(next, last) {
				continue
			}

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, next); err != nil {
				return
			}
			last = next
		}
	}
}
