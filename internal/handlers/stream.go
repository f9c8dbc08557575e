package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS middleware already decides which origins may call the API
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamMessages pushes every message posted to the group after the
// connection opens. Clients load history through ListMessages.
func (h HandlerSet) StreamMessages(c *gin.Context) {
	groupID := c.Param("id")
	if err := h.svc.Groups.Exists(c.Request.Context(), groupID); err != nil {
		h.respondError(c, err)
		return
	}

	sub, err := h.deps.Stream.Subscribe(c.Request.Context(), groupID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer sub.Close()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the failure response
		h.log.Warn().Err(err).Str("group_id", groupID).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.With().Str("group_id", groupID).Str("user_id", principal(c).UserID).Logger()
	log.Debug().Msg("stream opened")

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		readPump(conn)
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	messages := sub.Messages()
	for {
		select {
		case <-closed:
			log.Debug().Msg("stream closed by client")
			return
		case msg, ok := <-messages:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client frames; it only keeps pong deadlines moving and
// notices when the peer goes away.
func readPump(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
