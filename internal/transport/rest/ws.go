package rest

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"smartqueue/backend/internal/notify"
	"smartqueue/backend/internal/notify/hub"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type wsMessage struct {
	Topic   string `json:"topic"`
	Payload string `json:"payload"`
}

type wsHandler struct {
	hub *hub.Hub
	log *slog.Logger
}

// wsTopics accepts queue-update and notify/<uuid>, either as topic values or
// as a bare id. Anything else is rejected.
func wsTopics(c *gin.Context) ([]string, bool) {
	var topics []string
	for _, t := range c.QueryArray("topic") {
		t = strings.TrimSpace(t)
		switch {
		case t == notify.TopicQueueUpdate:
		case strings.HasPrefix(t, "notify/"):
			id, err := uuid.Parse(strings.TrimPrefix(t, "notify/"))
			if err != nil {
				return nil, false
			}
			t = notify.TurnTopic(id)
		default:
			return nil, false
		}
		topics = append(topics, t)
	}
	if raw := strings.TrimSpace(c.Query("id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, false
		}
		topics = append(topics, notify.TurnTopic(id))
	}
	if len(topics) == 0 {
		topics = []string{notify.TopicQueueUpdate}
	}
	return topics, true
}

func (h *wsHandler) subscribe(c *gin.Context) {
	topics, ok := wsTopics(c)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unsupported topic"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", slog.Any("err", err))
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe(topics...)
	defer h.hub.Unsubscribe(sub)
	h.log.Debug("websocket subscribed", slog.Any("topics", topics))

	// The read loop only exists to notice the peer going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(wsMessage{Topic: ev.Topic, Payload: ev.Payload}); err != nil {
				h.log.Debug("websocket write failed", slog.Any("err", err))
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
