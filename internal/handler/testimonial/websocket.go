package testimonial

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zhouzirui/showcase/backend/internal/service/broadcast"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 54 * time.Second
)

type inboundMessage struct {
	Type      string `json:"type"`
	Direction string `json:"direction"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// handleWebSocket 通过WebSocket推送渲染事件，并接受页面按钮的轮换请求
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe()
	defer sub.Close()

	log := h.logger.With(zap.String("subscriber", sub.ID), zap.String("transport", "websocket"))
	log.Debug("carousel websocket opened")

	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	// gorilla/websocket allows one concurrent writer: the reader goroutine
	// hands replies to this loop instead of writing itself.
	replies := make(chan outgoingMessage, 4)
	readerDone := make(chan struct{})
	go h.readLoop(conn, replies, readerDone, log)

	if err := h.write(conn, outgoingMessage{Type: "snapshot", Data: h.engine.Snapshot()}); err != nil {
		return
	}

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-readerDone:
			log.Debug("carousel websocket closed")
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := h.write(conn, eventMessage(event)); err != nil {
				log.Debug("carousel websocket write failed", zap.Error(err))
				return
			}
		case reply := <-replies:
			if err := h.write(conn, reply); err != nil {
				log.Debug("carousel websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) readLoop(conn *websocket.Conn, replies chan<- outgoingMessage, done chan<- struct{}, log *zap.Logger) {
	defer close(done)

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("carousel websocket read error", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		reply := h.handleInbound(msg)
		select {
		case replies <- reply:
		default:
			log.Debug("carousel websocket reply dropped", zap.String("type", reply.Type))
		}
	}
}

func (h *Handler) handleInbound(msg inboundMessage) outgoingMessage {
	switch msg.Type {
	case "rotate":
		direction, ok := parseManualDirection(msg.Direction)
		if !ok {
			return errorMessage("direction must be next or previous")
		}
		outcome := h.engine.Replace(direction)
		return outgoingMessage{
			Type: "rotate-result",
			Data: rotateResponse{Outcome: outcome, Direction: direction},
		}
	case "snapshot":
		return outgoingMessage{Type: "snapshot", Data: h.engine.Snapshot()}
	default:
		return errorMessage("unsupported message type")
	}
}

func (h *Handler) write(conn *websocket.Conn, msg outgoingMessage) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().Unix()
	}
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(msg)
}

func eventMessage(event broadcast.Event) outgoingMessage {
	return outgoingMessage{
		Type:      string(event.Type),
		Data:      event,
		Timestamp: event.Timestamp.Unix(),
	}
}

func errorMessage(message string) outgoingMessage {
	return outgoingMessage{
		Type: "error",
		Data: map[string]string{"message": message},
	}
}
