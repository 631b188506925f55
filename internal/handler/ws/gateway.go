package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/talkbase/chat-service/internal/domain/event"
	"github.com/talkbase/chat-service/internal/domain/model"
	"github.com/talkbase/chat-service/internal/domain/registry"
	wsmarshaller "github.com/talkbase/chat-service/internal/handler/marshaller/ws"
	"github.com/talkbase/chat-service/internal/service"
	"github.com/talkbase/chat-service/internal/session"
)

const handshakeSendTimeout = 2 * time.Second

type Gateway struct {
	logger     *slog.Logger
	deliverer  service.Deliverer
	auth       service.Auther
	dispatcher service.Dispatcher
	directory  session.Directory
	upgrader   websocket.Upgrader
}

func NewGateway(
	logger *slog.Logger,
	deliverer service.Deliverer,
	auth service.Auther,
	dispatcher service.Dispatcher,
	directory session.Directory,
) *Gateway {
	return &Gateway{
		logger:     logger,
		deliverer:  deliverer,
		auth:       auth,
		dispatcher: dispatcher,
		directory:  directory,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // Security: adjust for production
		},
	}
}

// clientFrame is one inbound envelope; Data stays raw until the event
// name tells us its shape.
type clientFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type authenticateData struct {
	JWT string `json:"jwt"`
}

type chatMessageData struct {
	ChatID int64  `json:"chatId"`
	Msg    string `json:"msg"`
}

// wsSession is the per-socket state. A socket is anonymous until a valid
// authenticate frame arrives; anonymous sockets can read but produce nothing.
type wsSession struct {
	userID int64
	conn   registry.Connector
	done   chan struct{}
}

func (h *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	// Single writer goroutine: gorilla allows one concurrent writer only.
	sendCh := make(chan []byte, 64)
	go func() {
		for data := range sendCh {
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Warn("ws send failed", "error", err)
				return
			}
		}
	}()

	var sess *wsSession
	defer func() {
		h.teardown(sess)
		close(sendCh)
	}()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.logger.Debug("undecodable ws frame", "error", err)
			continue
		}

		switch frame.Event {
		case wsmarshaller.EventAuthenticate:
			sess = h.onAuthenticate(r.Context(), sess, frame.Data, sendCh)

		case wsmarshaller.EventChatMessage:
			h.onChatMessage(r.Context(), sess, frame.Data, sendCh)

		default:
			h.logger.Debug("unknown ws event", "event", frame.Event)
		}
	}
}

// reply queues a frame for the writer without blocking the read loop. The
// writer goroutine may already be gone after a write error, so a full buffer
// sheds the frame instead of wedging the socket.
func (h *Gateway) reply(sendCh chan<- []byte, data []byte) {
	select {
	case sendCh <- data:
	default:
		h.logger.Warn("ws writer saturated, reply dropped")
	}
}

// onAuthenticate binds the socket to a user. On a repeated authenticate the
// previous binding is torn down first, so one socket never holds two seats.
func (h *Gateway) onAuthenticate(ctx context.Context, prev *wsSession, data json.RawMessage, sendCh chan<- []byte) *wsSession {
	var payload authenticateData
	if err := json.Unmarshal(data, &payload); err != nil {
		return prev
	}

	userID, err := h.auth.VerifyToken(payload.JWT)
	if err != nil {
		// The socket stays open; the client may retry with a fresh token.
		h.logger.Debug("ws authenticate rejected", "error", err)
		return prev
	}

	h.teardown(prev)

	conn, err := h.deliverer.Subscribe(ctx, userID)
	if err != nil {
		h.logger.Error("ws subscribe failed", "user_id", userID, "error", err)
		h.reply(sendCh, wsmarshaller.MarshalAck(false, "subscription failed"))
		return nil
	}

	if err := h.directory.Bind(ctx, conn.GetID(), userID); err != nil {
		// Push delivery needs the directory entry; without it the socket
		// would look offline to every fan-out, so refuse the seat.
		h.logger.Error("session bind failed", "user_id", userID, "error", err)
		h.deliverer.Unsubscribe(userID, conn.GetID())
		h.reply(sendCh, wsmarshaller.MarshalAck(false, "session directory unavailable"))
		return nil
	}

	sess := &wsSession{userID: userID, conn: conn, done: make(chan struct{})}
	go h.pump(sess, sendCh)

	conn.Send(event.NewSystemEvent(userID, event.Connected, event.PriorityNormal, &model.ConnectedPayload{
		Ok:            true,
		ConnectionID:  conn.GetID().String(),
		ServerVersion: model.ServerVersion,
	}), handshakeSendTimeout)

	h.logger.Info("ws opened", "user_id", userID, "conn_id", conn.GetID())
	return sess
}

// onChatMessage dispatches one message. Frames from anonymous sockets are
// dropped without a reply.
func (h *Gateway) onChatMessage(ctx context.Context, sess *wsSession, data json.RawMessage, sendCh chan<- []byte) {
	if sess == nil {
		return
	}

	// The directory is authoritative for the binding; a stale or unbound
	// seat drops the frame without a reply.
	userID, bound, err := h.directory.ResolveUser(ctx, sess.conn.GetID())
	if err != nil || !bound {
		h.logger.Debug("chat message from unresolved connection", "conn_id", sess.conn.GetID(), "error", err)
		return
	}

	var payload chatMessageData
	if err := json.Unmarshal(data, &payload); err != nil {
		h.reply(sendCh, wsmarshaller.MarshalAck(false, "malformed chat message"))
		return
	}

	if err := h.dispatcher.Dispatch(ctx, userID, payload.ChatID, payload.Msg); err != nil {
		h.logger.Debug("dispatch rejected", "user_id", userID, "chat_id", payload.ChatID, "error", err)
		h.reply(sendCh, wsmarshaller.MarshalAck(false, err.Error()))
	}
	// Success is silent; the sender sees the message via fan-out like
	// every other subscriber.
}

// pump forwards hub events onto the socket until the connector closes.
func (h *Gateway) pump(sess *wsSession, sendCh chan<- []byte) {
	defer close(sess.done)

	// Capture the channel once: Close() nils the connector's internal
	// channel before the pooled object is reused.
	recvCh := sess.conn.Recv()
	for ev := range recvCh {
		data, err := wsmarshaller.MarshalDeliveryEvent(ev)
		if err != nil {
			h.logger.Error("failed to marshal ws event", "error", err)
			continue
		}

		select {
		case sendCh <- data:
		default:
			// Writer stalled; losing one push beats blocking the pump.
			h.logger.Warn("ws writer saturated, event dropped", "user_id", sess.userID)
		}
	}
}

// teardown releases the directory entry and the hub seat. Safe on nil.
func (h *Gateway) teardown(sess *wsSession) {
	if sess == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	// Unsubscribe closes the pooled connector, so the id must be read
	// before the seat is released.
	connID := sess.conn.GetID()

	if err := h.directory.Unbind(ctx, connID); err != nil {
		h.logger.Warn("session unbind failed", "conn_id", connID, "error", err)
	}
	h.deliverer.Unsubscribe(sess.userID, connID)
	<-sess.done

	h.logger.Info("ws closed", "user_id", sess.userID, "conn_id", connID)
}
