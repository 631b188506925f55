package wsmarshaller

import (
	"encoding/json"
	"fmt"

	"github.com/talkbase/chat-service/internal/domain/event"
	"github.com/talkbase/chat-service/internal/domain/model"
)

// Frame is the envelope for every WebSocket message, both directions.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

const (
	EventAuthenticate = "authenticate"
	EventChatMessage  = "chat message"
	EventConnected    = "connected"
	EventAck          = "ack"
)

// MarshalDeliveryEvent prepares a domain event for WebSocket transmission.
//
// The rendered bytes are memoized on the event so a reconnect replay or a
// multi-tab recipient does not pay for the same marshal twice.
func MarshalDeliveryEvent(ev event.Eventer) ([]byte, error) {
	if cached, ok := ev.GetCached().([]byte); ok {
		return cached, nil
	}

	frame := &Frame{}

	switch e := ev.(type) {
	case *event.MessageEvent:
		frame.Event = EventChatMessage
		// Clients render chat traffic as a single prefixed line.
		frame.Data = fmt.Sprintf("%s: %s", e.SenderName, e.Message.Text)
	default:
		switch p := ev.GetPayload().(type) {
		case *model.ConnectedPayload:
			frame.Event = EventConnected
			frame.Data = p
		default:
			return nil, fmt.Errorf("no wire form for event kind %v", ev.GetKind())
		}
	}

	data, err := json.Marshal(frame)
	if err != nil {
		return nil, err
	}
	ev.SetCached(data)
	return data, nil
}

// MarshalAck reports a failed client command back on the same socket.
func MarshalAck(ok bool, detail string) []byte {
	data, _ := json.Marshal(&Frame{
		Event: EventAck,
		Data: map[string]any{
			"ok":    ok,
			"error": detail,
		},
	})
	return data
}
