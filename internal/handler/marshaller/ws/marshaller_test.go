package wsmarshaller

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/talkbase/chat-service/internal/domain/event"
	"github.com/talkbase/chat-service/internal/domain/model"
)

func TestMarshalDeliveryEvent_Chat_Message_Frame(t *testing.T) {
	req := require.New(t)

	msg := &model.Message{ID: 9, ChatID: 7, SenderID: 1, Text: "hi", CreatedAt: time.Now()}
	ev := event.NewMessageEvent(msg, 2, "alice")

	data, err := MarshalDeliveryEvent(ev)
	req.NoError(err)

	var frame struct {
		Event string `json:"event"`
		Data  string `json:"data"`
	}
	req.NoError(json.Unmarshal(data, &frame))
	req.Equal(EventChatMessage, frame.Event)
	req.Equal("alice: hi", frame.Data)
}

func TestMarshalDeliveryEvent_Memoizes(t *testing.T) {
	req := require.New(t)

	msg := &model.Message{ID: 9, ChatID: 7, SenderID: 1, Text: "hi", CreatedAt: time.Now()}
	ev := event.NewMessageEvent(msg, 2, "alice")

	first, err := MarshalDeliveryEvent(ev)
	req.NoError(err)

	// A second render returns the cached bytes even if the event mutated.
	ev.Message.Text = "changed"
	second, err := MarshalDeliveryEvent(ev)
	req.NoError(err)
	req.Equal(first, second)
}

func TestMarshalDeliveryEvent_Connected_Frame(t *testing.T) {
	req := require.New(t)

	ev := event.NewSystemEvent(42, event.Connected, event.PriorityNormal, &model.ConnectedPayload{
		Ok:            true,
		ConnectionID:  "c-1",
		ServerVersion: model.ServerVersion,
	})

	data, err := MarshalDeliveryEvent(ev)
	req.NoError(err)

	var frame struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	req.NoError(json.Unmarshal(data, &frame))
	req.Equal(EventConnected, frame.Event)
	req.Equal(true, frame.Data["ok"])
	req.Equal("c-1", frame.Data["connection_id"])
}

func TestMarshalAck_Failure_Shape(t *testing.T) {
	req := require.New(t)

	var frame struct {
		Event string `json:"event"`
		Data  struct {
			Ok    bool   `json:"ok"`
			Error string `json:"error"`
		} `json:"data"`
	}
	req.NoError(json.Unmarshal(MarshalAck(false, "boom"), &frame))
	req.Equal(EventAck, frame.Event)
	req.False(frame.Data.Ok)
	req.Equal("boom", frame.Data.Error)
}
