package storage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/talkbase/chat-service/internal/domain/model"
)

func TestStore_Append_And_Get_Message(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)

	msg := &model.Message{ChatID: 7, SenderID: 1, Text: "hi"}
	req.NoError(store.AppendMessage(msg))
	req.NotZero(msg.ID)

	got, err := store.GetMessage(msg.ID)
	req.NoError(err)
	req.Equal("hi", got.Text)
	req.EqualValues(7, got.ChatID)

	_, err = store.GetMessage(9999)
	req.ErrorIs(err, ErrMessageNotFound)
}

func TestStore_Update_Message(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)

	msg := &model.Message{ChatID: 7, SenderID: 1, Text: "hi"}
	req.NoError(store.AppendMessage(msg))

	msg.Text = "edited"
	req.NoError(store.UpdateMessage(msg))

	got, err := store.GetMessage(msg.ID)
	req.NoError(err)
	req.Equal("edited", got.Text)
	req.True(got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))
}

func TestStore_Delete_Message(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)

	msg := &model.Message{ChatID: 7, SenderID: 1, Text: "hi"}
	req.NoError(store.AppendMessage(msg))
	req.NoError(store.DeleteMessage(msg.ID))

	_, err := store.GetMessage(msg.ID)
	req.ErrorIs(err, ErrMessageNotFound)

	req.ErrorIs(store.DeleteMessage(msg.ID), ErrMessageNotFound)
}

func TestStore_Messages_By_Chat_Ordered_Page(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)

	for i := range 5 {
		req.NoError(store.AppendMessage(&model.Message{
			ChatID: 7, SenderID: 1, Text: fmt.Sprintf("m%d", i),
		}))
	}
	// History of another chat must not bleed in.
	req.NoError(store.AppendMessage(&model.Message{ChatID: 8, SenderID: 1, Text: "other"}))

	page, err := store.MessagesByChat(7, 1, 2)
	req.NoError(err)
	req.Len(page, 2)
	req.Equal("m1", page[0].Text)
	req.Equal("m2", page[1].Text)

	all, err := store.MessagesByChat(7, 0, 0)
	req.NoError(err)
	req.Len(all, 5)
	for i, m := range all {
		req.Equal(fmt.Sprintf("m%d", i), m.Text)
	}
}
