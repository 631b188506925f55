package model

import (
	"slices"
	"time"
)

type ChatType string

const (
	ChatPV    ChatType = "pv"
	ChatGroup ChatType = "group"
	ChatBot   ChatType = "bot"
)

func (t ChatType) Valid() bool {
	switch t {
	case ChatPV, ChatGroup, ChatBot:
		return true
	}
	return false
}

// Chat is a conversation. Subscribers holds user ids only; the entities
// behind them are resolved through explicit store lookups, never through
// embedded object graphs.
type Chat struct {
	ID          int64     `json:"id"`
	Name        string    `json:"username,omitempty"`
	Type        ChatType  `json:"type"`
	CreatorID   int64     `json:"createBy"`
	Subscribers []int64   `json:"subscriptions"`
	CreatedAt   time.Time `json:"createAt"`
	UpdatedAt   time.Time `json:"updateAt"`
}

func (c *Chat) IsSubscriber(userID int64) bool {
	return slices.Contains(c.Subscribers, userID)
}

// Subscribe adds userID to the subscription set. Reports whether the set
// changed.
func (c *Chat) Subscribe(userID int64) bool {
	if c.IsSubscriber(userID) {
		return false
	}
	c.Subscribers = append(c.Subscribers, userID)
	return true
}

// Unsubscribe removes userID from the subscription set. Reports whether
// the user was a member.
func (c *Chat) Unsubscribe(userID int64) bool {
	i := slices.Index(c.Subscribers, userID)
	if i < 0 {
		return false
	}
	c.Subscribers = slices.Delete(c.Subscribers, i, i+1)
	return true
}
