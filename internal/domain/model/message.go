package model

import "time"

// Message is a persisted chat message. Sender and chat are id references;
// both existed and the sender was a subscriber at creation time.
type Message struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chatId"`
	SenderID  int64     `json:"senderId"`
	Text      string    `json:"context"`
	CreatedAt time.Time `json:"createAt"`
	UpdatedAt time.Time `json:"updateAt"`
}
