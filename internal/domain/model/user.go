package model

import "time"

// User is a registered account. Password holds the encoded hash and is
// never serialized to clients.
type User struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Age       int       `json:"age,omitempty"`
	CreatedAt time.Time `json:"createAt"`
	UpdatedAt time.Time `json:"updateAt"`
}
