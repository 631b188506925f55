package service

import "errors"

var (
	// ErrAuthFailure covers invalid, expired, or malformed tokens and bad
	// login credentials. Socket handlers recover locally from it.
	ErrAuthFailure = errors.New("authentication failed")

	// ErrNotSubscriber means the acting user is not a member of the target
	// chat. A missing chat reduces to the same failure on the dispatch path.
	ErrNotSubscriber = errors.New("user is not a subscriber of the chat")

	// ErrAlreadyMember guards duplicate subscriptions.
	ErrAlreadyMember = errors.New("user is already a member")

	// ErrNotMember is returned when unsubscribing a user who never joined.
	ErrNotMember = errors.New("user has not joined the chat")

	// ErrCreatorCannotLeave protects the creator's membership in non-pv chats.
	ErrCreatorCannotLeave = errors.New("the creator of the chat can not leave the chat")

	// ErrForbidden means the acting user is not authorized for the mutation.
	ErrForbidden = errors.New("operation not permitted for this user")

	// ErrChatNameRequired rejects unnamed group and bot chats.
	ErrChatNameRequired = errors.New("group and bot chats require a name")
)
