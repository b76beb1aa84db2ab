package chat

import "errors"

// Sentinel errors surfaced by the chat turn pipeline. The gateway and CLI
// map these to user-facing failures; anything else is an internal error.
var (
	// ErrUnauthenticated is returned before any other work when the
	// request carries no authenticated identity.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrConversationNotFound is returned when the addressed session does
	// not exist or belongs to another owner.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrNoUserMessage is returned when a turn has nothing to respond to.
	ErrNoUserMessage = errors.New("no user message to respond to")

	// ErrUnknownModel is returned for a model selector outside the known
	// backend set.
	ErrUnknownModel = errors.New("unknown model")
)
