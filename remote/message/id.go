package message

import "github.com/google/uuid"

// NewID returns a random identifier for envelopes and client sessions.
func NewID() string {
	return uuid.NewString()
}
