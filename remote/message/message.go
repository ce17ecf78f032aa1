// Package message holds the wire envelope exchanged with a payment terminal
// and the few relay and pairing messages the connection layer itself
// understands. Everything else inside Payload is opaque here.
package message

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidEnvelope = errors.New("message: invalid envelope")
	ErrInvalidPayload  = errors.New("message: invalid payload")
)

// Envelope is the generic {method, payload} frame sent over the socket.
type Envelope struct {
	ID          string `json:"id,omitempty"`
	Method      string `json:"method"`
	Payload     string `json:"payload,omitempty"`
	PackageName string `json:"packageName,omitempty"`
}

// New builds an envelope with a fresh ID.
func New(method, payload string) Envelope {
	return Envelope{
		ID:      NewID(),
		Method:  method,
		Payload: payload,
	}
}

// NewWithPayload marshals v into the payload of a new envelope.
func NewWithPayload(method string, v interface{}) (Envelope, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return New(method, string(data)), nil
}

// Encode returns the text frame for e.
func Encode(e Envelope) (string, error) {
	if e.Method == "" {
		return "", fmt.Errorf("%w: missing method", ErrInvalidEnvelope)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}
	return string(data), nil
}

// Decode parses a text frame.
func Decode(text string) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal([]byte(text), &e); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}
	if e.Method == "" {
		return Envelope{}, fmt.Errorf("%w: missing method", ErrInvalidEnvelope)
	}
	return e, nil
}

// DecodePayload unmarshals the payload of e into v.
func (e Envelope) DecodePayload(v interface{}) error {
	if e.Payload == "" {
		return fmt.Errorf("%w: empty payload for %s", ErrInvalidPayload, e.Method)
	}
	if err := json.Unmarshal([]byte(e.Payload), v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidPayload, e.Method, err)
	}
	return nil
}
