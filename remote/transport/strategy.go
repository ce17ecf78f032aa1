package transport

import (
	"context"
	"net/http"
)

// Strategy decides where a Transport connects and what, if anything, must
// happen on a freshly opened socket before the device counts as ready.
type Strategy interface {
	Name() string
	// Endpoint is resolved before every connection attempt. ctx is
	// cancelled when the Transport is disposed.
	Endpoint(ctx context.Context) (Endpoint, error)
	// OnOpen runs on the event loop after observers heard about the open
	// socket. It reports whether a handshake is now pending; while one is,
	// pongs do not make the device ready and the strategy must call
	// Transport.HandshakeComplete itself.
	OnOpen(t *Transport) bool
	// OnMessage may consume an inbound frame. Frames it does not consume
	// go to the observers.
	OnMessage(t *Transport, text string) bool
}

// DirectStrategy connects to a fixed URL with no handshake.
type DirectStrategy struct {
	URL    string
	Header http.Header
}

func NewDirectStrategy(url string) *DirectStrategy {
	return &DirectStrategy{URL: url}
}

func (d *DirectStrategy) Name() string {
	return "direct"
}

func (d *DirectStrategy) Endpoint(context.Context) (Endpoint, error) {
	if d.URL == "" {
		return Endpoint{}, ErrInvalidEndpoint
	}
	return Endpoint{URL: d.URL, Header: d.Header.Clone()}, nil
}

func (d *DirectStrategy) OnOpen(*Transport) bool {
	return false
}

func (d *DirectStrategy) OnMessage(*Transport, string) bool {
	return false
}
