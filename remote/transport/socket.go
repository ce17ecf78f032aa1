package transport

import (
	"errors"
	"net/http"
)

// State is the lifecycle state of a Transport.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "disconnected"
	}
}

// SocketState is the state a Socket reports about itself.
type SocketState int

const (
	SocketConnecting SocketState = iota
	SocketOpen
	SocketClosing
	SocketClosed
)

func (s SocketState) String() string {
	switch s {
	case SocketConnecting:
		return "connecting"
	case SocketOpen:
		return "open"
	case SocketClosing:
		return "closing"
	default:
		return "closed"
	}
}

// CloseCode is sent with a close frame.
type CloseCode struct {
	Code   int
	Reason string
}

var (
	// ResetCloseCode marks a locally requested reset. 4000 is in the
	// private-use range of RFC 6455.
	ResetCloseCode = CloseCode{Code: 4000, Reason: "Reset requested"}

	NormalCloseCode   = CloseCode{Code: 1000, Reason: ""}
	AbnormalCloseCode = CloseCode{Code: 1006, Reason: "not responding"}
)

// IsReset reports whether c is the reserved reset code.
func (c CloseCode) IsReset() bool {
	return c.Code == ResetCloseCode.Code
}

// Results of Transport.SendMessage.
const (
	SendAccepted     = 0
	SendNotConnected = -1
)

var (
	ErrNotOpen           = errors.New("transport: socket not open")
	ErrInvalidEndpoint   = errors.New("transport: invalid endpoint")
	ErrHandshakeFailed   = errors.New("transport: handshake failed")
	ErrDeviceNotNotified = errors.New("transport: device was not notified")
)

// Endpoint is where a socket connects.
type Endpoint struct {
	URL    string
	Header http.Header
}

// Socket is one duplex connection attempt. A Transport owns at most one
// current Socket and replaces it on every reconnect.
type Socket interface {
	// Connect starts connecting and returns immediately. Progress is
	// reported through the SocketListener.
	Connect()
	Send(text string) error
	Ping() error
	// Close starts the closing handshake. OnClose follows unless the
	// listener was cleared first.
	Close(code CloseCode) error
	State() SocketState
	// ClearListener detaches the socket from its listener so that no
	// further callbacks fire.
	ClearListener()
}

// SocketListener receives socket callbacks. Every callback carries the
// socket it came from so that stale sockets can be told apart.
type SocketListener interface {
	OnOpen(s Socket)
	OnClose(s Socket, code int, reason string, remote bool)
	OnMessage(s Socket, text string)
	OnError(s Socket, err error)
	OnPong(s Socket)
}

// SocketFactory builds a Socket for an endpoint. It is the seam for
// plugging in a different socket implementation.
type SocketFactory func(endpoint Endpoint, listener SocketListener) (Socket, error)

// Observer is notified of Transport lifecycle events and inbound messages.
type Observer interface {
	OnDeviceConnected(t *Transport)
	OnDeviceReady(t *Transport)
	OnDeviceDisconnected(t *Transport, message string)
	OnMessage(text string)
}
