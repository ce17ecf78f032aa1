package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/kleeedolinux/remotepay.go/debug"
)

// WebSocket is the default Socket, built on gorilla/websocket.
type WebSocket struct {
	mu           sync.Mutex
	endpoint     Endpoint
	dialer       websocket.Dialer
	conn         *websocket.Conn
	state        SocketState
	listener     SocketListener
	started      bool
	writeTimeout time.Duration
	closeTimeout time.Duration
	readLimit    int64

	closeRequested bool
	closeCode      CloseCode

	ctx        context.Context
	cancelDial context.CancelFunc
	logger     *zap.Logger
}

type WebSocketOption func(*WebSocket)

func WithHandshakeTimeout(timeout time.Duration) WebSocketOption {
	return func(w *WebSocket) {
		w.dialer.HandshakeTimeout = timeout
	}
}

func WithWriteTimeout(timeout time.Duration) WebSocketOption {
	return func(w *WebSocket) {
		w.writeTimeout = timeout
	}
}

// WithCloseTimeout bounds how long a close handshake may take before the
// connection is dropped.
func WithCloseTimeout(timeout time.Duration) WebSocketOption {
	return func(w *WebSocket) {
		w.closeTimeout = timeout
	}
}

func WithReadLimit(limit int64) WebSocketOption {
	return func(w *WebSocket) {
		w.readLimit = limit
	}
}

func WithCompression(enabled bool) WebSocketOption {
	return func(w *WebSocket) {
		w.dialer.EnableCompression = enabled
	}
}

// WithTLSConfig is mostly useful for paired terminals, which present
// self-signed certificates.
func WithTLSConfig(cfg *tls.Config) WebSocketOption {
	return func(w *WebSocket) {
		w.dialer.TLSClientConfig = cfg
	}
}

func WithSocketLogger(l *zap.Logger) WebSocketOption {
	return func(w *WebSocket) {
		if l != nil {
			w.logger = l
		}
	}
}

// WebSocketFactory returns a SocketFactory building WebSockets with opts.
func WebSocketFactory(opts ...WebSocketOption) SocketFactory {
	return func(endpoint Endpoint, listener SocketListener) (Socket, error) {
		ws, err := NewWebSocket(endpoint, listener, opts...)
		if err != nil {
			return nil, err
		}
		return ws, nil
	}
}

// NewWebSocket validates the endpoint and returns a socket ready to Connect.
func NewWebSocket(endpoint Endpoint, listener SocketListener, opts ...WebSocketOption) (*WebSocket, error) {
	u, err := url.Parse(endpoint.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidEndpoint, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidEndpoint)
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := &WebSocket{
		endpoint:     endpoint,
		dialer:       *websocket.DefaultDialer,
		state:        SocketConnecting,
		listener:     listener,
		writeTimeout: 10 * time.Second,
		closeTimeout: time.Second,
		ctx:          ctx,
		cancelDial:   cancel,
		logger:       debug.Logger(),
	}
	w.dialer.HandshakeTimeout = 10 * time.Second

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

func (w *WebSocket) Connect() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	if w.state != SocketConnecting {
		// Closed before it ever started; still report the close.
		code := w.closeCode
		w.state = SocketClosed
		w.mu.Unlock()
		go w.emitClose(code.Code, code.Reason, false)
		return
	}
	w.mu.Unlock()

	go w.run()
}

func (w *WebSocket) run() {
	w.logger.Debug("WebSocket: connecting", zap.String("url", w.endpoint.URL))

	conn, _, err := w.dialer.DialContext(w.ctx, w.endpoint.URL, w.endpoint.Header)
	if err != nil {
		w.mu.Lock()
		requested, code := w.closeRequested, w.closeCode
		w.state = SocketClosed
		w.mu.Unlock()

		w.logger.Debug("WebSocket: connection failed", zap.Error(err))
		if requested {
			w.emitClose(code.Code, code.Reason, false)
		} else {
			w.emitClose(websocket.CloseAbnormalClosure, err.Error(), false)
		}
		return
	}

	w.mu.Lock()
	if w.state != SocketConnecting {
		code := w.closeCode
		w.state = SocketClosed
		w.mu.Unlock()
		conn.Close()
		w.emitClose(code.Code, code.Reason, false)
		return
	}
	w.conn = conn
	w.state = SocketOpen
	w.mu.Unlock()

	if w.readLimit > 0 {
		conn.SetReadLimit(w.readLimit)
	}
	conn.SetPongHandler(func(string) error {
		if l := w.getListener(); l != nil {
			l.OnPong(w)
		}
		return nil
	})

	w.logger.Debug("WebSocket: connected")
	if l := w.getListener(); l != nil {
		l.OnOpen(w)
	}

	w.readLoop(conn)
}

func (w *WebSocket) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			code, reason, remote, unexpected := w.closeDetails(err)

			w.mu.Lock()
			w.state = SocketClosed
			w.mu.Unlock()

			conn.Close()
			w.logger.Debug("WebSocket: closed", zap.Int("code", code), zap.Error(err))
			if unexpected {
				if l := w.getListener(); l != nil {
					l.OnError(w, err)
				}
			}
			w.emitClose(code, reason, remote)
			return
		}

		if l := w.getListener(); l != nil {
			l.OnMessage(w, string(data))
		}
	}
}

// closeDetails reports the close that ended the read loop. A locally
// requested close keeps its own code even when the peer echoes another.
// Errors that are neither are reported as unexpected.
func (w *WebSocket) closeDetails(err error) (code int, reason string, remote, unexpected bool) {
	w.mu.Lock()
	requested, cc := w.closeRequested, w.closeCode
	w.mu.Unlock()

	if requested {
		return cc.Code, cc.Reason, false, false
	}

	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code, ce.Text, true, false
	}
	return websocket.CloseAbnormalClosure, err.Error(), false, true
}

func (w *WebSocket) Send(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != SocketOpen || w.conn == nil {
		return ErrNotOpen
	}

	if err := w.conn.SetWriteDeadline(w.writeDeadline()); err != nil {
		return err
	}

	return w.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (w *WebSocket) Ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != SocketOpen || w.conn == nil {
		return ErrNotOpen
	}

	return w.conn.WriteControl(websocket.PingMessage, nil, w.writeDeadline())
}

// writeDeadline is the zero time, meaning no deadline, unless a write
// timeout is set.
func (w *WebSocket) writeDeadline() time.Time {
	if w.writeTimeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(w.writeTimeout)
}

// Close sends a close frame carrying code, or cancels the dial if the socket
// is still connecting. The read loop reports OnClose once the peer answers
// or the close timeout passes.
func (w *WebSocket) Close(code CloseCode) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case SocketClosing, SocketClosed:
		return nil
	case SocketConnecting:
		w.state = SocketClosing
		w.closeRequested = true
		w.closeCode = code
		w.cancelDial()
		return nil
	}

	w.state = SocketClosing
	w.closeRequested = true
	w.closeCode = code

	deadline := time.Now().Add(w.closeTimeout)
	err := w.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code.Code, code.Reason),
		deadline,
	)
	if err != nil {
		w.logger.Debug("WebSocket: error sending close message", zap.Error(err))
		return multierr.Append(err, w.conn.Close())
	}

	return w.conn.SetReadDeadline(deadline)
}

func (w *WebSocket) State() SocketState {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state
}

func (w *WebSocket) ClearListener() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.listener = nil
}

func (w *WebSocket) getListener() SocketListener {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.listener
}

func (w *WebSocket) emitClose(code int, reason string, remote bool) {
	w.cancelDial()
	if l := w.getListener(); l != nil {
		l.OnClose(w, code, reason, remote)
	}
}
