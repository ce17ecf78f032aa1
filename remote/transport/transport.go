// Package transport keeps one logical connection to a payment terminal alive.
//
// A Transport owns at most one Socket at a time. It reconnects after the
// socket closes, checks liveness with ping/pong heartbeats and reports
// lifecycle events and inbound text frames to its Observers. Where it connects
// and which handshake follows the socket opening is decided by a Strategy
// (direct, paired or cloud relayed).
//
// Socket callbacks, heartbeat ticks and observer notifications run one at a
// time on a per-Transport event loop. Public methods may be called from any
// goroutine, including from inside an Observer callback.
package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kleeedolinux/remotepay.go/debug"
)

const (
	DefaultHeartbeatInterval             = 5 * time.Second
	DefaultReconnectDelay                = 3 * time.Second
	DefaultPingRetryCountBeforeReconnect = 4
)

type Transport struct {
	strategy Strategy

	heartbeatInterval time.Duration
	reconnectDelay    time.Duration
	pingRetries       int
	socketFactory     SocketFactory
	clock             Clock
	logger            *zap.Logger

	loop   *loop
	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	state          State
	socket         Socket
	opened         bool
	shutdown       bool
	initializing   bool
	observers      []Observer
	reconnectTimer Timer

	heartbeatTimer Timer
	awaitingPong   bool
	missedPongs    int
	responsive     bool
	handshaking    bool
}

type Option func(*Transport)

// WithHeartbeatInterval sets how often the socket is pinged. Zero or a
// negative value turns liveness checking off.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(t *Transport) {
		t.heartbeatInterval = d
	}
}

func WithReconnectDelay(d time.Duration) Option {
	return func(t *Transport) {
		t.reconnectDelay = d
	}
}

// WithPingRetryCountBeforeReconnect sets how many consecutive heartbeats may
// go unanswered before the socket is abandoned and a reconnect scheduled.
func WithPingRetryCountBeforeReconnect(n int) Option {
	return func(t *Transport) {
		t.pingRetries = n
	}
}

func WithSocketFactory(f SocketFactory) Option {
	return func(t *Transport) {
		if f != nil {
			t.socketFactory = f
		}
	}
}

func WithClock(c Clock) Option {
	return func(t *Transport) {
		if c != nil {
			t.clock = c
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// New creates a Transport in the Disconnected state. Nothing connects until
// Initialize is called. Dispose must be called to release the event loop.
func New(strategy Strategy, opts ...Option) *Transport {
	ctx, cancel := context.WithCancel(context.Background())

	t := &Transport{
		strategy:          strategy,
		heartbeatInterval: DefaultHeartbeatInterval,
		reconnectDelay:    DefaultReconnectDelay,
		pingRetries:       DefaultPingRetryCountBeforeReconnect,
		socketFactory:     WebSocketFactory(),
		clock:             realClock{},
		logger:            debug.Logger(),
		ctx:               ctx,
		cancel:            cancel,
		state:             StateDisconnected,
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.reconnectDelay < 0 {
		t.reconnectDelay = 0
	}
	if t.pingRetries < 0 {
		t.pingRetries = 0
	}
	t.logger = t.logger.With(zap.String("transport", strategy.Name()))
	t.loop = newLoop(func(r interface{}) {
		t.logger.Error("event loop task panicked", zap.Any("panic", r))
	})

	return t
}

func (t *Transport) Name() string {
	return t.strategy.Name()
}

func (t *Transport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state
}

// Done is closed once the Transport has been disposed and every pending
// notification has been delivered.
func (t *Transport) Done() <-chan struct{} {
	return t.loop.done
}

func (t *Transport) AddObserver(o Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.observers = append(t.observers, o)
}

// RemoveObserver removes the first registration of o.
func (t *Transport) RemoveObserver(o Observer) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, existing := range t.observers {
		if existing == o {
			t.observers = append(t.observers[:i:i], t.observers[i+1:]...)
			return true
		}
	}
	return false
}

// Initialize resolves the endpoint and starts a connection attempt. Failures
// are logged and retried after the reconnect delay; they never reach the
// caller.
func (t *Transport) Initialize() {
	t.mu.Lock()
	if t.shutdown {
		t.mu.Unlock()
		t.logger.Debug("not initializing, shutdown")
		return
	}
	if t.socket != nil {
		switch t.socket.State() {
		case SocketOpen, SocketConnecting:
			t.mu.Unlock()
			return
		}
		t.socket.ClearListener()
		t.socket = nil
		t.opened = false
		t.stopHeartbeatLocked()
	}
	if t.initializing {
		t.mu.Unlock()
		return
	}
	t.initializing = true
	ctx := t.ctx
	t.mu.Unlock()

	s, err := t.openSocket(ctx)

	t.mu.Lock()
	t.initializing = false
	if err != nil {
		if !t.shutdown {
			t.state = StateDisconnected
		}
		t.mu.Unlock()
		t.logger.Warn("connection attempt failed", zap.Error(err))
		t.Reconnect()
		return
	}
	if t.shutdown {
		t.mu.Unlock()
		s.ClearListener()
		return
	}
	t.socket = s
	t.opened = false
	t.state = StateConnecting
	t.mu.Unlock()

	s.Connect()
	t.logger.Debug("connection attempt started")
}

func (t *Transport) openSocket(ctx context.Context) (s Socket, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, r)
		}
	}()

	endpoint, err := t.strategy.Endpoint(ctx)
	if err != nil {
		return nil, err
	}
	return t.socketFactory(endpoint, socketEvents{t: t})
}

// Reconnect schedules Initialize after the reconnect delay. It does nothing
// once the Transport is disposed, and requests made while one is already
// pending are folded into it.
func (t *Transport) Reconnect() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.scheduleReconnectLocked()
}

func (t *Transport) scheduleReconnectLocked() {
	if t.shutdown {
		t.logger.Debug("not attempting to reconnect, shutdown")
		return
	}
	if t.reconnectTimer != nil {
		return
	}

	task := &reconnectTask{transport: t}
	t.reconnectTimer = t.clock.AfterFunc(t.reconnectDelay, task.fire)
}

// reconnectTask is one scheduled Initialize. The shutdown flag is checked
// when it fires, so disposing cancels it even if the timer could not be
// stopped in time.
type reconnectTask struct {
	transport *Transport
}

func (r *reconnectTask) fire() {
	t := r.transport

	t.mu.Lock()
	t.reconnectTimer = nil
	shutdown := t.shutdown
	t.mu.Unlock()

	if shutdown {
		return
	}
	t.Initialize()
}

// SendMessage forwards text to the current socket. It returns SendAccepted
// when a socket is open and SendNotConnected otherwise, in which case a
// reconnect is scheduled. Delivery is fire-and-forget: a failed write also
// schedules a reconnect but still counts as accepted.
func (t *Transport) SendMessage(text string) int {
	t.mu.Lock()
	s := t.socket
	if s == nil || s.State() != SocketOpen {
		t.scheduleReconnectLocked()
		t.mu.Unlock()
		return SendNotConnected
	}
	t.mu.Unlock()

	if err := s.Send(text); err != nil {
		t.logger.Warn("send failed, reconnecting", zap.Error(err))
		t.Reconnect()
	}
	return SendAccepted
}

// Reset closes the current socket with ResetCloseCode. The ordinary close
// path then reconnects.
func (t *Transport) Reset() {
	t.mu.Lock()
	s := t.socket
	if s == nil {
		t.mu.Unlock()
		t.logger.Debug("reset requested without a socket")
		return
	}
	t.state = StateClosing
	t.mu.Unlock()

	if err := closeSocket(s, ResetCloseCode); err != nil {
		t.logger.Error("error resetting transport", zap.Error(err))
	}
}

// Dispose shuts the Transport down for good. Pending reconnects are
// cancelled, observers hear a final disconnect if a socket was held, and the
// socket is closed. Errors while closing are logged and swallowed.
func (t *Transport) Dispose() {
	t.mu.Lock()
	if t.shutdown {
		t.mu.Unlock()
		return
	}
	t.shutdown = true
	t.state = StateClosed
	if t.reconnectTimer != nil {
		t.reconnectTimer.Stop()
		t.reconnectTimer = nil
	}
	t.stopHeartbeatLocked()
	s := t.socket
	t.socket = nil
	t.opened = false
	observers := t.snapshotLocked()
	t.mu.Unlock()

	t.cancel()

	if s != nil {
		s.ClearListener()
		t.loop.post(func() {
			t.notifyDisconnected(observers, "")
		})
		if err := closeSocket(s, NormalCloseCode); err != nil {
			t.logger.Error("error disposing of transport", zap.Error(err))
		}
	}
	t.loop.close()
	t.logger.Debug("transport disposed")
}

// HandshakeComplete ends a handshake a Strategy reported as pending in
// OnOpen and tells observers the device is ready.
func (t *Transport) HandshakeComplete() {
	t.mu.Lock()
	if t.socket == nil || !t.opened {
		t.mu.Unlock()
		return
	}
	t.handshaking = false
	t.responsive = true
	observers := t.snapshotLocked()
	t.mu.Unlock()

	t.notifyReady(observers)
}

func (t *Transport) handleOpen(s Socket) {
	t.mu.Lock()
	if t.socket != s {
		t.mu.Unlock()
		t.logger.Debug("ignoring open from stale socket")
		return
	}
	t.state = StateConnected
	t.opened = true
	t.resetLivenessLocked()
	t.startHeartbeatLocked()
	observers := t.snapshotLocked()
	t.mu.Unlock()

	t.logger.Info("connected")
	t.notify("connected", observers, func(o Observer) {
		o.OnDeviceConnected(t)
	})

	pending := t.strategy.OnOpen(t)

	t.mu.Lock()
	if t.socket != s {
		t.mu.Unlock()
		return
	}
	if !t.responsive {
		t.handshaking = pending
	}
	// The first ping goes out right away so that ready does not wait a
	// full interval. Without a heartbeat nothing will ever pong, so the
	// device is ready as soon as no handshake is pending.
	heartbeat := t.heartbeatInterval > 0
	ready := !heartbeat && !t.handshaking && !t.responsive
	if ready {
		t.responsive = true
	}
	if heartbeat {
		t.awaitingPong = true
	}
	observers = t.snapshotLocked()
	t.mu.Unlock()

	if ready {
		t.notifyReady(observers)
	}
	if heartbeat {
		if err := s.Ping(); err != nil {
			t.logger.Debug("ping failed", zap.Error(err))
		}
	}
}

func (t *Transport) handleClose(s Socket, code int, reason string, remote bool) {
	t.mu.Lock()
	if t.socket != s {
		t.mu.Unlock()
		t.logger.Debug("ignoring close from stale socket", zap.Int("code", code))
		return
	}
	s.ClearListener()
	opened := t.opened
	t.socket = nil
	t.opened = false
	t.handshaking = false
	t.stopHeartbeatLocked()
	if t.state != StateClosed {
		t.state = StateDisconnected
	}
	observers := t.snapshotLocked()
	t.mu.Unlock()

	if s.State() != SocketClosed {
		if err := closeSocket(s, NormalCloseCode); err != nil {
			t.logger.Debug("error closing socket", zap.Error(err))
		}
	}

	if code == ResetCloseCode.Code && !remote {
		t.logger.Info("reset requested, reconnecting")
	} else {
		t.logger.Info("disconnected",
			zap.Int("code", code),
			zap.String("reason", reason),
			zap.Bool("remote", remote),
		)
	}

	if opened {
		t.notifyDisconnected(observers, "")
	}

	t.Reconnect()
}

func (t *Transport) handleError(s Socket, err error) {
	t.mu.Lock()
	current := t.socket == s
	opened := t.opened
	observers := t.snapshotLocked()
	t.mu.Unlock()

	if !current {
		return
	}

	t.logger.Warn("socket error", zap.Error(err))
	if opened {
		t.notifyDisconnected(observers, err.Error())
	}
}

func (t *Transport) handleMessage(s Socket, text string) {
	t.mu.Lock()
	if t.socket != s {
		t.mu.Unlock()
		return
	}
	t.awaitingPong = false
	t.missedPongs = 0
	observers := t.snapshotLocked()
	t.mu.Unlock()

	if t.strategy.OnMessage(t, text) {
		return
	}

	t.logger.Debug("got message", zap.Int("size", len(text)))
	t.notify("message", observers, func(o Observer) {
		o.OnMessage(text)
	})
}

func (t *Transport) snapshotLocked() []Observer {
	observers := make([]Observer, len(t.observers))
	copy(observers, t.observers)
	return observers
}

func (t *Transport) notifyReady(observers []Observer) {
	t.logger.Debug("ready")
	t.notify("ready", observers, func(o Observer) {
		o.OnDeviceReady(t)
	})
}

func (t *Transport) notifyDisconnected(observers []Observer, message string) {
	t.notify("disconnected", observers, func(o Observer) {
		o.OnDeviceDisconnected(t, message)
	})
}

func (t *Transport) notify(event string, observers []Observer, fn func(Observer)) {
	for _, o := range observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.logger.Error("observer panic recovered",
						zap.String("event", event),
						zap.Any("panic", r),
					)
				}
			}()
			fn(o)
		}()
	}
}

// closeSocket closes s, turning a panicking implementation into an error.
func closeSocket(s Socket, code CloseCode) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transport: close panicked: %v", r)
		}
	}()
	return s.Close(code)
}

// socketEvents moves socket callbacks onto the Transport's event loop.
type socketEvents struct {
	t *Transport
}

func (e socketEvents) OnOpen(s Socket) {
	e.t.loop.post(func() { e.t.handleOpen(s) })
}

func (e socketEvents) OnClose(s Socket, code int, reason string, remote bool) {
	e.t.loop.post(func() { e.t.handleClose(s, code, reason, remote) })
}

func (e socketEvents) OnMessage(s Socket, text string) {
	e.t.loop.post(func() { e.t.handleMessage(s, text) })
}

func (e socketEvents) OnError(s Socket, err error) {
	e.t.loop.post(func() { e.t.handleError(s, err) })
}

func (e socketEvents) OnPong(s Socket) {
	e.t.loop.post(func() { e.t.handlePong(s) })
}
