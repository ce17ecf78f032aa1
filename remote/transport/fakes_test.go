package transport

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

// fakeClock fires timers only when advanced. Timers due at the same moment
// fire in scheduling order, and timers scheduled by a firing callback run
// within the same Advance if they are already due.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d < 0 {
		d = 0
	}
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	target := c.now
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			live := c.timers[:0]
			for _, t := range c.timers {
				if !t.stopped && !t.fired {
					live = append(live, t)
				}
			}
			c.timers = live
			c.mu.Unlock()
			return
		}
		next.fired = true
		c.mu.Unlock()

		next.f()
	}
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fakeSocket is driven by the test. It remembers the listener it was built
// with so that events can still be delivered after ClearListener, the way a
// late callback from a real socket would arrive.
type fakeSocket struct {
	mu         sync.Mutex
	endpoint   Endpoint
	listener   SocketListener
	origin     SocketListener
	state      SocketState
	connected  bool
	sent       []string
	pings      int
	closedWith []CloseCode
	sendErr    error
}

func (s *fakeSocket) Connect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connected = true
}

func (s *fakeSocket) Send(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SocketOpen {
		return ErrNotOpen
	}
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, text)
	return nil
}

func (s *fakeSocket) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pings++
	return nil
}

func (s *fakeSocket) Close(code CloseCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closedWith = append(s.closedWith, code)
	if s.state != SocketClosed {
		s.state = SocketClosing
	}
	return nil
}

func (s *fakeSocket) State() SocketState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *fakeSocket) ClearListener() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listener = nil
}

func (s *fakeSocket) current() SocketListener {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.listener
}

func (s *fakeSocket) open() {
	s.mu.Lock()
	s.state = SocketOpen
	s.mu.Unlock()

	if l := s.current(); l != nil {
		l.OnOpen(s)
	}
}

func (s *fakeSocket) closed(code int, reason string, remote bool) {
	s.mu.Lock()
	s.state = SocketClosed
	s.mu.Unlock()

	if l := s.current(); l != nil {
		l.OnClose(s, code, reason, remote)
	}
}

// staleClose delivers a close through the original listener even if the
// transport already detached it.
func (s *fakeSocket) staleClose(code int, reason string) {
	s.mu.Lock()
	s.state = SocketClosed
	s.mu.Unlock()

	s.origin.OnClose(s, code, reason, true)
}

func (s *fakeSocket) receive(text string) {
	if l := s.current(); l != nil {
		l.OnMessage(s, text)
	}
}

func (s *fakeSocket) pong() {
	if l := s.current(); l != nil {
		l.OnPong(s)
	}
}

func (s *fakeSocket) fail(err error) {
	if l := s.current(); l != nil {
		l.OnError(s, err)
	}
}

func (s *fakeSocket) sentFrames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.sent...)
}

func (s *fakeSocket) pingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pings
}

func (s *fakeSocket) closes() []CloseCode {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]CloseCode(nil), s.closedWith...)
}

type fakeFactory struct {
	mu       sync.Mutex
	sockets  []*fakeSocket
	calls    int
	failures int
	panics   bool
}

func (f *fakeFactory) build(endpoint Endpoint, listener SocketListener) (Socket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.panics {
		panic("socket implementation unavailable")
	}
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("dial refused")
	}

	s := &fakeSocket{
		endpoint: endpoint,
		listener: listener,
		origin:   listener,
		state:    SocketConnecting,
	}
	f.sockets = append(f.sockets, s)
	return s, nil
}

func (f *fakeFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func (f *fakeFactory) socket(i int) *fakeSocket {
	f.mu.Lock()
	defer f.mu.Unlock()

	if i < 0 {
		i += len(f.sockets)
	}
	return f.sockets[i]
}

// recorder is an Observer that records events as short strings.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
}

func (r *recorder) OnDeviceConnected(*Transport) {
	r.add("connected")
}

func (r *recorder) OnDeviceReady(*Transport) {
	r.add("ready")
}

func (r *recorder) OnDeviceDisconnected(_ *Transport, message string) {
	if message == "" {
		r.add("disconnected")
		return
	}
	r.add("disconnected:" + message)
}

func (r *recorder) OnMessage(text string) {
	r.add("message:" + text)
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.events...)
}

func (r *recorder) has(event string) bool {
	for _, e := range r.get() {
		if e == event {
			return true
		}
	}
	return false
}

// waitFor polls until event was recorded. Only the real-socket tests need it.
func (r *recorder) waitFor(t *testing.T, event string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if r.has(event) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q, got %v", event, r.get())
}

func (r *recorder) expect(t *testing.T, want ...string) {
	t.Helper()

	got := r.get()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

const testURL = "ws://terminal.test/remote_pay"

type harness struct {
	transport *Transport
	factory   *fakeFactory
	clock     *fakeClock
	events    *recorder
}

// newHarness builds a Transport on fakes with a 5s heartbeat, 1s reconnect
// delay and 2 ping retries unless opts say otherwise.
func newHarness(t *testing.T, strategy Strategy, opts ...Option) *harness {
	t.Helper()

	if strategy == nil {
		strategy = NewDirectStrategy(testURL)
	}
	h := &harness{
		factory: &fakeFactory{},
		clock:   &fakeClock{},
		events:  &recorder{},
	}

	base := []Option{
		WithHeartbeatInterval(5 * time.Second),
		WithReconnectDelay(time.Second),
		WithPingRetryCountBeforeReconnect(2),
		WithSocketFactory(h.factory.build),
		WithClock(h.clock),
		WithLogger(zap.NewNop()),
	}
	h.transport = New(strategy, append(base, opts...)...)
	h.transport.AddObserver(h.events)

	t.Cleanup(func() {
		h.transport.Dispose()
		<-h.transport.Done()
	})
	return h
}

// flush waits for every queued event loop task to run.
func (h *harness) flush() {
	h.transport.loop.sync()
}

// advance moves the fake clock and lets posted work settle.
func (h *harness) advance(d time.Duration) {
	h.flush()
	h.clock.Advance(d)
	h.flush()
}

// connect initializes the transport and opens the first socket.
func (h *harness) connect(t *testing.T) *fakeSocket {
	t.Helper()

	h.transport.Initialize()
	s := h.factory.socket(-1)
	s.open()
	h.flush()
	return s
}
