// Package remotetest runs an in-process fake payment terminal for tests and
// demos. It accepts websocket connections, records every frame it receives,
// can drive the pairing handshake, and can act as the cloud relay that hands
// out socket endpoints.
package remotetest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/kleeedolinux/remotepay.go/debug"
	"github.com/kleeedolinux/remotepay.go/remote/message"
)

const (
	// SocketPath is where the fake terminal accepts direct connections.
	SocketPath = "/remote_pay"
	// RelaySocketPath is where relayed cloud connections land.
	RelaySocketPath = "/support/remote_pay/cs"
)

// Responder produces the frames a terminal sends back for a request.
type Responder func(req message.Envelope) []message.Envelope

type Server struct {
	httpServer *httptest.Server
	upgrader   websocket.Upgrader
	logger     *zap.Logger
	responder  Responder

	pairing      bool
	pairingCode  string
	pairingToken string

	cloud       bool
	merchantID  string
	accessToken string
	relayToken  string

	mu            sync.Mutex
	changed       chan struct{}
	conns         map[*conn]struct{}
	accepted      int
	received      []string
	notifications int
}

type Option func(*Server)

// WithPairing makes the server demand pairing. A client presenting token is
// paired straight away; any other client is shown code and then issued token.
func WithPairing(code, token string) Option {
	return func(s *Server) {
		s.pairing = true
		s.pairingCode = code
		s.pairingToken = token
	}
}

// WithCloudRelay serves the relay notification endpoint for merchantID and
// requires accessToken as a bearer token.
func WithCloudRelay(merchantID, accessToken string) Option {
	return func(s *Server) {
		s.cloud = true
		s.merchantID = merchantID
		s.accessToken = accessToken
	}
}

func WithResponder(r Responder) Option {
	return func(s *Server) {
		s.responder = r
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer starts a fake terminal on a loopback port. Close it when done.
func NewServer(opts ...Option) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger:     debug.Logger(),
		changed:    make(chan struct{}),
		conns:      make(map[*conn]struct{}),
		relayToken: message.NewID(),
	}

	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/merchant/", s.handleNotify)
	mux.HandleFunc("/", s.handleSocket)
	s.httpServer = httptest.NewServer(mux)

	return s
}

// URL is the websocket URL of the direct endpoint.
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.httpServer.URL, "http") + SocketPath
}

// HTTPURL is the base URL, used as the cloud server address.
func (s *Server) HTTPURL() string {
	return s.httpServer.URL
}

// Received returns every text frame received so far, in arrival order.
func (s *Server) Received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.received...)
}

// Notifications is the number of relay notifications served.
func (s *Server) Notifications() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.notifications
}

// Send queues text to every connected client and reports how many there were.
func (s *Server) Send(text string) int {
	s.mu.Lock()
	conns := s.snapshotLocked()
	s.mu.Unlock()

	for _, c := range conns {
		c.write(text)
	}
	return len(conns)
}

// CloseConnections sends a close frame with code and reason to every client.
func (s *Server) CloseConnections(code int, reason string) error {
	s.mu.Lock()
	conns := s.snapshotLocked()
	s.mu.Unlock()

	var err error
	for _, c := range conns {
		err = multierr.Append(err, c.closeWith(code, reason))
	}
	return err
}

// DropConnections closes every client connection without a close handshake.
func (s *Server) DropConnections() error {
	s.mu.Lock()
	conns := s.snapshotLocked()
	s.mu.Unlock()

	var err error
	for _, c := range conns {
		err = multierr.Append(err, c.shutdown())
	}
	return err
}

// WaitConnections blocks until n connections have been accepted in total.
func (s *Server) WaitConnections(ctx context.Context, n int) error {
	return s.wait(ctx, func() bool { return s.accepted >= n })
}

// WaitReceived blocks until n frames have been received and returns them.
func (s *Server) WaitReceived(ctx context.Context, n int) ([]string, error) {
	if err := s.wait(ctx, func() bool { return len(s.received) >= n }); err != nil {
		return nil, err
	}
	return s.Received(), nil
}

func (s *Server) Close() error {
	s.mu.Lock()
	conns := s.snapshotLocked()
	s.mu.Unlock()

	var err error
	for _, c := range conns {
		err = multierr.Append(err, c.shutdown())
	}
	s.httpServer.Close()
	return err
}

func (s *Server) wait(ctx context.Context, done func() bool) error {
	for {
		s.mu.Lock()
		if done() {
			s.mu.Unlock()
			return nil
		}
		changed := s.changed
		s.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Server) signalLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Server) snapshotLocked() []*conn {
	conns := make([]*conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	return conns
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	if s.cloud && r.URL.Path == RelaySocketPath {
		if r.URL.Query().Get("token") != s.relayToken {
			http.Error(w, "invalid relay token", http.StatusUnauthorized)
			return
		}
	} else if r.URL.Path != SocketPath {
		http.NotFound(w, r)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("upgrade failed", zap.Error(err))
		return
	}

	c := newConn(message.NewID(), ws, s.logger)
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.accepted++
	s.signalLocked()
	s.mu.Unlock()
	c.logger.Debug("client connected", zap.String("path", r.URL.Path))

	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.signalLocked()
		s.mu.Unlock()

		c.shutdown()
		c.writeWg.Wait()
		c.logger.Debug("client disconnected")
	}()

	for {
		text, err := c.read()
		if err != nil {
			c.logger.Debug("read ended", zap.Error(err))
			return
		}

		s.mu.Lock()
		s.received = append(s.received, text)
		s.signalLocked()
		s.mu.Unlock()

		s.handleFrame(c, text)
	}
}

func (s *Server) handleFrame(c *conn, text string) {
	env, err := message.Decode(text)
	if err != nil {
		c.logger.Debug("ignoring undecodable frame", zap.Error(err))
		return
	}

	if s.pairing && env.Method == message.MethodPairingRequest {
		s.pair(c, env)
		return
	}

	if s.responder == nil {
		return
	}
	for _, reply := range s.responder(env) {
		s.reply(c, reply)
	}
}

func (s *Server) pair(c *conn, env message.Envelope) {
	var req message.PairingRequest
	if err := env.DecodePayload(&req); err != nil {
		c.logger.Warn("bad pairing request", zap.Error(err))
		return
	}

	if req.AuthenticationToken != s.pairingToken {
		code, err := message.NewWithPayload(message.MethodPairingCode, message.PairingCode{PairingCode: s.pairingCode})
		if err != nil {
			c.logger.Error("building pairing code", zap.Error(err))
			return
		}
		s.reply(c, code)
	}

	resp, err := message.NewWithPayload(message.MethodPairingResponse, message.PairingResponse{
		PairingState:        message.PairingStatePaired,
		AuthenticationToken: s.pairingToken,
	})
	if err != nil {
		c.logger.Error("building pairing response", zap.Error(err))
		return
	}
	s.reply(c, resp)
}

func (s *Server) reply(c *conn, env message.Envelope) {
	text, err := message.Encode(env)
	if err != nil {
		c.logger.Error("encoding reply", zap.Error(err))
		return
	}
	c.write(text)
}

type notifyRequest struct {
	DeviceID     string `json:"deviceId"`
	FriendlyID   string `json:"friendlyId"`
	ForceConnect bool   `json:"forceConnect"`
}

type notifyResponse struct {
	Sent  bool   `json:"sent"`
	Host  string `json:"host,omitempty"`
	Token string `json:"token,omitempty"`
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	if !s.cloud {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != "/v2/merchant/"+s.merchantID+"/remote_pay" {
		http.NotFound(w, r)
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+s.accessToken {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.notifications++
	s.signalLocked()
	s.mu.Unlock()
	s.logger.Debug("relay notification",
		zap.String("device_id", req.DeviceID),
		zap.String("friendly_id", req.FriendlyID),
		zap.Bool("force", req.ForceConnect),
	)

	resp := notifyResponse{Sent: req.DeviceID != ""}
	if resp.Sent {
		resp.Host = s.httpServer.URL
		resp.Token = s.relayToken
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
