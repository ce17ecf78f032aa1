// Package device describes how to reach a payment terminal and builds the
// Device that talks to it.
//
// A Configuration is one of three variants: direct (a terminal on the local
// network), paired (a local terminal that requires pairing) or cloud (a
// terminal reached through the cloud relay). Configurations are immutable
// and may be reused to build a fresh Transport after an earlier one was
// disposed.
package device

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kleeedolinux/remotepay.go/debug"
	"github.com/kleeedolinux/remotepay.go/remote/message"
	"github.com/kleeedolinux/remotepay.go/remote/transport"
)

var ErrInvalidConfiguration = errors.New("device: invalid configuration")

type Kind string

const (
	KindDirect Kind = "direct"
	KindPaired Kind = "paired"
	KindCloud  Kind = "cloud"
)

// Settings are the tunables every configuration carries.
type Settings struct {
	HeartbeatInterval             time.Duration
	ReconnectDelay                time.Duration
	PingRetryCountBeforeReconnect int
}

// Configuration selects a connection variant. The set of implementations is
// closed: DirectConfiguration, PairedConfiguration and CloudConfiguration.
type Configuration interface {
	Kind() Kind
	Name() string
	MessagePackageName() string
	// ApplicationID identifies the POS, e.g. com.company.MyPOS:2.3.1.
	ApplicationID() string
	Settings() Settings
	// DeviceType returns the constructor for the Device this
	// configuration talks through.
	DeviceType() Constructor
	// NewTransport builds a new, uninitialized Transport.
	NewTransport() (*transport.Transport, error)
	Logger() *zap.Logger

	sealed()
}

const (
	broadcastPackageName = "com.clover.remote_protocol_broadcast.app"
	cloudPackageName     = "com.clover.remote.protocol.websocket"
)

type Option func(*options)

type options struct {
	settings       Settings
	socketFactory  transport.SocketFactory
	tlsConfig      *tls.Config
	logger         *zap.Logger
	httpClient     *http.Client
	pairingHandler transport.PairingHandler
	forceConnect   bool
}

func WithHeartbeatInterval(d time.Duration) Option {
	return func(o *options) {
		o.settings.HeartbeatInterval = d
	}
}

func WithReconnectDelay(d time.Duration) Option {
	return func(o *options) {
		o.settings.ReconnectDelay = d
	}
}

func WithPingRetryCountBeforeReconnect(n int) Option {
	return func(o *options) {
		o.settings.PingRetryCountBeforeReconnect = n
	}
}

// WithSocketFactory replaces the websocket implementation.
func WithSocketFactory(f transport.SocketFactory) Option {
	return func(o *options) {
		o.socketFactory = f
	}
}

// WithTLSConfig configures the default websocket implementation. It has no
// effect together with WithSocketFactory.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) {
		o.tlsConfig = cfg
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithHTTPClient sets the client used for the cloud relay handshake.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithPairingHandler receives pairing codes and tokens of a paired
// configuration.
func WithPairingHandler(h transport.PairingHandler) Option {
	return func(o *options) {
		o.pairingHandler = h
	}
}

// WithForceConnect makes a cloud connection take the device over from any
// other connected client.
func WithForceConnect(force bool) Option {
	return func(o *options) {
		o.forceConnect = force
	}
}

func newOptions(opts []Option) options {
	o := options{
		settings: Settings{
			HeartbeatInterval:             transport.DefaultHeartbeatInterval,
			ReconnectDelay:                transport.DefaultReconnectDelay,
			PingRetryCountBeforeReconnect: transport.DefaultPingRetryCountBeforeReconnect,
		},
		logger: debug.Logger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// base holds what every variant shares.
type base struct {
	applicationID string
	opts          options
}

func (b *base) ApplicationID() string {
	return b.applicationID
}

func (b *base) Settings() Settings {
	return b.opts.settings
}

func (b *base) Logger() *zap.Logger {
	return b.opts.logger
}

func (b *base) sealed() {}

func (b *base) newTransport(strategy transport.Strategy) *transport.Transport {
	factory := b.opts.socketFactory
	if factory == nil {
		wsOpts := []transport.WebSocketOption{transport.WithSocketLogger(b.opts.logger)}
		if b.opts.tlsConfig != nil {
			wsOpts = append(wsOpts, transport.WithTLSConfig(b.opts.tlsConfig))
		}
		factory = transport.WebSocketFactory(wsOpts...)
	}

	return transport.New(strategy,
		transport.WithHeartbeatInterval(b.opts.settings.HeartbeatInterval),
		transport.WithReconnectDelay(b.opts.settings.ReconnectDelay),
		transport.WithPingRetryCountBeforeReconnect(b.opts.settings.PingRetryCountBeforeReconnect),
		transport.WithSocketFactory(factory),
		transport.WithLogger(b.opts.logger),
	)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// DirectConfiguration reaches a terminal on the local network at a fixed
// websocket URL.
type DirectConfiguration struct {
	base
	url string
}

func NewDirectConfiguration(applicationID, url string, opts ...Option) *DirectConfiguration {
	return &DirectConfiguration{
		base: base{applicationID: applicationID, opts: newOptions(opts)},
		url:  url,
	}
}

func (c *DirectConfiguration) Kind() Kind {
	return KindDirect
}

func (c *DirectConfiguration) Name() string {
	return "Direct WebSocket Connector"
}

func (c *DirectConfiguration) MessagePackageName() string {
	return broadcastPackageName
}

func (c *DirectConfiguration) URL() string {
	return c.url
}

func (c *DirectConfiguration) DeviceType() Constructor {
	return NewWebSocketDevice
}

func (c *DirectConfiguration) NewTransport() (*transport.Transport, error) {
	if c.url == "" {
		return nil, invalid("direct configuration needs a url")
	}
	return c.newTransport(transport.NewDirectStrategy(c.url)), nil
}

// PairedConfiguration reaches a local terminal that only accepts paired
// clients. Without a valid auth token the terminal shows a pairing code,
// delivered to the PairingHandler.
type PairedConfiguration struct {
	base
	url          string
	posName      string
	serialNumber string
	authToken    string
}

func NewPairedConfiguration(applicationID, url, posName, serialNumber, authToken string, opts ...Option) *PairedConfiguration {
	return &PairedConfiguration{
		base:         base{applicationID: applicationID, opts: newOptions(opts)},
		url:          url,
		posName:      posName,
		serialNumber: serialNumber,
		authToken:    authToken,
	}
}

func (c *PairedConfiguration) Kind() Kind {
	return KindPaired
}

func (c *PairedConfiguration) Name() string {
	return "Secure Network Pay Display Connector"
}

func (c *PairedConfiguration) MessagePackageName() string {
	return broadcastPackageName
}

func (c *PairedConfiguration) URL() string {
	return c.url
}

func (c *PairedConfiguration) DeviceType() Constructor {
	return NewWebSocketDevice
}

func (c *PairedConfiguration) NewTransport() (*transport.Transport, error) {
	switch {
	case c.url == "":
		return nil, invalid("paired configuration needs a url")
	case c.posName == "":
		return nil, invalid("paired configuration needs a POS name")
	case c.serialNumber == "":
		return nil, invalid("paired configuration needs a serial number")
	}

	strategy := transport.NewPairedStrategy(c.url, c.posName, c.serialNumber, c.authToken, c.opts.pairingHandler)
	return c.newTransport(strategy), nil
}

// CloudConfiguration reaches a terminal through the cloud relay.
type CloudConfiguration struct {
	base
	settings transport.CloudSettings
}

// NewCloudConfiguration builds a cloud configuration. server is the relay
// base URL, e.g. https://www.clover.com. An empty friendlyID is replaced by
// a generated one.
func NewCloudConfiguration(applicationID, server, accessToken, merchantID, deviceID, friendlyID string, opts ...Option) *CloudConfiguration {
	o := newOptions(opts)
	if friendlyID == "" {
		friendlyID = message.NewID()
	}

	return &CloudConfiguration{
		base: base{applicationID: applicationID, opts: o},
		settings: transport.CloudSettings{
			Server:       server,
			AccessToken:  accessToken,
			MerchantID:   merchantID,
			DeviceID:     deviceID,
			FriendlyID:   friendlyID,
			ForceConnect: o.forceConnect,
		},
	}
}

func (c *CloudConfiguration) Kind() Kind {
	return KindCloud
}

func (c *CloudConfiguration) Name() string {
	return "Clover Cloud WebSocket Connector"
}

func (c *CloudConfiguration) MessagePackageName() string {
	return cloudPackageName
}

func (c *CloudConfiguration) CloudSettings() transport.CloudSettings {
	return c.settings
}

func (c *CloudConfiguration) DeviceType() Constructor {
	return NewCloudDevice
}

func (c *CloudConfiguration) NewTransport() (*transport.Transport, error) {
	switch {
	case c.settings.Server == "":
		return nil, invalid("cloud configuration needs a server")
	case c.settings.AccessToken == "":
		return nil, invalid("cloud configuration needs an access token")
	case c.settings.MerchantID == "":
		return nil, invalid("cloud configuration needs a merchant id")
	case c.settings.DeviceID == "":
		return nil, invalid("cloud configuration needs a device id")
	}

	var httpOpts []transport.HTTPOption
	if c.opts.httpClient != nil {
		httpOpts = append(httpOpts, transport.WithHTTPClient(c.opts.httpClient))
	}
	strategy := transport.NewCloudStrategy(c.settings, transport.NewHTTPSupport(httpOpts...))
	return c.newTransport(strategy), nil
}
