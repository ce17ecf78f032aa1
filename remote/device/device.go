package device

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kleeedolinux/remotepay.go/debug"
	"github.com/kleeedolinux/remotepay.go/remote"
	"github.com/kleeedolinux/remotepay.go/remote/message"
	"github.com/kleeedolinux/remotepay.go/remote/transport"
)

// Device is the application's handle on one terminal connection.
type Device interface {
	Configuration() Configuration
	Transport() *transport.Transport
	// Broadcaster receives the connection events of this device.
	Broadcaster() *remote.Broadcaster
	Initialize()
	// Send wraps payload in an envelope for method and sends it. It
	// returns transport.SendAccepted or transport.SendNotConnected.
	Send(method, payload string) int
	Dispose()
}

// Constructor builds the Device for a configuration.
type Constructor func(cfg Configuration, opts ...DeviceOption) (Device, error)

// MessageHandler receives every decoded inbound envelope.
type MessageHandler func(env message.Envelope)

type DeviceOption func(*deviceOptions)

type deviceOptions struct {
	broadcaster *remote.Broadcaster
	handler     MessageHandler
	logger      *zap.Logger
}

func WithBroadcaster(b *remote.Broadcaster) DeviceOption {
	return func(o *deviceOptions) {
		o.broadcaster = b
	}
}

func WithMessageHandler(h MessageHandler) DeviceOption {
	return func(o *deviceOptions) {
		o.handler = h
	}
}

// WithDeviceLogger overrides the logger taken from the configuration.
func WithDeviceLogger(l *zap.Logger) DeviceOption {
	return func(o *deviceOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Create builds the Device cfg asks for. Construction failures, including
// panics and nil configurations hidden behind an interface, are logged and
// reported as a nil Device.
func Create(cfg Configuration, opts ...DeviceOption) (d Device) {
	if cfg == nil {
		return nil
	}
	logger := debug.Logger()
	name := configurationName(cfg)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("device construction panicked",
				zap.String("configuration", name),
				zap.Any("panic", r),
			)
			d = nil
		}
	}()

	if l := cfg.Logger(); l != nil {
		logger = l
	}

	ctor := cfg.DeviceType()
	if ctor == nil {
		logger.Error("configuration has no device type", zap.String("configuration", name))
		return nil
	}

	dev, err := ctor(cfg, opts...)
	if err != nil {
		logger.Error("device construction failed",
			zap.String("configuration", name),
			zap.Error(err),
		)
		return nil
	}
	return dev
}

// configurationName is cfg.Name(), or the dynamic type when Name panics.
func configurationName(cfg Configuration) (name string) {
	defer func() {
		if recover() != nil {
			name = fmt.Sprintf("%T", cfg)
		}
	}()
	return cfg.Name()
}

// WebSocketDevice talks to a terminal over a Transport and reports the
// connection lifecycle through a Broadcaster.
type WebSocketDevice struct {
	cfg         Configuration
	transport   *transport.Transport
	broadcaster *remote.Broadcaster
	handler     MessageHandler
	logger      *zap.Logger
}

// NewWebSocketDevice is the Constructor of the direct and paired
// configurations.
func NewWebSocketDevice(cfg Configuration, opts ...DeviceOption) (Device, error) {
	d, err := newWebSocketDevice(cfg, opts)
	if err != nil {
		return nil, err
	}
	d.transport.AddObserver(&deviceObserver{device: d})
	return d, nil
}

func newWebSocketDevice(cfg Configuration, opts []DeviceOption) (*WebSocketDevice, error) {
	o := deviceOptions{logger: cfg.Logger()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.broadcaster == nil {
		o.broadcaster = remote.NewBroadcaster(remote.WithLogger(o.logger))
	}

	tr, err := cfg.NewTransport()
	if err != nil {
		return nil, fmt.Errorf("building %s transport: %w", cfg.Name(), err)
	}

	return &WebSocketDevice{
		cfg:         cfg,
		transport:   tr,
		broadcaster: o.broadcaster,
		handler:     o.handler,
		logger:      o.logger.With(zap.String("device", cfg.Name())),
	}, nil
}

func (d *WebSocketDevice) Configuration() Configuration {
	return d.cfg
}

func (d *WebSocketDevice) Transport() *transport.Transport {
	return d.transport
}

func (d *WebSocketDevice) Broadcaster() *remote.Broadcaster {
	return d.broadcaster
}

func (d *WebSocketDevice) Initialize() {
	d.transport.Initialize()
}

func (d *WebSocketDevice) Send(method, payload string) int {
	env := message.New(method, payload)
	env.PackageName = d.cfg.MessagePackageName()

	text, err := message.Encode(env)
	if err != nil {
		d.logger.Warn("dropping unencodable message", zap.String("method", method), zap.Error(err))
		return transport.SendNotConnected
	}
	return d.transport.SendMessage(text)
}

func (d *WebSocketDevice) Dispose() {
	d.transport.Dispose()
}

func (d *WebSocketDevice) onMessage(text string) {
	env, err := message.Decode(text)
	if err != nil {
		d.logger.Warn("undecodable frame", zap.Error(err))
		d.broadcaster.NotifyOnDeviceError(remote.DeviceErrorEvent{
			Type:    remote.ErrorTypeCommunication,
			Code:    "INVALID_MESSAGE",
			Message: "received a frame that is not a message envelope",
			Cause:   err,
		})
		return
	}

	if d.handler != nil {
		d.handler(env)
	} else {
		d.logger.Debug("unhandled message", zap.String("method", env.Method))
	}
}

// deviceObserver adapts Transport events to the device. onForce, when
// set, sees relay takeover messages before the message handler does.
type deviceObserver struct {
	device  *WebSocketDevice
	onForce func(env message.Envelope)
}

func (o *deviceObserver) OnDeviceConnected(*transport.Transport) {
	o.device.broadcaster.NotifyOnConnect()
}

func (o *deviceObserver) OnDeviceReady(*transport.Transport) {
	o.device.broadcaster.NotifyOnReady(remote.MerchantInfo{})
}

func (o *deviceObserver) OnDeviceDisconnected(_ *transport.Transport, msg string) {
	o.device.broadcaster.NotifyOnDisconnect(msg)
}

func (o *deviceObserver) OnMessage(text string) {
	if o.onForce != nil {
		if env, err := message.Decode(text); err == nil && env.Method == message.MethodForce {
			o.onForce(env)
			return
		}
	}
	o.device.onMessage(text)
}

// ErrDeviceTakenOver is the cause of the device error reported when the
// cloud relay hands the device to another client.
var ErrDeviceTakenOver = errors.New("device: taken over by another client")

// CloudDevice is a WebSocketDevice behind the cloud relay. When another
// client forces a connection to the same terminal it reports a device
// error and disposes its transport.
type CloudDevice struct {
	*WebSocketDevice
}

// NewCloudDevice is the Constructor of the cloud configuration.
func NewCloudDevice(cfg Configuration, opts ...DeviceOption) (Device, error) {
	d, err := newWebSocketDevice(cfg, opts)
	if err != nil {
		return nil, err
	}

	c := &CloudDevice{WebSocketDevice: d}
	d.transport.AddObserver(&deviceObserver{device: d, onForce: c.onForce})
	return c, nil
}

func (c *CloudDevice) onForce(env message.Envelope) {
	var force message.ForceConnect
	if err := env.DecodePayload(&force); err != nil {
		c.logger.Debug("FORCE message without payload", zap.Error(err))
	}

	msg := force.Message
	if msg == "" {
		msg = "another client connected to the device"
	}
	if force.FriendlyID != "" {
		msg = fmt.Sprintf("%s (%s)", msg, force.FriendlyID)
	}

	c.broadcaster.NotifyOnDeviceError(remote.DeviceErrorEvent{
		Type:    remote.ErrorTypeCommunication,
		Code:    message.MethodForce,
		Message: msg,
		Cause:   ErrDeviceTakenOver,
	})
	c.Dispose()
}
