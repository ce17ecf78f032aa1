package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kleeedolinux/remotepay.go/remote/message"
)

// CloudSettings locate a device behind the cloud relay.
type CloudSettings struct {
	// Server is the base URL of the relay, e.g. https://www.clover.com.
	Server      string
	AccessToken string
	MerchantID  string
	DeviceID    string
	// FriendlyID names this client to other clients of the same device.
	FriendlyID string
	// ForceConnect takes the device over from any client already connected.
	ForceConnect bool
}

// CloudStrategy asks the relay to notify the device before every
// connection attempt and connects to the websocket host the relay returns.
type CloudStrategy struct {
	settings CloudSettings
	http     *HTTPSupport
}

type cloudNotifyRequest struct {
	DeviceID     string `json:"deviceId"`
	FriendlyID   string `json:"friendlyId"`
	ForceConnect bool   `json:"forceConnect"`
}

type cloudNotifyResponse struct {
	Sent  bool   `json:"sent"`
	Host  string `json:"host"`
	Token string `json:"token"`
}

func NewCloudStrategy(settings CloudSettings, httpSupport *HTTPSupport) *CloudStrategy {
	if httpSupport == nil {
		httpSupport = NewHTTPSupport()
	}
	return &CloudStrategy{settings: settings, http: httpSupport}
}

func (c *CloudStrategy) Name() string {
	return "cloud"
}

func (c *CloudStrategy) Settings() CloudSettings {
	return c.settings
}

// NotifyURL is where the relay is asked to wake the device.
func (c *CloudStrategy) NotifyURL() string {
	return fmt.Sprintf("%s/v2/merchant/%s/remote_pay",
		strings.TrimRight(c.settings.Server, "/"),
		url.PathEscape(c.settings.MerchantID),
	)
}

func (c *CloudStrategy) Endpoint(ctx context.Context) (Endpoint, error) {
	if c.settings.Server == "" || c.settings.MerchantID == "" || c.settings.DeviceID == "" {
		return Endpoint{}, fmt.Errorf("%w: cloud server, merchant and device are required", ErrInvalidEndpoint)
	}

	header := make(http.Header)
	header.Set("Authorization", "Bearer "+c.settings.AccessToken)

	req := cloudNotifyRequest{
		DeviceID:     c.settings.DeviceID,
		FriendlyID:   c.settings.FriendlyID,
		ForceConnect: c.settings.ForceConnect,
	}
	var resp cloudNotifyResponse
	if err := c.http.PostJSON(ctx, c.NotifyURL(), header, req, &resp); err != nil {
		return Endpoint{}, err
	}
	if !resp.Sent {
		return Endpoint{}, ErrDeviceNotNotified
	}

	return c.socketEndpoint(resp)
}

func (c *CloudStrategy) socketEndpoint(resp cloudNotifyResponse) (Endpoint, error) {
	host, err := url.Parse(resp.Host)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: relay host: %w", ErrInvalidEndpoint, err)
	}

	switch host.Scheme {
	case "https", "wss":
		host.Scheme = "wss"
	case "http", "ws":
		host.Scheme = "ws"
	default:
		return Endpoint{}, fmt.Errorf("%w: relay host %q", ErrInvalidEndpoint, resp.Host)
	}

	host.Path = strings.TrimRight(host.Path, "/") + "/support/remote_pay/cs"
	q := url.Values{}
	q.Set("token", resp.Token)
	q.Set("friendlyId", c.settings.FriendlyID)
	q.Set("forceConnect", strconv.FormatBool(c.settings.ForceConnect))
	host.RawQuery = q.Encode()

	return Endpoint{URL: host.String()}, nil
}

func (c *CloudStrategy) OnOpen(*Transport) bool {
	return false
}

// OnMessage logs relay takeovers. The frame still reaches observers so the
// device layer can react to it.
func (c *CloudStrategy) OnMessage(t *Transport, text string) bool {
	env, err := message.Decode(text)
	if err != nil || env.Method != message.MethodForce {
		return false
	}

	var force message.ForceConnect
	if err := env.DecodePayload(&force); err != nil {
		t.logger.Debug("FORCE message without payload", zap.Error(err))
	}
	t.logger.Warn("device taken over by another client", zap.String("friendly_id", force.FriendlyID))
	return false
}
