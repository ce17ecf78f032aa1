package transport

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/kleeedolinux/remotepay.go/remote/message"
)

// PairingHandler is told about the pairing exchange with a terminal.
type PairingHandler interface {
	// OnPairingCode delivers the code the terminal displays. The user
	// enters it on the terminal to approve this client.
	OnPairingCode(code string)
	// OnPairingSuccess delivers the token to present on later connections.
	OnPairingSuccess(authToken string)
}

// PairedStrategy connects to a terminal on the local network that requires
// pairing. Every new socket starts with a PAIRING_REQUEST; the device is not
// ready until the terminal answers with a successful PAIRING_RESPONSE.
type PairedStrategy struct {
	URL          string
	Header       http.Header
	POSName      string
	SerialNumber string

	handler PairingHandler

	mu        sync.Mutex
	authToken string
}

func NewPairedStrategy(url, posName, serialNumber, authToken string, handler PairingHandler) *PairedStrategy {
	return &PairedStrategy{
		URL:          url,
		POSName:      posName,
		SerialNumber: serialNumber,
		handler:      handler,
		authToken:    authToken,
	}
}

func (p *PairedStrategy) Name() string {
	return "paired"
}

// AuthToken returns the most recent token, either the one supplied at
// construction or the one issued by the terminal.
func (p *PairedStrategy) AuthToken() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.authToken
}

func (p *PairedStrategy) Endpoint(context.Context) (Endpoint, error) {
	if p.URL == "" {
		return Endpoint{}, ErrInvalidEndpoint
	}
	return Endpoint{URL: p.URL, Header: p.Header.Clone()}, nil
}

func (p *PairedStrategy) OnOpen(t *Transport) bool {
	req := message.PairingRequest{
		Name:                p.POSName,
		SerialNumber:        p.SerialNumber,
		AuthenticationToken: p.AuthToken(),
	}

	env, err := message.NewWithPayload(message.MethodPairingRequest, req)
	if err != nil {
		t.logger.Error("building pairing request", zap.Error(err))
		return true
	}
	text, err := message.Encode(env)
	if err != nil {
		t.logger.Error("encoding pairing request", zap.Error(err))
		return true
	}

	t.logger.Debug("sending pairing request", zap.Bool("token", req.AuthenticationToken != ""))
	t.SendMessage(text)
	return true
}

func (p *PairedStrategy) OnMessage(t *Transport, text string) bool {
	env, err := message.Decode(text)
	if err != nil {
		return false
	}

	switch env.Method {
	case message.MethodPairingCode:
		var code message.PairingCode
		if err := env.DecodePayload(&code); err != nil {
			t.logger.Warn("bad pairing code", zap.Error(err))
			return true
		}
		t.logger.Debug("received pairing code")
		if p.handler != nil {
			p.handler.OnPairingCode(code.PairingCode)
		}
		return true

	case message.MethodPairingResponse:
		var resp message.PairingResponse
		if err := env.DecodePayload(&resp); err != nil {
			t.logger.Warn("bad pairing response", zap.Error(err))
			return true
		}
		if !resp.Paired() {
			t.logger.Warn("pairing failed", zap.String("state", resp.PairingState))
			return true
		}

		p.mu.Lock()
		if resp.AuthenticationToken != "" {
			p.authToken = resp.AuthenticationToken
		}
		token := p.authToken
		p.mu.Unlock()

		t.logger.Info("paired")
		if p.handler != nil {
			p.handler.OnPairingSuccess(token)
		}
		t.HandshakeComplete()
		return true
	}

	return false
}
