package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPSupport performs the JSON requests some strategies need before they
// can open a socket.
type HTTPSupport struct {
	client  *http.Client
	headers http.Header
}

type HTTPOption func(*HTTPSupport)

func WithHTTPClient(client *http.Client) HTTPOption {
	return func(h *HTTPSupport) {
		if client != nil {
			h.client = client
		}
	}
}

// WithHTTPHeaders adds headers sent with every request.
func WithHTTPHeaders(headers http.Header) HTTPOption {
	return func(h *HTTPSupport) {
		for k, v := range headers {
			h.headers[k] = v
		}
	}
}

func NewHTTPSupport(opts ...HTTPOption) *HTTPSupport {
	h := &HTTPSupport{
		client:  &http.Client{Timeout: 30 * time.Second},
		headers: make(http.Header),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// PostJSON posts body as JSON and decodes the response into out, which may
// be nil. Non-2xx responses wrap ErrHandshakeFailed.
func (h *HTTPSupport) PostJSON(ctx context.Context, url string, header http.Header, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for _, hs := range []http.Header{h.headers, header} {
		for k, values := range hs {
			for _, v := range values {
				req.Header.Add(k, v)
			}
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s: %s", ErrHandshakeFailed, resp.Status, bytes.TrimSpace(msg))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %w", ErrHandshakeFailed, err)
	}
	return nil
}
