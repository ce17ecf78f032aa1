package remote

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNoPayload = errors.New("remote: event has no payload")

// Event is a device response or event as it arrived. The payment data model
// lives outside this module, so the payload is kept as raw JSON for the
// application to decode into its own types.
type Event struct {
	// Method is the wire method the event was decoded from.
	Method  string
	Payload json.RawMessage
}

// NewEvent wraps a wire method and its payload text.
func NewEvent(method, payload string) Event {
	e := Event{Method: method}
	if payload != "" {
		e.Payload = json.RawMessage(payload)
	}
	return e
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v interface{}) error {
	if len(e.Payload) == 0 {
		return ErrNoPayload
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("remote: decoding %s: %w", e.Method, err)
	}
	return nil
}

// MerchantInfo accompanies OnDeviceReady. It is empty when the device
// became ready without reporting one.
type MerchantInfo struct {
	Event
}

// TipAdded reports a tip entered on the device, in minor currency units.
type TipAdded struct {
	TipAmount int64
}

// DeviceErrorType classifies a DeviceErrorEvent.
type DeviceErrorType string

const (
	ErrorTypeCommunication DeviceErrorType = "COMMUNICATION"
	ErrorTypeValidation    DeviceErrorType = "VALIDATION"
	ErrorTypeException     DeviceErrorType = "EXCEPTION"
)

// DeviceErrorEvent reports a problem talking to the device.
type DeviceErrorEvent struct {
	Type    DeviceErrorType
	Code    string
	Message string
	Cause   error
}

func (e DeviceErrorEvent) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Type, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s %s: %s", e.Type, e.Code, e.Message)
}

func (e DeviceErrorEvent) Unwrap() error {
	return e.Cause
}
