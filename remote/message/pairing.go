package message

// Methods handled by the connection layer rather than the device.
const (
	MethodPairingRequest  = "PAIRING_REQUEST"
	MethodPairingCode     = "PAIRING_CODE"
	MethodPairingResponse = "PAIRING_RESPONSE"

	// MethodForce is sent by the cloud relay when another client has taken
	// over the device session.
	MethodForce = "FORCE"
)

// PairingState values carried by a PairingResponse.
const (
	PairingStateInitial = "INITIAL"
	PairingStatePaired  = "PAIRED"
	PairingStateFailed  = "FAILED"
)

type PairingRequest struct {
	Name                string `json:"name"`
	SerialNumber        string `json:"serialNumber"`
	AuthenticationToken string `json:"authenticationToken,omitempty"`
}

type PairingCode struct {
	PairingCode string `json:"pairingCode"`
}

type PairingResponse struct {
	PairingState        string `json:"pairingState"`
	AuthenticationToken string `json:"authenticationToken,omitempty"`
}

// Paired reports whether the terminal accepted the pairing.
func (r PairingResponse) Paired() bool {
	return r.PairingState == PairingStatePaired || r.PairingState == PairingStateInitial
}

// ForceConnect is the payload of a MethodForce message.
type ForceConnect struct {
	FriendlyID string `json:"friendlyId,omitempty"`
	Message    string `json:"message,omitempty"`
}
