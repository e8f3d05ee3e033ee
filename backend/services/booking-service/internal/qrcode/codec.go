// Package qrcode encodes and decodes the identity token printed in booking QR codes.
package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ErrMalformedToken is returned for tokens that do not decode to a booking identity.
var ErrMalformedToken = errors.New("qrcode: malformed token")

// Payload binds a booking to its owner and station. The JSON keys are part of the printed
// token format and must not change.
type Payload struct {
	BookingID         string    `json:"BookingId"`
	EVOwnerNIC        string    `json:"EVOwnerNIC"`
	ChargingStationID string    `json:"ChargingStationId"`
	GeneratedAt       time.Time `json:"GeneratedAt"`
}

// Encode returns the base64 token for p.
func Encode(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode parses a token produced by Encode.
func Decode(token string) (Payload, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Payload{}, ErrMalformedToken
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Payload{}, ErrMalformedToken
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, ErrMalformedToken
	}
	if strings.TrimSpace(p.BookingID) == "" {
		return Payload{}, ErrMalformedToken
	}
	return p, nil
}
