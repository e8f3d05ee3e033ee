package qrcode

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	at := time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)
	token, err := Encode(Payload{
		BookingID:         "b-1",
		EVOwnerNIC:        "200012345678",
		ChargingStationID: "s-1",
		GeneratedAt:       at,
	})
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.JSONEq(t, `{"BookingId":"b-1","EVOwnerNIC":"200012345678","ChargingStationId":"s-1","GeneratedAt":"2025-03-01T08:30:00Z"}`, string(raw))

	p, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "b-1", p.BookingID)
	assert.Equal(t, "200012345678", p.EVOwnerNIC)
	assert.Equal(t, "s-1", p.ChargingStationID)
	assert.True(t, at.Equal(p.GeneratedAt))
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"not base64":    "%%%not-base64%%%",
		"not json":      base64.StdEncoding.EncodeToString([]byte("hello")),
		"json array":    base64.StdEncoding.EncodeToString([]byte(`["b-1"]`)),
		"no booking id": base64.StdEncoding.EncodeToString([]byte(`{"EVOwnerNIC":"123456789V"}`)),
		"null":          base64.StdEncoding.EncodeToString([]byte(`null`)),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(token)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}
