// Package framing extracts packets from a noisy serial byte stream.
//
// A frame on the wire is
//
//	0x21 0x22 <len> <len bytes of payload>
//
// Anything that does not fit this shape is discarded while the parser hunts
// for the next start marker.
package framing

import (
	"errors"
	"fmt"
)

// Start markers of a frame, in wire order.
const (
	Marker0 byte = 0x21
	Marker1 byte = 0x22

	// HeaderLen is marker0, marker1 and the length byte.
	HeaderLen = 3
	// MaxPayload is the largest length a single length byte can declare.
	MaxPayload = 255
)

// ErrPayloadTooLarge is returned when encoding more than MaxPayload bytes.
var ErrPayloadTooLarge = errors.New("framing: payload too large")

// Packet is one fully decoded frame. Payload is never shared with the parser.
type Packet struct {
	Payload []byte
}

func (p Packet) Len() int {
	return len(p.Payload)
}

// Encode returns the wire frame for payload.
func Encode(payload []byte) ([]byte, error) {
	return AppendFrame(make([]byte, 0, HeaderLen+len(payload)), payload)
}

// AppendFrame appends the wire frame for payload to dst.
func AppendFrame(dst, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return dst, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}
	dst = append(dst, Marker0, Marker1, byte(len(payload)))
	return append(dst, payload...), nil
}
