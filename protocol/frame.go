package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// EncodeFrame wraps a payload in the DV3K frame envelope.
//
// Frame structure:
//
//	[START 0x61][LEN_H][LEN_L][TYPE][PAYLOAD...]
//
// The length field covers the payload only and is big-endian. Payloads
// longer than 0xFFFF bytes are rejected with ErrPayloadTooLarge; empty
// payloads are rejected with ErrEmptyPayload because a zero length
// field is the extended-length escape on the wire.
func EncodeFrame(typ PacketType, payload []byte) ([]byte, error) {
	if !typ.Valid() {
		return nil, &UnknownPacketTypeError{Tag: byte(typ)}
	}
	if len(payload) == 0 {
		return nil, ErrEmptyPayload
	}
	if len(payload) > MaxPayloadSize {
		return nil, ErrPayloadTooLarge
	}

	frame := make([]byte, 0, HeaderSize+len(payload))
	frame = append(frame, StartByte)

	lenBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(lenBytes, uint16(len(payload)))
	frame = append(frame, lenBytes...)

	frame = append(frame, byte(typ))
	frame = append(frame, payload...)

	return frame, nil
}

// DecodeFrame reads exactly one frame from the stream.
//
// The first byte must be the start marker; otherwise a *FramingError
// is returned with exactly that one byte consumed, leaving the caller
// to decide whether to resynchronize. A length field of 0x0000 is the
// extended-length escape: two further bytes carry the true big-endian
// payload length. Short reads surface as errors wrapping
// io.ErrUnexpectedEOF (or io.EOF on a clean close before the first
// byte).
func DecodeFrame(r io.Reader) (PacketType, []byte, error) {
	var start [1]byte
	if _, err := io.ReadFull(r, start[:]); err != nil {
		return 0, nil, fmt.Errorf("read start byte: %w", err)
	}
	if start[0] != StartByte {
		return 0, nil, &FramingError{Got: start[0]}
	}

	var hdr [3]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, fmt.Errorf("read frame header: %w", err)
	}

	length := int(binary.BigEndian.Uint16(hdr[0:2]))
	typ := PacketType(hdr[2])
	if !typ.Valid() {
		return 0, nil, &UnknownPacketTypeError{Tag: hdr[2]}
	}

	// Zero-length escape: the true length follows in two more bytes.
	if length == 0 {
		var ext [2]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return 0, nil, fmt.Errorf("read extended length: %w", err)
		}
		length = int(binary.BigEndian.Uint16(ext[:]))
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("read %d payload bytes: %w", length, err)
	}

	return typ, payload, nil
}
