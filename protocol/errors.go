package protocol

import (
	"errors"
	"fmt"
)

// ErrPayloadTooLarge indicates a payload longer than the 16-bit frame
// length field can express.
var ErrPayloadTooLarge = errors.New("payload exceeds 16-bit frame length")

// ErrEmptyPayload indicates an attempt to encode a frame with no
// payload. A zero length field means "extended length follows" on the
// wire, so an empty payload has no encoding.
var ErrEmptyPayload = errors.New("empty payload is not encodable (zero length is the extended-length escape)")

// ErrMalformedString indicates a C-string response body with no NUL
// terminator inside the payload.
var ErrMalformedString = errors.New("unterminated string in response body")

// FramingError indicates a byte stream that does not begin with the
// frame start marker. Exactly one byte has been consumed; the caller
// decides whether to resynchronize.
type FramingError struct {
	// Got is the byte read where StartByte was expected
	Got byte
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("bad frame start byte: got 0x%02X, expected 0x%02X", e.Got, StartByte)
}

// UnknownPacketTypeError indicates a frame type tag outside the
// defined CONTROL/CHANNEL/SPEECH set.
type UnknownPacketTypeError struct {
	Tag byte
}

func (e *UnknownPacketTypeError) Error() string {
	return fmt.Sprintf("unknown packet type 0x%02X", e.Tag)
}

// UnexpectedFieldError indicates a control response whose leading
// field identifier does not match the command that was issued.
type UnexpectedFieldError struct {
	Want FieldID
	Got  FieldID
}

func (e *UnexpectedFieldError) Error() string {
	return fmt.Sprintf("unexpected control field: got %s, expected %s", e.Got, e.Want)
}

// TrailingBytesError reports payload bytes left over after all
// recognized sub-fields were decoded. It is recoverable: the decoded
// packet is still returned alongside it.
type TrailingBytesError struct {
	// Rest holds the unconsumed payload bytes
	Rest []byte
}

func (e *TrailingBytesError) Error() string {
	return fmt.Sprintf("%d trailing bytes after recognized sub-fields", len(e.Rest))
}
