package vocoder

import (
	"errors"
	"fmt"

	"github.com/ambetools/go-dv3k/protocol"
)

// ErrNoResponse indicates the device produced no decodable frame
// before the read timed out or the stream ended. It is inconclusive:
// the device may or may not have acted on the command.
var ErrNoResponse = errors.New("no response from device")

// DeviceError indicates a well-formed response whose result byte was
// non-zero: the device understood the command and rejected it. This is
// distinct from every protocol-level failure, which never carries a
// parsed result.
type DeviceError struct {
	// Field is the control field the command addressed
	Field protocol.FieldID

	// Result is the non-zero result byte from the response
	Result byte
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s rejected by device: result 0x%02X", e.Field, e.Result)
}

// UnexpectedResponseTypeError indicates a response frame of the wrong
// packet class for the outstanding exchange.
type UnexpectedResponseTypeError struct {
	Want protocol.PacketType
	Got  protocol.PacketType
}

func (e *UnexpectedResponseTypeError) Error() string {
	return fmt.Sprintf("unexpected response type: got %s, expected %s", e.Got, e.Want)
}
