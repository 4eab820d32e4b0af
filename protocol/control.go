package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// InitFlags selects which vocoder stages the INIT command restarts.
type InitFlags struct {
	Encoder       bool
	Decoder       bool
	EchoCanceller bool
}

// BuildInitCmd constructs the INIT control field.
//
// Field structure:
//
//	[FIELD_ID 0x0B][FLAGS]
//
// FLAGS combines InitEncoder, InitDecoder and InitEchoCanceller bits.
func BuildInitCmd(flags InitFlags) []byte {
	var b byte
	if flags.Encoder {
		b |= InitEncoder
	}
	if flags.Decoder {
		b |= InitDecoder
	}
	if flags.EchoCanceller {
		b |= InitEchoCanceller
	}
	return []byte{byte(FieldInit), b}
}

// BuildResetCmd constructs the RESET control field. It has no body;
// the device answers with an unsolicited-style READY field.
func BuildResetCmd() []byte {
	return []byte{byte(FieldReset)}
}

// BuildProdIDCmd constructs the PRODID query field.
func BuildProdIDCmd() []byte {
	return []byte{byte(FieldProdID)}
}

// BuildVersionCmd constructs the VERSTRING query field.
func BuildVersionCmd() []byte {
	return []byte{byte(FieldVerString)}
}

// BuildRateTCmd constructs the RATET field selecting a rate table
// entry by index.
//
// Field structure:
//
//	[FIELD_ID 0x09][RATE_IDX]
func BuildRateTCmd(rateIdx byte) []byte {
	return []byte{byte(FieldRateT), rateIdx}
}

// BuildChanFmtCmd constructs the CHANFMT field from a 2-byte policy
// word (see FmtMode* and FmtSamples* bits).
//
// Field structure:
//
//	[FIELD_ID 0x15][FMT_H][FMT_L]
func BuildChanFmtCmd(fmtWord uint16) []byte {
	return buildWordCmd(FieldChanFmt, fmtWord)
}

// BuildSpchFmtCmd constructs the SPCHFMT field from a 2-byte policy
// word.
func BuildSpchFmtCmd(fmtWord uint16) []byte {
	return buildWordCmd(FieldSpchFmt, fmtWord)
}

// BuildECModeCmd constructs the ECMODE field from a 2-byte flags word
// (Table 12 bits).
func BuildECModeCmd(flags uint16) []byte {
	return buildWordCmd(FieldECMode, flags)
}

// BuildDCModeCmd constructs the DCMODE field from a 2-byte flags word
// (Table 14 bits).
func BuildDCModeCmd(flags uint16) []byte {
	return buildWordCmd(FieldDCMode, flags)
}

func buildWordCmd(field FieldID, word uint16) []byte {
	cmd := make([]byte, 3)
	cmd[0] = byte(field)
	binary.BigEndian.PutUint16(cmd[1:], word)
	return cmd
}

// ParseResultResponse parses a result-bearing control response.
//
// Body format:
//
//	[FIELD_ID][RESULT]
//
// Returns the raw result byte; ResultSuccess (0x00) means the device
// accepted the command, anything else is a device-reported failure.
func ParseResultResponse(data []byte, field FieldID) (byte, error) {
	rest, err := expectField(data, field)
	if err != nil {
		return 0, err
	}
	if len(rest) < 1 {
		return 0, fmt.Errorf("%s response missing result byte", field)
	}
	return rest[0], nil
}

// ParseReadyResponse parses the READY field the chip emits after a
// reset. The field has no body.
func ParseReadyResponse(data []byte) error {
	_, err := expectField(data, FieldReady)
	return err
}

// ParseStringResponse parses a control response carrying a
// NUL-terminated identification string (PRODID, VERSTRING).
//
// Body format:
//
//	[FIELD_ID][STRING...][0x00]
func ParseStringResponse(data []byte, field FieldID) (string, error) {
	rest, err := expectField(data, field)
	if err != nil {
		return "", err
	}
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", ErrMalformedString
	}
	return string(rest[:end]), nil
}

// expectField checks the leading field identifier and returns the
// remaining body bytes.
func expectField(data []byte, field FieldID) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty control payload, expected %s", field)
	}
	if got := FieldID(data[0]); got != field {
		return nil, &UnexpectedFieldError{Want: field, Got: got}
	}
	return data[1:], nil
}
