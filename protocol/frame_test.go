package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFrame(t *testing.T) {
	tests := []struct {
		name    string
		typ     PacketType
		payload []byte
		want    []byte
	}{
		{
			name:    "control payload",
			typ:     PacketControl,
			payload: []byte{0x30},
			want:    []byte{0x61, 0x00, 0x01, 0x00, 0x30},
		},
		{
			name:    "channel payload",
			typ:     PacketChannel,
			payload: []byte{0x01, 0x48, 0xAA},
			want:    []byte{0x61, 0x00, 0x03, 0x01, 0x01, 0x48, 0xAA},
		},
		{
			name:    "speech payload length is big-endian",
			typ:     PacketSpeech,
			payload: bytes.Repeat([]byte{0x11}, 0x0142),
			want: append([]byte{0x61, 0x01, 0x42, 0x02},
				bytes.Repeat([]byte{0x11}, 0x0142)...),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeFrame(tt.typ, tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeFrameRejectsOversizedPayload(t *testing.T) {
	_, err := EncodeFrame(PacketSpeech, make([]byte, MaxPayloadSize+1))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	// The boundary itself is fine.
	_, err = EncodeFrame(PacketSpeech, make([]byte, MaxPayloadSize))
	assert.NoError(t, err)
}

func TestEncodeFrameRejectsEmptyPayload(t *testing.T) {
	_, err := EncodeFrame(PacketControl, nil)
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestEncodeFrameRejectsUnknownType(t *testing.T) {
	_, err := EncodeFrame(PacketType(0x7F), []byte{0x01})
	var unknown *UnknownPacketTypeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, byte(0x7F), unknown.Tag)
}

func TestDecodeFrame(t *testing.T) {
	frame, err := EncodeFrame(PacketControl, []byte{0x0B, 0x00})
	require.NoError(t, err)

	typ, payload, err := DecodeFrame(bytes.NewReader(frame))
	require.NoError(t, err)
	assert.Equal(t, PacketControl, typ)
	assert.Equal(t, []byte{0x0B, 0x00}, payload)
}

func TestDecodeFrameExtendedLength(t *testing.T) {
	// LEN=0x0000 escapes to two further length bytes.
	payload := bytes.Repeat([]byte{0x55}, 0x0123)
	frame := []byte{0x61, 0x00, 0x00, 0x02, 0x01, 0x23}
	frame = append(frame, payload...)

	r := bytes.NewReader(frame)
	typ, got, err := DecodeFrame(r)
	require.NoError(t, err)
	assert.Equal(t, PacketSpeech, typ)
	assert.Equal(t, payload, got)
	assert.Zero(t, r.Len(), "decode must consume exactly one frame")
}

func TestDecodeFrameBadStartByte(t *testing.T) {
	r := bytes.NewReader([]byte{0x00, 0x61, 0x00, 0x01, 0x00, 0x30})

	_, _, err := DecodeFrame(r)
	var framing *FramingError
	require.ErrorAs(t, err, &framing)
	assert.Equal(t, byte(0x00), framing.Got)

	// Exactly the one bad byte is consumed; the caller decides how to
	// resynchronize.
	assert.Equal(t, 5, r.Len())
}

func TestDecodeFrameUnknownType(t *testing.T) {
	_, _, err := DecodeFrame(bytes.NewReader([]byte{0x61, 0x00, 0x01, 0x09, 0xFF}))
	var unknown *UnknownPacketTypeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, byte(0x09), unknown.Tag)
}

func TestDecodeFrameTruncated(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"empty stream", nil},
		{"header cut short", []byte{0x61, 0x00}},
		{"payload cut short", []byte{0x61, 0x00, 0x04, 0x01, 0xAA, 0xBB}},
		{"extended length cut short", []byte{0x61, 0x00, 0x00, 0x01, 0x02}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeFrame(bytes.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF),
				"want EOF-class error, got %v", err)
		})
	}
}
