package protocol

import "fmt"

// BitArray is a bit-packed buffer as carried by channel-data and
// raw-sample sub-fields: Bits logical bits stored MSB-first in
// ceil(Bits/8) bytes. Bits is authoritative; padding bits in the last
// byte are undefined and must never be used to re-derive the count.
type BitArray struct {
	// Bits is the logical bit count (40-192 for channel data)
	Bits int

	// Data holds ceil(Bits/8) bytes, MSB-first within each byte
	Data []byte
}

// NewBitArray validates and wraps a bit-packed buffer.
func NewBitArray(bits int, data []byte) (BitArray, error) {
	if bits < 0 || bits > 0xFF {
		return BitArray{}, fmt.Errorf("bit count %d outside byte range", bits)
	}
	if want := bitArrayBytes(bits); len(data) != want {
		return BitArray{}, fmt.Errorf("bit array needs %d bytes for %d bits, got %d", want, bits, len(data))
	}
	return BitArray{Bits: bits, Data: data}, nil
}

// bitArrayBytes returns ceil(bits/8).
func bitArrayBytes(bits int) int {
	return (bits + 7) / 8
}

// ChannelPacket is the decoded form of a CHANNEL payload: a sequence
// of optional sub-fields. A nil field means the device did not send
// it, which is structurally indistinguishable from "sent with zero
// value" — absence is the only signal the wire carries.
type ChannelPacket struct {
	// Channel0 records the leading 0x40 container field (outbound
	// packets carry it; default-vocoder packets do not)
	Channel0 bool

	// ChanData is the compressed vocoder frame (tag 0x01)
	ChanData *BitArray

	// ChanData4 is the alternate compressed frame field (tag 0x17)
	ChanData4 *BitArray

	// Mode is the 2-byte CMODE/ECMODE word (tag 0x02)
	Mode *uint16

	// Samples is the raw bit-packed sample field (tag 0x03)
	Samples *BitArray

	// Tone is the tone descriptor (tag 0x08)
	Tone *Tone

	// NumSamples is the untagged trailing sample-count byte some
	// channel variants carry after every tagged sub-field
	NumSamples *byte
}

// SpeechPacket is the decoded form of a SPEECH payload.
type SpeechPacket struct {
	// Channel0 records the leading 0x40 container field
	Channel0 bool

	// Samples is the PCM frame (tag 0x00), 156-164 samples
	Samples []int16

	// Mode is the 2-byte CMODE/DCMODE word (tag 0x02)
	Mode *uint16

	// Tone is the tone descriptor (tag 0x08)
	Tone *Tone
}

// Tone describes a generated tone: index into the chip's tone table
// and an amplitude byte.
type Tone struct {
	Index     byte
	Amplitude byte
}
