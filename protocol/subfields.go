package protocol

import (
	"encoding/binary"
	"fmt"
)

// EncodeChannelPacket serializes a channel payload as a concatenation
// of its present sub-fields in canonical order: channel-0 container,
// channel data, alternate channel data, mode flags, tone, then the
// untagged trailing sample count. Absent fields contribute nothing.
func EncodeChannelPacket(p *ChannelPacket) ([]byte, error) {
	var out []byte
	if p.Channel0 {
		out = append(out, TagChannel0)
	}
	var err error
	if out, err = appendBitArray(out, TagChanData, p.ChanData); err != nil {
		return nil, err
	}
	if out, err = appendBitArray(out, TagChanData4, p.ChanData4); err != nil {
		return nil, err
	}
	if p.Mode != nil {
		out = appendMode(out, *p.Mode)
	}
	if out, err = appendBitArray(out, TagSamples, p.Samples); err != nil {
		return nil, err
	}
	if p.Tone != nil {
		out = append(out, TagTone, p.Tone.Index, p.Tone.Amplitude)
	}
	if p.NumSamples != nil {
		out = append(out, *p.NumSamples)
	}
	return out, nil
}

// EncodeSpeechPacket serializes a speech payload: channel-0 container,
// PCM samples, mode flags, tone.
func EncodeSpeechPacket(p *SpeechPacket) ([]byte, error) {
	var out []byte
	if p.Channel0 {
		out = append(out, TagChannel0)
	}
	if p.Samples != nil {
		if len(p.Samples) > 0xFF {
			return nil, fmt.Errorf("speech frame of %d samples exceeds count byte", len(p.Samples))
		}
		out = append(out, TagSpeechData, byte(len(p.Samples)))
		for _, s := range p.Samples {
			out = append(out, byte(uint16(s)>>8), byte(uint16(s)))
		}
	}
	if p.Mode != nil {
		out = appendMode(out, *p.Mode)
	}
	if p.Tone != nil {
		out = append(out, TagTone, p.Tone.Index, p.Tone.Amplitude)
	}
	return out, nil
}

func appendBitArray(out []byte, tag byte, a *BitArray) ([]byte, error) {
	if a == nil {
		return out, nil
	}
	if a.Bits < 0 || a.Bits > 0xFF {
		return nil, fmt.Errorf("bit count %d outside byte range", a.Bits)
	}
	if want := bitArrayBytes(a.Bits); len(a.Data) != want {
		return nil, fmt.Errorf("sub-field 0x%02X: %d bits need %d bytes, got %d", tag, a.Bits, want, len(a.Data))
	}
	out = append(out, tag, byte(a.Bits))
	return append(out, a.Data...), nil
}

func appendMode(out []byte, mode uint16) []byte {
	return append(out, TagMode, byte(mode>>8), byte(mode))
}

// DecodeChannelPacket decodes a CHANNEL payload by peeking each tag
// byte and dispatching on it. The sequence ends at the first
// unrecognized or repeated tag. A single leftover byte is taken as the
// untagged trailing NUM_SAMPLES field; any longer remainder is
// reported via *TrailingBytesError with the decoded packet still
// returned.
func DecodeChannelPacket(payload []byte) (*ChannelPacket, error) {
	p := &ChannelPacket{}
	rest := payload

	if len(rest) > 0 && rest[0] == TagChannel0 {
		p.Channel0 = true
		rest = rest[1:]
	}

loop:
	for len(rest) > 0 {
		// A lone byte can only be the untagged trailer, never the
		// start of a tagged sub-field.
		if len(rest) == 1 {
			break
		}
		switch rest[0] {
		case TagChanData:
			if p.ChanData != nil {
				break loop
			}
			a, n, err := decodeBitArray(rest)
			if err != nil {
				return nil, err
			}
			p.ChanData, rest = a, rest[n:]
		case TagChanData4:
			if p.ChanData4 != nil {
				break loop
			}
			a, n, err := decodeBitArray(rest)
			if err != nil {
				return nil, err
			}
			p.ChanData4, rest = a, rest[n:]
		case TagMode:
			if p.Mode != nil {
				break loop
			}
			m, err := decodeMode(rest)
			if err != nil {
				return nil, err
			}
			p.Mode, rest = m, rest[3:]
		case TagSamples:
			if p.Samples != nil {
				break loop
			}
			a, n, err := decodeBitArray(rest)
			if err != nil {
				return nil, err
			}
			p.Samples, rest = a, rest[n:]
		case TagTone:
			if p.Tone != nil {
				break loop
			}
			t, err := decodeTone(rest)
			if err != nil {
				return nil, err
			}
			p.Tone, rest = t, rest[3:]
		default:
			break loop
		}
	}

	// The trailing sample count carries no tag of its own; a single
	// leftover byte can only be that field.
	if len(rest) == 1 {
		n := rest[0]
		p.NumSamples = &n
		return p, nil
	}
	if len(rest) > 1 {
		return p, &TrailingBytesError{Rest: rest}
	}
	return p, nil
}

// DecodeSpeechPacket decodes a SPEECH payload via the same
// peek-tag/dispatch loop. Leftover bytes are reported via
// *TrailingBytesError with the decoded packet still returned.
func DecodeSpeechPacket(payload []byte) (*SpeechPacket, error) {
	p := &SpeechPacket{}
	rest := payload

	if len(rest) > 0 && rest[0] == TagChannel0 {
		p.Channel0 = true
		rest = rest[1:]
	}

loop:
	for len(rest) > 0 {
		switch rest[0] {
		case TagSpeechData:
			if p.Samples != nil {
				break loop
			}
			if len(rest) < 2 {
				return nil, fmt.Errorf("speech data sub-field missing sample count")
			}
			count := int(rest[1])
			if len(rest) < 2+2*count {
				return nil, fmt.Errorf("speech data sub-field truncated: %d samples need %d bytes, have %d",
					count, 2*count, len(rest)-2)
			}
			samples := make([]int16, count)
			for i := 0; i < count; i++ {
				samples[i] = int16(binary.BigEndian.Uint16(rest[2+2*i : 4+2*i]))
			}
			p.Samples, rest = samples, rest[2+2*count:]
		case TagMode:
			if p.Mode != nil {
				break loop
			}
			m, err := decodeMode(rest)
			if err != nil {
				return nil, err
			}
			p.Mode, rest = m, rest[3:]
		case TagTone:
			if p.Tone != nil {
				break loop
			}
			t, err := decodeTone(rest)
			if err != nil {
				return nil, err
			}
			p.Tone, rest = t, rest[3:]
		default:
			break loop
		}
	}

	if len(rest) > 0 {
		return p, &TrailingBytesError{Rest: rest}
	}
	return p, nil
}

// decodeBitArray decodes a tagged bit-packed sub-field and returns it
// with the total number of bytes consumed (tag + count + data).
func decodeBitArray(rest []byte) (*BitArray, int, error) {
	if len(rest) < 2 {
		return nil, 0, fmt.Errorf("sub-field 0x%02X missing bit count", rest[0])
	}
	bits := int(rest[1])
	n := bitArrayBytes(bits)
	if len(rest) < 2+n {
		return nil, 0, fmt.Errorf("sub-field 0x%02X truncated: %d bits need %d bytes, have %d",
			rest[0], bits, n, len(rest)-2)
	}
	data := make([]byte, n)
	copy(data, rest[2:2+n])
	return &BitArray{Bits: bits, Data: data}, 2 + n, nil
}

func decodeMode(rest []byte) (*uint16, error) {
	if len(rest) < 3 {
		return nil, fmt.Errorf("mode sub-field truncated: need 2 body bytes, have %d", len(rest)-1)
	}
	m := binary.BigEndian.Uint16(rest[1:3])
	return &m, nil
}

func decodeTone(rest []byte) (*Tone, error) {
	if len(rest) < 3 {
		return nil, fmt.Errorf("tone sub-field truncated: need 2 body bytes, have %d", len(rest)-1)
	}
	return &Tone{Index: rest[1], Amplitude: rest[2]}, nil
}
