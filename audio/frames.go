// Package audio handles the file-side representation of vocoder
// traffic: WAV containers for PCM and raw concatenated frames for
// compressed channel data. No signal processing happens here.
package audio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ambetools/go-dv3k/protocol"
)

// ChannelFrameBits is the full-rate compressed frame size in bits.
const ChannelFrameBits = 72

// ChannelFrameBytes is ceil(ChannelFrameBits/8).
const ChannelFrameBytes = 9

// Frames splits PCM samples into 160-sample vocoder frames, zero
// padding the final frame.
func Frames(samples []int16) [][]int16 {
	if len(samples) == 0 {
		return nil
	}

	n := (len(samples) + protocol.FrameSamples - 1) / protocol.FrameSamples
	frames := make([][]int16, 0, n)

	for off := 0; off < len(samples); off += protocol.FrameSamples {
		end := off + protocol.FrameSamples
		if end <= len(samples) {
			frames = append(frames, samples[off:end])
			continue
		}
		frame := make([]int16, protocol.FrameSamples)
		copy(frame, samples[off:])
		frames = append(frames, frame)
	}
	return frames
}

// ReadChannelFrames reads a raw stream of concatenated 9-byte
// compressed frames, as produced by WriteChannelFrames. A trailing
// partial frame is an error.
func ReadChannelFrames(r io.Reader) ([]protocol.BitArray, error) {
	var frames []protocol.BitArray
	for {
		buf := make([]byte, ChannelFrameBytes)
		_, err := io.ReadFull(r, buf)
		if err == io.EOF {
			return frames, nil
		}
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("truncated channel frame at frame %d", len(frames))
		}
		if err != nil {
			return nil, err
		}
		frames = append(frames, protocol.BitArray{Bits: ChannelFrameBits, Data: buf})
	}
}

// WriteChannelFrames writes compressed frames back to back with no
// framing; only full-rate 72-bit frames are accepted.
func WriteChannelFrames(w io.Writer, frames []protocol.BitArray) error {
	var buf bytes.Buffer
	for i, f := range frames {
		if f.Bits != ChannelFrameBits || len(f.Data) != ChannelFrameBytes {
			return fmt.Errorf("frame %d: want %d bits in %d bytes, got %d bits in %d bytes",
				i, ChannelFrameBits, ChannelFrameBytes, f.Bits, len(f.Data))
		}
		buf.Write(f.Data)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
