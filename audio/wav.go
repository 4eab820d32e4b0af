package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// SampleRate is the AMBE-3000R PCM rate in Hz.
const SampleRate = 8000

// wavHeader is the canonical 44-byte RIFF/WAVE header for mono PCM.
type wavHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32
}

// EncodeWAV wraps mono 16-bit PCM samples in a WAV container.
func EncodeWAV(samples []int16, sampleRate int) ([]byte, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples to encode")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	dataSize := uint32(len(samples) * 2)
	hdr := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1, // PCM
		NumChannels:   1,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate) * 2,
		BlockAlign:    2,
		BitsPerSample: 16,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(samples)*2))
	if err := binary.Write(buf, binary.LittleEndian, hdr); err != nil {
		return nil, fmt.Errorf("write WAV header: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("write samples: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeWAV extracts mono 16-bit PCM samples and the sample rate from
// a WAV container. Multi-channel and non-16-bit files are rejected;
// resampling is out of scope.
func DecodeWAV(data []byte) ([]int16, int, error) {
	if len(data) < 44 {
		return nil, 0, fmt.Errorf("WAV data too short: %d bytes", len(data))
	}

	var hdr wavHeader
	if err := binary.Read(bytes.NewReader(data[:44]), binary.LittleEndian, &hdr); err != nil {
		return nil, 0, fmt.Errorf("read WAV header: %w", err)
	}

	if string(hdr.ChunkID[:]) != "RIFF" || string(hdr.Format[:]) != "WAVE" {
		return nil, 0, fmt.Errorf("not a RIFF/WAVE file")
	}
	if hdr.AudioFormat != 1 {
		return nil, 0, fmt.Errorf("unsupported audio format %d, want PCM", hdr.AudioFormat)
	}
	if hdr.NumChannels != 1 {
		return nil, 0, fmt.Errorf("unsupported channel count %d, want mono", hdr.NumChannels)
	}
	if hdr.BitsPerSample != 16 {
		return nil, 0, fmt.Errorf("unsupported sample width %d bits, want 16", hdr.BitsPerSample)
	}

	avail := len(data) - 44
	size := int(hdr.Subchunk2Size)
	if size > avail {
		size = avail
	}
	size -= size % 2

	samples := make([]int16, size/2)
	if err := binary.Read(bytes.NewReader(data[44:44+size]), binary.LittleEndian, &samples); err != nil {
		return nil, 0, fmt.Errorf("read samples: %w", err)
	}
	return samples, int(hdr.SampleRate), nil
}
