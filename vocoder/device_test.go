package vocoder

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ambetools/go-dv3k/protocol"
)

// mockStream simulates the serial link to a DV3K: queued response
// frames on the read side, captured command bytes on the write side.
type mockStream struct {
	in       bytes.Buffer
	out      bytes.Buffer
	writeErr error
	short    bool
	timeout  time.Duration
}

func (m *mockStream) Read(p []byte) (int, error) {
	return m.in.Read(p)
}

func (m *mockStream) Write(p []byte) (int, error) {
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	if m.short && len(p) > 1 {
		return m.out.Write(p[:len(p)-1])
	}
	return m.out.Write(p)
}

func (m *mockStream) SetReadTimeout(d time.Duration) error {
	m.timeout = d
	return nil
}

// queueFrame appends one well-formed response frame to the read side.
func (m *mockStream) queueFrame(t *testing.T, typ protocol.PacketType, payload []byte) {
	t.Helper()
	frame, err := protocol.EncodeFrame(typ, payload)
	require.NoError(t, err)
	m.in.Write(frame)
}

// queueRaw appends arbitrary bytes to the read side.
func (m *mockStream) queueRaw(b []byte) {
	m.in.Write(b)
}

func TestInitSuccess(t *testing.T) {
	stream := &mockStream{}
	stream.queueFrame(t, protocol.PacketControl, []byte{byte(protocol.FieldInit), 0x00})
	dev := New(stream)

	err := dev.Init(context.Background(), protocol.InitFlags{Encoder: true, Decoder: true})
	require.NoError(t, err)

	// Wire bytes of the command: frame header + INIT field with the
	// encoder and decoder bits set.
	assert.Equal(t, []byte{0x61, 0x00, 0x02, 0x00, 0x0B, 0x03}, stream.out.Bytes())
}

func TestInitDeviceRejected(t *testing.T) {
	stream := &mockStream{}
	stream.queueFrame(t, protocol.PacketControl, []byte{byte(protocol.FieldInit), 0x05})
	dev := New(stream)

	err := dev.Init(context.Background(), protocol.InitFlags{Encoder: true})

	var devErr *DeviceError
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, protocol.FieldInit, devErr.Field)
	assert.Equal(t, byte(0x05), devErr.Result)
}

func TestResetAwaitsReady(t *testing.T) {
	stream := &mockStream{}
	stream.queueFrame(t, protocol.PacketControl, []byte{byte(protocol.FieldReady)})
	dev := New(stream)

	require.NoError(t, dev.Reset(context.Background()))
	assert.Equal(t, []byte{0x61, 0x00, 0x01, 0x00, 0x33}, stream.out.Bytes())
}

func TestProductIDAndVersion(t *testing.T) {
	stream := &mockStream{}
	stream.queueFrame(t, protocol.PacketControl,
		append([]byte{byte(protocol.FieldProdID)}, "AMBE3000R\x00"...))
	stream.queueFrame(t, protocol.PacketControl,
		append([]byte{byte(protocol.FieldVerString)}, "V120.E100.XXXX.C106.G514.R009.B0010411.C0020208\x00"...))
	dev := New(stream)

	ctx := context.Background()
	prodID, err := dev.ProductID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AMBE3000R", prodID)

	version, err := dev.Version(ctx)
	require.NoError(t, err)
	assert.Contains(t, version, "V120")
}

func TestSetRateT(t *testing.T) {
	stream := &mockStream{}
	stream.queueFrame(t, protocol.PacketControl, []byte{byte(protocol.FieldRateT), 0x00})
	dev := New(stream)

	require.NoError(t, dev.SetRateT(context.Background(), 33))
	assert.Equal(t, []byte{0x61, 0x00, 0x02, 0x00, 0x09, 33}, stream.out.Bytes())
}

func TestSetChanFmtWord(t *testing.T) {
	stream := &mockStream{}
	stream.queueFrame(t, protocol.PacketControl, []byte{byte(protocol.FieldChanFmt), 0x00})
	dev := New(stream)

	err := dev.SetChanFmt(context.Background(), ModeReportAlways, SampleReportNot160)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x61, 0x00, 0x03, 0x00, 0x15, 0x00, 0x31}, stream.out.Bytes())
}

func TestDecodeChannelScenario(t *testing.T) {
	// 72-bit channel frame in, 160 PCM samples back.
	samples := make([]int16, protocol.FrameSamples)
	for i := range samples {
		samples[i] = int16(i - 80)
	}
	respPayload, err := protocol.EncodeSpeechPacket(&protocol.SpeechPacket{Samples: samples})
	require.NoError(t, err)

	stream := &mockStream{}
	stream.queueFrame(t, protocol.PacketSpeech, respPayload)
	dev := New(stream)

	ambe := protocol.BitArray{Bits: 72, Data: []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}}
	pkt, err := dev.DecodeChannel(context.Background(), ambe)
	require.NoError(t, err)
	require.Len(t, pkt.Samples, protocol.FrameSamples)
	assert.Equal(t, samples, pkt.Samples)

	// The outbound default-vocoder packet carries no 0x40 container.
	want := []byte{0x61, 0x00, 0x0B, 0x01, 0x01, 72, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	assert.Equal(t, want, stream.out.Bytes())
}

func TestDecodeChannelRejectsBadBitCount(t *testing.T) {
	dev := New(&mockStream{})

	_, err := dev.DecodeChannel(context.Background(), protocol.BitArray{Bits: 8, Data: []byte{0xFF}})
	assert.Error(t, err)
}

func TestEncodeSpeechScenario(t *testing.T) {
	respPayload, err := protocol.EncodeChannelPacket(&protocol.ChannelPacket{
		ChanData: &protocol.BitArray{Bits: 72, Data: bytes.Repeat([]byte{0xAB}, 9)},
	})
	require.NoError(t, err)

	stream := &mockStream{}
	stream.queueFrame(t, protocol.PacketChannel, respPayload)
	dev := New(stream)

	pcm := make([]int16, protocol.FrameSamples)
	pkt, err := dev.EncodeSpeech(context.Background(), pcm)
	require.NoError(t, err)
	require.NotNil(t, pkt.ChanData)
	assert.Equal(t, 72, pkt.ChanData.Bits)

	// Outbound speech packets lead with the 0x40 container.
	out := stream.out.Bytes()
	require.True(t, len(out) > protocol.HeaderSize)
	assert.Equal(t, byte(0x40), out[protocol.HeaderSize])
}

func TestEncodeSpeechRejectsWrongFrameSize(t *testing.T) {
	dev := New(&mockStream{})

	_, err := dev.EncodeSpeech(context.Background(), make([]int16, 80))
	assert.Error(t, err)
}

func TestEncodeToneSetsModeAndTone(t *testing.T) {
	respPayload, err := protocol.EncodeChannelPacket(&protocol.ChannelPacket{
		ChanData: &protocol.BitArray{Bits: 72, Data: bytes.Repeat([]byte{0x11}, 9)},
	})
	require.NoError(t, err)

	stream := &mockStream{}
	stream.queueFrame(t, protocol.PacketChannel, respPayload)
	dev := New(stream)

	pcm := make([]int16, protocol.FrameSamples)
	_, err = dev.EncodeTone(context.Background(), pcm, 5, 0x60)
	require.NoError(t, err)

	sent, err := protocol.DecodeSpeechPacket(stream.out.Bytes()[protocol.HeaderSize:])
	require.NoError(t, err)
	require.NotNil(t, sent.Mode)
	assert.Equal(t, uint16(protocol.ECModeTSEnable), *sent.Mode)
	require.NotNil(t, sent.Tone)
	assert.Equal(t, protocol.Tone{Index: 5, Amplitude: 0x60}, *sent.Tone)
}

func TestUnexpectedResponseType(t *testing.T) {
	// CHANNEL expected, SPEECH returned.
	stream := &mockStream{}
	stream.queueFrame(t, protocol.PacketSpeech, []byte{0x00, 0x00})
	dev := New(stream)

	_, err := dev.EncodeSpeech(context.Background(), make([]int16, protocol.FrameSamples))

	var unexpected *UnexpectedResponseTypeError
	require.ErrorAs(t, err, &unexpected)
	assert.Equal(t, protocol.PacketChannel, unexpected.Want)
	assert.Equal(t, protocol.PacketSpeech, unexpected.Got)
}

func TestNoResponse(t *testing.T) {
	// Nothing queued: the read side yields EOF, which is inconclusive.
	dev := New(&mockStream{})

	err := dev.Reset(context.Background())
	assert.ErrorIs(t, err, ErrNoResponse)
}

func TestWriteFailureIsNoResponse(t *testing.T) {
	stream := &mockStream{writeErr: errors.New("port gone")}
	dev := New(stream)

	err := dev.Reset(context.Background())
	assert.ErrorIs(t, err, ErrNoResponse)
}

func TestShortWriteStillReads(t *testing.T) {
	// A short write is logged, not fatal; the queued response still
	// completes the exchange.
	stream := &mockStream{short: true}
	stream.queueFrame(t, protocol.PacketControl, []byte{byte(protocol.FieldReady)})
	dev := New(stream)

	assert.NoError(t, dev.Reset(context.Background()))
}

func TestFramingErrorSurfaces(t *testing.T) {
	stream := &mockStream{}
	stream.queueRaw([]byte{0x00, 0x61, 0x00, 0x01, 0x00, 0x39})
	dev := New(stream)

	err := dev.Reset(context.Background())

	var framing *protocol.FramingError
	require.ErrorAs(t, err, &framing)
	assert.Equal(t, byte(0x00), framing.Got)
	assert.NotErrorIs(t, err, ErrNoResponse)
}

func TestExchangeTimeoutApplied(t *testing.T) {
	stream := &mockStream{}
	stream.queueFrame(t, protocol.PacketControl, []byte{byte(protocol.FieldReady)})
	dev := New(stream, WithExchangeTimeout(2*time.Second))

	require.NoError(t, dev.Reset(context.Background()))
	assert.Equal(t, 2*time.Second, stream.timeout)
}

func TestCancelledContext(t *testing.T) {
	stream := &mockStream{}
	stream.queueFrame(t, protocol.PacketControl, []byte{byte(protocol.FieldReady)})
	dev := New(stream)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := dev.Reset(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stream.out.Len(), "no bytes may hit the wire after cancellation")
}

func TestNilStreamPanics(t *testing.T) {
	assert.Panics(t, func() { New(nil) })
}

var _ io.ReadWriter = (*mockStream)(nil)
