package vocoder

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ambetools/go-dv3k/protocol"
)

// Device drives one AMBE-3000R vocoder over a bidirectional byte
// stream. The protocol is strictly half-duplex request/response: every
// exchange writes one frame and blocks for exactly one response frame.
// A mutex serializes whole exchanges, so a Device shared between
// callers never interleaves two commands.
type Device struct {
	stream io.ReadWriter
	reader *bufio.Reader
	config Config

	mu sync.Mutex
}

// readTimeoutSetter is implemented by serial ports
// (go.bug.st/serial.Port among them) that support a blocking-read
// timeout.
type readTimeoutSetter interface {
	SetReadTimeout(time.Duration) error
}

// New creates a Device on an already-open byte stream. Opening and
// configuring the physical serial port is the caller's concern (see
// the serialport package).
//
// Example:
//
//	port, _ := serialport.Open(path)
//	dev := vocoder.New(port,
//	    vocoder.WithLogger(logger),
//	    vocoder.WithExchangeTimeout(5*time.Second),
//	)
func New(stream io.ReadWriter, opts ...Option) *Device {
	if stream == nil {
		panic("stream cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Device{
		stream: stream,
		reader: bufio.NewReader(stream),
		config: cfg,
	}
}

// Init restarts the selected vocoder stages. A non-zero result byte
// surfaces as *DeviceError.
func (d *Device) Init(ctx context.Context, flags protocol.InitFlags) error {
	return d.resultExchange(ctx, protocol.BuildInitCmd(flags), protocol.FieldInit)
}

// Reset performs a full device reset and waits for the READY field the
// chip emits once it is back up.
func (d *Device) Reset(ctx context.Context) error {
	data, err := d.exchange(ctx, protocol.PacketControl, protocol.BuildResetCmd(), protocol.PacketControl)
	if err != nil {
		return err
	}
	return protocol.ParseReadyResponse(data)
}

// ProductID queries the chip's product identification string.
func (d *Device) ProductID(ctx context.Context) (string, error) {
	return d.stringExchange(ctx, protocol.BuildProdIDCmd(), protocol.FieldProdID)
}

// Version queries the chip's firmware version string.
func (d *Device) Version(ctx context.Context) (string, error) {
	return d.stringExchange(ctx, protocol.BuildVersionCmd(), protocol.FieldVerString)
}

// SetRateT selects a built-in rate table entry by index.
func (d *Device) SetRateT(ctx context.Context, rateIdx byte) error {
	return d.resultExchange(ctx, protocol.BuildRateTCmd(rateIdx), protocol.FieldRateT)
}

// ModeReport selects how often the chip reports mode flags in
// channel/speech responses.
type ModeReport int

const (
	ModeReportNever ModeReport = iota
	ModeReportAlways
	ModeReportOnChange
)

// SampleReport selects how often the chip reports the sample-count
// field in channel/speech responses.
type SampleReport int

const (
	SampleReportNever SampleReport = iota
	SampleReportAlways
	SampleReportOnDifference
	SampleReportNot160
)

// SetChanFmt configures the channel packet reporting format.
func (d *Device) SetChanFmt(ctx context.Context, mode ModeReport, samples SampleReport) error {
	return d.resultExchange(ctx, protocol.BuildChanFmtCmd(fmtWord(mode, samples)), protocol.FieldChanFmt)
}

// SetSpchFmt configures the speech packet reporting format.
func (d *Device) SetSpchFmt(ctx context.Context, mode ModeReport, samples SampleReport) error {
	return d.resultExchange(ctx, protocol.BuildSpchFmtCmd(fmtWord(mode, samples)), protocol.FieldSpchFmt)
}

func fmtWord(mode ModeReport, samples SampleReport) uint16 {
	var w uint16
	switch mode {
	case ModeReportAlways:
		w |= protocol.FmtModeAlways
	case ModeReportOnChange:
		w |= protocol.FmtModeOnChange
	}
	switch samples {
	case SampleReportAlways:
		w |= protocol.FmtSamplesAlways
	case SampleReportOnDifference:
		w |= protocol.FmtSamplesOnDiff
	case SampleReportNot160:
		w |= protocol.FmtSamplesNot160
	}
	return w
}

// SetECMode sets the encoder companding/processing mode word
// (Table 12 flag bits).
func (d *Device) SetECMode(ctx context.Context, flags uint16) error {
	return d.resultExchange(ctx, protocol.BuildECModeCmd(flags), protocol.FieldECMode)
}

// SetDCMode sets the decoder mode word (Table 14 flag bits).
func (d *Device) SetDCMode(ctx context.Context, flags uint16) error {
	return d.resultExchange(ctx, protocol.BuildDCModeCmd(flags), protocol.FieldDCMode)
}

// EncodeSpeech sends one 160-sample PCM frame for compression and
// returns the channel packet the chip answers with. The compressed
// frame is in the packet's ChanData field.
func (d *Device) EncodeSpeech(ctx context.Context, pcm []int16) (*protocol.ChannelPacket, error) {
	return d.encodeSpeech(ctx, pcm, nil)
}

// EncodeTone sends one 160-sample PCM frame with an embedded tone
// descriptor. The TS_ENABLE mode bit is set so the chip generates the
// tone frame.
func (d *Device) EncodeTone(ctx context.Context, pcm []int16, toneIdx, toneAmp byte) (*protocol.ChannelPacket, error) {
	return d.encodeSpeech(ctx, pcm, &protocol.Tone{Index: toneIdx, Amplitude: toneAmp})
}

func (d *Device) encodeSpeech(ctx context.Context, pcm []int16, tone *protocol.Tone) (*protocol.ChannelPacket, error) {
	if len(pcm) != protocol.FrameSamples {
		return nil, fmt.Errorf("speech frame must be %d samples, got %d", protocol.FrameSamples, len(pcm))
	}

	pkt := &protocol.SpeechPacket{
		Channel0: true,
		Samples:  pcm,
		Tone:     tone,
	}
	if tone != nil {
		mode := uint16(protocol.ECModeTSEnable)
		pkt.Mode = &mode
	}

	payload, err := protocol.EncodeSpeechPacket(pkt)
	if err != nil {
		return nil, err
	}

	data, err := d.exchange(ctx, protocol.PacketSpeech, payload, protocol.PacketChannel)
	if err != nil {
		return nil, err
	}

	resp, err := protocol.DecodeChannelPacket(data)
	if err != nil && !d.recoverTrailing(err) {
		return nil, err
	}
	return resp, nil
}

// DecodeChannel sends one compressed vocoder frame for decompression
// and returns the speech packet the chip answers with. The PCM frame
// is in the packet's Samples field.
func (d *Device) DecodeChannel(ctx context.Context, chanData protocol.BitArray) (*protocol.SpeechPacket, error) {
	if chanData.Bits < protocol.MinFrameBits || chanData.Bits > protocol.MaxFrameBits {
		return nil, fmt.Errorf("channel frame must carry %d-%d bits, got %d",
			protocol.MinFrameBits, protocol.MaxFrameBits, chanData.Bits)
	}

	// Default-vocoder channel packets go out without the 0x40
	// container field.
	payload, err := protocol.EncodeChannelPacket(&protocol.ChannelPacket{
		ChanData: &chanData,
	})
	if err != nil {
		return nil, err
	}

	data, err := d.exchange(ctx, protocol.PacketChannel, payload, protocol.PacketSpeech)
	if err != nil {
		return nil, err
	}

	resp, err := protocol.DecodeSpeechPacket(data)
	if err != nil && !d.recoverTrailing(err) {
		return nil, err
	}
	return resp, nil
}

// resultExchange runs a control command whose response carries a
// result byte, converting a non-zero result into *DeviceError.
func (d *Device) resultExchange(ctx context.Context, cmd []byte, field protocol.FieldID) error {
	data, err := d.exchange(ctx, protocol.PacketControl, cmd, protocol.PacketControl)
	if err != nil {
		return err
	}

	result, err := protocol.ParseResultResponse(data, field)
	if err != nil {
		return err
	}
	if result != protocol.ResultSuccess {
		return &DeviceError{Field: field, Result: result}
	}
	return nil
}

// stringExchange runs a control query whose response carries a
// NUL-terminated identification string.
func (d *Device) stringExchange(ctx context.Context, cmd []byte, field protocol.FieldID) (string, error) {
	data, err := d.exchange(ctx, protocol.PacketControl, cmd, protocol.PacketControl)
	if err != nil {
		return "", err
	}
	return protocol.ParseStringResponse(data, field)
}

// exchange performs one half-duplex request/response cycle: encode and
// write the command frame, then block for one response frame of the
// expected type.
func (d *Device) exchange(ctx context.Context, typ protocol.PacketType, payload []byte, want protocol.PacketType) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frame, err := protocol.EncodeFrame(typ, payload)
	if err != nil {
		return nil, err
	}

	d.config.Logger.Debug().
		Str("type", typ.String()).
		Str("frame", hex.EncodeToString(frame)).
		Msg("writing frame")

	n, err := d.stream.Write(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: write: %v", ErrNoResponse, err)
	}
	if n != len(frame) {
		// Short writes are not retried; the read below decides whether
		// the device still answered.
		d.config.Logger.Warn().
			Int("wrote", n).
			Int("frame_len", len(frame)).
			Msg("incomplete frame write")
	}

	if d.config.WriteDelay > 0 {
		time.Sleep(d.config.WriteDelay)
	}

	if ts, ok := d.stream.(readTimeoutSetter); ok && d.config.ExchangeTimeout > 0 {
		if err := ts.SetReadTimeout(d.config.ExchangeTimeout); err != nil {
			d.config.Logger.Warn().Err(err).Msg("set read timeout failed")
		}
	}

	gotType, data, err := protocol.DecodeFrame(d.reader)
	if err != nil {
		d.config.Logger.Warn().Err(err).Msg("response read failed")
		var framing *protocol.FramingError
		var unknown *protocol.UnknownPacketTypeError
		if errors.As(err, &framing) || errors.As(err, &unknown) {
			// Frame alignment is lost; nothing short of an explicit
			// resync makes this stream usable again.
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrNoResponse, err)
	}

	d.config.Logger.Debug().
		Str("type", gotType.String()).
		Str("payload", hex.EncodeToString(data)).
		Msg("received frame")

	if gotType != want {
		return nil, &UnexpectedResponseTypeError{Want: want, Got: gotType}
	}

	return data, nil
}

// recoverTrailing logs and absorbs the recoverable trailing-bytes
// condition; any other decode error stands.
func (d *Device) recoverTrailing(err error) bool {
	var trailing *protocol.TrailingBytesError
	if errors.As(err, &trailing) {
		d.config.Logger.Warn().
			Str("rest", hex.EncodeToString(trailing.Rest)).
			Msg("unrecognized trailing bytes in response payload")
		return true
	}
	return false
}
