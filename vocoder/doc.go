// Package vocoder provides a high-level API for driving a DVSI
// AMBE-3000R vocoder chip over a serial byte stream.
//
// # Overview
//
// The package owns the half-duplex request/response discipline: one
// command frame out, one response frame back, never two exchanges in
// flight. Everything below that (frame envelope, field layouts) lives
// in the protocol package; everything above it (serial port setup,
// device discovery) is the caller's concern.
//
// # Basic Usage
//
//	port, err := serialport.Open(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	dev := vocoder.New(port)
//	ctx := context.Background()
//
//	if err := dev.Reset(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if err := dev.Init(ctx, protocol.InitFlags{Encoder: true, Decoder: true}); err != nil {
//	    log.Fatal(err)
//	}
//
//	prodID, _ := dev.ProductID(ctx)
//	fmt.Println(prodID)
//
// # Encoding and Decoding
//
// One 160-sample PCM frame compresses to one channel frame and back:
//
//	chanPkt, err := dev.EncodeSpeech(ctx, pcm)         // SPEECH -> CHANNEL
//	spchPkt, err := dev.DecodeChannel(ctx, *chanPkt.ChanData) // CHANNEL -> SPEECH
//
// Channel and speech frames are opaque payloads here; no audio
// processing happens on the host.
//
// # Error Handling
//
// Protocol failures and device refusals stay distinguishable:
//   - *DeviceError: the device parsed the command and answered with a
//     non-zero result byte ("device said no")
//   - ErrNoResponse: timeout, stream end, or write failure; the
//     outcome of the command is unknown
//   - *UnexpectedResponseTypeError: a response frame of the wrong
//     packet class
//   - protocol.FramingError / protocol.UnknownPacketTypeError: frame
//     alignment is lost; the session needs an explicit resync
//
// # Concurrency
//
// A Device serializes exchanges internally, so concurrent callers
// sharing one Device are safe; their commands simply queue. Sharing
// the underlying stream outside the Device is not.
//
// # Hardware Independence
//
// The Device takes any io.ReadWriter. If the stream implements
// SetReadTimeout (go.bug.st/serial ports do), the exchange timeout is
// applied before each blocking read; otherwise the stream's own
// timeout governs. Mock streams make the whole package testable
// without hardware.
package vocoder
