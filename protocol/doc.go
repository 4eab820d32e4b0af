// Package protocol implements the DVSI AMBE-3000R (DV3K) serial packet protocol.
//
// This package provides the frame envelope codec, the control-field
// command builders and response parsers, and the channel/speech
// sub-field codec, byte-for-byte per the AMBE-3000R Reference Manual
// (section 6.5, Table 31).
//
// # Frame Envelope
//
// Every packet travels in a length-prefixed frame:
//
//	[START 0x61][LEN_H][LEN_L][TYPE][PAYLOAD...]
//
// Where:
//   - START = frame start marker (0x61)
//   - LEN = 16-bit payload length (big-endian); 0x0000 escapes to a
//     further 2-byte extended length
//   - TYPE = packet class: 0x00 CONTROL, 0x01 CHANNEL, 0x02 SPEECH
//
// Use EncodeFrame to wrap a payload and DecodeFrame to read one frame
// from a byte stream:
//
//	frame, err := protocol.EncodeFrame(protocol.PacketControl, payload)
//	typ, payload, err := protocol.DecodeFrame(port)
//
// # Control Fields
//
// Control payloads carry one field: a Table 31 identifier byte
// followed by a fixed per-field body. Use the Build* functions for
// commands and the Parse* functions for the three response shapes:
//
//	cmd := protocol.BuildInitCmd(protocol.InitFlags{Encoder: true, Decoder: true})
//	result, err := protocol.ParseResultResponse(data, protocol.FieldInit)
//	prodID, err := protocol.ParseStringResponse(data, protocol.FieldProdID)
//	err := protocol.ParseReadyResponse(data)
//
// # Channel and Speech Sub-Fields
//
// CHANNEL and SPEECH payloads are concatenations of self-tagged,
// optional sub-fields with no separators. Each tag determines its body
// length, so boundaries fall out of tag dispatch alone. A sub-field is
// optional by presence: a field the device did not send simply does
// not appear.
//
//	payload, err := protocol.EncodeChannelPacket(&protocol.ChannelPacket{
//	    ChanData: &protocol.BitArray{Bits: 72, Data: ambe},
//	})
//	pkt, err := protocol.DecodeSpeechPacket(payload)
//
// Bit-packed sub-fields carry an explicit bit count; the byte buffer
// holds ceil(bits/8) bytes with undefined padding bits. The count is
// authoritative and is never re-derived from the buffer length.
//
// # Error Handling
//
// Structural failures return typed errors (FramingError,
// UnknownPacketTypeError, UnexpectedFieldError, TrailingBytesError)
// usable with errors.As. TrailingBytesError is recoverable: the
// decoded packet is returned alongside it.
//
// # Reference
//
// AMBE-3000R Reference Manual, https://www.dvsinc.com/manuals/AMBE-3000R_manual.pdf
package protocol
