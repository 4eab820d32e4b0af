package protocol

import "fmt"

// StartByte is the frame start marker for every DV3K packet (0x61).
const StartByte = 0x61

// HeaderSize is the fixed frame header size in bytes:
// START(1) + LENGTH(2, big-endian) + TYPE(1).
const HeaderSize = 4

// MaxPayloadSize is the largest payload expressible by the 16-bit
// length field. Longer payloads exist on the wire only through the
// zero-length escape and are never produced by this encoder.
const MaxPayloadSize = 0xFFFF

// PacketType identifies the payload class carried by a frame.
type PacketType byte

// Packet types per AMBE-3000R manual section 6.5.
const (
	PacketControl PacketType = 0x00
	PacketChannel PacketType = 0x01
	PacketSpeech  PacketType = 0x02
)

// Valid reports whether the type tag is one of the three defined
// packet classes.
func (t PacketType) Valid() bool {
	return t <= PacketSpeech
}

func (t PacketType) String() string {
	switch t {
	case PacketControl:
		return "CONTROL"
	case PacketChannel:
		return "CHANNEL"
	case PacketSpeech:
		return "SPEECH"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02X)", byte(t))
	}
}

// FieldID identifies a control packet field per Table 31 of the
// AMBE-3000R manual.
type FieldID byte

// Control field identifiers (Table 31). Builders exist only for the
// subset this library drives; the rest are carried for diagnostics and
// for callers composing raw control payloads.
const (
	FieldECMode        FieldID = 0x05
	FieldDCMode        FieldID = 0x06
	FieldRateT         FieldID = 0x09
	FieldRateP         FieldID = 0x0A
	FieldInit          FieldID = 0x0B
	FieldLowPower      FieldID = 0x10
	FieldChanFmt       FieldID = 0x15
	FieldSpchFmt       FieldID = 0x16
	FieldCodecStart    FieldID = 0x2A
	FieldCodecStop     FieldID = 0x2B
	FieldProdID        FieldID = 0x30
	FieldVerString     FieldID = 0x31
	FieldCompand       FieldID = 0x32
	FieldReset         FieldID = 0x33
	FieldResetSoftCfg  FieldID = 0x34
	FieldHalt          FieldID = 0x36
	FieldGetCfg        FieldID = 0x36 // shares 0x36 with HALT in Table 31
	FieldReadCfg       FieldID = 0x37
	FieldCodecCfg      FieldID = 0x38
	FieldReady         FieldID = 0x39
	FieldParityMode    FieldID = 0x3F
	FieldChannel0      FieldID = 0x40
	FieldWriteI2C      FieldID = 0x44
	FieldClearCodecRst FieldID = 0x46
	FieldSetCodecRst   FieldID = 0x47
	FieldDiscardCodec  FieldID = 0x48
	FieldDelayNUS      FieldID = 0x49
	FieldDelayNNS      FieldID = 0x4A
	FieldGain          FieldID = 0x4B
	FieldRTSThresh     FieldID = 0x4E
)

var fieldNames = map[FieldID]string{
	FieldECMode:        "ECMODE",
	FieldDCMode:        "DCMODE",
	FieldRateT:         "RATET",
	FieldRateP:         "RATEP",
	FieldInit:          "INIT",
	FieldLowPower:      "LOWPOWER",
	FieldChanFmt:       "CHANFMT",
	FieldSpchFmt:       "SPCHFMT",
	FieldCodecStart:    "CODECSTART",
	FieldCodecStop:     "CODECSTOP",
	FieldProdID:        "PRODID",
	FieldVerString:     "VERSTRING",
	FieldCompand:       "COMPAND",
	FieldReset:         "RESET",
	FieldResetSoftCfg:  "RESETSOFTCFG",
	FieldHalt:          "HALT",
	FieldReadCfg:       "READCFG",
	FieldCodecCfg:      "CODECCFG",
	FieldReady:         "READY",
	FieldParityMode:    "PARITYMODE",
	FieldChannel0:      "CHANNEL0",
	FieldWriteI2C:      "WRITE_I2C",
	FieldClearCodecRst: "CLFCODECRESET",
	FieldSetCodecRst:   "SETCODECRESET",
	FieldDiscardCodec:  "DISCARDCODEC",
	FieldDelayNUS:      "DELAYNUS",
	FieldDelayNNS:      "DELAYNNS",
	FieldGain:          "GAIN",
	FieldRTSThresh:     "RTSTHRESH",
}

func (f FieldID) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FIELD(0x%02X)", byte(f))
}

// ResultSuccess is the result byte every result-bearing control
// response uses to signal acceptance; any other value is a
// device-reported failure.
const ResultSuccess = 0x00

// Sub-field tags inside CHANNEL and SPEECH payloads.
const (
	// TagSpeechData prefixes NUM_SAMPLES + big-endian int16 PCM.
	TagSpeechData = 0x00

	// TagChanData prefixes NUM_BITS + ceil(NUM_BITS/8) compressed bytes.
	TagChanData = 0x01

	// TagMode prefixes a 2-byte big-endian mode flags word
	// (CMODE/ECMODE/DCMODE depending on direction and packet class).
	TagMode = 0x02

	// TagSamples prefixes NUM_BITS + ceil(NUM_BITS/8) raw sample bytes.
	TagSamples = 0x03

	// TagTone prefixes a tone index byte and an amplitude byte.
	TagTone = 0x08

	// TagChanData4 is the alternate bit-packed channel data field.
	TagChanData4 = 0x17

	// TagChannel0 is the channel-0 container field that leads outbound
	// channel/speech payloads. It has no body.
	TagChannel0 = 0x40
)

// Init command flag bits.
const (
	InitEncoder       = 0x01
	InitDecoder       = 0x02
	InitEchoCanceller = 0x04
)

// ECMODE input flag bits (Table 12, AMBE-3000R v2.2).
const (
	ECModeNSEnable  = 0x1 << 6
	ECModeCPSelect  = 0x1 << 7
	ECModeCPEnable  = 0x1 << 8
	ECModeESEnable  = 0x1 << 9
	ECModeDTXEnable = 0x1 << 11
	ECModeTDEnable  = 0x1 << 12
	ECModeECEnable  = 0x1 << 13
	ECModeTSEnable  = 0x1 << 14
)

// ECMODE output flag bits (Table 13).
const (
	ECModeOutVoiceActive = 0x1 << 1
	ECModeOutToneFrame   = 0x1 << 15
)

// DCMODE input flag bits (Table 14).
const (
	DCModeLostFrame = 0x1 << 2
	DCModeCNIFrame  = 0x1 << 3
	DCModeCPSelect  = 0x1 << 7
	DCModeCPEnable  = 0x1 << 8
	DCModeTSEnable  = 0x1 << 14
)

// DCMODE output flag bits (Table 15).
const (
	DCModeOutVoiceActive = 0x1 << 1
	DCModeOutDataInvalid = 0x1 << 5
	DCModeOutToneFrame   = 0x1 << 15
)

// CHANFMT / SPCHFMT policy bits: the low nibble selects mode-flag
// reporting, the high nibble selects sample reporting.
const (
	FmtModeAlways    = 0x01
	FmtModeOnChange  = 0x02
	FmtSamplesAlways = 0x10
	FmtSamplesOnDiff = 0x20
	FmtSamplesNot160 = 0x30
)

// Frame geometry of the vocoder pipeline.
const (
	// FrameSamples is the PCM frame size the chip consumes and
	// produces at full rate (20 ms at 8 kHz).
	FrameSamples = 160

	// MinFrameBits and MaxFrameBits bound NUM_BITS for channel data.
	MinFrameBits = 40
	MaxFrameBits = 192
)
