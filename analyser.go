// analyser.go - drives bytes through the frame codec and builder.
//
// Ported from original_source/print_mech_analyser/analyser/analyser.py's
// MechAnalyser; diagnostics logging idiom follows
// audio_chip.go (log.Printf on the occurrence, not polled).

package printmech

import "log"

// burnLinePayloadLen is the expected BurnLine payload length: 384 pixels
// packed 8-per-byte.
const burnLinePayloadLen = HeadWidth / 8

// Diagnostics counts non-fatal conditions observed while decoding the
// stream.
type Diagnostics struct {
	FramingLoss   int
	PayloadLength int
}

// Analyser reads raw bytes, drives them through a FrameCodec, and replays
// the resulting frames into a PrintoutBuilder.
type Analyser struct {
	codec       *FrameCodec
	builder     *PrintoutBuilder
	Diagnostics Diagnostics
}

// NewAnalyser returns an analyser with a fresh codec and builder.
func NewAnalyser() *Analyser {
	return &Analyser{
		codec:   NewFrameCodec(),
		builder: NewPrintoutBuilder(),
	}
}

// Process consumes newly-read bytes, decoding whatever complete frames they
// produce and replaying them into the builder. Incomplete trailing bytes
// are retained for the next call.
func (a *Analyser) Process(data []byte) {
	if len(data) == 0 {
		return
	}

	// The codec carries its own partial-frame state across calls, so there
	// is no separate byte accumulator to manage here: feeding it directly
	// is equivalent to the reference implementation's per-call fresh parser
	// plus manual carry, since both are pure functions of bytes seen since
	// the last completed frame.
	frames := a.codec.Feed(data)
	for _, frame := range frames {
		a.dispatch(frame)
	}
}

func (a *Analyser) dispatch(frame []byte) {
	if len(frame) == 0 {
		a.Diagnostics.FramingLoss++
		log.Printf("printmech: empty frame discarded")
		return
	}

	switch ResponseCode(frame[0]) {
	case ResponseMotorAdvance:
		a.builder.LineAdvance()
	case ResponseMotorReverse:
		a.builder.LineReverse()
	case ResponseBurnLine:
		a.handleBurnLine(frame[1:])
	case ResponseAcknowledge:
		// No payload semantics required by the core.
	default:
		a.Diagnostics.FramingLoss++
		log.Printf("printmech: unrecognised frame code 0x%02x discarded", frame[0])
	}
}

func (a *Analyser) handleBurnLine(payload []byte) {
	if len(payload) != burnLinePayloadLen {
		a.Diagnostics.PayloadLength++
		log.Printf("printmech: burn-line payload length %d, want %d: right-padding", len(payload), burnLinePayloadLen)
		padded := make([]byte, burnLinePayloadLen)
		copy(padded, payload)
		payload = padded
	}

	// Printhead orientation: reverse byte order before unpacking.
	reversed := make([]byte, len(payload))
	for i, b := range payload {
		reversed[len(payload)-1-i] = b
	}

	mask := unpackBitsMSBFirst(reversed)
	a.builder.BurnLine(mask)
}

// unpackBitsMSBFirst expands packed bytes into one byte (0 or 1) per bit,
// most significant bit first, matching numpy.unpackbits(bitorder="big").
func unpackBitsMSBFirst(packed []byte) []byte {
	bits := make([]byte, 0, len(packed)*8)
	for _, b := range packed {
		for shift := 7; shift >= 0; shift-- {
			bits = append(bits, (b>>uint(shift))&1)
		}
	}
	return bits
}

// GetPrintout returns a copy of the stable prefix of the builder's buffer.
func (a *Analyser) GetPrintout() (*Printout, bool) {
	return a.builder.GetImage()
}

// TakePrintout returns the stable prefix and then clears the builder so
// future snapshots don't re-report already-taken rows.
func (a *Analyser) TakePrintout() (*Printout, bool) {
	img, ok := a.builder.GetImage()
	a.builder.Clear()
	return img, ok
}
