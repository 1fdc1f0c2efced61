/*
NAME
  hdcd.go

DESCRIPTION
  hdcd.go contains the shared types and constants for the HDCD decoder:
  the per-channel control code, decoder option flags and analyze-mode
  enumeration. See scanner.go, control.go, stereo.go and detect.go for the
  rest of the engine.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package hdcd implements an HDCD (High Definition Compatible Digital)
// decoder: a per-channel streaming state machine that detects HDCD control
// packets embedded in the LSBs of 16-bit PCM audio and, on their
// authority, applies peak extension, gain scaling and transient filtering
// to the sample stream.
//
// The decoder is strictly single-threaded and synchronous: Step is pure
// with respect to the *Channel it mutates, performs no I/O, and never
// allocates on the hot path. A Stereo value is not safe for concurrent use;
// each caller owns its state exclusively.
package hdcd

import "fmt"

// DecoderOptions is a set of bit flags controlling decoder behaviour beyond
// what's carried in the wire format.
type DecoderOptions uint8

const (
	// ForcePE treats peak-extend as always active for the purposes of the
	// peak-extend mapper, regardless of the current control code. It exists
	// to support the AnalyzePE analyze mode, which reports where PE *would* fire.
	ForcePE DecoderOptions = 1 << iota
	// TGMLogOff suppresses the single target-gain-mismatch log line that a
	// Stereo otherwise emits the first time its two channels disagree.
	TGMLogOff
)

// ControlCode is the decoded content of an HDCD control packet: bits 0-3 of
// the wire control byte give the target gain (4-bit unsigned, representing
// a value in -7.5..0 dB in 0.5 dB steps, stored as the absolute value of a
// 3.1 fixed point number), bit 4 is the peak-extend flag, bit 5 is the
// transient-filter flag, and bits 6-7 are reserved zero.
type ControlCode struct {
	TargetGain      uint8 // 0..15, in 0.5 dB steps; 0 = no attenuation.
	PeakExtend      bool
	TransientFilter bool
}

// controlCodeFromByte decodes a wire control byte into a ControlCode. ok is false if
// the reserved bits (6-7) are non-zero, in which case the packet must be
// rejected per the invariant that out-of-range control values never
// produce state changes.
func controlCodeFromByte(b uint8) (cc ControlCode, ok bool) {
	if b&0xC0 != 0 {
		return ControlCode{}, false
	}
	return ControlCode{
		TargetGain:      b & 0x0F,
		PeakExtend:      b&0x10 != 0,
		TransientFilter: b&0x20 != 0,
	}, true
}

// GainDB returns the target gain as a negative decibel value in [-7.5, 0.0].
func (c ControlCode) GainDB() float64 {
	return -float64(c.TargetGain) * 0.5
}

// AnalyzeMode selects a diagnostic replacement of the decoded audio with a
// carrier tone whose amplitude encodes an internal decoder signal, in place
// of the normal sample-domain transform.
type AnalyzeMode int

const (
	// AnalyzeOff performs the normal decode; the audio path is untouched.
	AnalyzeOff AnalyzeMode = iota
	// AnalyzeLLE reports |running gain| as the carrier's amplitude.
	AnalyzeLLE
	// AnalyzePE reports samples where peak-extend mapped the value.
	AnalyzePE
	// AnalyzeCDT reports samples where the code detect timer is active.
	AnalyzeCDT
	// AnalyzeTGM reports samples where the two stereo channels' target
	// gains disagree. Only meaningful on a Stereo.
	AnalyzeTGM
)

// String implements fmt.Stringer for AnalyzeMode.
func (m AnalyzeMode) String() string {
	switch m {
	case AnalyzeOff:
		return "off"
	case AnalyzeLLE:
		return "lle"
	case AnalyzePE:
		return "pe"
	case AnalyzeCDT:
		return "cdt"
	case AnalyzeTGM:
		return "tgm"
	default:
		return fmt.Sprintf("AnalyzeMode(%d)", int(m))
	}
}

// Detected is the overall HDCD-encoding verdict for a decoded stream.
type Detected int

const (
	// None means no valid HDCD packets were ever observed.
	None Detected = iota
	// NoEffect means packets were observed, but every control code was a
	// no-op (0 dB gain, PE off, transient filter off).
	NoEffect
	// Effectual means packets were observed and changed the output in some
	// way (non-zero gain, PE on, or transient filter on at least once).
	Effectual
)

// String implements fmt.Stringer for Detected.
func (d Detected) String() string {
	switch d {
	case None:
		return "none"
	case NoEffect:
		return "no_effect"
	case Effectual:
		return "effectual"
	default:
		return fmt.Sprintf("Detected(%d)", int(d))
	}
}

// PacketType classifies which HDCD wire-format variants were observed.
type PacketType int

const (
	PacketNone PacketType = iota // No packets discovered.
	PacketA                     // Only format-A (8-bit control) packets.
	PacketB                     // Only format-B (8-bit control, 8-bit XOR check) packets.
	PacketMix                   // Both formats discovered; likely an encoding error.
)

// String implements fmt.Stringer for PacketType.
func (p PacketType) String() string {
	switch p {
	case PacketNone:
		return "none"
	case PacketA:
		return "A"
	case PacketB:
		return "B"
	case PacketMix:
		return "mix"
	default:
		return fmt.Sprintf("PacketType(%d)", int(p))
	}
}

// PeakExtend classifies how consistently peak-extend was enabled across all
// valid packets observed.
type PeakExtend int

const (
	PENever        PeakExtend = iota // No valid packet had PE on.
	PEIntermittent                   // Some valid packets had PE on.
	PEPermanent                      // Every valid packet had PE on.
)

// String implements fmt.Stringer for PeakExtend.
func (p PeakExtend) String() string {
	switch p {
	case PENever:
		return "never"
	case PEIntermittent:
		return "intermittent"
	case PEPermanent:
		return "permanent"
	default:
		return fmt.Sprintf("PeakExtend(%d)", int(p))
	}
}

// defaultSustainMS is the code-detect-timer reload period used by
// Channel.Reset when no explicit sustain period is requested.
const defaultSustainMS = 2000
