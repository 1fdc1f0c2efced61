/*
NAME
  channel.go

DESCRIPTION
  channel.go defines Channel, the per-channel HDCD decoder state, its
  lifecycle (Reset) and its per-sample entry point (Step). See scanner.go
  for packet detection, control.go for the gain ramp, peakextend.go and
  transient.go for the sample-domain transforms, and analyze.go for the
  diagnostic replacement path.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package hdcd

// Channel is the decoding state for a single audio channel: the packet
// scanner's rolling window, the active control code and its code-detect
// timer, the gain ramp, the transient filter's accumulators, and the
// running detection counters.
//
// A Channel is an owned value: the caller allocates it (typically as a
// field of a Stereo, or standalone for mono processing) and the core
// mutates it in place. It is not safe for concurrent use.
type Channel struct {
	// window is a 64-bit running register of the most recent 64 samples'
	// LSBs, newest at bit 0.
	window uint64

	// readahead counts the number of additional samples to observe before
	// a pending packet can be decoded. 0 means idle (no packet pending).
	readahead uint8
	pending   pendingFormat

	// control is the currently active control code, valid while sustain>0.
	control ControlCode

	// sustain is the code-detect-timer countdown, in samples.
	// sustainReset is its reload value, derived from the sample rate and
	// requested sustain period.
	sustain      uint32
	sustainReset uint32

	// runningGain ramps towards -TargetGain<<7 one unit per sample.
	runningGain int32

	// transient filter state.
	filter transientFilter

	// options are the DecoderOptions flags in effect.
	options DecoderOptions

	// Counters, per spec.md §3.
	codeCounterA            int
	codeCounterAAlmost      int
	codeCounterB            int
	codeCounterBCheckFails  int
	codeCounterC            int
	codeCounterCUnmatched   int
	countPeakExtend         int
	countTransientFilter    int
	countSustainExpired     int
	gainCounts              [16]int
	maxGain                 uint8
	cdtArmed                bool
	cdtExpirations          int
	peOnPackets             int // Valid packets accepted with PE on.
	peOffPackets            int // Valid packets accepted with PE off.

	// analyze mode configuration.
	anaMode AnalyzeMode
	anaSNB  int

	log Logger
}

// pendingFormat identifies which wire format a pending (readahead>0)
// packet is, so the scanner knows how to interpret the window once the
// countdown reaches zero.
type pendingFormat int

const (
	pendingNone pendingFormat = iota
	pendingA
	pendingB
)

// Reset reinitializes c for decoding audio at the given sample rate, with
// the default 2000ms sustain period, no decoder options, analyze mode off
// and the default (stderr) log sink. All counters are zeroed and
// CDTExpirations() reports -1 (timer never armed) until the first valid
// packet is decoded.
func (c *Channel) Reset(rate uint) {
	c.ResetExt(rate, defaultSustainMS, 0, AnalyzeOff, nil)
}

// ResetExt reinitializes c as Reset does, but with an explicit sustain
// period (in milliseconds), decoder option flags, analyze mode and log
// sink. A nil log sink installs the default stderr logger.
func (c *Channel) ResetExt(rate uint, sustainMS int, opts DecoderOptions, mode AnalyzeMode, log Logger) {
	*c = Channel{}
	c.sustainReset = uint32(uint64(rate) * uint64(sustainMS) / 1000)
	c.options = opts
	c.anaMode = mode
	c.cdtExpirations = -1
	if log == nil {
		log = defaultLogger
	}
	c.log = log
}

// CDTExpirations reports the number of times the code-detect timer has
// expired without a new code being seen: -1 if it has never been armed, 0
// if armed but never expired, otherwise the expiration count.
func (c *Channel) CDTExpirations() int { return c.cdtExpirations }

// Process applies Step to count consecutive samples of an interleaved (or
// mono) buffer, starting at samples[0] and advancing stride words between
// samples, writing each transformed sample back in place. stride must be
// >= 1; stride 2 processes one channel of an L/R-interleaved buffer.
func (c *Channel) Process(samples []int32, count, stride int) {
	for i, n := 0, 0; n < count && i < len(samples); i, n = i+stride, n+1 {
		samples[i] = c.Step(samples[i])
	}
}

// Step decodes one sample: it feeds the sample's LSB to the packet
// scanner, applies the gain ramp, peak-extend mapper and transient filter
// according to the currently effective control code, and returns the
// transformed sample. If an analyze mode is active, the returned sample is
// replaced by the diagnostic carrier tone instead.
func (c *Channel) Step(sample int32) int32 {
	c.scan(sample)

	peActive := c.options&ForcePE != 0 || (c.control.PeakExtend && c.sustain > 0)
	tfActive := c.control.TransientFilter && c.sustain > 0

	c.rampGain()

	out := sample
	peMapped := false
	if peActive {
		mapped := applyPeakExtend(out)
		if mapped != out {
			c.countPeakExtend++
			peMapped = true
		}
		out = mapped
	}

	out = applyGain(out, c.runningGain)

	if tfActive {
		out = c.filter.process(out)
		c.countTransientFilter++
	}

	if c.anaMode != AnalyzeOff {
		out = c.analyzeSample(peMapped)
	}

	return out
}
