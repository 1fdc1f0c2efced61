/*
NAME
  analyze.go

DESCRIPTION
  analyze.go implements analyze mode (spec.md §4.8): when active, the
  decoded audio is replaced by a low-frequency carrier tone whose
  amplitude is modulated by a chosen internal decoder signal, useful for
  visualising where a feature fires without reading raw counters.

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

const (
	// anaPeriod is the number of samples in one carrier cycle (half high,
	// half low), giving a square wave whose frequency is sampleRate/anaPeriod.
	anaPeriod = 64

	// anaFullScale is the amplitude used for a "full" reading; it's kept
	// well inside int32 range so callers writing it to a 16- or 24-bit
	// container don't need to rescale.
	anaFullScale = int32(0x3FFFFFFF)
)

// analyzeSample computes the carrier-tone output for the currently active
// analyze mode, using peMapped (set by Step when the peak-extend mapper
// changed this sample) where the signal needs it. Stereo target-gain
// mismatch (AnalyzeTGM) is folded in by Stereo.analyzeTGM instead, since
// it needs both channels.
func (c *Channel) analyzeSample(peMapped bool) int32 {
	c.anaSNB = (c.anaSNB + 1) % anaPeriod
	sign := int32(1)
	if c.anaSNB >= anaPeriod/2 {
		sign = -1
	}

	var level int32
	switch c.anaMode {
	case AnalyzeLLE:
		mag := -c.runningGain
		if mag < 0 {
			mag = 0
		}
		level = int32(int64(anaFullScale) * int64(mag) / int64(maxRunningGain))
	case AnalyzePE:
		if peMapped {
			level = anaFullScale
		}
	case AnalyzeCDT:
		if c.sustain > 0 {
			level = anaFullScale
		}
	default:
		// AnalyzeOff and AnalyzeTGM (handled by Stereo) produce silence at
		// the Channel level.
	}

	return sign * level
}

// carrierSign returns the current carrier polarity, for Stereo to reuse
// when synthesising the AnalyzeTGM signal (which needs both channels'
// state at once, so Channel.analyzeSample can't compute it alone).
func (c *Channel) carrierSign() int32 {
	if c.anaSNB >= anaPeriod/2 {
		return -1
	}
	return 1
}
