/*
NAME
  control.go

DESCRIPTION
  control.go implements the gain ramp (spec.md §4.3): running_gain, an
  11-bit signed 3.8 fixed-point value, is nudged by one unit per sample
  towards -TargetGain<<7 and multiplied into the sample using a
  precomputed integer lookup table so the hot path stays integer-only
  (spec.md §9 forbids floating-point on the sample path; the table itself
  is built once, at package init, from floating point, the same way a
  codec builds a sine or log table offline).

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

import "math"

// maxTargetGain is the largest representable 4-bit target-gain magnitude
// (15 steps of 0.5 dB = -7.5 dB), and maxRunningGain its 3.8 fixed-point
// magnitude (15<<7).
const (
	maxTargetGain  = 15
	maxRunningGain = maxTargetGain << 7

	gainShift = 14 // Fractional bits of gainFactorTable's fixed-point entries.
)

// gainFactorTable[m] is the amplitude ratio for a running-gain magnitude of
// m (0..maxRunningGain), expressed as a Q(gainShift) fixed-point fraction:
// ratio = gainFactorTable[m] / (1<<gainShift). Built once at init from
// ratio = 10^(-m/(256*20)), i.e. -m/256 dB converted to a linear factor
// (running_gain's 8 fractional bits give units of 1/256 dB).
var gainFactorTable [maxRunningGain + 1]int32

func init() {
	for m := 0; m <= maxRunningGain; m++ {
		db := -float64(m) / 256
		ratio := math.Pow(10, db/20)
		gainFactorTable[m] = int32(math.Round(ratio * float64(int64(1)<<gainShift)))
	}
}

// rampGain adjusts c.runningGain by exactly one unit towards the desired
// value implied by the currently effective control code, never overshooting.
func (c *Channel) rampGain() {
	desired := -int32(c.control.TargetGain) << 7
	switch {
	case c.runningGain < desired:
		c.runningGain++
	case c.runningGain > desired:
		c.runningGain--
	}
}

// applyGain multiplies sample by the linear factor implied by gain (an
// 11-bit signed 3.8 fixed-point magnitude, always <= 0), saturating to the
// int32 range.
func applyGain(sample int32, gain int32) int32 {
	mag := -gain
	if mag < 0 {
		mag = 0
	}
	if mag > maxRunningGain {
		mag = maxRunningGain
	}
	factor := int64(gainFactorTable[mag])
	rounding := int64(1) << (gainShift - 1)
	out := (int64(sample)*factor + rounding) >> gainShift
	return saturate32(out)
}

// saturate32 clamps a wider integer to the int32 range.
func saturate32(v int64) int32 {
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	default:
		return int32(v)
	}
}
