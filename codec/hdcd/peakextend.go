/*
NAME
  peakextend.go

DESCRIPTION
  peakextend.go implements the peak-extend mapper (spec.md §4.4): a
  piecewise-linear expansion applied to samples in a narrow band near full
  scale, recovering headroom CD mastering compressed into that band.
  Samples below the threshold pass unchanged; samples above it are scaled
  by a slope > 1 and saturated at the 20-bit extended full scale.

  Thresholds and slope are an implementation choice, made on the same
  footing as the packet constants of SPEC_FULL.md "Open Questions" (#1);
  they make no claim of bit-exact parity with a reference decoder.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package hdcd

const (
	// peThreshold16 is the band boundary expressed in the original 16-bit
	// sample domain (bits 16-31 of the 32-bit input word).
	peThreshold16 = 0x6000

	// peThreshold and peExtendedMax are peThreshold16 and the 20-bit
	// extended full scale, both positioned in the 32-bit sample word per
	// the input convention of spec.md §6.
	peThreshold   = int64(peThreshold16) << 16
	peExtendedMax = int64(0x7FFFF) << 12

	// peSlope is the expansion factor applied above peThreshold.
	peSlope = 2
)

// applyPeakExtend maps s through the peak-extend band expansion. It
// returns s unchanged if |s| is below the threshold.
func applyPeakExtend(s int32) int32 {
	neg := s < 0
	abs := int64(s)
	if neg {
		abs = -abs
	}
	if abs < peThreshold {
		return s
	}
	over := abs - peThreshold
	expanded := peThreshold + over*peSlope
	if expanded > peExtendedMax {
		expanded = peExtendedMax
	}
	if neg {
		expanded = -expanded
	}
	return saturate32(expanded)
}
