/*
NAME
  transient.go

DESCRIPTION
  transient.go implements the transient filter (spec.md §4.5): a
  two-stage, shift-based integer filter with four signed accumulators of
  state per channel. Both stages are feed-forward: the state holds past
  inputs of each stage, never past outputs, so the filter has no
  recursive (IIR) path. Applied per sample whenever the active control
  code's transient-filter bit is set and the code-detect timer is
  running. Coefficients are a documented implementation choice - see
  SPEC_FULL.md "Open Questions" (#2) - but the arithmetic is integer-only
  throughout, per spec.md §9.

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

// transientFilter holds the four signed accumulators of the two-stage
// filter.
type transientFilter struct {
	z1, z2 int32 // stage 1 delay line (past inputs); z2 is kept but not read.
	z3, z4 int32 // stage 2 delay line (past stage 1 outputs).
}

// process runs one sample through both filter stages and updates state.
func (f *transientFilter) process(x int32) int32 {
	// Stage 1: moves the sample 1/16 of the way towards the previous input
	// sample.
	y1 := int64(x) + (int64(f.z1)-int64(x))>>4
	f.z2 = f.z1
	f.z1 = x

	// Stage 2: adds 1/8 of the change from the previous stage 1 output,
	// less 1/32 of the change before that, giving a gentle transient boost.
	y2 := y1 + (y1-int64(f.z3))>>3 - (int64(f.z3)-int64(f.z4))>>5
	f.z4 = f.z3
	f.z3 = saturate32(y1)

	return saturate32(y2)
}
