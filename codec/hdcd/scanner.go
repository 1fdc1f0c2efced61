/*
NAME
  scanner.go

DESCRIPTION
  scanner.go implements the HDCD packet scanner: a rolling bit window over
  a channel's samples that recognises the two HDCD wire formats and
  validates them. See spec.md §4.1.

  Packet layout (see SPEC_FULL.md "Open Questions" for why these are a
  documented implementation choice rather than a literal reproduction of
  an unavailable reference binary):

    format A: [ 14-bit prefix ][ 8-bit control ][ 6-bit zero tail ]
    format B: [  8-bit prefix ][ 8-bit control ][ 8-bit control XOR 0xFF ]

  Both are recognised by testing the low bits of the 64-bit window once
  readahead reaches zero: format A's prefix occupies the window's low 14
  bits, format B's the low 8. On a match, readahead is set to the number
  of remaining packet bits (14 for A, 16 for B) so the scanner doesn't
  attempt to re-match the prefix pattern against bits that are actually
  part of the packet payload.

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
	prefixA     = 0x28A5 // 14-bit format-A prefix.
	prefixAMask = 0x3FFF
	prefixALen  = 14
	controlLenA = 8
	tailLenA    = 6

	prefixB     = 0x72 // 8-bit format-B prefix.
	prefixBMask = 0xFF
	prefixBLen  = 8
	controlLenB = 8
	checkLenB   = 8
)

// scan feeds one sample's LSB into the rolling window and advances the
// scanner's state machine: recognising prefixes, decoding packets once
// their readahead completes, and decaying the code-detect timer on any
// sample that doesn't result in a newly accepted packet.
func (c *Channel) scan(sample int32) {
	c.window = c.window<<1 | uint64(sample&1)

	accepted := false

	switch {
	case c.readahead > 0:
		c.readahead--
		if c.readahead == 0 {
			accepted = c.completePending()
		}

	case c.window&prefixAMask == prefixA:
		c.pending = pendingA
		c.readahead = controlLenA + tailLenA
		c.codeCounterC++

	case c.window&prefixBMask == prefixB:
		c.pending = pendingB
		c.readahead = controlLenB + checkLenB
		c.codeCounterC++
	}

	if !accepted {
		c.decaySustain()
	}
}

// completePending is called on the sample where a pending packet's
// readahead has just reached zero: the packet's payload bits are now the
// low bits of the window, ready to decode.
func (c *Channel) completePending() bool {
	switch c.pending {
	case pendingA:
		return c.completeA()
	case pendingB:
		return c.completeB()
	default:
		return false
	}
}

func (c *Channel) completeA() bool {
	payload := uint16(c.window & ((1 << (controlLenA + tailLenA)) - 1))
	control := uint8(payload >> tailLenA)
	tail := uint8(payload & ((1 << tailLenA) - 1))

	switch {
	case tail == 0:
		cc, ok := controlCodeFromByte(control)
		if !ok {
			c.codeCounterCUnmatched++
			return false
		}
		c.codeCounterA++
		c.accept(cc)
		return true

	case onesCount8(tail) == 1:
		c.codeCounterAAlmost++
		return false

	default:
		c.codeCounterCUnmatched++
		return false
	}
}

func (c *Channel) completeB() bool {
	payload := uint16(c.window & ((1 << (controlLenB + checkLenB)) - 1))
	control := uint8(payload >> checkLenB)
	check := uint8(payload & 0xFF)

	if control^check != 0xFF {
		c.codeCounterBCheckFails++
		return false
	}

	cc, ok := controlCodeFromByte(control)
	if !ok {
		c.codeCounterCUnmatched++
		return false
	}
	c.codeCounterB++
	c.accept(cc)
	return true
}

// accept installs a newly decoded, valid control code: it becomes the
// active control, the code-detect timer is (re)armed, and the detection
// counters are updated.
func (c *Channel) accept(cc ControlCode) {
	c.control = cc
	c.sustain = c.sustainReset
	if !c.cdtArmed {
		c.cdtArmed = true
		c.cdtExpirations = 0
	}
	c.gainCounts[cc.TargetGain]++
	if cc.TargetGain > c.maxGain {
		c.maxGain = cc.TargetGain
	}
	if cc.PeakExtend {
		c.peOnPackets++
	} else {
		c.peOffPackets++
	}
}

// decaySustain runs the idle-decay half of the code-detect timer: called
// on every sample that didn't just accept a new packet. If the timer is
// running, it ticks down by one; reaching zero reverts the active control
// code to the neutral (0 dB, PE off, TF off) state.
func (c *Channel) decaySustain() {
	if c.sustain == 0 {
		return
	}
	c.sustain--
	if c.sustain == 0 {
		c.countSustainExpired++
		if c.cdtArmed {
			c.cdtExpirations++
		}
		c.control = ControlCode{}
	}
}

// onesCount8 returns the number of set bits in the low 8 bits of v.
func onesCount8(v uint8) int {
	n := 0
	for v != 0 {
		n += int(v & 1)
		v >>= 1
	}
	return n
}
