/*
NAME
  detect.go

DESCRIPTION
  detect.go implements the detection/report aggregation described in
  spec.md §4.7 and the human-readable summary line from §6
  (detect_summary_to_string).

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

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Report is a detection/statistics summary, computed on demand from one or
// two Channels by Detect or DetectStereo. Recomputing a Report from
// unchanged channel state always yields an identical value (spec.md §8,
// "idempotent detection").
type Report struct {
	Detected            Detected
	PacketType          PacketType
	TotalPackets        int
	Errors              int
	PeakExtend          PeakExtend
	UsesTransientFilter bool
	MaxGainAdjustment   float64 // dB, in [-7.5, 0.0].
	CDTExpirations      int     // -1 if never armed on any channel.

	// HasAgreedTargetGain and AgreedTargetGain report the latched
	// cross-channel target gain from Stereo.AgreedTargetGain; both are
	// zero for a Report built from a single Channel via Detect.
	HasAgreedTargetGain bool
	AgreedTargetGain    float64 // dB.
}

// accum gathers the cross-channel state Detect/DetectStereo need before
// the final Report fields (which are derived, not summed directly) can be
// computed.
type accum struct {
	totalPackets, errors   int
	sawA, sawB             bool
	rawMaxGain             uint8
	usesTransientFilter    bool
	peOnPackets            int
	peTotalPackets         int
	cdtExpirations         int // -1 until any channel has armed its timer.
}

// Detect computes a Report from a single channel.
func Detect(c *Channel) Report {
	a := accum{cdtExpirations: -1}
	a.add(c)
	return a.report()
}

// DetectStereo computes a joint Report from both of a Stereo's channels.
func DetectStereo(s *Stereo) Report {
	a := accum{cdtExpirations: -1}
	a.add(&s.Channel[0])
	a.add(&s.Channel[1])
	r := a.report()
	r.AgreedTargetGain, r.HasAgreedTargetGain = s.AgreedTargetGain()
	return r
}

// add folds one channel's counters into the accumulator, per spec.md
// §4.7's aggregation rules.
func (a *accum) add(c *Channel) {
	a.totalPackets += c.codeCounterA + c.codeCounterB
	a.errors += c.codeCounterAAlmost + c.codeCounterBCheckFails + c.codeCounterCUnmatched

	if c.codeCounterA > 0 {
		a.sawA = true
	}
	if c.codeCounterB > 0 {
		a.sawB = true
	}
	if c.maxGain > a.rawMaxGain {
		a.rawMaxGain = c.maxGain
	}
	if c.countTransientFilter > 0 {
		a.usesTransientFilter = true
	}

	a.peOnPackets += c.peOnPackets
	a.peTotalPackets += c.peOnPackets + c.peOffPackets

	switch {
	case c.cdtExpirations < 0:
		// Never armed on this channel; doesn't change the accumulator.
	case a.cdtExpirations < 0:
		a.cdtExpirations = c.cdtExpirations
	default:
		a.cdtExpirations += c.cdtExpirations
	}
}

// report derives the final public Report fields from the accumulator.
func (a *accum) report() Report {
	r := Report{
		TotalPackets:      a.totalPackets,
		Errors:            a.errors,
		MaxGainAdjustment: -float64(a.rawMaxGain) * 0.5,
		CDTExpirations:    a.cdtExpirations,
	}

	switch {
	case a.sawA && a.sawB:
		r.PacketType = PacketMix
	case a.sawA:
		r.PacketType = PacketA
	case a.sawB:
		r.PacketType = PacketB
	default:
		r.PacketType = PacketNone
	}

	switch {
	case a.peTotalPackets == 0 || a.peOnPackets == 0:
		r.PeakExtend = PENever
	case a.peOnPackets == a.peTotalPackets:
		r.PeakExtend = PEPermanent
	default:
		r.PeakExtend = PEIntermittent
	}

	r.UsesTransientFilter = a.usesTransientFilter

	switch {
	case a.totalPackets == 0:
		r.Detected = None
	case a.rawMaxGain == 0 && r.PeakExtend == PENever && !r.UsesTransientFilter:
		r.Detected = NoEffect
	default:
		r.Detected = Effectual
	}

	return r
}

// GainHistogram returns the weighted mean and modal target-gain
// adjustment (both in dB) over every valid packet observed by c, using
// gonum's stat package over the 16-bucket gain_counts distribution.
// Returns (0, 0) if no valid packet has been observed.
func GainHistogram(c *Channel) (meanDB, modeDB float64) {
	return gainHistogram(c.gainCounts)
}

// GainHistogramStereo is GainHistogram over both of a Stereo's channels.
func GainHistogramStereo(s *Stereo) (meanDB, modeDB float64) {
	var counts [16]int
	for g, n := range s.Channel[0].gainCounts {
		counts[g] += n
	}
	for g, n := range s.Channel[1].gainCounts {
		counts[g] += n
	}
	return gainHistogram(counts)
}

func gainHistogram(counts [16]int) (meanDB, modeDB float64) {
	var x, w []float64
	// stat.Mode requires x sorted ascending; -g*0.5 decreases as g
	// increases, so walk g from its largest value down to 0.
	for g := len(counts) - 1; g >= 0; g-- {
		n := counts[g]
		if n == 0 {
			continue
		}
		x = append(x, -float64(g)*0.5)
		w = append(w, float64(n))
	}
	if len(x) == 0 {
		return 0, 0
	}
	meanDB = stat.Mean(x, w)
	modeDB, _ = stat.Mode(x, w)
	return meanDB, modeDB
}

// Summary formats a single-line human-readable summary of r, matching the
// field set of the reference tool's detect_summary_to_string (spec.md §6):
// detected, packet type, total packets, errors, peak-extend mode,
// transient-filter usage, max gain adjustment and CDT expirations.
func (r Report) Summary() string {
	s := fmt.Sprintf(
		"hdcd: detected=%s packets=%s total=%d errors=%d pe=%s tf=%t max_gain=%.1fdB cdt_expirations=%d",
		r.Detected, r.PacketType, r.TotalPackets, r.Errors, r.PeakExtend,
		r.UsesTransientFilter, r.MaxGainAdjustment, r.CDTExpirations,
	)
	if r.HasAgreedTargetGain {
		s += fmt.Sprintf(" agreed_gain=%.1fdB", r.AgreedTargetGain)
	}
	return s
}
