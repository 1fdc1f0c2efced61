/*
NAME
  stereo.go

DESCRIPTION
  stereo.go implements the stereo coordinator (spec.md §4.6): it couples
  two Channel decoders so their control state is jointly consistent,
  reconciling the target gain each reports and tracking how often they
  disagree.

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

// Stereo couples a left and right Channel decoder and reconciles their
// control state after each processed sample. It is not safe for
// concurrent use.
type Stereo struct {
	// Channel holds the two per-channel decoders: Channel[0] is left,
	// Channel[1] is right.
	Channel [2]Channel

	anaMode AnalyzeMode

	valTargetGain    uint8
	hasValTargetGain bool
	countTGMismatch  int
	tgmLogged        bool

	log Logger
}

// Reset reinitializes s for decoding stereo audio at the given sample
// rate, with the default sustain period, no decoder options, analyze mode
// off and the default log sink.
func (s *Stereo) Reset(rate uint) {
	s.ResetExt(rate, defaultSustainMS, 0, AnalyzeOff, nil)
}

// ResetExt reinitializes s as Reset does, but with explicit sustain
// period, decoder options, analyze mode and log sink, applied to both
// channels.
func (s *Stereo) ResetExt(rate uint, sustainMS int, opts DecoderOptions, mode AnalyzeMode, log Logger) {
	if log == nil {
		log = defaultLogger
	}
	s.Channel[0].ResetExt(rate, sustainMS, opts, mode, log)
	s.Channel[1].ResetExt(rate, sustainMS, opts, mode, log)
	s.anaMode = mode
	s.valTargetGain = 0
	s.hasValTargetGain = false
	s.countTGMismatch = 0
	s.tgmLogged = false
	s.log = log
}

// SetAnalyzeMode changes the active analyze mode on both channels and the
// stereo coordinator itself (AnalyzeTGM is only meaningful here).
func (s *Stereo) SetAnalyzeMode(mode AnalyzeMode) {
	s.anaMode = mode
	s.Channel[0].anaMode = mode
	s.Channel[1].anaMode = mode
}

// CountTGMismatch returns the number of processed samples where both
// channels had a currently-valid target gain that disagreed.
func (s *Stereo) CountTGMismatch() int { return s.countTGMismatch }

// AgreedTargetGain returns the most recent target gain, in dB, that both
// channels reported in agreement, and whether such an agreement has ever
// been observed. It is unaffected by later disagreements: the latched
// value only changes on the next sample where both channels agree again.
func (s *Stereo) AgreedTargetGain() (gainDB float64, ok bool) {
	if !s.hasValTargetGain {
		return 0, false
	}
	return -float64(s.valTargetGain) * 0.5, true
}

// Process decodes count L/R sample pairs from an interleaved buffer,
// writing the transformed samples back in place.
func (s *Stereo) Process(samples []int32, count int) {
	for i := 0; i < count; i++ {
		li, ri := i*2, i*2+1
		if ri >= len(samples) {
			return
		}
		l := s.Channel[0].Step(samples[li])
		r := s.Channel[1].Step(samples[ri])

		s.reconcile()

		if s.anaMode == AnalyzeTGM {
			l, r = s.analyzeTGM()
		}

		samples[li] = l
		samples[ri] = r
	}
}

// reconcile compares the two channels' currently-active target gain (only
// meaningful while each channel's code-detect timer is running) and
// updates the mismatch counter, the latched agreed-upon gain, and logs
// once per run on first disagreement unless suppressed.
func (s *Stereo) reconcile() {
	l, lok := s.Channel[0].control.TargetGain, s.Channel[0].sustain > 0
	r, rok := s.Channel[1].control.TargetGain, s.Channel[1].sustain > 0
	if !lok || !rok {
		return
	}
	if l != r {
		s.countTGMismatch++
		if !s.tgmLogged && s.Channel[0].options&TGMLogOff == 0 {
			s.log.Log(LogWarning, "hdcd: target gain mismatch between channels (%.1f dB vs %.1f dB)", -float64(l)*0.5, -float64(r)*0.5)
			s.tgmLogged = true
		}
		return
	}
	s.valTargetGain = l
	s.hasValTargetGain = true
}

// analyzeTGM synthesises the AnalyzeTGM carrier tone for both channels:
// full amplitude while the channels' target gains disagree, otherwise
// silence.
func (s *Stereo) analyzeTGM() (l, r int32) {
	level := int32(0)
	lok := s.Channel[0].sustain > 0
	rok := s.Channel[1].sustain > 0
	if lok && rok && s.Channel[0].control.TargetGain != s.Channel[1].control.TargetGain {
		level = anaFullScale
	}
	return s.Channel[0].carrierSign() * level, s.Channel[1].carrierSign() * level
}
