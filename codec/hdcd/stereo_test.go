/*
NAME
  stereo_test.go

DESCRIPTION
  stereo_test.go tests Stereo's channel coupling: symmetric processing of
  independent channels, and target-gain-mismatch detection/logging.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package hdcd

import "testing"

// recordingLogger counts Log calls so tests can assert on logging without
// depending on message text.
type recordingLogger struct {
	calls int
}

func (r *recordingLogger) Log(level int8, msg string, args ...interface{}) {
	r.calls++
}

// interleave builds an L/R buffer from independent per-channel mono
// buffers, which must be the same length.
func interleave(left, right []int32) []int32 {
	out := make([]int32, len(left)*2)
	for i := range left {
		out[i*2] = left[i]
		out[i*2+1] = right[i]
	}
	return out
}

func TestStereoSymmetricChannels(t *testing.T) {
	var s Stereo
	s.Reset(44100)

	left := make([]int32, 200)
	right := make([]int32, 200)
	injectFormatA(left, 40, 0x08)
	injectFormatA(right, 40, 0x08)
	samples := interleave(left, right)

	s.Process(samples, len(samples)/2)

	if s.Channel[0].codeCounterA != 1 || s.Channel[1].codeCounterA != 1 {
		t.Fatalf("codeCounterA = (%d, %d), want (1, 1)", s.Channel[0].codeCounterA, s.Channel[1].codeCounterA)
	}
	if s.CountTGMismatch() != 0 {
		t.Fatalf("CountTGMismatch() = %d, want 0 for matched channels", s.CountTGMismatch())
	}
}

func TestStereoTGMismatch(t *testing.T) {
	var s Stereo
	log := &recordingLogger{}
	s.ResetExt(44100, 2000, 0, AnalyzeOff, log)

	left := make([]int32, 200)
	right := make([]int32, 200)
	injectFormatA(left, 40, 0x02)
	injectFormatA(right, 40, 0x06)
	samples := interleave(left, right)

	s.Process(samples, len(samples)/2)

	if s.CountTGMismatch() == 0 {
		t.Fatal("expected at least one target-gain mismatch")
	}
	if log.calls != 1 {
		t.Fatalf("log.calls = %d, want exactly 1 (logged once per run)", log.calls)
	}
}

func TestStereoTGMLogOffSuppressesLogging(t *testing.T) {
	var s Stereo
	log := &recordingLogger{}
	s.ResetExt(44100, 2000, TGMLogOff, AnalyzeOff, log)

	left := make([]int32, 200)
	right := make([]int32, 200)
	injectFormatA(left, 40, 0x02)
	injectFormatA(right, 40, 0x06)
	samples := interleave(left, right)

	s.Process(samples, len(samples)/2)

	if s.CountTGMismatch() == 0 {
		t.Fatal("expected at least one target-gain mismatch")
	}
	if log.calls != 0 {
		t.Fatalf("log.calls = %d, want 0 with TGMLogOff set", log.calls)
	}
}
