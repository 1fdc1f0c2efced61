/*
NAME
  detect_test.go

DESCRIPTION
  detect_test.go tests Report aggregation: idempotent detection, the
  packet-type/peak-extend/detected derivation rules, gain histogram
  statistics, and the Summary() string format.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package hdcd

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDetectIdempotent(t *testing.T) {
	var c Channel
	c.Reset(44100)
	samples := make([]int32, 2000)
	injectFormatA(samples, 100, 0x10)
	c.Process(samples, len(samples), 1)

	r1 := Detect(&c)
	r2 := Detect(&c)
	if diff := cmp.Diff(r1, r2); diff != "" {
		t.Fatalf("Detect not idempotent (-first +second):\n%s", diff)
	}
}

func TestDetectNoPackets(t *testing.T) {
	var c Channel
	c.Reset(44100)
	samples := make([]int32, 2000)
	c.Process(samples, len(samples), 1)

	r := Detect(&c)
	if r.Detected != None {
		t.Fatalf("Detected = %v, want None", r.Detected)
	}
	if r.PacketType != PacketNone {
		t.Fatalf("PacketType = %v, want PacketNone", r.PacketType)
	}
	if r.CDTExpirations != -1 {
		t.Fatalf("CDTExpirations = %d, want -1", r.CDTExpirations)
	}
}

func TestDetectPacketMix(t *testing.T) {
	var c Channel
	c.Reset(44100)
	samples := make([]int32, 2000)
	injectFormatA(samples, 100, 0x00)
	injectFormatB(samples, 300, 0x02, false)
	c.Process(samples, len(samples), 1)

	r := Detect(&c)
	if r.PacketType != PacketMix {
		t.Fatalf("PacketType = %v, want PacketMix", r.PacketType)
	}
	if r.TotalPackets != 2 {
		t.Fatalf("TotalPackets = %d, want 2", r.TotalPackets)
	}
}

func TestDetectPeakExtendIntermittent(t *testing.T) {
	var c Channel
	c.Reset(44100)

	samples := make([]int32, 4000)
	injectFormatA(samples, 100, 0x10)  // PE on.
	injectFormatA(samples, 2000, 0x00) // PE off.
	c.Process(samples, len(samples), 1)

	r := Detect(&c)
	if r.PeakExtend != PEIntermittent {
		t.Fatalf("PeakExtend = %v, want PEIntermittent", r.PeakExtend)
	}
}

func TestDetectStereo(t *testing.T) {
	var s Stereo
	s.Reset(44100)

	left := make([]int32, 2000)
	right := make([]int32, 2000)
	injectFormatA(left, 100, 0x04)
	injectFormatA(right, 100, 0x04)
	samples := interleave(left, right)

	s.Process(samples, len(samples)/2)

	r := DetectStereo(&s)
	if r.TotalPackets != 2 {
		t.Fatalf("TotalPackets = %d, want 2", r.TotalPackets)
	}
	if r.Detected != Effectual {
		t.Fatalf("Detected = %v, want Effectual", r.Detected)
	}
}

func TestDetectStereoAgreedTargetGain(t *testing.T) {
	var s Stereo
	s.Reset(44100)

	if _, ok := s.AgreedTargetGain(); ok {
		t.Fatal("AgreedTargetGain() ok = true before any packet processed, want false")
	}

	left := make([]int32, 200)
	right := make([]int32, 200)
	injectFormatA(left, 40, 0x08)
	injectFormatA(right, 40, 0x08)
	samples := interleave(left, right)
	s.Process(samples, len(samples)/2)

	gainDB, ok := s.AgreedTargetGain()
	if !ok {
		t.Fatal("AgreedTargetGain() ok = false after matching packets, want true")
	}
	if gainDB != -4.0 {
		t.Fatalf("AgreedTargetGain() = %v, want -4.0", gainDB)
	}

	r := DetectStereo(&s)
	if !r.HasAgreedTargetGain || r.AgreedTargetGain != -4.0 {
		t.Fatalf("Report.AgreedTargetGain = (%v, %v), want (-4.0, true)", r.AgreedTargetGain, r.HasAgreedTargetGain)
	}
	if !strings.Contains(r.Summary(), "agreed_gain=-4.0dB") {
		t.Fatalf("Summary() = %q, missing agreed_gain field", r.Summary())
	}
}

func TestGainHistogram(t *testing.T) {
	var c Channel
	c.Reset(44100)

	samples := make([]int32, 6000)
	offset := 100
	for i := 0; i < 4; i++ {
		offset = injectFormatA(samples, offset, 0x04) + 50 // -2dB, repeated.
	}
	offset = injectFormatA(samples, offset, 0x08) + 50 // -4dB, once.
	c.Process(samples, len(samples), 1)

	mean, mode := GainHistogram(&c)
	if mode != -2.0 {
		t.Fatalf("mode = %v, want -2.0", mode)
	}
	if mean >= -2.0 || mean <= -4.0 {
		t.Fatalf("mean = %v, want strictly between -4.0 and -2.0", mean)
	}
}

func TestGainHistogramEmpty(t *testing.T) {
	var c Channel
	c.Reset(44100)
	mean, mode := GainHistogram(&c)
	if mean != 0 || mode != 0 {
		t.Fatalf("GainHistogram on empty channel = (%v, %v), want (0, 0)", mean, mode)
	}
}

func TestReportSummary(t *testing.T) {
	var c Channel
	c.Reset(44100)
	samples := make([]int32, 2000)
	injectFormatA(samples, 100, 0x10)
	c.Process(samples, len(samples), 1)

	r := Detect(&c)
	s := r.Summary()

	for _, want := range []string{"detected=", "packets=", "total=", "errors=", "pe=", "tf=", "max_gain=", "cdt_expirations="} {
		if !strings.Contains(s, want) {
			t.Errorf("Summary() = %q, missing field %q", s, want)
		}
	}
}
