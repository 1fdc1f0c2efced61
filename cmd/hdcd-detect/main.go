/*
NAME
  hdcd-detect - detects and reports HDCD encoding in WAV/FLAC audio files.

DESCRIPTION
  hdcd-detect reads a 16-bit PCM audio file, runs it through the hdcd
  decoder, and prints a one-line detection summary. It can also emit the
  decoded audio, run in a diagnostic analyze mode, watch a directory for
  new files to process automatically, and plot the mean and modal gain
  adjustment.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package hdcd-detect is a command-line tool for detecting and reporting
// HDCD (High Definition Compatible Digital) encoding in audio files.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/utils/logging"
	"github.com/bp0/libhdcd/codec/hdcd"
	"github.com/bp0/libhdcd/container/wav"
	"github.com/bp0/libhdcd/watch"

	"github.com/mewkiz/flac"
)

const (
	progName     = "hdcd-detect"
	logPath      = "hdcd-detect.log"
	logMaxSize   = 50 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
)

var log logging.Logger

func main() {
	var (
		analyzeFlag    = flag.String("analyze", "", "replace decoded audio with a diagnostic carrier: lle, pe, cdt or tgm")
		swapFlag       = flag.Bool("swap", false, "swap the left and right channels before decoding")
		monoAsDualFlag = flag.Bool("mono-as-dual", false, "treat a mono file as if its one channel were duplicated to both HDCD channels")
		watchFlag      = flag.String("watch", "", "watch DIR for new audio files and process each as it arrives, instead of processing a single file")
		plotFlag       = flag.String("plot", "", "write a bar chart of the mean and modal gain adjustment to FILE.png")
		outFlag        = flag.String("out", "", "write the decoded audio to this WAV file")
		logLevelFlag   = flag.Int("log-level", int(logging.Info), "log level: 0=debug 1=info 2=warning 3=error 4=fatal")
	)
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log = logging.New(int8(*logLevelFlag), io.MultiWriter(os.Stderr, fileLog), true)

	mode, err := parseAnalyzeMode(*analyzeFlag)
	if err != nil {
		log.Fatal(err.Error())
	}

	opts := options{
		mode:       mode,
		swap:       *swapFlag,
		monoAsDual: *monoAsDualFlag,
		plotPath:   *plotFlag,
		outPath:    *outFlag,
	}

	if *watchFlag != "" {
		runWatch(*watchFlag, opts)
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] FILE\n", progName)
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := processFile(args[0], opts); err != nil {
		log.Fatal(err.Error())
	}
}

// options collects the per-file behaviour requested on the command line.
type options struct {
	mode       hdcd.AnalyzeMode
	swap       bool
	monoAsDual bool
	plotPath   string
	outPath    string
}

// runWatch processes every new audio file that appears in dir, for as long
// as the process runs.
func runWatch(dir string, opts options) {
	handler := func(path string) error {
		log.Info("hdcd-detect: processing watched file", "path", path)
		return processFile(path, opts)
	}
	w := watch.New(log, dir, handler)
	if err := w.Start(); err != nil {
		log.Fatal("could not start watch", "error", err.Error())
	}
	log.Info("hdcd-detect: watching for new files", "dir", dir)
	select {} // Run until killed.
}

// processFile reads one audio file, decodes it and reports the result.
func processFile(path string, opts options) error {
	left, right, rate, err := readAudio(path, opts.monoAsDual)
	if err != nil {
		return errors.Wrapf(err, "could not read %s", path)
	}
	if opts.swap {
		left, right = right, left
	}

	samples := interleave(left, right)

	var s hdcd.Stereo
	s.ResetExt(rate, 2000, 0, opts.mode, log)
	s.Process(samples, len(samples)/2)

	report := hdcd.DetectStereo(&s)
	fmt.Println(report.Summary())

	if opts.plotPath != "" {
		if err := plotGainHistogram(&s, opts.plotPath); err != nil {
			return errors.Wrap(err, "could not write gain histogram plot")
		}
	}

	if opts.outPath != "" {
		md := wav.Metadata{AudioFormat: wav.PCMFormat, Channels: 2, SampleRate: int(rate), BitDepth: 16}
		f, err := os.Create(opts.outPath)
		if err != nil {
			return errors.Wrap(err, "could not create output file")
		}
		defer f.Close()
		if err := wav.WriteSamples(f, md, samples); err != nil {
			return errors.Wrap(err, "could not write decoded output")
		}
	}

	return nil
}

// readAudio loads path (a WAV or FLAC file) and returns its left and right
// channels as separate int32 sample slices, plus its sample rate. A mono
// file is returned as identical left/right channels if monoAsDual is set,
// otherwise it's rejected: HDCD packets never appear in a genuinely mono
// stream.
func readAudio(path string, monoAsDual bool) (left, right []int32, rate uint, err error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		return readWAV(path, monoAsDual)
	case ".flac":
		return readFLAC(path, monoAsDual)
	default:
		return nil, nil, 0, fmt.Errorf("unsupported file extension %q", ext)
	}
}

func readWAV(path string, monoAsDual bool) (left, right []int32, rate uint, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, 0, err
	}
	defer f.Close()

	file, err := wav.Read(f)
	if err != nil {
		return nil, nil, 0, err
	}
	return splitChannels(file.Samples, file.Metadata.Channels, uint(file.Metadata.SampleRate), monoAsDual)
}

func readFLAC(path string, monoAsDual bool) (left, right []int32, rate uint, err error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return nil, nil, 0, err
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	var interleaved []int32
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, 0, err
		}
		n := len(frame.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				interleaved = append(interleaved, frame.Subframes[ch].Samples[i])
			}
		}
	}
	return splitChannels(interleaved, channels, uint(stream.Info.SampleRate), monoAsDual)
}

// splitChannels de-interleaves samples into independent left/right slices.
func splitChannels(samples []int32, channels int, rate uint, monoAsDual bool) (left, right []int32, outRate uint, err error) {
	switch channels {
	case 2:
		left = make([]int32, len(samples)/2)
		right = make([]int32, len(samples)/2)
		for i := range left {
			left[i] = samples[i*2]
			right[i] = samples[i*2+1]
		}
		return left, right, rate, nil

	case 1:
		if !monoAsDual {
			return nil, nil, 0, errors.New("input is mono; pass -mono-as-dual to decode it as a duplicated HDCD pair")
		}
		left = make([]int32, len(samples))
		copy(left, samples)
		right = make([]int32, len(samples))
		copy(right, samples)
		return left, right, rate, nil

	default:
		return nil, nil, 0, fmt.Errorf("unsupported channel count %d", channels)
	}
}

// interleave recombines independent left/right channels into a single
// buffer suitable for hdcd.Stereo.Process.
func interleave(left, right []int32) []int32 {
	out := make([]int32, len(left)+len(right))
	for i := range left {
		out[i*2] = left[i]
		out[i*2+1] = right[i]
	}
	return out
}

// parseAnalyzeMode converts the -analyze flag's string value to an
// hdcd.AnalyzeMode.
func parseAnalyzeMode(s string) (hdcd.AnalyzeMode, error) {
	switch strings.ToLower(s) {
	case "":
		return hdcd.AnalyzeOff, nil
	case "lle":
		return hdcd.AnalyzeLLE, nil
	case "pe":
		return hdcd.AnalyzePE, nil
	case "cdt":
		return hdcd.AnalyzeCDT, nil
	case "tgm":
		return hdcd.AnalyzeTGM, nil
	default:
		return hdcd.AnalyzeOff, fmt.Errorf("unknown -analyze mode %q", s)
	}
}
