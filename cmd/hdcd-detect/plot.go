/*
NAME
  plot.go

DESCRIPTION
  plot.go renders a two-bar chart of the mean and modal target-gain
  adjustment of a decoded stream, taken over both channels together,
  using gonum/plot. The full per-gain distribution is not drawn.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package main

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/bp0/libhdcd/codec/hdcd"
)

// plotGainHistogram writes a bar chart of s's joint gain-adjustment
// distribution (mean and mode, in dB) to path as a PNG.
func plotGainHistogram(s *hdcd.Stereo, path string) error {
	mean, mode := hdcd.GainHistogramStereo(s)

	p := plot.New()
	p.Title.Text = "HDCD target-gain distribution"
	p.X.Label.Text = "statistic"
	p.Y.Label.Text = "dB"

	values := plotter.Values{mean, mode}
	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return fmt.Errorf("could not build bar chart: %w", err)
	}
	p.Add(bars)
	p.NominalX("mean", "mode")

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("could not save plot: %w", err)
	}
	return nil
}
