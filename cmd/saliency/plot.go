package main

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/Noofbiz/saliency/datasets"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// plotSplitSizes writes a bar chart with one bar per partition.
func plotSplitSizes(outPath string, parts datasets.Partitions) error {
	train, val, test := parts.Sizes()

	p := plot.New()
	p.Title.Text = "Split sizes"
	p.Y.Label.Text = "entries"

	bars, err := plotter.NewBarChart(plotter.Values{float64(train), float64(val), float64(test)}, vg.Points(40))
	if err != nil {
		return err
	}
	bars.Color = color.RGBA{R: 20, G: 80, B: 200, A: 220}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.Add(plotter.NewGrid())
	p.NominalX("train", "val", "test")

	return savePlot(p, outPath, 5*vg.Inch, 4*vg.Inch)
}

// plotTargetHistogram writes a histogram of per-example mean target
// saliency.
func plotTargetHistogram(outPath string, means []float64) error {
	if len(means) == 0 {
		return fmt.Errorf("no examples to plot")
	}

	p := plot.New()
	p.Title.Text = "Mean target saliency"
	p.X.Label.Text = "mean saliency"
	p.Y.Label.Text = "examples"

	hist, err := plotter.NewHist(plotter.Values(means), 20)
	if err != nil {
		return err
	}
	hist.FillColor = color.RGBA{R: 200, G: 30, B: 30, A: 180}
	p.Add(hist)
	p.Add(plotter.NewGrid())
	p.X.Min = 0
	p.X.Max = 1

	return savePlot(p, outPath, 8*vg.Inch, 6*vg.Inch)
}

func savePlot(p *plot.Plot, outPath string, w, h vg.Length) error {
	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return p.Save(w, h, outPath)
}
