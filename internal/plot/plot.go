// Package plot isolates chart rendering behind one narrow interface. Core
// analysis code never branches on whether rendering is available; callers
// hand artifacts to whichever Renderer they were given.
package plot

import (
	"image/color"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// XY is one observation.
type XY struct {
	X, Y float64
}

// Line is one named series within a chart.
type Line struct {
	Name   string
	Points []XY
	Dashed bool
}

// Chart is a renderer-agnostic description of a single artifact.
type Chart struct {
	Title  string
	XLabel string
	YLabel string
	LogY   bool
	Lines  []Line
}

// Artifact names a chart's output file relative to the run directory.
type Artifact struct {
	Name  string
	Chart Chart
}

// Renderer turns one chart into an artifact on disk.
type Renderer interface {
	Render(c Chart, path string) error
}

// Noop discards every chart; used when plotting is disabled.
type Noop struct{}

func (Noop) Render(Chart, string) error { return nil }

// PNG renders charts with gonum/plot.
type PNG struct{}

var palette = []color.RGBA{
	{66, 133, 244, 255},  // blue
	{219, 68, 55, 255},   // red
	{15, 157, 88, 255},   // green
	{244, 180, 0, 255},   // yellow
}

func (PNG) Render(c Chart, path string) error {
	p := gplot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Add(plotter.NewGrid())
	if c.LogY {
		p.Y.Scale = gplot.LogScale{}
		p.Y.Tick.Marker = gplot.LogTicks{Prec: -1}
	}

	for i, line := range c.Lines {
		pts := make(plotter.XYs, len(line.Points))
		for j, xy := range line.Points {
			pts[j].X = xy.X
			pts[j].Y = xy.Y
		}
		ln, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		ln.Color = palette[i%len(palette)]
		ln.Width = vg.Points(2)
		if line.Dashed {
			ln.Color = color.RGBA{0, 0, 0, 255}
			ln.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		}
		p.Add(ln)
		p.Legend.Add(line.Name, ln)
	}
	p.Legend.Top = true

	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}
