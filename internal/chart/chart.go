// Package chart draws diagnostic plots of simulation runs.
package chart

import (
	"fmt"
	"io"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/sim"
)

// Options sets the chart size and title.
type Options struct {
	Title  string
	Width  vg.Length
	Height vg.Length
}

// DefaultOptions returns a 6x4 inch chart.
func DefaultOptions() Options {
	return Options{
		Title:  "Signal propagation",
		Width:  6 * vg.Inch,
		Height: 4 * vg.Inch,
	}
}

// Convergence plots how many values changed in each pass of res. A run that
// hit the pass cap is marked in the title.
func Convergence(res sim.Result, opts Options) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = opts.Title
	if !res.Converged {
		p.Title.Text += fmt.Sprintf(" (no fixed point after %d passes, %d loops)", res.Passes, len(res.Loops))
	}
	p.X.Label.Text = "Pass"
	p.Y.Label.Text = "Changed values"
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(res.Changes))
	for i, n := range res.Changes {
		pts[i].X = float64(i + 1)
		pts[i].Y = float64(n)
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, fmt.Errorf("chart: %w", err)
	}
	p.Add(line, points)
	p.Legend.Add("changes", line, points)
	return p, nil
}

// WriteConvergence renders the chart of res to w in the given format
// ("png", "svg", "pdf", ...).
func WriteConvergence(w io.Writer, res sim.Result, opts Options, format string) error {
	p, err := Convergence(res, opts)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(opts.Width, opts.Height, format)
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("chart: write: %w", err)
	}
	return nil
}

// SaveConvergence writes the chart of res to path. The extension selects
// the format.
func SaveConvergence(path string, res sim.Result, opts Options) error {
	p, err := Convergence(res, opts)
	if err != nil {
		return err
	}
	if filepath.Ext(path) == "" {
		return fmt.Errorf("chart: %s: missing file extension", path)
	}
	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return fmt.Errorf("chart: save %s: %w", path, err)
	}
	return nil
}
