package profile

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Plot draws one step line per algorithm with ratio on a log-scaled x axis
// and the solved fraction on the y axis. The image format follows the file
// extension (png, svg, pdf, ...).
func Plot(prof *Profile, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "tau (ratio to best)"
	p.Y.Label.Text = "fraction of instances"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Min = 0
	p.Y.Max = 1.01

	maxRatio := 1.0
	for _, s := range prof.Series {
		for _, pt := range s.Points {
			if !math.IsInf(pt.Ratio, 0) {
				maxRatio = math.Max(maxRatio, pt.Ratio)
			}
		}
	}

	for i, s := range prof.Series {
		pts := stepPoints(s.Points, maxRatio*1.05)
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("profile line for %s: %w", s.Algorithm, err)
		}
		line.StepStyle = plotter.PostStep
		line.Width = vg.Points(2)
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i / len(plotutil.DefaultColors))
		p.Add(line)
		p.Legend.Add(s.Algorithm, line)
	}
	p.Legend.Top = false
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = 10
	p.Add(plotter.NewGrid())

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save profile plot: %w", err)
	}
	return nil
}

// stepPoints converts profile points into line vertices starting at ratio 1
// and extending the last fraction to right.
func stepPoints(points []Point, right float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(points)+2)
	if len(points) == 0 {
		return pts
	}
	if points[0].Ratio > 1 {
		pts = append(pts, plotter.XY{X: 1, Y: 0})
	}
	for _, pt := range points {
		if math.IsInf(pt.Ratio, 0) || math.IsNaN(pt.Ratio) {
			break
		}
		pts = append(pts, plotter.XY{X: pt.Ratio, Y: pt.Fraction})
	}
	if len(pts) == 0 {
		return pts
	}
	last := pts[len(pts)-1]
	if last.X < right {
		pts = append(pts, plotter.XY{X: right, Y: last.Y})
	}
	return pts
}
