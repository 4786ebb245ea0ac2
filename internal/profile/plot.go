package profile

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SavePNG renders the profile to a PNG file via gonum/plot.
func SavePNG(path string, d *Data) error {
	if len(d.Dlongs) == 0 {
		return fmt.Errorf("profile has no samples to plot")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Elevation Profile: %s", d.Label())
	p.X.Label.Text = "DLONG"
	p.Y.Label.Text = "Altitude"

	pts := make(plotter.XYs, len(d.Dlongs))
	for i := range d.Dlongs {
		pts[i].X = d.Dlongs[i]
		pts[i].Y = d.Altitudes[i]
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to build line: %w", err)
	}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Add(plotter.NewGrid())

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
