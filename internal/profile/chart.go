package profile

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteHTML renders the profile as a self-contained go-echarts line chart.
func WriteHTML(w io.Writer, d *Data) error {
	if len(d.Dlongs) == 0 {
		return fmt.Errorf("profile has no samples to chart")
	}

	xAxis := make([]string, len(d.Dlongs))
	series := make([]opts.LineData, len(d.Altitudes))
	for i, dlong := range d.Dlongs {
		xAxis[i] = fmt.Sprintf("%.0f", dlong)
		series[i] = opts.LineData{Value: d.Altitudes[i]}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Elevation Profile",
			Width:     "1200px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Elevation Profile",
			Subtitle: fmt.Sprintf("%s, track length %.0f", d.Label(), d.TrackLength),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "DLONG", NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Altitude", NameLocation: "middle", NameGap: 45}),
	)

	line.SetXAxis(xAxis)
	line.AddSeries(d.Label(), series, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
