// Package profile builds elevation-profile reports from a decoded track:
// sampled altitude series per xsect, summary statistics, and HTML/PNG chart
// exports.
package profile

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/racetools/sgkit/internal/sg"
)

// DefaultSamplesPerSection is the sampling resolution used when the caller
// does not pick one.
const DefaultSamplesPerSection = 24

// Data is one sampled elevation profile: parallel dlong/altitude series plus
// the dlong range covered by each positive-length section.
type Data struct {
	XsectIndex    int
	XsectDLAT     int32
	Dlongs        []float64
	Altitudes     []float64
	SectionRanges [][2]float64
	TrackLength   float64
}

// Label names the profiled xsect for chart titles.
func (d *Data) Label() string {
	return fmt.Sprintf("X-Section %d (DLAT %d)", d.XsectIndex, d.XsectDLAT)
}

// Build samples the altitude curve at one xsect, samplesPerSection+1 points
// per positive-length section.
func Build(m *sg.TrackModel, xsect, samplesPerSection int) (*Data, error) {
	if xsect < 0 || xsect >= m.XsectCount() {
		return nil, fmt.Errorf("xsect %d out of range (track declares %d)", xsect, m.XsectCount())
	}
	if samplesPerSection < 1 {
		samplesPerSection = DefaultSamplesPerSection
	}

	d := &Data{
		XsectIndex:  xsect,
		XsectDLAT:   m.XsectDLATs[xsect],
		TrackLength: float64(m.TrackLength()),
	}

	for i, s := range m.Sections {
		if s.Length <= 0 {
			continue
		}
		start := float64(s.StartDlong)
		d.SectionRanges = append(d.SectionRanges, [2]float64{start, start + float64(s.Length)})
		for step := 0; step <= samplesPerSection; step++ {
			fraction := float64(step) / float64(samplesPerSection)
			v, err := sg.AltitudeGradeAt(m, i, fraction, xsect)
			if err != nil {
				return nil, fmt.Errorf("sample section %d: %w", i, err)
			}
			d.Dlongs = append(d.Dlongs, start+fraction*float64(s.Length))
			d.Altitudes = append(d.Altitudes, v.Altitude)
		}
	}
	return d, nil
}

// Summary holds descriptive statistics over a profile's altitude samples.
type Summary struct {
	Samples int
	Min     float64
	Max     float64
	Mean    float64
	StdDev  float64
}

// Summarize computes descriptive statistics for the profile.
func Summarize(d *Data) Summary {
	if len(d.Altitudes) == 0 {
		return Summary{}
	}
	min, max := d.Altitudes[0], d.Altitudes[0]
	for _, a := range d.Altitudes[1:] {
		min = math.Min(min, a)
		max = math.Max(max, a)
	}
	mean, std := stat.MeanStdDev(d.Altitudes, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return Summary{
		Samples: len(d.Altitudes),
		Min:     min,
		Max:     max,
		Mean:    mean,
		StdDev:  std,
	}
}
