package sg

import (
	"fmt"
	"iter"
	"math"
)

// Elevation is stored per section per xsect as the altitude at the section's
// END boundary; the altitude at its start is the previous section's value
// (the ring wraps, so section 0 starts where the last section ends). Between
// boundaries the surface follows a cubic in the normalised position t whose
// endpoint slopes come from the stored grade values divided by GradeScale:
//
//	a = (2*begin/L + slope0 + slope1 - 2*end/L) * L
//	b = (3*end/L - 3*begin/L - 2*slope0 - slope1) * L
//	c = slope0 * L
//	altitude(t) = a*t^3 + b*t^2 + c*t + begin
//	grade(t)    = (3a*t^2 + 2b*t + c) / L * GradeScale

// AltitudeGrade is a sampled elevation value: altitude in 500ths of an inch
// and the fixed-point grade at the same point.
type AltitudeGrade struct {
	Altitude float64
	Grade    float64
}

// AltitudeGradeAt evaluates the cubic for section i at normalised position
// t in [0,1] at the declared xsect x. A non-positive section length returns
// the begin altitude and the predecessor's stored grade without dividing.
func AltitudeGradeAt(m *TrackModel, i int, t float64, x int) (AltitudeGrade, error) {
	if err := m.checkSectionIndex(i); err != nil {
		return AltitudeGrade{}, err
	}
	if err := m.checkXsectIndex(x); err != nil {
		return AltitudeGrade{}, err
	}
	cur := m.Sections[i]
	prev := m.Sections[m.prevIndex(i)]
	if len(cur.Altitude) <= x || len(prev.Altitude) <= x || len(cur.Grade) <= x || len(prev.Grade) <= x {
		return AltitudeGrade{}, preconditionf("section %d or its predecessor is missing elevation data for xsect %d", i, x)
	}

	begin := float64(prev.Altitude[x])
	end := float64(cur.Altitude[x])
	length := float64(cur.Length)
	if length <= 0 {
		return AltitudeGrade{Altitude: begin, Grade: float64(prev.Grade[x])}, nil
	}

	slope0 := float64(prev.Grade[x]) / GradeScale
	slope1 := float64(cur.Grade[x]) / GradeScale

	a := (2*begin/length + slope0 + slope1 - 2*end/length) * length
	b := (3*end/length - 3*begin/length - 2*slope0 - slope1) * length
	c := slope0 * length

	t = clamp01(t)
	altitude := a*t*t*t + b*t*t + c*t + begin
	grade := (3*a*t*t + 2*b*t + c) / length * GradeScale
	return AltitudeGrade{Altitude: altitude, Grade: grade}, nil
}

// DenormalizeDLAT maps a normalised [0,1] lateral position onto the declared
// DLAT range.
func DenormalizeDLAT(m *TrackModel, norm float64) float64 {
	if len(m.XsectDLATs) == 0 {
		return norm
	}
	min, max := dlatRange(m.XsectDLATs)
	if min == max {
		return min
	}
	return min + (max-min)*clamp01(norm)
}

// XsectPairForDLAT locates the two declared xsects bracketing an absolute
// DLAT, clamping at the extremes. The returned pair is (left, right) with
// left the higher-indexed bracket; the indices are equal when dlat falls
// outside the declared range.
func XsectPairForDLAT(m *TrackModel, dlat float64) (left, right int) {
	dlats := m.XsectDLATs
	if len(dlats) == 0 {
		return 0, 0
	}
	if dlat <= float64(dlats[0]) {
		return 0, 0
	}
	last := len(dlats) - 1
	if dlat >= float64(dlats[last]) {
		return last, last
	}
	for i := 0; i < last; i++ {
		if float64(dlats[i]) <= dlat && dlat < float64(dlats[i+1]) {
			return i + 1, i
		}
	}
	return last, last
}

// AltitudeAtDLAT evaluates altitude for section i at normalised position t
// and a normalised lateral offset, linearly blending the two bracketing
// xsect curves by relative lateral position.
func AltitudeAtDLAT(m *TrackModel, i int, t, dlatNorm float64) (float64, error) {
	if len(m.Sections) == 0 {
		return 0, preconditionf("no sections loaded")
	}
	dlat := DenormalizeDLAT(m, dlatNorm)
	left, right := XsectPairForDLAT(m, dlat)

	rightVal, err := AltitudeGradeAt(m, i, t, right)
	if err != nil {
		return 0, err
	}
	if left == right {
		return rightVal.Altitude, nil
	}
	leftVal, err := AltitudeGradeAt(m, i, t, left)
	if err != nil {
		return 0, err
	}

	leftDLAT := float64(m.XsectDLATs[left])
	rightDLAT := float64(m.XsectDLATs[right])
	span := leftDLAT - rightDLAT
	if span == 0 {
		return rightVal.Altitude, nil
	}
	frac := (dlat - rightDLAT) / span
	return rightVal.Altitude + (leftVal.Altitude-rightVal.Altitude)*frac, nil
}

// SampleProfile yields altitude samples across every positive-length section
// at the given xsect, resolution+1 points per section. The sequence is lazy
// and restartable; it never mutates the model.
func SampleProfile(m *TrackModel, x, resolution int) iter.Seq[float64] {
	if resolution < 1 {
		resolution = 1
	}
	return func(yield func(float64) bool) {
		for i, s := range m.Sections {
			if s.Length <= 0 {
				continue
			}
			for step := 0; step <= resolution; step++ {
				v, err := AltitudeGradeAt(m, i, float64(step)/float64(resolution), x)
				if err != nil {
					return
				}
				if !yield(v.Altitude) {
					return
				}
			}
		}
	}
}

// requireElevationArrays checks every section carries full-length altitude
// and grade arrays before a batch edit writes anything.
func requireElevationArrays(m *TrackModel) error {
	nx := m.XsectCount()
	for i, s := range m.Sections {
		if len(s.Altitude) != nx {
			return preconditionf("section %d has %d altitude values, want %d", i, len(s.Altitude), nx)
		}
		if len(s.Grade) != nx {
			return preconditionf("section %d has %d grade values, want %d", i, len(s.Grade), nx)
		}
	}
	return nil
}

// FlattenAll sets every altitude value to altitude and every grade value to
// grade on every section.
func FlattenAll(m *TrackModel, altitude, grade int32) error {
	if len(m.Sections) == 0 {
		return preconditionf("no sections loaded")
	}
	if err := requireElevationArrays(m); err != nil {
		return err
	}
	for _, s := range m.Sections {
		for x := range s.Altitude {
			s.Altitude[x] = altitude
			s.Grade[x] = grade
		}
	}
	return nil
}

// OffsetAll adds delta to every altitude value, leaving grades untouched.
func OffsetAll(m *TrackModel, delta int32) error {
	if len(m.Sections) == 0 {
		return preconditionf("no sections loaded")
	}
	if err := requireElevationArrays(m); err != nil {
		return err
	}
	for _, s := range m.Sections {
		for x := range s.Altitude {
			s.Altitude[x] += delta
		}
	}
	return nil
}

// CopyXsectToAll broadcasts xsect x's altitude and grade to every xsect slot
// of every section.
func CopyXsectToAll(m *TrackModel, x int) error {
	if len(m.Sections) == 0 {
		return preconditionf("no sections loaded")
	}
	if err := m.checkXsectIndex(x); err != nil {
		return err
	}
	if err := requireElevationArrays(m); err != nil {
		return err
	}
	for _, s := range m.Sections {
		alt, grade := s.Altitude[x], s.Grade[x]
		for j := range s.Altitude {
			s.Altitude[j] = alt
			s.Grade[j] = grade
		}
	}
	return nil
}

// CurveShape names one of the elevation-change shape functions.
type CurveShape string

const (
	ShapeLinear  CurveShape = "linear"
	ShapeConvex  CurveShape = "convex"
	ShapeConcave CurveShape = "concave"
	ShapeSCurve  CurveShape = "s_curve"
)

// shapeValue evaluates the shape function at t.
func (c CurveShape) shapeValue(t float64) (float64, error) {
	switch c {
	case ShapeLinear:
		return t, nil
	case ShapeConvex:
		return t * t, nil
	case ShapeConcave:
		return 1 - (1-t)*(1-t), nil
	case ShapeSCurve:
		return 3*t*t - 2*t*t*t, nil
	default:
		return 0, preconditionf("unknown curve shape %q", string(c))
	}
}

// shapeSlope evaluates the analytic derivative of the shape function at t.
func (c CurveShape) shapeSlope(t float64) (float64, error) {
	switch c {
	case ShapeLinear:
		return 1, nil
	case ShapeConvex:
		return 2 * t, nil
	case ShapeConcave:
		return 2 - 2*t, nil
	case ShapeSCurve:
		return 6*t - 6*t*t, nil
	default:
		return 0, preconditionf("unknown curve shape %q", string(c))
	}
}

// GenerateElevationChange writes a shaped altitude transition from startAlt
// at startSection to endAlt at endSection for xsect x. Both t and the grade
// divisor are in section-index units, so altitude and grade derive from the
// same shape function and stay mutually consistent:
//
//	t        = (i - startSection) / span,  span = endSection - startSection
//	altitude = round(startAlt + delta*shape(t))
//	grade    = round(delta*shape'(t)/span * GradeScale)
func GenerateElevationChange(m *TrackModel, startSection, endSection, x int, startAlt, endAlt float64, shape CurveShape) error {
	if err := m.checkSectionIndex(startSection); err != nil {
		return err
	}
	if err := m.checkSectionIndex(endSection); err != nil {
		return err
	}
	if err := m.checkXsectIndex(x); err != nil {
		return err
	}
	if endSection <= startSection {
		return preconditionf("end section %d must be after start section %d", endSection, startSection)
	}
	if err := requireElevationArrays(m); err != nil {
		return err
	}
	if _, err := shape.shapeValue(0); err != nil {
		return err
	}

	span := float64(endSection - startSection)
	delta := endAlt - startAlt
	for i := startSection; i <= endSection; i++ {
		t := float64(i-startSection) / span
		value, err := shape.shapeValue(t)
		if err != nil {
			return err
		}
		slope, err := shape.shapeSlope(t)
		if err != nil {
			return err
		}
		s := m.Sections[i]
		s.Altitude[x] = int32(math.Round(startAlt + delta*value))
		s.Grade[x] = int32(math.Round(delta * slope / span * GradeScale))
	}
	return nil
}

// XsectDefinition describes one entry of an xsect redefinition: the new DLAT
// and, optionally, the existing xsect index whose altitude/grade columns seed
// the new slot. A nil Source zero-fills the slot.
type XsectDefinition struct {
	Source *int
	DLAT   int32
}

// SetXsectDefinitions replaces the declared xsect table. Every section gets
// fresh altitude/grade arrays built per entry: copied from the named source
// column or zero-filled. Rejects fewer than MinXsects or more than MaxXsects
// entries, duplicate source indices, and out-of-range sources — all before
// any section is touched.
func SetXsectDefinitions(m *TrackModel, entries []XsectDefinition) error {
	if len(entries) < MinXsects || len(entries) > MaxXsects {
		return preconditionf("xsect count %d outside [%d, %d]", len(entries), MinXsects, MaxXsects)
	}
	seen := map[int]bool{}
	for _, e := range entries {
		if e.Source == nil {
			continue
		}
		src := *e.Source
		if src < 0 || src >= m.XsectCount() {
			return rangeErr("xsect source", src, m.XsectCount())
		}
		if seen[src] {
			return preconditionf("duplicate xsect source index %d", src)
		}
		seen[src] = true
	}
	if err := requireElevationArrays(m); err != nil {
		return err
	}

	dlats := make([]int32, len(entries))
	for i, e := range entries {
		dlats[i] = e.DLAT
	}
	for _, s := range m.Sections {
		alt := make([]int32, len(entries))
		grade := make([]int32, len(entries))
		for i, e := range entries {
			if e.Source != nil {
				alt[i] = s.Altitude[*e.Source]
				grade[i] = s.Grade[*e.Source]
			}
		}
		s.Altitude = alt
		s.Grade = grade
	}
	m.XsectDLATs = dlats
	m.Header.XsectCount = int32(len(dlats))
	return nil
}

// reorientElevation applies the reverse-orientation heuristic: when a
// committed section's endpoints are exactly swapped relative to its pre-edit
// geometry, the lateral altitude/grade columns are mirrored and the grades
// negated so the surface reads the same in the new direction. Anything short
// of an exact swap leaves the arrays alone.
func reorientElevation(before, after *Section) {
	if before.Start != after.End || before.End != after.Start {
		return
	}
	reverseInt32(after.Altitude)
	reverseInt32(after.Grade)
	for i := range after.Grade {
		after.Grade[i] = -after.Grade[i]
	}
}

func reverseInt32(values []int32) {
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
}

func clamp01(t float64) float64 {
	return math.Min(1, math.Max(0, t))
}

func dlatRange(dlats []int32) (min, max float64) {
	min = float64(dlats[0])
	max = float64(dlats[0])
	for _, d := range dlats[1:] {
		v := float64(d)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// ParseCurveShape validates a shape name from user input.
func ParseCurveShape(name string) (CurveShape, error) {
	shape := CurveShape(name)
	switch shape {
	case ShapeLinear, ShapeConvex, ShapeConcave, ShapeSCurve:
		return shape, nil
	}
	return "", fmt.Errorf("unknown shape %q (want %s, %s, %s or %s)",
		name, ShapeLinear, ShapeConvex, ShapeConcave, ShapeSCurve)
}
