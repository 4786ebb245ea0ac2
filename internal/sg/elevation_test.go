package sg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAltitudeGradeAtCubic(t *testing.T) {
	m := newTestRing()
	// Section 1 runs from section 0's boundary altitude 10 to its own 20
	// over length 1000 with flat endpoint grades.
	v, err := AltitudeGradeAt(m, 1, 0.5, 0)
	require.NoError(t, err)
	// a = (2*10/1000 - 2*20/1000)*1000 = -20, b = (3*20/1000 - 3*10/1000)*1000 = 30
	// alt(0.5) = -20*0.125 + 30*0.25 + 10 = 150/10
	assert.InDelta(t, 15.0, v.Altitude, 1e-9)
	// grade(0.5) = (3*-20*0.25 + 2*30*0.5)/1000 * 8192
	assert.InDelta(t, 15.0/1000*GradeScale, v.Grade, 1e-9)
}

func TestAltitudeGradeAtBoundaries(t *testing.T) {
	m := newTestRing()
	m.Sections[0].Grade = []int32{500, 0}
	m.Sections[1].Grade = []int32{-250, 0}

	// t=0 reproduces the predecessor's stored boundary values exactly.
	v, err := AltitudeGradeAt(m, 1, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, v.Altitude, 1e-9)
	assert.InDelta(t, 500.0, v.Grade, 1e-9)

	// t=1 reproduces the section's own stored boundary values exactly.
	v, err = AltitudeGradeAt(m, 1, 1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, v.Altitude, 1e-9)
	assert.InDelta(t, -250.0, v.Grade, 1e-9)
}

func TestAltitudeGradeAtWrapsToLastSection(t *testing.T) {
	m := newTestRing()
	// Section 0's begin altitude is the last section's end altitude.
	v, err := AltitudeGradeAt(m, 0, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, v.Altitude, 1e-9)
}

func TestAltitudeGradeAtZeroLength(t *testing.T) {
	m := newTestRing()
	m.Sections[1].Length = 0
	m.Sections[0].Grade = []int32{777, 0}

	v, err := AltitudeGradeAt(m, 1, 0.5, 0)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, v.Altitude, 1e-9)
	assert.InDelta(t, 777.0, v.Grade, 1e-9)
}

func TestAltitudeGradeAtRangeErrors(t *testing.T) {
	m := newTestRing()
	var rng *RangeError

	_, err := AltitudeGradeAt(m, 9, 0, 0)
	require.ErrorAs(t, err, &rng)

	_, err = AltitudeGradeAt(m, 0, 0, 9)
	require.ErrorAs(t, err, &rng)
}

func TestXsectPairForDLAT(t *testing.T) {
	m := newTestRing()

	left, right := XsectPairForDLAT(m, 0)
	assert.Equal(t, 1, left)
	assert.Equal(t, 0, right)

	// Outside the declared range both brackets clamp to the extreme.
	left, right = XsectPairForDLAT(m, -400000)
	assert.Equal(t, 0, left)
	assert.Equal(t, 0, right)

	left, right = XsectPairForDLAT(m, 400000)
	assert.Equal(t, 1, left)
	assert.Equal(t, 1, right)
}

func TestAltitudeAtDLATBlends(t *testing.T) {
	m := newTestRing()

	// At the lateral midpoint of section 1's end boundary the altitude is
	// halfway between the two xsect columns (20 and 200).
	v, err := AltitudeAtDLAT(m, 1, 1, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 110.0, v, 1e-9)

	// At the extremes the blend collapses onto one column.
	v, err = AltitudeAtDLAT(m, 1, 1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, v, 1e-9)

	v, err = AltitudeAtDLAT(m, 1, 1, 1)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, v, 1e-9)
}

func TestSampleProfile(t *testing.T) {
	m := newTestRing()
	m.Sections[2].Length = 0

	var samples []float64
	for v := range SampleProfile(m, 0, 4) {
		samples = append(samples, v)
	}
	// Three positive-length sections, five samples each.
	assert.Len(t, samples, 15)
}

func TestFlattenAll(t *testing.T) {
	m := newTestRing()
	require.NoError(t, FlattenAll(m, 6000, 0))
	for _, s := range m.Sections {
		for x := range s.Altitude {
			assert.Equal(t, int32(6000), s.Altitude[x])
			assert.Equal(t, int32(0), s.Grade[x])
		}
	}
}

func TestOffsetAll(t *testing.T) {
	m := newTestRing()
	m.Sections[0].Grade = []int32{11, -11}
	require.NoError(t, OffsetAll(m, 6000))

	assert.Equal(t, int32(6010), m.Sections[0].Altitude[0])
	assert.Equal(t, int32(6100), m.Sections[0].Altitude[1])
	assert.Equal(t, int32(6040), m.Sections[3].Altitude[0])
	// Grades are untouched.
	assert.Equal(t, int32(11), m.Sections[0].Grade[0])
	assert.Equal(t, int32(-11), m.Sections[0].Grade[1])
}

func TestBatchEditsRequireFullArrays(t *testing.T) {
	m := newTestRing()
	m.Sections[2].Altitude = []int32{1}

	var pre *PreconditionError
	require.ErrorAs(t, FlattenAll(m, 0, 0), &pre)
	require.ErrorAs(t, OffsetAll(m, 1), &pre)
	require.ErrorAs(t, CopyXsectToAll(m, 0), &pre)

	// Nothing was written before the precondition failed.
	assert.Equal(t, int32(10), m.Sections[0].Altitude[0])
}

func TestCopyXsectToAll(t *testing.T) {
	m := newTestRing()
	m.Sections[1].Grade = []int32{55, 66}
	require.NoError(t, CopyXsectToAll(m, 1))

	assert.Equal(t, []int32{200, 200}, m.Sections[1].Altitude)
	assert.Equal(t, []int32{66, 66}, m.Sections[1].Grade)
	assert.Equal(t, []int32{300, 300}, m.Sections[2].Altitude)
}

func TestGenerateElevationChangeLinear(t *testing.T) {
	m := newTestRing()
	require.NoError(t, GenerateElevationChange(m, 0, 3, 0, 0, 300, ShapeLinear))

	for i := 0; i <= 3; i++ {
		assert.Equal(t, int32(100*i), m.Sections[i].Altitude[0], "section %d", i)
		// A linear ramp over N section steps has constant grade
		// (end-start)/N * GradeScale at every boundary.
		assert.Equal(t, int32(100*GradeScale), m.Sections[i].Grade[0], "section %d", i)
	}
	// Other xsect columns are untouched.
	assert.Equal(t, int32(100), m.Sections[0].Altitude[1])
}

func TestGenerateElevationChangeSCurve(t *testing.T) {
	m := newTestRing()
	require.NoError(t, GenerateElevationChange(m, 0, 2, 0, 100, 500, ShapeSCurve))

	// The s-curve passes through the endpoints with zero slope there.
	assert.Equal(t, int32(100), m.Sections[0].Altitude[0])
	assert.Equal(t, int32(500), m.Sections[2].Altitude[0])
	assert.Equal(t, int32(0), m.Sections[0].Grade[0])
	assert.Equal(t, int32(0), m.Sections[2].Grade[0])
	// Midpoint: shape(0.5) = 0.5, slope(0.5) = 1.5.
	assert.Equal(t, int32(300), m.Sections[1].Altitude[0])
	assert.Equal(t, int32(400*1.5/2*GradeScale), m.Sections[1].Grade[0])
}

func TestGenerateElevationChangeRejectsBadRange(t *testing.T) {
	m := newTestRing()
	var pre *PreconditionError
	require.ErrorAs(t, GenerateElevationChange(m, 2, 2, 0, 0, 100, ShapeLinear), &pre)
	require.ErrorAs(t, GenerateElevationChange(m, 3, 1, 0, 0, 100, ShapeLinear), &pre)
}

func TestSetXsectDefinitions(t *testing.T) {
	m := newTestRing()
	src0, src1 := 0, 1
	entries := []XsectDefinition{
		{DLAT: -250000, Source: &src0},
		{DLAT: 0},
		{DLAT: 250000, Source: &src1},
	}
	require.NoError(t, SetXsectDefinitions(m, entries))

	assert.Equal(t, []int32{-250000, 0, 250000}, m.XsectDLATs)
	assert.Equal(t, int32(3), m.Header.XsectCount)
	assert.Equal(t, []int32{10, 0, 100}, m.Sections[0].Altitude)
	assert.Equal(t, []int32{40, 0, 400}, m.Sections[3].Altitude)
	assert.Equal(t, []int32{0, 0, 0}, m.Sections[0].Grade)
}

func TestSetXsectDefinitionsRejectsBadInput(t *testing.T) {
	var pre *PreconditionError
	var rng *RangeError

	m := newTestRing()
	require.ErrorAs(t, SetXsectDefinitions(m, []XsectDefinition{{DLAT: 0}}), &pre)

	var tooMany []XsectDefinition
	for i := 0; i <= MaxXsects; i++ {
		tooMany = append(tooMany, XsectDefinition{DLAT: int32(i)})
	}
	require.ErrorAs(t, SetXsectDefinitions(m, tooMany), &pre)

	bad := 7
	require.ErrorAs(t, SetXsectDefinitions(m, []XsectDefinition{
		{DLAT: 0, Source: &bad}, {DLAT: 1},
	}), &rng)

	dup := 0
	require.ErrorAs(t, SetXsectDefinitions(m, []XsectDefinition{
		{DLAT: 0, Source: &dup}, {DLAT: 1, Source: &dup},
	}), &pre)

	// The table and sections are untouched after any rejection.
	assert.Equal(t, []int32{-300000, 300000}, m.XsectDLATs)
	assert.Equal(t, []int32{10, 100}, m.Sections[0].Altitude)
}

func TestParseCurveShape(t *testing.T) {
	for _, name := range []string{"linear", "convex", "concave", "s_curve"} {
		shape, err := ParseCurveShape(name)
		require.NoError(t, err)
		assert.Equal(t, CurveShape(name), shape)
	}
	_, err := ParseCurveShape("wavy")
	require.Error(t, err)
}
