package sg

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := newTestRing()
	m.Sections[2].Kind = Curve
	m.Sections[2].Center = Point{X: 500, Y: 500}
	m.Sections[2].Radius = -1200
	m.Sections[2].StartSin = 7
	m.Sections[2].StartCos = -7
	m.Sections[2].Reserved = 42
	m.Sections[3].Grade = []int32{123, -456}

	raw := Encode(m)
	got, err := Decode(raw)
	require.NoError(t, err)

	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeRewritesHeaderCounts(t *testing.T) {
	m := newTestRing()
	// Stale counts must not survive an encode.
	m.Header.SectionCount = 99
	m.Header.XsectCount = 99

	got, err := Decode(Encode(m))
	require.NoError(t, err)
	assert.Equal(t, int32(4), got.Header.SectionCount)
	assert.Equal(t, int32(2), got.Header.XsectCount)
	assert.Len(t, got.Sections, 4)
}

func TestEncodePadsFSectSlots(t *testing.T) {
	m := newTestRing()
	raw := Encode(m)

	// 6 header words + 2 DLATs + 4 records of 17+4+1+40 words.
	recordWords := sectionScalarWords + 2*2 + 1 + 4*MaxFSections
	assert.Equal(t, 4*(6+2+4*recordWords), len(raw))

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Len(t, got.Sections[0].FSections, 2)
	assert.Len(t, got.Sections[1].FSections, 1)
}

func TestEncodeClampsExcessFSects(t *testing.T) {
	m := newTestRing()
	s := m.Sections[0]
	s.FSections = nil
	for j := 0; j < MaxFSections+3; j++ {
		s.FSections = append(s.FSections, FSection{
			SurfaceType: 1, StartDLAT: int32(j * 10), EndDLAT: int32(j*10 + 5),
		})
	}

	got, err := Decode(Encode(m))
	require.NoError(t, err)
	assert.Len(t, got.Sections[0].FSections, MaxFSections)
}

func TestDecodeTooShort(t *testing.T) {
	_, err := Decode(make([]byte, 20))
	require.Error(t, err)
}

func TestDecodeTruncatedRecord(t *testing.T) {
	m := newTestRing()
	raw := Encode(m)

	// Drop the last two words: the final record decodes with a zero-filled
	// tail but still materialises.
	got, err := Decode(raw[:len(raw)-8])
	require.NoError(t, err)
	assert.Len(t, got.Sections, 4)
	assert.Empty(t, got.Sections[3].FSections)
}

func TestDecodeMissingRecord(t *testing.T) {
	m := newTestRing()
	raw := Encode(m)

	// Drop the entire final record: the header still claims four sections,
	// which the validator reports as fatal.
	recordBytes := 4 * (sectionScalarWords + 2*2 + 1 + 4*MaxFSections)
	got, err := Decode(raw[:len(raw)-recordBytes])
	require.NoError(t, err)
	assert.Len(t, got.Sections, 3)

	_, err = Validate(got)
	var structural *StructuralError
	require.ErrorAs(t, err, &structural)
}

func TestDecodeNeverValidates(t *testing.T) {
	m := newTestRing()
	m.Sections[1].Next = 77
	m.Sections[2].Length = -5
	raw := Encode(m)

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, int32(77), got.Sections[1].Next)
	assert.Equal(t, int32(-5), got.Sections[2].Length)
}
