package sg

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFSections(t *testing.T) {
	in := []FSection{
		{SurfaceType: 1, StartDLAT: 500, EndDLAT: -500},  // inverted
		{SurfaceType: 2, StartDLAT: 100, EndDLAT: 100},   // zero width
		{SurfaceType: 3, StartDLAT: -900, EndDLAT: -100}, // already ordered
		{SurfaceType: 4, StartDLAT: -900, EndDLAT: -400},
	}
	want := []FSection{
		{SurfaceType: 4, StartDLAT: -900, EndDLAT: -400},
		{SurfaceType: 3, StartDLAT: -900, EndDLAT: -100},
		{SurfaceType: 1, StartDLAT: -500, EndDLAT: 500},
	}

	got := NormalizeFSections(in)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("normalize mismatch (-want +got):\n%s", diff)
	}

	// Idempotent: a second pass changes nothing.
	again := NormalizeFSections(got)
	if diff := cmp.Diff(got, again); diff != "" {
		t.Errorf("normalize not idempotent (-first +second):\n%s", diff)
	}
}

func TestInsertFSection(t *testing.T) {
	m := newTestRing()
	fsects, err := InsertFSection(m, 1, 0, FSection{
		SurfaceType: SurfaceWall, SecondaryType: 2, StartDLAT: 250000, EndDLAT: 210000,
	})
	require.NoError(t, err)
	require.Len(t, fsects, 2)

	// The inserted entry landed in normalised order and orientation.
	assert.Equal(t, int32(210000), fsects[1].StartDLAT)
	assert.Equal(t, int32(250000), fsects[1].EndDLAT)

	_, err = InsertFSection(m, 1, 9, FSection{StartDLAT: 0, EndDLAT: 1})
	var rng *RangeError
	require.ErrorAs(t, err, &rng)
}

func TestUpdateFSection(t *testing.T) {
	m := newTestRing()
	newEnd := int32(-250000)
	fsects, err := UpdateFSection(m, 0, 0, FSectionPatch{EndDLAT: &newEnd})
	require.NoError(t, err)

	// The patched entry inverted, so normalisation swapped it back.
	require.Len(t, fsects, 2)
	assert.Equal(t, int32(-250000), fsects[0].StartDLAT)
	assert.Equal(t, int32(-200000), fsects[0].EndDLAT)

	surface := int32(5)
	fsects, err = UpdateFSection(m, 0, 0, FSectionPatch{SurfaceType: &surface})
	require.NoError(t, err)
	assert.Equal(t, int32(5), fsects[0].SurfaceType)

	_, err = UpdateFSection(m, 0, 9, FSectionPatch{})
	var rng *RangeError
	require.ErrorAs(t, err, &rng)
}

func TestDeleteFSection(t *testing.T) {
	m := newTestRing()
	fsects, err := DeleteFSection(m, 0, 0)
	require.NoError(t, err)
	require.Len(t, fsects, 1)
	assert.Equal(t, int32(SurfaceWall), fsects[0].SurfaceType)

	_, err = DeleteFSection(m, 0, 5)
	var rng *RangeError
	require.ErrorAs(t, err, &rng)
}

func TestReplaceFSections(t *testing.T) {
	m := newTestRing()
	fsects, err := ReplaceFSections(m, 2, []FSection{
		{SurfaceType: 1, StartDLAT: 100, EndDLAT: -100},
		{SurfaceType: 2, StartDLAT: 50, EndDLAT: 50},
	})
	require.NoError(t, err)
	require.Len(t, fsects, 1)
	assert.Equal(t, int32(-100), fsects[0].StartDLAT)
}

func TestFSectMutationsAreSectionLocal(t *testing.T) {
	m := newTestRing()
	before1 := append([]FSection(nil), m.Sections[1].FSections...)
	before2 := append([]FSection(nil), m.Sections[2].FSections...)

	_, err := InsertFSection(m, 0, 0, FSection{SurfaceType: 6, StartDLAT: -10, EndDLAT: 10})
	require.NoError(t, err)
	_, err = DeleteFSection(m, 3, 0)
	require.NoError(t, err)

	assert.Equal(t, before1, m.Sections[1].FSections)
	assert.Equal(t, before2, m.Sections[2].FSections)
}

func TestGroundAndBoundarySegments(t *testing.T) {
	m := newTestRing()
	ground, err := GroundSegments(m, 0)
	require.NoError(t, err)
	require.Len(t, ground, 1)
	assert.Equal(t, int32(-200000), ground[0].StartDLAT)

	boundaries, err := BoundarySegments(m, 0)
	require.NoError(t, err)
	require.Len(t, boundaries, 1)
	assert.Equal(t, int32(SurfaceWall), boundaries[0].SurfaceType)
	assert.True(t, boundaries[0].IsFence)

	// Section 1 has no boundary entries.
	boundaries, err = BoundarySegments(m, 1)
	require.NoError(t, err)
	assert.Empty(t, boundaries)
}
