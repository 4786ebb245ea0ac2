package sg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCleanRing(t *testing.T) {
	m := newTestRing()
	warnings, err := Validate(m)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestValidateFatal(t *testing.T) {
	var structural *StructuralError

	t.Run("header count mismatch", func(t *testing.T) {
		m := newTestRing()
		m.Header.SectionCount = 7
		_, err := Validate(m)
		require.ErrorAs(t, err, &structural)
	})

	t.Run("short altitude array", func(t *testing.T) {
		m := newTestRing()
		m.Sections[2].Altitude = []int32{1}
		_, err := Validate(m)
		require.ErrorAs(t, err, &structural)
	})

	t.Run("short grade array", func(t *testing.T) {
		m := newTestRing()
		m.Sections[2].Grade = []int32{1}
		_, err := Validate(m)
		require.ErrorAs(t, err, &structural)
	})

	t.Run("negative length", func(t *testing.T) {
		m := newTestRing()
		m.Sections[1].Length = -10
		_, err := Validate(m)
		require.ErrorAs(t, err, &structural)
	})

	t.Run("decreasing start dlong", func(t *testing.T) {
		m := newTestRing()
		m.Sections[2].StartDlong = 500
		_, err := Validate(m)
		require.ErrorAs(t, err, &structural)
	})
}

func TestValidateLinkWarnings(t *testing.T) {
	m := newTestRing()
	m.Sections[1].Next = 3
	m.Sections[2].Prev = 0

	warnings, err := Validate(m)
	require.NoError(t, err)
	require.Len(t, warnings, 2)
	assert.Equal(t, 1, warnings[0].Section)
	assert.Contains(t, warnings[0].Msg, "next link 3")
	assert.Equal(t, 2, warnings[1].Section)
	assert.Contains(t, warnings[1].Msg, "prev link 0")
}

func TestValidateToleratesUnconnected(t *testing.T) {
	m := newTestRing()
	m.Sections[0].Prev = Unconnected
	m.Sections[3].Next = Unconnected

	warnings, err := Validate(m)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestValidateRingWrap(t *testing.T) {
	m := newTestRing()
	// The fixture already wraps: last.Next=0 and first.Prev=last. Breaking
	// the wrap draws warnings.
	m.Sections[3].Next = 4
	warnings, err := Validate(m)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Msg, "expected 0")
}

func TestValidateSingleSection(t *testing.T) {
	m := newTestRing()
	m.Sections = m.Sections[:1]
	m.Header.SectionCount = 1
	m.Sections[0].Prev = -1
	m.Sections[0].Next = 1

	warnings, err := Validate(m)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}
