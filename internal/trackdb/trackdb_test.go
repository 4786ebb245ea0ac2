package trackdb

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racetools/sgkit/internal/sg"
)

const testMigrationsDir = "../../migrations"

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "tracks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.MigrateUp(testMigrationsDir))
	return db
}

func testModel() *sg.TrackModel {
	m := sg.NewTrackModel()
	s := m.NewSection(sg.Line)
	s.Length = 2500
	m.Sections = append(m.Sections, s)
	m.Header.SectionCount = 1
	return m
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.MigrateUp(testMigrationsDir))

	version, dirty, err := db.MigrateVersion(testMigrationsDir)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)
}

func TestRecordAndListTracks(t *testing.T) {
	db := openTestDB(t)
	m := testModel()
	raw := sg.Encode(m)

	id, err := db.RecordTrack("monza", m, raw)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	records, err := db.Tracks(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, id, r.ID)
	assert.Equal(t, "monza", r.Name)
	assert.Equal(t, 1, r.SectionCount)
	assert.Equal(t, 2, r.XsectCount)
	assert.Equal(t, int64(2500), r.TrackLength)
	assert.Equal(t, Checksum(raw), r.Checksum)
	assert.False(t, r.CreatedAt.IsZero())
}

func TestTrackByChecksum(t *testing.T) {
	db := openTestDB(t)
	m := testModel()
	raw := sg.Encode(m)

	_, err := db.RecordTrack("spa", m, raw)
	require.NoError(t, err)

	r, err := db.TrackByChecksum(Checksum(raw))
	require.NoError(t, err)
	assert.Equal(t, "spa", r.Name)

	_, err = db.TrackByChecksum("no-such-checksum")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDeleteTrack(t *testing.T) {
	db := openTestDB(t)
	m := testModel()
	id, err := db.RecordTrack("imola", m, sg.Encode(m))
	require.NoError(t, err)

	require.NoError(t, db.DeleteTrack(id))
	require.Error(t, db.DeleteTrack(id))

	records, err := db.Tracks(10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestChecksumIsStable(t *testing.T) {
	raw := []byte{1, 2, 3, 4}
	assert.Equal(t, Checksum(raw), Checksum([]byte{1, 2, 3, 4}))
	assert.NotEqual(t, Checksum(raw), Checksum([]byte{4, 3, 2, 1}))
	assert.Len(t, Checksum(raw), 64)
}
