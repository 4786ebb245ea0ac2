// Package trackdb stores a catalog of decoded track files in sqlite so
// repeated tooling runs can list and compare tracks without re-reading
// every binary.
package trackdb

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/racetools/sgkit/internal/sg"
)

type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the catalog database at path. The schema is
// managed by migrations; call MigrateUp before writing.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

// TrackRecord is one catalog row describing a stored track file.
type TrackRecord struct {
	ID           string
	Name         string
	Filetype     int32
	SectionCount int
	XsectCount   int
	TrackLength  int64
	Checksum     string
	CreatedAt    time.Time
}

func (r *TrackRecord) String() string {
	return fmt.Sprintf(
		"ID: %s, Name: %s, Sections: %d, Xsects: %d, Length: %d, Checksum: %s",
		r.ID, r.Name, r.SectionCount, r.XsectCount, r.TrackLength, r.Checksum,
	)
}

// Checksum returns the hex sha256 of raw track file bytes. Catalog rows
// keyed on the same checksum refer to identical file content.
func Checksum(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// RecordTrack inserts a catalog row summarising the decoded model. The raw
// bytes are hashed for the checksum column but not stored. Returns the new
// row's id.
func (db *DB) RecordTrack(name string, model *sg.TrackModel, raw []byte) (string, error) {
	id := uuid.New().String()
	_, err := db.Exec(
		`INSERT INTO tracks (
			id, name, filetype, section_count, xsect_count, track_length, checksum
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, name, model.Header.Filetype,
		model.SectionCount(), model.XsectCount(),
		model.TrackLength(), Checksum(raw),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Tracks returns catalog rows, most recent first.
func (db *DB) Tracks(limit int) ([]TrackRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(
		`SELECT id, name, filetype, section_count, xsect_count, track_length, checksum, created_at
		FROM tracks ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []TrackRecord
	for rows.Next() {
		var r TrackRecord
		if err := rows.Scan(
			&r.ID,
			&r.Name,
			&r.Filetype,
			&r.SectionCount,
			&r.XsectCount,
			&r.TrackLength,
			&r.Checksum,
			&r.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// TrackByChecksum looks up a catalog row by content checksum. Returns
// sql.ErrNoRows when the track has not been recorded.
func (db *DB) TrackByChecksum(checksum string) (*TrackRecord, error) {
	var r TrackRecord
	err := db.QueryRow(
		`SELECT id, name, filetype, section_count, xsect_count, track_length, checksum, created_at
		FROM tracks WHERE checksum = ? ORDER BY created_at DESC LIMIT 1`, checksum).
		Scan(&r.ID, &r.Name, &r.Filetype, &r.SectionCount, &r.XsectCount,
			&r.TrackLength, &r.Checksum, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteTrack removes a catalog row by id.
func (db *DB) DeleteTrack(id string) error {
	res, err := db.Exec(`DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no track with id %s", id)
	}
	return nil
}
