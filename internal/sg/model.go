// Package sg implements the SG track-geometry engine: a lossless codec for
// the binary SG file format, the cubic elevation/grade evaluator, the surface
// segment (fsect) normaliser, structural validation and an edit session that
// composes them behind a mutation API.
//
// All linear units are 500ths of an inch. DLONG runs along the track from the
// start/finish line; DLAT runs laterally from the centerline. Grade values
// are fixed-point slopes stored multiplied by GradeScale.
package sg

import "math"

// Layout constants of the SG format. A section record is HeaderWords scalar
// fields, one (altitude, grade) pair per xsect, then an fsect block of a
// count word plus MaxFSections four-word slots.
const (
	headerWords        = 6
	sectionScalarWords = 17

	// MinXsects and MaxXsects bound the number of cross-sections a track
	// may declare.
	MinXsects = 2
	MaxXsects = 10

	// MaxFSections is the number of fsect slots in a section record.
	MaxFSections = 10

	// GradeScale is the fixed-point factor applied to stored grade values.
	GradeScale = 8192.0

	// Unconnected marks a prev/next link with no neighbour.
	Unconnected = -1
)

// SectionKind distinguishes straights from constant-radius curves.
type SectionKind int32

const (
	Line  SectionKind = 1
	Curve SectionKind = 2
)

func (k SectionKind) String() string {
	switch k {
	case Line:
		return "line"
	case Curve:
		return "curve"
	default:
		return "unknown"
	}
}

// Surface type codes carried in FSection.SurfaceType. Values 0-6 are ground
// surfaces; walls and armco are boundaries.
const (
	SurfaceWall  = 7
	SurfaceArmco = 8
)

// fenceSecondaryTypes are the SecondaryType codes that mark a boundary fsect
// as a fence.
var fenceSecondaryTypes = map[int32]bool{2: true, 6: true, 10: true, 14: true}

// IsGroundSurface reports whether a surface type code is a ground surface
// (as opposed to a wall or armco boundary).
func IsGroundSurface(surfaceType int32) bool {
	return surfaceType >= 0 && surfaceType <= 6
}

// IsFenceType reports whether a boundary fsect with the given type codes is
// rendered as a fence.
func IsFenceType(surfaceType, secondaryType int32) bool {
	return (surfaceType == SurfaceWall || surfaceType == SurfaceArmco) && fenceSecondaryTypes[secondaryType]
}

// Point is a track-plane coordinate in 500ths of an inch.
type Point struct {
	X int32
	Y int32
}

// Header carries the six leading words of an SG file. SectionCount and
// XsectCount are authoritative only on disk; in memory the live slices win
// and the codec rewrites both counts on encode.
type Header struct {
	Filetype     int32
	Reserved     [3]int32
	SectionCount int32
	XsectCount   int32
}

// FSection is one surface or boundary segment of a section, spanning
// [StartDLAT, EndDLAT] laterally.
type FSection struct {
	SurfaceType   int32
	SecondaryType int32
	StartDLAT     int32
	EndDLAT       int32
}

// IsGround reports whether the fsect is a ground surface segment.
func (f FSection) IsGround() bool { return IsGroundSurface(f.SurfaceType) }

// IsFence reports whether the fsect is a fence-marked boundary.
func (f FSection) IsFence() bool { return IsFenceType(f.SurfaceType, f.SecondaryType) }

// Width returns the lateral extent of the segment.
func (f FSection) Width() int32 {
	if f.EndDLAT >= f.StartDLAT {
		return f.EndDLAT - f.StartDLAT
	}
	return f.StartDLAT - f.EndDLAT
}

// Section is one track section: a straight (Line) or a constant-radius arc
// (Curve). Altitude and Grade hold one value per declared xsect and must stay
// the same length as the model's xsect table.
type Section struct {
	Kind SectionKind
	Next int32
	Prev int32

	Start Point
	End   Point

	StartDlong int32
	Length     int32

	// Curve geometry. For straights these round-trip whatever the file
	// carried but are not interpreted.
	Center   Point
	StartSin int32
	StartCos int32
	EndSin   int32
	EndCos   int32
	Radius   int32

	// Reserved is an uninterpreted word round-tripped verbatim.
	Reserved int32

	Altitude []int32
	Grade    []int32

	FSections []FSection
}

// EndDlong returns StartDlong + Length.
func (s *Section) EndDlong() int32 { return s.StartDlong + s.Length }

// clone deep-copies the section including its slices.
func (s *Section) clone() *Section {
	c := *s
	c.Altitude = append([]int32(nil), s.Altitude...)
	c.Grade = append([]int32(nil), s.Grade...)
	c.FSections = append([]FSection(nil), s.FSections...)
	return &c
}

// TrackModel is the in-memory form of one SG file: the header, the declared
// xsect DLAT table, and the ordered section ring. Section identity is the
// slice index; prev/next links refer to indices.
type TrackModel struct {
	Header     Header
	XsectDLATs []int32
	Sections   []*Section
}

// defaultXsectDLATs is the symmetric two-xsect table used for new tracks.
var defaultXsectDLATs = []int32{-300000, 300000}

// NewTrackModel returns an empty track: no sections, two xsects at symmetric
// DLATs.
func NewTrackModel() *TrackModel {
	m := &TrackModel{
		XsectDLATs: append([]int32(nil), defaultXsectDLATs...),
	}
	m.Header.XsectCount = int32(len(m.XsectDLATs))
	return m
}

// NewSection returns a zeroed section with altitude/grade arrays sized for
// the model's xsect table and both links unconnected.
func (m *TrackModel) NewSection(kind SectionKind) *Section {
	nx := m.XsectCount()
	return &Section{
		Kind:     kind,
		Next:     Unconnected,
		Prev:     Unconnected,
		Altitude: make([]int32, nx),
		Grade:    make([]int32, nx),
	}
}

// SectionCount returns the live number of sections, ignoring the header.
func (m *TrackModel) SectionCount() int { return len(m.Sections) }

// XsectCount returns the live number of declared xsects, ignoring the header.
func (m *TrackModel) XsectCount() int { return len(m.XsectDLATs) }

// TrackLength returns the sum of all non-negative section lengths.
func (m *TrackModel) TrackLength() int64 {
	var total int64
	for _, s := range m.Sections {
		if s.Length > 0 {
			total += int64(s.Length)
		}
	}
	return total
}

// XsectInfo is one row of the xsect metadata table.
type XsectInfo struct {
	Index int
	DLAT  int32
}

// Xsects returns the (index, DLAT) metadata table for the declared xsects.
func (m *TrackModel) Xsects() []XsectInfo {
	out := make([]XsectInfo, len(m.XsectDLATs))
	for i, d := range m.XsectDLATs {
		out[i] = XsectInfo{Index: i, DLAT: d}
	}
	return out
}

// checkSectionIndex bounds-checks a section index.
func (m *TrackModel) checkSectionIndex(i int) error {
	if i < 0 || i >= len(m.Sections) {
		return rangeErr("section", i, len(m.Sections))
	}
	return nil
}

// checkXsectIndex bounds-checks an xsect index against the declared table.
func (m *TrackModel) checkXsectIndex(x int) error {
	if x < 0 || x >= len(m.XsectDLATs) {
		return rangeErr("xsect", x, len(m.XsectDLATs))
	}
	return nil
}

// prevIndex returns the ring predecessor of section i. Section 0 wraps to the
// last section.
func (m *TrackModel) prevIndex(i int) int {
	n := len(m.Sections)
	return ((i-1)%n + n) % n
}

// Clone deep-copies the model, including every section's slices. Snapshots
// taken for before/after diffing use Clone so the two views never alias.
func (m *TrackModel) Clone() *TrackModel {
	c := &TrackModel{
		Header:     m.Header,
		XsectDLATs: append([]int32(nil), m.XsectDLATs...),
		Sections:   make([]*Section, len(m.Sections)),
	}
	for i, s := range m.Sections {
		c.Sections[i] = s.clone()
	}
	return c
}

// RebuildDlongs reassigns cumulative StartDlong values from section lengths,
// walking from startIndex with the given starting dlong.
func (m *TrackModel) RebuildDlongs(startIndex int, startDlong int32) error {
	if len(m.Sections) == 0 {
		return preconditionf("no sections loaded")
	}
	if err := m.checkSectionIndex(startIndex); err != nil {
		return err
	}
	dlong := startDlong
	for off := 0; off < len(m.Sections); off++ {
		s := m.Sections[(startIndex+off)%len(m.Sections)]
		s.StartDlong = dlong
		dlong += s.Length
	}
	return nil
}

// SectionPosition locates an absolute dlong on the ring: the section that
// contains it and the normalised fraction within that section. The dlong
// wraps modulo the track length.
type SectionPosition struct {
	SectionIndex int
	Fraction     float64
}

// SectionAtDlong maps dlong to a section position. Returns false when the
// track has no positive-length sections.
func (m *TrackModel) SectionAtDlong(dlong float64) (SectionPosition, bool) {
	total := float64(m.TrackLength())
	if total <= 0 {
		return SectionPosition{}, false
	}
	wrapped := math.Mod(dlong, total)
	if wrapped < 0 {
		wrapped += total
	}
	for i, s := range m.Sections {
		if s.Length <= 0 {
			continue
		}
		start := float64(s.StartDlong)
		end := start + float64(s.Length)
		if wrapped >= start && wrapped < end {
			return SectionPosition{SectionIndex: i, Fraction: (wrapped - start) / float64(s.Length)}, true
		}
		// A section straddling the start/finish line wraps past the
		// track length.
		if end > total && wrapped < end-total {
			return SectionPosition{SectionIndex: i, Fraction: (wrapped + total - start) / float64(s.Length)}, true
		}
	}
	return SectionPosition{SectionIndex: len(m.Sections) - 1, Fraction: 1.0}, true
}
