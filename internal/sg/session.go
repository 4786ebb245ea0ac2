package sg

import (
	"math"

	"github.com/google/uuid"
)

// ChangeKind labels the notification emitted after a committed mutation.
type ChangeKind string

const (
	ChangeSection  ChangeKind = "section"  // one section's values changed
	ChangeGeometry ChangeKind = "geometry" // section geometry or topology changed
	ChangeMetadata ChangeKind = "metadata" // header or xsect table changed
)

// ChangeEvent is delivered to session listeners after a mutation commits.
// Section is -1 for track-wide changes.
type ChangeEvent struct {
	Kind    ChangeKind
	Section int
}

// EditSession owns one TrackModel and exposes the mutation API. Every
// mutating call either fully succeeds, leaving the model's invariants
// intact, or returns an error before any partial write is visible; batch
// operations check preconditions across all affected sections first. The
// session is single-threaded by contract; exactly one session owns a model
// at a time.
type EditSession struct {
	ID    uuid.UUID
	model *TrackModel

	listeners []func(ChangeEvent)

	undo []*TrackModel
	redo []*TrackModel
}

// NewEditSession wraps an existing model. A nil model starts an empty new
// track.
func NewEditSession(model *TrackModel) *EditSession {
	if model == nil {
		model = NewTrackModel()
	}
	return &EditSession{ID: uuid.New(), model: model}
}

// Model returns the live model. Callers treat it as read-only; all writes go
// through the session so invariants and notifications hold.
func (es *EditSession) Model() *TrackModel { return es.model }

// Subscribe registers a change listener. Listeners run synchronously after
// each committed mutation, in registration order.
func (es *EditSession) Subscribe(fn func(ChangeEvent)) {
	es.listeners = append(es.listeners, fn)
}

func (es *EditSession) notify(ev ChangeEvent) {
	for _, fn := range es.listeners {
		fn(ev)
	}
}

// checkpoint snapshots the model for undo before a mutation commits and
// clears the redo stack.
func (es *EditSession) checkpoint() {
	es.undo = append(es.undo, es.model.Clone())
	es.redo = nil
}

// dropCheckpoint discards the snapshot pushed by a mutation that failed
// after checkpointing.
func (es *EditSession) dropCheckpoint() {
	es.undo = es.undo[:len(es.undo)-1]
}

// Undo restores the model to its state before the most recent mutation.
func (es *EditSession) Undo() bool {
	if len(es.undo) == 0 {
		return false
	}
	es.redo = append(es.redo, es.model)
	es.model = es.undo[len(es.undo)-1]
	es.undo = es.undo[:len(es.undo)-1]
	es.notify(ChangeEvent{Kind: ChangeGeometry, Section: -1})
	return true
}

// Redo reapplies the most recently undone mutation.
func (es *EditSession) Redo() bool {
	if len(es.redo) == 0 {
		return false
	}
	es.undo = append(es.undo, es.model)
	es.model = es.redo[len(es.redo)-1]
	es.redo = es.redo[:len(es.redo)-1]
	es.notify(ChangeEvent{Kind: ChangeGeometry, Section: -1})
	return true
}

// Load replaces the session's model, discarding edit history.
func (es *EditSession) Load(model *TrackModel) {
	if model == nil {
		model = NewTrackModel()
	}
	es.model = model
	es.undo = nil
	es.redo = nil
	es.notify(ChangeEvent{Kind: ChangeMetadata, Section: -1})
	es.notify(ChangeEvent{Kind: ChangeGeometry, Section: -1})
}

// Validate runs the structural validator on the live model.
func (es *EditSession) Validate() ([]Warning, error) {
	return Validate(es.model)
}

// --- elevation mutations -------------------------------------------------

// SetSectionAltitude sets one altitude value.
func (es *EditSession) SetSectionAltitude(i, x int, altitude float64) error {
	if err := es.model.checkSectionIndex(i); err != nil {
		return err
	}
	if err := es.model.checkXsectIndex(x); err != nil {
		return err
	}
	s := es.model.Sections[i]
	if x >= len(s.Altitude) {
		return preconditionf("section %d has no elevation data for xsect %d", i, x)
	}
	es.checkpoint()
	s.Altitude[x] = int32(math.Round(altitude))
	es.notify(ChangeEvent{Kind: ChangeSection, Section: i})
	return nil
}

// SetSectionGrade sets one grade value.
func (es *EditSession) SetSectionGrade(i, x int, grade float64) error {
	if err := es.model.checkSectionIndex(i); err != nil {
		return err
	}
	if err := es.model.checkXsectIndex(x); err != nil {
		return err
	}
	s := es.model.Sections[i]
	if x >= len(s.Grade) {
		return preconditionf("section %d has no grade data for xsect %d", i, x)
	}
	es.checkpoint()
	s.Grade[x] = int32(math.Round(grade))
	es.notify(ChangeEvent{Kind: ChangeSection, Section: i})
	return nil
}

// SetSectionElevation sets every xsect's altitude on one section to the same
// value, leaving grades alone.
func (es *EditSession) SetSectionElevation(i int, altitude float64) error {
	if err := es.model.checkSectionIndex(i); err != nil {
		return err
	}
	s := es.model.Sections[i]
	if len(s.Altitude) == 0 {
		return preconditionf("section %d has no elevation data", i)
	}
	es.checkpoint()
	v := int32(math.Round(altitude))
	for x := range s.Altitude {
		s.Altitude[x] = v
	}
	es.notify(ChangeEvent{Kind: ChangeSection, Section: i})
	return nil
}

// FlattenAll sets every altitude and grade value across the track.
func (es *EditSession) FlattenAll(altitude, grade int32) error {
	es.checkpoint()
	if err := FlattenAll(es.model, altitude, grade); err != nil {
		es.dropCheckpoint()
		return err
	}
	es.notify(ChangeEvent{Kind: ChangeGeometry, Section: -1})
	return nil
}

// OffsetAll adds delta to every altitude value across the track.
func (es *EditSession) OffsetAll(delta int32) error {
	es.checkpoint()
	if err := OffsetAll(es.model, delta); err != nil {
		es.dropCheckpoint()
		return err
	}
	es.notify(ChangeEvent{Kind: ChangeGeometry, Section: -1})
	return nil
}

// CopyXsectToAll broadcasts one xsect's columns to every xsect slot.
func (es *EditSession) CopyXsectToAll(x int) error {
	es.checkpoint()
	if err := CopyXsectToAll(es.model, x); err != nil {
		es.dropCheckpoint()
		return err
	}
	es.notify(ChangeEvent{Kind: ChangeGeometry, Section: -1})
	return nil
}

// GenerateElevationChange applies a shaped altitude transition over a
// section range.
func (es *EditSession) GenerateElevationChange(startSection, endSection, x int, startAlt, endAlt float64, shape CurveShape) error {
	es.checkpoint()
	if err := GenerateElevationChange(es.model, startSection, endSection, x, startAlt, endAlt, shape); err != nil {
		es.dropCheckpoint()
		return err
	}
	es.notify(ChangeEvent{Kind: ChangeGeometry, Section: -1})
	return nil
}

// SetXsectDefinitions redefines the xsect table and rebuilds every section's
// elevation arrays.
func (es *EditSession) SetXsectDefinitions(entries []XsectDefinition) error {
	es.checkpoint()
	if err := SetXsectDefinitions(es.model, entries); err != nil {
		es.dropCheckpoint()
		return err
	}
	es.notify(ChangeEvent{Kind: ChangeMetadata, Section: -1})
	return nil
}

// --- fsect mutations -----------------------------------------------------

// InsertFSection inserts an fsect into section i and renormalises the list.
func (es *EditSession) InsertFSection(i, index int, fsect FSection) ([]FSection, error) {
	es.checkpoint()
	fsects, err := InsertFSection(es.model, i, index, fsect)
	if err != nil {
		es.dropCheckpoint()
		return nil, err
	}
	es.notify(ChangeEvent{Kind: ChangeSection, Section: i})
	return fsects, nil
}

// UpdateFSection patches an fsect in section i and renormalises the list.
func (es *EditSession) UpdateFSection(i, index int, patch FSectionPatch) ([]FSection, error) {
	es.checkpoint()
	fsects, err := UpdateFSection(es.model, i, index, patch)
	if err != nil {
		es.dropCheckpoint()
		return nil, err
	}
	es.notify(ChangeEvent{Kind: ChangeSection, Section: i})
	return fsects, nil
}

// DeleteFSection removes an fsect from section i and renormalises the list.
func (es *EditSession) DeleteFSection(i, index int) ([]FSection, error) {
	es.checkpoint()
	fsects, err := DeleteFSection(es.model, i, index)
	if err != nil {
		es.dropCheckpoint()
		return nil, err
	}
	es.notify(ChangeEvent{Kind: ChangeSection, Section: i})
	return fsects, nil
}

// ReplaceFSections swaps section i's fsect list and renormalises it.
func (es *EditSession) ReplaceFSections(i int, fsects []FSection) ([]FSection, error) {
	es.checkpoint()
	out, err := ReplaceFSections(es.model, i, fsects)
	if err != nil {
		es.dropCheckpoint()
		return nil, err
	}
	es.notify(ChangeEvent{Kind: ChangeSection, Section: i})
	return out, nil
}

// --- geometry mutations --------------------------------------------------

// SectionGeometry is the editable geometric state of one section, committed
// through UpdateSectionGeometry.
type SectionGeometry struct {
	Kind   SectionKind
	Start  Point
	End    Point
	Center Point
	Radius int32
}

// UpdateSectionGeometry commits edited geometry to section i: length is
// rederived from the new endpoints (never trusted stale), curve angle
// components are recomputed, and when the endpoints are exactly swapped
// relative to the pre-edit section the lateral elevation arrays reorient.
// Dlongs downstream are rebuilt from section 0.
func (es *EditSession) UpdateSectionGeometry(i int, geom SectionGeometry) error {
	if err := es.model.checkSectionIndex(i); err != nil {
		return err
	}
	es.checkpoint()

	s := es.model.Sections[i]
	before := s.clone()

	s.Kind = geom.Kind
	s.Start = geom.Start
	s.End = geom.End
	s.Center = geom.Center
	s.Radius = geom.Radius
	RecomputeLength(s)
	if s.Kind == Curve {
		SetCurveAngles(s)
	}
	reorientElevation(before, s)

	if err := es.model.RebuildDlongs(0, es.model.Sections[0].StartDlong); err != nil {
		es.model.Sections[i] = before
		es.dropCheckpoint()
		return err
	}
	es.notify(ChangeEvent{Kind: ChangeGeometry, Section: i})
	return nil
}

// RebuildDlongs reassigns cumulative start dlongs from section lengths.
func (es *EditSession) RebuildDlongs(startIndex int, startDlong int32) error {
	es.checkpoint()
	if err := es.model.RebuildDlongs(startIndex, startDlong); err != nil {
		es.dropCheckpoint()
		return err
	}
	es.notify(ChangeEvent{Kind: ChangeGeometry, Section: -1})
	return nil
}

// SplitSection divides section i at the given fraction of its run. The first
// half ends at the split point and takes elevations evaluated there so the
// surface stays continuous; the second half keeps the original section's
// endpoint values and fsect list (both halves carry a copy). Links and
// dlongs renumber, and the header count follows the live slice.
func (es *EditSession) SplitSection(i int, fraction float64) error {
	m := es.model
	if err := m.checkSectionIndex(i); err != nil {
		return err
	}
	if fraction <= 0 || fraction >= 1 {
		return preconditionf("split fraction %v outside (0, 1)", fraction)
	}
	s := m.Sections[i]
	point, ok := splitPoint(s, fraction)
	if !ok {
		return preconditionf("section %d has degenerate geometry, cannot split", i)
	}
	if err := requireElevationArrays(m); err != nil {
		return err
	}

	// Evaluate the boundary elevations against the pre-split model.
	nx := m.XsectCount()
	midAlt := make([]int32, nx)
	midGrade := make([]int32, nx)
	for x := 0; x < nx; x++ {
		v, err := AltitudeGradeAt(m, i, fraction, x)
		if err != nil {
			return err
		}
		midAlt[x] = int32(math.Round(v.Altitude))
		midGrade[x] = int32(math.Round(v.Grade))
	}

	es.checkpoint()

	first := s.clone()
	first.End = point
	first.Altitude = midAlt
	first.Grade = midGrade
	RecomputeLength(first)

	second := s.clone()
	second.Start = point
	RecomputeLength(second)

	if s.Kind == Curve {
		SetCurveAngles(first)
		SetCurveAngles(second)
	}

	// Renumber links: indices above the split shift up by one. A next link
	// into the split section keeps pointing at the first half; a prev link
	// into it follows the second half.
	adjustNext := func(link int32) int32 {
		if link == Unconnected || int(link) < 0 || int(link) >= len(m.Sections) {
			return Unconnected
		}
		if int(link) > i {
			return link + 1
		}
		return link
	}
	adjustPrev := func(link int32) int32 {
		if link == Unconnected || int(link) < 0 || int(link) >= len(m.Sections) {
			return Unconnected
		}
		if int(link) >= i {
			return link + 1
		}
		return link
	}
	// adjustPrev so a self-ring's prev link follows the second half.
	first.Prev = adjustPrev(s.Prev)
	first.Next = int32(i + 1)
	second.Prev = int32(i)
	second.Next = adjustNext(s.Next)

	sections := make([]*Section, 0, len(m.Sections)+1)
	for j, other := range m.Sections {
		if j == i {
			sections = append(sections, first, second)
			continue
		}
		other.Prev = adjustPrev(other.Prev)
		other.Next = adjustNext(other.Next)
		sections = append(sections, other)
	}
	m.Sections = sections
	m.Header.SectionCount = int32(len(sections))

	if err := m.RebuildDlongs(0, m.Sections[0].StartDlong); err != nil {
		es.dropCheckpoint()
		return err
	}
	es.notify(ChangeEvent{Kind: ChangeGeometry, Section: -1})
	return nil
}
