package sg

import "sort"

// FSect lists are kept normalised after every committed mutation: inverted
// entries are swapped into start <= end order, zero-width entries dropped,
// and the list sorted ascending by (start, end). Mutations always target one
// section; neighbouring sections' fsects are never read or written.

// NormalizeFSections returns a normalised copy of fsects. Idempotent.
func NormalizeFSections(fsects []FSection) []FSection {
	out := make([]FSection, 0, len(fsects))
	for _, f := range fsects {
		if f.StartDLAT > f.EndDLAT {
			f.StartDLAT, f.EndDLAT = f.EndDLAT, f.StartDLAT
		}
		if f.StartDLAT == f.EndDLAT {
			continue
		}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartDLAT != out[j].StartDLAT {
			return out[i].StartDLAT < out[j].StartDLAT
		}
		return out[i].EndDLAT < out[j].EndDLAT
	})
	return out
}

// InsertFSection inserts fsect at position index in section i's list, then
// normalises. Returns the section's new list.
func InsertFSection(m *TrackModel, i, index int, fsect FSection) ([]FSection, error) {
	if err := m.checkSectionIndex(i); err != nil {
		return nil, err
	}
	s := m.Sections[i]
	if index < 0 || index > len(s.FSections) {
		return nil, rangeErr("fsect", index, len(s.FSections))
	}
	fsects := append([]FSection(nil), s.FSections...)
	fsects = append(fsects[:index], append([]FSection{fsect}, fsects[index:]...)...)
	s.FSections = NormalizeFSections(fsects)
	return s.FSections, nil
}

// FSectionPatch is a partial fsect update; nil fields keep their current
// value.
type FSectionPatch struct {
	SurfaceType   *int32
	SecondaryType *int32
	StartDLAT     *int32
	EndDLAT       *int32
}

// UpdateFSection patches the fsect at index in section i's list, then
// normalises. Returns the section's new list.
func UpdateFSection(m *TrackModel, i, index int, patch FSectionPatch) ([]FSection, error) {
	if err := m.checkSectionIndex(i); err != nil {
		return nil, err
	}
	s := m.Sections[i]
	if index < 0 || index >= len(s.FSections) {
		return nil, rangeErr("fsect", index, len(s.FSections))
	}
	fsects := append([]FSection(nil), s.FSections...)
	f := fsects[index]
	if patch.SurfaceType != nil {
		f.SurfaceType = *patch.SurfaceType
	}
	if patch.SecondaryType != nil {
		f.SecondaryType = *patch.SecondaryType
	}
	if patch.StartDLAT != nil {
		f.StartDLAT = *patch.StartDLAT
	}
	if patch.EndDLAT != nil {
		f.EndDLAT = *patch.EndDLAT
	}
	fsects[index] = f
	s.FSections = NormalizeFSections(fsects)
	return s.FSections, nil
}

// DeleteFSection removes the fsect at index from section i's list, then
// normalises. Returns the section's new list.
func DeleteFSection(m *TrackModel, i, index int) ([]FSection, error) {
	if err := m.checkSectionIndex(i); err != nil {
		return nil, err
	}
	s := m.Sections[i]
	if index < 0 || index >= len(s.FSections) {
		return nil, rangeErr("fsect", index, len(s.FSections))
	}
	fsects := append([]FSection(nil), s.FSections...)
	fsects = append(fsects[:index], fsects[index+1:]...)
	s.FSections = NormalizeFSections(fsects)
	return s.FSections, nil
}

// ReplaceFSections swaps section i's entire fsect list, then normalises.
// Returns the section's new list.
func ReplaceFSections(m *TrackModel, i int, fsects []FSection) ([]FSection, error) {
	if err := m.checkSectionIndex(i); err != nil {
		return nil, err
	}
	s := m.Sections[i]
	s.FSections = NormalizeFSections(fsects)
	return s.FSections, nil
}

// GroundSegment is the ground-surface projection of an fsect.
type GroundSegment struct {
	SurfaceType int32
	StartDLAT   int32
	EndDLAT     int32
}

// BoundarySegment is the wall/armco projection of an fsect.
type BoundarySegment struct {
	SurfaceType   int32
	SecondaryType int32
	StartDLAT     int32
	EndDLAT       int32
	IsFence       bool
}

// GroundSegments returns section i's ground-surface fsects in list order.
func GroundSegments(m *TrackModel, i int) ([]GroundSegment, error) {
	if err := m.checkSectionIndex(i); err != nil {
		return nil, err
	}
	var out []GroundSegment
	for _, f := range m.Sections[i].FSections {
		if f.IsGround() {
			out = append(out, GroundSegment{SurfaceType: f.SurfaceType, StartDLAT: f.StartDLAT, EndDLAT: f.EndDLAT})
		}
	}
	return out, nil
}

// BoundarySegments returns section i's wall/armco fsects in list order, with
// fence markers resolved from the secondary type codes.
func BoundarySegments(m *TrackModel, i int) ([]BoundarySegment, error) {
	if err := m.checkSectionIndex(i); err != nil {
		return nil, err
	}
	var out []BoundarySegment
	for _, f := range m.Sections[i].FSections {
		if f.IsGround() {
			continue
		}
		out = append(out, BoundarySegment{
			SurfaceType:   f.SurfaceType,
			SecondaryType: f.SecondaryType,
			StartDLAT:     f.StartDLAT,
			EndDLAT:       f.EndDLAT,
			IsFence:       f.IsFence(),
		})
	}
	return out, nil
}
