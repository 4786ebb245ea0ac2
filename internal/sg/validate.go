package sg

import "fmt"

// A Warning is a non-fatal validation finding. Warnings never block encoding
// or saving.
type Warning struct {
	Section int
	Msg     string
}

func (w Warning) String() string {
	return fmt.Sprintf("section %d: %s", w.Section, w.Msg)
}

// Validate checks the model's structural invariants.
//
// Fatal (returned as *StructuralError, warnings collected so far still
// returned): header section count disagreeing with the live slice, any
// section's altitude/grade array length differing from the xsect count,
// start_dlong decreasing in array order, or a negative length.
//
// Non-fatal (collected as warnings): prev/next links not matching the
// expected ring neighbour. The Unconnected sentinel is tolerated, as is the
// head/tail wrap of a closed ring.
func Validate(m *TrackModel) ([]Warning, error) {
	var warnings []Warning

	if int(m.Header.SectionCount) != len(m.Sections) {
		return warnings, structuralf("header declares %d sections, model has %d", m.Header.SectionCount, len(m.Sections))
	}

	nx := m.XsectCount()
	lastStart := int32(0)
	for i, s := range m.Sections {
		if len(s.Altitude) != nx {
			return warnings, structuralf("section %d has %d altitude values, want %d", i, len(s.Altitude), nx)
		}
		if len(s.Grade) != nx {
			return warnings, structuralf("section %d has %d grade values, want %d", i, len(s.Grade), nx)
		}
		if s.Length < 0 {
			return warnings, structuralf("section %d has negative length %d", i, s.Length)
		}
		if i > 0 && s.StartDlong < lastStart {
			return warnings, structuralf("section %d start_dlong %d is less than previous %d", i, s.StartDlong, lastStart)
		}
		lastStart = s.StartDlong

		warnings = append(warnings, checkLinks(m, i)...)
	}

	return warnings, nil
}

// checkLinks compares section i's stored prev/next links against the ring
// neighbours implied by array order.
func checkLinks(m *TrackModel, i int) []Warning {
	s := m.Sections[i]
	total := len(m.Sections)

	expectedPrev := int32(i - 1)
	expectedNext := int32(i + 1)
	if total > 1 {
		if i == 0 {
			expectedPrev = int32(total - 1)
		}
		if i == total-1 {
			expectedNext = 0
		}
	}

	var warnings []Warning
	if s.Prev != Unconnected && s.Prev != expectedPrev {
		warnings = append(warnings, Warning{Section: i, Msg: fmt.Sprintf("prev link %d, expected %d", s.Prev, expectedPrev)})
	}
	if s.Next != Unconnected && s.Next != expectedNext {
		warnings = append(warnings, Warning{Section: i, Msg: fmt.Sprintf("next link %d, expected %d", s.Next, expectedNext)})
	}
	return warnings
}
