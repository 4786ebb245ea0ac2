package sg

import (
	"encoding/binary"
	"fmt"
)

// The SG file is a flat sequence of little-endian int32 words:
//
//	[6 header words][xsect_count DLATs][section_count records]
//
// where each section record is 58 + 2*xsect_count words: 17 scalar fields,
// one (altitude, grade) pair per xsect, then an fsect block of a count word
// followed by 10 four-word (type1, type2, start, end) slots, zero-padded.

// sectionRecordWords returns the word length of one section record for the
// given xsect count.
func sectionRecordWords(xsectCount int) int {
	return sectionScalarWords + 2*xsectCount + 1 + 4*MaxFSections
}

// Decode parses raw SG bytes into a TrackModel. Decoding is deliberately
// permissive: counts are taken from the header as-is, words missing from a
// truncated file read as zero, and no structural checks run. Callers are
// expected to run Validate before trusting the result. The only error is an
// input too short to carry the six-word header.
func Decode(data []byte) (*TrackModel, error) {
	words := bytesToWords(data)
	if len(words) < headerWords {
		return nil, fmt.Errorf("sg: %d bytes is too short for the %d-word header", len(data), headerWords)
	}

	m := &TrackModel{}
	m.Header.Filetype = words[0]
	m.Header.Reserved = [3]int32{words[1], words[2], words[3]}
	m.Header.SectionCount = words[4]
	m.Header.XsectCount = words[5]

	nx := int(m.Header.XsectCount)
	if nx < 0 {
		nx = 0
	}
	m.XsectDLATs = make([]int32, nx)
	copy(m.XsectDLATs, wordsAt(words, headerWords, nx))

	sectionCount := int(m.Header.SectionCount)
	if sectionCount < 0 {
		sectionCount = 0
	}
	recordLen := sectionRecordWords(nx)
	start := headerWords + nx

	// Materialise only the records the byte stream actually covers: a
	// truncated file yields fewer sections than the header claims (with a
	// zero-filled final record), which Validate reports as fatal.
	for i := 0; i < sectionCount; i++ {
		offset := start + i*recordLen
		if offset >= len(words) && i > 0 {
			break
		}
		m.Sections = append(m.Sections, decodeSection(wordsAt(words, offset, recordLen), nx))
	}
	return m, nil
}

// decodeSection parses one fixed-size record. record is always recordLen
// words (zero-filled past the end of input).
func decodeSection(record []int32, xsectCount int) *Section {
	s := &Section{
		Kind:       SectionKind(record[0]),
		Next:       record[1],
		Prev:       record[2],
		Start:      Point{X: record[3], Y: record[4]},
		End:        Point{X: record[5], Y: record[6]},
		StartDlong: record[7],
		Length:     record[8],
		Center:     Point{X: record[9], Y: record[10]},
		StartSin:   record[11],
		StartCos:   record[12],
		EndSin:     record[13],
		EndCos:     record[14],
		Radius:     record[15],
		Reserved:   record[16],
		Altitude:   make([]int32, xsectCount),
		Grade:      make([]int32, xsectCount),
	}

	for x := 0; x < xsectCount; x++ {
		s.Altitude[x] = record[sectionScalarWords+2*x]
		s.Grade[x] = record[sectionScalarWords+2*x+1]
	}

	fsectBase := sectionScalarWords + 2*xsectCount
	count := int(record[fsectBase])
	if count < 0 {
		count = 0
	}
	if count > MaxFSections {
		count = MaxFSections
	}
	for j := 0; j < count; j++ {
		q := fsectBase + 1 + 4*j
		s.FSections = append(s.FSections, FSection{
			SurfaceType:   record[q],
			SecondaryType: record[q+1],
			StartDLAT:     record[q+2],
			EndDLAT:       record[q+3],
		})
	}
	return s
}

// Encode serialises the model back into SG bytes. The header's section and
// xsect counts are rewritten from the live slices so structural edits can
// never leave the counts stale. Reserved words round-trip verbatim.
func Encode(m *TrackModel) []byte {
	nx := m.XsectCount()
	words := make([]int32, 0, headerWords+nx+len(m.Sections)*sectionRecordWords(nx))

	words = append(words,
		m.Header.Filetype,
		m.Header.Reserved[0], m.Header.Reserved[1], m.Header.Reserved[2],
		int32(len(m.Sections)),
		int32(nx),
	)
	words = append(words, m.XsectDLATs...)

	for _, s := range m.Sections {
		words = append(words,
			int32(s.Kind), s.Next, s.Prev,
			s.Start.X, s.Start.Y, s.End.X, s.End.Y,
			s.StartDlong, s.Length,
			s.Center.X, s.Center.Y,
			s.StartSin, s.StartCos, s.EndSin, s.EndCos,
			s.Radius, s.Reserved,
		)
		for x := 0; x < nx; x++ {
			var alt, grade int32
			if x < len(s.Altitude) {
				alt = s.Altitude[x]
			}
			if x < len(s.Grade) {
				grade = s.Grade[x]
			}
			words = append(words, alt, grade)
		}

		fsects := s.FSections
		if len(fsects) > MaxFSections {
			fsects = fsects[:MaxFSections]
		}
		words = append(words, int32(len(fsects)))
		for _, f := range fsects {
			words = append(words, f.SurfaceType, f.SecondaryType, f.StartDLAT, f.EndDLAT)
		}
		for j := len(fsects); j < MaxFSections; j++ {
			words = append(words, 0, 0, 0, 0)
		}
	}

	return wordsToBytes(words)
}

// bytesToWords reinterprets the byte stream as little-endian int32 words,
// ignoring any trailing partial word.
func bytesToWords(data []byte) []int32 {
	n := len(data) / 4
	words := make([]int32, n)
	for i := 0; i < n; i++ {
		words[i] = int32(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return words
}

// wordsToBytes serialises int32 words little-endian.
func wordsToBytes(words []int32) []byte {
	out := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[4*i:], uint32(w))
	}
	return out
}

// wordsAt returns n words starting at offset, zero-filling anything past the
// end of the stream.
func wordsAt(words []int32, offset, n int) []int32 {
	out := make([]int32, n)
	if offset < len(words) {
		copy(out, words[offset:])
	}
	return out
}
