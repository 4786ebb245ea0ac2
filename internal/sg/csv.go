package sg

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSV is the alternate codec: one header+xsect file and one section-per-row
// file, in the column layout editors exchange. DLAT columns are always padded
// to MaxXsects and fsect columns to MaxFSections so every row has the same
// width for a given xsect count.

// ExportHeaderCSV writes the header and xsect DLAT table.
func ExportHeaderCSV(w io.Writer, m *TrackModel) error {
	cw := csv.NewWriter(w)

	columns := []string{"filetype", "unknown1", "unknown2", "unknown3", "section_count", "xsect_count"}
	for i := 1; i <= MaxXsects; i++ {
		columns = append(columns, fmt.Sprintf("xsect_dlat_%d", i))
	}
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write header csv: %w", err)
	}

	row := []string{
		itoa32(m.Header.Filetype),
		itoa32(m.Header.Reserved[0]),
		itoa32(m.Header.Reserved[1]),
		itoa32(m.Header.Reserved[2]),
		strconv.Itoa(len(m.Sections)),
		strconv.Itoa(len(m.XsectDLATs)),
	}
	for i := 0; i < MaxXsects; i++ {
		var d int32
		if i < len(m.XsectDLATs) {
			d = m.XsectDLATs[i]
		}
		row = append(row, itoa32(d))
	}
	if err := cw.Write(row); err != nil {
		return fmt.Errorf("write header csv: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// ExportSectionsCSV writes one row per section.
func ExportSectionsCSV(w io.Writer, m *TrackModel) error {
	cw := csv.NewWriter(w)

	columns := []string{
		"sec", "type", "sec_next", "sec_prev",
		"start_x", "start_y", "end_x", "end_y",
		"start_dlong", "length", "center_x", "center_y",
		"sang1", "sang2", "eang1", "eang2", "radius", "num1",
	}
	nx := m.XsectCount()
	for x := 0; x < nx; x++ {
		columns = append(columns, fmt.Sprintf("xsect%d_alt", x), fmt.Sprintf("xsect%d_grade", x))
	}
	columns = append(columns, "fsects_count")
	for j := 0; j < MaxFSections; j++ {
		columns = append(columns,
			fmt.Sprintf("fsect%d_ftype1", j), fmt.Sprintf("fsect%d_ftype2", j),
			fmt.Sprintf("fsect%d_fstart", j), fmt.Sprintf("fsect%d_fend", j))
	}
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write sections csv: %w", err)
	}

	for i, s := range m.Sections {
		row := []string{
			strconv.Itoa(i),
			itoa32(int32(s.Kind)), itoa32(s.Next), itoa32(s.Prev),
			itoa32(s.Start.X), itoa32(s.Start.Y), itoa32(s.End.X), itoa32(s.End.Y),
			itoa32(s.StartDlong), itoa32(s.Length),
			itoa32(s.Center.X), itoa32(s.Center.Y),
			itoa32(s.StartSin), itoa32(s.StartCos), itoa32(s.EndSin), itoa32(s.EndCos),
			itoa32(s.Radius), itoa32(s.Reserved),
		}
		for x := 0; x < nx; x++ {
			var alt, grade int32
			if x < len(s.Altitude) {
				alt = s.Altitude[x]
			}
			if x < len(s.Grade) {
				grade = s.Grade[x]
			}
			row = append(row, itoa32(alt), itoa32(grade))
		}
		fsects := s.FSections
		if len(fsects) > MaxFSections {
			fsects = fsects[:MaxFSections]
		}
		row = append(row, strconv.Itoa(len(fsects)))
		for j := 0; j < MaxFSections; j++ {
			var f FSection
			if j < len(fsects) {
				f = fsects[j]
			}
			row = append(row, itoa32(f.SurfaceType), itoa32(f.SecondaryType), itoa32(f.StartDLAT), itoa32(f.EndDLAT))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write sections csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV rebuilds a TrackModel from the header and sections CSV pair.
// Unlike binary Decode this is strict: malformed rows error out, since CSVs
// are hand-edited and silent garbage would be saved back to disk.
func ImportCSV(header, sections io.Reader) (*TrackModel, error) {
	hr := csv.NewReader(header)
	hr.FieldsPerRecord = -1
	rows, err := hr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read header csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("header csv needs a column row and a data row, got %d rows", len(rows))
	}
	values, err := atoiRow(rows[1])
	if err != nil {
		return nil, fmt.Errorf("header csv: %w", err)
	}
	if len(values) < headerWords {
		return nil, fmt.Errorf("header csv row has %d fields, want at least %d", len(values), headerWords)
	}

	m := &TrackModel{}
	m.Header.Filetype = values[0]
	m.Header.Reserved = [3]int32{values[1], values[2], values[3]}
	m.Header.SectionCount = values[4]
	m.Header.XsectCount = values[5]

	nx := int(m.Header.XsectCount)
	if nx < 0 || headerWords+nx > len(values) {
		return nil, fmt.Errorf("header csv declares %d xsects but carries %d DLAT fields", nx, len(values)-headerWords)
	}
	m.XsectDLATs = append([]int32(nil), values[headerWords:headerWords+nx]...)

	sr := csv.NewReader(sections)
	sr.FieldsPerRecord = -1
	srows, err := sr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read sections csv: %w", err)
	}
	if len(srows) == 0 {
		return nil, fmt.Errorf("sections csv is empty, need a column row")
	}
	for n, row := range srows[1:] {
		values, err := atoiRow(row)
		if err != nil {
			return nil, fmt.Errorf("sections csv row %d: %w", n, err)
		}
		// Drop the leading "sec" index column; the record layout then
		// matches one binary section record.
		if len(values) < 1+sectionRecordWords(nx) {
			return nil, fmt.Errorf("sections csv row %d has %d fields, want %d", n, len(values), 1+sectionRecordWords(nx))
		}
		m.Sections = append(m.Sections, decodeSection(values[1:], nx))
	}
	return m, nil
}

func atoiRow(row []string) ([]int32, error) {
	out := make([]int32, len(row))
	for i, field := range row {
		v, err := strconv.ParseInt(field, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("field %d %q: %w", i, field, err)
		}
		out[i] = int32(v)
	}
	return out, nil
}

func itoa32(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}
