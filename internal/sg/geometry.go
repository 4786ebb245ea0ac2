package sg

import "math"

// Curve sections store their endpoint headings as four integer components
// derived from the circle geometry rather than normalised vectors:
//
//	start_sin = (center.y - start.y) * sign(radius)
//	start_cos = (start.x - center.x) * sign(radius)
//	end_sin   = (center.y - end.y)   * sign(radius)
//	end_cos   = (end.x - center.x)   * sign(radius)
//
// A positive radius bends left (counter-clockwise); the sign flip makes the
// components read the same way for right-handers.

// CurveAngles computes the four angle components for a curve from its
// endpoints, circle center and signed radius.
func CurveAngles(start, end, center Point, radius float64) (startSin, startCos, endSin, endCos float64) {
	sign := 1.0
	if radius < 0 {
		sign = -1.0
	}
	cx, cy := float64(center.X), float64(center.Y)
	startSin = (cy - float64(start.Y)) * sign
	startCos = (float64(start.X) - cx) * sign
	endSin = (cy - float64(end.Y)) * sign
	endCos = (float64(end.X) - cx) * sign
	return startSin, startCos, endSin, endCos
}

// SetCurveAngles recomputes and stores the section's four angle components
// from its current geometry. Used when committing an interactively edited
// curve back into the persisted fields.
func SetCurveAngles(s *Section) {
	ss, sc, es, ec := CurveAngles(s.Start, s.End, s.Center, float64(s.Radius))
	s.StartSin = int32(math.Round(ss))
	s.StartCos = int32(math.Round(sc))
	s.EndSin = int32(math.Round(es))
	s.EndCos = int32(math.Round(ec))
}

// RecomputeLength derives the section's length from its authoritative
// geometry: chord length for a line, arc length for a curve. A curve with a
// zero radius or a degenerate radial vector falls back to the chord.
func RecomputeLength(s *Section) {
	chord := math.Hypot(float64(s.End.X-s.Start.X), float64(s.End.Y-s.Start.Y))
	if s.Kind != Curve || s.Radius == 0 {
		s.Length = int32(math.Round(chord))
		return
	}
	span, radius, ok := curveArc(s)
	if !ok {
		s.Length = int32(math.Round(chord))
		return
	}
	s.Length = int32(math.Round(math.Abs(span) * radius))
}

// curveArc returns the directed angular span from start to end around the
// center (following the turn direction implied by the radius sign) and the
// effective radius.
func curveArc(s *Section) (span, radius float64, ok bool) {
	sx := float64(s.Start.X - s.Center.X)
	sy := float64(s.Start.Y - s.Center.Y)
	ex := float64(s.End.X - s.Center.X)
	ey := float64(s.End.Y - s.Center.Y)

	radius = math.Abs(float64(s.Radius))
	if radius == 0 {
		radius = math.Hypot(sx, sy)
	}
	if radius <= 0 || (sx == 0 && sy == 0) || (ex == 0 && ey == 0) {
		return 0, 0, false
	}

	orientation := 1.0
	if s.Radius < 0 {
		orientation = -1.0
	}
	span = directedAngle(math.Atan2(sy, sx), math.Atan2(ey, ex), orientation)
	return span, radius, true
}

// directedAngle returns the angle from start to end following orientation
// (+1 counter-clockwise, -1 clockwise). Coincident angles read as a full
// revolution, not zero.
func directedAngle(start, end, orientation float64) float64 {
	angle := end - start
	if orientation > 0 {
		for angle <= 0 {
			angle += 2 * math.Pi
		}
	} else {
		for angle >= 0 {
			angle -= 2 * math.Pi
		}
	}
	return angle
}

// Heading is a unit direction vector in the track plane.
type Heading struct {
	X float64
	Y float64
}

// SectionHeading is one row of the per-section heading table: unit headings
// at both endpoints and the angular mismatch (degrees, signed, positive
// counter-clockwise) between this section's end heading and the next
// section's start heading.
type SectionHeading struct {
	Index       int
	Start       Heading
	End         Heading
	DeltaToNext float64
}

// startHeading returns the unit tangent at the section's start point.
func startHeading(s *Section) (Heading, bool) {
	if s.Kind == Curve {
		return curveTangent(s, s.Start)
	}
	return chordHeading(s)
}

// endHeading returns the unit tangent at the section's end point.
func endHeading(s *Section) (Heading, bool) {
	if s.Kind == Curve {
		return curveTangent(s, s.End)
	}
	return chordHeading(s)
}

func chordHeading(s *Section) (Heading, bool) {
	dx := float64(s.End.X - s.Start.X)
	dy := float64(s.End.Y - s.Start.Y)
	length := math.Hypot(dx, dy)
	if length <= 0 {
		return Heading{}, false
	}
	return Heading{X: dx / length, Y: dy / length}, true
}

// curveTangent returns the unit tangent at point p on the section's circle,
// oriented by the radius sign.
func curveTangent(s *Section, p Point) (Heading, bool) {
	rx := float64(p.X - s.Center.X)
	ry := float64(p.Y - s.Center.Y)
	mag := math.Hypot(rx, ry)
	if mag <= 0 {
		return Heading{}, false
	}
	orientation := 1.0
	if s.Radius < 0 {
		orientation = -1.0
	}
	return Heading{X: -orientation * ry / mag, Y: orientation * rx / mag}, true
}

// Headings returns the per-section heading table. Sections with degenerate
// geometry get zero headings and a zero delta.
func Headings(m *TrackModel) []SectionHeading {
	total := len(m.Sections)
	out := make([]SectionHeading, total)
	for i, s := range m.Sections {
		row := SectionHeading{Index: i}
		if h, ok := startHeading(s); ok {
			row.Start = h
		}
		if h, ok := endHeading(s); ok {
			row.End = h
		}
		out[i] = row
	}
	for i := range out {
		next := out[(i+1)%total]
		out[i].DeltaToNext = headingDelta(out[i].End, next.Start)
	}
	return out
}

// headingDelta returns the signed angle in degrees from a to b. Zero-length
// headings yield zero.
func headingDelta(a, b Heading) float64 {
	if (a.X == 0 && a.Y == 0) || (b.X == 0 && b.Y == 0) {
		return 0
	}
	dot := a.X*b.X + a.Y*b.Y
	if dot > 1 {
		dot = 1
	} else if dot < -1 {
		dot = -1
	}
	cross := a.X*b.Y - a.Y*b.X
	return math.Atan2(cross, dot) * 180 / math.Pi
}

// splitPoint returns the coordinates where a section divides at the given
// fraction of its run: a chord interpolation for lines, an arc rotation for
// curves.
func splitPoint(s *Section, fraction float64) (Point, bool) {
	if fraction <= 0 || fraction >= 1 {
		return Point{}, false
	}
	if s.Kind == Curve {
		span, _, ok := curveArc(s)
		if !ok {
			return Point{}, false
		}
		phi := span * fraction
		sx := float64(s.Start.X - s.Center.X)
		sy := float64(s.Start.Y - s.Center.Y)
		cosP, sinP := math.Cos(phi), math.Sin(phi)
		return Point{
			X: s.Center.X + int32(math.Round(sx*cosP-sy*sinP)),
			Y: s.Center.Y + int32(math.Round(sx*sinP+sy*cosP)),
		}, true
	}
	return Point{
		X: s.Start.X + int32(math.Round(float64(s.End.X-s.Start.X)*fraction)),
		Y: s.Start.Y + int32(math.Round(float64(s.End.Y-s.Start.Y)*fraction)),
	}, true
}
