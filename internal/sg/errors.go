package sg

import "fmt"

// StructuralError reports a fatal inconsistency between the track header and
// the live section data. A model carrying a StructuralError must not be
// encoded or saved.
type StructuralError struct {
	Msg string
}

func (e *StructuralError) Error() string {
	return "structural: " + e.Msg
}

func structuralf(format string, args ...any) *StructuralError {
	return &StructuralError{Msg: fmt.Sprintf(format, args...)}
}

// RangeError reports a section, xsect or fsect index outside the bounds of
// the addressed collection. Indexed mutations raise it immediately instead of
// clamping.
type RangeError struct {
	What  string
	Index int
	Count int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s index %d out of range (have %d)", e.What, e.Index, e.Count)
}

func rangeErr(what string, index, count int) *RangeError {
	return &RangeError{What: what, Index: index, Count: count}
}

// PreconditionError reports a mutation request that cannot be applied to the
// current model state: no data loaded, an invalid xsect redefinition, or a
// section missing its elevation arrays.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string {
	return "precondition: " + e.Msg
}

func preconditionf(format string, args ...any) *PreconditionError {
	return &PreconditionError{Msg: fmt.Sprintf(format, args...)}
}
