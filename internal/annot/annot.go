// Package annot maps genome annotation features into the coordinate frame of
// the dot plot.
//
// Reference scaffolds are emitted as-is. Query scaffolds are emitted only when
// they take part in an alignment, and scaffolds plotted reverse-complemented
// have their features mirrored onto the flipped axis.
package annot

// Span is a half-open interval [Start, End) on a scaffold.
type Span struct {
	Start int
	End   int
}

// Feature is one annotated locus in its scaffold's native coordinates.
type Feature struct {
	Label  string // empty when the source record carries no label
	Strand int    // >0 plus, otherwise minus
	Spans  []Span // one entry unless the location is compound
	Joined bool   // compound "join" location
}

// Position returns the feature bounds. Joined features use their first part
// only; other compound locations use the overall extent.
func (f Feature) Position() (start, end int) {
	if len(f.Spans) == 0 {
		return 0, 0
	}
	if f.Joined {
		return f.Spans[0].Start, f.Spans[0].End
	}
	start, end = f.Spans[0].Start, f.Spans[0].End
	for _, s := range f.Spans[1:] {
		if s.Start < start {
			start = s.Start
		}
		if s.End > end {
			end = s.End
		}
	}
	return start, end
}

// Scaffold groups the features of one sequence record.
type Scaffold struct {
	ID       string
	Length   int
	Features []Feature
}

// Record is one output row: (scaffold, start, end, name, strand).
type Record struct {
	Scaffold string
	Start    int
	End      int
	Name     string
	Strand   string
}

// StrandSymbol renders a numeric strand as "+" (positive) or "-".
func StrandSymbol(strand int) string {
	if strand > 0 {
		return "+"
	}
	return "-"
}

// Mirror maps [start, end) onto a scaffold of length L read in reverse.
func Mirror(start, end, length int) (int, int) {
	return length - end, length - start
}
