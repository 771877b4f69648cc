package annot

import (
	"errors"

	"dotprep/internal/index"
)

// ErrMissingOrientation is returned by ExtractQry when no orientation map is
// supplied.
var ErrMissingOrientation = errors.New("query annotations require an orientation map from the index")

// Stats counts the features that were not emitted, by reason.
type Stats struct {
	Unlabeled  int
	Duplicates int
	Unplotted  int // features on scaffolds absent from the orientation map
}

// HasLabel reports whether f carries a usable name.
func HasLabel(f Feature) bool { return f.Label != "" }

// IsPlottedScaffold reports whether id takes part in the plot.
func IsPlottedScaffold(orient index.Orientation, id string) bool { return orient.Plotted(id) }

// ExtractRef converts reference scaffolds to records in input order,
// dropping unlabeled features and repeated intervals per scaffold.
func ExtractRef(scaffolds []Scaffold) ([]Record, Stats) {
	var (
		out []Record
		st  Stats
	)
	for _, scf := range scaffolds {
		out = appendScaffold(out, &st, scf, false)
	}
	return out, st
}

// ExtractQry is ExtractRef for the query genome. Scaffolds missing from
// orient are skipped entirely; reversed scaffolds are mirrored before
// duplicate detection. Strand symbols are never flipped.
func ExtractQry(scaffolds []Scaffold, orient index.Orientation) ([]Record, Stats, error) {
	if orient == nil {
		return nil, Stats{}, ErrMissingOrientation
	}
	var (
		out []Record
		st  Stats
	)
	for _, scf := range scaffolds {
		if !IsPlottedScaffold(orient, scf.ID) {
			st.Unplotted += len(scf.Features)
			continue
		}
		out = appendScaffold(out, &st, scf, orient.Reversed(scf.ID))
	}
	return out, st, nil
}

func appendScaffold(out []Record, st *Stats, scf Scaffold, mirror bool) []Record {
	seen := make(map[Span]struct{}, len(scf.Features))
	for _, f := range scf.Features {
		if !HasLabel(f) {
			st.Unlabeled++
			continue
		}
		start, end := f.Position()
		if mirror {
			start, end = Mirror(start, end, scf.Length)
		}
		key := Span{Start: start, End: end}
		if _, dup := seen[key]; dup {
			st.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		out = append(out, Record{
			Scaffold: scf.ID,
			Start:    start,
			End:      end,
			Name:     f.Label,
			Strand:   StrandSymbol(f.Strand),
		})
	}
	return out
}
