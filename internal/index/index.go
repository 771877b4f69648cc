// Package index reads the sectioned alignment index (<prefix>.coords.idx)
// written by the delta converter.
//
// Layout:
//
//	#ref
//	ref,ref_length,matching_queries
//	...
//	#query
//	query,query_length,orientation,...,matching_refs
//	...
//	#overview
//	ref_start,ref_end,query_start,query_end,ref,query,tag
//	...
package index

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Header is the first line of every well-formed index file.
const Header = "#ref"

const (
	queryMarker    = "matching_refs\n"
	overviewMarker = "#overview"
)

// ErrMalformedIndex is returned when the query section cannot be located or
// one of its rows lacks the id/length/orientation fields.
var ErrMalformedIndex = errors.New("malformed index")

// Orientation maps a query scaffold id to "+" (forward) or "-" (reverse
// complemented in the plot). Scaffolds absent from the map were not aligned.
type Orientation map[string]string

// Reversed reports whether id is plotted reverse-complemented.
func (o Orientation) Reversed(id string) bool { return o[id] == "-" }

// Plotted reports whether id appears in the query section.
func (o Orientation) Plotted(id string) bool {
	_, ok := o[id]
	return ok
}

// ParseOrientation extracts the query scaffold orientations from index text.
// An empty query section (no alignments) yields an empty, non-nil map.
func ParseOrientation(text string) (Orientation, error) {
	i := strings.Index(text, queryMarker)
	if i < 0 {
		return nil, fmt.Errorf("%w: missing %q marker", ErrMalformedIndex, strings.TrimSpace(queryMarker))
	}
	body := text[i+len(queryMarker):]
	if j := strings.Index(body, overviewMarker); j >= 0 {
		body = body[:j]
	}
	body = strings.TrimRight(body, " \t\r\n")

	out := Orientation{}
	if body == "" {
		return out, nil
	}
	for n, line := range strings.Split(body, "\n") {
		f := strings.SplitN(strings.TrimRight(line, "\r"), ",", 4)
		if len(f) < 3 {
			return nil, fmt.Errorf("%w: query row %d has %d field(s), want ≥3: %q", ErrMalformedIndex, n+1, len(f), line)
		}
		// duplicates: last one wins
		out[f[0]] = f[2]
	}
	return out, nil
}

// Load returns the orientation map for src, which is either index text
// (anything containing a newline) or a path to an index file.
func Load(src string) (Orientation, error) {
	if strings.Contains(src, "\n") {
		return ParseOrientation(src)
	}
	b, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return ParseOrientation(string(b))
}
