package coords

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Segment is one alignment row of the coords file.
type Segment struct {
	RefStart, RefEnd     int
	QueryStart, QueryEnd int
	Ref                  string
	Query                string // from the enclosing "!query!tag" marker
	Tag                  string // "unique" or "repetitive"
}

// RefLen is the aligned length on the reference axis.
func (s Segment) RefLen() int { return abs(s.RefEnd - s.RefStart) }

// Reversed reports whether the query coordinates run backwards.
func (s Segment) Reversed() bool { return s.QueryEnd < s.QueryStart }

// Summary describes a coords file.
type Summary struct {
	Segments      int
	Unique        int
	Repetitive    int
	Reversed      int
	References    int
	Queries       int
	AlignedRef    int
	MeanRefLen    float64
	MedianRefLen  float64
	LongestRefLen int
}

// Parse reads every segment of a coords file, validating the header.
func Parse(r io.Reader) ([]Segment, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, Validate("")
	}
	if err := Validate(sc.Text()); err != nil {
		return nil, err
	}
	var (
		segs       []Segment
		query, tag string
		ln         = 1
	)
	for sc.Scan() {
		ln++
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		if line[0] == '!' {
			// !query!tag
			parts := strings.Split(line[1:], "!")
			query = parts[0]
			tag = ""
			if len(parts) > 1 {
				tag = parts[1]
			}
			continue
		}
		f := strings.Split(line, ",")
		if len(f) < 5 {
			return nil, fmt.Errorf("coords line %d: want 5 fields, got %d", ln, len(f))
		}
		var n [4]int
		for i := range n {
			v, err := strconv.Atoi(f[i])
			if err != nil {
				return nil, fmt.Errorf("coords line %d: field %d: %w", ln, i+1, err)
			}
			n[i] = v
		}
		segs = append(segs, Segment{
			RefStart: n[0], RefEnd: n[1], QueryStart: n[2], QueryEnd: n[3],
			Ref: f[4], Query: query, Tag: tag,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return segs, nil
}

// Summarize aggregates segments.
func Summarize(segs []Segment) Summary {
	var s Summary
	s.Segments = len(segs)
	if len(segs) == 0 {
		return s
	}
	refs := map[string]struct{}{}
	queries := map[string]struct{}{}
	lens := make([]float64, 0, len(segs))
	for _, g := range segs {
		switch g.Tag {
		case "unique":
			s.Unique++
		case "repetitive":
			s.Repetitive++
		}
		if g.Reversed() {
			s.Reversed++
		}
		refs[g.Ref] = struct{}{}
		if g.Query != "" {
			queries[g.Query] = struct{}{}
		}
		l := g.RefLen()
		s.AlignedRef += l
		if l > s.LongestRefLen {
			s.LongestRefLen = l
		}
		lens = append(lens, float64(l))
	}
	s.References = len(refs)
	s.Queries = len(queries)
	sort.Float64s(lens)
	s.MeanRefLen = stat.Mean(lens, nil)
	s.MedianRefLen = stat.Quantile(0.5, stat.Empirical, lens, nil)
	return s
}

// WriteSummary prints s as key<TAB>value lines.
func WriteSummary(w io.Writer, s Summary) error {
	rows := []struct {
		k string
		v string
	}{
		{"segments", strconv.Itoa(s.Segments)},
		{"unique", strconv.Itoa(s.Unique)},
		{"repetitive", strconv.Itoa(s.Repetitive)},
		{"reversed", strconv.Itoa(s.Reversed)},
		{"references", strconv.Itoa(s.References)},
		{"queries", strconv.Itoa(s.Queries)},
		{"aligned_ref_bp", strconv.Itoa(s.AlignedRef)},
		{"mean_ref_len", strconv.FormatFloat(s.MeanRefLen, 'f', 1, 64)},
		{"median_ref_len", strconv.FormatFloat(s.MedianRefLen, 'f', 1, 64)},
		{"longest_ref_len", strconv.Itoa(s.LongestRefLen)},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", r.k, r.v); err != nil {
			return err
		}
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
