package genbank

import (
	"fmt"
	"strconv"
	"strings"

	"dotprep/internal/annot"
)

// Location is a parsed feature location in 0-based half-open coordinates.
// Parts are in biological order, so complement(join(A,B)) yields B, A.
type Location struct {
	Parts    []annot.Span
	Strands  []int
	Operator string // "join", "order" or "" for simple locations
}

// Strand is +1 or -1 when all parts agree, else 0.
func (l Location) Strand() int {
	if len(l.Strands) == 0 {
		return 0
	}
	s := l.Strands[0]
	for _, o := range l.Strands[1:] {
		if o != s {
			return 0
		}
	}
	return s
}

// ParseLocation parses an INSDC location string such as
// "complement(join(<1..200,300..>450))".
func ParseLocation(s string) (Location, error) {
	p := &locParser{s: strings.Join(strings.Fields(s), "")}
	loc, err := p.parse()
	if err != nil {
		return Location{}, fmt.Errorf("location %q: %w", s, err)
	}
	if p.i != len(p.s) {
		return Location{}, fmt.Errorf("location %q: trailing input at %d", s, p.i)
	}
	return loc, nil
}

type locParser struct {
	s string
	i int
}

func (p *locParser) parse() (Location, error) {
	for _, op := range []string{"complement", "join", "order", "bond"} {
		if !strings.HasPrefix(p.s[p.i:], op+"(") {
			continue
		}
		p.i += len(op) + 1
		var inner []Location
		for {
			l, err := p.parse()
			if err != nil {
				return Location{}, err
			}
			inner = append(inner, l)
			if p.i >= len(p.s) {
				return Location{}, fmt.Errorf("unclosed %s(", op)
			}
			c := p.s[p.i]
			p.i++
			if c == ')' {
				break
			}
			if c != ',' {
				return Location{}, fmt.Errorf("unexpected %q at %d", c, p.i-1)
			}
		}
		if op == "complement" {
			if len(inner) != 1 {
				return Location{}, fmt.Errorf("complement takes one location")
			}
			return complement(inner[0]), nil
		}
		if op == "bond" {
			op = "order"
		}
		out := Location{Operator: op}
		for _, l := range inner {
			out.Parts = append(out.Parts, l.Parts...)
			out.Strands = append(out.Strands, l.Strands...)
		}
		return out, nil
	}
	return p.simple()
}

func complement(l Location) Location {
	out := Location{Operator: l.Operator}
	for i := len(l.Parts) - 1; i >= 0; i-- {
		out.Parts = append(out.Parts, l.Parts[i])
		out.Strands = append(out.Strands, -l.Strands[i])
	}
	return out
}

// simple parses [ACC:]pos, pos..pos or pos^pos.
func (p *locParser) simple() (Location, error) {
	end := p.i
	for end < len(p.s) && p.s[end] != ',' && p.s[end] != ')' {
		end++
	}
	tok := p.s[p.i:end]
	p.i = end
	if c := strings.LastIndexByte(tok, ':'); c >= 0 {
		tok = tok[c+1:] // remote entry; keep the coordinates
	}
	var span annot.Span
	switch {
	case strings.Contains(tok, ".."):
		a, b, _ := strings.Cut(tok, "..")
		start, err := position(a)
		if err != nil {
			return Location{}, err
		}
		stop, err := position(b)
		if err != nil {
			return Location{}, err
		}
		span = annot.Span{Start: start - 1, End: stop}
	case strings.Contains(tok, "^"):
		a, _, _ := strings.Cut(tok, "^")
		start, err := position(a)
		if err != nil {
			return Location{}, err
		}
		span = annot.Span{Start: start, End: start}
	default:
		pos, err := position(tok)
		if err != nil {
			return Location{}, err
		}
		span = annot.Span{Start: pos - 1, End: pos}
	}
	if span.End < span.Start {
		return Location{}, fmt.Errorf("end before start in %q", tok)
	}
	return Location{Parts: []annot.Span{span}, Strands: []int{1}}, nil
}

// position parses "<12", ">12" or "12", dropping fuzziness markers.
func position(s string) (int, error) {
	s = strings.TrimLeft(s, "<>")
	if s == "" {
		return 0, fmt.Errorf("empty position")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad position %q", s)
	}
	return n, nil
}
