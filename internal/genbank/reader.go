// Package genbank reads GenBank flat files into annotated scaffolds.
//
// Only what annotation mapping needs is kept: record identity and length,
// and each feature's key, location and qualifiers.
package genbank

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"dotprep/internal/annot"
)

// DefaultLabelKey is the qualifier used as the annotation name.
const DefaultLabelKey = "locus_tag"

// Feature is one entry of a FEATURES table.
type Feature struct {
	Key        string
	Location   string
	Qualifiers map[string][]string
}

// Qualifier returns the first value of key.
func (f Feature) Qualifier(key string) (string, bool) {
	v, ok := f.Qualifiers[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// Record is one LOCUS ... // entry.
type Record struct {
	Name      string // LOCUS name
	Accession string
	Version   string
	Length    int
	Features  []Feature
}

// ID returns VERSION, else ACCESSION, else the LOCUS name.
func (r Record) ID() string {
	switch {
	case r.Version != "":
		return r.Version
	case r.Accession != "":
		return r.Accession
	}
	return r.Name
}

// Scaffold converts r to an annot.Scaffold labelled by labelKey.
func (r Record) Scaffold(labelKey string) (annot.Scaffold, error) {
	if labelKey == "" {
		labelKey = DefaultLabelKey
	}
	scf := annot.Scaffold{ID: r.ID(), Length: r.Length, Features: make([]annot.Feature, 0, len(r.Features))}
	for _, f := range r.Features {
		loc, err := ParseLocation(f.Location)
		if err != nil {
			return annot.Scaffold{}, fmt.Errorf("%s %s: %w", scf.ID, f.Key, err)
		}
		label, _ := f.Qualifier(labelKey)
		scf.Features = append(scf.Features, annot.Feature{
			Label:  label,
			Strand: loc.Strand(),
			Spans:  loc.Parts,
			Joined: loc.Operator == "join",
		})
	}
	return scf, nil
}

// ReadFile reads every record in path (plain or gzip).
func ReadFile(path string) ([]Record, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	var r io.Reader = fh
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		r = gr
	}
	recs, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// Scaffolds reads path and converts each record.
func Scaffolds(path, labelKey string) ([]annot.Scaffold, error) {
	recs, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := make([]annot.Scaffold, 0, len(recs))
	for _, r := range recs {
		scf, err := r.Scaffold(labelKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, scf)
	}
	return out, nil
}

type section int

const (
	header section = iota
	features
	origin
)

// Read parses GenBank records from r.
func Read(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)

	var (
		recs    []Record
		cur     *Record
		sec     section
		feat    *Feature
		qual    string // qualifier being extended
		quotes  int    // quote count of qual's value so far
		seqLen  int
		hasSeq  bool
		ln      int
		inLocus bool
	)
	flushFeature := func() {
		if feat == nil {
			return
		}
		for k, vs := range feat.Qualifiers {
			for i, v := range vs {
				vs[i] = unquote(v)
			}
			feat.Qualifiers[k] = vs
		}
		cur.Features = append(cur.Features, *feat)
		feat, qual, quotes = nil, "", 0
	}
	finish := func() {
		flushFeature()
		if hasSeq {
			cur.Length = seqLen
		}
		recs = append(recs, *cur)
		cur, inLocus, sec, seqLen, hasSeq = nil, false, header, 0, false
	}

	for sc.Scan() {
		ln++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.HasPrefix(line, "LOCUS") {
			if inLocus {
				finish()
			}
			cur = &Record{}
			inLocus = true
			f := strings.Fields(line)
			if len(f) > 1 {
				cur.Name = f[1]
			}
			if len(f) > 2 {
				if n, err := strconv.Atoi(f[2]); err == nil {
					cur.Length = n
				}
			}
			continue
		}
		if !inLocus {
			if strings.TrimSpace(line) == "" {
				continue
			}
			return nil, fmt.Errorf("line %d: expected LOCUS, got %q", ln, line)
		}
		if strings.HasPrefix(line, "//") {
			finish()
			continue
		}

		// top-level keyword lines start in column 1
		if line != "" && line[0] != ' ' {
			flushFeature()
			kw, rest, _ := strings.Cut(line, " ")
			rest = strings.TrimSpace(rest)
			switch kw {
			case "ACCESSION":
				if f := strings.Fields(rest); len(f) > 0 {
					cur.Accession = f[0]
				}
				sec = header
			case "VERSION":
				if f := strings.Fields(rest); len(f) > 0 {
					cur.Version = f[0]
				}
				sec = header
			case "FEATURES":
				sec = features
			case "ORIGIN":
				sec = origin
				hasSeq = true
			default:
				sec = header
			}
			continue
		}

		switch sec {
		case origin:
			for _, c := range line {
				if unicode.IsLetter(c) {
					seqLen++
				}
			}
		case features:
			content := strings.TrimSpace(line)
			if content == "" {
				continue
			}
			if len(line) > 5 && strings.HasPrefix(line, "     ") && line[5] != ' ' {
				flushFeature()
				key, loc, _ := strings.Cut(content, " ")
				feat = &Feature{Key: key, Location: strings.TrimSpace(loc), Qualifiers: map[string][]string{}}
				continue
			}
			if feat == nil {
				return nil, fmt.Errorf("line %d: qualifier outside a feature", ln)
			}
			if qual != "" && quotes%2 == 1 {
				// continuation of an open quoted value
				vs := feat.Qualifiers[qual]
				vs[len(vs)-1] += " " + content
				quotes += strings.Count(content, `"`)
				continue
			}
			if strings.HasPrefix(content, "/") {
				name, val, _ := strings.Cut(content[1:], "=")
				feat.Qualifiers[name] = append(feat.Qualifiers[name], val)
				qual, quotes = name, strings.Count(val, `"`)
				continue
			}
			if qual == "" {
				feat.Location += content
				continue
			}
			vs := feat.Qualifiers[qual]
			vs[len(vs)-1] += " " + content
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if inLocus {
		finish()
	}
	return recs, nil
}

func unquote(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		v = v[1 : len(v)-1]
	}
	return strings.ReplaceAll(v, `""`, `"`)
}
