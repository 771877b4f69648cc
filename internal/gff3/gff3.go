// Package gff3 reads GFF3 annotation files into annotated scaffolds.
package gff3

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/biogo/io/featio"
	"github.com/biogo/biogo/io/featio/gff"

	"dotprep/internal/annot"
)

// Options controls conversion to scaffolds.
type Options struct {
	LabelKey string // attribute used as the name; default "locus_tag"
	// Lengths overrides ##sequence-region lengths, typically taken from the
	// matching FASTA file.
	Lengths map[string]int
	// RequireLengths fails when a scaffold has no known length. Query-side
	// mirroring needs it.
	RequireLengths bool
}

// ReadFile reads path and returns one scaffold per seqid, in order of first
// appearance.
func ReadFile(path string, opt Options) ([]annot.Scaffold, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	scfs, err := Read(fh, opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scfs, nil
}

// Read parses GFF3 from r. Pragmas and comments are consumed here; the
// embedded ##FASTA section, if any, ends the feature table.
//
// The biogo reader speaks GFF2 and rejects key=value attributes, so it is
// fed columns 1-8 only and column 9 is decoded separately, line for line.
func Read(r io.Reader, opt Options) ([]annot.Scaffold, error) {
	labelKey := opt.LabelKey
	if labelKey == "" {
		labelKey = "locus_tag"
	}
	tab, err := split(r)
	if err != nil {
		return nil, err
	}

	var (
		scfs []annot.Scaffold
		pos  = map[string]int{}
		n    int
	)
	sc := featio.NewScanner(gff.NewReader(strings.NewReader(tab.body)))
	for sc.Next() {
		f, ok := sc.Feat().(*gff.Feature)
		if !ok {
			continue
		}
		attrs := tab.attrs[n]
		n++
		i, seen := pos[f.SeqName]
		if !seen {
			i = len(scfs)
			pos[f.SeqName] = i
			scfs = append(scfs, annot.Scaffold{ID: f.SeqName})
		}
		scfs[i].Features = append(scfs[i].Features, annot.Feature{
			Label:  attrs[labelKey],
			Strand: int(f.FeatStrand),
			Spans:  []annot.Span{{Start: f.FeatStart, End: f.FeatEnd}},
		})
	}
	if err := sc.Error(); err != nil {
		return nil, err
	}

	for i := range scfs {
		id := scfs[i].ID
		if n, ok := opt.Lengths[id]; ok {
			scfs[i].Length = n
		} else if n, ok := tab.regions[id]; ok {
			scfs[i].Length = n
		} else if opt.RequireLengths {
			return nil, fmt.Errorf("no sequence length for scaffold %s (add ##sequence-region or supply its FASTA)", id)
		}
	}
	return scfs, nil
}

// table is a GFF3 feature table split for the GFF2 reader: body holds
// columns 1-8 of each feature line and attrs[i] the decoded column 9 of
// the i-th line.
type table struct {
	body    string
	attrs   []map[string]string
	regions map[string]int
}

// split strips comment and pragma lines, collecting ##sequence-region
// lengths, and stops at ##FASTA.
func split(r io.Reader) (table, error) {
	var b strings.Builder
	tab := table{regions: map[string]int{}}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for ln := 1; sc.Scan(); ln++ {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.HasPrefix(line, "##FASTA") {
			break
		}
		if strings.HasPrefix(line, "##sequence-region") {
			f := strings.Fields(line)
			if len(f) == 4 {
				start, err1 := strconv.Atoi(f[2])
				end, err2 := strconv.Atoi(f[3])
				if err1 == nil && err2 == nil && end >= start {
					tab.regions[f[1]] = end - start + 1
				}
			}
			continue
		}
		if strings.TrimSpace(line) == "" || line[0] == '#' {
			continue
		}
		cols := strings.SplitN(line, "\t", 9)
		if len(cols) < 8 {
			return table{}, fmt.Errorf("line %d: %d column(s), want at least 8", ln, len(cols))
		}
		var attrs map[string]string
		if len(cols) == 9 {
			attrs = parseAttributes(cols[8])
			cols = cols[:8]
		}
		tab.attrs = append(tab.attrs, attrs)
		b.WriteString(strings.Join(cols, "\t"))
		b.WriteByte('\n')
	}
	tab.body = b.String()
	return tab, sc.Err()
}

// parseAttributes decodes a GFF3 column 9 ("key=value;key=v1,v2"). Only
// the first of multiple values is kept; keys and values are
// percent-decoded after splitting, so %3B and %2C survive as ';' and ','.
func parseAttributes(col string) map[string]string {
	m := map[string]string{}
	for _, kv := range strings.Split(col, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(kv), "=")
		if !ok || k == "" {
			continue
		}
		v, _, _ = strings.Cut(v, ",")
		k, v = unescape(k), unescape(strings.TrimSpace(v))
		if _, dup := m[k]; !dup {
			m[k] = v
		}
	}
	return m
}

func unescape(s string) string {
	if dec, err := url.PathUnescape(s); err == nil {
		return dec
	}
	return s
}
