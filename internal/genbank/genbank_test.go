package genbank

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"dotprep/internal/annot"
)

const twoRecords = `LOCUS       scf1                     120 bp    DNA     linear       20-JAN-2021
DEFINITION  Test scaffold one.
ACCESSION   scf1
VERSION
KEYWORDS    .
FEATURES             Location/Qualifiers
     source          1..120
                     /organism="Testus"
     gene            1..30
                     /locus_tag="T_0001"
     CDS             1..30
                     /locus_tag="T_0001"
                     /product="hypothetical ""protein"" with a
                     long name"
                     /translation="MKV"
     gene            complement(41..90)
                     /locus_tag="T_0002"
     CDS             join(100..110,
                     115..120)
                     /locus_tag="T_0003"
     misc_feature    95..99
                     /note="no locus tag"
ORIGIN
        1 acgtacgtac gtacgtacgt acgtacgtac gtacgtacgt acgtacgtac gtacgtacgt
       61 acgtacgtac gtacgtacgt acgtacgtac gtacgtacgt acgtacgtac gtacgtacgt
//
LOCUS       scf2                      50 bp    DNA     linear       20-JAN-2021
ACCESSION   ACC2
VERSION     ACC2.1
FEATURES             Location/Qualifiers
     tRNA            complement(join(<5..10,20..>30))
                     /locus_tag="T_0004"
//
`

func TestRead(t *testing.T) {
	recs, err := Read(strings.NewReader(twoRecords))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("want 2 records, got %d", len(recs))
	}
	r1, r2 := recs[0], recs[1]
	if r1.ID() != "scf1" || r1.Length != 120 || len(r1.Features) != 6 {
		t.Fatalf("record 1: id=%s len=%d feats=%d", r1.ID(), r1.Length, len(r1.Features))
	}
	if r2.ID() != "ACC2.1" || r2.Length != 50 {
		t.Fatalf("record 2: id=%s len=%d", r2.ID(), r2.Length)
	}
	cds := r1.Features[2]
	if p, _ := cds.Qualifier("product"); p != `hypothetical "protein" with a long name` {
		t.Fatalf("product %q", p)
	}
	if r1.Features[4].Location != "join(100..110,115..120)" {
		t.Fatalf("continued location %q", r1.Features[4].Location)
	}
}

func TestRecordScaffold(t *testing.T) {
	recs, err := Read(strings.NewReader(twoRecords))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	scf, err := recs[0].Scaffold("")
	if err != nil {
		t.Fatalf("Scaffold: %v", err)
	}
	got, _ := annot.ExtractRef([]annot.Scaffold{scf})
	want := []annot.Record{
		{Scaffold: "scf1", Start: 0, End: 30, Name: "T_0001", Strand: "+"},
		{Scaffold: "scf1", Start: 40, End: 90, Name: "T_0002", Strand: "-"},
		{Scaffold: "scf1", Start: 99, End: 110, Name: "T_0003", Strand: "+"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v\nwant %+v", got, want)
	}

	scf2, _ := recs[1].Scaffold(DefaultLabelKey)
	s, e := scf2.Features[0].Position()
	if s != 19 || e != 30 || scf2.Features[0].Strand != -1 {
		t.Fatalf("complement(join) should use the biologically first part: %d-%d strand %d", s, e, scf2.Features[0].Strand)
	}
}

func TestParseLocation(t *testing.T) {
	cases := []struct {
		in     string
		parts  []annot.Span
		strand int
		op     string
	}{
		{"1..30", []annot.Span{{Start: 0, End: 30}}, 1, ""},
		{"<1..>30", []annot.Span{{Start: 0, End: 30}}, 1, ""},
		{"7", []annot.Span{{Start: 6, End: 7}}, 1, ""},
		{"12^13", []annot.Span{{Start: 12, End: 12}}, 1, ""},
		{"complement(5..9)", []annot.Span{{Start: 4, End: 9}}, -1, ""},
		{"join(1..5,10..20)", []annot.Span{{Start: 0, End: 5}, {Start: 9, End: 20}}, 1, "join"},
		{"complement(join(1..5,10..20))", []annot.Span{{Start: 9, End: 20}, {Start: 0, End: 5}}, -1, "join"},
		{"join(complement(10..20),complement(1..5))", []annot.Span{{Start: 9, End: 20}, {Start: 0, End: 5}}, -1, "join"},
		{"order(1..5,complement(10..20))", []annot.Span{{Start: 0, End: 5}, {Start: 9, End: 20}}, 0, "order"},
		{"join(ACC1.1:1..5, 10..20)", []annot.Span{{Start: 0, End: 5}, {Start: 9, End: 20}}, 1, "join"},
	}
	for _, c := range cases {
		loc, err := ParseLocation(c.in)
		if err != nil {
			t.Errorf("%s: %v", c.in, err)
			continue
		}
		if !reflect.DeepEqual(loc.Parts, c.parts) || loc.Strand() != c.strand || loc.Operator != c.op {
			t.Errorf("%s: got %+v strand %d", c.in, loc, loc.Strand())
		}
	}
}

func TestParseLocation_Errors(t *testing.T) {
	for _, in := range []string{"", "join(1..5", "complement(1..2,3..4)", "x..5", "9..3", "1..5)"} {
		if _, err := ParseLocation(in); err == nil {
			t.Errorf("%q: expected error", in)
		}
	}
}

func TestRead_Garbage(t *testing.T) {
	if _, err := Read(strings.NewReader("not a genbank file\n")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestScaffolds_File(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "x.gbk")
	if err := os.WriteFile(fn, []byte(twoRecords), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	scfs, err := Scaffolds(fn, "product")
	if err != nil {
		t.Fatalf("Scaffolds: %v", err)
	}
	if len(scfs) != 2 || scfs[0].Features[2].Label == "" || scfs[0].Features[1].Label != "" {
		t.Fatalf("label key not honoured: %+v", scfs[0].Features)
	}
}

func TestRead_QualifierValues(t *testing.T) {
	const gbk = `LOCUS       scf3                      80 bp    DNA     linear       20-JAN-2021
FEATURES             Location/Qualifiers
     gene            1..40
                     /locus_tag="first"
                     /locus_tag="second"
                     /note="ratio=2:1; see x=y"
                     /pseudo
     misc_binding    order(2..4,30..35)
                     /locus_tag="bind"
//
`
	recs, err := Read(strings.NewReader(gbk))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(recs) != 1 || len(recs[0].Features) != 2 {
		t.Fatalf("records %+v", recs)
	}
	g := recs[0].Features[0]
	if v, _ := g.Qualifier("locus_tag"); v != "first" {
		t.Fatalf("repeated qualifier kept %q, want first value", v)
	}
	if v, _ := g.Qualifier("note"); v != "ratio=2:1; see x=y" {
		t.Fatalf("note %q", v)
	}
	if _, ok := g.Qualifier("pseudo"); !ok {
		t.Fatalf("valueless qualifier dropped")
	}
	scf, err := recs[0].Scaffold(DefaultLabelKey)
	if err != nil {
		t.Fatalf("Scaffold: %v", err)
	}
	if s, e := scf.Features[1].Position(); s != 1 || e != 35 {
		t.Fatalf("order extent (%d,%d)", s, e)
	}
}
