package coords

import (
	"errors"
	"strings"
	"testing"
)

const sample = `ref_start,ref_end,query_start,query_end,ref
!scfA!unique
0,100,0,100,chr1
200,230,330,300,chr1
!scfB!repetitive
500,560,10,70,chr2
`

func TestValidate(t *testing.T) {
	if err := Validate(sample); err != nil {
		t.Fatalf("valid header rejected: %v", err)
	}
	err := Validate("ref_start,ref_end\n1,2\n")
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("want ErrFormat, got %v", err)
	}
	var fe *FormatError
	if !errors.As(err, &fe) || fe.Got != "ref_start,ref_end" || fe.File != "coords" {
		t.Fatalf("format error should quote the observed header: %+v", fe)
	}
	if !strings.Contains(err.Error(), `"ref_start,ref_end"`) {
		t.Fatalf("message lacks observed header: %s", err)
	}
}

func TestCheckHeader_Index(t *testing.T) {
	if err := CheckHeader("index", "#ref\nref,ref_length\n", "#ref"); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := CheckHeader("index", "#query\n", "#ref"); !errors.Is(err, ErrFormat) {
		t.Fatalf("want ErrFormat, got %v", err)
	}
}

func TestParseAndSummarize(t *testing.T) {
	segs, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(segs) != 3 || segs[1].Query != "scfA" || segs[2].Tag != "repetitive" {
		t.Fatalf("segments: %+v", segs)
	}
	s := Summarize(segs)
	if s.Segments != 3 || s.Unique != 2 || s.Repetitive != 1 || s.Reversed != 1 {
		t.Fatalf("counts: %+v", s)
	}
	if s.References != 2 || s.Queries != 2 || s.AlignedRef != 190 || s.LongestRefLen != 100 {
		t.Fatalf("totals: %+v", s)
	}
	if s.MedianRefLen != 60 {
		t.Fatalf("median: want 60, got %v", s.MedianRefLen)
	}
	if s.MeanRefLen < 63.3 || s.MeanRefLen > 63.4 {
		t.Fatalf("mean: %v", s.MeanRefLen)
	}
}

func TestParse_Errors(t *testing.T) {
	if _, err := Parse(strings.NewReader("")); !errors.Is(err, ErrFormat) {
		t.Fatalf("empty input: %v", err)
	}
	if _, err := Parse(strings.NewReader(Header + "\n1,2,x,4,chr\n")); err == nil {
		t.Fatalf("expected numeric error")
	}
	if _, err := Parse(strings.NewReader(Header + "\n1,2,3\n")); err == nil {
		t.Fatalf("expected field count error")
	}
}

func TestSummarize_Empty(t *testing.T) {
	if s := Summarize(nil); s != (Summary{}) {
		t.Fatalf("want zero summary, got %+v", s)
	}
}

func TestWriteSummary(t *testing.T) {
	var sb strings.Builder
	if err := WriteSummary(&sb, Summary{Segments: 2, MeanRefLen: 1.5}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := sb.String()
	if !strings.HasPrefix(out, "segments\t2\n") || !strings.Contains(out, "mean_ref_len\t1.5\n") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
}
