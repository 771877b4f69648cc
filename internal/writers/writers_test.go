package writers

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"
	"testing"

	"dotprep/internal/annot"
	"dotprep/pkg/api"
)

func TestWriteAnnotationsJSONL(t *testing.T) {
	recs := []annot.Record{
		{Scaffold: "scfA", Start: 10, End: 40, Name: "geneX", Strand: "+"},
		{Scaffold: "scfB", Start: 5, End: 9, Name: "geneY", Strand: "-"},
	}
	var sb strings.Builder
	if err := WriteAnnotationsJSONL(&sb, recs, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	sc := bufio.NewScanner(strings.NewReader(sb.String()))
	var got []api.AnnotationV1
	for sc.Scan() {
		var v api.AnnotationV1
		if err := json.Unmarshal(sc.Bytes(), &v); err != nil {
			t.Fatalf("line %q: %v", sc.Text(), err)
		}
		got = append(got, v)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 lines, got %d", len(got))
	}
	if got[1].Side != "qry" || got[1].Scaffold != "scfB" || got[1].Strand != "-" || got[1].Start != 5 {
		t.Fatalf("second line: %+v", got[1])
	}
}

func TestWriteAnnotationsJSONL_Empty(t *testing.T) {
	var sb strings.Builder
	if err := WriteAnnotationsJSONL(&sb, nil, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	if sb.Len() != 0 {
		t.Fatalf("want no output, got %q", sb.String())
	}
}

func TestWriteJSON(t *testing.T) {
	var sb strings.Builder
	if err := WriteJSON(&sb, api.PublishedV1{Key: "k", Size: 3}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(sb.String(), "}\n") || !strings.Contains(sb.String(), "\n  \"key\": \"k\"") {
		t.Fatalf("unexpected JSON: %q", sb.String())
	}
}

func TestIsBrokenPipe(t *testing.T) {
	if !IsBrokenPipe(fmt.Errorf("write: %w", syscall.EPIPE)) || !IsBrokenPipe(io.ErrClosedPipe) {
		t.Fatal("pipe errors not recognised")
	}
	if IsBrokenPipe(nil) || IsBrokenPipe(errors.New("x")) {
		t.Fatal("false positive")
	}
}
