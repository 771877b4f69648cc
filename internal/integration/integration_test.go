// internal/integration/integration_test.go
package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"dotprep/internal/app"
	"dotprep/pkg/api"
)

// fakeNucmer records its arguments and writes out.delta into its cwd.
const fakeNucmer = `#!/bin/sh
if [ "$1" = "--version" ]; then echo "nucmer 4.0.0"; exit 0; fi
if [ -n "$SLEEP" ]; then sleep "$SLEEP"; fi
printf '%s\n' "$@" > nucmer.args
echo NUCMER > out.delta
`

// fakeConverter writes coords and index files at the --out prefix.
const fakeConverter = `#!/bin/sh
while [ $# -gt 0 ]; do
  case "$1" in --out) out="$2"; shift ;; esac
  shift
done
printf 'ref_start,ref_end,query_start,query_end,ref\n!scfA!unique\n1,50,1,50,ref1\n' > "$out.coords"
cat > "$out.coords.idx" <<'IDX'
#ref
ref,ref_length,matching_queries
ref1,1000,scfA~scfB
#query
query,query_length,orientation,bytePosition_unique,bytePosition_repetitive,bytePosition_end,unique_matching_refs,matching_refs
scfA,100,+,1,2,3,ref1,ref1
scfB,100,-,4,5,6,ref1,ref1
#overview
ref_start,ref_end,query_start,query_end,ref,query,tag
IDX
`

const genbank = `LOCUS       scfA                     100 bp    DNA     linear       20-JAN-2021
FEATURES             Location/Qualifiers
     gene            11..50
                     /locus_tag="geneX"
//
LOCUS       scfB                     100 bp    DNA     linear       20-JAN-2021
FEATURES             Location/Qualifiers
     gene            complement(11..50)
                     /locus_tag="geneY"
//
`

func write(t *testing.T, dir, name, data string, mode os.FileMode) string {
	t.Helper()
	fn := filepath.Join(dir, name)
	if err := os.WriteFile(fn, []byte(data), mode); err != nil {
		t.Fatalf("write %s: %v", fn, err)
	}
	return fn
}

type fixture struct {
	dir, nucmer, converter, ref, qry, gbk string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools need a POSIX shell")
	}
	dir := t.TempDir()
	return fixture{
		dir:       dir,
		nucmer:    write(t, dir, "nucmer", fakeNucmer, 0o755),
		converter: write(t, dir, "DotPrep.py", fakeConverter, 0o755),
		ref:       write(t, dir, "ref.fasta", ">gnl|Prokka|ref1 chromosome\nACGT\n", 0o644),
		qry:       write(t, dir, "qry.fasta", ">scfA\nACGT\n>scfB\nTTTT\n", 0o644),
		gbk:       write(t, dir, "qry.gbk", genbank, 0o644),
	}
}

func TestEndToEnd_Run(t *testing.T) {
	f := newFixture(t)
	out := filepath.Join(f.dir, "plot")

	var stdout, stderr bytes.Buffer
	code := app.Run([]string{
		"run", out, f.ref, f.qry,
		"--nucmer", f.nucmer, "--converter", f.converter,
		"--qry-annotations", f.gbk, "--ref-annotations", f.gbk,
		"--mincluster", "80",
		"--publish", "file://" + filepath.ToSlash(filepath.Join(f.dir, "published")),
	}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("run exit %d, err=%s", code, stderr.String())
	}
	if !strings.Contains(stderr.String(), "run_id=") {
		t.Fatalf("expected structured log lines, got %q", stderr.String())
	}
	for _, name := range []string{"out.delta", "out.coords", "out.coords.idx", "out.ref.annotations", "out.qry.annotations"} {
		if !strings.Contains(stdout.String(), filepath.Join(out, name)) {
			t.Errorf("stdout does not list %s: %q", name, stdout.String())
		}
		if _, err := os.Stat(filepath.Join(f.dir, "published", name)); err != nil {
			t.Errorf("%s not published: %v", name, err)
		}
	}

	qry, _ := os.ReadFile(filepath.Join(out, "out.qry.annotations"))
	if want := "query,query_start,query_end,name,strand\nscfA,10,50,geneX,+\nscfB,50,90,geneY,-\n"; string(qry) != want {
		t.Fatalf("query annotations:\n%s", qry)
	}

	// inputs are sanitized into the output directory and passed as absolute paths
	args, _ := os.ReadFile(filepath.Join(out, "nucmer.args"))
	lines := strings.Split(strings.TrimSpace(string(args)), "\n")
	if len(lines) != 4 || lines[0] != "--mincluster" || lines[1] != "80" ||
		lines[2] != filepath.Join(out, "ref.fasta.cleaned") || lines[3] != filepath.Join(out, "qry.fasta.cleaned") {
		t.Fatalf("nucmer args %q", lines)
	}
	cleaned, _ := os.ReadFile(filepath.Join(out, "ref.fasta.cleaned"))
	if string(cleaned) != ">ref1\nACGT\n" {
		t.Fatalf("cleaned ref %q", cleaned)
	}

	// a second run into the same directory is refused
	stderr.Reset()
	code = app.Run([]string{"run", out, f.ref, f.qry, "--nucmer", f.nucmer, "--converter", f.converter}, &stdout, &stderr)
	if code != 3 || !strings.Contains(stderr.String(), "already exists") {
		t.Fatalf("rerun exit %d err=%s", code, stderr.String())
	}
}

func TestEndToEnd_RunJSON(t *testing.T) {
	f := newFixture(t)
	out := filepath.Join(f.dir, "plot")

	var stdout, stderr bytes.Buffer
	code := app.Run([]string{
		"run", out, f.ref, f.qry, "-q", "--output", "json",
		"--nucmer", f.nucmer, "--converter", f.converter,
		"--publish", "mem://runs",
	}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("run exit %d, err=%s", code, stderr.String())
	}
	var v api.RunV1
	if err := json.Unmarshal(stdout.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", stdout.String(), err)
	}
	if v.RunID == "" || v.OutDir != out || len(v.Files) == 0 || len(v.Published) != len(v.Files) {
		t.Fatalf("got %+v", v)
	}
	for _, p := range v.Published {
		if !strings.HasPrefix(p.Key, "runs/") || p.Size <= 0 {
			t.Errorf("published %+v", p)
		}
	}
}

func TestEndToEnd_Prepare(t *testing.T) {
	f := newFixture(t)
	var stdout, stderr bytes.Buffer
	code := app.Run([]string{"prepare", f.ref, f.qry, "--nucmer", f.nucmer, "--converter", f.converter, "-q"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("prepare exit %d, err=%s", code, stderr.String())
	}
	s := stdout.String()
	if !strings.HasPrefix(s, "ref_start,ref_end,query_start,query_end,ref\n") || !strings.Contains(s, "\n#ref\n") {
		t.Fatalf("stdout %q", s)
	}
	if stderr.Len() != 0 {
		t.Fatalf("quiet run logged %q", stderr.String())
	}
}

func TestEndToEnd_ConverterFailure(t *testing.T) {
	f := newFixture(t)
	bad := write(t, f.dir, "broken.py", "#!/bin/sh\necho 'KeyError: overview' >&2\nexit 1\n", 0o755)
	var stdout, stderr bytes.Buffer
	code := app.Run([]string{"run", filepath.Join(f.dir, "o"), f.ref, f.qry, "--nucmer", f.nucmer, "--converter", bad}, &stdout, &stderr)
	if code != 3 || !strings.Contains(stderr.String(), "KeyError: overview") {
		t.Fatalf("exit %d err=%s", code, stderr.String())
	}
	if _, err := os.Stat(filepath.Join(f.dir, "o", "out.delta")); err != nil {
		t.Fatalf("partial output should remain: %v", err)
	}
}
